package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/clientcheckin/checkin-web/config"
	httpx "github.com/clientcheckin/checkin-web/internal/http"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// NewHTTPServer builds the browser-facing server. It is not started.
func NewHTTPServer(cfg *HTTPServerConfig) *http.Server {
	if cfg == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	services := httpx.RouterServices{
		CookieDomain: appCfg.HTTP.CookieDomain,
		GuardWait:    appCfg.Session.GuardWait,
		Metrics:      cfg.Services.Metrics,
		IsDev:        appCfg.IsDev,
		Logger:       logger,
	}
	// Leave interface fields nil rather than holding typed nil pointers.
	if cfg.Services.Auth != nil {
		services.Auth = cfg.Services.Auth
	}
	if cfg.Services.CheckIn != nil {
		services.CheckIn = cfg.Services.CheckIn
	}
	if cfg.Services.Signup != nil {
		services.Signup = cfg.Services.Signup
	}
	if cfg.Services.Health != nil {
		services.Health = cfg.Services.Health
	}

	handler := buildHTTPHandler(httpHandlerConfig{
		Logger:   logger,
		Services: services,
		HTTP:     appCfg.HTTP,
	})

	return newServer(handler, appCfg.HTTP)
}

type httpHandlerConfig struct {
	Logger   *slog.Logger
	Services httpx.RouterServices
	HTTP     config.HTTPConfig
}

func buildHTTPHandler(cfg httpHandlerConfig) http.Handler {
	router := httpx.NewRouter(cfg.Services)

	// Apply compression middleware first (innermost) so logging captures compressed sizes
	// Order: Recover -> Logging -> SecurityHeaders -> CSRF -> Compression -> Router
	h := router
	if cfg.HTTP.CompressionEnabled {
		cfg.Logger.Info("HTTP compression enabled", "level", cfg.HTTP.CompressionLevel)
		h = httpx.Compression(httpx.CompressionConfig{Level: cfg.HTTP.CompressionLevel})(h)
	}

	if cfg.HTTP.CSRFKey == "" {
		cfg.Logger.Warn("CSRF protection disabled: HTTP_CSRF_KEY not set")
	}
	h = httpx.CSRFProtection(httpx.CSRFConfig{
		AuthKey:        []byte(cfg.HTTP.CSRFKey),
		CookieDomain:   cfg.HTTP.CookieDomain,
		Secure:         strings.HasPrefix(cfg.HTTP.BaseURL, "https://"),
		TrustedOrigins: cfg.HTTP.TrustedOrigins,
		Logger:         cfg.Logger,
	})(h)

	h = httpx.SecurityHeaders(h)
	h = httpx.Logging(cfg.Logger)(h)
	h = httpx.Recover(cfg.Logger)(h)

	return h
}

func newServer(handler http.Handler, cfg config.HTTPConfig) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	addr := cfg.Addr
	if addr == "" {
		addr = ":8080"
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       orDefault(cfg.ReadTimeout, 30*time.Second),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      orDefault(cfg.WriteTimeout, 30*time.Second),
		IdleTimeout:       orDefault(cfg.IdleTimeout, 120*time.Second),
	}
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// serveHTTP runs server until it is shut down. A clean shutdown returns nil.
func serveHTTP(logger *slog.Logger, name string, server *http.Server) error {
	logger.Info("starting HTTP server", "server", name, "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("HTTP server failed", "server", name, "error", err)
		return err
	}
	return nil
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Name    string
	Timeout time.Duration
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server", "server", cfg.Name)
	}

	parent := cfg.Context
	if parent == nil {
		parent = context.Background()
	}
	shutdownCtx, cancel := context.WithTimeout(parent, orDefault(cfg.Timeout, 10*time.Second))
	defer cancel()

	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped", "server", cfg.Name)
	}

	return nil
}
