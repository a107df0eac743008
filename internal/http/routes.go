package httpx

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	checkinweb "github.com/clientcheckin/checkin-web"
	domainauth "github.com/clientcheckin/checkin-web/internal/domain/auth"
	"github.com/clientcheckin/checkin-web/internal/observability/statsd"
	"github.com/clientcheckin/checkin-web/internal/service"
)

// RouterAuth is the auth surface the router needs: the handlers' operations
// plus dropping sessions the guard rejects.
type RouterAuth interface {
	AuthServiceInterface
	Invalidate(ctx context.Context, sessionID string)
}

var _ RouterAuth = (*service.AuthService)(nil)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth    RouterAuth
	CheckIn CheckInService
	Signup  SignupService
	// Optional: session store reachability for /healthz
	Health       Pinger
	CookieDomain string
	// Optional: bound on waiting for profile resolution, DefaultGuardWait when zero
	GuardWait time.Duration
	Metrics   statsd.Sink
	// Optional: overrides the template filesystem (tests)
	TemplateFS fs.FS
	IsDev      bool         // Development mode flag for hot reloading, etc.
	Logger     *slog.Logger // Logger for template and HTTP errors (optional)
}

// NewRouter creates and configures a new HTTP router with browser middleware.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	mux.Handle("GET /healthz", healthHandler(services.Health, logger))
	mux.Handle("HEAD /healthz", healthHandler(services.Health, logger))
	mux.Handle("GET /static/", staticHandler(services.IsDev, logger))

	ui := setupUIHandlers(services, logger)
	if ui == nil {
		mux.HandleFunc("/", http.NotFound)
		return BrowserDetection()(mux)
	}
	registerPublicRoutes(mux, ui)

	if services.Auth != nil {
		auth := &AuthHandlers{
			Svc:          services.Auth,
			CookieDomain: services.CookieDomain,
			StatusWait:   services.GuardWait,
			Logger:       logger,
		}
		guard := NewGuard(GuardOptions{
			Auth:         services.Auth,
			UI:           ui,
			Wait:         services.GuardWait,
			CookieDomain: services.CookieDomain,
			Metrics:      services.Metrics,
			Logger:       logger,
		})
		registerAuthRoutes(mux, auth)
		registerGuardedRoutes(mux, ui, auth, guard)
	}

	mux.HandleFunc("/", ui.NotFound)
	return BrowserDetection()(mux)
}

func registerPublicRoutes(mux *http.ServeMux, ui *UIHandlers) {
	mux.HandleFunc("GET /login", ui.Login)
	mux.HandleFunc("GET /auth/signed-out", ui.SignedOut)
	if ui.Signup != nil {
		mux.HandleFunc("GET /signup", ui.SignupPage)
		mux.HandleFunc("POST /signup", ui.SignupSubmit)
	}
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/status", h.Status)
	mux.HandleFunc("POST /auth/refresh", h.Refresh)
}

func registerGuardedRoutes(mux *http.ServeMux, ui *UIHandlers, auth *AuthHandlers, guard *Guard) {
	anyRole := guard.Require(domainauth.AnyRole())
	adminOnly := guard.Require(domainauth.RequireActiveRole(domainauth.RoleAdmin))

	mux.Handle("POST /profile/role", anyRole(http.HandlerFunc(auth.SwitchRole)))

	if ui.CheckIn == nil {
		return
	}
	mux.Handle("GET /{$}", anyRole(http.HandlerFunc(ui.CheckInPage)))
	mux.Handle("GET /check-in", anyRole(http.HandlerFunc(ui.CheckInPage)))
	mux.Handle("POST /check-in/lookup", anyRole(http.HandlerFunc(ui.CheckInLookup)))
	mux.Handle("POST /check-in", anyRole(http.HandlerFunc(ui.CheckInSubmit)))
	mux.Handle("GET /admin", adminOnly(http.HandlerFunc(ui.Admin)))
}

// templateFS picks the template source: disk in dev mode for hot reloading,
// the embedded copy otherwise.
func templateFS(services RouterServices, logger *slog.Logger) fs.FS {
	if services.TemplateFS != nil {
		return services.TemplateFS
	}
	if services.IsDev {
		return os.DirFS(TemplatePathFromRoot)
	}
	sub, err := fs.Sub(checkinweb.TemplateFS, TemplatePathFromRoot)
	if err != nil {
		logger.Error("failed to create sub-filesystem for templates; falling back to disk", "error", err)
		return os.DirFS(TemplatePathFromRoot)
	}
	return sub
}

// setupUIHandlers creates UI handlers with the template renderer.
func setupUIHandlers(services RouterServices, logger *slog.Logger) *UIHandlers {
	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: templateFS(services, logger),
		DevMode:    services.IsDev,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("failed to create template renderer", slog.Any("error", err))
		return nil
	}

	return &UIHandlers{
		T:       tr,
		CheckIn: services.CheckIn,
		Signup:  services.Signup,
		IsDev:   services.IsDev,
		Logger:  logger,
	}
}

// staticHandler serves /static/* from disk in dev mode and from the embedded FS otherwise.
func staticHandler(isDev bool, logger *slog.Logger) http.Handler {
	if isDev {
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.Dir(StaticPathFromRoot))), false)
	}

	staticSub, err := fs.Sub(checkinweb.StaticFS, StaticPathFromRoot)
	if err != nil {
		logger.Error("failed to create sub-filesystem for static assets", "error", err)
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.Dir(StaticPathFromRoot))), false)
	}
	return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))), true)
}

// staticWithCacheHeaders wraps a static file handler to add cache headers.
// Embedded assets change only with a deploy; disk assets must never be cached.
func staticWithCacheHeaders(handler http.Handler, cacheable bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cacheable {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		} else {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		}
		handler.ServeHTTP(w, r)
	})
}
