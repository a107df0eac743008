package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/clientcheckin/checkin-web/config"
	"github.com/clientcheckin/checkin-web/internal/adapters/checkinapi"
	redisadapter "github.com/clientcheckin/checkin-web/internal/adapters/redis"
	"github.com/clientcheckin/checkin-web/internal/observability/statsd"
	"github.com/clientcheckin/checkin-web/internal/service"
	"github.com/clientcheckin/checkin-web/internal/session"
)

// ServiceContainer holds the services the HTTP server is built from.
type ServiceContainer struct {
	Auth    *service.AuthService
	CheckIn *service.CheckInService
	Signup  *service.SignupService // nil when SIGNUP_URL is unset
	Hub     *session.Hub
	Health  *redisadapter.SessionStore
	Metrics statsd.Sink

	statsd *statsd.Client
}

// Close releases the metrics connection and every session scope.
func (c ServiceContainer) Close() error {
	if c.Hub != nil {
		c.Hub.Close()
	}
	if c.statsd != nil {
		return c.statsd.Close()
	}
	return nil
}

// ServiceDeps groups the infrastructure services are built on.
type ServiceDeps struct {
	Config      *config.AppConfig
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) *statsd.Client {
	client, err := statsd.NewClient(statsd.Config{
		Enabled:    cfg.Metrics.IsEnabled(),
		Address:    cfg.Metrics.StatsdAddress,
		Prefix:     cfg.Metrics.Prefix,
		Logger:     logger,
		GlobalTags: cfg.Metrics.Tags,
	})
	if err != nil {
		logger.Warn("statsd unavailable, metrics disabled", "error", err)
		disabled, _ := statsd.NewClient(statsd.Config{Logger: logger})
		return disabled
	}
	if client.Enabled() {
		logger.Info("statsd metrics enabled", "addr", cfg.Metrics.StatsdAddress)
	}
	return client
}

// NewServices builds the API client, session hub, auth, check-in and signup services.
func NewServices(ctx context.Context, deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps require an AppConfig")
	}
	if deps.RedisClient == nil {
		return ServiceContainer{}, errors.New("service deps require a redis client")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metricsClient := buildObservability(logger, cfg.Observability)

	api, err := checkinapi.NewClient(checkinapi.Config{
		BaseURL:   cfg.API.BaseURL,
		SignupURL: cfg.API.SignupURL,
		Timeout:   cfg.API.Timeout,
		Logger:    logger,
		Metrics:   metricsClient,
	})
	if err != nil {
		return ServiceContainer{}, errors.Join(fmt.Errorf("build check-in API client: %w", err), metricsClient.Close())
	}

	sessions, err := redisadapter.NewSessionStore(redisadapter.SessionStoreOptions{
		Client: deps.RedisClient,
		Prefix: cfg.Redis.KeyPrefix,
		MaxTTL: cfg.Session.TTL,
	})
	if err != nil {
		return ServiceContainer{}, errors.Join(fmt.Errorf("build session store: %w", err), metricsClient.Close())
	}

	hub, err := session.NewHub(session.HubOptions{
		Fetcher:       api,
		FetchTimeout:  cfg.Session.FetchTimeout,
		IdleTTL:       cfg.Session.IdleTTL,
		SweepInterval: cfg.Session.SweepInterval,
		Logger:        logger,
		Metrics:       metricsClient,
	})
	if err != nil {
		return ServiceContainer{}, errors.Join(fmt.Errorf("build session hub: %w", err), metricsClient.Close())
	}

	container := ServiceContainer{
		Hub:     hub,
		Health:  sessions,
		Metrics: metricsClient,
		statsd:  metricsClient,
	}

	container.Auth, err = BuildAuthService(ctx, AuthConfig{
		Auth:     cfg.Auth,
		Session:  cfg.Session,
		Sessions: sessions,
		Hub:      hub,
		Logger:   logger,
		Metrics:  metricsClient,
	})
	if err != nil {
		return ServiceContainer{}, errors.Join(err, container.Close())
	}

	container.CheckIn = service.NewCheckInService(service.CheckInServiceOptions{API: api, Logger: logger})
	if cfg.API.SignupURL != "" {
		container.Signup = service.NewSignupService(api)
	} else {
		logger.Info("signup disabled: SIGNUP_URL not set")
	}

	return container, nil
}

// ServiceOrchestrationConfig contains everything RunServicesWithShutdown starts.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

type namedServer struct {
	name   string
	server *http.Server
}

// RunServicesWithShutdown runs the enabled services until ctx is cancelled or
// one of them fails, then shuts every server down.
func RunServicesWithShutdown(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabledServices, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}

	var servers []namedServer
	if enabledServices[config.ServiceModeDevAPI] {
		devServer, devErr := NewDevAPIServer(ctx, cfg.Config, logger)
		if devErr != nil {
			return devErr
		}
		servers = append(servers, namedServer{name: string(config.ServiceModeDevAPI), server: devServer})
	}
	if enabledServices[config.ServiceModeHTTP] {
		servers = append(servers, namedServer{
			name: string(config.ServiceModeHTTP),
			server: NewHTTPServer(&HTTPServerConfig{
				Config:   cfg.Config,
				Services: cfg.Services,
				Logger:   logger,
			}),
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range servers {
		g.Go(func() error { return serveHTTP(logger, s.name, s.server) })
	}
	if cfg.Services.Hub != nil {
		g.Go(func() error { return cfg.Services.Hub.Run(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown initiated")
		var errs []error
		for _, s := range servers {
			if shutdownErr := ShutdownHTTPServer(ShutdownConfig{
				Context: context.WithoutCancel(gctx),
				Server:  s.server,
				Name:    s.name,
				Timeout: cfg.Config.HTTP.ShutdownTimeout,
				Logger:  logger,
			}); shutdownErr != nil {
				errs = append(errs, fmt.Errorf("shutdown %s server: %w", s.name, shutdownErr))
			}
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("all services stopped")
	return nil
}
