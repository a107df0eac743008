package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/clientcheckin/checkin-web/config"
	"github.com/clientcheckin/checkin-web/internal/adapters/devauth"
	"github.com/clientcheckin/checkin-web/internal/adapters/oidc"
	"github.com/clientcheckin/checkin-web/internal/observability/statsd"
	"github.com/clientcheckin/checkin-web/internal/ports"
	"github.com/clientcheckin/checkin-web/internal/service"
	"github.com/clientcheckin/checkin-web/internal/session"
)

// AuthConfig contains configuration for auth service.
type AuthConfig struct {
	Auth     config.AuthConfig
	Session  config.SessionConfig
	Sessions ports.SessionStore
	Hub      *session.Hub
	Logger   *slog.Logger
	Metrics  statsd.Sink
}

// BuildAuthService creates an auth service based on the configured auth mode.
func BuildAuthService(ctx context.Context, cfg AuthConfig) (*service.AuthService, error) {
	if cfg.Sessions == nil {
		return nil, errors.New("auth service requires a session store")
	}
	if cfg.Hub == nil {
		return nil, errors.New("auth service requires a session hub")
	}

	provider, err := buildAuthProvider(ctx, cfg.Auth)
	if err != nil {
		return nil, err
	}
	if cfg.Logger != nil {
		cfg.Logger.InfoContext(ctx, "auth provider ready", "mode", cfg.Auth.Mode)
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider: provider,
		Sessions: cfg.Sessions,
		Hub:      cfg.Hub,
		Config: service.AuthServiceConfig{
			SessionTTL: cfg.Session.TTL,
			Logger:     cfg.Logger,
			Metrics:    cfg.Metrics,
		},
	}), nil
}

//nolint:ireturn // the provider is chosen by mode.
func buildAuthProvider(ctx context.Context, cfg config.AuthConfig) (ports.AuthProvider, error) {
	switch cfg.Mode {
	case config.AuthModeMock:
		prov, err := devauth.NewProvider(devauth.Config{
			Subject:         cfg.DevAuth.Subject,
			Email:           cfg.DevAuth.Email,
			Name:            cfg.DevAuth.Name,
			SigningKey:      cfg.DevAuth.SigningKey,
			SessionDuration: cfg.DevAuth.SessionDuration,
		})
		if err != nil {
			return nil, fmt.Errorf("create dev auth provider: %w", err)
		}
		return prov, nil

	case config.AuthModeOAuth:
		prov, err := oidc.NewProvider(ctx, oidc.ProviderConfig{
			ClientID:     cfg.OAuth.ClientID,
			ClientSecret: cfg.OAuth.ClientSecret,
			RedirectURL:  cfg.OAuth.RedirectURL,
			Scope:        cfg.OAuth.Scope,
			DiscoveryURL: cfg.OAuth.DiscoveryURL,
			Bearer:       oidc.BearerSource(cfg.OAuth.BearerToken),
		})
		if err != nil {
			return nil, fmt.Errorf("create oidc provider: %w", err)
		}
		return prov, nil

	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Mode)
	}
}
