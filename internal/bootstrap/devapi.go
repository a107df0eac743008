package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/clientcheckin/checkin-web/config"
	"github.com/clientcheckin/checkin-web/internal/devapi"
	httpx "github.com/clientcheckin/checkin-web/internal/http"
)

// NewDevAPIServer seeds an in-memory check-in API and builds its server.
// It is not started.
func NewDevAPIServer(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*http.Server, error) {
	store := devapi.NewStore(nil)
	if err := devapi.Seed(ctx, store, logger); err != nil {
		return nil, fmt.Errorf("seed devapi: %w", err)
	}
	srv, err := devapi.NewServer(devapi.ServerOptions{
		Store:      store,
		SigningKey: cfg.Auth.DevAuth.SigningKey,
		Roles:      cfg.DevAPI.Roles,
		InviteCode: cfg.DevAPI.InviteCode,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build devapi: %w", err)
	}
	httpCfg := cfg.HTTP
	httpCfg.Addr = cfg.DevAPI.Addr
	return newServer(httpx.Recover(logger)(srv.Handler()), httpCfg), nil
}
