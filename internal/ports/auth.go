package ports

// Package ports defines interfaces (hexagonal ports) for auth and upstream API behavior.
// Implementations live in internal/adapters; orchestration in internal/service and internal/session.

import (
	"context"

	domainauth "github.com/clientcheckin/checkin-web/internal/domain/auth"
)

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
}

// AuthProvider initiates and completes an authentication flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the identity
	// handle including the bearer token used against the check-in API.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// SessionStore persists and retrieves user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// ProfileFetcher loads the application profile for a bearer token.
// Errors are *errors.AppError values classified as network, unauthenticated,
// forbidden, not_found or malformed.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, token string) (domainauth.UserProfile, error)
}
