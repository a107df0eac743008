package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/clientcheckin/checkin-web/internal/domain/auth"
	"github.com/clientcheckin/checkin-web/internal/observability/metrics"
	"github.com/clientcheckin/checkin-web/internal/observability/statsd"
	"github.com/clientcheckin/checkin-web/internal/ports"
	"github.com/clientcheckin/checkin-web/internal/session"
)

// DefaultSessionTTL bounds a session when the identity provider reports no expiry.
const DefaultSessionTTL = 8 * time.Hour

// AuthServiceConfig holds optional tuning for AuthService.
type AuthServiceConfig struct {
	SessionTTL time.Duration    // Optional: caps the session lifetime, DefaultSessionTTL when zero
	Logger     *slog.Logger     // Optional: structured logger
	Metrics    statsd.Sink      // Optional: metrics sink
	Now        func() time.Time // Optional: clock override for tests
}

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.AuthProvider
	Sessions ports.SessionStore
	Hub      *session.Hub
	Config   AuthServiceConfig
}

// AuthService coordinates the identity provider, persisted sessions, and the
// per-session profile scopes.
type AuthService struct {
	provider ports.AuthProvider
	sessions ports.SessionStore
	hub      *session.Hub
	ttl      time.Duration
	logger   *slog.Logger
	metrics  statsd.Sink
	now      func() time.Time
}

var (
	// ErrSessionExpired is returned for a persisted session past its expiry.
	ErrSessionExpired = errors.New("session expired")
	// ErrNoSession is returned when the request carries no usable session.
	ErrNoSession = errors.New("no session")
)

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	if opts.Provider == nil || opts.Sessions == nil || opts.Hub == nil {
		panic("auth service requires provider, sessions and hub")
	}
	ttl := opts.Config.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	logger := opts.Config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Config.Now
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		provider: opts.Provider,
		sessions: opts.Sessions,
		hub:      opts.Hub,
		ttl:      ttl,
		logger:   logger.With("component", "auth_service"),
		metrics:  opts.Config.Metrics,
		now:      now,
	}
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates an authentication flow and returns the provider auth URL with state and nonce.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}

	return &BeginLoginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLoginResult contains the result of completing a login flow.
type CompleteLoginResult struct {
	Session domainauth.Session
}

// CompleteLogin exchanges the code for an identity and persists a session
// carrying the bearer token. The profile is resolved on the next request.
func (s *AuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*CompleteLoginResult, error) {
	if input.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if input.State == "" {
		return nil, errors.New("state parameter is required")
	}
	if input.Nonce == "" {
		return nil, errors.New("nonce parameter is required")
	}

	identity, err := s.provider.Exchange(ctx, ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	})
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	if identity.Token == "" {
		return nil, errors.New("identity provider returned no bearer token")
	}

	sess := domainauth.Session{
		ID:        generateSessionID(),
		Subject:   identity.Subject,
		Email:     identity.Email,
		Name:      identity.Name,
		Token:     identity.Token,
		ExpiresAt: s.expiry(identity.ExpiresAt),
	}
	if saveErr := s.sessions.Save(ctx, sess); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}

	s.logger.InfoContext(ctx, "login completed", "subject", sess.Subject, "expires_at", sess.ExpiresAt)
	return &CompleteLoginResult{Session: sess}, nil
}

func (s *AuthService) expiry(idpExpiry time.Time) time.Time {
	limit := s.now().Add(s.ttl)
	if idpExpiry.IsZero() || idpExpiry.After(limit) {
		return limit
	}
	return idpExpiry
}

// GetSession retrieves a session by ID.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, errors.Join(ErrNoSession, fmt.Errorf("get session: %w", err))
	}

	if sess.Expired(s.now()) {
		s.hub.Drop(sessionID)
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(ErrSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, ErrSessionExpired
	}

	return &sess, nil
}

// Scope returns the profile scope for sess, starting resolution when it has none.
func (s *AuthService) Scope(sess domainauth.Session) (*session.Scope, error) {
	scope, err := s.hub.Acquire(sess.ID, sess.Identity())
	if err != nil {
		return nil, fmt.Errorf("acquire session scope: %w", err)
	}
	return scope, nil
}

// Refresh discards the resolved profile so the next request fetches it again.
// A switched active role reverts to the backend default.
func (s *AuthService) Refresh(_ context.Context, sessionID string) {
	if sessionID == "" {
		return
	}
	s.hub.Drop(sessionID)
}

// SwitchRole changes the active role of the session's resolved profile.
func (s *AuthService) SwitchRole(ctx context.Context, sessionID string, target domainauth.Role) (domainauth.UserProfile, error) {
	scope, ok := s.hub.Lookup(sessionID)
	if !ok {
		return domainauth.UserProfile{}, session.ErrNotAuthenticated
	}

	from := ""
	if p, has := scope.Store().Profile(); has {
		from = p.ActiveRole().String()
	}
	next, err := scope.Store().SwitchActiveRole(target)
	metrics.EmitRoleSwitch(s.metrics, from, target.String(), err)
	if err != nil {
		return domainauth.UserProfile{}, err
	}
	s.logger.InfoContext(ctx, "active role switched", "from", from, "to", target)
	return next, nil
}

// Logout signs the session's scope out and removes the persisted session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	s.hub.SignOut(sessionID)
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Invalidate drops a session the guard rejected, without the sign-out notice.
func (s *AuthService) Invalidate(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}
	s.hub.Drop(sessionID)
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		s.logger.WarnContext(ctx, "failed to delete rejected session", "error", err)
	}
}

// generateSessionID creates a random, URL-safe session ID.
func generateSessionID() string {
	return uuid.New().String()
}
