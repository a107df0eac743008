package httpx

import (
	"context"

	domainauth "github.com/clientcheckin/checkin-web/internal/domain/auth"
)

// Unexported context key types avoid collisions across packages.
type (
	sessionKey struct{}
	profileKey struct{}
)

// SetSessionInContext returns a child context that carries the given session.
// If session is nil, the original ctx is returned unchanged.
func SetSessionInContext(ctx context.Context, session *domainauth.Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetSessionFromContext returns the user session and whether one is present.
func GetSessionFromContext(ctx context.Context) (*domainauth.Session, bool) {
	if session, ok := ctx.Value(sessionKey{}).(*domainauth.Session); ok && session != nil {
		return session, true
	}
	return nil, false
}

// SetProfileInContext records the profile the access guard admitted the request with.
func SetProfileInContext(ctx context.Context, p domainauth.UserProfile) context.Context {
	if p.IsZero() {
		return ctx
	}
	return context.WithValue(ctx, profileKey{}, p)
}

// GetProfileFromContext returns the admitted profile, if any.
func GetProfileFromContext(ctx context.Context) (domainauth.UserProfile, bool) {
	p, ok := ctx.Value(profileKey{}).(domainauth.UserProfile)
	if !ok || p.IsZero() {
		return domainauth.UserProfile{}, false
	}
	return p, true
}

// bearerToken returns the API bearer token of the request's session.
func bearerToken(ctx context.Context) string {
	if s, ok := GetSessionFromContext(ctx); ok {
		return s.Token
	}
	return ""
}
