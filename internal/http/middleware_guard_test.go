package httpx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/clientcheckin/checkin-web/internal/domain/auth"
	apperrors "github.com/clientcheckin/checkin-web/internal/errors"
)

// guardedHandler serves "admitted <active role>" behind a guard requiring req.
func guardedHandler(t *testing.T, env *authEnv, req domainauth.Requirement, wait time.Duration) http.Handler {
	t.Helper()
	guard := NewGuard(GuardOptions{
		Auth: env.Svc,
		UI:   &UIHandlers{T: RequireTemplateRenderer(t)},
		Wait: wait,
	})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := GetProfileFromContext(r.Context())
		require.True(t, ok, "admitted requests carry the profile")
		_, ok = GetSessionFromContext(r.Context())
		require.True(t, ok, "admitted requests carry the session")
		_, _ = io.WriteString(w, "admitted "+p.ActiveRole().String())
	})
	return BrowserDetection()(guard.Require(req)(next))
}

func adminGuard(t *testing.T, env *authEnv) http.Handler {
	return guardedHandler(t, env, domainauth.RequireActiveRole(domainauth.RoleAdmin), time.Second)
}

func TestGuard_NoCookieRedirectsToLogin(t *testing.T) {
	h := adminGuard(t, newAuthEnv(t))

	rec := serve(h, browserRequest(http.MethodGet, "/admin?page=2", ""))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/login", loc.Path)
	assert.Equal(t, "/admin?page=2", loc.Query().Get("redirect_uri"))
	assert.Empty(t, loc.Query().Get("notice"))
}

func TestGuard_NoCookieAPIRequest(t *testing.T) {
	h := adminGuard(t, newAuthEnv(t))

	req := browserRequest(http.MethodGet, "/admin", "")
	req.Header.Set("Accept", "application/json")
	rec := serve(h, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "authentication_required")
}

func TestGuard_NoCookieHTMXRedirect(t *testing.T) {
	h := adminGuard(t, newAuthEnv(t))

	rec := serve(h, htmxRequest(http.MethodPost, "/check-in/lookup", "barcode=1"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Hx-Redirect"), "/login")
}

func TestGuard_AdmitsAdmin(t *testing.T) {
	env := newAuthEnv(t)
	h := adminGuard(t, env)
	cookie := env.signIn(t, "admin-token", adminProfile())

	req := browserRequest(http.MethodGet, "/admin", "")
	req.AddCookie(cookie)
	rec := serve(h, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admitted admin", rec.Body.String())
}

func TestGuard_AnyRoleAdmitsVolunteer(t *testing.T) {
	env := newAuthEnv(t)
	h := guardedHandler(t, env, domainauth.AnyRole(), time.Second)
	cookie := env.signIn(t, "vol-token", volunteerProfile())

	req := browserRequest(http.MethodGet, "/check-in", "")
	req.AddCookie(cookie)
	rec := serve(h, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admitted volunteer", rec.Body.String())
}

func TestGuard_DeniesVolunteerOnAdmin(t *testing.T) {
	env := newAuthEnv(t)
	h := adminGuard(t, env)
	cookie := env.signIn(t, "vol-token", volunteerProfile())

	req := browserRequest(http.MethodGet, "/admin", "")
	req.AddCookie(cookie)
	rec := serve(h, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Access Denied")
	assert.Contains(t, rec.Body.String(), "Ask an administrator for access.")
	assert.Equal(t, 1, env.Sessions.Len(), "a denied session is kept")
}

func TestGuard_DeniedOffersRoleSwitch(t *testing.T) {
	env := newAuthEnv(t)
	h := adminGuard(t, env)
	cookie := env.signIn(t, "dual-token", volunteerWithAdmin())

	req := browserRequest(http.MethodGet, "/admin", "")
	req.AddCookie(cookie)
	rec := serve(h, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Try switching roles")
}

func TestGuard_DeniedHTMXSwaps(t *testing.T) {
	env := newAuthEnv(t)
	h := adminGuard(t, env)
	cookie := env.signIn(t, "vol-token", volunteerProfile())

	req := htmxRequest(http.MethodGet, "/admin", "")
	req.AddCookie(cookie)
	rec := serve(h, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Access Denied")
	assert.NotContains(t, rec.Body.String(), "<html")
}

func TestGuard_DeniedAPIRequest(t *testing.T) {
	env := newAuthEnv(t)
	h := adminGuard(t, env)
	cookie := env.signIn(t, "vol-token", volunteerProfile())

	req := browserRequest(http.MethodGet, "/admin", "")
	req.Header.Set("Accept", "application/json")
	req.AddCookie(cookie)
	rec := serve(h, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient_permissions")
}

func TestGuard_FetchFailureSignsOut(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		notice domainauth.Notice
	}{
		{"network", apperrors.Network(errors.New("connection refused"), "fetch profile"), domainauth.NoticeNetworkFailure},
		{"unauthenticated", apperrors.FromStatus(http.StatusUnauthorized, ""), domainauth.NoticeUnauthorized},
		{"malformed", apperrors.Malformed(errors.New("bad json"), "decode profile"), domainauth.NoticeMalformedProfile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newAuthEnv(t)
			h := adminGuard(t, env)
			cookie := env.signInFailing(t, "bad-token", tt.err)

			req := browserRequest(http.MethodGet, "/admin", "")
			req.AddCookie(cookie)
			rec := serve(h, req)

			assert.Equal(t, http.StatusSeeOther, rec.Code)
			loc, err := url.Parse(rec.Header().Get("Location"))
			require.NoError(t, err)
			assert.Equal(t, string(tt.notice), loc.Query().Get("notice"))
			assert.Equal(t, 0, env.Sessions.Len(), "rejected session is deleted")
			assert.Contains(t, rec.Header().Get("Set-Cookie"), SessionCookieName+"=;")
		})
	}
}

func TestGuard_ExpiredSession(t *testing.T) {
	env := newAuthEnv(t)
	h := adminGuard(t, env)
	require.NoError(t, env.Sessions.Save(context.Background(), domainauth.Session{
		ID:        "sess-old",
		Token:     "old-token",
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	req := browserRequest(http.MethodGet, "/admin", "")
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sess-old"})
	rec := serve(h, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "notice=session_expired")
	assert.Equal(t, 0, env.Sessions.Len())
}

func TestGuard_UnknownSession(t *testing.T) {
	env := newAuthEnv(t)
	h := adminGuard(t, env)

	req := browserRequest(http.MethodGet, "/admin", "")
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sess-missing"})
	rec := serve(h, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.NotContains(t, rec.Header().Get("Location"), "notice=")
}

func gatedEnv(t *testing.T) *authEnv {
	t.Helper()
	env := newAuthEnv(t)
	gate := make(chan struct{})
	env.Fetcher.Gate = gate
	t.Cleanup(func() { close(gate) })
	return env
}

func TestGuard_LoadingPage(t *testing.T) {
	env := gatedEnv(t)
	h := guardedHandler(t, env, domainauth.AnyRole(), 20*time.Millisecond)
	cookie := env.signIn(t, "slow-token", volunteerProfile())

	req := browserRequest(http.MethodGet, "/check-in?barcode=12", "")
	req.AddCookie(cookie)
	rec := serve(h, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, loadingRetryAfter, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "Loading your profile")
	assert.Contains(t, rec.Body.String(), `hx-get="/check-in?barcode=12"`)
	assert.Equal(t, 1, env.Sessions.Len(), "a resolving session is kept")
}

func TestGuard_RefreshDuringResolutionKeepsSession(t *testing.T) {
	env := gatedEnv(t)
	h := guardedHandler(t, env, domainauth.AnyRole(), 2*time.Second)
	cookie := env.signIn(t, "slow-token", volunteerProfile())

	req := browserRequest(http.MethodGet, "/check-in", "")
	req.AddCookie(cookie)
	done := make(chan int, 1)
	go func() { done <- serve(h, req).Code }()

	require.Eventually(t, func() bool { return env.Fetcher.Calls() == 1 }, time.Second, time.Millisecond)
	env.Svc.Refresh(context.Background(), cookie.Value)

	select {
	case code := <-done:
		assert.NotEqual(t, http.StatusSeeOther, code, "a refresh is not a sign-in failure")
		assert.Equal(t, http.StatusOK, code)
	case <-time.After(3 * time.Second):
		t.Fatal("guarded request not released by refresh")
	}
	_, err := env.Sessions.Get(context.Background(), cookie.Value)
	require.NoError(t, err, "the persisted session survives a refresh")
	assert.Equal(t, 1, env.Sessions.Len())
}

func TestGuard_LoadingRejectsUnsafeMethods(t *testing.T) {
	env := gatedEnv(t)
	h := guardedHandler(t, env, domainauth.AnyRole(), 20*time.Millisecond)
	cookie := env.signIn(t, "slow-token", volunteerProfile())

	req := htmxRequest(http.MethodPost, "/check-in", "barcode=12")
	req.AddCookie(cookie)
	rec := serve(h, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "profile_loading")
	assert.Contains(t, rec.Header().Get("Hx-Trigger"), "Still loading")
}

func TestGuard_ReevaluatesAfterRoleSwitch(t *testing.T) {
	env := newAuthEnv(t)
	h := adminGuard(t, env)
	cookie := env.signIn(t, "dual-token", volunteerWithAdmin())

	req := browserRequest(http.MethodGet, "/admin", "")
	req.AddCookie(cookie)
	require.Equal(t, http.StatusForbidden, serve(h, req).Code)

	_, err := env.Svc.SwitchRole(context.Background(), cookie.Value, domainauth.RoleAdmin)
	require.NoError(t, err)

	req = browserRequest(http.MethodGet, "/admin", "")
	req.AddCookie(cookie)
	rec := serve(h, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admitted admin", rec.Body.String())
}
