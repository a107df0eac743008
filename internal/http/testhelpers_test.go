package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domainauth "github.com/clientcheckin/checkin-web/internal/domain/auth"
	authmocks "github.com/clientcheckin/checkin-web/internal/mocks/auth"
	"github.com/clientcheckin/checkin-web/internal/ports"
	"github.com/clientcheckin/checkin-web/internal/service"
	"github.com/clientcheckin/checkin-web/internal/session"
	"github.com/clientcheckin/checkin-web/internal/testutil"
)

// RequireTemplateRenderer creates a TemplateRenderer for tests, skipping the test if templates are not available.
func RequireTemplateRenderer(t *testing.T) *TemplateRenderer {
	t.Helper()
	if _, err := os.Stat(TemplatePathFromTest); os.IsNotExist(err) {
		t.Skip("Templates not available, skipping")
	}
	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: os.DirFS(TemplatePathFromTest),
	})
	require.NoError(t, err)
	return tr
}

// ContainsAll checks if a string contains all the given substrings.
func ContainsAll(s string, subs []string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

// authEnv is a real AuthService over in-memory doubles.
type authEnv struct {
	Svc      *service.AuthService
	Hub      *session.Hub
	Sessions *authmocks.MemorySessionStore
	Fetcher  *authmocks.StaticProfileFetcher
	Provider *authmocks.MockAuthProvider
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()
	fetcher := &authmocks.StaticProfileFetcher{
		Profiles: map[string]domainauth.UserProfile{},
		Errors:   map[string]error{},
	}
	hub, err := session.NewHub(session.HubOptions{Fetcher: fetcher, FetchTimeout: time.Second})
	require.NoError(t, err)
	t.Cleanup(hub.Close)

	sessions := authmocks.NewMemorySessionStore()
	provider := authmocks.NewMockAuthProvider()
	return &authEnv{
		Svc: service.NewAuthService(service.AuthServiceOptions{
			Provider: provider,
			Sessions: sessions,
			Hub:      hub,
		}),
		Hub:      hub,
		Sessions: sessions,
		Fetcher:  fetcher,
		Provider: provider,
	}
}

// signIn stores a session whose token resolves to p and returns its cookie.
// Call before serving requests; the fetcher tables are not guarded.
func (e *authEnv) signIn(t *testing.T, token string, p domainauth.UserProfile) *http.Cookie {
	t.Helper()
	e.Fetcher.Profiles[token] = p
	return e.storeSession(t, token)
}

// signInFailing stores a session whose profile fetch fails with err.
func (e *authEnv) signInFailing(t *testing.T, token string, err error) *http.Cookie {
	t.Helper()
	e.Fetcher.Errors[token] = err
	return e.storeSession(t, token)
}

func (e *authEnv) storeSession(t *testing.T, token string) *http.Cookie {
	t.Helper()
	sess := domainauth.Session{
		ID:        "sess-" + token,
		Subject:   "sub-" + token,
		Email:     token + "@example.com",
		Name:      "User " + token,
		Token:     token,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, e.Sessions.Save(context.Background(), sess))
	return &http.Cookie{Name: SessionCookieName, Value: sess.ID}
}

// resolve waits until the session's profile has settled.
func (e *authEnv) resolve(t *testing.T, c *http.Cookie) {
	t.Helper()
	sess, err := e.Svc.GetSession(context.Background(), c.Value)
	require.NoError(t, err)
	scope, err := e.Svc.Scope(*sess)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st, err := scope.Store().Await(ctx)
	require.NoError(t, err)
	require.True(t, st.IsSettled())
}

// routerDeps configures newTestRouter.
type routerDeps struct {
	CheckInAPI ports.CheckInAPI
	SignupAPI  ports.SignupAPI
}

func newTestRouter(t *testing.T, env *authEnv, deps routerDeps) http.Handler {
	t.Helper()
	if _, err := os.Stat(TemplatePathFromTest); os.IsNotExist(err) {
		t.Skip("Templates not available, skipping")
	}
	services := RouterServices{
		TemplateFS: os.DirFS(TemplatePathFromTest),
		GuardWait:  time.Second,
	}
	if env != nil {
		services.Auth = env.Svc
	}
	if deps.CheckInAPI != nil {
		services.CheckIn = service.NewCheckInService(service.CheckInServiceOptions{API: deps.CheckInAPI})
	}
	if deps.SignupAPI != nil {
		services.Signup = service.NewSignupService(deps.SignupAPI)
	}
	return NewRouter(services)
}

// browserRequest builds a request the way a browser sends it.
func browserRequest(method, target string, body string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	return req
}

// htmxRequest is browserRequest with the htmx headers set.
func htmxRequest(method, target string, body string) *http.Request {
	req := browserRequest(method, target, body)
	req.Header.Set("Hx-Request", "true")
	req.Header.Set("Hx-Current-Url", "http://example.com"+strings.SplitN(target, "?", 2)[0])
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func volunteerProfile() domainauth.UserProfile { return testutil.NewProfile().Build() }

func adminProfile() domainauth.UserProfile {
	return testutil.NewProfile().
		WithEmail("admin@example.com").
		WithName("Test Admin").
		WithRoles("admin", "volunteer").
		WithActiveRole("admin").
		Build()
}

// volunteerWithAdmin is granted admin but currently active as volunteer.
func volunteerWithAdmin() domainauth.UserProfile {
	return testutil.NewProfile().
		WithRoles("volunteer", "admin").
		WithActiveRole("volunteer").
		Build()
}

// requestWithProfile returns r carrying an admitted session and profile.
func requestWithProfile(r *http.Request, p domainauth.UserProfile) *http.Request {
	ctx := SetSessionInContext(r.Context(), &domainauth.Session{ID: "sess-ctx", Token: "tok-ctx"})
	ctx = SetProfileInContext(ctx, p)
	ctx = context.WithValue(ctx, browserRequestKey{}, isBrowserRequest(r))
	return r.WithContext(ctx)
}
