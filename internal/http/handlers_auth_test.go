package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/clientcheckin/checkin-web/internal/domain/auth"
	"github.com/clientcheckin/checkin-web/internal/domain/model"
	"github.com/clientcheckin/checkin-web/internal/mocks"
	"github.com/clientcheckin/checkin-web/internal/ports"
	"github.com/clientcheckin/checkin-web/internal/testutil"
)

func cookieByName(t *testing.T, rec interface{ Result() *http.Response }, name string) *http.Cookie {
	t.Helper()
	resp := rec.Result()
	t.Cleanup(func() { _ = resp.Body.Close() })
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthLogin_SetsFlowCookies(t *testing.T) {
	env := newAuthEnv(t)
	h := newTestRouter(t, env, routerDeps{})

	rec := serve(h, browserRequest(http.MethodGet, "/auth/login?redirect_uri=/admin", ""))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://mock-idp/auth", rec.Header().Get("Location"))

	state := cookieByName(t, rec, stateCookieName)
	require.NotNil(t, state)
	assert.Equal(t, "state-1", state.Value)
	assert.True(t, state.HttpOnly)
	assert.Equal(t, oauthCookieMaxAgeSecs, state.MaxAge)

	nonce := cookieByName(t, rec, nonceCookieName)
	require.NotNil(t, nonce)
	assert.Equal(t, "nonce-1", nonce.Value)

	target := cookieByName(t, rec, postLoginRedirectName)
	require.NotNil(t, target)
	assert.Equal(t, "/admin", target.Value)
}

func TestAuthLogin_RejectsOffsiteRedirect(t *testing.T) {
	env := newAuthEnv(t)
	h := newTestRouter(t, env, routerDeps{})

	rec := serve(h, browserRequest(http.MethodGet, "/auth/login?redirect_uri=https://evil.example.net/", ""))

	target := cookieByName(t, rec, postLoginRedirectName)
	require.NotNil(t, target)
	assert.Equal(t, "/", target.Value)
}

func callbackRequest(query string, cookies ...*http.Cookie) *http.Request {
	req := browserRequest(http.MethodGet, "/auth/callback?"+query, "")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func TestAuthCallback_Success(t *testing.T) {
	env := newAuthEnv(t)
	h := newTestRouter(t, env, routerDeps{})

	rec := serve(h, callbackRequest("code=abc&state=state-1",
		&http.Cookie{Name: stateCookieName, Value: "state-1"},
		&http.Cookie{Name: nonceCookieName, Value: "nonce-1"},
		&http.Cookie{Name: postLoginRedirectName, Value: "/admin"},
	))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))
	sessCookie := cookieByName(t, rec, SessionCookieName)
	require.NotNil(t, sessCookie)
	assert.NotEmpty(t, sessCookie.Value)
	assert.Positive(t, sessCookie.MaxAge)
	assert.Equal(t, 1, env.Sessions.Len())

	sess, err := env.Svc.GetSession(context.Background(), sessCookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "mock-token", sess.Token)
}

func TestAuthCallback_DefaultTarget(t *testing.T) {
	env := newAuthEnv(t)
	h := newTestRouter(t, env, routerDeps{})

	rec := serve(h, callbackRequest("code=abc&state=state-1",
		&http.Cookie{Name: stateCookieName, Value: "state-1"},
		&http.Cookie{Name: nonceCookieName, Value: "nonce-1"},
	))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, defaultPostLoginTarget, rec.Header().Get("Location"))
}

func TestAuthCallback_Rejections(t *testing.T) {
	state := &http.Cookie{Name: stateCookieName, Value: "state-1"}
	nonce := &http.Cookie{Name: nonceCookieName, Value: "nonce-1"}
	tests := []struct {
		name    string
		req     *http.Request
		errCode string
	}{
		{"missing code", callbackRequest("state=state-1", state, nonce), "missing_code"},
		{"missing state", callbackRequest("code=abc", state, nonce), "missing_state"},
		{"state mismatch", callbackRequest("code=abc&state=state-2", state, nonce), "invalid_state"},
		{"no state cookie", callbackRequest("code=abc&state=state-1", nonce), "invalid_state"},
		{"no nonce cookie", callbackRequest("code=abc&state=state-1", state), "missing_nonce"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newAuthEnv(t)
			rec := serve(newTestRouter(t, env, routerDeps{}), tt.req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.errCode)
			assert.Equal(t, 0, env.Sessions.Len())
		})
	}
}

func TestAuthCallback_ExchangeFailure(t *testing.T) {
	env := newAuthEnv(t)
	env.Provider.ExchangeFunc = func(context.Context, ports.ExchangeInput) (domainauth.Identity, error) {
		return domainauth.Identity{}, errors.New("token endpoint unavailable")
	}
	h := newTestRouter(t, env, routerDeps{})

	rec := serve(h, callbackRequest("code=abc&state=state-1",
		&http.Cookie{Name: stateCookieName, Value: "state-1"},
		&http.Cookie{Name: nonceCookieName, Value: "nonce-1"},
	))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "login_completion_failed")
	assert.NotContains(t, rec.Body.String(), "token endpoint")
}

func TestAuthCallback_ProviderError(t *testing.T) {
	env := newAuthEnv(t)
	h := newTestRouter(t, env, routerDeps{})

	rec := serve(h, callbackRequest("error=access_denied&error_description=nope"))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?notice=unauthorized", rec.Header().Get("Location"))
}

func TestAuthLogout(t *testing.T) {
	env := newAuthEnv(t)
	h := newTestRouter(t, env, routerDeps{})
	cookie := env.signIn(t, "vol-token", volunteerProfile())
	env.resolve(t, cookie)

	req := browserRequest(http.MethodPost, "/auth/logout", "redirect_uri=/admin")
	req.AddCookie(cookie)
	rec := serve(h, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/signed-out?redirect_uri=%2Fadmin", rec.Header().Get("Location"))
	assert.Equal(t, 0, env.Sessions.Len())
	cleared := cookieByName(t, rec, SessionCookieName)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}

func TestAuthLogout_HTMXAndJSON(t *testing.T) {
	env := newAuthEnv(t)
	h := newTestRouter(t, env, routerDeps{})

	rec := serve(h, htmxRequest(http.MethodPost, "/auth/logout", ""))
	assert.Equal(t, "/auth/signed-out?redirect_uri=%2Fcheck-in", rec.Header().Get("Hx-Redirect"))

	req := browserRequest(http.MethodPost, "/auth/logout", "")
	req.Header.Set("Accept", "application/json")
	rec = serve(h, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redirect_to":"/auth/signed-out?redirect_uri=%2Fcheck-in"`)
}

func TestAuthStatus(t *testing.T) {
	env := newAuthEnv(t)
	h := newTestRouter(t, env, routerDeps{})

	rec := serve(h, browserRequest(http.MethodGet, "/auth/status", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	var anon statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &anon))
	assert.False(t, anon.IsAuthenticated)
	assert.Nil(t, anon.User)

	cookie := env.signIn(t, "admin-token", adminProfile())
	req := browserRequest(http.MethodGet, "/auth/status", "")
	req.AddCookie(cookie)
	rec = serve(h, req)

	var got statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.IsAuthenticated)
	require.NotNil(t, got.User)
	assert.Equal(t, "admin@example.com", got.User.Email)
	assert.Equal(t, "admin", got.User.ActiveRole)
	assert.ElementsMatch(t, []string{"admin", "volunteer"}, got.User.Roles)
}

func TestAuthStatus_FailedProfileIsAnonymous(t *testing.T) {
	env := newAuthEnv(t)
	h := newTestRouter(t, env, routerDeps{})
	cookie := env.signInFailing(t, "bad-token", errors.New("connection reset"))

	req := browserRequest(http.MethodGet, "/auth/status", "")
	req.AddCookie(cookie)
	rec := serve(h, req)

	var got statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.False(t, got.IsAuthenticated)
}

// adminRouter wires a router whose dashboard lists records for any token.
func adminRouter(t *testing.T, env *authEnv) http.Handler {
	t.Helper()
	api := mocks.NewMockCheckInAPI(gomock.NewController(t))
	api.EXPECT().ListCheckIns(gomock.Any(), gomock.Any()).Return([]model.CheckIn{
		testutil.NewCheckIn("1", "C1", "Ada", "Lovelace"),
	}, nil).AnyTimes()
	return newTestRouter(t, env, routerDeps{CheckInAPI: api})
}

func getAdmin(h http.Handler, cookie *http.Cookie) int {
	req := browserRequest(http.MethodGet, "/admin", "")
	req.AddCookie(cookie)
	return serve(h, req).Code
}

func TestSwitchRole_UnlocksAdmin(t *testing.T) {
	env := newAuthEnv(t)
	h := adminRouter(t, env)
	cookie := env.signIn(t, "dual-token", volunteerWithAdmin())

	require.Equal(t, http.StatusForbidden, getAdmin(h, cookie))

	req := browserRequest(http.MethodPost, "/profile/role", url.Values{"role": {"admin"}, "redirect_uri": {"/admin"}}.Encode())
	req.AddCookie(cookie)
	rec := serve(h, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))

	assert.Equal(t, http.StatusOK, getAdmin(h, cookie))
}

func TestSwitchRole_HTMX(t *testing.T) {
	env := newAuthEnv(t)
	h := adminRouter(t, env)
	cookie := env.signIn(t, "dual-token", volunteerWithAdmin())

	req := htmxRequest(http.MethodPost, "/profile/role", "role=admin")
	req.Header.Set("Referer", "http://example.com/check-in?barcode=1")
	req.AddCookie(cookie)
	rec := serve(h, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/check-in?barcode=1", rec.Header().Get("Hx-Redirect"))
	assert.Contains(t, rec.Header().Get("Hx-Trigger"), "Switched to Admin")
}

func TestSwitchRole_JSON(t *testing.T) {
	env := newAuthEnv(t)
	h := adminRouter(t, env)
	cookie := env.signIn(t, "dual-token", volunteerWithAdmin())

	req := browserRequest(http.MethodPost, "/profile/role", "role=admin")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.AddCookie(cookie)
	rec := serve(h, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		ActiveRole    string   `json:"activeRole"`
		EligibleRoles []string `json:"eligibleRoles"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "admin", got.ActiveRole)
}

func TestSwitchRole_IneligibleKeepsRole(t *testing.T) {
	env := newAuthEnv(t)
	h := adminRouter(t, env)
	cookie := env.signIn(t, "vol-token", volunteerProfile())

	req := htmxRequest(http.MethodPost, "/profile/role", "role=admin")
	req.AddCookie(cookie)
	rec := serve(h, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Hx-Trigger"), "not available")
	assert.Equal(t, http.StatusForbidden, getAdmin(h, cookie))
}

func TestSwitchRole_UnknownRole(t *testing.T) {
	env := newAuthEnv(t)
	h := adminRouter(t, env)
	cookie := env.signIn(t, "vol-token", volunteerProfile())

	req := browserRequest(http.MethodPost, "/profile/role", "role=superuser")
	req.Header.Set("Accept", "application/json")
	req.AddCookie(cookie)
	rec := serve(h, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "role_not_eligible")
}

func TestSwitchRole_RequiresSession(t *testing.T) {
	env := newAuthEnv(t)
	h := adminRouter(t, env)

	rec := serve(h, browserRequest(http.MethodPost, "/profile/role", "role=admin"))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/login")
}

func TestRefresh_RevertsSwitchedRole(t *testing.T) {
	env := newAuthEnv(t)
	h := adminRouter(t, env)
	cookie := env.signIn(t, "dual-token", volunteerWithAdmin())
	env.resolve(t, cookie)

	_, err := env.Svc.SwitchRole(context.Background(), cookie.Value, domainauth.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, getAdmin(h, cookie))

	req := browserRequest(http.MethodPost, "/auth/refresh", "redirect_uri=/admin")
	req.AddCookie(cookie)
	rec := serve(h, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))

	assert.Equal(t, http.StatusForbidden, getAdmin(h, cookie))
	assert.GreaterOrEqual(t, env.Fetcher.Calls(), 2)
}
