package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/clientcheckin/checkin-web/internal/domain/auth"
	"github.com/clientcheckin/checkin-web/internal/service"
	"github.com/clientcheckin/checkin-web/internal/session"
)

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	BeginLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (*service.CompleteLoginResult, error)
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
	Scope(sess domainauth.Session) (*session.Scope, error)
	Refresh(ctx context.Context, sessionID string)
	SwitchRole(ctx context.Context, sessionID string, target domainauth.Role) (domainauth.UserProfile, error)
	Logout(ctx context.Context, sessionID string) error
}

var _ AuthServiceInterface = (*service.AuthService)(nil)

// AuthHandlers provides HTTP handlers for authentication and role switching.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	CookieDomain string
	// StatusWait bounds how long /auth/status waits for a profile; DefaultGuardWait when zero.
	StatusWait time.Duration
	Logger     *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *AuthHandlers) cookies() cookieWriter {
	return cookieWriter{Domain: h.CookieDomain}
}

// Login starts the identity provider flow.
// GET /auth/login?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	redirectURI := r.URL.Query().Get("redirect_uri")
	if redirectURI == "" {
		redirectURI = defaultPostLoginTarget
	}
	redirectURI = safeRedirectPath(redirectURI)

	result, err := h.Svc.BeginLogin(r.Context(), redirectURI)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "begin login failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_failed",
			Err:     errors.New("unable to start sign in"),
		})
		return
	}

	cw := h.cookies()
	cw.set(w, r, &http.Cookie{Name: stateCookieName, Value: result.State, MaxAge: oauthCookieMaxAgeSecs})
	cw.set(w, r, &http.Cookie{Name: nonceCookieName, Value: result.Nonce, MaxAge: oauthCookieMaxAgeSecs})
	cw.set(w, r, &http.Cookie{Name: postLoginRedirectName, Value: redirectURI, MaxAge: oauthCookieMaxAgeSecs})

	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback completes the identity provider flow and sets the session cookie.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if idpErr := q.Get("error"); idpErr != "" {
		h.logger().WarnContext(r.Context(), "identity provider returned an error",
			"error", idpErr,
			"description", q.Get("error_description"),
		)
		http.Redirect(w, r, loginURL(string(domainauth.NoticeUnauthorized), ""), http.StatusSeeOther)
		return
	}

	code := q.Get("code")
	state := q.Get("state")
	if code == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_code",
			Err:     errors.New("authorization code is required"),
		})
		return
	}
	if state == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_state",
			Err:     errors.New("state parameter is required"),
		})
		return
	}

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value != state {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_state",
			Err:     errors.New("invalid or missing state parameter"),
		})
		return
	}
	nonceCookie, err := r.Cookie(nonceCookieName)
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_nonce",
			Err:     errors.New("missing nonce parameter"),
		})
		return
	}

	result, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	})
	if err != nil {
		h.logger().ErrorContext(r.Context(), "complete login failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_completion_failed",
			Err:     errors.New("unable to complete sign in"),
		})
		return
	}

	cw := h.cookies()
	cw.set(w, r, &http.Cookie{
		Name:   SessionCookieName,
		Value:  result.Session.ID,
		MaxAge: max(int(time.Until(result.Session.ExpiresAt).Seconds()), 1),
	})
	cw.clear(w, r, stateCookieName)
	cw.clear(w, r, nonceCookieName)

	http.Redirect(w, r, h.postLoginRedirect(w, r), http.StatusFound)
}

// postLoginRedirect returns the stored post-login target and clears its cookie.
func (h *AuthHandlers) postLoginRedirect(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(postLoginRedirectName)
	if err != nil {
		return defaultPostLoginTarget
	}
	h.cookies().clear(w, r, postLoginRedirectName)
	target := safeRedirectPath(c.Value)
	if target == "/" {
		return defaultPostLoginTarget
	}
	return target
}

// Logout ends the session and sends the browser to the signed-out page.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookieName); err == nil {
		if logoutErr := h.Svc.Logout(r.Context(), c.Value); logoutErr != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", logoutErr)
		}
	}
	h.cookies().clear(w, r, SessionCookieName)

	redirectURI := r.FormValue("redirect_uri")
	if redirectURI == "" {
		redirectURI = defaultPostLoginTarget
	}
	u := url.URL{Path: "/auth/signed-out"}
	q := url.Values{}
	q.Set("redirect_uri", safeRedirectPath(redirectURI))
	u.RawQuery = q.Encode()
	signedOutURL := u.String()

	switch {
	case IsHTMX(r):
		HTMX(w).Redirect(signedOutURL)
	case wantsJSON(r):
		WriteJSON(w, http.StatusOK, map[string]string{
			"status":      "success",
			"redirect_to": signedOutURL,
		})
	default:
		http.Redirect(w, r, signedOutURL, http.StatusSeeOther)
	}
}

// statusUser is the user object of the /auth/status payload.
type statusUser struct {
	Email      string   `json:"email"`
	Name       string   `json:"name"`
	Roles      []string `json:"roles"`
	ActiveRole string   `json:"activeRole"`
}

// statusResponse is the /auth/status payload.
type statusResponse struct {
	IsAuthenticated bool        `json:"isAuthenticated"`
	User            *statusUser `json:"user,omitempty"`
}

// Status reports whether the browser session resolves to a profile.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	p, ok := h.resolveProfile(r)
	if !ok {
		WriteJSON(w, http.StatusOK, statusResponse{})
		return
	}
	WriteJSON(w, http.StatusOK, statusResponse{
		IsAuthenticated: true,
		User: &statusUser{
			Email:      p.Email(),
			Name:       p.Name(),
			Roles:      p.RoleStrings(),
			ActiveRole: p.ActiveRole().String(),
		},
	})
}

// resolveProfile waits a bounded time for the session's profile.
func (h *AuthHandlers) resolveProfile(r *http.Request) (domainauth.UserProfile, bool) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return domainauth.UserProfile{}, false
	}
	sess, err := h.Svc.GetSession(r.Context(), c.Value)
	if err != nil {
		return domainauth.UserProfile{}, false
	}
	scope, err := h.Svc.Scope(*sess)
	if err != nil {
		return domainauth.UserProfile{}, false
	}

	wait := h.StatusWait
	if wait <= 0 {
		wait = DefaultGuardWait
	}
	ctx, cancel := context.WithTimeout(r.Context(), wait)
	defer cancel()
	st, _ := scope.Store().Await(ctx)
	return st.CurrentProfile()
}

// Refresh discards the resolved profile so it is fetched again; a switched role reverts.
// POST /auth/refresh.
func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookieName); err == nil {
		h.Svc.Refresh(r.Context(), c.Value)
	}
	h.finishProfileAction(w, r)
}

// SwitchRole changes the active role of the current session.
// POST /profile/role (form: role, redirect_uri).
func (h *AuthHandlers) SwitchRole(w http.ResponseWriter, r *http.Request) {
	sess, ok := GetSessionFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	target, err := domainauth.ParseRole(r.FormValue("role"))
	if err != nil {
		h.rejectSwitch(w, r, errors.New("unknown role"))
		return
	}

	p, err := h.Svc.SwitchRole(r.Context(), sess.ID, target)
	switch {
	case errors.Is(err, domainauth.ErrRoleNotEligible):
		h.rejectSwitch(w, r, err)
		return
	case errors.Is(err, session.ErrNotAuthenticated):
		if IsHTMX(r) {
			HTMX(w).Redirect(loginURL("", redirectTarget(r)))
			return
		}
		http.Redirect(w, r, loginURL("", redirectTarget(r)), http.StatusSeeOther)
		return
	case err != nil:
		h.logger().ErrorContext(r.Context(), "role switch failed", "error", err)
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "role_switch_failed", Err: err})
		return
	}

	if wantsJSON(r) {
		eligible := make([]string, 0)
		for _, role := range p.EligibleRoles() {
			eligible = append(eligible, role.String())
		}
		WriteJSON(w, http.StatusOK, map[string]any{
			"activeRole":    p.ActiveRole().String(),
			"eligibleRoles": eligible,
		})
		return
	}
	triggerToast(w, "Switched to "+p.ActiveRole().Label(), toastSuccess)
	h.finishProfileAction(w, r)
}

// rejectSwitch reports a refused switch; the active role is unchanged.
func (h *AuthHandlers) rejectSwitch(w http.ResponseWriter, r *http.Request, err error) {
	if IsHTMX(r) {
		triggerToast(w, "That role is not available to switch to.", toastError)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if wantsJSON(r) || !IsBrowserRequest(r) {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "role_not_eligible", Err: err})
		return
	}
	http.Redirect(w, r, redirectTarget(r), http.StatusSeeOther)
}

// finishProfileAction sends the browser back to the page the action came from.
func (h *AuthHandlers) finishProfileAction(w http.ResponseWriter, r *http.Request) {
	target := redirectTarget(r)
	switch {
	case IsHTMX(r):
		HTMX(w).Redirect(target)
	case wantsJSON(r):
		WriteJSON(w, http.StatusOK, map[string]string{"status": "success", "redirect_to": target})
	default:
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

// redirectTarget is the form's redirect_uri, else the page the request came from.
func redirectTarget(r *http.Request) string {
	if v := r.FormValue("redirect_uri"); v != "" {
		return safeRedirectPath(v)
	}
	if ref := safeRedirectFromURL(r.Header.Get("Referer")); ref != "" {
		return ref
	}
	return "/"
}

// wantsJSON reports whether the client asked for a JSON answer.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
}
