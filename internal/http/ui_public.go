package httpx

import (
	"net/http"
	"net/url"
	"strings"

	domainauth "github.com/clientcheckin/checkin-web/internal/domain/auth"
	"github.com/clientcheckin/checkin-web/internal/domain/model"
	"github.com/clientcheckin/checkin-web/internal/http/validation"
	"github.com/clientcheckin/checkin-web/internal/service"
)

const maxEmailLen = 254

//nolint:gochecknoglobals // read-only
var (
	loginMeta     = PageMeta{Title: "Sign in", PageTitle: "Sign in", CurrentPage: PageLogin}
	signupMeta    = PageMeta{Title: "Sign up", PageTitle: "Create an account", CurrentPage: PageSignup}
	signedOutMeta = PageMeta{Title: "Signed out", PageTitle: "Signed out", CurrentPage: PageSignedOut}
	notFoundMeta  = PageMeta{Title: "Not Found", PageTitle: "Page not found", CurrentPage: PageNotFound}
)

// authLoginURL points the sign-in button at the identity provider flow.
func authLoginURL(redirectURI string) string {
	target := safeRedirectPath(redirectURI)
	if redirectURI == "" || target == "/" {
		return "/auth/login"
	}
	return "/auth/login?redirect_uri=" + url.QueryEscape(target)
}

// Login serves the sign-in page with the notice named by ?notice=.
func (h *UIHandlers) Login(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := NewTemplateData(r, loginMeta).
		With("Notice", domainauth.ParseNotice(q.Get("notice")).Message()).
		With("LoginURL", authLoginURL(q.Get("redirect_uri"))).
		Build()
	h.renderPage(w, r, data)
}

// SignedOut confirms a logout and offers to sign in again.
func (h *UIHandlers) SignedOut(w http.ResponseWriter, r *http.Request) {
	data := NewTemplateData(r, signedOutMeta).
		With("LoginURL", authLoginURL(r.URL.Query().Get("redirect_uri"))).
		Build()
	h.renderPage(w, r, data)
}

// SignupPage serves the invite code form.
func (h *UIHandlers) SignupPage(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, basePageData(r, signupMeta))
}

// SignupSubmit validates the form and submits it to the signup endpoint.
// On success the browser goes to the login page with a confirmation notice.
func (h *UIHandlers) SignupSubmit(w http.ResponseWriter, r *http.Request) {
	req := model.SignupRequest{
		Email:           strings.TrimSpace(r.FormValue("email")),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirm_password"),
		InviteCode:      strings.TrimSpace(r.FormValue("invite_code")),
	}
	keep := map[string]any{"Email": req.Email, "InviteCode": req.InviteCode}

	form := validation.NewForm().
		Field("email", req.Email, validation.NotBlank("Email"), validation.MaxLen("Email", maxEmailLen), validation.Email()).
		Field("password", req.Password, validation.Present("Password")).
		Field("confirm_password", req.ConfirmPassword,
			validation.Present("Password confirmation"),
			validation.Equals(req.Password, "Passwords do not match.")).
		Field("invite_code", req.InviteCode, validation.NotBlank("Invite code"), validation.MaxLen("Invite code", 128))
	if !form.Valid() {
		RenderError(ErrorOpts{
			W:           w,
			R:           r,
			FieldErrors: form.Errors(),
			Renderer:    h.renderPageStatus,
			PageMeta:    signupMeta,
			Data:        keep,
		})
		return
	}

	if err := h.Signup.Signup(r.Context(), req); err != nil {
		h.logger().WarnContext(r.Context(), "signup failed", "error", err)
		data := NewTemplateData(r, signupMeta).
			WithError(signupErrorMessage(err)).
			Build()
		for k, v := range keep {
			data[k] = v
		}
		h.renderPage(w, r, data)
		return
	}

	target := loginURL(string(domainauth.NoticeSignedUp), "")
	if IsHTMX(r) {
		HTMX(w).Redirect(target)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// signupErrorMessage prefers the endpoint's own message.
func signupErrorMessage(err error) string {
	msg := toastMessage(err)
	if msg == msgGeneric {
		return service.MsgSignupFailed
	}
	return msg
}

// NotFound renders the 404 page for browsers and a JSON error otherwise.
func (h *UIHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	if !IsBrowserRequest(r) {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found"})
		return
	}
	h.renderPageStatus(w, r, http.StatusNotFound, basePageData(r, notFoundMeta))
}
