package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"
)

const (
	// DefaultCSRFCookieName is the default name for the CSRF cookie.
	DefaultCSRFCookieName = "csrf_token"
	// DefaultCSRFHeaderName is the header htmx requests carry the token in (canonical form).
	DefaultCSRFHeaderName = "X-Csrf-Token"
	// DefaultCSRFFieldName is the form field standard posts carry the token in.
	DefaultCSRFFieldName = "csrf_token"
)

// CSRFConfig holds configuration for CSRF protection middleware.
type CSRFConfig struct {
	// AuthKey signs the token cookie; 32 bytes. Empty disables protection.
	AuthKey []byte
	// CookieDomain is the domain for the CSRF cookie
	CookieDomain string
	// Secure marks the cookie Secure; false only for plain-HTTP development
	Secure bool
	// TrustedOrigins lists extra origins (host[:port]) allowed to post forms
	TrustedOrigins []string
	Logger         *slog.Logger
}

// CSRFProtection returns a middleware guarding state-changing requests with
// gorilla/csrf. The token is accepted from the X-Csrf-Token header (htmx) or
// the csrf_token form field. Plain-HTTP requests skip the Referer check that
// only applies to TLS.
func CSRFProtection(cfg CSRFConfig) func(http.Handler) http.Handler {
	if len(cfg.AuthKey) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	protect := csrf.Protect(
		cfg.AuthKey,
		csrf.Secure(cfg.Secure),
		csrf.Path("/"),
		csrf.Domain(cfg.CookieDomain),
		csrf.CookieName(DefaultCSRFCookieName),
		csrf.RequestHeader(DefaultCSRFHeaderName),
		csrf.FieldName(DefaultCSRFFieldName),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.TrustedOrigins(cfg.TrustedOrigins),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reason := csrf.FailureReason(r)
			logger.WarnContext(r.Context(), "csrf validation failed",
				"path", r.URL.Path,
				"reason", reason,
			)
			if reason == nil {
				reason = errors.New("CSRF token validation failed")
			}
			WriteError(w, ErrorParams{Code: http.StatusForbidden, ErrCode: "csrf_failed", Err: reason})
		})),
	)

	return func(next http.Handler) http.Handler {
		guarded := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isSecureRequest(r) {
				r = csrf.PlaintextHTTPRequest(r)
			}
			guarded.ServeHTTP(w, r)
		})
	}
}

// GetCSRFToken returns the masked CSRF token for the request, or "" when protection is off.
func GetCSRFToken(r *http.Request) string {
	return csrf.Token(r)
}
