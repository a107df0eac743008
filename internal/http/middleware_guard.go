package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	domainauth "github.com/clientcheckin/checkin-web/internal/domain/auth"
	"github.com/clientcheckin/checkin-web/internal/observability/metrics"
	"github.com/clientcheckin/checkin-web/internal/observability/statsd"
	"github.com/clientcheckin/checkin-web/internal/service"
	"github.com/clientcheckin/checkin-web/internal/session"
)

// DefaultGuardWait bounds how long a request waits for profile resolution
// before the loading page is served instead.
const DefaultGuardWait = 3 * time.Second

// loadingRetryAfter is the poll delay, in seconds, of the loading page.
const loadingRetryAfter = "1"

// GuardAuth is the subset of the auth service the access guard needs.
type GuardAuth interface {
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
	Scope(sess domainauth.Session) (*session.Scope, error)
	Invalidate(ctx context.Context, sessionID string)
}

var _ GuardAuth = (*service.AuthService)(nil)

// GuardOptions groups dependencies for Guard.
type GuardOptions struct {
	Auth         GuardAuth     // Required
	UI           *UIHandlers   // Optional: renders the loading and denied pages
	Wait         time.Duration // Optional: DefaultGuardWait when zero
	CookieDomain string
	Metrics      statsd.Sink
	Logger       *slog.Logger
}

// Guard resolves the browser session behind a request and admits it only when
// the page requirement holds for the session's active role.
type Guard struct {
	auth    GuardAuth
	ui      *UIHandlers
	wait    time.Duration
	cookies cookieWriter
	metrics statsd.Sink
	logger  *slog.Logger
}

// NewGuard constructs a Guard.
func NewGuard(opts GuardOptions) *Guard {
	if opts.Auth == nil {
		panic("guard requires an auth service")
	}
	wait := opts.Wait
	if wait <= 0 {
		wait = DefaultGuardWait
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{
		auth:    opts.Auth,
		ui:      opts.UI,
		wait:    wait,
		cookies: cookieWriter{Domain: opts.CookieDomain},
		metrics: opts.Metrics,
		logger:  logger.With("component", "access_guard"),
	}
}

// guardResult carries what the guard learned about a request.
type guardResult struct {
	Session  *domainauth.Session
	State    domainauth.SessionState
	Decision domainauth.Decision
}

// Require returns a middleware admitting requests whose session satisfies req.
// The decision is re-evaluated on every request.
func (g *Guard) Require(req domainauth.Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := g.evaluate(r, req)
			metrics.EmitGuardDecision(g.metrics, req.Name(), res.Decision.String())

			switch res.Decision {
			case domainauth.DecisionAdmitted:
				ctx := SetSessionInContext(r.Context(), res.Session)
				ctx = SetProfileInContext(ctx, res.State.Profile)
				next.ServeHTTP(w, r.WithContext(ctx))
			case domainauth.DecisionDenied:
				ctx := SetSessionInContext(r.Context(), res.Session)
				ctx = SetProfileInContext(ctx, res.State.Profile)
				g.deny(w, r.WithContext(ctx))
			case domainauth.DecisionRedirect:
				g.redirect(w, r, res)
			default:
				g.loading(w, r)
			}
		})
	}
}

// evaluate looks up the session, waits a bounded time for its profile to
// settle and applies req to the resulting state.
func (g *Guard) evaluate(r *http.Request, req domainauth.Requirement) guardResult {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return guardResult{State: domainauth.Unauthenticated(domainauth.NoticeNone), Decision: domainauth.DecisionRedirect}
	}

	sess, err := g.auth.GetSession(r.Context(), cookie.Value)
	if err != nil {
		notice := domainauth.NoticeNone
		if errors.Is(err, service.ErrSessionExpired) {
			notice = domainauth.NoticeSessionExpired
		} else {
			g.logger.DebugContext(r.Context(), "session lookup failed", "error", err)
		}
		st := domainauth.Unauthenticated(notice)
		return guardResult{State: st, Decision: domainauth.DecisionRedirect}
	}

	scope, err := g.auth.Scope(*sess)
	if err != nil {
		g.logger.WarnContext(r.Context(), "session scope unavailable", "error", err)
		return guardResult{Session: sess, State: domainauth.Resolving(), Decision: domainauth.DecisionLoading}
	}

	ctx, cancel := context.WithTimeout(r.Context(), g.wait)
	defer cancel()
	st, _ := scope.Store().Await(ctx)

	return guardResult{Session: sess, State: st, Decision: domainauth.Evaluate(st, req)}
}

// redirect drops the rejected session and sends the user to the login page.
func (g *Guard) redirect(w http.ResponseWriter, r *http.Request, res guardResult) {
	if res.Session != nil {
		g.auth.Invalidate(r.Context(), res.Session.ID)
	}
	if _, err := r.Cookie(SessionCookieName); err == nil {
		g.cookies.clear(w, r, SessionCookieName)
	}

	notice := string(res.State.Notice)
	if !IsBrowserRequest(r) {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New(noticeOr(res.State.Notice, "authentication required")),
		})
		return
	}

	target := loginURL(notice, redirectPathForRequest(r))
	if IsHTMX(r) {
		HTMX(w).Redirect(target)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// deny renders the access denied view; the role switch menu stays available.
func (g *Guard) deny(w http.ResponseWriter, r *http.Request) {
	if !IsBrowserRequest(r) || g.ui == nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusForbidden,
			ErrCode: "insufficient_permissions",
			Err:     errors.New("active role does not permit this page"),
		})
		return
	}

	data := basePageData(r, PageMeta{Title: "Access Denied", PageTitle: "Access Denied", CurrentPage: PageDenied})
	status := http.StatusForbidden
	if IsHTMX(r) {
		// htmx only swaps 2xx responses.
		status = http.StatusOK
	}
	g.ui.renderPageStatus(w, r, status, data)
}

// loading answers while the profile is still being resolved.
func (g *Guard) loading(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", loadingRetryAfter)

	safeMethod := r.Method == http.MethodGet || r.Method == http.MethodHead
	if !IsBrowserRequest(r) || g.ui == nil || !safeMethod {
		if IsHTMX(r) {
			triggerToast(w, "Still loading your profile. Please try again.", toastInfo)
		}
		WriteError(w, ErrorParams{
			Code:    http.StatusServiceUnavailable,
			ErrCode: "profile_loading",
			Err:     errors.New("profile is still loading"),
		})
		return
	}

	data := basePageData(r, PageMeta{Title: "Loading", PageTitle: "Loading", CurrentPage: PageLoading})
	data["RedirectURI"] = safeRedirectPath(r.URL.RequestURI())
	data["RefreshAfter"] = loadingRetryAfter
	g.ui.renderPage(w, r, data)
}

func noticeOr(n domainauth.Notice, fallback string) string {
	if msg := n.Message(); msg != "" {
		return msg
	}
	return fallback
}
