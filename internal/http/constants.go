package httpx

// CurrentPage constants define the page identifiers used in templates and navigation.
const (
	PageCheckIn   = "check-in"
	PageAdmin     = "admin"
	PageLogin     = "login"
	PageSignup    = "signup"
	PageSignedOut = "signed-out"
	PageDenied    = "denied"
	PageLoading   = "loading"
	PageNotFound  = "not-found"
)

// Template paths used for loading templates in tests and production.
const (
	TemplatePathFromRoot = "frontend/templates"       // From project root
	TemplatePathFromTest = "../../frontend/templates" // From internal/http test files
	StaticPathFromRoot   = "frontend/static"
)

// Cookie names.
const (
	SessionCookieName      = "session_id"
	stateCookieName        = "oauth_state"
	nonceCookieName        = "oauth_nonce"
	postLoginRedirectName  = "post_login_redirect"
	oauthCookieMaxAgeSecs  = 600
	defaultPostLoginTarget = "/check-in"
)

// Content templates are defined once and reused to avoid per-call allocations.
//
//nolint:gochecknoglobals // static read-only lookup for templates
var contentTemplates = map[string]string{
	PageCheckIn:   "checkin-content",
	PageAdmin:     "admin-content",
	PageLogin:     "login-content",
	PageSignup:    "signup-content",
	PageSignedOut: "signed-out-content",
	PageDenied:    "denied-content",
	PageLoading:   "loading-content",
	PageNotFound:  "not-found-content",
}

// ContentTemplateFor returns the content template for the given CurrentPage.
// Falls back to not-found-content for unknown pages.
func ContentTemplateFor(currentPage string) string {
	if name, ok := contentTemplates[currentPage]; ok {
		return name
	}
	return "not-found-content"
}
