package httpx

import (
	"context"
	"html"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	domainauth "github.com/clientcheckin/checkin-web/internal/domain/auth"
	"github.com/clientcheckin/checkin-web/internal/domain/model"
	"github.com/clientcheckin/checkin-web/internal/http/ui/viewmodel"
	"github.com/clientcheckin/checkin-web/internal/service"
)

const errMsgFixBelow = "Please fix the errors below."

// CheckInService is the subset of check-in operations the UI needs.
type CheckInService interface {
	Lookup(ctx context.Context, token, barcode string) (model.Client, error)
	CheckIn(ctx context.Context, token, barcode string) (model.CheckInResult, error)
	Dashboard(ctx context.Context, token string, filters model.CheckInFilters) (model.CheckInPage, error)
}

// SignupService submits invite-code signups.
type SignupService interface {
	Signup(ctx context.Context, req model.SignupRequest) error
}

var (
	_ CheckInService = (*service.CheckInService)(nil)
	_ SignupService  = (*service.SignupService)(nil)
)

// UIHandlers serves browser-facing routes.
type UIHandlers struct {
	T       *TemplateRenderer
	CheckIn CheckInService
	Signup  SignupService
	IsDev   bool // Development mode flag for enhanced error reporting
	Logger  *slog.Logger
}

// logger returns the configured logger or falls back to slog.Default().
func (h *UIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// pageOpts represents pagination options for list views.
type pageOpts struct {
	Page     int
	PageSize int
}

// buildPageURL returns a URL with page and page_size set, preserving other query params.
// Whitespace-only values and htmx transient params are dropped.
func buildPageURL(basePath string, q url.Values, p pageOpts) string {
	qq := make(url.Values, len(q))
	for k, v := range q {
		if strings.HasPrefix(k, "hx-") || strings.HasPrefix(k, "hx_") {
			continue
		}
		tmp := make([]string, 0, len(v))
		for _, s := range v {
			if strings.TrimSpace(s) != "" {
				tmp = append(tmp, s)
			}
		}
		if len(tmp) > 0 {
			qq[k] = tmp
		}
	}
	qq.Set("page", strconv.Itoa(p.Page))
	qq.Set("page_size", strconv.Itoa(p.PageSize))
	return basePath + "?" + qq.Encode()
}

// PageMeta contains metadata for page rendering.
type PageMeta struct {
	Title       string
	PageTitle   string
	CurrentPage string
}

// buildLayout constructs shared layout metadata from the request context.
func buildLayout(r *http.Request, meta PageMeta) viewmodel.Layout {
	layout := viewmodel.Layout{
		Title:       meta.Title,
		PageTitle:   meta.PageTitle,
		CurrentPage: meta.CurrentPage,
		CSRFToken:   GetCSRFToken(r),
		RedirectURI: redirectPathForRequest(r),
	}

	profile, ok := GetProfileFromContext(r.Context())
	if !ok {
		return layout
	}

	active := profile.ActiveRole()
	layout.IsAuthenticated = true
	layout.IsAdmin = active == domainauth.RoleAdmin
	layout.User = &viewmodel.User{
		Email:           profile.Email(),
		Name:            profile.Name(),
		ActiveRole:      active.String(),
		ActiveRoleLabel: active.Label(),
		Roles:           profile.RoleStrings(),
	}
	for _, role := range profile.EligibleRoles() {
		layout.EligibleRoles = append(layout.EligibleRoles, viewmodel.RoleOption{
			Value: role.String(),
			Label: role.Label(),
		})
	}
	return layout
}

// basePageData constructs the common page data map with user context.
// CurrentPage and RedirectURI are always present because templates compare them.
func basePageData(r *http.Request, meta PageMeta) map[string]any {
	layout := buildLayout(r, meta)
	data := map[string]any{
		"Title":           layout.Title,
		"PageTitle":       layout.PageTitle,
		"CurrentPage":     layout.CurrentPage,
		"RedirectURI":     layout.RedirectURI,
		"IsAuthenticated": layout.IsAuthenticated,
		"IsAdmin":         layout.IsAdmin,
		"EligibleRoles":   layout.EligibleRoles,
	}

	if layout.CSRFToken != "" {
		data["CSRFToken"] = layout.CSRFToken
	}
	if layout.User != nil {
		data["User"] = layout.User
	}

	return data
}

// renderPage renders data as a full page or, for htmx requests, as the page's content fragment.
func (h *UIHandlers) renderPage(w http.ResponseWriter, r *http.Request, data map[string]any) {
	h.renderPageStatus(w, r, 0, data)
}

// renderPageStatus is renderPage with an explicit status code.
func (h *UIHandlers) renderPageStatus(w http.ResponseWriter, r *http.Request, status int, data map[string]any) {
	name := "layout"
	if WantsPartial(r) {
		page, _ := data["CurrentPage"].(string)
		name = ContentTemplateFor(page)
		// Hint client JS to update nav active state based on current path
		SetHXTrigger(w, "nav:activate", map[string]string{"path": r.URL.Path})
	}
	if err := h.T.RenderStatus(w, name, status, data); err != nil {
		h.logAndRenderTemplateError(w, r, err, name)
	}
}

// renderFragment renders a single named template, used for htmx swaps below page level.
func (h *UIHandlers) renderFragment(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	if err := h.T.RenderNamed(w, name, data); err != nil {
		h.logAndRenderTemplateError(w, r, err, name)
	}
}

// logAndRenderTemplateError logs template errors and renders them in dev mode.
func (h *UIHandlers) logAndRenderTemplateError(w http.ResponseWriter, r *http.Request, err error, context string) {
	h.logger().Error("template rendering failed",
		"error", err,
		"context", context,
		"path", r.URL.Path,
		"method", r.Method,
	)

	if h.IsDev {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		body := `<div class="alert alert-error"><h2>Template Rendering Error</h2>` +
			`<p><strong>Context:</strong> ` + html.EscapeString(context) + `</p>` +
			`<p><strong>Path:</strong> ` + html.EscapeString(r.URL.Path) + `</p>` +
			`<pre>` + html.EscapeString(err.Error()) + `</pre></div>`
		if _, writeErr := w.Write([]byte(body)); writeErr != nil {
			h.logger().Error("failed to write template error response", "error", writeErr)
		}
		return
	}

	http.Error(w, "internal server error", http.StatusInternalServerError)
}
