package httpx

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clientcheckin/checkin-web/internal/testutil"
)

func TestTemplateRenderer_LoadTemplates(t *testing.T) {
	tr := RequireTemplateRenderer(t)

	for _, name := range []string{"layout", "error-layout", "header", "role-menu", "role-switch", "pagination", "client-card", "checkin-action"} {
		assert.NotNil(t, tr.t.Lookup(name), "template %s should be loaded", name)
	}
	for page, content := range contentTemplates {
		assert.NotNil(t, tr.t.Lookup(content), "content template for %s", page)
	}
}

func TestContentTemplateFor(t *testing.T) {
	assert.Equal(t, "checkin-content", ContentTemplateFor(PageCheckIn))
	assert.Equal(t, "admin-content", ContentTemplateFor(PageAdmin))
	assert.Equal(t, "not-found-content", ContentTemplateFor("nope"))
}

func TestTemplateRenderer_RenderSectionFallsBack(t *testing.T) {
	tr := RequireTemplateRenderer(t)
	cloned, err := tr.t.Clone()
	require.NoError(t, err)
	cloned, err = cloned.Parse(`{{define "probe"}}{{ renderSection .Page .Data }}{{end}}`)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, cloned.ExecuteTemplate(&buf, "probe", map[string]any{"Page": "nope", "Data": map[string]any{}}))
	assert.Contains(t, buf.String(), "Page not found")
}

func TestTemplateRenderer_RenderStatus(t *testing.T) {
	tr := RequireTemplateRenderer(t)
	rec := httptest.NewRecorder()

	require.NoError(t, tr.RenderStatus(rec, "denied-content", http.StatusForbidden, map[string]any{}))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Access Denied")
}

func TestTemplateRenderer_UnknownTemplateWritesNothing(t *testing.T) {
	tr := RequireTemplateRenderer(t)
	rec := httptest.NewRecorder()

	require.Error(t, tr.RenderNamed(rec, "missing", nil))
	assert.Empty(t, rec.Body.String())
	assert.Empty(t, rec.Header().Get("Content-Type"))
}

func TestTemplateRenderer_RenderError(t *testing.T) {
	tr := RequireTemplateRenderer(t)
	rec := httptest.NewRecorder()

	require.NoError(t, tr.RenderError(rec, http.StatusBadGateway, map[string]any{"Title": "Unavailable", "Message": "Try again later."}))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Try again later.")
}

func TestLayout_RoleMenuShowsEligibleRoles(t *testing.T) {
	tr := RequireTemplateRenderer(t)
	ui := &UIHandlers{T: tr}
	r := requestWithProfile(browserRequest(http.MethodGet, "/check-in", ""), volunteerWithAdmin())

	rec := httptest.NewRecorder()
	ui.renderPage(rec, r, basePageData(r, checkInMeta))

	body := rec.Body.String()
	assert.Contains(t, body, "Test Volunteer")
	assert.Contains(t, body, `value="admin"`)
	assert.Contains(t, body, "Switch to Admin")
	assert.NotContains(t, body, `href="/admin"`, "admin nav is hidden while volunteer is active")
}

func TestClientCard_RendersClientAndCheckInButton(t *testing.T) {
	tr := RequireTemplateRenderer(t)
	client := testutil.NewClient("12345")
	rec := httptest.NewRecorder()

	require.NoError(t, tr.RenderNamed(rec, "client-card", map[string]any{
		"Client":    &client,
		"Barcode":   "12345",
		"CSRFToken": "tok",
	}))

	body := rec.Body.String()
	assert.True(t, ContainsAll(body, []string{"Ada Lovelace", "LTF-12345", `name="barcode" value="12345"`, `value="tok"`, "Check in"}))
	assert.NotContains(t, body, "disabled")
}
