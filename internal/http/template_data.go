package httpx

import (
	"net/http"

	"github.com/clientcheckin/checkin-web/internal/domain/model"
	"github.com/clientcheckin/checkin-web/internal/http/ui/viewmodel"
)

// TemplateDataBuilder provides a fluent API for building template data maps.
type TemplateDataBuilder struct {
	data map[string]any
	r    *http.Request
}

// NewTemplateData creates a new TemplateDataBuilder initialized with basePageData.
func NewTemplateData(r *http.Request, meta PageMeta) *TemplateDataBuilder {
	return &TemplateDataBuilder{
		data: basePageData(r, meta),
		r:    r,
	}
}

// WithPagination adds pagination metadata for a page of check-ins, linking
// PrevURL/NextURL under basePath with the current filters preserved.
func (b *TemplateDataBuilder) WithPagination(basePath string, page model.CheckInPage) *TemplateDataBuilder {
	p := viewmodel.Pagination{
		Page:       page.Page,
		PageSize:   page.PageSize,
		HasPrev:    page.HasPrev(),
		HasNext:    page.HasNext(),
		TotalCount: page.Total,
	}
	if n := len(page.Items); n > 0 {
		p.StartIndex = (page.Page-1)*page.PageSize + 1
		p.EndIndex = p.StartIndex + n - 1
	}

	q := b.r.URL.Query()
	if p.HasPrev {
		p.PrevURL = buildPageURL(basePath, q, pageOpts{Page: page.Page - 1, PageSize: page.PageSize})
	}
	if p.HasNext {
		p.NextURL = buildPageURL(basePath, q, pageOpts{Page: page.Page + 1, PageSize: page.PageSize})
	}

	b.data["Pagination"] = p
	return b
}

// WithError sets a general error message.
func (b *TemplateDataBuilder) WithError(msg string) *TemplateDataBuilder {
	b.data["Error"] = true
	b.data["ErrorMessage"] = msg
	return b
}

// WithFieldErrors adds field-level validation errors.
func (b *TemplateDataBuilder) WithFieldErrors(errs map[string]string) *TemplateDataBuilder {
	if len(errs) > 0 {
		b.data["Errors"] = errs
	}
	return b
}

// With adds a custom field to the template data.
func (b *TemplateDataBuilder) With(key string, value any) *TemplateDataBuilder {
	b.data[key] = value
	return b
}

// Build returns the final template data map.
func (b *TemplateDataBuilder) Build() map[string]any {
	return b.data
}
