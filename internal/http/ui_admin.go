package httpx

import (
	"net/http"

	"github.com/clientcheckin/checkin-web/internal/domain/model"
	"github.com/clientcheckin/checkin-web/internal/http/ui/viewmodel"
)

var adminMeta = PageMeta{Title: "Admin", PageTitle: "Admin Dashboard", CurrentPage: PageAdmin} //nolint:gochecknoglobals // read-only

// adminColumns lists the column filters in table order.
//
//nolint:gochecknoglobals // read-only
var adminColumns = []struct{ Name, Label string }{
	{"name", "Name"},
	{"client_id", "Client ID"},
	{"ltf_id", "Link To Feed ID"},
	{"email", "Email"},
	{"phone", "Phone"},
	{"address", "Address"},
	{"city", "City"},
	{"state", "State"},
	{"postal", "Postal Code"},
}

// adminFiltersFromRequest reads column filters, q and paging from the query string.
func adminFiltersFromRequest(r *http.Request) model.CheckInFilters {
	q := r.URL.Query()
	f := model.CheckInFilters{
		Name:     q.Get("name"),
		ClientID: q.Get("client_id"),
		LTFID:    q.Get("ltf_id"),
		Email:    q.Get("email"),
		Phone:    q.Get("phone"),
		Address:  q.Get("address"),
		City:     q.Get("city"),
		State:    q.Get("state"),
		Postal:   q.Get("postal"),
		Query:    q.Get("q"),
		Page:     queryInt(q, "page", 1),
		PageSize: queryInt(q, "page_size", model.DefaultCheckInPageSize),
	}
	return f.Normalize()
}

func filterFields(r *http.Request) []viewmodel.FilterField {
	q := r.URL.Query()
	out := make([]viewmodel.FilterField, 0, len(adminColumns))
	for _, c := range adminColumns {
		out = append(out, viewmodel.FilterField{Name: c.Name, Label: c.Label, Value: q.Get(c.Name)})
	}
	return out
}

// Admin serves the check-in table. API failures, including a rejected token,
// are shown in the page; the session is left alone.
func (h *UIHandlers) Admin(w http.ResponseWriter, r *http.Request) {
	filters := adminFiltersFromRequest(r)

	page, err := h.CheckIn.Dashboard(r.Context(), bearerToken(r.Context()), filters)
	if err != nil {
		h.logger().WarnContext(r.Context(), "dashboard listing failed", "error", err)
		RenderError(ErrorOpts{
			W:        w,
			R:        r,
			Err:      err,
			Renderer: h.renderPageStatus,
			PageMeta: adminMeta,
			Data: map[string]any{
				"Query":        filters.Query,
				"FilterFields": filterFields(r),
			},
			ShowToast: IsHTMX(r),
		})
		return
	}

	data := NewTemplateData(r, adminMeta).
		WithPagination("/admin", page).
		With("Query", filters.Query).
		With("FilterFields", filterFields(r)).
		With("CheckIns", page.Items).
		Build()
	h.renderPage(w, r, data)
}
