package httpx

import (
	"net/http"
	"strings"

	apperrors "github.com/clientcheckin/checkin-web/internal/errors"
	"github.com/clientcheckin/checkin-web/internal/service"
)

var checkInMeta = PageMeta{Title: "Check In", PageTitle: "Client Check-In", CurrentPage: PageCheckIn} //nolint:gochecknoglobals // read-only

// CheckInPage serves the barcode form.
func (h *UIHandlers) CheckInPage(w http.ResponseWriter, r *http.Request) {
	data := NewTemplateData(r, checkInMeta).
		With("Barcode", strings.TrimSpace(r.URL.Query().Get("barcode"))).
		Build()
	h.renderPage(w, r, data)
}

// CheckInLookup finds the client for the submitted barcode.
// htmx requests get the client card fragment; plain posts get the whole page.
func (h *UIHandlers) CheckInLookup(w http.ResponseWriter, r *http.Request) {
	barcode := strings.TrimSpace(r.FormValue("barcode"))

	client, err := h.CheckIn.Lookup(r.Context(), bearerToken(r.Context()), barcode)
	if err != nil {
		if !apperrors.IsValidation(err) && !apperrors.IsNotFound(err) {
			h.logger().WarnContext(r.Context(), "client lookup failed", "error", err)
		}
		if IsHTMX(r) {
			triggerToast(w, toastMessage(err), toastError)
			h.renderFragment(w, r, "client-card", basePageData(r, checkInMeta))
			return
		}
		RenderError(ErrorOpts{
			W:        w,
			R:        r,
			Err:      err,
			Renderer: h.renderPageStatus,
			PageMeta: checkInMeta,
			Data:     map[string]any{"Barcode": barcode},
		})
		return
	}

	data := NewTemplateData(r, checkInMeta).
		With("Barcode", barcode).
		With("Client", &client).
		Build()
	if IsHTMX(r) {
		triggerToast(w, service.MsgClientFound, toastSuccess)
		h.renderFragment(w, r, "client-card", data)
		return
	}
	h.renderPage(w, r, data)
}

// CheckInSubmit records a visit for the submitted barcode. A failure leaves
// the check-in button in place so the operator can retry.
func (h *UIHandlers) CheckInSubmit(w http.ResponseWriter, r *http.Request) {
	barcode := strings.TrimSpace(r.FormValue("barcode"))

	res, err := h.CheckIn.CheckIn(r.Context(), bearerToken(r.Context()), barcode)
	if err != nil {
		msg := apperrors.UserMessage(err, service.MsgCheckInFailed)
		if IsHTMX(r) {
			triggerToast(w, msg, toastError)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		data := NewTemplateData(r, checkInMeta).
			WithError(msg).
			With("Barcode", barcode).
			Build()
		h.renderPage(w, r, data)
		return
	}

	if IsHTMX(r) {
		triggerToast(w, res.Message, toastSuccess)
		data := basePageData(r, checkInMeta)
		data["Barcode"] = barcode
		data["CheckedIn"] = true
		h.renderFragment(w, r, "checkin-action", data)
		return
	}
	data := NewTemplateData(r, checkInMeta).
		With("Message", res.Message).
		Build()
	h.renderPage(w, r, data)
}
