package httpx

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/clientcheckin/checkin-web/internal/domain/model"
	apperrors "github.com/clientcheckin/checkin-web/internal/errors"
	"github.com/clientcheckin/checkin-web/internal/mocks"
	"github.com/clientcheckin/checkin-web/internal/service"
	"github.com/clientcheckin/checkin-web/internal/testutil"
)

func checkInHandlers(t *testing.T) (*UIHandlers, *mocks.MockCheckInAPI) {
	t.Helper()
	api := mocks.NewMockCheckInAPI(gomock.NewController(t))
	return &UIHandlers{
		T:       RequireTemplateRenderer(t),
		CheckIn: service.NewCheckInService(service.CheckInServiceOptions{API: api}),
	}, api
}

func TestCheckInPage(t *testing.T) {
	h, _ := checkInHandlers(t)

	rec := serve(http.HandlerFunc(h.CheckInPage),
		requestWithProfile(browserRequest(http.MethodGet, "/check-in?barcode=%2012345%20", ""), volunteerProfile()))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, ContainsAll(body, []string{"<html", "Client Check-In", `value="12345"`, `id="lookup-result"`}))
	assert.NotContains(t, body, `class="client-card"`)
}

func TestCheckInLookup_HTMXFound(t *testing.T) {
	h, api := checkInHandlers(t)
	api.EXPECT().LookupClient(gomock.Any(), "tok-ctx", "12345").Return(testutil.NewClient("12345"), nil)

	req := requestWithProfile(htmxRequest(http.MethodPost, "/check-in/lookup", "barcode=+12345+"), volunteerProfile())
	rec := serve(http.HandlerFunc(h.CheckInLookup), req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, "<html")
	assert.True(t, ContainsAll(body, []string{"Ada Lovelace", "LTF-12345", `id="checkin-action"`, `name="barcode" value="12345"`, "Check in"}))
	assert.Contains(t, rec.Header().Get("Hx-Trigger"), service.MsgClientFound)
}

func TestCheckInLookup_HTMXNotFound(t *testing.T) {
	h, api := checkInHandlers(t)
	api.EXPECT().LookupClient(gomock.Any(), "tok-ctx", "999").Return(model.Client{}, apperrors.FromStatus(http.StatusNotFound, ""))

	req := requestWithProfile(htmxRequest(http.MethodPost, "/check-in/lookup", "barcode=999"), volunteerProfile())
	rec := serve(http.HandlerFunc(h.CheckInLookup), req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `class="client-card"`)
	assert.Contains(t, rec.Header().Get("Hx-Trigger"), service.MsgClientNotFound)
}

func TestCheckInLookup_EmptyBarcodeSkipsAPI(t *testing.T) {
	h, _ := checkInHandlers(t)

	req := requestWithProfile(htmxRequest(http.MethodPost, "/check-in/lookup", "barcode=+++"), volunteerProfile())
	rec := serve(http.HandlerFunc(h.CheckInLookup), req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Hx-Trigger"), service.MsgBarcodeRequired)
}

func TestCheckInLookup_FullPage(t *testing.T) {
	h, api := checkInHandlers(t)
	api.EXPECT().LookupClient(gomock.Any(), "tok-ctx", "12345").Return(testutil.NewClient("12345"), nil)

	req := requestWithProfile(browserRequest(http.MethodPost, "/check-in/lookup", "barcode=12345"), volunteerProfile())
	rec := serve(http.HandlerFunc(h.CheckInLookup), req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ContainsAll(rec.Body.String(), []string{"<html", "Ada Lovelace", `id="checkin-action"`}))
}

func TestCheckInLookup_FullPageNetworkError(t *testing.T) {
	h, api := checkInHandlers(t)
	api.EXPECT().LookupClient(gomock.Any(), "tok-ctx", "12345").
		Return(model.Client{}, apperrors.Network(errors.New("dial tcp: refused"), "lookup client"))

	req := requestWithProfile(browserRequest(http.MethodPost, "/check-in/lookup", "barcode=12345"), volunteerProfile())
	rec := serve(http.HandlerFunc(h.CheckInLookup), req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "We could not reach the check-in service.")
	assert.Contains(t, body, `value="12345"`)
	assert.NotContains(t, body, "dial tcp")
}

func TestCheckInSubmit_HTMXSuccess(t *testing.T) {
	h, api := checkInHandlers(t)
	api.EXPECT().CheckIn(gomock.Any(), "tok-ctx", "12345").Return(model.CheckInResult{ID: "77"}, nil)

	req := requestWithProfile(htmxRequest(http.MethodPost, "/check-in", "barcode=12345"), volunteerProfile())
	rec := serve(http.HandlerFunc(h.CheckInSubmit), req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, ContainsAll(body, []string{`id="checkin-action"`, "disabled", "Checked in"}))
	assert.NotContains(t, body, "Ada Lovelace")
	assert.Contains(t, rec.Header().Get("Hx-Trigger"), service.MsgCheckInSucceeded)
}

func TestCheckInSubmit_HTMXFailureIsRetryable(t *testing.T) {
	h, api := checkInHandlers(t)
	api.EXPECT().CheckIn(gomock.Any(), "tok-ctx", "12345").
		Return(model.CheckInResult{}, apperrors.FromStatus(http.StatusBadGateway, ""))

	req := requestWithProfile(htmxRequest(http.MethodPost, "/check-in", "barcode=12345"), volunteerProfile())
	rec := serve(http.HandlerFunc(h.CheckInSubmit), req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Hx-Trigger"), service.MsgCheckInFailed)
}

func TestCheckInSubmit_FullPage(t *testing.T) {
	h, api := checkInHandlers(t)
	gomock.InOrder(
		api.EXPECT().CheckIn(gomock.Any(), "tok-ctx", "12345").Return(model.CheckInResult{}, errors.New("timeout")),
		api.EXPECT().CheckIn(gomock.Any(), "tok-ctx", "12345").Return(model.CheckInResult{Message: "Welcome back"}, nil),
	)

	req := requestWithProfile(browserRequest(http.MethodPost, "/check-in", "barcode=12345"), volunteerProfile())
	rec := serve(http.HandlerFunc(h.CheckInSubmit), req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), service.MsgCheckInFailed)
	assert.Contains(t, rec.Body.String(), `value="12345"`)

	req = requestWithProfile(browserRequest(http.MethodPost, "/check-in", "barcode=12345"), volunteerProfile())
	rec = serve(http.HandlerFunc(h.CheckInSubmit), req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Welcome back")
}
