package httpx

import (
	"context"
	"errors"
	"net/http"

	apperrors "github.com/clientcheckin/checkin-web/internal/errors"
)

// ErrorRenderer renders page data with an explicit status code (0 leaves it to the writer).
type ErrorRenderer func(w http.ResponseWriter, r *http.Request, status int, data map[string]any)

// ErrorOpts contains all options needed to render an error response.
type ErrorOpts struct {
	W http.ResponseWriter
	R *http.Request
	// Err is the error that occurred (optional when only field errors are reported)
	Err error
	// FieldErrors contains field-level validation errors (field name → message)
	FieldErrors map[string]string
	// Renderer is typically h.renderPageStatus
	Renderer ErrorRenderer
	PageMeta PageMeta
	// Data is merged into the template data, e.g. to preserve submitted form values
	Data map[string]any
	// StatusCode defaults to 200 so htmx swaps the response
	StatusCode int
	// ShowToast also sends a showToast trigger with the error message
	ShowToast bool
}

// Messages for errors that carry no user-facing text of their own.
const (
	msgTimeout      = "Request timed out. Please try again."
	msgCanceled     = "Request was canceled."
	msgUnreachable  = "We could not reach the check-in service. Please try again."
	msgUnauthorized = "Unauthorized: your session was rejected by the check-in service."
	msgForbidden    = "Forbidden: You do not have permission to view this data."
	msgBadResponse  = "The check-in service returned an unexpected response."
	msgGeneric      = "An error occurred. Please try again."
)

// RenderError renders a page carrying a general error and any field errors,
// keeping the submitted data so the form stays retryable.
func RenderError(opts ErrorOpts) {
	if opts.Renderer == nil {
		http.Error(opts.W, "misconfigured error renderer", http.StatusInternalServerError)
		return
	}

	builder := NewTemplateData(opts.R, opts.PageMeta)

	generalError := processError(opts.Err, &opts.FieldErrors)
	if len(opts.FieldErrors) > 0 {
		builder.WithFieldErrors(opts.FieldErrors)
	}
	if generalError != "" {
		builder.WithError(generalError)
	} else if len(opts.FieldErrors) > 0 {
		builder.WithError(errMsgFixBelow)
	}

	for k, v := range opts.Data {
		builder.With(k, v)
	}

	if opts.ShowToast && generalError != "" {
		triggerToast(opts.W, generalError, toastError)
	}

	opts.Renderer(opts.W, opts.R, opts.StatusCode, builder.Build())
}

// processError maps err to a user-facing message. Validation errors naming a
// field are moved into fieldErrors.
func processError(err error, fieldErrors *map[string]string) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return msgTimeout
	}
	if errors.Is(err, context.Canceled) {
		return msgCanceled
	}

	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeValidation:
		msg := apperrors.UserMessage(err, errMsgFixBelow)
		if field := apperrors.GetField(err); field != "" && fieldErrors != nil {
			if *fieldErrors == nil {
				*fieldErrors = make(map[string]string)
			}
			(*fieldErrors)[field] = msg
			return errMsgFixBelow
		}
		return msg
	case apperrors.ErrCodeNotFound:
		return apperrors.UserMessage(err, "Not found.")
	case apperrors.ErrCodeNetwork:
		return msgUnreachable
	case apperrors.ErrCodeUnauthenticated:
		return msgUnauthorized
	case apperrors.ErrCodeForbidden:
		return msgForbidden
	case apperrors.ErrCodeMalformed:
		return msgBadResponse
	case apperrors.ErrCodeInternal:
		return apperrors.UserMessage(err, msgGeneric)
	default:
		return msgGeneric
	}
}

// toastMessage is processError without field routing, for htmx toasts.
func toastMessage(err error) string {
	if apperrors.IsValidation(err) {
		return apperrors.UserMessage(err, errMsgFixBelow)
	}
	return processError(err, nil)
}
