package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/clientcheckin/checkin-web/internal/domain/model"
	apperrors "github.com/clientcheckin/checkin-web/internal/errors"
	"github.com/clientcheckin/checkin-web/internal/ports"
)

// Messages shown to the operator.
const (
	MsgBarcodeRequired  = "Please enter a barcode"
	MsgBarcodeInvalid   = "Barcode contains invalid characters"
	MsgClientNotFound   = "Client not found"
	MsgClientFound      = "Client found successfully"
	MsgCheckInFailed    = "Failed to check in"
	MsgCheckInSucceeded = "Check-in successful"
	MsgDashboardFailed  = "Failed to fetch check-ins"
)

// JMESPathEvaluator abstracts JMESPath operations for testability.
type JMESPathEvaluator interface {
	Validate(expr string) error
	Evaluate(expr string, data any) (any, error)
}

type jmespathLibEvaluator struct{}

func (jmespathLibEvaluator) Validate(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	_, err := jmespath.Compile(expr)
	return err
}

func (jmespathLibEvaluator) Evaluate(expr string, data any) (any, error) {
	return jmespath.Search(expr, data)
}

// CheckInServiceOptions groups dependencies for CheckInService.
type CheckInServiceOptions struct {
	API       ports.CheckInAPI  // Required: upstream check-in API
	Evaluator JMESPathEvaluator // Optional: defaults to go-jmespath
	Logger    *slog.Logger      // Optional: structured logger
}

// CheckInService runs barcode lookups, records visits, and builds the dashboard listing.
type CheckInService struct {
	api    ports.CheckInAPI
	jems   JMESPathEvaluator
	logger *slog.Logger
}

// NewCheckInService constructs a new CheckInService.
func NewCheckInService(opts CheckInServiceOptions) *CheckInService {
	if opts.API == nil {
		panic("check-in service requires an API client")
	}
	jems := opts.Evaluator
	if jems == nil {
		jems = jmespathLibEvaluator{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckInService{api: opts.API, jems: jems, logger: logger.With("component", "checkin_service")}
}

func normalizeBarcode(raw string) (string, error) {
	barcode := strings.TrimSpace(raw)
	if barcode == "" {
		return "", apperrors.ValidationField("barcode", MsgBarcodeRequired)
	}
	// The barcode becomes a path segment of the backend URL.
	if barcode == "." || barcode == ".." || strings.ContainsAny(barcode, "/\\") {
		return "", apperrors.ValidationField("barcode", MsgBarcodeInvalid)
	}
	return barcode, nil
}

// Lookup finds the client for barcode.
func (s *CheckInService) Lookup(ctx context.Context, token, rawBarcode string) (model.Client, error) {
	barcode, err := normalizeBarcode(rawBarcode)
	if err != nil {
		return model.Client{}, err
	}
	c, err := s.api.LookupClient(ctx, token, barcode)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return model.Client{}, apperrors.Wrap(err, apperrors.ErrCodeNotFound, MsgClientNotFound)
		}
		return model.Client{}, fmt.Errorf("lookup client: %w", err)
	}
	return c, nil
}

// CheckIn records a visit. Failures leave nothing to undo, so the caller may retry.
func (s *CheckInService) CheckIn(ctx context.Context, token, rawBarcode string) (model.CheckInResult, error) {
	barcode, err := normalizeBarcode(rawBarcode)
	if err != nil {
		return model.CheckInResult{}, err
	}
	res, err := s.api.CheckIn(ctx, token, barcode)
	if err != nil {
		s.logger.WarnContext(ctx, "check-in failed", "error", err)
		code := apperrors.GetCode(err)
		if code == "" {
			code = apperrors.ErrCodeInternal
		}
		return model.CheckInResult{}, apperrors.Wrap(err, code, MsgCheckInFailed)
	}
	if res.Message == "" {
		res.Message = MsgCheckInSucceeded
	}
	return res, nil
}

// Dashboard lists recorded visits narrowed by filters and returns the requested page.
func (s *CheckInService) Dashboard(ctx context.Context, token string, filters model.CheckInFilters) (model.CheckInPage, error) {
	f := filters.Normalize()
	if err := s.jems.Validate(f.Query); err != nil {
		return model.CheckInPage{}, apperrors.ValidationField("q", fmt.Sprintf("invalid query: %v", err))
	}

	all, err := s.api.ListCheckIns(ctx, token)
	if err != nil {
		return model.CheckInPage{}, fmt.Errorf("list check-ins: %w", err)
	}

	matched := make([]model.CheckIn, 0, len(all))
	for _, c := range all {
		if !f.Matches(c) {
			continue
		}
		if f.Query != "" {
			ok, qerr := s.queryMatches(f.Query, c)
			if qerr != nil {
				return model.CheckInPage{}, apperrors.ValidationField("q", fmt.Sprintf("invalid query: %v", qerr))
			}
			if !ok {
				continue
			}
		}
		matched = append(matched, c)
	}

	return paginate(matched, f.Page, f.PageSize), nil
}

// queryMatches evaluates expr against the record's JSON form and applies JMESPath truthiness.
func (s *CheckInService) queryMatches(expr string, c model.CheckIn) (bool, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return false, err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return false, err
	}
	out, err := s.jems.Evaluate(expr, doc)
	if err != nil {
		return false, err
	}
	return truthy(out), nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

func paginate(items []model.CheckIn, page, size int) model.CheckInPage {
	total := len(items)
	start, end := total, total
	// Compare in pages so a huge page number cannot overflow the offset.
	if pages := (total + size - 1) / size; page-1 < pages {
		start = (page - 1) * size
		end = min(start+size, total)
	}
	return model.CheckInPage{
		Items:    items[start:end],
		Total:    total,
		Page:     page,
		PageSize: size,
	}
}
