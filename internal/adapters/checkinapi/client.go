// Package checkinapi is the HTTP client for the external check-in API.
package checkinapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/clientcheckin/checkin-web/internal/domain/auth"
	"github.com/clientcheckin/checkin-web/internal/domain/model"
	apperrors "github.com/clientcheckin/checkin-web/internal/errors"
	"github.com/clientcheckin/checkin-web/internal/observability/metrics"
	"github.com/clientcheckin/checkin-web/internal/observability/statsd"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 4 << 10
	maxBody        = 4 << 20
)

// Config holds client settings.
type Config struct {
	BaseURL   string
	SignupURL string // Optional; signup is unavailable when empty
	Timeout   time.Duration
	Client    *http.Client
	Logger    *slog.Logger
	Metrics   statsd.Sink
}

// Client calls the check-in API with the session bearer token.
type Client struct {
	baseURL   *url.URL
	signupURL string
	client    *http.Client
	logger    *slog.Logger
	metrics   statsd.Sink
}

// NewClient validates cfg and builds a client.
func NewClient(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("check-in API base URL is required")
	}
	base, err := url.Parse(strings.TrimSuffix(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse check-in API base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("check-in API base URL must be http or https, got %q", base.Scheme)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:   base,
		signupURL: strings.TrimSpace(cfg.SignupURL),
		client:    hc,
		logger:    logger.With("component", "checkin_api"),
		metrics:   cfg.Metrics,
	}, nil
}

// profilePayload is the /api/profile response body.
type profilePayload struct {
	Email      string   `json:"email"`
	Name       string   `json:"name"`
	Roles      []string `json:"roles"`
	ActiveRole string   `json:"activeRole"`
}

// FetchProfile loads the application profile for token.
func (c *Client) FetchProfile(ctx context.Context, token string) (domainauth.UserProfile, error) {
	if token == "" {
		return domainauth.UserProfile{}, apperrors.Unauthenticated("missing bearer token")
	}
	var body profilePayload
	if err := c.do(ctx, "profile", http.MethodGet, c.endpoint("api", "profile"), token, nil, &body); err != nil {
		return domainauth.UserProfile{}, err
	}
	p, err := domainauth.NewUserProfile(domainauth.ProfileInput{
		Email:      body.Email,
		Name:       body.Name,
		Roles:      body.Roles,
		ActiveRole: body.ActiveRole,
	})
	if err != nil {
		return domainauth.UserProfile{}, apperrors.Malformed(err, "invalid profile payload")
	}
	return p, nil
}

// LookupClient finds a client record by barcode.
func (c *Client) LookupClient(ctx context.Context, token, barcode string) (model.Client, error) {
	var out model.Client
	err := c.do(ctx, "lookup_client", http.MethodGet, c.endpoint("api", "clients", barcode), token, nil, &out)
	return out, err
}

// CheckIn records a visit for the client identified by barcode.
func (c *Client) CheckIn(ctx context.Context, token, barcode string) (model.CheckInResult, error) {
	var out model.CheckInResult
	err := c.do(ctx, "check_in", http.MethodPost, c.endpoint("api", "check-in"), token,
		model.CheckInRequest{Barcode: barcode}, &out)
	return out, err
}

// ListCheckIns returns every recorded visit.
func (c *Client) ListCheckIns(ctx context.Context, token string) ([]model.CheckIn, error) {
	var out []model.CheckIn
	if err := c.do(ctx, "list_check_ins", http.MethodGet, c.endpoint("api", "dashboard", "check-ins"), token, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.CheckIn{}
	}
	return out, nil
}

// Signup submits an invite-code signup. No bearer token is sent.
func (c *Client) Signup(ctx context.Context, req model.SignupRequest) error {
	if c.signupURL == "" {
		return apperrors.Internal("signup is not configured")
	}
	return c.do(ctx, "signup", http.MethodPost, c.signupURL, "", req, nil)
}

func (c *Client) endpoint(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.Join(escaped, "/")
	u.RawPath = ""
	return u.String()
}

func (c *Client) do(ctx context.Context, op, method, target, token string, in, out any) (err error) {
	start := time.Now()
	defer func() {
		metrics.EmitUpstream(c.metrics, op, time.Since(start), err)
	}()

	req, err := c.newRequest(ctx, method, target, token, in)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "check-in API request failed", "op", op, "error", err)
		return apperrors.Network(err, "check-in API request failed")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(out); decodeErr != nil {
		if errors.Is(decodeErr, io.EOF) {
			return apperrors.Malformed(decodeErr, "empty response body")
		}
		return apperrors.Malformed(decodeErr, "decode response body")
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, target, token string, in any) (*http.Request, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode request body")
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// statusError maps a non-2xx response, preferring the API's own message field.
func statusError(resp *http.Response) error {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := ""
	if len(raw) > 0 && json.Unmarshal(raw, &payload) == nil {
		msg = strings.TrimSpace(payload.Message)
		if msg == "" {
			msg = strings.TrimSpace(payload.Error)
		}
	}
	return apperrors.FromStatus(resp.StatusCode, msg)
}
