package devapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/clientcheckin/checkin-web/internal/adapters/devauth"
	"github.com/clientcheckin/checkin-web/internal/domain/model"
	apperrors "github.com/clientcheckin/checkin-web/internal/errors"
	httpx "github.com/clientcheckin/checkin-web/internal/http"
)

const maxRequestBody = 64 << 10

// ServerOptions configures the stand-in API.
type ServerOptions struct {
	Store      *Store       // Required
	SigningKey string       // Required: verifies dev bearer tokens
	Roles      []string     // Optional: granted to every caller, first one active; volunteer when empty
	InviteCode string       // Optional: signup is refused when empty
	Logger     *slog.Logger // Optional
}

// Server serves the check-in API endpoints the web app consumes.
type Server struct {
	store      *Store
	key        []byte
	roles      []string
	inviteCode string
	logger     *slog.Logger
}

// NewServer validates opts and builds a Server.
func NewServer(opts ServerOptions) (*Server, error) {
	if opts.Store == nil {
		return nil, errors.New("devapi: store is required")
	}
	if opts.SigningKey == "" {
		return nil, errors.New("devapi: signing key is required")
	}
	roles := opts.Roles
	if len(roles) == 0 {
		roles = []string{"volunteer"}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:      opts.Store,
		key:        []byte(opts.SigningKey),
		roles:      slices.Clone(roles),
		inviteCode: strings.TrimSpace(opts.InviteCode),
		logger:     logger.With("component", "devapi"),
	}, nil
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /api/profile", s.authenticated(s.profile))
	mux.Handle("GET /api/clients/{barcode}", s.authenticated(s.client))
	mux.Handle("POST /api/check-in", s.authenticated(s.checkIn))
	mux.Handle("GET /api/dashboard/check-ins", s.authenticated(s.dashboard))
	mux.HandleFunc("POST /api/signup", s.signup)
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteAppError(w, apperrors.NotFound("no such endpoint"))
	})
	return httpx.Logging(s.logger)(mux)
}

type claimsKey struct{}

func (s *Server) authenticated(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			httpx.WriteAppError(w, apperrors.Unauthenticated("missing bearer token"))
			return
		}
		claims, err := devauth.Verify(s.key, strings.TrimSpace(raw))
		if err != nil {
			s.logger.DebugContext(r.Context(), "rejected bearer token", "error", err)
			httpx.WriteAppError(w, apperrors.Unauthenticated("invalid bearer token"))
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	})
}

func claimsFrom(ctx context.Context) devauth.Claims {
	c, _ := ctx.Value(claimsKey{}).(devauth.Claims)
	return c
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	c := claimsFrom(r.Context())
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"email":      c.Email,
		"name":       c.Name,
		"roles":      s.roles,
		"activeRole": s.roles[0],
	})
}

func (s *Server) client(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.Client(r.PathValue("barcode"))
	if err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}

func (s *Server) checkIn(w http.ResponseWriter, r *http.Request) {
	var req model.CheckInRequest
	if err := decode(r, &req); err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	res, err := s.store.RecordCheckIn(strings.TrimSpace(req.Barcode))
	if err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	s.logger.InfoContext(r.Context(), "recorded check-in", "client_id", res.ClientID, "by", claimsFrom(r.Context()).Email)
	httpx.WriteJSON(w, http.StatusCreated, res)
}

func (s *Server) dashboard(w http.ResponseWriter, _ *http.Request) {
	if !slices.Contains(s.roles, "admin") {
		httpx.WriteAppError(w, apperrors.Forbidden("admin role required"))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, s.store.CheckIns())
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if err := decode(r, &req); err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" || strings.TrimSpace(req.InviteCode) == "" {
		httpx.WriteAppError(w, apperrors.Validation("email, password and invite code are required"))
		return
	}
	if s.inviteCode == "" || !strings.EqualFold(strings.TrimSpace(req.InviteCode), s.inviteCode) {
		httpx.WriteAppError(w, apperrors.Validation("Invalid invite code"))
		return
	}
	if err := s.store.CreateAccount(email); err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	s.logger.InfoContext(r.Context(), "created account", "email", email)
	w.WriteHeader(http.StatusCreated)
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBody))
	if err := dec.Decode(v); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid JSON body")
	}
	return nil
}
