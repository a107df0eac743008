package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	domainauth "github.com/clientcheckin/checkin-web/internal/domain/auth"
	"github.com/clientcheckin/checkin-web/internal/observability/metrics"
	"github.com/clientcheckin/checkin-web/internal/observability/statsd"
	"github.com/clientcheckin/checkin-web/internal/ports"
)

const (
	defaultIdleTTL       = 30 * time.Minute
	defaultSweepInterval = time.Minute
)

// HubOptions groups dependencies for Hub.
type HubOptions struct {
	Fetcher       ports.ProfileFetcher // Required: profile endpoint
	FetchTimeout  time.Duration        // Optional: per-fetch bound
	IdleTTL       time.Duration        // Optional: evict scopes unused for this long
	SweepInterval time.Duration        // Optional: janitor tick
	Logger        *slog.Logger         // Optional: structured logger
	Metrics       statsd.Sink          // Optional: metrics sink
	Now           func() time.Time     // Optional: clock override for tests
}

// Scope is the authentication state of one browser session: a store plus the
// resolver loop feeding it.
type Scope struct {
	id     string
	store  *Store
	events chan *domainauth.Identity
	cancel context.CancelFunc
	done   chan struct{}

	pubMu    sync.Mutex
	lastPub  *domainauth.Identity
	lastSeen atomic.Int64
}

// ID returns the browser session id.
func (s *Scope) ID() string { return s.id }

// Store returns the scope's profile store.
func (s *Scope) Store() *Store { return s.store }

// Publish delivers an identity event to the resolver loop. Only the latest
// pending event is kept. Publishing the identity last published is a no-op.
func (s *Scope) Publish(id *domainauth.Identity) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	if samePublished(s.lastPub, id) {
		return
	}
	s.lastPub = id

	for {
		select {
		case s.events <- id:
			return
		case <-s.done:
			return
		default:
		}
		select {
		case <-s.events:
		default:
		}
	}
}

func samePublished(prev, next *domainauth.Identity) bool {
	if prev == nil || next == nil {
		return prev == nil && next == nil
	}
	return prev.SameAccount(*next) && prev.Token == next.Token
}

// Hub owns one Scope per browser session.
type Hub struct {
	fetcher  ports.ProfileFetcher
	timeout  time.Duration
	idleTTL  time.Duration
	interval time.Duration
	logger   *slog.Logger
	metrics  statsd.Sink
	now      func() time.Time

	group singleflight.Group

	base       context.Context
	cancelBase context.CancelFunc

	mu     sync.Mutex
	scopes map[string]*Scope
	closed bool
}

// NewHub constructs a Hub. Call Run to start idle eviction and Close (or cancel
// Run's context) to tear every scope down.
func NewHub(opts HubOptions) (*Hub, error) {
	if opts.Fetcher == nil {
		return nil, errors.New("profile fetcher is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	idle := opts.IdleTTL
	if idle <= 0 {
		idle = defaultIdleTTL
	}
	interval := opts.SweepInterval
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	base, cancel := context.WithCancel(context.Background())
	return &Hub{
		fetcher:    opts.Fetcher,
		timeout:    opts.FetchTimeout,
		idleTTL:    idle,
		interval:   interval,
		logger:     logger.With("component", "session_hub"),
		metrics:    opts.Metrics,
		now:        now,
		base:       base,
		cancelBase: cancel,
		scopes:     make(map[string]*Scope),
	}, nil
}

// Acquire returns the scope for sessionID, creating it when missing, and
// publishes id to it. The resolver ignores an identity it already covers.
func (h *Hub) Acquire(sessionID string, id domainauth.Identity) (*Scope, error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, errors.New("session hub closed")
	}
	scope, ok := h.scopes[sessionID]
	if !ok {
		var err error
		scope, err = h.startLocked(sessionID)
		if err != nil {
			h.mu.Unlock()
			return nil, err
		}
		h.scopes[sessionID] = scope
	}
	n := len(h.scopes)
	h.mu.Unlock()

	if !ok {
		metrics.EmitScopes(h.metrics, n)
	}
	scope.lastSeen.Store(h.now().UnixNano())
	ident := id
	scope.Publish(&ident)
	return scope, nil
}

// Lookup returns an existing scope without creating one.
func (h *Hub) Lookup(sessionID string) (*Scope, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.scopes[sessionID]
	if ok {
		s.lastSeen.Store(h.now().UnixNano())
	}
	return s, ok
}

// SignOut publishes a sign-out event to the scope and tears it down.
func (h *Hub) SignOut(sessionID string) {
	h.mu.Lock()
	s, ok := h.scopes[sessionID]
	h.mu.Unlock()
	if !ok {
		return
	}
	s.Publish(nil)
	h.Drop(sessionID)
}

// Drop tears down the scope for sessionID and waits for its loop to exit.
func (h *Hub) Drop(sessionID string) {
	h.mu.Lock()
	s, ok := h.scopes[sessionID]
	delete(h.scopes, sessionID)
	n := len(h.scopes)
	h.mu.Unlock()
	if !ok {
		return
	}
	s.cancel()
	<-s.done
	metrics.EmitScopes(h.metrics, n)
}

// Len returns the number of live scopes.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.scopes)
}

// Run evicts idle scopes until ctx ends, then closes the hub.
func (h *Hub) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	defer h.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := h.Sweep(); n > 0 {
				h.logger.Debug("evicted idle session scopes", "count", n)
			}
		}
	}
}

// Sweep drops scopes idle for longer than the idle TTL and returns how many were dropped.
func (h *Hub) Sweep() int {
	cutoff := h.now().Add(-h.idleTTL).UnixNano()

	h.mu.Lock()
	var stale []string
	for id, s := range h.scopes {
		if s.lastSeen.Load() < cutoff {
			stale = append(stale, id)
		}
	}
	h.mu.Unlock()

	for _, id := range stale {
		h.Drop(id)
	}
	return len(stale)
}

// Close tears down every scope. Later Acquire calls fail.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	scopes := h.scopes
	h.scopes = make(map[string]*Scope)
	h.mu.Unlock()

	h.cancelBase()
	for _, s := range scopes {
		<-s.done
	}
	metrics.EmitScopes(h.metrics, 0)
}

func (h *Hub) startLocked(sessionID string) (*Scope, error) {
	store := NewStore()
	resolver, err := NewResolver(ResolverOptions{
		Store:   store,
		Fetcher: h.fetcher,
		Group:   &h.group,
		Timeout: h.timeout,
		Logger:  h.logger,
		Metrics: h.metrics,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(h.base)
	s := &Scope{
		id:     sessionID,
		store:  store,
		events: make(chan *domainauth.Identity, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		resolver.Run(ctx, s.events)
	}()
	return s, nil
}
