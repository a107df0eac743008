package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	domainauth "github.com/clientcheckin/checkin-web/internal/domain/auth"
	apperrors "github.com/clientcheckin/checkin-web/internal/errors"
	"github.com/clientcheckin/checkin-web/internal/observability/metrics"
	"github.com/clientcheckin/checkin-web/internal/observability/statsd"
	"github.com/clientcheckin/checkin-web/internal/ports"
)

// DefaultFetchTimeout bounds a single profile fetch when no timeout is configured.
const DefaultFetchTimeout = 10 * time.Second

// errFetchAbandoned marks a fetch whose waiter was cancelled. It never
// reaches the store.
var errFetchAbandoned = errors.New("profile fetch abandoned")

// ResolverOptions groups dependencies for Resolver.
type ResolverOptions struct {
	Store   *Store               // Required: state container to write into
	Fetcher ports.ProfileFetcher // Required: profile endpoint
	// Group shares in-flight fetches between resolvers. Optional; fetches are
	// not shared when nil.
	Group   *singleflight.Group
	Timeout time.Duration // Optional: per-fetch bound, DefaultFetchTimeout when zero
	Logger  *slog.Logger  // Optional: structured logger
	Metrics statsd.Sink   // Optional: metrics sink
}

// Resolver turns identity events into profile state.
type Resolver struct {
	store   *Store
	fetcher ports.ProfileFetcher
	group   *singleflight.Group
	timeout time.Duration
	logger  *slog.Logger
	metrics statsd.Sink

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewResolver constructs a Resolver.
func NewResolver(opts ResolverOptions) (*Resolver, error) {
	if opts.Store == nil {
		return nil, errors.New("store is required")
	}
	if opts.Fetcher == nil {
		return nil, errors.New("profile fetcher is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		store:   opts.Store,
		fetcher: opts.Fetcher,
		group:   opts.Group,
		timeout: timeout,
		logger:  logger.With("component", "session_resolver"),
		metrics: opts.Metrics,
	}, nil
}

// Run consumes identity events until ctx ends or events is closed.
// A nil event means the user signed out. The store is closed on return and
// results that arrive afterwards are dropped.
func (r *Resolver) Run(ctx context.Context, events <-chan *domainauth.Identity) {
	defer func() {
		r.store.Close()
		r.cancelInflight(nil)
		r.wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			r.handle(ctx, ev)
		}
	}
}

func (r *Resolver) handle(ctx context.Context, ev *domainauth.Identity) {
	if ev == nil {
		r.store.Reset(domainauth.NoticeSignedOut)
		r.cancelInflight(nil)
		return
	}
	if r.store.Covers(*ev) {
		return
	}

	// Bump the generation before cancelling the superseded fetch so its
	// late failure cannot land.
	gen, ok := r.store.BeginResolving(*ev)
	if !ok {
		return
	}
	// Only cancelInflight stops the fetch, so Run closes the store first.
	fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r.cancelInflight(cancel)

	id := *ev
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer cancel()
		r.resolve(fctx, gen, id)
	}()
}

// Resolve runs one resolution for id synchronously and returns the resulting state.
// The identity token must be present before the profile is fetched.
func (r *Resolver) Resolve(ctx context.Context, id domainauth.Identity) domainauth.SessionState {
	gen, ok := r.store.BeginResolving(id)
	if !ok {
		return r.store.State()
	}
	r.resolve(ctx, gen, id)
	return r.store.State()
}

func (r *Resolver) resolve(ctx context.Context, gen uint64, id domainauth.Identity) {
	start := time.Now()

	if strings.TrimSpace(id.Token) == "" {
		err := apperrors.Unauthenticated("identity has no bearer token")
		r.finish(gen, domainauth.UserProfile{}, err, start)
		return
	}

	profile, err := r.fetch(ctx, id.Token)
	r.finish(gen, profile, err, start)
}

func (r *Resolver) finish(gen uint64, profile domainauth.UserProfile, err error, start time.Time) {
	if err == nil {
		applied := r.store.Resolve(gen, profile)
		if applied {
			metrics.EmitResolution(r.metrics, metrics.ResolutionMetric{
				Outcome:  "authenticated",
				Duration: time.Since(start),
			})
			r.logger.Debug("profile resolved", "email", profile.Email(), "active_role", profile.ActiveRole())
		}
		return
	}

	if errors.Is(err, errFetchAbandoned) {
		r.logger.Debug("profile fetch abandoned", "error", err)
		return
	}

	notice := NoticeFor(err)
	if !r.store.Fail(gen, notice) {
		r.logger.Debug("discarding superseded resolution", "error", err)
		return
	}
	metrics.EmitResolution(r.metrics, metrics.ResolutionMetric{
		Outcome:  string(notice),
		Duration: time.Since(start),
		Err:      err,
	})
	r.logger.Warn("profile resolution failed", "notice", notice, "error", err)
}

// fetch shares one outbound call per token. The shared call runs detached from
// any single caller and is bounded by the resolver timeout.
func (r *Resolver) fetch(ctx context.Context, token string) (domainauth.UserProfile, error) {
	call := func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()
		return r.fetcher.FetchProfile(fctx, token)
	}

	var ch <-chan singleflight.Result
	if r.group != nil {
		ch = r.group.DoChan(token, call)
	} else {
		c := make(chan singleflight.Result, 1)
		go func() {
			v, err := call()
			c <- singleflight.Result{Val: v, Err: err}
		}()
		ch = c
	}

	select {
	case res := <-ch:
		if res.Err != nil {
			return domainauth.UserProfile{}, res.Err
		}
		p, ok := res.Val.(domainauth.UserProfile)
		if !ok {
			return domainauth.UserProfile{}, apperrors.Malformed(fmt.Errorf("unexpected %T", res.Val), "profile fetch")
		}
		return p, nil
	case <-ctx.Done():
		return domainauth.UserProfile{}, fmt.Errorf("%w: %w", errFetchAbandoned, ctx.Err())
	}
}

func (r *Resolver) cancelInflight(next context.CancelFunc) {
	r.mu.Lock()
	prev := r.cancel
	r.cancel = next
	r.mu.Unlock()
	if prev != nil {
		prev()
	}
}

// NoticeFor maps a resolution failure onto the notice shown at login.
func NoticeFor(err error) domainauth.Notice {
	switch {
	case err == nil:
		return domainauth.NoticeNone
	case errors.Is(err, domainauth.ErrInvalidProfile), apperrors.IsMalformed(err):
		return domainauth.NoticeMalformedProfile
	case apperrors.IsUnauthenticated(err), apperrors.IsForbidden(err), apperrors.IsNotFound(err):
		return domainauth.NoticeUnauthorized
	default:
		return domainauth.NoticeNetworkFailure
	}
}
