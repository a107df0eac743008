// Package session holds per-browser-session authentication state: the profile
// store, the resolver task that fills it, and the hub that owns one scope per
// browser session.
package session

import (
	"context"
	"errors"
	"sync"

	domainauth "github.com/clientcheckin/checkin-web/internal/domain/auth"
)

// ErrNotAuthenticated is returned by SwitchActiveRole when no profile is held.
var ErrNotAuthenticated = errors.New("session not authenticated")

// Snapshot is a consistent read of the store.
type Snapshot struct {
	State   domainauth.SessionState
	Version uint64
}

// Store is the state container for one browser session.
//
// Writers are the resolver (BeginResolving, Resolve, Fail, Reset) and the role
// switch (SwitchActiveRole). Resolver writes carry the generation returned by
// BeginResolving; a write whose generation is no longer current is dropped,
// as is every write after Close.
type Store struct {
	mu       sync.RWMutex
	state    domainauth.SessionState
	identity domainauth.Identity
	gen      uint64
	version  uint64
	closed   bool
	changed  chan struct{}
}

// NewStore returns a store in the Unresolved state.
func NewStore() *Store {
	return &Store{
		state:   domainauth.Unresolved(),
		changed: make(chan struct{}),
	}
}

// Snapshot returns the current state and version.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{State: s.state, Version: s.version}
}

// State returns the current state.
func (s *Store) State() domainauth.SessionState {
	return s.Snapshot().State
}

// Profile returns the held profile, if authenticated.
func (s *Store) Profile() (domainauth.UserProfile, bool) {
	return s.State().CurrentProfile()
}

// Changed returns a channel that is closed on the next state change.
func (s *Store) Changed() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.changed
}

// Closed reports whether the store has been torn down.
func (s *Store) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Covers reports whether the store is resolving or holds a profile for the
// same account as id.
func (s *Store) Covers(id domainauth.Identity) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch s.state.Status {
	case domainauth.StatusResolving, domainauth.StatusAuthenticated:
		return s.identity.SameAccount(id)
	default:
		return false
	}
}

// BeginResolving moves the store to Resolving for id and returns the generation
// that subsequent Resolve or Fail calls must present. Any earlier generation is
// invalidated. ok is false once the store is closed.
func (s *Store) BeginResolving(id domainauth.Identity) (gen uint64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, false
	}
	s.gen++
	s.identity = id
	s.setLocked(domainauth.Resolving())
	return s.gen, true
}

// Resolve records a fetched profile. It reports whether the write was applied.
func (s *Store) Resolve(gen uint64, p domainauth.UserProfile) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(gen) {
		return false
	}
	s.setLocked(domainauth.Authenticated(p))
	return true
}

// Fail records a terminal resolution failure. It reports whether the write was applied.
func (s *Store) Fail(gen uint64, n domainauth.Notice) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(gen) {
		return false
	}
	s.identity = domainauth.Identity{}
	s.setLocked(domainauth.Unauthenticated(n))
	return true
}

// Reset clears the profile, invalidates any in-flight resolution and records n.
func (s *Store) Reset(n domainauth.Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.gen++
	s.identity = domainauth.Identity{}
	s.setLocked(domainauth.Unauthenticated(n))
}

// SwitchActiveRole changes the active role of the held profile. Roles are
// never changed. The store is left untouched on error.
func (s *Store) SwitchActiveRole(target domainauth.Role) (domainauth.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.state.CurrentProfile()
	if !ok || s.closed {
		return domainauth.UserProfile{}, ErrNotAuthenticated
	}
	next, err := current.WithActiveRole(target)
	if err != nil {
		return current, err
	}
	s.setLocked(domainauth.Authenticated(next))
	return next, nil
}

// Close tears the store down. Later writes are dropped and waiters are released.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.gen++
	close(s.changed)
	s.changed = make(chan struct{})
}

// Await blocks until the state is settled, the store is closed, or ctx ends.
// It returns the last observed state together with ctx.Err() on timeout.
func (s *Store) Await(ctx context.Context) (domainauth.SessionState, error) {
	for {
		s.mu.RLock()
		st, ch, closed := s.state, s.changed, s.closed
		s.mu.RUnlock()

		if st.IsSettled() || closed {
			return st, nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return st, ctx.Err()
		}
	}
}

func (s *Store) currentLocked(gen uint64) bool {
	return !s.closed && gen == s.gen
}

func (s *Store) setLocked(next domainauth.SessionState) {
	s.state = next
	s.version++
	close(s.changed)
	s.changed = make(chan struct{})
}
