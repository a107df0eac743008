// Package redis provides Redis-backed adapters for the check-in web service.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/clientcheckin/checkin-web/internal/domain/auth"
)

// DefaultSessionPrefix namespaces session keys.
const DefaultSessionPrefix = "checkin:session:"

const scanBatch = 200

// SessionStore is a Redis-based session store.
// Keys expire with the session; MaxTTL additionally caps how long a record lives.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
	maxTTL time.Duration
	now    func() time.Time
}

// SessionStoreOptions configures a SessionStore.
type SessionStoreOptions struct {
	Client redis.UniversalClient
	Prefix string           // Optional, defaults to DefaultSessionPrefix
	MaxTTL time.Duration    // Optional, zero means the session expiry alone bounds the key
	Now    func() time.Time // Optional, for tests
}

// NewSessionStore creates a new Redis-based session store.
func NewSessionStore(opts SessionStoreOptions) (*SessionStore, error) {
	if opts.Client == nil {
		return nil, errors.New("redis client is required")
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultSessionPrefix
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &SessionStore{client: opts.Client, prefix: prefix, maxTTL: opts.MaxTTL, now: now}, nil
}

func (s *SessionStore) key(id string) string { return s.prefix + id }

func (s *SessionStore) ttl(sess domainauth.Session) time.Duration {
	ttl := sess.ExpiresAt.Sub(s.now())
	if s.maxTTL > 0 && ttl > s.maxTTL {
		ttl = s.maxTTL
	}
	return ttl
}

func (s *SessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	if sess.Token == "" {
		return errors.New("session token cannot be empty")
	}

	ttl := s.ttl(sess)
	if ttl <= 0 {
		return errors.New("session is expired")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.client.Set(ctx, s.key(sess.ID), data, ttl).Err()
}

func (s *SessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ErrNotFound
	}

	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.Session{}, ErrNotFound
		}
		return domainauth.Session{}, fmt.Errorf("redis get: %w", err)
	}

	var sess domainauth.Session
	if unmarshalErr := json.Unmarshal(data, &sess); unmarshalErr != nil {
		return domainauth.Session{}, fmt.Errorf("unmarshal session: %w", unmarshalErr)
	}

	// Redis TTL normally handles this; clock skew between hosts can leave a stale key.
	if sess.Expired(s.now()) {
		if deleteErr := s.Delete(ctx, id); deleteErr != nil {
			return domainauth.Session{}, fmt.Errorf("cleanup expired session: %w", deleteErr)
		}
		return domainauth.Session{}, ErrNotFound
	}

	return sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.client.Del(ctx, s.key(id)).Err()
}

// List returns every live session under the store prefix. It scans the
// keyspace and is meant for admin tooling, not request paths.
func (s *SessionStore) List(ctx context.Context) ([]domainauth.Session, error) {
	var (
		mu   sync.Mutex
		keys []string
	)
	scan := func(ctx context.Context, c redis.Cmdable) error {
		iter := c.Scan(ctx, 0, s.prefix+"*", scanBatch).Iterator()
		for iter.Next(ctx) {
			mu.Lock()
			keys = append(keys, iter.Val())
			mu.Unlock()
		}
		return iter.Err()
	}

	var err error
	if cluster, ok := s.client.(*redis.ClusterClient); ok {
		err = cluster.ForEachMaster(ctx, func(ctx context.Context, c *redis.Client) error { return scan(ctx, c) })
	} else {
		err = scan(ctx, s.client)
	}
	if err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}

	out := make([]domainauth.Session, 0, len(keys))
	for _, k := range keys {
		sess, getErr := s.Get(ctx, strings.TrimPrefix(k, s.prefix))
		if errors.Is(getErr, ErrNotFound) {
			continue
		}
		if getErr != nil {
			return nil, getErr
		}
		out = append(out, sess)
	}
	slices.SortFunc(out, func(a, b domainauth.Session) int { return a.ExpiresAt.Compare(b.ExpiresAt) })
	return out, nil
}

// Ping reports whether Redis is reachable; used by the health endpoint.
func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

type notFoundError struct{}

func (notFoundError) Error() string { return "session not found" }

// ErrNotFound is returned when a session is not found.
var ErrNotFound error = notFoundError{}
