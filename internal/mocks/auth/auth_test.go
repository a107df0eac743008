package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/clientcheckin/checkin-web/internal/domain/auth"
	"github.com/clientcheckin/checkin-web/internal/ports"
	"github.com/clientcheckin/checkin-web/internal/testutil"
)

func TestMockAuthProvider_Begin_Defaults(t *testing.T) {
	provider := NewMockAuthProvider()
	ctx := context.Background()

	input := ports.BeginInput{RedirectURL: "http://localhost:8080/auth/callback"}
	authURL, state, nonce, err := provider.Begin(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, "https://mock-idp/auth", authURL)
	assert.Equal(t, "state-1", state)
	assert.Equal(t, "nonce-1", nonce)

	_, state2, nonce2, err := provider.Begin(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "state-2", state2)
	assert.Equal(t, "nonce-2", nonce2)
}

func TestMockAuthProvider_Begin_CustomValues(t *testing.T) {
	provider := &MockAuthProvider{
		AuthURL:     "https://custom-idp/login",
		StatePrefix: "custom-state",
		NoncePrefix: "custom-nonce",
	}

	authURL, state, nonce, err := provider.Begin(context.Background(), ports.BeginInput{})
	require.NoError(t, err)
	assert.Equal(t, "https://custom-idp/login", authURL)
	assert.Equal(t, "custom-state-1", state)
	assert.Equal(t, "custom-nonce-1", nonce)
}

func TestMockAuthProvider_Begin_ZeroValueFallbacks(t *testing.T) {
	var provider MockAuthProvider

	authURL, state, nonce, err := provider.Begin(context.Background(), ports.BeginInput{})
	require.NoError(t, err)
	assert.Equal(t, "https://mock-idp/auth", authURL)
	assert.Equal(t, "state-1", state)
	assert.Equal(t, "nonce-1", nonce)
}

func TestMockAuthProvider_Exchange_Default(t *testing.T) {
	provider := NewMockAuthProvider()

	id, err := provider.Exchange(context.Background(), ports.ExchangeInput{Code: "c", State: "s", Nonce: "n"})
	require.NoError(t, err)
	assert.Equal(t, "mock-user-1", id.Subject)
	assert.Equal(t, "mock.user@example.com", id.Email)
	assert.Equal(t, "mock-token", id.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), id.ExpiresAt, time.Minute)
}

func TestMockAuthProvider_Exchange_CustomFunc(t *testing.T) {
	wantErr := errors.New("invalid code")
	provider := &MockAuthProvider{
		ExchangeFunc: func(_ context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
			assert.Equal(t, "bad", in.Code)
			return domainauth.Identity{}, wantErr
		},
	}

	_, err := provider.Exchange(context.Background(), ports.ExchangeInput{Code: "bad"})
	require.ErrorIs(t, err, wantErr)
}

func TestMemorySessionStore(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	require.Error(t, store.Save(ctx, domainauth.Session{}))

	sess := domainauth.Session{ID: "s1", Email: "ada@example.com", Token: "tok"}
	require.NoError(t, store.Save(ctx, sess))
	assert.Equal(t, 1, store.Len())

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, sess, got)

	_, err = store.Get(ctx, "")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Get(ctx, "s1")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestMemorySessionStore_Concurrent(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := string(rune('a' + i))
			_ = store.Save(ctx, domainauth.Session{ID: id})
			_, _ = store.Get(ctx, id)
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, store.Len())
}

func TestStaticProfileFetcher(t *testing.T) {
	profile := testutil.NewProfile().Build()
	fetchErr := errors.New("api unavailable")
	f := &StaticProfileFetcher{
		Profiles: map[string]domainauth.UserProfile{"good": profile},
		Errors:   map[string]error{"bad": fetchErr},
	}
	ctx := context.Background()

	got, err := f.FetchProfile(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, profile.Email(), got.Email())

	_, err = f.FetchProfile(ctx, "bad")
	require.ErrorIs(t, err, fetchErr)

	_, err = f.FetchProfile(ctx, "unknown")
	require.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 3, f.Calls())
}

func TestStaticProfileFetcher_GateHonoursContext(t *testing.T) {
	f := &StaticProfileFetcher{Gate: make(chan struct{})}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.FetchProfile(ctx, "any")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
