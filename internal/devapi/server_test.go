package devapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clientcheckin/checkin-web/internal/adapters/checkinapi"
	"github.com/clientcheckin/checkin-web/internal/adapters/devauth"
	domainauth "github.com/clientcheckin/checkin-web/internal/domain/auth"
	"github.com/clientcheckin/checkin-web/internal/domain/model"
	apperrors "github.com/clientcheckin/checkin-web/internal/errors"
)

const testKey = "devapi-test-signing-key"

type apiEnv struct {
	store  *Store
	client *checkinapi.Client
	token  string
}

func newAPIEnv(t *testing.T, roles ...string) *apiEnv {
	t.Helper()
	store := NewStore(func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) })
	require.NoError(t, Seed(context.Background(), store, nil))

	srv, err := NewServer(ServerOptions{Store: store, SigningKey: testKey, Roles: roles, InviteCode: "WELCOME"})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	client, err := checkinapi.NewClient(checkinapi.Config{BaseURL: ts.URL, SignupURL: ts.URL + "/api/signup"})
	require.NoError(t, err)
	return &apiEnv{store: store, client: client, token: mint(t, testKey, time.Hour)}
}

func mint(t *testing.T, key string, ttl time.Duration) string {
	t.Helper()
	tok, err := devauth.Mint([]byte(key), devauth.Claims{
		Email: "volunteer@example.org",
		Name:  "Val Unteer",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "dev-user",
			Issuer:    devauth.Issuer,
			Audience:  jwt.ClaimStrings{devauth.Audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	})
	require.NoError(t, err)
	return tok
}

func TestNewServer_Validation(t *testing.T) {
	_, err := NewServer(ServerOptions{SigningKey: testKey})
	require.Error(t, err)
	_, err = NewServer(ServerOptions{Store: NewStore(nil)})
	require.Error(t, err)
}

func TestServer_Profile(t *testing.T) {
	env := newAPIEnv(t, "volunteer", "admin")

	p, err := env.client.FetchProfile(context.Background(), env.token)
	require.NoError(t, err)
	assert.Equal(t, "volunteer@example.org", p.Email())
	assert.Equal(t, "Val Unteer", p.Name())
	assert.Equal(t, domainauth.RoleVolunteer, p.ActiveRole())
	assert.True(t, p.HasRole(domainauth.RoleAdmin))
}

func TestServer_RejectsBadTokens(t *testing.T) {
	env := newAPIEnv(t)
	cases := map[string]string{
		"wrong key": mint(t, "some-other-signing-key", time.Hour),
		"expired":   mint(t, testKey, -time.Minute),
		"garbage":   "not-a-jwt",
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.client.FetchProfile(context.Background(), tok)
			require.Error(t, err)
			assert.True(t, apperrors.IsUnauthenticated(err), "got %v", err)
		})
	}
}

func TestServer_MissingBearer(t *testing.T) {
	env := newAPIEnv(t)
	ts := httptest.NewServer(mustServer(t, env.store).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/clients/100001")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func mustServer(t *testing.T, store *Store) *Server {
	t.Helper()
	srv, err := NewServer(ServerOptions{Store: store, SigningKey: testKey})
	require.NoError(t, err)
	return srv
}

func TestServer_LookupAndCheckIn(t *testing.T) {
	env := newAPIEnv(t)
	ctx := context.Background()

	c, err := env.client.LookupClient(ctx, env.token, "100003")
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", c.FullName())
	assert.Empty(t, c.LastVisit)

	res, err := env.client.CheckIn(ctx, env.token, "100003")
	require.NoError(t, err)
	assert.Equal(t, "100003", res.ClientID)
	assert.Equal(t, "Welcome back, Grace!", res.Message)
	assert.Equal(t, time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC), res.CheckInTime)

	c, err = env.client.LookupClient(ctx, env.token, "100003")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01", c.LastVisit)
}

func TestServer_UnknownBarcode(t *testing.T) {
	env := newAPIEnv(t)
	ctx := context.Background()

	_, err := env.client.LookupClient(ctx, env.token, "999999")
	assert.True(t, apperrors.IsNotFound(err), "got %v", err)

	_, err = env.client.CheckIn(ctx, env.token, "999999")
	assert.True(t, apperrors.IsNotFound(err), "got %v", err)
}

func TestServer_Dashboard(t *testing.T) {
	t.Run("admin sees seeded visits newest first", func(t *testing.T) {
		env := newAPIEnv(t, "volunteer", "admin")
		_, err := env.client.CheckIn(context.Background(), env.token, "100003")
		require.NoError(t, err)

		list, err := env.client.ListCheckIns(context.Background(), env.token)
		require.NoError(t, err)
		require.Len(t, list, 4)
		assert.Equal(t, "Grace", list[0].FirstName)
		assert.Equal(t, "4", list[0].ID)
	})

	t.Run("volunteer only is forbidden", func(t *testing.T) {
		env := newAPIEnv(t, "volunteer")
		_, err := env.client.ListCheckIns(context.Background(), env.token)
		assert.True(t, apperrors.IsForbidden(err), "got %v", err)
	})
}

func TestServer_Signup(t *testing.T) {
	env := newAPIEnv(t)
	ctx := context.Background()
	req := model.SignupRequest{Email: "new@example.org", Password: "s3cret", InviteCode: "welcome"}

	require.NoError(t, env.client.Signup(ctx, req))

	err := env.client.Signup(ctx, req)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "An account with this email already exists", apperrors.UserMessage(err, ""))

	req.Email = "other@example.org"
	req.InviteCode = "EXPIRED"
	err = env.client.Signup(ctx, req)
	assert.Equal(t, "Invalid invite code", apperrors.UserMessage(err, ""))
}

func TestServer_UnknownRoute(t *testing.T) {
	ts := httptest.NewServer(mustServer(t, NewStore(nil)).Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/nope", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
