package devauth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/clientcheckin/checkin-web/internal/ports"
)

const testKey = "0123456789abcdef-dev"

func TestProvider_BeginAndExchange(t *testing.T) {
	prov, err := NewProvider(Config{Subject: "dev-user", Email: "dev@example.com", Name: "Dev User", SigningKey: testKey})
	if err != nil {
		t.Fatalf("NewProvider error: %v", err)
	}
	url, state, nonce, err := prov.Begin(context.Background(), ports.BeginInput{RedirectURL: "/"})
	if err != nil {
		t.Fatalf("Begin error: %v", err)
	}
	if !strings.HasPrefix(url, "/auth/callback?") || !strings.Contains(url, state) {
		t.Fatalf("unexpected authURL: %s", url)
	}
	if state == "" || nonce == "" {
		t.Fatal("state and nonce should be generated")
	}

	id, err := prov.Exchange(context.Background(), ports.ExchangeInput{Code: "dev", State: state, Nonce: nonce})
	if err != nil {
		t.Fatalf("Exchange error: %v", err)
	}
	if id.Subject != "dev-user" || id.Email != "dev@example.com" || id.Name != "Dev User" {
		t.Fatalf("unexpected identity: %+v", id)
	}

	claims, err := Verify([]byte(testKey), id.Token)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.Email != "dev@example.com" || claims.Subject != "dev-user" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestNewProvider_Validation(t *testing.T) {
	cases := []Config{
		{Email: "dev@example.com", SigningKey: testKey},
		{Subject: "dev", SigningKey: testKey},
		{Subject: "dev", Email: "dev@example.com", SigningKey: "short"},
	}
	for _, c := range cases {
		if _, err := NewProvider(c); err == nil {
			t.Fatalf("expected error for %+v", c)
		}
	}
}

func TestNewProvider_NameDefaultsToEmail(t *testing.T) {
	prov, err := NewProvider(Config{Subject: "dev", Email: "dev@example.com", SigningKey: testKey})
	if err != nil {
		t.Fatalf("NewProvider error: %v", err)
	}
	id, err := prov.Exchange(context.Background(), ports.ExchangeInput{})
	if err != nil {
		t.Fatalf("Exchange error: %v", err)
	}
	if id.Name != "dev@example.com" {
		t.Fatalf("unexpected name %q", id.Name)
	}
}

func TestVerify_Rejects(t *testing.T) {
	now := time.Now()
	valid := Claims{
		Email: "a@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   "a",
			Audience:  jwt.ClaimStrings{Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}

	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))

	wrongAud := valid
	wrongAud.Audience = jwt.ClaimStrings{"elsewhere"}

	cases := map[string]struct {
		key    string
		claims Claims
	}{
		"wrong key":      {key: "another-key-0123456789", claims: valid},
		"expired":        {key: testKey, claims: expired},
		"wrong audience": {key: testKey, claims: wrongAud},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			raw, err := Mint([]byte(tc.key), tc.claims)
			if err != nil {
				t.Fatalf("Mint error: %v", err)
			}
			if _, err := Verify([]byte(testKey), raw); err == nil {
				t.Fatal("expected verification failure")
			}
		})
	}

	if _, err := Verify([]byte(testKey), "not-a-jwt"); err == nil {
		t.Fatal("expected garbage token to fail")
	}
}
