package devauth

// Package devauth provides a config-driven AuthProvider for local development.
// It mints short-lived HS256 tokens that the local check-in API stand-in verifies.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/clientcheckin/checkin-web/internal/domain/auth"
	"github.com/clientcheckin/checkin-web/internal/ports"
)

const (
	// Issuer is the iss claim of dev tokens.
	Issuer = "checkin-web-dev"
	// Audience is the aud claim of dev tokens.
	Audience = "checkin-api"

	minSigningKeyLen = 16
)

// Config controls the dev auth provider behavior. Name defaults to Email.
type Config struct {
	Subject         string
	Email           string
	Name            string
	SigningKey      string
	SessionDuration time.Duration // default 8h when zero
}

// Claims are the JWT claims carried by a dev token.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Provider implements ports.AuthProvider for local development.
// Begin redirects straight back to our own callback with locally generated
// state and nonce; Exchange ignores the code and returns a freshly minted token.
type Provider struct {
	subject  string
	email    string
	name     string
	key      []byte
	duration time.Duration
	now      func() time.Time
}

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.Subject == "" {
		return nil, errors.New("dev auth: Subject is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	if len(cfg.SigningKey) < minSigningKeyLen {
		return nil, fmt.Errorf("dev auth: SigningKey must be at least %d bytes", minSigningKeyLen)
	}
	dur := cfg.SessionDuration
	if dur == 0 {
		dur = 8 * time.Hour
	}
	name := cfg.Name
	if name == "" {
		name = cfg.Email
	}
	return &Provider{
		subject:  cfg.Subject,
		email:    cfg.Email,
		name:     name,
		key:      []byte(cfg.SigningKey),
		duration: dur,
		now:      time.Now,
	}, nil
}

// Begin returns a local callback URL and cryptographically secure state and nonce.
func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	state, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	return "/auth/callback?code=dev&state=" + state, state, nonce, nil
}

// Exchange ignores the code (state is validated by the handler) and returns the dev identity.
func (p *Provider) Exchange(_ context.Context, _ ports.ExchangeInput) (domainauth.Identity, error) {
	now := p.now()
	exp := now.Add(p.duration)
	token, err := Mint(p.key, Claims{
		Email: p.email,
		Name:  p.name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   p.subject,
			Audience:  jwt.ClaimStrings{Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	if err != nil {
		return domainauth.Identity{}, err
	}
	return domainauth.Identity{
		Subject:   p.subject,
		Email:     p.email,
		Name:      p.name,
		Token:     token,
		ExpiresAt: exp,
	}, nil
}

// Mint signs claims with key using HS256.
func Mint(key []byte, claims Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign dev token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a dev token signed with key.
func Verify(key []byte, raw string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("verify dev token: %w", err)
	}
	return claims, nil
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	b := make([]byte, (n*3+3)/4+1)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
