package oidc

// Package oidc implements the login flow against an OpenID Connect identity provider.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/clientcheckin/checkin-web/internal/domain/auth"
	"github.com/clientcheckin/checkin-web/internal/ports"
)

// BearerSource selects which token from the IdP response is presented to the check-in API.
type BearerSource string

const (
	BearerIDToken     BearerSource = "id_token"
	BearerAccessToken BearerSource = "access_token"
)

// Provider implements ports.AuthProvider using OIDC discovery and the authorization code flow.
type Provider struct {
	config     *oauth2.Config
	httpClient *http.Client
	bearer     BearerSource

	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier
}

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	DiscoveryURL string
	Bearer       BearerSource // Optional, defaults to BearerIDToken
	HTTPClient   *http.Client // Optional, defaults to a client with a 30s timeout
}

// DiscoveryDocument is the subset of the OIDC discovery document the provider relies on.
type DiscoveryDocument struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	UserinfoEndpoint      string `json:"userinfo_endpoint"`
	JwksURI               string `json:"jwks_uri"`
}

// NewProvider performs discovery and returns a ready provider.
func NewProvider(ctx context.Context, config ProviderConfig) (*Provider, error) {
	switch {
	case config.ClientID == "":
		return nil, errors.New("client ID is required")
	case config.ClientSecret == "":
		return nil, errors.New("client secret is required")
	case config.RedirectURL == "":
		return nil, errors.New("redirect URL is required")
	case config.DiscoveryURL == "":
		return nil, errors.New("discovery URL is required")
	}

	bearer := config.Bearer
	if bearer == "" {
		bearer = BearerIDToken
	}
	if bearer != BearerIDToken && bearer != BearerAccessToken {
		return nil, fmt.Errorf("unsupported bearer source %q", bearer)
	}

	scopes := strings.Fields(config.Scope)
	if bearer == BearerIDToken && !slices.Contains(scopes, gooidc.ScopeOpenID) {
		return nil, errors.New("scope must include openid when the id_token is the bearer")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	ctx = gooidc.ClientContext(ctx, httpClient)
	op, err := gooidc.NewProvider(ctx, issuerFromDiscovery(config.DiscoveryURL))
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       scopes,
			Endpoint:     op.Endpoint(),
		},
		httpClient:   httpClient,
		bearer:       bearer,
		oidcProvider: op,
		verifier:     op.Verifier(&gooidc.Config{ClientID: config.ClientID}),
	}, nil
}

func issuerFromDiscovery(u string) string {
	issuer := strings.TrimSuffix(u, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	return strings.TrimSuffix(issuer, "/")
}

func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}

	state, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}

	// redirect_uri stays the configured one; the post-login target travels in the state record.
	authURL := p.config.AuthCodeURL(state,
		gooidc.Nonce(nonce),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
	return authURL, state, nonce, nil
}

func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	switch {
	case in.Code == "":
		return domainauth.Identity{}, errors.New("authorization code is required")
	case in.State == "":
		return domainauth.Identity{}, errors.New("state is required")
	case in.Nonce == "":
		return domainauth.Identity{}, errors.New("nonce is required")
	}

	ctx = gooidc.ClientContext(ctx, p.httpClient)
	token, err := p.config.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("exchange code for token: %w", err)
	}

	rawID, err := getIDTokenFromToken(token)
	if err != nil {
		return domainauth.Identity{}, err
	}
	idTok, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("verify id_token: %w", err)
	}
	var claims idTokenClaims
	if err := idTok.Claims(&claims); err != nil {
		return domainauth.Identity{}, fmt.Errorf("parse id_token claims: %w", err)
	}
	if claims.Nonce != in.Nonce {
		return domainauth.Identity{}, errors.New("invalid nonce")
	}

	if claims.Email == "" || claims.Name == "" {
		if err := p.fillFromUserInfo(ctx, token, &claims); err != nil {
			return domainauth.Identity{}, fmt.Errorf("get user info: %w", err)
		}
	}
	if claims.Email == "" {
		return domainauth.Identity{}, errors.New("identity provider returned no email")
	}

	bearer := rawID
	expiresAt := idTok.Expiry
	if p.bearer == BearerAccessToken {
		bearer = token.AccessToken
		expiresAt = token.Expiry
	}
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(time.Hour)
	}

	return domainauth.Identity{
		Subject:   idTok.Subject,
		Email:     claims.Email,
		Name:      displayName(claims),
		Token:     bearer,
		ExpiresAt: expiresAt,
	}, nil
}

// idTokenClaims holds the standard OIDC profile claims the service reads.
type idTokenClaims struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Nonce      string `json:"nonce"`
}

func (p *Provider) fillFromUserInfo(ctx context.Context, tok *oauth2.Token, c *idTokenClaims) error {
	ui, err := p.oidcProvider.UserInfo(ctx, oauth2.StaticTokenSource(tok))
	if err != nil {
		return fmt.Errorf("fetch user info: %w", err)
	}
	var extra idTokenClaims
	if err := ui.Claims(&extra); err != nil {
		return fmt.Errorf("decode user info: %w", err)
	}
	mergeClaims(c, extra, ui.Email)
	return nil
}

// mergeClaims fills empty fields of c from the userinfo payload.
func mergeClaims(c *idTokenClaims, ui idTokenClaims, uiEmail string) {
	c.Email = firstNonEmpty(c.Email, ui.Email, uiEmail)
	c.Name = firstNonEmpty(c.Name, ui.Name)
	c.GivenName = firstNonEmpty(c.GivenName, ui.GivenName)
	c.FamilyName = firstNonEmpty(c.FamilyName, ui.FamilyName)
}

func displayName(c idTokenClaims) string {
	if c.Name != "" {
		return c.Name
	}
	if full := strings.TrimSpace(c.GivenName + " " + c.FamilyName); full != "" {
		return full
	}
	return c.Email
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// generateRandomString returns a URL-safe random string of exactly length characters.
func generateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	b := make([]byte, (length*3+3)/4+1)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:length], nil
}

func getIDTokenFromToken(tok *oauth2.Token) (string, error) {
	if tok == nil {
		return "", errors.New("nil token")
	}
	s, ok := tok.Extra("id_token").(string)
	if !ok || s == "" {
		return "", errors.New("missing id_token in token response")
	}
	return s, nil
}
