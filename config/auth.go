package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const minSigningKeyLen = 16

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOAuth uses OAuth/OIDC for authentication.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// OAuthConfig contains OAuth/OIDC configuration.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"     envDefault:"checkin-web"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
	// BearerToken selects the token presented to the check-in API: id_token or access_token.
	BearerToken string `env:"BEARER_TOKEN" envDefault:"id_token"`
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	Subject         string        `env:"SUBJECT"          envDefault:"dev-user"`
	Email           string        `env:"EMAIL"            envDefault:"dev@example.com"`
	Name            string        `env:"NAME"             envDefault:"Dev User"`
	SigningKey      string        `env:"SIGNING_KEY"`
	SessionDuration time.Duration `env:"SESSION_DURATION" envDefault:"8h"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authentication provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`
}

// Validate checks the settings the selected mode depends on.
func (c *AuthConfig) Validate() error {
	switch c.Mode {
	case AuthModeOAuth:
		if strings.TrimSpace(c.OAuth.DiscoveryURL) == "" {
			return errors.New("OAUTH_DISCOVERY_URL is required when AUTH_MODE=oauth")
		}
		switch c.OAuth.BearerToken {
		case "id_token", "access_token":
		default:
			return fmt.Errorf("invalid OAUTH_BEARER_TOKEN: %q (valid options: id_token, access_token)", c.OAuth.BearerToken)
		}
	case AuthModeMock:
		if len(c.DevAuth.SigningKey) < minSigningKeyLen {
			return fmt.Errorf("DEV_AUTH_SIGNING_KEY must be at least %d bytes when AUTH_MODE=mock", minSigningKeyLen)
		}
	default:
		return fmt.Errorf("invalid AuthMode: %q", c.Mode)
	}
	return nil
}
