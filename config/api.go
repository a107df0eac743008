package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// APIConfig points at the upstream check-in API.
type APIConfig struct {
	// BaseURL is the API origin; endpoints live under /api.
	BaseURL string `env:"API_URL" envDefault:"http://localhost:8081"`
	// SignupURL receives invite-code signups. Signup is disabled when empty.
	SignupURL string `env:"SIGNUP_URL"`
	// Timeout bounds each API call.
	Timeout time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
}

// Sanitize trims URLs and restores a usable timeout.
func (c *APIConfig) Sanitize() {
	c.BaseURL = strings.TrimSuffix(strings.TrimSpace(c.BaseURL), "/")
	c.SignupURL = strings.TrimSpace(c.SignupURL)
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
}

// Validate requires absolute http(s) URLs.
func (c *APIConfig) Validate() error {
	if err := validateHTTPURL("API_URL", c.BaseURL); err != nil {
		return err
	}
	if c.SignupURL == "" {
		return nil
	}
	return validateHTTPURL("SIGNUP_URL", c.SignupURL)
}

func validateHTTPURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", name, raw)
	}
	return nil
}
