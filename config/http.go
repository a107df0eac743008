package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

const csrfKeyLen = 32

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the public URL of the application (e.g., "https://checkin.example.org").
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// CookieDomain is the domain for session cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// CSRFKey signs the CSRF cookie (32 bytes). Empty disables CSRF protection.
	CSRFKey string `env:"HTTP_CSRF_KEY"`

	// TrustedOrigins lists extra origins (host[:port]) allowed to post forms.
	TrustedOrigins []string `env:"HTTP_TRUSTED_ORIGINS" envSeparator:","`

	// CompressionEnabled enables gzip compression for text-based assets.
	CompressionEnabled bool `env:"HTTP_COMPRESSION_ENABLED" envDefault:"false"`

	// CompressionLevel is the gzip compression level (1-9).
	// Default is 6 (standard gzip default).
	CompressionLevel int `env:"HTTP_COMPRESSION_LEVEL" envDefault:"6"`

	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"     envDefault:"30s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"    envDefault:"30s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT"     envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	// Clamp compression level to valid gzip range (1-9)
	if h.CompressionLevel < 1 {
		h.CompressionLevel = 1
	}
	if h.CompressionLevel > 9 {
		h.CompressionLevel = 9
	}

	h.CookieDomain = strings.ToLower(strings.TrimSpace(h.CookieDomain))
	origins := h.TrustedOrigins[:0]
	for _, o := range h.TrustedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	h.TrustedOrigins = origins

	if h.ReadTimeout <= 0 {
		h.ReadTimeout = 30 * time.Second
	}
	if h.WriteTimeout <= 0 {
		h.WriteTimeout = 30 * time.Second
	}
	if h.IdleTimeout <= 0 {
		h.IdleTimeout = 120 * time.Second
	}
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 10 * time.Second
	}
}

// Validate rejects a CSRF key of the wrong size and cookie domains that
// browsers refuse or that would leak the session to unrelated sites.
func (h *HTTPConfig) Validate() error {
	if h.CSRFKey != "" && len(h.CSRFKey) != csrfKeyLen {
		return fmt.Errorf("HTTP_CSRF_KEY must be %d bytes, got %d", csrfKeyLen, len(h.CSRFKey))
	}
	return ValidateCookieDomain(h.CookieDomain)
}

// ValidateCookieDomain accepts an empty domain (host-only cookies) or a
// registrable domain or subdomain of one. Public suffixes such as "co.uk" or
// "github.io" are rejected.
func ValidateCookieDomain(domain string) error {
	d := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), ".")
	if d == "" {
		return nil
	}
	if d == "localhost" {
		return nil
	}
	if strings.ContainsAny(d, ":/ ") {
		return fmt.Errorf("invalid APP_COOKIE_DOMAIN %q", domain)
	}
	suffix, icann := publicsuffix.PublicSuffix(d)
	if suffix == d {
		return fmt.Errorf("APP_COOKIE_DOMAIN %q is a public suffix", domain)
	}
	if !icann && !strings.Contains(suffix, ".") {
		// Unlisted TLD (e.g. ".internal"); accept anything below it.
		return nil
	}
	if _, err := publicsuffix.EffectiveTLDPlusOne(d); err != nil {
		return errors.Join(fmt.Errorf("invalid APP_COOKIE_DOMAIN %q", domain), err)
	}
	return nil
}
