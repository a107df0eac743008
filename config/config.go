package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: Authentication configuration
//   - redis.go: Session store configuration
//   - http.go: HTTP server configuration
//   - api.go: Check-in API endpoints
//   - session.go: Session lifetime and profile resolution tuning
//   - services.go: Service modes
type AppConfig struct {
	// IsDev controls development mode behavior (hot reloading, caching, etc.)
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Authentication configuration
	Auth AuthConfig

	// Session store configuration
	Redis RedisConfig `envPrefix:"REDIS_"`

	// HTTP server configuration
	HTTP HTTPConfig

	// Upstream check-in API
	API APIConfig

	// Session lifetime and profile resolution
	Session SessionConfig `envPrefix:"SESSION_"`

	// Service mode configuration
	Services string `env:"SERVICES" envDefault:"http"`

	// Local check-in API stand-in (SERVICES=devapi)
	DevAPI DevAPIConfig `envPrefix:"DEVAPI_"`

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.API.Sanitize()
	c.Session.Sanitize()
	c.DevAPI.Sanitize()
	c.Observability.Sanitize()

	// Check NODE_ENV for dev mode
	c.detectDevMode()
}

// Validate reports configuration the process cannot start with.
// Call after Sanitize.
func (c *AppConfig) Validate() error {
	services, err := c.GetEnabledServices()
	if err != nil {
		return err
	}

	var errs []error
	if services[ServiceModeHTTP] {
		errs = append(errs, c.Auth.Validate(), c.HTTP.Validate(), c.API.Validate())
	}
	if services[ServiceModeDevAPI] {
		if !c.IsDev {
			errs = append(errs, errors.New("devapi service requires development mode (DEV=true)"))
		}
		if len(c.Auth.DevAuth.SigningKey) < minSigningKeyLen {
			errs = append(errs, fmt.Errorf("devapi service requires DEV_AUTH_SIGNING_KEY of at least %d bytes", minSigningKeyLen))
		}
	}
	if c.Auth.Mode == AuthModeMock && !c.IsDev {
		errs = append(errs, errors.New("AUTH_MODE=mock requires development mode (DEV=true)"))
	}
	return errors.Join(errs...)
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// This is called by Sanitize() to ensure IsDev is set correctly.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsHTTPServerEnabled returns true if the HTTP server service is enabled.
func (c *AppConfig) IsHTTPServerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeHTTP]
}

// IsDevAPIEnabled returns true if the local check-in API stand-in is enabled.
func (c *AppConfig) IsDevAPIEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeDevAPI]
}
