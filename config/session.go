package config

import "time"

// SessionConfig tunes session lifetime and profile resolution.
type SessionConfig struct {
	// TTL caps how long a signed-in session lives.
	TTL time.Duration `env:"TTL" envDefault:"8h"`
	// IdleTTL evicts in-memory profile scopes unused for this long.
	IdleTTL time.Duration `env:"IDLE_TTL" envDefault:"30m"`
	// SweepInterval is how often idle scopes are evicted.
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
	// FetchTimeout bounds one profile request.
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT" envDefault:"10s"`
	// GuardWait is how long a request waits for the profile before the loading page.
	GuardWait time.Duration `env:"GUARD_WAIT" envDefault:"3s"`
}

// Sanitize applies guardrails to session configuration values.
func (c *SessionConfig) Sanitize() {
	if c.TTL <= 0 {
		c.TTL = 8 * time.Hour
	}
	if c.IdleTTL <= 0 {
		c.IdleTTL = 30 * time.Minute
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Minute
	}
	// Sweeping less often than the idle window keeps scopes alive far past it.
	if c.SweepInterval > c.IdleTTL {
		c.SweepInterval = c.IdleTTL
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 10 * time.Second
	}
	if c.GuardWait < 0 {
		c.GuardWait = 0
	}
}
