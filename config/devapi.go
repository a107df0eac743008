package config

import "strings"

// DevAPIConfig configures the in-memory check-in API used for local development.
// It verifies bearer tokens with DEV_AUTH_SIGNING_KEY.
type DevAPIConfig struct {
	Addr string `env:"ADDR" envDefault:":8081"`
	// Roles granted to every dev identity, first one active.
	Roles []string `env:"ROLES" envDefault:"volunteer;admin" envSeparator:";"`
	// InviteCode is the only invite code signup accepts.
	InviteCode string `env:"INVITE_CODE" envDefault:"WELCOME"`
}

// Sanitize drops blank roles.
func (c *DevAPIConfig) Sanitize() {
	roles := c.Roles[:0]
	for _, r := range c.Roles {
		if r = strings.ToLower(strings.TrimSpace(r)); r != "" {
			roles = append(roles, r)
		}
	}
	c.Roles = roles
	if c.Addr == "" {
		c.Addr = ":8081"
	}
}
