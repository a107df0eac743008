package auth

// Package auth contains domain-level types for authentication, user profiles,
// role switching and page access decisions.
// It is pure and free of framework/adapter concerns.

import (
	"fmt"
	"strings"
	"time"
)

// Role represents an application's authorization role.
// Keep string form for easy persistence and wire payloads.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleVolunteer Role = "volunteer"
	RoleStaff     Role = "staff"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleVolunteer, RoleStaff:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (r Role) String() string { return string(r) }

// Label is the human readable role name used in menus.
func (r Role) Label() string {
	s := string(r)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseRole converts a wire value into a Role. Unknown values are an error.
func ParseRole(raw string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidProfile, raw)
	}
	return r, nil
}

// Identity represents the authenticated principal returned by an IdP.
// Token is the bearer credential presented to the check-in API.
type Identity struct {
	Subject   string
	Email     string
	Name      string
	Token     string
	ExpiresAt time.Time
}

// SameAccount reports whether two identities refer to the same account.
func (i Identity) SameAccount(other Identity) bool {
	return i.Email != "" && strings.EqualFold(i.Email, other.Email)
}

// Session is the server-side record we persist for an authenticated browser.
// ID is an opaque session identifier carried in the session cookie.
type Session struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Identity returns the identity handle the session was created from.
func (s Session) Identity() Identity {
	return Identity{
		Subject:   s.Subject,
		Email:     s.Email,
		Name:      s.Name,
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
	}
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
