package auth

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidProfile marks a profile payload that is missing fields or breaks role invariants.
var ErrInvalidProfile = errors.New("invalid user profile")

// UserProfile is the application-level user resolved for a session.
// Fields are unexported so a profile can only be built through NewUserProfile,
// which guarantees ActiveRole is one of Roles.
type UserProfile struct {
	email      string
	name       string
	roles      []Role
	activeRole Role
}

// ProfileInput carries raw profile values, typically decoded from the wire.
type ProfileInput struct {
	Email      string
	Name       string
	Roles      []string
	ActiveRole string
}

// NewUserProfile validates in and returns a profile. Every field is required.
func NewUserProfile(in ProfileInput) (UserProfile, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return UserProfile{}, fmt.Errorf("%w: missing email", ErrInvalidProfile)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return UserProfile{}, fmt.Errorf("%w: missing name", ErrInvalidProfile)
	}
	if len(in.Roles) == 0 {
		return UserProfile{}, fmt.Errorf("%w: missing roles", ErrInvalidProfile)
	}
	if strings.TrimSpace(in.ActiveRole) == "" {
		return UserProfile{}, fmt.Errorf("%w: missing activeRole", ErrInvalidProfile)
	}

	roles := make([]Role, 0, len(in.Roles))
	for _, raw := range in.Roles {
		r, err := ParseRole(raw)
		if err != nil {
			return UserProfile{}, err
		}
		if !slices.Contains(roles, r) {
			roles = append(roles, r)
		}
	}

	active, err := ParseRole(in.ActiveRole)
	if err != nil {
		return UserProfile{}, err
	}
	if !slices.Contains(roles, active) {
		return UserProfile{}, fmt.Errorf("%w: activeRole %q not in roles", ErrInvalidProfile, active)
	}

	return UserProfile{email: email, name: name, roles: roles, activeRole: active}, nil
}

// Email returns the account email.
func (p UserProfile) Email() string { return p.email }

// Name returns the display name.
func (p UserProfile) Name() string { return p.name }

// Roles returns a copy of the assigned roles.
func (p UserProfile) Roles() []Role { return slices.Clone(p.roles) }

// ActiveRole returns the currently selected role.
func (p UserProfile) ActiveRole() Role { return p.activeRole }

// HasRole reports whether r is assigned to the profile.
func (p UserProfile) HasRole(r Role) bool { return slices.Contains(p.roles, r) }

// IsZero reports whether p was never constructed.
func (p UserProfile) IsZero() bool { return p.email == "" }

// Equal compares two profiles structurally. Role order is ignored.
func (p UserProfile) Equal(other UserProfile) bool {
	if p.email != other.email || p.name != other.name || p.activeRole != other.activeRole {
		return false
	}
	if len(p.roles) != len(other.roles) {
		return false
	}
	for _, r := range p.roles {
		if !other.HasRole(r) {
			return false
		}
	}
	return true
}

// RoleStrings returns the roles in wire form.
func (p UserProfile) RoleStrings() []string {
	out := make([]string, len(p.roles))
	for i, r := range p.roles {
		out[i] = string(r)
	}
	return out
}
