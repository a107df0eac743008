package auth

import (
	"errors"
	"fmt"
	"slices"
)

// ErrRoleNotEligible is returned when a switch targets a role outside the eligible set.
var ErrRoleNotEligible = errors.New("role not eligible for switch")

// SwitchRules lists, per active role, the roles a user may switch to, in menu order.
// A role missing from the table has no switch targets. Adding a role requires
// adding its row and deciding which existing rows may reach it.
//
//nolint:gochecknoglobals // static read-only policy table
var SwitchRules = map[Role][]Role{
	RoleVolunteer: {RoleAdmin, RoleStaff},
	RoleAdmin:     {RoleVolunteer, RoleStaff},
	RoleStaff:     {RoleVolunteer, RoleAdmin},
}

// EligibleRoles returns the switch targets for active restricted to roles.
// The active role is never included.
func EligibleRoles(roles []Role, active Role) []Role {
	targets := SwitchRules[active]
	out := make([]Role, 0, len(targets))
	for _, r := range targets {
		if r == active || !slices.Contains(roles, r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// EligibleRoles returns the switch targets for the profile.
func (p UserProfile) EligibleRoles() []Role {
	return EligibleRoles(p.roles, p.activeRole)
}

// WithActiveRole returns a copy of p with target as the active role.
// Roles are never changed. Fails with ErrRoleNotEligible when target is not a switch target.
func (p UserProfile) WithActiveRole(target Role) (UserProfile, error) {
	if p.IsZero() {
		return p, fmt.Errorf("%w: no profile", ErrRoleNotEligible)
	}
	if !slices.Contains(p.EligibleRoles(), target) {
		return p, fmt.Errorf("%w: %q from %q", ErrRoleNotEligible, target, p.activeRole)
	}
	next := p
	next.roles = slices.Clone(p.roles)
	next.activeRole = target
	return next, nil
}
