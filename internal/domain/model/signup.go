//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
)

// SignupRequest is an invite-code account request.
type SignupRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
	InviteCode      string `json:"inviteCode"`
}

var (
	ErrSignupMissingFields  = errors.New("please fill in all fields")
	ErrSignupPasswordsMatch = errors.New("passwords do not match")
)

// Validate checks required fields and password confirmation.
func (r *SignupRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	r.InviteCode = strings.TrimSpace(r.InviteCode)
	if r.Email == "" || r.Password == "" || r.ConfirmPassword == "" || r.InviteCode == "" {
		return ErrSignupMissingFields
	}
	if r.Password != r.ConfirmPassword {
		return ErrSignupPasswordsMatch
	}
	return nil
}
