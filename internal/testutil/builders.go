package testutil

import (
	"time"

	domainauth "github.com/clientcheckin/checkin-web/internal/domain/auth"
	"github.com/clientcheckin/checkin-web/internal/domain/model"
)

// ProfileBuilder provides a fluent interface for building profile inputs in tests.
type ProfileBuilder struct {
	in domainauth.ProfileInput
}

// NewProfile creates a ProfileBuilder for a volunteer with sensible defaults.
func NewProfile() *ProfileBuilder {
	return &ProfileBuilder{
		in: domainauth.ProfileInput{
			Email:      "volunteer@example.com",
			Name:       "Test Volunteer",
			Roles:      []string{"volunteer"},
			ActiveRole: "volunteer",
		},
	}
}

// WithEmail sets the email.
func (b *ProfileBuilder) WithEmail(email string) *ProfileBuilder {
	b.in.Email = email
	return b
}

// WithName sets the display name.
func (b *ProfileBuilder) WithName(name string) *ProfileBuilder {
	b.in.Name = name
	return b
}

// WithRoles sets the granted roles.
func (b *ProfileBuilder) WithRoles(roles ...string) *ProfileBuilder {
	b.in.Roles = roles
	return b
}

// WithActiveRole sets the active role.
func (b *ProfileBuilder) WithActiveRole(role string) *ProfileBuilder {
	b.in.ActiveRole = role
	return b
}

// Input returns the raw input, useful for serving it from a fake API.
func (b *ProfileBuilder) Input() domainauth.ProfileInput {
	out := b.in
	out.Roles = append([]string(nil), b.in.Roles...)
	return out
}

// Build validates the input and panics on failure; tests only.
func (b *ProfileBuilder) Build() domainauth.UserProfile {
	p, err := domainauth.NewUserProfile(b.Input())
	if err != nil {
		panic(err)
	}
	return p
}

// NewClient returns a populated client record for tests.
func NewClient(barcode string) model.Client {
	return model.Client{
		ID:        "1",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "555-0100",
		Address:   "12 Analytical Way",
		City:      "Springfield",
		State:     "IL",
		Postal:    "62701",
		DOB:       "1990-12-10",
		LTFID:     "LTF-" + barcode,
		ClientID:  barcode,
		LastVisit: TestTime().Add(-24 * time.Hour).Format(time.RFC3339),
		UpdatedAt: TestTime().Format(time.RFC3339),
	}
}

// NewCheckIn returns a check-in record for the given client id and name.
func NewCheckIn(id string, clientID, first, last string) model.CheckIn {
	return model.CheckIn{
		ID:          id,
		ClientID:    clientID,
		LTFID:       "LTF-" + clientID,
		FirstName:   first,
		LastName:    last,
		City:        "Springfield",
		State:       "IL",
		CheckInTime: TestTime(),
	}
}
