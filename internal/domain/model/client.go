//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"strings"
	"time"
)

// Client is a client record as returned by the check-in API barcode lookup.
type Client struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postal    string `json:"postal"`
	DOB       string `json:"dob"`
	LTFID     string `json:"ltf_id"`
	ClientID  string `json:"client_id"`
	LastVisit string `json:"last_visit"`
	UpdatedAt string `json:"updated_at"`
}

// FullName joins first and last name the way the dashboard displays it.
func (c Client) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// CheckIn is one recorded visit as listed on the admin dashboard.
type CheckIn struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"client_id"`
	LTFID       string    `json:"ltf_id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	Postal      string    `json:"postal"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	CheckInTime time.Time `json:"checkInTime"`
}

// FullName joins first and last name.
func (c CheckIn) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// CheckInRequest is the body posted to record a visit.
type CheckInRequest struct {
	Barcode string `json:"barcode"`
}

// CheckInResult is the API acknowledgement of a recorded visit.
type CheckInResult struct {
	ID          string    `json:"id,omitempty"`
	ClientID    string    `json:"client_id,omitempty"`
	CheckInTime time.Time `json:"checkInTime,omitzero"`
	Message     string    `json:"message,omitempty"`
}
