//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "strings"

const (
	// DefaultCheckInPageSize is used when the caller does not pick a page size.
	DefaultCheckInPageSize = 25
	// MaxCheckInPageSize caps page_size.
	MaxCheckInPageSize = 200
)

// CheckInFilters narrows the dashboard listing.
// Notes:
// - Column filters match exactly; an empty value means no filter on that column.
// - Name matches "first last".
// - Query is an optional JMESPath expression evaluated over the full record list.
type CheckInFilters struct {
	Name     string
	ClientID string
	LTFID    string
	Email    string
	Phone    string
	Address  string
	City     string
	State    string
	Postal   string
	Query    string
	Page     int
	PageSize int
}

// Normalize trims every filter and clamps paging.
func (f CheckInFilters) Normalize() CheckInFilters {
	out := CheckInFilters{
		Name:     strings.TrimSpace(f.Name),
		ClientID: strings.TrimSpace(f.ClientID),
		LTFID:    strings.TrimSpace(f.LTFID),
		Email:    strings.TrimSpace(f.Email),
		Phone:    strings.TrimSpace(f.Phone),
		Address:  strings.TrimSpace(f.Address),
		City:     strings.TrimSpace(f.City),
		State:    strings.TrimSpace(f.State),
		Postal:   strings.TrimSpace(f.Postal),
		Query:    strings.TrimSpace(f.Query),
		Page:     f.Page,
		PageSize: f.PageSize,
	}
	if out.Page < 1 {
		out.Page = 1
	}
	if out.PageSize <= 0 {
		out.PageSize = DefaultCheckInPageSize
	}
	if out.PageSize > MaxCheckInPageSize {
		out.PageSize = MaxCheckInPageSize
	}
	return out
}

// Matches reports whether c passes every non-empty column filter.
func (f CheckInFilters) Matches(c CheckIn) bool {
	checks := []struct{ want, got string }{
		{f.Name, c.FullName()},
		{f.ClientID, c.ClientID},
		{f.LTFID, c.LTFID},
		{f.Email, c.Email},
		{f.Phone, c.Phone},
		{f.Address, c.Address},
		{f.City, c.City},
		{f.State, c.State},
		{f.Postal, c.Postal},
	}
	for _, ch := range checks {
		if ch.want != "" && ch.want != ch.got {
			return false
		}
	}
	return true
}

// Active reports whether any column filter or query is set.
func (f CheckInFilters) Active() bool {
	return f.Name != "" || f.ClientID != "" || f.LTFID != "" || f.Email != "" ||
		f.Phone != "" || f.Address != "" || f.City != "" || f.State != "" ||
		f.Postal != "" || f.Query != ""
}

// CheckInPage is one page of the filtered dashboard listing.
type CheckInPage struct {
	Items    []CheckIn
	Total    int
	Page     int
	PageSize int
}

// HasNext reports whether another page follows.
func (p CheckInPage) HasNext() bool {
	if p.PageSize <= 0 {
		return false
	}
	return p.Page < (p.Total+p.PageSize-1)/p.PageSize
}

// HasPrev reports whether a page precedes.
func (p CheckInPage) HasPrev() bool { return p.Page > 1 }
