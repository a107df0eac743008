package viewmodel

// User represents the authenticated user context exposed to templates.
type User struct {
	Email           string
	Name            string
	ActiveRole      string
	ActiveRoleLabel string
	Roles           []string
}

// RoleOption is one entry of the role switch menu.
type RoleOption struct {
	Value string
	Label string
}

// Layout captures shared chrome metadata (titles, navigation state, auth flags).
type Layout struct {
	Title           string
	PageTitle       string
	CurrentPage     string
	CSRFToken       string
	RedirectURI     string
	IsAuthenticated bool
	IsAdmin         bool
	User            *User
	EligibleRoles   []RoleOption
}
