package auth

// Requirement decides whether an active role may view a page.
type Requirement struct {
	name  string
	allow func(active Role) bool
}

// Name describes the requirement for logs.
func (r Requirement) Name() string { return r.name }

// Allows reports whether active satisfies the requirement.
func (r Requirement) Allows(active Role) bool {
	if r.allow == nil {
		return false
	}
	return r.allow(active)
}

// AnyRole admits any authenticated user.
func AnyRole() Requirement {
	return Requirement{name: "any", allow: func(active Role) bool { return active.Valid() }}
}

// RequireActiveRole admits only when the active role equals role.
func RequireActiveRole(role Role) Requirement {
	return Requirement{
		name:  "active:" + string(role),
		allow: func(active Role) bool { return active == role },
	}
}

// Decision is the outcome of evaluating a page requirement.
type Decision int

const (
	DecisionLoading Decision = iota
	DecisionRedirect
	DecisionDenied
	DecisionAdmitted
)

func (d Decision) String() string {
	switch d {
	case DecisionLoading:
		return "loading"
	case DecisionRedirect:
		return "redirect"
	case DecisionDenied:
		return "denied"
	case DecisionAdmitted:
		return "admitted"
	default:
		return "unknown"
	}
}

// Evaluate decides what a page guarded by req should show for state.
func Evaluate(state SessionState, req Requirement) Decision {
	switch state.Status {
	case StatusAuthenticated:
		if req.Allows(state.Profile.ActiveRole()) {
			return DecisionAdmitted
		}
		return DecisionDenied
	case StatusUnauthenticated:
		return DecisionRedirect
	default:
		return DecisionLoading
	}
}
