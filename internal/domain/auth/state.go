package auth

// SessionStatus is the tag of a SessionState.
type SessionStatus int

const (
	StatusUnresolved SessionStatus = iota
	StatusResolving
	StatusAuthenticated
	StatusUnauthenticated
)

func (s SessionStatus) String() string {
	switch s {
	case StatusUnresolved:
		return "unresolved"
	case StatusResolving:
		return "resolving"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Notice classifies why a session ended up unauthenticated. It is shown to the user on the login page.
type Notice string

const (
	NoticeNone             Notice = ""
	NoticeNetworkFailure   Notice = "network_failure"
	NoticeUnauthorized     Notice = "unauthorized"
	NoticeMalformedProfile Notice = "malformed_profile"
	NoticeSignedOut        Notice = "signed_out"
	NoticeSessionExpired   Notice = "session_expired"
	NoticeSignedUp         Notice = "signed_up"
)

// Message returns the user-facing text for the notice.
func (n Notice) Message() string {
	switch n {
	case NoticeNetworkFailure:
		return "We could not reach the server to load your profile. Please sign in again."
	case NoticeUnauthorized:
		return "Unauthorized to fetch user profile. Please sign in again."
	case NoticeMalformedProfile:
		return "Your user profile is incomplete. Please contact an administrator."
	case NoticeSignedOut:
		return "You have been signed out."
	case NoticeSessionExpired:
		return "Your session has expired. Please sign in again."
	case NoticeSignedUp:
		return "Your account was created. Sign in to continue."
	default:
		return ""
	}
}

// ParseNotice maps a query value back to a known notice.
func ParseNotice(raw string) Notice {
	n := Notice(raw)
	if n.Message() == "" {
		return NoticeNone
	}
	return n
}

// SessionState is the value held by the profile store. Exactly one status holds;
// Profile is set only when Status is StatusAuthenticated and Notice only when
// Status is StatusUnauthenticated.
type SessionState struct {
	Status  SessionStatus
	Profile UserProfile
	Notice  Notice
}

// Unresolved is the initial state.
func Unresolved() SessionState { return SessionState{Status: StatusUnresolved} }

// Resolving marks a resolution in flight.
func Resolving() SessionState { return SessionState{Status: StatusResolving} }

// Authenticated carries a validated profile.
func Authenticated(p UserProfile) SessionState {
	return SessionState{Status: StatusAuthenticated, Profile: p}
}

// Unauthenticated records a terminal failure with its notice.
func Unauthenticated(n Notice) SessionState {
	return SessionState{Status: StatusUnauthenticated, Notice: n}
}

// IsSettled reports whether resolution has finished one way or the other.
func (s SessionState) IsSettled() bool {
	return s.Status == StatusAuthenticated || s.Status == StatusUnauthenticated
}

// CurrentProfile returns the profile and whether the state is authenticated.
func (s SessionState) CurrentProfile() (UserProfile, bool) {
	if s.Status != StatusAuthenticated {
		return UserProfile{}, false
	}
	return s.Profile, true
}

// Equal compares two states structurally.
func (s SessionState) Equal(other SessionState) bool {
	if s.Status != other.Status || s.Notice != other.Notice {
		return false
	}
	if s.Status != StatusAuthenticated {
		return true
	}
	return s.Profile.Equal(other.Profile)
}
