package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	admin := mustProfile(t, ProfileInput{Email: "a@example.com", Name: "A", Roles: []string{"admin"}, ActiveRole: "admin"})
	staff := mustProfile(t, ProfileInput{Email: "s@example.com", Name: "S", Roles: []string{"staff"}, ActiveRole: "staff"})

	tests := []struct {
		name  string
		state SessionState
		req   Requirement
		want  Decision
	}{
		{name: "unresolved waits", state: Unresolved(), req: AnyRole(), want: DecisionLoading},
		{name: "resolving waits", state: Resolving(), req: RequireActiveRole(RoleAdmin), want: DecisionLoading},
		{name: "unauthenticated redirects", state: Unauthenticated(NoticeNetworkFailure), req: AnyRole(), want: DecisionRedirect},
		{name: "admin admitted to admin page", state: Authenticated(admin), req: RequireActiveRole(RoleAdmin), want: DecisionAdmitted},
		{name: "staff denied on admin page", state: Authenticated(staff), req: RequireActiveRole(RoleAdmin), want: DecisionDenied},
		{name: "any role admits staff", state: Authenticated(staff), req: AnyRole(), want: DecisionAdmitted},
		{name: "zero requirement denies", state: Authenticated(admin), req: Requirement{}, want: DecisionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.state, tt.req))
		})
	}
}

// A volunteer who also holds admin is denied on the admin page, may switch to
// admin, and is then admitted without re-resolving.
func TestEvaluate_SwitchTurnsDenialIntoAdmission(t *testing.T) {
	p := mustProfile(t, ProfileInput{
		Email:      "v@example.com",
		Name:       "V",
		Roles:      []string{"volunteer", "admin"},
		ActiveRole: "volunteer",
	})
	req := RequireActiveRole(RoleAdmin)

	require.Equal(t, DecisionDenied, Evaluate(Authenticated(p), req))
	assert.Equal(t, []Role{RoleAdmin}, p.EligibleRoles())

	switched, err := p.WithActiveRole(RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, DecisionAdmitted, Evaluate(Authenticated(switched), req))
}

func TestSessionState_Equal(t *testing.T) {
	p := mustProfile(t, ProfileInput{Email: "a@example.com", Name: "A", Roles: []string{"admin"}, ActiveRole: "admin"})

	assert.True(t, Authenticated(p).Equal(Authenticated(p)))
	assert.False(t, Authenticated(p).Equal(Resolving()))
	assert.False(t, Unauthenticated(NoticeNetworkFailure).Equal(Unauthenticated(NoticeUnauthorized)))
	assert.True(t, Unresolved().Equal(SessionState{}))
}

func TestSessionState_ProfileOnlyWhenAuthenticated(t *testing.T) {
	p := mustProfile(t, ProfileInput{Email: "a@example.com", Name: "A", Roles: []string{"admin"}, ActiveRole: "admin"})

	_, ok := Resolving().CurrentProfile()
	assert.False(t, ok)
	got, ok := Authenticated(p).CurrentProfile()
	assert.True(t, ok)
	assert.True(t, got.Equal(p))
	assert.False(t, Resolving().IsSettled())
	assert.True(t, Unauthenticated(NoticeUnauthorized).IsSettled())
}

func TestParseNotice(t *testing.T) {
	assert.Equal(t, NoticeNetworkFailure, ParseNotice("network_failure"))
	assert.Equal(t, NoticeNone, ParseNotice("<script>"))
	assert.Equal(t, NoticeSignedUp, ParseNotice("signed_up"))
	assert.NotEmpty(t, NoticeMalformedProfile.Message())
	assert.Empty(t, NoticeNone.Message())
}
