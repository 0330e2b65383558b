package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSession(t *testing.T) {
	s, err := ParseSession([]byte(`{"username":" ana ","email":"ana@example.com","avatarUrl":"/a.png"}`))
	require.NoError(t, err)
	assert.Equal(t, Session{Username: "ana", Email: "ana@example.com", AvatarURL: "/a.png"}, *s)

	_, err = ParseSession([]byte(`{not json`))
	require.Error(t, err)

	_, err = ParseSession([]byte(`{"email":"x@example.com"}`))
	require.Error(t, err)
}

func TestSession_MarshalRoundTrip(t *testing.T) {
	in := Session{Username: "ana", Email: "ana@example.com"}
	data, err := in.Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, `{"username":"ana","email":"ana@example.com"}`, string(data))

	out, err := ParseSession(data)
	require.NoError(t, err)
	assert.Equal(t, in, *out)
}

func TestSessionTransitions(t *testing.T) {
	var s SessionState
	assert.False(t, s.Authenticated())

	s = BeginRequest(s)
	assert.True(t, s.InFlight)

	user := Session{Username: "ana"}
	s = EndRequest(SignedIn(s, user))
	assert.True(t, s.Authenticated())
	assert.False(t, s.InFlight)

	user.Username = "mutated"
	assert.Equal(t, "ana", s.User.Username, "SignedIn must copy the user")

	s = SignedOut(s)
	assert.False(t, s.Authenticated())
}

func TestParseTab(t *testing.T) {
	tab, ok := ParseTab(" Register ")
	assert.True(t, ok)
	assert.Equal(t, TabRegister, tab)

	tab, ok = ParseTab("login")
	assert.True(t, ok)
	assert.Equal(t, TabLogin, tab)

	_, ok = ParseTab("admin")
	assert.False(t, ok)
}

// checkAdmin runs an admin check that completes in the register view it started in.
func checkAdmin(g GateState, ok bool) GateState {
	g = AdminAttempted(g, "root")
	return AdminResolved(g, ok, g.AttemptGeneration)
}

func TestGateState_BootstrapRegistration(t *testing.T) {
	g := AccountsChecked(NewGateState(), false)
	assert.True(t, g.RegistrationEnabled())
	assert.False(t, g.OverlayVisible())
}

func TestGateState_AdminValidationFlipsBothTogether(t *testing.T) {
	g := AccountsChecked(NewGateState(), true)
	g = SwitchTab(g, TabRegister)
	assert.False(t, g.RegistrationEnabled())
	assert.True(t, g.OverlayVisible())

	g = checkAdmin(g, true)
	assert.True(t, g.RegistrationEnabled())
	assert.False(t, g.OverlayVisible())
	assert.False(t, g.InFlight)
}

func TestGateState_FailedAdminCheckStaysGated(t *testing.T) {
	g := SwitchTab(AccountsChecked(NewGateState(), true), TabRegister)
	g = checkAdmin(g, false)
	assert.True(t, g.OverlayVisible())
	assert.Equal(t, "root", g.AdminUsername)
}

func TestGateState_TabSwitchResetsValidation(t *testing.T) {
	g := SwitchTab(AccountsChecked(NewGateState(), true), TabRegister)
	g = checkAdmin(g, true)
	require.True(t, g.AdminValidated)

	g = SwitchTab(g, TabLogin)
	g = SwitchTab(g, TabRegister)
	assert.False(t, g.AdminValidated)
	assert.Empty(t, g.AdminUsername)
	assert.True(t, g.OverlayVisible())
}

func TestGateState_SameTabKeepsValidation(t *testing.T) {
	g := SwitchTab(AccountsChecked(NewGateState(), true), TabRegister)
	g = checkAdmin(g, true)

	g = SwitchTab(g, TabRegister)
	assert.True(t, g.AdminValidated)
}

func TestGateState_SupersededAdminCheckIsIgnored(t *testing.T) {
	g := SwitchTab(AccountsChecked(NewGateState(), true), TabRegister)
	g = AdminAttempted(g, "root")
	started := g.AttemptGeneration

	g = SwitchTab(g, TabLogin)
	g = SwitchTab(g, TabRegister)
	require.False(t, g.AdminCurrent(started))

	g = AdminResolved(g, true, started)
	assert.False(t, g.AdminValidated)
	assert.False(t, g.InFlight)
	assert.True(t, g.OverlayVisible())
}

func TestGateReset(t *testing.T) {
	g := GateState{AccountsExist: true, AdminValidated: true, AdminUsername: "root", Generation: 3}
	g = GateReset(g)
	assert.False(t, g.AdminValidated)
	assert.Empty(t, g.AdminUsername)
	assert.True(t, g.AccountsExist)
	assert.Equal(t, uint64(4), g.Generation)
}

func TestStatusMessage_Empty(t *testing.T) {
	assert.True(t, StatusMessage{}.Empty())
	assert.True(t, StatusMessage{Kind: StatusError}.Empty())
	assert.False(t, StatusMessage{Kind: StatusError, Text: "x"}.Empty())
	assert.True(t, StatusMessage{Kind: StatusError, Text: "x"}.IsError())
}
