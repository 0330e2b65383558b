// Package auth contains domain-level types for the session and registration gate.
// Every transition is a function from one state value to the next.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// StorageKey is the fixed key the persisted session copy is cached under.
const StorageKey = "visorhr_user"

// Session is the authenticated user as the client knows it.
// The backend session cookie is authoritative; this is a best-effort copy.
type Session struct {
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// Marshal encodes the session for the persisted cache.
func (s Session) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// ParseSession decodes a cached session. A payload without a username is rejected.
func ParseSession(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode cached session: %w", err)
	}
	s.Username = strings.TrimSpace(s.Username)
	if s.Username == "" {
		return nil, errors.New("decode cached session: username is empty")
	}
	return &s, nil
}

// SessionState is the session dimension of a view: Anonymous when User is nil.
type SessionState struct {
	User     *Session
	InFlight bool
}

// Authenticated reports whether a user is signed in.
func (s SessionState) Authenticated() bool { return s.User != nil }

// BeginRequest marks a login, register or logout call as in flight.
func BeginRequest(s SessionState) SessionState {
	s.InFlight = true
	return s
}

// EndRequest clears the in-flight flag.
func EndRequest(s SessionState) SessionState {
	s.InFlight = false
	return s
}

// SignedIn moves to Authenticated with a copy of user.
func SignedIn(s SessionState, user Session) SessionState {
	u := user
	s.User = &u
	return s
}

// SignedOut moves to Anonymous.
func SignedOut(s SessionState) SessionState {
	s.User = nil
	return s
}

// Tab is one of the two views of the auth panel.
type Tab string

const (
	TabLogin    Tab = "login"
	TabRegister Tab = "register"
)

// ParseTab accepts "login" or "register" (case-insensitive).
func ParseTab(raw string) (Tab, bool) {
	switch Tab(strings.ToLower(strings.TrimSpace(raw))) {
	case TabLogin:
		return TabLogin, true
	case TabRegister:
		return TabRegister, true
	default:
		return "", false
	}
}

// GateState is the registration gate.
//
// AccountsExist is fetched once when the view mounts. AdminValidated is true only after a
// successful admin credential check in the current register view.
type GateState struct {
	ActiveTab      Tab
	AccountsExist  bool
	AdminValidated bool
	// AdminUsername is the admin-credential input buffer echoed back into the overlay form.
	AdminUsername string
	InFlight      bool
	// Generation advances whenever a register view ends, so an admin check started in
	// an earlier one cannot unlock a later one.
	Generation uint64
	// AttemptGeneration is the Generation the in-flight admin check started in.
	AttemptGeneration uint64
}

// NewGateState returns the mount-time gate: login tab, no accounts assumed, not validated.
func NewGateState() GateState {
	return GateState{ActiveTab: TabLogin}
}

// RegistrationEnabled reports whether the register submit control may be used.
func (g GateState) RegistrationEnabled() bool { return !g.AccountsExist || g.AdminValidated }

// OverlayVisible reports whether the admin-authorization overlay is shown.
// It is the exact complement of RegistrationEnabled.
func (g GateState) OverlayVisible() bool { return g.AccountsExist && !g.AdminValidated }

// AccountsChecked records the result of the mount-time existence check.
func AccountsChecked(g GateState, exist bool) GateState {
	g.AccountsExist = exist
	return g
}

// SwitchTab moves to tab. Changing tabs drops any admin validation and the admin input.
func SwitchTab(g GateState, tab Tab) GateState {
	if tab == g.ActiveTab {
		return g
	}
	g.ActiveTab = tab
	g.AdminValidated = false
	g.AdminUsername = ""
	g.Generation++
	return g
}

// AdminAttempted records the username typed into the overlay and marks the check in flight.
func AdminAttempted(g GateState, username string) GateState {
	g.AdminUsername = username
	g.InFlight = true
	g.AttemptGeneration = g.Generation
	return g
}

// AdminCurrent reports whether an admin check started in gen still belongs to the
// current register view.
func (g GateState) AdminCurrent(gen uint64) bool { return g.Generation == gen }

// AdminResolved ends the admin check started in gen; ok unlocks registration only if
// the register view it started in is still the current one.
func AdminResolved(g GateState, ok bool, gen uint64) GateState {
	g.InFlight = false
	if ok && g.AdminCurrent(gen) {
		g.AdminValidated = true
	}
	return g
}

// GateReset drops admin validation, used after logout.
func GateReset(g GateState) GateState {
	g.AdminValidated = false
	g.AdminUsername = ""
	g.Generation++
	return g
}

// StatusKind classifies a status message.
type StatusKind string

const (
	StatusNone    StatusKind = ""
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

// StatusMessage is the single user-visible message slot.
// Seq increases on every set so timers armed for an older message can recognise they are stale.
type StatusMessage struct {
	Kind  StatusKind
	Text  string
	Seq   uint64
	SetAt time.Time
}

// Empty reports whether nothing is shown.
func (m StatusMessage) Empty() bool { return m.Kind == StatusNone || m.Text == "" }

// IsError reports whether the message is an error.
func (m StatusMessage) IsError() bool { return m.Kind == StatusError }
