package session

import (
	"time"

	"github.com/jrsteele09/go-session-guard/identity"
	"github.com/jrsteele09/go-session-guard/profiles"
)

// Policy constants. Absolute expiry and inactivity timeout are deliberately
// independent: the first is a fixed validity window stamped at login, the
// second a rolling window reset by user interaction.
const (
	SessionDuration = 8 * time.Hour
	InactivityLimit = 30 * time.Minute
	WarningBefore   = 5 * time.Minute
	CheckInterval   = time.Minute
)

// State is a point-in-time snapshot of the authentication session. Only the
// Store mutates the underlying state; everyone else reads copies.
type State struct {
	Identity      *identity.Identity // nil until the provider delivers one
	Role          profiles.Role      // empty until the profile fetch completes
	Profile       *profiles.Profile  // nil until the profile fetch completes
	Authenticated bool               // true only for a present, verified identity
	Loading       bool               // true until the first provider notification
	Err           string             // last human-readable auth error
	SessionExpiry time.Time          // zero means the session never expires
	LastActivity  time.Time          // stamped on every recorded interaction
}

// Result is the outcome of a mutating action. Expected failures are reported
// here, never as raised errors.
type Result struct {
	Success bool
	Error   string
}

// LoginResult is the outcome of a login attempt.
type LoginResult struct {
	Success bool
	User    *identity.Identity
	Error   string
}
