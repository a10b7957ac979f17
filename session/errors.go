package session

import "github.com/jrsteele09/go-session-guard/identity"

// User-facing messages keyed by provider error code. Unmapped codes fall
// through to fallbackLoginMessage so raw provider internals never reach the
// user.
var errorMessages = map[string]string{
	identity.CodeUserNotFound:      "Account not found.",
	identity.CodeWrongPassword:     "Wrong password.",
	identity.CodeInvalidEmail:      "Invalid email address.",
	identity.CodeUserDisabled:      "Account has been disabled.",
	identity.CodeTooManyRequests:   "Too many failed attempts. Please try again later.",
	identity.CodeInvalidCredential: "Invalid email or password.",
	identity.CodeEmailNotVerified:  "Please verify your email first.",
}

const (
	fallbackLoginMessage = "Login failed. Please try again."
	noCurrentUserMessage = "No user logged in"
)

func loginMessage(code string) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return fallbackLoginMessage
}
