package identity

import "errors"

// Provider error codes. The codes follow the "auth/..." convention used by
// hosted identity providers so that message mapping stays stable across
// implementations.
const (
	CodeUserNotFound      = "auth/user-not-found"
	CodeWrongPassword     = "auth/wrong-password"
	CodeInvalidEmail      = "auth/invalid-email"
	CodeUserDisabled      = "auth/user-disabled"
	CodeTooManyRequests   = "auth/too-many-requests"
	CodeInvalidCredential = "auth/invalid-credential"
	CodeEmailNotVerified  = "auth/email-not-verified"
)

// CodedError is an expected provider failure carrying a stable machine code.
type CodedError struct {
	Code    string
	Message string
}

func (e *CodedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

// NewCodedError builds a CodedError from a code and optional message.
func NewCodedError(code, message string) *CodedError {
	return &CodedError{Code: code, Message: message}
}

// ErrorCode extracts the provider code from err, or returns an empty string
// when err carries no code.
func ErrorCode(err error) string {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}
