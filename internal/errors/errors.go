package errors

import (
	"errors"
	"fmt"
)

// Common error types for the session controller
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrRateLimited        = errors.New("too many attempts")
	ErrNoCurrentUser      = errors.New("no user logged in")
	ErrSignOutFailed      = errors.New("sign out failed")

	// Profile errors
	ErrProfileNotFound = errors.New("profile not found")

	// Lifecycle errors
	ErrAlreadyInitialized = errors.New("store already initialized")
	ErrStoreClosed        = errors.New("store closed")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
