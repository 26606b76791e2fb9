package services

import "errors"

// Sentinel errors translated to HTTP status codes at the handler boundary.
// Storage-engine error text must never reach a client; anything that is not
// one of these is treated as internal.
var (
	// ErrNotFound means the referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the caller is authenticated but does not own the
	// resource it is trying to mutate.
	ErrForbidden = errors.New("forbidden")
	// ErrUsernameTaken means a signup lost the race for a username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrInvalidCredentials covers both unknown-user and wrong-password so
	// that login failures cannot be used to enumerate usernames.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError reports malformed, missing or out-of-range input. It is
// always client-fixable and maps to a 400 response.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationError(message string) error {
	return &ValidationError{Message: message}
}
