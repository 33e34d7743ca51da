package application

import "errors"

var (
	ErrValidation            = errors.New("validation failed")
	ErrEmailTaken            = errors.New("email already registered")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrMailDispatch          = errors.New("email could not be sent")
	ErrTaskNotFound          = errors.New("task not found")
)

// ValidationError carries a client-facing message and optional per-field details.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Message string
	Details map[string]string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(msg string, details map[string]string) error {
	return &ValidationError{Message: msg, Details: details}
}
