package core

import "github.com/pkg/errors"

// FieldError ties a validation failure to the struct field that caused it.
type FieldError struct {
	Field string
	Error string
}

// ValidationError carries per-field failures alongside the underlying error.
// The API layer renders the Fields as a field-to-message object in the
// response body.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdown signals an unrecoverable service state. Handlers return it to ask
// the server to stop taking traffic and exit cleanly.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

// IsShutdown reports whether err, once unwrapped, is a shutdown request.
func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
