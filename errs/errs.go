// Package errs defines the error taxonomy shared by the services and the API.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrAlreadyExists reports an idempotent duplicate write. Callers treat it as
// success.
var ErrAlreadyExists = errors.New("already exists")

// ValidationError is a missing or malformed required field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s is required", e.Field)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError is an unknown transaction, reward or username.
type NotFoundError struct {
	Kind string
	Key  string
	// Hint is an optional user-facing suggestion.
	Hint string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.Key)
}

// RemoteFailure wraps a failed or timed out call to the node, the registry
// contract or the language model.
type RemoteFailure struct {
	Service string
	Err     error
}

func (e *RemoteFailure) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *RemoteFailure) Unwrap() error {
	return e.Err
}

// Required returns a ValidationError for a missing field.
func Required(field string) error {
	return &ValidationError{Field: field}
}

// Invalid returns a ValidationError for a malformed field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFound returns a NotFoundError.
func NotFound(kind, key string) error {
	return &NotFoundError{Kind: kind, Key: key}
}

// Remote wraps err as a RemoteFailure of service.
func Remote(service string, err error) error {
	if err == nil {
		return nil
	}
	return &RemoteFailure{Service: service, Err: err}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var v *NotFoundError
	return errors.As(err, &v)
}

// IsRemote reports whether err is a RemoteFailure.
func IsRemote(err error) bool {
	var v *RemoteFailure
	return errors.As(err, &v)
}
