package docstore

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for common outcomes.
var (
	// ErrNoRows is returned by Scalar when a query that must produce a row
	// produces none. Single and the find helpers report absence through
	// their boolean result instead.
	ErrNoRows = errors.New("docstore: no rows in result set")

	// ErrInvalidField is the sentinel matched by InvalidFieldError.
	ErrInvalidField = errors.New("docstore: invalid field criterion")
)

// InvalidFieldError reports a field criterion that violates the
// value-presence invariant (a comparison without a value, or an existence
// check carrying one).
type InvalidFieldError struct {
	Field  Field
	Reason string
}

// Error returns the error string.
func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("docstore: invalid field criterion %q: %s", e.Field.Name, e.Reason)
}

// Is reports whether the target error matches ErrInvalidField.
func (e *InvalidFieldError) Is(err error) bool {
	return err == ErrInvalidField
}

// IsInvalidField returns true if the error is an InvalidFieldError.
func IsInvalidField(err error) bool {
	if err == nil {
		return false
	}
	var e *InvalidFieldError
	return errors.As(err, &e) || errors.Is(err, ErrInvalidField)
}

// SerializeError reports a document that the configured serializer could
// not convert to or from JSON.
type SerializeError struct {
	Err error
}

// Error returns the error string.
func (e *SerializeError) Error() string {
	return fmt.Sprintf("docstore: serialize document: %v", e.Err)
}

// Unwrap returns the serializer error.
func (e *SerializeError) Unwrap() error { return e.Err }

// MissingParamError reports a named placeholder in a statement with no
// matching parameter.
type MissingParamError struct {
	Name string
}

// Error returns the error string.
func (e *MissingParamError) Error() string {
	return fmt.Sprintf("docstore: no value bound for parameter %s", e.Name)
}

// IsMissingParam returns true if the error is a MissingParamError.
func IsMissingParam(err error) bool {
	if err == nil {
		return false
	}
	var e *MissingParamError
	return errors.As(err, &e)
}
