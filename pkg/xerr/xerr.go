// Package xerr defines the error kinds surfaced by the note proxy and their
// HTTP status codes.
package xerr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure. The string value is sent to clients.
type Kind string

const (
	MalformedRequest      Kind = "MalformedRequest"
	MethodNotAllowed      Kind = "MethodNotAllowed"
	MissingField          Kind = "MissingField"
	MissingInstruction    Kind = "MissingInstruction"
	InsufficientDocuments Kind = "InsufficientDocuments"
	InvalidMode           Kind = "InvalidMode"
	InvalidDocument       Kind = "InvalidDocument"
	GenerationBlocked     Kind = "GenerationBlocked"
	GenerationFailed      Kind = "GenerationFailed"
	ConfigurationMissing  Kind = "ConfigurationMissing"
)

// Error is a classified failure. Message is safe to show to a client; Err is
// kept for logs only.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field %q)", e.Kind, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err, keeping it as the cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// Missing reports an absent required field.
func Missing(field string) *Error {
	return &Error{
		Kind:    MissingField,
		Message: fmt.Sprintf("missing '%s' in request body", field),
		Field:   field,
	}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err. Unclassified errors count as GenerationFailed.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return GenerationFailed
}

// IsValidation reports whether kind is a client-side request problem.
func IsValidation(kind Kind) bool {
	switch kind {
	case MalformedRequest, MissingField, MissingInstruction,
		InsufficientDocuments, InvalidMode, InvalidDocument:
		return true
	}
	return false
}

func HTTPStatus(kind Kind) int {
	switch {
	case kind == MethodNotAllowed:
		return http.StatusMethodNotAllowed
	case IsValidation(kind):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
