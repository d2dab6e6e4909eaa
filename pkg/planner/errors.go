package planner

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies planner failures so the API layer can map them to HTTP statuses.
type Kind int8

const (
	// KindConfiguration means the service cannot generate plans (missing credential, no client).
	KindConfiguration Kind = iota
	// KindInput means the caller's request was invalid.
	KindInput
	// KindProvider means the generation call itself failed.
	KindProvider
	// KindExtraction means no bracket-delimited array was found in the model output.
	KindExtraction
	// KindParse means the extracted span was not valid JSON.
	KindParse
	// KindValidation means strict mode rejected the decoded plan.
	KindValidation
)

// String returns the string representation of the error kind.
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindInput:
		return "input"
	case KindProvider:
		return "provider"
	case KindExtraction:
		return "extraction"
	case KindParse:
		return "parse"
	case KindValidation:
		return "validation"
	default:
		return "invalid"
	}
}

// Error is a classified planner failure.
type Error struct {
	Err     error  // Wrapped underlying error
	Message string // Human-readable error message
	Kind    Kind   // Failure classification
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("planner error (%s)", e.Kind)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error kind to an HTTP status code.
// Only caller mistakes are 4xx; everything else is a server-side failure.
func (e *Error) HTTPStatus() int {
	if e.Kind == KindInput {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// NewError creates a new classified planner error.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// NewErrorWithCause creates a new classified planner error wrapping another error.
func NewErrorWithCause(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Err: cause, Message: message}
}

// Is checks if an error is of a specific kind.
func Is(err error, kind Kind) bool {
	var pErr *Error
	if errors.As(err, &pErr) {
		return pErr.Kind == kind
	}
	return false
}

// KindOf returns the kind of an error, or KindProvider if not classified.
func KindOf(err error) Kind {
	var pErr *Error
	if errors.As(err, &pErr) {
		return pErr.Kind
	}
	return KindProvider
}
