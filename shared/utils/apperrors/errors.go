package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a business-rule violation so handlers can map it to an
// HTTP status without string matching.
type Kind string

const (
	KindValidation   Kind = "VALIDATION_ERROR"
	KindForbidden    Kind = "FORBIDDEN"
	KindInvalidState Kind = "INVALID_STATE"
	KindNotFound     Kind = "NOT_FOUND"
)

// Error is a typed business error raised at the point of detection and
// propagated unmodified to the caller.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// HTTPStatus maps the error kind to a response status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	case KindInvalidState:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// Validation reports malformed or incomplete input.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Validationf reports malformed or incomplete input with formatting.
func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Forbidden reports that the acting identity lacks authority for the operation.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// InvalidState reports that the target is not in the state the operation requires.
func InvalidState(message string) *Error {
	return &Error{Kind: KindInvalidState, Message: message}
}

// InvalidStatef reports a state conflict with formatting.
func InvalidStatef(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing entity by name and identifier.
func NotFound(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found: %s", entity, id)}
}

// Wrap attaches a cause to a typed error for diagnostics.
func Wrap(err *Error, cause error) *Error {
	err.cause = cause
	return err
}

// As extracts a typed Error from an error chain, or nil.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsKind reports whether err is a typed Error of the given kind.
func IsKind(err error, kind Kind) bool {
	appErr := As(err)
	return appErr != nil && appErr.Kind == kind
}
