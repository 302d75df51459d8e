package chore

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode categorises domain errors.
type ErrorCode string

const (
	// ErrCodeMalformedRule indicates a recurrence rule failed to parse.
	ErrCodeMalformedRule ErrorCode = "MALFORMED_RULE"

	// ErrCodeUnsatisfiable indicates a recurrence rule never fires.
	ErrCodeUnsatisfiable ErrorCode = "UNSATISFIABLE"

	// ErrCodeInvalidDefinition indicates a chore definition or occurrence
	// breaks a field constraint.
	ErrCodeInvalidDefinition ErrorCode = "INVALID_DEFINITION"

	// ErrCodeNotFound indicates the target occurrence or flash does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeConflict indicates the target occurrence is already terminal.
	ErrCodeConflict ErrorCode = "CONFLICT"

	// ErrCodeStoreUnavailable indicates a transient storage failure.
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
)

// Sentinels for errors.Is. An *Error matches a sentinel with the same code.
var (
	ErrMalformedRule     = &Error{Code: ErrCodeMalformedRule}
	ErrUnsatisfiable     = &Error{Code: ErrCodeUnsatisfiable}
	ErrInvalidDefinition = &Error{Code: ErrCodeInvalidDefinition}
	ErrNotFound          = &Error{Code: ErrCodeNotFound}
	ErrConflict          = &Error{Code: ErrCodeConflict}
	ErrStoreUnavailable  = &Error{Code: ErrCodeStoreUnavailable}
)

// Error is a domain error with structured context.
type Error struct {
	Code    ErrorCode
	Message string

	// Title and Expected identify the affected occurrence, when known.
	Title    string
	Expected time.Time

	// Field names the offending configuration or rule field, when known.
	Field string

	// Err is the underlying cause.
	Err error
}

func (e *Error) Error() string {
	msg := string(e.Code)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	switch {
	case e.Title != "" && !e.Expected.IsZero():
		msg += fmt.Sprintf(" (title=%s, expected=%s)", e.Title, e.Expected.UTC().Format(time.RFC3339))
	case e.Title != "" && e.Field != "":
		msg += fmt.Sprintf(" (title=%s, field=%s)", e.Title, e.Field)
	case e.Title != "":
		msg += fmt.Sprintf(" (title=%s)", e.Title)
	case e.Field != "":
		msg += fmt.Sprintf(" (field=%s)", e.Field)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsNotFound reports whether err is a NOT_FOUND error.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict reports whether err is a CONFLICT error.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// IsStoreUnavailable reports whether err is a transient storage error.
func IsStoreUnavailable(err error) bool { return errors.Is(err, ErrStoreUnavailable) }

// IsConfigError reports whether err should abort startup: a malformed or
// unsatisfiable rule, or an invalid definition.
func IsConfigError(err error) bool {
	switch CodeOf(err) {
	case ErrCodeMalformedRule, ErrCodeUnsatisfiable, ErrCodeInvalidDefinition:
		return true
	}
	return false
}

// NotFound builds a NOT_FOUND error for an occurrence key.
func NotFound(key Key) *Error {
	return &Error{Code: ErrCodeNotFound, Message: "occurrence not found", Title: key.Title, Expected: key.Expected}
}

// Conflict builds a CONFLICT error for an occurrence already in a terminal
// state.
func Conflict(key Key, current Status) *Error {
	return &Error{
		Code:     ErrCodeConflict,
		Message:  fmt.Sprintf("occurrence is already %s", current),
		Title:    key.Title,
		Expected: key.Expected,
	}
}

// Unavailable wraps a transient storage failure.
func Unavailable(op string, err error) *Error {
	return &Error{Code: ErrCodeStoreUnavailable, Message: op, Err: err}
}
