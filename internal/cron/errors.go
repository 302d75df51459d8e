package cron

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is against a *RuleError to tell them apart.
var (
	// ErrMalformedRule indicates the expression could not be parsed.
	ErrMalformedRule = errors.New("malformed rule")

	// ErrUnsatisfiable indicates the expression parses but never matches
	// within the search horizon.
	ErrUnsatisfiable = errors.New("unsatisfiable rule")
)

// RuleError describes a rule that failed to parse or evaluate.
type RuleError struct {
	// Expression is the rule as written.
	Expression string

	// Field names the offending field ("minute", "hour", "day-of-month",
	// "month", "day-of-week"), or "expression" when the problem is the
	// overall shape of the rule. Empty for unsatisfiable rules.
	Field string

	// Message is a human-readable description.
	Message string

	kind error
}

func (e *RuleError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("cron %q: %s field: %s", e.Expression, e.Field, e.Message)
	}
	return fmt.Sprintf("cron %q: %s", e.Expression, e.Message)
}

// Unwrap exposes the error kind for errors.Is.
func (e *RuleError) Unwrap() error {
	return e.kind
}

func malformed(expression, field, format string, args ...any) *RuleError {
	return &RuleError{
		Expression: expression,
		Field:      field,
		Message:    fmt.Sprintf(format, args...),
		kind:       ErrMalformedRule,
	}
}
