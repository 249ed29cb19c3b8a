package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrLookup     = "LOOKUP"
	ErrGrammar    = "GRAMMAR"
	ErrSubprocess = "SUBPROCESS"
	ErrFilter     = "FILTER"
	ErrSSHConfig  = "SSH_CONFIG"
	ErrManifest   = "MANIFEST"
	ErrUsage      = "USAGE"
)

// FilterKind distinguishes the four ways host filtering can fail.
type FilterKind int

const (
	FilterNone FilterKind = iota
	FilterOnlyPattern
	FilterOnlyEmpty
	FilterExceptPattern
	FilterExceptEmpty
)

// Process exit codes owned by the planner.
const (
	ExitGeneral       = 1
	ExitUsage         = 2
	ExitOnlyPattern   = 3
	ExitOnlyEmpty     = 4
	ExitExceptPattern = 5
	ExitExceptEmpty   = 6
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// Rendered as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error

	// Filter is set only for ErrFilter errors.
	Filter FilterKind
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrSubprocess code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrSubprocess,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// NewFilter creates a filter error of the given kind. cause may be nil.
func NewFilter(kind FilterKind, cause error, message, suggestion string) *Error {
	return &Error{
		Code:       ErrFilter,
		Message:    message,
		Suggestion: suggestion,
		Cause:      cause,
		Filter:     kind,
	}
}

// NewUnknown creates a lookup error for a name missing from the manifest.
func NewUnknown(kind, name string) *Error {
	return &Error{
		Code:       ErrLookup,
		Message:    fmt.Sprintf("%s '%s' does not exist", kind, name),
		Suggestion: fmt.Sprintf("Check the %ss declared in your Supfile.", strings.ToLower(kind)),
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var ssupErr *Error
	if errors.As(err, &ssupErr) {
		return ssupErr.Code == code
	}
	return false
}

// ExitCode maps an error to the process exit code used on the fatal path.
// nil maps to 0; anything unrecognised is a general failure.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var ssupErr *Error
	if !errors.As(err, &ssupErr) {
		return ExitGeneral
	}

	switch ssupErr.Code {
	case ErrUsage:
		return ExitUsage
	case ErrFilter:
		switch ssupErr.Filter {
		case FilterOnlyPattern:
			return ExitOnlyPattern
		case FilterOnlyEmpty:
			return ExitOnlyEmpty
		case FilterExceptPattern:
			return ExitExceptPattern
		case FilterExceptEmpty:
			return ExitExceptEmpty
		}
	}

	return ExitGeneral
}
