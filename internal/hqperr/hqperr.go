// Package hqperr defines the error taxonomy shared across the task
// engine, primitive store, and solver driver.
package hqperr

import (
	"errors"
	"fmt"
)

// Kind classifies an Error without pinning it to a concrete Go type,
// so callers can branch on category with errors.As while the message
// stays free-form.
type Kind int

const (
	// Unknown is the zero value; InternalError should be used instead
	// for genuinely unexpected failures.
	Unknown Kind = iota
	ConfigError
	BindingError
	DimensionError
	OracleError
	SolverInfeasible
	InternalError
)

func (k Kind) String() string {
	switch k {
	case ConfigError:
		return "ConfigError"
	case BindingError:
		return "BindingError"
	case DimensionError:
		return "DimensionError"
	case OracleError:
		return "OracleError"
	case SolverInfeasible:
		return "SolverInfeasible"
	case InternalError:
		return "InternalError"
	default:
		return "Unknown"
	}
}

// Error wraps a Kind and identifying context (task or primitive name)
// around an underlying cause.
type Error struct {
	Kind    Kind
	Subject string // task or primitive name, if any
	Cause   error
}

func (e *Error) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Subject, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error from a kind, subject, and message.
func New(kind Kind, subject, msg string) *Error {
	return &Error{Kind: kind, Subject: subject, Cause: errors.New(msg)}
}

// Wrap builds an Error from a kind, subject, and an existing cause.
func Wrap(kind Kind, subject string, cause error) *Error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Subject: subject, Cause: cause}
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
