// Package diagnostics defines the error codes and the diagnostic error type
// surfaced by the witness inference engine. Unification failures never reach
// this package; only user-reportable outcomes (unsatisfiable requirements,
// ambiguous instances, cycles, malformed requests) are given codes.
package diagnostics

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode identifies a diagnostic category.
type ErrorCode string

const (
	// Engine diagnostics
	ErrW001 ErrorCode = "W001" // no instance satisfies a required concept
	ErrW002 ErrorCode = "W002" // multiple instances survive tie-breaking
	ErrW003 ErrorCode = "W003" // instance resolution cycle
	ErrW004 ErrorCode = "W004" // parameter classification failure
	ErrW005 ErrorCode = "W005" // parameter left unresolved at fixed point

	// Scope file diagnostics
	ErrL001 ErrorCode = "L001" // scope file syntax error
	ErrL002 ErrorCode = "L002" // reference to unknown concept
	ErrL003 ErrorCode = "L003" // duplicate declaration
)

// DiagnosticError is an error with a stable code and the names of the
// entities it concerns (concepts, instances, or parameters).
type DiagnosticError struct {
	Code     ErrorCode
	Message  string
	Subjects []string
}

func (e *DiagnosticError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// New creates a diagnostic with a formatted message.
func New(code ErrorCode, format string, args ...interface{}) *DiagnosticError {
	return &DiagnosticError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Unsatisfiable reports that no instance in scope satisfies the named
// required concept(s).
func Unsatisfiable(concepts ...string) *DiagnosticError {
	return &DiagnosticError{
		Code:     ErrW001,
		Message:  fmt.Sprintf("no instance satisfies %s", strings.Join(concepts, ", ")),
		Subjects: concepts,
	}
}

// Ambiguous reports that at least two instances survived tie-breaking.
// Only the first two conflicting instances are named.
func Ambiguous(first, second string) *DiagnosticError {
	return &DiagnosticError{
		Code:     ErrW002,
		Message:  fmt.Sprintf("ambiguous instances: %s and %s both apply", first, second),
		Subjects: []string{first, second},
	}
}

// CycleDetected reports that resolving an instance recursed back into itself.
func CycleDetected(instance string) *DiagnosticError {
	return &DiagnosticError{
		Code:     ErrW003,
		Message:  fmt.Sprintf("instance resolution cycle through %s", instance),
		Subjects: []string{instance},
	}
}

// Classification reports a free parameter that is neither a witness, an
// associated type, nor a known ordinary parameter. This is a malformed
// request and fails the whole round.
func Classification(param string) *DiagnosticError {
	return &DiagnosticError{
		Code:     ErrW004,
		Message:  fmt.Sprintf("parameter %s is neither witness, associated type, nor ordinary", param),
		Subjects: []string{param},
	}
}

// Unresolved reports a parameter still pending when the round reached its
// fixed point.
func Unresolved(param string) *DiagnosticError {
	return &DiagnosticError{
		Code:     ErrW005,
		Message:  fmt.Sprintf("could not resolve parameter %s", param),
		Subjects: []string{param},
	}
}

// AsDiagnostic unwraps err to a *DiagnosticError if there is one in its chain.
func AsDiagnostic(err error) (*DiagnosticError, bool) {
	var de *DiagnosticError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether err carries the given diagnostic code.
func HasCode(err error, code ErrorCode) bool {
	if de, ok := AsDiagnostic(err); ok {
		return de.Code == code
	}
	return false
}
