package engine

import (
	"github.com/google/uuid"

	"github.com/weylang/weyl/internal/diagnostics"
	"github.com/weylang/weyl/internal/typesystem"
)

// Result is the immutable snapshot of a finished round.
//
// Success means every requested parameter was resolved. Failed marks the
// distinguished round-level failures (cycle detected in this round's
// resolution pass, or a classification error) that abort all parameters at
// once; an unsuccessful-but-not-failed result reports per-parameter
// diagnostics instead.
type Result struct {
	RequestID   uuid.UUID
	Success     bool
	Failed      bool
	Resolved    map[string]typesystem.Type
	Unresolved  []string
	Diagnostics []*diagnostics.DiagnosticError
	Subst       typesystem.Subst
}

// ResolvedType returns the resolved term for a parameter.
func (r *Result) ResolvedType(param string) (typesystem.Type, bool) {
	t, ok := r.Resolved[param]
	return t, ok
}

// HasDiagnostic reports whether any diagnostic carries the given code.
func (r *Result) HasDiagnostic(code diagnostics.ErrorCode) bool {
	for _, d := range r.Diagnostics {
		if d.Code == code {
			return true
		}
	}
	return false
}
