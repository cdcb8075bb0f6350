// Package symbols holds the concept and instance declarations visible to the
// inference engine, organized as a lexical scope chain. It answers the
// membership queries the engine needs (visible instances, rigid variables,
// provided-concept closures) but defines no scoping rules of its own beyond
// inner-shadows-outer.
package symbols

import (
	"github.com/weylang/weyl/internal/typesystem"
)

// ConceptDef is a named, parameterized predicate on types. Requires lists the
// concepts this concept itself requires (superconcepts), expressed over
// Params; an instance providing this concept transitively provides those too.
type ConceptDef struct {
	Name     string
	Params   []string
	Requires []typesystem.Type
	Methods  []string
}

// instantiate substitutes the concept's parameters with the given arguments
// in each required concept.
func (c *ConceptDef) instantiate(args []typesystem.Type) []typesystem.Type {
	if len(c.Requires) == 0 {
		return nil
	}
	s := typesystem.NewSubst()
	for i, p := range c.Params {
		if i < len(args) {
			s = s.Add(p, args[i])
		}
	}
	out := make([]typesystem.Type, len(c.Requires))
	for i, r := range c.Requires {
		out[i] = s.Apply(r)
	}
	return out
}
