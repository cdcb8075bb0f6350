package symbols

import (
	"github.com/weylang/weyl/internal/typesystem"
)

// WitnessParam is one of an instance's own witness obligations: when the
// instance is used, Name must be resolved to a witness for Requires.
type WitnessParam struct {
	Name     string
	Requires typesystem.Type
}

// InstanceDef is a candidate implementation of a concept. Params lists the
// instance's own type parameters (including witness and associated-type
// parameter names); they are free and must be resolved before the instance is
// fully fixed.
//
// Overlapping/Overlappable default to false: unannotated instances never
// participate in tie-breaking removal, so genuine overlap surfaces as an
// ambiguity diagnostic early.
type InstanceDef struct {
	Name         string
	Provides     typesystem.Type
	Params       []string
	Witness      []WitnessParam
	Assoc        []string
	Overlapping  bool
	Overlappable bool
}

// Renamed returns a copy of the instance with every parameter renamed apart
// using the given ordinal, so one matching attempt's variables can never
// collide with another's or with the call site's.
func (d *InstanceDef) Renamed(ordinal int) *InstanceDef {
	out := &InstanceDef{
		Name:         d.Name,
		Provides:     typesystem.RenameTypeVars(d.Provides, ordinal),
		Params:       make([]string, len(d.Params)),
		Witness:      make([]WitnessParam, len(d.Witness)),
		Assoc:        make([]string, len(d.Assoc)),
		Overlapping:  d.Overlapping,
		Overlappable: d.Overlappable,
	}
	for i, p := range d.Params {
		out.Params[i] = typesystem.FreshName(p, ordinal)
	}
	for i, w := range d.Witness {
		out.Witness[i] = WitnessParam{
			Name:     typesystem.FreshName(w.Name, ordinal),
			Requires: typesystem.RenameTypeVars(w.Requires, ordinal),
		}
	}
	for i, a := range d.Assoc {
		out.Assoc[i] = typesystem.FreshName(a, ordinal)
	}
	return out
}

// IsWitnessParam reports whether name is one of the instance's witness
// parameters.
func (d *InstanceDef) IsWitnessParam(name string) bool {
	for _, w := range d.Witness {
		if w.Name == name {
			return true
		}
	}
	return false
}

// Term builds the instance's type term with its parameters substituted
// through s, e.g. EqArray<Int, EqInt>.
func (d *InstanceDef) Term(s typesystem.Subst) typesystem.Type {
	if len(d.Params) == 0 {
		return typesystem.TCon{Name: d.Name}
	}
	args := make([]typesystem.Type, len(d.Params))
	for i, p := range d.Params {
		args[i] = s.Apply(typesystem.TVar{Name: p})
	}
	return typesystem.TApp{Constructor: typesystem.TCon{Name: d.Name}, Args: args}
}

// Entry is one search result from ScopeInstances: either a named instance
// declaration, or an ambient rigid type parameter already constrained to
// implement one or more concepts (Inst == nil).
type Entry struct {
	Name     string
	Inst     *InstanceDef
	Provides []typesystem.Type // direct provided concepts
}

// IsRigid reports whether the entry is an ambient rigid type parameter
// rather than a named instance.
func (e Entry) IsRigid() bool { return e.Inst == nil }
