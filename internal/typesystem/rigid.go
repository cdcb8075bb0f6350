package typesystem

import "sort"

// RigidSet is the set of variable names bound by an enclosing generic
// context. A rigid variable is never assigned during unification: it unifies
// only with itself, though a free variable may be bound to it.
type RigidSet map[string]struct{}

// NewRigidSet builds a set from the given names.
func NewRigidSet(names ...string) RigidSet {
	r := make(RigidSet, len(names))
	for _, n := range names {
		r[n] = struct{}{}
	}
	return r
}

// Has reports membership. A nil set contains nothing.
func (r RigidSet) Has(name string) bool {
	_, ok := r[name]
	return ok
}

// Add inserts a name during set construction.
func (r RigidSet) Add(name string) {
	r[name] = struct{}{}
}

// Union returns a fresh set holding both operands' names.
func (r RigidSet) Union(other RigidSet) RigidSet {
	out := make(RigidSet, len(r)+len(other))
	for n := range r {
		out[n] = struct{}{}
	}
	for n := range other {
		out[n] = struct{}{}
	}
	return out
}

// Names returns the members in sorted order.
func (r RigidSet) Names() []string {
	names := make([]string, 0, len(r))
	for n := range r {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
