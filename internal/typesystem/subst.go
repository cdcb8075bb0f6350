package typesystem

import (
	"fmt"
	"sort"
	"strings"
)

// Subst is an immutable mapping from type variables to terms, kept in normal
// form: applying the map to any of its own right-hand sides is a no-op. All
// operations return a fresh map and never mutate the receiver, so substitutions
// can be threaded through recursive resolution without aliasing hazards.
//
// When two maps disagree on a variable, the earliest (outermost) binding wins.
// That ordering encodes which recursive call owns the variable and must not
// be silently overwritten by an inner composition.
type Subst struct {
	m map[string]Type
}

// NewSubst returns an empty substitution.
func NewSubst() Subst {
	return Subst{}
}

// Singleton returns a substitution with a single binding.
func Singleton(name string, t Type) Subst {
	return Subst{m: map[string]Type{name: t}}
}

// Apply substitutes free variables in t per the map. Unmapped variables are
// left alone. For normal-form maps a single structural pass suffices.
func (s Subst) Apply(t Type) Type {
	if t == nil {
		return nil
	}
	return t.Apply(s)
}

// Lookup returns the binding for a variable name.
func (s Subst) Lookup(name string) (Type, bool) {
	t, ok := s.m[name]
	return t, ok
}

// Len returns the number of bindings.
func (s Subst) Len() int { return len(s.m) }

// Domain returns the mapped variable names in sorted order.
func (s Subst) Domain() []string {
	names := make([]string, 0, len(s.m))
	for k := range s.m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Add returns a new map extended with name -> t, re-established in normal
// form: t is first substituted through the receiver, then every existing
// right-hand side is substituted through the new binding. An existing binding
// for name wins and the receiver is returned unchanged.
func (s Subst) Add(name string, t Type) Subst {
	if _, ok := s.m[name]; ok {
		return s
	}
	rhs := s.Apply(t)
	if tv, ok := rhs.(TVar); ok && tv.Name == name {
		return s
	}
	if ContainsVar(rhs, name) {
		// A cyclic entry would never normalize; the unifier's occurs check
		// keeps this branch unreachable in practice.
		return s
	}
	single := Singleton(name, rhs)
	out := make(map[string]Type, len(s.m)+1)
	for k, v := range s.m {
		out[k] = v.Apply(single)
	}
	out[name] = rhs
	return Subst{m: out}
}

// Compose returns "apply the receiver, then other". The receiver's right-hand
// sides are re-substituted through other first, then any of other's keys not
// already present are unioned in; the result is re-normalized so stale
// indirections (X -> Y with Y -> Int) collapse. Receiver bindings win on
// conflict.
func (s Subst) Compose(other Subst) Subst {
	if other.Len() == 0 {
		return s
	}
	if s.Len() == 0 {
		return normalize(copyBindings(other.m))
	}
	out := make(map[string]Type, len(s.m)+len(other.m))
	for k, v := range s.m {
		out[k] = v.Apply(other)
	}
	for k, v := range other.m {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return normalize(out)
}

// IsNormalForm reports whether every right-hand side is a fixed point of the
// map. This is the invariant Add and Compose must preserve; tests assert it
// after every composition.
func (s Subst) IsNormalForm() bool {
	for _, v := range s.m {
		if !Equal(s.Apply(v), v) {
			return false
		}
	}
	return true
}

// Equal compares two substitutions binding-for-binding.
func (s Subst) Equal(other Subst) bool {
	if len(s.m) != len(other.m) {
		return false
	}
	for k, v := range s.m {
		ov, ok := other.m[k]
		if !ok || !Equal(v, ov) {
			return false
		}
	}
	return true
}

func (s Subst) String() string {
	parts := make([]string, 0, len(s.m))
	for _, k := range s.Domain() {
		parts = append(parts, fmt.Sprintf("%s -> %s", k, s.m[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func copyBindings(m map[string]Type) map[string]Type {
	out := make(map[string]Type, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// normalize collapses indirections until the map is a fixed point of itself.
// Bindings are acyclic (occurs check at bind time), so the pass count is
// bounded by the number of entries.
func normalize(m map[string]Type) Subst {
	for range m {
		cur := Subst{m: m}
		changed := false
		next := make(map[string]Type, len(m))
		for k, v := range m {
			nv := v.Apply(cur)
			if ContainsVar(nv, k) {
				nv = v
			}
			if !Equal(nv, v) {
				changed = true
			}
			next[k] = nv
		}
		m = next
		if !changed {
			break
		}
	}
	return Subst{m: m}
}
