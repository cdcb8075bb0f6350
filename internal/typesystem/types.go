package typesystem

import (
	"fmt"
	"strings"

	"github.com/weylang/weyl/internal/config"
)

// Type is the interface for all type terms in our system.
type Type interface {
	String() string
	Apply(Subst) Type
	FreeTypeVariables() []TVar
}

// TVar represents a type variable pending inference (e.g. 'T', 't1').
// Whether a variable is rigid is not a property of the term itself: rigid
// names are carried in a RigidSet supplied to the unifier, so the same term
// tree can be re-used under different enclosing generic contexts.
type TVar struct {
	Name string
}

func (t TVar) String() string {
	if config.IsTestMode {
		// Normalize freshened variables (T'3 etc.) for deterministic output
		if i := strings.Index(t.Name, config.FreshVarSeparator); i > 0 {
			return t.Name[:i] + config.FreshVarSeparator + "?"
		}
	}
	return t.Name
}

func (t TVar) Apply(s Subst) Type {
	if replacement, ok := s.m[t.Name]; ok {
		return replacement
	}
	return t
}

func (t TVar) FreeTypeVariables() []TVar {
	return []TVar{t}
}

// TCon represents a type constant or constructor head (e.g. Int, Eq, Array).
type TCon struct {
	Name string
}

func (t TCon) String() string { return t.Name }

func (t TCon) Apply(Subst) Type { return t }

func (t TCon) FreeTypeVariables() []TVar { return nil }

// TApp represents a constructed type: a constructor applied to one or more
// arguments (e.g. Eq<Int>, Array<T>).
type TApp struct {
	Constructor Type
	Args        []Type
}

func (t TApp) String() string {
	args := make([]string, len(t.Args))
	for i, arg := range t.Args {
		args[i] = arg.String()
	}
	if len(args) == 0 {
		return t.Constructor.String()
	}
	return fmt.Sprintf("%s<%s>", t.Constructor.String(), strings.Join(args, ", "))
}

func (t TApp) Apply(s Subst) Type {
	newArgs := make([]Type, len(t.Args))
	for i, arg := range t.Args {
		newArgs[i] = arg.Apply(s)
	}
	return TApp{Constructor: t.Constructor.Apply(s), Args: newArgs}
}

func (t TApp) FreeTypeVariables() []TVar {
	vars := t.Constructor.FreeTypeVariables()
	for _, arg := range t.Args {
		vars = append(vars, arg.FreeTypeVariables()...)
	}
	return uniqueTVars(vars)
}

// App builds a constructed type from a constructor name and arguments.
// With no arguments it degenerates to the bare constructor.
func App(name string, args ...Type) Type {
	if len(args) == 0 {
		return TCon{Name: name}
	}
	return TApp{Constructor: TCon{Name: name}, Args: args}
}

// Head returns the constructor name of a constructed type (or constant),
// and ok=false for variables and other heads.
func Head(t Type) (string, bool) {
	switch typ := t.(type) {
	case TCon:
		return typ.Name, true
	case TApp:
		return Head(typ.Constructor)
	default:
		return "", false
	}
}

// ArgsOf returns the argument list of a constructed type (nil for constants).
func ArgsOf(t Type) []Type {
	if app, ok := t.(TApp); ok {
		return app.Args
	}
	return nil
}

// Equal compares two terms structurally.
func Equal(a, b Type) bool {
	switch ta := a.(type) {
	case TVar:
		tb, ok := b.(TVar)
		return ok && ta.Name == tb.Name
	case TCon:
		tb, ok := b.(TCon)
		return ok && ta.Name == tb.Name
	case TApp:
		tb, ok := b.(TApp)
		if !ok || len(ta.Args) != len(tb.Args) {
			return false
		}
		if !Equal(ta.Constructor, tb.Constructor) {
			return false
		}
		for i := range ta.Args {
			if !Equal(ta.Args[i], tb.Args[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// ContainsVar reports whether the variable name appears free in t.
func ContainsVar(t Type, name string) bool {
	for _, v := range t.FreeTypeVariables() {
		if v.Name == name {
			return true
		}
	}
	return false
}

// IsGround reports whether t contains no free variables outside the rigid
// set. Rigid variables are bound by the enclosing context and count as fixed.
func IsGround(t Type, rigid RigidSet) bool {
	for _, v := range t.FreeTypeVariables() {
		if !rigid.Has(v.Name) {
			return false
		}
	}
	return true
}

func uniqueTVars(vars []TVar) []TVar {
	unique := []TVar{}
	seen := map[string]bool{}
	for _, v := range vars {
		if !seen[v.Name] {
			seen[v.Name] = true
			unique = append(unique, v)
		}
	}
	return unique
}
