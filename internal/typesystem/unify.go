package typesystem

import "fmt"

// Unify attempts to find a substitution that makes provided and required
// equal by assigning free (non-rigid) variables. Failure is an ordinary
// error: callers treat it as "this candidate does not apply", never as a
// reportable condition.
//
// Constructed types unify iff they share a head constructor and arity, with
// the accumulated substitution threaded left to right so later arguments see
// earlier assignments. A rigid variable unifies only with itself, or becomes
// the right-hand side of a free variable's binding; it is never assigned to.
func Unify(provided, required Type, rigid RigidSet) (Subst, error) {
	return unify(provided, required, rigid)
}

func unify(t1, t2 Type, rigid RigidSet) (Subst, error) {
	if Equal(t1, t2) {
		return Subst{}, nil
	}

	// Variable cases first: binding direction prefers assigning the free
	// side, whichever it is.
	if v1, ok := t1.(TVar); ok {
		if !rigid.Has(v1.Name) {
			return bind(v1, t2, rigid)
		}
		// t1 is rigid; only a free t2 can absorb it.
		if v2, ok := t2.(TVar); ok && !rigid.Has(v2.Name) {
			return bind(v2, v1, rigid)
		}
		return Subst{}, errUnifyMsg(t1, t2, "rigid variable cannot be assigned")
	}
	if v2, ok := t2.(TVar); ok {
		if !rigid.Has(v2.Name) {
			return bind(v2, t1, rigid)
		}
		return Subst{}, errUnifyMsg(t1, t2, "rigid variable cannot be assigned")
	}

	switch t1 := t1.(type) {
	case TCon:
		if t2, ok := t2.(TCon); ok {
			if t1.Name == t2.Name {
				return Subst{}, nil
			}
			return Subst{}, errUnifyMsg(t1, t2, "type constant mismatch")
		}
		return Subst{}, errUnify(t1, t2)
	case TApp:
		t2, ok := t2.(TApp)
		if !ok {
			return Subst{}, errUnify(t1, t2)
		}
		s, err := unify(t1.Constructor, t2.Constructor, rigid)
		if err != nil {
			return Subst{}, err
		}
		if len(t1.Args) != len(t2.Args) {
			return Subst{}, errMismatch(fmt.Sprintf("type arguments length mismatch: %d vs %d", len(t1.Args), len(t2.Args)))
		}
		for i := 0; i < len(t1.Args); i++ {
			arg1 := s.Apply(t1.Args[i])
			arg2 := s.Apply(t2.Args[i])
			s2, err := unify(arg1, arg2, rigid)
			if err != nil {
				return Subst{}, err
			}
			s = s.Compose(s2)
		}
		return s, nil
	default:
		return Subst{}, errMismatch(fmt.Sprintf("unknown type kind: %T", t1))
	}
}

// bind binds a free type variable to a term, performing the occurs check.
func bind(tv TVar, t Type, rigid RigidSet) (Subst, error) {
	if tVal, ok := t.(TVar); ok && tVal.Name == tv.Name {
		return Subst{}, nil
	}
	if rigid.Has(tv.Name) {
		return Subst{}, errMismatch(fmt.Sprintf("cannot assign rigid variable %s", tv.Name))
	}
	// Occurs check: avoid infinite types like T = Array<T>
	if ContainsVar(t, tv.Name) {
		return Subst{}, errMismatch(fmt.Sprintf("infinite type detected: %s in %s", tv, t))
	}
	return Singleton(tv.Name, t), nil
}

func errUnify(t1, t2 Type) error {
	return fmt.Errorf("cannot unify %s with %s", t1, t2)
}

func errUnifyMsg(t1, t2 Type, msg string) error {
	return fmt.Errorf("%s: %s vs %s", msg, t1, t2)
}

func errMismatch(msg string) error {
	return fmt.Errorf("type mismatch: %s", msg)
}
