package engine

import (
	"github.com/weylang/weyl/internal/typesystem"
)

// narrow is the third pass: with two or more structurally valid candidates,
// apply the overlap/specificity ordering to keep at most one. The rules are
// a pragmatic, testable policy, not a principled total order.
//
// you may eliminate me only when overlap is permitted (you is tagged
// overlapping, or me is tagged overlappable) and you covers every concept me
// implements; then one of three tie-breakers must fire: strictly larger
// concept coverage, strictly more specific shared type arguments, or
// strictly more constraint mentions of the shared arguments.
//
// If elimination would remove every candidate, the narrowing is discarded:
// everybody loses is reported as everybody ties, and the caller surfaces the
// ambiguity.
func (e *Engine) narrow(cands []*Candidate) []*Candidate {
	var kept []*Candidate
	for i, me := range cands {
		eliminated := false
		for j, you := range cands {
			if i == j || me.Name() == you.Name() {
				continue
			}
			if e.eliminates(you, me) {
				eliminated = true
				break
			}
		}
		if !eliminated {
			kept = append(kept, me)
		}
	}
	if len(kept) == 0 {
		return cands
	}
	return kept
}

func (e *Engine) eliminates(you, me *Candidate) bool {
	// Rigid candidates carry no overlap annotations; they neither supersede
	// nor get superseded.
	overlapOK := (you.Inst != nil && you.Inst.Overlapping) ||
		(me.Inst != nil && me.Inst.Overlappable)
	if !overlapOK {
		return false
	}

	// Coverage precondition: if you does not implement everything me
	// implements, me survives this pair.
	if !e.scope.ImplementsAll(you.Entry, me.Entry.Provides, e.nextOrdinal()) {
		return false
	}

	return e.strictlyWiderCoverage(you, me) ||
		e.moreSpecificArgs(you, me) ||
		e.moreConstraintMentions(you, me)
}

// strictlyWiderCoverage: you implements some concept me does not.
func (e *Engine) strictlyWiderCoverage(you, me *Candidate) bool {
	return !e.scope.ImplementsAll(me.Entry, you.Entry.Provides, e.nextOrdinal())
}

// sharedArgs pairs up the type arguments of concepts both candidates
// provide directly (same head, same arity).
func sharedArgs(you, me *Candidate) (yours, mine []typesystem.Type) {
	for _, py := range you.Entry.Provides {
		hy, ok := typesystem.Head(py)
		if !ok {
			continue
		}
		for _, pm := range me.Entry.Provides {
			hm, ok := typesystem.Head(pm)
			if !ok || hy != hm {
				continue
			}
			ya, ma := typesystem.ArgsOf(py), typesystem.ArgsOf(pm)
			if len(ya) != len(ma) {
				continue
			}
			yours = append(yours, ya...)
			mine = append(mine, ma...)
		}
	}
	return yours, mine
}

// moreSpecificArgs: pairwise over mutually shared concept arguments, you is
// never less specific and at least once strictly more specific.
func (e *Engine) moreSpecificArgs(you, me *Candidate) bool {
	yours, mine := sharedArgs(you, me)
	if len(yours) == 0 {
		return false
	}
	strict := false
	for i := range yours {
		switch compareSpecificity(yours[i], mine[i]) {
		case -1:
			return false
		case 1:
			strict = true
		}
	}
	return strict
}

// compareSpecificity orders two type arguments: a named type beats a type
// variable, a non-generic type beats a generic one, and constructed types
// with the same head are compared argument-wise (so Array<Int> beats
// Array<T>); anything else is incomparable (0).
func compareSpecificity(a, b typesystem.Type) int {
	_, aVar := a.(typesystem.TVar)
	_, bVar := b.(typesystem.TVar)
	switch {
	case !aVar && bVar:
		return 1
	case aVar && !bVar:
		return -1
	case aVar && bVar:
		return 0
	}

	aApp, aIsApp := a.(typesystem.TApp)
	bApp, bIsApp := b.(typesystem.TApp)
	switch {
	case !aIsApp && bIsApp:
		return 1
	case aIsApp && !bIsApp:
		return -1
	case !aIsApp && !bIsApp:
		return 0
	}

	ah, aok := typesystem.Head(a)
	bh, bok := typesystem.Head(b)
	if !aok || !bok || ah != bh || len(aApp.Args) != len(bApp.Args) {
		return 0
	}
	sign := 0
	for i := range aApp.Args {
		switch compareSpecificity(aApp.Args[i], bApp.Args[i]) {
		case 1:
			if sign < 0 {
				return 0
			}
			sign = 1
		case -1:
			if sign > 0 {
				return 0
			}
			sign = -1
		}
	}
	return sign
}

// moreConstraintMentions: you's witness bounds reference the shared concept
// arguments strictly more often in aggregate, with none referenced fewer
// times.
func (e *Engine) moreConstraintMentions(you, me *Candidate) bool {
	yours, mine := sharedArgs(you, me)
	if len(yours) == 0 {
		return false
	}
	strict := false
	for i := range yours {
		yc := constraintMentions(you, yours[i])
		mc := constraintMentions(me, mine[i])
		if yc < mc {
			return false
		}
		if yc > mc {
			strict = true
		}
	}
	return strict
}

// constraintMentions counts how often the variables of one concept argument
// occur in the candidate instance's witness bounds. The declared (unrenamed)
// definition is used so the argument's variable names line up.
func constraintMentions(c *Candidate, arg typesystem.Type) int {
	if c.Entry.Inst == nil {
		return 0
	}
	total := 0
	for _, v := range arg.FreeTypeVariables() {
		for _, wp := range c.Entry.Inst.Witness {
			total += countOccurrences(wp.Requires, v.Name)
		}
	}
	return total
}

func countOccurrences(t typesystem.Type, name string) int {
	switch typ := t.(type) {
	case typesystem.TVar:
		if typ.Name == name {
			return 1
		}
		return 0
	case typesystem.TApp:
		n := countOccurrences(typ.Constructor, name)
		for _, arg := range typ.Args {
			n += countOccurrences(arg, name)
		}
		return n
	default:
		return 0
	}
}
