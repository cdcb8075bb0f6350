package engine

import (
	"go.uber.org/zap"

	"github.com/weylang/weyl/internal/diagnostics"
	"github.com/weylang/weyl/internal/symbols"
	"github.com/weylang/weyl/internal/typesystem"
)

// reduceRequired drops any required concept already implied by another
// member of the set, so redundant (weaker) concepts never force extra
// unifications. Keep-first: of two mutually implying members the earlier one
// stays.
func (e *Engine) reduceRequired(required []typesystem.Type) []typesystem.Type {
	if len(required) < 2 {
		return required
	}
	var out []typesystem.Type
	for i, c := range required {
		implied := false
		for j, other := range required {
			if i == j {
				continue
			}
			if !e.scope.Implies(other, c) {
				continue
			}
			// Mutual implication: the earlier member wins.
			if e.scope.Implies(c, other) && i < j {
				continue
			}
			implied = true
			break
		}
		if !implied {
			out = append(out, c)
		}
	}
	return out
}

// matchCandidates is the first pass: filter all visible candidates down to
// those whose provided concepts unify with every required concept,
// accumulating each candidate's unifying substitution across the required
// set (fixing one concept's variables constrains the next unification).
// A candidate failing any required concept is dropped entirely.
func (e *Engine) matchCandidates(required []typesystem.Type, entries []symbols.Entry, rigid typesystem.RigidSet) ([]*Candidate, *diagnostics.DiagnosticError) {
	matchedSomewhere := make([]bool, len(required))
	var out []*Candidate

	for _, entry := range entries {
		cand := e.matchEntry(required, entry, rigid, matchedSomewhere)
		if cand != nil {
			out = append(out, cand)
		}
	}

	if len(out) == 0 {
		// Name the offending concepts: the ones no candidate matched at
		// all, or the whole set when every concept matched somewhere but no
		// single candidate covered them all.
		var offending []string
		for i, ok := range matchedSomewhere {
			if !ok {
				offending = append(offending, required[i].String())
			}
		}
		if len(offending) == 0 {
			for _, c := range required {
				offending = append(offending, c.String())
			}
		}
		return nil, diagnostics.Unsatisfiable(offending...)
	}
	return out, nil
}

func (e *Engine) matchEntry(required []typesystem.Type, entry symbols.Entry, rigid typesystem.RigidSet, matchedSomewhere []bool) *Candidate {
	cand := &Candidate{Entry: entry, Subst: typesystem.NewSubst()}

	var provided []typesystem.Type
	if entry.IsRigid() {
		cand.Term = typesystem.TVar{Name: entry.Name}
		for _, p := range entry.Provides {
			provided = append(provided, e.scope.ProvidedConcepts(p)...)
		}
	} else {
		cand.Inst = entry.Inst.Renamed(e.nextOrdinal())
		provided = e.scope.ProvidedConcepts(cand.Inst.Provides)
	}

	for i, rc := range required {
		matched := false
		for _, p := range provided {
			s, err := typesystem.Unify(cand.Subst.Apply(p), cand.Subst.Apply(rc), rigid)
			if err != nil {
				continue
			}
			cand.Subst = cand.Subst.Compose(s)
			matched = true
			break
		}
		if !matched {
			e.log.Debug("candidate dropped in concept matching",
				zap.String("candidate", entry.Name),
				zap.String("required", rc.String()))
			return nil
		}
		matchedSomewhere[i] = true
	}

	if cand.Inst != nil {
		cand.Term = cand.Inst.Term(cand.Subst)
	}
	return cand
}
