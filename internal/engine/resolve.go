package engine

import (
	"go.uber.org/zap"

	"github.com/weylang/weyl/internal/diagnostics"
	"github.com/weylang/weyl/internal/typesystem"
)

// resolveCandidates is the second pass: a candidate with unresolved
// parameters of its own gets the whole engine run recursively over them,
// guarded by the chain. Rigid candidates and fully fixed instances pass
// through as-is.
//
// A chain hit aborts the entire pass — the error is a W003 diagnostic fatal
// to the current round. One level up, the failed sub-round merely makes that
// one candidate non-viable, so a cycle degrades a single branch of the outer
// search rather than the whole request.
func (e *Engine) resolveCandidates(cands []*Candidate, chain Chain) ([]*Candidate, error) {
	rigid := e.scope.RigidVars()
	var out []*Candidate

	for _, cand := range cands {
		if cand.Entry.IsRigid() {
			out = append(out, cand)
			continue
		}

		pending := cand.pendingParams(rigid)
		if len(pending) == 0 {
			cand.Term = cand.Inst.Term(cand.Subst)
			out = append(out, cand)
			continue
		}

		if chain.Has(cand.Entry.Name) {
			return nil, diagnostics.CycleDetected(cand.Entry.Name)
		}

		res := e.inferWithChain(e.subRequest(cand, pending), chain.With(cand.Entry.Name))
		if !res.Success {
			e.log.Debug("candidate dropped: recursive resolution failed",
				zap.String("candidate", cand.Entry.Name),
				zap.Int("depth", chain.Depth()),
				zap.Int("diagnostics", len(res.Diagnostics)))
			continue
		}

		full := cand.Subst.Compose(res.Subst)
		if err := e.checker.CheckAllConstraints(cand.Inst, full); err != nil {
			e.log.Debug("candidate dropped: constraint check failed",
				zap.String("candidate", cand.Entry.Name),
				zap.Error(err))
			continue
		}
		cand.Subst = full
		cand.Term = cand.Inst.Term(full)
		out = append(out, cand)
	}
	return out, nil
}

// subRequest builds the recursive inference request for a candidate's own
// parameters, seeded with its unification substitution. Witness parameters
// come from the instance's declared bounds; everything else still pending is
// an associated type, fixed as a side effect of fixing the witnesses.
func (e *Engine) subRequest(cand *Candidate, pending []string) Request {
	witnesses := make(map[string][]typesystem.Type, len(cand.Inst.Witness))
	for _, wp := range cand.Inst.Witness {
		witnesses[wp.Name] = []typesystem.Type{wp.Requires}
	}
	var assoc []string
	for _, p := range pending {
		if !cand.Inst.IsWitnessParam(p) {
			assoc = append(assoc, p)
		}
	}
	return Request{
		Witnesses: witnesses,
		Assoc:     assoc,
		Fixed:     cand.Subst,
		Free:      cand.Inst.Params,
	}
}
