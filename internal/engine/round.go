package engine

import (
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/weylang/weyl/internal/diagnostics"
	"github.com/weylang/weyl/internal/typesystem"
)

// Request describes one inference question: the free parameters at a call or
// type site, classified by the caller. Every name in Free must be a witness,
// an associated type, an ordinary unfixed parameter, or already bound in
// Fixed; anything else is a malformed request and fails the round.
type Request struct {
	// Witnesses maps each witness parameter to its required concepts.
	Witnesses map[string][]typesystem.Type
	// Assoc lists associated-type parameters, fixed as a side effect of
	// fixing witnesses.
	Assoc []string
	// Ordinary lists parameters owned by the external ordinary-inference
	// collaborator.
	Ordinary []string
	// Fixed seeds the round's substitution with already-known bindings.
	Fixed typesystem.Subst
	// Free lists every free parameter at the site. Empty means "derive from
	// the classes above".
	Free []string
}

type roundState int

const (
	statePending roundState = iota
	stateMadeProgress
	stateNoProgress
	stateDone
)

// Round is the mutable state of one inference request: the current
// substitution and the shrinking pending sets. A round is created per
// request (or recursive sub-request), mutated in place during Infer, and
// converted to an immutable Result at the end; it is never reused.
type Round struct {
	id       uuid.UUID
	engine   *Engine
	subst    typesystem.Subst
	rigid    typesystem.RigidSet
	witness  map[string][]typesystem.Type
	assoc    map[string]bool
	ordinary map[string]bool
	params   []string // every requested parameter, in classification order
	lastDiag map[string]*diagnostics.DiagnosticError
	log      *zap.Logger
}

// Infer runs a top-level inference request to its fixed point.
func (e *Engine) Infer(req Request) *Result {
	return e.inferWithChain(req, NewChain())
}

func (e *Engine) inferWithChain(req Request, chain Chain) *Result {
	r, derr := e.newRound(req)
	if derr != nil {
		return &Result{
			RequestID:   uuid.New(),
			Failed:      true,
			Diagnostics: []*diagnostics.DiagnosticError{derr},
			Subst:       typesystem.NewSubst(),
		}
	}
	return r.run(chain)
}

// newRound classifies the request's parameters. A free parameter that fits
// no class is a caller bug and yields a W004 diagnostic.
func (e *Engine) newRound(req Request) (*Round, *diagnostics.DiagnosticError) {
	r := &Round{
		id:       uuid.New(),
		engine:   e,
		subst:    req.Fixed,
		rigid:    e.scope.RigidVars(),
		witness:  make(map[string][]typesystem.Type, len(req.Witnesses)),
		assoc:    make(map[string]bool, len(req.Assoc)),
		ordinary: make(map[string]bool, len(req.Ordinary)),
		lastDiag: make(map[string]*diagnostics.DiagnosticError),
		log:      e.log,
	}

	for name, concepts := range req.Witnesses {
		r.witness[name] = concepts
	}
	for _, name := range req.Assoc {
		r.assoc[name] = true
	}
	for _, name := range req.Ordinary {
		r.ordinary[name] = true
	}

	witnessNames := make([]string, 0, len(r.witness))
	for name := range r.witness {
		witnessNames = append(witnessNames, name)
	}
	sort.Strings(witnessNames)
	r.params = append(r.params, witnessNames...)
	r.params = append(r.params, req.Assoc...)
	r.params = append(r.params, req.Ordinary...)

	for _, name := range req.Free {
		if _, ok := r.witness[name]; ok {
			continue
		}
		if r.assoc[name] || r.ordinary[name] {
			continue
		}
		if _, ok := r.subst.Lookup(name); ok {
			continue
		}
		return nil, diagnostics.Classification(name)
	}
	return r, nil
}

// run is the fixed-point loop. Each iteration attempts every pending witness
// end-to-end; when no witness makes progress the ordinary collaborator gets
// one invocation, and if that too stands still the round is done. Pending
// sets only shrink, so the loop terminates.
func (r *Round) run(chain Chain) *Result {
	r.log.Debug("inference round started",
		zap.String("round", r.id.String()),
		zap.Int("witnesses", len(r.witness)),
		zap.Int("assoc", len(r.assoc)),
		zap.Int("ordinary", len(r.ordinary)),
		zap.Int("depth", chain.Depth()))

	state := statePending
	for state != stateDone {
		state = stateNoProgress

		for _, name := range r.pendingWitnesses() {
			cand, diag, err := r.resolveWitness(name, chain)
			if err != nil {
				return r.failed(err)
			}
			if cand == nil {
				r.lastDiag[name] = diag
				continue
			}
			r.commit(name, cand)
			state = stateMadeProgress
		}

		if state == stateNoProgress && len(r.ordinary) > 0 {
			if r.ordinaryStep() {
				state = stateMadeProgress
			}
		}
		if state == stateNoProgress {
			state = stateDone
		}
	}
	return r.result()
}

func (r *Round) pendingWitnesses() []string {
	names := make([]string, 0, len(r.witness))
	for name := range r.witness {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolveWitness runs passes one through three for a single pending witness.
// A nil candidate with a diagnostic means "not resolvable this iteration";
// a non-nil error is fatal to the round (cycle detected here).
func (r *Round) resolveWitness(name string, chain Chain) (*Candidate, *diagnostics.DiagnosticError, error) {
	e := r.engine

	required := make([]typesystem.Type, len(r.witness[name]))
	for i, c := range r.witness[name] {
		required[i] = r.subst.Apply(c)
	}
	required = e.reduceRequired(required)

	entries, rigid := e.scope.ScopeInstances()

	cands, diag := e.matchCandidates(required, entries, rigid)
	if diag != nil {
		return nil, diag, nil
	}

	resolved, err := e.resolveCandidates(cands, chain)
	if err != nil {
		return nil, nil, err
	}
	if len(resolved) == 0 {
		var names []string
		for _, c := range required {
			names = append(names, c.String())
		}
		return nil, diagnostics.Unsatisfiable(names...), nil
	}

	if len(resolved) > 1 {
		resolved = e.narrow(resolved)
	}
	if len(resolved) == 1 {
		r.log.Debug("witness resolved",
			zap.String("round", r.id.String()),
			zap.String("param", name),
			zap.String("instance", resolved[0].Name()),
			zap.String("term", resolved[0].Term.String()))
		return resolved[0], nil, nil
	}
	return nil, diagnostics.Ambiguous(resolved[0].Name(), resolved[1].Name()), nil
}

// commit folds an accepted candidate into the round: the substitution is
// composed in, the witness parameter is bound to the resolved term, and the
// pending sets are re-derived (an associated type whose binding became
// concrete is done).
func (r *Round) commit(name string, cand *Candidate) {
	r.subst = r.subst.Compose(cand.Subst)
	r.subst = r.subst.Add(name, cand.Term)
	delete(r.witness, name)
	delete(r.lastDiag, name)
	r.refreshPending()
}

func (r *Round) refreshPending() {
	for name := range r.assoc {
		if typesystem.IsGround(r.subst.Apply(typesystem.TVar{Name: name}), r.rigid) {
			delete(r.assoc, name)
		}
	}
	for name := range r.ordinary {
		if typesystem.IsGround(r.subst.Apply(typesystem.TVar{Name: name}), r.rigid) {
			delete(r.ordinary, name)
		}
	}
}

// ordinaryStep gives the external collaborator one chance to make progress.
// Partial results are folded in and the pending lists re-substituted.
func (r *Round) ordinaryStep() bool {
	pending := make([]string, 0, len(r.ordinary))
	for name := range r.ordinary {
		pending = append(pending, name)
	}
	sort.Strings(pending)

	made, partial, err := r.engine.ordinary.InferOrdinary(pending, r.subst)
	if err != nil {
		r.log.Debug("ordinary inference failed",
			zap.String("round", r.id.String()), zap.Error(err))
		return false
	}
	if !made {
		return false
	}
	r.subst = r.subst.Compose(partial)
	r.refreshPending()
	r.log.Debug("ordinary inference made progress",
		zap.String("round", r.id.String()),
		zap.Int("remaining", len(r.ordinary)))
	return true
}

func (r *Round) failed(err error) *Result {
	res := &Result{RequestID: r.id, Failed: true, Subst: r.subst}
	if de, ok := diagnostics.AsDiagnostic(err); ok {
		res.Diagnostics = append(res.Diagnostics, de)
	} else {
		res.Diagnostics = append(res.Diagnostics, diagnostics.New(diagnostics.ErrW003, "%s", err.Error()))
	}
	return res
}

// result snapshots the round. Success requires every requested parameter to
// be ground and nothing left in the ordinary pending set.
func (r *Round) result() *Result {
	res := &Result{
		RequestID: r.id,
		Resolved:  make(map[string]typesystem.Type, len(r.params)),
		Subst:     r.subst,
	}
	for _, name := range r.params {
		v := r.subst.Apply(typesystem.TVar{Name: name})
		if typesystem.IsGround(v, r.rigid) {
			res.Resolved[name] = v
			continue
		}
		res.Unresolved = append(res.Unresolved, name)
		if diag, ok := r.lastDiag[name]; ok {
			res.Diagnostics = append(res.Diagnostics, diag)
		} else {
			res.Diagnostics = append(res.Diagnostics, diagnostics.Unresolved(name))
		}
	}
	res.Success = len(res.Unresolved) == 0 && len(r.ordinary) == 0

	r.log.Debug("inference round finished",
		zap.String("round", r.id.String()),
		zap.Bool("success", res.Success),
		zap.Int("unresolved", len(res.Unresolved)))
	return res
}
