// Package engine implements constraint-directed witness inference: given a
// set of parameters classified as concept witnesses, associated types, and
// ordinary unfixed parameters, it searches the visible instances for a
// unique, fully fixed assignment, driving unification, recursive resolution
// of candidate instances' own parameters, and specificity tie-breaking to a
// fixed point.
package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/weylang/weyl/internal/symbols"
	"github.com/weylang/weyl/internal/typesystem"
)

// OrdinaryInferrer is the external ordinary-inference collaborator. The
// engine invokes it when no witness made progress in an iteration; it may
// make partial progress and is re-invoked until a fixed point. Parameters are
// identified by name, so the collaborator never needs a dense ordinal list.
type OrdinaryInferrer interface {
	InferOrdinary(pending []string, subst typesystem.Subst) (madeProgress bool, partial typesystem.Subst, err error)
}

// NopOrdinary is the collaborator used when there is no enclosing
// ordinary-parameter context.
type NopOrdinary struct{}

func (NopOrdinary) InferOrdinary([]string, typesystem.Subst) (bool, typesystem.Subst, error) {
	return false, typesystem.NewSubst(), nil
}

// ConstraintChecker validates a candidate instance's declared bounds once all
// of its parameters are concrete.
type ConstraintChecker interface {
	CheckAllConstraints(inst *symbols.InstanceDef, subst typesystem.Subst) error
}

// Engine runs inference requests against one scope. It is single-threaded
// and non-reentrant: a request's round mutates shared freshening state, so an
// Engine must not serve two logical requests concurrently.
type Engine struct {
	scope    *symbols.Scope
	ordinary OrdinaryInferrer
	checker  ConstraintChecker
	log      *zap.Logger
	fresh    int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger installs a trace logger. The default is zap.NewNop().
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithOrdinary installs the ordinary-inference collaborator.
func WithOrdinary(inf OrdinaryInferrer) Option {
	return func(e *Engine) { e.ordinary = inf }
}

// WithChecker replaces the constraint checker. The default re-checks each
// witness bound against the scope.
func WithChecker(c ConstraintChecker) Option {
	return func(e *Engine) { e.checker = c }
}

// New creates an engine over the given scope.
func New(scope *symbols.Scope, opts ...Option) *Engine {
	e := &Engine{
		scope:    scope,
		ordinary: NopOrdinary{},
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.checker == nil {
		e.checker = &scopeChecker{engine: e}
	}
	return e
}

// nextOrdinal returns a renaming ordinal never used before by this engine,
// so instance parameters from different matching attempts cannot collide.
func (e *Engine) nextOrdinal() int {
	e.fresh++
	return e.fresh
}

// scopeChecker is the default constraint checker: every witness bound of the
// fully fixed instance must be ground and satisfied by something in scope.
type scopeChecker struct {
	engine *Engine
}

func (c *scopeChecker) CheckAllConstraints(inst *symbols.InstanceDef, subst typesystem.Subst) error {
	scope := c.engine.scope
	rigid := scope.RigidVars()
	entries, _ := scope.ScopeInstances()
	for _, wp := range inst.Witness {
		req := subst.Apply(wp.Requires)
		if !typesystem.IsGround(req, rigid) {
			return fmt.Errorf("constraint %s of %s is not fully fixed", req, inst.Name)
		}
		if !c.satisfiable(entries, rigid, req) {
			return fmt.Errorf("constraint %s of %s is not satisfied", req, inst.Name)
		}
	}
	return nil
}

func (c *scopeChecker) satisfiable(entries []symbols.Entry, rigid typesystem.RigidSet, req typesystem.Type) bool {
	scope := c.engine.scope
	for _, entry := range entries {
		ord := c.engine.nextOrdinal()
		for _, p := range entry.Provides {
			for _, provided := range scope.ProvidedConcepts(p) {
				renamed := provided
				if !entry.IsRigid() {
					renamed = typesystem.RenameTypeVars(provided, ord)
				}
				if _, err := typesystem.Unify(renamed, req, rigid); err == nil {
					return true
				}
			}
		}
	}
	return false
}
