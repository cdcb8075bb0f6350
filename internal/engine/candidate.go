package engine

import (
	"github.com/weylang/weyl/internal/symbols"
	"github.com/weylang/weyl/internal/typesystem"
)

// Candidate is one surviving result of a matching pass: an instance (with
// its parameters renamed apart) or an ambient rigid parameter, together with
// the substitution required to accept it. Candidates live for a single round
// and are never persisted.
type Candidate struct {
	Entry symbols.Entry
	Inst  *symbols.InstanceDef // renamed-apart copy; nil for rigid entries
	Term  typesystem.Type
	Subst typesystem.Subst
}

// Name returns the instance or rigid parameter name.
func (c *Candidate) Name() string { return c.Entry.Name }

// pendingParams returns the instance parameters that are not yet ground
// under the candidate's substitution. Rigid candidates have none.
func (c *Candidate) pendingParams(rigid typesystem.RigidSet) []string {
	if c.Inst == nil {
		return nil
	}
	var pending []string
	for _, p := range c.Inst.Params {
		v := c.Subst.Apply(typesystem.TVar{Name: p})
		if !typesystem.IsGround(v, rigid) {
			pending = append(pending, p)
		}
	}
	return pending
}
