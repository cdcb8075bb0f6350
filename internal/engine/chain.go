package engine

import "sort"

// Chain is the set of instance names currently being recursively resolved on
// the call stack. It is the only mechanism bounding recursion: revisiting a
// member means the search space is unbounded and the pass must abort.
type Chain map[string]struct{}

// NewChain returns an empty cycle guard.
func NewChain() Chain {
	return Chain{}
}

// Has reports whether the instance is already in progress.
func (c Chain) Has(name string) bool {
	_, ok := c[name]
	return ok
}

// With returns a copy extended with name. Copying keeps sibling candidates'
// recursions independent of each other.
func (c Chain) With(name string) Chain {
	out := make(Chain, len(c)+1)
	for k := range c {
		out[k] = struct{}{}
	}
	out[name] = struct{}{}
	return out
}

// Depth returns the current recursion depth.
func (c Chain) Depth() int { return len(c) }

// Names returns the members in sorted order.
func (c Chain) Names() []string {
	names := make([]string, 0, len(c))
	for n := range c {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
