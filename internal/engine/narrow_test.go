package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/weylang/weyl/internal/symbols"
	"github.com/weylang/weyl/internal/typesystem"
)

func TestCompareSpecificity(t *testing.T) {
	tests := []struct {
		name string
		a    typesystem.Type
		b    typesystem.Type
		want int
	}{
		{"constant beats variable", tc("Int"), tv("t"), 1},
		{"variable loses to constant", tv("t"), tc("Int"), -1},
		{"two variables tie", tv("t"), tv("u"), 0},
		{"two constants tie", tc("Int"), tc("Bool"), 0},
		{"constant beats application", tc("Int"), app("Array", tv("t")), 1},
		{"application loses to constant", app("Array", tv("t")), tc("Int"), -1},
		{"ground app beats generic app", app("Array", tc("Int")), app("Array", tv("t")), 1},
		{"generic app loses to ground app", app("Array", tv("t")), app("Array", tc("Int")), -1},
		{"identical apps tie", app("Array", tc("Int")), app("Array", tc("Int")), 0},
		{"different heads incomparable", app("Array", tc("Int")), app("List", tv("t")), 0},
		{"nested specificity", app("Array", app("Array", tc("Int"))), app("Array", app("Array", tv("t"))), 1},
		{"mixed directions incomparable", app("Pair", tc("Int"), tv("t")), app("Pair", tv("u"), tc("Bool")), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compareSpecificity(tt.a, tt.b))
		})
	}
}

func TestCountOccurrences(t *testing.T) {
	term := app("Pair", tv("t"), app("Array", tv("t")))
	assert.Equal(t, 2, countOccurrences(term, "t"))
	assert.Equal(t, 0, countOccurrences(term, "u"))
	assert.Equal(t, 0, countOccurrences(tc("Int"), "t"))
}

func TestSharedArgs(t *testing.T) {
	you := candidateFor(&symbols.InstanceDef{Name: "A", Provides: app("Eq", app("Array", tc("Int")))})
	me := candidateFor(&symbols.InstanceDef{Name: "B", Provides: app("Eq", app("Array", tv("t")))})

	yours, mine := sharedArgs(you, me)
	if assert.Len(t, yours, 1) && assert.Len(t, mine, 1) {
		assert.True(t, typesystem.Equal(yours[0], app("Array", tc("Int"))))
		assert.True(t, typesystem.Equal(mine[0], app("Array", tv("t"))))
	}

	// Different concept heads share nothing.
	other := candidateFor(&symbols.InstanceDef{Name: "C", Provides: app("Show", tc("Int"))})
	yours, mine = sharedArgs(you, other)
	assert.Empty(t, yours)
	assert.Empty(t, mine)
}

func TestNarrowIdenticalCandidatesAllSurvive(t *testing.T) {
	// Overlap is permitted in both directions, but identical coverage and
	// arguments fire no tie-breaker, so both candidates survive and the
	// caller reports ambiguity.
	a := candidateFor(&symbols.InstanceDef{
		Name:         "A",
		Provides:     app("Eq", tc("Int")),
		Overlapping:  true,
		Overlappable: true,
	})
	b := candidateFor(&symbols.InstanceDef{
		Name:         "B",
		Provides:     app("Eq", tc("Int")),
		Overlapping:  true,
		Overlappable: true,
	})
	e := New(testScope(t))

	// Identical coverage and arguments: no tie-breaker fires, both stay.
	kept := e.narrow([]*Candidate{a, b})
	assert.Len(t, kept, 2)
}

func TestMoreConstraintMentions(t *testing.T) {
	// Both provide Eq<Array<t>>; A's witness bounds mention t twice, B's once.
	defA := &symbols.InstanceDef{
		Name:     "A",
		Provides: app("Eq", app("Array", tv("t"))),
		Params:   []string{"t", "w1", "w2"},
		Witness: []symbols.WitnessParam{
			{Name: "w1", Requires: app("Eq", tv("t"))},
			{Name: "w2", Requires: app("Show", tv("t"))},
		},
	}
	defB := &symbols.InstanceDef{
		Name:     "B",
		Provides: app("Eq", app("Array", tv("t"))),
		Params:   []string{"t", "w"},
		Witness: []symbols.WitnessParam{
			{Name: "w", Requires: app("Eq", tv("t"))},
		},
	}
	e := New(testScope(t))
	a, b := candidateFor(defA), candidateFor(defB)

	assert.True(t, e.moreConstraintMentions(a, b))
	assert.False(t, e.moreConstraintMentions(b, a))
}

func candidateFor(def *symbols.InstanceDef) *Candidate {
	return &Candidate{
		Entry: symbols.Entry{Name: def.Name, Inst: def, Provides: []typesystem.Type{def.Provides}},
		Inst:  def,
		Subst: typesystem.NewSubst(),
	}
}
