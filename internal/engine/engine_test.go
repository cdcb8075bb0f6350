package engine

import (
	"testing"

	"github.com/weylang/weyl/internal/config"
	"github.com/weylang/weyl/internal/diagnostics"
	"github.com/weylang/weyl/internal/symbols"
	"github.com/weylang/weyl/internal/typesystem"
)

func tv(name string) typesystem.Type { return typesystem.TVar{Name: name} }
func tc(name string) typesystem.Type { return typesystem.TCon{Name: name} }

func app(name string, args ...typesystem.Type) typesystem.Type {
	return typesystem.App(name, args...)
}

// testScope declares the concepts Eq<T>, Ord<T> requires Eq<T>, Num<T>
// requires Eq<T>, Show<T>, then registers the given instances.
func testScope(t *testing.T, instances ...*symbols.InstanceDef) *symbols.Scope {
	t.Helper()
	s := symbols.NewScope(nil)
	for _, c := range []*symbols.ConceptDef{
		{Name: "Eq", Params: []string{"T"}},
		{Name: "Ord", Params: []string{"T"}, Requires: []typesystem.Type{app("Eq", tv("T"))}},
		{Name: "Num", Params: []string{"T"}, Requires: []typesystem.Type{app("Eq", tv("T"))}},
		{Name: "Show", Params: []string{"T"}},
	} {
		if err := s.RegisterConcept(c); err != nil {
			t.Fatalf("register concept %s: %v", c.Name, err)
		}
	}
	for _, inst := range instances {
		if err := s.RegisterInstance(inst); err != nil {
			t.Fatalf("register instance %s: %v", inst.Name, err)
		}
	}
	return s
}

func eqInt() *symbols.InstanceDef {
	return &symbols.InstanceDef{Name: "EqInt", Provides: app("Eq", tc("Int"))}
}

// eqArray provides Eq<Array<t>> given a witness w for Eq<t>.
func eqArray() *symbols.InstanceDef {
	return &symbols.InstanceDef{
		Name:     "EqArray",
		Provides: app("Eq", app("Array", tv("t"))),
		Params:   []string{"t", "w"},
		Witness:  []symbols.WitnessParam{{Name: "w", Requires: app("Eq", tv("t"))}},
	}
}

// witnessRequest asks for a single witness covering the required concepts.
func witnessRequest(required ...typesystem.Type) Request {
	return Request{Witnesses: map[string][]typesystem.Type{config.QueryWitnessName: required}}
}

func resolvedWitness(t *testing.T, res *Result) typesystem.Type {
	t.Helper()
	if !res.Success {
		t.Fatalf("inference failed: %v", res.Diagnostics)
	}
	w, ok := res.ResolvedType(config.QueryWitnessName)
	if !ok {
		t.Fatal("witness parameter not resolved")
	}
	return w
}

func TestInferSingleInstance(t *testing.T) {
	e := New(testScope(t, eqInt()))
	res := e.Infer(witnessRequest(app("Eq", tc("Int"))))

	if got := resolvedWitness(t, res).String(); got != "EqInt" {
		t.Errorf("witness = %s, want EqInt", got)
	}
}

func TestInferNoCandidates(t *testing.T) {
	e := New(testScope(t, eqInt()))
	res := e.Infer(witnessRequest(app("Show", tc("Int"))))

	if res.Success {
		t.Fatal("expected failure")
	}
	if !res.HasDiagnostic(diagnostics.ErrW001) {
		t.Errorf("want W001, got %v", res.Diagnostics)
	}
	found := false
	for _, d := range res.Diagnostics {
		for _, s := range d.Subjects {
			if s == "Show<Int>" {
				found = true
			}
		}
	}
	if !found {
		t.Errorf("diagnostic should name Show<Int>: %v", res.Diagnostics)
	}
}

func TestInferRecursiveWitness(t *testing.T) {
	e := New(testScope(t, eqInt(), eqArray()))
	res := e.Infer(witnessRequest(app("Eq", app("Array", tc("Int")))))

	if got := resolvedWitness(t, res).String(); got != "EqArray<Int, EqInt>" {
		t.Errorf("witness = %s, want EqArray<Int, EqInt>", got)
	}
}

func TestInferChainGuardKeyedOnInstanceIdentity(t *testing.T) {
	// The cycle guard tracks instance identities, not requirement terms, so
	// even well-founded structural recursion through the same instance
	// (EqArray inside EqArray) is cut off rather than expanded.
	e := New(testScope(t, eqInt(), eqArray()))
	res := e.Infer(witnessRequest(app("Eq", app("Array", app("Array", tc("Int"))))))

	if res.Success {
		t.Fatal("expected the guard to reject nested use of the same instance")
	}
	if !res.HasDiagnostic(diagnostics.ErrW001) {
		t.Errorf("want W001, got %v", res.Diagnostics)
	}
}

func TestInferRecursiveWitnessMissingLeaf(t *testing.T) {
	// Eq<Array<Char>> matches EqArray structurally, but no Eq<Char> exists,
	// so the one candidate dies in recursive resolution.
	e := New(testScope(t, eqInt(), eqArray()))
	res := e.Infer(witnessRequest(app("Eq", app("Array", tc("Char")))))

	if res.Success {
		t.Fatal("expected failure")
	}
	if !res.HasDiagnostic(diagnostics.ErrW001) {
		t.Errorf("want W001, got %v", res.Diagnostics)
	}
}

func TestInferAmbiguousNamesBothInstances(t *testing.T) {
	a := &symbols.InstanceDef{Name: "EqIntA", Provides: app("Eq", tc("Int"))}
	b := &symbols.InstanceDef{Name: "EqIntB", Provides: app("Eq", tc("Int"))}
	e := New(testScope(t, a, b))
	res := e.Infer(witnessRequest(app("Eq", tc("Int"))))

	if res.Success {
		t.Fatal("expected ambiguity")
	}
	var diag *diagnostics.DiagnosticError
	for _, d := range res.Diagnostics {
		if d.Code == diagnostics.ErrW002 {
			diag = d
		}
	}
	if diag == nil {
		t.Fatalf("want W002, got %v", res.Diagnostics)
	}
	if len(diag.Subjects) != 2 || diag.Subjects[0] != "EqIntA" || diag.Subjects[1] != "EqIntB" {
		t.Errorf("subjects = %v, want both instances named", diag.Subjects)
	}
}

func TestInferOverlappingInstanceWins(t *testing.T) {
	// The generic array instance loses to the specialized one, which is
	// tagged overlapping and has strictly more specific arguments.
	special := &symbols.InstanceDef{
		Name:        "EqIntArray",
		Provides:    app("Eq", app("Array", tc("Int"))),
		Overlapping: true,
	}
	e := New(testScope(t, eqInt(), eqArray(), special))
	res := e.Infer(witnessRequest(app("Eq", app("Array", tc("Int")))))

	if got := resolvedWitness(t, res).String(); got != "EqIntArray" {
		t.Errorf("witness = %s, want EqIntArray", got)
	}
}

func TestInferOverlappableInstanceLoses(t *testing.T) {
	// Same outcome when the generic instance is tagged overlappable instead.
	generic := eqArray()
	generic.Overlappable = true
	special := &symbols.InstanceDef{
		Name:     "EqIntArray",
		Provides: app("Eq", app("Array", tc("Int"))),
	}
	e := New(testScope(t, eqInt(), generic, special))
	res := e.Infer(witnessRequest(app("Eq", app("Array", tc("Int")))))

	if got := resolvedWitness(t, res).String(); got != "EqIntArray" {
		t.Errorf("witness = %s, want EqIntArray", got)
	}
}

func TestInferOverlapWithoutPermissionIsAmbiguous(t *testing.T) {
	// Neither instance is annotated, so specificity never gets to apply.
	special := &symbols.InstanceDef{
		Name:     "EqIntArray",
		Provides: app("Eq", app("Array", tc("Int"))),
	}
	e := New(testScope(t, eqInt(), eqArray(), special))
	res := e.Infer(witnessRequest(app("Eq", app("Array", tc("Int")))))

	if res.Success {
		t.Fatal("expected ambiguity")
	}
	if !res.HasDiagnostic(diagnostics.ErrW002) {
		t.Errorf("want W002, got %v", res.Diagnostics)
	}
}

func TestInferCycleIsBoundedAndSurfaces(t *testing.T) {
	// Eq<Box<t>> requires Eq<Box<t>>: resolution would recurse forever
	// without the chain guard. The cycle kills the only candidate, so the
	// top-level request reports unsatisfiable rather than hanging.
	loop := &symbols.InstanceDef{
		Name:     "EqBox",
		Provides: app("Eq", app("Box", tv("t"))),
		Params:   []string{"t", "w"},
		Witness:  []symbols.WitnessParam{{Name: "w", Requires: app("Eq", app("Box", tv("t")))}},
	}
	e := New(testScope(t, loop))
	res := e.Infer(witnessRequest(app("Eq", app("Box", tc("Int")))))

	if res.Success {
		t.Fatal("expected failure")
	}
	if !res.HasDiagnostic(diagnostics.ErrW001) {
		t.Errorf("want W001 at top level, got %v", res.Diagnostics)
	}
}

func TestInferCycleFailsRecursiveRound(t *testing.T) {
	// Observed one level down: the chain hit is fatal to the round that
	// detects it, surfacing as W003 there.
	loop := &symbols.InstanceDef{
		Name:     "EqBox",
		Provides: app("Eq", app("Box", tv("t"))),
		Params:   []string{"t", "w"},
		Witness:  []symbols.WitnessParam{{Name: "w", Requires: app("Eq", app("Box", tv("t")))}},
	}
	e := New(testScope(t, loop))
	res := e.inferWithChain(witnessRequest(app("Eq", app("Box", tc("Int")))), NewChain().With("EqBox"))

	if !res.Failed {
		t.Fatal("expected a failed round")
	}
	if !res.HasDiagnostic(diagnostics.ErrW003) {
		t.Errorf("want W003, got %v", res.Diagnostics)
	}
}

func TestInferRedundantConceptEliminated(t *testing.T) {
	// Num<Int> implies Eq<Int>; an instance providing Num<Int> covers the
	// pair on its own, with no separate Eq instance in scope.
	numInt := &symbols.InstanceDef{Name: "NumInt", Provides: app("Num", tc("Int"))}
	e := New(testScope(t, numInt))
	res := e.Infer(witnessRequest(app("Eq", tc("Int")), app("Num", tc("Int"))))

	if got := resolvedWitness(t, res).String(); got != "NumInt" {
		t.Errorf("witness = %s, want NumInt", got)
	}
}

func TestReduceRequired(t *testing.T) {
	e := New(testScope(t))

	got := e.reduceRequired([]typesystem.Type{app("Eq", tc("Int")), app("Num", tc("Int"))})
	if len(got) != 1 || !typesystem.Equal(got[0], app("Num", tc("Int"))) {
		t.Errorf("reduced = %v, want [Num<Int>]", got)
	}

	// Unrelated concepts both stay.
	got = e.reduceRequired([]typesystem.Type{app("Eq", tc("Int")), app("Show", tc("Int"))})
	if len(got) != 2 {
		t.Errorf("reduced = %v, want both kept", got)
	}
}

func TestInferRigidParameterAsWitness(t *testing.T) {
	scope := testScope(t)
	if err := scope.BindRigid("T", app("Eq", tv("T"))); err != nil {
		t.Fatal(err)
	}
	e := New(scope)
	res := e.Infer(witnessRequest(app("Eq", tv("T"))))

	if got := resolvedWitness(t, res); !typesystem.Equal(got, tv("T")) {
		t.Errorf("witness = %s, want the rigid parameter T", got)
	}
}

func TestInferRigidParameterProvidesSuperconcepts(t *testing.T) {
	// T known to implement Ord<T> also answers an Eq<T> requirement.
	scope := testScope(t)
	if err := scope.BindRigid("T", app("Ord", tv("T"))); err != nil {
		t.Fatal(err)
	}
	e := New(scope)
	res := e.Infer(witnessRequest(app("Eq", tv("T"))))

	if got := resolvedWitness(t, res); !typesystem.Equal(got, tv("T")) {
		t.Errorf("witness = %s, want T", got)
	}
}

func TestInferClassificationFailure(t *testing.T) {
	e := New(testScope(t, eqInt()))
	res := e.Infer(Request{Free: []string{"mystery"}})

	if !res.Failed {
		t.Fatal("expected a failed round")
	}
	if !res.HasDiagnostic(diagnostics.ErrW004) {
		t.Errorf("want W004, got %v", res.Diagnostics)
	}
}

func TestInferMatchingFixesAssociatedType(t *testing.T) {
	// Matching Eq<a> against EqInt's Eq<Int> fixes the call-site variable a.
	e := New(testScope(t, eqInt()))
	res := e.Infer(Request{
		Witnesses: map[string][]typesystem.Type{"w": {app("Eq", tv("a"))}},
		Assoc:     []string{"a"},
	})

	if !res.Success {
		t.Fatalf("inference failed: %v", res.Diagnostics)
	}
	a, ok := res.ResolvedType("a")
	if !ok || !typesystem.Equal(a, tc("Int")) {
		t.Errorf("a = %v, want Int", a)
	}
}

// fakeOrdinary binds every pending parameter to Int on its first invocation
// and counts calls.
type fakeOrdinary struct {
	calls int
}

func (f *fakeOrdinary) InferOrdinary(pending []string, subst typesystem.Subst) (bool, typesystem.Subst, error) {
	f.calls++
	if f.calls > 1 {
		return false, typesystem.NewSubst(), nil
	}
	out := typesystem.NewSubst()
	for _, p := range pending {
		out = out.Add(p, tc("Int"))
	}
	return true, out, nil
}

func TestInferOrdinaryCollaboratorRunsOnPlateau(t *testing.T) {
	ord := &fakeOrdinary{}
	e := New(testScope(t, eqInt()), WithOrdinary(ord))
	res := e.Infer(Request{Ordinary: []string{"n"}})

	if !res.Success {
		t.Fatalf("inference failed: %v", res.Diagnostics)
	}
	if got, _ := res.ResolvedType("n"); !typesystem.Equal(got, tc("Int")) {
		t.Errorf("n = %v, want Int", got)
	}
	if ord.calls != 1 {
		t.Errorf("collaborator called %d times, want 1", ord.calls)
	}
}

func TestInferUnresolvedOrdinaryFails(t *testing.T) {
	e := New(testScope(t)) // NopOrdinary never makes progress
	res := e.Infer(Request{Ordinary: []string{"n"}})

	if res.Success {
		t.Fatal("expected failure")
	}
	if !res.HasDiagnostic(diagnostics.ErrW005) {
		t.Errorf("want W005, got %v", res.Diagnostics)
	}
}

func TestInferFixedBindingsSeedTheRound(t *testing.T) {
	e := New(testScope(t, eqInt(), eqArray()))
	fixed := typesystem.NewSubst().Add("elem", tc("Int"))
	res := e.Infer(Request{
		Witnesses: map[string][]typesystem.Type{"w": {app("Eq", app("Array", tv("elem")))}},
		Fixed:     fixed,
		Free:      []string{"w", "elem"},
	})

	if !res.Success {
		t.Fatalf("inference failed: %v", res.Diagnostics)
	}
	if got, _ := res.ResolvedType("w"); got.String() != "EqArray<Int, EqInt>" {
		t.Errorf("w = %s", got)
	}
}
