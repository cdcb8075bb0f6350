package symbols

import (
	"fmt"

	"github.com/weylang/weyl/internal/diagnostics"
	"github.com/weylang/weyl/internal/typesystem"
)

// Scope is one level of the lexical scope chain. Inner scopes see everything
// their outer scopes declare. The chain is read-only for the duration of one
// inference request.
type Scope struct {
	outer *Scope

	concepts     map[string]*ConceptDef
	conceptOrder []string

	instances     map[string]*InstanceDef
	instanceOrder []string

	rigid      map[string][]typesystem.Type // rigid var -> concepts it is known to implement
	rigidOrder []string
}

// NewScope creates a scope nested in outer (outer may be nil).
func NewScope(outer *Scope) *Scope {
	return &Scope{
		outer:     outer,
		concepts:  make(map[string]*ConceptDef),
		instances: make(map[string]*InstanceDef),
		rigid:     make(map[string][]typesystem.Type),
	}
}

// RegisterConcept declares a concept in this scope.
func (s *Scope) RegisterConcept(def *ConceptDef) error {
	if _, ok := s.concepts[def.Name]; ok {
		return diagnostics.New(diagnostics.ErrL003, "concept %s already declared", def.Name)
	}
	for _, req := range def.Requires {
		if err := s.checkConceptRef(req); err != nil {
			return err
		}
	}
	s.concepts[def.Name] = def
	s.conceptOrder = append(s.conceptOrder, def.Name)
	return nil
}

// RegisterInstance declares a named instance in this scope. The provided
// concept's head must be a declared concept.
func (s *Scope) RegisterInstance(def *InstanceDef) error {
	if _, ok := s.instances[def.Name]; ok {
		return diagnostics.New(diagnostics.ErrL003, "instance %s already declared", def.Name)
	}
	if err := s.checkConceptRef(def.Provides); err != nil {
		return err
	}
	for _, w := range def.Witness {
		if err := s.checkConceptRef(w.Requires); err != nil {
			return err
		}
	}
	s.instances[def.Name] = def
	s.instanceOrder = append(s.instanceOrder, def.Name)
	return nil
}

// BindRigid declares an ambient type parameter, bound by the enclosing
// generic context, already known to implement the given concepts.
func (s *Scope) BindRigid(name string, concepts ...typesystem.Type) error {
	for _, c := range concepts {
		if err := s.checkConceptRef(c); err != nil {
			return err
		}
	}
	if _, ok := s.rigid[name]; !ok {
		s.rigidOrder = append(s.rigidOrder, name)
	}
	s.rigid[name] = append(s.rigid[name], concepts...)
	return nil
}

func (s *Scope) checkConceptRef(t typesystem.Type) error {
	head, ok := typesystem.Head(t)
	if !ok {
		return diagnostics.New(diagnostics.ErrL002, "concept reference %s has no constructor head", t)
	}
	if _, ok := s.Concept(head); !ok {
		return diagnostics.New(diagnostics.ErrL002, "unknown concept %s", head)
	}
	return nil
}

// Concept looks a concept up through the scope chain.
func (s *Scope) Concept(name string) (*ConceptDef, bool) {
	if def, ok := s.concepts[name]; ok {
		return def, true
	}
	if s.outer != nil {
		return s.outer.Concept(name)
	}
	return nil, false
}

// Instance looks a named instance up through the scope chain.
func (s *Scope) Instance(name string) (*InstanceDef, bool) {
	if def, ok := s.instances[name]; ok {
		return def, true
	}
	if s.outer != nil {
		return s.outer.Instance(name)
	}
	return nil, false
}

// ScopeInstances returns every distinct candidate visible from this scope —
// named instances plus ambient rigid parameters — and the set of rigid
// variable names. The same name reachable through two scope levels counts
// once (inner shadows outer).
func (s *Scope) ScopeInstances() ([]Entry, typesystem.RigidSet) {
	var entries []Entry
	seen := make(map[string]bool)
	rigid := typesystem.NewRigidSet()

	for sc := s; sc != nil; sc = sc.outer {
		for _, name := range sc.instanceOrder {
			if seen[name] {
				continue
			}
			seen[name] = true
			def := sc.instances[name]
			entries = append(entries, Entry{
				Name:     name,
				Inst:     def,
				Provides: []typesystem.Type{def.Provides},
			})
		}
		for _, name := range sc.rigidOrder {
			if seen[name] {
				continue
			}
			seen[name] = true
			rigid.Add(name)
			entries = append(entries, Entry{
				Name:     name,
				Provides: append([]typesystem.Type(nil), sc.rigid[name]...),
			})
		}
	}
	return entries, rigid
}

// RigidVars returns every rigid variable name visible from this scope.
func (s *Scope) RigidVars() typesystem.RigidSet {
	out := typesystem.NewRigidSet()
	for sc := s; sc != nil; sc = sc.outer {
		for name := range sc.rigid {
			out.Add(name)
		}
	}
	return out
}

// ProvidedConcepts computes the transitive closure of concepts provided by a
// concept instantiation: the concept itself plus everything its declaration
// requires, recursively, with arguments substituted through.
func (s *Scope) ProvidedConcepts(concept typesystem.Type) []typesystem.Type {
	var out []typesystem.Type
	seen := make(map[string]bool)
	s.closure(concept, seen, &out)
	return out
}

func (s *Scope) closure(concept typesystem.Type, seen map[string]bool, out *[]typesystem.Type) {
	key := concept.String()
	if seen[key] {
		return
	}
	seen[key] = true
	*out = append(*out, concept)

	head, ok := typesystem.Head(concept)
	if !ok {
		return
	}
	def, ok := s.Concept(head)
	if !ok {
		return
	}
	for _, req := range def.instantiate(typesystem.ArgsOf(concept)) {
		s.closure(req, seen, out)
	}
}

// Implies reports whether providing concept a transitively provides concept
// b (a strict implication: a itself does not imply a). Used for redundancy
// elimination over a required-concept set.
func (s *Scope) Implies(a, b typesystem.Type) bool {
	for i, c := range s.ProvidedConcepts(a) {
		if i == 0 {
			continue
		}
		if typesystem.Equal(c, b) {
			return true
		}
	}
	return false
}

// Implements reports whether an entry provides the given concept through its
// direct interface: its declared provided concepts and their immediate
// requirements, matched by unification with the entry's parameters renamed
// apart. Deliberately not transitive-closure-complete: deep superconcepts do
// not count toward coverage comparisons.
func (s *Scope) Implements(e Entry, concept typesystem.Type, ordinal int) bool {
	rigid := s.RigidVars()
	for _, p := range e.Provides {
		direct := []typesystem.Type{p}
		if head, ok := typesystem.Head(p); ok {
			if def, ok := s.Concept(head); ok {
				direct = append(direct, def.instantiate(typesystem.ArgsOf(p))...)
			}
		}
		for _, d := range direct {
			renamed := typesystem.RenameTypeVars(d, ordinal)
			if _, err := typesystem.Unify(renamed, concept, rigid); err == nil {
				return true
			}
		}
	}
	return false
}

// ImplementsAll reports whether e implements every concept in the list.
func (s *Scope) ImplementsAll(e Entry, concepts []typesystem.Type, ordinal int) bool {
	for _, c := range concepts {
		if !s.Implements(e, c, ordinal) {
			return false
		}
	}
	return true
}

func (s *Scope) String() string {
	entries, rigid := s.ScopeInstances()
	return fmt.Sprintf("scope{%d candidates, %d rigid}", len(entries), len(rigid))
}
