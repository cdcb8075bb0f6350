// Package scopefile loads a textual (YAML) description of concepts,
// instances, ambient rigid parameters, and witness queries into a symbols
// scope. It is a development and test harness for the engine, not the host
// compiler's persistence format.
package scopefile

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/weylang/weyl/internal/diagnostics"
	"github.com/weylang/weyl/internal/symbols"
	"github.com/weylang/weyl/internal/typesystem"
)

// File is the YAML document shape.
type File struct {
	Concepts  []ConceptDecl  `yaml:"concepts"`
	Instances []InstanceDecl `yaml:"instances"`
	Rigid     []RigidDecl    `yaml:"rigid"`
	Queries   []QueryDecl    `yaml:"queries"`
}

// ConceptDecl declares a concept. Requires lists superconcept
// instantiations over Params.
type ConceptDecl struct {
	Name     string   `yaml:"name"`
	Params   []string `yaml:"params"`
	Requires []string `yaml:"requires"`
	Methods  []string `yaml:"methods"`
}

// InstanceDecl declares a named instance. Where maps each witness parameter
// to the concept it must satisfy.
type InstanceDecl struct {
	Name         string            `yaml:"name"`
	Params       []string          `yaml:"params"`
	Provides     string            `yaml:"provides"`
	Where        map[string]string `yaml:"where"`
	Assoc        []string          `yaml:"assoc"`
	Overlapping  bool              `yaml:"overlapping"`
	Overlappable bool              `yaml:"overlappable"`
}

// RigidDecl declares an ambient type parameter bound by the enclosing
// context and the concepts it is already known to implement.
type RigidDecl struct {
	Name       string   `yaml:"name"`
	Implements []string `yaml:"implements"`
}

// QueryDecl asks for a witness covering the listed concepts.
type QueryDecl struct {
	Name    string   `yaml:"name"`
	Require []string `yaml:"require"`
}

// Query is a loaded witness request: the required concepts plus the free
// variables appearing in them (resolved as associated types).
type Query struct {
	Name    string
	Require []typesystem.Type
	Free    []string
}

// Load reads and builds a scope file from disk.
func Load(path string) (*symbols.Scope, []Query, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading scope file: %w", err)
	}
	return Parse(data)
}

// Parse builds a scope and query list from YAML data.
func Parse(data []byte) (*symbols.Scope, []Query, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, diagnostics.New(diagnostics.ErrL001, "scope file syntax: %v", err)
	}

	scope := symbols.NewScope(nil)

	// Concepts must be declared before they are referenced.
	for _, decl := range file.Concepts {
		def := &symbols.ConceptDef{
			Name:    decl.Name,
			Params:  decl.Params,
			Methods: decl.Methods,
		}
		vars := varSet(decl.Params)
		for _, req := range decl.Requires {
			t, err := parseTypeExpr(req, vars)
			if err != nil {
				return nil, nil, declErr("concept", decl.Name, err)
			}
			def.Requires = append(def.Requires, t)
		}
		if err := scope.RegisterConcept(def); err != nil {
			return nil, nil, err
		}
	}

	for _, decl := range file.Instances {
		def, err := buildInstance(decl)
		if err != nil {
			return nil, nil, err
		}
		if err := scope.RegisterInstance(def); err != nil {
			return nil, nil, err
		}
	}

	for _, decl := range file.Rigid {
		var concepts []typesystem.Type
		for _, c := range decl.Implements {
			t, err := parseTypeExpr(c, map[string]bool{decl.Name: true})
			if err != nil {
				return nil, nil, declErr("rigid parameter", decl.Name, err)
			}
			concepts = append(concepts, t)
		}
		if err := scope.BindRigid(decl.Name, concepts...); err != nil {
			return nil, nil, err
		}
	}

	// Rigid names parse as variables inside query expressions, whatever
	// their spelling.
	rigid := scope.RigidVars()
	rigidVars := make(map[string]bool, len(rigid))
	for _, name := range rigid.Names() {
		rigidVars[name] = true
	}

	var queries []Query
	for i, decl := range file.Queries {
		q := Query{Name: decl.Name}
		if q.Name == "" {
			q.Name = fmt.Sprintf("query-%d", i+1)
		}
		seen := map[string]bool{}
		for _, req := range decl.Require {
			t, err := parseTypeExpr(req, rigidVars)
			if err != nil {
				return nil, nil, declErr("query", q.Name, err)
			}
			q.Require = append(q.Require, t)
			for _, v := range t.FreeTypeVariables() {
				if !rigid.Has(v.Name) && !seen[v.Name] {
					seen[v.Name] = true
					q.Free = append(q.Free, v.Name)
				}
			}
		}
		queries = append(queries, q)
	}

	return scope, queries, nil
}

func buildInstance(decl InstanceDecl) (*symbols.InstanceDef, error) {
	vars := varSet(decl.Params)
	provides, err := parseTypeExpr(decl.Provides, vars)
	if err != nil {
		return nil, declErr("instance", decl.Name, err)
	}

	def := &symbols.InstanceDef{
		Name:         decl.Name,
		Provides:     provides,
		Params:       decl.Params,
		Assoc:        decl.Assoc,
		Overlapping:  decl.Overlapping,
		Overlappable: decl.Overlappable,
	}

	// Deterministic witness order regardless of YAML map iteration.
	whereParams := make([]string, 0, len(decl.Where))
	for p := range decl.Where {
		whereParams = append(whereParams, p)
	}
	sort.Strings(whereParams)
	for _, p := range whereParams {
		req, err := parseTypeExpr(decl.Where[p], vars)
		if err != nil {
			return nil, declErr("instance", decl.Name, err)
		}
		def.Witness = append(def.Witness, symbols.WitnessParam{Name: p, Requires: req})
		if !vars[p] {
			def.Params = append(def.Params, p)
		}
	}
	return def, nil
}

func declErr(kind, name string, err error) error {
	return diagnostics.New(diagnostics.ErrL001, "%s %s: %v", kind, name, err)
}

func varSet(names []string) map[string]bool {
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out
}
