package typesystem

import (
	"fmt"

	"github.com/weylang/weyl/internal/config"
)

// RenameTypeVars renames every free variable in t by appending the
// freshening separator and an ordinal. Used to rename an instance's
// parameters apart from the call site's variables before matching.
func RenameTypeVars(t Type, ordinal int) Type {
	if t == nil {
		return nil
	}
	s := Subst{m: map[string]Type{}}
	for _, v := range t.FreeTypeVariables() {
		s.m[v.Name] = TVar{Name: FreshName(v.Name, ordinal)}
	}
	return t.Apply(s)
}

// FreshName derives the renamed-apart form of a variable name.
func FreshName(name string, ordinal int) string {
	return fmt.Sprintf("%s%s%d", name, config.FreshVarSeparator, ordinal)
}
