package command

import (
	"fmt"
	"strings"
)

// DeclarationError reports a mismatch between the uniforms and textures a Command
// declares and the active uniforms of its linked program. It is only produced by
// builds without the release tag: by New and Restore, and by Apply when a
// texture is bound to a sampler of another kind.
type DeclarationError struct {
	// Missing lists declared names the program does not have.
	Missing []string
	// Mismatched lists declared names whose type differs from the program's.
	Mismatched []string
	// Undeclared lists active program uniforms the Command does not declare.
	Undeclared []string
}

func (e *DeclarationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "not active in program: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Mismatched) > 0 {
		parts = append(parts, "type mismatch: "+strings.Join(e.Mismatched, ", "))
	}
	if len(e.Undeclared) > 0 {
		parts = append(parts, "not declared: "+strings.Join(e.Undeclared, ", "))
	}
	return "uniform declarations do not match program: " + strings.Join(parts, "; ")
}

// LocationError reports a name that does not resolve to a location in the program.
type LocationError struct {
	// Kind is "uniform", "texture" or "attribute".
	Kind string
	Name string
}

func (e *LocationError) Error() string {
	return fmt.Sprintf("%s %q has no location in the program", e.Kind, e.Name)
}
