// annotations.go defines the annotation types, argument constants, and parser for the
// Oxy GLSL shader pre-processor. Annotations are single-line GLSL comments prefixed
// with @oxy: that inject shared snippets or compile-time defines into a shader before
// it is handed to the driver.
package shader

import (
	"fmt"
	"slices"
	"strings"
)

// annotationPrefix is the marker that identifies an Oxy annotation within a GLSL comment line.
// Every annotation must appear on a line beginning with "//" followed by this prefix.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a GLSL comment line.
type AnnotationType string

const (
	// AnnotationTypeInclude injects the GLSL source of a registered snippet at the
	// annotation site.
	//
	// Syntax: //@oxy:include <snippet>
	//
	// Example: //@oxy:include fullscreen
	AnnotationTypeInclude AnnotationType = "include"

	// AnnotationTypeDefine emits a #define at the annotation site. A missing value
	// defines the name as 1.
	//
	// Syntax: //@oxy:define <NAME> [value]
	//
	// Example: //@oxy:define MAX_LIGHTS 8
	AnnotationTypeDefine AnnotationType = "define"
)

// Annotation represents a single parsed @oxy: annotation from a GLSL shader source line.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include: [0] = snippet key (e.g. "srgb")
	//   - define:  [0] = macro name, [1] = macro value
	Args []AnnotationArg

	// Line is the 1-based line number in the original source where this annotation
	// was found. Used for error reporting.
	Line int
}

// AnnotationArg is a typed string used as an argument in annotations.
type AnnotationArg string

// Built-in snippet keys accepted by @oxy:include.
const (
	// AnnotationArgFullscreen provides oxy_fullscreen_position/oxy_fullscreen_uv for
	// buffer-less full-screen triangles.
	AnnotationArgFullscreen AnnotationArg = "fullscreen"

	// AnnotationArgSRGB provides linear/sRGB conversion helpers.
	AnnotationArgSRGB AnnotationArg = "srgb"

	// AnnotationArgHash provides a cheap float hash for procedural noise.
	AnnotationArgHash AnnotationArg = "hash"

	// AnnotationArgPrecision declares highp default precision, required by GLSL ES fragment shaders.
	AnnotationArgPrecision AnnotationArg = "precision"

	// AnnotationArgLights declares the light rig uniforms and oxy_lighting(position, normal).
	AnnotationArgLights AnnotationArg = "lights"
)

// parseAnnotation attempts to parse a single line of GLSL source as an @oxy: annotation.
// Returns nil with no error for lines that do not contain the annotation prefix.
//
// Parameters:
//   - line: the raw GLSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//   - snippets: the snippet keys accepted by include
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int, snippets []AnnotationArg) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch args[0] {
	case string(AnnotationTypeInclude):
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy include annotation requires exactly one argument", lineNum)
		}
		if !slices.Contains(snippets, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown snippet %q in @oxy include annotation", lineNum, args[1])
		}
		return &Annotation{
			Type: AnnotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	case string(AnnotationTypeDefine):
		if len(args) < 2 || len(args) > 3 {
			return nil, fmt.Errorf("line %d: @oxy define annotation requires a name and an optional value", lineNum)
		}
		if !isIdentifier(args[1]) {
			return nil, fmt.Errorf("line %d: invalid macro name %q in @oxy define annotation", lineNum, args[1])
		}
		value := "1"
		if len(args) == 3 {
			value = args[2]
		}
		return &Annotation{
			Type: AnnotationTypeDefine,
			Args: []AnnotationArg{AnnotationArg(args[1]), AnnotationArg(value)},
			Line: lineNum,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @oxy annotation type %q", lineNum, args[0])
	}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
