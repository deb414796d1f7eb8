// pre_processor.go implements the Oxy GLSL shader pre-processor. It prepends the
// #version directive the context expects, injects option-level #defines right after
// it, and replaces @oxy: annotations with registered snippet source or #define lines.
//
// The pre-processor maintains one registry:
//   - snippetRegistry: maps AnnotationArg keys to embedded GLSL snippet sources. Used by
//     @oxy:include. Applications extend it with WithSnippet.
package shader

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"
)

//go:embed assets/fullscreen.glsl
var fullscreenSource string

//go:embed assets/srgb.glsl
var srgbSource string

//go:embed assets/hash.glsl
var hashSource string

//go:embed assets/precision.glsl
var precisionSource string

//go:embed assets/lights.glsl
var lightsSource string

// define is one #define emitted ahead of the shader body.
type define struct {
	name  string
	value string
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// version is the #version suffix used when the source carries none, e.g. "300 es".
	version string

	// defines are emitted right after the #version line, in insertion order.
	defines []define

	// snippetRegistry maps snippet keys to the GLSL injected by @oxy:include.
	snippetRegistry map[AnnotationArg]string

	// declarations accumulates the annotations found during a Process call.
	declarations []Annotation
}

// PreProcessor turns annotated GLSL into source the driver accepts.
type PreProcessor interface {
	// Process pre-processes one shader source. A #version line is prepended when
	// missing, option-level defines follow it, @oxy:include annotations are replaced
	// with snippet source and @oxy:define annotations with #define lines.
	//
	// Parameters:
	//   - source: the raw GLSL shader source code
	//
	// Returns:
	//   - string: the processed GLSL source
	//   - error: an error if any annotation is malformed or names an unknown snippet
	Process(source string) (string, error)

	// Declarations returns the annotations collected during the most recent call to
	// Process, in source order.
	//
	// Returns:
	//   - []Annotation: the annotations collected during the last Process call
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// PreProcessorOption is a functional option used to configure a PreProcessor during construction.
type PreProcessorOption func(*preProcessor)

// WithVersion sets the #version suffix prepended to sources that carry none.
//
// Parameters:
//   - version: the version suffix, e.g. "330 core" or "300 es"; empty disables injection
//
// Returns:
//   - PreProcessorOption: a function that sets the version
func WithVersion(version string) PreProcessorOption {
	return func(p *preProcessor) {
		p.version = version
	}
}

// WithDefine adds a #define emitted right after the #version line.
// Redefining a name replaces its value.
//
// Parameters:
//   - name: the macro name
//   - value: the macro value
//
// Returns:
//   - PreProcessorOption: a function that adds the define
func WithDefine(name, value string) PreProcessorOption {
	return func(p *preProcessor) {
		for i := range p.defines {
			if p.defines[i].name == name {
				p.defines[i].value = value
				return
			}
		}
		p.defines = append(p.defines, define{name: name, value: value})
	}
}

// WithSnippet registers an additional snippet for @oxy:include.
//
// Parameters:
//   - key: the snippet key used in the annotation
//   - source: the GLSL injected in place of the annotation
//
// Returns:
//   - PreProcessorOption: a function that registers the snippet
func WithSnippet(key string, source string) PreProcessorOption {
	return func(p *preProcessor) {
		p.snippetRegistry[AnnotationArg(key)] = source
	}
}

// NewPreProcessor creates a PreProcessor with the built-in snippets registered.
//
// Parameters:
//   - opts: optional configuration
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor(opts ...PreProcessorOption) PreProcessor {
	p := &preProcessor{
		snippetRegistry: map[AnnotationArg]string{
			AnnotationArgFullscreen: fullscreenSource,
			AnnotationArgSRGB:       srgbSource,
			AnnotationArgHash:       hashSource,
			AnnotationArgPrecision:  precisionSource,
			AnnotationArgLights:     lightsSource,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines)+len(p.defines)+1)

	// the #version directive must be the first statement, so an existing one is hoisted
	// above the injected defines and a missing one is synthesized.
	start := 0
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "#version") {
			out = append(out, trimmed)
			start = i + 1
		}
		break
	}
	if len(out) == 0 && p.version != "" {
		out = append(out, "#version "+p.version)
	}
	for _, d := range p.defines {
		out = append(out, fmt.Sprintf("#define %s %s", d.name, d.value))
	}

	keys := make([]AnnotationArg, 0, len(p.snippetRegistry))
	for k := range p.snippetRegistry {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for i := start; i < len(lines); i++ {
		line := lines[i]
		a, err := parseAnnotation(line, i+1, keys)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case AnnotationTypeInclude:
			out = append(out, strings.TrimRight(p.snippetRegistry[a.Args[0]], "\n"))
		case AnnotationTypeDefine:
			out = append(out, fmt.Sprintf("#define %s %s", a.Args[0], a.Args[1]))
		default:
			return "", fmt.Errorf("line %d: unknown annotation type %q", i+1, a.Type)
		}
		p.declarations = append(p.declarations, *a)
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
