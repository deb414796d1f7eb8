// Package shader compiles and links GLSL programs against a gl.Context and
// reports failures with line-numbered source next to the driver diagnostics.
package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/gl"
)

// CompileError is returned when a shader stage fails to compile.
type CompileError struct {
	// Stage is the stage that failed.
	Stage gl.ShaderStage
	// Source is the pre-processed source handed to the driver.
	Source string
	// Log is the driver's info log.
	Log string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile %s shader:\n%s\n%s", e.Stage, strings.TrimSpace(e.Log), NumberLines(e.Source))
}

// LinkError is returned when a program fails to link.
type LinkError struct {
	VertexSource   string
	FragmentSource string
	// Log is the driver's program info log.
	Log string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("failed to link program:\n%s\nvertex shader:\n%s\nfragment shader:\n%s",
		strings.TrimSpace(e.Log), NumberLines(e.VertexSource), NumberLines(e.FragmentSource))
}

// NumberLines prefixes every line of src with its 1-based line number, the
// numbering drivers use in their diagnostics.
//
// Parameters:
//   - src: the source text
//
// Returns:
//   - string: the numbered source
func NumberLines(src string) string {
	lines := strings.Split(src, "\n")
	width := len(fmt.Sprint(len(lines)))
	var b strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&b, "%*d: %s\n", width, i+1, line)
	}
	return b.String()
}

// Compile creates and compiles one shader stage.
// The shader object is deleted again if compilation fails.
//
// Parameters:
//   - ctx: the graphics context
//   - stage: the shader stage
//   - source: the GLSL source, already pre-processed
//
// Returns:
//   - gl.Shader: the compiled shader handle
//   - error: a *CompileError carrying the source and the driver log
func Compile(ctx gl.Context, stage gl.ShaderStage, source string) (gl.Shader, error) {
	s := ctx.CreateShader(stage)
	ctx.ShaderSource(s, source)
	ctx.CompileShader(s)
	if !ctx.ShaderCompiled(s) {
		log := ctx.ShaderInfoLog(s)
		ctx.DeleteShader(s)
		return 0, &CompileError{Stage: stage, Source: source, Log: log}
	}
	return s, nil
}

// Link attaches both stages to a new program and links it.
// The program object is deleted again if linking fails.
//
// Parameters:
//   - ctx: the graphics context
//   - vs: the compiled vertex shader
//   - fs: the compiled fragment shader
//
// Returns:
//   - gl.Program: the linked program handle
//   - error: a *LinkError carrying the driver log (sources are filled in by Build)
func Link(ctx gl.Context, vs, fs gl.Shader) (gl.Program, error) {
	p := ctx.CreateProgram()
	ctx.AttachShader(p, vs)
	ctx.AttachShader(p, fs)
	ctx.LinkProgram(p)
	if !ctx.ProgramLinked(p) {
		log := ctx.ProgramInfoLog(p)
		ctx.DeleteProgram(p)
		return 0, &LinkError{Log: log}
	}
	return p, nil
}

// Build pre-processes, compiles and links a vertex/fragment pair into a program.
// The intermediate shader objects are always released.
//
// Parameters:
//   - ctx: the graphics context
//   - pp: the pre-processor applied to both sources, nil to use the sources verbatim
//   - vertexSource: the vertex shader GLSL
//   - fragmentSource: the fragment shader GLSL
//
// Returns:
//   - gl.Program: the linked program handle
//   - error: a pre-processing error, *CompileError or *LinkError
func Build(ctx gl.Context, pp PreProcessor, vertexSource, fragmentSource string) (gl.Program, error) {
	if pp != nil {
		var err error
		if vertexSource, err = pp.Process(vertexSource); err != nil {
			return 0, fmt.Errorf("failed to pre-process vertex shader: %w", err)
		}
		if fragmentSource, err = pp.Process(fragmentSource); err != nil {
			return 0, fmt.Errorf("failed to pre-process fragment shader: %w", err)
		}
	}

	vs, err := Compile(ctx, gl.VertexShader, vertexSource)
	if err != nil {
		return 0, err
	}
	defer ctx.DeleteShader(vs)

	fs, err := Compile(ctx, gl.FragmentShader, fragmentSource)
	if err != nil {
		return 0, err
	}
	defer ctx.DeleteShader(fs)

	p, err := Link(ctx, vs, fs)
	if err != nil {
		linkErr := err.(*LinkError)
		linkErr.VertexSource = vertexSource
		linkErr.FragmentSource = fragmentSource
		return 0, linkErr
	}
	common.Logger().Debug("program linked", "program", p)
	return p, nil
}
