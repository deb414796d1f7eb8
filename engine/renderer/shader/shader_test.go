package shader

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/gl"
	"github.com/Carmen-Shannon/oxy-gl/engine/internal/gltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vertexSource = `#version 300 es
layout(location = 0) in vec2 a_position;
uniform mat4 u_mvp;
void main() {
    gl_Position = u_mvp * vec4(a_position, 0.0, 1.0);
}`

const fragmentSource = `#version 300 es
precision highp float;
uniform vec4 u_color;
out vec4 o_color;
void main() {
    o_color = u_color;
}`

func TestBuildLinksAndReleasesShaders(t *testing.T) {
	ctx := gltest.New()

	p, err := Build(ctx, nil, vertexSource, fragmentSource)

	require.NoError(t, err)
	assert.True(t, ctx.IsProgram(p))
	assert.True(t, ctx.ProgramLinked(p))
	assert.Equal(t, 2, ctx.ActiveUniforms(p))
	assert.Equal(t, 2, ctx.Count("DeleteShader"))
	assert.Zero(t, ctx.Count("DeleteProgram"))
}

func TestBuildReportsCompileErrorWithNumberedSource(t *testing.T) {
	ctx := gltest.New()
	broken := "#version 300 es\nvoid main() {\n#error broken\n}"

	_, err := Build(ctx, nil, vertexSource, broken)

	var compileErr *CompileError
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, gl.FragmentShader, compileErr.Stage)
	assert.Contains(t, compileErr.Log, "0:3")
	assert.Contains(t, err.Error(), "fragment")
	assert.Contains(t, err.Error(), "3: #error broken")
	assert.Zero(t, ctx.Count("CreateProgram"))
	assert.Equal(t, 2, ctx.Count("DeleteShader"), "both the failed and the compiled stage are released")
}

func TestBuildReportsLinkError(t *testing.T) {
	ctx := gltest.New()
	fs := fragmentSource + "\n" + gltest.LinkFailMarker

	_, err := Build(ctx, nil, vertexSource, fs)

	var linkErr *LinkError
	require.True(t, errors.As(err, &linkErr))
	assert.Contains(t, linkErr.Log, "Linking failed")
	assert.Equal(t, vertexSource, linkErr.VertexSource)
	assert.Contains(t, err.Error(), "1: #version 300 es")
	assert.Equal(t, 1, ctx.Count("DeleteProgram"))
}

func TestBuildWrapsPreProcessorErrors(t *testing.T) {
	ctx := gltest.New()

	_, err := Build(ctx, NewPreProcessor(), "//@oxy:include nope\nvoid main() {}", fragmentSource)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "vertex shader")
	assert.Contains(t, err.Error(), `unknown snippet "nope"`)
	assert.Zero(t, ctx.Count("CreateShader"))
}

func TestNumberLines(t *testing.T) {
	src := "a\nb\nc\nd\ne\nf\ng\nh\ni\nj"

	got := NumberLines(src)

	assert.Contains(t, got, " 1: a\n")
	assert.Contains(t, got, "10: j\n")
}
