package shader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessInjectsVersionAndDefines(t *testing.T) {
	pp := NewPreProcessor(WithVersion("330 core"), WithDefine("COUNT", "4"), WithDefine("COUNT", "8"), WithDefine("SOFT", "1"))

	out, err := pp.Process("void main() {}")

	require.NoError(t, err)
	assert.Equal(t, "#version 330 core\n#define COUNT 8\n#define SOFT 1\nvoid main() {}", out)
}

func TestProcessHoistsExistingVersion(t *testing.T) {
	pp := NewPreProcessor(WithVersion("330 core"), WithDefine("A", "1"))

	out, err := pp.Process("\n#version 300 es\nvoid main() {}")

	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	assert.Equal(t, []string{"#version 300 es", "#define A 1", "void main() {}"}, lines)
}

func TestProcessIncludesSnippets(t *testing.T) {
	pp := NewPreProcessor(WithSnippet("tint", "vec3 tint() { return vec3(1.0); }"))

	out, err := pp.Process("//@oxy:include fullscreen\n  // @oxy:include tint\nvoid main() {}")

	require.NoError(t, err)
	assert.Contains(t, out, "vec2 oxy_fullscreen_position(int id)")
	assert.Contains(t, out, "vec3 tint()")
	assert.NotContains(t, out, "@oxy")
	require.Len(t, pp.Declarations(), 2)
	assert.Equal(t, AnnotationArg("tint"), pp.Declarations()[1].Args[0])
	assert.Equal(t, 2, pp.Declarations()[1].Line)
}

func TestProcessDefineAnnotation(t *testing.T) {
	pp := NewPreProcessor()

	out, err := pp.Process("//@oxy:define MAX_LIGHTS 8\n//@oxy:define SHADOWS")

	require.NoError(t, err)
	assert.Equal(t, "#define MAX_LIGHTS 8\n#define SHADOWS 1", out)
}

func TestProcessRejectsMalformedAnnotations(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{name: "empty", source: "//@oxy:", want: "line 1: empty"},
		{name: "unknown type", source: "void f();\n//@oxy:group 0 0", want: "line 2: unknown @oxy annotation type"},
		{name: "include arity", source: "//@oxy:include", want: "exactly one argument"},
		{name: "unknown snippet", source: "//@oxy:include camera", want: `unknown snippet "camera"`},
		{name: "bad macro", source: "//@oxy:define 9LIVES", want: "invalid macro name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPreProcessor().Process(tt.source)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestProcessIgnoresPrefixOutsideComments(t *testing.T) {
	pp := NewPreProcessor()

	out, err := pp.Process(`const char* s = "@oxy:include x";`)

	require.NoError(t, err)
	assert.Equal(t, `const char* s = "@oxy:include x";`, out)
}
