package gltest

import (
	"regexp"
	"strconv"

	"github.com/Carmen-Shannon/oxy-gl/engine/gl"
)

var glslTypes = map[string]gl.UniformType{
	"float":           gl.TypeFloat,
	"vec2":            gl.TypeVec2,
	"vec3":            gl.TypeVec3,
	"vec4":            gl.TypeVec4,
	"int":             gl.TypeInt,
	"ivec2":           gl.TypeIVec2,
	"ivec3":           gl.TypeIVec3,
	"ivec4":           gl.TypeIVec4,
	"uint":            gl.TypeUint,
	"uvec2":           gl.TypeUVec2,
	"uvec3":           gl.TypeUVec3,
	"uvec4":           gl.TypeUVec4,
	"bool":            gl.TypeBool,
	"bvec2":           gl.TypeBVec2,
	"bvec3":           gl.TypeBVec3,
	"bvec4":           gl.TypeBVec4,
	"mat2":            gl.TypeMat2,
	"mat3":            gl.TypeMat3,
	"mat4":            gl.TypeMat4,
	"sampler2D":       gl.TypeSampler2D,
	"sampler3D":       gl.TypeSampler3D,
	"samplerCube":     gl.TypeSamplerCube,
	"sampler2DShadow": gl.TypeSampler2DShadow,
	"sampler2DArray":  gl.TypeSampler2DArray,
	"isampler2D":      gl.TypeISampler2D,
	"usampler2D":      gl.TypeUSampler2D,
}

var (
	uniformDecl   = regexp.MustCompile(`(?m)^\s*uniform\s+(?:(?:lowp|mediump|highp)\s+)?(\w+)\s+(\w+)\s*(?:\[\s*(\d+)\s*\])?\s*;`)
	attributeDecl = regexp.MustCompile(`(?m)^\s*(?:layout\s*\(\s*location\s*=\s*(\d+)\s*\)\s*)?in\s+(?:(?:lowp|mediump|highp)\s+)?(\w+)\s+(\w+)\s*;`)
)

// parseUniforms lists the top-level uniform declarations of a source, in order.
// Block and struct uniforms are not recognised.
func parseUniforms(source string) []gl.ActiveInfo {
	var out []gl.ActiveInfo
	for _, m := range uniformDecl.FindAllStringSubmatch(source, -1) {
		typ, ok := glslTypes[m[1]]
		if !ok {
			continue
		}
		size := 1
		if m[3] != "" {
			size, _ = strconv.Atoi(m[3])
		}
		out = append(out, gl.ActiveInfo{Name: m[2], Size: size, Type: typ})
	}
	return out
}

// parseAttributes maps vertex inputs to locations. Explicit layout locations
// win; the rest are numbered after the highest location seen so far.
func parseAttributes(source string) map[string]int {
	out := map[string]int{}
	next := 0
	for _, m := range attributeDecl.FindAllStringSubmatch(source, -1) {
		loc := next
		if m[1] != "" {
			loc, _ = strconv.Atoi(m[1])
		}
		out[m[3]] = loc
		if loc >= next {
			next = loc + 1
		}
	}
	return out
}
