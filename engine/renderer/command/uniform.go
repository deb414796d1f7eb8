package command

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/gl"
)

// Value is the data uploaded to one uniform. Arrays and matrices are flattened,
// matrices in column-major order.
type Value struct {
	floats []float32
	ints   []int32
	uints  []uint32
}

// Floats creates a float Value, for float, vecN and matN uniforms.
func Floats(v ...float32) Value {
	return Value{floats: v}
}

// Ints creates a signed integer Value, for int and ivecN uniforms.
func Ints(v ...int32) Value {
	return Value{ints: v}
}

// Uints creates an unsigned integer Value, for uint and uvecN uniforms.
func Uints(v ...uint32) Value {
	return Value{uints: v}
}

// Bool creates a boolean Value, for bool and bvecN uniforms.
func Bool(v ...bool) Value {
	ints := make([]int32, len(v))
	for i, b := range v {
		if b {
			ints[i] = 1
		}
	}
	return Value{ints: ints}
}

// Color creates a vec4 Value from a color.
func Color(c common.Color) Value {
	a := c.Array()
	return Floats(a[:]...)
}

func (v Value) asFloats() []float32 {
	if v.floats != nil {
		return v.floats
	}
	out := make([]float32, 0, len(v.ints)+len(v.uints))
	for _, i := range v.ints {
		out = append(out, float32(i))
	}
	for _, u := range v.uints {
		out = append(out, float32(u))
	}
	return out
}

func (v Value) asInts() []int32 {
	if v.ints != nil {
		return v.ints
	}
	out := make([]int32, 0, len(v.floats)+len(v.uints))
	for _, f := range v.floats {
		out = append(out, int32(f))
	}
	for _, u := range v.uints {
		out = append(out, int32(u))
	}
	return out
}

func (v Value) asUints() []uint32 {
	if v.uints != nil {
		return v.uints
	}
	out := make([]uint32, 0, len(v.floats)+len(v.ints))
	for _, f := range v.floats {
		out = append(out, uint32(f))
	}
	for _, i := range v.ints {
		out = append(out, uint32(i))
	}
	return out
}

// Uniform is the declared value of one uniform: either a constant uploaded once
// when the Command is built, or a function of the draw-time props evaluated on
// every draw.
type Uniform[P any] struct {
	typ      gl.UniformType
	constant Value
	dynamic  func(props P, batchIndex int) Value
}

// Constant declares a uniform whose value never changes. It is uploaded once
// and never evaluated again.
//
// Parameters:
//   - typ: the GLSL type the program declares for the uniform
//   - v: the value
//
// Returns:
//   - Uniform[P]: the constant uniform declaration
func Constant[P any](typ gl.UniformType, v Value) Uniform[P] {
	return Uniform[P]{typ: typ, constant: v}
}

// Dynamic declares a uniform evaluated from the props of every draw.
//
// Parameters:
//   - typ: the GLSL type the program declares for the uniform
//   - fn: computes the value from the draw props and the index of the draw within its batch
//
// Returns:
//   - Uniform[P]: the dynamic uniform declaration
func Dynamic[P any](typ gl.UniformType, fn func(props P, batchIndex int) Value) Uniform[P] {
	if fn == nil {
		panic("command: Dynamic uniform requires a non-nil function")
	}
	return Uniform[P]{typ: typ, dynamic: fn}
}

// Type returns the declared GLSL type.
func (u Uniform[P]) Type() gl.UniformType {
	return u.typ
}

// IsDynamic reports whether the uniform is evaluated per draw.
func (u Uniform[P]) IsDynamic() bool {
	return u.dynamic != nil
}

// upload sends v to location u of the program in use, choosing the entry point from typ.
func upload(ctx gl.Context, u gl.Uniform, typ gl.UniformType, v Value) {
	switch typ {
	case gl.TypeFloat:
		ctx.Uniform1fv(u, v.asFloats())
	case gl.TypeVec2:
		ctx.Uniform2fv(u, v.asFloats())
	case gl.TypeVec3:
		ctx.Uniform3fv(u, v.asFloats())
	case gl.TypeVec4:
		ctx.Uniform4fv(u, v.asFloats())
	case gl.TypeInt, gl.TypeBool:
		ctx.Uniform1iv(u, v.asInts())
	case gl.TypeIVec2, gl.TypeBVec2:
		ctx.Uniform2iv(u, v.asInts())
	case gl.TypeIVec3, gl.TypeBVec3:
		ctx.Uniform3iv(u, v.asInts())
	case gl.TypeIVec4, gl.TypeBVec4:
		ctx.Uniform4iv(u, v.asInts())
	case gl.TypeUint:
		ctx.Uniform1uiv(u, v.asUints())
	case gl.TypeUVec2:
		ctx.Uniform2uiv(u, v.asUints())
	case gl.TypeUVec3:
		ctx.Uniform3uiv(u, v.asUints())
	case gl.TypeUVec4:
		ctx.Uniform4uiv(u, v.asUints())
	case gl.TypeMat2:
		ctx.UniformMatrix2fv(u, v.asFloats())
	case gl.TypeMat3:
		ctx.UniformMatrix3fv(u, v.asFloats())
	case gl.TypeMat4:
		ctx.UniformMatrix4fv(u, v.asFloats())
	case gl.TypeSampler2D, gl.TypeSampler3D, gl.TypeSamplerCube, gl.TypeSampler2DShadow,
		gl.TypeSampler2DArray, gl.TypeISampler2D, gl.TypeUSampler2D:
		ctx.Uniform1iv(u, v.asInts())
	default:
		panic(fmt.Sprintf("command: unsupported uniform type %#x", uint32(typ)))
	}
}
