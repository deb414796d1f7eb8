package command

import (
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/gl"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/state"
)

// Option is a functional option used to configure a Command during construction.
//
// Options that do not mention the props type, such as WithDepth, need it spelled
// out: command.WithDepth[MyProps](command.DepthFunc(gl.LEqual)).
type Option[P any] func(*Command[P])

// WithUniform declares a uniform by name. Declaration order is preserved.
//
// Parameters:
//   - name: the uniform name in the program; "foo" and "foo[0]" are equivalent
//   - u: a Constant or Dynamic uniform declaration
//
// Returns:
//   - Option[P]: a function that adds the uniform declaration
func WithUniform[P any](name string, u Uniform[P]) Option[P] {
	return func(c *Command[P]) {
		c.uniforms = append(c.uniforms, uniformDecl[P]{name: name, uniform: u})
	}
}

// WithTexture declares a sampler uniform. Textures are assigned texture units in
// declaration order, starting at 0.
//
// Parameters:
//   - name: the sampler uniform name in the program
//   - fn: returns the texture to bind for a draw's props and batch index
//
// Returns:
//   - Option[P]: a function that adds the texture declaration
func WithTexture[P any](name string, fn func(props P, batchIndex int) Texture) Option[P] {
	if fn == nil {
		panic(fmt.Sprintf("command: texture %q requires a non-nil accessor", name))
	}
	return func(c *Command[P]) {
		c.textures = append(c.textures, textureDecl[P]{name: name, fn: fn, location: gl.NoUniform})
	}
}

// WithDepth enables the depth test. Without options it uses func LESS, writes
// enabled and range [0, 1].
//
// Parameters:
//   - opts: overrides applied on top of the defaults
//
// Returns:
//   - Option[P]: a function that sets the depth descriptor
func WithDepth[P any](opts ...DepthOption) Option[P] {
	d := state.DefaultDepth()
	for _, opt := range opts {
		opt(&d)
	}
	return func(c *Command[P]) {
		c.depth = &d
	}
}

// WithStencil enables the stencil test. Without options both faces use func
// ALWAYS, reference 0, masks 0xFF and KEEP for every outcome.
//
// Parameters:
//   - opts: overrides applied on top of the defaults
//
// Returns:
//   - Option[P]: a function that sets the stencil descriptor
func WithStencil[P any](opts ...StencilOption) Option[P] {
	s := state.DefaultStencil()
	for _, opt := range opts {
		opt(&s)
	}
	return func(c *Command[P]) {
		c.stencil = &s
	}
}

// WithBlend enables blending. Without options it uses ONE/ZERO with the ADD equation.
//
// Parameters:
//   - opts: overrides applied on top of the defaults
//
// Returns:
//   - Option[P]: a function that sets the blend descriptor
func WithBlend[P any](opts ...BlendOption) Option[P] {
	b := state.DefaultBlend()
	for _, opt := range opts {
		opt(&b)
	}
	return func(c *Command[P]) {
		c.blend = &b
	}
}

// WithDefines adds #define lines to both shader stages, emitted in name order
// right after the #version directive.
//
// Parameters:
//   - defines: macro names mapped to their values
//
// Returns:
//   - Option[P]: a function that records the defines
func WithDefines[P any](defines map[string]string) Option[P] {
	names := make([]string, 0, len(defines))
	for name := range defines {
		names = append(names, name)
	}
	slices.Sort(names)
	return func(c *Command[P]) {
		for _, name := range names {
			c.defines = append(c.defines, [2]string{name, defines[name]})
		}
	}
}

// DepthOption adjusts a depth descriptor.
type DepthOption func(*state.DepthDescriptor)

// DepthFunc sets the depth comparison function.
func DepthFunc(f gl.CompareFunc) DepthOption {
	return func(d *state.DepthDescriptor) { d.Func = f }
}

// DepthMask sets whether passing fragments write depth.
func DepthMask(write bool) DepthOption {
	return func(d *state.DepthDescriptor) { d.Mask = write }
}

// DepthRange sets the mapping of normalized device depth to window depth.
func DepthRange(near, far float32) DepthOption {
	return func(d *state.DepthDescriptor) {
		d.Near = near
		d.Far = far
	}
}

// StencilOption adjusts a stencil descriptor.
type StencilOption func(*state.StencilDescriptor)

// faces returns the descriptor faces selected by face.
func faces(s *state.StencilDescriptor, face gl.Face) []*state.StencilFace {
	switch face {
	case gl.Front:
		return []*state.StencilFace{&s.Front}
	case gl.Back:
		return []*state.StencilFace{&s.Back}
	case gl.FrontAndBack:
		return []*state.StencilFace{&s.Front, &s.Back}
	default:
		panic(fmt.Sprintf("command: invalid stencil face %#x", uint32(face)))
	}
}

// StencilFunc sets the comparison for both faces.
func StencilFunc(f gl.CompareFunc, ref int32, mask uint32) StencilOption {
	return StencilFuncSeparate(gl.FrontAndBack, f, ref, mask)
}

// StencilFuncSeparate sets the comparison for the selected faces.
func StencilFuncSeparate(face gl.Face, f gl.CompareFunc, ref int32, mask uint32) StencilOption {
	return func(s *state.StencilDescriptor) {
		for _, sf := range faces(s, face) {
			sf.Func = f
			sf.Ref = ref
			sf.ValueMask = mask
		}
	}
}

// StencilOp sets the stencil actions for both faces.
func StencilOp(fail, zfail, zpass gl.StencilOp) StencilOption {
	return StencilOpSeparate(gl.FrontAndBack, fail, zfail, zpass)
}

// StencilOpSeparate sets the stencil actions for the selected faces.
func StencilOpSeparate(face gl.Face, fail, zfail, zpass gl.StencilOp) StencilOption {
	return func(s *state.StencilDescriptor) {
		for _, sf := range faces(s, face) {
			sf.Fail = fail
			sf.ZFail = zfail
			sf.ZPass = zpass
		}
	}
}

// StencilMask sets the write mask for both faces.
func StencilMask(mask uint32) StencilOption {
	return StencilMaskSeparate(gl.FrontAndBack, mask)
}

// StencilMaskSeparate sets the write mask for the selected faces.
func StencilMaskSeparate(face gl.Face, mask uint32) StencilOption {
	return func(s *state.StencilDescriptor) {
		for _, sf := range faces(s, face) {
			sf.WriteMask = mask
		}
	}
}

// BlendOption adjusts a blend descriptor.
type BlendOption func(*state.BlendDescriptor)

// BlendFunc sets the same source and destination factors for color and alpha.
func BlendFunc(src, dst gl.BlendFactor) BlendOption {
	return BlendFuncSeparate(src, dst, src, dst)
}

// BlendFuncSeparate sets the color and alpha factors independently.
func BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha gl.BlendFactor) BlendOption {
	return func(b *state.BlendDescriptor) {
		b.SrcRGB = srcRGB
		b.DstRGB = dstRGB
		b.SrcAlpha = srcAlpha
		b.DstAlpha = dstAlpha
	}
}

// BlendEquation sets the same equation for color and alpha.
func BlendEquation(eq gl.BlendEquation) BlendOption {
	return BlendEquationSeparate(eq, eq)
}

// BlendEquationSeparate sets the color and alpha equations independently.
func BlendEquationSeparate(rgb, alpha gl.BlendEquation) BlendOption {
	return func(b *state.BlendDescriptor) {
		b.EquationRGB = rgb
		b.EquationAlpha = alpha
	}
}

// BlendColor sets the constant color used by the constant blend factors.
func BlendColor(c common.Color) BlendOption {
	return func(b *state.BlendDescriptor) {
		b.Color = c.Array()
	}
}
