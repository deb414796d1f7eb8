package state

import "github.com/Carmen-Shannon/oxy-gl/engine/gl"

// DepthDescriptor is the depth-test configuration of a draw.
// A nil *DepthDescriptor means depth testing is disabled.
type DepthDescriptor struct {
	Func gl.CompareFunc
	Mask bool
	Near float32
	Far  float32
}

// DefaultDepth returns depth func LESS, writes enabled, range [0, 1].
func DefaultDepth() DepthDescriptor {
	return DepthDescriptor{Func: gl.Less, Mask: true, Near: 0, Far: 1}
}

// StencilFace is the stencil configuration of one polygon face.
type StencilFace struct {
	Func      gl.CompareFunc
	Ref       int32
	ValueMask uint32
	WriteMask uint32
	Fail      gl.StencilOp
	ZFail     gl.StencilOp
	ZPass     gl.StencilOp
}

// StencilDescriptor is the stencil-test configuration of a draw.
// A nil *StencilDescriptor means stencil testing is disabled.
type StencilDescriptor struct {
	Front StencilFace
	Back  StencilFace
}

// DefaultStencil returns ALWAYS with reference 0, full masks and KEEP on every
// outcome, the same for both faces.
func DefaultStencil() StencilDescriptor {
	face := StencilFace{
		Func:      gl.Always,
		Ref:       0,
		ValueMask: 0xFF,
		WriteMask: 0xFF,
		Fail:      gl.Keep,
		ZFail:     gl.Keep,
		ZPass:     gl.Keep,
	}
	return StencilDescriptor{Front: face, Back: face}
}

// BlendDescriptor is the blending configuration of a draw.
// A nil *BlendDescriptor means blending is disabled.
type BlendDescriptor struct {
	SrcRGB        gl.BlendFactor
	DstRGB        gl.BlendFactor
	SrcAlpha      gl.BlendFactor
	DstAlpha      gl.BlendFactor
	EquationRGB   gl.BlendEquation
	EquationAlpha gl.BlendEquation
	Color         [4]float32
}

// DefaultBlend returns ONE/ZERO with the ADD equation and a transparent constant color.
func DefaultBlend() BlendDescriptor {
	return BlendDescriptor{
		SrcRGB:        gl.FactorOne,
		DstRGB:        gl.FactorZero,
		SrcAlpha:      gl.FactorOne,
		DstAlpha:      gl.FactorZero,
		EquationRGB:   gl.FuncAdd,
		EquationAlpha: gl.FuncAdd,
	}
}

// equalOptional compares two optional descriptors: both absent, or both present
// and equal field by field.
func equalOptional[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
