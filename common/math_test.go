package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func identity() []float32 {
	m := make([]float32, 16)
	Identity(m)
	return m
}

func TestLookAtDownNegativeZIsIdentity(t *testing.T) {
	m := make([]float32, 16)

	LookAt(m, 0, 0, 0, 0, 0, -1, 0, 1, 0)

	assert.InDeltaSlice(t, identity(), m, 1e-6)
}

func TestLookAtMovesEyeToOrigin(t *testing.T) {
	m := make([]float32, 16)
	LookAt(m, 3, 4, 5, 0, 0, 0, 0, 1, 0)

	x, y, z, w := Transform4(m, 3, 4, 5)

	assert.InDelta(t, 0, x, 1e-5)
	assert.InDelta(t, 0, y, 1e-5)
	assert.InDelta(t, 0, z, 1e-5)
	assert.InDelta(t, 1, w, 1e-6)
}

func TestMul4AppliesRightOperandFirst(t *testing.T) {
	translate := identity()
	translate[12] = 2
	scale := identity()
	scale[0] = 3
	out := make([]float32, 16)

	Mul4(out, translate, scale)
	x, _, _, _ := Transform4(out, 1, 0, 0)

	assert.InDelta(t, 5, x, 1e-6)
}

func TestOrthoMapsBoundsToUnitCube(t *testing.T) {
	m := make([]float32, 16)
	Ortho(m, 0, 10, 0, 20, 1, 3)

	x, y, z, _ := Transform4(m, 10, 0, -3)

	assert.InDelta(t, 1, x, 1e-6)
	assert.InDelta(t, -1, y, 1e-6)
	assert.InDelta(t, 1, z, 1e-6)
}

func TestSliceToBytes(t *testing.T) {
	assert.Nil(t, SliceToBytes([]uint16{}))
	assert.Equal(t, []byte{1, 0, 2, 1}, SliceToBytes([]uint16{1, 0x0102}))
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 3, 4))
	assert.Equal(t, "", Coalesce[string]())
}
