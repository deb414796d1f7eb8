package camera

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/gl"
	"github.com/Carmen-Shannon/oxy-gl/engine/internal/gltest"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/attributes"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/command"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-4

func clip(m [16]float32, x, y, z float32) (float32, float32, float32) {
	cx, cy, cz, cw := common.Transform4(m[:], x, y, z)
	return cx / cw, cy / cw, cz / cw
}

func TestOrbitPositionFromSphericalCoordinates(t *testing.T) {
	o := NewOrbit(WithTarget(1, 0, 0), WithRadius(2), WithAngles(math32.Pi/2, 0))

	x, y, z := o.Position()

	assert.InDelta(t, 3, x, eps)
	assert.InDelta(t, 0, y, eps)
	assert.InDelta(t, 0, z, eps)
}

func TestOrbitClampsRadiusAndElevation(t *testing.T) {
	o := NewOrbit(WithRadiusBounds(1, 10), WithSpeeds(0.5, 0.01, 1))

	o.Zoom(100)
	assert.InDelta(t, 1, o.Radius(), eps)
	o.Zoom(-100)
	assert.InDelta(t, 10, o.Radius(), eps)

	o.Rotate(0, 100)
	_, elevation := o.Angles()
	assert.Less(t, elevation, math32.Pi/2)
	_, y, _ := o.Position()
	assert.Less(t, y, float32(10))
}

func TestOrbitDragAndSetTarget(t *testing.T) {
	o := NewOrbit(WithAngles(0, 0), WithSpeeds(0.03, 0.01, 1))

	o.Drag(-10, 0)
	azimuth, _ := o.Angles()
	assert.InDelta(t, 0.1, azimuth, eps)

	x0, y0, z0 := o.Position()
	o.SetTarget(0, 2, 0)
	x1, y1, z1 := o.Position()
	assert.InDelta(t, x0, x1, eps)
	assert.InDelta(t, y0+2, y1, eps)
	assert.InDelta(t, z0, z1, eps)
}

func TestTargetProjectsToClipCenter(t *testing.T) {
	o := NewOrbit(WithTarget(0, 1, 0), WithRadius(4), WithAngles(0.7, 0.4))
	c := NewCamera(o, WithAspect(16.0/9.0))

	x, y, z := clip(c.ViewProjectionMatrix(), 0, 1, 0)

	assert.InDelta(t, 0, x, eps)
	assert.InDelta(t, 0, y, eps)
	assert.Greater(t, z, float32(-1))
	assert.Less(t, z, float32(1))
}

func TestNearPlaneMapsToMinusOne(t *testing.T) {
	o := NewOrbit(WithRadius(5), WithAngles(0, 0))
	c := NewCamera(o, WithClipPlanes(0.5, 50))

	_, _, z := clip(c.ViewProjectionMatrix(), 0, 0, 4.5)

	assert.InDelta(t, -1, z, eps)
}

func TestOrthographicShowsHeightUnits(t *testing.T) {
	o := NewOrbit(WithRadius(5), WithAngles(0, 0))
	c := NewCamera(o, WithOrthographic(4))
	c.SetViewport(200, 100)

	x, y, _ := clip(c.ViewProjectionMatrix(), 4, 2, 0)

	assert.InDelta(t, 1, x, eps)
	assert.InDelta(t, 1, y, eps)
	assert.InDelta(t, 2, c.Aspect(), eps)
	c.SetViewport(10, 0)
	assert.InDelta(t, 2, c.Aspect(), eps, "a zero height is ignored")
}

func TestViewProjectionUniformFollowsUpdates(t *testing.T) {
	ctx := gltest.New()
	dev := renderer.NewDevice(ctx, renderer.WithDrawableSize(func() (int, int) { return 64, 64 }))
	o := NewOrbit()
	c := NewCamera(o)
	cmd, err := command.New(dev.State(), `uniform mat4 u_view_proj;
void main() {
    gl_Position = u_view_proj * vec4(0.0, 0.0, 0.0, 1.0);
}`, `precision highp float;
out vec4 o_color;
void main() {
    o_color = vec4(1.0);
}`, command.WithUniform("u_view_proj", ViewProjection[struct{}](c)))
	require.NoError(t, err)
	point := attributes.Empty(gl.Points, 1)
	loc := ctx.UniformLocation(cmd.Program(), "u_view_proj")

	draw := func() []float32 {
		require.NoError(t, dev.Target(func(tg *renderer.Target) error {
			return renderer.Draw(tg, cmd, point, struct{}{})
		}))
		v, ok := ctx.UniformValue(cmd.Program(), loc)
		require.True(t, ok)
		return v.([]float32)
	}

	first := c.ViewProjectionMatrix()
	assert.Equal(t, first[:], draw())

	o.Rotate(5, 0)
	c.Update()
	second := c.ViewProjectionMatrix()
	assert.NotEqual(t, first, second)
	assert.Equal(t, second[:], draw())
}
