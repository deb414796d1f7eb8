package camera

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/gl"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/command"
	"github.com/chewxy/math32"
)

// Controller owns the eye and the look-at point. *Orbit is a Controller.
type Controller interface {
	// Position returns the eye position.
	Position() (x, y, z float32)

	// Target returns the look-at point.
	Target() (x, y, z float32)
}

// Camera holds projection settings and computes view and projection matrices
// from its Controller on Update. Matrices are column-major, ready for a mat4 uniform.
type Camera interface {
	// Fov returns the vertical field of view in radians.
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	Aspect() float32

	// SetAspect sets the aspect ratio and recomputes the matrices.
	//
	// Parameters:
	//   - aspect: width / height
	SetAspect(aspect float32)

	// SetViewport sets the aspect ratio from a target size in pixels.
	// A zero height is ignored.
	//
	// Parameters:
	//   - width: target width in pixels
	//   - height: target height in pixels
	SetViewport(width, height int)

	// Controller returns the controller the view is derived from.
	Controller() Controller

	// Update recomputes the matrices, typically once per frame after the controller moved.
	Update()

	// ViewMatrix returns the world-to-eye matrix.
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the eye-to-clip matrix.
	ProjectionMatrix() [16]float32

	// ViewProjectionMatrix returns ProjectionMatrix × ViewMatrix.
	ViewProjectionMatrix() [16]float32
}

type cameraImpl struct {
	up [3]float32

	fov    float32
	aspect float32
	near   float32
	far    float32

	// orthoHeight selects an orthographic projection of that view height when non-zero.
	orthoHeight float32

	viewMatrix           [16]float32
	projectionMatrix     [16]float32
	viewProjectionMatrix [16]float32

	controller Controller
}

var _ Camera = &cameraImpl{}

// NewCamera creates a camera driven by controller.
//
// Parameters:
//   - controller: supplies eye and target, e.g. NewOrbit()
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera with up-to-date matrices
func NewCamera(controller Controller, options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		up:         [3]float32{0, 1, 0},
		fov:        45 * math32.Pi / 180,
		aspect:     1,
		near:       0.1,
		far:        100,
		controller: controller,
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Fov() float32 {
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) SetViewport(width, height int) {
	if height == 0 {
		return
	}
	c.SetAspect(float32(width) / float32(height))
}

func (c *cameraImpl) Controller() Controller {
	return c.controller
}

func (c *cameraImpl) Update() {
	c.updateMatrices()
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() [16]float32 {
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() [16]float32 {
	return c.viewProjectionMatrix
}

// updateMatrices recalculates the view, projection and view-projection matrices.
func (c *cameraImpl) updateMatrices() {
	px, py, pz := c.controller.Position()
	tx, ty, tz := c.controller.Target()

	common.LookAt(c.viewMatrix[:],
		px, py, pz,
		tx, ty, tz,
		c.up[0], c.up[1], c.up[2],
	)

	if c.orthoHeight > 0 {
		h := c.orthoHeight / 2
		common.Ortho(c.projectionMatrix[:], -h*c.aspect, h*c.aspect, -h, h, c.near, c.far)
	} else {
		common.Perspective(c.projectionMatrix[:], c.fov, c.aspect, c.near, c.far)
	}

	common.Mul4(c.viewProjectionMatrix[:], c.projectionMatrix[:], c.viewMatrix[:])
}

// ViewProjection returns a mat4 uniform reading the camera's current
// view-projection matrix on every draw.
//
// Parameters:
//   - c: the camera
//
// Returns:
//   - command.Uniform[P]: a dynamic uniform for command.WithUniform
func ViewProjection[P any](c Camera) command.Uniform[P] {
	return command.Dynamic(gl.TypeMat4, func(P, int) command.Value {
		m := c.ViewProjectionMatrix()
		return command.Floats(m[:]...)
	})
}
