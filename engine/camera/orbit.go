package camera

import (
	"github.com/chewxy/math32"
)

// Orbit places the eye on a sphere around a target point, in spherical
// coordinates relative to the target: radius, azimuth around +Y and
// elevation above the XZ plane.
type Orbit struct {
	position [3]float32
	target   [3]float32

	radius    float32
	azimuth   float32
	elevation float32

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	orbitSpeed       float32
	mouseSensitivity float32
	zoomSpeed        float32
}

// OrbitOption is a functional option for configuring an Orbit.
type OrbitOption func(o *Orbit)

// NewOrbit creates an orbit controller looking at the origin from 5 units away, 30° up.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - *Orbit: the newly created controller
func NewOrbit(options ...OrbitOption) *Orbit {
	o := &Orbit{
		radius:           5,
		elevation:        math32.Pi / 6,
		minRadius:        0.5,
		maxRadius:        100,
		minElevation:     -math32.Pi/2 + 0.05,
		maxElevation:     math32.Pi/2 - 0.05,
		orbitSpeed:       0.03,
		mouseSensitivity: 0.005,
		zoomSpeed:        0.5,
	}
	for _, option := range options {
		option(o)
	}
	o.clamp()
	o.updatePosition()
	return o
}

// WithRadius sets the starting distance from the target.
func WithRadius(radius float32) OrbitOption {
	return func(o *Orbit) {
		o.radius = radius
	}
}

// WithAngles sets the starting azimuth and elevation in radians.
func WithAngles(azimuth, elevation float32) OrbitOption {
	return func(o *Orbit) {
		o.azimuth = azimuth
		o.elevation = elevation
	}
}

// WithTarget sets the point the controller orbits.
func WithTarget(x, y, z float32) OrbitOption {
	return func(o *Orbit) {
		o.target = [3]float32{x, y, z}
	}
}

// WithRadiusBounds clamps the radius to [minRadius, maxRadius].
func WithRadiusBounds(minRadius, maxRadius float32) OrbitOption {
	return func(o *Orbit) {
		o.minRadius, o.maxRadius = minRadius, maxRadius
	}
}

// WithSpeeds sets the per-step orbit angle, the radians per pixel of mouse
// drag and the distance per scroll unit.
func WithSpeeds(orbit, mouse, zoom float32) OrbitOption {
	return func(o *Orbit) {
		o.orbitSpeed, o.mouseSensitivity, o.zoomSpeed = orbit, mouse, zoom
	}
}

// updatePosition recomputes the eye from spherical coordinates.
func (o *Orbit) updatePosition() {
	sinElev, cosElev := math32.Sincos(o.elevation)
	sinAzim, cosAzim := math32.Sincos(o.azimuth)

	o.position[0] = o.target[0] + o.radius*cosElev*sinAzim
	o.position[1] = o.target[1] + o.radius*sinElev
	o.position[2] = o.target[2] + o.radius*cosElev*cosAzim
}

func (o *Orbit) clamp() {
	o.radius = math32.Min(math32.Max(o.radius, o.minRadius), o.maxRadius)
	o.elevation = math32.Min(math32.Max(o.elevation, o.minElevation), o.maxElevation)
}

// Position returns the eye position.
func (o *Orbit) Position() (x, y, z float32) {
	return o.position[0], o.position[1], o.position[2]
}

// Target returns the look-at point.
func (o *Orbit) Target() (x, y, z float32) {
	return o.target[0], o.target[1], o.target[2]
}

// SetTarget moves the pivot and the eye with it.
func (o *Orbit) SetTarget(x, y, z float32) {
	o.target = [3]float32{x, y, z}
	o.updatePosition()
}

// Radius returns the distance between eye and target.
func (o *Orbit) Radius() float32 {
	return o.radius
}

// Angles returns the azimuth and elevation in radians.
func (o *Orbit) Angles() (azimuth, elevation float32) {
	return o.azimuth, o.elevation
}

// Zoom moves the eye towards the target for a positive delta, scaled by the zoom speed
// and clamped to the radius bounds.
func (o *Orbit) Zoom(delta float32) {
	o.radius -= delta * o.zoomSpeed
	o.clamp()
	o.updatePosition()
}

// Rotate turns the eye by whole orbit steps: dx steps around the target, dy steps up.
func (o *Orbit) Rotate(dx, dy float32) {
	o.azimuth += dx * o.orbitSpeed
	o.elevation += dy * o.orbitSpeed
	o.clamp()
	o.updatePosition()
}

// Drag turns the eye by a mouse movement in pixels.
func (o *Orbit) Drag(dx, dy float32) {
	o.azimuth -= dx * o.mouseSensitivity
	o.elevation += dy * o.mouseSensitivity
	o.clamp()
	o.updatePosition()
}
