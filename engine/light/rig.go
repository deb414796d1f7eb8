package light

import (
	"errors"
	"slices"

	"github.com/Carmen-Shannon/oxy-gl/engine/gl"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/command"
)

// MaxLights is the number of lights the lights snippet shades per draw. It matches
// the array sizes declared in the snippet.
const MaxLights = 8

// ErrTooManyLights is returned by Rig.Add when the rig already holds MaxLights lights.
var ErrTooManyLights = errors.New("light: rig is full")

// Rig is the set of lights and the ambient term a lit Command shades with.
// Shaders pull it in with "//@oxy:include lights" and call
// oxy_lighting(worldPosition, worldNormal); Uniforms declares the matching uniforms.
//
// A Rig is not safe for concurrent use; mutate it from the render thread.
type Rig struct {
	ambient [3]float32
	lights  []Light
}

// NewRig creates a rig with the given ambient color and lights.
//
// Parameters:
//   - ambient: the ambient RGB added to every fragment
//   - lights: the initial lights
//
// Returns:
//   - *Rig: the rig
//   - error: ErrTooManyLights if more than MaxLights lights are given
func NewRig(ambient [3]float32, lights ...Light) (*Rig, error) {
	r := &Rig{ambient: ambient}
	for _, l := range lights {
		if err := r.Add(l); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add appends a light. Adding a light twice is a no-op.
func (r *Rig) Add(l Light) error {
	if slices.Contains(r.lights, l) {
		return nil
	}
	if len(r.lights) >= MaxLights {
		return ErrTooManyLights
	}
	r.lights = append(r.lights, l)
	return nil
}

// Remove drops a light and reports whether it was present.
func (r *Rig) Remove(l Light) bool {
	i := slices.Index(r.lights, l)
	if i < 0 {
		return false
	}
	r.lights = slices.Delete(r.lights, i, i+1)
	return true
}

// Lights returns the lights in the order they were added.
func (r *Rig) Lights() []Light {
	return slices.Clone(r.lights)
}

// Ambient returns the ambient color.
func (r *Rig) Ambient() [3]float32 {
	return r.ambient
}

// SetAmbient sets the ambient color.
func (r *Rig) SetAmbient(red, green, blue float32) {
	r.ambient = [3]float32{red, green, blue}
}

// packed is the uniform layout of the enabled lights.
type packed struct {
	count    int32
	position []float32
	color    []float32
}

// pack lays the enabled lights out as the snippet reads them. Arrays are always
// MaxLights long; slots past count are zero.
func (r *Rig) pack() packed {
	p := packed{
		position: make([]float32, 4*MaxLights),
		color:    make([]float32, 4*MaxLights),
	}
	for _, l := range r.lights {
		if !l.Enabled() {
			continue
		}
		i := 4 * p.count
		pos, w := l.Position(), float32(1)
		if l.Type() == LightTypeDirectional {
			d := l.Direction()
			pos, w = [3]float32{-d[0], -d[1], -d[2]}, 0
		}
		copy(p.position[i:], pos[:])
		p.position[i+3] = w

		c, k := l.Color(), l.Intensity()
		p.color[i], p.color[i+1], p.color[i+2] = c[0]*k, c[1]*k, c[2]*k
		p.color[i+3] = l.Range()
		p.count++
	}
	return p
}

// Uniforms declares the uniforms of the lights snippet on a Command. They are
// dynamic: the rig is read on every draw.
//
// Parameters:
//   - r: the rig to shade with
//
// Returns:
//   - []command.Option[P]: options to pass to command.New
func Uniforms[P any](r *Rig) []command.Option[P] {
	return []command.Option[P]{
		command.WithUniform("u_light_count", command.Dynamic(gl.TypeInt, func(P, int) command.Value {
			return command.Ints(r.pack().count)
		})),
		command.WithUniform("u_ambient", command.Dynamic(gl.TypeVec3, func(P, int) command.Value {
			return command.Floats(r.ambient[:]...)
		})),
		command.WithUniform("u_light_position", command.Dynamic(gl.TypeVec4, func(P, int) command.Value {
			return command.Floats(r.pack().position...)
		})),
		command.WithUniform("u_light_color", command.Dynamic(gl.TypeVec4, func(P, int) command.Value {
			return command.Floats(r.pack().color...)
		})),
	}
}
