// Package particles is an instanced particle technique. The simulation runs
// on the CPU, split into chunks that a worker pool steps in parallel, and the
// whole population is drawn as instanced quads inside one Batch.
package particles

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/gl"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/attributes"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/command"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/resource"
	"github.com/chewxy/math32"
)

// Pass is the per-draw property set of the particle command.
type Pass struct {
	// Scale multiplies the particle size.
	Scale float32
	// Intensity multiplies the particle alpha.
	Intensity float32
	// Aspect is the target width over height; Draw fills it in.
	Aspect float32
}

// Particle is a snapshot of one particle slot.
type Particle struct {
	X, Y   float32
	VX, VY float32
	Age    float32
	Life   float32
}

// Alive reports whether the slot holds a live particle.
func (p Particle) Alive() bool {
	return p.Age < p.Life
}

// System owns the particle population, its GPU buffers and the command drawing it.
// Update, Burst and Draw must be called from the goroutine owning the GL context.
type System struct {
	capacity  int
	workers   int
	chunk     int
	emitter   [2]float32
	spawnRate float32
	lifetime  [2]float32
	speed     [2]float32
	direction float32
	spread    float32
	gravity   [2]float32
	size      float32
	color     common.Color
	seed      uint64
	passes    []Pass

	rng        *rand.Rand
	pool       worker.DynamicWorkerPool
	spawnAccum float32
	cursor     int
	alive      int

	pos  []float32
	vel  []float32
	age  []float32
	life []float32

	// instances holds x, y and size per particle; colors holds RGBA8.
	instances []float32
	colors    []uint8

	quadBuffer     *resource.VertexBuffer[float32]
	instanceBuffer *resource.VertexBuffer[float32]
	colorBuffer    *resource.VertexBuffer[uint8]
	attrs          *attributes.Attributes
	cmd            *command.Command[Pass]
}

// NewSystem creates a particle system and its GPU resources on dev.
//
// Parameters:
//   - dev: the device the particles are drawn with
//   - options: functional options
//
// Returns:
//   - *System: the particle system, initially empty
//   - error: an error if a buffer, the command or the vertex array could not be created
func NewSystem(dev renderer.Device, options ...Option) (*System, error) {
	s := &System{
		capacity:  4096,
		workers:   4,
		chunk:     512,
		spawnRate: 200,
		lifetime:  [2]float32{1, 2},
		speed:     [2]float32{0.2, 0.6},
		spread:    2 * math32.Pi,
		gravity:   [2]float32{0, -0.3},
		size:      0.02,
		color:     common.RGBA(1, 0.6, 0.2, 1),
		seed:      1,
		passes: []Pass{
			{Scale: 3, Intensity: 0.25},
			{Scale: 1, Intensity: 1},
		},
	}
	for _, opt := range options {
		opt(s)
	}

	s.rng = rand.New(rand.NewPCG(s.seed, s.seed^0x9e3779b97f4a7c15))
	// Queue size of 256 covers the chunk count of the default capacity with headroom.
	s.pool = worker.NewDynamicWorkerPool(s.workers, 256, 1*time.Second)

	s.pos = make([]float32, 2*s.capacity)
	s.vel = make([]float32, 2*s.capacity)
	s.age = make([]float32, s.capacity)
	s.life = make([]float32, s.capacity)
	s.instances = make([]float32, 3*s.capacity)
	s.colors = make([]uint8, 4*s.capacity)

	if err := s.createResources(dev); err != nil {
		s.Delete()
		return nil, err
	}
	common.Logger().Debug("particle system created", "capacity", s.capacity, "workers", s.workers, "chunk", s.chunk)
	return s, nil
}

func (s *System) createResources(dev renderer.Device) error {
	st := dev.State()
	var err error

	corners := []float32{-1, -1, 1, -1, -1, 1, 1, 1}
	if s.quadBuffer, err = resource.NewVertexBuffer(st, corners, 2); err != nil {
		return fmt.Errorf("failed to create particle quad: %w", err)
	}
	if s.instanceBuffer, err = resource.NewVertexBuffer(st, s.instances, 3, resource.WithUsage(gl.StreamDraw)); err != nil {
		return fmt.Errorf("failed to create particle instances: %w", err)
	}
	if s.colorBuffer, err = resource.NewVertexBuffer(st, s.colors, 4, resource.WithUsage(gl.StreamDraw)); err != nil {
		return fmt.Errorf("failed to create particle colors: %w", err)
	}

	s.cmd, err = command.New[Pass](st, vertexSource, fragmentSource,
		command.WithUniform("u_scale", command.Dynamic(gl.TypeFloat, func(p Pass, _ int) command.Value {
			return command.Floats(p.Scale)
		})),
		command.WithUniform("u_aspect", command.Dynamic(gl.TypeFloat, func(p Pass, _ int) command.Value {
			return command.Floats(p.Aspect)
		})),
		command.WithUniform("u_intensity", command.Dynamic(gl.TypeFloat, func(p Pass, _ int) command.Value {
			return command.Floats(p.Intensity)
		})),
		command.WithBlend[Pass](command.BlendFunc(gl.FactorSrcAlpha, gl.FactorOne)),
	)
	if err != nil {
		return fmt.Errorf("failed to create particle command: %w", err)
	}

	instanceLoc, err := s.cmd.AttributeLocation("a_instance")
	if err != nil {
		return err
	}
	colorLoc, err := s.cmd.AttributeLocation("a_color")
	if err != nil {
		return err
	}
	s.attrs, err = attributes.New(st, gl.TriangleStrip, map[int]attributes.Attribute{
		0:           {Buffer: s.quadBuffer},
		instanceLoc: {Buffer: s.instanceBuffer, Divisor: 1},
		colorLoc:    {Buffer: s.colorBuffer, Normalized: true, Divisor: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create particle attributes: %w", err)
	}
	return nil
}

// Capacity returns the number of particle slots.
func (s *System) Capacity() int {
	return s.capacity
}

// Alive returns the number of live particles after the last Update or Burst.
func (s *System) Alive() int {
	return s.alive
}

// Particle returns a snapshot of slot i.
func (s *System) Particle(i int) Particle {
	return Particle{
		X: s.pos[2*i], Y: s.pos[2*i+1],
		VX: s.vel[2*i], VY: s.vel[2*i+1],
		Age: s.age[i], Life: s.life[i],
	}
}

// Burst spawns up to n particles at once, limited by the free slots.
//
// Returns:
//   - int: the number of particles spawned
func (s *System) Burst(n int) int {
	spawned := s.spawn(n)
	s.countAlive()
	return spawned
}

// Update advances the simulation by dt seconds: live particles are stepped in
// parallel chunks on the worker pool, then new particles are spawned at the
// configured rate.
//
// Parameters:
//   - dt: elapsed time in seconds
func (s *System) Update(dt float32) {
	if dt < 0 {
		dt = 0
	}

	// The WaitGroup is the per-frame barrier; pool workers outlive the frame.
	var wg sync.WaitGroup
	for id, lo := 0, 0; lo < s.capacity; id, lo = id+1, lo+s.chunk {
		hi := min(lo+s.chunk, s.capacity)
		wg.Add(1)
		s.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				s.step(lo, hi, dt)
				return nil, nil
			},
		})
	}
	wg.Wait()

	s.spawnAccum += s.spawnRate * dt
	n := int(s.spawnAccum)
	s.spawnAccum -= float32(n)
	s.spawn(n)
	s.countAlive()
}

// step integrates slots [lo, hi). Chunks touch disjoint ranges of every slice.
func (s *System) step(lo, hi int, dt float32) {
	for i := lo; i < hi; i++ {
		if s.age[i] >= s.life[i] {
			continue
		}
		s.age[i] += dt
		s.vel[2*i] += s.gravity[0] * dt
		s.vel[2*i+1] += s.gravity[1] * dt
		s.pos[2*i] += s.vel[2*i] * dt
		s.pos[2*i+1] += s.vel[2*i+1] * dt
		s.writeInstance(i)
	}
}

func (s *System) writeInstance(i int) {
	fade := 1 - math32.Min(s.age[i]/s.life[i], 1)
	s.instances[3*i] = s.pos[2*i]
	s.instances[3*i+1] = s.pos[2*i+1]
	s.instances[3*i+2] = s.size * fade
	s.colors[4*i] = toByte(s.color.R)
	s.colors[4*i+1] = toByte(s.color.G)
	s.colors[4*i+2] = toByte(s.color.B)
	s.colors[4*i+3] = toByte(s.color.A * fade)
}

func toByte(v float32) uint8 {
	return uint8(math32.Round(math32.Min(math32.Max(v, 0), 1) * 255))
}

func (s *System) lerp(r [2]float32) float32 {
	return r[0] + (r[1]-r[0])*s.rng.Float32()
}

// spawn fills up to n free slots, scanning from where the last spawn stopped.
func (s *System) spawn(n int) int {
	spawned := 0
	for scanned := 0; spawned < n && scanned < s.capacity; scanned++ {
		i := s.cursor
		s.cursor = (s.cursor + 1) % s.capacity
		if s.age[i] < s.life[i] {
			continue
		}
		angle := s.direction + (s.rng.Float32()-0.5)*s.spread
		speed := s.lerp(s.speed)
		s.pos[2*i], s.pos[2*i+1] = s.emitter[0], s.emitter[1]
		s.vel[2*i], s.vel[2*i+1] = math32.Cos(angle)*speed, math32.Sin(angle)*speed
		s.age[i] = 0
		s.life[i] = math32.Max(s.lerp(s.lifetime), 1e-3)
		s.writeInstance(i)
		spawned++
	}
	return spawned
}

func (s *System) countAlive() {
	s.alive = 0
	for i := range s.age {
		if s.age[i] < s.life[i] {
			s.alive++
		}
	}
}

// Draw uploads the particle instances and draws every pass inside one Batch.
//
// Parameters:
//   - t: the target in scope, see Target.With
//
// Returns:
//   - error: an upload error, or the error of the Batch
func (s *System) Draw(t *renderer.Target) error {
	if err := s.instanceBuffer.Update(0, s.instances); err != nil {
		return err
	}
	if err := s.colorBuffer.Update(0, s.colors); err != nil {
		return err
	}

	w, h := t.Size()
	aspect := float32(1)
	if h > 0 {
		aspect = float32(w) / float32(h)
	}
	return renderer.Batch(t, s.cmd, func(draw renderer.DrawFunc[Pass]) error {
		for _, p := range s.passes {
			p.Aspect = aspect
			if err := draw(s.attrs, p); err != nil {
				return err
			}
		}
		return nil
	})
}

// Restore recreates the GPU resources after a context loss. The simulation state is kept.
//
// Returns:
//   - error: the first error from a buffer, the vertex array or the command
func (s *System) Restore() error {
	for _, r := range []renderer.Restorer{s.quadBuffer, s.instanceBuffer, s.colorBuffer, s.attrs, s.cmd} {
		if err := r.Restore(); err != nil {
			return fmt.Errorf("failed to restore particle system: %w", err)
		}
	}
	return nil
}

// Delete releases the GPU resources.
func (s *System) Delete() {
	if s.attrs != nil {
		s.attrs.Delete()
	}
	if s.cmd != nil {
		s.cmd.Delete()
	}
	for _, b := range []*resource.VertexBuffer[float32]{s.quadBuffer, s.instanceBuffer} {
		if b != nil {
			b.Delete()
		}
	}
	if s.colorBuffer != nil {
		s.colorBuffer.Delete()
	}
}
