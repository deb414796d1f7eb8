package particles

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/chewxy/math32"
)

// Option is a functional option for configuring a System.
// Use the With* functions to create options.
type Option func(s *System)

// WithCapacity sets the maximum number of live particles, which is also the
// instance count of every draw.
//
// Parameters:
//   - capacity: particle slots, defaults to 4096
//
// Returns:
//   - Option: option function to apply
func WithCapacity(capacity int) Option {
	return func(s *System) {
		if capacity > 0 {
			s.capacity = capacity
		}
	}
}

// WithWorkers sets how many pool workers simulate chunks in parallel.
//
// Parameters:
//   - workers: worker count, defaults to 4
//
// Returns:
//   - Option: option function to apply
func WithWorkers(workers int) Option {
	return func(s *System) {
		if workers > 0 {
			s.workers = workers
		}
	}
}

// WithChunkSize sets the number of particles one task simulates.
//
// Parameters:
//   - size: particles per task, defaults to 512
//
// Returns:
//   - Option: option function to apply
func WithChunkSize(size int) Option {
	return func(s *System) {
		if size > 0 {
			s.chunk = size
		}
	}
}

// WithEmitter sets where particles spawn, in clip space.
func WithEmitter(x, y float32) Option {
	return func(s *System) {
		s.emitter = [2]float32{x, y}
	}
}

// WithSpawnRate sets the particles spawned per second. 0 spawns only through Burst.
func WithSpawnRate(perSecond float32) Option {
	return func(s *System) {
		s.spawnRate = math32.Max(perSecond, 0)
	}
}

// WithLifetime sets the range a particle's lifetime in seconds is drawn from.
func WithLifetime(minSeconds, maxSeconds float32) Option {
	return func(s *System) {
		s.lifetime = [2]float32{minSeconds, math32.Max(minSeconds, maxSeconds)}
	}
}

// WithSpeed sets the range a particle's initial speed in clip units per second is drawn from.
func WithSpeed(minSpeed, maxSpeed float32) Option {
	return func(s *System) {
		s.speed = [2]float32{minSpeed, math32.Max(minSpeed, maxSpeed)}
	}
}

// WithSpread sets the emission cone.
//
// Parameters:
//   - direction: the cone axis in radians, 0 points along +x
//   - angle: the full cone width in radians, 2π emits in every direction
//
// Returns:
//   - Option: option function to apply
func WithSpread(direction, angle float32) Option {
	return func(s *System) {
		s.direction = direction
		s.spread = angle
	}
}

// WithGravity sets the constant acceleration applied to every particle.
func WithGravity(x, y float32) Option {
	return func(s *System) {
		s.gravity = [2]float32{x, y}
	}
}

// WithSize sets the quad half-extent of a newborn particle in clip units. Particles shrink to 0 as they age.
func WithSize(size float32) Option {
	return func(s *System) {
		s.size = size
	}
}

// WithColor sets the particle color. Alpha fades to 0 over the lifetime.
func WithColor(c common.Color) Option {
	return func(s *System) {
		s.color = c
	}
}

// WithSeed makes spawning deterministic.
func WithSeed(seed uint64) Option {
	return func(s *System) {
		s.seed = seed
	}
}

// WithPasses replaces the default glow and core passes. Every pass draws all
// particles once with its own scale and intensity.
//
// Parameters:
//   - passes: the passes in draw order
//
// Returns:
//   - Option: option function to apply
func WithPasses(passes ...Pass) Option {
	return func(s *System) {
		if len(passes) > 0 {
			s.passes = append([]Pass(nil), passes...)
		}
	}
}
