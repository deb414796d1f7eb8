package engine

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/gl"
	"github.com/Carmen-Shannon/oxy-gl/engine/gl/glcore"
	"github.com/Carmen-Shannon/oxy-gl/engine/profiler"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/window"
)

// Layer is something the engine updates at the tick rate and draws into the
// back buffer every frame. *particles.System is a Layer.
type Layer interface {
	// Update advances the layer by dt seconds.
	Update(dt float32)

	// Draw issues the layer's draws into the back buffer, which is in scope.
	Draw(t *renderer.Target) error
}

// engine implements the Engine interface.
// Everything runs on the goroutine that called NewEngine, which owns the GL context.
type engine struct {
	running bool

	window        window.Window
	windowOptions []window.WindowBuilderOption
	ctx           gl.Context
	device        renderer.Device
	clearColor    common.Color

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(dev renderer.Device, deltaTime float32) error

	layers map[int]Layer

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	maxTicksPerFrame int

	contextLost bool
	now         func() time.Time
	sleep       func(time.Duration)
}

// Engine is the main entry point for the engine.
// It owns the window, the device and the frame loop.
type Engine interface {
	// Window returns the underlying window.
	Window() window.Window

	// Device returns the device drawing into the window.
	Device() renderer.Device

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in ticks per second.
	// The tick callback and every layer's Update are called at this rate.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	// Use this for game logic, physics, input processing, and animation updates.
	//
	// Parameters:
	//   - callback: function receiving the tick duration in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called each frame after the layers are drawn,
	// outside any Target scope.
	//
	// Parameters:
	//   - callback: function receiving the device and the frame delta in seconds; an error stops Run
	SetRenderCallback(callback func(dev renderer.Device, deltaTime float32) error)

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	SetRenderFrameLimit(fps float64)

	// AddLayer registers a layer at the given z-index key.
	// Layers are drawn in ascending key order.
	//
	// Parameters:
	//   - key: the z-index determining draw order (lower draws first)
	//   - l: the Layer to register
	AddLayer(key int, l Layer)

	// RemoveLayer removes the layer at the given z-index key.
	RemoveLayer(key int)

	// Layer retrieves the layer registered at the given z-index key, nil if there is none.
	Layer(key int) Layer

	// Run drives the frame loop until the window closes, Quit is called or a frame fails.
	//
	// Returns:
	//   - error: the error that stopped the loop, nil on a normal close
	Run() error

	// Quit stops Run after the current frame. Safe to call multiple times.
	Quit()
}

// NewEngine creates the window, the GL backend and the device.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - options: functional options for engine configuration (window, profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
//   - error: an error if the window or the GL backend could not be created
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		layers:           make(map[int]Layer),
		engineTickRate:   time.Second / 60,
		maxTicksPerFrame: 5,
		now:              time.Now,
		sleep:            time.Sleep,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window == nil {
		w, err := window.NewWindow(e.windowOptions...)
		if err != nil {
			return nil, fmt.Errorf("failed to create window: %w", err)
		}
		e.window = w
	}
	e.window.MakeContextCurrent()

	if e.ctx == nil {
		ctx, err := glcore.New()
		if err != nil {
			_ = e.window.Close()
			return nil, fmt.Errorf("failed to create GL context: %w", err)
		}
		e.ctx = ctx
	}

	e.device = renderer.NewDevice(e.ctx,
		renderer.WithDrawableSize(e.window.FramebufferSize),
		renderer.WithClearColor(e.clearColor),
	)
	e.profiler = profiler.NewProfiler(profiler.WithState(e.device.State()), profiler.WithClock(e.now))
	common.Logger().Info("engine created", "glsl", e.ctx.ShadingLanguageVersion())

	return e, nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Device() renderer.Device {
	return e.device
}

// Run polls events, ticks and renders until the window closes.
// Ticks use a fixed step: a slow frame runs several ticks, capped at maxTicksPerFrame.
func (e *engine) Run() error {
	e.running = true
	defer func() { e.running = false }()

	last := e.now()
	var accumulator time.Duration

	for e.running && e.window.IsRunning() {
		if !e.window.PollEvents() {
			break
		}

		frameStart := e.now()
		elapsed := frameStart.Sub(last)
		last = frameStart

		accumulator += elapsed
		for ticks := 0; accumulator >= e.engineTickRate; ticks++ {
			if ticks == e.maxTicksPerFrame {
				accumulator = 0
				break
			}
			e.tick(float32(e.engineTickRate.Seconds()))
			accumulator -= e.engineTickRate
		}

		if err := e.frame(float32(elapsed.Seconds())); err != nil {
			common.Logger().Error("frame failed", "error", err)
			return err
		}
		e.window.SwapBuffers()

		if e.profilingEnabled {
			e.profiler.Tick()
		}

		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - e.now().Sub(frameStart); remaining > 0 {
				e.sleep(remaining)
			}
		}
	}
	return nil
}

func (e *engine) tick(dt float32) {
	if e.tickCallback != nil {
		e.tickCallback(dt)
	}
	for _, k := range e.sortedKeys() {
		e.layers[k].Update(dt)
	}
}

// frame draws one frame. While the context is lost nothing is drawn; once it
// comes back every Restorer layer is restored before drawing resumes.
func (e *engine) frame(dt float32) error {
	if e.ctx.IsContextLost() {
		if !e.contextLost {
			common.Logger().Warn("GL context lost, rendering paused")
		}
		e.contextLost = true
		return nil
	}
	if e.contextLost {
		if err := e.restore(); err != nil {
			return err
		}
		e.contextLost = false
	}

	keys := e.sortedKeys()
	err := e.device.Target(func(t *renderer.Target) error {
		if err := t.Clear(gl.ColorBufferBit | gl.DepthBufferBit | gl.StencilBufferBit); err != nil {
			return err
		}
		for _, k := range keys {
			if err := e.layers[k].Draw(t); err != nil {
				return fmt.Errorf("layer %d: %w", k, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if e.renderCallback != nil {
		return e.renderCallback(e.device, dt)
	}
	return nil
}

func (e *engine) restore() error {
	var restorers []renderer.Restorer
	for _, k := range e.sortedKeys() {
		if r, ok := e.layers[k].(renderer.Restorer); ok {
			restorers = append(restorers, r)
		}
	}
	if err := e.device.Restore(restorers...); err != nil {
		return errors.Join(errors.New("failed to restore after context loss"), err)
	}
	common.Logger().Info("GL context restored", "layers", len(restorers))
	return nil
}

func (e *engine) sortedKeys() []int {
	keys := make([]int, 0, len(e.layers))
	for k := range e.layers {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Quit stops the frame loop after the current frame.
func (e *engine) Quit() {
	e.running = false
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in ticks per second.
// The change applies from the next frame.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	e.engineTickRate = time.Duration(float64(time.Second) / fps)
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(dev renderer.Device, deltaTime float32) error) {
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) AddLayer(key int, l Layer) {
	e.layers[key] = l
}

func (e *engine) RemoveLayer(key int) {
	delete(e.layers, key)
}

func (e *engine) Layer(key int) Layer {
	return e.layers[key]
}
