// Package renderer is the draw-dispatch layer: a Device owns the pipeline
// State of one graphics context, Targets scope every clear, blit and draw,
// and Draw and Batch relay Commands and Attributes to the context.
package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/gl"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/state"
)

// Restorer is a GPU-handle owner that can rebuild itself after a context loss.
// Commands, Attributes, Framebuffers and every resource type implement it.
type Restorer interface {
	Restore() error
}

// device is the implementation of the Device interface.
type device struct {
	ctx gl.Context
	st  *state.State

	drawableSize func() (int, int)
	clearColor   common.Color
	backBuffer   *Target
}

// Device defines the interface for one graphics context and its mirrored pipeline state.
//
// A Device is not safe for concurrent use. Every call must come from the
// goroutine that owns the context.
type Device interface {
	// Context returns the graphics context.
	//
	// Returns:
	//   - gl.Context: the context every call is emitted to
	Context() gl.Context

	// State returns the pipeline state shared by every Command, Attributes and
	// resource created for this device.
	//
	// Returns:
	//   - *state.State: the device-wide state mirror
	State() *state.State

	// DrawableSize returns the current size of the back buffer in pixels: the
	// context's own report unless WithDrawableSize overrides it.
	//
	// Returns:
	//   - int: the width
	//   - int: the height
	DrawableSize() (int, int)

	// BackBuffer returns the Target that draws to the default framebuffer.
	//
	// Returns:
	//   - *Target: the back-buffer target, sized by the drawable size
	BackBuffer() *Target

	// Target runs fn inside the scope of the back-buffer Target.
	// It is shorthand for BackBuffer().With(fn).
	//
	// Parameters:
	//   - fn: the callback issuing clears, blits and draws
	//
	// Returns:
	//   - error: a *state.UsageError if another Target is in scope, or the error returned by fn
	Target(fn func(t *Target) error) error

	// Reset forgets the remembered pipeline state so every next transition is emitted.
	// Call it after foreign code touched the context.
	//
	// Returns:
	//   - error: a *state.UsageError if a Target or Command is locked
	Reset() error

	// Restore rebuilds every given handle owner after the platform restored a
	// lost context. The state mirror is reset first. Restorers run in order,
	// so buffers must come before the Attributes that reference them.
	// A Framebuffer restores its own attachments.
	//
	// Parameters:
	//   - restorers: the objects to restore
	//
	// Returns:
	//   - error: an error if the context is still lost, a lock is held, or a restorer fails
	Restore(restorers ...Restorer) error
}

var _ Device = &device{}

// NewDevice creates a Device around a current graphics context.
//
// Parameters:
//   - ctx: the graphics context, current on the calling goroutine
//   - options: variadic list of DeviceBuilderOption functions to configure the Device
//
// Returns:
//   - Device: the new device
func NewDevice(ctx gl.Context, options ...DeviceBuilderOption) Device {
	d := &device{
		ctx:          ctx,
		st:           state.New(ctx),
		drawableSize: ctx.DrawableSize,
	}
	for _, opt := range options {
		opt(d)
	}
	d.backBuffer = &Target{
		st:           d.st,
		drawBuffers:  []gl.Attachment{gl.BackBuffer},
		drawableSize: d.drawableSize,
		clearColor:   d.clearColor,
	}
	return d
}

func (d *device) Context() gl.Context {
	return d.ctx
}

func (d *device) State() *state.State {
	return d.st
}

func (d *device) DrawableSize() (int, int) {
	return d.drawableSize()
}

func (d *device) BackBuffer() *Target {
	return d.backBuffer
}

func (d *device) Target(fn func(t *Target) error) error {
	return d.backBuffer.With(fn)
}

func (d *device) Reset() error {
	return d.st.Reset()
}

func (d *device) Restore(restorers ...Restorer) error {
	if d.ctx.IsContextLost() {
		return &ResourceError{Op: "restore", Reason: "the context is still lost"}
	}
	if err := d.st.Reset(); err != nil {
		return err
	}
	for i, r := range restorers {
		if err := r.Restore(); err != nil {
			return fmt.Errorf("failed to restore object %d: %w", i, err)
		}
	}
	common.Logger().Debug("device restored", "objects", len(restorers))
	return nil
}
