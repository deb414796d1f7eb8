package renderer

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/gl"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/state"
)

// Target is a drawable surface: the back buffer of a Device or the attachments
// of a Framebuffer. All work on a Target happens inside With.
type Target struct {
	st *state.State

	framebuffer  *Framebuffer
	drawBuffers  []gl.Attachment
	width        int
	height       int
	drawableSize func() (int, int)
	clearColor   common.Color
}

func (t *Target) handle() gl.Framebuffer {
	if t.framebuffer == nil {
		return 0
	}
	return t.framebuffer.handle
}

// Size returns the Target size in pixels: the attachment size of a
// framebuffer Target, the current drawable size of the back buffer.
func (t *Target) Size() (int, int) {
	dw, dh := 0, 0
	if t.drawableSize != nil {
		dw, dh = t.drawableSize()
	}
	return common.Coalesce(t.width, dw), common.Coalesce(t.height, dh)
}

// Framebuffer returns the framebuffer the Target draws to, nil for the back buffer.
func (t *Target) Framebuffer() *Framebuffer {
	return t.framebuffer
}

// With binds the Target, sets the viewport to its full size and runs fn.
// The Target is unlocked when fn returns, also when it panics.
//
// Parameters:
//   - fn: the callback issuing clears, blits and draws on t
//
// Returns:
//   - error: a *state.UsageError if any Target is already in scope, a
//     *ResourceError if the Target has no size, or the error returned by fn
func (t *Target) With(fn func(t *Target) error) (err error) {
	w, h := t.Size()
	if w <= 0 || h <= 0 {
		return &ResourceError{Op: "bind target", Reason: "target has no size"}
	}
	if err := t.st.LockTarget(t, t.handle(), t.drawBuffers); err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, t.st.UnlockTarget())
	}()
	t.st.SetViewport(common.NewRect(0, 0, w, h))
	return fn(t)
}

func (t *Target) requireLock(op string) error {
	if !t.st.IsTargetLocked(t) {
		return &state.UsageError{Op: op, Reason: "target is not in scope; call it inside Target.With"}
	}
	return nil
}

// ClearOption configures a Clear.
type ClearOption func(*clearConfig)

type clearConfig struct {
	color   common.Color
	depth   float32
	stencil int32
	scissor *common.Rect
}

// ClearColor sets the color written to color buffers.
//
// Parameters:
//   - c: the clear color
//
// Returns:
//   - ClearOption: a function that sets the clear color
func ClearColor(c common.Color) ClearOption {
	return func(cfg *clearConfig) {
		cfg.color = c
	}
}

// ClearDepth sets the value written to the depth buffer, 1 by default.
func ClearDepth(d float32) ClearOption {
	return func(cfg *clearConfig) {
		cfg.depth = d
	}
}

// ClearStencil sets the value written to the stencil buffer, 0 by default.
func ClearStencil(s int32) ClearOption {
	return func(cfg *clearConfig) {
		cfg.stencil = s
	}
}

// ClearRect limits the clear to a rectangle instead of the whole Target.
func ClearRect(r common.Rect) ClearOption {
	return func(cfg *clearConfig) {
		cfg.scissor = &r
	}
}

// Clear fills the selected buffers of the Target.
//
// Parameters:
//   - bits: the buffers to clear, a combination of gl.ColorBufferBit, gl.DepthBufferBit and gl.StencilBufferBit
//   - opts: clear values and an optional rectangle
//
// Returns:
//   - error: a *state.UsageError if the Target is not in scope
func (t *Target) Clear(bits gl.BufferBits, opts ...ClearOption) error {
	if err := t.requireLock("clear"); err != nil {
		return err
	}
	cfg := clearConfig{color: t.clearColor, depth: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	t.st.SetClearValues(cfg.color, cfg.depth, cfg.stencil)
	t.st.SetScissor(cfg.scissor)
	t.st.Context().Clear(bits)
	if cfg.scissor != nil {
		t.st.SetScissor(nil)
	}
	return nil
}

// BlitOption configures a Blit.
type BlitOption func(*blitConfig)

type blitConfig struct {
	src    *common.Rect
	dst    *common.Rect
	filter gl.Filter
}

// BlitSource sets the rectangle read from the source, its whole size by default.
func BlitSource(r common.Rect) BlitOption {
	return func(cfg *blitConfig) {
		cfg.src = &r
	}
}

// BlitDestination sets the rectangle written on the Target, its whole size by default.
func BlitDestination(r common.Rect) BlitOption {
	return func(cfg *blitConfig) {
		cfg.dst = &r
	}
}

// BlitFilter sets the filter used when the rectangles differ in size, Nearest by default.
// Linear applies to color only.
func BlitFilter(f gl.Filter) BlitOption {
	return func(cfg *blitConfig) {
		cfg.filter = f
	}
}

// Blit copies buffers of src into the Target. The read framebuffer bound
// before the call is bound again afterwards.
//
// Parameters:
//   - src: the framebuffer to read from
//   - bits: the buffers to copy
//   - opts: rectangles and filter
//
// Returns:
//   - error: a *state.UsageError if the Target is not in scope or src is nil,
//     a *ResourceError for a linear depth or stencil blit
func (t *Target) Blit(src *Framebuffer, bits gl.BufferBits, opts ...BlitOption) error {
	if err := t.requireLock("blit"); err != nil {
		return err
	}
	if src == nil {
		return &state.UsageError{Op: "blit", Reason: "source framebuffer is nil"}
	}
	cfg := blitConfig{filter: gl.Nearest}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.filter == gl.Linear && bits&(gl.DepthBufferBit|gl.StencilBufferBit) != 0 {
		return &ResourceError{Op: "blit", Reason: "linear filtering applies to color buffers only"}
	}
	if cfg.src == nil {
		w, h := src.Size()
		r := common.NewRect(0, 0, w, h)
		cfg.src = &r
	}
	if cfg.dst == nil {
		w, h := t.Size()
		r := common.NewRect(0, 0, w, h)
		cfg.dst = &r
	}

	t.st.PushReadFramebuffer(src.handle)
	sx1, sy1 := cfg.src.Max()
	dx1, dy1 := cfg.dst.Max()
	t.st.Context().BlitFramebuffer(cfg.src.X, cfg.src.Y, sx1, sy1, cfg.dst.X, cfg.dst.Y, dx1, dy1, bits, cfg.filter)
	return t.st.PopReadFramebuffer()
}
