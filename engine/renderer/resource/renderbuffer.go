package resource

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/gl"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/state"
)

// Renderbuffer is write-only framebuffer storage, typically a depth-stencil
// buffer or a multisampled color buffer that is resolved with a blit.
//
// The renderbuffer binding is not part of the tracked state; it is only
// touched while allocating storage.
type Renderbuffer struct {
	st      *state.State
	handle  gl.Renderbuffer
	width   int
	height  int
	format  gl.InternalFormat
	samples int
}

// NewRenderbuffer allocates renderbuffer storage.
//
// Parameters:
//   - st: the pipeline state of the device the renderbuffer is used on
//   - width: the width in pixels
//   - height: the height in pixels
//   - format: the sized storage format
//   - samples: the sample count, 0 for single-sampled storage
//
// Returns:
//   - *Renderbuffer: the renderbuffer
//   - error: an error if the size is not positive or samples is negative
func NewRenderbuffer(st *state.State, width, height int, format gl.InternalFormat, samples int) (*Renderbuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("renderbuffer size %dx%d is not positive", width, height)
	}
	if samples < 0 {
		return nil, fmt.Errorf("renderbuffer sample count %d is negative", samples)
	}
	r := &Renderbuffer{st: st, width: width, height: height, format: format, samples: samples}
	r.create()
	return r, nil
}

func (r *Renderbuffer) create() {
	ctx := r.st.Context()
	r.handle = ctx.CreateRenderbuffer()
	ctx.BindRenderbuffer(r.handle)
	ctx.RenderbufferStorageMultisample(r.samples, r.format, r.width, r.height)
	ctx.BindRenderbuffer(0)
}

// Handle returns the renderbuffer object.
func (r *Renderbuffer) Handle() gl.Renderbuffer {
	return r.handle
}

// Size returns the width and height in pixels.
func (r *Renderbuffer) Size() (int, int) {
	return r.width, r.height
}

// InternalFormat returns the sized storage format.
func (r *Renderbuffer) InternalFormat() gl.InternalFormat {
	return r.format
}

// Samples returns the sample count, 0 when single-sampled.
func (r *Renderbuffer) Samples() int {
	return r.samples
}

// Restore reallocates the storage if the handle is no longer valid.
//
// Returns:
//   - error: always nil
func (r *Renderbuffer) Restore() error {
	if r.handle != 0 && r.st.Context().IsRenderbuffer(r.handle) {
		return nil
	}
	common.Logger().Warn("restoring renderbuffer", "renderbuffer", r.handle)
	r.create()
	return nil
}

// Delete releases the renderbuffer object.
func (r *Renderbuffer) Delete() {
	if r.handle != 0 {
		r.st.Context().DeleteRenderbuffer(r.handle)
		r.handle = 0
	}
}
