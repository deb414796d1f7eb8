package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/gl"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/resource"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/state"
)

// Attachment is storage a Framebuffer can render into:
// a *resource.Texture2D or a *resource.Renderbuffer.
type Attachment interface {
	Size() (int, int)
	InternalFormat() gl.InternalFormat
}

// Framebuffer is a set of color attachments plus an optional depth, stencil
// or depth-stencil attachment. It owns exactly one Target. Restore restores the
// attachments along with the framebuffer, but Delete leaves them alive: they may
// be shared with other framebuffers or sampled as textures.
type Framebuffer struct {
	st     *state.State
	handle gl.Framebuffer

	colors       []Attachment
	depthStencil Attachment
	width        int
	height       int
	target       *Target
}

// NewFramebuffer creates a framebuffer and checks its completeness.
//
// Parameters:
//   - dev: the device the framebuffer belongs to
//   - colors: color attachments, written by fragment outputs 0..n-1
//   - depthStencil: the depth and/or stencil attachment, or nil
//
// Returns:
//   - *Framebuffer: the framebuffer
//   - error: a *ResourceError if there are no attachments, too many, their sizes
//     differ, a format does not fit its slot, or the driver reports the set incomplete
func NewFramebuffer(dev Device, colors []Attachment, depthStencil Attachment) (*Framebuffer, error) {
	const op = "create framebuffer"
	if len(colors) == 0 && depthStencil == nil {
		return nil, &ResourceError{Op: op, Reason: "no attachments"}
	}
	if len(colors) > gl.MaxColorAttachments {
		return nil, &ResourceError{Op: op, Reason: fmt.Sprintf("%d color attachments exceed the limit of %d", len(colors), gl.MaxColorAttachments)}
	}

	all := append([]Attachment(nil), colors...)
	for i, c := range colors {
		if c == nil {
			return nil, &ResourceError{Op: op, Reason: fmt.Sprintf("color attachment %d is nil", i)}
		}
		if _, ok := depthStencilPoint(c.InternalFormat()); ok {
			return nil, &ResourceError{Op: op, Reason: fmt.Sprintf("color attachment %d has a depth or stencil format", i)}
		}
	}
	if depthStencil != nil {
		if _, ok := depthStencilPoint(depthStencil.InternalFormat()); !ok {
			return nil, &ResourceError{Op: op, Reason: "depth-stencil attachment has a color format"}
		}
		all = append(all, depthStencil)
	}
	width, height := all[0].Size()
	for _, a := range all[1:] {
		if w, h := a.Size(); w != width || h != height {
			return nil, &ResourceError{Op: op, Reason: fmt.Sprintf("attachment sizes differ: %dx%d and %dx%d", width, height, w, h)}
		}
	}

	fb := &Framebuffer{
		st:           dev.State(),
		colors:       append([]Attachment(nil), colors...),
		depthStencil: depthStencil,
		width:        width,
		height:       height,
	}
	drawBuffers := []gl.Attachment{gl.None}
	if len(colors) > 0 {
		drawBuffers = make([]gl.Attachment, len(colors))
		for i := range colors {
			drawBuffers[i] = gl.ColorAttachment(i)
		}
	}
	fb.target = &Target{st: fb.st, framebuffer: fb, drawBuffers: drawBuffers, width: width, height: height}

	if err := fb.create(); err != nil {
		return nil, err
	}
	common.Logger().Debug("framebuffer created", "framebuffer", fb.handle, "width", width, "height", height, "colors", len(colors))
	return fb, nil
}

func depthStencilPoint(f gl.InternalFormat) (gl.Attachment, bool) {
	switch f {
	case gl.DepthComponent16, gl.DepthComponent24, gl.DepthComponent32F:
		return gl.DepthAttachment, true
	case gl.Depth24Stencil8, gl.Depth32FStencil8:
		return gl.DepthStencilAttachment, true
	case gl.StencilIndex8:
		return gl.StencilAttachment, true
	default:
		return 0, false
	}
}

func (fb *Framebuffer) create() error {
	const op = "create framebuffer"
	ctx := fb.st.Context()
	fb.handle = ctx.CreateFramebuffer()
	fb.st.PushDrawFramebuffer(fb.handle)

	attach := func(point gl.Attachment, a Attachment) error {
		switch a := a.(type) {
		case *resource.Texture2D:
			ctx.FramebufferTexture2D(gl.DrawFramebuffer, point, a.Target(), a.Handle(), 0)
		case *resource.Renderbuffer:
			ctx.FramebufferRenderbuffer(gl.DrawFramebuffer, point, a.Handle())
		default:
			return &ResourceError{Op: op, Reason: fmt.Sprintf("unsupported attachment type %T", a)}
		}
		return nil
	}

	var err error
	for i, c := range fb.colors {
		if err = attach(gl.ColorAttachment(i), c); err != nil {
			break
		}
	}
	if err == nil && fb.depthStencil != nil {
		point, _ := depthStencilPoint(fb.depthStencil.InternalFormat())
		err = attach(point, fb.depthStencil)
	}
	if err == nil {
		if status := ctx.CheckFramebufferStatus(gl.DrawFramebuffer); status != gl.FramebufferComplete {
			err = &ResourceError{Op: op, Reason: fmt.Sprintf("framebuffer is incomplete: %s", status)}
		}
	}
	popErr := fb.st.PopDrawFramebuffer()

	if err != nil {
		ctx.DeleteFramebuffer(fb.handle)
		fb.st.ForgetFramebuffer(fb.handle)
		fb.handle = 0
		return err
	}
	return popErr
}

// Handle returns the framebuffer object.
func (fb *Framebuffer) Handle() gl.Framebuffer {
	return fb.handle
}

// Size returns the attachment size in pixels.
func (fb *Framebuffer) Size() (int, int) {
	return fb.width, fb.height
}

// Colors returns the color attachments in draw-buffer order.
func (fb *Framebuffer) Colors() []Attachment {
	return fb.colors
}

// DepthStencil returns the depth and/or stencil attachment, nil if there is none.
func (fb *Framebuffer) DepthStencil() Attachment {
	return fb.depthStencil
}

// Target returns the Target drawing into the attachments.
func (fb *Framebuffer) Target() *Target {
	return fb.target
}

// With runs fn inside the scope of the framebuffer's Target.
//
// Parameters:
//   - fn: the callback issuing clears, blits and draws
//
// Returns:
//   - error: a *state.UsageError if another Target is in scope, or the error returned by fn
func (fb *Framebuffer) With(fn func(t *Target) error) error {
	return fb.target.With(fn)
}

// Restore restores the attachments and recreates the framebuffer if its handle
// is no longer valid. Attachment contents are not preserved.
//
// Returns:
//   - error: an error from an attachment, or a *ResourceError if the recreated set is incomplete
func (fb *Framebuffer) Restore() error {
	for _, a := range append(append([]Attachment(nil), fb.colors...), fb.depthStencil) {
		if r, ok := a.(Restorer); ok {
			if err := r.Restore(); err != nil {
				return fmt.Errorf("failed to restore framebuffer attachment: %w", err)
			}
		}
	}
	if fb.handle != 0 && fb.st.Context().IsFramebuffer(fb.handle) {
		return nil
	}
	common.Logger().Warn("restoring framebuffer", "framebuffer", fb.handle)
	fb.st.ForgetFramebuffer(fb.handle)
	return fb.create()
}

// Delete releases the framebuffer object. The attachments stay alive.
func (fb *Framebuffer) Delete() {
	if fb.handle != 0 {
		fb.st.Context().DeleteFramebuffer(fb.handle)
		fb.st.ForgetFramebuffer(fb.handle)
		fb.handle = 0
	}
}
