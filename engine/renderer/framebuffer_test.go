package renderer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/gl"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAttachment struct{}

func (fakeAttachment) Size() (int, int) { return 4, 4 }

func (fakeAttachment) InternalFormat() gl.InternalFormat { return gl.RGBA8 }

func newColor(t *testing.T, dev Device, w, h int) *resource.Texture2D {
	t.Helper()
	tex, err := resource.NewTexture2D(dev.State(), w, h)
	require.NoError(t, err)
	return tex
}

func requireResourceError(t *testing.T, err error) *ResourceError {
	t.Helper()
	var resErr *ResourceError
	require.True(t, errors.As(err, &resErr), "want *ResourceError, got %v", err)
	return resErr
}

func TestFramebufferAttachments(t *testing.T) {
	ctx, dev := newDevice(t)
	c0 := newColor(t, dev, 32, 16)
	c1 := newColor(t, dev, 32, 16)
	depth, err := resource.NewRenderbuffer(dev.State(), 32, 16, gl.Depth24Stencil8, 0)
	require.NoError(t, err)

	fb, err := NewFramebuffer(dev, []Attachment{c0, c1}, depth)
	require.NoError(t, err)

	w, h := fb.Size()
	assert.Equal(t, [2]int{32, 16}, [2]int{w, h})
	assert.True(t, ctx.IsFramebuffer(fb.Handle()))
	tex := ctx.Named("FramebufferTexture2D")
	require.Len(t, tex, 2)
	assert.Equal(t, gl.ColorAttachment(1), tex[1].Args[1])
	assert.Equal(t, []any{gl.DrawFramebuffer, gl.DepthStencilAttachment, depth.Handle()}, ctx.Named("FramebufferRenderbuffer")[0].Args)
	binds := ctx.Named("BindFramebuffer")
	require.Len(t, binds, 2)
	assert.Equal(t, gl.Framebuffer(0), binds[1].Args[1], "the draw framebuffer is restored")
}

func TestFramebufferTargetBindsDrawBuffers(t *testing.T) {
	ctx, dev := newDevice(t)
	fb, err := NewFramebuffer(dev, []Attachment{newColor(t, dev, 8, 8), newColor(t, dev, 8, 8)}, nil)
	require.NoError(t, err)
	ctx.ClearCalls()

	require.NoError(t, fb.With(func(tg *Target) error {
		assert.Same(t, fb, tg.Framebuffer())
		return tg.Clear(gl.ColorBufferBit)
	}))

	assert.Equal(t, []any{gl.DrawFramebuffer, fb.Handle()}, ctx.Named("BindFramebuffer")[0].Args)
	assert.Equal(t, []any{[]gl.Attachment{gl.ColorAttachment(0), gl.ColorAttachment(1)}}, ctx.Named("DrawBuffers")[0].Args)
	assert.Equal(t, []any{0, 0, 8, 8}, ctx.Named("Viewport")[0].Args)
}

func TestDepthOnlyFramebufferDrawsNone(t *testing.T) {
	ctx, dev := newDevice(t)
	depth, err := resource.NewTexture2D(dev.State(), 16, 16, resource.WithFormat(gl.DepthComponent24, gl.DepthComponent, gl.UnsignedInt))
	require.NoError(t, err)

	fb, err := NewFramebuffer(dev, nil, depth)
	require.NoError(t, err)
	require.NoError(t, fb.With(func(*Target) error { return nil }))

	assert.Equal(t, gl.DepthAttachment, ctx.Named("FramebufferTexture2D")[0].Args[1])
	assert.Equal(t, []any{[]gl.Attachment{gl.None}}, ctx.Named("DrawBuffers")[0].Args)
}

func TestFramebufferRejectsInvalidSets(t *testing.T) {
	_, dev := newDevice(t)
	color := newColor(t, dev, 8, 8)
	depth, err := resource.NewRenderbuffer(dev.State(), 8, 8, gl.DepthComponent16, 0)
	require.NoError(t, err)

	tests := []struct {
		name   string
		colors []Attachment
		depth  Attachment
		want   string
	}{
		{name: "empty", want: "no attachments"},
		{name: "size mismatch", colors: []Attachment{color, newColor(t, dev, 4, 8)}, want: "sizes differ"},
		{name: "depth as color", colors: []Attachment{depth}, want: "depth or stencil format"},
		{name: "color as depth", colors: []Attachment{color}, depth: newColor(t, dev, 8, 8), want: "color format"},
		{name: "too many", colors: []Attachment{color, color, color, color, color}, want: "exceed"},
		{name: "unsupported", colors: []Attachment{fakeAttachment{}}, want: "unsupported attachment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFramebuffer(dev, tt.colors, tt.depth)

			assert.Contains(t, requireResourceError(t, err).Reason, tt.want)
		})
	}
}

func TestIncompleteFramebuffer(t *testing.T) {
	ctx, dev := newDevice(t)
	ctx.Status = gl.FramebufferUnsupported

	_, err := NewFramebuffer(dev, []Attachment{newColor(t, dev, 8, 8)}, nil)

	assert.Contains(t, requireResourceError(t, err).Reason, "unsupported")
	assert.Equal(t, 1, ctx.Count("DeleteFramebuffer"))
}

func TestRecycledFramebufferNameIsBound(t *testing.T) {
	ctx, dev := newDevice(t)
	ctx.ReuseNames = true
	color := newColor(t, dev, 8, 8)

	first, err := NewFramebuffer(dev, []Attachment{color}, nil)
	require.NoError(t, err)
	require.NoError(t, first.With(func(*Target) error { return nil }))
	name := first.Handle()
	first.Delete()
	assert.Zero(t, ctx.DrawFramebuffer(), "deleting the bound framebuffer binds the default one")
	ctx.ClearCalls()

	second, err := NewFramebuffer(dev, []Attachment{color}, nil)
	require.NoError(t, err)
	require.Equal(t, name, second.Handle())
	binds := ctx.Named("BindFramebuffer")
	require.NotEmpty(t, binds)
	assert.Equal(t, []any{gl.DrawFramebuffer, name}, binds[0].Args, "attachments go to the new framebuffer")

	require.NoError(t, second.With(func(*Target) error {
		assert.Equal(t, name, ctx.DrawFramebuffer())
		return nil
	}))
	assert.Equal(t, 1, ctx.Count("DrawBuffers"), "a new framebuffer gets its draw buffers")
}

func TestBlitRestoresReadFramebuffer(t *testing.T) {
	ctx, dev := newDevice(t)
	src, err := NewFramebuffer(dev, []Attachment{newColor(t, dev, 64, 32)}, nil)
	require.NoError(t, err)
	other, err := NewFramebuffer(dev, []Attachment{newColor(t, dev, 64, 32)}, nil)
	require.NoError(t, err)
	dev.State().PushReadFramebuffer(other.Handle())
	ctx.ClearCalls()

	err = dev.Target(func(tg *Target) error {
		return tg.Blit(src, gl.ColorBufferBit, BlitFilter(gl.Linear), BlitDestination(common.NewRect(10, 10, 100, 50)))
	})

	require.NoError(t, err)
	blit, ok := ctx.Last("BlitFramebuffer")
	require.True(t, ok)
	assert.Equal(t, []any{0, 0, 64, 32, 10, 10, 110, 60, gl.ColorBufferBit, gl.Linear}, blit.Args)
	reads := ctx.Named("BindFramebuffer")
	require.Len(t, reads, 2)
	assert.Equal(t, []any{gl.ReadFramebuffer, src.Handle()}, reads[0].Args)
	assert.Equal(t, []any{gl.ReadFramebuffer, other.Handle()}, reads[1].Args)
}

func TestBlitValidation(t *testing.T) {
	_, dev := newDevice(t)
	src, err := NewFramebuffer(dev, []Attachment{newColor(t, dev, 8, 8)}, nil)
	require.NoError(t, err)

	requireUsageError(t, dev.BackBuffer().Blit(src, gl.ColorBufferBit))
	err = dev.Target(func(tg *Target) error {
		return tg.Blit(src, gl.DepthBufferBit, BlitFilter(gl.Linear))
	})
	requireResourceError(t, err)
	err = dev.Target(func(tg *Target) error {
		return tg.Blit(nil, gl.ColorBufferBit)
	})
	requireUsageError(t, err)
}

func TestFramebufferRestore(t *testing.T) {
	ctx, dev := newDevice(t)
	color := newColor(t, dev, 8, 8)
	fb, err := NewFramebuffer(dev, []Attachment{color}, nil)
	require.NoError(t, err)
	oldFB, oldTex := fb.Handle(), color.Handle()

	require.NoError(t, fb.Restore())
	assert.Equal(t, oldFB, fb.Handle())

	ctx.LoseContext()
	ctx.RestoreContext()
	require.NoError(t, dev.Restore(fb))

	assert.NotEqual(t, oldFB, fb.Handle())
	assert.NotEqual(t, oldTex, color.Handle())
	assert.True(t, ctx.IsFramebuffer(fb.Handle()))
	last, ok := ctx.Last("FramebufferTexture2D")
	require.True(t, ok)
	assert.Equal(t, color.Handle(), last.Args[3])

	require.NoError(t, fb.With(func(*Target) error { return nil }))
	bind, ok := ctx.Last("BindFramebuffer")
	require.True(t, ok)
	assert.Equal(t, []any{gl.DrawFramebuffer, fb.Handle()}, bind.Args)
}
