package resource

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/gl"
	"github.com/Carmen-Shannon/oxy-gl/engine/internal/gltest"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/attributes"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/command"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ attributes.VertexBuffer = (*VertexBuffer[float32])(nil)
	_ attributes.IndexBuffer  = (*IndexBuffer)(nil)
	_ command.Texture         = (*Texture2D)(nil)
)

func TestVertexBufferDerivesLayout(t *testing.T) {
	ctx := gltest.New()
	st := state.New(ctx)

	vb, err := NewVertexBuffer(st, []float32{0, 0, 1, 0, 0, 1}, 2, WithUsage(gl.DynamicDraw))
	require.NoError(t, err)

	assert.Equal(t, gl.Float, vb.Type())
	assert.Equal(t, 3, vb.Count())
	assert.Equal(t, 2, vb.Components())
	assert.True(t, ctx.IsBuffer(vb.Buffer()))
	assert.Equal(t, []any{gl.ArrayBuffer, 24, gl.DynamicDraw}, ctx.Named("BufferData")[0].Args)
}

func TestVertexBufferComponentTypes(t *testing.T) {
	st := state.New(gltest.New())

	b8, err := NewVertexBuffer(st, []uint8{255, 0, 0, 255}, 4)
	require.NoError(t, err)
	i16, err := NewVertexBuffer(st, []int16{1, 2}, 1)
	require.NoError(t, err)
	u32, err := NewVertexBuffer(st, []uint32{7}, 1)
	require.NoError(t, err)

	assert.Equal(t, gl.UnsignedByte, b8.Type())
	assert.Equal(t, gl.Short, i16.Type())
	assert.Equal(t, gl.UnsignedInt, u32.Type())
}

func TestVertexBufferRejectsBadShapes(t *testing.T) {
	st := state.New(gltest.New())

	_, err := NewVertexBuffer(st, []float32{1, 2, 3}, 2)
	assert.ErrorContains(t, err, "not a multiple")

	_, err = NewVertexBuffer(st, []float32{1, 2, 3, 4, 5}, 5)
	assert.ErrorContains(t, err, "out of range")
}

func TestVertexBufferUpdate(t *testing.T) {
	ctx := gltest.New()
	vb, err := NewVertexBuffer(state.New(ctx), []float32{0, 0, 0, 0, 0, 0}, 2)
	require.NoError(t, err)

	require.NoError(t, vb.Update(1, []float32{5, 5}))
	assert.Equal(t, []any{gl.ArrayBuffer, 8, 8}, ctx.Named("BufferSubData")[0].Args)

	assert.Error(t, vb.Update(2, []float32{1, 1, 1, 1}))
	assert.Error(t, vb.Update(0, []float32{1}))
}

func TestIndexBufferBindsOutsideVertexArrays(t *testing.T) {
	ctx := gltest.New()
	st := state.New(ctx)
	st.PushVertexArray(12)

	ib := NewIndexBuffer(st, []uint16{0, 1, 2, 2, 1, 3})

	assert.Equal(t, gl.UnsignedShort, ib.Type())
	assert.Equal(t, 6, ib.Count())
	binds := ctx.Named("BindVertexArray")
	require.Len(t, binds, 3)
	assert.Equal(t, gl.VertexArray(0), binds[1].Args[0])
	assert.Equal(t, gl.VertexArray(12), binds[2].Args[0], "the caller's vertex array is restored")
}

func TestBufferRestoreReuploads(t *testing.T) {
	ctx := gltest.New()
	st := state.New(ctx)
	vb, err := NewVertexBuffer(st, []float32{1, 2, 3}, 3)
	require.NoError(t, err)
	old := vb.Buffer()

	require.NoError(t, vb.Restore())
	assert.Equal(t, 1, ctx.Count("CreateBuffer"))

	ctx.LoseContext()
	ctx.RestoreContext()
	require.NoError(t, vb.Restore())

	assert.NotEqual(t, old, vb.Buffer())
	assert.True(t, ctx.IsBuffer(vb.Buffer()))
	assert.Equal(t, []any{gl.ArrayBuffer, 12, gl.StaticDraw}, ctx.Named("BufferData")[1].Args)
}

func TestTextureCreation(t *testing.T) {
	ctx := gltest.New()
	st := state.New(ctx)

	tex, err := NewTexture2D(st, 2, 2,
		WithPixels(make([]byte, 16)),
		WithFilter(gl.Nearest, gl.Nearest),
		WithWrap(gl.Repeat, gl.MirroredRepeat),
		WithMipmaps())
	require.NoError(t, err)

	assert.Equal(t, gl.Texture2D, tex.Target())
	assert.True(t, ctx.IsTexture(tex.Handle()))
	w, h := tex.Size()
	assert.Equal(t, [2]int{2, 2}, [2]int{w, h})
	assert.Equal(t, 4, ctx.Count("TexParameteri"))
	assert.Equal(t, []any{gl.Texture2D, 0, gl.RGBA8, 2, 2, gl.RGBA, gl.UnsignedByte, 16}, ctx.Named("TexImage2D")[0].Args)
	assert.Equal(t, 1, ctx.Count("GenerateMipmap"))
}

func TestTextureRejectsWrongPixelLength(t *testing.T) {
	st := state.New(gltest.New())

	_, err := NewTexture2D(st, 4, 4, WithPixels(make([]byte, 10)))
	assert.ErrorContains(t, err, "want 64")

	_, err = NewTexture2D(st, 0, 4)
	assert.Error(t, err)

	tex, err := NewTexture2D(st, 1, 1, WithFormat(gl.R32F, gl.Red, gl.Float))
	require.NoError(t, err)
	assert.NoError(t, tex.Upload(make([]byte, 4)))
	assert.Error(t, tex.Upload(make([]byte, 3)))
}

func TestTextureUploadTargetsUnitZero(t *testing.T) {
	ctx := gltest.New()
	st := state.New(ctx)
	tex, err := NewTexture2D(st, 1, 1)
	require.NoError(t, err)
	st.BindTexture(2, gl.Texture2D, 99)
	ctx.ClearCalls()

	require.NoError(t, tex.Upload(make([]byte, 4)))

	active, ok := ctx.Last("ActiveTexture")
	require.True(t, ok)
	assert.Equal(t, []any{0}, active.Args)
	assert.Equal(t, 1, ctx.Count("TexImage2D"))
}

func TestTextureRestoreRebindsUnit(t *testing.T) {
	ctx := gltest.New()
	st := state.New(ctx)
	tex, err := NewTexture2D(st, 1, 1, WithPixels([]byte{1, 2, 3, 4}))
	require.NoError(t, err)

	ctx.LoseContext()
	ctx.RestoreContext()
	require.NoError(t, st.Reset())
	require.NoError(t, tex.Restore())

	assert.True(t, ctx.IsTexture(tex.Handle()))
	assert.Equal(t, 2, ctx.Count("TexImage2D"))
	assert.Equal(t, 4, ctx.Named("TexImage2D")[1].Args[7])
}

func TestRecycledTextureNameIsBound(t *testing.T) {
	ctx := gltest.New()
	ctx.ReuseNames = true
	st := state.New(ctx)

	first, err := NewTexture2D(st, 4, 4)
	require.NoError(t, err)
	name := first.Handle()
	first.Delete()
	assert.Zero(t, ctx.BoundTexture(0))

	second, err := NewTexture2D(st, 4, 4)
	require.NoError(t, err)
	require.Equal(t, name, second.Handle())
	assert.Equal(t, name, ctx.BoundTexture(0), "the upload reaches the new texture")
}

func TestRenderbuffer(t *testing.T) {
	ctx := gltest.New()
	st := state.New(ctx)

	rb, err := NewRenderbuffer(st, 64, 32, gl.Depth24Stencil8, 4)
	require.NoError(t, err)

	assert.True(t, ctx.IsRenderbuffer(rb.Handle()))
	assert.Equal(t, 4, rb.Samples())
	assert.Equal(t, []any{4, gl.Depth24Stencil8, 64, 32}, ctx.Named("RenderbufferStorageMultisample")[0].Args)

	_, err = NewRenderbuffer(st, 64, 32, gl.RGBA8, -1)
	assert.Error(t, err)

	ctx.LoseContext()
	require.NoError(t, rb.Restore())
	assert.True(t, ctx.IsRenderbuffer(rb.Handle()))

	rb.Delete()
	assert.Zero(t, rb.Handle())
}

func TestDeleteReleasesHandles(t *testing.T) {
	ctx := gltest.New()
	st := state.New(ctx)
	vb, err := NewVertexBuffer(st, []float32{1}, 1)
	require.NoError(t, err)
	ib := NewIndexBuffer(st, []uint8{0})
	tex, err := NewTexture2D(st, 1, 1)
	require.NoError(t, err)
	vh, ih, th := vb.Buffer(), ib.Buffer(), tex.Handle()

	vb.Delete()
	ib.Delete()
	tex.Delete()

	assert.False(t, ctx.IsBuffer(vh))
	assert.False(t, ctx.IsBuffer(ih))
	assert.False(t, ctx.IsTexture(th))
}
