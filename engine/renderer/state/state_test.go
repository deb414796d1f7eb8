package state

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/gl"
	"github.com/Carmen-Shannon/oxy-gl/engine/internal/gltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireUsageError(t *testing.T, err error) *UsageError {
	t.Helper()
	var usage *UsageError
	require.True(t, errors.As(err, &usage), "expected *UsageError, got %v", err)
	return usage
}

func TestSetBlendIsIdempotent(t *testing.T) {
	ctx := gltest.New()
	st := New(ctx)
	b := DefaultBlend()
	b.SrcRGB = gl.FactorSrcAlpha

	st.SetBlend(&b)
	same := b
	st.SetBlend(&same)
	st.SetBlend(&b)

	assert.Equal(t, 1, ctx.Count("BlendFuncSeparate"))
	assert.Equal(t, 1, ctx.Count("Enable"))
}

func TestSetBlendNilDisables(t *testing.T) {
	ctx := gltest.New()
	st := New(ctx)
	b := DefaultBlend()

	st.SetBlend(nil)
	assert.Empty(t, ctx.Calls(), "blending starts disabled")

	st.SetBlend(&b)
	st.SetBlend(nil)

	last, ok := ctx.Last("Disable")
	require.True(t, ok)
	assert.Equal(t, []any{gl.Blend}, last.Args)
}

func TestSetDepthEmitsWholeDescriptor(t *testing.T) {
	ctx := gltest.New()
	st := New(ctx)
	d := DefaultDepth()

	st.SetDepthTest(&d)

	assert.Equal(t, []string{
		"Enable(2929)",
		"DepthFunc(513)",
		"DepthMask(true)",
		"DepthRange(0, 1)",
	}, callStrings(ctx))
}

func TestSetStencilEmitsBothFaces(t *testing.T) {
	ctx := gltest.New()
	st := New(ctx)
	s := DefaultStencil()
	s.Back.Func = gl.Never

	st.SetStencilTest(&s)

	calls := ctx.Named("StencilFuncSeparate")
	require.Len(t, calls, 2)
	assert.Equal(t, gl.Front, calls[0].Args[0])
	assert.Equal(t, gl.Always, calls[0].Args[1])
	assert.Equal(t, gl.Back, calls[1].Args[0])
	assert.Equal(t, gl.Never, calls[1].Args[1])
}

func TestResetForcesReemit(t *testing.T) {
	ctx := gltest.New()
	st := New(ctx)
	b := DefaultBlend()

	st.SetBlend(&b)
	st.SetBlend(&b)
	require.NoError(t, st.Reset())
	st.SetBlend(&b)

	assert.Equal(t, 2, ctx.Count("BlendFuncSeparate"))
}

func TestLockTargetTwiceFails(t *testing.T) {
	st := New(gltest.New())
	a, b := new(int), new(int)

	require.NoError(t, st.LockTarget(a, 0, []gl.Attachment{gl.BackBuffer}))
	requireUsageError(t, st.LockTarget(b, 0, []gl.Attachment{gl.BackBuffer}))
	requireUsageError(t, st.LockTarget(a, 0, []gl.Attachment{gl.BackBuffer}))

	assert.True(t, st.IsTargetLocked(a))
	assert.False(t, st.IsTargetLocked(b))
	assert.False(t, st.IsTargetUnlocked())

	require.NoError(t, st.UnlockTarget())
	assert.True(t, st.IsTargetUnlocked())
	requireUsageError(t, st.UnlockTarget())
}

func TestLockTargetEmitsOnlyChanges(t *testing.T) {
	ctx := gltest.New()
	st := New(ctx)
	target := new(int)

	for i := 0; i < 3; i++ {
		require.NoError(t, st.LockTarget(target, 0, []gl.Attachment{gl.BackBuffer}))
		require.NoError(t, st.UnlockTarget())
	}
	assert.Zero(t, ctx.Count("BindFramebuffer"))
	assert.Zero(t, ctx.Count("DrawBuffers"))

	bufs := []gl.Attachment{gl.ColorAttachment(0), gl.ColorAttachment(1)}
	require.NoError(t, st.LockTarget(target, 4, bufs))
	require.NoError(t, st.UnlockTarget())
	require.NoError(t, st.LockTarget(target, 4, []gl.Attachment{gl.ColorAttachment(0), gl.ColorAttachment(1)}))
	require.NoError(t, st.UnlockTarget())

	assert.Equal(t, 1, ctx.Count("BindFramebuffer"))
	assert.Equal(t, 1, ctx.Count("DrawBuffers"))
}

func TestTargetAndCommandLocksAreIndependent(t *testing.T) {
	ctx := gltest.New()
	st := New(ctx)
	target, cmd := new(int), new(int)

	require.NoError(t, st.LockTarget(target, 0, []gl.Attachment{gl.BackBuffer}))
	require.NoError(t, st.LockCommand(cmd, 3))

	assert.True(t, st.IsTargetLocked(target))
	assert.True(t, st.IsCommandLocked(cmd))
	requireUsageError(t, st.LockCommand(new(int), 4))
	requireUsageError(t, st.UseProgram(5))

	require.NoError(t, st.UnlockCommand())
	assert.True(t, st.IsCommandUnlocked())
	assert.True(t, st.IsTargetLocked(target))
	require.NoError(t, st.UnlockTarget())

	assert.Equal(t, []gl.Program{3}, programs(ctx))
}

func TestLockCommandSkipsRedundantProgramBind(t *testing.T) {
	ctx := gltest.New()
	st := New(ctx)
	cmd := new(int)

	for i := 0; i < 4; i++ {
		require.NoError(t, st.LockCommand(cmd, 9))
		require.NoError(t, st.UnlockCommand())
	}

	assert.Equal(t, 1, ctx.Count("UseProgram"))
}

func TestResetWhileLockedFails(t *testing.T) {
	st := New(gltest.New())

	require.NoError(t, st.LockCommand(new(int), 1))
	requireUsageError(t, st.Reset())
	require.NoError(t, st.UnlockCommand())

	require.NoError(t, st.LockTarget(new(int), 0, nil))
	requireUsageError(t, st.Reset())
	require.NoError(t, st.UnlockTarget())

	assert.NoError(t, st.Reset())
}

func TestReadFramebufferPushPop(t *testing.T) {
	ctx := gltest.New()
	st := New(ctx)

	st.PushReadFramebuffer(6)
	require.NoError(t, st.PopReadFramebuffer())
	requireUsageError(t, st.PopReadFramebuffer())

	assert.Equal(t, []string{
		"BindFramebuffer(36008, 6)",
		"BindFramebuffer(36008, 0)",
	}, callStrings(ctx))
}

func TestTextureUnitsAreTrackedSeparately(t *testing.T) {
	ctx := gltest.New()
	st := New(ctx)

	st.BindTexture(0, gl.Texture2D, 3)
	st.BindTexture(1, gl.Texture2D, 3)
	st.BindTexture(0, gl.Texture2D, 3)
	st.BindTexture(1, gl.Texture2D, 4)

	assert.Equal(t, 3, ctx.Count("BindTexture"))
	active := ctx.Named("ActiveTexture")
	require.Len(t, active, 1, "unit 0 is active by default and unit 1 stays active")
	assert.Equal(t, []any{1}, active[0].Args)
}

func TestBindTextureForUploadActivatesUnitZero(t *testing.T) {
	ctx := gltest.New()
	st := New(ctx)

	st.BindTexture(3, gl.Texture2D, 8)
	st.BindTextureForUpload(gl.Texture2D, 9)
	st.BindTextureForUpload(gl.Texture2D, 9)

	assert.Equal(t, []string{
		"ActiveTexture(3)", "BindTexture(3553, 8)",
		"ActiveTexture(0)", "BindTexture(3553, 9)",
	}, callStrings(ctx))
}

func TestForgetTextureForcesRebind(t *testing.T) {
	ctx := gltest.New()
	st := New(ctx)

	st.BindTexture(0, gl.Texture2D, 5)
	st.ForgetTexture(5)
	st.BindTexture(0, gl.Texture2D, 5)

	assert.Equal(t, 2, ctx.Count("BindTexture"))
}

func TestForgetFramebufferForcesRebind(t *testing.T) {
	ctx := gltest.New()
	st := New(ctx)
	target := new(int)
	bufs := []gl.Attachment{gl.ColorAttachment(0)}
	bind := func() {
		require.NoError(t, st.LockTarget(target, 4, bufs))
		require.NoError(t, st.UnlockTarget())
	}

	bind()
	st.ForgetFramebuffer(4)
	bind()
	assert.Equal(t, 2, ctx.Count("BindFramebuffer"))
	assert.Equal(t, 2, ctx.Count("DrawBuffers"), "draw buffers follow the framebuffer")

	st.ForgetFramebuffer(9)
	bind()
	assert.Equal(t, 2, ctx.Count("BindFramebuffer"), "forgetting an unbound framebuffer changes nothing")
}

func TestScissorAndClearValues(t *testing.T) {
	ctx := gltest.New()
	st := New(ctx)
	r := common.NewRect(1, 2, 3, 4)

	st.SetScissor(&r)
	st.SetScissor(&common.Rect{X: 1, Y: 2, Width: 3, Height: 4})
	st.SetClearValues(common.Color{}, 1, 0)
	st.SetClearValues(common.RGBA(1, 0, 0, 1), 1, 0)

	assert.Equal(t, 1, ctx.Count("Scissor"))
	assert.Zero(t, ctx.Count("ClearDepth"))
	assert.Zero(t, ctx.Count("ClearStencil"))
	assert.Equal(t, 1, ctx.Count("ClearColor"))
}

func TestStatsCountAppliedAndSkipped(t *testing.T) {
	st := New(gltest.New())
	b := DefaultBlend()

	st.SetBlend(&b)
	st.SetBlend(&b)
	st.SetViewport(common.NewRect(0, 0, 10, 10))
	st.SetViewport(common.NewRect(0, 0, 10, 10))
	st.BindTexture(2, gl.Texture2D, 1)

	stats := st.Stats()
	assert.Equal(t, 4, stats.Applied, "the texture bind also switches the active unit")
	assert.Equal(t, 2, stats.Skipped)
}

func callStrings(ctx *gltest.Context) []string {
	var out []string
	for _, c := range ctx.Calls() {
		out = append(out, c.String())
	}
	return out
}

func programs(ctx *gltest.Context) []gl.Program {
	var out []gl.Program
	for _, c := range ctx.Named("UseProgram") {
		out = append(out, c.Args[0].(gl.Program))
	}
	return out
}
