// Package state mirrors the pipeline configuration of one graphics context.
//
// Every mutation funnels through a Stack that diffs against the remembered
// value, so redundant GL calls are never emitted. State also owns the two
// reentrancy guards of the renderer: the Target lock and the Command lock.
package state

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/gl"
)

// TextureBinding is the texture bound to one texture unit.
type TextureBinding struct {
	Target  gl.TextureTarget
	Texture gl.Texture
}

// Stats counts state transitions since the State was created.
type Stats struct {
	// Applied is the number of transitions forwarded to the context.
	Applied int
	// Skipped is the number of transitions dropped because nothing changed.
	Skipped int
}

type tracked interface {
	Invalidate()
	Stats() (applied, skipped int)
}

// State is the device-wide mirror of pipeline state. It is not safe for
// concurrent use; like the context it wraps, it belongs to one goroutine.
type State struct {
	ctx gl.Context

	depth        *Stack[*DepthDescriptor]
	stencil      *Stack[*StencilDescriptor]
	blend        *Stack[*BlendDescriptor]
	program      *Stack[gl.Program]
	vertexArray  *Stack[gl.VertexArray]
	drawFB       *Stack[gl.Framebuffer]
	readFB       *Stack[gl.Framebuffer]
	drawBuffers  *Stack[[]gl.Attachment]
	viewport     *Stack[common.Rect]
	scissor      *Stack[*common.Rect]
	clearColor   *Stack[common.Color]
	clearDepth   *Stack[float32]
	clearStencil *Stack[int32]
	activeUnit   *Stack[int]
	textures     map[int]*Stack[TextureBinding]

	all []tracked

	target  any
	command any
}

// New creates a State whose remembered values are the GL defaults of a fresh context.
//
// Parameters:
//   - ctx: the graphics context every transition is emitted to
//
// Returns:
//   - *State: the new state mirror
func New(ctx gl.Context) *State {
	s := &State{ctx: ctx, textures: map[int]*Stack[TextureBinding]{}}

	s.depth = NewStack("depth", (*DepthDescriptor)(nil), equalOptional[DepthDescriptor], s.applyDepth)
	s.stencil = NewStack("stencil", (*StencilDescriptor)(nil), equalOptional[StencilDescriptor], s.applyStencil)
	s.blend = NewStack("blend", (*BlendDescriptor)(nil), equalOptional[BlendDescriptor], s.applyBlend)
	s.program = NewComparableStack("program", 0, func(_, p gl.Program) {
		ctx.UseProgram(p)
	})
	s.vertexArray = NewComparableStack("vertex array", 0, func(_, a gl.VertexArray) {
		ctx.BindVertexArray(a)
	})
	s.drawFB = NewComparableStack("draw framebuffer", 0, func(_, fb gl.Framebuffer) {
		ctx.BindFramebuffer(gl.DrawFramebuffer, fb)
		// The draw-buffer list belongs to the bound framebuffer.
		s.drawBuffers.Invalidate()
	})
	s.readFB = NewComparableStack("read framebuffer", 0, func(_, fb gl.Framebuffer) {
		ctx.BindFramebuffer(gl.ReadFramebuffer, fb)
	})
	s.drawBuffers = NewStack("draw buffers", []gl.Attachment{gl.BackBuffer}, slices.Equal[[]gl.Attachment], func(_, bufs []gl.Attachment) {
		ctx.DrawBuffers(bufs)
	})
	s.viewport = NewComparableStack("viewport", common.Rect{}, func(_, r common.Rect) {
		ctx.Viewport(r.X, r.Y, r.Width, r.Height)
	})
	s.scissor = NewStack("scissor", (*common.Rect)(nil), equalOptional[common.Rect], func(_, r *common.Rect) {
		if r == nil {
			ctx.Disable(gl.ScissorTest)
			return
		}
		ctx.Enable(gl.ScissorTest)
		ctx.Scissor(r.X, r.Y, r.Width, r.Height)
	})
	s.clearColor = NewComparableStack("clear color", common.Color{}, func(_, c common.Color) {
		ctx.ClearColor(c.R, c.G, c.B, c.A)
	})
	s.clearDepth = NewComparableStack("clear depth", float32(1), func(_, d float32) {
		ctx.ClearDepth(d)
	})
	s.clearStencil = NewComparableStack("clear stencil", int32(0), func(_, v int32) {
		ctx.ClearStencil(v)
	})

	s.activeUnit = NewComparableStack("active texture unit", 0, func(_, unit int) {
		ctx.ActiveTexture(unit)
	})

	s.all = []tracked{
		s.depth, s.stencil, s.blend, s.program, s.vertexArray, s.drawFB, s.readFB,
		s.drawBuffers, s.viewport, s.scissor, s.clearColor, s.clearDepth, s.clearStencil,
		s.activeUnit,
	}
	return s
}

// Context returns the graphics context this State mirrors.
func (s *State) Context() gl.Context {
	return s.ctx
}

func (s *State) applyDepth(_, d *DepthDescriptor) {
	if d == nil {
		s.ctx.Disable(gl.DepthTest)
		return
	}
	s.ctx.Enable(gl.DepthTest)
	s.ctx.DepthFunc(d.Func)
	s.ctx.DepthMask(d.Mask)
	s.ctx.DepthRange(d.Near, d.Far)
}

func (s *State) applyStencil(_, d *StencilDescriptor) {
	if d == nil {
		s.ctx.Disable(gl.StencilTest)
		return
	}
	s.ctx.Enable(gl.StencilTest)
	for _, f := range []struct {
		face gl.Face
		cfg  StencilFace
	}{{gl.Front, d.Front}, {gl.Back, d.Back}} {
		s.ctx.StencilFuncSeparate(f.face, f.cfg.Func, f.cfg.Ref, f.cfg.ValueMask)
		s.ctx.StencilOpSeparate(f.face, f.cfg.Fail, f.cfg.ZFail, f.cfg.ZPass)
		s.ctx.StencilMaskSeparate(f.face, f.cfg.WriteMask)
	}
}

func (s *State) applyBlend(_, d *BlendDescriptor) {
	if d == nil {
		s.ctx.Disable(gl.Blend)
		return
	}
	s.ctx.Enable(gl.Blend)
	s.ctx.BlendFuncSeparate(d.SrcRGB, d.DstRGB, d.SrcAlpha, d.DstAlpha)
	s.ctx.BlendEquationSeparate(d.EquationRGB, d.EquationAlpha)
	s.ctx.BlendColor(d.Color[0], d.Color[1], d.Color[2], d.Color[3])
}

// SetDepthTest applies a depth configuration, nil to disable depth testing.
func (s *State) SetDepthTest(d *DepthDescriptor) {
	s.depth.Set(d)
}

// SetStencilTest applies a stencil configuration, nil to disable stencil testing.
func (s *State) SetStencilTest(d *StencilDescriptor) {
	s.stencil.Set(d)
}

// SetBlend applies a blend configuration, nil to disable blending.
func (s *State) SetBlend(d *BlendDescriptor) {
	s.blend.Set(d)
}

// SetViewport sets the viewport rectangle.
func (s *State) SetViewport(r common.Rect) {
	s.viewport.Set(r)
}

// SetScissor sets the scissor box, nil to disable the scissor test.
func (s *State) SetScissor(r *common.Rect) {
	s.scissor.Set(r)
}

// SetClearValues sets the values written by the next clear.
func (s *State) SetClearValues(color common.Color, depth float32, stencil int32) {
	s.clearColor.Set(color)
	s.clearDepth.Set(depth)
	s.clearStencil.Set(stencil)
}

// UseProgram makes p the current program outside of any Command lock,
// e.g. to upload constant uniforms while a program is being built.
//
// Returns:
//   - error: a *UsageError if a Command is locked, since its program would be replaced
func (s *State) UseProgram(p gl.Program) error {
	if s.command != nil {
		return &UsageError{Op: "use program", Reason: "a command is locked"}
	}
	s.program.Set(p)
	return nil
}

// ForgetProgram drops p from the remembered state after it was deleted, so
// the handle is never assumed to still be bound.
func (s *State) ForgetProgram(p gl.Program) {
	if s.program.Peek() == p {
		s.program.Invalidate()
	}
}

// PushVertexArray binds a vertex array until the matching PopVertexArray.
func (s *State) PushVertexArray(a gl.VertexArray) {
	s.vertexArray.Push(a)
}

// PopVertexArray restores the vertex array bound before the last push.
func (s *State) PopVertexArray() error {
	_, err := s.vertexArray.Pop()
	return err
}

// PushReadFramebuffer binds a read framebuffer until the matching PopReadFramebuffer.
func (s *State) PushReadFramebuffer(fb gl.Framebuffer) {
	s.readFB.Push(fb)
}

// PopReadFramebuffer restores the read framebuffer bound before the last push.
func (s *State) PopReadFramebuffer() error {
	_, err := s.readFB.Pop()
	return err
}

// PushDrawFramebuffer binds a draw framebuffer for setup work such as attaching storage.
func (s *State) PushDrawFramebuffer(fb gl.Framebuffer) {
	s.drawFB.Push(fb)
}

// PopDrawFramebuffer restores the draw framebuffer bound before the last push.
func (s *State) PopDrawFramebuffer() error {
	_, err := s.drawFB.Pop()
	return err
}

// ForgetFramebuffer drops fb from the remembered bindings after it was deleted.
// GL rebinds the default framebuffer in its place and may hand the same name
// to the next framebuffer created, which must then be bound again.
func (s *State) ForgetFramebuffer(fb gl.Framebuffer) {
	if fb == 0 {
		return
	}
	if s.drawFB.Peek() == fb {
		s.drawFB.Invalidate()
	}
	if s.readFB.Peek() == fb {
		s.readFB.Invalidate()
	}
}

// BindTexture binds a texture to a texture unit.
func (s *State) BindTexture(unit int, target gl.TextureTarget, t gl.Texture) {
	st, ok := s.textures[unit]
	if !ok {
		st = NewComparableStack("texture unit", TextureBinding{Target: gl.Texture2D}, func(_, b TextureBinding) {
			s.activeUnit.Set(unit)
			s.ctx.BindTexture(b.Target, b.Texture)
		})
		s.textures[unit] = st
		s.all = append(s.all, st)
	}
	st.Set(TextureBinding{Target: target, Texture: t})
}

// BindTextureForUpload binds t on unit 0 and makes unit 0 active, so that
// TexImage2D and TexParameteri calls reach t.
func (s *State) BindTextureForUpload(target gl.TextureTarget, t gl.Texture) {
	s.BindTexture(0, target, t)
	s.activeUnit.Set(0)
}

// ForgetTexture drops t from every unit after it was deleted.
func (s *State) ForgetTexture(t gl.Texture) {
	for _, st := range s.textures {
		if st.Peek().Texture == t {
			st.Invalidate()
		}
	}
}

// LockTarget binds a Target's framebuffer and draw buffers and records it as
// the only Target allowed to issue work until UnlockTarget.
// The framebuffer and draw-buffer list are re-emitted only if they changed.
//
// Parameters:
//   - target: identity of the locking Target
//   - fb: framebuffer handle, 0 for the back buffer
//   - drawBuffers: the attachment list written by fragment outputs
//
// Returns:
//   - error: a *UsageError if a Target is already locked
func (s *State) LockTarget(target any, fb gl.Framebuffer, drawBuffers []gl.Attachment) error {
	if s.target != nil {
		return &UsageError{Op: "lock target", Reason: "another target is already locked"}
	}
	s.drawFB.Set(fb)
	s.drawBuffers.Set(drawBuffers)
	s.target = target
	return nil
}

// UnlockTarget releases the Target lock.
//
// Returns:
//   - error: a *UsageError if no Target is locked
func (s *State) UnlockTarget() error {
	if s.target == nil {
		return &UsageError{Op: "unlock target", Reason: "no target is locked"}
	}
	s.target = nil
	return nil
}

// LockCommand binds a Command's program and records it as the only Command
// allowed to draw until UnlockCommand. The program is re-emitted only if it changed.
//
// Parameters:
//   - command: identity of the locking Command
//   - p: the Command's linked program
//
// Returns:
//   - error: a *UsageError if a Command is already locked
func (s *State) LockCommand(command any, p gl.Program) error {
	if s.command != nil {
		return &UsageError{Op: "lock command", Reason: "another command is already locked"}
	}
	s.program.Set(p)
	s.command = command
	return nil
}

// UnlockCommand releases the Command lock.
//
// Returns:
//   - error: a *UsageError if no Command is locked
func (s *State) UnlockCommand() error {
	if s.command == nil {
		return &UsageError{Op: "unlock command", Reason: "no command is locked"}
	}
	s.command = nil
	return nil
}

// IsTargetLocked reports whether t holds the Target lock.
func (s *State) IsTargetLocked(t any) bool {
	return s.target != nil && s.target == t
}

// IsCommandLocked reports whether c holds the Command lock.
func (s *State) IsCommandLocked(c any) bool {
	return s.command != nil && s.command == c
}

// IsTargetUnlocked reports whether no Target holds the lock.
func (s *State) IsTargetUnlocked() bool {
	return s.target == nil
}

// IsCommandUnlocked reports whether no Command holds the lock.
func (s *State) IsCommandUnlocked() bool {
	return s.command == nil
}

// Reset forgets every remembered value so the next transition of each kind is
// always emitted. Use it after foreign code touched the context or after the
// context was restored.
//
// Returns:
//   - error: a *UsageError if a Target or Command is locked
func (s *State) Reset() error {
	if s.target != nil || s.command != nil {
		return &UsageError{Op: "reset", Reason: "cannot reset while a target or command is locked"}
	}
	for _, t := range s.all {
		t.Invalidate()
	}
	common.Logger().Debug("pipeline state reset", "stacks", len(s.all))
	return nil
}

// Stats sums the transition counters of every tracked kind of state.
func (s *State) Stats() Stats {
	var out Stats
	for _, t := range s.all {
		a, k := t.Stats()
		out.Applied += a
		out.Skipped += k
	}
	return out
}
