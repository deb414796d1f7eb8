// Package command builds draw commands: a linked program, its fixed-function
// configuration, and a binding plan that splits uniforms into values uploaded
// once and values evaluated from the props of every draw.
package command

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/gl"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/state"
)

// Texture is anything that can be bound to a texture unit.
type Texture interface {
	// Handle returns the texture object.
	Handle() gl.Texture
	// Target returns the binding point the texture was created for.
	Target() gl.TextureTarget
}

type uniformDecl[P any] struct {
	name    string
	uniform Uniform[P]
}

type textureDecl[P any] struct {
	name     string
	fn       func(props P, batchIndex int) Texture
	unit     int
	location gl.Uniform
	// target is the binding point the sampler reads, 0 when unchecked.
	target gl.TextureTarget
}

// resolvedUniform is a constant uniform after its upload. The value is kept
// only so Restore can upload it again.
type resolvedUniform struct {
	name     string
	location gl.Uniform
	typ      gl.UniformType
	value    Value
}

type dynamicUniform[P any] struct {
	name     string
	location gl.Uniform
	typ      gl.UniformType
	fn       func(props P, batchIndex int) Value
}

// Command is a compiled program plus everything needed to draw with it.
// P is the props type passed to every draw; dynamic uniforms and textures are
// functions of it.
type Command[P any] struct {
	st  *state.State
	ctx gl.Context

	vertexSource   string
	fragmentSource string
	defines        [][2]string

	program gl.Program
	depth   *state.DepthDescriptor
	stencil *state.StencilDescriptor
	blend   *state.BlendDescriptor

	uniforms []uniformDecl[P]
	textures []textureDecl[P]
	resolved []resolvedUniform
	dynamic  []dynamicUniform[P]
}

// New compiles and links the program, validates the declared uniforms against
// it (unless built with the release tag), assigns texture units, uploads every
// constant uniform and keeps the dynamic ones for draw time.
//
// Parameters:
//   - st: the pipeline state of the device the command draws on
//   - vertexSource: the vertex shader GLSL, @oxy: annotations allowed
//   - fragmentSource: the fragment shader GLSL, @oxy: annotations allowed
//   - opts: uniform, texture, fixed-function and define options
//
// Returns:
//   - *Command[P]: the ready command
//   - error: *shader.CompileError, *shader.LinkError, *DeclarationError,
//     *LocationError, or *state.UsageError if a command is locked
func New[P any](st *state.State, vertexSource, fragmentSource string, opts ...Option[P]) (*Command[P], error) {
	c := &Command[P]{
		st:             st,
		ctx:            st.Context(),
		vertexSource:   vertexSource,
		fragmentSource: fragmentSource,
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.build(); err != nil {
		return nil, err
	}
	return c, nil
}

// build runs the compile, validate and resolve steps shared by New and Restore.
func (c *Command[P]) build() error {
	if !c.st.IsCommandUnlocked() {
		return &state.UsageError{Op: "build command", Reason: "a command is locked"}
	}

	ppOpts := []shader.PreProcessorOption{shader.WithVersion(c.ctx.ShadingLanguageVersion())}
	for _, d := range c.defines {
		ppOpts = append(ppOpts, shader.WithDefine(d[0], d[1]))
	}
	program, err := shader.Build(c.ctx, shader.NewPreProcessor(ppOpts...), c.vertexSource, c.fragmentSource)
	if err != nil {
		return err
	}

	fail := func(err error) error {
		c.ctx.DeleteProgram(program)
		c.st.ForgetProgram(program)
		return err
	}

	if declarationChecks {
		if err := c.validate(program); err != nil {
			return fail(err)
		}
	}

	if err := c.st.UseProgram(program); err != nil {
		return fail(err)
	}

	for i := range c.textures {
		t := &c.textures[i]
		t.unit = i
		t.location = c.ctx.UniformLocation(program, normalizeName(t.name))
		if !t.location.Valid() {
			return fail(&LocationError{Kind: "texture", Name: t.name})
		}
		c.ctx.Uniform1iv(t.location, []int32{int32(t.unit)})
	}

	c.resolved = c.resolved[:0]
	c.dynamic = c.dynamic[:0]
	for _, d := range c.uniforms {
		loc := c.ctx.UniformLocation(program, normalizeName(d.name))
		if !loc.Valid() {
			return fail(&LocationError{Kind: "uniform", Name: d.name})
		}
		if d.uniform.IsDynamic() {
			c.dynamic = append(c.dynamic, dynamicUniform[P]{name: d.name, location: loc, typ: d.uniform.typ, fn: d.uniform.dynamic})
			continue
		}
		upload(c.ctx, loc, d.uniform.typ, d.uniform.constant)
		c.resolved = append(c.resolved, resolvedUniform{name: d.name, location: loc, typ: d.uniform.typ, value: d.uniform.constant})
	}

	c.program = program
	return nil
}

// Program returns the linked program handle.
func (c *Command[P]) Program() gl.Program {
	return c.program
}

// State returns the pipeline state the command was built against.
func (c *Command[P]) State() *state.State {
	return c.st
}

// Depth returns the depth descriptor, nil when depth testing is disabled.
func (c *Command[P]) Depth() *state.DepthDescriptor {
	return c.depth
}

// Stencil returns the stencil descriptor, nil when stencil testing is disabled.
func (c *Command[P]) Stencil() *state.StencilDescriptor {
	return c.stencil
}

// Blend returns the blend descriptor, nil when blending is disabled.
func (c *Command[P]) Blend() *state.BlendDescriptor {
	return c.blend
}

// DynamicUniforms returns the names of the uniforms evaluated on every draw.
func (c *Command[P]) DynamicUniforms() []string {
	names := make([]string, len(c.dynamic))
	for i, d := range c.dynamic {
		names[i] = d.name
	}
	return names
}

// ResolvedUniforms returns the names of the constant uniforms uploaded at build time.
func (c *Command[P]) ResolvedUniforms() []string {
	names := make([]string, len(c.resolved))
	for i, r := range c.resolved {
		names[i] = r.name
	}
	return names
}

// TextureUnit returns the texture unit assigned to a declared texture.
//
// Returns:
//   - int: the unit
//   - bool: false if no texture of that name was declared
func (c *Command[P]) TextureUnit(name string) (int, bool) {
	for _, t := range c.textures {
		if t.name == name {
			return t.unit, true
		}
	}
	return 0, false
}

// AttributeLocation resolves a vertex input name to the location Attributes expects.
//
// Parameters:
//   - name: the vertex shader input name
//
// Returns:
//   - int: the attribute location
//   - error: a *LocationError if the program has no such active input
func (c *Command[P]) AttributeLocation(name string) (int, error) {
	loc := c.ctx.AttribLocation(c.program, name)
	if loc < 0 {
		return -1, &LocationError{Kind: "attribute", Name: name}
	}
	return loc, nil
}

// Lock takes the Command lock of the state, binds the program if needed and
// applies the fixed-function descriptors.
//
// Returns:
//   - error: a *state.UsageError if another command is locked
func (c *Command[P]) Lock() error {
	if err := c.st.LockCommand(c, c.program); err != nil {
		return err
	}
	c.st.SetDepthTest(c.depth)
	c.st.SetStencilTest(c.stencil)
	c.st.SetBlend(c.blend)
	return nil
}

// Unlock releases the Command lock taken by Lock.
func (c *Command[P]) Unlock() error {
	if !c.st.IsCommandLocked(c) {
		return &state.UsageError{Op: "unlock command", Reason: "command is not locked"}
	}
	return c.st.UnlockCommand()
}

// Apply binds the textures and uploads the dynamic uniforms for one draw.
// Constant uniforms are not touched.
//
// Parameters:
//   - props: the draw props
//   - batchIndex: the index of the draw within its batch, 0 for single draws
//
// Returns:
//   - error: a *state.UsageError if the command is not locked, or a
//     *DeclarationError if a texture's target does not fit its sampler
func (c *Command[P]) Apply(props P, batchIndex int) error {
	if !c.st.IsCommandLocked(c) {
		return &state.UsageError{Op: "apply command", Reason: "command is not locked"}
	}
	for _, t := range c.textures {
		tex := t.fn(props, batchIndex)
		if tex == nil {
			return fmt.Errorf("texture %q: accessor returned nil", t.name)
		}
		if t.target != 0 && tex.Target() != t.target {
			return &DeclarationError{Mismatched: []string{
				fmt.Sprintf("%s (bound %s texture, program samples %s)", t.name, tex.Target(), t.target),
			}}
		}
		c.st.BindTexture(t.unit, tex.Target(), tex.Handle())
	}
	for _, d := range c.dynamic {
		upload(c.ctx, d.location, d.typ, d.fn(props, batchIndex))
	}
	return nil
}

// Restore rebuilds the program if its handle is no longer valid, e.g. after a
// context loss, repeating compilation, validation, unit assignment and constant upload.
// It does nothing while the program is still alive.
//
// Returns:
//   - error: any error New can return
func (c *Command[P]) Restore() error {
	if c.ctx.IsProgram(c.program) {
		return nil
	}
	common.Logger().Warn("restoring command program", "program", c.program)
	c.st.ForgetProgram(c.program)
	if err := c.build(); err != nil {
		return fmt.Errorf("failed to restore command: %w", err)
	}
	return nil
}

// Delete releases the program. The command must not be used afterwards.
func (c *Command[P]) Delete() {
	c.ctx.DeleteProgram(c.program)
	c.st.ForgetProgram(c.program)
}

// normalizeName strips the array shorthand drivers report for the first element.
func normalizeName(name string) string {
	return strings.TrimSuffix(name, "[0]")
}
