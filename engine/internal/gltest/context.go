// Package gltest provides a recording gl.Context that runs without a GPU.
//
// The fake keeps a log of every call, allocates handles, and derives a
// program's active uniforms and attribute locations from the GLSL sources
// it was linked with, which is enough to exercise the renderer end to end.
package gltest

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/engine/gl"
)

// CompileFailMarker makes CompileShader fail when present in a source.
const CompileFailMarker = "#error"

// LinkFailMarker makes LinkProgram fail when present in either attached source.
const LinkFailMarker = "// gltest:link-error"

// Call is one recorded entry point invocation.
type Call struct {
	Name string
	Args []any
}

func (c Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = fmt.Sprint(a)
	}
	return c.Name + "(" + strings.Join(parts, ", ") + ")"
}

type object int

const (
	objShader object = iota + 1
	objProgram
	objBuffer
	objFramebuffer
	objRenderbuffer
	objTexture
	objVertexArray
)

type shader struct {
	stage    gl.ShaderStage
	source   string
	compiled bool
	log      string
}

type program struct {
	shaders  []gl.Shader
	linked   bool
	log      string
	uniforms []gl.ActiveInfo
	base     map[string]gl.Uniform
	attribs  map[string]int
	values   map[gl.Uniform]any
}

// Context is a recording fake of gl.Context.
type Context struct {
	// Status is returned by CheckFramebufferStatus. Zero means complete.
	Status gl.FramebufferStatus

	// ReuseNames makes Create* hand out the lowest deleted handle of the same
	// kind before allocating a new one, the way desktop drivers recycle names.
	ReuseNames bool

	calls    []Call
	next     uint32
	live     map[uint32]object
	freed    map[object][]uint32
	shaders  map[gl.Shader]*shader
	programs map[gl.Program]*program
	current  gl.Program
	retired  gl.Program
	lost     bool

	width      int
	height     int
	drawFB     gl.Framebuffer
	readFB     gl.Framebuffer
	activeUnit int
	textures   map[int]gl.Texture
}

var _ gl.Context = &Context{}

// New creates an empty recording context with a 300x150 drawable, the size
// of a default HTML canvas.
func New() *Context {
	return &Context{
		live:     map[uint32]object{},
		freed:    map[object][]uint32{},
		shaders:  map[gl.Shader]*shader{},
		programs: map[gl.Program]*program{},
		width:    300,
		height:   150,
		textures: map[int]gl.Texture{},
	}
}

// SetDrawableSize sets the size DrawableSize reports.
func (c *Context) SetDrawableSize(width, height int) {
	c.width, c.height = width, height
}

// DrawFramebuffer returns the framebuffer bound to the draw target.
func (c *Context) DrawFramebuffer() gl.Framebuffer {
	return c.drawFB
}

// ReadFramebuffer returns the framebuffer bound to the read target.
func (c *Context) ReadFramebuffer() gl.Framebuffer {
	return c.readFB
}

// BoundTexture returns the texture bound to a texture unit.
func (c *Context) BoundTexture(unit int) gl.Texture {
	return c.textures[unit]
}

// Calls returns a copy of the call log.
func (c *Context) Calls() []Call {
	return append([]Call(nil), c.calls...)
}

// Named returns the recorded calls to one entry point, in order.
func (c *Context) Named(name string) []Call {
	var out []Call
	for _, call := range c.calls {
		if call.Name == name {
			out = append(out, call)
		}
	}
	return out
}

// Count returns how many times an entry point was called.
func (c *Context) Count(name string) int {
	return len(c.Named(name))
}

// Last returns the most recent call to an entry point.
func (c *Context) Last(name string) (Call, bool) {
	for i := len(c.calls) - 1; i >= 0; i-- {
		if c.calls[i].Name == name {
			return c.calls[i], true
		}
	}
	return Call{}, false
}

// ClearCalls empties the call log without touching any object.
func (c *Context) ClearCalls() {
	c.calls = nil
}

// LoseContext invalidates every handle, as a browser does on context loss.
// Handles allocated afterwards never collide with the lost ones.
func (c *Context) LoseContext() {
	c.lost = true
	c.live = map[uint32]object{}
	c.shaders = map[gl.Shader]*shader{}
	c.programs = map[gl.Program]*program{}
	c.freed = map[object][]uint32{}
	c.current = 0
	c.retired = 0
	c.drawFB, c.readFB = 0, 0
	c.activeUnit = 0
	c.textures = map[int]gl.Texture{}
}

// RestoreContext ends a simulated loss. Lost handles stay invalid.
func (c *Context) RestoreContext() {
	c.lost = false
}

// UniformValue returns the last value uploaded to a location of a program.
func (c *Context) UniformValue(p gl.Program, u gl.Uniform) (any, bool) {
	prog, ok := c.programs[p]
	if !ok {
		return nil, false
	}
	v, ok := prog.values[u]
	return v, ok
}

// CurrentProgram returns the program most recently passed to UseProgram.
func (c *Context) CurrentProgram() gl.Program {
	return c.current
}

func (c *Context) record(name string, args ...any) {
	c.calls = append(c.calls, Call{Name: name, Args: args})
}

func (c *Context) alloc(kind object) uint32 {
	if free := c.freed[kind]; c.ReuseNames && len(free) > 0 {
		h := slices.Min(free)
		c.freed[kind] = slices.DeleteFunc(free, func(v uint32) bool { return v == h })
		c.live[h] = kind
		return h
	}
	c.next++
	c.live[c.next] = kind
	return c.next
}

// release drops a live handle and makes its name available for reuse.
func (c *Context) release(h uint32, kind object) {
	if !c.is(h, kind) {
		return
	}
	delete(c.live, h)
	c.freed[kind] = append(c.freed[kind], h)
}

func (c *Context) is(h uint32, kind object) bool {
	k, ok := c.live[h]
	return ok && k == kind
}

func (c *Context) CreateShader(stage gl.ShaderStage) gl.Shader {
	s := gl.Shader(c.alloc(objShader))
	c.shaders[s] = &shader{stage: stage}
	c.record("CreateShader", stage)
	return s
}

func (c *Context) ShaderSource(s gl.Shader, source string) {
	c.record("ShaderSource", s, source)
	if sh, ok := c.shaders[s]; ok {
		sh.source = source
	}
}

func (c *Context) CompileShader(s gl.Shader) {
	c.record("CompileShader", s)
	sh, ok := c.shaders[s]
	if !ok {
		return
	}
	sh.compiled = true
	sh.log = ""
	for i, line := range strings.Split(sh.source, "\n") {
		if strings.Contains(line, CompileFailMarker) {
			sh.compiled = false
			sh.log = fmt.Sprintf("ERROR: 0:%d: '%s' : compilation terminated\n", i+1, CompileFailMarker)
			return
		}
	}
}

func (c *Context) ShaderCompiled(s gl.Shader) bool {
	sh, ok := c.shaders[s]
	return ok && sh.compiled
}

func (c *Context) ShaderInfoLog(s gl.Shader) string {
	if sh, ok := c.shaders[s]; ok {
		return sh.log
	}
	return ""
}

func (c *Context) DeleteShader(s gl.Shader) {
	c.record("DeleteShader", s)
	delete(c.shaders, s)
	c.release(uint32(s), objShader)
}

func (c *Context) CreateProgram() gl.Program {
	p := gl.Program(c.alloc(objProgram))
	c.programs[p] = &program{}
	c.record("CreateProgram")
	return p
}

func (c *Context) AttachShader(p gl.Program, s gl.Shader) {
	c.record("AttachShader", p, s)
	if prog, ok := c.programs[p]; ok {
		prog.shaders = append(prog.shaders, s)
	}
}

func (c *Context) LinkProgram(p gl.Program) {
	c.record("LinkProgram", p)
	prog, ok := c.programs[p]
	if !ok {
		return
	}
	prog.linked = false
	prog.uniforms = nil
	prog.base = map[string]gl.Uniform{}
	prog.attribs = map[string]int{}
	prog.values = map[gl.Uniform]any{}

	stages := map[gl.ShaderStage]bool{}
	next := gl.Uniform(0)
	for _, s := range prog.shaders {
		sh, ok := c.shaders[s]
		if !ok || !sh.compiled {
			prog.log = "ERROR: one or more attached shaders not successfully compiled\n"
			return
		}
		if strings.Contains(sh.source, LinkFailMarker) {
			prog.log = "ERROR: Linking failed: unresolved symbol\n"
			return
		}
		stages[sh.stage] = true
		for _, u := range parseUniforms(sh.source) {
			if _, dup := prog.base[u.Name]; dup {
				continue
			}
			name := u.Name
			if u.Size > 1 {
				name += "[0]"
			}
			prog.base[u.Name] = next
			prog.uniforms = append(prog.uniforms, gl.ActiveInfo{Name: name, Size: u.Size, Type: u.Type})
			next += gl.Uniform(u.Size)
		}
		if sh.stage == gl.VertexShader {
			prog.attribs = parseAttributes(sh.source)
		}
	}
	if !stages[gl.VertexShader] || !stages[gl.FragmentShader] {
		prog.log = "ERROR: program requires a vertex and a fragment shader\n"
		return
	}
	prog.linked = true
	prog.log = ""
}

func (c *Context) ProgramLinked(p gl.Program) bool {
	prog, ok := c.programs[p]
	return ok && prog.linked
}

func (c *Context) ProgramInfoLog(p gl.Program) string {
	if prog, ok := c.programs[p]; ok {
		return prog.log
	}
	return ""
}

// DeleteProgram keeps the program in use if it is current, as GL does, and
// frees its name once another program replaces it.
func (c *Context) DeleteProgram(p gl.Program) {
	c.record("DeleteProgram", p)
	if p != 0 && p == c.current {
		c.retired = p
		return
	}
	delete(c.programs, p)
	c.release(uint32(p), objProgram)
}

func (c *Context) IsProgram(p gl.Program) bool {
	return c.is(uint32(p), objProgram)
}

func (c *Context) UseProgram(p gl.Program) {
	c.record("UseProgram", p)
	c.current = p
	if c.retired != 0 && c.retired != p {
		delete(c.programs, c.retired)
		c.release(uint32(c.retired), objProgram)
		c.retired = 0
	}
}

func (c *Context) ActiveUniforms(p gl.Program) int {
	if prog, ok := c.programs[p]; ok {
		return len(prog.uniforms)
	}
	return 0
}

func (c *Context) ActiveUniform(p gl.Program, index int) gl.ActiveInfo {
	return c.programs[p].uniforms[index]
}

var indexed = regexp.MustCompile(`^(\w+)\[(\d+)\]$`)

func (c *Context) UniformLocation(p gl.Program, name string) gl.Uniform {
	prog, ok := c.programs[p]
	if !ok || !prog.linked {
		return gl.NoUniform
	}
	if loc, ok := prog.base[name]; ok {
		return loc
	}
	if m := indexed.FindStringSubmatch(name); m != nil {
		loc, ok := prog.base[m[1]]
		if !ok {
			return gl.NoUniform
		}
		i, _ := strconv.Atoi(m[2])
		for _, u := range prog.uniforms {
			if strings.TrimSuffix(u.Name, "[0]") == m[1] && i < u.Size {
				return loc + gl.Uniform(i)
			}
		}
	}
	return gl.NoUniform
}

func (c *Context) AttribLocation(p gl.Program, name string) int {
	prog, ok := c.programs[p]
	if !ok || !prog.linked {
		return -1
	}
	if loc, ok := prog.attribs[name]; ok {
		return loc
	}
	return -1
}

func (c *Context) upload(name string, u gl.Uniform, v any) {
	c.record(name, u, v)
	if prog, ok := c.programs[c.current]; ok && u.Valid() {
		prog.values[u] = v
	}
}

func (c *Context) Uniform1fv(u gl.Uniform, v []float32) {
	c.upload("Uniform1fv", u, append([]float32(nil), v...))
}

func (c *Context) Uniform2fv(u gl.Uniform, v []float32) {
	c.upload("Uniform2fv", u, append([]float32(nil), v...))
}

func (c *Context) Uniform3fv(u gl.Uniform, v []float32) {
	c.upload("Uniform3fv", u, append([]float32(nil), v...))
}

func (c *Context) Uniform4fv(u gl.Uniform, v []float32) {
	c.upload("Uniform4fv", u, append([]float32(nil), v...))
}

func (c *Context) Uniform1iv(u gl.Uniform, v []int32) {
	c.upload("Uniform1iv", u, append([]int32(nil), v...))
}

func (c *Context) Uniform2iv(u gl.Uniform, v []int32) {
	c.upload("Uniform2iv", u, append([]int32(nil), v...))
}

func (c *Context) Uniform3iv(u gl.Uniform, v []int32) {
	c.upload("Uniform3iv", u, append([]int32(nil), v...))
}

func (c *Context) Uniform4iv(u gl.Uniform, v []int32) {
	c.upload("Uniform4iv", u, append([]int32(nil), v...))
}

func (c *Context) Uniform1uiv(u gl.Uniform, v []uint32) {
	c.upload("Uniform1uiv", u, append([]uint32(nil), v...))
}

func (c *Context) Uniform2uiv(u gl.Uniform, v []uint32) {
	c.upload("Uniform2uiv", u, append([]uint32(nil), v...))
}

func (c *Context) Uniform3uiv(u gl.Uniform, v []uint32) {
	c.upload("Uniform3uiv", u, append([]uint32(nil), v...))
}

func (c *Context) Uniform4uiv(u gl.Uniform, v []uint32) {
	c.upload("Uniform4uiv", u, append([]uint32(nil), v...))
}

func (c *Context) UniformMatrix2fv(u gl.Uniform, v []float32) {
	c.upload("UniformMatrix2fv", u, append([]float32(nil), v...))
}

func (c *Context) UniformMatrix3fv(u gl.Uniform, v []float32) {
	c.upload("UniformMatrix3fv", u, append([]float32(nil), v...))
}

func (c *Context) UniformMatrix4fv(u gl.Uniform, v []float32) {
	c.upload("UniformMatrix4fv", u, append([]float32(nil), v...))
}

func (c *Context) Enable(capability gl.Capability) { c.record("Enable", capability) }

func (c *Context) Disable(capability gl.Capability) { c.record("Disable", capability) }

func (c *Context) DepthFunc(f gl.CompareFunc) { c.record("DepthFunc", f) }

func (c *Context) DepthMask(write bool) { c.record("DepthMask", write) }

func (c *Context) DepthRange(near, far float32) { c.record("DepthRange", near, far) }

func (c *Context) StencilFuncSeparate(face gl.Face, f gl.CompareFunc, ref int32, mask uint32) {
	c.record("StencilFuncSeparate", face, f, ref, mask)
}

func (c *Context) StencilOpSeparate(face gl.Face, fail, zfail, zpass gl.StencilOp) {
	c.record("StencilOpSeparate", face, fail, zfail, zpass)
}

func (c *Context) StencilMaskSeparate(face gl.Face, mask uint32) {
	c.record("StencilMaskSeparate", face, mask)
}

func (c *Context) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha gl.BlendFactor) {
	c.record("BlendFuncSeparate", srcRGB, dstRGB, srcAlpha, dstAlpha)
}

func (c *Context) BlendEquationSeparate(rgb, alpha gl.BlendEquation) {
	c.record("BlendEquationSeparate", rgb, alpha)
}

func (c *Context) BlendColor(r, g, b, a float32) { c.record("BlendColor", r, g, b, a) }

func (c *Context) Viewport(x, y, width, height int) {
	c.record("Viewport", x, y, width, height)
}

func (c *Context) Scissor(x, y, width, height int) {
	c.record("Scissor", x, y, width, height)
}

func (c *Context) ClearColor(r, g, b, a float32) { c.record("ClearColor", r, g, b, a) }

func (c *Context) ClearDepth(d float32) { c.record("ClearDepth", d) }

func (c *Context) ClearStencil(s int32) { c.record("ClearStencil", s) }

func (c *Context) Clear(mask gl.BufferBits) { c.record("Clear", mask) }

func (c *Context) CreateFramebuffer() gl.Framebuffer {
	c.record("CreateFramebuffer")
	return gl.Framebuffer(c.alloc(objFramebuffer))
}

func (c *Context) DeleteFramebuffer(fb gl.Framebuffer) {
	c.record("DeleteFramebuffer", fb)
	if !c.is(uint32(fb), objFramebuffer) {
		return
	}
	if c.drawFB == fb {
		c.drawFB = 0
	}
	if c.readFB == fb {
		c.readFB = 0
	}
	c.release(uint32(fb), objFramebuffer)
}

func (c *Context) IsFramebuffer(fb gl.Framebuffer) bool {
	return c.is(uint32(fb), objFramebuffer)
}

func (c *Context) BindFramebuffer(target gl.FramebufferTarget, fb gl.Framebuffer) {
	c.record("BindFramebuffer", target, fb)
	switch target {
	case gl.DrawFramebuffer:
		c.drawFB = fb
	case gl.ReadFramebuffer:
		c.readFB = fb
	default:
		c.drawFB, c.readFB = fb, fb
	}
}

func (c *Context) FramebufferTexture2D(target gl.FramebufferTarget, attachment gl.Attachment, texTarget gl.TextureTarget, t gl.Texture, level int) {
	c.record("FramebufferTexture2D", target, attachment, texTarget, t, level)
}

func (c *Context) FramebufferTextureLayer(target gl.FramebufferTarget, attachment gl.Attachment, t gl.Texture, level, layer int) {
	c.record("FramebufferTextureLayer", target, attachment, t, level, layer)
}

func (c *Context) FramebufferRenderbuffer(target gl.FramebufferTarget, attachment gl.Attachment, rb gl.Renderbuffer) {
	c.record("FramebufferRenderbuffer", target, attachment, rb)
}

func (c *Context) CheckFramebufferStatus(target gl.FramebufferTarget) gl.FramebufferStatus {
	c.record("CheckFramebufferStatus", target)
	if c.Status == 0 {
		return gl.FramebufferComplete
	}
	return c.Status
}

func (c *Context) DrawBuffers(bufs []gl.Attachment) {
	c.record("DrawBuffers", append([]gl.Attachment(nil), bufs...))
}

func (c *Context) BlitFramebuffer(srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1 int, mask gl.BufferBits, filter gl.Filter) {
	c.record("BlitFramebuffer", srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1, mask, filter)
}

func (c *Context) CreateRenderbuffer() gl.Renderbuffer {
	c.record("CreateRenderbuffer")
	return gl.Renderbuffer(c.alloc(objRenderbuffer))
}

func (c *Context) DeleteRenderbuffer(rb gl.Renderbuffer) {
	c.record("DeleteRenderbuffer", rb)
	c.release(uint32(rb), objRenderbuffer)
}

func (c *Context) IsRenderbuffer(rb gl.Renderbuffer) bool {
	return c.is(uint32(rb), objRenderbuffer)
}

func (c *Context) BindRenderbuffer(rb gl.Renderbuffer) { c.record("BindRenderbuffer", rb) }

func (c *Context) RenderbufferStorageMultisample(samples int, format gl.InternalFormat, width, height int) {
	c.record("RenderbufferStorageMultisample", samples, format, width, height)
}

func (c *Context) CreateBuffer() gl.Buffer {
	c.record("CreateBuffer")
	return gl.Buffer(c.alloc(objBuffer))
}

func (c *Context) DeleteBuffer(b gl.Buffer) {
	c.record("DeleteBuffer", b)
	c.release(uint32(b), objBuffer)
}

func (c *Context) IsBuffer(b gl.Buffer) bool {
	return c.is(uint32(b), objBuffer)
}

func (c *Context) BindBuffer(target gl.BufferTarget, b gl.Buffer) {
	c.record("BindBuffer", target, b)
}

func (c *Context) BufferData(target gl.BufferTarget, data []byte, usage gl.BufferUsage) {
	c.record("BufferData", target, len(data), usage)
}

func (c *Context) BufferSubData(target gl.BufferTarget, offset int, data []byte) {
	c.record("BufferSubData", target, offset, len(data))
}

func (c *Context) CreateVertexArray() gl.VertexArray {
	c.record("CreateVertexArray")
	return gl.VertexArray(c.alloc(objVertexArray))
}

func (c *Context) DeleteVertexArray(a gl.VertexArray) {
	c.record("DeleteVertexArray", a)
	c.release(uint32(a), objVertexArray)
}

func (c *Context) IsVertexArray(a gl.VertexArray) bool {
	return c.is(uint32(a), objVertexArray)
}

func (c *Context) BindVertexArray(a gl.VertexArray) { c.record("BindVertexArray", a) }

func (c *Context) EnableVertexAttribArray(location int) {
	c.record("EnableVertexAttribArray", location)
}

func (c *Context) VertexAttribPointer(location, size int, typ gl.DataType, normalized bool, stride, offset int) {
	c.record("VertexAttribPointer", location, size, typ, normalized, stride, offset)
}

func (c *Context) VertexAttribIPointer(location, size int, typ gl.DataType, stride, offset int) {
	c.record("VertexAttribIPointer", location, size, typ, stride, offset)
}

func (c *Context) VertexAttribDivisor(location, divisor int) {
	c.record("VertexAttribDivisor", location, divisor)
}

func (c *Context) CreateTexture() gl.Texture {
	c.record("CreateTexture")
	return gl.Texture(c.alloc(objTexture))
}

func (c *Context) DeleteTexture(t gl.Texture) {
	c.record("DeleteTexture", t)
	if !c.is(uint32(t), objTexture) {
		return
	}
	for unit, bound := range c.textures {
		if bound == t {
			c.textures[unit] = 0
		}
	}
	c.release(uint32(t), objTexture)
}

func (c *Context) IsTexture(t gl.Texture) bool {
	return c.is(uint32(t), objTexture)
}

func (c *Context) ActiveTexture(unit int) {
	c.record("ActiveTexture", unit)
	c.activeUnit = unit
}

func (c *Context) BindTexture(target gl.TextureTarget, t gl.Texture) {
	c.record("BindTexture", target, t)
	c.textures[c.activeUnit] = t
}

func (c *Context) TexImage2D(target gl.TextureTarget, level int, internal gl.InternalFormat, width, height int, format gl.Format, typ gl.DataType, data []byte) {
	c.record("TexImage2D", target, level, internal, width, height, format, typ, len(data))
}

func (c *Context) TexParameteri(target gl.TextureTarget, param gl.TextureParameter, value int32) {
	c.record("TexParameteri", target, param, value)
}

func (c *Context) GenerateMipmap(target gl.TextureTarget) { c.record("GenerateMipmap", target) }

func (c *Context) DrawArrays(mode gl.Primitive, first, count int) {
	c.record("DrawArrays", mode, first, count)
}

func (c *Context) DrawElements(mode gl.Primitive, count int, typ gl.DataType, offset int) {
	c.record("DrawElements", mode, count, typ, offset)
}

func (c *Context) DrawArraysInstanced(mode gl.Primitive, first, count, instances int) {
	c.record("DrawArraysInstanced", mode, first, count, instances)
}

func (c *Context) DrawElementsInstanced(mode gl.Primitive, count int, typ gl.DataType, offset, instances int) {
	c.record("DrawElementsInstanced", mode, count, typ, offset, instances)
}

func (c *Context) ShadingLanguageVersion() string {
	return "300 es"
}

func (c *Context) DrawableSize() (int, int) {
	return c.width, c.height
}

func (c *Context) IsContextLost() bool {
	return c.lost
}
