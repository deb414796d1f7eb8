//go:build !js

// Package glcore implements gl.Context on desktop OpenGL 3.3 core through go-gl.
package glcore

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-gl/engine/gl"
	gogl "github.com/go-gl/gl/v3.3-core/gl"
)

// Context forwards every call to the OpenGL context current on the calling thread.
type Context struct {
	version string
	width   int
	height  int
}

var _ gl.Context = &Context{}

// New loads the GL entry points for the current context. A context must be
// current on the calling thread, e.g. after Window.MakeContextCurrent.
// DrawableSize reports the viewport GL assigned when the context was first made
// current, which is the size of its window at that time. Desktop GL cannot query
// the default framebuffer size, so resizable windows pass the window's size to
// renderer.WithDrawableSize.
//
// Returns:
//   - *Context: the backend
//   - error: an error if the entry points could not be loaded
func New() (*Context, error) {
	if err := gogl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	var viewport [4]int32
	gogl.GetIntegerv(gogl.VIEWPORT, &viewport[0])
	return &Context{version: "330 core", width: int(viewport[2]), height: int(viewport[3])}, nil
}


// Version returns the driver's GL_VERSION string.
func (c *Context) Version() string {
	return gogl.GoStr(gogl.GetString(gogl.VERSION))
}

func ptr[T any](v []T) unsafe.Pointer {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Pointer(&v[0])
}

func cstr(s string) *uint8 {
	return gogl.Str(s + "\x00")
}

func (c *Context) CreateShader(stage gl.ShaderStage) gl.Shader {
	return gl.Shader(gogl.CreateShader(uint32(stage)))
}

func (c *Context) ShaderSource(s gl.Shader, source string) {
	src, free := gogl.Strs(source + "\x00")
	defer free()
	gogl.ShaderSource(uint32(s), 1, src, nil)
}

func (c *Context) CompileShader(s gl.Shader) { gogl.CompileShader(uint32(s)) }

func (c *Context) ShaderCompiled(s gl.Shader) bool {
	var status int32
	gogl.GetShaderiv(uint32(s), gogl.COMPILE_STATUS, &status)
	return status == gogl.TRUE
}

func (c *Context) ShaderInfoLog(s gl.Shader) string {
	var n int32
	gogl.GetShaderiv(uint32(s), gogl.INFO_LOG_LENGTH, &n)
	if n == 0 {
		return ""
	}
	buf := strings.Repeat("\x00", int(n+1))
	gogl.GetShaderInfoLog(uint32(s), n, nil, gogl.Str(buf))
	return strings.TrimRight(buf, "\x00")
}

func (c *Context) DeleteShader(s gl.Shader) { gogl.DeleteShader(uint32(s)) }

func (c *Context) CreateProgram() gl.Program { return gl.Program(gogl.CreateProgram()) }

func (c *Context) AttachShader(p gl.Program, s gl.Shader) { gogl.AttachShader(uint32(p), uint32(s)) }

func (c *Context) LinkProgram(p gl.Program) { gogl.LinkProgram(uint32(p)) }

func (c *Context) ProgramLinked(p gl.Program) bool {
	var status int32
	gogl.GetProgramiv(uint32(p), gogl.LINK_STATUS, &status)
	return status == gogl.TRUE
}

func (c *Context) ProgramInfoLog(p gl.Program) string {
	var n int32
	gogl.GetProgramiv(uint32(p), gogl.INFO_LOG_LENGTH, &n)
	if n == 0 {
		return ""
	}
	buf := strings.Repeat("\x00", int(n+1))
	gogl.GetProgramInfoLog(uint32(p), n, nil, gogl.Str(buf))
	return strings.TrimRight(buf, "\x00")
}

func (c *Context) DeleteProgram(p gl.Program) { gogl.DeleteProgram(uint32(p)) }

func (c *Context) IsProgram(p gl.Program) bool { return p != 0 && gogl.IsProgram(uint32(p)) }

func (c *Context) UseProgram(p gl.Program) { gogl.UseProgram(uint32(p)) }

func (c *Context) ActiveUniforms(p gl.Program) int {
	var n int32
	gogl.GetProgramiv(uint32(p), gogl.ACTIVE_UNIFORMS, &n)
	return int(n)
}

func (c *Context) ActiveUniform(p gl.Program, index int) gl.ActiveInfo {
	var maxLen int32
	gogl.GetProgramiv(uint32(p), gogl.ACTIVE_UNIFORM_MAX_LENGTH, &maxLen)
	name := make([]uint8, maxLen+1)
	var length, size int32
	var typ uint32
	gogl.GetActiveUniform(uint32(p), uint32(index), maxLen+1, &length, &size, &typ, &name[0])
	return gl.ActiveInfo{Name: string(name[:length]), Size: int(size), Type: gl.UniformType(typ)}
}

func (c *Context) UniformLocation(p gl.Program, name string) gl.Uniform {
	return gl.Uniform(gogl.GetUniformLocation(uint32(p), cstr(name)))
}

func (c *Context) AttribLocation(p gl.Program, name string) int {
	return int(gogl.GetAttribLocation(uint32(p), cstr(name)))
}

func (c *Context) Uniform1fv(u gl.Uniform, v []float32) {
	if len(v) > 0 {
		gogl.Uniform1fv(int32(u), int32(len(v)), &v[0])
	}
}

func (c *Context) Uniform2fv(u gl.Uniform, v []float32) {
	if len(v) > 0 {
		gogl.Uniform2fv(int32(u), int32(len(v)/2), &v[0])
	}
}

func (c *Context) Uniform3fv(u gl.Uniform, v []float32) {
	if len(v) > 0 {
		gogl.Uniform3fv(int32(u), int32(len(v)/3), &v[0])
	}
}

func (c *Context) Uniform4fv(u gl.Uniform, v []float32) {
	if len(v) > 0 {
		gogl.Uniform4fv(int32(u), int32(len(v)/4), &v[0])
	}
}

func (c *Context) Uniform1iv(u gl.Uniform, v []int32) {
	if len(v) > 0 {
		gogl.Uniform1iv(int32(u), int32(len(v)), &v[0])
	}
}

func (c *Context) Uniform2iv(u gl.Uniform, v []int32) {
	if len(v) > 0 {
		gogl.Uniform2iv(int32(u), int32(len(v)/2), &v[0])
	}
}

func (c *Context) Uniform3iv(u gl.Uniform, v []int32) {
	if len(v) > 0 {
		gogl.Uniform3iv(int32(u), int32(len(v)/3), &v[0])
	}
}

func (c *Context) Uniform4iv(u gl.Uniform, v []int32) {
	if len(v) > 0 {
		gogl.Uniform4iv(int32(u), int32(len(v)/4), &v[0])
	}
}

func (c *Context) Uniform1uiv(u gl.Uniform, v []uint32) {
	if len(v) > 0 {
		gogl.Uniform1uiv(int32(u), int32(len(v)), &v[0])
	}
}

func (c *Context) Uniform2uiv(u gl.Uniform, v []uint32) {
	if len(v) > 0 {
		gogl.Uniform2uiv(int32(u), int32(len(v)/2), &v[0])
	}
}

func (c *Context) Uniform3uiv(u gl.Uniform, v []uint32) {
	if len(v) > 0 {
		gogl.Uniform3uiv(int32(u), int32(len(v)/3), &v[0])
	}
}

func (c *Context) Uniform4uiv(u gl.Uniform, v []uint32) {
	if len(v) > 0 {
		gogl.Uniform4uiv(int32(u), int32(len(v)/4), &v[0])
	}
}

func (c *Context) UniformMatrix2fv(u gl.Uniform, v []float32) {
	if len(v) > 0 {
		gogl.UniformMatrix2fv(int32(u), int32(len(v)/4), false, &v[0])
	}
}

func (c *Context) UniformMatrix3fv(u gl.Uniform, v []float32) {
	if len(v) > 0 {
		gogl.UniformMatrix3fv(int32(u), int32(len(v)/9), false, &v[0])
	}
}

func (c *Context) UniformMatrix4fv(u gl.Uniform, v []float32) {
	if len(v) > 0 {
		gogl.UniformMatrix4fv(int32(u), int32(len(v)/16), false, &v[0])
	}
}

func (c *Context) Enable(capability gl.Capability) { gogl.Enable(uint32(capability)) }

func (c *Context) Disable(capability gl.Capability) { gogl.Disable(uint32(capability)) }

func (c *Context) DepthFunc(f gl.CompareFunc) { gogl.DepthFunc(uint32(f)) }

func (c *Context) DepthMask(write bool) { gogl.DepthMask(write) }

func (c *Context) DepthRange(near, far float32) { gogl.DepthRange(float64(near), float64(far)) }

func (c *Context) StencilFuncSeparate(face gl.Face, f gl.CompareFunc, ref int32, mask uint32) {
	gogl.StencilFuncSeparate(uint32(face), uint32(f), ref, mask)
}

func (c *Context) StencilOpSeparate(face gl.Face, fail, zfail, zpass gl.StencilOp) {
	gogl.StencilOpSeparate(uint32(face), uint32(fail), uint32(zfail), uint32(zpass))
}

func (c *Context) StencilMaskSeparate(face gl.Face, mask uint32) {
	gogl.StencilMaskSeparate(uint32(face), mask)
}

func (c *Context) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha gl.BlendFactor) {
	gogl.BlendFuncSeparate(uint32(srcRGB), uint32(dstRGB), uint32(srcAlpha), uint32(dstAlpha))
}

func (c *Context) BlendEquationSeparate(rgb, alpha gl.BlendEquation) {
	gogl.BlendEquationSeparate(uint32(rgb), uint32(alpha))
}

func (c *Context) BlendColor(r, g, b, a float32) { gogl.BlendColor(r, g, b, a) }

func (c *Context) Viewport(x, y, width, height int) {
	gogl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

func (c *Context) Scissor(x, y, width, height int) {
	gogl.Scissor(int32(x), int32(y), int32(width), int32(height))
}

func (c *Context) ClearColor(r, g, b, a float32) { gogl.ClearColor(r, g, b, a) }

func (c *Context) ClearDepth(d float32) { gogl.ClearDepth(float64(d)) }

func (c *Context) ClearStencil(s int32) { gogl.ClearStencil(s) }

func (c *Context) Clear(mask gl.BufferBits) { gogl.Clear(uint32(mask)) }

func (c *Context) CreateFramebuffer() gl.Framebuffer {
	var fb uint32
	gogl.GenFramebuffers(1, &fb)
	return gl.Framebuffer(fb)
}

func (c *Context) DeleteFramebuffer(fb gl.Framebuffer) {
	h := uint32(fb)
	gogl.DeleteFramebuffers(1, &h)
}

func (c *Context) IsFramebuffer(fb gl.Framebuffer) bool {
	return fb != 0 && gogl.IsFramebuffer(uint32(fb))
}

func (c *Context) BindFramebuffer(target gl.FramebufferTarget, fb gl.Framebuffer) {
	gogl.BindFramebuffer(uint32(target), uint32(fb))
}

func (c *Context) FramebufferTexture2D(target gl.FramebufferTarget, attachment gl.Attachment, texTarget gl.TextureTarget, t gl.Texture, level int) {
	gogl.FramebufferTexture2D(uint32(target), uint32(attachment), uint32(texTarget), uint32(t), int32(level))
}

func (c *Context) FramebufferTextureLayer(target gl.FramebufferTarget, attachment gl.Attachment, t gl.Texture, level, layer int) {
	gogl.FramebufferTextureLayer(uint32(target), uint32(attachment), uint32(t), int32(level), int32(layer))
}

func (c *Context) FramebufferRenderbuffer(target gl.FramebufferTarget, attachment gl.Attachment, rb gl.Renderbuffer) {
	gogl.FramebufferRenderbuffer(uint32(target), uint32(attachment), gogl.RENDERBUFFER, uint32(rb))
}

func (c *Context) CheckFramebufferStatus(target gl.FramebufferTarget) gl.FramebufferStatus {
	return gl.FramebufferStatus(gogl.CheckFramebufferStatus(uint32(target)))
}

func (c *Context) DrawBuffers(bufs []gl.Attachment) {
	raw := make([]uint32, len(bufs))
	for i, b := range bufs {
		raw[i] = uint32(b)
	}
	if len(raw) > 0 {
		gogl.DrawBuffers(int32(len(raw)), &raw[0])
	}
}

func (c *Context) BlitFramebuffer(srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1 int, mask gl.BufferBits, filter gl.Filter) {
	gogl.BlitFramebuffer(int32(srcX0), int32(srcY0), int32(srcX1), int32(srcY1),
		int32(dstX0), int32(dstY0), int32(dstX1), int32(dstY1), uint32(mask), uint32(filter))
}

func (c *Context) CreateRenderbuffer() gl.Renderbuffer {
	var rb uint32
	gogl.GenRenderbuffers(1, &rb)
	return gl.Renderbuffer(rb)
}

func (c *Context) DeleteRenderbuffer(rb gl.Renderbuffer) {
	h := uint32(rb)
	gogl.DeleteRenderbuffers(1, &h)
}

func (c *Context) IsRenderbuffer(rb gl.Renderbuffer) bool {
	return rb != 0 && gogl.IsRenderbuffer(uint32(rb))
}

func (c *Context) BindRenderbuffer(rb gl.Renderbuffer) {
	gogl.BindRenderbuffer(gogl.RENDERBUFFER, uint32(rb))
}

func (c *Context) RenderbufferStorageMultisample(samples int, format gl.InternalFormat, width, height int) {
	gogl.RenderbufferStorageMultisample(gogl.RENDERBUFFER, int32(samples), uint32(format), int32(width), int32(height))
}

func (c *Context) CreateBuffer() gl.Buffer {
	var b uint32
	gogl.GenBuffers(1, &b)
	return gl.Buffer(b)
}

func (c *Context) DeleteBuffer(b gl.Buffer) {
	h := uint32(b)
	gogl.DeleteBuffers(1, &h)
}

func (c *Context) IsBuffer(b gl.Buffer) bool { return b != 0 && gogl.IsBuffer(uint32(b)) }

func (c *Context) BindBuffer(target gl.BufferTarget, b gl.Buffer) {
	gogl.BindBuffer(uint32(target), uint32(b))
}

func (c *Context) BufferData(target gl.BufferTarget, data []byte, usage gl.BufferUsage) {
	gogl.BufferData(uint32(target), len(data), ptr(data), uint32(usage))
}

func (c *Context) BufferSubData(target gl.BufferTarget, offset int, data []byte) {
	if len(data) > 0 {
		gogl.BufferSubData(uint32(target), offset, len(data), ptr(data))
	}
}

func (c *Context) CreateVertexArray() gl.VertexArray {
	var a uint32
	gogl.GenVertexArrays(1, &a)
	return gl.VertexArray(a)
}

func (c *Context) DeleteVertexArray(a gl.VertexArray) {
	h := uint32(a)
	gogl.DeleteVertexArrays(1, &h)
}

func (c *Context) IsVertexArray(a gl.VertexArray) bool {
	return a != 0 && gogl.IsVertexArray(uint32(a))
}

func (c *Context) BindVertexArray(a gl.VertexArray) { gogl.BindVertexArray(uint32(a)) }

func (c *Context) EnableVertexAttribArray(location int) {
	gogl.EnableVertexAttribArray(uint32(location))
}

func (c *Context) VertexAttribPointer(location, size int, typ gl.DataType, normalized bool, stride, offset int) {
	gogl.VertexAttribPointerWithOffset(uint32(location), int32(size), uint32(typ), normalized, int32(stride), uintptr(offset))
}

func (c *Context) VertexAttribIPointer(location, size int, typ gl.DataType, stride, offset int) {
	gogl.VertexAttribIPointerWithOffset(uint32(location), int32(size), uint32(typ), int32(stride), uintptr(offset))
}

func (c *Context) VertexAttribDivisor(location, divisor int) {
	gogl.VertexAttribDivisor(uint32(location), uint32(divisor))
}

func (c *Context) CreateTexture() gl.Texture {
	var t uint32
	gogl.GenTextures(1, &t)
	return gl.Texture(t)
}

func (c *Context) DeleteTexture(t gl.Texture) {
	h := uint32(t)
	gogl.DeleteTextures(1, &h)
}

func (c *Context) IsTexture(t gl.Texture) bool { return t != 0 && gogl.IsTexture(uint32(t)) }

func (c *Context) ActiveTexture(unit int) { gogl.ActiveTexture(gogl.TEXTURE0 + uint32(unit)) }

func (c *Context) BindTexture(target gl.TextureTarget, t gl.Texture) {
	gogl.BindTexture(uint32(target), uint32(t))
}

func (c *Context) TexImage2D(target gl.TextureTarget, level int, internal gl.InternalFormat, width, height int, format gl.Format, typ gl.DataType, data []byte) {
	gogl.TexImage2D(uint32(target), int32(level), int32(internal), int32(width), int32(height), 0, uint32(format), uint32(typ), ptr(data))
}

func (c *Context) TexParameteri(target gl.TextureTarget, param gl.TextureParameter, value int32) {
	gogl.TexParameteri(uint32(target), uint32(param), value)
}

func (c *Context) GenerateMipmap(target gl.TextureTarget) { gogl.GenerateMipmap(uint32(target)) }

func (c *Context) DrawArrays(mode gl.Primitive, first, count int) {
	gogl.DrawArrays(uint32(mode), int32(first), int32(count))
}

func (c *Context) DrawElements(mode gl.Primitive, count int, typ gl.DataType, offset int) {
	gogl.DrawElementsWithOffset(uint32(mode), int32(count), uint32(typ), uintptr(offset))
}

func (c *Context) DrawArraysInstanced(mode gl.Primitive, first, count, instances int) {
	gogl.DrawArraysInstanced(uint32(mode), int32(first), int32(count), int32(instances))
}

func (c *Context) DrawElementsInstanced(mode gl.Primitive, count int, typ gl.DataType, offset, instances int) {
	gogl.DrawElementsInstancedWithOffset(uint32(mode), int32(count), uint32(typ), uintptr(offset), int32(instances))
}

func (c *Context) ShadingLanguageVersion() string { return c.version }

func (c *Context) DrawableSize() (int, int) { return c.width, c.height }

// IsContextLost always returns false: desktop contexts report no loss.
func (c *Context) IsContextLost() bool { return false }
