//go:build js

// Package webgl implements gl.Context on a browser WebGL2 rendering context.
//
// WebGL hands out JavaScript objects instead of integer names, so the
// backend keeps a table mapping handles to objects. Handles are never reused,
// which keeps handles from before a context loss invalid afterwards.
package webgl

import (
	"fmt"
	"syscall/js"

	"github.com/Carmen-Shannon/oxy-gl/engine/gl"
)

// Context forwards every call to a WebGL2RenderingContext.
type Context struct {
	gl js.Value

	next     uint32
	current  gl.Program
	objects  map[uint32]js.Value
	uniforms map[gl.Program]map[gl.Uniform]js.Value
	byName   map[gl.Program]map[string]gl.Uniform
}

var _ gl.Context = &Context{}

// New wraps the WebGL2 context of a canvas element.
//
// Parameters:
//   - canvas: the canvas element
//   - attrs: context attributes such as {antialias: false}, nil for defaults
//
// Returns:
//   - *Context: the backend
//   - error: an error if the browser does not provide WebGL2
func New(canvas js.Value, attrs map[string]any) (*Context, error) {
	var ctx js.Value
	if attrs == nil {
		ctx = canvas.Call("getContext", "webgl2")
	} else {
		ctx = canvas.Call("getContext", "webgl2", attrs)
	}
	if ctx.IsNull() || ctx.IsUndefined() {
		return nil, fmt.Errorf("webgl2 is not available")
	}
	return &Context{
		gl:       ctx,
		objects:  map[uint32]js.Value{},
		uniforms: map[gl.Program]map[gl.Uniform]js.Value{},
		byName:   map[gl.Program]map[string]gl.Uniform{},
	}, nil
}

func (c *Context) put(v js.Value) uint32 {
	if v.IsNull() || v.IsUndefined() {
		return 0
	}
	c.next++
	c.objects[c.next] = v
	return c.next
}

func (c *Context) get(h uint32) js.Value {
	if v, ok := c.objects[h]; ok {
		return v
	}
	return js.Null()
}

func (c *Context) drop(h uint32) js.Value {
	v := c.get(h)
	delete(c.objects, h)
	return v
}

func (c *Context) is(method string, h uint32) bool {
	v, ok := c.objects[h]
	return ok && c.gl.Call(method, v).Bool()
}

func float32Array(v []float32) js.Value {
	arr := js.Global().Get("Float32Array").New(len(v))
	for i, f := range v {
		arr.SetIndex(i, f)
	}
	return arr
}

func int32Array(v []int32) js.Value {
	arr := js.Global().Get("Int32Array").New(len(v))
	for i, n := range v {
		arr.SetIndex(i, n)
	}
	return arr
}

func uint32Array(v []uint32) js.Value {
	arr := js.Global().Get("Uint32Array").New(len(v))
	for i, n := range v {
		arr.SetIndex(i, n)
	}
	return arr
}

func uint8Array(data []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(data))
	js.CopyBytesToJS(arr, data)
	return arr
}

func (c *Context) CreateShader(stage gl.ShaderStage) gl.Shader {
	return gl.Shader(c.put(c.gl.Call("createShader", uint32(stage))))
}

func (c *Context) ShaderSource(s gl.Shader, source string) {
	c.gl.Call("shaderSource", c.get(uint32(s)), source)
}

func (c *Context) CompileShader(s gl.Shader) { c.gl.Call("compileShader", c.get(uint32(s))) }

func (c *Context) ShaderCompiled(s gl.Shader) bool {
	return c.gl.Call("getShaderParameter", c.get(uint32(s)), c.gl.Get("COMPILE_STATUS")).Bool()
}

func (c *Context) ShaderInfoLog(s gl.Shader) string {
	return c.gl.Call("getShaderInfoLog", c.get(uint32(s))).String()
}

func (c *Context) DeleteShader(s gl.Shader) { c.gl.Call("deleteShader", c.drop(uint32(s))) }

func (c *Context) CreateProgram() gl.Program {
	return gl.Program(c.put(c.gl.Call("createProgram")))
}

func (c *Context) AttachShader(p gl.Program, s gl.Shader) {
	c.gl.Call("attachShader", c.get(uint32(p)), c.get(uint32(s)))
}

func (c *Context) LinkProgram(p gl.Program) {
	c.gl.Call("linkProgram", c.get(uint32(p)))
	delete(c.uniforms, p)
	delete(c.byName, p)
}

func (c *Context) ProgramLinked(p gl.Program) bool {
	return c.gl.Call("getProgramParameter", c.get(uint32(p)), c.gl.Get("LINK_STATUS")).Bool()
}

func (c *Context) ProgramInfoLog(p gl.Program) string {
	return c.gl.Call("getProgramInfoLog", c.get(uint32(p))).String()
}

func (c *Context) DeleteProgram(p gl.Program) {
	c.gl.Call("deleteProgram", c.drop(uint32(p)))
	delete(c.uniforms, p)
	delete(c.byName, p)
}

func (c *Context) IsProgram(p gl.Program) bool { return c.is("isProgram", uint32(p)) }

func (c *Context) UseProgram(p gl.Program) {
	c.current = p
	c.gl.Call("useProgram", c.get(uint32(p)))
}

func (c *Context) ActiveUniforms(p gl.Program) int {
	return c.gl.Call("getProgramParameter", c.get(uint32(p)), c.gl.Get("ACTIVE_UNIFORMS")).Int()
}

func (c *Context) ActiveUniform(p gl.Program, index int) gl.ActiveInfo {
	info := c.gl.Call("getActiveUniform", c.get(uint32(p)), index)
	return gl.ActiveInfo{
		Name: info.Get("name").String(),
		Size: info.Get("size").Int(),
		Type: gl.UniformType(info.Get("type").Int()),
	}
}

// UniformLocation maps WebGLUniformLocation objects to per-program integers.
// The current program's table is used for uploads.
func (c *Context) UniformLocation(p gl.Program, name string) gl.Uniform {
	if u, ok := c.byName[p][name]; ok {
		return u
	}
	loc := c.gl.Call("getUniformLocation", c.get(uint32(p)), name)
	if loc.IsNull() {
		return gl.NoUniform
	}
	if c.uniforms[p] == nil {
		c.uniforms[p] = map[gl.Uniform]js.Value{}
		c.byName[p] = map[string]gl.Uniform{}
	}
	u := gl.Uniform(len(c.uniforms[p]))
	c.uniforms[p][u] = loc
	c.byName[p][name] = u
	return u
}

func (c *Context) AttribLocation(p gl.Program, name string) int {
	return c.gl.Call("getAttribLocation", c.get(uint32(p)), name).Int()
}

func (c *Context) location(u gl.Uniform) js.Value {
	if loc, ok := c.uniforms[c.current][u]; ok {
		return loc
	}
	return js.Null()
}

func (c *Context) Uniform1fv(u gl.Uniform, v []float32) {
	c.gl.Call("uniform1fv", c.location(u), float32Array(v))
}

func (c *Context) Uniform2fv(u gl.Uniform, v []float32) {
	c.gl.Call("uniform2fv", c.location(u), float32Array(v))
}

func (c *Context) Uniform3fv(u gl.Uniform, v []float32) {
	c.gl.Call("uniform3fv", c.location(u), float32Array(v))
}

func (c *Context) Uniform4fv(u gl.Uniform, v []float32) {
	c.gl.Call("uniform4fv", c.location(u), float32Array(v))
}

func (c *Context) Uniform1iv(u gl.Uniform, v []int32) {
	c.gl.Call("uniform1iv", c.location(u), int32Array(v))
}

func (c *Context) Uniform2iv(u gl.Uniform, v []int32) {
	c.gl.Call("uniform2iv", c.location(u), int32Array(v))
}

func (c *Context) Uniform3iv(u gl.Uniform, v []int32) {
	c.gl.Call("uniform3iv", c.location(u), int32Array(v))
}

func (c *Context) Uniform4iv(u gl.Uniform, v []int32) {
	c.gl.Call("uniform4iv", c.location(u), int32Array(v))
}

func (c *Context) Uniform1uiv(u gl.Uniform, v []uint32) {
	c.gl.Call("uniform1uiv", c.location(u), uint32Array(v))
}

func (c *Context) Uniform2uiv(u gl.Uniform, v []uint32) {
	c.gl.Call("uniform2uiv", c.location(u), uint32Array(v))
}

func (c *Context) Uniform3uiv(u gl.Uniform, v []uint32) {
	c.gl.Call("uniform3uiv", c.location(u), uint32Array(v))
}

func (c *Context) Uniform4uiv(u gl.Uniform, v []uint32) {
	c.gl.Call("uniform4uiv", c.location(u), uint32Array(v))
}

func (c *Context) UniformMatrix2fv(u gl.Uniform, v []float32) {
	c.gl.Call("uniformMatrix2fv", c.location(u), false, float32Array(v))
}

func (c *Context) UniformMatrix3fv(u gl.Uniform, v []float32) {
	c.gl.Call("uniformMatrix3fv", c.location(u), false, float32Array(v))
}

func (c *Context) UniformMatrix4fv(u gl.Uniform, v []float32) {
	c.gl.Call("uniformMatrix4fv", c.location(u), false, float32Array(v))
}

func (c *Context) Enable(capability gl.Capability) { c.gl.Call("enable", uint32(capability)) }

func (c *Context) Disable(capability gl.Capability) { c.gl.Call("disable", uint32(capability)) }

func (c *Context) DepthFunc(f gl.CompareFunc) { c.gl.Call("depthFunc", uint32(f)) }

func (c *Context) DepthMask(write bool) { c.gl.Call("depthMask", write) }

func (c *Context) DepthRange(near, far float32) { c.gl.Call("depthRange", near, far) }

func (c *Context) StencilFuncSeparate(face gl.Face, f gl.CompareFunc, ref int32, mask uint32) {
	c.gl.Call("stencilFuncSeparate", uint32(face), uint32(f), ref, mask)
}

func (c *Context) StencilOpSeparate(face gl.Face, fail, zfail, zpass gl.StencilOp) {
	c.gl.Call("stencilOpSeparate", uint32(face), uint32(fail), uint32(zfail), uint32(zpass))
}

func (c *Context) StencilMaskSeparate(face gl.Face, mask uint32) {
	c.gl.Call("stencilMaskSeparate", uint32(face), mask)
}

func (c *Context) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha gl.BlendFactor) {
	c.gl.Call("blendFuncSeparate", uint32(srcRGB), uint32(dstRGB), uint32(srcAlpha), uint32(dstAlpha))
}

func (c *Context) BlendEquationSeparate(rgb, alpha gl.BlendEquation) {
	c.gl.Call("blendEquationSeparate", uint32(rgb), uint32(alpha))
}

func (c *Context) BlendColor(r, g, b, a float32) { c.gl.Call("blendColor", r, g, b, a) }

func (c *Context) Viewport(x, y, width, height int) { c.gl.Call("viewport", x, y, width, height) }

func (c *Context) Scissor(x, y, width, height int) { c.gl.Call("scissor", x, y, width, height) }

func (c *Context) ClearColor(r, g, b, a float32) { c.gl.Call("clearColor", r, g, b, a) }

func (c *Context) ClearDepth(d float32) { c.gl.Call("clearDepth", d) }

func (c *Context) ClearStencil(s int32) { c.gl.Call("clearStencil", s) }

func (c *Context) Clear(mask gl.BufferBits) { c.gl.Call("clear", uint32(mask)) }

func (c *Context) CreateFramebuffer() gl.Framebuffer {
	return gl.Framebuffer(c.put(c.gl.Call("createFramebuffer")))
}

func (c *Context) DeleteFramebuffer(fb gl.Framebuffer) {
	c.gl.Call("deleteFramebuffer", c.drop(uint32(fb)))
}

func (c *Context) IsFramebuffer(fb gl.Framebuffer) bool { return c.is("isFramebuffer", uint32(fb)) }

func (c *Context) BindFramebuffer(target gl.FramebufferTarget, fb gl.Framebuffer) {
	c.gl.Call("bindFramebuffer", uint32(target), c.get(uint32(fb)))
}

func (c *Context) FramebufferTexture2D(target gl.FramebufferTarget, attachment gl.Attachment, texTarget gl.TextureTarget, t gl.Texture, level int) {
	c.gl.Call("framebufferTexture2D", uint32(target), uint32(attachment), uint32(texTarget), c.get(uint32(t)), level)
}

func (c *Context) FramebufferTextureLayer(target gl.FramebufferTarget, attachment gl.Attachment, t gl.Texture, level, layer int) {
	c.gl.Call("framebufferTextureLayer", uint32(target), uint32(attachment), c.get(uint32(t)), level, layer)
}

func (c *Context) FramebufferRenderbuffer(target gl.FramebufferTarget, attachment gl.Attachment, rb gl.Renderbuffer) {
	c.gl.Call("framebufferRenderbuffer", uint32(target), uint32(attachment), c.gl.Get("RENDERBUFFER"), c.get(uint32(rb)))
}

func (c *Context) CheckFramebufferStatus(target gl.FramebufferTarget) gl.FramebufferStatus {
	return gl.FramebufferStatus(c.gl.Call("checkFramebufferStatus", uint32(target)).Int())
}

func (c *Context) DrawBuffers(bufs []gl.Attachment) {
	arr := make([]any, len(bufs))
	for i, b := range bufs {
		arr[i] = uint32(b)
	}
	c.gl.Call("drawBuffers", arr)
}

func (c *Context) BlitFramebuffer(srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1 int, mask gl.BufferBits, filter gl.Filter) {
	c.gl.Call("blitFramebuffer", srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1, uint32(mask), uint32(filter))
}

func (c *Context) CreateRenderbuffer() gl.Renderbuffer {
	return gl.Renderbuffer(c.put(c.gl.Call("createRenderbuffer")))
}

func (c *Context) DeleteRenderbuffer(rb gl.Renderbuffer) {
	c.gl.Call("deleteRenderbuffer", c.drop(uint32(rb)))
}

func (c *Context) IsRenderbuffer(rb gl.Renderbuffer) bool {
	return c.is("isRenderbuffer", uint32(rb))
}

func (c *Context) BindRenderbuffer(rb gl.Renderbuffer) {
	c.gl.Call("bindRenderbuffer", c.gl.Get("RENDERBUFFER"), c.get(uint32(rb)))
}

func (c *Context) RenderbufferStorageMultisample(samples int, format gl.InternalFormat, width, height int) {
	c.gl.Call("renderbufferStorageMultisample", c.gl.Get("RENDERBUFFER"), samples, uint32(format), width, height)
}

func (c *Context) CreateBuffer() gl.Buffer { return gl.Buffer(c.put(c.gl.Call("createBuffer"))) }

func (c *Context) DeleteBuffer(b gl.Buffer) { c.gl.Call("deleteBuffer", c.drop(uint32(b))) }

func (c *Context) IsBuffer(b gl.Buffer) bool { return c.is("isBuffer", uint32(b)) }

func (c *Context) BindBuffer(target gl.BufferTarget, b gl.Buffer) {
	c.gl.Call("bindBuffer", uint32(target), c.get(uint32(b)))
}

func (c *Context) BufferData(target gl.BufferTarget, data []byte, usage gl.BufferUsage) {
	c.gl.Call("bufferData", uint32(target), uint8Array(data), uint32(usage))
}

func (c *Context) BufferSubData(target gl.BufferTarget, offset int, data []byte) {
	c.gl.Call("bufferSubData", uint32(target), offset, uint8Array(data))
}

func (c *Context) CreateVertexArray() gl.VertexArray {
	return gl.VertexArray(c.put(c.gl.Call("createVertexArray")))
}

func (c *Context) DeleteVertexArray(a gl.VertexArray) {
	c.gl.Call("deleteVertexArray", c.drop(uint32(a)))
}

func (c *Context) IsVertexArray(a gl.VertexArray) bool { return c.is("isVertexArray", uint32(a)) }

func (c *Context) BindVertexArray(a gl.VertexArray) {
	c.gl.Call("bindVertexArray", c.get(uint32(a)))
}

func (c *Context) EnableVertexAttribArray(location int) {
	c.gl.Call("enableVertexAttribArray", location)
}

func (c *Context) VertexAttribPointer(location, size int, typ gl.DataType, normalized bool, stride, offset int) {
	c.gl.Call("vertexAttribPointer", location, size, uint32(typ), normalized, stride, offset)
}

func (c *Context) VertexAttribIPointer(location, size int, typ gl.DataType, stride, offset int) {
	c.gl.Call("vertexAttribIPointer", location, size, uint32(typ), stride, offset)
}

func (c *Context) VertexAttribDivisor(location, divisor int) {
	c.gl.Call("vertexAttribDivisor", location, divisor)
}

func (c *Context) CreateTexture() gl.Texture { return gl.Texture(c.put(c.gl.Call("createTexture"))) }

func (c *Context) DeleteTexture(t gl.Texture) { c.gl.Call("deleteTexture", c.drop(uint32(t))) }

func (c *Context) IsTexture(t gl.Texture) bool { return c.is("isTexture", uint32(t)) }

func (c *Context) ActiveTexture(unit int) {
	c.gl.Call("activeTexture", c.gl.Get("TEXTURE0").Int()+unit)
}

func (c *Context) BindTexture(target gl.TextureTarget, t gl.Texture) {
	c.gl.Call("bindTexture", uint32(target), c.get(uint32(t)))
}

func (c *Context) TexImage2D(target gl.TextureTarget, level int, internal gl.InternalFormat, width, height int, format gl.Format, typ gl.DataType, data []byte) {
	pixels := js.Null()
	if data != nil {
		pixels = uint8Array(data)
		switch typ {
		case gl.Float:
			pixels = js.Global().Get("Float32Array").New(pixels.Get("buffer"))
		case gl.UnsignedShort, gl.HalfFloat:
			pixels = js.Global().Get("Uint16Array").New(pixels.Get("buffer"))
		case gl.UnsignedInt:
			pixels = js.Global().Get("Uint32Array").New(pixels.Get("buffer"))
		}
	}
	c.gl.Call("texImage2D", uint32(target), level, uint32(internal), width, height, 0, uint32(format), uint32(typ), pixels)
}

func (c *Context) TexParameteri(target gl.TextureTarget, param gl.TextureParameter, value int32) {
	c.gl.Call("texParameteri", uint32(target), uint32(param), value)
}

func (c *Context) GenerateMipmap(target gl.TextureTarget) { c.gl.Call("generateMipmap", uint32(target)) }

func (c *Context) DrawArrays(mode gl.Primitive, first, count int) {
	c.gl.Call("drawArrays", uint32(mode), first, count)
}

func (c *Context) DrawElements(mode gl.Primitive, count int, typ gl.DataType, offset int) {
	c.gl.Call("drawElements", uint32(mode), count, uint32(typ), offset)
}

func (c *Context) DrawArraysInstanced(mode gl.Primitive, first, count, instances int) {
	c.gl.Call("drawArraysInstanced", uint32(mode), first, count, instances)
}

func (c *Context) DrawElementsInstanced(mode gl.Primitive, count int, typ gl.DataType, offset, instances int) {
	c.gl.Call("drawElementsInstanced", uint32(mode), count, uint32(typ), offset, instances)
}

func (c *Context) ShadingLanguageVersion() string { return "300 es" }

func (c *Context) DrawableSize() (int, int) {
	return c.gl.Get("drawingBufferWidth").Int(), c.gl.Get("drawingBufferHeight").Int()
}

func (c *Context) IsContextLost() bool { return c.gl.Call("isContextLost").Bool() }
