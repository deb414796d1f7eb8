// Package gl defines the graphics-context collaborator consumed by the renderer.
// It is a narrow, GL ES 3.0 / WebGL2 shaped view of a single-threaded stateful
// context. Backends live in the glcore (desktop, go-gl) and webgl (syscall/js)
// sub-packages; tests use the recording fake in engine/internal/gltest.
//
// Every method must be called from the goroutine that owns the context.
package gl

// Opaque object handles. The zero value of each handle is the "none" object
// (the default framebuffer for Framebuffer, no program for Program, ...).
type (
	Buffer       uint32
	Framebuffer  uint32
	Program      uint32
	Renderbuffer uint32
	Shader       uint32
	Texture      uint32
	VertexArray  uint32
)

// Uniform is a uniform location inside a linked program. Negative values are invalid.
type Uniform int32

// NoUniform is returned when a name does not resolve to an active uniform.
const NoUniform Uniform = -1

// Valid reports whether the location refers to an active uniform.
func (u Uniform) Valid() bool {
	return u >= 0
}

// ActiveInfo describes one entry of a program's active-uniform table.
type ActiveInfo struct {
	// Name is the uniform name as reported by the driver, e.g. "u_lights[0]".
	Name string
	// Size is the array length, 1 for non-array uniforms.
	Size int
	// Type is the GLSL type of the uniform.
	Type UniformType
}

// Context is the stateful, single-threaded graphics context.
// The method set mirrors the GL entry points the renderer needs and nothing more.
type Context interface {
	// Shaders and programs.

	CreateShader(stage ShaderStage) Shader
	ShaderSource(s Shader, source string)
	CompileShader(s Shader)
	ShaderCompiled(s Shader) bool
	ShaderInfoLog(s Shader) string
	DeleteShader(s Shader)

	CreateProgram() Program
	AttachShader(p Program, s Shader)
	LinkProgram(p Program)
	ProgramLinked(p Program) bool
	ProgramInfoLog(p Program) string
	DeleteProgram(p Program)
	IsProgram(p Program) bool
	UseProgram(p Program)

	// Program introspection.

	ActiveUniforms(p Program) int
	ActiveUniform(p Program, index int) ActiveInfo
	UniformLocation(p Program, name string) Uniform
	AttribLocation(p Program, name string) int

	// Uniform upload, applied to the program in use.

	Uniform1fv(u Uniform, v []float32)
	Uniform2fv(u Uniform, v []float32)
	Uniform3fv(u Uniform, v []float32)
	Uniform4fv(u Uniform, v []float32)
	Uniform1iv(u Uniform, v []int32)
	Uniform2iv(u Uniform, v []int32)
	Uniform3iv(u Uniform, v []int32)
	Uniform4iv(u Uniform, v []int32)
	Uniform1uiv(u Uniform, v []uint32)
	Uniform2uiv(u Uniform, v []uint32)
	Uniform3uiv(u Uniform, v []uint32)
	Uniform4uiv(u Uniform, v []uint32)
	UniformMatrix2fv(u Uniform, v []float32)
	UniformMatrix3fv(u Uniform, v []float32)
	UniformMatrix4fv(u Uniform, v []float32)

	// Fixed-function state.

	Enable(c Capability)
	Disable(c Capability)
	DepthFunc(f CompareFunc)
	DepthMask(write bool)
	DepthRange(near, far float32)
	StencilFuncSeparate(face Face, f CompareFunc, ref int32, mask uint32)
	StencilOpSeparate(face Face, fail, zfail, zpass StencilOp)
	StencilMaskSeparate(face Face, mask uint32)
	BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha BlendFactor)
	BlendEquationSeparate(rgb, alpha BlendEquation)
	BlendColor(r, g, b, a float32)
	Viewport(x, y, width, height int)
	Scissor(x, y, width, height int)
	ClearColor(r, g, b, a float32)
	ClearDepth(d float32)
	ClearStencil(s int32)
	Clear(mask BufferBits)

	// Framebuffers and renderbuffers.

	CreateFramebuffer() Framebuffer
	DeleteFramebuffer(fb Framebuffer)
	IsFramebuffer(fb Framebuffer) bool
	BindFramebuffer(target FramebufferTarget, fb Framebuffer)
	FramebufferTexture2D(target FramebufferTarget, attachment Attachment, texTarget TextureTarget, t Texture, level int)
	FramebufferTextureLayer(target FramebufferTarget, attachment Attachment, t Texture, level, layer int)
	FramebufferRenderbuffer(target FramebufferTarget, attachment Attachment, rb Renderbuffer)
	CheckFramebufferStatus(target FramebufferTarget) FramebufferStatus
	DrawBuffers(bufs []Attachment)
	BlitFramebuffer(srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1 int, mask BufferBits, filter Filter)

	CreateRenderbuffer() Renderbuffer
	DeleteRenderbuffer(rb Renderbuffer)
	IsRenderbuffer(rb Renderbuffer) bool
	BindRenderbuffer(rb Renderbuffer)
	RenderbufferStorageMultisample(samples int, format InternalFormat, width, height int)

	// Buffers and vertex arrays.

	CreateBuffer() Buffer
	DeleteBuffer(b Buffer)
	IsBuffer(b Buffer) bool
	BindBuffer(target BufferTarget, b Buffer)
	BufferData(target BufferTarget, data []byte, usage BufferUsage)
	BufferSubData(target BufferTarget, offset int, data []byte)

	CreateVertexArray() VertexArray
	DeleteVertexArray(a VertexArray)
	IsVertexArray(a VertexArray) bool
	BindVertexArray(a VertexArray)
	EnableVertexAttribArray(location int)
	VertexAttribPointer(location, size int, typ DataType, normalized bool, stride, offset int)
	VertexAttribIPointer(location, size int, typ DataType, stride, offset int)
	VertexAttribDivisor(location, divisor int)

	// Textures.

	CreateTexture() Texture
	DeleteTexture(t Texture)
	IsTexture(t Texture) bool
	ActiveTexture(unit int)
	BindTexture(target TextureTarget, t Texture)
	TexImage2D(target TextureTarget, level int, internal InternalFormat, width, height int, format Format, typ DataType, data []byte)
	TexParameteri(target TextureTarget, param TextureParameter, value int32)
	GenerateMipmap(target TextureTarget)

	// Draws.

	DrawArrays(mode Primitive, first, count int)
	DrawElements(mode Primitive, count int, typ DataType, offset int)
	DrawArraysInstanced(mode Primitive, first, count, instances int)
	DrawElementsInstanced(mode Primitive, count int, typ DataType, offset, instances int)

	// ShadingLanguageVersion returns the #version suffix accepted by the
	// context's GLSL compiler, e.g. "330 core" or "300 es".
	ShadingLanguageVersion() string

	// DrawableSize returns the size in pixels of the default framebuffer,
	// the surface a back-buffer Target draws to.
	DrawableSize() (width, height int)

	// IsContextLost reports whether the platform invalidated every handle.
	// Backends without a loss signal always return false.
	IsContextLost() bool
}
