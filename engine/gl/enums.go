package gl

// Every enumeration is a closed named type whose values are the GL constants,
// so backends can pass them to the driver without translation.

// ShaderStage identifies a programmable stage.
type ShaderStage uint32

const (
	VertexShader   ShaderStage = 0x8B31
	FragmentShader ShaderStage = 0x8B30
)

func (s ShaderStage) String() string {
	switch s {
	case VertexShader:
		return "vertex"
	case FragmentShader:
		return "fragment"
	default:
		return "unknown"
	}
}

// Capability is a server-side capability toggled with Enable/Disable.
type Capability uint32

const (
	Blend       Capability = 0x0BE2
	CullFace    Capability = 0x0B44
	DepthTest   Capability = 0x0B71
	ScissorTest Capability = 0x0C11
	StencilTest Capability = 0x0B90
)

// CompareFunc is a depth or stencil comparison function.
type CompareFunc uint32

const (
	Never    CompareFunc = 0x0200
	Less     CompareFunc = 0x0201
	Equal    CompareFunc = 0x0202
	LEqual   CompareFunc = 0x0203
	Greater  CompareFunc = 0x0204
	NotEqual CompareFunc = 0x0205
	GEqual   CompareFunc = 0x0206
	Always   CompareFunc = 0x0207
)

// StencilOp is the action taken on the stored stencil value.
type StencilOp uint32

const (
	Zero     StencilOp = 0x0000
	Keep     StencilOp = 0x1E00
	Replace  StencilOp = 0x1E01
	Incr     StencilOp = 0x1E02
	Decr     StencilOp = 0x1E03
	Invert   StencilOp = 0x150A
	IncrWrap StencilOp = 0x8507
	DecrWrap StencilOp = 0x8508
)

// Face selects the polygon faces affected by a stencil call.
type Face uint32

const (
	Front        Face = 0x0404
	Back         Face = 0x0405
	FrontAndBack Face = 0x0408
)

// BlendFactor is a source or destination blend weight.
type BlendFactor uint32

const (
	FactorZero                  BlendFactor = 0x0000
	FactorOne                   BlendFactor = 0x0001
	FactorSrcColor              BlendFactor = 0x0300
	FactorOneMinusSrcColor      BlendFactor = 0x0301
	FactorSrcAlpha              BlendFactor = 0x0302
	FactorOneMinusSrcAlpha      BlendFactor = 0x0303
	FactorDstAlpha              BlendFactor = 0x0304
	FactorOneMinusDstAlpha      BlendFactor = 0x0305
	FactorDstColor              BlendFactor = 0x0306
	FactorOneMinusDstColor      BlendFactor = 0x0307
	FactorSrcAlphaSaturate      BlendFactor = 0x0308
	FactorConstantColor         BlendFactor = 0x8001
	FactorOneMinusConstantColor BlendFactor = 0x8002
	FactorConstantAlpha         BlendFactor = 0x8003
	FactorOneMinusConstantAlpha BlendFactor = 0x8004
)

// BlendEquation combines the weighted source and destination.
type BlendEquation uint32

const (
	FuncAdd             BlendEquation = 0x8006
	FuncSubtract        BlendEquation = 0x800A
	FuncReverseSubtract BlendEquation = 0x800B
	Min                 BlendEquation = 0x8007
	Max                 BlendEquation = 0x8008
)

// BufferBits is a mask of framebuffer buffers for Clear and BlitFramebuffer.
type BufferBits uint32

const (
	DepthBufferBit   BufferBits = 0x00000100
	StencilBufferBit BufferBits = 0x00000400
	ColorBufferBit   BufferBits = 0x00004000
)

// FramebufferTarget is a framebuffer binding point.
type FramebufferTarget uint32

const (
	DrawReadFramebuffer FramebufferTarget = 0x8D40
	ReadFramebuffer     FramebufferTarget = 0x8CA8
	DrawFramebuffer     FramebufferTarget = 0x8CA9
)

// Attachment is a framebuffer attachment point or a draw-buffer selector.
type Attachment uint32

const (
	None                   Attachment = 0x0000
	BackBuffer             Attachment = 0x0405
	ColorAttachment0       Attachment = 0x8CE0
	DepthAttachment        Attachment = 0x8D00
	StencilAttachment      Attachment = 0x8D20
	DepthStencilAttachment Attachment = 0x821A
)

// MaxColorAttachments is the GL ES 3.0 guaranteed minimum.
const MaxColorAttachments = 4

// ColorAttachment returns the i-th color attachment point.
func ColorAttachment(i int) Attachment {
	return ColorAttachment0 + Attachment(i)
}

// FramebufferStatus is the result of a completeness check.
type FramebufferStatus uint32

const (
	FramebufferComplete                    FramebufferStatus = 0x8CD5
	FramebufferIncompleteAttachment        FramebufferStatus = 0x8CD6
	FramebufferIncompleteMissingAttachment FramebufferStatus = 0x8CD7
	FramebufferIncompleteDimensions        FramebufferStatus = 0x8CD9
	FramebufferUnsupported                 FramebufferStatus = 0x8CDD
	FramebufferIncompleteMultisample       FramebufferStatus = 0x8D56
)

func (s FramebufferStatus) String() string {
	switch s {
	case FramebufferComplete:
		return "complete"
	case FramebufferIncompleteAttachment:
		return "incomplete attachment"
	case FramebufferIncompleteMissingAttachment:
		return "missing attachment"
	case FramebufferIncompleteDimensions:
		return "incomplete dimensions"
	case FramebufferUnsupported:
		return "unsupported"
	case FramebufferIncompleteMultisample:
		return "incomplete multisample"
	default:
		return "unknown"
	}
}

// Filter is a texture sampling or blit filter.
type Filter uint32

const (
	Nearest              Filter = 0x2600
	Linear               Filter = 0x2601
	NearestMipmapNearest Filter = 0x2700
	LinearMipmapNearest  Filter = 0x2701
	NearestMipmapLinear  Filter = 0x2702
	LinearMipmapLinear   Filter = 0x2703
)

// Wrap is a texture coordinate wrapping mode.
type Wrap uint32

const (
	Repeat         Wrap = 0x2901
	ClampToEdge    Wrap = 0x812F
	MirroredRepeat Wrap = 0x8370
)

// TextureParameter names a TexParameteri parameter.
type TextureParameter uint32

const (
	TextureMagFilter TextureParameter = 0x2800
	TextureMinFilter TextureParameter = 0x2801
	TextureWrapS     TextureParameter = 0x2802
	TextureWrapT     TextureParameter = 0x2803
)

// TextureTarget is a texture binding point.
type TextureTarget uint32

const (
	Texture2D      TextureTarget = 0x0DE1
	Texture3D      TextureTarget = 0x806F
	TextureCubeMap TextureTarget = 0x8513
	Texture2DArray TextureTarget = 0x8C1A
)

// BufferTarget is a buffer binding point.
type BufferTarget uint32

const (
	ArrayBuffer        BufferTarget = 0x8892
	ElementArrayBuffer BufferTarget = 0x8893
)

// BufferUsage is a buffer storage usage hint.
type BufferUsage uint32

const (
	StaticDraw  BufferUsage = 0x88E4
	DynamicDraw BufferUsage = 0x88E8
	StreamDraw  BufferUsage = 0x88E0
)

// DataType is the component type of vertex, index or pixel data.
type DataType uint32

const (
	Byte          DataType = 0x1400
	UnsignedByte  DataType = 0x1401
	Short         DataType = 0x1402
	UnsignedShort DataType = 0x1403
	Int           DataType = 0x1404
	UnsignedInt   DataType = 0x1405
	Float         DataType = 0x1406
	HalfFloat     DataType = 0x140B
)

// Size returns the byte width of one component.
func (t DataType) Size() int {
	switch t {
	case Byte, UnsignedByte:
		return 1
	case Short, UnsignedShort, HalfFloat:
		return 2
	case Int, UnsignedInt, Float:
		return 4
	default:
		panic("gl: unknown data type")
	}
}

// IsInteger reports whether the type holds integer components.
func (t DataType) IsInteger() bool {
	switch t {
	case Byte, UnsignedByte, Short, UnsignedShort, Int, UnsignedInt:
		return true
	case Float, HalfFloat:
		return false
	default:
		panic("gl: unknown data type")
	}
}

// Format is the pixel layout of client texture data.
type Format uint32

const (
	Red            Format = 0x1903
	RG             Format = 0x8227
	RGB            Format = 0x1907
	RGBA           Format = 0x1908
	RedInteger     Format = 0x8D94
	RGBAInteger    Format = 0x8D99
	DepthComponent Format = 0x1902
	DepthStencil   Format = 0x84F9
)

// InternalFormat is the sized storage format of a texture or renderbuffer.
type InternalFormat uint32

const (
	R8                InternalFormat = 0x8229
	RG8               InternalFormat = 0x822B
	RGB8              InternalFormat = 0x8051
	RGBA8             InternalFormat = 0x8058
	R16F              InternalFormat = 0x822D
	RGBA16F           InternalFormat = 0x881A
	R32F              InternalFormat = 0x822E
	RGBA32F           InternalFormat = 0x8814
	R32I              InternalFormat = 0x8235
	R32UI             InternalFormat = 0x8236
	DepthComponent16  InternalFormat = 0x81A5
	DepthComponent24  InternalFormat = 0x81A6
	DepthComponent32F InternalFormat = 0x8CAC
	Depth24Stencil8   InternalFormat = 0x88F0
	Depth32FStencil8  InternalFormat = 0x8CAD
	StencilIndex8     InternalFormat = 0x8D48
)

// Primitive is a draw topology.
type Primitive uint32

const (
	Points        Primitive = 0x0000
	Lines         Primitive = 0x0001
	LineLoop      Primitive = 0x0002
	LineStrip     Primitive = 0x0003
	Triangles     Primitive = 0x0004
	TriangleStrip Primitive = 0x0005
	TriangleFan   Primitive = 0x0006
)

// UniformType is the GLSL type of an active uniform.
type UniformType uint32

const (
	TypeFloat           UniformType = 0x1406
	TypeVec2            UniformType = 0x8B50
	TypeVec3            UniformType = 0x8B51
	TypeVec4            UniformType = 0x8B52
	TypeInt             UniformType = 0x1404
	TypeIVec2           UniformType = 0x8B53
	TypeIVec3           UniformType = 0x8B54
	TypeIVec4           UniformType = 0x8B55
	TypeUint            UniformType = 0x1405
	TypeUVec2           UniformType = 0x8DC6
	TypeUVec3           UniformType = 0x8DC7
	TypeUVec4           UniformType = 0x8DC8
	TypeBool            UniformType = 0x8B56
	TypeBVec2           UniformType = 0x8B57
	TypeBVec3           UniformType = 0x8B58
	TypeBVec4           UniformType = 0x8B59
	TypeMat2            UniformType = 0x8B5A
	TypeMat3            UniformType = 0x8B5B
	TypeMat4            UniformType = 0x8B5C
	TypeSampler2D       UniformType = 0x8B5E
	TypeSampler3D       UniformType = 0x8B5F
	TypeSamplerCube     UniformType = 0x8B60
	TypeSampler2DShadow UniformType = 0x8B62
	TypeSampler2DArray  UniformType = 0x8DC1
	TypeISampler2D      UniformType = 0x8DCA
	TypeUSampler2D      UniformType = 0x8DD2
)

func (t TextureTarget) String() string {
	switch t {
	case Texture2D:
		return "2D"
	case Texture3D:
		return "3D"
	case TextureCubeMap:
		return "cube map"
	case Texture2DArray:
		return "2D array"
	default:
		return "unknown"
	}
}

// SamplerTarget returns the texture target a sampler uniform reads from.
//
// Returns:
//   - TextureTarget: the binding point textures for this sampler must use
//   - bool: false if the uniform is not a sampler
func (t UniformType) SamplerTarget() (TextureTarget, bool) {
	switch t {
	case TypeSampler2D, TypeSampler2DShadow, TypeISampler2D, TypeUSampler2D:
		return Texture2D, true
	case TypeSampler3D:
		return Texture3D, true
	case TypeSamplerCube:
		return TextureCubeMap, true
	case TypeSampler2DArray:
		return Texture2DArray, true
	default:
		return 0, false
	}
}

// IsSampler reports whether the uniform is bound through a texture unit.
func (t UniformType) IsSampler() bool {
	switch t {
	case TypeSampler2D, TypeSampler3D, TypeSamplerCube, TypeSampler2DShadow,
		TypeSampler2DArray, TypeISampler2D, TypeUSampler2D:
		return true
	default:
		return false
	}
}

func (t UniformType) String() string {
	switch t {
	case TypeFloat:
		return "float"
	case TypeVec2:
		return "vec2"
	case TypeVec3:
		return "vec3"
	case TypeVec4:
		return "vec4"
	case TypeInt:
		return "int"
	case TypeIVec2:
		return "ivec2"
	case TypeIVec3:
		return "ivec3"
	case TypeIVec4:
		return "ivec4"
	case TypeUint:
		return "uint"
	case TypeUVec2:
		return "uvec2"
	case TypeUVec3:
		return "uvec3"
	case TypeUVec4:
		return "uvec4"
	case TypeBool:
		return "bool"
	case TypeBVec2:
		return "bvec2"
	case TypeBVec3:
		return "bvec3"
	case TypeBVec4:
		return "bvec4"
	case TypeMat2:
		return "mat2"
	case TypeMat3:
		return "mat3"
	case TypeMat4:
		return "mat4"
	case TypeSampler2D:
		return "sampler2D"
	case TypeSampler3D:
		return "sampler3D"
	case TypeSamplerCube:
		return "samplerCube"
	case TypeSampler2DShadow:
		return "sampler2DShadow"
	case TypeSampler2DArray:
		return "sampler2DArray"
	case TypeISampler2D:
		return "isampler2D"
	case TypeUSampler2D:
		return "usampler2D"
	default:
		return "unknown"
	}
}
