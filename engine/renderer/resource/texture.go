package resource

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/gl"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/state"
)

// TextureOption configures a Texture2D during construction.
type TextureOption func(*Texture2D)

// WithFormat sets the storage and client pixel format. The default is RGBA8
// storage of RGBA unsigned bytes.
//
// Parameters:
//   - internal: the sized storage format
//   - format: the client pixel layout
//   - typ: the client component type
//
// Returns:
//   - TextureOption: a function that sets the formats
func WithFormat(internal gl.InternalFormat, format gl.Format, typ gl.DataType) TextureOption {
	return func(t *Texture2D) {
		t.internal = internal
		t.format = format
		t.typ = typ
	}
}

// WithPixels sets the initial pixel data. Without it the storage is left undefined.
//
// Parameters:
//   - data: tightly packed rows, bottom row first
//
// Returns:
//   - TextureOption: a function that sets the pixel data
func WithPixels(data []byte) TextureOption {
	return func(t *Texture2D) {
		t.pixels = append([]byte(nil), data...)
	}
}

// WithFilter sets the minification and magnification filters, Linear by default.
//
// Parameters:
//   - minFilter: the minification filter
//   - magFilter: the magnification filter
//
// Returns:
//   - TextureOption: a function that sets the filters
func WithFilter(minFilter, magFilter gl.Filter) TextureOption {
	return func(t *Texture2D) {
		t.minFilter = minFilter
		t.magFilter = magFilter
	}
}

// WithWrap sets the s and t wrap modes, ClampToEdge by default.
func WithWrap(wrapS, wrapT gl.Wrap) TextureOption {
	return func(t *Texture2D) {
		t.wrapS = wrapS
		t.wrapT = wrapT
	}
}

// WithMipmaps generates the mipmap chain after every upload.
func WithMipmaps() TextureOption {
	return func(t *Texture2D) {
		t.mipmaps = true
	}
}

// Texture2D is a two-dimensional texture. It satisfies command.Texture and can
// be a framebuffer color or depth attachment.
type Texture2D struct {
	st     *state.State
	handle gl.Texture

	width    int
	height   int
	internal gl.InternalFormat
	format   gl.Format
	typ      gl.DataType
	pixels   []byte

	minFilter gl.Filter
	magFilter gl.Filter
	wrapS     gl.Wrap
	wrapT     gl.Wrap
	mipmaps   bool
}

// NewTexture2D allocates a texture and uploads its initial pixels.
//
// Parameters:
//   - st: the pipeline state of the device the texture is used on
//   - width: the width in pixels
//   - height: the height in pixels
//   - opts: texture options
//
// Returns:
//   - *Texture2D: the texture
//   - error: an error if the size is not positive or the pixel data has the wrong length
func NewTexture2D(st *state.State, width, height int, opts ...TextureOption) (*Texture2D, error) {
	t := &Texture2D{
		st:        st,
		width:     width,
		height:    height,
		internal:  gl.RGBA8,
		format:    gl.RGBA,
		typ:       gl.UnsignedByte,
		minFilter: gl.Linear,
		magFilter: gl.Linear,
		wrapS:     gl.ClampToEdge,
		wrapT:     gl.ClampToEdge,
	}
	for _, opt := range opts {
		opt(t)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("texture size %dx%d is not positive", width, height)
	}
	if err := t.checkPixels(t.pixels); err != nil {
		return nil, err
	}
	t.create()
	return t, nil
}

func (t *Texture2D) checkPixels(data []byte) error {
	if data == nil {
		return nil
	}
	if want := t.width * t.height * components(t.format) * t.typ.Size(); len(data) != want {
		return fmt.Errorf("texture data is %d bytes, want %d for %dx%d", len(data), want, t.width, t.height)
	}
	return nil
}

func components(f gl.Format) int {
	switch f {
	case gl.Red, gl.RedInteger, gl.DepthComponent:
		return 1
	case gl.DepthStencil:
		// packed 24/8 in one 32-bit component
		return 1
	case gl.RG:
		return 2
	case gl.RGB:
		return 3
	case gl.RGBA, gl.RGBAInteger:
		return 4
	default:
		panic(fmt.Sprintf("resource: unknown pixel format %#x", uint32(f)))
	}
}

func (t *Texture2D) create() {
	ctx := t.st.Context()
	t.handle = ctx.CreateTexture()
	t.st.BindTextureForUpload(gl.Texture2D, t.handle)
	ctx.TexParameteri(gl.Texture2D, gl.TextureMinFilter, int32(t.minFilter))
	ctx.TexParameteri(gl.Texture2D, gl.TextureMagFilter, int32(t.magFilter))
	ctx.TexParameteri(gl.Texture2D, gl.TextureWrapS, int32(t.wrapS))
	ctx.TexParameteri(gl.Texture2D, gl.TextureWrapT, int32(t.wrapT))
	t.upload()
}

func (t *Texture2D) upload() {
	ctx := t.st.Context()
	ctx.TexImage2D(gl.Texture2D, 0, t.internal, t.width, t.height, t.format, t.typ, t.pixels)
	if t.mipmaps {
		ctx.GenerateMipmap(gl.Texture2D)
	}
}

// Handle returns the texture object.
func (t *Texture2D) Handle() gl.Texture {
	return t.handle
}

// Target returns Texture2D.
func (t *Texture2D) Target() gl.TextureTarget {
	return gl.Texture2D
}

// Size returns the width and height in pixels.
func (t *Texture2D) Size() (int, int) {
	return t.width, t.height
}

// InternalFormat returns the sized storage format.
func (t *Texture2D) InternalFormat() gl.InternalFormat {
	return t.internal
}

// Upload replaces the whole image.
//
// Parameters:
//   - data: tightly packed rows of the texture's client format
//
// Returns:
//   - error: an error if the data has the wrong length
func (t *Texture2D) Upload(data []byte) error {
	if data == nil {
		return fmt.Errorf("texture upload requires data")
	}
	if err := t.checkPixels(data); err != nil {
		return err
	}
	t.pixels = append(t.pixels[:0], data...)
	t.st.BindTextureForUpload(gl.Texture2D, t.handle)
	t.upload()
	return nil
}

// Restore recreates the texture and re-uploads its last pixels if the handle
// is no longer valid. Render-target contents are not preserved.
//
// Returns:
//   - error: always nil
func (t *Texture2D) Restore() error {
	if t.handle != 0 && t.st.Context().IsTexture(t.handle) {
		return nil
	}
	common.Logger().Warn("restoring texture", "texture", t.handle, "width", t.width, "height", t.height)
	t.st.ForgetTexture(t.handle)
	t.create()
	return nil
}

// Delete releases the texture object.
func (t *Texture2D) Delete() {
	if t.handle == 0 {
		return
	}
	t.st.Context().DeleteTexture(t.handle)
	t.st.ForgetTexture(t.handle)
	t.handle = 0
}
