// Package resource allocates the GPU objects the renderer draws from: vertex
// and index buffers, 2D textures and renderbuffers. Each keeps what it needs to
// recreate itself and exposes Restore for the context-loss sweep.
package resource

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/gl"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/state"
)

// Scalar is a component type that can back a vertex buffer.
type Scalar interface {
	int8 | uint8 | int16 | uint16 | int32 | uint32 | float32
}

// Index is a component type that can back an index buffer.
type Index interface {
	uint8 | uint16 | uint32
}

// BufferOption configures a buffer during construction.
type BufferOption func(*bufferConfig)

type bufferConfig struct {
	usage gl.BufferUsage
}

// WithUsage sets the storage usage hint, StaticDraw by default.
//
// Parameters:
//   - usage: the usage hint passed to BufferData
//
// Returns:
//   - BufferOption: a function that sets the usage hint
func WithUsage(usage gl.BufferUsage) BufferOption {
	return func(c *bufferConfig) {
		c.usage = usage
	}
}

func dataType[T Scalar]() gl.DataType {
	var zero T
	switch any(zero).(type) {
	case int8:
		return gl.Byte
	case uint8:
		return gl.UnsignedByte
	case int16:
		return gl.Short
	case uint16:
		return gl.UnsignedShort
	case int32:
		return gl.Int
	case uint32:
		return gl.UnsignedInt
	case float32:
		return gl.Float
	default:
		panic(fmt.Sprintf("resource: unsupported component type %T", zero))
	}
}

// buffer is the storage shared by vertex and index buffers. It keeps a copy of
// the uploaded bytes for Restore.
type buffer struct {
	st     *state.State
	target gl.BufferTarget
	usage  gl.BufferUsage
	handle gl.Buffer
	data   []byte
}

func newBuffer(st *state.State, target gl.BufferTarget, data []byte, opts []BufferOption) *buffer {
	cfg := bufferConfig{usage: gl.StaticDraw}
	for _, opt := range opts {
		opt(&cfg)
	}
	b := &buffer{st: st, target: target, usage: cfg.usage, data: append([]byte(nil), data...)}
	b.create()
	return b
}

// bind makes the buffer current on its target. Element array bindings belong to
// the bound vertex array, so they are made with vertex array 0 pushed.
func (b *buffer) bind(fn func(ctx gl.Context)) {
	ctx := b.st.Context()
	if b.target == gl.ElementArrayBuffer {
		b.st.PushVertexArray(0)
		defer func() { _ = b.st.PopVertexArray() }()
	}
	ctx.BindBuffer(b.target, b.handle)
	fn(ctx)
}

func (b *buffer) create() {
	b.handle = b.st.Context().CreateBuffer()
	b.bind(func(ctx gl.Context) {
		ctx.BufferData(b.target, b.data, b.usage)
	})
}

func (b *buffer) update(offset int, data []byte) error {
	if offset < 0 || offset+len(data) > len(b.data) {
		return fmt.Errorf("buffer update of %d bytes at offset %d exceeds size %d", len(data), offset, len(b.data))
	}
	copy(b.data[offset:], data)
	b.bind(func(ctx gl.Context) {
		ctx.BufferSubData(b.target, offset, data)
	})
	return nil
}

func (b *buffer) restore() bool {
	if b.handle != 0 && b.st.Context().IsBuffer(b.handle) {
		return false
	}
	common.Logger().Warn("restoring buffer", "buffer", b.handle, "bytes", len(b.data))
	b.create()
	return true
}

func (b *buffer) delete() {
	if b.handle != 0 {
		b.st.Context().DeleteBuffer(b.handle)
		b.handle = 0
	}
}

// VertexBuffer is a buffer of tightly packed vertex elements of T. It satisfies
// attributes.VertexBuffer.
type VertexBuffer[T Scalar] struct {
	*buffer
	components int
	count      int
}

// NewVertexBuffer uploads data as elements of the given number of components.
//
// Parameters:
//   - st: the pipeline state of the device the buffer is used on
//   - data: the component values, len(data) must be a multiple of components
//   - components: the components per element, 1 to 4
//   - opts: buffer options
//
// Returns:
//   - *VertexBuffer[T]: the uploaded buffer
//   - error: an error if components is out of range or does not divide the data
func NewVertexBuffer[T Scalar](st *state.State, data []T, components int, opts ...BufferOption) (*VertexBuffer[T], error) {
	if components < 1 || components > 4 {
		return nil, fmt.Errorf("vertex buffer components %d out of range 1..4", components)
	}
	if len(data)%components != 0 {
		return nil, fmt.Errorf("vertex buffer length %d is not a multiple of %d components", len(data), components)
	}
	return &VertexBuffer[T]{
		buffer:     newBuffer(st, gl.ArrayBuffer, common.SliceToBytes(data), opts),
		components: components,
		count:      len(data) / components,
	}, nil
}

// Buffer returns the buffer object.
func (v *VertexBuffer[T]) Buffer() gl.Buffer {
	return v.handle
}

// Type returns the GL component type of T.
func (v *VertexBuffer[T]) Type() gl.DataType {
	return dataType[T]()
}

// Components returns the components per element.
func (v *VertexBuffer[T]) Components() int {
	return v.components
}

// Count returns the number of elements.
func (v *VertexBuffer[T]) Count() int {
	return v.count
}

// Update overwrites elements starting at element index first. The buffer
// does not grow.
//
// Parameters:
//   - first: the first element to overwrite
//   - data: the replacement component values, a whole number of elements
//
// Returns:
//   - error: an error if the range falls outside the buffer
func (v *VertexBuffer[T]) Update(first int, data []T) error {
	if len(data)%v.components != 0 {
		return fmt.Errorf("vertex buffer update length %d is not a multiple of %d components", len(data), v.components)
	}
	bytes := common.SliceToBytes(data)
	stride := v.components * v.Type().Size()
	return v.update(first*stride, bytes)
}

// Restore recreates and re-uploads the buffer if its handle is no longer valid.
//
// Returns:
//   - error: always nil
func (v *VertexBuffer[T]) Restore() error {
	v.restore()
	return nil
}

// Delete releases the buffer object.
func (v *VertexBuffer[T]) Delete() {
	v.delete()
}

// IndexBuffer is a buffer of vertex indices. It satisfies attributes.IndexBuffer.
type IndexBuffer struct {
	*buffer
	typ   gl.DataType
	count int
}

// NewIndexBuffer uploads indices.
//
// Parameters:
//   - st: the pipeline state of the device the buffer is used on
//   - indices: the indices
//   - opts: buffer options
//
// Returns:
//   - *IndexBuffer: the uploaded buffer
func NewIndexBuffer[T Index](st *state.State, indices []T, opts ...BufferOption) *IndexBuffer {
	return &IndexBuffer{
		buffer: newBuffer(st, gl.ElementArrayBuffer, common.SliceToBytes(indices), opts),
		typ:    dataType[T](),
		count:  len(indices),
	}
}

// Buffer returns the buffer object.
func (i *IndexBuffer) Buffer() gl.Buffer {
	return i.handle
}

// Type returns UnsignedByte, UnsignedShort or UnsignedInt.
func (i *IndexBuffer) Type() gl.DataType {
	return i.typ
}

// Count returns the number of indices.
func (i *IndexBuffer) Count() int {
	return i.count
}

// Restore recreates and re-uploads the buffer if its handle is no longer valid.
//
// Returns:
//   - error: always nil
func (i *IndexBuffer) Restore() error {
	i.restore()
	return nil
}

// Delete releases the buffer object.
func (i *IndexBuffer) Delete() {
	i.delete()
}
