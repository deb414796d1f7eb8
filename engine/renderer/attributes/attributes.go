// Package attributes describes the vertex input of a draw: which buffers feed
// which locations, the primitive topology, optional indexing and instancing,
// and the vertex and instance counts derived from them.
package attributes

import (
	"fmt"
	"math"
	"slices"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/gl"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/state"
)

// Kind selects how integer buffer data reaches the shader.
type Kind int

const (
	// Pointer converts components to floats, optionally normalizing integers.
	Pointer Kind = iota
	// IPointer keeps integer components as integers; the buffer must hold an integer type.
	IPointer
)

func (k Kind) String() string {
	switch k {
	case Pointer:
		return "pointer"
	case IPointer:
		return "ipointer"
	default:
		return "unknown"
	}
}

// VertexBuffer is a GPU buffer of tightly packed vertex elements.
type VertexBuffer interface {
	// Buffer returns the buffer object.
	Buffer() gl.Buffer
	// Type returns the component type.
	Type() gl.DataType
	// Components returns the number of components per element, 1 to 4.
	Components() int
	// Count returns the number of elements.
	Count() int
}

// IndexBuffer is a GPU buffer of vertex indices.
type IndexBuffer interface {
	// Buffer returns the buffer object.
	Buffer() gl.Buffer
	// Type returns UnsignedByte, UnsignedShort or UnsignedInt.
	Type() gl.DataType
	// Count returns the number of indices.
	Count() int
}

// Attribute binds one vertex buffer to one shader input location.
type Attribute struct {
	// Kind selects float conversion (Pointer) or integer passthrough (IPointer).
	Kind Kind
	// Buffer supplies the data.
	Buffer VertexBuffer
	// Size overrides the component count of the buffer when non-zero.
	Size int
	// Normalized maps integer data to [0, 1] or [-1, 1]. Ignored for IPointer.
	Normalized bool
	// Divisor advances the attribute once per Divisor instances; 0 means per vertex.
	Divisor int
}

type entry struct {
	location int
	Attribute
}

// Attributes is an immutable vertex input description backed by a vertex array object.
type Attributes struct {
	st *state.State

	topology gl.Primitive
	entries  []entry
	index    IndexBuffer
	vao      gl.VertexArray

	count         int
	instanceCount int
}

// New creates non-indexed Attributes.
//
// Parameters:
//   - st: the pipeline state of the device the attributes are used on
//   - topology: the primitive topology
//   - attrs: attributes keyed by shader input location; resolve names with Command.AttributeLocation
//
// Returns:
//   - *Attributes: the vertex input description
//   - error: an error if a location or attribute is invalid
func New(st *state.State, topology gl.Primitive, attrs map[int]Attribute) (*Attributes, error) {
	return build(st, topology, nil, attrs)
}

// Indexed creates Attributes drawn through an index buffer.
//
// Parameters:
//   - st: the pipeline state of the device the attributes are used on
//   - topology: the primitive topology
//   - index: the index buffer; its length is the draw count
//   - attrs: attributes keyed by shader input location
//
// Returns:
//   - *Attributes: the vertex input description
//   - error: an error if the index buffer, a location or an attribute is invalid
func Indexed(st *state.State, topology gl.Primitive, index IndexBuffer, attrs map[int]Attribute) (*Attributes, error) {
	if index == nil {
		return nil, fmt.Errorf("indexed attributes require an index buffer")
	}
	switch index.Type() {
	case gl.UnsignedByte, gl.UnsignedShort, gl.UnsignedInt:
	default:
		return nil, fmt.Errorf("index buffer type %#x is not an unsigned integer type", uint32(index.Type()))
	}
	return build(st, topology, index, attrs)
}

// Empty creates Attributes with no buffers that draw count vertices, for
// shaders that derive positions from gl_VertexID such as full-screen triangles.
//
// Parameters:
//   - topology: the primitive topology
//   - count: the number of vertices to draw, panics if negative
//
// Returns:
//   - *Attributes: the vertex input description
func Empty(topology gl.Primitive, count int) *Attributes {
	if count < 0 {
		panic(fmt.Sprintf("attributes: negative vertex count %d", count))
	}
	return &Attributes{topology: topology, count: count}
}

func build(st *state.State, topology gl.Primitive, index IndexBuffer, attrs map[int]Attribute) (*Attributes, error) {
	a := &Attributes{st: st, topology: topology, index: index}

	locations := make([]int, 0, len(attrs))
	for loc := range attrs {
		locations = append(locations, loc)
	}
	slices.Sort(locations)

	for _, loc := range locations {
		attr := attrs[loc]
		if loc < 0 {
			return nil, fmt.Errorf("attribute location %d is invalid: resolve input names with Command.AttributeLocation first", loc)
		}
		if attr.Buffer == nil {
			return nil, fmt.Errorf("attribute %d: missing buffer", loc)
		}
		if attr.Size == 0 {
			attr.Size = attr.Buffer.Components()
		}
		if attr.Size < 1 || attr.Size > 4 {
			return nil, fmt.Errorf("attribute %d: component size %d out of range 1..4", loc, attr.Size)
		}
		if attr.Divisor < 0 {
			return nil, fmt.Errorf("attribute %d: negative divisor %d", loc, attr.Divisor)
		}
		switch attr.Kind {
		case Pointer:
		case IPointer:
			if !attr.Buffer.Type().IsInteger() {
				return nil, fmt.Errorf("attribute %d: ipointer requires an integer buffer", loc)
			}
		default:
			panic(fmt.Sprintf("attributes: unknown kind %d", attr.Kind))
		}
		a.entries = append(a.entries, entry{location: loc, Attribute: attr})
	}

	a.count, a.instanceCount = counts(a.entries, index)
	a.setup()
	return a, nil
}

// counts derives the draw counts. Without an index buffer the vertex count is
// the shortest buffer, so mismatched lengths clip rather than fail. The instance
// count is the largest one every instanced attribute can fully supply.
func counts(entries []entry, index IndexBuffer) (count, instances int) {
	if index != nil {
		count = index.Count()
	} else if len(entries) > 0 {
		count = math.MaxInt
		for _, e := range entries {
			count = min(count, e.Buffer.Count())
		}
	}

	instances = math.MaxInt
	for _, e := range entries {
		if e.Divisor > 0 {
			instances = min(instances, e.Buffer.Count()*e.Divisor)
		}
	}
	if instances == math.MaxInt {
		instances = 0
	}
	return count, instances
}

// setup creates and fills the vertex array object. Attributes without buffers
// have none.
func (a *Attributes) setup() {
	if len(a.entries) == 0 && a.index == nil {
		return
	}
	ctx := a.st.Context()
	a.vao = ctx.CreateVertexArray()
	a.st.PushVertexArray(a.vao)
	for _, e := range a.entries {
		ctx.BindBuffer(gl.ArrayBuffer, e.Buffer.Buffer())
		ctx.EnableVertexAttribArray(e.location)
		switch e.Kind {
		case Pointer:
			ctx.VertexAttribPointer(e.location, e.Size, e.Buffer.Type(), e.Normalized, 0, 0)
		case IPointer:
			ctx.VertexAttribIPointer(e.location, e.Size, e.Buffer.Type(), 0, 0)
		}
		if e.Divisor > 0 {
			ctx.VertexAttribDivisor(e.location, e.Divisor)
		}
	}
	if a.index != nil {
		ctx.BindBuffer(gl.ElementArrayBuffer, a.index.Buffer())
	}
	// the push above is always matched
	_ = a.st.PopVertexArray()
}

// Topology returns the primitive topology.
func (a *Attributes) Topology() gl.Primitive {
	return a.topology
}

// Count returns the number of vertices or indices drawn.
func (a *Attributes) Count() int {
	return a.count
}

// InstanceCount returns the number of instances drawn, 0 for non-instanced attributes.
func (a *Attributes) InstanceCount() int {
	return a.instanceCount
}

// IndexBuffer returns the index buffer, nil when not indexed.
func (a *Attributes) IndexBuffer() IndexBuffer {
	return a.index
}

// VertexArray returns the vertex array object, 0 for buffer-less attributes.
func (a *Attributes) VertexArray() gl.VertexArray {
	return a.vao
}

// Restore recreates the vertex array object if it was invalidated, e.g. by a
// context loss. The buffers must have been restored first.
//
// Returns:
//   - error: always nil; present for the restore sweep
func (a *Attributes) Restore() error {
	if a.vao == 0 || a.st.Context().IsVertexArray(a.vao) {
		return nil
	}
	common.Logger().Warn("restoring vertex array", "vertex_array", a.vao)
	a.setup()
	return nil
}

// Delete releases the vertex array object. The buffers are not owned and stay alive.
func (a *Attributes) Delete() {
	if a.vao != 0 {
		a.st.Context().DeleteVertexArray(a.vao)
		a.vao = 0
	}
}
