package loader

import (
	"fmt"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-gl/engine/gl"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/attributes"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/command"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/resource"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/state"
)

// Shader input names LayoutOf looks up.
const (
	AttributePosition = "a_position"
	AttributeNormal   = "a_normal"
	AttributeTexCoord = "a_texcoord"
	AttributeColor    = "a_color"
)

// Layout assigns mesh streams to shader input locations. A negative location skips
// the stream. Position must be non-negative.
type Layout struct {
	Position int
	Normal   int
	TexCoord int
	Color    int
}

// LayoutOf resolves a Layout from the active inputs of cmd named a_position,
// a_normal, a_texcoord and a_color. Inputs the program does not use map to -1.
//
// Parameters:
//   - cmd: the command the geometry will be drawn with
//
// Returns:
//   - Layout: the resolved locations
func LayoutOf[P any](cmd *command.Command[P]) Layout {
	loc := func(name string) int {
		l, err := cmd.AttributeLocation(name)
		if err != nil {
			return -1
		}
		return l
	}
	return Layout{
		Position: loc(AttributePosition),
		Normal:   loc(AttributeNormal),
		TexCoord: loc(AttributeTexCoord),
		Color:    loc(AttributeColor),
	}
}

type gpuBuffer interface {
	Restore() error
	Delete()
}

// Geometry is a Mesh uploaded to one device: one vertex buffer per used stream,
// an optional index buffer and the Attributes binding them.
type Geometry struct {
	Attributes *attributes.Attributes

	buffers []gpuBuffer
}

// Upload creates GPU buffers for the streams named by layout and binds them into
// Attributes with the mesh topology. Indices use UnsignedShort when every index
// fits, UnsignedInt otherwise.
//
// Parameters:
//   - st: the pipeline state of the target device
//   - layout: stream locations, usually LayoutOf(cmd)
//   - opts: buffer options applied to every buffer, e.g. resource.WithUsage
//
// Returns:
//   - *Geometry: the uploaded geometry
//   - error: an error if the layout has no position or a buffer cannot be created
func (m *Mesh) Upload(st *state.State, layout Layout, opts ...resource.BufferOption) (*Geometry, error) {
	if layout.Position < 0 {
		return nil, fmt.Errorf("mesh %q: layout has no position location", m.Name)
	}

	g := &Geometry{}
	attrs := make(map[int]attributes.Attribute)

	add := func(location int, data []float32, components int) error {
		if location < 0 || len(data) == 0 {
			return nil
		}
		vb, err := resource.NewVertexBuffer(st, data, components, opts...)
		if err != nil {
			return err
		}
		g.buffers = append(g.buffers, vb)
		attrs[location] = attributes.Attribute{Buffer: vb}
		return nil
	}

	streams := []struct {
		location   int
		data       []float32
		components int
	}{
		{layout.Position, flatten(m.Positions), 3},
		{layout.Normal, flatten(m.Normals), 3},
		{layout.TexCoord, flatten(m.TexCoords), 2},
		{layout.Color, flatten(m.Colors), 4},
	}
	for _, s := range streams {
		if err := add(s.location, s.data, s.components); err != nil {
			g.Delete()
			return nil, fmt.Errorf("mesh %q: %w", m.Name, err)
		}
	}

	var err error
	if m.Indices == nil {
		g.Attributes, err = attributes.New(st, m.Topology, attrs)
	} else {
		ib := m.indexBuffer(st, opts)
		g.buffers = append(g.buffers, ib)
		g.Attributes, err = attributes.Indexed(st, m.Topology, ib, attrs)
	}
	if err != nil {
		g.Delete()
		return nil, fmt.Errorf("mesh %q: %w", m.Name, err)
	}
	return g, nil
}

func (m *Mesh) indexBuffer(st *state.State, opts []resource.BufferOption) *resource.IndexBuffer {
	if len(m.Positions)-1 > gltfMaxUnsignedShortIndex {
		return resource.NewIndexBuffer(st, m.Indices, opts...)
	}
	short := make([]uint16, len(m.Indices))
	for i, v := range m.Indices {
		short[i] = uint16(v)
	}
	return resource.NewIndexBuffer(st, short, opts...)
}

// Restore recreates the buffers and then the vertex array after a context loss.
func (g *Geometry) Restore() error {
	for _, b := range g.buffers {
		if err := b.Restore(); err != nil {
			return err
		}
	}
	if g.Attributes == nil {
		return nil
	}
	return g.Attributes.Restore()
}

// Delete releases the vertex array and every buffer.
func (g *Geometry) Delete() {
	if g.Attributes != nil {
		g.Attributes.Delete()
	}
	for _, b := range g.buffers {
		b.Delete()
	}
	g.buffers = nil
}

// Topology returns the primitive topology of the uploaded mesh.
func (g *Geometry) Topology() gl.Primitive {
	return g.Attributes.Topology()
}

// flatten reinterprets a slice of float arrays as its components without copying.
func flatten[A [2]float32 | [3]float32 | [4]float32](v []A) []float32 {
	if len(v) == 0 {
		return nil
	}
	n := int(unsafe.Sizeof(v[0])) / 4
	return unsafe.Slice((*float32)(unsafe.Pointer(&v[0])), len(v)*n)
}
