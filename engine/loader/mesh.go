package loader

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/gl"
	"github.com/chewxy/math32"
)

// Mesh is one glTF primitive decoded into per-vertex streams. Streams the file does
// not provide are nil, except Normals which are generated for indexed or plain
// triangle lists.
type Mesh struct {
	// Name is "<mesh>" for the first primitive and "<mesh>_prim<i>" for the rest.
	Name string

	Topology gl.Primitive

	Positions [][3]float32
	Normals   [][3]float32
	TexCoords [][2]float32
	Colors    [][4]float32

	// Indices is nil for non-indexed primitives.
	Indices []uint32

	BoundsMin [3]float32
	BoundsMax [3]float32
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// extractMeshes decodes every primitive of every mesh in document order.
func extractMeshes(p *gltfParser) ([]*Mesh, error) {
	var result []*Mesh
	for meshIdx := range p.document.Meshes {
		mesh := &p.document.Meshes[meshIdx]
		base := mesh.Name
		if base == "" {
			base = fmt.Sprintf("mesh_%d", meshIdx)
		}

		for primIdx := range mesh.Primitives {
			m, err := extractPrimitive(p, &mesh.Primitives[primIdx])
			if err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d: %w", meshIdx, primIdx, err)
			}
			m.Name = base
			if primIdx > 0 {
				m.Name = fmt.Sprintf("%s_prim%d", base, primIdx)
			}
			result = append(result, m)
		}
	}
	return result, nil
}

func extractPrimitive(p *gltfParser, prim *gltfPrimitive) (*Mesh, error) {
	mode := gltfPrimitiveModeTriangles
	if prim.Mode != nil {
		mode = *prim.Mode
	}
	if mode < 0 || mode > gltfPrimitiveModeMax {
		return nil, fmt.Errorf("%w: primitive mode %d", ErrUnsupported, mode)
	}

	posAccessor, ok := prim.Attributes[gltfSemanticPosition]
	if !ok {
		return nil, fmt.Errorf("primitive has no POSITION attribute")
	}
	positions, err := readAccessor[[3]float32](p, posAccessor, gltfAccessorTypeVec3, gltfComponentTypeFloat)
	if err != nil {
		return nil, fmt.Errorf("failed to read positions: %w", err)
	}

	m := &Mesh{
		Topology:  gl.Primitive(mode),
		Positions: positions,
	}
	m.BoundsMin, m.BoundsMax = boundingBox(positions)

	if idx, ok := prim.Attributes[gltfSemanticNormal]; ok {
		if m.Normals, err = readAccessor[[3]float32](p, idx, gltfAccessorTypeVec3, gltfComponentTypeFloat); err != nil {
			return nil, fmt.Errorf("failed to read normals: %w", err)
		}
	}
	if idx, ok := prim.Attributes[gltfSemanticTexCoord]; ok {
		if m.TexCoords, err = readAccessor[[2]float32](p, idx, gltfAccessorTypeVec2, gltfComponentTypeFloat); err != nil {
			return nil, fmt.Errorf("failed to read texcoords: %w", err)
		}
	}
	if idx, ok := prim.Attributes[gltfSemanticColor]; ok {
		if m.Colors, err = readColors(p, idx); err != nil {
			return nil, fmt.Errorf("failed to read colors: %w", err)
		}
	}
	if prim.Indices != nil {
		if m.Indices, err = p.readIndices(*prim.Indices); err != nil {
			return nil, fmt.Errorf("failed to read indices: %w", err)
		}
		for _, i := range m.Indices {
			if int(i) >= len(positions) {
				return nil, fmt.Errorf("index %d out of range for %d vertices", i, len(positions))
			}
		}
	}

	for name, n := range map[string]int{
		gltfSemanticNormal:   len(m.Normals),
		gltfSemanticTexCoord: len(m.TexCoords),
		gltfSemanticColor:    len(m.Colors),
	} {
		if n != 0 && n != len(positions) {
			return nil, fmt.Errorf("%s has %d elements, POSITION has %d", name, n, len(positions))
		}
	}

	if m.Normals == nil && mode == gltfPrimitiveModeTriangles {
		m.Normals = generateNormals(positions, m.Indices)
	}
	return m, nil
}

// readColors reads COLOR_0 as RGBA floats from VEC3 or VEC4 accessors of float or
// normalized unsigned components.
func readColors(p *gltfParser, index int) ([][4]float32, error) {
	acc, err := p.accessor(index)
	if err != nil {
		return nil, err
	}
	if acc.Type != gltfAccessorTypeVec3 && acc.Type != gltfAccessorTypeVec4 {
		return nil, fmt.Errorf("unsupported color type %s", acc.Type)
	}
	components := gltfAccessorTypeComponentCount(acc.Type)

	data, err := p.readAccessorData(index)
	if err != nil {
		return nil, err
	}

	var flat []float32
	switch acc.ComponentType {
	case gltfComponentTypeFloat:
		flat, err = decode[float32](data, acc.Count*components)
	case gltfComponentTypeUnsignedByte:
		flat = normalize(data, 255)
	case gltfComponentTypeUnsignedShort:
		var v []uint16
		v, err = decode[uint16](data, acc.Count*components)
		flat = normalize(v, 65535)
	default:
		return nil, fmt.Errorf("unsupported color component type %d", acc.ComponentType)
	}
	if err != nil {
		return nil, err
	}

	result := make([][4]float32, acc.Count)
	for i := range result {
		result[i][3] = 1
		copy(result[i][:components], flat[i*components:(i+1)*components])
	}
	return result, nil
}

func decode[T float32 | uint16](data []byte, n int) ([]T, error) {
	out := make([]T, n)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, out); err != nil {
		return nil, err
	}
	return out, nil
}

func normalize[T uint8 | uint16](v []T, scale float32) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x) / scale
	}
	return out
}

// boundingBox computes the axis-aligned bounds of positions.
func boundingBox(positions [][3]float32) (bmin, bmax [3]float32) {
	if len(positions) == 0 {
		return
	}
	bmin, bmax = positions[0], positions[0]
	for _, pos := range positions[1:] {
		for j := 0; j < 3; j++ {
			bmin[j] = math32.Min(bmin[j], pos[j])
			bmax[j] = math32.Max(bmax[j], pos[j])
		}
	}
	return
}

// generateNormals computes smooth normals for a triangle list by accumulating
// area-weighted face normals on every vertex of each triangle. A nil indices
// slice means consecutive vertex triples.
func generateNormals(positions [][3]float32, indices []uint32) [][3]float32 {
	n := len(positions)
	accum := make([][3]float32, n)

	triangles := n / 3
	if indices != nil {
		triangles = len(indices) / 3
	}
	vertex := func(i int) uint32 {
		if indices == nil {
			return uint32(i)
		}
		return indices[i]
	}

	for t := 0; t < triangles; t++ {
		i0, i1, i2 := vertex(3*t), vertex(3*t+1), vertex(3*t+2)
		p0, p1, p2 := positions[i0], positions[i1], positions[i2]

		e1 := [3]float32{p1[0] - p0[0], p1[1] - p0[1], p1[2] - p0[2]}
		e2 := [3]float32{p2[0] - p0[0], p2[1] - p0[1], p2[2] - p0[2]}
		face := [3]float32{
			e1[1]*e2[2] - e1[2]*e2[1],
			e1[2]*e2[0] - e1[0]*e2[2],
			e1[0]*e2[1] - e1[1]*e2[0],
		}

		for _, idx := range [3]uint32{i0, i1, i2} {
			accum[idx][0] += face[0]
			accum[idx][1] += face[1]
			accum[idx][2] += face[2]
		}
	}

	for i := range accum {
		length := math32.Sqrt(accum[i][0]*accum[i][0] + accum[i][1]*accum[i][1] + accum[i][2]*accum[i][2])
		if length < 1e-6 {
			accum[i] = [3]float32{0, 1, 0}
			continue
		}
		accum[i][0] /= length
		accum[i][1] /= length
		accum[i][2] /= length
	}
	return accum
}
