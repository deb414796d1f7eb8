package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/gl"
	"github.com/Carmen-Shannon/oxy-gl/engine/internal/gltest"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/command"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-6

func le(values ...any) []byte {
	var b bytes.Buffer
	for _, v := range values {
		if err := binary.Write(&b, binary.LittleEndian, v); err != nil {
			panic(err)
		}
	}
	return b.Bytes()
}

// quadBin holds four positions, six uint16 indices and four stride-4 RGB colors.
var quadBin = le(
	[][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
	[]uint16{0, 1, 2, 0, 2, 3},
	[]uint8{255, 0, 0, 0, 0, 255, 0, 0, 0, 0, 255, 0, 255, 255, 255, 0},
)

func quadDoc(buffer map[string]any) map[string]any {
	return map[string]any{
		"asset": map[string]any{"version": "2.0", "generator": "loader_test"},
		"meshes": []any{map[string]any{
			"name": "quad",
			"primitives": []any{
				map[string]any{"attributes": map[string]int{"POSITION": 0}, "indices": 1},
				map[string]any{"attributes": map[string]int{"POSITION": 0, "COLOR_0": 2}, "mode": 0},
			},
		}},
		"accessors": []any{
			map[string]any{"bufferView": 0, "componentType": 5126, "count": 4, "type": "VEC3"},
			map[string]any{"bufferView": 1, "componentType": 5123, "count": 6, "type": "SCALAR"},
			map[string]any{"bufferView": 2, "componentType": 5121, "normalized": true, "count": 4, "type": "VEC3"},
		},
		"bufferViews": []any{
			map[string]any{"buffer": 0, "byteOffset": 0, "byteLength": 48},
			map[string]any{"buffer": 0, "byteOffset": 48, "byteLength": 12},
			map[string]any{"buffer": 0, "byteOffset": 60, "byteLength": 16, "byteStride": 4},
		},
		"buffers": []any{buffer},
	}
}

func embedded() []byte {
	data, _ := json.Marshal(quadDoc(map[string]any{
		"uri":        "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(quadBin),
		"byteLength": len(quadBin),
	}))
	return data
}

func pad(b []byte, fill byte) []byte {
	for len(b)%4 != 0 {
		b = append(b, fill)
	}
	return b
}

func glb(doc map[string]any, bin []byte) []byte {
	js, _ := json.Marshal(doc)
	js = pad(js, ' ')
	bin = pad(append([]byte(nil), bin...), 0)
	total := 12 + 8 + len(js) + 8 + len(bin)
	return le(
		uint32(gltfGLBMagic), uint32(2), uint32(total),
		uint32(len(js)), uint32(gltfGLBChunkJSON), js,
		uint32(len(bin)), uint32(gltfGLBChunkBIN), bin,
	)
}

func assertQuad(t *testing.T, meshes []*Mesh) {
	t.Helper()
	require.Len(t, meshes, 2)

	tri := meshes[0]
	assert.Equal(t, "quad", tri.Name)
	assert.Equal(t, gl.Triangles, tri.Topology)
	assert.Equal(t, 4, tri.VertexCount())
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, tri.Indices)
	assert.Equal(t, [3]float32{0, 0, 0}, tri.BoundsMin)
	assert.Equal(t, [3]float32{1, 1, 0}, tri.BoundsMax)
	require.Len(t, tri.Normals, 4)
	for _, n := range tri.Normals {
		assert.InDeltaSlice(t, []float32{0, 0, 1}, n[:], eps)
	}

	points := meshes[1]
	assert.Equal(t, "quad_prim1", points.Name)
	assert.Equal(t, gl.Points, points.Topology)
	assert.Nil(t, points.Indices)
	assert.Nil(t, points.Normals, "normals are only generated for triangle lists")
	require.Len(t, points.Colors, 4)
	assert.InDeltaSlice(t, []float32{0, 1, 0, 1}, points.Colors[1][:], eps)
	assert.InDeltaSlice(t, []float32{1, 1, 1, 1}, points.Colors[3][:], eps)
}

func TestLoadReaderEmbeddedBuffer(t *testing.T) {
	l := NewLoader()

	meshes, err := l.LoadReader("quad", bytes.NewReader(embedded()), false)

	require.NoError(t, err)
	assertQuad(t, meshes)
	assert.Equal(t, []string{"quad"}, l.Names())
}

func TestLoadReaderGLB(t *testing.T) {
	doc := quadDoc(map[string]any{"byteLength": len(quadBin)})

	meshes, err := NewLoader().LoadReader("quad", bytes.NewReader(glb(doc, quadBin)), true)

	require.NoError(t, err)
	assertQuad(t, meshes)
}

func TestLoadFileWithExternalBuffer(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quad.bin"), quadBin, 0o644))
	data, err := json.Marshal(quadDoc(map[string]any{"uri": "quad.bin", "byteLength": len(quadBin)}))
	require.NoError(t, err)
	path := filepath.Join(dir, "quad.gltf")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	l := NewLoader()

	first, err := l.Load(path)
	require.NoError(t, err)
	assertQuad(t, first)

	require.NoError(t, os.Remove(path))
	second, err := l.Load(path)
	require.NoError(t, err, "cached meshes are returned without touching the file")
	assert.Same(t, first[0], second[0])
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	_, err := NewLoader().Load("model.obj")

	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestWithMeshesPrepopulatesCache(t *testing.T) {
	m := &Mesh{Name: "custom", Topology: gl.Lines, Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}}}

	l := NewLoader(WithMeshes("custom", m))

	assert.Equal(t, []*Mesh{m}, l.Get("custom"))
	assert.Nil(t, l.Get("missing"))
}

func TestParseErrors(t *testing.T) {
	mutate := func(f func(doc map[string]any)) []byte {
		doc := quadDoc(map[string]any{
			"uri":        "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(quadBin),
			"byteLength": len(quadBin),
		})
		f(doc)
		data, _ := json.Marshal(doc)
		return data
	}

	tests := []struct {
		name string
		data []byte
		glb  bool
		is   error
		msg  string
	}{
		{
			name: "version",
			data: mutate(func(doc map[string]any) { doc["asset"] = map[string]any{"version": "1.0"} }),
			is:   ErrInvalidGLTFVersion,
		},
		{
			name: "required extension",
			data: mutate(func(doc map[string]any) { doc["extensionsRequired"] = []string{"KHR_draco_mesh_compression"} }),
			is:   ErrUnsupported,
		},
		{
			name: "index out of range",
			data: mutate(func(doc map[string]any) {
				doc["accessors"].([]any)[0].(map[string]any)["count"] = 2
			}),
			msg: "index 2 out of range",
		},
		{
			name: "accessor past view",
			data: mutate(func(doc map[string]any) {
				doc["accessors"].([]any)[0].(map[string]any)["count"] = 5
			}),
			msg: "exceeds bufferView bounds",
		},
		{
			name: "bad primitive mode",
			data: mutate(func(doc map[string]any) {
				prims := doc["meshes"].([]any)[0].(map[string]any)["primitives"].([]any)
				prims[1].(map[string]any)["mode"] = 7
			}),
			is: ErrUnsupported,
		},
		{
			name: "bad glb magic",
			data: le(uint32(0x12345678), uint32(2), uint32(12)),
			glb:  true,
			is:   ErrInvalidGLB,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader().LoadReader(tt.name, bytes.NewReader(tt.data), tt.glb)

			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
			if tt.msg != "" {
				assert.ErrorContains(t, err, tt.msg)
			}
		})
	}
}

const litVS = `layout(location = 0) in vec3 a_position;
layout(location = 1) in vec3 a_normal;
out vec3 v_normal;
void main() {
    v_normal = a_normal;
    gl_Position = vec4(a_position, 1.0);
}`

const litFS = `precision highp float;
in vec3 v_normal;
out vec4 o_color;
void main() {
    o_color = vec4(v_normal * 0.5 + 0.5, 1.0);
}`

func TestUploadAndDraw(t *testing.T) {
	ctx := gltest.New()
	dev := renderer.NewDevice(ctx, renderer.WithDrawableSize(func() (int, int) { return 32, 32 }))
	meshes, err := NewLoader().LoadReader("quad", bytes.NewReader(embedded()), false)
	require.NoError(t, err)
	cmd, err := command.New[struct{}](dev.State(), litVS, litFS)
	require.NoError(t, err)

	layout := LayoutOf(cmd)
	assert.Equal(t, Layout{Position: 0, Normal: 1, TexCoord: -1, Color: -1}, layout)

	ctx.ClearCalls()
	geo, err := meshes[0].Upload(dev.State(), layout)
	require.NoError(t, err)
	assert.Equal(t, 3, ctx.Count("BufferData"), "position, normal and index buffers")
	assert.Equal(t, 2, ctx.Count("VertexAttribPointer"))
	assert.Equal(t, gl.Triangles, geo.Topology())

	draw := func() {
		ctx.ClearCalls()
		require.NoError(t, dev.Target(func(tg *renderer.Target) error {
			return renderer.Draw(tg, cmd, geo.Attributes, struct{}{})
		}))
		draws := ctx.Named("DrawElements")
		require.Len(t, draws, 1)
		assert.Equal(t, []any{gl.Triangles, 6, gl.UnsignedShort, 0}, draws[0].Args)
	}
	draw()

	ctx.LoseContext()
	ctx.RestoreContext()
	require.NoError(t, dev.Restore(cmd, geo))
	draw()

	geo.Delete()
	assert.Nil(t, geo.buffers)
}

func TestUploadRequiresPosition(t *testing.T) {
	ctx := gltest.New()
	dev := renderer.NewDevice(ctx)
	m := &Mesh{Name: "lonely", Topology: gl.Points, Positions: [][3]float32{{0, 0, 0}}}

	_, err := m.Upload(dev.State(), Layout{Position: -1, Normal: 0})

	assert.ErrorContains(t, err, "no position location")
	assert.Zero(t, ctx.Count("BufferData"))
}

func TestUploadWideIndices(t *testing.T) {
	ctx := gltest.New()
	dev := renderer.NewDevice(ctx)
	m := &Mesh{
		Name:      "wide",
		Topology:  gl.Points,
		Positions: make([][3]float32, gltfMaxUnsignedShortIndex+2),
		Indices:   []uint32{0, gltfMaxUnsignedShortIndex + 1},
	}

	geo, err := m.Upload(dev.State(), Layout{Position: 0, Normal: -1, TexCoord: -1, Color: -1})

	require.NoError(t, err)
	assert.Equal(t, gl.UnsignedInt, geo.Attributes.IndexBuffer().Type())
}
