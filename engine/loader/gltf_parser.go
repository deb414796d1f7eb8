package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Common errors returned by the parser
var (
	ErrInvalidGLTFVersion = errors.New("invalid glTF version: must be 2.0")
	ErrInvalidGLB         = errors.New("invalid GLB file")
	ErrUnsupported        = errors.New("unsupported glTF feature")

	errMissingJSONChunk   = errors.New("GLB file missing JSON chunk")
	errInvalidBufferURI   = errors.New("invalid buffer URI")
	errBufferSizeMismatch = errors.New("buffer size mismatch")
)

// gltfParser loads a glTF or GLB document and reads typed accessor data from it.
type gltfParser struct {
	baseDir        string
	document       *gltfDocument
	glbBinaryChunk []byte
}

// parseFile loads and parses a glTF or GLB file, detecting the format from the
// extension or the GLB magic number.
//
// Parameters:
//   - path: path to the .gltf or .glb file
//
// Returns:
//   - *gltfParser: the parser holding the loaded document
//   - error: error if reading or parsing fails
func parseFile(path string) (*gltfParser, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	p := &gltfParser{baseDir: filepath.Dir(path)}
	isGLB := strings.EqualFold(filepath.Ext(path), ".glb") ||
		(len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == gltfGLBMagic)
	if err := p.parse(data, isGLB); err != nil {
		return nil, err
	}
	return p, nil
}

// parseReader parses a document from r. External buffer URIs resolve against the
// working directory.
//
// Parameters:
//   - r: reader containing glTF JSON or GLB data
//   - isGLB: true if the data is in GLB format
//
// Returns:
//   - *gltfParser: the parser holding the loaded document
//   - error: error if reading or parsing fails
func parseReader(r io.Reader, isGLB bool) (*gltfParser, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	p := &gltfParser{baseDir: "."}
	if err := p.parse(data, isGLB); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *gltfParser) parse(data []byte, isGLB bool) error {
	if isGLB {
		var err error
		if data, err = p.splitGLB(data); err != nil {
			return err
		}
	}

	var doc gltfDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse glTF JSON: %w", err)
	}
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return ErrInvalidGLTFVersion
	}
	if len(doc.ExtensionsRequired) > 0 {
		return fmt.Errorf("%w: required extensions %v", ErrUnsupported, doc.ExtensionsRequired)
	}
	if err := p.loadBuffers(&doc); err != nil {
		return fmt.Errorf("failed to load buffers: %w", err)
	}

	p.document = &doc
	return nil
}

// splitGLB returns the JSON chunk of a GLB container and keeps the BIN chunk for buffer 0.
func (p *gltfParser) splitGLB(data []byte) ([]byte, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("%w: file too small", ErrInvalidGLB)
	}

	r := bytes.NewReader(data)

	var header gltfGLBHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read GLB header: %w", err)
	}
	if header.Magic != gltfGLBMagic {
		return nil, fmt.Errorf("%w: bad magic %#x", ErrInvalidGLB, header.Magic)
	}
	if header.Version != gltfGLBVersion {
		return nil, fmt.Errorf("%w: version %d", ErrInvalidGLB, header.Version)
	}

	var jsonData []byte
	for {
		var chunkHeader gltfGLBChunkHeader
		if err := binary.Read(r, binary.LittleEndian, &chunkHeader); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to read chunk header: %w", err)
		}
		if int64(chunkHeader.ChunkLength) > int64(r.Len()) {
			return nil, fmt.Errorf("%w: chunk of %d bytes exceeds file", ErrInvalidGLB, chunkHeader.ChunkLength)
		}

		chunkData := make([]byte, chunkHeader.ChunkLength)
		if _, err := io.ReadFull(r, chunkData); err != nil {
			return nil, fmt.Errorf("failed to read chunk data: %w", err)
		}

		switch chunkHeader.ChunkType {
		case gltfGLBChunkJSON:
			jsonData = chunkData
		case gltfGLBChunkBIN:
			p.glbBinaryChunk = chunkData
		}
	}

	if jsonData == nil {
		return nil, errMissingJSONChunk
	}
	return jsonData, nil
}

// loadBuffers fills every buffer from its URI or from the GLB binary chunk.
func (p *gltfParser) loadBuffers(doc *gltfDocument) error {
	for i := range doc.Buffers {
		buf := &doc.Buffers[i]

		switch {
		case buf.URI != "":
			data, err := p.loadBufferURI(buf.URI)
			if err != nil {
				return fmt.Errorf("buffer %d: %w", i, err)
			}
			buf.Data = data
		case i == 0 && p.glbBinaryChunk != nil:
			buf.Data = p.glbBinaryChunk
		default:
			return fmt.Errorf("buffer %d has no URI and no GLB binary chunk", i)
		}

		if len(buf.Data) < buf.ByteLength {
			return fmt.Errorf("buffer %d: %w", i, errBufferSizeMismatch)
		}
	}
	return nil
}

func (p *gltfParser) loadBufferURI(uri string) ([]byte, error) {
	if strings.HasPrefix(uri, "data:") {
		return loadDataURI(uri)
	}

	data, err := os.ReadFile(filepath.Join(p.baseDir, uri))
	if err != nil {
		return nil, fmt.Errorf("failed to load buffer file %q: %w", uri, err)
	}
	return data, nil
}

// loadDataURI decodes data:[<mediatype>];base64,<data>.
func loadDataURI(uri string) ([]byte, error) {
	commaIdx := strings.Index(uri, ",")
	if commaIdx < 0 {
		return nil, errInvalidBufferURI
	}

	header := uri[len("data:"):commaIdx]
	if !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("unsupported data URI encoding: %s", header)
	}

	data, err := base64.StdEncoding.DecodeString(uri[commaIdx+1:])
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}
	return data, nil
}

// accessor returns the accessor at index after bounds checking.
func (p *gltfParser) accessor(index int) (*gltfAccessor, error) {
	if index < 0 || index >= len(p.document.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", index)
	}
	return &p.document.Accessors[index], nil
}

// readAccessorData gathers an accessor's elements into a tightly packed byte slice,
// dropping any bufferView stride.
func (p *gltfParser) readAccessorData(index int) ([]byte, error) {
	acc, err := p.accessor(index)
	if err != nil {
		return nil, err
	}
	if acc.Sparse != nil {
		return nil, fmt.Errorf("%w: sparse accessor %d", ErrUnsupported, index)
	}
	if acc.BufferView == nil {
		return nil, fmt.Errorf("accessor %d has no bufferView", index)
	}
	if *acc.BufferView < 0 || *acc.BufferView >= len(p.document.BufferViews) {
		return nil, fmt.Errorf("bufferView index %d out of range", *acc.BufferView)
	}

	bv := &p.document.BufferViews[*acc.BufferView]
	if bv.Buffer < 0 || bv.Buffer >= len(p.document.Buffers) {
		return nil, fmt.Errorf("buffer index %d out of range", bv.Buffer)
	}
	buf := p.document.Buffers[bv.Buffer].Data

	elementSize := gltfComponentTypeSize(acc.ComponentType) * gltfAccessorTypeComponentCount(acc.Type)
	if elementSize == 0 {
		return nil, fmt.Errorf("accessor %d: unknown layout %s/%d", index, acc.Type, acc.ComponentType)
	}
	stride := elementSize
	if bv.ByteStride != nil && *bv.ByteStride > 0 {
		stride = *bv.ByteStride
	}

	start := bv.ByteOffset + acc.ByteOffset
	if acc.Count > 0 {
		end := start + (acc.Count-1)*stride + elementSize
		if end > bv.ByteOffset+bv.ByteLength || end > len(buf) {
			return nil, fmt.Errorf("accessor %d exceeds bufferView bounds", index)
		}
	}

	result := make([]byte, acc.Count*elementSize)
	for i := 0; i < acc.Count; i++ {
		src := start + i*stride
		copy(result[i*elementSize:(i+1)*elementSize], buf[src:src+elementSize])
	}
	return result, nil
}

// readAccessor decodes an accessor of the given type and component type into elements of T.
//
// Parameters:
//   - p: the parser holding the document
//   - index: the accessor index
//   - accessorType: the required accessor type, e.g. VEC3
//   - componentType: the required component type, e.g. FLOAT
//
// Returns:
//   - []T: one element per accessor element
//   - error: error if the accessor does not match or cannot be read
func readAccessor[T any](p *gltfParser, index int, accessorType string, componentType int) ([]T, error) {
	acc, err := p.accessor(index)
	if err != nil {
		return nil, err
	}
	if acc.Type != accessorType || acc.ComponentType != componentType {
		return nil, fmt.Errorf("accessor %d is %s/%d, want %s/%d", index, acc.Type, acc.ComponentType, accessorType, componentType)
	}

	data, err := p.readAccessorData(index)
	if err != nil {
		return nil, err
	}

	result := make([]T, acc.Count)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, result); err != nil {
		return nil, err
	}
	return result, nil
}

// readIndices reads a SCALAR index accessor of any unsigned component type as uint32.
func (p *gltfParser) readIndices(index int) ([]uint32, error) {
	acc, err := p.accessor(index)
	if err != nil {
		return nil, err
	}

	switch acc.ComponentType {
	case gltfComponentTypeUnsignedByte:
		v, err := readAccessor[uint8](p, index, gltfAccessorTypeScalar, acc.ComponentType)
		return widen(v), err
	case gltfComponentTypeUnsignedShort:
		v, err := readAccessor[uint16](p, index, gltfAccessorTypeScalar, acc.ComponentType)
		return widen(v), err
	case gltfComponentTypeUnsignedInt:
		return readAccessor[uint32](p, index, gltfAccessorTypeScalar, acc.ComponentType)
	default:
		return nil, fmt.Errorf("unsupported index component type: %d", acc.ComponentType)
	}
}

func widen[T uint8 | uint16](v []T) []uint32 {
	out := make([]uint32, len(v))
	for i, x := range v {
		out[i] = uint32(x)
	}
	return out
}

// gltfComponentTypeSize returns the byte size of a component type.
func gltfComponentTypeSize(componentType int) int {
	switch componentType {
	case gltfComponentTypeByte, gltfComponentTypeUnsignedByte:
		return 1
	case gltfComponentTypeShort, gltfComponentTypeUnsignedShort:
		return 2
	case gltfComponentTypeUnsignedInt, gltfComponentTypeFloat:
		return 4
	default:
		return 0
	}
}

// gltfAccessorTypeComponentCount returns the number of components for the accessor
// types a mesh attribute can use.
func gltfAccessorTypeComponentCount(accessorType string) int {
	switch accessorType {
	case gltfAccessorTypeScalar:
		return 1
	case gltfAccessorTypeVec2:
		return 2
	case gltfAccessorTypeVec3:
		return 3
	case gltfAccessorTypeVec4:
		return 4
	default:
		return 0
	}
}
