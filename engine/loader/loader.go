package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/common"
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	meshCache map[string][]*Mesh
}

// Loader imports glTF 2.0 meshes (.gltf with embedded or external buffers, or .glb)
// and caches the decoded meshes. Meshes are CPU-side; Mesh.Upload puts them on a device.
type Loader interface {
	// Load imports a model file and caches the result by path.
	// If the path is already cached, the cached meshes are returned.
	//
	// Parameters:
	//   - path: the file path to the .gltf or .glb file
	//
	// Returns:
	//   - []*Mesh: one Mesh per primitive, in document order
	//   - error: error if loading fails
	Load(path string) ([]*Mesh, error)

	// LoadReader imports a model from a reader stream and caches it by the given name.
	//
	// Parameters:
	//   - name: the cache key for the loaded meshes
	//   - r: the reader providing model data
	//   - isGLB: true if the reader provides GLB binary data
	//
	// Returns:
	//   - []*Mesh: one Mesh per primitive, in document order
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, isGLB bool) ([]*Mesh, error)

	// Get retrieves cached meshes by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - []*Mesh: the cached meshes or nil
	Get(name string) []*Mesh

	// Names returns the cache keys.
	Names() []string
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with the given options applied.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new, empty Loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		meshCache: make(map[string][]*Mesh),
	}
	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) Load(path string) ([]*Mesh, error) {
	if cached := l.Get(path); cached != nil {
		return cached, nil
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".gltf", ".glb":
	default:
		return nil, fmt.Errorf("%w: model format %s", ErrUnsupported, ext)
	}

	p, err := parseFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return l.store(path, p)
}

func (l *loader) LoadReader(name string, r io.Reader, isGLB bool) ([]*Mesh, error) {
	if cached := l.Get(name); cached != nil {
		return cached, nil
	}

	p, err := parseReader(r, isGLB)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}
	return l.store(name, p)
}

func (l *loader) store(name string, p *gltfParser) ([]*Mesh, error) {
	meshes, err := extractMeshes(p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	l.mu.Lock()
	l.meshCache[name] = meshes
	l.mu.Unlock()

	common.Logger().Debug("loaded model", "name", name, "meshes", len(meshes), "generator", p.document.Asset.Generator)
	return meshes, nil
}

func (l *loader) Get(name string) []*Mesh {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.meshCache[name]
}

func (l *loader) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	names := make([]string, 0, len(l.meshCache))
	for k := range l.meshCache {
		names = append(names, k)
	}
	return names
}
