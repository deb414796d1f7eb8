package loader

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithMeshes is an option builder that pre-populates the cache, e.g. with
// procedurally built meshes that should be looked up like loaded ones.
//
// Parameters:
//   - key: the cache key
//   - meshes: the meshes to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the option to a loader
func WithMeshes(key string, meshes ...*Mesh) LoaderBuilderOption {
	return func(l *loader) {
		l.meshCache[key] = meshes
	}
}
