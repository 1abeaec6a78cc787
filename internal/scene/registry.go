package scene

import "sort"

// Registry holds fully resolved scenes keyed by project-relative path.
// A scene enters the registry only after its parse completed; a parse
// that depends on an unregistered scene is retried by the driver.
type Registry struct {
	scenes map[string]*Graph
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{scenes: make(map[string]*Graph)}
}

// Register stores a resolved scene under its path, replacing any prior
// entry.
func (r *Registry) Register(path string, g *Graph) {
	r.scenes[path] = g
}

// Lookup returns the resolved scene at path.
func (r *Registry) Lookup(path string) (*Graph, bool) {
	g, ok := r.scenes[path]
	return g, ok
}

// Len returns the number of registered scenes.
func (r *Registry) Len() int { return len(r.scenes) }

// Paths returns every registered scene path, sorted.
func (r *Registry) Paths() []string {
	paths := make([]string, 0, len(r.scenes))
	for p := range r.scenes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
