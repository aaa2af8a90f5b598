package registry

import (
	"sort"

	"github.com/CadentTech/bigrays/internal/resource"
	"github.com/CadentTech/bigrays/internal/task"
)

// Module is the interface that all core modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the registered variants and resource clients for a single
// application instance.
type Registry struct {
	variants map[string]*task.Variant
	clients  map[resource.Kind]resource.Client
}

// New creates a Registry and registers every given module into it.
func New(modules ...Module) *Registry {
	r := &Registry{
		variants: make(map[string]*task.Variant),
		clients:  make(map[resource.Kind]resource.Client),
	}
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// Variant returns the variant registered under name.
func (r *Registry) Variant(name string) (*task.Variant, bool) {
	v, ok := r.variants[name]
	return v, ok
}

// Client returns the client registered for kind. It implements
// resource.Clients.
func (r *Registry) Client(kind resource.Kind) (resource.Client, bool) {
	c, ok := r.clients[kind]
	return c, ok
}

// VariantNames returns the registered variant names in sorted order.
func (r *Registry) VariantNames() []string {
	names := make([]string, 0, len(r.variants))
	for name := range r.variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Kinds returns the registered resource kinds in sorted order.
func (r *Registry) Kinds() []resource.Kind {
	kinds := make([]resource.Kind, 0, len(r.clients))
	for k := range r.clients {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
