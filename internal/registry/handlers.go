package registry

import (
	"fmt"
	"log/slog"

	"github.com/CadentTech/bigrays/internal/resource"
	"github.com/CadentTech/bigrays/internal/task"
)

// RegisterVariant registers a task variant under its name.
func (r *Registry) RegisterVariant(v *task.Variant) {
	if v.Name == "" {
		panic("cannot register a task variant without a name")
	}
	if _, exists := r.variants[v.Name]; exists {
		panic(fmt.Sprintf("task variant with name '%s' already registered", v.Name))
	}
	slog.Debug("Registering task variant.", "name", v.Name, "resource", v.Resource)
	r.variants[v.Name] = v
}

// RegisterClient registers the client that opens resources of kind.
func (r *Registry) RegisterClient(kind resource.Kind, c resource.Client) {
	if kind == resource.None {
		panic("cannot register a resource client for the empty kind")
	}
	if _, exists := r.clients[kind]; exists {
		panic(fmt.Sprintf("resource client for kind '%s' already registered", kind))
	}
	slog.Debug("Registering resource client.", "kind", kind)
	r.clients[kind] = c
}
