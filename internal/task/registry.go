package task

import (
	"fmt"
)

// Registry records task definitions in declaration order.
type Registry struct {
	defs   []*Definition
	byName map[string]*Definition
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Definition)}
}

// DefaultRegistry is the process-wide registry that Declare appends to.
var DefaultRegistry = NewRegistry()

// Declare registers d on DefaultRegistry and returns it, panicking on a
// duplicate name. It is meant for package-level declarations:
//
//	var extract = task.Declare(sql.QueryVariant.MustDefine("extract", ...))
func Declare(d *Definition) *Definition {
	return DefaultRegistry.MustRegister(d)
}

// Register appends d and stamps its declaration index.
func (r *Registry) Register(d *Definition) (*Definition, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("cannot register a task without a name")
	}
	if _, exists := r.byName[d.Name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateTask, d.Name)
	}
	d.index, d.registered = len(r.defs), true
	r.defs = append(r.defs, d)
	r.byName[d.Name] = d
	return d, nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(d *Definition) *Definition {
	if _, err := r.Register(d); err != nil {
		panic(err)
	}
	return d
}

// DefaultPlan returns every registered definition in declaration order.
func (r *Registry) DefaultPlan() []*Definition {
	plan := make([]*Definition, len(r.defs))
	copy(plan, r.defs)
	return plan
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (*Definition, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Select returns the named definitions in the given order.
func (r *Registry) Select(names ...string) ([]*Definition, error) {
	plan := make([]*Definition, 0, len(names))
	for _, name := range names {
		d, ok := r.byName[name]
		if !ok {
			return nil, fmt.Errorf("no task named %q", name)
		}
		plan = append(plan, d)
	}
	return plan, nil
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int { return len(r.defs) }
