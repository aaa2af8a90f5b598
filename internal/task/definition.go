// Package task defines the unit of work bigrays runs: a named Definition
// with attributes, an optional resource requirement and a Work to invoke.
package task

import (
	"context"
	"fmt"

	"github.com/CadentTech/bigrays/internal/config"
	"github.com/CadentTech/bigrays/internal/resource"
)

// Work is the behaviour of a task.
type Work interface {
	Run(ctx context.Context, env *Env) (any, error)
}

// WorkFunc adapts a function to Work.
type WorkFunc func(ctx context.Context, env *Env) (any, error)

// Run implements Work.
func (f WorkFunc) Run(ctx context.Context, env *Env) (any, error) { return f(ctx, env) }

// Env is everything a Work can see while it runs.
type Env struct {
	// Task is the definition being run.
	Task *Definition
	// Attrs are the resolved attributes: deferred expressions evaluated and
	// templates substituted.
	Attrs Attributes
	// Handle is the open resource of the task's kind, or nil. It is only
	// valid for the duration of the call.
	Handle any
	// Outputs holds the outputs of the tasks that already ran.
	Outputs *Outputs
	// Config is the effective config Store for this task.
	Config *config.Store
}

// Definition is a single declared task.
type Definition struct {
	Name string
	// Resource is the kind the task needs, or resource.None.
	Resource resource.Kind
	// ResourceConfig overrides the run's config Store when the resource is
	// opened. Tasks sharing the same pointer share an open resource.
	ResourceConfig *config.Store
	// Attrs are static attribute values.
	Attrs Attributes
	// Deferred are attribute values computed just before the task runs.
	Deferred map[string]config.Expression
	// Templates names the string attributes that get `{key}` substitution.
	Templates []string
	Work      Work
	// Variant is the name of the variant the definition was built from.
	Variant string

	index      int
	registered bool
	output     any
	ready      bool
}

// Func builds a Definition from a plain function.
func Func(name string, kind resource.Kind, fn func(ctx context.Context, env *Env) (any, error)) *Definition {
	return &Definition{Name: name, Resource: kind, Work: WorkFunc(fn)}
}

// Index returns the declaration index stamped by Registry.Register, or -1.
func (d *Definition) Index() int {
	if !d.registered {
		return -1
	}
	return d.index
}

// Output returns the value produced by the task in the current run.
func (d *Definition) Output() (any, error) {
	if !d.ready {
		return nil, &OutputNotReadyError{Task: d.Name}
	}
	return d.output, nil
}

// SetOutput records the task's output.
func (d *Definition) SetOutput(v any) {
	d.output, d.ready = v, true
}

// ResetOutput clears the output slot at the start of a run.
func (d *Definition) ResetOutput() {
	d.output, d.ready = nil, false
}

func (d *Definition) String() string {
	if d.Variant != "" {
		return fmt.Sprintf("%s %q", d.Variant, d.Name)
	}
	return fmt.Sprintf("task %q", d.Name)
}
