// Package functional runs a single task variant on demand, outside of any
// registry, and hands back its output.
package functional

import (
	"context"

	"github.com/CadentTech/bigrays/internal/executor"
	"github.com/CadentTech/bigrays/internal/task"
)

// Call defines a one-off task from v and attrs, runs it alone through r and
// returns its output. The definition is never registered, so it does not
// join the default plan. The task gets its own resource lifecycle: the
// resource is opened, used once and closed.
func Call(ctx context.Context, r *executor.Runner, v *task.Variant, attrs task.Attributes) (any, error) {
	d, err := v.Define(v.Name, attrs)
	if err != nil {
		return nil, err
	}
	if err := r.Run(ctx, d); err != nil {
		return nil, err
	}
	return d.Output()
}

// Wrap returns a function that calls v through r each time it is invoked.
func Wrap(r *executor.Runner, v *task.Variant) func(ctx context.Context, attrs task.Attributes) (any, error) {
	return func(ctx context.Context, attrs task.Attributes) (any, error) {
		return Call(ctx, r, v, attrs)
	}
}
