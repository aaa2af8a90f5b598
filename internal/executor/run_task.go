package executor

import (
	"context"
	"fmt"
	"sort"

	"github.com/CadentTech/bigrays/internal/config"
	"github.com/CadentTech/bigrays/internal/ctxlog"
	"github.com/CadentTech/bigrays/internal/task"
	"github.com/CadentTech/bigrays/internal/template"
)

// runTask executes a single definition: resolve, ensure, run.
func (r *Runner) runTask(ctx context.Context, mgr ResourceManager, d *task.Definition, outputs *task.Outputs) (any, error) {
	ctx, logger := ctxlog.With(ctx, "task", d.Name)
	logger.Info("▶️ Starting task", "variant", d.Variant, "resource", d.Resource)

	store := r.effectiveStore(d)
	attrs, err := resolveAttributes(ctx, d, outputs, store)
	if err != nil {
		return nil, err
	}
	logger.Debug("Task attributes resolved.", "attributes", formatAttrsForLogs(attrs))

	handle, err := mgr.Ensure(ctx, d.Resource, d.ResourceConfig)
	if err != nil {
		return nil, err
	}

	if d.Work == nil {
		return nil, &task.ExecutionError{Task: d.Name, Err: task.ErrNoWork}
	}
	out, err := d.Work.Run(ctx, &task.Env{
		Task:    d,
		Attrs:   attrs,
		Handle:  handle,
		Outputs: outputs,
		Config:  store,
	})
	if err != nil {
		return nil, &task.ExecutionError{Task: d.Name, Err: err}
	}

	logger.Info("✅ Finished task")
	return out, nil
}

// resolveAttributes evaluates deferred expressions and substitutes
// templates against a snapshot of store. Only text written in the task
// definition is substituted; values taken from outputs or config are used as
// they are.
func resolveAttributes(ctx context.Context, d *task.Definition, outputs *task.Outputs, store *config.Store) (task.Attributes, error) {
	attrs := d.Attrs.Clone()
	snapshot := store.Clone()
	expand := func(s string) (string, error) { return template.Substitute(s, snapshot) }

	templated := make(map[string]bool, len(d.Templates))
	for _, name := range d.Templates {
		templated[name] = true
	}

	for _, name := range d.Templates {
		if _, deferred := d.Deferred[name]; deferred {
			continue
		}
		s, ok := attrs[name].(string)
		if !ok {
			continue
		}
		out, err := expand(s)
		if err != nil {
			return nil, fmt.Errorf("task %q: attribute %q: %w", d.Name, name, err)
		}
		attrs[name] = out
	}

	if len(d.Deferred) > 0 {
		sc := scope{outputs: outputs, store: snapshot}
		names := make([]string, 0, len(d.Deferred))
		for name := range d.Deferred {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			var (
				v   any
				err error
			)
			if tmpl, ok := d.Deferred[name].(config.Template); ok && templated[name] {
				v, err = tmpl.EvaluateTemplate(ctx, sc, expand)
			} else {
				v, err = d.Deferred[name].Evaluate(ctx, sc)
			}
			if err != nil {
				return nil, fmt.Errorf("task %q: evaluating attribute %q: %w", d.Name, name, err)
			}
			attrs[name] = v
		}
	}
	return attrs, nil
}

// scope exposes the current run to deferred expressions.
type scope struct {
	outputs *task.Outputs
	store   *config.Store
}

func (s scope) Output(name string) (any, error) { return s.outputs.Output(name) }

func (s scope) Lookup(key string) (string, bool) { return s.store.Lookup(key) }
