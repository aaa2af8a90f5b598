package executor

import (
	"context"
	"fmt"

	"github.com/CadentTech/bigrays/internal/config"
	"github.com/CadentTech/bigrays/internal/ctxlog"
	"github.com/CadentTech/bigrays/internal/resource"
	"github.com/CadentTech/bigrays/internal/task"
)

// Run executes plan in order. An empty plan runs every definition of the
// Runner's registry in declaration order.
//
// Before any task runs, the required config values of every resource the
// plan needs are checked. The outputs of the plan's definitions are reset at
// the start of the run. Cancellation of ctx is honoured between tasks.
func (r *Runner) Run(ctx context.Context, plan ...*task.Definition) error {
	logger := ctxlog.FromContext(ctx)
	if len(plan) == 0 {
		plan = r.registry.DefaultPlan()
		logger.Debug("Using declared task order.", "count", len(plan))
	} else {
		logger.Debug("Using custom task list.", "count", len(plan))
	}

	if err := r.checkConfigs(plan); err != nil {
		logger.Error("Missing configuration.", "error", err)
		return err
	}

	for _, d := range plan {
		d.ResetOutput()
	}

	logger.Info("🚀 Starting run.", "tasks", len(plan))
	mgr := r.newManager(r.clients, r.store)
	err := r.runPlan(ctx, mgr, plan)

	if cerr := mgr.CloseAll(ctx); cerr != nil {
		logger.Warn("Could not release resource at end of run.", "error", cerr)
	}

	if err != nil {
		logger.Error("Run aborted.", "error", err)
		return err
	}
	logger.Info("🏁 Run complete.", "tasks", len(plan))
	return nil
}

func (r *Runner) runPlan(ctx context.Context, mgr ResourceManager, plan []*task.Definition) error {
	outputs := task.NewOutputs()
	for _, d := range plan {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run cancelled before task %q: %w", d.Name, err)
		}
		out, err := r.runTask(ctx, mgr, d, outputs)
		if err != nil {
			return err
		}
		d.SetOutput(out)
		outputs.Set(d, out)
	}
	return nil
}

// checkConfigs verifies that every resource the plan needs has its
// required config values. Unknown kinds are left for Ensure to report.
func (r *Runner) checkConfigs(plan []*task.Definition) error {
	type need struct {
		kind resource.Kind
		cfg  *config.Store
	}
	checked := make(map[need]bool)
	missing := make(map[resource.Kind][]string)

	for _, d := range plan {
		if d.Resource == resource.None {
			continue
		}
		n := need{kind: d.Resource, cfg: r.effectiveStore(d)}
		if checked[n] {
			continue
		}
		checked[n] = true

		client, ok := r.clients.Client(n.kind)
		if !ok {
			continue
		}
		for _, key := range n.cfg.Missing(client.RequiredConfigs(n.cfg)...) {
			if !contains(missing[n.kind], key) {
				missing[n.kind] = append(missing[n.kind], key)
			}
		}
	}

	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}

func (r *Runner) effectiveStore(d *task.Definition) *config.Store {
	if d.ResourceConfig != nil {
		return d.ResourceConfig
	}
	return r.store
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
