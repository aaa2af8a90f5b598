package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/CadentTech/bigrays/internal/ctxlog"
	"github.com/CadentTech/bigrays/internal/executor"
	"github.com/CadentTech/bigrays/internal/task"
)

// Plan loads the job files, applies their settings and then the configured
// overrides to the Store, and returns the registry of bound tasks along
// with the plan to run.
func (a *App) Plan(ctx context.Context) (*task.Registry, []*task.Definition, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	if err := a.registry.ValidateRegistry(ctx); err != nil {
		return nil, nil, err
	}

	model, err := LoadJobs(ctx, a.config.JobPaths...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load job files: %w", err)
	}
	model.ApplyTo(a.store)

	keys := make([]string, 0, len(a.config.Settings))
	for k := range a.config.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		a.logger.Debug("Applying setting.", k, a.config.Settings[k])
		a.store.Set(k, a.config.Settings[k])
	}

	tasks, err := Bind(a.registry, model, a.store)
	if err != nil {
		return nil, nil, err
	}
	if len(a.config.Tasks) == 0 {
		return tasks, tasks.DefaultPlan(), nil
	}
	plan, err := tasks.Select(a.config.Tasks...)
	if err != nil {
		return nil, nil, err
	}
	return tasks, plan, nil
}

// Run executes the main application logic based on the provided configuration.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if _, err := a.startHealthcheckServer(); err != nil {
		return err
	}
	defer a.closeHealthcheckServer()

	tasks, plan, err := a.Plan(ctx)
	if err != nil {
		return err
	}
	if len(plan) == 0 {
		a.logger.Warn("No tasks declared, execution not required.")
		return nil
	}

	runner := executor.New(a.registry, a.store, executor.WithRegistry(tasks))
	if err := runner.Run(ctx, plan...); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
