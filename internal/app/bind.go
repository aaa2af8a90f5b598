package app

import (
	"fmt"

	"github.com/CadentTech/bigrays/internal/config"
	"github.com/CadentTech/bigrays/internal/registry"
	"github.com/CadentTech/bigrays/internal/task"
)

// Bind turns the tasks of model into definitions registered, in declaration
// order, on a fresh task.Registry. Tasks whose resource_config overrides are
// identical share one Store so that consecutive ones reuse the open resource.
func Bind(reg *registry.Registry, model *config.Model, store *config.Store) (*task.Registry, error) {
	tasks := task.NewRegistry()
	overrides := make(map[string]*config.Store)

	for _, t := range model.Tasks {
		v, ok := reg.Variant(t.Variant)
		if !ok {
			return nil, fmt.Errorf("%s: task %q: %w %q", t.Source, t.Name, task.ErrUnknownVariant, t.Variant)
		}
		d, err := v.DefineDeferred(t.Name, nil, t.Attributes)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.Source, err)
		}

		if key := config.OverrideKey(t.ResourceConfig); key != "" {
			s, ok := overrides[key]
			if !ok {
				s = store.With(t.ResourceConfig)
				overrides[key] = s
			}
			d.ResourceConfig = s
		}

		if _, err := tasks.Register(d); err != nil {
			return nil, fmt.Errorf("%s: %w", t.Source, err)
		}
	}
	return tasks, nil
}
