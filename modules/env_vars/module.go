package env_vars

import (
	"context"
	"strings"

	"github.com/CadentTech/bigrays/internal/config"
	"github.com/CadentTech/bigrays/internal/registry"
	"github.com/CadentTech/bigrays/internal/task"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Variant outputs the effective configuration as a map[string]any, limited
// to the keys that start with prefix when one is given.
var Variant = &task.Variant{
	Name:        "env_vars",
	Description: "Output the effective configuration values.",
	Templates:   []string{"prefix"},
	Work:        task.WorkFunc(runEnvVars),
}

func runEnvVars(_ context.Context, env *task.Env) (any, error) {
	prefix, err := env.Attrs.StringOr("prefix", "")
	if err != nil {
		return nil, err
	}
	prefix = config.Normalize(prefix)

	all := make(map[string]any)
	if env.Config == nil {
		return all, nil
	}
	for k, v := range env.Config.Snapshot() {
		if strings.HasPrefix(k, prefix) {
			all[k] = v
		}
	}
	return all, nil
}

// Register registers the variant with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterVariant(Variant)
}
