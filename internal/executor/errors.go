package executor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/CadentTech/bigrays/internal/config"
	"github.com/CadentTech/bigrays/internal/resource"
)

// ConfigurationError is returned before any task runs when a resource needed
// by the plan is missing required config values.
type ConfigurationError struct {
	// Missing maps each resource kind to its missing keys.
	Missing map[resource.Kind][]string
}

func (e *ConfigurationError) Error() string {
	kinds := make([]string, 0, len(e.Missing))
	for k := range e.Missing {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	var keys, envs []string
	seen := make(map[string]bool)
	for _, k := range kinds {
		for _, key := range e.Missing[resource.Kind(k)] {
			if seen[key] {
				continue
			}
			seen[key] = true
			keys = append(keys, key)
			envs = append(envs, config.EnvName(key))
		}
	}
	return fmt.Sprintf(
		"%s require(s) the configuration value(s) %s. Set them on the config store or export %s",
		strings.Join(kinds, ", "), strings.Join(keys, ", "), strings.Join(envs, ", "),
	)
}
