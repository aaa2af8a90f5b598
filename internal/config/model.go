package config

import (
	"fmt"
	"sort"
	"strings"
)

// Model is the unified, format-agnostic representation of one or more job
// files.
type Model struct {
	// Settings are applied to the Store as explicit assignments, in order.
	Settings []Setting
	// Tasks appear in declaration order across all loaded files.
	Tasks []*Task
}

// Setting is one key/value pair from a job file's config section.
type Setting struct {
	Key   string
	Value string
}

// Task is the format-agnostic representation of a `task` block.
type Task struct {
	Variant    string
	Name       string
	Attributes map[string]Expression
	// ResourceConfig holds per-task overrides layered on top of the Store
	// when the task's resource is opened.
	ResourceConfig map[string]string
	// Source locates the declaration for error messages, e.g. "job.hcl:12".
	Source string
}

// Merge appends other to m, preserving order, and rejects duplicate task
// names.
func (m *Model) Merge(other *Model) error {
	if other == nil {
		return nil
	}
	seen := make(map[string]string, len(m.Tasks))
	for _, t := range m.Tasks {
		seen[t.Name] = t.Source
	}
	for _, t := range other.Tasks {
		if prev, ok := seen[t.Name]; ok {
			return fmt.Errorf("duplicate task name %q at %s (first declared at %s)", t.Name, t.Source, prev)
		}
		seen[t.Name] = t.Source
	}
	m.Settings = append(m.Settings, other.Settings...)
	m.Tasks = append(m.Tasks, other.Tasks...)
	return nil
}

// ApplyTo assigns every setting on s.
func (m *Model) ApplyTo(s *Store) {
	for _, kv := range m.Settings {
		s.Set(kv.Key, kv.Value)
	}
}

// OverrideKey returns a stable identity for a resource config override so
// that tasks declaring the same overrides can share one Store.
func OverrideKey(overrides map[string]string) string {
	if len(overrides) == 0 {
		return ""
	}
	norm := make(map[string]string, len(overrides))
	for k, v := range overrides {
		norm[Normalize(k)] = v
	}
	keys := make([]string, 0, len(norm))
	for k := range norm {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(norm[k])
		b.WriteByte(0)
	}
	return b.String()
}
