package hcl

import (
	"fmt"
	"sort"

	"github.com/CadentTech/bigrays/internal/config"
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// translateFile converts the HCL-specific schema into the agnostic model.
func translateFile(root *fileRoot) (*config.Model, error) {
	m := &config.Model{}
	for _, c := range root.Config {
		settings, err := translateSettings(c.Body)
		if err != nil {
			return nil, err
		}
		for _, kv := range settings {
			m.Settings = append(m.Settings, config.Setting{Key: kv.key, Value: kv.value})
		}
	}
	for _, t := range root.Tasks {
		task, err := translateTask(t)
		if err != nil {
			return nil, err
		}
		if err := m.Merge(&config.Model{Tasks: []*config.Task{task}}); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// translateTask converts a task block, keeping attribute expressions
// unevaluated.
func translateTask(t *taskBlock) (*config.Task, error) {
	attrs, diags := t.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}

	r := t.Body.MissingItemRange()
	task := &config.Task{
		Variant:    t.Variant,
		Name:       t.Name,
		Attributes: make(map[string]config.Expression, len(attrs)),
		Source:     fmt.Sprintf("%s:%d", r.Filename, r.Start.Line),
	}
	for name, attr := range attrs {
		task.Attributes[name] = &expression{expr: attr.Expr}
	}

	if t.ResourceConfig != nil {
		settings, err := translateSettings(t.ResourceConfig.Body)
		if err != nil {
			return nil, fmt.Errorf("resource_config of task %q: %w", t.Name, err)
		}
		task.ResourceConfig = make(map[string]string, len(settings))
		for _, kv := range settings {
			task.ResourceConfig[kv.key] = kv.value
		}
	}
	return task, nil
}

type setting struct {
	key   string
	value string
}

// translateSettings evaluates a body of constant attributes as strings, in
// source order.
func translateSettings(body hcl.Body) ([]setting, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}

	ordered := make([]*hcl.Attribute, 0, len(attrs))
	for _, a := range attrs {
		ordered = append(ordered, a)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Range.Start.Byte < ordered[j].Range.Start.Byte
	})

	out := make([]setting, 0, len(ordered))
	for _, a := range ordered {
		val, diags := a.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		if val.IsNull() {
			continue
		}
		str, err := convert.Convert(val, cty.String)
		if err != nil {
			return nil, fmt.Errorf("config value %s must be a string, number or bool: %w", a.Name, err)
		}
		out = append(out, setting{key: a.Name, value: str.AsString()})
	}
	return out, nil
}
