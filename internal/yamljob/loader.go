// Package yamljob loads job files written in YAML:
//
//	config:
//	  START_DATE: "2024-01-01"
//	tasks:
//	  - task: sql_query
//	    name: extract
//	    query: select * from sales where d > '{START_DATE}'
//	  - task: to_csv
//	    name: save
//	    input: !output extract
//	    filename: sales.csv
//
// A value tagged `!output <name>` refers to the output of an earlier task;
// `!config <KEY>` reads the config Store when the task runs. Every other
// value is a literal.
package yamljob

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/CadentTech/bigrays/internal/config"
	"gopkg.in/yaml.v3"
)

// Extensions lists the file extensions of YAML job files.
var Extensions = []string{".yaml", ".yml"}

const (
	outputTag = "!output"
	configTag = "!config"
)

// reserved task keys that are not attributes.
const (
	keyVariant        = "task"
	keyName           = "name"
	keyResourceConfig = "resource_config"
)

// Loader is the YAML implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new YAML loader.
func NewLoader() *Loader { return &Loader{} }

// LoadSource parses a single job file from memory.
func (l *Loader) LoadSource(filename string, src []byte) (*config.Model, error) {
	var doc yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(src))
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &config.Model{}, nil
		}
		return nil, fmt.Errorf("failed to parse YAML file %s: %w", filename, err)
	}
	if len(doc.Content) == 0 {
		return &config.Model{}, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errorAt(filename, root, "top level must be a mapping")
	}

	m := &config.Model{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		switch key.Value {
		case "config":
			settings, err := decodeSettings(filename, val)
			if err != nil {
				return nil, err
			}
			for _, kv := range settings {
				m.Settings = append(m.Settings, config.Setting{Key: kv[0], Value: kv[1]})
			}
		case "tasks":
			if val.Kind != yaml.SequenceNode {
				return nil, errorAt(filename, val, "tasks must be a list")
			}
			for _, item := range val.Content {
				t, err := decodeTask(filename, item)
				if err != nil {
					return nil, err
				}
				if err := m.Merge(&config.Model{Tasks: []*config.Task{t}}); err != nil {
					return nil, err
				}
			}
		default:
			return nil, errorAt(filename, key, fmt.Sprintf("unknown section %q", key.Value))
		}
	}
	return m, nil
}

func decodeTask(filename string, n *yaml.Node) (*config.Task, error) {
	if n.Kind != yaml.MappingNode {
		return nil, errorAt(filename, n, "each task must be a mapping")
	}
	t := &config.Task{
		Attributes: make(map[string]config.Expression),
		Source:     fmt.Sprintf("%s:%d", filename, n.Line),
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		switch key.Value {
		case keyVariant:
			t.Variant = val.Value
		case keyName:
			t.Name = val.Value
		case keyResourceConfig:
			settings, err := decodeSettings(filename, val)
			if err != nil {
				return nil, err
			}
			t.ResourceConfig = make(map[string]string, len(settings))
			for _, kv := range settings {
				t.ResourceConfig[kv[0]] = kv[1]
			}
		default:
			expr, err := decodeValue(filename, val)
			if err != nil {
				return nil, fmt.Errorf("attribute %q: %w", key.Value, err)
			}
			t.Attributes[key.Value] = expr
		}
	}
	if t.Variant == "" {
		return nil, errorAt(filename, n, "task is missing the `task` key naming its variant")
	}
	if t.Name == "" {
		return nil, errorAt(filename, n, "task is missing its `name`")
	}
	return t, nil
}

func decodeValue(filename string, n *yaml.Node) (config.Expression, error) {
	switch n.Tag {
	case outputTag:
		if n.Kind != yaml.ScalarNode || n.Value == "" {
			return nil, errorAt(filename, n, "!output needs a task name")
		}
		return config.OutputOf(n.Value), nil
	case configTag:
		if n.Kind != yaml.ScalarNode || n.Value == "" {
			return nil, errorAt(filename, n, "!config needs a key")
		}
		return config.ValueOf(n.Value), nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, err
	}
	return config.Literal(v), nil
}

// decodeSettings reads a flat mapping of scalars, in document order.
func decodeSettings(filename string, n *yaml.Node) ([][2]string, error) {
	if n.Kind != yaml.MappingNode {
		return nil, errorAt(filename, n, "config must be a mapping")
	}
	out := make([][2]string, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return nil, errorAt(filename, val, fmt.Sprintf("config value %s must be a scalar", key.Value))
		}
		out = append(out, [2]string{key.Value, val.Value})
	}
	return out, nil
}

func errorAt(filename string, n *yaml.Node, msg string) error {
	return fmt.Errorf("%s:%d:%d: %s", filename, n.Line, n.Column, msg)
}
