package config

import (
	"context"
	"fmt"
)

// Loader is the interface for a format-specific job file loader.
type Loader interface {
	// LoadSource translates the contents of one job file into the
	// format-agnostic model. filename is used in error messages.
	LoadSource(filename string, src []byte) (*Model, error)
}

// Scope is what a deferred Expression may read while a task is being
// prepared: the outputs of tasks that already ran and the config Store.
type Scope interface {
	// Output returns the output of the named task in the current run.
	Output(name string) (any, error)
	// Lookup returns a config value.
	Lookup(key string) (string, bool)
}

// Expression is an attribute value whose evaluation is deferred until the
// task that owns it is about to run.
type Expression interface {
	Evaluate(ctx context.Context, scope Scope) (any, error)
}

// Template is implemented by Expressions that carry user-written text.
// EvaluateTemplate passes that text, and only that text, through expand
// before evaluating; values pulled in from outputs or config are never
// expanded.
type Template interface {
	Expression
	EvaluateTemplate(ctx context.Context, scope Scope, expand func(string) (string, error)) (any, error)
}

// Literal returns an Expression that always evaluates to v. A string v is
// user-written text and may be expanded as a Template.
func Literal(v any) Expression {
	return literal{v: v}
}

type literal struct{ v any }

func (l literal) Evaluate(context.Context, Scope) (any, error) { return l.v, nil }

func (l literal) EvaluateTemplate(_ context.Context, _ Scope, expand func(string) (string, error)) (any, error) {
	s, ok := l.v.(string)
	if !ok {
		return l.v, nil
	}
	return expand(s)
}

// OutputOf returns an Expression that evaluates to the output of the named
// task.
func OutputOf(name string) Expression {
	return outputRef{name: name}
}

type outputRef struct{ name string }

func (r outputRef) Evaluate(_ context.Context, scope Scope) (any, error) {
	v, err := scope.Output(r.name)
	if err != nil {
		return nil, fmt.Errorf("reading output of task %q: %w", r.name, err)
	}
	return v, nil
}

// ValueOf returns an Expression that evaluates to the config value of key.
func ValueOf(key string) Expression {
	return valueRef{key: key}
}

type valueRef struct{ key string }

func (r valueRef) Evaluate(_ context.Context, scope Scope) (any, error) {
	v, ok := scope.Lookup(r.key)
	if !ok {
		return nil, fmt.Errorf("config key %s is not set", Normalize(r.key))
	}
	return v, nil
}
