// Package sql provides the sql-session resource and the task variants that
// run against it.
package sql

import (
	"context"
	"fmt"

	"github.com/CadentTech/bigrays/internal/ctxlog"
	"github.com/CadentTech/bigrays/internal/registry"
	"github.com/CadentTech/bigrays/internal/resource"
	"github.com/CadentTech/bigrays/internal/table"
	"github.com/CadentTech/bigrays/internal/task"
)

// Kind is the resource kind of a database session.
const Kind resource.Kind = "sql-session"

// Module implements the registry.Module interface for this package.
type Module struct{}

var (
	// QueryVariant runs a query and outputs the result as a *table.Table.
	QueryVariant = &task.Variant{
		Name:        "sql_query",
		Description: "Run a query and output the rows.",
		Resource:    Kind,
		Required:    []string{"query"},
		Templates:   []string{"query"},
		Work:        task.WorkFunc(runQuery),
	}
	// ExecuteVariant runs a statement in a transaction. It outputs nothing.
	ExecuteVariant = &task.Variant{
		Name:        "sql_execute",
		Description: "Execute a statement inside a transaction.",
		Resource:    Kind,
		Required:    []string{"statement"},
		Templates:   []string{"statement"},
		Work:        task.WorkFunc(runExecute),
	}
	// WriteVariant inserts a table into an existing database table and
	// outputs the number of rows written.
	WriteVariant = &task.Variant{
		Name:        "sql_write",
		Description: "Insert the rows of a table.",
		Resource:    Kind,
		Required:    []string{"tablename", "input"},
		Templates:   []string{"tablename"},
		Work:        task.WorkFunc(runWrite),
	}
)

// Register registers the client and variants with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterClient(Kind, Client{})
	r.RegisterVariant(QueryVariant)
	r.RegisterVariant(ExecuteVariant)
	r.RegisterVariant(WriteVariant)
}

func session(env *task.Env) (*Session, error) {
	s, ok := env.Handle.(*Session)
	if !ok || s == nil {
		return nil, fmt.Errorf("sql-session resource was not provided")
	}
	return s, nil
}

func runQuery(ctx context.Context, env *task.Env) (any, error) {
	s, err := session(env)
	if err != nil {
		return nil, err
	}
	q, err := env.Attrs.String("query")
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Running query.", "query", q)
	t, err := s.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	ctxlog.FromContext(ctx).Info("Query returned rows.", "rows", t.Len())
	return t, nil
}

func runExecute(ctx context.Context, env *task.Env) (any, error) {
	s, err := session(env)
	if err != nil {
		return nil, err
	}
	stmt, err := env.Attrs.String("statement")
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Executing statement.", "statement", stmt)
	if _, err := s.Exec(ctx, stmt); err != nil {
		return nil, fmt.Errorf("statement failed: %w", err)
	}
	return nil, nil
}

func runWrite(ctx context.Context, env *task.Env) (any, error) {
	s, err := session(env)
	if err != nil {
		return nil, err
	}
	name, err := env.Attrs.String("tablename")
	if err != nil {
		return nil, err
	}
	t, ok := env.Attrs["input"].(*table.Table)
	if !ok || t == nil {
		return nil, fmt.Errorf("input must be a table, got %T", env.Attrs["input"])
	}
	n, err := s.Insert(ctx, name, t)
	if err != nil {
		return nil, fmt.Errorf("writing to %s: %w", name, err)
	}
	ctxlog.FromContext(ctx).Info("Rows written.", "table", name, "rows", n)
	return n, nil
}
