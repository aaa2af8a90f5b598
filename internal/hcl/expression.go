package hcl

import (
	"context"
	"fmt"

	"github.com/CadentTech/bigrays/internal/config"
	"github.com/CadentTech/bigrays/internal/ctxlog"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// functions are available to every task attribute expression.
var functions = map[string]function.Function{
	"coalesce":   stdlib.CoalesceFunc,
	"format":     stdlib.FormatFunc,
	"join":       stdlib.JoinFunc,
	"jsonencode": stdlib.JSONEncodeFunc,
	"length":     stdlib.LengthFunc,
	"lower":      stdlib.LowerFunc,
	"upper":      stdlib.UpperFunc,
}

// expression is a deferred task attribute.
type expression struct {
	expr hcl.Expression
}

// Evaluate implements config.Expression.
func (e *expression) Evaluate(ctx context.Context, scope config.Scope) (any, error) {
	if name, ok := outputReference(e.expr); ok {
		return scope.Output(name)
	}

	evalCtx, err := buildEvalContext(ctx, e.expr, scope)
	if err != nil {
		return nil, err
	}
	val, diags := e.expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, diags
	}
	return FromCtyValue(val)
}

// EvaluateTemplate implements config.Template. The literal parts of a
// string template are expanded before evaluation, so interpolated values
// such as ${task.x.output} or ${config.KEY} are never expanded.
func (e *expression) EvaluateTemplate(ctx context.Context, scope config.Scope, expand func(string) (string, error)) (any, error) {
	tmpl, ok := e.expr.(*hclsyntax.TemplateExpr)
	if !ok {
		return e.Evaluate(ctx, scope)
	}

	parts := make([]hclsyntax.Expression, len(tmpl.Parts))
	for i, part := range tmpl.Parts {
		lit, ok := part.(*hclsyntax.LiteralValueExpr)
		if !ok || lit.Val.Type() != cty.String || lit.Val.IsNull() || !lit.Val.IsKnown() {
			parts[i] = part
			continue
		}
		s, err := expand(lit.Val.AsString())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", lit.SrcRange, err)
		}
		parts[i] = &hclsyntax.LiteralValueExpr{Val: cty.StringVal(s), SrcRange: lit.SrcRange}
	}

	expanded := &expression{expr: &hclsyntax.TemplateExpr{Parts: parts, SrcRange: tmpl.SrcRange}}
	return expanded.Evaluate(ctx, scope)
}

// outputReference reports whether expr is exactly `task.<name>.output`.
func outputReference(expr hcl.Expression) (string, bool) {
	trav, diags := hcl.AbsTraversalForExpr(expr)
	if diags.HasErrors() || len(trav) != 3 || trav.RootName() != "task" {
		return "", false
	}
	name, ok := trav[1].(hcl.TraverseAttr)
	if !ok {
		return "", false
	}
	out, ok := trav[2].(hcl.TraverseAttr)
	if !ok || out.Name != "output" {
		return "", false
	}
	return name.Name, true
}

// buildEvalContext exposes only the task outputs and config keys that expr
// actually references.
func buildEvalContext(ctx context.Context, expr hcl.Expression, scope config.Scope) (*hcl.EvalContext, error) {
	logger := ctxlog.FromContext(ctx)
	tasks := make(map[string]cty.Value)
	values := make(map[string]cty.Value)

	for _, trav := range expr.Variables() {
		root := trav.RootName()
		if root != "task" && root != "config" {
			continue
		}
		if len(trav) < 2 {
			return nil, fmt.Errorf("%s: %q must be followed by a name", trav.SourceRange(), root)
		}
		attr, ok := trav[1].(hcl.TraverseAttr)
		if !ok {
			return nil, fmt.Errorf("%s: %q must be followed by a name", trav.SourceRange(), root)
		}

		switch root {
		case "task":
			if _, done := tasks[attr.Name]; done {
				continue
			}
			out, err := scope.Output(attr.Name)
			if err != nil {
				return nil, err
			}
			cv, err := ToCtyValue(out)
			if err != nil {
				return nil, fmt.Errorf("output of task %q cannot be used in an expression: %w", attr.Name, err)
			}
			tasks[attr.Name] = cty.ObjectVal(map[string]cty.Value{"output": cv})
		case "config":
			if v, ok := scope.Lookup(attr.Name); ok {
				values[attr.Name] = cty.StringVal(v)
			}
		}
	}

	logger.Debug("Built expression context.", "tasks", sortedKeys(tasks), "config", sortedKeys(values))
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"task":   cty.ObjectVal(tasks),
			"config": cty.ObjectVal(values),
		},
		Functions: functions,
	}, nil
}
