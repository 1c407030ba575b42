// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package graphfile

import (
	"fmt"
	"math/big"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/staranto/gridmemo/internal/graph"
	"github.com/staranto/gridmemo/internal/ops"
)

// nodeRoot is the traversal root that references another node.
const nodeRoot = "node"

var (
	documentSchema = &hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "node", LabelNames: []string{"key"}},
		},
	}
	nodeSchema = &hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{
			{Name: "value", Required: true},
		},
	}
)

func parseHCL(data []byte, name string, reg *ops.Registry) ([]graph.Entry, error) {
	file, diags := hclsyntax.ParseConfig(data, name, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, graph.Malformed("%s", diags.Error())
	}

	content, diags := file.Body.Content(documentSchema)
	if diags.HasErrors() {
		return nil, graph.Malformed("%s", diags.Error())
	}

	d := decoder{reg: reg}
	entries := make([]graph.Entry, 0, len(content.Blocks))
	for _, block := range content.Blocks {
		key := block.Labels[0]
		if key == "" {
			return nil, graph.Malformed("%s: node has an empty key", block.DefRange)
		}

		attrs, diags := block.Body.Content(nodeSchema)
		if diags.HasErrors() {
			return nil, graph.Malformed("%s", diags.Error())
		}

		s, err := d.expr(attrs.Attributes["value"].Expr)
		if err != nil {
			return nil, err
		}
		entries = append(entries, graph.Entry{Key: graph.Key(key), Spec: s})
	}
	return entries, nil
}

func (d decoder) expr(e hcl.Expression) (graph.Spec, error) {
	switch t := e.(type) {
	case *hclsyntax.ParenthesesExpr:
		return d.expr(t.Expression)

	case *hclsyntax.ScopeTraversalExpr:
		if t.Traversal.RootName() == nodeRoot {
			return ref(t)
		}

	case *hclsyntax.FunctionCallExpr:
		where := t.NameRange.String()
		op, err := d.operation(where, t.Name)
		if err != nil {
			return nil, err
		}
		if t.ExpandFinal {
			return nil, graph.Malformed("%s: argument expansion is not supported", where)
		}
		args := make([]graph.Spec, len(t.Args))
		for i, a := range t.Args {
			s, err := d.expr(a)
			if err != nil {
				return nil, err
			}
			args[i] = s
		}
		return graph.NewCall(op, args...), nil
	}

	v, diags := e.Value(nil)
	if diags.HasErrors() {
		return nil, graph.Malformed("%s", diags.Error())
	}
	lit, err := fromCty(v)
	if err != nil {
		return nil, graph.Malformed("%s: %v", e.Range(), err)
	}
	return graph.Lit(literal(lit)), nil
}

// ref accepts node.<key> and node["<key>"].
func ref(t *hclsyntax.ScopeTraversalExpr) (graph.Spec, error) {
	if len(t.Traversal) != 2 {
		return nil, graph.Malformed("%s: a node reference is node.<key>", t.SrcRange)
	}
	switch step := t.Traversal[1].(type) {
	case hcl.TraverseAttr:
		return graph.RefTo(graph.Key(step.Name)), nil
	case hcl.TraverseIndex:
		if step.Key.Type() == cty.String && step.Key.IsKnown() && !step.Key.IsNull() {
			return graph.RefTo(graph.Key(step.Key.AsString())), nil
		}
	}
	return nil, graph.Malformed("%s: a node reference is node.<key>", t.SrcRange)
}

// fromCty converts a fully known cty value into plain Go values.
func fromCty(v cty.Value) (any, error) {
	if !v.IsWhollyKnown() {
		return nil, fmt.Errorf("value is not known")
	}
	if v.IsNull() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i, nil
			}
		}
		f, _ := bf.Float64()
		return f, nil
	case ty.IsListType(), ty.IsTupleType(), ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, e := it.Element()
			c, err := fromCty(e)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
		return out, nil
	case ty.IsMapType(), ty.IsObjectType():
		out := map[string]any{}
		for it := v.ElementIterator(); it.Next(); {
			k, e := it.Element()
			c, err := fromCty(e)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = c
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
}
