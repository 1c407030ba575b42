// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package graphfile reads task graphs from YAML, JSON and HCL documents.
//
// YAML and JSON documents hold an ordered node list:
//
//	nodes:
//	  - key: n1
//	    value: 5
//	  - key: n2
//	    value: {op: double, args: [{ref: n1}]}
//
// A value is a scalar or list literal, {literal: x}, {ref: key}, or
// {op: name, args: [...]} whose args use the same forms.
//
// HCL documents hold one block per node:
//
//	node "n1" { value = 5 }
//	node "n2" { value = double(node.n1) }
//
// where node.<key> references another node and calls to registered
// operations build calls. Any other expression is evaluated to a literal.
package graphfile

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/staranto/gridmemo/internal/graph"
	"github.com/staranto/gridmemo/internal/ops"
)

// Format names a document syntax.
type Format string

const (
	YAML Format = "yaml"
	JSON Format = "json"
	HCL  Format = "hcl"
)

// FormatOf infers the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".json":
		return JSON, nil
	case ".hcl":
		return HCL, nil
	}
	return "", fmt.Errorf("unknown graph document type %q", filepath.Ext(path))
}

// Load reads the graph document at path.
func Load(path string, reg *ops.Registry) (*graph.Graph, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph: %w", err)
	}
	return Parse(data, format, path, reg)
}

// Parse decodes a graph document. name is used in diagnostics.
func Parse(data []byte, format Format, name string, reg *ops.Registry) (*graph.Graph, error) {
	var (
		entries []graph.Entry
		err     error
	)
	switch format {
	case YAML:
		entries, err = parseYAML(data, reg)
	case JSON:
		entries, err = parseJSON(data, reg)
	case HCL:
		entries, err = parseHCL(data, name, reg)
	default:
		return nil, fmt.Errorf("unknown graph document format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return graph.FromEntries(entries)
}

// decoder turns the generic tree decoded from YAML into specs.
type decoder struct {
	reg *ops.Registry
}

func (d decoder) spec(where string, v any) (graph.Spec, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return graph.Lit(literal(v)), nil
	}

	switch {
	case has(m, "ref"):
		if len(m) != 1 {
			return nil, graph.Malformed("%s: ref takes no other fields", where)
		}
		k, ok := m["ref"].(string)
		if !ok || k == "" {
			return nil, graph.Malformed("%s: ref must name a node", where)
		}
		return graph.RefTo(graph.Key(k)), nil

	case has(m, "literal"):
		if len(m) != 1 {
			return nil, graph.Malformed("%s: literal takes no other fields", where)
		}
		return graph.Lit(literal(m["literal"])), nil

	case has(m, "op"):
		name, ok := m["op"].(string)
		if !ok {
			return nil, graph.Malformed("%s: op must be a name", where)
		}
		op, err := d.operation(where, name)
		if err != nil {
			return nil, err
		}

		var raw []any
		if a, present := m["args"]; present && a != nil {
			raw, ok = a.([]any)
			if !ok {
				return nil, graph.Malformed("%s: args must be a list", where)
			}
		}
		for k := range m {
			if k != "op" && k != "args" {
				return nil, graph.Malformed("%s: unexpected field %q", where, k)
			}
		}

		args := make([]graph.Spec, len(raw))
		for i, a := range raw {
			s, err := d.spec(fmt.Sprintf("%s.args[%d]", where, i), a)
			if err != nil {
				return nil, err
			}
			args[i] = s
		}
		return graph.NewCall(op, args...), nil
	}

	return nil, graph.Malformed("%s: a mapping value needs one of ref, literal or op", where)
}

func (d decoder) operation(where, name string) (graph.Operation, error) {
	op, ok := d.reg.Lookup(name)
	if !ok {
		return nil, graph.Malformed("%s: unknown operation %q", where, name)
	}
	return op, nil
}

func has(m map[string]any, k string) bool {
	_, ok := m[k]
	return ok
}

// literal normalizes decoded values so that every format yields the same Go
// types: int64 for integers, float64 for other numbers, []any and
// map[string]any for containers.
func literal(v any) any {
	switch t := v.(type) {
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case uint64:
		if t <= math.MaxInt64 {
			return int64(t)
		}
		return float64(t)
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 && !math.IsInf(t, 0) {
			return int64(t)
		}
		return t
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = literal(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = literal(e)
		}
		return out
	}
	return v
}
