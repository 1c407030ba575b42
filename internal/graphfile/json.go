// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package graphfile

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/staranto/gridmemo/internal/graph"
	"github.com/staranto/gridmemo/internal/ops"
)

func parseJSON(data []byte, reg *ops.Registry) ([]graph.Entry, error) {
	if !gjson.ValidBytes(data) {
		return nil, graph.Malformed("invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, graph.Malformed("graph document must be an object")
	}

	var bad string
	root.ForEach(func(k, _ gjson.Result) bool {
		if k.String() != "nodes" {
			bad = k.String()
			return false
		}
		return true
	})
	if bad != "" {
		return nil, graph.Malformed("unexpected field %q", bad)
	}

	nodes := root.Get("nodes")
	if !nodes.Exists() || nodes.Type == gjson.Null {
		return nil, nil
	}
	if !nodes.IsArray() {
		return nil, graph.Malformed("nodes must be a list")
	}

	d := decoder{reg: reg}
	var (
		entries []graph.Entry
		err     error
	)
	nodes.ForEach(func(i, n gjson.Result) bool {
		var e graph.Entry
		e, err = d.jsonNode(int(i.Int()), n)
		if err != nil {
			return false
		}
		entries = append(entries, e)
		return true
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (d decoder) jsonNode(i int, n gjson.Result) (graph.Entry, error) {
	if !n.IsObject() {
		return graph.Entry{}, graph.Malformed("nodes[%d] must be an object", i)
	}

	var bad string
	n.ForEach(func(k, _ gjson.Result) bool {
		if k.String() != "key" && k.String() != "value" {
			bad = k.String()
			return false
		}
		return true
	})
	if bad != "" {
		return graph.Entry{}, graph.Malformed("nodes[%d]: unexpected field %q", i, bad)
	}

	key := n.Get("key")
	if key.Type != gjson.String || key.String() == "" {
		return graph.Entry{}, graph.Malformed("nodes[%d] has no key", i)
	}
	value := n.Get("value")
	if !value.Exists() {
		return graph.Entry{}, graph.Malformed("node %q has no value", key.String())
	}

	s, err := d.spec(fmt.Sprintf("node %q", key.String()), value.Value())
	if err != nil {
		return graph.Entry{}, err
	}
	return graph.Entry{Key: graph.Key(key.String()), Spec: s}, nil
}
