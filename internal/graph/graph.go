// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"sort"
)

// Entry is one node of a graph in insertion order.
type Entry struct {
	Key  Key
	Spec Spec
}

// Graph is an insertion-ordered mapping from Key to Spec. The zero value is
// an empty graph ready for use.
type Graph struct {
	keys  []Key
	specs map[Key]Spec
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{specs: map[Key]Spec{}}
}

// Set adds or replaces the spec for k. A new key is appended to the
// insertion order; replacing keeps the original position.
func (g *Graph) Set(k Key, s Spec) {
	if g.specs == nil {
		g.specs = map[Key]Spec{}
	}
	if _, exists := g.specs[k]; !exists {
		g.keys = append(g.keys, k)
	}
	g.specs[k] = s
}

// Get returns the spec stored under k.
func (g *Graph) Get(k Key) (Spec, bool) {
	s, ok := g.specs[k]
	return s, ok
}

// Has reports whether k is a node of g.
func (g *Graph) Has(k Key) bool {
	_, ok := g.specs[k]
	return ok
}

// Keys returns the node keys in insertion order.
func (g *Graph) Keys() []Key {
	out := make([]Key, len(g.keys))
	copy(out, g.keys)
	return out
}

// Entries returns the nodes in insertion order.
func (g *Graph) Entries() []Entry {
	out := make([]Entry, 0, len(g.keys))
	for _, k := range g.keys {
		out = append(out, Entry{Key: k, Spec: g.specs[k]})
	}
	return out
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.keys) }

// Normalize validates g: keys must be non-empty and every Ref must name a
// node of g. Cycle detection is left to TopoOrder.
func Normalize(g *Graph) (*Graph, error) {
	if g == nil {
		return nil, malformedf("nil graph")
	}
	for _, e := range g.Entries() {
		if e.Key == "" {
			return nil, malformedf("empty node key")
		}
		if e.Spec == nil {
			return nil, malformedf("node %q has no spec", e.Key)
		}
		if err := checkSpec(e.Key, e.Spec); err != nil {
			return nil, err
		}
		for _, ref := range Refs(e.Spec) {
			if !g.Has(ref) {
				return nil, malformedf("node %q references unknown node %q", e.Key, ref)
			}
		}
	}
	return g, nil
}

func checkSpec(k Key, s Spec) error {
	switch v := s.(type) {
	case Literal, Ref:
		return nil
	case *Call:
		if v == nil || v.Op == nil {
			return malformedf("node %q has a call without an operation", k)
		}
		for _, a := range v.Args {
			if a == nil {
				return malformedf("node %q has a nil argument", k)
			}
			if err := checkSpec(k, a); err != nil {
				return err
			}
		}
		return nil
	default:
		return malformedf("node %q has unsupported spec %T", k, s)
	}
}

// FromEntries builds a graph from tagged entries, keeping their order.
// Duplicate keys are rejected.
func FromEntries(entries []Entry) (*Graph, error) {
	g := New()
	for _, e := range entries {
		if g.Has(e.Key) {
			return nil, malformedf("duplicate node key %q", e.Key)
		}
		g.Set(e.Key, e.Spec)
	}
	return Normalize(g)
}

// FromMap builds a graph from the raw tuple form: a []any whose first element
// is an Operation is a call, a string naming a key of raw is a reference, and
// anything else is a literal. Keys are inserted in sorted order since map
// iteration order is not stable.
func FromMap(raw map[string]any) (*Graph, error) {
	names := make([]string, 0, len(raw))
	for k := range raw {
		names = append(names, k)
	}
	sort.Strings(names)

	g := New()
	for _, name := range names {
		g.Set(Key(name), tag(raw[name], raw))
	}
	return Normalize(g)
}

func tag(v any, raw map[string]any) Spec {
	switch t := v.(type) {
	case Spec:
		return t
	case string:
		// A bare key aliases the node it names.
		if _, ok := raw[t]; ok {
			return Ref{Key: Key(t)}
		}
		return Literal{Value: t}
	case []any:
		if len(t) > 0 {
			if op, ok := t[0].(Operation); ok {
				args := make([]Spec, 0, len(t)-1)
				for _, a := range t[1:] {
					args = append(args, tag(a, raw))
				}
				return &Call{Op: op, Args: args}
			}
		}
		return Literal{Value: t}
	default:
		return Literal{Value: v}
	}
}
