// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package fingerprint

import (
	"encoding/hex"

	"github.com/apex/log"
	"golang.org/x/crypto/sha3"

	"github.com/staranto/gridmemo/internal/graph"
)

// Fingerprint is the hex encoded SHA3-384 digest identifying a computation.
type Fingerprint string

func (f Fingerprint) String() string { return string(f) }

// Short returns the leading characters of f for display.
func (f Fingerprint) Short() string {
	if len(f) <= 12 {
		return string(f)
	}
	return string(f[:12])
}

// Result holds the fingerprints computed for one graph.
type Result struct {
	// Order is the topological order the fingerprints were computed in.
	Order []graph.Key
	// Fingerprints maps every node to its fingerprint.
	Fingerprints map[graph.Key]Fingerprint
	// Duplicates maps a call node to the first earlier node with an equal
	// spec. Duplicates share the fingerprint of that node.
	Duplicates map[graph.Key]graph.Key
	// Nested holds the fingerprint of every call nested inside a node's
	// arguments.
	Nested map[*graph.Call]Fingerprint
}

// Of returns the fingerprint of k.
func (r *Result) Of(k graph.Key) (Fingerprint, bool) {
	fp, ok := r.Fingerprints[k]
	return fp, ok
}

type hasher struct {
	g      *graph.Graph
	result *Result
	// calls lists the non-duplicate call nodes processed so far, in order.
	calls []graph.Key
}

// Compute fingerprints every node of g. order must be a topological order of
// g, as produced by graph.TopoOrder.
func Compute(g *graph.Graph, order []graph.Key) (*Result, error) {
	h := &hasher{
		g: g,
		result: &Result{
			Order:        order,
			Fingerprints: make(map[graph.Key]Fingerprint, len(order)),
			Duplicates:   map[graph.Key]graph.Key{},
			Nested:       map[*graph.Call]Fingerprint{},
		},
	}

	for _, k := range order {
		spec, ok := g.Get(k)
		if !ok {
			return nil, graph.Malformed("order names unknown node %q", k)
		}

		fp, err := h.node(k, spec)
		if err != nil {
			return nil, err
		}
		h.result.Fingerprints[k] = fp
		log.Debugf("fingerprint %s: %s", k, fp.Short())
	}

	return h.result, nil
}

// Graph orders g and fingerprints it in one step.
func Graph(g *graph.Graph) (*Result, error) {
	order, err := graph.TopoOrder(g)
	if err != nil {
		return nil, err
	}
	return Compute(g, order)
}

func (h *hasher) node(k graph.Key, spec graph.Spec) (Fingerprint, error) {
	switch s := spec.(type) {
	case graph.Literal:
		return digest(StringForm(s.Value)), nil
	case graph.Ref:
		fp, ok := h.result.Fingerprints[s.Key]
		if !ok {
			return "", graph.Malformed("node %q references %q before it is ordered", k, s.Key)
		}
		return fp, nil
	case *graph.Call:
		if first, ok := h.duplicateOf(s); ok {
			h.result.Duplicates[k] = first
			return h.result.Fingerprints[first], nil
		}
		fp, err := h.call(k, s)
		if err != nil {
			return "", err
		}
		h.calls = append(h.calls, k)
		return fp, nil
	default:
		return "", graph.Malformed("node %q has unsupported spec %T", k, spec)
	}
}

// duplicateOf finds an earlier call node whose spec equals c.
func (h *hasher) duplicateOf(c *graph.Call) (graph.Key, bool) {
	for _, earlier := range h.calls {
		spec, _ := h.g.Get(earlier)
		if graph.Equal(spec, c) {
			return earlier, true
		}
	}
	return "", false
}

// call hashes the element chain (op, arg1, arg2, ...) of c.
func (h *hasher) call(k graph.Key, c *graph.Call) (Fingerprint, error) {
	return h.chain(k, graph.OpName(c.Op), c.Args)
}

// chain folds left with the hash of the remaining elements:
//
//	H(left)                     no elements remain
//	H(left + str(rest[0]))      one element remains
//	H(left + chain(rest...))    otherwise
func (h *hasher) chain(k graph.Key, left string, rest []graph.Spec) (Fingerprint, error) {
	var right string
	switch len(rest) {
	case 0:
	case 1:
		s, err := h.element(k, rest[0])
		if err != nil {
			return "", err
		}
		right = s
	default:
		head, err := h.element(k, rest[0])
		if err != nil {
			return "", err
		}
		fp, err := h.chain(k, head, rest[1:])
		if err != nil {
			return "", err
		}
		right = string(fp)
	}
	return digest(left + right), nil
}

// element returns the string an argument contributes to its chain.
func (h *hasher) element(k graph.Key, arg graph.Spec) (string, error) {
	switch a := arg.(type) {
	case graph.Ref:
		fp, ok := h.result.Fingerprints[a.Key]
		if !ok {
			return "", graph.Malformed("node %q references %q before it is ordered", k, a.Key)
		}
		return string(fp), nil
	case *graph.Call:
		// An inline call equal to an earlier node is the same computation.
		if earlier, ok := h.duplicateOf(a); ok {
			fp := h.result.Fingerprints[earlier]
			h.result.Nested[a] = fp
			return string(fp), nil
		}
		fp, err := h.call(k, a)
		if err != nil {
			return "", err
		}
		h.result.Nested[a] = fp
		return string(fp), nil
	case graph.Literal:
		// Never the fingerprint of an equal literal node. That would make the
		// result depend on which other nodes share the graph.
		return StringForm(a.Value), nil
	default:
		return "", graph.Malformed("node %q has unsupported argument %T", k, arg)
	}
}

func digest(s string) Fingerprint {
	sum := sha3.Sum384([]byte(s))
	return Fingerprint(hex.EncodeToString(sum[:]))
}
