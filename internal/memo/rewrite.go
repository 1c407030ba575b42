// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package memo

import (
	"context"

	"github.com/apex/log"

	"github.com/staranto/gridmemo/internal/backend"
	"github.com/staranto/gridmemo/internal/fingerprint"
	"github.com/staranto/gridmemo/internal/graph"
)

// Action is what the rewrite did with one node.
type Action string

const (
	// Load reads the node's artifact instead of computing it.
	Load Action = "load"
	// Store computes the node and writes its artifact.
	Store Action = "store"
	// Duplicate reuses the result of an identical earlier node.
	Duplicate Action = "duplicate"
	// Keep leaves literals and references untouched.
	Keep Action = "keep"
)

// Step describes the rewrite of one node.
type Step struct {
	Key         graph.Key               `json:"key" yaml:"key"`
	Action      Action                  `json:"action" yaml:"action"`
	Fingerprint fingerprint.Fingerprint `json:"fingerprint" yaml:"fingerprint"`
	// Of names the earlier node a duplicate resolves to.
	Of graph.Key `json:"of,omitempty" yaml:"of,omitempty"`
}

// Plan is the outcome of a rewrite.
type Plan struct {
	Location backend.Location `json:"-" yaml:"-"`
	Steps    []Step           `json:"steps" yaml:"steps"`
	// Graph is the rewritten graph.
	Graph *graph.Graph `json:"-" yaml:"-"`
}

// Count returns the number of steps taking action a.
func (p *Plan) Count(a Action) int {
	n := 0
	for _, s := range p.Steps {
		if s.Action == a {
			n++
		}
	}
	return n
}

// Rewriter turns task graphs into cache-aware graphs.
type Rewriter struct {
	Backends *backend.Registry
	// Logger receives per-node decisions. Nil means the package logger.
	Logger log.Interface
}

// Rewrite is a convenience for a Rewriter with the default logger.
func Rewrite(ctx context.Context, g *graph.Graph, loc backend.Location, reg *backend.Registry) (*graph.Graph, error) {
	r := &Rewriter{Backends: reg}
	return r.Rewrite(ctx, g, loc)
}

// Rewrite returns a new graph in which every call node of g either loads its
// artifact from loc, stores its result there, or refers to an identical
// earlier node. g is not modified. Any failure aborts the whole rewrite.
func (r *Rewriter) Rewrite(ctx context.Context, g *graph.Graph, loc backend.Location) (*graph.Graph, error) {
	p, err := r.Plan(ctx, g, loc)
	if err != nil {
		return nil, err
	}
	return p.Graph, nil
}

// Plan is Rewrite that also reports the decision taken for every node.
func (r *Rewriter) Plan(ctx context.Context, g *graph.Graph, loc backend.Location) (*Plan, error) {
	if _, err := graph.Normalize(g); err != nil {
		return nil, err
	}
	res, err := fingerprint.Graph(g)
	if err != nil {
		return nil, err
	}
	cached, err := ListFingerprints(ctx, loc, r.Backends)
	if err != nil {
		return nil, err
	}

	rw := &rewrite{
		Rewriter: r,
		loc:      loc,
		result:   res,
		cached:   cached,
	}

	p := &Plan{Location: loc, Graph: graph.New()}
	for _, k := range g.Keys() {
		spec, _ := g.Get(k)
		fp := res.Fingerprints[k]
		step := Step{Key: k, Action: Keep, Fingerprint: fp}

		out := spec
		if c, ok := spec.(*graph.Call); ok {
			if first, dup := res.Duplicates[k]; dup {
				out = graph.RefTo(first)
				step.Action, step.Of = Duplicate, first
			} else {
				out, step.Action = rw.call(c, fp)
			}
		}

		r.logger().Debugf("%s %s %s", step.Action, k, fp.Short())
		p.Graph.Set(k, out)
		p.Steps = append(p.Steps, step)
	}

	return p, nil
}

func (r *Rewriter) logger() log.Interface {
	if r.Logger != nil {
		return r.Logger
	}
	return log.Log
}

type rewrite struct {
	*Rewriter
	loc    backend.Location
	result *fingerprint.Result
	cached Index
}

// call rewrites one call whose fingerprint is fp. Only the first argument is
// descended into when it is itself a call; the others are left as they are.
func (rw *rewrite) call(c *graph.Call, fp fingerprint.Fingerprint) (graph.Spec, Action) {
	switch op := c.Op.(type) {
	case *LoadOp:
		return c, Load
	case *StoreOp:
		// Already rewritten: a store whose artifact now exists becomes a load.
		if rw.cached.Has(op.Fingerprint) {
			return graph.NewCall(rw.load(op.Fingerprint)), Load
		}
		return c, Store
	}

	if rw.cached.Has(fp) {
		return graph.NewCall(rw.load(fp)), Load
	}

	inner := c
	if len(c.Args) > 0 {
		if nested, ok := c.Args[0].(*graph.Call); ok {
			if nfp, ok := rw.result.Nested[nested]; ok {
				args := make([]graph.Spec, len(c.Args))
				copy(args, c.Args)
				args[0], _ = rw.call(nested, nfp)
				inner = &graph.Call{Op: c.Op, Args: args}
			}
		}
	}
	return graph.NewCall(rw.store(fp), inner), Store
}

func (rw *rewrite) load(fp fingerprint.Fingerprint) *LoadOp {
	return &LoadOp{Fingerprint: fp, Location: rw.loc, Backends: rw.Backends}
}

func (rw *rewrite) store(fp fingerprint.Fingerprint) *StoreOp {
	return &StoreOp{Fingerprint: fp, Location: rw.loc, Backends: rw.Backends}
}
