// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package engine evaluates task graphs in process.
package engine

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/apex/log"
	"golang.org/x/sync/errgroup"

	"github.com/staranto/gridmemo/internal/graph"
)

// Options tunes Run.
type Options struct {
	// Concurrency bounds the number of nodes evaluated at once. Zero means
	// GOMAXPROCS.
	Concurrency int
}

// Run evaluates every node of g and returns the results by key. A node runs
// once all the nodes it references have finished. The first failure cancels
// the remaining work and is returned.
func Run(ctx context.Context, g *graph.Graph, opts Options) (map[graph.Key]any, error) {
	if _, err := graph.Normalize(g); err != nil {
		return nil, err
	}
	order, err := graph.TopoOrder(g)
	if err != nil {
		return nil, err
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	done := make(map[graph.Key]chan struct{}, len(order))
	for _, k := range order {
		done[k] = make(chan struct{})
	}

	var (
		mu      sync.Mutex
		results = make(map[graph.Key]any, len(order))
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)

	// Nodes are started in topological order, so the earliest unfinished
	// node always has its dependencies complete and the limit cannot
	// deadlock.
	for _, k := range order {
		spec, _ := g.Get(k)
		eg.Go(func() error {
			for _, dep := range graph.Refs(spec) {
				select {
				case <-done[dep]:
				case <-ctx.Done():
					return ctx.Err()
				}
			}

			mu.Lock()
			ev := evaluator{results: snapshot(results, spec)}
			mu.Unlock()

			start := time.Now()
			v, err := ev.eval(ctx, spec)
			if err != nil {
				return fmt.Errorf("node %s: %w", k, err)
			}
			log.Debugf("node %s done in %s", k, time.Since(start))

			mu.Lock()
			results[k] = v
			mu.Unlock()
			close(done[k])
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// snapshot copies the results referenced by spec.
func snapshot(results map[graph.Key]any, spec graph.Spec) map[graph.Key]any {
	refs := graph.Refs(spec)
	out := make(map[graph.Key]any, len(refs))
	for _, k := range refs {
		out[k] = results[k]
	}
	return out
}

type evaluator struct {
	results map[graph.Key]any
}

func (e evaluator) eval(ctx context.Context, s graph.Spec) (any, error) {
	switch v := s.(type) {
	case graph.Literal:
		return v.Value, nil
	case graph.Ref:
		return e.results[v.Key], nil
	case *graph.Call:
		args := make([]any, len(v.Args))
		for i, a := range v.Args {
			r, err := e.eval(ctx, a)
			if err != nil {
				return nil, err
			}
			args[i] = r
		}
		out, err := v.Op.Apply(ctx, args)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", graph.OpName(v.Op), err)
		}
		return out, nil
	}
	return nil, graph.Malformed("unsupported spec %T", s)
}
