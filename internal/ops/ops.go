// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package ops holds named operations that graph documents can refer to.
package ops

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/staranto/gridmemo/internal/graph"
)

// Op is a named operation backed by a function.
type Op struct {
	name string
	fn   func(ctx context.Context, args []any) (any, error)
}

// New returns an operation called name.
func New(name string, fn func(ctx context.Context, args []any) (any, error)) *Op {
	return &Op{name: name, fn: fn}
}

// Name implements graph.Named.
func (o *Op) Name() string { return o.name }

// Apply implements graph.Operation.
func (o *Op) Apply(ctx context.Context, args []any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return o.fn(ctx, args)
}

func (o *Op) String() string { return o.name }

// Registry maps names to operations. It is safe for concurrent use.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]graph.Operation
}

// NewRegistry returns a registry holding ops.
func NewRegistry(ops ...*Op) *Registry {
	r := &Registry{ops: map[string]graph.Operation{}}
	for _, op := range ops {
		r.Register(op.Name(), op)
	}
	return r
}

// Register adds op under name, replacing any previous entry.
func (r *Registry) Register(name string, op graph.Operation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops[name] = op
}

// Lookup returns the operation called name.
func (r *Registry) Lookup(name string) (graph.Operation, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.ops[name]
	return op, ok
}

// MustLookup is Lookup for names known to be registered.
func (r *Registry) MustLookup(name string) graph.Operation {
	op, ok := r.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("operation %q is not registered", name))
	}
	return op
}

// Names lists the registered operation names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.ops))
	for n := range r.ops {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
