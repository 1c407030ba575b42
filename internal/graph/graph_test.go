// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedOp string

func (n namedOp) Name() string { return string(n) }
func (n namedOp) Apply(_ context.Context, args []any) (any, error) {
	return args, nil
}

func double(_ context.Context, args []any) (any, error) {
	return args[0].(int) * 2, nil
}

func TestFromEntries_KeepsOrder(t *testing.T) {
	g, err := FromEntries([]Entry{
		{Key: "b", Spec: Lit(1)},
		{Key: "a", Spec: NewCall(namedOp("inc"), RefTo("b"))},
	})
	require.NoError(t, err)
	assert.Equal(t, []Key{"b", "a"}, g.Keys())
	assert.Equal(t, 2, g.Len())
}

func TestFromEntries_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
	}{
		{
			name:    "dangling reference",
			entries: []Entry{{Key: "a", Spec: NewCall(namedOp("inc"), RefTo("missing"))}},
		},
		{
			name:    "dangling reference in nested call",
			entries: []Entry{{Key: "a", Spec: NewCall(namedOp("inc"), NewCall(namedOp("inc"), RefTo("x")))}},
		},
		{
			name:    "duplicate key",
			entries: []Entry{{Key: "a", Spec: Lit(1)}, {Key: "a", Spec: Lit(2)}},
		},
		{
			name:    "empty key",
			entries: []Entry{{Key: "", Spec: Lit(1)}},
		},
		{
			name:    "call without operation",
			entries: []Entry{{Key: "a", Spec: &Call{}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEntries(tt.entries)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedGraph), "got %v", err)
		})
	}
}

func TestFromMap_TagsRawTuples(t *testing.T) {
	op := namedOp("sum")
	g, err := FromMap(map[string]any{
		"x":     5,
		"y":     []any{op, "x", 2, []any{op, "x", "z"}},
		"alias": "y",
		"plain": "not-a-key",
		"list":  []any{1, 2},
		"z":     3,
	})
	require.NoError(t, err)

	assert.Equal(t, []Key{"alias", "list", "plain", "x", "y", "z"}, g.Keys())

	y, _ := g.Get("y")
	want := NewCall(op, RefTo("x"), Lit(2), NewCall(op, RefTo("x"), RefTo("z")))
	assert.True(t, Equal(want, y))

	alias, _ := g.Get("alias")
	assert.Equal(t, RefTo("y"), alias)

	plain, _ := g.Get("plain")
	assert.Equal(t, Lit("not-a-key"), plain)

	list, _ := g.Get("list")
	assert.Equal(t, Lit([]any{1, 2}), list)
}

func TestOpName(t *testing.T) {
	assert.Equal(t, "sum", OpName(namedOp("sum")))
	assert.Contains(t, OpName(Func(double)), "graph.double")
	assert.Contains(t, OpName(double), "graph.double")
	assert.Equal(t, "int", OpName(42))
	assert.Equal(t, "<nil>", OpName(nil))
}

func TestEqual(t *testing.T) {
	op := namedOp("sum")
	a := NewCall(op, Lit(1), Lit(2))
	b := NewCall(op, Lit(1), Lit(2))
	c := NewCall(op, Lit(2), Lit(1))
	d := NewCall(namedOp("mul"), Lit(1), Lit(2))

	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
	assert.False(t, Equal(a, d))
	assert.False(t, Equal(a, Lit(3)))
	assert.True(t, Equal(RefTo("k"), RefTo("k")))
	assert.False(t, Equal(RefTo("k"), Lit("k")))
	assert.True(t, Equal(Lit([]int{1}), Lit([]int{1})))
}

func TestTopoOrder_DependenciesFirst(t *testing.T) {
	op := namedOp("f")
	g, err := FromEntries([]Entry{
		{Key: "d", Spec: NewCall(op, RefTo("b"), RefTo("c"))},
		{Key: "c", Spec: NewCall(op, RefTo("a"))},
		{Key: "b", Spec: NewCall(op, RefTo("a"), NewCall(op, RefTo("a")))},
		{Key: "a", Spec: Lit(1)},
		{Key: "e", Spec: Lit(2)},
	})
	require.NoError(t, err)

	order, err := TopoOrder(g)
	require.NoError(t, err)
	assert.Equal(t, []Key{"a", "c", "b", "d", "e"}, order)

	pos := map[Key]int{}
	for i, k := range order {
		pos[k] = i
	}
	for _, e := range g.Entries() {
		for _, ref := range Refs(e.Spec) {
			assert.Less(t, pos[ref], pos[e.Key], "%s must precede %s", ref, e.Key)
		}
	}
}

func TestTopoOrder_Deterministic(t *testing.T) {
	op := namedOp("f")
	build := func() *Graph {
		g, err := FromEntries([]Entry{
			{Key: "r1", Spec: Lit(1)},
			{Key: "r2", Spec: Lit(2)},
			{Key: "m", Spec: NewCall(op, RefTo("r2"), RefTo("r1"))},
			{Key: "r3", Spec: Lit(3)},
		})
		require.NoError(t, err)
		return g
	}

	first, err := TopoOrder(build())
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := TopoOrder(build())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestTopoOrder_Cycle(t *testing.T) {
	op := namedOp("f")
	tests := []struct {
		name    string
		entries []Entry
	}{
		{
			name: "two node cycle",
			entries: []Entry{
				{Key: "a", Spec: NewCall(op, RefTo("b"))},
				{Key: "b", Spec: NewCall(op, RefTo("a"))},
			},
		},
		{
			name: "self reference",
			entries: []Entry{
				{Key: "a", Spec: NewCall(op, RefTo("a"))},
			},
		},
		{
			name: "cycle behind a root",
			entries: []Entry{
				{Key: "root", Spec: Lit(0)},
				{Key: "x", Spec: NewCall(op, RefTo("root"), RefTo("z"))},
				{Key: "y", Spec: NewCall(op, RefTo("x"))},
				{Key: "z", Spec: NewCall(op, RefTo("y"))},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := FromEntries(tt.entries)
			require.NoError(t, err)

			_, err = TopoOrder(g)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrCyclicGraph))

			var ge *GraphError
			require.True(t, errors.As(err, &ge))
			assert.Contains(t, ge.Msg, "->")
		})
	}
}
