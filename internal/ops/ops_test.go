// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package ops

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/gridmemo/internal/graph"
	"github.com/staranto/gridmemo/internal/table"
)

func apply(t *testing.T, name string, args ...any) any {
	t.Helper()
	op, ok := Builtins().Lookup(name)
	require.True(t, ok, name)
	out, err := op.Apply(context.Background(), args)
	require.NoError(t, err)
	return out
}

func TestBuiltins(t *testing.T) {
	tests := []struct {
		name string
		op   string
		args []any
		want any
	}{
		{"sum ints", "sum", []any{1, 2}, int64(3)},
		{"sum mixed", "sum", []any{1, 2.5}, 3.5},
		{"sum nothing", "sum", nil, int64(0)},
		{"sum list", "sum", []any{[]int64{1, 2, 3}, 4}, int64(10)},
		{"mul", "mul", []any{2, 3, 4}, int64(24)},
		{"double", "double", []any{5}, int64(10)},
		{"double float", "double", []any{1.25}, 2.5},
		{"inc", "inc", []any{int64(41)}, int64(42)},
		{"neg", "neg", []any{3}, int64(-3)},
		{"concat", "concat", []any{"a", 1, true}, "a1true"},
		{"identity", "identity", []any{"x"}, "x"},
		{"range", "range", []any{3}, []int64{0, 1, 2}},
		{"record", "record", []any{"a", 1, "b", "x"}, map[string]any{"a": 1, "b": "x"}},
		{"count", "count", []any{[]int{7, 8, 9}}, int64(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apply(t, tt.op, tt.args...))
		})
	}
}

func TestBuiltins_UnwrapLoadedTables(t *testing.T) {
	ten, err := table.Coerce(10)
	require.NoError(t, err)
	assert.Equal(t, int64(20), apply(t, "double", ten))

	list, err := table.Coerce([]int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), apply(t, "sum", list))
}

func TestBuiltins_BadArgs(t *testing.T) {
	reg := Builtins()
	ctx := context.Background()

	for name, args := range map[string][]any{
		"double": {"x"},
		"inc":    {1, 2},
		"range":  {-1},
		"record": {"a"},
		"sum":    {"nope"},
	} {
		_, err := reg.MustLookup(name).Apply(ctx, args)
		assert.ErrorIs(t, err, ErrArgs, name)
	}
}

func TestSleep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Builtins().MustLookup("sleep").Apply(ctx, []any{int64(time.Hour / time.Millisecond), 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry(New("b", nil), New("a", nil))
	assert.Equal(t, []string{"a", "b"}, reg.Names())

	op, ok := reg.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "a", graph.OpName(op))

	_, ok = reg.Lookup("zzz")
	assert.False(t, ok)

	var empty *Registry
	_, ok = empty.Lookup("a")
	assert.False(t, ok)

	assert.Panics(t, func() { reg.MustLookup("zzz") })
}
