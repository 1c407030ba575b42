// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		columns []Column
		rows    [][]any
	}{
		{
			name:    "scalar int",
			in:      10,
			columns: []Column{{"0", Int}},
			rows:    [][]any{{int64(10)}},
		},
		{
			name:    "scalar string",
			in:      "hello",
			columns: []Column{{"0", String}},
			rows:    [][]any{{"hello"}},
		},
		{
			name:    "nil",
			in:      nil,
			columns: []Column{{"0", String}},
			rows:    [][]any{{nil}},
		},
		{
			name:    "slice of scalars",
			in:      []int{1, 2, 3},
			columns: []Column{{"0", Int}},
			rows:    [][]any{{int64(1)}, {int64(2)}, {int64(3)}},
		},
		{
			name:    "mixed numbers widen to float",
			in:      []any{1, 2.5},
			columns: []Column{{"0", Float}},
			rows:    [][]any{{1.0}, {2.5}},
		},
		{
			name:    "mixed kinds widen to string",
			in:      []any{1, "a", true},
			columns: []Column{{"0", String}},
			rows:    [][]any{{"1"}, {"a"}, {"true"}},
		},
		{
			name:    "grid",
			in:      [][]any{{"a", 1}, {"b"}},
			columns: []Column{{"0", String}, {"1", Int}},
			rows:    [][]any{{"a", int64(1)}, {"b", nil}},
		},
		{
			name:    "record",
			in:      map[string]any{"b": true, "a": 1.5},
			columns: []Column{{"a", Float}, {"b", Bool}},
			rows:    [][]any{{1.5, true}},
		},
		{
			name: "records",
			in: []map[string]any{
				{"name": "x", "n": 1},
				{"name": "y", "extra": "z"},
			},
			columns: []Column{{"extra", String}, {"n", Int}, {"name", String}},
			rows:    [][]any{{nil, int64(1), "x"}, {"z", nil, "y"}},
		},
		{
			name:    "records behind []any",
			in:      []any{map[string]any{"k": "v"}},
			columns: []Column{{"k", String}},
			rows:    [][]any{{"v"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Coerce(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.columns, got.Columns)
			assert.Equal(t, tt.rows, got.Rows)
		})
	}
}

func TestCoerce_TablePassesThrough(t *testing.T) {
	in, err := New([]Column{{"a", Int}}, [][]any{{1}})
	require.NoError(t, err)

	got, err := Coerce(in)
	require.NoError(t, err)
	assert.Same(t, in, got)
}

func TestNew_Rejects(t *testing.T) {
	_, err := New([]Column{{"a", Int}}, [][]any{{1, 2}})
	assert.ErrorIs(t, err, ErrShape)

	_, err = New([]Column{{"a", "decimal"}}, nil)
	assert.ErrorIs(t, err, ErrShape)

	_, err = New([]Column{{"a", Int}, {"a", Int}}, nil)
	assert.ErrorIs(t, err, ErrShape)

	_, err = New([]Column{{"a", Bool}}, [][]any{{3}})
	assert.ErrorIs(t, err, ErrShape)
}

func TestMarshal_RoundTrip(t *testing.T) {
	in, err := New(
		[]Column{{"name", String}, {"n", Int}, {"score", Float}, {"ok", Bool}},
		[][]any{
			{"alpha", 1, 0.1, true},
			{"1", -42, 1e21, false},
			{"", nil, nil, nil},
		},
	)
	require.NoError(t, err)

	b, err := Marshal(in)
	require.NoError(t, err)

	out, err := Unmarshal(b)
	require.NoError(t, err)
	assert.True(t, Equal(in, out), "round trip changed the table:\n%s", b)

	again, err := Marshal(out)
	require.NoError(t, err)
	assert.Equal(t, string(b), string(again))
}

func TestMarshal_Empty(t *testing.T) {
	in, err := Coerce([]any{})
	require.NoError(t, err)

	b, err := Marshal(in)
	require.NoError(t, err)

	out, err := Unmarshal(b)
	require.NoError(t, err)
	assert.True(t, Equal(in, out))
}

func TestUnmarshal_Corrupt(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"not yaml", "{{{"},
		{"wrong version", "version: 9\ncolumns: []\nrows: []\n"},
		{"unshaped version 1", "version: 1\ncolumns: []\nrows: []\n"},
		{"unknown shape", "version: 2\nshape: tree\ncolumns: []\nrows: []\n"},
		{"unknown field", "version: 2\ncolumns: []\nrows: []\nextra: 1\n"},
		{"bad int", "version: 2\ncolumns:\n  - name: a\n    kind: int\nrows:\n  - [\"x\"]\n"},
		{"ragged row", "version: 2\ncolumns:\n  - name: a\n    kind: string\nrows:\n  - [\"x\", \"y\"]\n"},
		{"unknown kind", "version: 2\ncolumns:\n  - name: a\n    kind: blob\nrows: []\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrCorrupt), "got %v", err)
		})
	}
}

func TestEqual(t *testing.T) {
	a, _ := Coerce([]int{1, 2})
	b, _ := Coerce([]int{1, 2})
	c, _ := Coerce([]int{2, 1})
	d, _ := Coerce([]float64{1, 2})

	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
	assert.False(t, Equal(a, d))
	assert.False(t, Equal(a, nil))
	assert.True(t, Equal(nil, nil))
}

func TestRecords(t *testing.T) {
	tbl, err := Coerce([]map[string]any{{"a": 1, "b": "x"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, tbl.Names())
	assert.Equal(t, 1, tbl.Index("b"))
	assert.Equal(t, -1, tbl.Index("z"))
	assert.Equal(t, []map[string]any{{"a": int64(1), "b": "x"}}, tbl.Records())
}

func TestUnwrap(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"scalar", 10, int64(10)},
		{"nil", nil, nil},
		{"list", []string{"a", "b"}, []any{"a", "b"}},
		{"one element list", []int64{0}, []any{int64(0)}},
		{"empty list", []any{}, []any{}},
		{"grid", [][]any{{"a", 1}, {"b"}}, [][]any{{"a", int64(1)}, {"b", nil}}},
		{"record", map[string]any{"a": 1}, map[string]any{"a": int64(1)}},
		{"records", []map[string]any{{"a": 1}}, []map[string]any{{"a": int64(1)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := Coerce(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Unwrap(tbl))

			// The shape survives the artifact codec.
			b, err := Marshal(tbl)
			require.NoError(t, err)
			back, err := Unmarshal(b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Unwrap(back))
		})
	}
}

func TestUnwrap_PlainValues(t *testing.T) {
	built, err := New([]Column{{"0", Int}}, [][]any{{1}})
	require.NoError(t, err)

	assert.Same(t, built, Unwrap(built))
	assert.Equal(t, "plain", Unwrap("plain"))
}

func TestCoerce_LargeUnsigned(t *testing.T) {
	tbl, err := Coerce(uint64(18446744073709551615))
	require.NoError(t, err)
	assert.Equal(t, []Column{{"0", String}}, tbl.Columns)
	assert.Equal(t, "18446744073709551615", Unwrap(tbl))
}

func TestEqual_Shape(t *testing.T) {
	scalar, _ := Coerce(0)
	list, _ := Coerce([]int{0})
	assert.Equal(t, scalar.Columns, list.Columns)
	assert.Equal(t, scalar.Rows, list.Rows)
	assert.False(t, Equal(scalar, list))
}
