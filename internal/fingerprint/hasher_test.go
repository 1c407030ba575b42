// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package fingerprint

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"

	"github.com/staranto/gridmemo/internal/graph"
)

type op string

func (o op) Name() string { return string(o) }
func (o op) Apply(_ context.Context, args []any) (any, error) {
	return nil, nil
}

func sha(s string) string {
	sum := sha3.Sum384([]byte(s))
	return hex.EncodeToString(sum[:])
}

func mustGraph(t *testing.T, entries ...graph.Entry) *graph.Graph {
	t.Helper()
	g, err := graph.FromEntries(entries)
	require.NoError(t, err)
	return g
}

func TestGraph_ChainFormula(t *testing.T) {
	g := mustGraph(t,
		graph.Entry{Key: "n1", Spec: graph.Lit(5)},
		graph.Entry{Key: "none", Spec: graph.NewCall(op("now"))},
		graph.Entry{Key: "one", Spec: graph.NewCall(op("double"), graph.RefTo("n1"))},
		graph.Entry{Key: "two", Spec: graph.NewCall(op("sum"), graph.Lit(1), graph.Lit(2))},
		graph.Entry{Key: "three", Spec: graph.NewCall(op("sum"), graph.Lit(1), graph.Lit(2), graph.Lit(3))},
	)

	res, err := Graph(g)
	require.NoError(t, err)

	n1 := sha("5")
	assert.Equal(t, Fingerprint(n1), res.Fingerprints["n1"])
	assert.Equal(t, Fingerprint(sha("now")), res.Fingerprints["none"])
	assert.Equal(t, Fingerprint(sha("double"+n1)), res.Fingerprints["one"])
	assert.Equal(t, Fingerprint(sha("sum"+sha("1"+"2"))), res.Fingerprints["two"])
	assert.Equal(t, Fingerprint(sha("sum"+sha("1"+sha("2"+"3")))), res.Fingerprints["three"])

	assert.Len(t, string(res.Fingerprints["one"]), 96)
}

func TestGraph_Deterministic(t *testing.T) {
	build := func() *graph.Graph {
		return mustGraph(t,
			graph.Entry{Key: "a", Spec: graph.Lit("x")},
			graph.Entry{Key: "b", Spec: graph.NewCall(op("f"), graph.RefTo("a"), graph.NewCall(op("g"), graph.Lit(3.5)))},
			graph.Entry{Key: "c", Spec: graph.NewCall(op("h"), graph.RefTo("b"), graph.RefTo("a"))},
		)
	}

	first, err := Graph(build())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Graph(build())
		require.NoError(t, err)
		assert.Equal(t, first.Fingerprints, again.Fingerprints)
	}
}

func TestGraph_ContentAddressedAcrossGraphs(t *testing.T) {
	// Same computation, different keys and a different literal node that
	// happens to hash the same.
	g1 := mustGraph(t,
		graph.Entry{Key: "in", Spec: graph.Lit(5)},
		graph.Entry{Key: "out", Spec: graph.NewCall(op("double"), graph.RefTo("in"))},
	)
	g2 := mustGraph(t,
		graph.Entry{Key: "unrelated", Spec: graph.Lit("zzz")},
		graph.Entry{Key: "five", Spec: graph.Lit(5)},
		graph.Entry{Key: "twice", Spec: graph.NewCall(op("double"), graph.RefTo("five"))},
	)

	r1, err := Graph(g1)
	require.NoError(t, err)
	r2, err := Graph(g2)
	require.NoError(t, err)

	assert.Equal(t, r1.Fingerprints["out"], r2.Fingerprints["twice"])
	assert.Equal(t, r1.Fingerprints["in"], r2.Fingerprints["five"])
}

func TestGraph_LiteralArgumentIgnoresEqualNodes(t *testing.T) {
	n1 := sha("5")
	tests := []struct {
		name    string
		entries []graph.Entry
		want    string
	}{
		{
			name: "inline literal beside equal node",
			entries: []graph.Entry{
				{Key: "n1", Spec: graph.Lit(5)},
				{Key: "out", Spec: graph.NewCall(op("double"), graph.Lit(5))},
			},
			want: sha("double" + "5"),
		},
		{
			name: "inline literal alone",
			entries: []graph.Entry{
				{Key: "out", Spec: graph.NewCall(op("double"), graph.Lit(5))},
			},
			want: sha("double" + "5"),
		},
		{
			name: "reference to literal node",
			entries: []graph.Entry{
				{Key: "n1", Spec: graph.Lit(5)},
				{Key: "out", Spec: graph.NewCall(op("double"), graph.RefTo("n1"))},
			},
			want: sha("double" + n1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Graph(mustGraph(t, tt.entries...))
			require.NoError(t, err)
			assert.Equal(t, Fingerprint(tt.want), res.Fingerprints["out"])
		})
	}

	assert.NotEqual(t, sha("double"+"5"), sha("double"+n1))
}

func TestGraph_DependencyChangePropagates(t *testing.T) {
	g1 := mustGraph(t,
		graph.Entry{Key: "a", Spec: graph.Lit(1)},
		graph.Entry{Key: "b", Spec: graph.NewCall(op("f"), graph.RefTo("a"))},
		graph.Entry{Key: "c", Spec: graph.NewCall(op("g"), graph.RefTo("b"))},
	)
	g2 := mustGraph(t,
		graph.Entry{Key: "a", Spec: graph.Lit(2)},
		graph.Entry{Key: "b", Spec: graph.NewCall(op("f"), graph.RefTo("a"))},
		graph.Entry{Key: "c", Spec: graph.NewCall(op("g"), graph.RefTo("b"))},
	)

	r1, err := Graph(g1)
	require.NoError(t, err)
	r2, err := Graph(g2)
	require.NoError(t, err)

	assert.NotEqual(t, r1.Fingerprints["b"], r2.Fingerprints["b"])
	assert.NotEqual(t, r1.Fingerprints["c"], r2.Fingerprints["c"])
}

func TestGraph_Duplicates(t *testing.T) {
	g := mustGraph(t,
		graph.Entry{Key: "first", Spec: graph.NewCall(op("sum"), graph.Lit(1), graph.Lit(2))},
		graph.Entry{Key: "second", Spec: graph.NewCall(op("sum"), graph.Lit(1), graph.Lit(2))},
		graph.Entry{Key: "third", Spec: graph.NewCall(op("sum"), graph.Lit(1), graph.Lit(2))},
		graph.Entry{Key: "other", Spec: graph.NewCall(op("sum"), graph.Lit(2), graph.Lit(1))},
	)

	res, err := Graph(g)
	require.NoError(t, err)

	assert.Equal(t, res.Fingerprints["first"], res.Fingerprints["second"])
	assert.Equal(t, res.Fingerprints["first"], res.Fingerprints["third"])
	assert.NotEqual(t, res.Fingerprints["first"], res.Fingerprints["other"])
	assert.Equal(t, map[graph.Key]graph.Key{"second": "first", "third": "first"}, res.Duplicates)
}

func TestGraph_NestedCalls(t *testing.T) {
	inner := graph.NewCall(op("load"), graph.Lit("x.csv"))
	standalone := graph.NewCall(op("load"), graph.Lit("x.csv"))
	g := mustGraph(t,
		graph.Entry{Key: "loaded", Spec: standalone},
		graph.Entry{Key: "clean", Spec: graph.NewCall(op("clean"), inner)},
	)

	res, err := Graph(g)
	require.NoError(t, err)

	// The inline call is recognized as the same computation as "loaded".
	assert.Equal(t, res.Fingerprints["loaded"], res.Nested[inner])
	assert.Equal(t, Fingerprint(sha("clean"+string(res.Fingerprints["loaded"]))), res.Fingerprints["clean"])

	// Referencing the node or inlining its call yields the same fingerprint.
	g2 := mustGraph(t,
		graph.Entry{Key: "loaded", Spec: graph.NewCall(op("load"), graph.Lit("x.csv"))},
		graph.Entry{Key: "clean", Spec: graph.NewCall(op("clean"), graph.RefTo("loaded"))},
	)
	res2, err := Graph(g2)
	require.NoError(t, err)
	assert.Equal(t, res.Fingerprints["clean"], res2.Fingerprints["clean"])
}

func TestGraph_AliasSharesFingerprint(t *testing.T) {
	g := mustGraph(t,
		graph.Entry{Key: "a", Spec: graph.NewCall(op("f"), graph.Lit(1))},
		graph.Entry{Key: "b", Spec: graph.RefTo("a")},
	)
	res, err := Graph(g)
	require.NoError(t, err)
	assert.Equal(t, res.Fingerprints["a"], res.Fingerprints["b"])
}

func TestGraph_CycleFails(t *testing.T) {
	g := mustGraph(t,
		graph.Entry{Key: "a", Spec: graph.NewCall(op("f"), graph.RefTo("b"))},
		graph.Entry{Key: "b", Spec: graph.NewCall(op("f"), graph.RefTo("a"))},
	)
	_, err := Graph(g)
	assert.ErrorIs(t, err, graph.ErrCyclicGraph)
}

type label struct{ v string }

func (l label) String() string { return "label:" + l.v }

func namedFunc(context.Context, []any) (any, error) { return nil, nil }

func TestStringForm(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "<nil>"},
		{"string", "abc", "abc"},
		{"int", 42, "42"},
		{"negative int64", int64(-7), "-7"},
		{"uint8", uint8(9), "9"},
		{"float", 2.5, "2.5"},
		{"float32", float32(0.5), "0.5"},
		{"bool", true, "true"},
		{"stringer", label{"x"}, "label:x"},
		{"named op", op("sum"), "sum"},
		{"slice", []int{1, 2}, "[1 2]"},
		{"map", map[string]int{"b": 2, "a": 1}, "map[a:1 b:2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StringForm(tt.in))
		})
	}

	assert.Contains(t, StringForm(namedFunc), "fingerprint.namedFunc")
}

func TestStringForm_KnownCollision(t *testing.T) {
	// String forms are not injective across types.
	assert.Equal(t, StringForm(1), StringForm("1"))
}
