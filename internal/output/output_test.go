// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/gridmemo/internal/table"
)

func testTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.Coerce([]map[string]any{
		{"name": "zebra", "count": 3, "kind": "b"},
		{"name": "Alpha", "count": 1, "kind": "a"},
		{"name": "beta", "count": 2, "kind": "a"},
	})
	require.NoError(t, err)
	return tbl
}

func names(tbl *table.Table) []string {
	var out []string
	for _, r := range tbl.Records() {
		out = append(out, r["name"].(string))
	}
	return out
}

func TestSortRows(t *testing.T) {
	tests := []struct {
		name      string
		spec      string
		wantOrder []string
	}{
		{name: "ascending by name", spec: "name", wantOrder: []string{"Alpha", "beta", "zebra"}},
		{name: "descending by name", spec: "-name", wantOrder: []string{"zebra", "beta", "Alpha"}},
		{name: "ascending by count", spec: "count", wantOrder: []string{"Alpha", "beta", "zebra"}},
		{name: "descending by count", spec: "-count", wantOrder: []string{"zebra", "beta", "Alpha"}},
		{name: "case sensitive", spec: "!name", wantOrder: []string{"Alpha", "beta", "zebra"}},
		{name: "case sensitive descending", spec: "-!name", wantOrder: []string{"zebra", "beta", "Alpha"}},
		{name: "multiple fields", spec: "kind,-count", wantOrder: []string{"beta", "Alpha", "zebra"}},
		{name: "empty spec", spec: "", wantOrder: []string{"zebra", "Alpha", "beta"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := testTable(t)
			require.NoError(t, SortRows(tbl, tt.spec))
			assert.Equal(t, tt.wantOrder, names(tbl))
		})
	}
}

func TestSortRows_CaseMatters(t *testing.T) {
	tbl, err := table.Coerce([]map[string]any{{"name": "b"}, {"name": "B"}, {"name": "a"}})
	require.NoError(t, err)

	require.NoError(t, SortRows(tbl, "!name"))
	assert.Equal(t, []string{"B", "a", "b"}, names(tbl))

	require.NoError(t, SortRows(tbl, "name"))
	assert.Equal(t, []string{"a", "B", "b"}, names(tbl))
}

func TestSortRows_NilFirstAndUnknown(t *testing.T) {
	tbl, err := table.Coerce([]map[string]any{{"name": "x", "n": 2}, {"name": "y"}})
	require.NoError(t, err)

	require.NoError(t, SortRows(tbl, "n"))
	assert.Equal(t, []string{"y", "x"}, names(tbl))

	assert.Error(t, SortRows(tbl, "nope"))
}

func TestCellString(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		emptyVal string
		want     string
	}{
		{name: "string", value: "hello", want: "hello"},
		{name: "int", value: int64(42), want: "42"},
		{name: "float", value: 42.5, want: "42.5"},
		{name: "bool false", value: false, want: "false"},
		{name: "nil default", value: nil, want: ""},
		{name: "nil custom", value: nil, emptyVal: "-", want: "-"},
		{name: "zero int is shown", value: int64(0), emptyVal: "-", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			if tt.emptyVal != "" {
				got = CellString(tt.value, tt.emptyVal)
			} else {
				got = CellString(tt.value)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSliceDiceSpit_JSON(t *testing.T) {
	var buf bytes.Buffer
	err := SliceDiceSpit(&buf, testTable(t), Options{Format: JSON, Filter: "kind=a", Sort: "-count"})
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "beta", got[0]["name"])
	assert.Equal(t, float64(1), got[1]["count"])
}

func TestSliceDiceSpit_YAMLKeepsColumnOrder(t *testing.T) {
	var buf bytes.Buffer
	err := SliceDiceSpit(&buf, testTable(t), Options{Format: YAML, Filter: "name=zebra"})
	require.NoError(t, err)
	assert.Equal(t, "- count: 3\n  kind: b\n  name: zebra\n", buf.String())
}

func TestSliceDiceSpit_Attrs(t *testing.T) {
	var buf bytes.Buffer
	err := SliceDiceSpit(&buf, testTable(t), Options{Format: JSON, Filter: "name=zebra", Attrs: "name:n:u"})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"n":"ZEBRA"}]`, buf.String())

	err = SliceDiceSpit(&bytes.Buffer{}, testTable(t), Options{Format: JSON, Attrs: "nope"})
	assert.Error(t, err)
}

func TestSliceDiceSpit_Raw(t *testing.T) {
	tbl := testTable(t)
	var buf bytes.Buffer
	require.NoError(t, SliceDiceSpit(&buf, tbl, Options{Format: Raw, Filter: "kind=a"}))

	back, err := table.Unmarshal(buf.Bytes())
	require.NoError(t, err)
	assert.True(t, table.Equal(tbl, back), "raw output ignores filters")
}

func TestSliceDiceSpit_Text(t *testing.T) {
	var buf bytes.Buffer
	err := SliceDiceSpit(&buf, testTable(t), Options{Format: Text, Titles: true, Sort: "name"})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "count")
	assert.Contains(t, out, "zebra")
	assert.Less(t, strings.Index(out, "Alpha"), strings.Index(out, "zebra"))

	buf.Reset()
	empty, err := table.Coerce([]any{})
	require.NoError(t, err)
	require.NoError(t, SliceDiceSpit(&buf, empty, Options{Format: Text}))
	assert.Empty(t, buf.String())
}

func TestSliceDiceSpit_UnknownFormat(t *testing.T) {
	err := SliceDiceSpit(&bytes.Buffer{}, testTable(t), Options{Format: "xml"})
	assert.Error(t, err)
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}

func TestGetColors(t *testing.T) {
	header, even, odd := getColors("colors")
	assert.NotEmpty(t, header)
	assert.NotEmpty(t, even)
	assert.NotEmpty(t, odd)
}

func BenchmarkSortRows(b *testing.B) {
	tbl, _ := table.Coerce([]map[string]any{
		{"name": "zebra", "count": 3},
		{"name": "alpha", "count": 1},
		{"name": "beta", "count": 2},
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = SortRows(tbl, "name,-count")
	}
}
