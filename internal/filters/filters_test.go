// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/gridmemo/internal/table"
)

func TestBuildFilters(t *testing.T) {
	tests := []struct {
		name      string
		spec      string
		delimiter string
		want      []Filter
	}{
		{
			name: "empty spec",
			spec: "",
		},
		{
			name: "single exact match filter",
			spec: "key=n1",
			want: []Filter{{Key: "key", Operand: "=", Target: "n1"}},
		},
		{
			name: "negated prefix match",
			spec: "action!^lo",
			want: []Filter{{Key: "action", Operand: "^", Target: "lo", Negate: true}},
		},
		{
			name: "multiple filters",
			spec: "action=store,size>100",
			want: []Filter{
				{Key: "action", Operand: "=", Target: "store"},
				{Key: "size", Operand: ">", Target: "100"},
			},
		},
		{
			name: "regex operand",
			spec: "fingerprint/^ab[0-9]",
			want: []Filter{{Key: "fingerprint", Operand: "/", Target: "^ab[0-9]"}},
		},
		{
			name: "invalid filter skipped",
			spec: "key=a,nonsense,=missing-key,of@n1",
			want: []Filter{
				{Key: "key", Operand: "=", Target: "a"},
				{Key: "of", Operand: "@", Target: "n1"},
			},
		},
		{
			name:      "custom delimiter",
			spec:      "key=a,b|action~LOAD",
			delimiter: "|",
			want: []Filter{
				{Key: "key", Operand: "=", Target: "a,b"},
				{Key: "action", Operand: "~", Target: "LOAD"},
			},
		},
		{
			name: "empty target",
			spec: "of=",
			want: []Filter{{Key: "of", Operand: "=", Target: ""}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.delimiter != "" {
				t.Setenv(EnvDelim, tt.delimiter)
			}
			got := BuildFilters(tt.spec)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name  string
		value any
		spec  string
		want  bool
	}{
		{"string equal", "store", "x=store", true},
		{"string not equal", "store", "x!=store", false},
		{"fold", "Store", "x~STORE", true},
		{"prefix", "dirac://x", "x^dirac", true},
		{"contains", "abcdef", "x@cde", true},
		{"negated contains", "abcdef", "x!@zz", true},
		{"regex", "n42", "x/^n[0-9]+$", true},
		{"bad regex", "n42", "x/[", false},
		{"int greater", int64(10), "x>5", true},
		{"int less", int64(10), "x<5", false},
		{"float equal", 2.5, "x=2.5", true},
		{"numeric bad target", int64(3), "x>abc", false},
		{"numeric prefix uses text", int64(1234), "x^12", true},
		{"bool", true, "x=true", true},
		{"nil never matches", nil, "x!=anything", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := BuildFilters(tt.spec)
			require.Len(t, fs, 1)
			assert.Equal(t, tt.want, Check(tt.value, fs[0]))
		})
	}
}

func TestRows(t *testing.T) {
	in, err := table.Coerce([]map[string]any{
		{"key": "n1", "action": "load", "size": 10},
		{"key": "n2", "action": "store", "size": 200},
		{"key": "n3", "action": "store", "size": 5},
		{"key": "n4", "action": "keep"},
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		spec string
		want []string
	}{
		{"no filter", "", []string{"n1", "n2", "n3", "n4"}},
		{"single", "action=store", []string{"n2", "n3"}},
		{"all must hold", "action=store,size>100", []string{"n2"}},
		{"nil cells fail", "size<1000", []string{"n1", "n2", "n3"}},
		{"unknown column ignored", "colour=red,key=n4", []string{"n4"}},
		{"nothing", "key=zz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Rows(in, tt.spec)
			require.NoError(t, err)
			assert.Equal(t, in.Columns, out.Columns)

			var keys []string
			for _, rec := range out.Records() {
				keys = append(keys, rec["key"].(string))
			}
			assert.Equal(t, tt.want, keys)
		})
	}
}
