// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/staranto/gridmemo/internal/table"
)

type sortKey struct {
	col           int
	descending    bool
	caseSensitive bool
}

// SortRows sorts the rows of t in place by spec, a comma-separated list of
// column names. A leading "-" sorts a column descending and a leading "!"
// compares strings case-sensitively. Both may be combined, as in "-!name".
// Nil cells sort first. The sort is stable.
func SortRows(t *table.Table, spec string) error {
	if t == nil || strings.TrimSpace(spec) == "" {
		return nil
	}

	var keys []sortKey
	for _, field := range strings.Split(spec, ",") {
		field = strings.TrimSpace(field)
		k := sortKey{}
		for len(field) > 0 && (field[0] == '-' || field[0] == '!') {
			if field[0] == '-' {
				k.descending = true
			} else {
				k.caseSensitive = true
			}
			field = field[1:]
		}
		k.col = t.Index(field)
		if k.col < 0 {
			return fmt.Errorf("unknown sort column %q", field)
		}
		keys = append(keys, k)
	}

	sort.SliceStable(t.Rows, func(i, j int) bool {
		for _, k := range keys {
			c := compare(t.Rows[i][k.col], t.Rows[j][k.col], k.caseSensitive)
			if c == 0 {
				continue
			}
			if k.descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return nil
}

// compare orders two cells of the same column.
func compare(a, b any, caseSensitive bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	switch x := a.(type) {
	case int64:
		return cmpOrdered(x, b.(int64))
	case float64:
		return cmpOrdered(x, b.(float64))
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	case string:
		y := b.(string)
		if !caseSensitive {
			x, y = strings.ToLower(x), strings.ToLower(y)
		}
		return strings.Compare(x, y)
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func cmpOrdered[T int64 | float64](x, y T) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}
