// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

// Coerce turns an arbitrary computed value into a Table.
//
//	*Table, Table        returned as is
//	[]map[string]any     one row per record, columns by sorted key
//	map[string]any       one row, columns by sorted key
//	[][]any              columns "0".."n-1", short rows padded with nil
//	slice of scalars     one column "0"
//	scalar               one column "0", one row
//
// Column kinds are inferred from the values they hold. Mixed ints and floats
// widen to float. Any other mix widens to string. The table remembers which
// of these shapes it came from.
func Coerce(v any) (*Table, error) {
	switch t := v.(type) {
	case *Table:
		if t == nil {
			return scalarTable(nil)
		}
		return t, nil
	case Table:
		return &t, nil
	case map[string]any:
		return shaped(Record)(fromRecords([]map[string]any{t}))
	case []map[string]any:
		return shaped(Records)(fromRecords(t))
	case []byte:
		return scalarTable(string(t))
	}

	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return scalarTable(v)
	}

	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}

	if recs, ok := asRecords(items); ok {
		return shaped(Records)(fromRecords(recs))
	}
	if grid, ok := asGrid(items); ok {
		return shaped(Grid)(fromGrid(grid))
	}

	rows := make([][]any, len(items))
	for i, it := range items {
		rows[i] = []any{scalar(it)}
	}
	return shaped(List)(build([]string{"0"}, rows))
}

func shaped(s Shape) func(*Table, error) (*Table, error) {
	return func(t *Table, err error) (*Table, error) {
		if err != nil {
			return nil, err
		}
		t.Shape = s
		return t, nil
	}
}

func scalarTable(v any) (*Table, error) {
	return shaped(Scalar)(build([]string{"0"}, [][]any{{scalar(v)}}))
}

func asRecords(items []any) ([]map[string]any, bool) {
	if len(items) == 0 {
		return nil, false
	}
	out := make([]map[string]any, len(items))
	for i, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			return nil, false
		}
		out[i] = m
	}
	return out, true
}

func asGrid(items []any) ([][]any, bool) {
	if len(items) == 0 {
		return nil, false
	}
	out := make([][]any, len(items))
	for i, it := range items {
		if _, isBytes := it.([]byte); isBytes {
			return nil, false
		}
		rv := reflect.ValueOf(it)
		if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
			return nil, false
		}
		row := make([]any, rv.Len())
		for j := range row {
			row[j] = rv.Index(j).Interface()
		}
		out[i] = row
	}
	return out, true
}

func fromRecords(recs []map[string]any) (*Table, error) {
	keys := map[string]struct{}{}
	for _, r := range recs {
		for k := range r {
			keys[k] = struct{}{}
		}
	}
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)

	rows := make([][]any, len(recs))
	for i, r := range recs {
		row := make([]any, len(names))
		for j, n := range names {
			row[j] = scalar(r[n])
		}
		rows[i] = row
	}
	return build(names, rows)
}

func fromGrid(grid [][]any) (*Table, error) {
	width := 0
	for _, r := range grid {
		if len(r) > width {
			width = len(r)
		}
	}

	names := make([]string, width)
	for i := range names {
		names[i] = strconv.Itoa(i)
	}

	rows := make([][]any, len(grid))
	for i, r := range grid {
		row := make([]any, width)
		for j := range r {
			row[j] = scalar(r[j])
		}
		rows[i] = row
	}
	return build(names, rows)
}

// build infers a kind per column and converts the cells.
func build(names []string, rows [][]any) (*Table, error) {
	cols := make([]Column, len(names))
	for j, n := range names {
		cols[j] = Column{Name: n, Kind: infer(rows, j)}
	}
	return New(cols, rows)
}

func infer(rows [][]any, j int) Kind {
	var ints, floats, bools, others int
	for _, r := range rows {
		switch r[j].(type) {
		case nil:
		case int64:
			ints++
		case float64:
			floats++
		case bool:
			bools++
		default:
			others++
		}
	}

	switch {
	case others > 0:
		return String
	case bools > 0 && ints+floats == 0:
		return Bool
	case bools > 0:
		return String
	case floats > 0:
		return Float
	case ints > 0:
		return Int
	}
	return String
}

// scalar reduces v to one of nil, string, int64, float64 or bool.
func scalar(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string, int64, float64, bool:
		return t
	case float32:
		return float64(t)
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	}
	if i, ok := toInt64(v); ok {
		return i
	}
	// Unsigned values beyond int64 keep every digit as text.
	switch t := v.(type) {
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	}
	return fmt.Sprintf("%v", v)
}

// Unwrap reverses Coerce for tables that remember their shape. A scalar comes
// back as its single cell, a list as []any, a grid as [][]any, a record as
// map[string]any and records as []map[string]any. Missing record fields and
// grid padding come back as nil. Tables without a shape, and anything that
// is not a table, are returned unchanged.
func Unwrap(v any) any {
	t, ok := v.(*Table)
	if !ok || t == nil {
		return v
	}

	switch t.Shape {
	case Scalar:
		if len(t.Columns) == 1 && len(t.Rows) == 1 {
			return t.Rows[0][0]
		}
	case List:
		if len(t.Columns) == 1 {
			out := make([]any, len(t.Rows))
			for i, r := range t.Rows {
				out[i] = r[0]
			}
			return out
		}
	case Grid:
		out := make([][]any, len(t.Rows))
		for i, r := range t.Rows {
			out[i] = append([]any(nil), r...)
		}
		return out
	case Record:
		if len(t.Rows) == 1 {
			return t.Records()[0]
		}
	case Records:
		return t.Records()
	}
	return t
}
