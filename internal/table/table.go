// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrCorrupt is returned when an encoded table cannot be decoded.
var ErrCorrupt = errors.New("artifact corrupt")

// ErrShape is returned when rows do not match the column list.
var ErrShape = errors.New("table shape mismatch")

// Kind is the type of every value in a column.
type Kind string

const (
	String Kind = "string"
	Int    Kind = "int"
	Float  Kind = "float"
	Bool   Kind = "bool"
)

func (k Kind) valid() bool {
	switch k {
	case String, Int, Float, Bool:
		return true
	}
	return false
}

// Shape records the Go value a table was coerced from, so that Unwrap can
// hand back a value of the same shape.
type Shape string

const (
	// Tabular is a table built directly. It unwraps to itself.
	Tabular Shape = ""
	Scalar  Shape = "scalar"
	List    Shape = "list"
	Grid    Shape = "grid"
	Record  Shape = "record"
	Records Shape = "records"
)

func (s Shape) valid() bool {
	switch s {
	case Tabular, Scalar, List, Grid, Record, Records:
		return true
	}
	return false
}

// Column names and types one column of a Table.
type Column struct {
	Name string
	Kind Kind
}

// Table is a tabular artifact: rows of values under named, typed columns.
// Cells hold string, int64, float64, bool or nil, matching their column kind.
type Table struct {
	Columns []Column
	Rows    [][]any
	Shape   Shape
}

// New builds a table and converts every cell to its column kind.
func New(columns []Column, rows [][]any) (*Table, error) {
	t := &Table{
		Columns: append([]Column(nil), columns...),
		Rows:    make([][]any, 0, len(rows)),
	}

	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if !c.Kind.valid() {
			return nil, fmt.Errorf("%w: column %q has unknown kind %q", ErrShape, c.Name, c.Kind)
		}
		if _, dup := seen[c.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrShape, c.Name)
		}
		seen[c.Name] = struct{}{}
	}

	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrShape, i, len(row), len(columns))
		}
		out := make([]any, len(row))
		for j, cell := range row {
			v, err := convert(cell, columns[j].Kind)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d column %q: %v", ErrShape, i, columns[j].Name, err)
			}
			out[j] = v
		}
		t.Rows = append(t.Rows, out)
	}

	return t, nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Index returns the position of the named column, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Records returns every row as a map keyed by column name.
func (t *Table) Records() []map[string]any {
	out := make([]map[string]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]any, len(t.Columns))
		for i, c := range t.Columns {
			rec[c.Name] = row[i]
		}
		out = append(out, rec)
	}
	return out
}

// Equal reports whether a and b have the same shape, the same columns and the
// same rows, column for column and row for row.
func Equal(a, b *Table) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Shape != b.Shape || len(a.Columns) != len(b.Columns) || len(a.Rows) != len(b.Rows) {
		return false
	}
	for i := range a.Columns {
		if a.Columns[i] != b.Columns[i] {
			return false
		}
	}
	for i := range a.Rows {
		if len(a.Rows[i]) != len(b.Rows[i]) {
			return false
		}
		for j := range a.Rows[i] {
			if !cellEqual(a.Rows[i][j], b.Rows[i][j]) {
				return false
			}
		}
	}
	return true
}

func cellEqual(x, y any) bool {
	fx, okx := x.(float64)
	fy, oky := y.(float64)
	if okx && oky && math.IsNaN(fx) && math.IsNaN(fy) {
		return true
	}
	return x == y
}

// convert brings a cell into the canonical Go type of k.
func convert(v any, k Kind) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch k {
	case String:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return format(v), nil
	case Int:
		switch n := v.(type) {
		case int64:
			return n, nil
		case string:
			return strconv.ParseInt(n, 10, 64)
		}
		if i, ok := toInt64(v); ok {
			return i, nil
		}
	case Float:
		switch n := v.(type) {
		case float64:
			return n, nil
		case float32:
			return float64(n), nil
		case string:
			return strconv.ParseFloat(n, 64)
		}
		if i, ok := toInt64(v); ok {
			return float64(i), nil
		}
	case Bool:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			return strconv.ParseBool(b)
		}
	}

	return nil, fmt.Errorf("cannot hold %T in a %s column", v, k)
}

// format renders a canonical cell as the text stored in an artifact.
func format(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprintf("%v", v)
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		if uint64(n) <= math.MaxInt64 {
			return int64(n), true
		}
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n), true
		}
	}
	return 0, false
}
