// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Extension is the default file suffix of an encoded table.
const Extension = ".table.yaml"

// formatVersion 2 added the shape field. Version 1 artifacts could not tell a
// one element list from a scalar and are rejected as corrupt.
const formatVersion = 2

type document struct {
	Version int         `yaml:"version"`
	Shape   Shape       `yaml:"shape,omitempty"`
	Columns []docColumn `yaml:"columns"`
	Rows    [][]*string `yaml:"rows"`
}

type docColumn struct {
	Name string `yaml:"name"`
	Kind Kind   `yaml:"kind"`
}

// Marshal encodes t as a YAML document. Cells are written in their canonical
// text form, so equal tables encode to identical bytes.
func Marshal(t *Table) ([]byte, error) {
	doc := document{
		Version: formatVersion,
		Shape:   t.Shape,
		Columns: make([]docColumn, len(t.Columns)),
		Rows:    make([][]*string, len(t.Rows)),
	}
	for i, c := range t.Columns {
		doc.Columns[i] = docColumn(c)
	}
	for i, row := range t.Rows {
		cells := make([]*string, len(row))
		for j, v := range row {
			if v == nil {
				continue
			}
			s := format(v)
			cells[j] = &s
		}
		doc.Rows[i] = cells
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("failed to encode table: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode table: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a document produced by Marshal. Any failure is reported
// as ErrCorrupt.
func Unmarshal(b []byte) (*Table, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if doc.Version != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, doc.Version)
	}
	if !doc.Shape.valid() {
		return nil, fmt.Errorf("%w: unknown shape %q", ErrCorrupt, doc.Shape)
	}

	cols := make([]Column, len(doc.Columns))
	for i, c := range doc.Columns {
		cols[i] = Column(c)
	}

	rows := make([][]any, len(doc.Rows))
	for i, r := range doc.Rows {
		row := make([]any, len(r))
		for j, cell := range r {
			if cell != nil {
				row[j] = *cell
			}
		}
		rows[i] = row
	}

	t, err := New(cols, rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	t.Shape = doc.Shape
	return t, nil
}

