// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	lgtable "github.com/charmbracelet/lipgloss/v2/table"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
	"gopkg.in/yaml.v2"

	"github.com/staranto/gridmemo/internal/attrs"
	"github.com/staranto/gridmemo/internal/config"
	"github.com/staranto/gridmemo/internal/filters"
	"github.com/staranto/gridmemo/internal/table"
)

// Formats accepted by --output.
const (
	Text = "text"
	JSON = "json"
	YAML = "yaml"
	Raw  = "raw"
)

// Formats lists every supported --output value.
var Formats = []string{Text, JSON, Raw, YAML}

// Options controls how a table is presented.
type Options struct {
	Attrs  string
	Format string
	Filter string
	Sort   string
	Titles bool
	Color  bool
}

// OptionsFrom reads the global output flags of cmd. Colour is only used when
// stdout is a terminal.
func OptionsFrom(cmd *cli.Command) Options {
	return Options{
		Attrs:  cmd.String("attrs"),
		Format: cmd.String("output"),
		Filter: cmd.String("filter"),
		Sort:   cmd.String("sort"),
		Titles: cmd.Bool("titles"),
		Color:  cmd.Bool("color") && IsTerminal(os.Stdout),
	}
}

// IsTerminal reports whether w is attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// SliceDiceSpit filters, sorts, projects and renders t to w according to
// opts. Raw output is the artifact encoding and ignores the rest.
func SliceDiceSpit(w io.Writer, t *table.Table, opts Options) error {
	if w == nil {
		w = os.Stdout
	}

	if opts.Format == Raw {
		b, err := table.Marshal(t)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	}

	filtered, err := filters.Rows(t, opts.Filter)
	if err != nil {
		return fmt.Errorf("failed to filter results: %w", err)
	}
	if err := SortRows(filtered, opts.Sort); err != nil {
		return err
	}
	if opts.Attrs != "" {
		list, err := attrs.Parse(opts.Attrs)
		if err != nil {
			return err
		}
		if filtered, err = list.Apply(filtered); err != nil {
			return err
		}
	}

	switch opts.Format {
	case JSON:
		b, err := json.Marshal(filtered.Records())
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case YAML:
		b, err := yaml.Marshal(orderedRecords(filtered))
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		_, err = w.Write(b)
		return err
	case Text, "":
		TableWriter(w, filtered, opts)
		return nil
	}
	return fmt.Errorf("unknown output format %q", opts.Format)
}

// orderedRecords keeps column order in YAML output.
func orderedRecords(t *table.Table) []yaml.MapSlice {
	out := make([]yaml.MapSlice, 0, t.Len())
	for _, row := range t.Rows {
		rec := make(yaml.MapSlice, len(t.Columns))
		for i, c := range t.Columns {
			rec[i] = yaml.MapItem{Key: c.Name, Value: row[i]}
		}
		out = append(out, rec)
	}
	return out
}

// TableWriter renders t in a tabular form honoring color and titles.
func TableWriter(w io.Writer, t *table.Table, opts Options) {
	if t == nil || t.Len() == 0 {
		return
	}

	var (
		headerStyle  = lipgloss.NewStyle().Align(lipgloss.Left)
		cellStyle    = lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
		evenRowStyle = cellStyle
		oddRowStyle  = cellStyle
	)

	if opts.Color {
		headerColor, evenColor, oddColor := getColors("colors")

		headerStyle = headerStyle.Foreground(lipgloss.Color(headerColor))
		evenRowStyle = evenRowStyle.Foreground(lipgloss.Color(evenColor))
		oddRowStyle = oddRowStyle.Foreground(lipgloss.Color(oddColor))
	}

	pad, _ := config.GetInt("padding", 1)
	log.Debugf("padding: %v", pad)

	rows := make([][]string, 0, t.Len())
	for _, r := range t.Rows {
		row := make([]string, len(r))
		for i, cell := range r {
			row[i] = CellString(cell, "-")
		}
		rows = append(rows, row)
	}

	lt := lgtable.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case row == lgtable.HeaderRow:
				style = headerStyle
			case row%2 == 0:
				style = evenRowStyle
			default:
				style = oddRowStyle
			}

			if col > 0 {
				style = style.PaddingLeft(pad)
			}

			return style
		}).
		Headers().
		Rows(rows...)

	if opts.Titles {
		// https://github.com/charmbracelet/lipgloss/issues/261
		lt = lt.Headers(t.Names()...).BorderHeader(false)
	}
	fmt.Fprintln(w, lt)
}

// getColors returns configured color values for table rendering.
func getColors(key string) (header string, even string, odd string) {
	header, _ = config.GetString(fmt.Sprintf("%s.title", key), "#f6be00")
	even, _ = config.GetString(fmt.Sprintf("%s.even", key), "#ffffff")
	odd, _ = config.GetString(fmt.Sprintf("%s.odd", key), "#00c8f0")
	return
}

// CellString renders a table cell. A nil cell renders as the optional empty
// value.
func CellString(value any, emptyValue ...string) string {
	if len(emptyValue) == 0 {
		emptyValue = []string{""}
	}

	switch v := value.(type) {
	case nil:
		return emptyValue[0]
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
