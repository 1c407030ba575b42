// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package filters applies --filter expressions to the rows of a table.
//
// An expression is <column><operand><target>. Operands are = ^ ~ < > @ and /,
// each of which may be negated with a leading !. Several expressions are
// joined with "," (or GRIDMEMO_FILTER_DELIM) and must all hold for a row to
// be kept.
package filters

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/gridmemo/internal/table"
)

// EnvDelim overrides the delimiter between filter expressions.
const EnvDelim = "GRIDMEMO_FILTER_DELIM"

var filterRegex = regexp.MustCompile(`^(.*?)(!?[=^~<>@/])(.*)$`)

// Filter is a single parsed --filter expression.
type Filter struct {
	Key     string
	Negate  bool
	Operand string
	Target  string
}

// BuildFilters parses a filter specification string into a slice of Filter.
// Malformed expressions are logged and skipped.
func BuildFilters(spec string) []Filter {
	//nolint:prealloc
	var filters []Filter

	if spec == "" {
		return filters
	}

	delim := ","
	if d, ok := os.LookupEnv(EnvDelim); ok && d != "" {
		delim = d
	}

	for _, filterSpec := range strings.Split(spec, delim) {
		parts := filterRegex.FindStringSubmatch(filterSpec)
		if parts == nil || parts[1] == "" {
			log.Error("invalid filter: " + filterSpec)
			continue
		}

		operand, negate := strings.CutPrefix(parts[2], "!")
		filters = append(filters, Filter{
			Key:     parts[1],
			Negate:  negate,
			Operand: operand,
			Target:  parts[3],
		})
	}

	return filters
}

// Rows returns a table holding the rows of t that satisfy every filter in
// spec. Filters naming a column t does not have are reported and ignored.
func Rows(t *table.Table, spec string) (*table.Table, error) {
	filters := BuildFilters(spec)
	if len(filters) == 0 || t == nil {
		return t, nil
	}

	columns := make([]int, len(filters))
	for i, f := range filters {
		columns[i] = t.Index(f.Key)
		if columns[i] < 0 {
			msg := fmt.Sprintf("filter key not found: %s", f.Key)
			log.Error(msg)
			fmt.Fprintf(os.Stderr, "warning: %s\n", msg)
		}
	}

	var kept [][]any
	for _, row := range t.Rows {
		if keep(row, columns, filters) {
			kept = append(kept, row)
		}
	}
	return table.New(t.Columns, kept)
}

func keep(row []any, columns []int, filters []Filter) bool {
	for i, f := range filters {
		if columns[i] < 0 {
			continue
		}
		if !Check(row[columns[i]], f) {
			return false
		}
	}
	return true
}

// Check reports whether a single cell satisfies f. A nil cell never does.
func Check(value any, f Filter) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return checkStringOperand(v, f)
	case bool:
		return checkStringOperand(strconv.FormatBool(v), f)
	}
	if num, ok := toFloat64(value); ok {
		return checkNumericOperand(num, f)
	}
	return checkStringOperand(fmt.Sprintf("%v", value), f)
}

// checkNumericOperand compares using numeric semantics. Operands other than
// = < and > fall back to comparing the text of the number.
func checkNumericOperand(value float64, f Filter) bool {
	switch f.Operand {
	case "=", ">", "<":
	default:
		return checkStringOperand(strconv.FormatFloat(value, 'g', -1, 64), f)
	}

	tgt, err := strconv.ParseFloat(strings.TrimSpace(f.Target), 64)
	if err != nil {
		log.Error("invalid numeric target: " + f.Target)
		return false
	}

	switch f.Operand {
	case ">":
		return (value > tgt) == !f.Negate
	case "<":
		return (value < tgt) == !f.Negate
	default:
		return (value == tgt) == !f.Negate
	}
}

func checkStringOperand(value string, f Filter) bool {
	switch f.Operand {
	case "=":
		return value == f.Target == !f.Negate
	case "~":
		return strings.EqualFold(value, f.Target) == !f.Negate
	case "^":
		return strings.HasPrefix(value, f.Target) == !f.Negate
	case ">":
		return value > f.Target == !f.Negate
	case "<":
		return value < f.Target == !f.Negate
	case "@":
		return strings.Contains(value, f.Target) == !f.Negate
	case "/":
		matched, err := regexp.MatchString(f.Target, value)
		if err != nil {
			log.Error("invalid regex: " + f.Target)
			return false
		}
		return matched == !f.Negate
	default:
		log.Error("unsupported filtering operand: " + f.Operand)
		return false
	}
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
