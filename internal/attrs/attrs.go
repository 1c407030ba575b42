// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package attrs selects, renames and transforms the columns of a result table
// from an --attrs spec such as
//
//	key,fingerprint:fp:-16,!of,*::u
//
// Each comma separated entry is column[:title[:transform]]. A leading ! hides
// the column and * carries a transform applied to every column.
package attrs

import (
	"errors"
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"

	"github.com/staranto/gridmemo/internal/config"
	"github.com/staranto/gridmemo/internal/table"
)

// ErrUnknownColumn is returned when an attr names a column the table lacks.
var ErrUnknownColumn = errors.New("unknown column")

// Attr is one column of the output.
type Attr struct {
	// Key is the source column.
	Key string
	// Include is false for columns named only to be hidden.
	Include bool
	// OutputKey is the column name in the output.
	OutputKey string
	// TransformSpec holds the transformations applied to string cells:
	// u/U upper case, l/L lower case, t/T RFC3339 times to the local zone,
	// N keep the first N characters, -N keep N characters around "..".
	TransformSpec string
}

var lengthRe = regexp.MustCompile(`-?\d+`)

// Transform applies the attr's TransformSpec to value. Only strings are
// transformed.
func (a *Attr) Transform(value any) any {
	result, ok := value.(string)
	if !ok || a.TransformSpec == "" {
		return value
	}

	if strings.ContainsAny(a.TransformSpec, "tT") {
		result = localTime(result)
	}

	// The case transformation appearing last wins, so an attr's own spec
	// overrides a global one prepended to it.
	lastL := strings.LastIndexAny(a.TransformSpec, "lL")
	lastU := strings.LastIndexAny(a.TransformSpec, "uU")
	if lastL > lastU {
		result = strings.ToLower(result)
	} else if lastU > lastL {
		result = strings.ToUpper(result)
	}

	// Same for length: the last one wins.
	if match := lengthRe.FindAllString(a.TransformSpec, -1); len(match) != 0 {
		l, _ := strconv.Atoi(match[len(match)-1])
		abs := int(math.Abs(float64(l)))
		if len(result) > abs {
			if l < 0 && abs > 3 {
				half := (abs - 2) / 2
				result = result[:half] + ".." + result[len(result)-(abs-2-half):]
			} else {
				result = result[:abs]
			}
		}
	}

	return result
}

// localTime converts an RFC3339 time into the zone named by the "timezone"
// config key or TZ. Without either the value is returned as is.
func localTime(s string) string {
	tz, _ := config.GetString("timezone", "")
	if tz == "" {
		tz = os.Getenv("TZ")
	}
	if tz == "" {
		return s
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Warnf("unknown timezone %q", tz)
		return s
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		log.Debugf("not a time: %s", s)
		return s
	}
	return t.In(loc).Format("2006-01-02T15:04:05MST")
}

type AttrList []Attr

// String returns the list in the --attrs syntax.
func (a *AttrList) String() string {
	result := make([]string, 0, len(*a))
	for _, attr := range *a {
		key := attr.Key
		if !attr.Include && key != "*" {
			key = "!" + key
		}
		result = append(result, fmt.Sprintf("%s:%s:%s", key, attr.OutputKey, attr.TransformSpec))
	}
	return strings.Join(result, ",")
}

// Set parses an --attrs value and adds its entries to the list. An entry for
// a column already in the list updates it.
func (a *AttrList) Set(value string) error {
	if value == "" || value == "*" {
		return nil
	}

	const (
		keyIdx = iota
		outputIdx
		transformIdx
	)

specloop:
	for _, spec := range strings.Split(value, ",") {
		fields := strings.Split(spec, ":")
		if len(fields) > 3 {
			return fmt.Errorf("invalid attr %q: want column[:title[:transform]]", spec)
		}

		attr := Attr{Include: true}
		attr.Key = strings.TrimSpace(fields[keyIdx])
		if strings.HasPrefix(attr.Key, "!") {
			attr.Include = false
			attr.Key = attr.Key[1:]
		}
		if attr.Key == "" {
			return fmt.Errorf("invalid attr %q: missing column", spec)
		}
		if attr.Key == "*" {
			attr.Include = false
		}

		attr.OutputKey = attr.Key
		if len(fields) > outputIdx && strings.TrimSpace(fields[outputIdx]) != "" {
			attr.OutputKey = strings.TrimSpace(fields[outputIdx])
		}
		if len(fields) > transformIdx {
			attr.TransformSpec = strings.TrimSpace(fields[transformIdx])
		}

		for i := range *a {
			if (*a)[i].Key == attr.Key || (*a)[i].OutputKey == attr.Key {
				(*a)[i].Include = attr.Include
				(*a)[i].OutputKey = attr.OutputKey
				(*a)[i].TransformSpec = attr.TransformSpec
				continue specloop
			}
		}

		*a = append(*a, attr)
	}

	return nil
}

func (a *AttrList) global() string {
	for _, attr := range *a {
		if attr.Key == "*" {
			return attr.TransformSpec
		}
	}
	return ""
}

// Parse reads an --attrs value.
func Parse(value string) (AttrList, error) {
	var list AttrList
	if err := list.Set(value); err != nil {
		return nil, err
	}
	return list, nil
}

// Apply projects t through the list. With no included attrs every column of
// t is kept, less the hidden ones. The source table is not modified.
func (a AttrList) Apply(t *table.Table) (*table.Table, error) {
	global := a.global()

	var selected []Attr
	hidden := map[string]bool{}
	for _, attr := range a {
		switch {
		case attr.Key == "*":
		case attr.Include:
			selected = append(selected, attr)
		default:
			hidden[attr.Key] = true
		}
	}

	if len(selected) == 0 {
		for _, c := range t.Columns {
			if !hidden[c.Name] {
				selected = append(selected, Attr{Key: c.Name, Include: true, OutputKey: c.Name})
			}
		}
	}

	cols := make([]table.Column, len(selected))
	idx := make([]int, len(selected))
	for i := range selected {
		if global != "" {
			selected[i].TransformSpec = global + "," + selected[i].TransformSpec
		}
		j := t.Index(selected[i].Key)
		if j < 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, selected[i].Key)
		}
		idx[i] = j
		cols[i] = table.Column{Name: selected[i].OutputKey, Kind: t.Columns[j].Kind}
	}

	rows := make([][]any, len(t.Rows))
	for r, row := range t.Rows {
		out := make([]any, len(selected))
		for i := range selected {
			out[i] = selected[i].Transform(row[idx[i]])
		}
		rows[r] = out
	}
	return table.New(cols, rows)
}
