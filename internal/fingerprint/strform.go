// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package fingerprint

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/staranto/gridmemo/internal/graph"
)

// StringForm is the canonical string a literal value contributes to a
// fingerprint. Operations and functions contribute their identity, strings
// themselves, numbers and bools their strconv form, fmt.Stringers their
// String(). Everything else falls back to fmt's %v.
func StringForm(v any) string {
	switch t := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return t
	case graph.Operation, graph.Named:
		return graph.OpName(t)
	case fmt.Stringer:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int8:
		return strconv.FormatInt(int64(t), 10)
	case int16:
		return strconv.FormatInt(int64(t), 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint8:
		return strconv.FormatUint(uint64(t), 10)
	case uint16:
		return strconv.FormatUint(uint64(t), 10)
	case uint32:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	}

	if reflect.TypeOf(v).Kind() == reflect.Func {
		return graph.OpName(v)
	}

	return fmt.Sprintf("%v", v)
}
