// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package ops

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/staranto/gridmemo/internal/table"
)

// ErrArgs is returned when an operation receives arguments it cannot use.
var ErrArgs = errors.New("bad arguments")

// Builtins returns a registry of the operations every graph document may use.
//
//	sum       numeric sum of all arguments, lists included
//	mul       numeric product of all arguments, lists included
//	double    twice its single argument
//	inc       its single argument plus one
//	neg       its single argument negated
//	concat    string concatenation of all arguments
//	identity  its single argument unchanged
//	range     the integers [0, n)
//	record    a one row record from alternating name, value arguments
//	count     the number of rows its single argument coerces to
//	sleep     waits the given milliseconds, then returns its second argument
func Builtins() *Registry {
	return NewRegistry(
		New("sum", sum),
		New("mul", mul),
		New("double", unary(func(x number) any { return x.scale(2) })),
		New("inc", unary(func(x number) any { return x.add(number{i: 1}) })),
		New("neg", unary(func(x number) any { return x.scale(-1) })),
		New("concat", concat),
		New("identity", identity),
		New("range", rangeOp),
		New("record", record),
		New("count", count),
		New("sleep", sleep),
	)
}

// number is an int64 unless it has been widened to a float.
type number struct {
	i       int64
	f       float64
	isFloat bool
}

func (n number) value() any {
	if n.isFloat {
		return n.f
	}
	return n.i
}

func (n number) float() float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}

func (n number) add(o number) number {
	if n.isFloat || o.isFloat {
		return number{f: n.float() + o.float(), isFloat: true}
	}
	return number{i: n.i + o.i}
}

func (n number) times(o number) number {
	if n.isFloat || o.isFloat {
		return number{f: n.float() * o.float(), isFloat: true}
	}
	return number{i: n.i * o.i}
}

func (n number) scale(k int64) any {
	return n.times(number{i: k}).value()
}

func toNumber(v any) (number, error) {
	switch t := table.Unwrap(v).(type) {
	case int:
		return number{i: int64(t)}, nil
	case int8:
		return number{i: int64(t)}, nil
	case int16:
		return number{i: int64(t)}, nil
	case int32:
		return number{i: int64(t)}, nil
	case int64:
		return number{i: t}, nil
	case uint8:
		return number{i: int64(t)}, nil
	case uint16:
		return number{i: int64(t)}, nil
	case uint32:
		return number{i: int64(t)}, nil
	case float32:
		return number{f: float64(t), isFloat: true}, nil
	case float64:
		return number{f: t, isFloat: true}, nil
	default:
		return number{}, fmt.Errorf("%w: %v (%T) is not a number", ErrArgs, v, v)
	}
}

func numbers(args []any) ([]number, error) {
	out := make([]number, 0, len(args))
	for _, a := range args {
		// A list argument contributes all of its elements.
		if list, ok := asList(a); ok {
			nested, err := numbers(list)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
			continue
		}
		n, err := toNumber(a)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func asList(v any) ([]any, bool) {
	v = table.Unwrap(v)
	if l, ok := v.([]any); ok {
		return l, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Slice {
		return nil, false
	}
	if _, isBytes := v.([]byte); isBytes {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func sum(_ context.Context, args []any) (any, error) {
	ns, err := numbers(args)
	if err != nil {
		return nil, err
	}
	total := number{}
	for _, n := range ns {
		total = total.add(n)
	}
	return total.value(), nil
}

func mul(_ context.Context, args []any) (any, error) {
	ns, err := numbers(args)
	if err != nil {
		return nil, err
	}
	total := number{i: 1}
	for _, n := range ns {
		total = total.times(n)
	}
	return total.value(), nil
}

func unary(fn func(number) any) func(context.Context, []any) (any, error) {
	return func(_ context.Context, args []any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: want 1 argument, got %d", ErrArgs, len(args))
		}
		n, err := toNumber(args[0])
		if err != nil {
			return nil, err
		}
		return fn(n), nil
	}
}

func concat(_ context.Context, args []any) (any, error) {
	var b strings.Builder
	for _, a := range args {
		fmt.Fprint(&b, table.Unwrap(a))
	}
	return b.String(), nil
}

func identity(_ context.Context, args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: want 1 argument, got %d", ErrArgs, len(args))
	}
	return args[0], nil
}

func rangeOp(_ context.Context, args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: want 1 argument, got %d", ErrArgs, len(args))
	}
	n, err := toNumber(args[0])
	if err != nil || n.isFloat || n.i < 0 {
		return nil, fmt.Errorf("%w: range needs a non-negative integer", ErrArgs)
	}
	out := make([]int64, n.i)
	for i := range out {
		out[i] = int64(i)
	}
	return out, nil
}

func record(_ context.Context, args []any) (any, error) {
	if len(args)%2 != 0 {
		return nil, fmt.Errorf("%w: record needs name, value pairs", ErrArgs)
	}
	rec := make(map[string]any, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		name, ok := table.Unwrap(args[i]).(string)
		if !ok {
			return nil, fmt.Errorf("%w: record field name %v is not a string", ErrArgs, args[i])
		}
		rec[name] = table.Unwrap(args[i+1])
	}
	return rec, nil
}

func count(_ context.Context, args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: want 1 argument, got %d", ErrArgs, len(args))
	}
	t, err := table.Coerce(args[0])
	if err != nil {
		return nil, err
	}
	return int64(t.Len()), nil
}

func sleep(ctx context.Context, args []any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("%w: want 2 arguments, got %d", ErrArgs, len(args))
	}
	ms, err := toNumber(args[0])
	if err != nil {
		return nil, err
	}
	timer := time.NewTimer(time.Duration(ms.float() * float64(time.Millisecond)))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return args[1], nil
	}
}
