// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
)

// Key identifies a node within a single graph.
type Key string

func (k Key) String() string { return string(k) }

// Spec is a task specification. It is implemented by exactly Literal, Call
// and Ref.
type Spec interface {
	isSpec()
}

// Literal is an inert value. It is never decomposed further.
type Literal struct {
	Value any
}

// Call applies Op to its arguments. Each argument is itself a Spec: a Ref to
// another node, a nested Call, or a Literal.
type Call struct {
	Op   Operation
	Args []Spec
}

// Ref is a dependency on another node of the same graph.
type Ref struct {
	Key Key
}

func (Literal) isSpec() {}
func (*Call) isSpec()   {}
func (Ref) isSpec()     {}

// Operation is the computation a Call applies to its evaluated arguments.
type Operation interface {
	Apply(ctx context.Context, args []any) (any, error)
}

// Named is implemented by operations that declare a stable name.
type Named interface {
	Name() string
}

// Func adapts a plain function to Operation. Its identity is the runtime
// name of the function.
type Func func(ctx context.Context, args []any) (any, error)

// Apply implements Operation.
func (f Func) Apply(ctx context.Context, args []any) (any, error) {
	return f(ctx, args)
}

// NewCall is a convenience constructor for Call.
func NewCall(op Operation, args ...Spec) *Call {
	return &Call{Op: op, Args: args}
}

// Lit wraps v as a Literal.
func Lit(v any) Literal { return Literal{Value: v} }

// RefTo returns a Ref to k.
func RefTo(k Key) Ref { return Ref{Key: k} }

// OpName resolves the stable identity of an operation: its declared name if
// it has one, the runtime function name for function values, and the Go type
// otherwise.
func OpName(op any) string {
	if op == nil {
		return "<nil>"
	}
	if n, ok := op.(Named); ok {
		return n.Name()
	}

	v := reflect.ValueOf(op)
	if v.Kind() == reflect.Func && !v.IsNil() {
		if fn := runtime.FuncForPC(v.Pointer()); fn != nil {
			return fn.Name()
		}
	}

	return fmt.Sprintf("%T", op)
}

// Refs returns the keys referenced by s, including those inside nested calls,
// in argument order.
func Refs(s Spec) []Key {
	var keys []Key
	var walk func(Spec)
	walk = func(s Spec) {
		switch v := s.(type) {
		case Ref:
			keys = append(keys, v.Key)
		case *Call:
			for _, a := range v.Args {
				walk(a)
			}
		}
	}
	walk(s)
	return keys
}
