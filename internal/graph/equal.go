// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package graph

import "reflect"

// Equal reports whether a and b describe the same computation: the same
// variant, operations with the same identity, and pairwise equal arguments.
// Literals compare by deep value equality.
func Equal(a, b Spec) bool {
	switch x := a.(type) {
	case Literal:
		y, ok := b.(Literal)
		return ok && reflect.DeepEqual(x.Value, y.Value)
	case Ref:
		y, ok := b.(Ref)
		return ok && x.Key == y.Key
	case *Call:
		y, ok := b.(*Call)
		if !ok {
			return false
		}
		if x == y {
			return true
		}
		if x == nil || y == nil {
			return false
		}
		if OpName(x.Op) != OpName(y.Op) || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
