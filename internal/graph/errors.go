// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedGraph = errors.New("malformed graph")
	ErrCyclicGraph    = errors.New("cyclic graph")
)

// GraphError wraps graph validation failures so callers can match the kind
// with errors.Is.
type GraphError struct {
	Kind error
	Msg  string
}

func (e *GraphError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *GraphError) Unwrap() error { return e.Kind }

func malformedf(format string, args ...any) error {
	return &GraphError{Kind: ErrMalformedGraph, Msg: fmt.Sprintf(format, args...)}
}

func cycleError(path []Key) error {
	msg := "cycle"
	if len(path) > 0 {
		parts := make([]string, 0, len(path))
		for _, k := range path {
			parts = append(parts, string(k))
		}
		msg = "cycle: " + strings.Join(parts, " -> ")
	}
	return &GraphError{Kind: ErrCyclicGraph, Msg: msg}
}

// Malformed builds an ErrMalformedGraph error for representations that are
// decoded outside this package.
func Malformed(format string, args ...any) error {
	return malformedf(format, args...)
}
