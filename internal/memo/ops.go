// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package memo

import (
	"context"
	"errors"
	"fmt"

	"github.com/apex/log"

	"github.com/staranto/gridmemo/internal/backend"
	"github.com/staranto/gridmemo/internal/fingerprint"
	"github.com/staranto/gridmemo/internal/table"
)

const (
	loadPrefix  = "load:"
	storePrefix = "store:"
)

// LoadOp reads the artifact of a cached node. It takes no arguments.
type LoadOp struct {
	Fingerprint fingerprint.Fingerprint
	Location    backend.Location
	Backends    *backend.Registry
}

// Name carries the fingerprint so that loads of different artifacts never
// compare equal.
func (o *LoadOp) Name() string { return loadPrefix + o.Fingerprint.String() }

func (o *LoadOp) String() string {
	return fmt.Sprintf("load(%s, %s)", o.Fingerprint.Short(), o.Location)
}

// Apply implements graph.Operation.
func (o *LoadOp) Apply(ctx context.Context, args []any) (any, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("load takes no arguments, got %d", len(args))
	}
	b, err := o.Backends.For(o.Location)
	if err != nil {
		return nil, err
	}

	t, err := b.Load(ctx, o.Location, o.Fingerprint.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", o.Fingerprint.Short(), err)
	}
	log.Debugf("loaded %s from %s", o.Fingerprint.Short(), o.Location)
	return t, nil
}

// StoreOp persists the value of its single argument and passes it on.
type StoreOp struct {
	Fingerprint fingerprint.Fingerprint
	Location    backend.Location
	Backends    *backend.Registry
}

func (o *StoreOp) Name() string { return storePrefix + o.Fingerprint.String() }

func (o *StoreOp) String() string {
	return fmt.Sprintf("store(%s, %s)", o.Fingerprint.Short(), o.Location)
}

// Apply coerces the value to a table and stores it. The value itself is
// returned unchanged. A read-only backend leaves the cache unpopulated.
func (o *StoreOp) Apply(ctx context.Context, args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("store takes one argument, got %d", len(args))
	}
	b, err := o.Backends.For(o.Location)
	if err != nil {
		return nil, err
	}

	t, err := table.Coerce(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to store %s: %w", o.Fingerprint.Short(), err)
	}

	err = b.Store(ctx, o.Location, o.Fingerprint.String(), t)
	switch {
	case errors.Is(err, backend.ErrReadOnly):
		log.WithError(err).Warnf("not caching %s", o.Fingerprint.Short())
	case err != nil:
		return nil, fmt.Errorf("failed to store %s: %w", o.Fingerprint.Short(), err)
	default:
		log.Debugf("stored %s in %s", o.Fingerprint.Short(), o.Location)
	}
	return args[0], nil
}
