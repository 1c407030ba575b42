// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package local stores artifacts in a directory of the local filesystem.
package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/apex/log"

	"github.com/staranto/gridmemo/internal/backend"
	"github.com/staranto/gridmemo/internal/table"
)

// Scheme served by this backend.
const Scheme = backend.FileScheme

// Backend is the file:// artifact store.
type Backend struct {
	ext string
}

// Option customizes a Backend.
type Option func(*Backend)

// WithExtension overrides the artifact file suffix.
func WithExtension(ext string) Option {
	return func(b *Backend) {
		if ext != "" {
			b.ext = ext
		}
	}
}

// New returns a file:// backend.
func New(opts ...Option) *Backend {
	b := &Backend{ext: table.Extension}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Backend) Scheme() string { return Scheme }

// Extension returns the artifact file suffix.
func (b *Backend) Extension() string { return b.ext }

// Path is the file holding fp's artifact beneath loc.
func (b *Backend) Path(loc backend.Location, fp string) string {
	return filepath.Join(filepath.FromSlash(loc.Root), backend.ArtifactName(fp, b.ext))
}

// List returns the regular files directly beneath loc. A missing directory
// is an empty cache.
func (b *Backend) List(ctx context.Context, loc backend.Location) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.FromSlash(loc.Root))
	if errors.Is(err, fs.ErrNotExist) {
		log.Debugf("cache directory %s does not exist", loc.Root)
		return nil, nil
	}
	if err != nil {
		return nil, backend.Unreachable("list", loc, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Load reads and decodes fp's artifact.
func (b *Backend) Load(ctx context.Context, loc backend.Location, fp string) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := b.Path(loc, fp)
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", backend.ErrNotFound, p)
	}
	if err != nil {
		return nil, backend.Unreachable("load", loc, err)
	}

	t, err := table.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	log.Debugf("loaded %s (%d rows)", p, t.Len())
	return t, nil
}

// Store encodes t and writes it under fp, creating missing directories. The
// file is written to a temporary name and renamed into place, so concurrent
// writers of the same fingerprint leave one complete artifact.
func (b *Backend) Store(ctx context.Context, loc backend.Location, fp string, t *table.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := table.Marshal(t)
	if err != nil {
		return err
	}

	dir := filepath.FromSlash(loc.Root)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+fp+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}

	p := b.Path(loc, fp)
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	log.Debugf("stored %s (%d rows)", p, t.Len())
	return nil
}
