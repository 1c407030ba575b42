// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package dirac reads artifacts from a DIRAC file catalog. Listing goes
// through the catalog's directory dump, content through the storage element.
// The backend does not store.
package dirac

import (
	"context"
	"fmt"
	"path"
	"sort"
	"sync"

	"github.com/apex/log"

	"github.com/staranto/gridmemo/internal/backend"
	diracx "github.com/staranto/gridmemo/internal/dirac"
	"github.com/staranto/gridmemo/internal/table"
)

// Scheme served by this backend.
const Scheme = "dirac"

// Catalog is the part of the DIRAC client the backend needs.
type Catalog interface {
	DirectoryDump(ctx context.Context, lfn string) (diracx.Result, error)
	Download(ctx context.Context, lfn string) ([]byte, error)
}

// Connector returns the catalog on first use.
type Connector func() (Catalog, error)

// Static is a Connector for an already built catalog.
func Static(c Catalog) Connector {
	return func() (Catalog, error) { return c, nil }
}

// Backend is the dirac:// artifact store.
type Backend struct {
	ext     string
	connect Connector

	once    sync.Once
	catalog Catalog
	err     error
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

// New returns a dirac:// backend. connect runs once, on the first call that
// needs the catalog.
func New(connect Connector, opts ...Option) *Backend {
	b := &Backend{ext: table.Extension, connect: connect}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Backend) Scheme() string { return Scheme }

// Extension returns the artifact suffix.
func (b *Backend) Extension() string { return b.ext }

func (b *Backend) client(loc backend.Location) (Catalog, error) {
	b.once.Do(func() {
		b.catalog, b.err = b.connect()
	})
	if b.err != nil {
		return nil, backend.Unreachable("connect", loc, b.err)
	}
	return b.catalog, nil
}

func lfnRoot(loc backend.Location) string {
	return path.Clean("/" + loc.Root)
}

// List returns the files in the catalog directory loc. A directory the
// catalog reports as missing is an empty cache.
func (b *Backend) List(ctx context.Context, loc backend.Location) ([]string, error) {
	c, err := b.client(loc)
	if err != nil {
		return nil, err
	}

	dir := lfnRoot(loc)
	res, err := c.DirectoryDump(ctx, dir)
	if err != nil {
		return nil, backend.Unreachable("list", loc, err)
	}

	for d, msg := range diracx.DirectoryFailures(res) {
		if diracx.IsNotExist(msg) {
			log.Debugf("catalog directory %s does not exist", d)
			continue
		}
		return nil, backend.Unreachable("list", loc, fmt.Errorf("%s: %s", d, msg))
	}

	files := diracx.DirectorySuccessFiles(res)
	sort.Strings(files)
	return files, nil
}

// Load downloads and decodes fp's artifact.
func (b *Backend) Load(ctx context.Context, loc backend.Location, fp string) (*table.Table, error) {
	c, err := b.client(loc)
	if err != nil {
		return nil, err
	}

	lfn := path.Join(lfnRoot(loc), backend.ArtifactName(fp, b.ext))
	data, err := c.Download(ctx, lfn)
	if err != nil {
		return nil, backend.Unreachable("load", loc, err)
	}

	t, err := table.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", lfn, err)
	}
	log.Debugf("loaded %s (%d rows)", lfn, t.Len())
	return t, nil
}

// Store always fails with backend.ErrReadOnly.
func (b *Backend) Store(_ context.Context, loc backend.Location, fp string, _ *table.Table) error {
	return fmt.Errorf("%w: cannot store %s in %s", backend.ErrReadOnly, fp, loc)
}
