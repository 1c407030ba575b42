// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/apex/log"

	"github.com/staranto/gridmemo/internal/table"
)

var (
	// ErrUnsupportedScheme is returned for a location whose scheme has no
	// registered backend.
	ErrUnsupportedScheme = errors.New("unsupported scheme")
	// ErrBackendUnreachable wraps listing and I/O failures of a backend.
	ErrBackendUnreachable = errors.New("backend unreachable")
	// ErrArtifactCorrupt is returned when an artifact exists but cannot be
	// decoded.
	ErrArtifactCorrupt = table.ErrCorrupt
	// ErrNotFound is returned when loading an artifact that does not exist.
	ErrNotFound = errors.New("artifact not found")
	// ErrReadOnly is returned by backends that cannot store artifacts.
	ErrReadOnly = errors.New("backend is read-only")
)

// SchemeError names the scheme that has no backend.
type SchemeError struct {
	Scheme string
}

func (e *SchemeError) Error() string {
	return fmt.Sprintf("%s %q", ErrUnsupportedScheme, e.Scheme)
}

func (e *SchemeError) Unwrap() error { return ErrUnsupportedScheme }

// Backend persists and retrieves tabular artifacts by fingerprint beneath a
// Location.
type Backend interface {
	// Scheme is the location scheme served by the backend, e.g. "file".
	Scheme() string
	// Extension is the suffix carried by every artifact name.
	Extension() string
	// List returns the entry names found directly beneath loc.
	List(ctx context.Context, loc Location) ([]string, error)
	// Load reads the artifact stored under fp.
	Load(ctx context.Context, loc Location, fp string) (*table.Table, error)
	// Store writes t under fp, replacing any existing artifact.
	Store(ctx context.Context, loc Location, fp string, t *table.Table) error
}

// Unreachable wraps err as ErrBackendUnreachable.
func Unreachable(op string, loc Location, err error) error {
	return fmt.Errorf("%w: %s %s: %v", ErrBackendUnreachable, op, loc, err)
}

// Registry maps location schemes to backends. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]Backend
}

// NewRegistry returns a registry holding backends.
func NewRegistry(backends ...Backend) *Registry {
	r := &Registry{backends: map[string]Backend{}}
	for _, b := range backends {
		r.Register(b)
	}
	return r
}

// Register adds b, replacing any backend already serving its scheme.
func (r *Registry) Register(b Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	scheme := strings.ToLower(b.Scheme())
	log.Debugf("registering %s:// backend", scheme)
	r.backends[scheme] = b
}

// Lookup returns the backend for scheme. An unknown scheme fails with a
// *SchemeError.
func (r *Registry) Lookup(scheme string) (Backend, error) {
	if r == nil {
		return nil, &SchemeError{Scheme: scheme}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.backends[strings.ToLower(scheme)]
	if !ok {
		return nil, &SchemeError{Scheme: scheme}
	}
	return b, nil
}

// For returns the backend serving loc.
func (r *Registry) For(loc Location) (Backend, error) {
	return r.Lookup(loc.Scheme)
}

// Schemes lists the registered schemes in sorted order.
func (r *Registry) Schemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.backends))
	for s := range r.backends {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// ArtifactName is the entry name of fp's artifact.
func ArtifactName(fp, ext string) string {
	return fp + ext
}

// FingerprintOf strips the directory and ext from an entry name. It reports
// false for entries that do not carry ext.
func FingerprintOf(entry, ext string) (string, bool) {
	base := path.Base(strings.ReplaceAll(entry, "\\", "/"))
	if !strings.HasSuffix(base, ext) {
		return "", false
	}
	fp := strings.TrimSuffix(base, ext)
	if fp == "" {
		return "", false
	}
	return fp, true
}
