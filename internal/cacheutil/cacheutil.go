// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/apex/log"

	"github.com/staranto/gridmemo/internal/backend"
)

const (
	// EnvDir overrides the default cache directory.
	EnvDir = "GRIDMEMO_CACHE_DIR"
	// EnvEnabled disables caching in run when "0" or "false".
	EnvEnabled = "GRIDMEMO_CACHE"
)

// Entry represents an artifact on disk.
type Entry struct {
	Fingerprint string
	Path        string
	Size        int64
	ModTime     time.Time
}

// Dir resolves the base cache directory.
// Precedence:
//  1. GRIDMEMO_CACHE_DIR, if set and non-empty
//  2. os.UserCacheDir()/gridmemo
//
// Returns ("", false) if a base cannot be resolved (treat as disabled).
func Dir() (string, bool) {
	if c, ok := os.LookupEnv(EnvDir); ok && c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "gridmemo"), true
	}
	return "", false
}

// Enabled returns true unless GRIDMEMO_CACHE explicitly disables it ("0"/"false").
func Enabled() bool {
	enabled, _ := os.LookupEnv(EnvEnabled)
	return enabled == "" || (enabled != "0" && enabled != "false")
}

// EnsureBaseDir creates the base cache directory if caching is enabled and
// a base path can be resolved. Returns the path, whether it is usable, and an
// error if creation failed.
func EnsureBaseDir() (string, bool, error) {
	if !Enabled() {
		return "", false, nil
	}
	base, ok := Dir()
	if !ok {
		return "", false, nil
	}
	if err := os.MkdirAll(base, 0o755); err != nil { //nolint:mnd
		return base, false, fmt.Errorf("failed to create cache base directory: %w", err)
	}
	return base, true, nil
}

// DefaultLocation is the file:// location of the base cache directory.
func DefaultLocation() (backend.Location, bool) {
	base, ok := Dir()
	if !ok {
		return backend.Location{}, false
	}
	return backend.Location{Scheme: backend.FileScheme, Root: base}, true
}

// Entries lists the artifacts carrying ext directly beneath dir, oldest
// first. A missing dir holds no entries.
func Entries(dir, ext string) ([]Entry, error) {
	des, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var out []Entry
	for _, de := range des {
		if de.IsDir() {
			continue
		}
		fp, ok := backend.FingerprintOf(de.Name(), ext)
		if !ok {
			continue
		}
		info, err := de.Info()
		if err != nil {
			log.WithError(err).Warnf("skipping cache file %s", de.Name())
			continue
		}
		out = append(out, Entry{
			Fingerprint: fp,
			Path:        filepath.Join(dir, de.Name()),
			Size:        info.Size(),
			ModTime:     info.ModTime(),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ModTime.Equal(out[j].ModTime) {
			return out[i].Fingerprint < out[j].Fingerprint
		}
		return out[i].ModTime.Before(out[j].ModTime)
	})
	return out, nil
}

// Purge removes artifacts carrying ext beneath dir that are older than the
// provided number of hours. If hours <= 0 it is a no-op. It returns the number
// of files removed.
func Purge(dir, ext string, hours int) (int, error) {
	if hours <= 0 {
		log.Debug("cache cleaning disabled")
		return 0, nil
	}
	entries, err := Entries(dir, ext)
	if err != nil {
		return 0, fmt.Errorf("failed to purge cache: %w", err)
	}

	maxAge := time.Duration(hours) * time.Hour
	removed := 0
	for _, e := range entries {
		if time.Since(e.ModTime) <= maxAge {
			continue
		}
		if err := os.Remove(e.Path); err != nil {
			log.WithError(err).Warnf("failed to remove cache file %s", e.Path)
			continue
		}
		log.Debugf("removed cache file %s", e.Path)
		removed++
	}
	return removed, nil
}
