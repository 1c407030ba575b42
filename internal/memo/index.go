// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package memo

import (
	"context"

	"github.com/apex/log"

	"github.com/staranto/gridmemo/internal/backend"
	"github.com/staranto/gridmemo/internal/fingerprint"
)

// Index is the set of fingerprints present at a cache location.
type Index map[fingerprint.Fingerprint]struct{}

// Has reports whether fp is cached.
func (ix Index) Has(fp fingerprint.Fingerprint) bool {
	_, ok := ix[fp]
	return ok
}

// ListFingerprints lists the artifacts directly beneath loc. Entries that do
// not carry the backend's artifact extension are ignored.
func ListFingerprints(ctx context.Context, loc backend.Location, reg *backend.Registry) (Index, error) {
	b, err := reg.For(loc)
	if err != nil {
		return nil, err
	}

	entries, err := b.List(ctx, loc)
	if err != nil {
		return nil, err
	}

	ix := make(Index, len(entries))
	for _, e := range entries {
		if fp, ok := backend.FingerprintOf(e, b.Extension()); ok {
			ix[fingerprint.Fingerprint(fp)] = struct{}{}
		}
	}
	log.Debugf("%s holds %d artifacts", loc, len(ix))
	return ix, nil
}
