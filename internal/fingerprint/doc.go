// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package fingerprint computes content-addressed identities for the nodes of
// a task graph. A node's fingerprint depends only on its operation names,
// literal values and the fingerprints of the nodes it references, so equal
// computations in different graphs share a fingerprint.
//
// Literal values are folded in through their string form. Values whose string
// forms are not injective can collide; that is a known limitation.
package fingerprint
