// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package table holds the tabular artifacts persisted by cache backends:
// typed columns, coercion of arbitrary values into that shape, and the YAML
// encoding written under each fingerprint.
package table
