// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package memo rewrites task graphs so that nodes already computed by an
// earlier run are loaded from a cache location, and every other node stores
// its result there for the next run.
//
// The rewrite is a single pass: the graph is validated, ordered and
// fingerprinted, the cache location is listed once, and every call node is
// replaced by a load, a store wrapping the original call, or a reference to
// an identical earlier node. No artifact is read or written until the
// rewritten graph is executed.
package memo
