// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package graph models task graphs as a tagged variant (Literal, Call, Ref)
// keyed by node name, normalizes external representations into that model,
// and produces deterministic topological orders.
package graph
