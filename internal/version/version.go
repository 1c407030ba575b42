// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package version holds the build version, set with
// -ldflags "-X github.com/staranto/gridmemo/internal/version.Version=...".
package version

// Version is the gridmemo release.
var Version = "dev"
