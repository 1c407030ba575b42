// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// gridmemo is the main package for the gridmemo command line tool. It wires
// the CLI, expands argument presets from the config file, and serves as the
// entry point.
package main
