// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package backend defines the artifact store abstraction behind a cache
// location: the Backend interface, location parsing and the scheme registry.
// Concrete stores live in the local, dirac and s3 subpackages.
package backend
