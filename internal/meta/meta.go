// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package meta

import (
	"context"

	"github.com/staranto/gridmemo/internal/config"
)

// CacheSpec is the cache location used when a command is not given one.
type CacheSpec struct {
	DefaultCache string
}

// Meta are the meta-options that are available on all or most commands.
type Meta struct {
	Args    []string
	Config  config.Type
	Context context.Context
	CacheSpec
	StartingDir string
}
