// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/gridmemo/internal/backend"
	"github.com/staranto/gridmemo/internal/cacheutil"
	"github.com/staranto/gridmemo/internal/memo"
	"github.com/staranto/gridmemo/internal/meta"
	"github.com/staranto/gridmemo/internal/output"
	"github.com/staranto/gridmemo/internal/table"
)

var errLocalOnly = errors.New("only file:// caches can be purged")

// CacheLsCommandAction lists the artifacts of a cache. Local caches also
// report size and age.
func CacheLsCommandAction(ctx context.Context, cmd *cli.Command) error {
	loc, err := CacheLocation(cmd)
	if err != nil {
		return err
	}

	if loc.Scheme == backend.FileScheme {
		entries, err := cacheutil.Entries(loc.Root, Extension())
		if err != nil {
			return err
		}
		rows := make([][]any, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []any{
				e.Fingerprint,
				humanize.Bytes(uint64(e.Size)),
				e.Size,
				humanize.Time(e.ModTime),
			})
		}
		t, err := table.New([]table.Column{
			{Name: "fingerprint", Kind: table.String},
			{Name: "size", Kind: table.String},
			{Name: "bytes", Kind: table.Int},
			{Name: "modified", Kind: table.String},
		}, rows)
		if err != nil {
			return err
		}
		return Emit(cmd, t)
	}

	index, err := memo.ListFingerprints(ctx, loc, NewBackends(cmd))
	if err != nil {
		return err
	}
	rows := make([][]any, 0, len(index))
	for fp := range index {
		rows = append(rows, []any{fp.String()})
	}
	t, err := table.New([]table.Column{{Name: "fingerprint", Kind: table.String}}, rows)
	if err != nil {
		return err
	}
	if err := output.SortRows(t, "fingerprint"); err != nil {
		return err
	}
	return Emit(cmd, t)
}

// CacheShowCommandAction emits one artifact.
func CacheShowCommandAction(ctx context.Context, cmd *cli.Command) error {
	loc, err := CacheLocation(cmd)
	if err != nil {
		return err
	}
	b, err := NewBackends(cmd).For(loc)
	if err != nil {
		return err
	}
	t, err := b.Load(ctx, loc, cmd.Args().First())
	if err != nil {
		return err
	}
	return Emit(cmd, t)
}

// CachePurgeCommandAction removes local artifacts older than --hours.
func CachePurgeCommandAction(ctx context.Context, cmd *cli.Command) error {
	loc, err := CacheLocation(cmd)
	if err != nil {
		return err
	}
	if loc.Scheme != backend.FileScheme {
		return fmt.Errorf("%w: %s", errLocalOnly, loc)
	}
	n, err := cacheutil.Purge(loc.Root, Extension(), cmd.Int("hours"))
	if err != nil {
		return err
	}
	log.Debugf("purged %d artifacts from %s", n, loc)
	fmt.Fprintf(stdout(cmd), "removed %d %s\n", n, plural(n, "artifact"))
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// CacheCommandBuilder constructs the cli.Command for "cache" and its
// subcommands.
func CacheCommandBuilder(meta meta.Meta) *cli.Command {
	ls := (&CommandBuilder{
		Name:      "ls",
		Usage:     "list cached artifacts",
		UsageText: "gridmemo cache ls [--cache LOCATION] [options]",
		Flags:     append([]cli.Flag{NewCacheFlag("cache")}, NewDiracFlags()...),
		Emits:     true,
		Meta:      meta,
		Action:    CacheLsCommandAction,
	}).Build()

	show := (&CommandBuilder{
		Name:      "show",
		Usage:     "show one cached artifact",
		UsageText: "gridmemo cache show FINGERPRINT [--cache LOCATION] [options]",
		Flags:     append([]cli.Flag{NewCacheFlag("cache")}, NewDiracFlags()...),
		Emits:     true,
		Meta:      meta,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := ArgsValidator(cmd, 1, 1, "gridmemo cache show FINGERPRINT"); err != nil {
				return err
			}
			return CacheShowCommandAction(ctx, cmd)
		},
	}).Build()

	purge := (&CommandBuilder{
		Name:      "purge",
		Usage:     "remove local artifacts older than --hours",
		UsageText: "gridmemo cache purge --hours N [--cache LOCATION]",
		Flags: []cli.Flag{
			NewCacheFlag("cache"),
			&cli.IntFlag{
				Name:     "hours",
				Usage:    "minimum age in hours of removed artifacts",
				Required: true,
			},
		},
		Meta:   meta,
		Action: CachePurgeCommandAction,
	}).Build()

	return (&CommandBuilder{
		Name:     "cache",
		Usage:    "inspect and maintain a cache",
		Meta:     meta,
		Commands: []*cli.Command{ls, show, purge},
	}).Build()
}
