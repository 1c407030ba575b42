// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/gridmemo/internal/fingerprint"
	"github.com/staranto/gridmemo/internal/meta"
	"github.com/staranto/gridmemo/internal/table"
)

// HashCommandAction prints the fingerprint of every node of a graph.
func HashCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	g, err := LoadGraph(cmd, 0)
	if err != nil {
		return err
	}
	res, err := fingerprint.Graph(g)
	if err != nil {
		return err
	}

	long := cmd.Bool("long")
	rows := make([][]any, 0, g.Len())
	for _, k := range g.Keys() {
		fp := res.Fingerprints[k]
		shown := fp.String()
		if !long {
			shown = fp.Short()
		}
		var of any
		if first, ok := res.Duplicates[k]; ok {
			of = string(first)
		}
		rows = append(rows, []any{string(k), shown, of})
	}

	t, err := table.New([]table.Column{
		{Name: "key", Kind: table.String},
		{Name: "fingerprint", Kind: table.String},
		{Name: "duplicate_of", Kind: table.String},
	}, rows)
	if err != nil {
		return err
	}
	return Emit(cmd, t)
}

func longFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:    "long",
		Aliases: []string{"l"},
		Usage:   "show full fingerprints",
	}
}

// HashCommandBuilder constructs the cli.Command for "hash".
func HashCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "hash",
		Usage:     "fingerprint every node of a graph",
		UsageText: "gridmemo hash GRAPH [options]",
		Flags:     []cli.Flag{longFlag()},
		Emits:     true,
		Meta:      meta,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := ArgsValidator(cmd, 1, 1, "gridmemo hash GRAPH"); err != nil {
				return err
			}
			return HashCommandAction(ctx, cmd)
		},
	}).Build()
}
