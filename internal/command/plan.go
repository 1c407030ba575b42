// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"os"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/gridmemo/internal/inspect"
	"github.com/staranto/gridmemo/internal/memo"
	"github.com/staranto/gridmemo/internal/meta"
	"github.com/staranto/gridmemo/internal/output"
	"github.com/staranto/gridmemo/internal/table"
)

// plan loads the graph argument and plans its rewrite against --cache.
func plan(ctx context.Context, cmd *cli.Command) (*memo.Plan, error) {
	g, err := LoadGraph(cmd, 0)
	if err != nil {
		return nil, err
	}
	loc, err := CacheLocation(cmd)
	if err != nil {
		return nil, err
	}
	log.Debugf("cache location: %s", loc)

	r := &memo.Rewriter{Backends: NewBackends(cmd)}
	return r.Plan(ctx, g, loc)
}

// PlanCommandAction shows what a rewrite would do with every node.
func PlanCommandAction(ctx context.Context, cmd *cli.Command) error {
	p, err := plan(ctx, cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("interactive") {
		if !output.IsTerminal(os.Stdout) {
			return errors.New("--interactive needs a terminal")
		}
		return inspect.Run(ctx, p, os.Stdin, os.Stdout)
	}

	long := cmd.Bool("long")
	rows := make([][]any, 0, len(p.Steps))
	for _, s := range p.Steps {
		fp := s.Fingerprint.String()
		if !long {
			fp = s.Fingerprint.Short()
		}
		var of any
		if s.Of != "" {
			of = string(s.Of)
		}
		rows = append(rows, []any{string(s.Key), string(s.Action), fp, of})
	}

	t, err := table.New([]table.Column{
		{Name: "key", Kind: table.String},
		{Name: "action", Kind: table.String},
		{Name: "fingerprint", Kind: table.String},
		{Name: "of", Kind: table.String},
	}, rows)
	if err != nil {
		return err
	}
	return Emit(cmd, t)
}

// RewriteCommandAction prints the cache-aware graph.
func RewriteCommandAction(ctx context.Context, cmd *cli.Command) error {
	p, err := plan(ctx, cmd)
	if err != nil {
		return err
	}

	rows := make([][]any, 0, p.Graph.Len())
	for _, k := range p.Graph.Keys() {
		spec, _ := p.Graph.Get(k)
		rows = append(rows, []any{string(k), describe(spec)})
	}

	t, err := table.New([]table.Column{
		{Name: "key", Kind: table.String},
		{Name: "spec", Kind: table.String},
	}, rows)
	if err != nil {
		return err
	}
	return Emit(cmd, t)
}

// PlanCommandBuilder constructs the cli.Command for "plan".
func PlanCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "plan",
		Usage:     "show which nodes load, store or reuse a cached result",
		UsageText: "gridmemo plan GRAPH [--cache LOCATION] [options]",
		Flags: append([]cli.Flag{
			NewCacheFlag("plan"),
			longFlag(),
			&cli.BoolFlag{
				Name:    "interactive",
				Aliases: []string{"i"},
				Usage:   "browse the plan in the terminal",
			},
		}, NewDiracFlags()...),
		Emits: true,
		Meta:  meta,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := ArgsValidator(cmd, 1, 1, "gridmemo plan GRAPH"); err != nil {
				return err
			}
			return PlanCommandAction(ctx, cmd)
		},
	}).Build()
}

// RewriteCommandBuilder constructs the cli.Command for "rewrite".
func RewriteCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "rewrite",
		Usage:     "print the cache-aware rewrite of a graph",
		UsageText: "gridmemo rewrite GRAPH [--cache LOCATION] [options]",
		Flags:     append([]cli.Flag{NewCacheFlag("rewrite")}, NewDiracFlags()...),
		Emits:     true,
		Meta:      meta,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := ArgsValidator(cmd, 1, 1, "gridmemo rewrite GRAPH"); err != nil {
				return err
			}
			return RewriteCommandAction(ctx, cmd)
		},
	}).Build()
}

