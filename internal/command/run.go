// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/gridmemo/internal/cacheutil"
	"github.com/staranto/gridmemo/internal/engine"
	"github.com/staranto/gridmemo/internal/graph"
	"github.com/staranto/gridmemo/internal/memo"
	"github.com/staranto/gridmemo/internal/meta"
	"github.com/staranto/gridmemo/internal/output"
	"github.com/staranto/gridmemo/internal/table"
)

// RunCommandAction evaluates a graph, loading and storing results through the
// cache unless caching is disabled.
func RunCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	g, err := LoadGraph(cmd, 0)
	if err != nil {
		return err
	}

	node := graph.Key(cmd.String("node"))
	if node != "" && !g.Has(node) {
		return fmt.Errorf("no node %q in graph", node)
	}

	target := g
	if cacheutil.Enabled() && !cmd.Bool("no-cache") {
		loc, err := CacheLocation(cmd)
		if err != nil {
			return err
		}
		r := &memo.Rewriter{Backends: NewBackends(cmd)}
		p, err := r.Plan(ctx, g, loc)
		if err != nil {
			return err
		}
		log.Infof("%s: load %d, store %d, duplicate %d",
			loc, p.Count(memo.Load), p.Count(memo.Store), p.Count(memo.Duplicate))
		target = p.Graph
	} else {
		log.Debug("caching disabled")
	}

	start := time.Now()
	results, err := engine.Run(ctx, target, engine.Options{Concurrency: cmd.Int("concurrency")})
	if err != nil {
		return err
	}
	log.Infof("evaluated %d nodes in %s", target.Len(), time.Since(start))

	if node != "" {
		t, err := table.Coerce(results[node])
		if err != nil {
			return err
		}
		return Emit(cmd, t)
	}

	rows := make([][]any, 0, g.Len())
	for _, k := range g.Keys() {
		rows = append(rows, []any{string(k), summarize(results[k])})
	}
	t, err := table.New([]table.Column{
		{Name: "key", Kind: table.String},
		{Name: "value", Kind: table.String},
	}, rows)
	if err != nil {
		return err
	}
	return Emit(cmd, t)
}

// summarize renders a node result on one line. Tables that do not unwrap to
// a value are shown by their shape.
func summarize(v any) string {
	u := table.Unwrap(v)
	if t, ok := u.(*table.Table); ok {
		return fmt.Sprintf("<%s x %s>",
			humanize.Comma(int64(t.Len())), humanize.Comma(int64(len(t.Columns))))
	}
	if list, ok := u.([]any); ok {
		parts := make([]string, len(list))
		for i, e := range list {
			parts[i] = output.CellString(e, "-")
		}
		return fmt.Sprintf("%v", parts)
	}
	return output.CellString(u, "-")
}

// RunCommandBuilder constructs the cli.Command for "run".
func RunCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "run",
		Usage:     "evaluate a graph through the cache",
		UsageText: "gridmemo run GRAPH [--cache LOCATION] [--node KEY] [options]",
		Flags: append([]cli.Flag{
			NewCacheFlag("run"),
			NewConcurrencyFlag("run"),
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "evaluate without loading or storing artifacts",
			},
			&cli.StringFlag{
				Name:    "node",
				Aliases: []string{"n"},
				Usage:   "emit the full result of one node",
			},
		}, NewDiracFlags()...),
		Emits: true,
		Meta:  meta,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := ArgsValidator(cmd, 1, 1, "gridmemo run GRAPH"); err != nil {
				return err
			}
			return RunCommandAction(ctx, cmd)
		},
	}).Build()
}
