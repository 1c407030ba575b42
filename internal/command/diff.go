// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"

	"github.com/staranto/gridmemo/internal/fingerprint"
	"github.com/staranto/gridmemo/internal/graph"
	"github.com/staranto/gridmemo/internal/meta"
	"github.com/staranto/gridmemo/internal/output"
)

// fingerprintDocument maps each node key of the graph argument n to its
// fingerprint.
func fingerprintDocument(cmd *cli.Command, n int) ([]byte, error) {
	g, err := LoadGraph(cmd, n)
	if err != nil {
		return nil, err
	}
	res, err := fingerprint.Graph(g)
	if err != nil {
		return nil, err
	}
	doc := make(map[graph.Key]string, len(res.Fingerprints))
	for k, fp := range res.Fingerprints {
		doc[k] = fp.String()
	}
	return json.Marshal(doc)
}

// DiffCommandAction reports the nodes whose fingerprints differ between two
// graphs, which are exactly the nodes whose cached results cannot be shared.
func DiffCommandAction(ctx context.Context, cmd *cli.Command) error {
	left, err := fingerprintDocument(cmd, 0)
	if err != nil {
		return err
	}
	right, err := fingerprintDocument(cmd, 1)
	if err != nil {
		return err
	}

	d, err := gojsondiff.New().Compare(left, right)
	if err != nil {
		return fmt.Errorf("failed to compare: %w", err)
	}

	w := stdout(cmd)
	if !d.Modified() {
		fmt.Fprintln(w, "no differences")
		return nil
	}

	var leftDoc map[string]interface{}
	if err := json.Unmarshal(left, &leftDoc); err != nil {
		return err
	}

	var text string
	if cmd.String("format") == "delta" {
		text, err = formatter.NewDeltaFormatter().Format(d)
	} else {
		text, err = formatter.NewAsciiFormatter(leftDoc, formatter.AsciiFormatterConfig{
			Coloring: cmd.Bool("color") && output.IsTerminal(w),
		}).Format(d)
	}
	if err != nil {
		return fmt.Errorf("failed to format diff: %w", err)
	}
	fmt.Fprint(w, text)
	return nil
}

// DiffCommandBuilder constructs the cli.Command for "diff".
func DiffCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "diff",
		Usage:     "compare the fingerprints of two graphs",
		UsageText: "gridmemo diff GRAPH GRAPH [options]",
		Flags: []cli.Flag{
			&cli.BoolWithInverseFlag{
				Name:    "color",
				Aliases: []string{"c"},
				Usage:   "enable colored diff output",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "ascii or delta",
				Value: "ascii",
				Validator: func(value string) error {
					if value != "ascii" && value != "delta" {
						return fmt.Errorf("must be one of [ascii delta]")
					}
					return nil
				},
			},
		},
		Meta: meta,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := ArgsValidator(cmd, 2, 2, "gridmemo diff GRAPH GRAPH"); err != nil {
				return err
			}
			return DiffCommandAction(ctx, cmd)
		},
	}).Build()
}
