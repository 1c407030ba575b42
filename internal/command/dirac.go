// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/gridmemo/internal/dirac"
	"github.com/staranto/gridmemo/internal/meta"
	"github.com/staranto/gridmemo/internal/output"
	"github.com/staranto/gridmemo/internal/table"
)

// emitResult emits the Value of a DIRAC reply. Raw output is the reply's
// JSON.
func emitResult(cmd *cli.Command, r dirac.Result) error {
	if cmd.String("output") == output.Raw {
		fmt.Fprintln(stdout(cmd), r.Value().Raw)
		return nil
	}
	t, err := table.Coerce(r.Value().Value())
	if err != nil {
		return err
	}
	return Emit(cmd, t)
}

// diracAction wraps fn with client construction and argument checking.
func diracAction(nargs int, usage string, fn func(context.Context, *cli.Command, *dirac.Client) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if err := ArgsValidator(cmd, nargs, nargs, usage); err != nil {
			return err
		}
		client, err := NewDiracClient(cmd)
		if err != nil {
			return err
		}
		return fn(ctx, cmd, client)
	}
}

// lfnAction runs a catalog method that takes a single LFN.
func lfnAction(usage string, call func(*dirac.Client, context.Context, string) (dirac.Result, error)) cli.ActionFunc {
	return diracAction(1, usage, func(ctx context.Context, cmd *cli.Command, c *dirac.Client) error {
		r, err := call(c, ctx, cmd.Args().First())
		if err != nil {
			return err
		}
		return emitResult(cmd, r)
	})
}

// jobSpec collects the worker job flags.
func jobSpec(cmd *cli.Command) dirac.JobSpec {
	return dirac.JobSpec{
		Name:             cmd.String("name"),
		Container:        cmd.String("container"),
		SchedulerAddress: cmd.String("scheduler"),
		SchedulerPort:    cmd.Int("scheduler-port"),
		OwnerGroup:       cmd.String("owner-group"),
		Site:             cmd.String("site"),
		ExtraArgs:        cmd.String("extra-args"),
	}
}

// jdl reads --jdl or renders one from the job flags.
func jdl(cmd *cli.Command) (string, error) {
	if path := cmd.String("jdl"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read JDL: %w", err)
		}
		return string(b), nil
	}
	return dirac.RenderJDL(jobSpec(cmd))
}

func jobFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "jdl", Usage: "submit this JDL file instead of rendering one"},
		&cli.StringFlag{Name: "name", Usage: "job name", Value: "dask_worker"},
		&cli.StringFlag{Name: "container", Usage: "worker container image", Value: dirac.DefaultContainer},
		&cli.StringFlag{Name: "scheduler", Usage: "scheduler address the worker connects to"},
		&cli.IntFlag{Name: "scheduler-port", Usage: "scheduler port", Value: dirac.DefaultSchedulerPort},
		&cli.StringFlag{Name: "owner-group", Usage: "DIRAC owner group", Value: dirac.DefaultOwnerGroup},
		&cli.StringFlag{Name: "site", Usage: "pin the job to one grid site"},
		&cli.StringFlag{Name: "extra-args", Usage: "extra worker arguments"},
	}
}

// DiracDumpCommandAction lists the files of a catalog directory.
func DiracDumpCommandAction(ctx context.Context, cmd *cli.Command, c *dirac.Client) error {
	r, err := c.DirectoryDump(ctx, cmd.Args().First())
	if err != nil {
		return err
	}
	if cmd.String("output") == output.Raw {
		return emitResult(cmd, r)
	}

	for dir, msg := range dirac.DirectoryFailures(r) {
		log.Warnf("%s: %s", dir, msg)
	}

	files := dirac.DirectorySuccessFiles(r)
	sort.Strings(files)
	rows := make([][]any, len(files))
	for i, f := range files {
		rows[i] = []any{f}
	}
	t, err := table.New([]table.Column{{Name: "file", Kind: table.String}}, rows)
	if err != nil {
		return err
	}
	return Emit(cmd, t)
}

// DiracCommandBuilder constructs the cli.Command for "dirac" and its
// subcommands.
func DiracCommandBuilder(meta meta.Meta) *cli.Command {
	sub := func(name, usage, usageText string, flags []cli.Flag, action cli.ActionFunc) *cli.Command {
		return (&CommandBuilder{
			Name:      name,
			Usage:     usage,
			UsageText: usageText,
			Flags:     append(flags, NewDiracFlags()...),
			Emits:     true,
			Meta:      meta,
			Action:    action,
		}).Build()
	}

	commands := []*cli.Command{
		sub("whoami", "show the identity of the user proxy", "gridmemo dirac whoami",
			nil, diracAction(0, "gridmemo dirac whoami", func(ctx context.Context, cmd *cli.Command, c *dirac.Client) error {
				r, err := c.WhoAmI(ctx)
				if err != nil {
					return err
				}
				return emitResult(cmd, r)
			})),
		sub("submit", "submit a worker job", "gridmemo dirac submit --scheduler HOST [options]",
			jobFlags(), diracAction(0, "gridmemo dirac submit", func(ctx context.Context, cmd *cli.Command, c *dirac.Client) error {
				text, err := jdl(cmd)
				if err != nil {
					return err
				}
				log.Debugf("jdl:\n%s", text)
				r, err := c.SubmitJob(ctx, text)
				if err != nil {
					return err
				}
				return emitResult(cmd, r)
			})),
		sub("status", "list your jobs", "gridmemo dirac status",
			nil, diracAction(0, "gridmemo dirac status", func(ctx context.Context, cmd *cli.Command, c *dirac.Client) error {
				r, err := c.Jobs(ctx)
				if err != nil {
					return err
				}
				return emitResult(cmd, r)
			})),
		sub("max-parametric-jobs", "show the parametric job limit", "gridmemo dirac max-parametric-jobs",
			nil, diracAction(0, "gridmemo dirac max-parametric-jobs", func(ctx context.Context, cmd *cli.Command, c *dirac.Client) error {
				r, err := c.MaxParametricJobs(ctx)
				if err != nil {
					return err
				}
				return emitResult(cmd, r)
			})),
		sub("dump", "list a catalog directory", "gridmemo dirac dump LFN",
			nil, diracAction(1, "gridmemo dirac dump LFN", DiracDumpCommandAction)),
		sub("mkdir", "create a catalog directory", "gridmemo dirac mkdir LFN",
			nil, lfnAction("gridmemo dirac mkdir LFN", (*dirac.Client).CreateDirectory)),
		sub("rmdir", "remove a catalog directory", "gridmemo dirac rmdir LFN",
			nil, lfnAction("gridmemo dirac rmdir LFN", (*dirac.Client).RemoveDirectory)),
		sub("rm", "remove a catalog file", "gridmemo dirac rm LFN",
			nil, lfnAction("gridmemo dirac rm LFN", (*dirac.Client).RemoveFile)),
		sub("get", "show the catalog entry of a file", "gridmemo dirac get LFN",
			nil, lfnAction("gridmemo dirac get LFN", (*dirac.Client).GetFile)),
		sub("add", "upload a local file and register it", "gridmemo dirac add PATH LFN [--overwrite]",
			[]cli.Flag{&cli.BoolFlag{Name: "overwrite", Usage: "replace an existing file"}},
			diracAction(2, "gridmemo dirac add PATH LFN", func(ctx context.Context, cmd *cli.Command, c *dirac.Client) error {
				r, err := c.AddFile(ctx, cmd.Args().Get(0), cmd.Args().Get(1), cmd.Bool("overwrite"))
				if err != nil {
					return err
				}
				return emitResult(cmd, r)
			})),
	}

	// jdl needs no server.
	commands = append(commands, (&CommandBuilder{
		Name:      "jdl",
		Usage:     "print the worker job description",
		UsageText: "gridmemo dirac jdl --scheduler HOST [options]",
		Flags:     jobFlags(),
		Meta:      meta,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			text, err := dirac.RenderJDL(jobSpec(cmd))
			if err != nil {
				return err
			}
			fmt.Fprint(stdout(cmd), text)
			return nil
		},
	}).Build())

	return (&CommandBuilder{
		Name:     "dirac",
		Usage:    "talk to a DIRAC server",
		Meta:     meta,
		Commands: commands,
	}).Build()
}
