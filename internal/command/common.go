// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/gridmemo/internal/aws"
	"github.com/staranto/gridmemo/internal/backend"
	diracbe "github.com/staranto/gridmemo/internal/backend/dirac"
	"github.com/staranto/gridmemo/internal/backend/local"
	s3be "github.com/staranto/gridmemo/internal/backend/s3"
	"github.com/staranto/gridmemo/internal/config"
	"github.com/staranto/gridmemo/internal/dirac"
	"github.com/staranto/gridmemo/internal/graph"
	"github.com/staranto/gridmemo/internal/graphfile"
	"github.com/staranto/gridmemo/internal/meta"
	"github.com/staranto/gridmemo/internal/ops"
	"github.com/staranto/gridmemo/internal/output"
	"github.com/staranto/gridmemo/internal/table"
)

// ErrNoCache is returned when no cache location was given and no default
// could be resolved.
var ErrNoCache = errors.New("no cache location: use --cache or set GRIDMEMO_CACHE_DIR")

// GetMeta returns the meta.Meta stored in the command's Metadata, looking up
// through the parents. If missing it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	for _, c := range cmd.Lineage() {
		if c.Metadata == nil {
			continue
		}
		if m, ok := c.Metadata["meta"].(meta.Meta); ok {
			return m
		}
	}
	return meta.Meta{}
}

// stdout is where command results go.
func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// Emit renders t per the global output flags of cmd.
func Emit(cmd *cli.Command, t *table.Table) error {
	return output.SliceDiceSpit(stdout(cmd), t, output.OptionsFrom(cmd))
}

// Operations is the registry graph documents are resolved against.
func Operations() *ops.Registry {
	return ops.Builtins()
}

// LoadGraph reads the graph document named by positional argument n.
func LoadGraph(cmd *cli.Command, n int) (*graph.Graph, error) {
	path := cmd.Args().Get(n)
	if path == "" {
		return nil, errors.New("a graph document is required")
	}
	g, err := graphfile.Load(path, Operations())
	if err != nil {
		return nil, err
	}
	log.Debugf("loaded %d nodes from %s", g.Len(), path)
	return g, nil
}

// CacheLocation resolves the --cache flag, falling back to the default cache
// directory.
func CacheLocation(cmd *cli.Command) (backend.Location, error) {
	s := cmd.String("cache")
	if s == "" {
		s = GetMeta(cmd).DefaultCache
	}
	if s == "" {
		return backend.Location{}, ErrNoCache
	}
	return backend.ParseLocation(s)
}

// Extension is the artifact suffix, configurable with the "extension" key.
func Extension() string {
	ext, _ := config.GetString("extension", table.Extension)
	return ext
}

// NewBackends returns the registry of every backend gridmemo supports. The
// remote backends connect on first use, so building the registry is cheap.
func NewBackends(cmd *cli.Command) *backend.Registry {
	ext := Extension()
	return backend.NewRegistry(
		local.New(local.WithExtension(ext)),
		diracbe.New(func() (diracbe.Catalog, error) {
			return NewDiracClient(cmd)
		}, diracbe.WithExtension(ext)),
		s3be.New(s3be.FromConfig(awsOptions()...), s3be.WithExtension(ext)),
	)
}

// NewDiracClient builds a DIRAC client from the dirac flags of cmd.
func NewDiracClient(cmd *cli.Command) (*dirac.Client, error) {
	return dirac.New(diracSettings(cmd))
}

// awsOptions reads the s3 section of the config file.
func awsOptions() []aws.Option {
	var opts []aws.Option
	if p, err := config.GetString("s3.profile"); err == nil && p != "" {
		opts = append(opts, aws.WithProfile(p))
	}
	if r, err := config.GetString("s3.region"); err == nil && r != "" {
		opts = append(opts, aws.WithRegion(r))
	}
	if e, err := config.GetString("s3.endpoint"); err == nil && e != "" {
		opts = append(opts, aws.WithEndpoint(e))
	}
	return opts
}

// CommandBuilder constructs a cli.Command using a consistent pattern: the
// command's meta is wired into its Metadata, the output flags are added when
// Emits is set and the global validator runs before the action.
type CommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	Emits     bool
	Action    func(context.Context, *cli.Command) error
	Commands  []*cli.Command
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (cb *CommandBuilder) Build() *cli.Command {
	flags := cb.Flags
	if cb.Emits {
		flags = append(flags, NewGlobalFlags(cb.Name)...)
	}
	return &cli.Command{
		Name:      cb.Name,
		Usage:     cb.Usage,
		UsageText: cb.UsageText,
		Metadata: map[string]any{
			"meta": cb.Meta,
		},
		Flags:    flags,
		Commands: cb.Commands,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: cb.Action,
	}
}

// describe renders a task spec on one line.
func describe(s graph.Spec) string {
	switch v := s.(type) {
	case graph.Literal:
		if str, ok := v.Value.(string); ok {
			return fmt.Sprintf("%q", str)
		}
		return fmt.Sprintf("%v", v.Value)
	case graph.Ref:
		return "&" + string(v.Key)
	case *graph.Call:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = describe(a)
		}
		return graph.OpName(v.Op) + "(" + strings.Join(args, ", ") + ")"
	}
	return fmt.Sprintf("%v", s)
}
