// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/gridmemo/internal/cacheutil"
	"github.com/staranto/gridmemo/internal/command"
	"github.com/staranto/gridmemo/internal/config"
	mylog "github.com/staranto/gridmemo/internal/log"
	"github.com/staranto/gridmemo/internal/version"
)

// Exit codes: 0 ok, 1 the command tree could not be built, 2 the command
// failed.
const (
	exitOK = iota
	exitSetup
	exitCommand
)

func main() {
	os.Exit(realMain(context.Background(), os.Args))
}

func realMain(ctx context.Context, args []string) int {
	mylog.InitLogger()

	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "gridmemo: no command given")
		args = append(args, "--help")
	} else {
		args = mangleArguments(args)
	}

	if wantsVersion(args) {
		fmt.Println(version.Version)
		return exitOK
	}

	// The default file:// cache lives here. A failure only matters to runs
	// that use it, so report and carry on.
	if dir, _, err := cacheutil.EnsureBaseDir(); err != nil {
		log.WithError(err).Warnf("cache directory %s unavailable", dir)
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitSetup
	}
	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCommand
	}
	return exitOK
}

func wantsVersion(args []string) bool {
	return slices.Contains(args, "--version") || slices.Contains(args, "-v")
}

// mangleArguments expands an @set preset into the arguments stored under
// "<command>.<set>" in the config file. Without an explicit @set the
// "<command>.defaults" preset, if any, is inserted right after the command.
// Any -h or --help reduces the line to "<exe> <command> --help".
func mangleArguments(args []string) []string {
	head := slices.Clone(args[:2])
	if slices.Contains(args, "--help") || slices.Contains(args, "-h") {
		return append(head, "--help")
	}

	rest := slices.Clone(args[2:])
	at, set := 0, "defaults"
	if i := slices.IndexFunc(rest, isPreset); i >= 0 {
		at, set = i, rest[i][1:]
		rest = slices.Delete(rest, i, i+1)
	}

	var expanded []string
	lines, _ := config.GetStringSlice(args[1] + "." + set)
	for _, l := range lines {
		expanded = append(expanded, strings.Fields(l)...)
	}

	out := append(head, rest[:at]...)
	out = append(out, expanded...)
	out = append(out, rest[at:]...)
	log.Debugf("preset %s expanded to %v", set, out)
	return out
}

func isPreset(a string) bool { return len(a) > 1 && a[0] == '@' }
