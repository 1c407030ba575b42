// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"
	"github.com/urfave/cli/v3"

	"github.com/staranto/gridmemo/internal/command"
)

// Doc generator. Walks the gridmemo command tree and writes, per command:
//   - docs/commands/gridmemo-<cmd>.md
//   - docs/man/share/man1/gridmemo-<cmd>.1 via md2man
//   - docs/tldr/gridmemo-<cmd>.md

func main() {
	var (
		repoRoot           string
		writeOnlyIfChanged bool
	)

	flag.StringVar(&repoRoot, "root", ".", "repo root (default current dir)")
	flag.BoolVar(&writeOnlyIfChanged, "only-if-changed", true, "only write files if content changed")
	flag.Parse()

	commandsDir := filepath.Join(repoRoot, "docs", "commands")
	manOutDir := filepath.Join(repoRoot, "docs", "man", "share", "man1")
	tldrOutDir := filepath.Join(repoRoot, "docs", "tldr")

	for _, d := range []string{commandsDir, manOutDir, tldrOutDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			fatalf("creating %s: %v", d, err)
		}
	}

	app, err := command.InitApp(context.Background(), []string{"gridmemo"})
	if err != nil {
		fatalf("building command tree: %v", err)
	}

	var processed int
	var walk func(path []string, cmds []*cli.Command)
	walk = func(path []string, cmds []*cli.Command) {
		for _, c := range cmds {
			if c.Hidden {
				continue
			}
			words := append(append([]string{}, path...), c.Name)
			name := strings.Join(words, "-")
			invocation := strings.Join(words, " ")

			md := commandMarkdown(name, invocation, c)
			if err := writeFileIfChanged(filepath.Join(commandsDir, name+".md"), []byte(md), writeOnlyIfChanged); err != nil {
				fatalf("writing markdown for %s: %v", name, err)
			}
			if err := writeFileIfChanged(filepath.Join(manOutDir, name+".1"), md2man.Render([]byte(md)), writeOnlyIfChanged); err != nil {
				fatalf("writing man page for %s: %v", name, err)
			}
			if err := writeFileIfChanged(filepath.Join(tldrOutDir, name+".md"), []byte(buildTLDR(name, invocation, c)), writeOnlyIfChanged); err != nil {
				fatalf("writing TLDR for %s: %v", name, err)
			}
			processed++

			walk(words, c.Commands)
		}
	}
	walk([]string{app.Name}, app.Commands)

	if processed == 0 {
		fatalf("no commands found")
	}
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}

func writeFileIfChanged(path string, new []byte, onlyIfChanged bool) error {
	if !onlyIfChanged {
		return os.WriteFile(path, new, 0o644)
	}
	old, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return os.WriteFile(path, new, 0o644)
		}
		return err
	}
	if bytes.Equal(bytes.TrimSpace(old), bytes.TrimSpace(new)) {
		return nil
	}
	return os.WriteFile(path, new, 0o644)
}

// commandMarkdown renders a man page source in the layout md2man expects.
func commandMarkdown(name, invocation string, c *cli.Command) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s 1\n", strings.ToUpper(name))
	b.WriteString("==========\n\n")

	b.WriteString("# NAME\n\n")
	fmt.Fprintf(&b, "%s - %s\n\n", name, c.Usage)

	b.WriteString("# SYNOPSIS\n\n")
	synopsis := c.UsageText
	if synopsis == "" {
		synopsis = invocation + " COMMAND"
	}
	fmt.Fprintf(&b, "`%s`\n\n", synopsis)

	if len(c.Commands) > 0 {
		b.WriteString("# COMMANDS\n\n")
		for _, sub := range c.Commands {
			fmt.Fprintf(&b, "**%s**\n: %s\n\n", sub.Name, sub.Usage)
		}
	}

	if len(c.Flags) > 0 {
		b.WriteString("# OPTIONS\n\n")
		for _, f := range c.Flags {
			names := make([]string, 0, len(f.Names()))
			for _, n := range f.Names() {
				if len(n) == 1 {
					names = append(names, "-"+n)
				} else {
					names = append(names, "--"+n)
				}
			}
			fmt.Fprintf(&b, "**%s**\n: %s\n\n", strings.Join(names, ", "), flagUsage(f))
		}
	}
	return b.String()
}

func flagUsage(f cli.Flag) string {
	if u, ok := f.(interface{ GetUsage() string }); ok {
		return u.GetUsage()
	}
	return ""
}

func buildTLDR(name, invocation string, c *cli.Command) string {
	var b strings.Builder
	b.WriteString("# " + name + "\n\n")
	if c.Usage != "" {
		b.WriteString("> " + strings.ToUpper(c.Usage[:1]) + c.Usage[1:] + ".\n")
	} else {
		b.WriteString("> " + invocation + "\n")
	}
	b.WriteString("> More information: https://github.com/staranto/gridmemo.\n\n")

	if c.UsageText != "" {
		b.WriteString("- Usage:\n\n")
		b.WriteString("`" + sanitizeCommand(c.UsageText) + "`\n\n")
	}
	b.WriteString("- Show help for the command:\n\n")
	b.WriteString("`" + invocation + " --help`\n")
	return b.String()
}

// sanitizeCommand compresses runs of whitespace.
func sanitizeCommand(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
