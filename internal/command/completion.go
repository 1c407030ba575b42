// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/gridmemo/internal/meta"
)

const bashCompletionScript = `# bash completion for gridmemo
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_gridmemo()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "hash plan rewrite run diff cache dirac completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--attrs -a --color -c --filter -f --output -o --sort -s --titles -t"
    local dirac="--dirac-server --ca-path --proxy --storage-url --storage-element --dirac-timeout --dirac-retries"

    case "$cmd" in
        hash)
            local opts="$common --long -l"
            ;;
        plan)
            local opts="$common $dirac --cache --long -l --interactive -i"
            ;;
        rewrite)
            local opts="$common $dirac --cache"
            ;;
        run)
            local opts="$common $dirac --cache --concurrency -j --no-cache --node -n"
            ;;
        diff)
            local opts="--color -c --format"
            ;;
        cache)
            if [[ ${COMP_CWORD} -eq 2 ]]; then
                COMPREPLY=( $(compgen -W "ls show purge" -- "$cur") )
                return 0
            fi
            local opts="$common $dirac --cache --hours"
            ;;
        dirac)
            if [[ ${COMP_CWORD} -eq 2 ]]; then
                COMPREPLY=( $(compgen -W "whoami submit status max-parametric-jobs dump mkdir rmdir rm get add jdl" -- "$cur") )
                return 0
            fi
            local opts="$common $dirac --jdl --name --container --scheduler --scheduler-port --owner-group --site --extra-args --overwrite"
            ;;
        completion)
            local opts="bash zsh"
            COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
        return 0
    fi

    if [[ "$cur" == -* ]]; then
        COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
        return 0
    fi

    # Graph documents
    COMPREPLY=( $(compgen -f -X '!*.@(yaml|yml|json|hcl)' -o plusdirs -- "$cur") )
    return 0
}

complete -F _gridmemo gridmemo
`

const zshCompletionScript = `#compdef gridmemo

_gridmemo() {
  local -a cmds
  cmds=(
    'hash:fingerprint every node of a graph'
    'plan:show which nodes load, store or reuse a cached result'
    'rewrite:print the cache-aware rewrite of a graph'
    'run:evaluate a graph through the cache'
    'diff:compare the fingerprints of two graphs'
    'cache:inspect and maintain a cache'
    'dirac:talk to a DIRAC server'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[columns to show]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort columns]:columns'
  '(-t --titles)'{-t,--titles}'[show titles]'
  )

  local -a graph
  graph=('*:graph:_files -g "*.(yaml|yml|json|hcl)"')

  if (( CURRENT == 2 )); then
    _describe -t commands 'gridmemo commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    hash)
      _arguments -C $common '(-l --long)'{-l,--long}'[full fingerprints]' $graph
      ;;
    plan)
      _arguments -C $common '--cache[cache location]:location' \
        '(-l --long)'{-l,--long}'[full fingerprints]' \
        '(-i --interactive)'{-i,--interactive}'[browse the plan]' $graph
      ;;
    rewrite)
      _arguments -C $common '--cache[cache location]:location' $graph
      ;;
    run)
      _arguments -C $common '--cache[cache location]:location' \
        '(-j --concurrency)'{-j,--concurrency}'[parallel nodes]:n' \
        '--no-cache[do not use the cache]' \
        '(-n --node)'{-n,--node}'[emit one node]:key' $graph
      ;;
    diff)
      _arguments -C '(-c --color)'{-c,--color}'[enable colored diff]' '--format[diff format]:format:(ascii delta)' $graph
      ;;
    cache)
      _arguments '1: :((ls show purge))' '*::arg:->args'
      ;;
    dirac)
      _arguments '1: :((whoami submit status max-parametric-jobs dump mkdir rmdir rm get add jdl))' '*::arg:->args'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _gridmemo gridmemo
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	w := stdout(cmd)
	shell := cmd.Args().First()
	if shell == "" {
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			shell = "zsh"
		case strings.HasSuffix(sh, "bash"):
			shell = "bash"
		}
	}

	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	default:
		fmt.Fprintln(os.Stderr, "usage: gridmemo completion [bash|zsh]")
	}
	return nil
}

func CompletionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "gridmemo completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
