// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/gridmemo/internal/config"
	"github.com/staranto/gridmemo/internal/dirac"
	"github.com/staranto/gridmemo/internal/output"
)

func init() {
	cfg, _ = config.Load("")
}

var cfg config.Type

// NewGlobalFlags returns the output flags shared by every command that emits
// a table. params[0] is the command name, used as the config namespace.
func NewGlobalFlags(params ...string) (flags []cli.Flag) {
	ns := params[0]
	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "columns to show, column[:title[:transform]],...",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+".attrs", altsrc.StringSourcer(cfg.Source)),
			),
		},
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+".color", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("color", altsrc.StringSourcer(cfg.Source)),
			),
			Value: false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+".output", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("output", altsrc.StringSourcer(cfg.Source)),
			),
			Value: output.Text,
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of columns to sort the results by",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+".sort", altsrc.StringSourcer(cfg.Source)),
			),
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+".titles", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("titles", altsrc.StringSourcer(cfg.Source)),
			),
			Value: false,
		},
	}

	return
}

// NewCacheFlag constructs the --cache flag for the command ns.
func NewCacheFlag(ns string) *cli.StringFlag {
	return NameSpacedValueChainFlagFromConfigFile(ns, cfg.Source, &cli.StringFlag{
		Name:  "cache",
		Usage: "cache location, <scheme>://<root>. Defaults to the local cache directory",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("GRIDMEMO_CACHE_LOCATION"),
		),
		Validator: func(value string) error {
			return FlagValidators(value, JammedFlagValidator, LocationValidator)
		},
	})
}

// NewConcurrencyFlag constructs the --concurrency flag for the command ns.
func NewConcurrencyFlag(ns string) *cli.IntFlag {
	return &cli.IntFlag{
		Name:    "concurrency",
		Aliases: []string{"j"},
		Usage:   "maximum number of nodes evaluated at once, 0 for one per CPU",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("GRIDMEMO_CONCURRENCY"),
			yaml.YAML(ns+".concurrency", altsrc.StringSourcer(cfg.Source)),
			yaml.YAML("concurrency", altsrc.StringSourcer(cfg.Source)),
		),
		Validator: func(value int) error {
			return FlagValidators(value, NonNegativeValidator)
		},
	}
}

// NewDiracFlags returns the flags that locate and authenticate against a
// DIRAC server. Values also come from the dirac section of the config file.
func NewDiracFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "dirac-server",
			Usage:    "DIRAC server URL",
			Category: "dirac",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("GRIDMEMO_DIRAC_SERVER"),
				yaml.YAML("dirac.server", altsrc.StringSourcer(cfg.Source)),
			),
		},
		&cli.StringFlag{
			Name:     "ca-path",
			Usage:    "directory of CA certificates or a PEM bundle",
			Category: "dirac",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("X509_CERT_DIR"),
				yaml.YAML("dirac.ca_path", altsrc.StringSourcer(cfg.Source)),
			),
			Value: dirac.DefaultCAPath,
		},
		&cli.StringFlag{
			Name:     "proxy",
			Usage:    "X.509 user proxy file",
			Category: "dirac",
			Sources: cli.NewValueSourceChain(
				yaml.YAML("dirac.proxy", altsrc.StringSourcer(cfg.Source)),
			),
			Value:       dirac.DefaultUserProxy(),
			HideDefault: true,
		},
		&cli.StringFlag{
			Name:     "storage-url",
			Usage:    "storage element base URL",
			Category: "dirac",
			Sources: cli.NewValueSourceChain(
				yaml.YAML("dirac.storage_url", altsrc.StringSourcer(cfg.Source)),
			),
			Value: dirac.DefaultStorageURL,
		},
		&cli.StringFlag{
			Name:     "storage-element",
			Usage:    "storage element name registered with new files",
			Category: "dirac",
			Sources: cli.NewValueSourceChain(
				yaml.YAML("dirac.storage_element", altsrc.StringSourcer(cfg.Source)),
			),
			Value: dirac.DefaultStorageElement,
		},
		&cli.DurationFlag{
			Name:     "dirac-timeout",
			Usage:    "timeout of every DIRAC request",
			Category: "dirac",
			Sources: cli.NewValueSourceChain(
				yaml.YAML("dirac.timeout", altsrc.StringSourcer(cfg.Source)),
			),
			Value: dirac.DefaultTimeout,
		},
		&cli.IntFlag{
			Name:     "dirac-retries",
			Usage:    "retries of transient DIRAC failures",
			Category: "dirac",
			Sources: cli.NewValueSourceChain(
				yaml.YAML("dirac.retries", altsrc.StringSourcer(cfg.Source)),
			),
			Value: 3,
		},
	}
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	src := yaml.YAML(ns+"."+flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	src = yaml.YAML(flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	return flag
}

// diracSettings collects the DIRAC flags of cmd.
func diracSettings(cmd *cli.Command) dirac.Settings {
	return dirac.Settings{
		ServerURL:      cmd.String("dirac-server"),
		CAPath:         cmd.String("ca-path"),
		UserProxy:      cmd.String("proxy"),
		StorageURL:     cmd.String("storage-url"),
		StorageElement: cmd.String("storage-element"),
		Timeout:        cmd.Duration("dirac-timeout"),
		Retries:        int(cmd.Int("dirac-retries")),
	}
}
