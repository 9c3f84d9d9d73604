// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/open-policy-agent/smartcalc/cmd/internal/env"
	"github.com/open-policy-agent/smartcalc/repl"
	"github.com/open-policy-agent/smartcalc/runtime"
	"github.com/open-policy-agent/smartcalc/util"
	"github.com/open-policy-agent/smartcalc/version"
)

type runCmdParams struct {
	rt        runtime.Params
	format    *util.EnumFlag
	logLevel  *util.EnumFlag
	logFormat *util.EnumFlag
	prompt    string
	cacheSize int
}

func newRunParams() *runCmdParams {
	return &runCmdParams{
		rt:        runtime.NewParams(),
		format:    util.NewEnumFlag(repl.PrettyFormat, []string{repl.PrettyFormat, repl.JSONFormat}),
		logLevel:  newLogLevelFlag(),
		logFormat: newLogFormatFlag(),
	}
}

func init() {

	params := newRunParams()

	runCommand := &cobra.Command{
		Use:   "run",
		Short: "Start the interactive calculator shell",
		Long: `Start an interactive calculator shell.

Each line is either an assignment or an expression:

	> a = 4
	> b = a
	> 3 + 8 * ((4 + 3) * 2 + 1) - 6 / (2 + 1)
	121

Integers may be arbitrarily large. Division truncates toward zero.

Shell commands start with '/'. Type /help for the full list.

Configuration
-------------

The --config-file flag loads a YAML file with default settings. Flags given on
the command line take precedence. Every flag can also be set with a
SMARTCALC_RUN_<FLAG> environment variable, e.g., SMARTCALC_RUN_LOG_LEVEL=debug.

	prompt: "calc> "
	format: pretty
	history: ~/.smartcalc_history
	cache_size: 128
	suggest: true
	variables: vars.yaml
	watch: true
	log:
	  level: info
	  format: text

The --variables flag names a YAML mapping of variable names to integer values
or other variable names. The bindings are applied in file order before the
first prompt. With --watch they are applied again whenever the file changes.
`,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return env.CmdFlags.CheckEnvironmentVariables(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			rt, err := runtime.NewRuntime(ctx, params.runtimeParams(cmd, os.Stdout))
			if err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
				os.Exit(1)
			}
			return rt.StartREPL(ctx)
		},
	}

	fs := runCommand.Flags()
	fs.StringVarP(&params.rt.ConfigFile, "config-file", "c", "", "set path of configuration file")
	fs.StringVarP(&params.rt.HistoryPath, "history", "H", "", "set path of history file (default ~/.smartcalc_history)")
	fs.VarP(params.format, "format", "f", "set shell output format")
	fs.StringVarP(&params.prompt, "prompt", "p", "", "set shell prompt")
	fs.BoolVarP(&params.rt.Watch, "watch", "w", false, "reload the variables file when it changes")
	fs.BoolVarP(&params.rt.Suggest, "suggest", "", false, "suggest the closest command after an unknown shell command")
	fs.StringVarP(&params.rt.MetricsAddr, "metrics-addr", "", "", "set listening address of the Prometheus metrics endpoint (e.g., localhost:9090)")
	setVariables(fs, &params.rt.VariablesFile)
	setCacheSize(fs, &params.cacheSize)
	setLogging(fs, params.logLevel, params.logFormat)

	RootCommand.AddCommand(runCommand)
}

// runtimeParams returns the runtime parameters for the flags given on the
// command line. Flags left unset are resolved from the configuration file.
func (p *runCmdParams) runtimeParams(cmd *cobra.Command, out io.Writer) runtime.Params {

	rt := p.rt
	rt.Output = out
	rt.Banner = fmt.Sprintf("smartcalc %v (type /help for help, /exit to quit)", version.Version)

	fs := cmd.Flags()

	if p.format.IsSet() {
		rt.OutputFormat = p.format.String()
	}
	if fs.Changed("prompt") {
		prompt := p.prompt
		rt.Prompt = &prompt
	}
	if fs.Changed("cache-size") {
		size := p.cacheSize
		rt.CacheSize = &size
	}
	if p.logLevel.IsSet() {
		rt.Logging.Level = p.logLevel.String()
	}
	if p.logFormat.IsSet() {
		rt.Logging.Format = p.logFormat.String()
	}

	return rt
}
