// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"math/big"
	"os"
	"slices"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/open-policy-agent/smartcalc/calculator"
	"github.com/open-policy-agent/smartcalc/cmd/internal/env"
	"github.com/open-policy-agent/smartcalc/runtime"
	"github.com/open-policy-agent/smartcalc/util"
)

const (
	evalJSONOutput   = "json"
	evalPlainOutput  = "plain"
	evalPrettyOutput = "pretty"
)

type evalCommandParams struct {
	outputFormat *util.EnumFlag
	metrics      bool
	cont         bool
	variables    string
	cacheSize    int
}

func newEvalCommandParams() evalCommandParams {
	return evalCommandParams{
		outputFormat: util.NewEnumFlag(evalPlainOutput, []string{
			evalPlainOutput,
			evalJSONOutput,
			evalPrettyOutput,
		}),
	}
}

// evalOutput is the document printed by the json output format.
type evalOutput struct {
	Results []evalResult   `json:"results"`
	Metrics map[string]any `json:"metrics,omitempty"`
}

type evalResult struct {
	Statement string     `json:"statement"`
	Value     *big.Int   `json:"value,omitempty"`
	Error     *evalError `json:"error,omitempty"`
}

type evalError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

// errStatementFailed is returned when at least one statement failed. The
// failure itself has already been printed.
var errStatementFailed = errors.New("statement failed")

func init() {

	params := newEvalCommandParams()

	evalCommand := &cobra.Command{
		Use:   "eval <statement> [<statement>...]",
		Short: "Execute calculator statements",
		Long: `Execute calculator statements in order and print the results.

Examples
--------

To evaluate an expression:

	$ smartcalc eval '3 + 8 * ((4 + 3) * 2 + 1) - 6 / (2 + 1)'

To assign variables and use them in later statements:

	$ smartcalc eval 'a = 4' 'b = a' 'a * b'

Execution stops at the first failing statement unless --continue is given.
The command exits with a non-zero status when any statement fails.

Output Formats
--------------

Set the output format with the --format flag.

	--format=plain   : print results the way the interactive shell does
	--format=json    : print results and errors as a JSON document
	--format=pretty  : print results in a table
`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("specify at least one statement")
			}
			return env.CmdFlags.CheckEnvironmentVariables(cmd)
		},
		Run: func(_ *cobra.Command, args []string) {
			if err := eval(context.Background(), args, params, os.Stdout); err != nil {
				if !errors.Is(err, errStatementFailed) {
					fmt.Fprintln(os.Stderr, "error:", err)
				}
				os.Exit(1)
			}
		},
	}

	fs := evalCommand.Flags()
	fs.VarP(params.outputFormat, "format", "f", "set output format")
	fs.BoolVarP(&params.metrics, "metrics", "", false, "report performance metrics")
	fs.BoolVarP(&params.cont, "continue", "", false, "continue after a failing statement")
	setVariables(fs, &params.variables)
	setCacheSize(fs, &params.cacheSize)

	RootCommand.AddCommand(evalCommand)
}

func eval(ctx context.Context, args []string, params evalCommandParams, w io.Writer) error {

	rtParams := runtime.NewParams()
	rtParams.VariablesFile = params.variables
	rtParams.CacheSize = &params.cacheSize
	rtParams.Logging.Level = "error"
	rtParams.Output = w

	rt, err := runtime.NewRuntime(ctx, rtParams)
	if err != nil {
		return err
	}

	var output evalOutput
	failed := false

	for _, stmt := range args {
		result, err := rt.Calculator.Exec(ctx, stmt)
		r := evalResult{Statement: stmt}
		if err != nil {
			kind := calculator.KindOf(err)
			r.Error = &evalError{Kind: kind.String(), Message: kind.Message(), Detail: err.Error()}
			failed = true
		} else if result != nil {
			r.Value = result.Value
		}
		output.Results = append(output.Results, r)
		if failed && !params.cont {
			break
		}
	}

	if params.metrics {
		output.Metrics = rt.Metrics.All()
	}

	switch params.outputFormat.String() {
	case evalJSONOutput:
		bs, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(bs))
	case evalPrettyOutput:
		printPretty(w, output)
	default:
		printPlain(w, output)
	}

	if failed {
		return errStatementFailed
	}

	return nil
}

func printPlain(w io.Writer, output evalOutput) {
	for _, r := range output.Results {
		switch {
		case r.Error != nil:
			fmt.Fprintln(w, r.Error.Message)
		case r.Value != nil:
			fmt.Fprintln(w, r.Value.String())
		}
	}
	printMetrics(w, output.Metrics)
}

func printPretty(w io.Writer, output evalOutput) {
	table := tablewriter.NewWriter(w)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Statement", "Result"})
	for _, r := range output.Results {
		var result string
		switch {
		case r.Error != nil:
			result = r.Error.Message
		case r.Value != nil:
			result = r.Value.String()
		}
		table.Append([]string{r.Statement, result})
	}
	table.Render()
	printMetrics(w, output.Metrics)
}

func printMetrics(w io.Writer, m map[string]any) {
	if len(m) == 0 {
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Metric", "Value"})
	for _, key := range slices.Sorted(maps.Keys(m)) {
		bs, err := json.Marshal(m[key])
		if err != nil {
			continue
		}
		table.Append([]string{key, string(bs)})
	}
	table.Render()
}
