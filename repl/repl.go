// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package repl implements a Read-Eval-Print-Loop (REPL) for the calculator.
//
// The REPL is typically used from the command line, however, it can also be
// used as a library.
package repl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/gobwas/glob"
	"github.com/olekukonko/tablewriter"
	"github.com/peterh/liner"

	"github.com/open-policy-agent/smartcalc/calculator"
	"github.com/open-policy-agent/smartcalc/internal/levenshtein"
)

// REPL represents an instance of the interactive shell.
type REPL struct {
	output io.Writer
	calc   *calculator.Calculator
	names  *completer

	outputFormat string
	historyPath  string
	prompt       string
	banner       string
	suggest      bool
}

// Output formats for commands printing tables.
const (
	PrettyFormat = "pretty"
	JSONFormat   = "json"
)

const maxSuggestDistance = 2

// New returns a new instance of the REPL.
func New(calc *calculator.Calculator, historyPath string, output io.Writer, outputFormat string, banner string) *REPL {
	return &REPL{
		output:       output,
		calc:         calc,
		outputFormat: outputFormat,
		historyPath:  historyPath,
		prompt:       "> ",
		banner:       banner,
	}
}

// WithPrompt sets the prompt shown before each line. The default prompt is
// "> ".
func (r *REPL) WithPrompt(prompt string) *REPL {
	r.prompt = prompt
	return r
}

// WithSuggestions enables "did you mean" hints after unknown commands.
func (r *REPL) WithSuggestions(yes bool) *REPL {
	r.suggest = yes
	return r
}

// Loop will run until the user enters "/exit", Ctrl+C, Ctrl+D, or an
// unexpected error occurs.
func (r *REPL) Loop(ctx context.Context) {

	if err := r.startCompleter(ctx); err != nil {
		fmt.Fprintln(r.output, "error:", err)
	}
	defer r.stopCompleter(ctx)

	// Initialize the liner library.
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	r.loadHistory(line)

	if len(r.banner) > 0 {
		fmt.Fprintln(r.output, r.banner)
	}

	line.SetCompleter(r.complete)

	for {

		input, err := line.Prompt(r.prompt)

		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			fmt.Fprintln(r.output, "Bye!")
			break
		}

		if err != nil {
			fmt.Fprintln(r.output, "error (fatal):", err)
			os.Exit(1)
		}

		if err := r.OneShot(ctx, input); err != nil {
			if _, ok := err.(stop); ok {
				line.AppendHistory(input)
				break
			}
			fmt.Fprintln(r.output, "error:", err)
		}

		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
	}

	r.saveHistory(line)
}

// OneShot evaluates the line and prints the result. Statement failures are
// reported on the output with a single line naming the failure. Other errors
// are returned for the caller to display.
func (r *REPL) OneShot(ctx context.Context, line string) error {

	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	if cmd := newCommand(line); cmd != nil {
		if cmd.rest != "" && !cmd.takesArgs() {
			return r.cmdUnknown(cmd.op)
		}
		switch cmd.op {
		case "exit":
			return r.cmdExit()
		case "help":
			return r.cmdHelp()
		case "vars":
			return r.cmdVars(ctx, cmd.args)
		case "postfix":
			return r.cmdPostfix(cmd.rest)
		case "dump":
			return r.cmdDump(ctx, cmd.args)
		case "json":
			return r.cmdFormat(JSONFormat)
		case "pretty":
			return r.cmdFormat(PrettyFormat)
		default:
			return r.cmdUnknown(cmd.op)
		}
	}

	result, err := r.calc.Exec(ctx, line)
	if err != nil {
		return r.printStatementError(err)
	}

	if result != nil && result.Value != nil {
		fmt.Fprintln(r.output, result.Value)
	}

	return nil
}

func (r *REPL) printStatementError(err error) error {
	kind := calculator.KindOf(err)
	if kind == calculator.Internal {
		return err
	}
	fmt.Fprintln(r.output, kind.Message())
	return nil
}

func (r *REPL) cmdExit() error {
	fmt.Fprintln(r.output, "Bye!")
	return stop{}
}

func (r *REPL) cmdHelp() error {
	fmt.Fprintln(r.output, "The program evaluates integer expressions with + - * / and parentheses.")
	fmt.Fprintln(r.output, "")
	printHelpExamples(r.output, r.prompt)
	printHelpCommands(r.output)
	return nil
}

func (r *REPL) cmdFormat(s string) error {
	r.outputFormat = s
	return nil
}

func (r *REPL) cmdUnknown(op string) error {
	fmt.Fprintln(r.output, "Unknown command")
	if !r.suggest {
		return nil
	}
	names := make([]string, len(builtin))
	for i := range builtin {
		names[i] = builtin[i].name
	}
	closest := levenshtein.Closest(op, maxSuggestDistance, slices.Values(names))
	switch len(closest) {
	case 0:
	case 1:
		fmt.Fprintf(r.output, "Did you mean /%v?\n", closest[0])
	default:
		fmt.Fprintf(r.output, "Did you mean any of /%v?\n", strings.Join(closest, ", /"))
	}
	return nil
}

func (r *REPL) cmdVars(ctx context.Context, args []string) error {

	var pattern glob.Glob

	switch len(args) {
	case 0:
	case 1:
		var err error
		pattern, err = glob.Compile(args[0])
		if err != nil {
			return newBadArgsErr("vars <pattern>: %v", err)
		}
	default:
		return newBadArgsErr("vars <pattern>: too many arguments")
	}

	vars, err := r.calc.Variables(ctx)
	if err != nil {
		return err
	}

	if pattern != nil {
		vars = slices.DeleteFunc(vars, func(v calculator.Variable) bool {
			return !pattern.Match(v.Name)
		})
	}

	switch r.outputFormat {
	case JSONFormat:
		r.printJSON(variableMap(vars))
	default:
		r.printPretty(vars)
	}

	return nil
}

func (r *REPL) cmdPostfix(expr string) error {
	if expr == "" {
		return newBadArgsErr("postfix <expr>: missing expression")
	}
	postfix, err := r.calc.Postfix(expr)
	if err != nil {
		return r.printStatementError(err)
	}
	fmt.Fprintln(r.output, postfix)
	return nil
}

func (r *REPL) cmdDump(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return r.dumpVariables(ctx, r.output)
	}
	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	return r.dumpVariables(ctx, f)
}

func (r *REPL) dumpVariables(ctx context.Context, w io.Writer) error {
	vars, err := r.calc.Variables(ctx)
	if err != nil {
		return err
	}
	return json.NewEncoder(w).Encode(variableMap(vars))
}

func (r *REPL) loadHistory(prompt *liner.State) {
	if r.historyPath == "" {
		return
	}
	if f, err := os.Open(r.historyPath); err == nil {
		_, _ = prompt.ReadHistory(f)
		f.Close()
	}
}

func (r *REPL) saveHistory(prompt *liner.State) {
	if r.historyPath == "" {
		return
	}
	if f, err := os.Create(r.historyPath); err == nil {
		_, _ = prompt.WriteHistory(f)
		f.Close()
	}
}

func (r *REPL) printJSON(x any) {
	buf, err := json.MarshalIndent(x, "", "  ")
	if err != nil {
		fmt.Fprintln(r.output, err)
		return
	}
	fmt.Fprintln(r.output, string(buf))
}

func (r *REPL) printPretty(vars []calculator.Variable) {
	if len(vars) == 0 {
		return
	}
	table := tablewriter.NewWriter(r.output)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Name", "Value"})
	for _, v := range vars {
		table.Append([]string{v.Name, v.Value.String()})
	}
	table.Render()
}

func variableMap(vars []calculator.Variable) map[string]json.Number {
	m := make(map[string]json.Number, len(vars))
	for _, v := range vars {
		m[v.Name] = json.Number(v.Value.String())
	}
	return m
}

type commandDesc struct {
	name string
	args []string
	help string
}

func (c commandDesc) syntax() string {
	name := c.name
	if !strings.HasPrefix(name, "<") {
		name = "/" + name
	}
	if len(c.args) > 0 {
		return fmt.Sprintf("%v %v", name, strings.Join(c.args, " "))
	}
	return name
}

type exampleDesc struct {
	example string
	comment string
}

var examples = [...]exampleDesc{
	{"a = 4", "bind a variable"},
	{"b = a", "copy a variable"},
	{"-7 / 2 + a * (b - 1)", "evaluate an expression"},
	{"8 --- 2", "runs of signs collapse"},
}

var extra = [...]commandDesc{
	{"<stmt>", []string{}, "evaluate the statement"},
}

var builtin = [...]commandDesc{
	{"vars", []string{"[pattern]"}, "list variables matching the glob pattern"},
	{"postfix", []string{"<expr>"}, "show the postfix form of an expression"},
	{"json", []string{}, "set output format to JSON"},
	{"pretty", []string{}, "set output format to pretty"},
	{"dump", []string{"[path]"}, "dump variables as JSON"},
	{"help", []string{}, "print this message"},
	{"exit", []string{}, "exit back to shell (or ctrl+c, ctrl+d)"},
}

type command struct {
	op   string
	args []string
	rest string
}

// newCommand returns nil unless line starts with '/'. The op of an unknown
// command is returned as is.
func newCommand(line string) *command {
	if !strings.HasPrefix(line, "/") {
		return nil
	}
	op, rest, _ := strings.Cut(line[1:], " ")
	rest = strings.TrimSpace(rest)
	return &command{
		op:   op,
		args: strings.Fields(rest),
		rest: rest,
	}
}

// takesArgs returns true if the command accepts text after its name. Other
// commands only match the exact line.
func (c *command) takesArgs() bool {
	switch c.op {
	case "vars", "postfix", "dump":
		return true
	}
	return false
}

func printHelpExamples(output io.Writer, promptSymbol string) {

	fmt.Fprintln(output, "Examples")
	fmt.Fprintln(output, "========")
	fmt.Fprintln(output, "")

	maxLength := 0
	for _, ex := range examples {
		if len(ex.example) > maxLength {
			maxLength = len(ex.example)
		}
	}

	f := fmt.Sprintf("%v%%-%dv # %%v\n", promptSymbol, maxLength+1)

	for _, ex := range examples {
		fmt.Fprintf(output, f, ex.example, ex.comment)
	}

	fmt.Fprintln(output, "")
}

func printHelpCommands(output io.Writer) {

	fmt.Fprintln(output, "Commands")
	fmt.Fprintln(output, "========")
	fmt.Fprintln(output, "")

	all := extra[:]
	all = append(all, builtin[:]...)

	maxLength := 0

	for _, c := range all {
		length := len(c.syntax())
		if length > maxLength {
			maxLength = length
		}
	}

	f := fmt.Sprintf("%%%dv : %%v\n", maxLength)

	for _, c := range all {
		fmt.Fprintf(output, f, c.syntax(), c.help)
	}

	fmt.Fprintln(output, "")
}
