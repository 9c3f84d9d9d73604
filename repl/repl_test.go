// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package repl

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/open-policy-agent/smartcalc/calculator"
	"github.com/open-policy-agent/smartcalc/storage"
	"github.com/open-policy-agent/smartcalc/storage/inmem"
)

func newRepl(store storage.Store, buffer *bytes.Buffer) *REPL {
	return New(calculator.New(calculator.Store(store)), "", buffer, PrettyFormat, "")
}

func expectOutput(t *testing.T, output string, expected string) {
	t.Helper()
	if output != expected {
		t.Errorf("Repl output: expected %#v but got %#v", expected, output)
	}
}

func TestOneShotSession(t *testing.T) {

	tests := []struct {
		note     string
		lines    []string
		expected string
	}{
		{
			note:     "expressions",
			lines:    []string{"2 + 3 * 4", "(2 + 3) * 4", "8 - 3 - 2", "7 / 2", "-7 / 2"},
			expected: "14\n20\n3\n3\n-3\n",
		},
		{
			note:     "assignments print nothing",
			lines:    []string{"a = 4", "b = a", "a = 5", "b", "a"},
			expected: "4\n5\n",
		},
		{
			note:     "blank lines are skipped",
			lines:    []string{"", "   ", "1 + 1"},
			expected: "2\n",
		},
		{
			note:     "input is trimmed",
			lines:    []string{"   x = 3   ", "\tx\t"},
			expected: "3\n",
		},
		{
			note: "failures print one line",
			lines: []string{
				"a2a = 8",
				"a = 7 = 8",
				"q + 1",
				"(1 + 2",
				"3 *** 5",
				"1 / 0",
			},
			expected: "Invalid identifier\nInvalid assignment\nUnknown variable\nInvalid expression\nInvalid expression\nDivision by zero\n",
		},
		{
			note:     "unknown command",
			lines:    []string{"/go", "/"},
			expected: "Unknown command\nUnknown command\n",
		},
		{
			note:     "arguments to exact commands",
			lines:    []string{"/exit now", "/help me", "/json please", "/pretty x"},
			expected: "Unknown command\nUnknown command\nUnknown command\nUnknown command\n",
		},
		{
			note:     "postfix",
			lines:    []string{"/postfix 3 + 8 * ((4 + 3) * 2 + 1) - 6 / (2 + 1)", "/postfix 1 +"},
			expected: "3 8 4 3 + 2 * 1 + * + 6 2 1 + / -\nInvalid expression\n",
		},
		{
			note:     "exit",
			lines:    []string{"/exit"},
			expected: "Bye!\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.note, func(t *testing.T) {
			var buffer bytes.Buffer
			repl := newRepl(inmem.New(), &buffer)
			ctx := context.Background()
			for _, line := range tc.lines {
				if err := repl.OneShot(ctx, line); err != nil {
					if _, ok := err.(stop); !ok {
						t.Fatalf("Unexpected error for %q: %v", line, err)
					}
				}
			}
			expectOutput(t, buffer.String(), tc.expected)
		})
	}
}

func TestExitStops(t *testing.T) {
	var buffer bytes.Buffer
	repl := newRepl(inmem.New(), &buffer)
	err := repl.OneShot(context.Background(), "/exit")
	if _, ok := err.(stop); !ok {
		t.Fatalf("Expected stop error but got: %v", err)
	}
}

func TestHelp(t *testing.T) {
	var buffer bytes.Buffer
	repl := newRepl(inmem.New(), &buffer)
	if err := repl.OneShot(context.Background(), "/help"); err != nil {
		t.Fatal(err)
	}
	for _, exp := range []string{"Commands", "/vars [pattern]", "/exit", "<stmt>", "a = 4"} {
		if !strings.Contains(buffer.String(), exp) {
			t.Errorf("Expected help to contain %q:\n%v", exp, buffer.String())
		}
	}
}

func TestUnknownCommandSuggestions(t *testing.T) {
	var buffer bytes.Buffer
	repl := newRepl(inmem.New(), &buffer).WithSuggestions(true)
	ctx := context.Background()

	if err := repl.OneShot(ctx, "/exti"); err != nil {
		t.Fatal(err)
	}
	if err := repl.OneShot(ctx, "/zzzzzzzz"); err != nil {
		t.Fatal(err)
	}

	expectOutput(t, buffer.String(), "Unknown command\nDid you mean /exit?\nUnknown command\n")
}

func TestVars(t *testing.T) {
	store := inmem.NewFromMap(map[string]*big.Int{
		"alpha": big.NewInt(1),
		"beta":  big.NewInt(-2),
		"apple": big.NewInt(3),
	})

	var buffer bytes.Buffer
	repl := newRepl(store, &buffer)
	if err := repl.OneShot(context.Background(), "/vars a*"); err != nil {
		t.Fatal(err)
	}

	var rows [][]string
	for _, line := range strings.Split(buffer.String(), "\n") {
		if strings.HasPrefix(line, "|") {
			rows = append(rows, strings.Fields(strings.ReplaceAll(line, "|", " ")))
		}
	}

	expected := [][]string{{"Name", "Value"}, {"alpha", "1"}, {"apple", "3"}}
	if diff := cmp.Diff(expected, rows); diff != "" {
		t.Fatalf("Unexpected table (-want, +got):\n%v\n%v", diff, buffer.String())
	}
}

func TestVarsJSON(t *testing.T) {
	var buffer bytes.Buffer
	repl := newRepl(inmem.New(), &buffer)
	ctx := context.Background()

	for _, line := range []string{"/json", "big = 123456789012345678901234567890", "small = -1", "/vars"} {
		if err := repl.OneShot(ctx, line); err != nil {
			t.Fatal(err)
		}
	}

	var result map[string]json.Number
	if err := json.Unmarshal(buffer.Bytes(), &result); err != nil {
		t.Fatalf("Expected JSON output but got %v: %v", buffer.String(), err)
	}

	expected := map[string]json.Number{"big": "123456789012345678901234567890", "small": "-1"}
	if diff := cmp.Diff(expected, result); diff != "" {
		t.Fatalf("Unexpected variables (-want, +got):\n%v", diff)
	}
}

func TestVarsBadArgs(t *testing.T) {
	var buffer bytes.Buffer
	repl := newRepl(inmem.New(), &buffer)
	ctx := context.Background()

	for _, line := range []string{"/vars [", "/vars a b", "/postfix"} {
		err := repl.OneShot(ctx, line)
		if e, ok := err.(*Error); !ok || e.Code != BadArgsErr {
			t.Fatalf("Expected bad args error for %q but got: %v", line, err)
		}
	}
}

func TestDumpPath(t *testing.T) {
	var buffer bytes.Buffer
	repl := newRepl(inmem.New(), &buffer)
	ctx := context.Background()

	file := filepath.Join(t.TempDir(), "vars.json")

	for _, line := range []string{"a = 1", "b = -2", "/dump " + file} {
		if err := repl.OneShot(ctx, line); err != nil {
			t.Fatal(err)
		}
	}

	if buffer.String() != "" {
		t.Errorf("Expected no output but got: %v", buffer.String())
	}

	bs, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("Expected file read to succeed but got: %v", err)
	}

	expectOutput(t, string(bs), "{\"a\":1,\"b\":-2}\n")
}

func TestComplete(t *testing.T) {
	ctx := context.Background()
	store := inmem.NewFromMap(map[string]*big.Int{"alpha": big.NewInt(1)})

	var buffer bytes.Buffer
	repl := newRepl(store, &buffer)

	if err := repl.startCompleter(ctx); err != nil {
		t.Fatal(err)
	}
	defer repl.stopCompleter(ctx)

	// Names committed after the completer started are indexed by the trigger.
	if err := repl.OneShot(ctx, "alphabet = 2"); err != nil {
		t.Fatal(err)
	}
	if err := storage.WriteOne(ctx, store, "another", big.NewInt(3)); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		line     string
		expected []string
	}{
		{line: "al", expected: []string{"alpha", "alphabet"}},
		{line: "1 + a", expected: []string{"1 + alpha", "1 + alphabet", "1 + another"}},
		{line: "/e", expected: []string{"/exit"}},
		{line: "/p", expected: []string{"/postfix", "/pretty"}},
		{line: "zz", expected: []string{}},
		{line: "1 + ", expected: nil},
	}

	for _, tc := range tests {
		t.Run(tc.line, func(t *testing.T) {
			if diff := cmp.Diff(tc.expected, repl.complete(tc.line)); diff != "" {
				t.Fatalf("Unexpected completions (-want, +got):\n%v", diff)
			}
		})
	}
}

func TestStopCompleterUnregisters(t *testing.T) {
	ctx := context.Background()
	store := inmem.New()

	var buffer bytes.Buffer
	repl := newRepl(store, &buffer)

	if err := repl.startCompleter(ctx); err != nil {
		t.Fatal(err)
	}
	repl.stopCompleter(ctx)

	if err := storage.WriteOne(ctx, store, "late", big.NewInt(1)); err != nil {
		t.Fatal(err)
	}

	if got := repl.names.candidates("la"); len(got) != 0 {
		t.Fatalf("Expected no completions after stop but got %v", got)
	}
}
