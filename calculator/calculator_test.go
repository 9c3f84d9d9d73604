// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package calculator

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/open-policy-agent/smartcalc/ast"
	"github.com/open-policy-agent/smartcalc/metrics"
	"github.com/open-policy-agent/smartcalc/storage"
	"github.com/open-policy-agent/smartcalc/storage/inmem"
)

// run executes each line in order and returns what the shell would print:
// the value of each expression and the message of each failure.
func run(t *testing.T, c *Calculator, lines ...string) []string {
	t.Helper()
	var out []string
	for _, line := range lines {
		result, err := c.Exec(context.Background(), line)
		switch {
		case err != nil:
			out = append(out, Message(err))
		case result != nil && result.Value != nil:
			out = append(out, result.Value.String())
		}
	}
	return out
}

func TestExec(t *testing.T) {

	tests := []struct {
		note     string
		lines    []string
		expected []string
	}{
		{
			note:     "assignment produces no output",
			lines:    []string{"x = 5"},
			expected: nil,
		},
		{
			note:     "blank lines",
			lines:    []string{"", "   ", "\t"},
			expected: nil,
		},
		{
			note:     "normalized literals",
			lines:    []string{"x = --5", "x", "y = ---5", "y", "z = +++7", "z", "w=-0", "w"},
			expected: []string{"5", "-5", "7", "0"},
		},
		{
			note:     "copy by value",
			lines:    []string{"x = 10", "y = x", "x = 20", "y", "x"},
			expected: []string{"10", "20"},
		},
		{
			note:     "precedence",
			lines:    []string{"2 + 3 * 4", "(2 + 3) * 4"},
			expected: []string{"14", "20"},
		},
		{
			note:     "left associativity",
			lines:    []string{"8 - 3 - 2"},
			expected: []string{"3"},
		},
		{
			note:     "sign runs",
			lines:    []string{"5 - - 3", "5 + 3", "5 - - - 3", "5 -- 3"},
			expected: []string{"8", "8", "2", "8"},
		},
		{
			note:     "unmatched parenthesis",
			lines:    []string{"(1 + 2", "1 + 2)"},
			expected: []string{"Invalid expression", "Invalid expression"},
		},
		{
			note:     "unknown variable",
			lines:    []string{"x + 1", "y = z"},
			expected: []string{"Unknown variable", "Unknown variable"},
		},
		{
			note:     "truncating division",
			lines:    []string{"7 / 2", "-7 / 2"},
			expected: []string{"3", "-3"},
		},
		{
			note:     "arbitrary precision",
			lines:    []string{"99999999999999999999 + 1", "a = 9223372036854775807", "a * a"},
			expected: []string{"100000000000000000000", "85070591730234615847396907784232501249"},
		},
		{
			note:     "idempotent evaluation",
			lines:    []string{"n = 3", "n * (n + 1)", "n * (n + 1)"},
			expected: []string{"12", "12"},
		},
		{
			note:     "division by zero",
			lines:    []string{"1 / 0", "z = 0", "5 / z"},
			expected: []string{"Division by zero", "Division by zero"},
		},
		{
			note:     "invalid identifier",
			lines:    []string{"a2a = 8", "n22 = 1", "x1 = y"},
			expected: []string{"Invalid identifier", "Invalid identifier", "Invalid identifier"},
		},
		{
			note:     "invalid assignment",
			lines:    []string{"a = 7 = 8", "a = 2a", "a = 1 + 2", "a =", "a = - 5"},
			expected: []string{"Invalid assignment", "Invalid assignment", "Invalid assignment", "Invalid assignment", "Invalid assignment"},
		},
		{
			note:     "invalid expressions",
			lines:    []string{"18 22", "2 *", "* 2", "4 */ 2", "()", "2)(3", "2 (3)", "1 $ 2", "x y = 1", "2+2=4", "a+b = 3", "a.b = 1"},
			expected: []string{"Invalid expression", "Invalid expression", "Invalid expression", "Invalid expression", "Invalid expression", "Invalid expression", "Invalid expression", "Invalid expression", "Invalid expression", "Invalid expression", "Invalid expression", "Invalid expression"},
		},
		{
			note:     "case sensitive",
			lines:    []string{"n = 1", "N = 2", "n - N"},
			expected: []string{"-1"},
		},
		{
			note: "example session",
			lines: []string{
				"a = 4", "b = 5", "c = 6",
				"a * 2 + b * 3 + c * (2 + 3)",
				"1 +++ 2 * 3 -- 4",
				"3 *** 5",
				"4 + 6 - 8",
				"11 - 13 + 15",
				"a = 3",
				"a * (4 + 3",
				"d = c",
				"d",
			},
			expected: []string{"53", "11", "Invalid expression", "2", "13", "Invalid expression", "6"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.note, func(t *testing.T) {
			if diff := cmp.Diff(tc.expected, run(t, New(), tc.lines...)); diff != "" {
				t.Fatalf("Unexpected output (-want, +got):\n%v", diff)
			}
		})
	}
}

func TestExecKinds(t *testing.T) {

	tests := []struct {
		line string
		kind Kind
	}{
		{line: "1a = 1", kind: InvalidIdentifier},
		{line: "a = 1b", kind: InvalidAssignment},
		{line: "q", kind: UnknownVariable},
		{line: "(1", kind: SyntaxError},
		{line: "1)", kind: SyntaxError},
		{line: "1 1", kind: InvalidOperation},
		{line: "1 / 0", kind: ArithmeticError},
	}

	for _, tc := range tests {
		t.Run(tc.line, func(t *testing.T) {
			_, err := New().Exec(context.Background(), tc.line)
			if err == nil {
				t.Fatal("Expected error")
			}
			if kind := KindOf(err); kind != tc.kind {
				t.Fatalf("Expected %v but got %v: %v", tc.kind, kind, err)
			}
		})
	}
}

func TestFailedStatementLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	store := inmem.NewFromMap(map[string]*big.Int{"x": big.NewInt(1)})
	c := New(Store(store))

	for _, line := range []string{"x = y", "x = 1a", "x = 2 + 3", "1x = 5"} {
		if _, err := c.Exec(ctx, line); err == nil {
			t.Fatalf("Expected error for %q", line)
		}
	}

	value, err := storage.ReadOne(ctx, store, "x")
	if err != nil {
		t.Fatal(err)
	}
	if value.Int64() != 1 {
		t.Fatalf("Expected x to be unchanged but got %v", value)
	}

	vars, err := c.Variables(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(vars) != 1 {
		t.Fatalf("Expected only x to be bound but got %v", vars)
	}
}

func TestExecResult(t *testing.T) {
	c := New()
	ctx := context.Background()

	result, err := c.Exec(ctx, "  x = -12  ")
	if err != nil {
		t.Fatal(err)
	}
	a, ok := result.Statement.(*ast.Assignment)
	if !ok || a.Name != "x" || a.Value.Value != "-12" || result.Value != nil {
		t.Fatalf("Unexpected assignment result: %+v", result)
	}

	result, err = c.Exec(ctx, "x * 2")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := result.Statement.(*ast.Expr); !ok || result.Value.Int64() != -24 {
		t.Fatalf("Unexpected expression result: %+v", result)
	}

	result, err = c.Exec(ctx, "   ")
	if result != nil || err != nil {
		t.Fatalf("Expected nothing for a blank line but got %v, %v", result, err)
	}
}

func TestVariables(t *testing.T) {
	c := New()
	run(t, c, "b = 2", "a = 1", "C = b")

	vars, err := c.Variables(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	var names, values []string
	for _, v := range vars {
		names = append(names, v.Name)
		values = append(values, v.Value.String())
	}

	if diff := cmp.Diff([]string{"C", "a", "b"}, names); diff != "" {
		t.Fatalf("Unexpected names (-want, +got):\n%v", diff)
	}
	if diff := cmp.Diff([]string{"2", "1", "2"}, values); diff != "" {
		t.Fatalf("Unexpected values (-want, +got):\n%v", diff)
	}
}

func TestPostfix(t *testing.T) {
	c := New()

	postfix, err := c.Postfix("3 + 8 * ((4 + 3) * 2 + 1) - 6 / (2 + 1)")
	if err != nil {
		t.Fatal(err)
	}
	if exp := "3 8 4 3 + 2 * 1 + * + 6 2 1 + / -"; postfix.String() != exp {
		t.Fatalf("Expected %q but got %q", exp, postfix.String())
	}

	if _, err := c.Postfix("x = 1"); err == nil || KindOf(err) != Internal {
		t.Fatalf("Expected not an expression error but got %v", err)
	}

	if _, err := c.Postfix("(1"); KindOf(err) != SyntaxError {
		t.Fatalf("Expected syntax error but got %v", err)
	}
}

func TestMetrics(t *testing.T) {
	m := metrics.New()
	c := New(Metrics(m))
	run(t, c, "x = 1", "x + 1", "x + 1", "1 / 0", "y")

	all := m.All()

	for key, exp := range map[string]uint64{
		"counter_" + metrics.CalcStatements: 5,
		"counter_" + metrics.CalcErrors:     2,
		"counter_" + metrics.CalcCacheHit:   1,
	} {
		if all[key] != exp {
			t.Errorf("Expected %v to be %v but got %v", key, exp, all[key])
		}
	}

	for _, name := range []string{metrics.CalcParse, metrics.CalcEval, metrics.CalcAssign} {
		if _, ok := all["timer_"+name+"_ns"]; !ok {
			t.Errorf("Expected timer %v in %v", name, all)
		}
	}
}

func TestCacheDisabled(t *testing.T) {
	m := metrics.New()
	c := New(Metrics(m), CacheSize(0))
	run(t, c, "1 + 1", "1 + 1")

	if _, ok := m.All()["counter_"+metrics.CalcCacheHit]; ok {
		t.Fatalf("Expected no cache hits but got %v", m.All())
	}
}

func TestSessionID(t *testing.T) {
	if New().Session() == New().Session() {
		t.Fatal("Expected distinct session identifiers")
	}
	if id := New(SessionID("abc")).Session(); id != "abc" {
		t.Fatalf("Expected session abc but got %v", id)
	}
}

func TestSharedStore(t *testing.T) {
	ctx := context.Background()
	store := inmem.New()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := New(Store(store))
			name := strings.Repeat("v", i+1)
			for j := range 20 {
				if _, err := c.Exec(ctx, name+" = "+big.NewInt(int64(j)).String()); err != nil {
					t.Error(err)
					return
				}
				if _, err := c.Exec(ctx, name+" + 1"); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	vars, err := New(Store(store)).Variables(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(vars) != 8 {
		t.Fatalf("Expected 8 variables but got %v", vars)
	}
	for _, v := range vars {
		if v.Value.Int64() != 19 {
			t.Fatalf("Expected %v to be 19 but got %v", v.Name, v.Value)
		}
	}
}

func TestKind(t *testing.T) {
	for _, k := range Kinds() {
		if k.Message() == "" || strings.HasPrefix(k.String(), "kind(") {
			t.Fatalf("Missing name or message for %d", int(k))
		}
	}
	if Kind(99).Message() != "Internal error" {
		t.Fatal("Expected unknown kinds to report an internal error")
	}
}

type recorder struct {
	outcomes []string
}

func (r *recorder) ObserveStatement(outcome string, _ time.Duration) {
	r.outcomes = append(r.outcomes, outcome)
}

func TestObserver(t *testing.T) {
	rec := &recorder{}
	c := New(Observer(rec))
	run(t, c, "x = 1", "", "x / 0", "y", "1 +")

	expected := []string{OutcomeOK, ArithmeticError.String(), UnknownVariable.String(), InvalidOperation.String()}
	if diff := cmp.Diff(expected, rec.outcomes); diff != "" {
		t.Fatalf("Unexpected outcomes (-want, +got):\n%v", diff)
	}
}
