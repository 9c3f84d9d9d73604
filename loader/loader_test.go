// Copyright 2017 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseVariables(t *testing.T) {

	tests := []struct {
		note     string
		input    string
		expected []Binding
		errLine  int
		wantErr  bool
	}{
		{
			note:     "empty",
			input:    "",
			expected: nil,
		},
		{
			note:     "null document",
			input:    "~\n",
			expected: nil,
		},
		{
			note: "file order",
			input: `b: 2
a: -12
c: b
`,
			expected: []Binding{
				{Name: "b", Value: "2", Line: 1},
				{Name: "a", Value: "-12", Line: 2},
				{Name: "c", Value: "b", Line: 3},
			},
		},
		{
			note:  "big integers are kept exact",
			input: "n: 123456789012345678901234567890\n",
			expected: []Binding{
				{Name: "n", Value: "123456789012345678901234567890", Line: 1},
			},
		},
		{
			note:  "invalid names are left to the calculator",
			input: "x1: 5\n",
			expected: []Binding{
				{Name: "x1", Value: "5", Line: 1},
			},
		},
		{note: "not a mapping", input: "- a\n- b\n", wantErr: true, errLine: 1},
		{note: "nested value", input: "a: 1\nb:\n  c: 1\n", wantErr: true, errLine: 3},
		{note: "float", input: "a: 1.5\n", wantErr: true, errLine: 1},
		{note: "bool", input: "a: true\n", wantErr: true, errLine: 1},
		{note: "syntax", input: "a: [\n", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.note, func(t *testing.T) {
			result, err := ParseVariables("vars.yaml", []byte(tc.input))
			if tc.wantErr {
				var e *Error
				if !errors.As(err, &e) {
					t.Fatalf("Expected loader error but got: %v", err)
				}
				if tc.errLine != 0 && e.Line != tc.errLine {
					t.Fatalf("Expected error on line %d but got: %v", tc.errLine, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.expected, result); diff != "" {
				t.Fatalf("Unexpected bindings (-want, +got):\n%v", diff)
			}
		})
	}
}

func TestVariables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vars.yaml")
	if err := os.WriteFile(path, []byte("a: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := Variables(path)
	if err != nil {
		t.Fatal(err)
	}

	if result.Path != path || len(result.Bindings) != 1 || result.Bindings[0].Statement() != "a = 1" {
		t.Fatalf("Unexpected result: %+v", result)
	}
}
