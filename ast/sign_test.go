// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

import "testing"

func TestNormalizeSigns(t *testing.T) {
	tests := []struct {
		run  string
		want string
	}{
		{"", "+"},
		{"+", "+"},
		{"+++", "+"},
		{"-", "-"},
		{"--", "+"},
		{"---", "-"},
		{"----", "+"},
		{"+-", "-"},
		{"-+-", "+"},
		{"+-+-+-", "-"},
	}

	for _, tc := range tests {
		t.Run(tc.run, func(t *testing.T) {
			if got := NormalizeSigns(tc.run); got != tc.want {
				t.Fatalf("NormalizeSigns(%q): want %v but got %v", tc.run, tc.want, got)
			}
		})
	}
}

func TestSplitSigns(t *testing.T) {
	signs, rest := splitSigns("--+12")
	if signs != "--+" || rest != "12" {
		t.Fatalf("unexpected split: %q %q", signs, rest)
	}
	signs, rest = splitSigns("x")
	if signs != "" || rest != "x" {
		t.Fatalf("unexpected split: %q %q", signs, rest)
	}
}
