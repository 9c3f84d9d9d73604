// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

// NormalizeSigns collapses a run of '+' and '-' characters into the single
// sign it denotes: the run is negative iff it holds an odd number of '-'. An
// empty run is positive. Characters other than '+' and '-' are ignored.
func NormalizeSigns(run string) string {
	neg := false
	for i := 0; i < len(run); i++ {
		if run[i] == '-' {
			neg = !neg
		}
	}
	if neg {
		return Sub
	}
	return Add
}

// splitSigns splits s into its leading run of sign characters and the rest.
func splitSigns(s string) (string, string) {
	i := 0
	for i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	return s[:i], s[i:]
}
