// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package topdown

import (
	"errors"
	"math/big"
	"testing"
)

func TestArithDivide(t *testing.T) {

	tests := []struct {
		note     string
		a, b     int64
		expected int64
	}{
		{note: "exact", a: 8, b: 2, expected: 4},
		{note: "truncate", a: 7, b: 2, expected: 3},
		{note: "truncate negative dividend", a: -7, b: 2, expected: -3},
		{note: "truncate negative divisor", a: 7, b: -2, expected: -3},
		{note: "truncate both negative", a: -7, b: -2, expected: 3},
		{note: "zero dividend", a: 0, b: 5, expected: 0},
	}

	for _, tc := range tests {
		t.Run(tc.note, func(t *testing.T) {
			result, err := arithDivide(big.NewInt(tc.a), big.NewInt(tc.b))
			if err != nil {
				t.Fatal(err)
			}
			if result.Int64() != tc.expected {
				t.Fatalf("Expected %d but got %v", tc.expected, result)
			}
		})
	}
}

func TestArithDivideByZero(t *testing.T) {
	if _, err := arithDivide(big.NewInt(1), big.NewInt(0)); !errors.Is(err, errDivideByZero) {
		t.Fatalf("Expected divide by zero but got %v", err)
	}
}

func TestArithOperandsUnchanged(t *testing.T) {
	a, b := big.NewInt(6), big.NewInt(3)
	for op, fn := range binaryOps {
		if _, err := fn(a, b); err != nil {
			t.Fatalf("%v: %v", op, err)
		}
	}
	if _, err := arithNeg(a); err != nil {
		t.Fatal(err)
	}
	if a.Int64() != 6 || b.Int64() != 3 {
		t.Fatalf("Expected operands to be unchanged but got %v, %v", a, b)
	}
}
