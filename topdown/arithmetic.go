// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package topdown

import (
	"math/big"

	"github.com/open-policy-agent/smartcalc/ast"
)

type arithArity1 func(a *big.Int) (*big.Int, error)
type arithArity2 func(a, b *big.Int) (*big.Int, error)

func arithNeg(a *big.Int) (*big.Int, error) {
	return new(big.Int).Neg(a), nil
}

func arithPlus(a, b *big.Int) (*big.Int, error) {
	return new(big.Int).Add(a, b), nil
}

func arithMinus(a, b *big.Int) (*big.Int, error) {
	return new(big.Int).Sub(a, b), nil
}

func arithMultiply(a, b *big.Int) (*big.Int, error) {
	return new(big.Int).Mul(a, b), nil
}

// arithDivide truncates toward zero.
func arithDivide(a, b *big.Int) (*big.Int, error) {
	if b.Sign() == 0 {
		return nil, errDivideByZero
	}
	return new(big.Int).Quo(a, b), nil
}

var unaryOps = map[string]arithArity1{
	ast.Neg: arithNeg,
}

var binaryOps = map[string]arithArity2{
	ast.Add: arithPlus,
	ast.Sub: arithMinus,
	ast.Mul: arithMultiply,
	ast.Quo: arithDivide,
}
