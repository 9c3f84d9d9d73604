// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package topdown

import (
	"context"
	"math/big"

	"github.com/open-policy-agent/smartcalc/ast"
	"github.com/open-policy-agent/smartcalc/storage"
)

type eval struct {
	ctx   context.Context
	store storage.Store
	txn   storage.Transaction
	stack []*big.Int
}

func (e *eval) Run(postfix ast.Postfix) (*big.Int, error) {

	for _, term := range postfix {
		var err error
		switch term.Type {
		case ast.NumberTerm:
			err = e.evalNumber(term)
		case ast.VarTerm:
			err = e.evalVar(term)
		case ast.OperatorTerm:
			err = e.evalOperator(term)
		default:
			err = internalErr(term.Location, "unexpected term type %v", term.Type)
		}
		if err != nil {
			return nil, err
		}
	}

	if len(e.stack) != 1 {
		return nil, internalErr(nil, "malformed expression: %d values left on the stack", len(e.stack))
	}

	return e.stack[0], nil
}

func (e *eval) evalNumber(term *ast.Term) error {
	value, ok := new(big.Int).SetString(term.Value, 10)
	if !ok {
		return internalErr(term.Location, "illegal number %q", term.Value)
	}
	e.push(value)
	return nil
}

func (e *eval) evalVar(term *ast.Term) error {
	if e.store == nil {
		return unknownVariableErr(term)
	}
	value, err := e.store.Read(e.ctx, e.txn, term.Value)
	if err != nil {
		if storage.IsNotFound(err) {
			return unknownVariableErr(term)
		}
		return err
	}
	e.push(value)
	return nil
}

func (e *eval) evalOperator(term *ast.Term) error {

	if fn, ok := unaryOps[term.Value]; ok {
		operands, err := e.pop(term, 1)
		if err != nil {
			return err
		}
		result, err := fn(operands[0])
		if err != nil {
			return arithmeticErr(term, err)
		}
		e.push(result)
		return nil
	}

	fn, ok := binaryOps[term.Value]
	if !ok {
		return internalErr(term.Location, "unknown operator %q", term.Value)
	}

	operands, err := e.pop(term, 2)
	if err != nil {
		return err
	}

	result, err := fn(operands[0], operands[1])
	if err != nil {
		return arithmeticErr(term, err)
	}

	e.push(result)
	return nil
}

func (e *eval) push(v *big.Int) {
	e.stack = append(e.stack, v)
}

// pop removes the top n values from the stack and returns them in the order
// they were pushed, i.e., left operand first.
func (e *eval) pop(term *ast.Term, n int) ([]*big.Int, error) {
	if len(e.stack) < n {
		return nil, internalErr(term.Location, "malformed expression: %v needs %d operand(s) but %d available", term.Value, n, len(e.stack))
	}
	operands := make([]*big.Int, n)
	copy(operands, e.stack[len(e.stack)-n:])
	e.stack = e.stack[:len(e.stack)-n]
	return operands, nil
}
