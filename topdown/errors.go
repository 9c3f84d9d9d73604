// Copyright 2017 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package topdown

import (
	"errors"
	"fmt"

	"github.com/open-policy-agent/smartcalc/ast"
)

// Error is the error type returned by Eval when an evaluation error occurs.
type Error struct {
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	Location *ast.Location `json:"location,omitempty"`
}

const (

	// InternalErr represents an unknown evaluation error. Internal errors
	// indicate a malformed postfix sequence was passed to the evaluator.
	InternalErr string = "eval_internal_error"

	// UnknownVariableErr indicates the expression refers to a variable that
	// has no value in the store.
	UnknownVariableErr string = "eval_unknown_variable_error"

	// ArithmeticErr indicates an operation has no integer result, i.e.,
	// division by zero.
	ArithmeticErr string = "eval_arithmetic_error"
)

var errDivideByZero = errors.New("divide by zero")

// IsError returns true if the err is an Error.
func IsError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

// IsUnknownVariable returns true if the err is an UnknownVariableErr.
func IsUnknownVariable(err error) bool {
	return hasCode(err, UnknownVariableErr)
}

// IsArithmetic returns true if the err is an ArithmeticErr.
func IsArithmetic(err error) bool {
	return hasCode(err, ArithmeticErr)
}

func hasCode(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

func (e *Error) Error() string {

	msg := fmt.Sprintf("%v: %v", e.Code, e.Message)

	if e.Location != nil {
		msg = fmt.Sprintf("%d: %v", e.Location.Offset+1, msg)
	}

	return msg
}

func unknownVariableErr(term *ast.Term) error {
	return &Error{
		Code:     UnknownVariableErr,
		Location: term.Location,
		Message:  fmt.Sprintf("%v is not defined", term.Value),
	}
}

func arithmeticErr(term *ast.Term, err error) error {
	return &Error{
		Code:     ArithmeticErr,
		Location: term.Location,
		Message:  fmt.Sprintf("%v: %v", term.Value, err),
	}
}

func internalErr(loc *ast.Location, f string, a ...any) error {
	return &Error{
		Code:     InternalErr,
		Location: loc,
		Message:  fmt.Sprintf(f, a...),
	}
}
