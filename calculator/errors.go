// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package calculator

import (
	"errors"
	"fmt"

	"github.com/open-policy-agent/smartcalc/ast"
	"github.com/open-policy-agent/smartcalc/storage"
	"github.com/open-policy-agent/smartcalc/topdown"
)

const (
	// InternalErr indicates an unexpected failure inside the calculator.
	InternalErr = "calc_internal_error"

	// NotExpressionErr indicates an expression was required but the statement
	// is an assignment.
	NotExpressionErr = "calc_not_expression_error"
)

// Error is the error type returned by the calculator for failures that do not
// originate in parsing, evaluation or storage.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %v", e.Code, e.Message)
}

// Kind classifies a failed statement.
type Kind int

// The error kinds a statement can fail with. Internal covers everything that
// is not caused by the statement itself.
const (
	Internal Kind = iota
	InvalidIdentifier
	InvalidAssignment
	UnknownVariable
	SyntaxError
	InvalidOperation
	ArithmeticError
)

var kindNames = [...]string{
	Internal:          "internal",
	InvalidIdentifier: "invalid_identifier",
	InvalidAssignment: "invalid_assignment",
	UnknownVariable:   "unknown_variable",
	SyntaxError:       "syntax_error",
	InvalidOperation:  "invalid_operation",
	ArithmeticError:   "arithmetic_error",
}

var kindMessages = [...]string{
	Internal:          "Internal error",
	InvalidIdentifier: "Invalid identifier",
	InvalidAssignment: "Invalid assignment",
	UnknownVariable:   "Unknown variable",
	SyntaxError:       "Invalid expression",
	InvalidOperation:  "Invalid expression",
	ArithmeticError:   "Division by zero",
}

// Kinds returns all error kinds.
func Kinds() []Kind {
	return []Kind{Internal, InvalidIdentifier, InvalidAssignment, UnknownVariable, SyntaxError, InvalidOperation, ArithmeticError}
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Message returns the line the shell prints for a statement failing with k.
func (k Kind) Message() string {
	if k < 0 || int(k) >= len(kindMessages) {
		return kindMessages[Internal]
	}
	return kindMessages[k]
}

// KindOf returns the kind of the error returned by Exec.
func KindOf(err error) Kind {

	var astErr *ast.Error
	if errors.As(err, &astErr) {
		switch astErr.Code {
		case ast.InvalidIdentifierErr:
			return InvalidIdentifier
		case ast.InvalidAssignmentErr:
			return InvalidAssignment
		case ast.SyntaxErr:
			return SyntaxError
		case ast.InvalidOperationErr:
			return InvalidOperation
		}
		return Internal
	}

	var evalErr *topdown.Error
	if errors.As(err, &evalErr) {
		switch evalErr.Code {
		case topdown.UnknownVariableErr:
			return UnknownVariable
		case topdown.ArithmeticErr:
			return ArithmeticError
		}
		return Internal
	}

	if storage.IsNotFound(err) {
		return UnknownVariable
	}

	return Internal
}

// Message returns the single line reported to the user for err.
func Message(err error) string {
	return KindOf(err).Message()
}
