// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// InvalidOperationErr indicates the statement is neither an assignment nor
	// a well-formed expression.
	InvalidOperationErr = "calc_invalid_operation_error"

	// SyntaxErr indicates the expression contains unbalanced parentheses.
	SyntaxErr = "calc_syntax_error"

	// InvalidIdentifierErr indicates the target of an assignment is not a
	// pure alphabetic identifier.
	InvalidIdentifierErr = "calc_invalid_identifier_error"

	// InvalidAssignmentErr indicates the right-hand side of an assignment is
	// neither a known identifier nor a signed integer literal.
	InvalidAssignmentErr = "calc_invalid_assignment_error"
)

// IsError returns true if err is an AST error with code.
func IsError(code string, err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// Error represents a single error caught while parsing a statement.
type Error struct {
	Code     string    `json:"code"`
	Message  string    `json:"message"`
	Location *Location `json:"location,omitempty"`
}

func (e *Error) Error() string {

	var prefix string

	if e.Location != nil {
		prefix = fmt.Sprintf("%d: ", e.Location.Offset+1)
	}

	msg := fmt.Sprintf("%v%v: %v", prefix, e.Code, e.Message)

	if e.Location != nil && len(e.Location.Text) > 0 {
		msg += "\n\t" + e.Location.Text
		msg += "\n\t" + strings.Repeat(" ", e.Location.Offset) + "^"
	}

	return msg
}

// NewError returns a new Error object.
func NewError(code string, loc *Location, f string, a ...any) *Error {
	return &Error{
		Code:     code,
		Location: loc,
		Message:  fmt.Sprintf(f, a...),
	}
}
