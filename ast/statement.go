// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

import (
	"strings"
)

// Statement is either an *Assignment or an *Expr.
type Statement interface {
	statement()
	String() string
}

// Assignment binds the value of Value to the variable Name. Value is either
// a NumberTerm holding a normalized integer literal or a VarTerm naming the
// variable to copy from.
type Assignment struct {
	Name  string `json:"name"`
	Value *Term  `json:"value"`
}

func (*Assignment) statement() {}

func (a *Assignment) String() string {
	return a.Name + " = " + a.Value.String()
}

// ParseStatement classifies the trimmed, non-empty line as an assignment or
// an expression and parses it accordingly. A line is an assignment when the
// text before its first '=' is a single run of letters, digits and
// underscores; such a line is never reinterpreted as an expression.
func ParseStatement(line string) (Statement, error) {
	if name, rhs, ok := splitAssignment(line); ok {
		return parseAssignment(line, name, rhs)
	}
	return ParseExpr(line)
}

// MustParseStatement returns a parsed statement. If an error occurs during
// parsing, panic.
func MustParseStatement(line string) Statement {
	stmt, err := ParseStatement(line)
	if err != nil {
		panic(err)
	}
	return stmt
}

func splitAssignment(line string) (string, string, bool) {
	idx := strings.IndexByte(line, '=')
	if idx < 0 {
		return "", "", false
	}
	name := strings.TrimSpace(line[:idx])
	if !isWord(name) {
		return "", "", false
	}
	return name, strings.TrimSpace(line[idx+1:]), true
}

func parseAssignment(line, name, rhs string) (*Assignment, error) {

	if !IsIdentifier(name) {
		return nil, NewError(InvalidIdentifierErr, NewLocation(line, strings.Index(line, name)), "invalid identifier %q", name)
	}

	offset := strings.IndexByte(line, '=') + 1
	offset += strings.Index(line[offset:], rhs)

	if IsIdentifier(rhs) {
		return &Assignment{Name: name, Value: NewVarTerm(rhs).SetLocation(NewLocation(line, offset))}, nil
	}

	signs, digits := splitSigns(rhs)
	if !isDigits(digits) || !isUniform(signs) {
		return nil, NewError(InvalidAssignmentErr, NewLocation(line, offset), "invalid assignment to %v", name)
	}

	if NormalizeSigns(signs) == Sub {
		digits = Sub + digits
	}

	return &Assignment{Name: name, Value: NewNumberTerm(digits).SetLocation(NewLocation(line, offset))}, nil
}

// IsIdentifier returns true if s is a non-empty run of ASCII letters.
func IsIdentifier(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z') {
			return false
		}
	}
	return true
}

// isWord returns true if s is a non-empty run of ASCII letters, digits and
// underscores.
func isWord(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' || c == '_') {
			return false
		}
	}
	return true
}

// isUniform returns true if every character of s is the same.
func isUniform(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
