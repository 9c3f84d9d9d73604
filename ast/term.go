// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

import "strings"

// Operators that may appear in a postfix sequence. LParen only ever lives on
// the converter's operator stack.
const (
	Add    = "+"
	Sub    = "-"
	Mul    = "*"
	Quo    = "/"
	Neg    = "~"
	LParen = "("
)

var precedence = map[string]int{
	Add:    1,
	Sub:    1,
	Mul:    2,
	Quo:    2,
	Neg:    3,
	LParen: 4,
}

// Precedence returns the binding strength of the operator op. Unknown
// operators have precedence zero.
func Precedence(op string) int {
	return precedence[op]
}

// TermType identifies the kind of element held by a Term.
type TermType int

const (
	// NumberTerm is an integer literal: a digit run, optionally prefixed by a
	// single '-'.
	NumberTerm TermType = iota

	// VarTerm is a reference to a variable by identifier.
	VarTerm

	// OperatorTerm is one of the arithmetic operators.
	OperatorTerm
)

func (t TermType) String() string {
	switch t {
	case NumberTerm:
		return "number"
	case VarTerm:
		return "var"
	case OperatorTerm:
		return "operator"
	}
	return "unknown"
}

// Term is a single element of a postfix sequence or the value of an
// assignment.
type Term struct {
	Type     TermType  `json:"type"`
	Value    string    `json:"value"`
	Location *Location `json:"location,omitempty"`
}

// NewNumberTerm creates a new number term.
func NewNumberTerm(s string) *Term {
	return &Term{Type: NumberTerm, Value: s}
}

// NewVarTerm creates a new variable term.
func NewVarTerm(name string) *Term {
	return &Term{Type: VarTerm, Value: name}
}

// NewOperatorTerm creates a new operator term.
func NewOperatorTerm(op string) *Term {
	return &Term{Type: OperatorTerm, Value: op}
}

// SetLocation updates the term's Location and returns the term itself.
func (term *Term) SetLocation(loc *Location) *Term {
	term.Location = loc
	return term
}

// Equal returns true if this term equals the other term. Location is ignored.
func (term *Term) Equal(other *Term) bool {
	if term == nil || other == nil {
		return term == other
	}
	return term.Type == other.Type && term.Value == other.Value
}

func (term *Term) String() string {
	return term.Value
}

// Postfix is an expression in postfix (reverse polish) order.
type Postfix []*Term

// Equal returns true if both sequences hold equal terms in the same order.
func (p Postfix) Equal(other Postfix) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if !p[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

func (p Postfix) String() string {
	buf := make([]string, len(p))
	for i := range p {
		buf[i] = p[i].String()
	}
	return strings.Join(buf, " ")
}
