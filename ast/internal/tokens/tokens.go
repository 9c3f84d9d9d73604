// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package tokens defines the tokens produced by the statement scanner.
package tokens

// Token represents a single statement token for use by the parser.
type Token int

func (t Token) String() string {
	if t < 0 || int(t) >= len(strings) {
		return "unknown"
	}
	return strings[t]
}

// IsAdditive returns true if t is a (possibly collapsed) run of '+' or '-'.
func (t Token) IsAdditive() bool {
	return t == Add || t == Sub
}

// All tokens must be defined here
const (
	Illegal Token = iota
	EOF
	Ident
	Number
	Add
	Sub
	Mul
	Quo
	LParen
	RParen
	Assign
)

var strings = [...]string{
	Illegal: "illegal",
	EOF:     "eof",
	Ident:   "identifier",
	Number:  "number",
	Add:     "plus",
	Sub:     "minus",
	Mul:     "mul",
	Quo:     "quo",
	LParen:  "lparen",
	RParen:  "rparen",
	Assign:  "assign",
}
