// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

import (
	"github.com/open-policy-agent/smartcalc/ast/internal/scanner"
	"github.com/open-policy-agent/smartcalc/ast/internal/tokens"
)

// Expr is an arithmetic expression statement converted to postfix order.
type Expr struct {
	Text    string  `json:"text"`
	Postfix Postfix `json:"postfix"`
}

func (*Expr) statement() {}

func (e *Expr) String() string {
	return e.Text
}

// ParseExpr converts the infix expression s into postfix order using the
// shunting-yard algorithm. The conversion also validates the structure of the
// expression: operands and operators must alternate and parentheses must
// balance. A sequence returned without error can always be evaluated without
// running out of operands.
func ParseExpr(s string) (*Expr, error) {
	p := newParser(s)
	postfix, err := p.convert()
	if err != nil {
		return nil, err
	}
	return &Expr{Text: s, Postfix: postfix}, nil
}

// MustParseExpr returns a parsed expression. If an error occurs during
// parsing, panic.
func MustParseExpr(s string) *Expr {
	e, err := ParseExpr(s)
	if err != nil {
		panic(err)
	}
	return e
}

type token struct {
	tok tokens.Token
	pos scanner.Position
	lit string
}

type parser struct {
	s      *scanner.Scanner
	peeked *token
	ops    []*Term
	out    Postfix
}

func newParser(s string) *parser {
	return &parser{s: scanner.New(s)}
}

func (p *parser) next() token {
	if p.peeked != nil {
		t := *p.peeked
		p.peeked = nil
		return t
	}
	tok, pos, lit := p.s.Scan()
	return token{tok: tok, pos: pos, lit: lit}
}

func (p *parser) peek() token {
	if p.peeked == nil {
		t := p.next()
		p.peeked = &t
	}
	return *p.peeked
}

func (p *parser) loc(offset int) *Location {
	return NewLocation(p.s.String(), offset)
}

func (p *parser) convert() (Postfix, error) {

	// Operands and operators must alternate. When expectOperand is set, the
	// next token must start an operand: a number, a variable, '(' or a unary
	// sign run.
	expectOperand := true

	for {
		t := p.next()

		switch t.tok {
		case tokens.EOF:
			if expectOperand {
				return nil, NewError(InvalidOperationErr, p.loc(t.pos.Offset), "unexpected end of expression")
			}
			for len(p.ops) > 0 {
				op := p.pop()
				if op.Value == LParen {
					return nil, NewError(SyntaxErr, op.Location, "unmatched parenthesis")
				}
				p.out = append(p.out, op)
			}
			return p.out, nil

		case tokens.Number, tokens.Ident:
			if !expectOperand {
				return nil, NewError(InvalidOperationErr, p.loc(t.pos.Offset), "unexpected %v: missing operator", t.tok)
			}
			term := NewVarTerm(t.lit)
			if t.tok == tokens.Number {
				term = NewNumberTerm(t.lit)
			}
			p.out = append(p.out, term.SetLocation(p.loc(t.pos.Offset)))
			expectOperand = false

		case tokens.Add, tokens.Sub:
			run := t.lit
			for p.peek().tok.IsAdditive() {
				run += p.next().lit
			}
			sign := NormalizeSigns(run)
			if expectOperand {
				// Sign run in operand position, e.g., "-7 / 2" or "2 * -x".
				if sign == Sub {
					p.push(NewOperatorTerm(Neg).SetLocation(p.loc(t.pos.Offset)))
				}
				continue
			}
			p.pushBinary(NewOperatorTerm(sign).SetLocation(p.loc(t.pos.Offset)))
			expectOperand = true

		case tokens.Mul, tokens.Quo:
			if expectOperand {
				return nil, NewError(InvalidOperationErr, p.loc(t.pos.Offset), "unexpected %v: missing left operand", t.tok)
			}
			p.pushBinary(NewOperatorTerm(t.lit).SetLocation(p.loc(t.pos.Offset)))
			expectOperand = true

		case tokens.LParen:
			if !expectOperand {
				return nil, NewError(InvalidOperationErr, p.loc(t.pos.Offset), "unexpected %v: missing operator", t.tok)
			}
			p.push(NewOperatorTerm(LParen).SetLocation(p.loc(t.pos.Offset)))

		case tokens.RParen:
			if !p.hasOpenParen() {
				return nil, NewError(SyntaxErr, p.loc(t.pos.Offset), "unmatched parenthesis")
			}
			if expectOperand {
				return nil, NewError(InvalidOperationErr, p.loc(t.pos.Offset), "unexpected %v: missing operand", t.tok)
			}
			for {
				op := p.pop()
				if op.Value == LParen {
					break
				}
				p.out = append(p.out, op)
			}

		default:
			return nil, NewError(InvalidOperationErr, p.loc(t.pos.Offset), "unexpected %q", t.lit)
		}
	}
}

// pushBinary places a binary operator on the operator stack. Operators of
// greater or equal precedence are moved to the output first so that equal
// precedence operators associate to the left.
func (p *parser) pushBinary(op *Term) {

	if len(p.ops) == 0 || p.top().Value == LParen {
		p.push(op)
		return
	}

	prec := Precedence(op.Value)

	if prec > Precedence(p.top().Value) {
		p.push(op)
		return
	}

	for len(p.ops) > 0 && p.top().Value != LParen && Precedence(p.top().Value) >= prec {
		p.out = append(p.out, p.pop())
	}

	p.push(op)
}

func (p *parser) hasOpenParen() bool {
	for i := len(p.ops) - 1; i >= 0; i-- {
		if p.ops[i].Value == LParen {
			return true
		}
	}
	return false
}

func (p *parser) push(op *Term) {
	p.ops = append(p.ops, op)
}

func (p *parser) top() *Term {
	return p.ops[len(p.ops)-1]
}

func (p *parser) pop() *Term {
	op := p.top()
	p.ops = p.ops[:len(p.ops)-1]
	return op
}
