// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package scanner tokenizes calculator statements.
package scanner

import (
	"unicode/utf8"

	"github.com/open-policy-agent/smartcalc/ast/internal/tokens"
)

const eof = -1

// Scanner is used to tokenize a single calculator statement. The scanner is
// permissive: characters outside of the statement grammar are reported as
// tokens.Illegal and it is up to the caller to reject them.
type Scanner struct {
	offset int
	bs     string
	curr   rune
	width  int
}

// Position represents a point in the scanned statement.
type Position struct {
	Offset int // start offset in bytes
	End    int // end offset in bytes
}

// New returns an initialized scanner that will scan through the statement
// text s.
func New(s string) *Scanner {
	scanner := &Scanner{bs: s}
	scanner.next()
	return scanner
}

// String returns the statement being scanned.
func (s *Scanner) String() string {
	return s.bs
}

// Scan will increment the scanners position in the statement and return the
// next token found. Whitespace between tokens is skipped. Once the statement
// is exhausted every call returns tokens.EOF.
func (s *Scanner) Scan() (tokens.Token, Position, string) {

	for isWhitespace(s.curr) {
		s.next()
	}

	pos := Position{Offset: s.offset - s.width}

	var tok tokens.Token
	var lit string

	switch {
	case s.curr == eof:
		tok = tokens.EOF
		pos.Offset = len(s.bs)
	case isDigit(s.curr):
		lit = s.scanWhile(isDigit)
		tok = tokens.Number
	case isLetter(s.curr):
		lit = s.scanWhile(isLetter)
		tok = tokens.Ident
	case s.curr == '+':
		lit = s.scanWhile(func(ch rune) bool { return ch == '+' })
		tok = tokens.Add
	case s.curr == '-':
		lit = s.scanWhile(func(ch rune) bool { return ch == '-' })
		tok = tokens.Sub
	default:
		ch := s.curr
		lit = string(ch)
		s.next()
		switch ch {
		case '*':
			tok = tokens.Mul
		case '/':
			tok = tokens.Quo
		case '(':
			tok = tokens.LParen
		case ')':
			tok = tokens.RParen
		case '=':
			tok = tokens.Assign
		default:
			tok = tokens.Illegal
		}
	}

	pos.End = s.offset - s.width
	if tok == tokens.EOF {
		pos.End = pos.Offset
	}

	return tok, pos, lit
}

func (s *Scanner) scanWhile(f func(rune) bool) string {
	start := s.offset - s.width
	for f(s.curr) {
		s.next()
	}
	return s.bs[start : s.offset-s.width]
}

func (s *Scanner) next() {

	if s.offset >= len(s.bs) {
		s.curr = eof
		s.offset = len(s.bs) + 1
		s.width = 1
		return
	}

	ch, width := rune(s.bs[s.offset]), 1
	if ch >= utf8.RuneSelf {
		ch, width = utf8.DecodeRuneInString(s.bs[s.offset:])
	}

	s.curr = ch
	s.width = width
	s.offset += width
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isWhitespace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}
