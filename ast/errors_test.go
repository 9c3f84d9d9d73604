// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

import (
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {

	err := NewError(InvalidOperationErr, NewLocation("1 + %", 4), "blarg")

	expected := `5: calc_invalid_operation_error: blarg
	1 + %
	    ^`

	if result := err.Error(); result != expected {
		t.Errorf("Expected %v but got: %v", expected, result)
	}

	err = NewError(SyntaxErr, nil, "blah")
	expected = `calc_syntax_error: blah`

	if result := err.Error(); result != expected {
		t.Errorf("Expected %v but got: %v", expected, result)
	}
}

func TestIsError(t *testing.T) {

	err := fmt.Errorf("wrapped: %w", NewError(SyntaxErr, nil, "unmatched"))

	if !IsError(SyntaxErr, err) {
		t.Fatal("expected wrapped syntax error to match")
	}

	if IsError(InvalidOperationErr, err) {
		t.Fatal("expected code mismatch")
	}

	if IsError(SyntaxErr, fmt.Errorf("plain")) {
		t.Fatal("expected non-AST error not to match")
	}
}
