// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package topdown provides expression evaluation support.
//
// Expressions are evaluated from their postfix form in a single left to right
// pass over an operand stack. Numbers are pushed as they appear, variables are
// resolved against the store inside a read transaction, and operators pop
// their operands (right first, then left) and push the result. All arithmetic
// is performed on arbitrary-precision integers; division truncates toward
// zero.
package topdown
