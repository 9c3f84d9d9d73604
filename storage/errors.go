// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package storage

import (
	"errors"
	"fmt"
)

const (
	// InternalErr indicates an unknown, internal error has occurred.
	InternalErr = "storage_internal_error"

	// NotFoundErr indicates the variable used in the storage operation is not
	// bound.
	NotFoundErr = "storage_not_found_error"

	// InvalidTransactionErr indicates a write was attempted in a read-only
	// transaction or the transaction was already closed.
	InvalidTransactionErr = "storage_invalid_txn_error"
)

// Error is the error type returned by the storage layer.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (err *Error) Error() string {
	if err.Message != "" {
		return fmt.Sprintf("%v: %v", err.Code, err.Message)
	}
	return err.Code
}

// IsNotFound returns true if this error is a NotFoundErr.
func IsNotFound(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == NotFoundErr
	}
	return false
}

// IsInvalidTransaction returns true if this error is an InvalidTransactionErr.
func IsInvalidTransaction(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == InvalidTransactionErr
	}
	return false
}

// NewNotFoundError returns a new NotFoundErr for the variable called name.
func NewNotFoundError(name string) *Error {
	return &Error{
		Code:    NotFoundErr,
		Message: fmt.Sprintf("variable %v is not defined", name),
	}
}
