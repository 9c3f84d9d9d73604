// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package storage

import (
	"context"
	"math/big"
)

// Transaction defines the interface that identifies a consistent snapshot over
// the variable store.
type Transaction interface {
	ID() uint64
}

// Store defines the interface for the calculator's variable store. Variables
// are created or overwritten by writes and are never deleted.
type Store interface {
	Trigger

	// NewTransaction is called to create a new transaction in the store.
	NewTransaction(ctx context.Context, params ...TransactionParams) (Transaction, error)

	// Read is called to fetch the value of the variable called name. The
	// returned value is owned by the caller.
	Read(ctx context.Context, txn Transaction, name string) (*big.Int, error)

	// Write is called to bind the variable called name to value. The value is
	// copied by the store.
	Write(ctx context.Context, txn Transaction, name string, value *big.Int) error

	// List is called to fetch the names of all variables in sorted order.
	List(ctx context.Context, txn Transaction) ([]string, error)

	// Commit is called to finish the transaction. If Commit returns an error, the
	// transaction must be automatically aborted by the Store implementation.
	Commit(ctx context.Context, txn Transaction) error

	// Abort is called to cancel the transaction.
	Abort(ctx context.Context, txn Transaction)
}

// TransactionParams describes a new transaction.
type TransactionParams struct {

	// Write indicates if this transaction will perform any write operations.
	Write bool
}

// WriteParams specifies the TransactionParams for a write transaction.
var WriteParams = TransactionParams{
	Write: true,
}

// Trigger defines the interface that stores implement to register for change
// notifications when the store is changed.
type Trigger interface {
	Register(ctx context.Context, txn Transaction, config TriggerConfig) (TriggerHandle, error)
}

// TriggerConfig contains the trigger registration configuration.
type TriggerConfig struct {

	// OnCommit is invoked when a transaction is successfully committed. The
	// callback is invoked with a handle to the write transaction that
	// successfully committed before other clients see the changes.
	OnCommit func(ctx context.Context, txn Transaction, event TriggerEvent)
}

// TriggerHandle defines the interface that can be used to unregister triggers
// that have been registered on a Store.
type TriggerHandle interface {
	Unregister(ctx context.Context, txn Transaction)
}

// TriggerEvent describes the changes that caused the trigger to be invoked.
type TriggerEvent struct {
	Data []DataEvent
}

// IsZero returns true if the TriggerEvent indicates no changes occurred. This
// function is primarily for test purposes.
func (e TriggerEvent) IsZero() bool {
	return len(e.Data) == 0
}

// DataEvent describes a change to a variable.
type DataEvent struct {
	Name  string
	Value *big.Int
}
