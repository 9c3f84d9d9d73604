// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package inmem

import (
	"math/big"

	"github.com/open-policy-agent/smartcalc/storage"
)

// transaction implements the low-level read/write operations on the in-memory
// store and contains the state required for pending transactions.
//
// For write transactions, the struct contains the set of updates performed by
// write operations in the transaction, in the order they were first written.
// Writing the same variable twice replaces the pending update.
//
// Read transactions do not require any special handling and simply passthrough
// to the underlying store. Read transactions do not support upgrade.
type transaction struct {
	xid     uint64
	write   bool
	stale   bool
	db      *store
	order   []string
	updates map[string]*big.Int
}

func newTransaction(xid uint64, write bool, db *store) *transaction {
	return &transaction{
		xid:   xid,
		write: write,
		db:    db,
	}
}

func (txn *transaction) ID() uint64 {
	return txn.xid
}

func (txn *transaction) Write(name string, value *big.Int) error {

	if !txn.write {
		return &storage.Error{
			Code:    storage.InvalidTransactionErr,
			Message: "data write during read transaction",
		}
	}

	if txn.updates == nil {
		txn.updates = map[string]*big.Int{}
	}

	if _, ok := txn.updates[name]; !ok {
		txn.order = append(txn.order, name)
	}

	txn.updates[name] = value
	return nil
}

func (txn *transaction) Read(name string) (*big.Int, bool) {
	if txn.write {
		if value, ok := txn.updates[name]; ok {
			return value, true
		}
	}
	value, ok := txn.db.data[name]
	return value, ok
}

func (txn *transaction) Names() []string {
	names := make([]string, 0, len(txn.db.data)+len(txn.updates))
	for name := range txn.db.data {
		names = append(names, name)
	}
	for _, name := range txn.order {
		if _, ok := txn.db.data[name]; !ok {
			names = append(names, name)
		}
	}
	return names
}

// Commit applies the pending updates to the store and returns the event
// describing them.
func (txn *transaction) Commit() storage.TriggerEvent {
	var event storage.TriggerEvent
	for _, name := range txn.order {
		value := txn.updates[name]
		txn.db.data[name] = value
		event.Data = append(event.Data, storage.DataEvent{
			Name:  name,
			Value: new(big.Int).Set(value),
		})
	}
	return event
}
