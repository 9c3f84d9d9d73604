// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package inmem implements an in-memory version of the variable store.
//
// Write transactions are serialized; read transactions run concurrently with
// each other and with a pending write. Writes are buffered in the transaction
// and only become visible to readers when the transaction commits.
package inmem

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/open-policy-agent/smartcalc/storage"
)

// New returns an empty in-memory store.
func New() storage.Store {
	return &store{
		data:     map[string]*big.Int{},
		triggers: map[*handle]storage.TriggerConfig{},
	}
}

// NewFromMap returns a new in-memory store initialized with the supplied
// variables.
func NewFromMap(vars map[string]*big.Int) storage.Store {
	db := New()
	ctx := context.Background()
	txn := storage.NewTransactionOrDie(ctx, db, storage.WriteParams)
	for name, value := range vars {
		if err := db.Write(ctx, txn, name, value); err != nil {
			panic(err)
		}
	}
	if err := db.Commit(ctx, txn); err != nil {
		panic(err)
	}
	return db
}

type store struct {
	rmu      sync.RWMutex                      // reader-writer lock
	wmu      sync.Mutex                        // writer lock
	xid      uint64                            // last generated transaction id
	data     map[string]*big.Int               // committed variables
	triggers map[*handle]storage.TriggerConfig // registered triggers
}

type handle struct {
	db *store
}

func (db *store) NewTransaction(_ context.Context, params ...storage.TransactionParams) (storage.Transaction, error) {
	var write bool
	if len(params) > 0 {
		write = params[0].Write
	}
	xid := atomic.AddUint64(&db.xid, uint64(1))
	if write {
		db.wmu.Lock()
	} else {
		db.rmu.RLock()
	}
	return newTransaction(xid, write, db), nil
}

func (db *store) Commit(ctx context.Context, txn storage.Transaction) error {
	underlying, err := db.underlying(txn)
	if err != nil {
		return err
	}
	if underlying.write {
		db.rmu.Lock()
		event := underlying.Commit()
		db.runOnCommitTriggers(ctx, txn, event)
		// Mark the transaction stale after executing triggers so they can
		// perform reads if needed.
		underlying.stale = true
		db.rmu.Unlock()
		db.wmu.Unlock()
	} else {
		underlying.stale = true
		db.rmu.RUnlock()
	}
	return nil
}

func (db *store) Abort(_ context.Context, txn storage.Transaction) {
	underlying, err := db.underlying(txn)
	if err != nil {
		panic(err)
	}
	underlying.stale = true
	if underlying.write {
		db.wmu.Unlock()
	} else {
		db.rmu.RUnlock()
	}
}

func (db *store) Read(_ context.Context, txn storage.Transaction, name string) (*big.Int, error) {
	underlying, err := db.underlying(txn)
	if err != nil {
		return nil, err
	}
	value, ok := underlying.Read(name)
	if !ok {
		return nil, storage.NewNotFoundError(name)
	}
	return new(big.Int).Set(value), nil
}

func (db *store) Write(_ context.Context, txn storage.Transaction, name string, value *big.Int) error {
	underlying, err := db.underlying(txn)
	if err != nil {
		return err
	}
	if value == nil {
		return &storage.Error{
			Code:    storage.InternalErr,
			Message: fmt.Sprintf("nil value for variable %v", name),
		}
	}
	return underlying.Write(name, new(big.Int).Set(value))
}

func (db *store) List(_ context.Context, txn storage.Transaction) ([]string, error) {
	underlying, err := db.underlying(txn)
	if err != nil {
		return nil, err
	}
	names := underlying.Names()
	sort.Strings(names)
	return names, nil
}

func (db *store) Register(_ context.Context, txn storage.Transaction, config storage.TriggerConfig) (storage.TriggerHandle, error) {
	underlying, err := db.underlying(txn)
	if err != nil {
		return nil, err
	}
	if !underlying.write {
		return nil, &storage.Error{
			Code:    storage.InvalidTransactionErr,
			Message: "triggers must be registered with a write transaction",
		}
	}
	h := &handle{db}
	db.triggers[h] = config
	return h, nil
}

func (h *handle) Unregister(_ context.Context, txn storage.Transaction) {
	underlying, err := h.db.underlying(txn)
	if err != nil {
		panic(err)
	}
	if !underlying.write {
		panic(&storage.Error{
			Code:    storage.InvalidTransactionErr,
			Message: "triggers must be unregistered with a write transaction",
		})
	}
	delete(h.db.triggers, h)
}

func (db *store) runOnCommitTriggers(ctx context.Context, txn storage.Transaction, event storage.TriggerEvent) {
	if event.IsZero() {
		return
	}
	for _, t := range db.triggers {
		t.OnCommit(ctx, txn, event)
	}
}

func (db *store) underlying(txn storage.Transaction) (*transaction, error) {
	underlying, ok := txn.(*transaction)
	if !ok {
		return nil, &storage.Error{
			Code:    storage.InvalidTransactionErr,
			Message: fmt.Sprintf("unexpected transaction type %T", txn),
		}
	}
	if underlying.db != db {
		return nil, &storage.Error{
			Code:    storage.InvalidTransactionErr,
			Message: "unknown transaction",
		}
	}
	if underlying.stale {
		return nil, &storage.Error{
			Code:    storage.InvalidTransactionErr,
			Message: "stale transaction",
		}
	}
	return underlying, nil
}
