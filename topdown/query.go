// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package topdown

import (
	"context"
	"math/big"

	"github.com/open-policy-agent/smartcalc/ast"
	"github.com/open-policy-agent/smartcalc/metrics"
	"github.com/open-policy-agent/smartcalc/storage"
)

// Query provides a configurable interface for performing expression
// evaluation.
type Query struct {
	expr    *ast.Expr
	store   storage.Store
	txn     storage.Transaction
	metrics metrics.Metrics
}

// NewQuery returns a new Query object that can be run.
func NewQuery(expr *ast.Expr) *Query {
	return &Query{
		expr: expr,
	}
}

// WithStore sets the store to use for variable lookups.
func (q *Query) WithStore(store storage.Store) *Query {
	q.store = store
	return q
}

// WithTransaction sets the transaction to use for variable lookups. If no
// transaction is set, Run opens and closes a read transaction on the store.
func (q *Query) WithTransaction(txn storage.Transaction) *Query {
	q.txn = txn
	return q
}

// WithMetrics sets the metrics collection to add evaluation timings to.
func (q *Query) WithMetrics(m metrics.Metrics) *Query {
	q.metrics = m
	return q
}

// Run evaluates the query and returns its integer result.
func (q *Query) Run(ctx context.Context) (*big.Int, error) {

	if q.metrics == nil {
		q.metrics = metrics.New()
	}

	q.metrics.Timer(metrics.CalcEval).Start()
	defer q.metrics.Timer(metrics.CalcEval).Stop()

	if q.store != nil && q.txn == nil {
		txn, err := q.store.NewTransaction(ctx)
		if err != nil {
			return nil, err
		}
		defer q.store.Abort(ctx, txn)
		q.txn = txn
		defer func() { q.txn = nil }()
	}

	e := &eval{
		ctx:   ctx,
		store: q.store,
		txn:   q.txn,
		stack: make([]*big.Int, 0, len(q.expr.Postfix)),
	}

	return e.Run(q.expr.Postfix)
}

// Eval is a convenience function that evaluates expr against the variables
// in store.
func Eval(ctx context.Context, store storage.Store, expr *ast.Expr) (*big.Int, error) {
	return NewQuery(expr).WithStore(store).Run(ctx)
}
