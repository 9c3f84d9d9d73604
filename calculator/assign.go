// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package calculator

import (
	"context"

	"github.com/open-policy-agent/smartcalc/ast"
	"github.com/open-policy-agent/smartcalc/metrics"
	"github.com/open-policy-agent/smartcalc/storage"
	"github.com/open-policy-agent/smartcalc/topdown"
)

// assign resolves the value of a and binds it inside one write transaction.
// The value is resolved by evaluating the single term so that a copy from an
// unbound variable fails the same way an expression would. Nothing is written
// when resolution fails.
func (c *Calculator) assign(ctx context.Context, a *ast.Assignment) error {

	c.metrics.Timer(metrics.CalcAssign).Start()
	defer c.metrics.Timer(metrics.CalcAssign).Stop()

	return storage.Txn(ctx, c.store, storage.WriteParams, func(txn storage.Transaction) error {
		value, err := topdown.NewQuery(&ast.Expr{Text: a.Value.Value, Postfix: ast.Postfix{a.Value}}).
			WithStore(c.store).
			WithTransaction(txn).
			WithMetrics(c.metrics).
			Run(ctx)
		if err != nil {
			return err
		}
		return c.store.Write(ctx, txn, a.Name, value)
	})
}
