// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package runtime

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/smartcalc/calculator"
	"github.com/open-policy-agent/smartcalc/loader"
)

// VariablesError is returned when a binding in the variables file cannot be
// applied.
type VariablesError struct {
	Path string
	Line int
	Kind calculator.Kind
	Err  error
}

func (e *VariablesError) Error() string {
	return fmt.Sprintf("%v:%d: %v", e.Path, e.Line, e.Kind.Message())
}

func (e *VariablesError) Unwrap() error {
	return e.Err
}

// LoadVariables applies the bindings of the variables file in file order, each
// as an ordinary assignment statement. Loading stops at the first binding
// that fails; earlier bindings stay applied.
func (rt *Runtime) LoadVariables(ctx context.Context) error {
	return applyVariables(ctx, rt.Calculator, rt.Params.VariablesFile)
}

func applyVariables(ctx context.Context, calc *calculator.Calculator, path string) error {

	result, err := loader.Variables(path)
	if err != nil {
		return err
	}

	for _, b := range result.Bindings {
		if _, err := calc.Exec(ctx, b.Statement()); err != nil {
			return &VariablesError{
				Path: result.Path,
				Line: b.Line,
				Kind: calculator.KindOf(err),
				Err:  err,
			}
		}
	}

	return nil
}

func (rt *Runtime) onVariablesChanged(ctx context.Context, path string) {
	if err := applyVariables(ctx, rt.Calculator, path); err != nil {
		rt.logger.Error("Failed to reload variables: %v", err)
		return
	}
	rt.logger.WithFields(map[string]any{"path": path}).Info("Reloaded variables.")
}
