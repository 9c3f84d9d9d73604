// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package calculator exposes the statement-at-a-time evaluation session used by
// the shell and the command line interface.
package calculator

import (
	"context"
	"math/big"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/open-policy-agent/smartcalc/ast"
	"github.com/open-policy-agent/smartcalc/logging"
	"github.com/open-policy-agent/smartcalc/metrics"
	"github.com/open-policy-agent/smartcalc/storage"
	"github.com/open-policy-agent/smartcalc/storage/inmem"
	"github.com/open-policy-agent/smartcalc/topdown"
)

// DefaultCacheSize is the number of parsed statements kept by a Calculator
// unless configured otherwise.
const DefaultCacheSize = 128

// Calculator evaluates statements against a variable store. A Calculator
// processes one statement at a time; the store may be shared with other
// calculators.
type Calculator struct {
	store     storage.Store
	logger    logging.Logger
	metrics   metrics.Metrics
	cacheSize int
	cache     *lru.Cache[string, ast.Statement]
	session   string
	observer  StatementObserver
}

// StatementObserver is notified of the outcome of every executed statement.
// The outcome is "ok" or the name of the error kind.
type StatementObserver interface {
	ObserveStatement(outcome string, d time.Duration)
}

// OutcomeOK is the outcome reported for statements that succeed.
const OutcomeOK = "ok"

// Result is the outcome of a successfully executed statement. Value is nil
// for assignments.
type Result struct {
	Statement ast.Statement `json:"statement"`
	Value     *big.Int      `json:"value,omitempty"`
}

// Variable is a named value held by the store.
type Variable struct {
	Name  string   `json:"name"`
	Value *big.Int `json:"value"`
}

// Store sets the variable store. By default each Calculator owns a new
// in-memory store.
func Store(s storage.Store) func(*Calculator) {
	return func(c *Calculator) {
		c.store = s
	}
}

// Logger sets the logger used to trace statements.
func Logger(l logging.Logger) func(*Calculator) {
	return func(c *Calculator) {
		c.logger = l
	}
}

// Metrics sets the metrics collection statement timings are recorded in.
func Metrics(m metrics.Metrics) func(*Calculator) {
	return func(c *Calculator) {
		c.metrics = m
	}
}

// CacheSize sets the number of parsed statements to keep. Zero or a negative
// size disables the cache.
func CacheSize(n int) func(*Calculator) {
	return func(c *Calculator) {
		c.cacheSize = n
	}
}

// Observer sets the observer notified of statement outcomes.
func Observer(o StatementObserver) func(*Calculator) {
	return func(c *Calculator) {
		c.observer = o
	}
}

// SessionID sets the identifier attached to log records.
func SessionID(id string) func(*Calculator) {
	return func(c *Calculator) {
		c.session = id
	}
}

// New returns a new Calculator configured with options.
func New(options ...func(*Calculator)) *Calculator {

	c := &Calculator{
		cacheSize: DefaultCacheSize,
	}

	for _, option := range options {
		option(c)
	}

	if c.store == nil {
		c.store = inmem.New()
	}

	if c.logger == nil {
		c.logger = logging.NewNoOpLogger()
	}

	if c.metrics == nil {
		c.metrics = metrics.NoOp()
	}

	if c.session == "" {
		c.session = uuid.NewString()
	}

	if c.cacheSize > 0 {
		// lru.New only fails for non-positive sizes.
		c.cache, _ = lru.New[string, ast.Statement](c.cacheSize)
	}

	c.logger = c.logger.WithFields(map[string]any{"session": c.session})

	return c
}

// Session returns the identifier of this calculator's session.
func (c *Calculator) Session() string {
	return c.session
}

// Store returns the variable store the calculator reads and writes.
func (c *Calculator) Store() storage.Store {
	return c.store
}

// Exec parses and executes a single statement. Surrounding whitespace is
// ignored and a blank line yields a nil result and no error. A failed
// statement leaves the store unchanged; use KindOf to classify the error.
func (c *Calculator) Exec(ctx context.Context, line string) (*Result, error) {

	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}

	c.metrics.Counter(metrics.CalcStatements).Incr()

	t0 := time.Now()
	result, err := c.exec(ctx, line)
	if err != nil {
		kind := KindOf(err).String()
		c.observe(kind, time.Since(t0))
		c.metrics.Counter(metrics.CalcErrors).Incr()
		c.logger.WithFields(map[string]any{"line": line, "kind": kind}).Debug("Statement failed: %v", err)
		return nil, err
	}

	c.observe(OutcomeOK, time.Since(t0))

	c.logger.WithFields(map[string]any{"line": line}).Debug("Statement executed.")

	return result, nil
}

func (c *Calculator) observe(outcome string, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveStatement(outcome, d)
	}
}

func (c *Calculator) exec(ctx context.Context, line string) (*Result, error) {

	stmt, err := c.parse(line)
	if err != nil {
		return nil, err
	}

	switch stmt := stmt.(type) {
	case *ast.Assignment:
		if err := c.assign(ctx, stmt); err != nil {
			return nil, err
		}
		return &Result{Statement: stmt}, nil
	case *ast.Expr:
		value, err := topdown.NewQuery(stmt).WithStore(c.store).WithMetrics(c.metrics).Run(ctx)
		if err != nil {
			return nil, err
		}
		c.metrics.Histogram(metrics.CalcResultBits).Update(int64(value.BitLen()))
		return &Result{Statement: stmt, Value: value}, nil
	default:
		return nil, &Error{Code: InternalErr, Message: "unknown statement type"}
	}
}

// Parse parses a single statement without executing it.
func (c *Calculator) Parse(line string) (ast.Statement, error) {
	return c.parse(strings.TrimSpace(line))
}

// Parsed statements are immutable, so they are cached by line.
func (c *Calculator) parse(line string) (ast.Statement, error) {

	if c.cache != nil {
		if stmt, ok := c.cache.Get(line); ok {
			c.metrics.Counter(metrics.CalcCacheHit).Incr()
			return stmt, nil
		}
	}

	c.metrics.Timer(metrics.CalcParse).Start()
	stmt, err := ast.ParseStatement(line)
	c.metrics.Timer(metrics.CalcParse).Stop()

	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Add(line, stmt)
	}

	return stmt, nil
}

// Postfix returns the postfix form of the expression s.
func (c *Calculator) Postfix(s string) (ast.Postfix, error) {
	stmt, err := c.parse(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	expr, ok := stmt.(*ast.Expr)
	if !ok {
		return nil, &Error{Code: NotExpressionErr, Message: "statement is an assignment"}
	}
	return expr.Postfix, nil
}

// Variables returns the variables currently bound in the store, sorted by
// name.
func (c *Calculator) Variables(ctx context.Context) ([]Variable, error) {

	var result []Variable

	err := storage.Txn(ctx, c.store, storage.TransactionParams{}, func(txn storage.Transaction) error {
		names, err := c.store.List(ctx, txn)
		if err != nil {
			return err
		}
		slices.Sort(names)
		result = make([]Variable, 0, len(names))
		for _, name := range names {
			value, err := c.store.Read(ctx, txn, name)
			if err != nil {
				return err
			}
			result = append(result, Variable{Name: name, Value: value})
		}
		return nil
	})

	return result, err
}
