// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package repl

import (
	"context"
	"slices"
	"sync"

	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/open-policy-agent/smartcalc/storage"
)

// completer indexes command and variable names for tab completion. Variable
// names are added by a commit trigger on the store so names bound by other
// sessions sharing the store are completed too.
type completer struct {
	mtx    sync.Mutex
	trie   *patricia.Trie
	handle storage.TriggerHandle
}

func newCompleter() *completer {
	c := &completer{trie: patricia.NewTrie()}
	for _, cmd := range builtin {
		c.insert("/" + cmd.name)
	}
	return c
}

func (c *completer) insert(name string) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.trie.Insert(patricia.Prefix(name), struct{}{})
}

// candidates returns the indexed names starting with prefix, sorted.
func (c *completer) candidates(prefix string) []string {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	var result []string
	_ = c.trie.VisitSubtree(patricia.Prefix(prefix), func(key patricia.Prefix, _ patricia.Item) error {
		result = append(result, string(key))
		return nil
	})

	slices.Sort(result)
	return result
}

func (c *completer) onCommit(_ context.Context, _ storage.Transaction, event storage.TriggerEvent) {
	for _, d := range event.Data {
		c.insert(d.Name)
	}
}

// startCompleter indexes the variables already bound and registers for
// future commits.
func (r *REPL) startCompleter(ctx context.Context) error {

	r.names = newCompleter()

	vars, err := r.calc.Variables(ctx)
	if err != nil {
		return err
	}

	for _, v := range vars {
		r.names.insert(v.Name)
	}

	store := r.calc.Store()

	return storage.Txn(ctx, store, storage.WriteParams, func(txn storage.Transaction) error {
		handle, err := store.Register(ctx, txn, storage.TriggerConfig{
			OnCommit: r.names.onCommit,
		})
		if err != nil {
			return err
		}
		r.names.handle = handle
		return nil
	})
}

func (r *REPL) stopCompleter(ctx context.Context) {
	if r.names == nil || r.names.handle == nil {
		return
	}
	store := r.calc.Store()
	_ = storage.Txn(ctx, store, storage.WriteParams, func(txn storage.Transaction) error {
		r.names.handle.Unregister(ctx, txn)
		return nil
	})
	r.names.handle = nil
}

// complete returns the completions of the word at the end of line. A line
// starting with '/' and holding no blank completes command names.
func (r *REPL) complete(line string) []string {

	if r.names == nil {
		return nil
	}

	start := len(line)
	for start > 0 && isLetter(line[start-1]) {
		start--
	}

	if start == 1 && line[0] == '/' {
		start = 0
	}

	prefix := line[start:]
	if prefix == "" {
		return nil
	}

	candidates := r.names.candidates(prefix)
	result := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if start > 0 && c[0] == '/' {
			continue
		}
		result = append(result, line[:start]+c)
	}

	return result
}

func isLetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}
