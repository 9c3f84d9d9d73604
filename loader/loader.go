// Copyright 2017 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package loader contains utilities for loading variable files from disk.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Binding is a single variable definition read from a variables file. Value
// is the literal text of the right-hand side: an integer literal or the name
// of another variable.
type Binding struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Line  int    `json:"line"`
}

// Statement returns the assignment statement equivalent to b.
func (b Binding) Statement() string {
	return b.Name + " = " + b.Value
}

// Result represents the result of loading a variables file.
type Result struct {
	Path     string
	Bindings []Binding
}

// Error is returned when a variables file cannot be parsed.
type Error struct {
	Path    string
	Line    int
	Message string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%v:%d: %v", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("%v: %v", e.Path, e.Message)
}

// Variables reads the YAML variables file at path. The file holds a single
// mapping from variable name to value; bindings are returned in file order.
func Variables(path string) (*Result, error) {
	path = filepath.Clean(path)
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	bindings, err := ParseVariables(path, bs)
	if err != nil {
		return nil, err
	}
	return &Result{Path: path, Bindings: bindings}, nil
}

// ParseVariables parses the contents of a variables file. Values are kept as
// written so integers of any size survive.
func ParseVariables(path string, bs []byte) ([]Binding, error) {

	var doc yaml.Node
	if err := yaml.Unmarshal(bs, &doc); err != nil {
		return nil, &Error{Path: path, Message: err.Error()}
	}

	// Empty file.
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return nil, nil
	}

	if root.Kind != yaml.MappingNode {
		return nil, &Error{Path: path, Line: root.Line, Message: "expected a mapping of variable names to values"}
	}

	bindings := make([]Binding, 0, len(root.Content)/2)

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]

		if key.Kind != yaml.ScalarNode {
			return nil, &Error{Path: path, Line: key.Line, Message: "variable name must be a scalar"}
		}

		if value.Kind != yaml.ScalarNode || !isLiteral(value) {
			return nil, &Error{Path: path, Line: value.Line, Message: fmt.Sprintf("value of %v must be an integer or a variable name", key.Value)}
		}

		bindings = append(bindings, Binding{
			Name:  key.Value,
			Value: strings.TrimSpace(value.Value),
			Line:  key.Line,
		})
	}

	return bindings, nil
}

// isLiteral reports whether the scalar holds an integer or a name. Integers
// too large for 64 bits resolve to floats, so those are checked by text.
func isLiteral(n *yaml.Node) bool {
	switch n.Tag {
	case "!!int", "!!str":
		return true
	case "!!float":
		digits := strings.TrimLeft(n.Value, "+-")
		return digits != "" && strings.Trim(digits, "0123456789") == ""
	}
	return false
}
