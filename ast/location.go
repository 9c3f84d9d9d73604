// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

// Location records a position in a statement.
type Location struct {
	Text   string `json:"-"`      // The statement the location refers to.
	Offset int    `json:"offset"` // The byte offset of the location in the statement.
}

// NewLocation returns a new Location object.
func NewLocation(text string, offset int) *Location {
	return &Location{Text: text, Offset: offset}
}

// Equal checks if two locations are equal to each other.
func (loc *Location) Equal(other *Location) bool {
	if loc == nil || other == nil {
		return loc == other
	}
	return loc.Offset == other.Offset && loc.Text == other.Text
}
