// Copyright 2025 The OPA Authors
// SPDX-License-Identifier: Apache-2.0

// Package levenshtein suggests close matches for misspelled names.
package levenshtein

import (
	"iter"
	"slices"

	"github.com/agnivade/levenshtein"
)

// Closest returns the candidates nearest to word that are at most maxDistance
// edits away, sorted. Ties are all returned.
func Closest(word string, maxDistance int, candidates iter.Seq[string]) []string {
	var closest []string
	best := maxDistance + 1
	for c := range candidates {
		d := levenshtein.ComputeDistance(word, c)
		switch {
		case d < best:
			closest = []string{c}
			best = d
		case d == best:
			closest = append(closest, c)
		}
	}
	slices.Sort(closest)
	return closest
}
