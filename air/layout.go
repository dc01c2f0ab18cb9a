// Copyright 2020-2024 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package air

import "fmt"

// Range is a half-open interval [Start, End) of column or constraint-slot
// indices owned by a single gadget.
type Range struct {
	Start int
	End   int
}

// Len returns the number of indices in the range.
func (r Range) Len() int { return r.End - r.Start }

// At returns the i-th index of the range.
func (r Range) At(i int) int {
	if i < 0 || i >= r.Len() {
		panic(fmt.Sprintf("air: index %d out of range of length %d", i, r.Len()))
	}
	return r.Start + i
}

// Layout hands out disjoint index ranges. It is used both for trace columns
// and for constraint slots, so that gadgets composed into a larger AIR cannot
// alias each other's cells or evaluation slots.
type Layout struct {
	next  int
	names []string
}

// NewLayout returns an empty layout.
func NewLayout() *Layout {
	return &Layout{}
}

// Alloc reserves n consecutive indices under the given name and returns their
// range. Reusing a name is a programming error.
func (l *Layout) Alloc(name string, n int) Range {
	if n <= 0 {
		panic("air: allocation size must be positive")
	}
	for _, existing := range l.names {
		if existing == name {
			panic(fmt.Sprintf("air: duplicate layout allocation %q", name))
		}
	}
	l.names = append(l.names, name)
	r := Range{Start: l.next, End: l.next + n}
	l.next = r.End
	return r
}

// Width returns the total number of indices allocated so far.
func (l *Layout) Width() int { return l.next }
