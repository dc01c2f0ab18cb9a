// Copyright 2020-2024 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package air

import (
	"math/bits"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Trace is the execution trace: a rectangular grid of field elements, one row
// per step. It is built once per proof by a trace builder and is not mutated
// afterward.
//
// Rows are stored contiguously so that disjoint row ranges can be filled by
// concurrent workers without sharing cells.
type Trace struct {
	width  int
	length int
	data   []fr.Element
}

// NewTrace allocates a zeroed trace. length must be a power of two.
func NewTrace(width, length int) *Trace {
	if width <= 0 {
		panic("air: trace width must be positive")
	}
	if length <= 0 || bits.OnesCount(uint(length)) != 1 {
		panic("air: trace length must be a power of two")
	}
	return &Trace{
		width:  width,
		length: length,
		data:   make([]fr.Element, width*length),
	}
}

// Width returns the number of columns.
func (t *Trace) Width() int { return t.width }

// Length returns the number of rows.
func (t *Trace) Length() int { return t.length }

// Row returns the i-th row as a mutable slice over the trace storage.
func (t *Trace) Row(i int) []fr.Element {
	return t.data[i*t.width : (i+1)*t.width : (i+1)*t.width]
}

// Get returns the cell at (row, column).
func (t *Trace) Get(row, column int) fr.Element {
	return t.data[row*t.width+column]
}

// Set writes the cell at (row, column).
func (t *Trace) Set(row, column int, v fr.Element) {
	t.data[row*t.width+column] = v
}

// CopyRow copies row src into row dst.
func (t *Trace) CopyRow(dst, src int) {
	copy(t.Row(dst), t.Row(src))
}
