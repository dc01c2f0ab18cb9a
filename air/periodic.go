// Copyright 2020-2024 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package air

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Periodic-column table helpers. An AIR composed of several gadget
// sub-programs activates each of them over its own row window; the helpers
// below assemble the activation masks segment by segment instead of
// scattering magic row indices through constraint code.

// IndexPair maps a column of an additional table (Add) onto a column of the
// table under construction (Org).
type IndexPair struct {
	Add int
	Org int
}

// Stitch appends the mapped additional columns to the columns under
// construction. It is used to plug a gadget's periodic values into the rows
// where that gadget runs.
func Stitch(columns [][]fr.Element, additional [][]fr.Element, indexMap []IndexPair) {
	for _, p := range indexMap {
		if p.Add >= len(additional) {
			panic(fmt.Sprintf("air: no column %d in %d additional columns", p.Add, len(additional)))
		}
		if p.Org >= len(columns) {
			panic(fmt.Sprintf("air: no column %d in %d columns", p.Org, len(columns)))
		}
		columns[p.Org] = append(columns[p.Org], additional[p.Add]...)
	}
}

// Pad extends the indexed columns with padValue up to the given length. It is
// used to deactivate a gadget's masks over row windows where other gadgets
// run.
func Pad(columns [][]fr.Element, indices []int, length int, padValue fr.Element) {
	for _, index := range indices {
		if index >= len(columns) {
			panic(fmt.Sprintf("air: no column %d in %d columns to pad", index, len(columns)))
		}
		if length < len(columns[index]) {
			panic(fmt.Sprintf("air: no room to pad column %d of length %d to %d", index, len(columns[index]), length))
		}
		for len(columns[index]) < length {
			columns[index] = append(columns[index], padValue)
		}
	}
}

// Fill extends the mapped columns up to length by cycling the additional
// columns, preserving row alignment: the value appended at row i is
// additional[i % period]. It is used for masks that repeat within a window,
// such as hash-round masks.
func Fill(columns [][]fr.Element, additional [][]fr.Element, indexMap []IndexPair, length int) {
	for _, p := range indexMap {
		if p.Add >= len(additional) {
			panic(fmt.Sprintf("air: no column %d in %d additional columns to fill from", p.Add, len(additional)))
		}
		if p.Org >= len(columns) {
			panic(fmt.Sprintf("air: no column %d in %d columns to fill", p.Org, len(columns)))
		}
		org := columns[p.Org]
		add := additional[p.Add]
		for i := len(org); i < length; i++ {
			org = append(org, add[i%len(add)])
		}
		columns[p.Org] = org
	}
}

// Mask returns a period-long column that is one at the listed rows and zero
// elsewhere.
func Mask(period int, active ...int) []fr.Element {
	column := make([]fr.Element, period)
	for _, row := range active {
		column[row].SetOne()
	}
	return column
}

// RangeMask returns a period-long column that is one on [start, end) and zero
// elsewhere.
func RangeMask(period, start, end int) []fr.Element {
	column := make([]fr.Element, period)
	for row := start; row < end; row++ {
		column[row].SetOne()
	}
	return column
}
