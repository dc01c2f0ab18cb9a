// Copyright 2020-2024 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package rangecheck proves that a field element fits in 64 bits by
// decomposing it, most significant bit first, into a bit column and an
// accumulator column.
//
// Over a window of NumBits rows the accumulator is seeded with the first bit
// and doubled-and-added on every following row, so that after the last row it
// holds the decomposed value. Tying the final accumulator to the value under
// proof is left to the caller.
package rangecheck

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/zkledger/air"
)

// NumBits is the width of the proven range.
const NumBits = 64

// TRACE
// -----------------------------------------------------------------------------

// Fill writes the decomposition of value into the first NumBits rows of the
// bit and accumulator columns. Rows beyond the window are left untouched.
func Fill(bits, acc []fr.Element, value uint64) {
	view := bitset.From([]uint64{value})
	var prev fr.Element
	for row := 0; row < NumBits; row++ {
		bits[row].SetZero()
		if view.Test(uint(NumBits - 1 - row)) {
			bits[row].SetOne()
		}
		acc[row].Double(&prev)
		acc[row].Add(&acc[row], &bits[row])
		prev = acc[row]
	}
}

// CONSTRAINTS
// -----------------------------------------------------------------------------

// EnforceBit enforces, when flag is one, that bit is binary. It contributes
// to result slot index.
func EnforceBit(result []fr.Element, index int, bit, flag fr.Element) {
	air.AggConstraint(result, index, flag, air.IsBinary(bit))
}

// EnforceInit enforces, when flag is one, that the accumulator is seeded with
// the first bit. Meant to be activated on the first row of the window. It
// contributes to result slot index.
func EnforceInit(result []fr.Element, index int, bit, acc, flag fr.Element) {
	air.AggConstraint(result, index, flag, air.AreEqual(acc, bit))
}

// EnforceStep enforces, when flag is one, the double-and-add update
// nextAcc == 2*acc + nextBit. Meant to be activated on all but the last row
// of the window. It contributes to result slot index.
func EnforceStep(result []fr.Element, index int, acc, nextAcc, nextBit, flag fr.Element) {
	var want fr.Element
	want.Double(&acc)
	want.Add(&want, &nextBit)
	air.AggConstraint(result, index, flag, air.AreEqual(nextAcc, want))
}
