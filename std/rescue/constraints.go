// Copyright 2020-2024 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package rescue

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/zkledger/air"
)

// EnforceRound evaluates the transition constraints of one permutation round
// over a frame of two consecutive rows, aggregating into result[0:StateWidth]
// when flag is one.
//
// The round s -> MDS(s^5) + ark1 -> MDS(t^(1/5)) + ark2 is enforced without
// ever expressing the inverse S-box: the current row is pushed forward
// through the first half-round and the next row is pulled backward through
// the second, meeting in the middle at degree 5 on both sides:
//
//	MDS(current^5) + ark1 == (MDS^-1 (next - ark2))^5
//
// ark holds the 2*StateWidth round constants for this row, as produced by
// RoundConstantColumns.
func EnforceRound(result, current, next []fr.Element, ark []fr.Element, flag fr.Element) {
	var lhs, rhs [StateWidth]fr.Element

	copy(lhs[:], current[:StateWidth])
	applySbox(&lhs)
	mdsMul(&lhs)
	for i := 0; i < StateWidth; i++ {
		lhs[i].Add(&lhs[i], &ark[i])
	}

	copy(rhs[:], next[:StateWidth])
	for i := 0; i < StateWidth; i++ {
		rhs[i].Sub(&rhs[i], &ark[StateWidth+i])
	}
	mdsInvMul(&rhs)
	applySbox(&rhs)

	for i := 0; i < StateWidth; i++ {
		air.AggConstraint(result, i, flag, air.AreEqual(lhs[i], rhs[i]))
	}
}

// RoundConstantColumns returns the 2*StateWidth periodic columns of period
// HashCycleLength carrying the round constants: columns [0, StateWidth) hold
// ark1 and columns [StateWidth, 2*StateWidth) hold ark2 for round r at row r.
// The injection row (last row of the cycle) carries zeroes.
func RoundConstantColumns() [][]fr.Element {
	columns := make([][]fr.Element, 2*StateWidth)
	for j := range columns {
		columns[j] = make([]fr.Element, HashCycleLength)
	}
	for round := 0; round < NumRounds; round++ {
		for i := 0; i < StateWidth; i++ {
			columns[i][round] = ark1[round][i]
			columns[StateWidth+i][round] = ark2[round][i]
		}
	}
	return columns
}

// HashCycleMask returns the period-HashCycleLength mask that is one on the
// NumRounds round rows and zero on the injection row.
func HashCycleMask() []fr.Element {
	return air.RangeMask(HashCycleLength, 0, NumRounds)
}
