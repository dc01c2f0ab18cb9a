// Copyright 2020-2024 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package rescue implements the Rescue-Prime permutation over the bn254
// scalar field, in the width-3 sponge instantiation used throughout the
// ledger AIR: rate 2, capacity 1, S-box x^5, 7 rounds.
//
// The permutation is exposed two ways: as a plain function for witness
// computation (Permute, Hash, Merge), and as per-round transition-constraint
// evaluations of degree 5 (EnforceRound) so that one permutation round maps
// to one trace row.
package rescue

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

const (
	// StateWidth is the width of the permutation state.
	StateWidth = 3
	// RateWidth is the number of state elements absorbing input.
	RateWidth = 2
	// CapacityWidth is the number of state elements never exposed.
	CapacityWidth = StateWidth - RateWidth
	// NumRounds is the number of Rescue-Prime rounds.
	NumRounds = 7
	// HashCycleLength is the trace footprint of one permutation: NumRounds
	// round rows followed by one injection row.
	HashCycleLength = 8
	// Alpha is the S-box exponent.
	Alpha = 5
)

// alphaInv = Alpha^-1 mod (p-1), the inverse S-box exponent.
var alphaInv big.Int

func init() {
	pMinusOne := new(big.Int).Sub(fr.Modulus(), big.NewInt(1))
	if alphaInv.ModInverse(big.NewInt(Alpha), pMinusOne) == nil {
		panic("rescue: alpha not invertible mod p-1")
	}
}

// Permute applies the full permutation to state in place.
func Permute(state *[StateWidth]fr.Element) {
	for round := 0; round < NumRounds; round++ {
		ApplyRound(state, round)
	}
}

// ApplyRound applies one Rescue-Prime round to state in place:
// S-box, MDS, constants, inverse S-box, MDS, constants.
func ApplyRound(state *[StateWidth]fr.Element, round int) {
	applySbox(state)
	mdsMul(state)
	addConstants(state, &ark1[round])
	applyInvSbox(state)
	mdsMul(state)
	addConstants(state, &ark2[round])
}

// Hash absorbs the input into the sponge and squeezes a one-element digest.
// The input is zero-padded to a multiple of the rate.
func Hash(input ...fr.Element) fr.Element {
	var state [StateWidth]fr.Element
	for i := 0; i < RateWidth && i < len(input); i++ {
		state[i] = input[i]
	}
	for offset := RateWidth; offset < len(input); offset += RateWidth {
		Permute(&state)
		for i := 0; i < RateWidth && offset+i < len(input); i++ {
			state[i].Add(&state[i], &input[offset+i])
		}
	}
	Permute(&state)
	return state[0]
}

// Merge computes the two-to-one compression of two digests, the node function
// of the Merkle tree.
func Merge(left, right fr.Element) fr.Element {
	return Hash(left, right)
}

func applySbox(state *[StateWidth]fr.Element) {
	for i := range state {
		expAlpha(&state[i])
	}
}

func applyInvSbox(state *[StateWidth]fr.Element) {
	for i := range state {
		state[i].Exp(state[i], &alphaInv)
	}
}

// expAlpha computes x^5 with three multiplications.
func expAlpha(x *fr.Element) {
	var x2, x4 fr.Element
	x2.Square(x)
	x4.Square(&x2)
	x.Mul(x, &x4)
}

func addConstants(state *[StateWidth]fr.Element, constants *[StateWidth]fr.Element) {
	for i := range state {
		state[i].Add(&state[i], &constants[i])
	}
}

// mdsMul multiplies state by the MDS matrix in place.
func mdsMul(state *[StateWidth]fr.Element) {
	matMul(state, &mds)
}

// mdsInvMul multiplies state by the inverse MDS matrix in place.
func mdsInvMul(state *[StateWidth]fr.Element) {
	matMul(state, &mdsInv)
}

func matMul(state *[StateWidth]fr.Element, m *[StateWidth][StateWidth]fr.Element) {
	var out [StateWidth]fr.Element
	var t fr.Element
	for i := 0; i < StateWidth; i++ {
		for j := 0; j < StateWidth; j++ {
			t.Mul(&m[i][j], &state[j])
			out[i].Add(&out[i], &t)
		}
	}
	*state = out
}
