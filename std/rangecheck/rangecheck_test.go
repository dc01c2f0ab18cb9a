// Copyright 2020-2024 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package rangecheck

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/consensys/zkledger/air"
)

// windowSatisfied runs every gadget constraint over a filled window and
// reports whether all of them vanish.
func windowSatisfied(bits, acc []fr.Element) bool {
	var one fr.Element
	one.SetOne()

	result := make([]fr.Element, 1)
	EnforceInit(result, 0, bits[0], acc[0], one)
	if !result[0].IsZero() {
		return false
	}
	for row := 0; row < NumBits; row++ {
		result[0].SetZero()
		EnforceBit(result, 0, bits[row], one)
		if !result[0].IsZero() {
			return false
		}
		if row < NumBits-1 {
			result[0].SetZero()
			EnforceStep(result, 0, acc[row], acc[row+1], bits[row+1], one)
			if !result[0].IsZero() {
				return false
			}
		}
	}
	return true
}

func TestFillAccumulatesValue(t *testing.T) {
	bits := make([]fr.Element, NumBits)
	acc := make([]fr.Element, NumBits)

	for _, value := range []uint64{0, 1, 30, 1 << 63, ^uint64(0)} {
		Fill(bits, acc, value)

		var want fr.Element
		want.SetUint64(value)
		require.True(t, acc[NumBits-1].Equal(&want), "value %d", value)
		require.True(t, windowSatisfied(bits, acc), "value %d", value)
	}
}

func TestNonBinaryBitRejected(t *testing.T) {
	bits := make([]fr.Element, NumBits)
	acc := make([]fr.Element, NumBits)
	Fill(bits, acc, 42)

	var two fr.Element
	two.SetUint64(2)
	bits[5] = two

	result := make([]fr.Element, 1)
	var one fr.Element
	one.SetOne()
	EnforceBit(result, 0, bits[5], one)
	require.False(t, result[0].IsZero())
}

func TestTamperedAccumulatorRejected(t *testing.T) {
	bits := make([]fr.Element, NumBits)
	acc := make([]fr.Element, NumBits)
	Fill(bits, acc, 1<<40)

	var one fr.Element
	one.SetOne()
	acc[20].Add(&acc[20], &one)
	require.False(t, windowSatisfied(bits, acc))
}

func TestFlagDisablesConstraints(t *testing.T) {
	var garbage fr.Element
	garbage.SetUint64(7)

	result := make([]fr.Element, 1)
	EnforceBit(result, 0, garbage, fr.Element{})
	EnforceInit(result, 0, garbage, garbage, fr.Element{})
	EnforceStep(result, 0, garbage, garbage, garbage, fr.Element{})
	require.True(t, result[0].IsZero())
}

func TestRangeWindowProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("window decomposes and re-accumulates any uint64", prop.ForAll(
		func(value uint64) bool {
			bits := make([]fr.Element, NumBits)
			acc := make([]fr.Element, NumBits)
			Fill(bits, acc, value)

			var want fr.Element
			want.SetUint64(value)
			return acc[NumBits-1].Equal(&want) && windowSatisfied(bits, acc)
		},
		gen.UInt64(),
	))

	properties.Property("bits are binary and MSB-first", prop.ForAll(
		func(value uint64) bool {
			bits := make([]fr.Element, NumBits)
			acc := make([]fr.Element, NumBits)
			Fill(bits, acc, value)

			rebuilt := uint64(0)
			for row := 0; row < NumBits; row++ {
				if binErr := air.IsBinary(bits[row]); !binErr.IsZero() {
					return false
				}
				rebuilt <<= 1
				if bits[row].IsOne() {
					rebuilt |= 1
				}
			}
			return rebuilt == value
		},
		gen.UInt64(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
