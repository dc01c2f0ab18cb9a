// Copyright 2020-2024 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package ecc

import (
	"crypto/rand"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"
	"github.com/stretchr/testify/require"
)

func randomPoint(t *testing.T) twistededwards.PointAffine {
	t.Helper()
	k, err := rand.Int(rand.Reader, GroupOrder())
	require.NoError(t, err)
	params := twistededwards.GetEdwardsCurve()
	var p twistededwards.PointAffine
	p.ScalarMultiplication(&params.Base, k)
	return p
}

func TestDoublingMatchesAffine(t *testing.T) {
	p := randomPoint(t)

	state := FromAffine(&p)
	ApplyDoubling(state[:])

	var want twistededwards.PointAffine
	want.Double(&p)

	got := ToAffine(state)
	require.True(t, got.Equal(&want))
}

func TestAdditionMatchesAffine(t *testing.T) {
	p := randomPoint(t)
	q := randomPoint(t)

	state := FromAffine(&p)
	qProj := FromAffine(&q)
	ApplyAddition(state[:], qProj[:], true)

	var want twistededwards.PointAffine
	want.Add(&p, &q)

	got := ToAffine(state)
	require.True(t, got.Equal(&want))
}

func TestAdditionSkippedWhenBitClear(t *testing.T) {
	p := randomPoint(t)
	q := randomPoint(t)

	state := FromAffine(&p)
	qProj := FromAffine(&q)
	ApplyAddition(state[:], qProj[:], false)

	got := ToAffine(state)
	require.True(t, got.Equal(&p))
}

func TestDoubleAndAddMatchesScalarMultiplication(t *testing.T) {
	k, err := rand.Int(rand.Reader, GroupOrder())
	require.NoError(t, err)

	// MSB-first double-and-add, the schedule the trace uses.
	acc := Identity()
	gen := Generator()
	for i := k.BitLen() - 1; i >= 0; i-- {
		ApplyDoubling(acc[:])
		ApplyAddition(acc[:], gen[:], k.Bit(i) == 1)
	}

	params := twistededwards.GetEdwardsCurve()
	var want twistededwards.PointAffine
	want.ScalarMultiplication(&params.Base, k)

	got := ToAffine(acc)
	require.True(t, got.Equal(&want))
}

func TestIdentityIsNeutral(t *testing.T) {
	p := randomPoint(t)

	state := FromAffine(&p)
	id := Identity()
	ApplyAddition(state[:], id[:], true)

	got := ToAffine(state)
	require.True(t, got.Equal(&p))
}

func TestEnforceDoublingConstraint(t *testing.T) {
	p := randomPoint(t)
	current := FromAffine(&p)
	next := current
	ApplyDoubling(next[:])

	var one fr.Element
	one.SetOne()

	result := make([]fr.Element, PointWidth)
	EnforceDoubling(result, current[:], next[:], one)
	for i, r := range result {
		require.True(t, r.IsZero(), "slot %d", i)
	}

	// tampered transition must be caught
	var bad [PointWidth]fr.Element = next
	bad[0].Add(&bad[0], &one)
	result = make([]fr.Element, PointWidth)
	EnforceDoubling(result, current[:], bad[:], one)
	require.False(t, result[0].IsZero())

	// and ignored when the flag is off
	result = make([]fr.Element, PointWidth)
	EnforceDoubling(result, current[:], bad[:], fr.Element{})
	for i, r := range result {
		require.True(t, r.IsZero(), "slot %d", i)
	}
}

func TestEnforceConditionalAdditionConstraint(t *testing.T) {
	p := randomPoint(t)
	q := randomPoint(t)
	current := FromAffine(&p)
	point := FromAffine(&q)

	var one fr.Element
	one.SetOne()

	// bit set: next must be the sum
	next := current
	ApplyAddition(next[:], point[:], true)
	result := make([]fr.Element, PointWidth)
	EnforceConditionalAddition(result, current[:], next[:], point[:], one, one)
	for i, r := range result {
		require.True(t, r.IsZero(), "slot %d", i)
	}

	// bit clear: next must copy current
	result = make([]fr.Element, PointWidth)
	EnforceConditionalAddition(result, current[:], current[:], point[:], fr.Element{}, one)
	for i, r := range result {
		require.True(t, r.IsZero(), "slot %d", i)
	}

	// bit clear with a modified state must be caught
	result = make([]fr.Element, PointWidth)
	EnforceConditionalAddition(result, current[:], next[:], point[:], fr.Element{}, one)
	require.False(t, result[0].IsZero())
}

func TestEnforceAdditionConstraint(t *testing.T) {
	p := randomPoint(t)
	q := randomPoint(t)
	current := FromAffine(&p)
	point := FromAffine(&q)
	next := current
	ApplyAddition(next[:], point[:], true)

	var one fr.Element
	one.SetOne()

	result := make([]fr.Element, PointWidth)
	EnforceAddition(result, current[:], next[:], point[:], one)
	for i, r := range result {
		require.True(t, r.IsZero(), "slot %d", i)
	}
}

func TestEnforceOnCurve(t *testing.T) {
	p := randomPoint(t)

	var one fr.Element
	one.SetOne()

	result := make([]fr.Element, 1)
	EnforceOnCurve(result, p.X, p.Y, one)
	require.True(t, result[0].IsZero())

	var offX fr.Element
	offX.Add(&p.X, &one)
	result = make([]fr.Element, 1)
	EnforceOnCurve(result, offX, p.Y, one)
	require.False(t, result[0].IsZero())
}
