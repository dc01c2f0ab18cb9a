// Copyright 2020-2024 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package schnorr

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/consensys/zkledger/std/ecc"
)

func message(words ...uint64) []fr.Element {
	out := make([]fr.Element, len(words))
	for i, w := range words {
		out[i].SetUint64(w)
	}
	return out
}

func TestSignAndVerify(t *testing.T) {
	sk, err := GenerateKey(rand.Reader)
	require.NoError(t, err)

	msg := message(1, 2, 30, 4, 5, 6)
	sig := sk.Sign(msg)
	require.True(t, Verify(&sk.PublicKey, msg, &sig))
}

func TestVerifyRejectsTampering(t *testing.T) {
	sk, err := GenerateKey(rand.Reader)
	require.NoError(t, err)
	other, err := GenerateKey(rand.Reader)
	require.NoError(t, err)

	msg := message(1, 2, 30, 4, 5, 6)
	sig := sk.Sign(msg)

	require.False(t, Verify(&other.PublicKey, msg, &sig))
	require.False(t, Verify(&sk.PublicKey, message(1, 2, 31, 4, 5, 6), &sig))

	bad := sig
	bad.S.Add(&bad.S, big.NewInt(1))
	require.False(t, Verify(&sk.PublicKey, msg, &bad))
}

func TestSigningIsDeterministic(t *testing.T) {
	sk, err := GenerateKey(rand.Reader)
	require.NoError(t, err)

	msg := message(7, 7, 7, 7, 7, 7)
	a := sk.Sign(msg)
	b := sk.Sign(msg)
	require.True(t, a.R.Equal(&b.R))
	require.Zero(t, a.S.Cmp(&b.S))
}

func TestBitsRecompose(t *testing.T) {
	z, err := rand.Int(rand.Reader, ecc.GroupOrder())
	require.NoError(t, err)

	var back big.Int
	for _, bit := range Bits(z) {
		back.Lsh(&back, 1)
		if bit {
			back.Or(&back, big.NewInt(1))
		}
	}
	require.Zero(t, back.Cmp(z))
}

// The trace verifies a signature by running two double-and-add ladders and
// comparing the sum to the commitment point. This test replays that schedule
// with the group operations the constraints mirror.
func TestLadderVerificationMatchesNative(t *testing.T) {
	sk, err := GenerateKey(rand.Reader)
	require.NoError(t, err)

	msg := message(3, 1, 4, 1, 5, 9)
	sig := sk.Sign(msg)

	c := Challenge(&sig.R, msg)

	accG := ecc.Identity()
	gen := ecc.Generator()
	for _, bit := range Bits(&sig.S) {
		ecc.ApplyDoubling(accG[:])
		ecc.ApplyAddition(accG[:], gen[:], bit)
	}

	accP := ecc.Identity()
	pk := ecc.FromAffine(&sk.A)
	for _, bit := range DigestBits(c) {
		ecc.ApplyDoubling(accP[:])
		ecc.ApplyAddition(accP[:], pk[:], bit)
	}

	ecc.ApplyAddition(accG[:], accP[:], true)

	var one fr.Element
	one.SetOne()
	result := make([]fr.Element, 3)
	EnforceVerification(result, 0, accG[:], sig.R.X, sig.R.Y, one)
	for i, r := range result {
		require.True(t, r.IsZero(), "slot %d", i)
	}

	// a different commitment point no longer matches
	bad := sig.R
	bad.Neg(&bad)
	result = make([]fr.Element, 3)
	EnforceVerification(result, 0, accG[:], bad.X, bad.Y, one)
	require.False(t, result[0].IsZero())
}
