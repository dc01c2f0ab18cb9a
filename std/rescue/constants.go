// Copyright 2020-2024 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package rescue

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/crypto/blake2b"
)

// Round constants and the MDS matrix are derived deterministically from a
// blake2b XOF over a fixed domain-separation seed, so that independent
// implementations agree without shipping constant tables.
const constantsSeed = "zkledger-rescue-prime-bn254-w3-r7-v1"

var (
	// ark1, ark2 are the per-round injection constants, one triple after each
	// S-box layer.
	ark1 [NumRounds][StateWidth]fr.Element
	ark2 [NumRounds][StateWidth]fr.Element

	// mds is a 3x3 Cauchy matrix, mds[i][j] = 1/(x_i - y_j) with
	// x = (0,1,2) and y = (3,4,5); Cauchy matrices are MDS.
	mds    [StateWidth][StateWidth]fr.Element
	mdsInv [StateWidth][StateWidth]fr.Element
)

func init() {
	deriveRoundConstants()
	buildMDS()
}

func deriveRoundConstants() {
	xof, err := blake2b.NewXOF(blake2b.OutputLengthUnknown, nil)
	if err != nil {
		panic(err)
	}
	if _, err := xof.Write([]byte(constantsSeed)); err != nil {
		panic(err)
	}
	var buf [32]byte
	next := func() fr.Element {
		if _, err := xof.Read(buf[:]); err != nil {
			panic(err)
		}
		var e fr.Element
		e.SetBytes(buf[:])
		return e
	}
	for round := 0; round < NumRounds; round++ {
		for i := 0; i < StateWidth; i++ {
			ark1[round][i] = next()
		}
		for i := 0; i < StateWidth; i++ {
			ark2[round][i] = next()
		}
	}
}

func buildMDS() {
	var t fr.Element
	for i := 0; i < StateWidth; i++ {
		for j := 0; j < StateWidth; j++ {
			// x_i - y_j = i - (3 + j), never zero.
			t.SetInt64(int64(i) - int64(3+j))
			mds[i][j].Inverse(&t)
		}
	}
	invert3x3(&mds, &mdsInv)
}

// invert3x3 computes the inverse of m via the adjugate. Panics when m is
// singular, which for the Cauchy construction cannot happen.
func invert3x3(m, out *[StateWidth][StateWidth]fr.Element) {
	// minor(i, j) is the determinant of m with row i and column j removed.
	minor := func(i, j int) fr.Element {
		var rows, cols [2]int
		k := 0
		for r := 0; r < StateWidth; r++ {
			if r != i {
				rows[k] = r
				k++
			}
		}
		k = 0
		for c := 0; c < StateWidth; c++ {
			if c != j {
				cols[k] = c
				k++
			}
		}
		var a, b fr.Element
		a.Mul(&m[rows[0]][cols[0]], &m[rows[1]][cols[1]])
		b.Mul(&m[rows[0]][cols[1]], &m[rows[1]][cols[0]])
		a.Sub(&a, &b)
		return a
	}

	var det, t fr.Element
	for j := 0; j < StateWidth; j++ {
		mj := minor(0, j)
		t.Mul(&m[0][j], &mj)
		if j%2 == 1 {
			det.Sub(&det, &t)
		} else {
			det.Add(&det, &t)
		}
	}
	if det.IsZero() {
		panic("rescue: MDS matrix is singular")
	}
	var detInv fr.Element
	detInv.Inverse(&det)

	for i := 0; i < StateWidth; i++ {
		for j := 0; j < StateWidth; j++ {
			c := minor(i, j)
			if (i+j)%2 == 1 {
				c.Neg(&c)
			}
			// adjugate is the transposed cofactor matrix
			out[j][i].Mul(&c, &detInv)
		}
	}
}
