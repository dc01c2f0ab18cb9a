// Copyright 2020-2024 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package schnorr implements Schnorr signatures over the twisted Edwards
// curve embedded in the bn254 scalar field, with a Rescue sponge as the
// challenge hash so that verification is cheap to arithmetize.
//
// Signing commits to a nonce point R = [r]G and responds with
// s = r - sk*h mod l, where h hashes the commitment together with the
// message. Verification checks [s]G + [h]A == R.
package schnorr

import (
	"errors"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"
	"golang.org/x/crypto/blake2b"

	"github.com/consensys/zkledger/air"
	"github.com/consensys/zkledger/std/ecc"
	"github.com/consensys/zkledger/std/rescue"
)

// NumScalarBits is the bit width of the scalar decompositions used by both
// signing and the trace: enough for any canonical field element.
const NumScalarBits = 254

// ErrShortRandomness is returned when the key source cannot supply enough
// entropy.
var ErrShortRandomness = errors.New("schnorr: insufficient randomness")

// PublicKey is a point on the embedded curve.
type PublicKey struct {
	A twistededwards.PointAffine
}

// PrivateKey carries the signing scalar and its public counterpart.
type PrivateKey struct {
	PublicKey
	scalar big.Int
}

// Signature is a commitment point and a response scalar.
type Signature struct {
	R twistededwards.PointAffine
	S big.Int
}

// GenerateKey draws a signing scalar from rand and derives the public key.
func GenerateKey(rand io.Reader) (*PrivateKey, error) {
	order := ecc.GroupOrder()
	buf := make([]byte, 64)
	if _, err := io.ReadFull(rand, buf); err != nil {
		return nil, errors.Join(ErrShortRandomness, err)
	}

	var sk PrivateKey
	sk.scalar.SetBytes(buf)
	sk.scalar.Mod(&sk.scalar, order)
	if sk.scalar.Sign() == 0 {
		sk.scalar.SetUint64(1)
	}

	params := twistededwards.GetEdwardsCurve()
	sk.A.ScalarMultiplication(&params.Base, &sk.scalar)
	return &sk, nil
}

// Challenge hashes the commitment point and the message into the field.
func Challenge(r *twistededwards.PointAffine, message []fr.Element) fr.Element {
	input := make([]fr.Element, 0, 2+len(message))
	input = append(input, r.X, r.Y)
	input = append(input, message...)
	return rescue.Hash(input...)
}

// Sign produces a signature on message. The nonce is derived
// deterministically from the key and the message.
func (sk *PrivateKey) Sign(message []fr.Element) Signature {
	order := ecc.GroupOrder()

	h, _ := blake2b.New512(nil)
	h.Write(sk.scalar.Bytes())
	for i := range message {
		b := message[i].Bytes()
		h.Write(b[:])
	}
	var r big.Int
	r.SetBytes(h.Sum(nil))
	r.Mod(&r, order)
	if r.Sign() == 0 {
		r.SetUint64(1)
	}

	params := twistededwards.GetEdwardsCurve()
	var sig Signature
	sig.R.ScalarMultiplication(&params.Base, &r)

	c := Challenge(&sig.R, message)
	var cInt big.Int
	c.BigInt(&cInt)

	// s = r - sk*c mod l
	sig.S.Mul(&sk.scalar, &cInt)
	sig.S.Sub(&r, &sig.S)
	sig.S.Mod(&sig.S, order)
	return sig
}

// Verify reports whether sig is a valid signature on message under pk.
func Verify(pk *PublicKey, message []fr.Element, sig *Signature) bool {
	if !sig.R.IsOnCurve() {
		return false
	}
	c := Challenge(&sig.R, message)
	var cInt big.Int
	c.BigInt(&cInt)

	params := twistededwards.GetEdwardsCurve()
	var sg, ca twistededwards.PointAffine
	sg.ScalarMultiplication(&params.Base, &sig.S)
	ca.ScalarMultiplication(&pk.A, &cInt)
	sg.Add(&sg, &ca)
	return sg.Equal(&sig.R)
}

// Bits returns the NumScalarBits-wide binary decomposition of z, most
// significant bit first, the order in which a double-and-add trace consumes
// scalar bits.
func Bits(z *big.Int) []bool {
	out := make([]bool, NumScalarBits)
	for i := 0; i < NumScalarBits; i++ {
		out[i] = z.Bit(NumScalarBits-1-i) == 1
	}
	return out
}

// DigestBits decomposes a field element the same way, via its canonical
// integer representative.
func DigestBits(h fr.Element) []bool {
	var z big.Int
	h.BigInt(&z)
	return Bits(&z)
}

// CONSTRAINTS
// -----------------------------------------------------------------------------

// EnforceVerification enforces, when flag is one, that the projective point
// s equals the affine commitment (rx, ry) and that the commitment lies on the
// curve. It contributes to result slots index, index+1 and index+2.
func EnforceVerification(result []fr.Element, index int, s []fr.Element, rx, ry, flag fr.Element) {
	var want fr.Element
	want.Mul(&rx, &s[2])
	air.AggConstraint(result, index, flag, air.AreEqual(s[0], want))

	want.Mul(&ry, &s[2])
	air.AggConstraint(result, index+1, flag, air.AreEqual(s[1], want))

	ecc.EnforceOnCurve(result[index+2:], rx, ry, flag)
}
