// Copyright 2020-2024 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package ecc provides group arithmetic on the twisted Edwards curve embedded
// in the bn254 scalar field (the curve gnark-crypto exposes for bn254), in
// projective coordinates so that every operation is polynomial.
//
// Each operation exists in two forms sharing one implementation: a plain
// in-place application used when building traces, and a constraint evaluation
// relating two consecutive trace rows. A trace filled with the former always
// satisfies the latter.
package ecc

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"

	"github.com/consensys/zkledger/air"
)

// PointWidth is the trace footprint of a point: projective (X, Y, Z).
const PointWidth = 3

var (
	// curve coefficients of a*x^2 + y^2 = 1 + d*x^2*y^2
	coeffA fr.Element
	coeffD fr.Element

	// generator is the subgroup generator in projective coordinates.
	generator [PointWidth]fr.Element

	// order is the prime order of the subgroup.
	order big.Int
)

func init() {
	params := twistededwards.GetEdwardsCurve()
	coeffA = params.A
	coeffD = params.D
	generator[0] = params.Base.X
	generator[1] = params.Base.Y
	generator[2].SetOne()
	order.Set(&params.Order)
}

// Generator returns the subgroup generator in projective coordinates.
func Generator() [PointWidth]fr.Element { return generator }

// Identity returns the group identity (0, 1, 1).
func Identity() [PointWidth]fr.Element {
	var p [PointWidth]fr.Element
	p[1].SetOne()
	p[2].SetOne()
	return p
}

// GroupOrder returns the prime order of the subgroup.
func GroupOrder() *big.Int { return new(big.Int).Set(&order) }

// FromAffine lifts an affine point to projective coordinates.
func FromAffine(p *twistededwards.PointAffine) [PointWidth]fr.Element {
	var out [PointWidth]fr.Element
	out[0] = p.X
	out[1] = p.Y
	out[2].SetOne()
	return out
}

// ToAffine normalizes a projective point. The Z coordinate of any point
// produced by the group law is non-zero.
func ToAffine(p [PointWidth]fr.Element) twistededwards.PointAffine {
	var zInv fr.Element
	zInv.Inverse(&p[2])
	var out twistededwards.PointAffine
	out.X.Mul(&p[0], &zInv)
	out.Y.Mul(&p[1], &zInv)
	return out
}

// TRACE
// -----------------------------------------------------------------------------

// ApplyDoubling doubles the point held in state[0:3] in place.
func ApplyDoubling(state []fr.Element) {
	computeDouble(state)
}

// ApplyAddition adds point to the point held in state[0:3] in place when bit
// is set; otherwise the state is left unchanged, matching the conditional
// double-and-add trace layout.
func ApplyAddition(state []fr.Element, point []fr.Element, bit bool) {
	if bit {
		computeAdd(state, point)
	}
}

// CONSTRAINTS
// -----------------------------------------------------------------------------

// EnforceDoubling enforces, when flag is one, that next[0:3] is the double of
// current[0:3]. It contributes to result slots [0, PointWidth).
func EnforceDoubling(result, current, next []fr.Element, flag fr.Element) {
	var step [PointWidth]fr.Element
	copy(step[:], current[:PointWidth])
	computeDouble(step[:])

	for i := 0; i < PointWidth; i++ {
		air.AggConstraint(result, i, flag, air.AreEqual(next[i], step[i]))
	}
}

// EnforceConditionalAddition enforces, when flag is one, that next[0:3] is
// current[0:3] + point when bit is one, and a copy of current[0:3] when bit
// is zero. bit must be constrained binary elsewhere. It contributes to result
// slots [0, PointWidth).
func EnforceConditionalAddition(result, current, next, point []fr.Element, bit, flag fr.Element) {
	var step [PointWidth]fr.Element
	copy(step[:], current[:PointWidth])
	computeAdd(step[:], point)

	notBit := air.Not(bit)
	var added, kept fr.Element
	for i := 0; i < PointWidth; i++ {
		added.Mul(&bit, &step[i])
		kept.Mul(&notBit, &current[i])
		added.Add(&added, &kept)
		air.AggConstraint(result, i, flag, air.AreEqual(next[i], added))
	}
}

// EnforceAddition enforces, when flag is one, that next[0:3] is
// current[0:3] + point. It contributes to result slots [0, PointWidth).
func EnforceAddition(result, current, next, point []fr.Element, flag fr.Element) {
	var step [PointWidth]fr.Element
	copy(step[:], current[:PointWidth])
	computeAdd(step[:], point)

	for i := 0; i < PointWidth; i++ {
		air.AggConstraint(result, i, flag, air.AreEqual(next[i], step[i]))
	}
}

// EnforceOnCurve enforces, when flag is one, the affine curve equation
// a*x^2 + y^2 == 1 + d*x^2*y^2 on the pair (x, y). It contributes to result
// slot 0.
func EnforceOnCurve(result []fr.Element, x, y, flag fr.Element) {
	var x2, y2, lhs, rhs fr.Element
	x2.Square(&x)
	y2.Square(&y)
	lhs.Mul(&coeffA, &x2)
	lhs.Add(&lhs, &y2)
	rhs.Mul(&x2, &y2)
	rhs.Mul(&rhs, &coeffD)
	var one fr.Element
	one.SetOne()
	rhs.Add(&rhs, &one)
	air.AggConstraint(result, 0, flag, air.AreEqual(lhs, rhs))
}

// HELPER FUNCTIONS
// -----------------------------------------------------------------------------

// computeDouble doubles the point stored as [X, Y, Z], using the projective
// doubling formulas
//
//	B = (X+Y)^2, C = X^2, D = Y^2, E = a*C, F = E+D, H = Z^2, J = F-2H
//	X3 = (B-C-D)*J, Y3 = F*(E-D), Z3 = F*J
func computeDouble(state []fr.Element) {
	var b, c, d, e, f, h, j fr.Element
	b.Add(&state[0], &state[1])
	b.Square(&b)
	c.Square(&state[0])
	d.Square(&state[1])
	e.Mul(&coeffA, &c)
	f.Add(&e, &d)
	h.Square(&state[2])
	j.Double(&h)
	j.Sub(&f, &j)

	var x, y, z fr.Element
	x.Sub(&b, &c)
	x.Sub(&x, &d)
	x.Mul(&x, &j)
	y.Sub(&e, &d)
	y.Mul(&y, &f)
	z.Mul(&f, &j)

	state[0] = x
	state[1] = y
	state[2] = z
}

// computeAdd adds point to the point stored as [X1, Y1, Z1], using the
// projective addition formulas
//
//	A = Z1*Z2, B = A^2, C = X1*X2, D = Y1*Y2, E = d*C*D, F = B-E, G = B+E
//	X3 = A*F*((X1+Y1)*(X2+Y2) - C - D), Y3 = A*G*(D - a*C), Z3 = F*G
func computeAdd(state []fr.Element, point []fr.Element) {
	var a, b, c, d, e, f, g fr.Element
	a.Mul(&state[2], &point[2])
	b.Square(&a)
	c.Mul(&state[0], &point[0])
	d.Mul(&state[1], &point[1])
	e.Mul(&coeffD, &c)
	e.Mul(&e, &d)
	f.Sub(&b, &e)
	g.Add(&b, &e)

	var x, y, z, t fr.Element
	x.Add(&state[0], &state[1])
	t.Add(&point[0], &point[1])
	x.Mul(&x, &t)
	x.Sub(&x, &c)
	x.Sub(&x, &d)
	x.Mul(&x, &f)
	x.Mul(&x, &a)

	y.Mul(&coeffA, &c)
	y.Sub(&d, &y)
	y.Mul(&y, &g)
	y.Mul(&y, &a)

	z.Mul(&f, &g)

	state[0] = x
	state[1] = y
	state[2] = z
}
