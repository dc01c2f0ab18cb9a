// Copyright 2020-2024 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package air

import "github.com/consensys/gnark-crypto/ecc/bn254/fr"

// AreEqual returns a value that is zero iff a == b.
func AreEqual(a, b fr.Element) fr.Element {
	var r fr.Element
	r.Sub(&a, &b)
	return r
}

// IsBinary returns a value that is zero iff a ∈ {0, 1}.
func IsBinary(a fr.Element) fr.Element {
	var r fr.Element
	r.Square(&a)
	r.Sub(&r, &a)
	return r
}

// Not returns 1 - a. For a binary a this is the logical complement.
func Not(a fr.Element) fr.Element {
	var r fr.Element
	r.SetOne()
	r.Sub(&r, &a)
	return r
}

// AggConstraint accumulates flag * value into result[index]. Gadgets use it
// to contribute to a constraint slot only on rows where their activation
// flag is non-zero.
func AggConstraint(result []fr.Element, index int, flag, value fr.Element) {
	var t fr.Element
	t.Mul(&flag, &value)
	result[index].Add(&result[index], &t)
}
