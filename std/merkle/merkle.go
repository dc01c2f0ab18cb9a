// Copyright 2020-2024 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package merkle implements a fixed-depth updatable Merkle tree over Rescue
// digests, together with the constraint fragments that tie an authentication
// path into a trace of hash chains.
//
// Leaves are digests; inner nodes merge their children with rescue.Merge.
// Authentication paths are ordered bottom-up, and path bit i is set when the
// running node is the right child at level i.
package merkle

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/zkledger/air"
	"github.com/consensys/zkledger/std/rescue"
)

// Tree is a complete binary Merkle tree of depth levels. It keeps every node
// so that single-leaf updates cost one path recomputation.
type Tree struct {
	depth int
	// nodes[0] holds the 2^depth leaves, nodes[depth] the root.
	nodes [][]fr.Element
}

// NewTree builds a tree of the given depth from the provided leaf digests.
// Missing leaves are zero.
func NewTree(depth int, leaves []fr.Element) (*Tree, error) {
	if depth <= 0 {
		return nil, fmt.Errorf("merkle: depth must be positive, got %d", depth)
	}
	size := 1 << depth
	if len(leaves) > size {
		return nil, fmt.Errorf("merkle: %d leaves exceed capacity %d of a depth-%d tree", len(leaves), size, depth)
	}

	t := &Tree{depth: depth, nodes: make([][]fr.Element, depth+1)}
	t.nodes[0] = make([]fr.Element, size)
	copy(t.nodes[0], leaves)
	for level := 1; level <= depth; level++ {
		t.nodes[level] = make([]fr.Element, size>>level)
		for i := range t.nodes[level] {
			t.nodes[level][i] = rescue.Merge(t.nodes[level-1][2*i], t.nodes[level-1][2*i+1])
		}
	}
	return t, nil
}

// Clone returns an independent copy of the tree. Updates on the copy leave
// the original untouched.
func (t *Tree) Clone() *Tree {
	nodes := make([][]fr.Element, len(t.nodes))
	for level := range t.nodes {
		nodes[level] = make([]fr.Element, len(t.nodes[level]))
		copy(nodes[level], t.nodes[level])
	}
	return &Tree{depth: t.depth, nodes: nodes}
}

// Depth returns the number of levels between a leaf and the root.
func (t *Tree) Depth() int { return t.depth }

// Root returns the current root digest.
func (t *Tree) Root() fr.Element { return t.nodes[t.depth][0] }

// Leaf returns the digest stored at index.
func (t *Tree) Leaf(index uint64) fr.Element { return t.nodes[0][index] }

// Update replaces the leaf at index and recomputes its path to the root.
func (t *Tree) Update(index uint64, leaf fr.Element) {
	t.nodes[0][index] = leaf
	pos := index
	for level := 1; level <= t.depth; level++ {
		pos >>= 1
		t.nodes[level][pos] = rescue.Merge(t.nodes[level-1][2*pos], t.nodes[level-1][2*pos+1])
	}
}

// Prove returns the authentication path of the leaf at index.
func (t *Tree) Prove(index uint64) Proof {
	p := Proof{
		Index:    index,
		Leaf:     t.nodes[0][index],
		Siblings: make([]fr.Element, t.depth),
	}
	pos := index
	for level := 0; level < t.depth; level++ {
		p.Siblings[level] = t.nodes[level][pos^1]
		pos >>= 1
	}
	return p
}

// Proof is a bottom-up authentication path for one leaf.
type Proof struct {
	Index    uint64
	Leaf     fr.Element
	Siblings []fr.Element
}

// PathBits returns, per level, whether the running node is the right child.
func (p Proof) PathBits() []bool {
	bits := make([]bool, len(p.Siblings))
	for i := range bits {
		bits[i] = (p.Index>>uint(i))&1 == 1
	}
	return bits
}

// Verify recomputes the root from the path and compares it to root.
func (p Proof) Verify(root fr.Element) bool {
	node := p.Leaf
	for i, sibling := range p.Siblings {
		if (p.Index>>uint(i))&1 == 1 {
			node = rescue.Merge(sibling, node)
		} else {
			node = rescue.Merge(node, sibling)
		}
	}
	return node.Equal(&root)
}

// CONSTRAINTS
// -----------------------------------------------------------------------------

// EnforceLevelInjection enforces, when flag is one, the hash-chain restart at
// a tree level boundary: the digest current[0] moves to the rate slot selected
// by the path bit of the next state, and the capacity slot is reset. The
// sibling occupies the other rate slot as an unconstrained witness. It
// contributes to result slots index and index+1.
func EnforceLevelInjection(result []fr.Element, index int, current, next []fr.Element, bit, flag fr.Element) {
	notBit := air.Not(bit)

	var placed fr.Element
	left := air.AreEqual(next[0], current[0])
	right := air.AreEqual(next[1], current[0])
	placed.Mul(&notBit, &left)
	right.Mul(&bit, &right)
	placed.Add(&placed, &right)

	air.AggConstraint(result, index, flag, placed)
	air.AggConstraint(result, index+1, flag, next[2])
}

// EnforceSiblingMatch enforces, when flag is one, that two hash chains
// authenticating the same path carry identical siblings at a level boundary:
// whichever rate slot the path bit leaves to the sibling must agree between
// the two next states. It contributes to result slot index.
func EnforceSiblingMatch(result []fr.Element, index int, nextA, nextB []fr.Element, bit, flag fr.Element) {
	notBit := air.Not(bit)

	var agree fr.Element
	slot1 := air.AreEqual(nextA[1], nextB[1])
	slot0 := air.AreEqual(nextA[0], nextB[0])
	agree.Mul(&notBit, &slot1)
	slot0.Mul(&bit, &slot0)
	agree.Add(&agree, &slot0)

	air.AggConstraint(result, index, flag, agree)
}
