// Copyright 2020-2024 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package merkle

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/consensys/zkledger/std/rescue"
)

func leaves(n int) []fr.Element {
	out := make([]fr.Element, n)
	for i := range out {
		out[i].SetUint64(uint64(i + 1))
	}
	return out
}

func TestRootMatchesManualMerge(t *testing.T) {
	tree, err := NewTree(2, leaves(4))
	require.NoError(t, err)

	l := leaves(4)
	left := rescue.Merge(l[0], l[1])
	right := rescue.Merge(l[2], l[3])
	want := rescue.Merge(left, right)

	root := tree.Root()
	require.True(t, root.Equal(&want))
}

func TestProofVerifies(t *testing.T) {
	tree, err := NewTree(8, leaves(200))
	require.NoError(t, err)

	for _, index := range []uint64{0, 1, 42, 199, 255} {
		proof := tree.Prove(index)
		require.Len(t, proof.Siblings, 8)
		require.True(t, proof.Verify(tree.Root()), "index %d", index)
	}
}

func TestProofRejectsWrongRoot(t *testing.T) {
	tree, err := NewTree(4, leaves(16))
	require.NoError(t, err)

	proof := tree.Prove(3)
	var one fr.Element
	one.SetOne()
	wrong := tree.Root()
	wrong.Add(&wrong, &one)
	require.False(t, proof.Verify(wrong))
}

func TestUpdateMovesRoot(t *testing.T) {
	tree, err := NewTree(4, leaves(16))
	require.NoError(t, err)
	oldRoot := tree.Root()

	var newLeaf fr.Element
	newLeaf.SetUint64(9999)
	tree.Update(7, newLeaf)

	newRoot := tree.Root()
	require.False(t, newRoot.Equal(&oldRoot))

	got := tree.Leaf(7)
	require.True(t, got.Equal(&newLeaf))

	// old siblings still authenticate against the new root
	proof := tree.Prove(7)
	require.True(t, proof.Verify(tree.Root()))

	// rebuilding from scratch agrees with the incremental update
	fresh := leaves(16)
	fresh[7] = newLeaf
	rebuilt, err := NewTree(4, fresh)
	require.NoError(t, err)
	rebuiltRoot := rebuilt.Root()
	require.True(t, newRoot.Equal(&rebuiltRoot))
}

func TestCloneIsIndependent(t *testing.T) {
	tree, err := NewTree(4, leaves(16))
	require.NoError(t, err)
	oldRoot := tree.Root()

	clone := tree.Clone()
	cloneRoot := clone.Root()
	require.True(t, cloneRoot.Equal(&oldRoot))

	var newLeaf fr.Element
	newLeaf.SetUint64(9999)
	clone.Update(7, newLeaf)

	// updating the clone must not move the original
	root := tree.Root()
	require.True(t, root.Equal(&oldRoot))
	cloneRoot = clone.Root()
	require.False(t, cloneRoot.Equal(&oldRoot))

	got := tree.Leaf(7)
	want := leaves(16)[7]
	require.True(t, got.Equal(&want))
}

func TestNewTreeRejectsBadShape(t *testing.T) {
	_, err := NewTree(0, nil)
	require.Error(t, err)

	_, err = NewTree(2, leaves(5))
	require.Error(t, err)
}

func TestPathBits(t *testing.T) {
	tree, err := NewTree(4, leaves(16))
	require.NoError(t, err)

	proof := tree.Prove(13) // 1101
	require.Equal(t, []bool{true, false, true, true}, proof.PathBits())
}

func TestEnforceLevelInjection(t *testing.T) {
	var one fr.Element
	one.SetOne()

	var digest, sibling fr.Element
	digest.SetUint64(111)
	sibling.SetUint64(222)

	current := []fr.Element{digest, {}, {}}

	// left child: digest lands in slot 0
	next := []fr.Element{digest, sibling, {}}
	result := make([]fr.Element, 2)
	EnforceLevelInjection(result, 0, current, next, fr.Element{}, one)
	require.True(t, result[0].IsZero())
	require.True(t, result[1].IsZero())

	// right child: digest lands in slot 1
	next = []fr.Element{sibling, digest, {}}
	result = make([]fr.Element, 2)
	EnforceLevelInjection(result, 0, current, next, one, one)
	require.True(t, result[0].IsZero())
	require.True(t, result[1].IsZero())

	// misplaced digest is caught
	next = []fr.Element{sibling, digest, {}}
	result = make([]fr.Element, 2)
	EnforceLevelInjection(result, 0, current, next, fr.Element{}, one)
	require.False(t, result[0].IsZero())

	// stale capacity is caught
	next = []fr.Element{digest, sibling, one}
	result = make([]fr.Element, 2)
	EnforceLevelInjection(result, 0, current, next, fr.Element{}, one)
	require.False(t, result[1].IsZero())
}

func TestEnforceSiblingMatch(t *testing.T) {
	var one fr.Element
	one.SetOne()

	var sibling, digestA, digestB fr.Element
	sibling.SetUint64(77)
	digestA.SetUint64(1)
	digestB.SetUint64(2)

	// left child: siblings sit in slot 1
	nextA := []fr.Element{digestA, sibling, {}}
	nextB := []fr.Element{digestB, sibling, {}}
	result := make([]fr.Element, 1)
	EnforceSiblingMatch(result, 0, nextA, nextB, fr.Element{}, one)
	require.True(t, result[0].IsZero())

	// diverging siblings are caught
	var other fr.Element
	other.SetUint64(78)
	nextB = []fr.Element{digestB, other, {}}
	result = make([]fr.Element, 1)
	EnforceSiblingMatch(result, 0, nextA, nextB, fr.Element{}, one)
	require.False(t, result[0].IsZero())

	// right child: siblings sit in slot 0
	nextA = []fr.Element{sibling, digestA, {}}
	nextB = []fr.Element{sibling, digestB, {}}
	result = make([]fr.Element, 1)
	EnforceSiblingMatch(result, 0, nextA, nextB, one, one)
	require.True(t, result[0].IsZero())
}
