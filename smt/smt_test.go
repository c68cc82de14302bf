// Copyright 2024-2025 The zkGraf Authors
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package smt

import (
	"math/rand"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

func leafOf(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}

func TestEmptySubtreeChain(t *testing.T) {
	emptyLeaf := EmptyLeaf()
	require.True(t, emptyLeaf.IsZero())
	emptySub := EmptySubtree(0)
	require.True(t, emptySub.IsZero())

	for l := 0; l < Depth; l++ {
		sub := EmptySubtree(l)
		parent := hashNode(&sub, &sub)
		next := EmptySubtree(l + 1)
		require.True(t, parent.Equal(&next), "level %d", l)
	}
}

func TestEmptyTreeRoot(t *testing.T) {
	tree := NewTree()
	root := tree.Root()
	want := EmptySubtree(Depth)
	require.True(t, root.Equal(&want))
}

func TestProveVerify(t *testing.T) {
	tree := NewTree()
	keys := []uint32{0, 1, 7, 1 << 15, 0xffffffff}
	for i, k := range keys {
		tree.Set(k, leafOf(uint64(i)+100))
	}

	root := tree.Root()
	for i, k := range keys {
		siblings := tree.Prove(k)
		require.True(t, VerifyProof(root, k, leafOf(uint64(i)+100), &siblings), "key %d", k)

		// a wrong value must not verify
		require.False(t, VerifyProof(root, k, leafOf(999), &siblings))
	}

	// proof of absence: the empty leaf verifies for an absent key
	siblings := tree.Prove(42)
	require.True(t, VerifyProof(root, 42, EmptyLeaf(), &siblings))
}

func TestUpdateMatchesTree(t *testing.T) {
	tree := NewTree()
	tree.Set(3, leafOf(30))
	tree.Set(5, leafOf(50))

	root := tree.Root()
	siblings := tree.Prove(3)

	newRoot, err := Update(root, 3, leafOf(30), leafOf(31), &siblings, FncUpdate)
	require.NoError(t, err)

	tree.Set(3, leafOf(31))
	treeRoot := tree.Root()
	require.True(t, newRoot.Equal(&treeRoot))
}

func TestInsertMatchesTree(t *testing.T) {
	tree := NewTree()
	tree.Set(3, leafOf(30))

	root := tree.Root()
	siblings := tree.Prove(8)

	newRoot, err := Update(root, 8, EmptyLeaf(), leafOf(80), &siblings, FncInsert)
	require.NoError(t, err)

	tree.Set(8, leafOf(80))
	treeRoot := tree.Root()
	require.True(t, newRoot.Equal(&treeRoot))
}

func TestUpdateRejectsBadProof(t *testing.T) {
	tree := NewTree()
	tree.Set(3, leafOf(30))

	root := tree.Root()
	siblings := tree.Prove(3)

	// stale old value
	_, err := Update(root, 3, leafOf(29), leafOf(31), &siblings, FncUpdate)
	require.ErrorIs(t, err, ErrInvalidInclusionProof)

	// corrupted sibling
	siblings[7].SetUint64(123456)
	_, err = Update(root, 3, leafOf(30), leafOf(31), &siblings, FncUpdate)
	require.ErrorIs(t, err, ErrInvalidInclusionProof)
}

func TestInsertRejectsNonEmptyOldValue(t *testing.T) {
	tree := NewTree()
	tree.Set(3, leafOf(30))

	root := tree.Root()
	siblings := tree.Prove(3)

	_, err := Update(root, 3, leafOf(30), leafOf(31), &siblings, FncInsert)
	require.ErrorIs(t, err, ErrInvalidInclusionProof)
}

func TestNopKeepsRoot(t *testing.T) {
	tree := NewTree()
	tree.Set(3, leafOf(30))

	root := tree.Root()
	var siblings Path
	got, err := Update(root, 3, leafOf(1), leafOf(2), &siblings, FncNop)
	require.NoError(t, err)
	require.True(t, got.Equal(&root))

	_, err = Update(root, 3, leafOf(1), leafOf(2), &siblings, Fnc(9))
	require.ErrorIs(t, err, ErrInvalidFnc)
}

func TestSetEmptyLeafRemovesKey(t *testing.T) {
	tree := NewTree()
	tree.Set(3, leafOf(30))
	tree.Set(8, leafOf(80))
	before := tree.Root()

	tree.Set(42, leafOf(1))
	tree.Set(42, EmptyLeaf())

	_, ok := tree.Get(42)
	require.False(t, ok)
	after := tree.Root()
	require.True(t, after.Equal(&before))
}

func TestRandomizedTreeConsistency(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	tree := NewTree()
	shadow := make(map[uint32]fr.Element)
	root := tree.Root()

	for i := 0; i < 200; i++ {
		key := uint32(rng.Intn(1 << 20))
		newValue := leafOf(rng.Uint64() | 1)

		oldValue, present := shadow[key]
		siblings := tree.Prove(key)

		fnc := FncInsert
		if present {
			fnc = FncUpdate
		}
		var err error
		root, err = Update(root, key, oldValue, newValue, &siblings, fnc)
		require.NoError(t, err)

		tree.Set(key, newValue)
		shadow[key] = newValue

		treeRoot := tree.Root()
		require.True(t, root.Equal(&treeRoot), "step %d", i)
	}
}
