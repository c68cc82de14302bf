// Copyright 2024-2025 The zkGraf Authors
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package ledger

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zkGraf/zkgraf-rollup/smt"
)

func TestEmptyBatchKeepsRoot(t *testing.T) {
	root := smt.EmptySubtree(smt.Depth)

	var b Batch
	newRoot, storageHash, err := b.Apply(root)
	require.NoError(t, err)
	require.True(t, newRoot.Equal(&root))

	// an all-NOP batch hashes to SHA-256 of 16 zero extended records
	want := sha256.Sum256(make([]byte, BatchCapacity*SizeExtendedRecord))
	require.Equal(t, want, storageHash)
}

func TestBatchApplyChainsSlots(t *testing.T) {
	o := NewOperator()
	before := o.CommittedRoot()
	require.NoError(t, o.Add(1, 2))
	require.NoError(t, o.Add(2, 3))
	require.NoError(t, o.Revoke(1, 2))
	treeRoot := o.Root()

	b := Batch{Count: 3}
	copy(b.Slots[:], o.pending)

	newRoot, _, err := b.Apply(before)
	require.NoError(t, err)
	require.True(t, newRoot.Equal(&treeRoot))

	require.NoError(t, b.Verify(before, newRoot))
	require.ErrorIs(t, b.Verify(before, before), ErrRootMismatch)
}

func TestBatchRejectsBadCount(t *testing.T) {
	root := smt.EmptySubtree(smt.Depth)

	b := Batch{Count: BatchCapacity + 1}
	_, _, err := b.Apply(root)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestBatchRejectsDirtyInactiveSlot(t *testing.T) {
	root := smt.EmptySubtree(smt.Depth)

	var b Batch
	b.Slots[5].Lo = 1 // inactive slot with a nonzero record field
	_, _, err := b.Apply(root)
	require.ErrorIs(t, err, ErrDigestMismatch)

	var c Batch
	c.Slots[0].Timestamp = 1
	_, _, err = c.Apply(root)
	require.ErrorIs(t, err, ErrDigestMismatch)
}

func TestBatchAtomicity(t *testing.T) {
	o := NewOperator()
	before := o.CommittedRoot()
	require.NoError(t, o.Add(1, 2))

	b := Batch{Count: 1}
	copy(b.Slots[:], o.pending)
	b.Slots[0].LoWitness.Siblings[0].SetUint64(1) // corrupt one witness

	got, _, err := b.Apply(before)
	require.Error(t, err)
	require.True(t, got.Equal(&before), "input root must be returned untouched")
}

func TestBatchComposability(t *testing.T) {
	// applying 4 operations in one batch reaches the same root as 2+2 in two,
	// only the bound public metadata differs
	edges := [][2]uint32{{1, 2}, {2, 3}, {3, 4}, {1, 4}}

	one := NewOperator()
	for _, e := range edges {
		require.NoError(t, one.Add(e[0], e[1]))
	}
	_, rootOne, _, err := one.Commit()
	require.NoError(t, err)

	two := NewOperator()
	require.NoError(t, two.Add(edges[0][0], edges[0][1]))
	require.NoError(t, two.Add(edges[1][0], edges[1][1]))
	_, _, _, err = two.Commit()
	require.NoError(t, err)
	require.NoError(t, two.Add(edges[2][0], edges[2][1]))
	require.NoError(t, two.Add(edges[3][0], edges[3][1]))
	_, rootTwo, _, err := two.Commit()
	require.NoError(t, err)

	require.True(t, rootOne.Equal(&rootTwo))
}

func TestStorageHashCoversAllSlots(t *testing.T) {
	var a, b Batch
	a.Count = 1
	a.Slots[0] = Operation{Op: OpAdd, Lo: 1, Hi: 2, Timestamp: 100}
	b = a
	b.Slots[0].Timestamp = 101

	require.NotEqual(t, a.StorageHash(), b.StorageHash())

	// the short hash ignores the extended fields
	require.Equal(t, a.StorageHashShort(), b.StorageHashShort())

	// manual recomputation of the extended digest
	h := sha256.New()
	for i := range a.Slots {
		rec := a.Slots[i].ExtendedRecord()
		h.Write(rec[:])
	}
	var want [32]byte
	copy(want[:], h.Sum(nil))
	require.Equal(t, want, a.StorageHash())
}

func TestLegacyDigestBindsMetadata(t *testing.T) {
	var a Batch
	a.ID = 7
	a.Count = 1
	a.Slots[0] = Operation{Op: OpAdd, Lo: 1, Hi: 2}

	b := a
	b.ID = 8
	da := a.LegacyDigest()
	db := b.LegacyDigest()
	require.False(t, da.Equal(&db))

	c := a
	c.Count = 2
	dc := c.LegacyDigest()
	require.False(t, da.Equal(&dc))

	again := a.LegacyDigest()
	require.True(t, da.Equal(&again))
}
