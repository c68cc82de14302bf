// Copyright 2024-2025 The zkGraf Authors
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package ledger

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

func TestPublicInputBelowFieldBound(t *testing.T) {
	bound := new(big.Int).Lsh(big.NewInt(1), 253)

	var oldRoot, newRoot fr.Element
	var storageHash [32]byte
	for i := uint64(0); i < 500; i++ {
		oldRoot.SetUint64(i)
		newRoot.SetUint64(i * 31)
		storageHash[0] = byte(i)

		pub := PublicInput(oldRoot, newRoot, i, uint32(i), uint32(i%17), storageHash)
		var v big.Int
		pub.BigInt(&v)
		require.Less(t, v.Cmp(bound), 0)
	}
}

func TestPublicInputSensitivity(t *testing.T) {
	var oldRoot, newRoot fr.Element
	oldRoot.SetUint64(1)
	newRoot.SetUint64(2)
	var storageHash [32]byte
	storageHash[31] = 9

	base := PublicInput(oldRoot, newRoot, 3, 4, 5, storageHash)

	// every input flips the digest
	variants := []fr.Element{
		PublicInput(newRoot, newRoot, 3, 4, 5, storageHash),
		PublicInput(oldRoot, oldRoot, 3, 4, 5, storageHash),
		PublicInput(oldRoot, newRoot, 4, 4, 5, storageHash),
		PublicInput(oldRoot, newRoot, 3, 5, 5, storageHash),
		PublicInput(oldRoot, newRoot, 3, 4, 6, storageHash),
	}
	storageHash[31] = 10
	variants = append(variants, PublicInput(oldRoot, newRoot, 3, 4, 5, storageHash))

	for i, v := range variants {
		require.False(t, base.Equal(&v), "variant %d collided", i)
	}

	// and the binding is deterministic
	storageHash[31] = 9
	again := PublicInput(oldRoot, newRoot, 3, 4, 5, storageHash)
	require.True(t, base.Equal(&again))
}

func TestBindBatchMatchesPublicInput(t *testing.T) {
	o := NewOperator()
	before := o.CommittedRoot()
	require.NoError(t, o.Add(1, 2))

	b, newRoot, pub, err := o.Commit()
	require.NoError(t, err)

	want := PublicInput(before, newRoot, b.ID, b.Start, b.Count, b.StorageHash())
	require.True(t, want.Equal(&pub))

	bound := b.BindBatch(before, newRoot)
	require.True(t, bound.Equal(&pub))
}
