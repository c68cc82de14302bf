// Copyright 2024-2025 The zkGraf Authors
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package ledger

import (
	"crypto/sha256"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"

	"github.com/zkGraf/zkgraf-rollup/codec"
)

// BatchCapacity number of operation slots of one batch, fixed by the circuit
const BatchCapacity = 16

// Batch is an ordered, fixed-capacity sequence of edge operations applied
// atomically. Slots at index >= Count are inactive and must carry all-zero
// record fields; Start is the global sequence number of the first slot.
type Batch struct {
	ID    uint64
	Start uint32
	Count uint32

	Slots [BatchCapacity]Operation
}

// Apply chains all slots from oldRoot and returns the resulting root together
// with the canonical storage hash. Inactive slots are forced to no-ops after
// their record fields are checked to be zero. Either the whole batch applies
// or the batch is rejected; the input root is returned untouched on error.
func (b *Batch) Apply(oldRoot fr.Element) (fr.Element, [32]byte, error) {
	var digest [32]byte
	if b.Count > BatchCapacity {
		return oldRoot, digest, fmt.Errorf("count %d: %w", b.Count, ErrIndexOutOfRange)
	}

	root := oldRoot
	for i := range b.Slots {
		if uint32(i) >= b.Count {
			if !b.Slots[i].recordZero() {
				return oldRoot, digest, fmt.Errorf("inactive slot %d: %w", i, ErrDigestMismatch)
			}
			continue // effective opcode is NOP
		}
		r, err := ApplyEdge(root, &b.Slots[i])
		if err != nil {
			return oldRoot, digest, fmt.Errorf("slot %d: %w", i, err)
		}
		root = r
	}
	return root, b.StorageHash(), nil
}

// Verify applies the batch and checks the claimed new root.
func (b *Batch) Verify(oldRoot, claimedNewRoot fr.Element) error {
	newRoot, _, err := b.Apply(oldRoot)
	if err != nil {
		return err
	}
	if !newRoot.Equal(&claimedNewRoot) {
		return ErrRootMismatch
	}
	return nil
}

// StorageHash is the canonical batch digest: SHA-256 over the concatenation
// of all BatchCapacity extended records, inactive slots contributing all-zero
// records. The ledger contract recomputes exactly this value.
func (b *Batch) StorageHash() [32]byte {
	h := sha256.New()
	for i := range b.Slots {
		rec := b.Slots[i].ExtendedRecord()
		_, _ = h.Write(rec[:])
	}
	var digest [32]byte
	copy(digest[:], h.Sum(nil))
	return digest
}

// StorageHashShort is the SHA-256 digest over the concatenation of all
// BatchCapacity short records, for deployments consuming the 9-byte layout.
func (b *Batch) StorageHashShort() [32]byte {
	h := sha256.New()
	for i := range b.Slots {
		rec := b.Slots[i].ShortRecord()
		_, _ = h.Write(rec[:])
	}
	var digest [32]byte
	copy(digest[:], h.Sum(nil))
	return digest
}

// LegacyDigest is the auxiliary in-field consistency digest: the short
// records folded through a running two-input MiMC seeded at zero, with the
// batch id and the active count bound into the final folds. Retained for the
// legacy consistency path only; new consumers should bind StorageHash.
func (b *Batch) LegacyDigest() fr.Element {
	var acc fr.Element
	for i := range b.Slots {
		rec := b.Slots[i].ShortRecord()
		var e fr.Element
		e.SetBytes(rec[:]) // 9 bytes, always canonical
		acc = foldMiMC(acc, e)
	}
	acc = foldMiMC(acc, codec.ElementFromUint64(b.ID))
	acc = foldMiMC(acc, codec.ElementFromUint64(uint64(b.Count)))
	return acc
}

func foldMiMC(acc, v fr.Element) fr.Element {
	h := mimc.NewMiMC()
	ab := acc.Bytes()
	vb := v.Bytes()
	_, _ = h.Write(ab[:])
	_, _ = h.Write(vb[:])

	var res fr.Element
	res.SetBytes(h.Sum(nil))
	return res
}
