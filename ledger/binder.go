// Copyright 2024-2025 The zkGraf Authors
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package ledger

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zkGraf/zkgraf-rollup/codec"
)

// SizePublicInputPreimage oldRoot(32) || newRoot(32) || batchId(8) || start(4) || count(4) || storageHash(32)
const SizePublicInputPreimage = 112

// PublicInput binds the transition into the single scalar the external
// verifier checks: SHA-256 over the 112-byte concatenation of both roots, the
// batch metadata and the storage hash, truncated to its low 253 bits. The
// result is always strictly below 2^253 and therefore a canonical scalar.
func PublicInput(oldRoot, newRoot fr.Element, batchID uint64, start, count uint32, storageHash [32]byte) fr.Element {
	var buf [SizePublicInputPreimage]byte
	ob := codec.ElementToBytes(&oldRoot)
	copy(buf[0:32], ob[:])
	nb := codec.ElementToBytes(&newRoot)
	copy(buf[32:64], nb[:])
	binary.BigEndian.PutUint64(buf[64:72], batchID)
	binary.BigEndian.PutUint32(buf[72:76], start)
	binary.BigEndian.PutUint32(buf[76:80], count)
	copy(buf[80:112], storageHash[:])

	digest := sha256.Sum256(buf[:])
	return codec.Mask253(digest)
}

// BindBatch is a convenience wrapper binding a batch with its canonical
// storage hash.
func (b *Batch) BindBatch(oldRoot, newRoot fr.Element) fr.Element {
	return PublicInput(oldRoot, newRoot, b.ID, b.Start, b.Count, b.StorageHash())
}
