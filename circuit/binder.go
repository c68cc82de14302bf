// Copyright 2024-2025 The zkGraf Authors
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package circuit

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/sha2"
	"github.com/consensys/gnark/std/math/uints"

	"github.com/zkGraf/zkgraf-rollup/ledger"
)

// bindPublicInput recomputes the batch commitment inside the circuit: the
// SHA-256 storage hash over the extended slot records, then the masked
// digest of oldRoot || newRoot || batchID || start || count || storageHash.
func (circuit *BatchCircuit) bindPublicInput(api frontend.API) error {
	uapi, err := uints.New[uints.U64](api)
	if err != nil {
		return err
	}

	// storage hash over the 16 extended records
	recordHasher, err := sha2.New(api)
	if err != nil {
		return err
	}
	for i := range circuit.Ops {
		op := &circuit.Ops[i]
		var record []uints.U8
		record = append(record, bytesOf(api, uapi, op.Lo, 4)...)
		record = append(record, bytesOf(api, uapi, op.Hi, 4)...)
		record = append(record, bytesOf(api, uapi, op.StakeIndex, 1)...)
		record = append(record, bytesOf(api, uapi, op.DurationIndex, 1)...)
		record = append(record, bytesOf(api, uapi, op.Op, 1)...)
		record = append(record, bytesOf(api, uapi, op.Timestamp, 4)...)
		recordHasher.Write(record)
	}
	storageHash := recordHasher.Sum()

	// 112 byte preimage, big endian throughout
	preimage := make([]uints.U8, 0, ledger.SizePublicInputPreimage)
	preimage = append(preimage, bytesOf(api, uapi, circuit.OldRoot, 32)...)
	preimage = append(preimage, bytesOf(api, uapi, circuit.NewRoot, 32)...)
	preimage = append(preimage, bytesOf(api, uapi, circuit.BatchID, 8)...)
	preimage = append(preimage, bytesOf(api, uapi, circuit.Start, 4)...)
	preimage = append(preimage, bytesOf(api, uapi, circuit.Count, 4)...)
	preimage = append(preimage, storageHash...)

	inputHasher, err := sha2.New(api)
	if err != nil {
		return err
	}
	inputHasher.Write(preimage)
	digest := inputHasher.Sum()

	// drop the top three bits of the leading byte so the recomposed value
	// fits the scalar field, then fold the 32 bytes big endian
	leading := api.ToBinary(digest[0].Val, 8)
	masked := api.FromBinary(leading[:5]...)

	acc := masked
	for i := 1; i < len(digest); i++ {
		acc = api.Add(api.Mul(acc, 256), digest[i].Val)
	}
	api.AssertIsEqual(acc, circuit.PublicInput)

	return nil
}

// bytesOf decomposes v into its size big-endian bytes. The decomposition
// doubles as the range check for the record fields.
func bytesOf(api frontend.API, uapi *uints.BinaryField[uints.U64], v frontend.Variable, size int) []uints.U8 {
	bits := api.ToBinary(v, size*8)
	out := make([]uints.U8, size)
	for i := 0; i < size; i++ {
		// bits are little endian; byte i holds the most significant remaining eight
		b := api.FromBinary(bits[(size-1-i)*8 : (size-i)*8]...)
		out[i] = uapi.ByteValueOf(b)
	}
	return out
}
