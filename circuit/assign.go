// Copyright 2024-2025 The zkGraf Authors
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package circuit

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zkGraf/zkgraf-rollup/ledger"
)

// Assign builds a full witness assignment from a batch applied between the
// two roots. The caller supplies the public input it expects the verifier to
// check; Batch.BindBatch produces the matching value.
func Assign(batch *ledger.Batch, oldRoot, newRoot, publicInput fr.Element) *BatchCircuit {
	var circuit BatchCircuit

	circuit.BatchID = batch.ID
	circuit.Start = batch.Start
	circuit.Count = batch.Count
	circuit.OldRoot = oldRoot
	circuit.NewRoot = newRoot
	circuit.PublicInput = publicInput

	for i := range batch.Slots {
		if uint32(i) < batch.Count {
			circuit.Active[i] = 1
		} else {
			circuit.Active[i] = 0
		}
		assignOperation(&circuit.Ops[i], &batch.Slots[i])
	}
	return &circuit
}

func assignOperation(dst *OperationConstraints, op *ledger.Operation) {
	dst.Op = uint8(op.Op)
	dst.Lo = op.Lo
	dst.Hi = op.Hi
	dst.StakeIndex = op.StakeIndex
	dst.DurationIndex = op.DurationIndex
	dst.Timestamp = op.Timestamp
	assignWitness(&dst.LoWitness, &op.LoWitness)
	assignWitness(&dst.HiWitness, &op.HiWitness)
}

func assignWitness(dst *WitnessConstraints, w *ledger.Witness) {
	for j := range w.Neighbors {
		dst.Neighbors[j] = w.Neighbors[j]
	}
	dst.Degree = w.Degree
	if w.IsNew {
		dst.IsNew = 1
	} else {
		dst.IsNew = 0
	}
	dst.OldLeaf = w.OldLeaf
	for l := range w.Siblings {
		dst.Siblings[l] = w.Siblings[l]
	}
	dst.Hint = w.Hint
}
