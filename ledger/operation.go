// Copyright 2024-2025 The zkGraf Authors
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package ledger

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zkGraf/zkgraf-rollup/smt"
)

// OpCode requested edge operation
type OpCode uint8

const (
	OpNop    OpCode = 0
	OpAdd    OpCode = 1
	OpRevoke OpCode = 2
)

// Witness holds everything needed to verify and apply one endpoint's leaf
// update: the claimed pre-state of the account, its sibling path against the
// current root and the position hint the resolver verifies.
type Witness struct {
	Neighbors NeighborSet
	Degree    uint8
	IsNew     bool
	OldLeaf   fr.Element
	Siblings  smt.Path
	Hint      uint8
}

// Operation is one edge operation on the unordered pair (Lo, Hi), Lo < Hi.
// StakeIndex, DurationIndex and Timestamp originate in the escrow handshake
// and only matter to the extended record digest; the transition itself never
// interprets them.
type Operation struct {
	Op OpCode
	Lo uint32
	Hi uint32

	StakeIndex    uint8
	DurationIndex uint8
	Timestamp     uint32

	LoWitness Witness
	HiWitness Witness
}

// recordZero reports whether all record-visible fields are zero, the required
// shape of an inactive batch slot.
func (op *Operation) recordZero() bool {
	return op.Op == OpNop && op.Lo == 0 && op.Hi == 0 &&
		op.StakeIndex == 0 && op.DurationIndex == 0 && op.Timestamp == 0
}
