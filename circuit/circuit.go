// Copyright 2024-2025 The zkGraf Authors
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package circuit implements the proving circuit of the trust-graph
// transition. Define mirrors the plain ledger pipeline bit-exactly: the same
// neighbor commitments, hint-verified actions, keyed Merkle updates, root
// chaining and public-input binding, expressed as constraints. Every
// validation error of the plain pipeline becomes an unsatisfiable system
// here, which the external verifier observes as a proof failure.
package circuit

import (
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
	"github.com/consensys/gnark/std/math/cmp"

	"github.com/zkGraf/zkgraf-rollup/ledger"
	"github.com/zkGraf/zkgraf-rollup/smt"
)

const (
	// BatchSize number of operation slots, mirrors ledger.BatchCapacity
	BatchSize = ledger.BatchCapacity

	// Depth of the keyed Merkle store
	Depth = smt.Depth

	// MaxNeighbors capacity of one neighbor set
	MaxNeighbors = ledger.MaxNeighbors

	commitmentChunk = 16
)

// WitnessConstraints one endpoint's witness encoded as constraints
type WitnessConstraints struct {
	Neighbors [MaxNeighbors]frontend.Variable
	Degree    frontend.Variable
	IsNew     frontend.Variable
	OldLeaf   frontend.Variable
	Siblings  [Depth]frontend.Variable
	Hint      frontend.Variable
}

// OperationConstraints one edge operation encoded as constraints
type OperationConstraints struct {
	Op            frontend.Variable
	Lo            frontend.Variable
	Hi            frontend.Variable
	StakeIndex    frontend.Variable
	DurationIndex frontend.Variable
	Timestamp     frontend.Variable

	LoWitness WitnessConstraints
	HiWitness WitnessConstraints
}

// BatchCircuit proves one batch transition. The only values shared with the
// verifier are the two roots and the masked public input; everything else,
// including the slot records the storage hash commits to, is witness.
type BatchCircuit struct {
	// ---------------------------------------------------------------------------------------------
	// SECRET INPUTS

	Ops    [BatchSize]OperationConstraints
	Active [BatchSize]frontend.Variable // 1 for slots below the active count

	BatchID frontend.Variable
	Start   frontend.Variable
	Count   frontend.Variable

	// ---------------------------------------------------------------------------------------------
	// PUBLIC INPUTS

	OldRoot     frontend.Variable `gnark:",public"`
	NewRoot     frontend.Variable `gnark:",public"`
	PublicInput frontend.Variable `gnark:",public"`
}

// Define declares the batch transition constraints.
func (circuit *BatchCircuit) Define(api frontend.API) error {
	hFunc, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	// neighbor ids and roots-of-32-bit values differ by less than 2^34
	bc := cmp.NewBoundedComparator(api, big.NewInt(1<<34), false)

	// the activity mask is a monotone run of ones summing to Count
	sumActive := frontend.Variable(0)
	for i := range circuit.Active {
		api.AssertIsBoolean(circuit.Active[i])
		if i > 0 {
			api.AssertIsEqual(api.Mul(circuit.Active[i], api.Sub(1, circuit.Active[i-1])), 0)
		}
		sumActive = api.Add(sumActive, circuit.Active[i])
	}
	api.AssertIsEqual(sumActive, circuit.Count)

	for i := range circuit.Ops {
		op := &circuit.Ops[i]

		// record fields are range bound
		api.ToBinary(op.Lo, 32)
		api.ToBinary(op.Hi, 32)
		api.ToBinary(op.Timestamp, 32)
		api.ToBinary(op.StakeIndex, 8)
		api.ToBinary(op.DurationIndex, 8)
		api.AssertIsEqual(api.Mul(op.Op, api.Sub(op.Op, 1), api.Sub(op.Op, 2)), 0)

		// inactive slots carry all-zero record fields
		inactive := api.Sub(1, circuit.Active[i])
		api.AssertIsEqual(api.Mul(inactive, op.Op), 0)
		api.AssertIsEqual(api.Mul(inactive, op.Lo), 0)
		api.AssertIsEqual(api.Mul(inactive, op.Hi), 0)
		api.AssertIsEqual(api.Mul(inactive, op.StakeIndex), 0)
		api.AssertIsEqual(api.Mul(inactive, op.DurationIndex), 0)
		api.AssertIsEqual(api.Mul(inactive, op.Timestamp), 0)
	}

	// chain the roots left to right
	root := circuit.OldRoot
	for i := range circuit.Ops {
		root = applyOperation(api, &hFunc, bc, root, circuit.Active[i], &circuit.Ops[i])
	}
	api.AssertIsEqual(root, circuit.NewRoot)

	return circuit.bindPublicInput(api)
}

// applyOperation applies one edge operation to both endpoints, lower id
// first, and returns the chained root.
func applyOperation(api frontend.API, hFunc *mimc.MiMC, bc *cmp.BoundedComparator, root, active frontend.Variable, op *OperationConstraints) frontend.Variable {
	opEff := api.Mul(active, op.Op)

	// enabled operations reference a valid ordered pair: 0 < lo < hi
	enabled := api.Sub(1, api.IsZero(opEff))
	api.AssertIsEqual(api.Mul(enabled, api.IsZero(op.Lo)), 0)
	loLtHi := bc.IsLess(op.Lo, op.Hi)
	api.AssertIsEqual(api.Mul(enabled, api.Sub(1, loLtHi)), 0)

	intermediate := applyEndpoint(api, hFunc, bc, root, opEff, op.Lo, op.Hi, &op.LoWitness)
	return applyEndpoint(api, hFunc, bc, intermediate, opEff, op.Hi, op.Lo, &op.HiWitness)
}

// applyEndpoint verifies one endpoint witness, applies the resolved neighbor
// action and recombines both Merkle paths. It returns the updated root, or
// the incoming root unchanged for no-op slots.
func applyEndpoint(api frontend.API, hFunc *mimc.MiMC, bc *cmp.BoundedComparator, root, opEff, key, element frontend.Variable, w *WitnessConstraints) frontend.Variable {
	isAdd := api.IsZero(api.Sub(opEff, 1))
	isRevoke := api.IsZero(api.Sub(opEff, 2))
	enabled := api.Add(isAdd, isRevoke)

	api.AssertIsBoolean(w.IsNew)
	api.AssertIsLessOrEqual(w.Degree, MaxNeighbors)
	for j := 0; j < MaxNeighbors; j++ {
		api.ToBinary(w.Neighbors[j], 32)
	}

	// a new account starts empty, and only an ADD may create one
	api.AssertIsEqual(api.Mul(w.IsNew, w.Degree), 0)
	api.AssertIsEqual(api.Mul(w.IsNew, w.OldLeaf), 0)
	for j := 0; j < MaxNeighbors; j++ {
		api.AssertIsEqual(api.Mul(w.IsNew, w.Neighbors[j]), 0)
	}
	api.AssertIsEqual(api.Mul(isRevoke, w.IsNew), 0)

	// enabled endpoints carry a nonzero element id
	api.AssertIsEqual(api.Mul(enabled, api.IsZero(element)), 0)

	// one-hot position selectors around the hint
	at := make([]frontend.Variable, MaxNeighbors)
	past := make([]frontend.Variable, MaxNeighbors)
	sumAt := frontend.Variable(0)
	for j := 0; j < MaxNeighbors; j++ {
		at[j] = api.IsZero(api.Sub(w.Hint, j))
		if j == 0 {
			past[j] = frontend.Variable(0)
		} else {
			past[j] = api.Add(past[j-1], at[j-1])
		}
		sumAt = api.Add(sumAt, at[j])
	}
	api.AssertIsEqual(sumAt, 1) // hint in [0, 64)

	// the entries at and before the hinted position
	elAt := frontend.Variable(0)
	prev := frontend.Variable(0)
	for j := 0; j < MaxNeighbors; j++ {
		elAt = api.Add(elAt, api.Mul(at[j], w.Neighbors[j]))
		if j > 0 {
			prev = api.Add(prev, api.Mul(at[j], w.Neighbors[j-1]))
		}
	}
	eqAt := api.IsZero(api.Sub(elAt, element))

	doInsert := api.Mul(isAdd, api.Sub(1, eqAt))
	doRemove := api.Mul(isRevoke, eqAt)

	// strict policy: an ADD of an absent element must satisfy the insertion
	// preconditions, otherwise the system is unsatisfiable
	roomOk := api.IsZero(w.Neighbors[MaxNeighbors-1])
	hintZero := api.IsZero(w.Hint)
	prevGt := bc.IsLess(element, prev)
	gapHiOk := api.Add(hintZero, api.Mul(api.Sub(1, hintZero), prevGt))
	gapLoOk := bc.IsLess(elAt, element)
	insertOk := api.Mul(roomOk, gapHiOk, gapLoOk)
	api.AssertIsEqual(api.Mul(doInsert, api.Sub(1, insertOk)), 0)

	// shifted arrays for both actions; the running value beyond slot 63 is 0
	updated := make([]frontend.Variable, MaxNeighbors)
	for j := 0; j < MaxNeighbors; j++ {
		before := api.Sub(1, api.Add(at[j], past[j]))

		ins := api.Mul(at[j], element)
		ins = api.Add(ins, api.Mul(before, w.Neighbors[j]))
		if j > 0 {
			ins = api.Add(ins, api.Mul(past[j], w.Neighbors[j-1]))
		}

		var next frontend.Variable = 0
		if j < MaxNeighbors-1 {
			next = w.Neighbors[j+1]
		}
		rem := api.Mul(api.Add(at[j], past[j]), next)
		rem = api.Add(rem, api.Mul(before, w.Neighbors[j]))

		updated[j] = api.Add(
			w.Neighbors[j],
			api.Mul(doInsert, api.Sub(ins, w.Neighbors[j])),
			api.Mul(doRemove, api.Sub(rem, w.Neighbors[j])),
		)
	}
	newDegree := api.Add(w.Degree, api.Sub(doInsert, doRemove))

	// existing endpoints must open their claimed old leaf
	oldLeaf := leafHash(api, hFunc, w.Degree, neighborCommitment(api, hFunc, w.Neighbors[:]))
	notNew := api.Sub(1, w.IsNew)
	api.AssertIsEqual(api.Mul(enabled, notNew, api.Sub(oldLeaf, w.OldLeaf)), 0)

	newLeaf := leafHash(api, hFunc, newDegree, neighborCommitment(api, hFunc, updated))

	// recombine both paths with the same siblings; bit l of the key places
	// the running node right of its sibling
	bits := api.ToBinary(key, Depth)
	oldAcc := w.OldLeaf
	newAcc := newLeaf
	for l := 0; l < Depth; l++ {
		sib := w.Siblings[l]

		hFunc.Reset()
		hFunc.Write(api.Select(bits[l], sib, oldAcc), api.Select(bits[l], oldAcc, sib))
		oldAcc = hFunc.Sum()

		hFunc.Reset()
		hFunc.Write(api.Select(bits[l], sib, newAcc), api.Select(bits[l], newAcc, sib))
		newAcc = hFunc.Sum()
	}
	api.AssertIsEqual(api.Mul(enabled, api.Sub(oldAcc, root)), 0)

	return api.Select(enabled, newAcc, root)
}

// neighborCommitment chains the 64 neighbor slots into four 16-wide MiMC
// sub-hashes combined by a final MiMC, matching ledger.NeighborSet.Commitment.
func neighborCommitment(api frontend.API, hFunc *mimc.MiMC, neighbors []frontend.Variable) frontend.Variable {
	var sub [MaxNeighbors / commitmentChunk]frontend.Variable
	for c := range sub {
		hFunc.Reset()
		hFunc.Write(neighbors[c*commitmentChunk : (c+1)*commitmentChunk]...)
		sub[c] = hFunc.Sum()
	}
	hFunc.Reset()
	hFunc.Write(sub[:]...)
	return hFunc.Sum()
}

// leafHash computes MiMC(degree, commitment), matching ledger.Leaf.
func leafHash(api frontend.API, hFunc *mimc.MiMC, degree, commitment frontend.Variable) frontend.Variable {
	hFunc.Reset()
	hFunc.Write(degree, commitment)
	return hFunc.Sum()
}
