// Copyright 2024-2025 The zkGraf Authors
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package ledger

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/rs/zerolog"

	"github.com/zkGraf/zkgraf-rollup/debug"
	"github.com/zkGraf/zkgraf-rollup/logger"
	"github.com/zkGraf/zkgraf-rollup/smt"
)

// account is the materialized state of one ledger account.
type account struct {
	neighbors NeighborSet
	degree    uint8
}

// Operator materializes the ledger state and turns requested edge mutations
// into fully witnessed operations: sibling paths, old leaves and position
// hints. The pure transition never depends on it; the operator exists so the
// prover pipeline and the tests can construct valid batches. Position hints
// are found by binary search here and only verified downstream.
type Operator struct {
	tree     *smt.Tree
	accounts map[uint32]*account

	committed fr.Element // root at the last commit
	pending   []Operation
	batchID   uint64
	start     uint32

	log zerolog.Logger
}

// NewOperator creates an operator over an empty ledger state.
func NewOperator() *Operator {
	t := smt.NewTree()
	return &Operator{
		tree:      t,
		accounts:  make(map[uint32]*account),
		committed: t.Root(),
		log:       logger.Logger().With().Str("component", "operator").Logger(),
	}
}

// Root returns the root of the working state, including pending operations.
func (o *Operator) Root() fr.Element {
	return o.tree.Root()
}

// CommittedRoot returns the root of the last committed batch.
func (o *Operator) CommittedRoot() fr.Element {
	return o.committed
}

// Pending returns the number of operations waiting for the next batch.
func (o *Operator) Pending() int {
	return len(o.pending)
}

// Add queues an ADD operation for the unordered pair (a, b).
func (o *Operator) Add(a, b uint32) error {
	return o.AddStaked(a, b, 0, 0, 0)
}

// AddStaked queues an ADD carrying the escrow metadata of the finalized
// handshake.
func (o *Operator) AddStaked(a, b uint32, stakeIndex, durationIndex uint8, timestamp uint32) error {
	return o.push(OpAdd, a, b, stakeIndex, durationIndex, timestamp)
}

// Revoke queues a REVOKE operation for the unordered pair (a, b).
func (o *Operator) Revoke(a, b uint32) error {
	return o.push(OpRevoke, a, b, 0, 0, 0)
}

func (o *Operator) push(opc OpCode, a, b uint32, stakeIndex, durationIndex uint8, timestamp uint32) error {
	if len(o.pending) == BatchCapacity {
		return ErrBatchFull
	}
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo == 0 || lo == hi {
		return fmt.Errorf("endpoints (%d, %d): %w", a, b, ErrIndexOutOfRange)
	}
	if opc == OpRevoke {
		if _, ok := o.accounts[lo]; !ok {
			return fmt.Errorf("endpoint %d: %w", lo, ErrUnknownAccount)
		}
		if _, ok := o.accounts[hi]; !ok {
			return fmt.Errorf("endpoint %d: %w", hi, ErrUnknownAccount)
		}
	}

	rootBefore := o.tree.Root()
	op := Operation{
		Op: opc, Lo: lo, Hi: hi,
		StakeIndex: stakeIndex, DurationIndex: durationIndex, Timestamp: timestamp,
	}

	// lower id first, higher id against the intermediate tree
	loPost, err := o.stage(opc, lo, hi, &op.LoWitness)
	if err != nil {
		return fmt.Errorf("endpoint %d: %w", lo, err)
	}
	hiPost, err := o.stage(opc, hi, lo, &op.HiWitness)
	if err != nil {
		o.tree.Set(lo, op.LoWitness.OldLeaf) // roll the staged lo leaf back
		return fmt.Errorf("endpoint %d: %w", hi, err)
	}

	// replay through the pure pipeline; witnesses and tree must agree
	newRoot, err := ApplyEdge(rootBefore, &op)
	treeRoot := o.tree.Root()
	if err != nil || !newRoot.Equal(&treeRoot) {
		o.tree.Set(lo, op.LoWitness.OldLeaf)
		o.tree.Set(hi, op.HiWitness.OldLeaf)
		if err == nil {
			err = ErrRootMismatch
		}
		if debug.Debug {
			o.log.Error().Str("stack", debug.Stack()).Msg("staged operation does not replay")
		}
		return fmt.Errorf("staged operation does not replay: %w", err)
	}

	o.accounts[lo] = loPost
	o.accounts[hi] = hiPost
	o.pending = append(o.pending, op)

	o.log.Debug().
		Uint8("op", uint8(opc)).
		Uint32("lo", lo).
		Uint32("hi", hi).
		Str("root", newRoot.String()).
		Msg("operation staged")
	return nil
}

// stage fills the witness of one endpoint against the current tree, applies
// the resolved action to the working state and returns the post account.
func (o *Operator) stage(opc OpCode, key, element uint32, w *Witness) (*account, error) {
	acct, exists := o.accounts[key]
	if !exists {
		acct = &account{}
	}

	w.Neighbors = acct.neighbors
	w.Degree = acct.degree
	w.IsNew = !exists
	if exists {
		w.OldLeaf = Leaf(acct.degree, &acct.neighbors)
	} else {
		w.OldLeaf = smt.EmptyLeaf()
	}
	w.Siblings = o.tree.Prove(key)

	idx, _ := acct.neighbors.Search(element)
	if idx == MaxNeighbors {
		// full array, element below every entry: point at the last slot so
		// the resolver can still decide (revoke-absent no-op, add rejected)
		idx = MaxNeighbors - 1
	}
	w.Hint = uint8(idx)

	action, err := w.Neighbors.Resolve(opc, element, idx)
	if err != nil {
		return nil, err
	}
	post := &account{neighbors: acct.neighbors, degree: acct.degree}
	switch action {
	case ActionInsert:
		if err := post.neighbors.Insert(element, idx); err != nil {
			return nil, err
		}
		post.degree++
	case ActionRemove:
		if post.degree == 0 {
			return nil, ErrDegreeInvariant
		}
		if err := post.neighbors.Remove(element, idx); err != nil {
			return nil, err
		}
		post.degree--
	}

	o.tree.Set(key, Leaf(post.degree, &post.neighbors))
	return post, nil
}

// Commit assembles the pending operations into a batch, applies it from the
// last committed root and returns the batch with its new root and public
// input. The pending queue is drained only on success.
func (o *Operator) Commit() (*Batch, fr.Element, fr.Element, error) {
	b := &Batch{
		ID:    o.batchID,
		Start: o.start,
		Count: uint32(len(o.pending)),
	}
	copy(b.Slots[:], o.pending)

	newRoot, storageHash, err := b.Apply(o.committed)
	if err != nil {
		return nil, o.committed, fr.Element{}, err
	}
	treeRoot := o.tree.Root()
	if !treeRoot.Equal(&newRoot) {
		return nil, o.committed, fr.Element{}, ErrRootMismatch
	}
	pub := PublicInput(o.committed, newRoot, b.ID, b.Start, b.Count, storageHash)

	o.log.Info().
		Uint64("batch", b.ID).
		Uint32("count", b.Count).
		Str("pub0", pub.String()).
		Msg("batch committed")

	o.batchID++
	o.start += b.Count
	o.committed = newRoot
	o.pending = o.pending[:0]
	return b, newRoot, pub, nil
}
