// Copyright 2024-2025 The zkGraf Authors
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package ledger

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/zkGraf/zkgraf-rollup/codec"
	"github.com/zkGraf/zkgraf-rollup/smt"
)

// Wire format of a fully witnessed batch, CBOR with integer keys. This is how
// the escrow collaborator hands a batch to the prover pipeline: the record
// bytes are the canonical extended records, field elements travel as 32-byte
// big-endian chunks and neighbor arrays as their nonzero prefix.

type witnessWire struct {
	Neighbors []uint32 `cbor:"1,keyasint"`
	Degree    uint8    `cbor:"2,keyasint"`
	IsNew     bool     `cbor:"3,keyasint,omitempty"`
	OldLeaf   []byte   `cbor:"4,keyasint"`
	Siblings  [][]byte `cbor:"5,keyasint"`
	Hint      uint8    `cbor:"6,keyasint"`
}

type operationWire struct {
	Record []byte      `cbor:"1,keyasint"`
	Lo     witnessWire `cbor:"2,keyasint"`
	Hi     witnessWire `cbor:"3,keyasint"`
}

type batchWire struct {
	ID    uint64          `cbor:"1,keyasint"`
	Start uint32          `cbor:"2,keyasint"`
	Ops   []operationWire `cbor:"3,keyasint"`
}

// EncodeBatch writes the active slots of b in the canonical CBOR wire format.
func EncodeBatch(w io.Writer, b *Batch) error {
	if b.Count > BatchCapacity {
		return fmt.Errorf("count %d: %w", b.Count, ErrIndexOutOfRange)
	}
	wire := batchWire{
		ID:    b.ID,
		Start: b.Start,
		Ops:   make([]operationWire, b.Count),
	}
	for i := uint32(0); i < b.Count; i++ {
		rec := b.Slots[i].ExtendedRecord()
		wire.Ops[i] = operationWire{
			Record: rec[:],
			Lo:     witnessToWire(&b.Slots[i].LoWitness),
			Hi:     witnessToWire(&b.Slots[i].HiWitness),
		}
	}

	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return err
	}
	return em.NewEncoder(w).Encode(&wire)
}

// DecodeBatch reads a batch back from its CBOR wire format, rejecting
// malformed records, non-canonical field elements and neighbor prefixes that
// are not strictly descending.
func DecodeBatch(r io.Reader) (*Batch, error) {
	var wire batchWire
	if err := cbor.NewDecoder(r).Decode(&wire); err != nil {
		return nil, err
	}
	if len(wire.Ops) > BatchCapacity {
		return nil, fmt.Errorf("%d operations: %w", len(wire.Ops), ErrIndexOutOfRange)
	}

	b := &Batch{
		ID:    wire.ID,
		Start: wire.Start,
		Count: uint32(len(wire.Ops)),
	}
	for i := range wire.Ops {
		op, err := DecodeExtendedRecord(wire.Ops[i].Record)
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", i, err)
		}
		if op.LoWitness, err = witnessFromWire(&wire.Ops[i].Lo); err != nil {
			return nil, fmt.Errorf("slot %d lo: %w", i, err)
		}
		if op.HiWitness, err = witnessFromWire(&wire.Ops[i].Hi); err != nil {
			return nil, fmt.Errorf("slot %d hi: %w", i, err)
		}
		b.Slots[i] = op
	}
	return b, nil
}

func witnessToWire(w *Witness) witnessWire {
	prefix := make([]uint32, 0, w.Degree)
	for _, v := range w.Neighbors {
		if v == 0 {
			break
		}
		prefix = append(prefix, v)
	}
	old := codec.ElementToBytes(&w.OldLeaf)
	siblings := make([][]byte, smt.Depth)
	for l := range w.Siblings {
		sb := codec.ElementToBytes(&w.Siblings[l])
		siblings[l] = sb[:]
	}
	return witnessWire{
		Neighbors: prefix,
		Degree:    w.Degree,
		IsNew:     w.IsNew,
		OldLeaf:   old[:],
		Siblings:  siblings,
		Hint:      w.Hint,
	}
}

func witnessFromWire(wire *witnessWire) (Witness, error) {
	var w Witness
	if len(wire.Neighbors) > MaxNeighbors {
		return w, ErrIndexOutOfRange
	}
	for i, v := range wire.Neighbors {
		if v == 0 || (i > 0 && wire.Neighbors[i-1] <= v) {
			return w, ErrInvalidNeighborAction
		}
		w.Neighbors[i] = v
	}
	w.Degree = wire.Degree
	w.IsNew = wire.IsNew
	w.Hint = wire.Hint

	var err error
	if w.OldLeaf, err = codec.ElementFromBytes(wire.OldLeaf); err != nil {
		return w, err
	}
	if len(wire.Siblings) != smt.Depth {
		return w, ErrSizeByteSlice
	}
	for l := range wire.Siblings {
		if w.Siblings[l], err = codec.ElementFromBytes(wire.Siblings[l]); err != nil {
			return w, err
		}
	}
	return w, nil
}
