// Copyright 2024-2025 The zkGraf Authors
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package ledger

import (
	"sort"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"

	"github.com/zkGraf/zkgraf-rollup/codec"
)

const (
	// MaxNeighbors fixed capacity of one account's neighbor set
	MaxNeighbors = 64

	// commitmentChunk width of one sub-hash of the neighbor commitment
	commitmentChunk = 16
)

// NeighborSet is the fixed-capacity neighbor array of one account: strictly
// descending over its nonzero entries, zero-padded tail. The exact positional
// layout feeds the commitment, so the set is a plain array with explicit
// shift routines rather than a dynamic collection.
type NeighborSet [MaxNeighbors]uint32

// Commitment chains the 64-element vector into a single field element: four
// 16-wide MiMC sub-hashes combined by a final MiMC over the four sub-digests.
// The degree is not folded in here; it is bound once at the leaf, see Leaf.
func (s *NeighborSet) Commitment() fr.Element {
	var sub [MaxNeighbors / commitmentChunk]fr.Element
	for c := range sub {
		h := mimc.NewMiMC()
		for i := 0; i < commitmentChunk; i++ {
			e := codec.ElementFromUint32(s[c*commitmentChunk+i])
			b := e.Bytes()
			_, _ = h.Write(b[:])
		}
		sub[c].SetBytes(h.Sum(nil))
	}

	h := mimc.NewMiMC()
	for c := range sub {
		b := sub[c].Bytes()
		_, _ = h.Write(b[:])
	}
	var res fr.Element
	res.SetBytes(h.Sum(nil))
	return res
}

// Leaf computes the ledger leaf value of an account: MiMC(degree, commitment).
func Leaf(degree uint8, s *NeighborSet) fr.Element {
	h := mimc.NewMiMC()
	d := codec.ElementFromUint64(uint64(degree))
	db := d.Bytes()
	_, _ = h.Write(db[:])
	c := s.Commitment()
	cb := c.Bytes()
	_, _ = h.Write(cb[:])

	var res fr.Element
	res.SetBytes(h.Sum(nil))
	return res
}

// insertable reports whether element can be placed at idx without breaking
// the strictly-descending, zero-padded layout. idx must already be in range.
func (s *NeighborSet) insertable(element uint32, idx int) bool {
	if element == 0 {
		return false
	}
	if s[MaxNeighbors-1] != 0 { // no room
		return false
	}
	if idx > 0 && s[idx-1] <= element {
		return false
	}
	return s[idx] < element
}

// Insert places element at idx, shifting [idx..62] one slot right.
func (s *NeighborSet) Insert(element uint32, idx int) error {
	if idx < 0 || idx >= MaxNeighbors {
		return ErrIndexOutOfRange
	}
	if !s.insertable(element, idx) {
		return ErrInvalidNeighborAction
	}
	copy(s[idx+1:], s[idx:MaxNeighbors-1])
	s[idx] = element
	return nil
}

// Remove drops the element at idx, shifting [idx+1..63] one slot left and
// zeroing the freed tail slot.
func (s *NeighborSet) Remove(element uint32, idx int) error {
	if idx < 0 || idx >= MaxNeighbors {
		return ErrIndexOutOfRange
	}
	if s[idx] != element {
		return ErrInvalidNeighborAction
	}
	copy(s[idx:], s[idx+1:])
	s[MaxNeighbors-1] = 0
	return nil
}

// Search binary-searches the descending array for element and returns its
// position, or the position at which it would be inserted. The operator uses
// it to produce position hints; the processors and the circuit only verify
// them.
func (s *NeighborSet) Search(element uint32) (idx int, found bool) {
	idx = sort.Search(MaxNeighbors, func(i int) bool { return s[i] <= element })
	found = idx < MaxNeighbors && s[idx] == element && element != 0
	return idx, found
}

// Degree counts the populated slots.
func (s *NeighborSet) Degree() uint8 {
	var d uint8
	for _, v := range s {
		if v != 0 {
			d++
		}
	}
	return d
}

// IsZero reports whether the set holds no neighbors.
func (s *NeighborSet) IsZero() bool {
	for _, v := range s {
		if v != 0 {
			return false
		}
	}
	return true
}
