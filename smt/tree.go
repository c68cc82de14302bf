// Copyright 2024-2025 The zkGraf Authors
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package smt

import (
	"sort"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Tree is an in-memory materialization of the keyed Merkle store. The pure
// transition never needs one; the operator and the tests use it to produce
// the sibling paths the update primitive verifies. Roots and proofs are
// bit-for-bit consistent with Rebuild/Update.
type Tree struct {
	leaves map[uint32]fr.Element
	keys   []uint32 // sorted, mirrors leaves
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{
		leaves: make(map[uint32]fr.Element),
	}
}

// Get returns the leaf value of key and whether the key is present.
func (t *Tree) Get(key uint32) (fr.Element, bool) {
	v, ok := t.leaves[key]
	return v, ok
}

// Set writes the leaf value of key. Writing the empty leaf removes the key.
func (t *Tree) Set(key uint32, value fr.Element) {
	_, present := t.leaves[key]
	if value.IsZero() {
		if present {
			delete(t.leaves, key)
			i := sort.Search(len(t.keys), func(i int) bool { return t.keys[i] >= key })
			t.keys = append(t.keys[:i], t.keys[i+1:]...)
		}
		return
	}
	t.leaves[key] = value
	if !present {
		i := sort.Search(len(t.keys), func(i int) bool { return t.keys[i] >= key })
		t.keys = append(t.keys, 0)
		copy(t.keys[i+1:], t.keys[i:])
		t.keys[i] = key
	}
}

// Root returns the current root of the tree.
func (t *Tree) Root() fr.Element {
	return t.node(Depth, 0)
}

// Prove returns the sibling path of key against the current tree contents.
// The path is valid for absent keys too, which is how insertion witnesses
// are produced.
func (t *Tree) Prove(key uint32) Path {
	var siblings Path
	for level := 0; level < Depth; level++ {
		siblings[level] = t.node(level, uint64(key>>uint(level))^1)
	}
	return siblings
}

// node returns the hash of the subtree of height level rooted at index idx.
// Fully empty subtrees resolve through the precomputed table without
// recursing.
func (t *Tree) node(level int, idx uint64) fr.Element {
	lo := idx << uint(level)
	hi := lo + (uint64(1) << uint(level))

	// smallest populated key >= lo
	i := sort.Search(len(t.keys), func(i int) bool { return uint64(t.keys[i]) >= lo })
	if i == len(t.keys) || uint64(t.keys[i]) >= hi {
		return empty[level]
	}
	if level == 0 {
		return t.leaves[uint32(lo)]
	}
	left := t.node(level-1, 2*idx)
	right := t.node(level-1, 2*idx+1)
	return hashNode(&left, &right)
}
