// Copyright 2024-2025 The zkGraf Authors
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package smt implements the keyed sparse Merkle store of the trust-graph
// ledger: a fixed depth-32 tree addressed by 32-bit account ids, hashed with
// MiMC over the BN254 scalar field. The store itself is never materialized
// here; a state is represented by its root and per-key sibling paths supplied
// by the caller, the update primitive only verifies and recombines them.
package smt

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"

	"github.com/zkGraf/zkgraf-rollup/codec"
)

// Depth number of levels of the tree, supports up to 2^32 keys
const Depth = 32

// Fnc selects the leaf update mode
type Fnc uint8

const (
	// FncNop leaves the tree untouched
	FncNop Fnc = iota
	// FncUpdate replaces the value of a present key
	FncUpdate
	// FncInsert writes the value of a previously absent key
	FncInsert
)

var (
	// ErrInvalidInclusionProof the sibling path does not reconstruct the claimed root
	ErrInvalidInclusionProof = errors.New("sibling path does not reconstruct the root")

	// ErrInvalidFnc unknown update mode
	ErrInvalidFnc = errors.New("invalid merkle update function")
)

// Path sibling hashes of one leaf, ordered leaf to root: Path[0] is the
// sibling of the leaf itself.
type Path [Depth]fr.Element

// empty[l] is the hash of a fully empty subtree of height l
var empty [Depth + 1]fr.Element

func init() {
	for l := 0; l < Depth; l++ {
		empty[l+1] = hashNode(&empty[l], &empty[l])
	}
}

// EmptyLeaf returns the canonical value of an absent key (the zero element).
func EmptyLeaf() fr.Element {
	var zero fr.Element
	return zero
}

// EmptySubtree returns the root of a fully empty subtree of height level.
// EmptySubtree(Depth) is the root of the empty tree.
func EmptySubtree(level int) fr.Element {
	return empty[level]
}

// hashNode computes the parent of two sibling nodes.
func hashNode(left, right *fr.Element) fr.Element {
	h := mimc.NewMiMC()
	lb := left.Bytes()
	rb := right.Bytes()
	_, _ = h.Write(lb[:])
	_, _ = h.Write(rb[:])

	var res fr.Element
	res.SetBytes(h.Sum(nil))
	return res
}

// Rebuild recombines a leaf value with its sibling path. Bit l of the key
// places the running node left (0) or right (1) of siblings[l].
func Rebuild(leaf fr.Element, key uint32, siblings *Path) fr.Element {
	cur := leaf
	for level := 0; level < Depth; level++ {
		if codec.KeyBit(key, level) {
			cur = hashNode(&siblings[level], &cur)
		} else {
			cur = hashNode(&cur, &siblings[level])
		}
	}
	return cur
}

// VerifyProof reports whether value at key combined with siblings
// reconstructs root.
func VerifyProof(root fr.Element, key uint32, value fr.Element, siblings *Path) bool {
	rebuilt := Rebuild(value, key, siblings)
	return rebuilt.Equal(&root)
}

// Update applies one leaf update and returns the new root.
//
// FncUpdate requires key to be present: oldValue combined with siblings must
// reconstruct root. FncInsert requires key to be absent: oldValue must be the
// canonical empty leaf and the empty leaf must reconstruct root along the same
// path. FncNop returns root unchanged.
func Update(root fr.Element, key uint32, oldValue, newValue fr.Element, siblings *Path, fnc Fnc) (fr.Element, error) {
	switch fnc {
	case FncNop:
		return root, nil
	case FncUpdate:
	case FncInsert:
		if !oldValue.IsZero() {
			return root, ErrInvalidInclusionProof
		}
	default:
		return root, ErrInvalidFnc
	}

	if !VerifyProof(root, key, oldValue, siblings) {
		return root, ErrInvalidInclusionProof
	}
	return Rebuild(newValue, key, siblings), nil
}
