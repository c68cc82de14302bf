// Copyright 2024-2025 The zkGraf Authors
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package codec implements the canonical byte and bit conversions shared by
// every hashing step of the trust-graph transition: big-endian field element
// serialization, tree key bit decomposition and low-253-bit digest masking.
package codec

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Size byte size of a serialized field element
const Size = fr.Bytes

// ErrNonCanonical the byte slice does not hold a canonical field element
var ErrNonCanonical = errors.New("value is not a canonical field element")

// ElementToBytes returns the canonical big-endian serialization of e.
func ElementToBytes(e *fr.Element) [Size]byte {
	return e.Bytes()
}

// ElementFromBytes deserializes a 32-byte big-endian chunk. The input must be
// strictly below the field modulus; a reducing conversion would break the
// bit-exactness contract with external verifiers.
func ElementFromBytes(data []byte) (fr.Element, error) {
	var e fr.Element
	if len(data) != Size {
		return e, ErrNonCanonical
	}
	if err := e.SetBytesCanonical(data); err != nil {
		return e, ErrNonCanonical
	}
	return e, nil
}

// ElementFromUint32 lifts a 32-bit id into the field.
func ElementFromUint32(v uint32) fr.Element {
	var e fr.Element
	e.SetUint64(uint64(v))
	return e
}

// ElementFromUint64 lifts a 64-bit integer into the field.
func ElementFromUint64(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}

// KeyBit returns bit level of key. Level 0 is consumed at the leaf layer of
// the keyed Merkle store, level 31 next to the root.
func KeyBit(key uint32, level int) bool {
	return (key>>uint(level))&1 == 1
}

// KeyBits decomposes key into its 32 path bits, leaf layer first.
func KeyBits(key uint32) [32]bool {
	var bits [32]bool
	for i := range bits {
		bits[i] = KeyBit(key, i)
	}
	return bits
}

// Mask253 truncates a 32-byte digest to its low 253 bits and lifts the result
// into the field. 2^253 is strictly below the BN254 scalar modulus, so the
// masked value is always canonical.
func Mask253(digest [32]byte) fr.Element {
	var masked [32]byte
	copy(masked[:], digest[:])
	masked[0] &= 0x1f

	var e fr.Element
	// cannot fail: masked < 2^253 < r
	_ = e.SetBytesCanonical(masked[:])
	return e
}
