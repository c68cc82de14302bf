// Copyright 2024-2025 The zkGraf Authors
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package ledger

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zkGraf/zkgraf-rollup/smt"
)

// fncFor derives the Merkle update mode of one endpoint from the requested
// opcode and the endpoint's new-account flag.
func fncFor(op OpCode, isNew bool) smt.Fnc {
	switch op {
	case OpAdd:
		if isNew {
			return smt.FncInsert
		}
		return smt.FncUpdate
	case OpRevoke:
		return smt.FncUpdate
	default:
		return smt.FncNop
	}
}

// ApplyEdge applies one edge operation to both endpoints and returns the new
// root. The lower id is always processed first, the higher id against the
// intermediate root: the fixed order keeps the transition deterministic and
// independently re-derivable by the external verifier.
func ApplyEdge(root fr.Element, op *Operation) (fr.Element, error) {
	if op.Op > OpRevoke {
		return root, ErrInvalidOpcode
	}
	if op.Op == OpNop {
		return root, nil
	}
	if op.Lo == 0 || op.Lo >= op.Hi {
		return root, fmt.Errorf("endpoints (%d, %d): %w", op.Lo, op.Hi, ErrIndexOutOfRange)
	}

	intermediate, err := applyEndpoint(root, op.Op, op.Lo, op.Hi, &op.LoWitness)
	if err != nil {
		return root, fmt.Errorf("endpoint %d: %w", op.Lo, err)
	}
	newRoot, err := applyEndpoint(intermediate, op.Op, op.Hi, op.Lo, &op.HiWitness)
	if err != nil {
		return root, fmt.Errorf("endpoint %d: %w", op.Hi, err)
	}
	return newRoot, nil
}

// applyEndpoint verifies one endpoint's witness against the current root,
// resolves and applies the neighbor action and runs the Merkle update.
func applyEndpoint(root fr.Element, opc OpCode, key, element uint32, w *Witness) (fr.Element, error) {
	if w.IsNew {
		if w.Degree != 0 {
			return root, ErrDegreeInvariant
		}
		if !w.Neighbors.IsZero() {
			return root, ErrDegreeInvariant
		}
		if !w.OldLeaf.IsZero() {
			return root, smt.ErrInvalidInclusionProof
		}
		if opc == OpRevoke {
			// a revoke endpoint always exists already
			return root, smt.ErrInvalidInclusionProof
		}
	} else {
		expected := Leaf(w.Degree, &w.Neighbors)
		if !expected.Equal(&w.OldLeaf) {
			return root, smt.ErrInvalidInclusionProof
		}
	}

	action, err := w.Neighbors.Resolve(opc, element, int(w.Hint))
	if err != nil {
		return root, err
	}

	neighbors := w.Neighbors // arrays copy by value
	degree := w.Degree
	switch action {
	case ActionInsert:
		if err := neighbors.Insert(element, int(w.Hint)); err != nil {
			return root, err
		}
		degree++
	case ActionRemove:
		if degree == 0 {
			return root, ErrDegreeInvariant
		}
		if err := neighbors.Remove(element, int(w.Hint)); err != nil {
			return root, err
		}
		degree--
	}

	newLeaf := Leaf(degree, &neighbors)
	return smt.Update(root, key, w.OldLeaf, newLeaf, &w.Siblings, fncFor(opc, w.IsNew))
}
