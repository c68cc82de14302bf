// Copyright 2024-2025 The zkGraf Authors
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package ledger

// Action is the effective mutation of one neighbor set.
type Action uint8

const (
	ActionNop Action = iota
	ActionInsert
	ActionRemove
)

// Resolve decides the effective action of a requested opcode on the set,
// given the caller-supplied position hint. Idempotent requests resolve to
// no-ops: ADD of a present element and REVOKE of an absent one leave the set
// untouched. An ADD whose insertion preconditions fail is rejected (strict
// policy), never silently degraded.
func (s *NeighborSet) Resolve(op OpCode, element uint32, idx int) (Action, error) {
	if idx < 0 || idx >= MaxNeighbors {
		return ActionNop, ErrIndexOutOfRange
	}
	eqAt := s[idx] == element && element != 0

	switch op {
	case OpNop:
		return ActionNop, nil
	case OpAdd:
		if eqAt {
			return ActionNop, nil
		}
		if !s.insertable(element, idx) {
			return ActionNop, ErrInvalidNeighborAction
		}
		return ActionInsert, nil
	case OpRevoke:
		if eqAt {
			return ActionRemove, nil
		}
		return ActionNop, nil
	default:
		return ActionNop, ErrInvalidOpcode
	}
}
