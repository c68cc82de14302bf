// Copyright 2024-2025 The zkGraf Authors
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package ledger

import "errors"

var (
	// ErrSizeByteSlice memory checking
	ErrSizeByteSlice = errors.New("byte slice size is inconsistent with record size")

	// ErrInvalidOpcode opcode outside {NOP, ADD, REVOKE}
	ErrInvalidOpcode = errors.New("invalid opcode")

	// ErrIndexOutOfRange position hint or account id outside its valid range
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvalidNeighborAction insert/remove precondition violated. The
	// resolver applies the strict policy: an ADD whose insertion preconditions
	// fail rejects the whole edge operation instead of degrading to a no-op.
	ErrInvalidNeighborAction = errors.New("neighbor action precondition violated")

	// ErrDegreeInvariant new account with nonzero degree, or degree underflow
	ErrDegreeInvariant = errors.New("degree invariant violation")

	// ErrRootMismatch recomputed final root differs from the claimed new root
	ErrRootMismatch = errors.New("recomputed root does not match the claimed root")

	// ErrDigestMismatch inactive slot carries nonzero fields, or a recomputed
	// digest differs from the claimed one
	ErrDigestMismatch = errors.New("recomputed digest does not match the claimed digest")

	// ErrBatchFull the pending batch already holds BatchCapacity operations
	ErrBatchFull = errors.New("batch is full")

	// ErrUnknownAccount revoke referencing an account the operator never saw
	ErrUnknownAccount = errors.New("account is not in the ledger state")
)
