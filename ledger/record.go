// Copyright 2024-2025 The zkGraf Authors
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package ledger

import "encoding/binary"

// Two canonical fixed-size operation record layouts coexist; all multi-byte
// fields are big-endian. The short record is what the legacy digest path
// folds, the extended record feeds the canonical storage hash.
const (
	// SizeShortRecord ilo(4) || ihi(4) || op(1)
	SizeShortRecord = 9

	// SizeExtendedRecord ilo(4) || ihi(4) || stakeIndex(1) || durationIndex(1) || op(1) || timestamp(4)
	SizeExtendedRecord = 15
)

// ShortRecord serializes the 9-byte record of the operation.
func (op *Operation) ShortRecord() [SizeShortRecord]byte {
	var rec [SizeShortRecord]byte
	binary.BigEndian.PutUint32(rec[0:4], op.Lo)
	binary.BigEndian.PutUint32(rec[4:8], op.Hi)
	rec[8] = byte(op.Op)
	return rec
}

// ExtendedRecord serializes the 15-byte record of the operation.
func (op *Operation) ExtendedRecord() [SizeExtendedRecord]byte {
	var rec [SizeExtendedRecord]byte
	binary.BigEndian.PutUint32(rec[0:4], op.Lo)
	binary.BigEndian.PutUint32(rec[4:8], op.Hi)
	rec[8] = op.StakeIndex
	rec[9] = op.DurationIndex
	rec[10] = byte(op.Op)
	binary.BigEndian.PutUint32(rec[11:15], op.Timestamp)
	return rec
}

// DecodeShortRecord deserializes a 9-byte record. The witness fields of the
// returned operation are zero; records only carry the public slot contents.
func DecodeShortRecord(data []byte) (Operation, error) {
	var op Operation
	if len(data) != SizeShortRecord {
		return op, ErrSizeByteSlice
	}
	if data[8] > byte(OpRevoke) {
		return op, ErrInvalidOpcode
	}
	op.Lo = binary.BigEndian.Uint32(data[0:4])
	op.Hi = binary.BigEndian.Uint32(data[4:8])
	op.Op = OpCode(data[8])
	return op, nil
}

// DecodeExtendedRecord deserializes a 15-byte record.
func DecodeExtendedRecord(data []byte) (Operation, error) {
	var op Operation
	if len(data) != SizeExtendedRecord {
		return op, ErrSizeByteSlice
	}
	if data[10] > byte(OpRevoke) {
		return op, ErrInvalidOpcode
	}
	op.Lo = binary.BigEndian.Uint32(data[0:4])
	op.Hi = binary.BigEndian.Uint32(data[4:8])
	op.StakeIndex = data[8]
	op.DurationIndex = data[9]
	op.Op = OpCode(data[10])
	op.Timestamp = binary.BigEndian.Uint32(data[11:15])
	return op, nil
}
