// Copyright 2024-2025 The zkGraf Authors
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShortRecordRoundTrip(t *testing.T) {
	ops := []Operation{
		{},
		{Op: OpAdd, Lo: 1, Hi: 2},
		{Op: OpRevoke, Lo: 0xfffffffe, Hi: 0xffffffff},
	}
	for _, op := range ops {
		rec := op.ShortRecord()
		got, err := DecodeShortRecord(rec[:])
		require.NoError(t, err)
		require.Equal(t, op.Op, got.Op)
		require.Equal(t, op.Lo, got.Lo)
		require.Equal(t, op.Hi, got.Hi)
	}
}

func TestShortRecordLayout(t *testing.T) {
	op := Operation{Op: OpAdd, Lo: 0x01020304, Hi: 0x05060708}
	rec := op.ShortRecord()
	require.Equal(t, [SizeShortRecord]byte{1, 2, 3, 4, 5, 6, 7, 8, 1}, rec)
}

func TestExtendedRecordRoundTrip(t *testing.T) {
	op := Operation{
		Op:            OpRevoke,
		Lo:            7,
		Hi:            0xffffffff,
		StakeIndex:    3,
		DurationIndex: 250,
		Timestamp:     0xffffffff,
	}
	rec := op.ExtendedRecord()
	got, err := DecodeExtendedRecord(rec[:])
	require.NoError(t, err)
	require.Equal(t, op.Op, got.Op)
	require.Equal(t, op.Lo, got.Lo)
	require.Equal(t, op.Hi, got.Hi)
	require.Equal(t, op.StakeIndex, got.StakeIndex)
	require.Equal(t, op.DurationIndex, got.DurationIndex)
	require.Equal(t, op.Timestamp, got.Timestamp)
}

func TestExtendedRecordLayout(t *testing.T) {
	op := Operation{
		Op:            OpAdd,
		Lo:            0x01020304,
		Hi:            0x05060708,
		StakeIndex:    9,
		DurationIndex: 10,
		Timestamp:     0x0b0c0d0e,
	}
	rec := op.ExtendedRecord()
	require.Equal(t, [SizeExtendedRecord]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 1, 11, 12, 13, 14}, rec)
}

func TestDecodeRecordErrors(t *testing.T) {
	_, err := DecodeShortRecord(make([]byte, SizeShortRecord-1))
	require.ErrorIs(t, err, ErrSizeByteSlice)
	_, err = DecodeShortRecord(make([]byte, SizeShortRecord+1))
	require.ErrorIs(t, err, ErrSizeByteSlice)

	bad := make([]byte, SizeShortRecord)
	bad[8] = 3
	_, err = DecodeShortRecord(bad)
	require.ErrorIs(t, err, ErrInvalidOpcode)

	_, err = DecodeExtendedRecord(make([]byte, SizeExtendedRecord-1))
	require.ErrorIs(t, err, ErrSizeByteSlice)

	badExt := make([]byte, SizeExtendedRecord)
	badExt[10] = 3
	_, err = DecodeExtendedRecord(badExt)
	require.ErrorIs(t, err, ErrInvalidOpcode)
}
