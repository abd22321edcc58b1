// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tdh3

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaddedLength_Properties(t *testing.T) {
	for n := 0; n < 4096; n++ {
		padded := PaddedLength(n)
		require.Zero(t, padded%BlockSize, "n=%d", n)
		require.GreaterOrEqual(t, padded, n, "n=%d", n)
		require.Less(t, padded, n+BlockSize, "n=%d", n)
	}
}

func TestPaddedLength_KnownValues(t *testing.T) {
	tests := []struct {
		raw      int
		expected int
	}{
		{0, 0},
		{1, 32},
		{32, 32},
		{33, 64},
		{40000, 40000},
		{40001, 40032},
		{65536, 65536},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, PaddedLength(tt.raw), "raw=%d", tt.raw)
	}
}

func TestChecksum(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected byte
	}{
		{"empty", nil, 0x00},
		{"all 0x01", bytes.Repeat([]byte{0x01}, 32), 0x20},
		{"all 0xFF", bytes.Repeat([]byte{0xFF}, 32), 0xE0},
		{"wraps", []byte{0x80, 0x80, 0x05}, 0x05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Checksum(tt.data))
		})
	}
}

func TestBuildPacket_Layout(t *testing.T) {
	var block [BlockSize]byte
	for i := range block {
		block[i] = byte(i)
	}

	p := BuildPacket(300, block, false)

	assert.Equal(t, byte(OpBlock), p[0])
	assert.Equal(t, byte(0x01), p[1], "index high byte")
	assert.Equal(t, byte(0x2C), p[2], "index low byte")
	assert.Equal(t, Checksum(block[:]), p[3])
	assert.Equal(t, block[:], p[HeaderSize:])

	assert.Equal(t, 300, p.Index())
	assert.Equal(t, 300*BlockSize, p.Offset())
	assert.True(t, p.ChecksumValid())
	assert.False(t, p.IsTerminal())
}

func TestBuildPacket_TerminalOpcode(t *testing.T) {
	var block [BlockSize]byte
	p := BuildPacket(0, block, true)
	assert.Equal(t, byte(OpTerminalBlock), p.Opcode())
	assert.True(t, p.IsTerminal())
}

func TestBuildPacket_ChecksumCoversPadding(t *testing.T) {
	data := bytes.Repeat([]byte{0xFF}, 40001)
	img, err := NewImage("fw.bin", data)
	require.NoError(t, err)

	last := img.Blocks() - 1
	require.True(t, img.IsTerminal(last))

	p := BuildPacket(last, img.Block(last), true)
	assert.Equal(t, byte(0xFF), p.Checksum())
	assert.Equal(t, make([]byte, BlockSize-1), p.Payload()[1:])
}

func TestInitSequence(t *testing.T) {
	seq := InitSequence()
	assert.Equal(t, 34, InitSize)
	require.Len(t, seq, InitSize)
	assert.Equal(t, []byte{0xA0, 0xEE, 0x74, 0x71, 0x07, 0x74}, seq[:6])
	assert.Equal(t, bytes.Repeat([]byte{0x55}, 28), seq[6:])

	// Callers get their own copy
	seq[0] = 0
	assert.Equal(t, byte(0xA0), InitSequence()[0])
}
