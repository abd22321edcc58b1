// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package tdh3 implements the firmware upload protocol spoken by the TD-H3
// radio bootloader.
//
// The bootloader announces itself by repeating a sentinel byte. The host
// answers with a fixed init sequence, then streams the firmware image as
// 36-byte packets, each carrying one 32-byte block and an 8-bit checksum.
// The radio acknowledges every packet with a single byte.
package tdh3

import "time"

// Block and packet geometry
const (
	BlockSize  = 32
	HeaderSize = 4
	PacketSize = HeaderSize + BlockSize
)

// Packet opcodes
const (
	OpBlock         = 0xA1
	OpTerminalBlock = 0xA2
)

// Handshake bytes
const (
	SentinelByte = 0xA5
	InitFill     = 0x55
	InitSize     = 34
)

// Valid padded firmware size range (inclusive)
const (
	MinFirmwareSize = 40000
	MaxFirmwareSize = 65536
)

// Serial link parameters expected by the bootloader
const (
	DefaultBaudRate    = 115200
	DefaultReadTimeout = 500 * time.Millisecond
)

// DefaultProgressInterval is the number of blocks between progress reports.
const DefaultProgressInterval = 64

// initPrefix is followed by InitFill bytes up to InitSize.
var initPrefix = [...]byte{0xA0, 0xEE, 0x74, 0x71, 0x07, 0x74}

// InitSequence returns a fresh copy of the init sequence sent once the
// bootloader has been found.
func InitSequence() []byte {
	seq := make([]byte, InitSize)
	copy(seq, initPrefix[:])
	for i := len(initPrefix); i < InitSize; i++ {
		seq[i] = InitFill
	}
	return seq
}
