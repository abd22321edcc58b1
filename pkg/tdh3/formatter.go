// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tdh3

import "fmt"

// FormatOpcode returns the human-readable opcode name
func FormatOpcode(op byte) string {
	switch op {
	case OpBlock:
		return "BLOCK"
	case OpTerminalBlock:
		return "TERMINAL_BLOCK"
	default:
		return "UNKNOWN"
	}
}

// FormatPacket formats a packet header as one line
func FormatPacket(p *Packet) string {
	status := "OK"
	if !p.ChecksumValid() {
		status = "BAD"
	}
	return fmt.Sprintf("%s (0x%02X) block=%d offset=%d checksum=0x%02X %s\n",
		FormatOpcode(p.Opcode()), p.Opcode(), p.Index(), p.Offset(), p.Checksum(), status)
}

// FormatPayload returns a hex dump of the packet payload
func FormatPayload(p *Packet) string {
	result := "  Payload: "
	for i, b := range p.Payload() {
		if i > 0 && i%16 == 0 {
			result += "\n           "
		}
		result += fmt.Sprintf("%02X ", b)
	}
	return result + "\n"
}
