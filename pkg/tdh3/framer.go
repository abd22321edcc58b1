// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tdh3

// Packet is one wire frame: opcode, block index (big-endian), checksum and
// a 32-byte payload.
type Packet [PacketSize]byte

// PaddedLength rounds rawLength up to the next multiple of BlockSize.
func PaddedLength(rawLength int) int {
	return (rawLength + BlockSize - 1) / BlockSize * BlockSize
}

// Checksum returns the 8-bit wraparound sum of data.
func Checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}

// BuildPacket frames a block. The checksum covers the full 32 bytes, so a
// zero-filled tail on the terminal block is included.
func BuildPacket(index int, block [BlockSize]byte, terminal bool) Packet {
	var p Packet
	p[0] = OpBlock
	if terminal {
		p[0] = OpTerminalBlock
	}
	p[1] = byte(index >> 8)
	p[2] = byte(index)
	p[3] = Checksum(block[:])
	copy(p[HeaderSize:], block[:])
	return p
}

// Opcode returns the packet opcode
func (p *Packet) Opcode() byte {
	return p[0]
}

// Index returns the 16-bit block index
func (p *Packet) Index() int {
	return int(p[1])<<8 | int(p[2])
}

// Checksum returns the checksum carried in the header
func (p *Packet) Checksum() byte {
	return p[3]
}

// Payload returns the block carried by the packet
func (p *Packet) Payload() []byte {
	return p[HeaderSize:]
}

// IsTerminal reports whether the packet carries the last block of the image
func (p *Packet) IsTerminal() bool {
	return p[0] == OpTerminalBlock
}

// Offset returns the byte offset of the block in the padded image
func (p *Packet) Offset() int {
	return p.Index() * BlockSize
}

// ChecksumValid reports whether the header checksum matches the payload
func (p *Packet) ChecksumValid() bool {
	return p.Checksum() == Checksum(p.Payload())
}
