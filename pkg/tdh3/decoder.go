// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tdh3

import "fmt"

// Decoder states (internal)
const (
	stateIdle = iota
	stateInit
	stateIndexHigh
	stateIndexLow
	stateChecksum
	statePayload
)

// Decoder reassembles the host to radio byte stream into packets
type Decoder struct {
	state       int
	buffer      [PacketSize]byte
	bufferIndex int
	initBytes   int
	initCount   int
}

// NewDecoder creates a new stream decoder
func NewDecoder() *Decoder {
	return &Decoder{state: stateIdle}
}

// Reset resets the decoder state to idle
func (d *Decoder) Reset() {
	d.state = stateIdle
	d.bufferIndex = 0
	d.initBytes = 0
}

// InitCount returns the number of complete init sequences seen
func (d *Decoder) InitCount() int {
	return d.initCount
}

// DecodeByte processes a single byte through the decoder state machine.
// Returns a completed packet, or nil if the packet is incomplete.
func (d *Decoder) DecodeByte(b byte) (*Packet, error) {
	switch d.state {
	case stateIdle:
		switch b {
		case initPrefix[0]:
			d.initBytes = 1
			d.state = stateInit
		case OpBlock, OpTerminalBlock:
			d.buffer[0] = b
			d.bufferIndex = 1
			d.state = stateIndexHigh
		default:
			return nil, fmt.Errorf("unexpected byte 0x%02X outside packet", b)
		}
		return nil, nil

	case stateInit:
		want := byte(InitFill)
		if d.initBytes < len(initPrefix) {
			want = initPrefix[d.initBytes]
		}
		if b != want {
			at := d.initBytes
			d.Reset()
			return nil, fmt.Errorf("init sequence mismatch at byte %d: expected 0x%02X, got 0x%02X", at, want, b)
		}
		d.initBytes++
		if d.initBytes == InitSize {
			d.initCount++
			d.Reset()
		}
		return nil, nil

	case stateIndexHigh, stateIndexLow, stateChecksum:
		d.buffer[d.bufferIndex] = b
		d.bufferIndex++
		d.state++
		return nil, nil

	case statePayload:
		d.buffer[d.bufferIndex] = b
		d.bufferIndex++
		if d.bufferIndex < PacketSize {
			return nil, nil
		}
		packet := Packet(d.buffer)
		d.Reset()
		return &packet, nil

	default:
		d.Reset()
		return nil, fmt.Errorf("invalid state: %d", d.state)
	}
}
