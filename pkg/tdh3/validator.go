// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tdh3

import "fmt"

// AnomalyType represents different types of packet anomalies
type AnomalyType int

const (
	AnomalyChecksum AnomalyType = iota
	AnomalyOutOfOrder
	AnomalyAfterTerminal
	AnomalyMissingTerminal
	AnomalyMissingAck
)

// ValidationError represents a packet validation failure
type ValidationError struct {
	Type    AnomalyType
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

// ValidatePacket checks a single packet in isolation.
// Returns a slice of validation errors (empty if packet is valid)
func ValidatePacket(p *Packet) []ValidationError {
	errors := []ValidationError{}

	if !p.ChecksumValid() {
		calculated := Checksum(p.Payload())
		errors = append(errors, ValidationError{
			Type: AnomalyChecksum,
			Message: fmt.Sprintf("Checksum mismatch at block %d: header 0x%02X, payload sums to 0x%02X",
				p.Index(), p.Checksum(), calculated),
			Details: map[string]interface{}{"received": p.Checksum(), "calculated": calculated},
		})
	}

	return errors
}

// SequenceValidator checks that packets form one complete upload: indices
// counting up from zero and a single terminal block at the end.
type SequenceValidator struct {
	next         int
	terminalSeen bool
}

// NewSequenceValidator creates a validator expecting block 0 first
func NewSequenceValidator() *SequenceValidator {
	return &SequenceValidator{}
}

// Check validates p against the packets seen before it
func (v *SequenceValidator) Check(p *Packet) []ValidationError {
	errors := ValidatePacket(p)

	if v.terminalSeen {
		errors = append(errors, ValidationError{
			Type:    AnomalyAfterTerminal,
			Message: fmt.Sprintf("Block %d sent after the terminal block", p.Index()),
			Details: map[string]interface{}{"index": p.Index()},
		})
	}

	if p.Index() != v.next {
		errors = append(errors, ValidationError{
			Type:    AnomalyOutOfOrder,
			Message: fmt.Sprintf("Block index %d out of order (expected %d)", p.Index(), v.next),
			Details: map[string]interface{}{"received": p.Index(), "expected": v.next},
		})
	}

	v.next = p.Index() + 1
	if p.IsTerminal() {
		v.terminalSeen = true
	}

	return errors
}

// Finish reports anomalies that are only visible at the end of a stream
func (v *SequenceValidator) Finish() []ValidationError {
	if v.next > 0 && !v.terminalSeen {
		return []ValidationError{{
			Type:    AnomalyMissingTerminal,
			Message: fmt.Sprintf("Upload ended after %d blocks without a terminal block", v.next),
			Details: map[string]interface{}{"blocks": v.next},
		}}
	}
	return nil
}
