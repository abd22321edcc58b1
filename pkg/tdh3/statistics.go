// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tdh3

import (
	"fmt"
	"time"
)

// Statistics tracks packet statistics for a recorded session
type Statistics struct {
	Duration time.Duration

	// Counters
	TotalPackets    uint64
	ValidPackets    uint64
	TerminalPackets uint64
	DecodeErrors    uint64
	ChecksumErrors  uint64
	SequenceErrors  uint64
	MissingAcks     uint64
	Sentinels       uint64
	InitSequences   uint64
	Acks            uint64
	NonZeroAcks     uint64
	Bytes           uint64

	// Rates (calculated)
	PacketRate float64 // packets/sec
	ByteRate   float64 // bytes/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	return &Statistics{}
}

// Update updates statistics based on a packet and its errors
func (s *Statistics) Update(packet *Packet, decodeErr error, validationErrors []ValidationError) {
	if decodeErr != nil {
		s.DecodeErrors++
		return
	}

	s.TotalPackets++
	s.Bytes += BlockSize
	if packet.IsTerminal() {
		s.TerminalPackets++
	}

	if len(validationErrors) == 0 {
		s.ValidPackets++
		return
	}
	s.countAnomalies(validationErrors)
}

// countAnomalies tallies errors not tied to a decoded packet as well
func (s *Statistics) countAnomalies(validationErrors []ValidationError) {
	for _, err := range validationErrors {
		switch err.Type {
		case AnomalyChecksum:
			s.ChecksumErrors++
		case AnomalyOutOfOrder, AnomalyAfterTerminal, AnomalyMissingTerminal:
			s.SequenceErrors++
		case AnomalyMissingAck:
			s.MissingAcks++
		}
	}
}

// Ack records one acknowledgement byte
func (s *Statistics) Ack(value byte) {
	s.Acks++
	if value != 0 {
		s.NonZeroAcks++
	}
}

// Errors returns the total number of errors and anomalies
func (s *Statistics) Errors() uint64 {
	return s.DecodeErrors + s.ChecksumErrors + s.SequenceErrors + s.MissingAcks
}

// CalculateRates calculates packet and byte rates over Duration
func (s *Statistics) CalculateRates() {
	elapsed := s.Duration.Seconds()
	if elapsed > 0 {
		s.PacketRate = float64(s.TotalPackets) / elapsed
		s.ByteRate = float64(s.Bytes) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	var validPercent float64
	if s.TotalPackets > 0 {
		validPercent = float64(s.ValidPackets) * 100.0 / float64(s.TotalPackets)
	}

	result := fmt.Sprintf("=== Statistics (%.1f seconds) ===\n", s.Duration.Seconds())
	result += fmt.Sprintf("Sentinels:       %8d\n", s.Sentinels)
	result += fmt.Sprintf("Init Sequences:  %8d\n", s.InitSequences)
	result += fmt.Sprintf("Total Packets:   %8d\n", s.TotalPackets)
	result += fmt.Sprintf("Valid Packets:   %8d (%.1f%%)\n", s.ValidPackets, validPercent)
	result += fmt.Sprintf("Terminal:        %8d\n", s.TerminalPackets)
	result += fmt.Sprintf("Acks:            %8d\n", s.Acks)

	if s.NonZeroAcks > 0 {
		result += fmt.Sprintf("  Non-zero:         %5d\n", s.NonZeroAcks)
	}
	if s.DecodeErrors > 0 {
		result += fmt.Sprintf("Decode Errors:   %8d\n", s.DecodeErrors)
	}
	if s.ChecksumErrors > 0 {
		result += fmt.Sprintf("Checksum Errors: %8d\n", s.ChecksumErrors)
	}
	if s.SequenceErrors > 0 {
		result += fmt.Sprintf("Sequence Errors: %8d\n", s.SequenceErrors)
	}
	if s.MissingAcks > 0 {
		result += fmt.Sprintf("Missing Acks:    %8d\n", s.MissingAcks)
	}

	result += fmt.Sprintf("Packet Rate:     %8.1f pkts/sec\n", s.PacketRate)
	result += fmt.Sprintf("Throughput:      %8.1f B/sec\n", s.ByteRate)
	result += "================================\n"

	return result
}
