// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tdh3

import "time"

// Progress phases
const (
	PhaseWaiting  = "waiting"
	PhaseArmed    = "armed"
	PhaseFlashing = "flashing"
	PhaseComplete = "complete"
)

// Progress is passed to the ProgressCallback.
type Progress struct {
	// Phase is one of PhaseWaiting (once per handshake poll), PhaseArmed,
	// PhaseFlashing (every ProgressInterval blocks) or PhaseComplete
	Phase string

	// Block is the index of the block about to be sent
	Block int

	// TotalBlocks is the number of blocks in the image
	TotalBlocks int

	// BytesFlashed is the byte offset of Block, i.e. bytes already acknowledged
	BytesFlashed int

	// TotalBytes is the padded image length
	TotalBytes int

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// Elapsed is the time since the transfer started
	Elapsed time.Duration
}

// ProgressCallback is called synchronously from the flashing loop and should
// return quickly.
type ProgressCallback func(Progress)

// Logger is an optional structured logging interface.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}
