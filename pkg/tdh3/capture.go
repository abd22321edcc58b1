// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tdh3

import (
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// CaptureVersion is the current capture file format version
const CaptureVersion = 1

// Direction of a captured frame
type Direction uint8

const (
	DirTx Direction = 1 // host to radio
	DirRx Direction = 2 // radio to host
)

func (d Direction) String() string {
	switch d {
	case DirTx:
		return "TX"
	case DirRx:
		return "RX"
	default:
		return "??"
	}
}

// Frame is one captured write or non-empty read
type Frame struct {
	Dir    Direction     `cbor:"1,keyasint"`
	Offset time.Duration `cbor:"2,keyasint"`
	Data   []byte        `cbor:"3,keyasint"`
}

// Capture is a recorded flashing session
type Capture struct {
	Version  uint      `cbor:"1,keyasint"`
	Device   string    `cbor:"2,keyasint,omitempty"`
	Firmware string    `cbor:"3,keyasint,omitempty"`
	Started  time.Time `cbor:"4,keyasint"`
	Frames   []Frame   `cbor:"5,keyasint"`
}

// Recorder is a Transport that records all traffic through an inner
// Transport.
type Recorder struct {
	inner   Transport
	capture Capture
}

// NewRecorder wraps t. device and firmware are stored in the capture header.
func NewRecorder(t Transport, device, firmware string) *Recorder {
	return &Recorder{
		inner: t,
		capture: Capture{
			Version:  CaptureVersion,
			Device:   device,
			Firmware: firmware,
			Started:  time.Now(),
		},
	}
}

func (r *Recorder) Read(p []byte) (int, error) {
	n, err := r.inner.Read(p)
	if n > 0 {
		r.record(DirRx, p[:n])
	}
	return n, err
}

func (r *Recorder) Write(p []byte) (int, error) {
	n, err := r.inner.Write(p)
	if n > 0 {
		r.record(DirTx, p[:n])
	}
	return n, err
}

func (r *Recorder) Flush() error {
	return r.inner.Flush()
}

func (r *Recorder) record(dir Direction, data []byte) {
	frame := Frame{
		Dir:    dir,
		Offset: time.Since(r.capture.Started),
		Data:   make([]byte, len(data)),
	}
	copy(frame.Data, data)
	r.capture.Frames = append(r.capture.Frames, frame)
}

// Capture returns the session recorded so far
func (r *Recorder) Capture() *Capture {
	return &r.capture
}

var captureEncMode = func() cbor.EncMode {
	em, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("tdh3: capture encoder: %v", err))
	}
	return em
}()

// WriteCapture encodes c as CBOR
func WriteCapture(w io.Writer, c *Capture) error {
	if err := captureEncMode.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("failed to encode capture: %w", err)
	}
	return nil
}

// ReadCapture decodes a CBOR capture
func ReadCapture(r io.Reader) (*Capture, error) {
	var c Capture
	if err := cbor.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to decode capture: %w", err)
	}
	if c.Version != CaptureVersion {
		return nil, fmt.Errorf("unsupported capture version %d (want %d)", c.Version, CaptureVersion)
	}
	return &c, nil
}
