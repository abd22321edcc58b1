// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tdh3

import (
	"io"
)

// Transport is a configured byte stream to the radio. Read must return after
// the link's read timeout; a timeout is reported as (0, nil) or as an error.
type Transport interface {
	io.Reader
	io.Writer
	Flush() error
}

// readResult is the outcome of a single-byte poll: either a byte or no data.
type readResult struct {
	value byte
	ok    bool
}

// noData is the result of a poll that timed out or failed.
var noData = readResult{}

// byteResult wraps a received byte.
func byteResult(b byte) readResult {
	return readResult{value: b, ok: true}
}

// Byte returns the received byte and whether one was received.
func (r readResult) Byte() (byte, bool) {
	return r.value, r.ok
}

// pollByte reads one byte. Read errors and timeouts both yield noData.
func pollByte(t io.Reader) readResult {
	var buf [1]byte
	n, err := t.Read(buf[:])
	if err != nil || n == 0 {
		return noData
	}
	return byteResult(buf[0])
}

// readAck reads exactly one byte, treating a timeout as an error.
func readAck(t io.Reader) (byte, error) {
	var buf [1]byte
	n, err := t.Read(buf[:])
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrReadTimeout
	}
	return buf[0], nil
}

// writeAll writes p in full, retrying short writes.
func writeAll(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		p = p[n:]
	}
	return nil
}
