// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tdh3

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a fatal flashing failure
type ErrorKind int

const (
	KindFileRead ErrorKind = iota + 1
	KindFirmwareSize
	KindDeviceOpen
	KindInitWrite
	KindBlockWrite
	KindAckRead
)

func (k ErrorKind) String() string {
	switch k {
	case KindFileRead:
		return "file read"
	case KindFirmwareSize:
		return "firmware size"
	case KindDeviceOpen:
		return "device open"
	case KindInitWrite:
		return "init write"
	case KindBlockWrite:
		return "block write"
	case KindAckRead:
		return "ack read"
	default:
		return "unknown"
	}
}

// ErrReadTimeout is returned when an acknowledgement does not arrive within
// the transport read timeout.
var ErrReadTimeout = errors.New("read timed out")

// ErrHandshakeTimeout is returned when a handshake deadline expires before
// the bootloader was found.
var ErrHandshakeTimeout = errors.New("bootloader not found before deadline")

// FlashError is a fatal failure. Offset is the byte offset of the failing
// block for block write and ack read failures, -1 otherwise.
type FlashError struct {
	Kind   ErrorKind
	Offset int
	Path   string
	Err    error
}

func (e *FlashError) Error() string {
	switch {
	case e.Kind == KindFirmwareSize:
		return fmt.Sprintf("'%s' is not the correct size to be a valid firmware file: %v", e.Path, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s error on '%s': %v", e.Kind, e.Path, e.Err)
	case e.Offset >= 0:
		return fmt.Sprintf("%s error at %db: %v", e.Kind, e.Offset, e.Err)
	default:
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
}

func (e *FlashError) Unwrap() error {
	return e.Err
}

// UnexpectedByteError is a protocol violation seen during the handshake
type UnexpectedByteError struct {
	Value byte
}

func (e *UnexpectedByteError) Error() string {
	return fmt.Sprintf("serial read unexpected data (0x%02X) during handshake", e.Value)
}

// SizeError reports a padded firmware length outside the accepted range
type SizeError struct {
	Raw    int
	Padded int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("padded length %d b (raw %d b) outside [%d, %d]",
		e.Padded, e.Raw, MinFirmwareSize, MaxFirmwareSize)
}

func newFlashError(kind ErrorKind, offset int, err error) *FlashError {
	return &FlashError{Kind: kind, Offset: offset, Err: err}
}

// KindOf returns the kind of the first FlashError in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var fe *FlashError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}
