// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tdh3

import (
	"fmt"
	"os"
)

// Image is a validated firmware image. The padded buffer is built once and
// never modified afterwards.
type Image struct {
	name   string
	raw    int
	padded []byte
}

// LoadFirmware reads and validates a firmware file. Special files (devices,
// directories, pipes) are rejected before reading.
func LoadFirmware(path string) (*Image, error) {
	if info, err := os.Stat(path); err == nil && !info.Mode().IsRegular() {
		return nil, &FlashError{
			Kind:   KindFileRead,
			Offset: -1,
			Path:   path,
			Err:    fmt.Errorf("not a file"),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FlashError{Kind: KindFileRead, Offset: -1, Path: path, Err: err}
	}

	return NewImage(path, data)
}

// NewImage validates data and zero-pads it to a whole number of blocks.
func NewImage(name string, data []byte) (*Image, error) {
	if err := CheckSize(len(data)); err != nil {
		return nil, &FlashError{Kind: KindFirmwareSize, Offset: -1, Path: name, Err: err}
	}

	padded := make([]byte, PaddedLength(len(data)))
	copy(padded, data)

	return &Image{name: name, raw: len(data), padded: padded}, nil
}

// CheckSize verifies that the padded length of a rawLength-byte image lies
// within [MinFirmwareSize, MaxFirmwareSize].
func CheckSize(rawLength int) error {
	padded := PaddedLength(rawLength)
	if padded < MinFirmwareSize || padded > MaxFirmwareSize {
		return &SizeError{Raw: rawLength, Padded: padded}
	}
	return nil
}

// Name returns the file name the image was loaded from
func (img *Image) Name() string {
	return img.name
}

// Len returns the raw firmware length
func (img *Image) Len() int {
	return img.raw
}

// PaddedLen returns the padded firmware length
func (img *Image) PaddedLen() int {
	return len(img.padded)
}

// Padded returns the zero-padded image. Callers must not modify it.
func (img *Image) Padded() []byte {
	return img.padded
}

// Blocks returns the number of blocks in the padded image
func (img *Image) Blocks() int {
	return len(img.padded) / BlockSize
}

// Block returns block i of the padded image
func (img *Image) Block(i int) [BlockSize]byte {
	var blk [BlockSize]byte
	copy(blk[:], img.padded[i*BlockSize:(i+1)*BlockSize])
	return blk
}

// IsTerminal reports whether block i is the last block of the image
func (img *Image) IsTerminal(i int) bool {
	return (i+1)*BlockSize >= len(img.padded)
}
