// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tdh3

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSize_Boundaries(t *testing.T) {
	tests := []struct {
		raw   int
		valid bool
	}{
		{0, false},
		{39968, false},
		{39969, true}, // pads to 40000
		{40000, true},
		{65536, true},
		{65537, false}, // pads to 65568
		{65568, false},
	}

	for _, tt := range tests {
		err := CheckSize(tt.raw)
		if tt.valid {
			assert.NoError(t, err, "raw=%d", tt.raw)
			continue
		}
		var sizeErr *SizeError
		require.ErrorAs(t, err, &sizeErr, "raw=%d", tt.raw)
		assert.Equal(t, PaddedLength(tt.raw), sizeErr.Padded)
	}
}

func TestNewImage_RejectsSize(t *testing.T) {
	_, err := NewImage("small.bin", make([]byte, 39968))
	require.Error(t, err)

	var fe *FlashError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, KindFirmwareSize, fe.Kind)
	assert.Equal(t, "small.bin", fe.Path)
	assert.Contains(t, fe.Error(), "small.bin")
}

func TestNewImage_Padding(t *testing.T) {
	data := make([]byte, 40001)
	for i := range data {
		data[i] = 0x11
	}

	img, err := NewImage("fw.bin", data)
	require.NoError(t, err)

	assert.Equal(t, 40001, img.Len())
	assert.Equal(t, 40032, img.PaddedLen())
	assert.Equal(t, 1251, img.Blocks())
	assert.Equal(t, byte(0x11), img.Padded()[40000])
	assert.Equal(t, make([]byte, 31), img.Padded()[40001:])

	assert.False(t, img.IsTerminal(1249))
	assert.True(t, img.IsTerminal(1250))
}

func TestLoadFirmware(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.bin")
	require.NoError(t, os.WriteFile(good, make([]byte, 40000), 0o644))

	short := filepath.Join(dir, "short.bin")
	require.NoError(t, os.WriteFile(short, make([]byte, 1024), 0o644))

	t.Run("valid file", func(t *testing.T) {
		img, err := LoadFirmware(good)
		require.NoError(t, err)
		assert.Equal(t, good, img.Name())
		assert.Equal(t, 1250, img.Blocks())
	})

	t.Run("wrong size", func(t *testing.T) {
		_, err := LoadFirmware(short)
		assert.Equal(t, KindFirmwareSize, KindOf(err))
	})

	t.Run("directory", func(t *testing.T) {
		_, err := LoadFirmware(dir)
		assert.Equal(t, KindFileRead, KindOf(err))
		assert.Contains(t, err.Error(), "not a file")
	})

	t.Run("missing", func(t *testing.T) {
		_, err := LoadFirmware(filepath.Join(dir, "missing.bin"))
		assert.Equal(t, KindFileRead, KindOf(err))
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})
}
