// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tdh3

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errWrite = errors.New("write failed")
	errFlush = errors.New("flush failed")
	errRead  = errors.New("read failed")
)

// readStep is one scripted read: a byte, no data (n == 0), or an error
type readStep struct {
	b   byte
	n   int
	err error
}

func sentinels(n int) []readStep {
	steps := make([]readStep, n)
	for i := range steps {
		steps[i] = readStep{b: SentinelByte, n: 1}
	}
	return steps
}

var silence = readStep{}

// fakeRadio plays back scripted reads, then acknowledges every packet if
// acking is set. Writes are recorded.
type fakeRadio struct {
	script   []readStep
	pos      int
	acking   bool
	ackValue byte
	ackErrAt int
	acks     int
	reads    int
	onRead   func(reads int)

	writes      [][]byte
	failWriteAt int
	flushErr    error
	flushes     int
}

func (f *fakeRadio) Read(p []byte) (int, error) {
	f.reads++
	if f.onRead != nil {
		f.onRead(f.reads)
	}

	if f.pos < len(f.script) {
		s := f.script[f.pos]
		f.pos++
		if s.err != nil {
			return 0, s.err
		}
		if s.n == 0 {
			return 0, nil
		}
		p[0] = s.b
		return 1, nil
	}

	if !f.acking {
		return 0, nil
	}
	f.acks++
	if f.ackErrAt > 0 && f.acks == f.ackErrAt {
		return 0, errRead
	}
	p[0] = f.ackValue
	return 1, nil
}

func (f *fakeRadio) Write(p []byte) (int, error) {
	if f.failWriteAt > 0 && len(f.writes)+1 == f.failWriteAt {
		return 0, errWrite
	}
	f.writes = append(f.writes, append([]byte(nil), p...))
	return len(p), nil
}

func (f *fakeRadio) Flush() error {
	f.flushes++
	return f.flushErr
}

func zeroImage(t *testing.T, size int) *Image {
	t.Helper()
	img, err := NewImage("fw.bin", make([]byte, size))
	require.NoError(t, err)
	return img
}

// MockLogger records log messages
type MockLogger struct {
	debugMsgs []string
	infoMsgs  []string
	errorMsgs []string
}

func (l *MockLogger) Debug(msg string, kv ...interface{}) {
	l.debugMsgs = append(l.debugMsgs, msg)
}

func (l *MockLogger) Info(msg string, kv ...interface{}) {
	l.infoMsgs = append(l.infoMsgs, msg)
}

func (l *MockLogger) Error(msg string, kv ...interface{}) {
	l.errorMsgs = append(l.errorMsgs, msg)
}

func TestNew_NilTransportPanics(t *testing.T) {
	assert.Panics(t, func() { New(nil) })
}

func TestNew_Options(t *testing.T) {
	p := New(&fakeRadio{},
		WithHandshakeTimeout(-1),
		WithProgressInterval(0),
	)
	assert.Zero(t, p.config.HandshakeTimeout)
	assert.Equal(t, DefaultProgressInterval, p.config.ProgressInterval)

	p = New(&fakeRadio{}, WithProgressInterval(8))
	assert.Equal(t, 8, p.config.ProgressInterval)
}

func TestHandshake_ArmsOnceForRepeatedSentinels(t *testing.T) {
	for _, n := range []int{1, 2, 3, 10, 100} {
		radio := &fakeRadio{script: append(sentinels(n), silence)}
		armed := 0
		p := New(radio, WithProgressCallback(func(pr Progress) {
			if pr.Phase == PhaseArmed {
				armed++
			}
		}))

		require.NoError(t, p.Handshake(context.Background()), "n=%d", n)
		require.Len(t, radio.writes, 1, "n=%d", n)
		assert.Equal(t, InitSequence(), radio.writes[0])
		assert.Equal(t, 1, armed, "n=%d", n)
		assert.Equal(t, n+1, radio.reads)
	}
}

func TestHandshake_SilenceBeforeSentinelKeepsPolling(t *testing.T) {
	script := []readStep{silence, silence, {err: errRead}, silence}
	script = append(script, sentinels(2)...)
	script = append(script, silence)

	radio := &fakeRadio{script: script}
	require.NoError(t, New(radio).Handshake(context.Background()))
	assert.Len(t, radio.writes, 1)
	assert.Equal(t, len(script), radio.reads)
}

func TestHandshake_WaitsIndefinitely(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	radio := &fakeRadio{onRead: func(reads int) {
		if reads == 5000 {
			cancel()
		}
	}}

	err := New(radio).Handshake(ctx)

	assert.Equal(t, 5000, radio.reads)
	assert.Empty(t, radio.writes, "init sequence must not be sent")
	assert.Equal(t, KindInitWrite, KindOf(err))
	assert.ErrorIs(t, err, ErrHandshakeTimeout)
}

func TestHandshake_UnexpectedByte(t *testing.T) {
	tests := []struct {
		name   string
		script []readStep
		writes int
	}{
		{"before sentinel", []readStep{{b: 0x42, n: 1}}, 0},
		{"after sentinel", []readStep{{b: SentinelByte, n: 1}, {b: 0xFF, n: 1}}, 1},
		{"zero byte", []readStep{silence, {b: 0x00, n: 1}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			radio := &fakeRadio{script: tt.script}
			err := New(radio).Handshake(context.Background())

			var fe *FlashError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, KindInitWrite, fe.Kind)

			var ub *UnexpectedByteError
			require.ErrorAs(t, err, &ub)
			assert.Equal(t, tt.script[len(tt.script)-1].b, ub.Value)
			assert.Len(t, radio.writes, tt.writes)
		})
	}
}

func TestHandshake_InitWriteFailure(t *testing.T) {
	radio := &fakeRadio{script: sentinels(1), failWriteAt: 1}
	err := New(radio).Handshake(context.Background())

	assert.Equal(t, KindInitWrite, KindOf(err))
	assert.ErrorIs(t, err, errWrite)
}

func TestDetect(t *testing.T) {
	radio := &fakeRadio{script: append([]readStep{silence, silence}, sentinels(1)...)}
	logger := &MockLogger{}

	require.NoError(t, New(radio, WithLogger(logger)).Detect(context.Background()))
	assert.Empty(t, radio.writes)
	assert.Equal(t, 3, radio.reads)
	assert.Contains(t, logger.infoMsgs, "radio found")

	radio = &fakeRadio{script: []readStep{{b: 0x10, n: 1}}}
	var ub *UnexpectedByteError
	assert.ErrorAs(t, New(radio).Detect(context.Background()), &ub)
}

func TestDetect_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(&fakeRadio{}).Detect(ctx)
	assert.ErrorIs(t, err, ErrHandshakeTimeout)
}

func TestFlash_EndToEnd(t *testing.T) {
	radio := &fakeRadio{
		script: append(sentinels(3), silence),
		acking: true,
	}
	img := zeroImage(t, 40000)

	var phases []string
	p := New(radio, WithProgressCallback(func(pr Progress) {
		if pr.Phase != PhaseWaiting {
			phases = append(phases, pr.Phase)
		}
	}))

	result, err := p.Flash(context.Background(), img)
	require.NoError(t, err)

	assert.Equal(t, 1250, result.Blocks)
	assert.Equal(t, 40000, result.Bytes)
	assert.Zero(t, result.NonZeroAcks)

	// init sequence followed by one write per block
	require.Len(t, radio.writes, 1+1250)
	assert.Equal(t, InitSequence(), radio.writes[0])
	for i, w := range radio.writes[1:] {
		require.Len(t, w, PacketSize)
		pkt := Packet(w)
		assert.Equal(t, i, pkt.Index())
		if i == 1249 {
			assert.Equal(t, byte(OpTerminalBlock), pkt.Opcode())
		} else {
			require.Equal(t, byte(OpBlock), pkt.Opcode(), "block %d", i)
		}
	}
	assert.Equal(t, 1250, radio.flushes)
	assert.Equal(t, 1250, radio.acks)

	assert.Equal(t, PhaseArmed, phases[0])
	assert.Equal(t, PhaseComplete, phases[len(phases)-1])
}

func TestFlash_NilImage(t *testing.T) {
	_, err := New(&fakeRadio{}).Flash(context.Background(), nil)
	assert.Error(t, err)
}

func TestTransfer_OpcodeOnlyOnLastBlock(t *testing.T) {
	for _, size := range []int{40000, 40001, 40031, 65536} {
		radio := &fakeRadio{acking: true}
		img := zeroImage(t, size)

		_, err := New(radio).Transfer(img)
		require.NoError(t, err)
		require.Len(t, radio.writes, img.Blocks())

		for i, w := range radio.writes {
			want := byte(OpBlock)
			if i == img.Blocks()-1 {
				want = OpTerminalBlock
			}
			require.Equal(t, want, w[0], "size=%d block=%d", size, i)
		}
	}
}

func TestTransfer_WriteFailureReportsOffset(t *testing.T) {
	radio := &fakeRadio{acking: true, failWriteAt: 6}
	logger := &MockLogger{}

	result, err := New(radio, WithLogger(logger)).Transfer(zeroImage(t, 40000))

	var fe *FlashError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, KindBlockWrite, fe.Kind)
	assert.Equal(t, 160, fe.Offset)
	assert.Contains(t, fe.Error(), "160b")
	assert.ErrorIs(t, err, errWrite)

	assert.Len(t, radio.writes, 5, "no block after the failing one")
	assert.Equal(t, 5, result.Blocks)
	assert.NotEmpty(t, logger.errorMsgs)
}

func TestTransfer_FlushFailure(t *testing.T) {
	radio := &fakeRadio{acking: true, flushErr: errFlush}

	_, err := New(radio).Transfer(zeroImage(t, 40000))

	var fe *FlashError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, KindBlockWrite, fe.Kind)
	assert.Equal(t, 0, fe.Offset)
	assert.ErrorIs(t, err, errFlush)
	assert.Zero(t, radio.acks)
}

func TestTransfer_AckFailures(t *testing.T) {
	t.Run("read error", func(t *testing.T) {
		radio := &fakeRadio{acking: true, ackErrAt: 4}
		_, err := New(radio).Transfer(zeroImage(t, 40000))

		var fe *FlashError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, KindAckRead, fe.Kind)
		assert.Equal(t, 96, fe.Offset)
		assert.ErrorIs(t, err, errRead)
		assert.Len(t, radio.writes, 4)
	})

	t.Run("timeout", func(t *testing.T) {
		radio := &fakeRadio{}
		_, err := New(radio).Transfer(zeroImage(t, 40000))

		assert.Equal(t, KindAckRead, KindOf(err))
		assert.ErrorIs(t, err, ErrReadTimeout)
		assert.Len(t, radio.writes, 1)
	})
}

func TestTransfer_AckValueNotInterpreted(t *testing.T) {
	radio := &fakeRadio{acking: true, ackValue: 0x15}

	result, err := New(radio).Transfer(zeroImage(t, 40000))
	require.NoError(t, err)
	assert.Equal(t, 1250, result.Blocks)
	assert.Equal(t, 1250, result.NonZeroAcks)
}

func TestTransfer_ProgressEvery64Blocks(t *testing.T) {
	radio := &fakeRadio{acking: true}
	var offsets []int

	p := New(radio, WithProgressCallback(func(pr Progress) {
		if pr.Phase == PhaseFlashing {
			offsets = append(offsets, pr.BytesFlashed)
		}
	}))
	_, err := p.Transfer(zeroImage(t, 40000))
	require.NoError(t, err)

	require.Len(t, offsets, 20)
	for i, off := range offsets {
		assert.Equal(t, i*64*BlockSize, off)
	}
}

func TestTransfer_PayloadMatchesImage(t *testing.T) {
	data := make([]byte, 40010)
	for i := range data {
		data[i] = byte(i * 7)
	}
	img, err := NewImage("fw.bin", data)
	require.NoError(t, err)

	radio := &fakeRadio{acking: true}
	_, err = New(radio).Transfer(img)
	require.NoError(t, err)

	var sent bytes.Buffer
	for _, w := range radio.writes {
		pkt := Packet(w)
		require.True(t, pkt.ChecksumValid())
		sent.Write(pkt.Payload())
	}
	assert.Equal(t, img.Padded(), sent.Bytes())
}

func TestPollByte(t *testing.T) {
	radio := &fakeRadio{script: []readStep{
		{b: SentinelByte, n: 1},
		silence,
		{err: errRead},
		{b: 0x00, n: 1},
	}}

	b, ok := pollByte(radio).Byte()
	assert.True(t, ok)
	assert.Equal(t, byte(SentinelByte), b)

	_, ok = pollByte(radio).Byte()
	assert.False(t, ok, "an empty read is no data")
	assert.Equal(t, noData, pollByte(radio), "a read error is no data")

	assert.Equal(t, byteResult(0x00), pollByte(radio))
}
