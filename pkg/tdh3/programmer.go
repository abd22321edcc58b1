// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tdh3

import (
	"context"
	"fmt"
	"time"
)

// Programmer drives a firmware upload over a single exclusively owned
// transport. It is not safe for concurrent use.
type Programmer struct {
	transport Transport
	config    Config
}

// Result summarises a completed upload.
type Result struct {
	// Blocks is the number of acknowledged blocks
	Blocks int

	// Bytes is the number of acknowledged bytes (padded)
	Bytes int

	// Elapsed is the duration of the transfer phase
	Elapsed time.Duration

	// NonZeroAcks counts acknowledgements whose value was not 0x00. The
	// value does not influence the upload.
	NonZeroAcks int
}

// New creates a Programmer talking to the radio over t.
func New(t Transport, opts ...Option) *Programmer {
	if t == nil {
		panic("transport cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Programmer{
		transport: t,
		config:    cfg,
	}
}

// Flash runs the handshake and then uploads img. ctx only bounds the
// handshake wait; once blocks are being sent the upload runs to completion
// or to the first failure.
func (p *Programmer) Flash(ctx context.Context, img *Image) (*Result, error) {
	if img == nil {
		return nil, fmt.Errorf("firmware image cannot be nil")
	}

	if err := p.Handshake(ctx); err != nil {
		return nil, err
	}

	return p.Transfer(img)
}

// Transfer sends every block of img and waits for one acknowledgement byte
// after each. Any write, flush or read failure aborts the upload and is
// reported with the byte offset of the failing block.
func (p *Programmer) Transfer(img *Image) (*Result, error) {
	startTime := time.Now()
	total := img.Blocks()
	result := &Result{}

	p.logDebug("starting transfer",
		"blocks", total,
		"padded_length", img.PaddedLen(),
	)

	for blk := 0; blk < total; blk++ {
		offset := blk * BlockSize

		if blk%p.config.ProgressInterval == 0 {
			p.reportProgress(Progress{
				Phase:        PhaseFlashing,
				Block:        blk,
				TotalBlocks:  total,
				BytesFlashed: offset,
				TotalBytes:   img.PaddedLen(),
				Percentage:   float64(blk) * 100 / float64(total),
				Elapsed:      time.Since(startTime),
			})
		}

		packet := BuildPacket(blk, img.Block(blk), img.IsTerminal(blk))

		if err := writeAll(p.transport, packet[:]); err != nil {
			p.logError("block write failed", "offset", offset, "error", err)
			return result, newFlashError(KindBlockWrite, offset, err)
		}
		if err := p.transport.Flush(); err != nil {
			p.logError("flush failed", "offset", offset, "error", err)
			return result, newFlashError(KindBlockWrite, offset, fmt.Errorf("flushing serial buffer: %w", err))
		}

		ack, err := readAck(p.transport)
		if err != nil {
			p.logError("ack read failed", "offset", offset, "error", err)
			return result, newFlashError(KindAckRead, offset, err)
		}
		if ack != 0 {
			result.NonZeroAcks++
			p.logDebug("non-zero ack", "offset", offset, "ack", fmt.Sprintf("0x%02X", ack))
		}

		result.Blocks++
		result.Bytes += BlockSize
	}

	result.Elapsed = time.Since(startTime)

	p.reportProgress(Progress{
		Phase:        PhaseComplete,
		Block:        total,
		TotalBlocks:  total,
		BytesFlashed: img.PaddedLen(),
		TotalBytes:   img.PaddedLen(),
		Percentage:   100,
		Elapsed:      result.Elapsed,
	})

	return result, nil
}

func (p *Programmer) reportProgress(progress Progress) {
	if p.config.ProgressCallback != nil {
		p.config.ProgressCallback(progress)
	}
}

func (p *Programmer) logDebug(msg string, keysAndValues ...interface{}) {
	if p.config.Logger != nil {
		p.config.Logger.Debug(msg, keysAndValues...)
	}
}

func (p *Programmer) logInfo(msg string, keysAndValues ...interface{}) {
	if p.config.Logger != nil {
		p.config.Logger.Info(msg, keysAndValues...)
	}
}

func (p *Programmer) logError(msg string, keysAndValues ...interface{}) {
	if p.config.Logger != nil {
		p.config.Logger.Error(msg, keysAndValues...)
	}
}
