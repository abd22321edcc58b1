// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tdh3

import (
	"context"
	"fmt"
)

type handshakeState int

const (
	// sentinel not seen yet
	hsWaiting handshakeState = iota
	// init sequence sent
	hsArmed
)

// Handshake waits for the bootloader sentinel, sends the init sequence on
// the first sighting, and returns once the radio goes quiet.
//
// Silence before the sentinel keeps the loop polling; it is only bounded by
// ctx and the configured handshake timeout. Once armed, the loop runs until
// the first empty read.
func (p *Programmer) Handshake(ctx context.Context) error {
	ctx, cancel := p.handshakeContext(ctx)
	defer cancel()

	state := hsWaiting
	for {
		if state == hsWaiting {
			if err := ctx.Err(); err != nil {
				return newFlashError(KindInitWrite, -1, fmt.Errorf("%w: %v", ErrHandshakeTimeout, err))
			}
		}

		b, ok := pollByte(p.transport).Byte()
		switch {
		case !ok:
			if state == hsArmed {
				p.logDebug("handshake complete")
				return nil
			}

		case b == SentinelByte:
			if state == hsWaiting {
				state = hsArmed
				p.logInfo("radio found")
				p.reportProgress(Progress{Phase: PhaseArmed})

				if err := writeAll(p.transport, InitSequence()); err != nil {
					return newFlashError(KindInitWrite, -1, fmt.Errorf("writing init data: %w", err))
				}
			}

		default:
			return newFlashError(KindInitWrite, -1, &UnexpectedByteError{Value: b})
		}

		p.reportProgress(Progress{Phase: PhaseWaiting})
	}
}

// Detect polls until the bootloader sentinel is seen without writing
// anything to the transport.
func (p *Programmer) Detect(ctx context.Context) error {
	ctx, cancel := p.handshakeContext(ctx)
	defer cancel()

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrHandshakeTimeout, err)
		}

		b, ok := pollByte(p.transport).Byte()
		if !ok {
			p.reportProgress(Progress{Phase: PhaseWaiting})
			continue
		}
		if b != SentinelByte {
			return &UnexpectedByteError{Value: b}
		}
		p.logInfo("radio found")
		return nil
	}
}

func (p *Programmer) handshakeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.config.HandshakeTimeout > 0 {
		return context.WithTimeout(ctx, p.config.HandshakeTimeout)
	}
	return context.WithCancel(ctx)
}
