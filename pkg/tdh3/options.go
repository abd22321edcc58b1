// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tdh3

import "time"

// Config holds the programmer configuration.
type Config struct {
	// ProgressCallback receives progress reports (optional)
	ProgressCallback ProgressCallback

	// Logger receives debug and diagnostic output (optional)
	Logger Logger

	// HandshakeTimeout bounds the wait for the bootloader. Zero waits
	// until the operator power-cycles the radio, however long that takes.
	HandshakeTimeout time.Duration

	// ProgressInterval is the number of blocks between flashing reports
	ProgressInterval int
}

func defaultConfig() Config {
	return Config{
		ProgressInterval: DefaultProgressInterval,
	}
}

// Option is a functional option for configuring the Programmer.
type Option func(*Config)

// WithProgressCallback sets a callback to track handshake and upload progress.
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for programmer operations.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithHandshakeTimeout bounds the bootloader wait. Zero or negative means
// wait forever.
func WithHandshakeTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout < 0 {
			timeout = 0
		}
		c.HandshakeTimeout = timeout
	}
}

// WithProgressInterval sets how many blocks pass between flashing reports.
func WithProgressInterval(blocks int) Option {
	return func(c *Config) {
		if blocks > 0 {
			c.ProgressInterval = blocks
		}
	}
}
