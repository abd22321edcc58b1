// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"

	"github.com/Thermoquad/tdh3flash/pkg/tdh3"
	"github.com/spf13/cobra"
)

// Process exit codes
const (
	ExitOK            = 0
	ExitFileError     = 1
	ExitFilesizeError = 2
	ExitDeviceError   = 3
	ExitInitWrite     = 4
	ExitWriteError    = 5
	ExitAckError      = 6
	ExitParameters    = 999
)

// usageError marks bad arguments or flags
type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

func usageErrorf(cmd *cobra.Command, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if cmd != nil {
		msg += "\nUsage: " + cmd.UseLine()
	}
	return &usageError{msg: msg}
}

// exitError carries a command-specific exit code
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// ExitCode maps an error returned by Execute to the process exit status
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var usage *usageError
	if errors.As(err, &usage) {
		return ExitParameters
	}

	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}

	switch tdh3.KindOf(err) {
	case tdh3.KindFileRead:
		return ExitFileError
	case tdh3.KindFirmwareSize:
		return ExitFilesizeError
	case tdh3.KindDeviceOpen:
		return ExitDeviceError
	case tdh3.KindInitWrite:
		return ExitInitWrite
	case tdh3.KindBlockWrite:
		return ExitWriteError
	case tdh3.KindAckRead:
		return ExitAckError
	}

	return 1
}
