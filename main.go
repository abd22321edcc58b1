// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// tdh3flash - TD-H3 Firmware Flasher
//
// A CLI tool for uploading firmware to the TD-H3 radio through its serial
// bootloader.

package main

import (
	"fmt"
	"os"

	"github.com/Thermoquad/tdh3flash/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cmd.ExitCode(err))
	}
}
