// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Thermoquad/tdh3flash/pkg/tdh3"
	"github.com/spf13/cobra"
)

var (
	detectTimeout int
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Wait for the radio bootloader without flashing",
	Long: `Wait until the radio bootloader announces itself, without sending the init
sequence. The radio is left waiting in the bootloader.

Useful for checking cabling and the power-on procedure before flashing.

Exit codes:
  0 - Bootloader detected before timeout
  1 - Timeout reached, or unexpected data received
  3 - Connection error`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 {
			return usageErrorf(cmd, "detect takes no arguments")
		}
		return nil
	},
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
	detectCmd.Flags().IntVar(&detectTimeout, "timeout", 30, "Timeout in seconds to wait for the bootloader (0 waits forever)")
}

func runDetect(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection(cmd)
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("tdh3flash - Bootloader Detection\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n\n", detectTimeout)
	fmt.Printf("Turn off the radio, hold PTT and turn the radio on keeping the PTT button held.\n")

	ctx := cmd.Context()
	if detectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(detectTimeout)*time.Second)
		defer cancel()
	}

	opts := []tdh3.Option{}
	if verbose {
		opts = append(opts, tdh3.WithLogger(newStdLogger()))
	}

	start := time.Now()
	err = tdh3.New(conn, opts...).Detect(ctx)
	switch {
	case err == nil:
		fmt.Printf("SUCCESS: Bootloader detected after %s\n", time.Since(start).Round(time.Millisecond))
		return nil
	case errors.Is(err, tdh3.ErrHandshakeTimeout):
		return &exitError{code: 1, err: fmt.Errorf("TIMEOUT: no bootloader detected within %d seconds", detectTimeout)}
	default:
		return &exitError{code: 1, err: err}
	}
}
