// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "tdh3flash [device] [firmware]",
	Short: "TD-H3 radio firmware flasher",
	Long: `tdh3flash - Upload firmware to a TD-H3 radio through its serial bootloader.

Turn the radio off, hold PTT and turn it back on while keeping PTT held. The
bootloader then announces itself and the upload starts automatically.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]

Invoked as "tdh3flash <device> <firmware>" it behaves like "flash".

For WebSocket authentication, the password is read from the TDH3_PASSWORD
environment variable, or prompted interactively if not set.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 2 {
			return usageErrorf(cmd, "expected <device> <firmware file>")
		}
		return nil
	},
	RunE: runFlash,
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket serial bridge URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log protocol details")

	addFlashFlags(rootCmd)

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageErrorf(cmd, "%v", err)
	})
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
