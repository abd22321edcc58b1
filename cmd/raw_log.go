// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/Thermoquad/tdh3flash/pkg/tdh3"
	"github.com/spf13/cobra"
)

var rawLogCmd = &cobra.Command{
	Use:   "raw_log <capture>",
	Short: "Display a recorded session as a raw traffic log",
	Long: `Replay a capture file in recorded order, one line per frame.

Outgoing packets are decoded and shown with their block index and checksum
status. Incoming bytes (sentinels and acknowledgements) are shown in hex.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return usageErrorf(cmd, "expected one capture file")
		}
		return nil
	},
	RunE: runRawLog,
}

func init() {
	rootCmd.AddCommand(rawLogCmd)
}

func runRawLog(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return &exitError{code: 1, err: err}
	}
	defer f.Close()

	capture, err := tdh3.ReadCapture(f)
	if err != nil {
		return &exitError{code: 1, err: err}
	}

	printRawLog(os.Stdout, capture)
	return nil
}

func printRawLog(w io.Writer, capture *tdh3.Capture) {
	decoder := tdh3.NewDecoder()
	initSeen := 0

	for _, frame := range capture.Frames {
		timestamp := fmt.Sprintf("%10.3fs", frame.Offset.Seconds())

		if frame.Dir != tdh3.DirTx {
			fmt.Fprintf(w, "[%s] %s % X\n", timestamp, frame.Dir, frame.Data)
			continue
		}

		for _, b := range frame.Data {
			packet, err := decoder.DecodeByte(b)
			if err != nil {
				fmt.Fprintf(w, "[%s] TX [ERROR] %v\n", timestamp, err)
				continue
			}
			if packet != nil {
				fmt.Fprintf(w, "[%s] TX %s", timestamp, tdh3.FormatPacket(packet))
			}
		}

		if decoder.InitCount() > initSeen {
			initSeen = decoder.InitCount()
			fmt.Fprintf(w, "[%s] TX INIT (%d bytes)\n", timestamp, tdh3.InitSize)
		}
	}
}
