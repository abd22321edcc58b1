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

var (
	inspectShowAll     bool
	inspectShowPayload bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <capture>",
	Short: "Decode and validate a recorded flashing session",
	Long: `Replay a capture written by "flash --capture" and check it for protocol errors.

This command decodes the host-to-radio stream and detects:
  - Checksum mismatches
  - Out-of-order block indices and blocks after the terminal block
  - Uploads that end without a terminal block
  - Packets that were never acknowledged

By default, only errors are displayed. Use --show-all to display every packet.

Exit codes:
  0 - Capture is clean
  1 - Errors or anomalies found, or the capture could not be read`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return usageErrorf(cmd, "expected one capture file")
		}
		return nil
	},
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&inspectShowAll, "show-all", false, "Show all packets (not just errors)")
	inspectCmd.Flags().BoolVar(&inspectShowPayload, "payload", false, "Include a hex dump of each displayed packet")
}

func runInspect(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return &exitError{code: 1, err: err}
	}
	defer f.Close()

	capture, err := tdh3.ReadCapture(f)
	if err != nil {
		return &exitError{code: 1, err: err}
	}

	fmt.Printf("tdh3flash - Capture Inspection\n")
	fmt.Printf("Recorded: %s\n", capture.Started.Format("2006-01-02 15:04:05"))
	if capture.Device != "" {
		fmt.Printf("Device: %s\n", capture.Device)
	}
	if capture.Firmware != "" {
		fmt.Printf("Firmware: %s\n", capture.Firmware)
	}
	fmt.Printf("Frames: %d\n\n", len(capture.Frames))

	analysis := tdh3.Analyze(capture)
	printAnalysis(os.Stdout, analysis, inspectShowAll, inspectShowPayload)

	if analysis.Anomalous() {
		return &exitError{code: 1, err: fmt.Errorf("%d errors found in capture", analysis.Stats.Errors())}
	}
	return nil
}

// printAnalysis prints events in the same layout as the live error views
func printAnalysis(w io.Writer, analysis *tdh3.Analysis, showAll, showPayload bool) {
	for _, event := range analysis.Events {
		timestamp := fmt.Sprintf("%10.3fs", event.Offset.Seconds())

		switch {
		case event.Err != nil:
			fmt.Fprintf(w, "[%s] \033[1;31mDECODE ERROR:\033[0m %v\n", timestamp, event.Err)

		case len(event.Anomalies) > 0:
			if event.Packet != nil {
				fmt.Fprintf(w, "[%s] \033[1;33mVALIDATION ERROR:\033[0m %s", timestamp, tdh3.FormatPacket(event.Packet))
			} else {
				fmt.Fprintf(w, "[%s] \033[1;33mEND OF CAPTURE:\033[0m\n", timestamp)
			}
			for i, anomaly := range event.Anomalies {
				fmt.Fprintf(w, "  Issue %d: %s\n", i+1, anomaly.Message)
			}
			if showPayload && event.Packet != nil {
				fmt.Fprint(w, tdh3.FormatPayload(event.Packet))
			}

		case showAll && event.Packet != nil:
			fmt.Fprintf(w, "[%s] %s", timestamp, tdh3.FormatPacket(event.Packet))
			if showPayload {
				fmt.Fprint(w, tdh3.FormatPayload(event.Packet))
			}
		}
	}

	fmt.Fprintln(w)
	fmt.Fprint(w, analysis.Stats.String())
}
