// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Thermoquad/tdh3flash/pkg/tdh3"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	flashTUI              bool
	flashBar              bool
	flashCapture          string
	flashHandshakeTimeout time.Duration
)

var flashCmd = &cobra.Command{
	Use:   "flash [device] <firmware>",
	Short: "Upload a firmware image to the radio",
	Long: `Upload a firmware image to the radio bootloader.

The firmware is checked before the device is opened: its length rounded up
to a multiple of 32 bytes must lie between 40000 and 65536 bytes.

The device can be given as the first argument or with --port / --url. After
the bootloader is found the image is sent as 32-byte blocks, each of which
the radio acknowledges. There are no retries: any I/O error aborts the upload
and the radio has to be power-cycled into the bootloader again.

Exit codes:
  0   - Upload complete
  1   - Firmware file could not be read
  2   - Firmware has the wrong size
  3   - Device could not be opened
  4   - Init sequence could not be sent (or unexpected handshake data)
  5   - Block write failed
  6   - Acknowledgement read failed
  999 - Bad arguments`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) < 1 || len(args) > 2 {
			return usageErrorf(cmd, "expected [device] <firmware>")
		}
		return nil
	},
	RunE: runFlash,
}

func init() {
	rootCmd.AddCommand(flashCmd)
	addFlashFlags(flashCmd)
}

func addFlashFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&flashTUI, "tui", false, "Use terminal UI (default when stdout is a terminal and --bar is not set)")
	cmd.Flags().BoolVar(&flashBar, "bar", false, "Show a plain progress bar instead of progress lines")
	cmd.Flags().StringVar(&flashCapture, "capture", "", "Record all traffic to a CBOR capture file")
	cmd.Flags().DurationVar(&flashHandshakeTimeout, "handshake-timeout", 0, "Give up waiting for the bootloader after this long (0 waits forever)")
}

func runFlash(cmd *cobra.Command, args []string) error {
	if err := resolveDevice(cmd, args); err != nil {
		return err
	}
	firmwarePath := args[len(args)-1]

	// Validate the image before touching the device
	img, err := tdh3.LoadFirmware(firmwarePath)
	if err != nil {
		return err
	}

	conn, connInfo, err := OpenConnection(cmd)
	if err != nil {
		return err
	}
	defer conn.Close()

	var transport tdh3.Transport = conn
	if flashCapture != "" {
		recorder := tdh3.NewRecorder(conn, connInfo, img.Name())
		transport = recorder
		defer func() {
			if err := saveCapture(flashCapture, recorder.Capture()); err != nil {
				log.Printf("Failed to save capture: %v", err)
			}
		}()
	}

	opts := []tdh3.Option{tdh3.WithHandshakeTimeout(flashHandshakeTimeout)}
	if verbose {
		opts = append(opts, tdh3.WithLogger(newStdLogger()))
	}

	useTUI := flashTUI
	if !cmd.Flags().Changed("tui") {
		useTUI = !flashBar && !verbose && term.IsTerminal(int(os.Stdout.Fd()))
	}

	if useTUI {
		return runFlashTUI(cmd, transport, img, connInfo, opts)
	}
	return runFlashText(cmd, transport, img, connInfo, opts)
}

// resolveDevice applies a positional device argument. It may not be combined
// with --port or --url.
func resolveDevice(cmd *cobra.Command, args []string) error {
	if len(args) < 2 {
		return nil
	}
	if wsURL != "" || portName != "" {
		return usageErrorf(cmd, "device given both as argument '%s' and with --port/--url", args[0])
	}
	portName = args[0]
	return nil
}

// runFlashText prints progress as plain lines, or as a progress bar with --bar
func runFlashText(cmd *cobra.Command, transport tdh3.Transport, img *tdh3.Image, connInfo string, opts []tdh3.Option) error {
	fmt.Printf("filename: %s.\n", img.Name())
	fmt.Printf("device: %s.\n", connInfo)
	fmt.Printf("firmware length: %d b / %d b.\n", img.Len(), img.PaddedLen())
	fmt.Printf("\nTurn off the radio, hold PTT and turn the radio on keeping the PTT button held.\n")

	var bar *progressbar.ProgressBar
	if flashBar {
		bar = progressbar.NewOptions(img.PaddedLen(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("Flashing"),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWriter(os.Stdout),
		)
		opts = append(opts, tdh3.WithProgressInterval(8))
	}

	opts = append(opts, tdh3.WithProgressCallback(func(p tdh3.Progress) {
		switch p.Phase {
		case tdh3.PhaseWaiting:
			fmt.Print(".")
		case tdh3.PhaseArmed:
			fmt.Print("\n\nRadio found...\n")
		case tdh3.PhaseFlashing:
			if bar != nil {
				bar.Set(p.BytesFlashed)
			} else {
				fmt.Printf("Flashing %dB\n", p.BytesFlashed)
			}
		case tdh3.PhaseComplete:
			if bar != nil {
				bar.Finish()
			}
		}
	}))

	programmer := tdh3.New(transport, opts...)

	fmt.Print("Waiting...")
	if err := programmer.Handshake(cmd.Context()); err != nil {
		fmt.Println()
		return err
	}
	fmt.Println("Init OK.")

	result, err := programmer.Transfer(img)
	if err != nil {
		return err
	}

	fmt.Println("\nDone.")
	printResult(result)
	return nil
}

func printResult(result *tdh3.Result) {
	rate := 0.0
	if secs := result.Elapsed.Seconds(); secs > 0 {
		rate = float64(result.Bytes) / secs
	}
	fmt.Printf("Flashed %d blocks (%d b) in %s (%.0f B/s)\n",
		result.Blocks, result.Bytes, result.Elapsed.Round(time.Millisecond), rate)
	if result.NonZeroAcks > 0 {
		fmt.Printf("Note: %d acknowledgements carried a non-zero value\n", result.NonZeroAcks)
	}
}

func saveCapture(path string, c *tdh3.Capture) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := tdh3.WriteCapture(f, c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
