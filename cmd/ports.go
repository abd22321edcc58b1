// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.bug.st/serial/enumerator"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List available serial ports",
	RunE:  runPorts,
}

func init() {
	rootCmd.AddCommand(portsCmd)
}

func runPorts(cmd *cobra.Command, args []string) error {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return fmt.Errorf("failed to list serial ports: %w", err)
	}

	if len(ports) == 0 {
		fmt.Println("No serial ports found")
		return nil
	}

	for _, port := range ports {
		fmt.Print(formatPort(port))
	}
	return nil
}

func formatPort(port *enumerator.PortDetails) string {
	if !port.IsUSB {
		return fmt.Sprintf("%s\n", port.Name)
	}
	line := fmt.Sprintf("%s  USB %s:%s", port.Name, port.VID, port.PID)
	if port.SerialNumber != "" {
		line += fmt.Sprintf(" serial=%s", port.SerialNumber)
	}
	if port.Product != "" {
		line += fmt.Sprintf(" (%s)", port.Product)
	}
	return line + "\n"
}
