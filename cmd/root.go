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

	// Output flags
	jsonOutput  bool
	quietOutput bool

	// Response timeout in milliseconds
	timeoutMs int
)

var rootCmd = &cobra.Command{
	Use:   "dmxgate",
	Short: "DMX512 gateway control",
	Long: `Dmxgate - control and monitor DMX512 gateways.

Talks the binary command/response protocol to a gateway driving a
DMX512 universe: set channels, blackout, tune frame timing, and read
back status with round-trip latency on every command.

Connection modes:
  Serial:    --port /dev/ttyRPMSG0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]

For WebSocket authentication, the password is read from the DMXGATE_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.`,
	Version: "1.2.0",

	// Commands report their own errors in the selected output format
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// Output flags
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "JSON output for scripts")
	rootCmd.PersistentFlags().BoolVarP(&quietOutput, "quiet", "q", false, "Minimal output (exit code only)")

	rootCmd.PersistentFlags().IntVar(&timeoutMs, "timeout", 1000, "Response timeout in milliseconds")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
