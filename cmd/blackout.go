// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Thermoquad/dmxgate/pkg/dmxclient"
)

var blackoutCmd = &cobra.Command{
	Use:   "blackout",
	Short: "Set all 512 channels to zero",
	Long: `Zero the entire channel universe in one command.

Transmission state is unaffected: if the gateway is enabled it keeps
sending (all-zero) frames.`,
	Args: cobra.NoArgs,
	RunE: runBlackout,
}

func init() {
	rootCmd.AddCommand(blackoutCmd)
}

func runBlackout(cmd *cobra.Command, args []string) error {
	return withClient(func(c *dmxclient.Client) error {
		latency, err := c.Blackout()
		if err != nil {
			return printFailure("blackout", err)
		}
		printSuccess("blackout", "Blackout applied", latency, nil)
		return nil
	})
}
