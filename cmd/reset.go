// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Thermoquad/dmxgate/pkg/dmxclient"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the gateway (magic-guarded)",
	Long: `Issue the magic-guarded system reset command.

The gateway acknowledges before resetting, so the command normally
succeeds and the connection drops shortly afterwards. Constrained
targets may reject the command as unsupported.`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	return withClient(func(c *dmxclient.Client) error {
		latency, err := c.Reset()
		if err != nil {
			return printFailure("reset", err)
		}
		printSuccess("reset", "Gateway resetting", latency, nil)
		return nil
	})
}
