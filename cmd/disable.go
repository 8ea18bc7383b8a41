// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Thermoquad/dmxgate/pkg/dmxclient"
)

var disableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable DMX transmission",
	Args:  cobra.NoArgs,
	RunE:  runDisable,
}

func init() {
	rootCmd.AddCommand(disableCmd)
}

func runDisable(cmd *cobra.Command, args []string) error {
	return withClient(func(c *dmxclient.Client) error {
		latency, err := c.Disable()
		if err != nil {
			return printFailure("disable", err)
		}
		printSuccess("disable", "DMX disabled", latency, nil)
		return nil
	})
}
