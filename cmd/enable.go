// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Thermoquad/dmxgate/pkg/dmxclient"
)

var enableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Enable DMX transmission",
	Long: `Start DMX512 frame transmission on the gateway.

The gateway resets its frame and FPS counters and begins sending frames
at the configured refresh rate.`,
	Args: cobra.NoArgs,
	RunE: runEnable,
}

func init() {
	rootCmd.AddCommand(enableCmd)
}

func runEnable(cmd *cobra.Command, args []string) error {
	return withClient(func(c *dmxclient.Client) error {
		latency, err := c.Enable()
		if err != nil {
			return printFailure("enable", err)
		}
		printSuccess("enable", "DMX enabled", latency, nil)
		return nil
	})
}
