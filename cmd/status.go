// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/dmxgate/pkg/dmxclient"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show gateway transmission status",
	Long: `Query the gateway for its engine status: enabled flag, cumulative
frame count, and the measured frame rate.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	return withClient(func(c *dmxclient.Client) error {
		st, latency, err := c.Status()
		if err != nil {
			return printFailure("status", err)
		}

		if jsonOutput || quietOutput {
			printSuccess("status", "", latency, map[string]interface{}{
				"enabled":     st.Enabled,
				"frame_count": st.FrameCount,
				"fps":         st.FPS(),
			})
			return nil
		}

		fmt.Printf("DMX Status (latency: %d µs):\n", latency.Microseconds())
		fmt.Printf("  Enabled:      %s\n", yesNo(st.Enabled))
		fmt.Printf("  Frame count:  %d\n", st.FrameCount)
		fmt.Printf("  FPS:          %.2f Hz\n", st.FPS())
		return nil
	})
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
