// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/dmxgate/pkg/dmxclient"
)

var timingCmd = &cobra.Command{
	Use:   "timing [refresh_hz break_us mab_us]",
	Short: "Show or set frame timing",
	Long: `Without arguments, show the gateway's current timing configuration.

With three arguments, set the refresh rate (1-44 Hz), BREAK duration
(88-1000 µs), and MAB duration (8-100 µs). A value of 0 leaves that
field unchanged. The gateway applies the update all-or-nothing: one
out-of-range field rejects the whole command.

Examples:
  dmxgate -p /dev/ttyRPMSG0 timing            # show
  dmxgate -p /dev/ttyRPMSG0 timing 30 0 0     # 30 Hz, keep BREAK/MAB
  dmxgate -p /dev/ttyRPMSG0 timing 44 176 16`,
	Args: cobra.RangeArgs(0, 3),
	RunE: runTiming,
}

func init() {
	rootCmd.AddCommand(timingCmd)
}

func runTiming(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return runGetTiming()
	}
	if len(args) != 3 {
		return printFailure("timing", fmt.Errorf("expected 3 arguments: refresh_hz break_us mab_us"))
	}
	return runSetTiming(args)
}

func runGetTiming() error {
	return withClient(func(c *dmxclient.Client) error {
		t, latency, err := c.Timing()
		if err != nil {
			return printFailure("get_timing", err)
		}

		if jsonOutput || quietOutput {
			printSuccess("get_timing", "", latency, map[string]interface{}{
				"refresh_hz": t.RefreshHz,
				"break_us":   t.BreakUs,
				"mab_us":     t.MabUs,
			})
			return nil
		}

		fmt.Printf("DMX Timing (latency: %d µs):\n", latency.Microseconds())
		fmt.Printf("  Refresh rate: %d Hz\n", t.RefreshHz)
		fmt.Printf("  BREAK:        %d µs\n", t.BreakUs)
		fmt.Printf("  MAB:          %d µs\n", t.MabUs)
		return nil
	})
}

func runSetTiming(args []string) error {
	fields := make([]uint16, 3)
	names := []string{"refresh_hz", "break_us", "mab_us"}
	for i, arg := range args {
		v, err := strconv.ParseUint(arg, 10, 16)
		if err != nil {
			return printFailure("set_timing", fmt.Errorf("invalid %s: %q", names[i], arg))
		}
		fields[i] = uint16(v)
	}

	return withClient(func(c *dmxclient.Client) error {
		latency, err := c.SetTiming(fields[0], fields[1], fields[2])
		if err != nil {
			return printFailure("set_timing", err)
		}
		printSuccess("set_timing",
			fmt.Sprintf("Timing set: %d Hz, BREAK=%d µs, MAB=%d µs (0=unchanged)",
				fields[0], fields[1], fields[2]),
			latency,
			map[string]interface{}{
				"refresh_hz": fields[0],
				"break_us":   fields[1],
				"mab_us":     fields[2],
			})
		return nil
	})
}
