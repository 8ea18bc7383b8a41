// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/dmxgate/pkg/dmxclient"
	"github.com/Thermoquad/dmxgate/pkg/dmxengine"
)

var setCmd = &cobra.Command{
	Use:   "set <channel> <value[,value,...]>",
	Short: "Set one or more consecutive channel values",
	Long: `Set DMX channel values starting at the given channel.

Channels are 1-based on the command line (1-512) and translated to the
protocol's 0-based indices on the wire. Values are 0-255, comma-separated
for consecutive channels.

Examples:
  dmxgate -p /dev/ttyRPMSG0 set 1 255
  dmxgate -p /dev/ttyRPMSG0 set 10 255,128,64`,
	Args: cobra.ExactArgs(2),
	RunE: runSet,
}

func init() {
	rootCmd.AddCommand(setCmd)
}

func runSet(cmd *cobra.Command, args []string) error {
	channel, err := strconv.Atoi(args[0])
	if err != nil || channel < 1 || channel > dmxengine.UniverseSize {
		return printFailure("set", fmt.Errorf("channel must be 1-%d", dmxengine.UniverseSize))
	}

	values, err := parseValues(args[1])
	if err != nil {
		return printFailure("set", err)
	}

	if channel-1+len(values) > dmxengine.UniverseSize {
		return printFailure("set", fmt.Errorf("%d values starting at channel %d exceed the universe",
			len(values), channel))
	}

	return withClient(func(c *dmxclient.Client) error {
		// User-facing channels are 1-based; the wire is 0-based
		latency, err := c.SetChannels(channel-1, values)
		if err != nil {
			return printFailure("set", err)
		}
		printSuccess("set",
			fmt.Sprintf("Set %d channel(s) from %d", len(values), channel),
			latency,
			map[string]interface{}{"channel": channel, "count": len(values)})
		return nil
	})
}

func parseValues(s string) ([]byte, error) {
	parts := strings.Split(s, ",")
	values := make([]byte, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || v < 0 || v > 255 {
			return nil, fmt.Errorf("value %q must be 0-255", part)
		}
		values = append(values, byte(v))
	}
	return values, nil
}
