// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output follows the original gateway client conventions: human-friendly
// by default, --json for scripts, --quiet for exit-code-only use.

// printSuccess reports a successful command. fields is emitted verbatim
// in JSON mode alongside status/command/latency; human is the one-line
// summary for interactive use.
func printSuccess(command, human string, latency time.Duration, fields map[string]interface{}) {
	switch {
	case quietOutput:
		// Silent success
	case jsonOutput:
		out := map[string]interface{}{
			"status":     "ok",
			"command":    command,
			"latency_us": latency.Microseconds(),
		}
		for k, v := range fields {
			out[k] = v
		}
		data, err := json.Marshal(out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: JSON encode failed: %v\n", err)
			return
		}
		fmt.Println(string(data))
	default:
		fmt.Printf("%s (latency: %d µs)\n", human, latency.Microseconds())
	}
}

// printFailure reports a failed command and returns err for the caller
// to propagate as the exit status.
func printFailure(command string, err error) error {
	switch {
	case quietOutput:
	case jsonOutput:
		data, _ := json.Marshal(map[string]interface{}{
			"status":  "error",
			"command": command,
			"error":   err.Error(),
		})
		fmt.Println(string(data))
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}
