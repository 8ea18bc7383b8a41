// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// Dmxgate - DMX512 Gateway CLI
//
// A CLI tool for driving and monitoring DMX512 gateways speaking the
// binary command/response protocol over serial or WebSocket links.

package main

import (
	"os"

	"github.com/Thermoquad/dmxgate/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
