// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"time"

	"github.com/Thermoquad/dmxgate/pkg/dmxclient"
)

// withClient opens the configured connection, hands a client to fn, and
// closes the connection afterwards.
func withClient(fn func(*dmxclient.Client) error) error {
	conn, _, err := OpenConnection()
	if err != nil {
		return err
	}

	client := dmxclient.New(conn, time.Duration(timeoutMs)*time.Millisecond)
	defer client.Close()

	return fn(client)
}
