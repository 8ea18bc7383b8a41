// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package dmxclient implements the host side of the dmxgate protocol:
// one command, one response, with bounded waits and round-trip latency
// measurement on every exchange.
package dmxclient

import (
	"fmt"
	"time"

	"github.com/Thermoquad/dmxgate/pkg/dmxengine"
	"github.com/Thermoquad/dmxgate/pkg/dmxproto"
)

// DefaultTimeout bounds the wait for a response.
const DefaultTimeout = time.Second

// responseMaxPayload bounds response payloads; the largest defined
// response is the 9-byte status payload, with headroom.
const responseMaxPayload = 64

// StatusError reports a non-OK device status.
type StatusError struct {
	Status byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("device returned %s (0x%02X)", dmxproto.StatusName(e.Status), e.Status)
}

// Client issues commands over a byte channel. Methods are not safe for
// concurrent use; the protocol is strictly one command in flight.
type Client struct {
	conn    dmxproto.Conn
	timeout time.Duration
}

// New creates a Client over conn. A zero timeout selects DefaultTimeout.
func New(conn dmxproto.Conn, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{conn: conn, timeout: timeout}
}

// Close closes the underlying channel.
func (c *Client) Close() error {
	return c.conn.Close()
}

// do performs one command/response round trip and measures its latency.
// Latency is diagnostic only and is reported even on failure.
func (c *Client) do(cmd byte, payload []byte) (resp []byte, latency time.Duration, err error) {
	pkt, err := dmxproto.EncodeCommand(cmd, payload)
	if err != nil {
		return nil, 0, err
	}

	start := time.Now()
	defer func() { latency = time.Since(start) }()

	if err := dmxproto.WritePacket(c.conn, pkt); err != nil {
		return nil, 0, fmt.Errorf("send %s: %w", dmxproto.CommandName(cmd), err)
	}

	raw, err := dmxproto.ReadPacket(c.conn, responseMaxPayload, c.timeout)
	if err != nil {
		return nil, 0, fmt.Errorf("receive %s response: %w", dmxproto.CommandName(cmd), err)
	}

	status, data, err := dmxproto.DecodeResponse(raw)
	if err != nil {
		return nil, 0, fmt.Errorf("%s response: %w", dmxproto.CommandName(cmd), err)
	}
	if status != dmxproto.StatusOK {
		return nil, 0, &StatusError{Status: status}
	}

	return data, 0, nil
}

// Enable starts DMX transmission.
func (c *Client) Enable() (time.Duration, error) {
	_, latency, err := c.do(dmxproto.CmdEnable, nil)
	return latency, err
}

// Disable stops DMX transmission.
func (c *Client) Disable() (time.Duration, error) {
	_, latency, err := c.do(dmxproto.CmdDisable, nil)
	return latency, err
}

// Blackout zeroes every channel in the universe.
func (c *Client) Blackout() (time.Duration, error) {
	_, latency, err := c.do(dmxproto.CmdBlackout, nil)
	return latency, err
}

// SetChannels writes values starting at the 0-based channel index start.
// Range violations are rejected client-side before touching the wire.
func (c *Client) SetChannels(start int, values []byte) (time.Duration, error) {
	if start < 0 || start+len(values) > dmxengine.UniverseSize {
		return 0, fmt.Errorf("channel range %d+%d exceeds universe size %d",
			start, len(values), dmxengine.UniverseSize)
	}
	_, latency, err := c.do(dmxproto.CmdSetChannels, dmxproto.EncodeSetChannels(uint16(start), values))
	return latency, err
}

// Status queries the engine counters.
func (c *Client) Status() (dmxproto.StatusPayload, time.Duration, error) {
	data, latency, err := c.do(dmxproto.CmdGetStatus, nil)
	if err != nil {
		return dmxproto.StatusPayload{}, latency, err
	}
	st, err := dmxproto.DecodeStatusPayload(data)
	return st, latency, err
}

// Timing queries the current timing configuration.
func (c *Client) Timing() (dmxproto.TimingPayload, time.Duration, error) {
	data, latency, err := c.do(dmxproto.CmdGetTiming, nil)
	if err != nil {
		return dmxproto.TimingPayload{}, latency, err
	}
	t, err := dmxproto.DecodeTimingPayload(data)
	return t, latency, err
}

// SetTiming applies a timing delta; a zero field leaves that parameter
// unchanged. The gateway applies the update all-or-nothing.
func (c *Client) SetTiming(refreshHz, breakUs, mabUs uint16) (time.Duration, error) {
	payload := dmxproto.EncodeTimingPayload(dmxproto.TimingPayload{
		RefreshHz: refreshHz,
		BreakUs:   breakUs,
		MabUs:     mabUs,
	})
	_, latency, err := c.do(dmxproto.CmdSetTiming, payload)
	return latency, err
}

// Reset issues the magic-guarded system reset. The gateway acknowledges
// before resetting; expect the channel to drop shortly after.
func (c *Client) Reset() (time.Duration, error) {
	_, latency, err := c.do(dmxproto.CmdSystemReset, dmxproto.EncodeResetPayload())
	return latency, err
}
