// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dmxengine

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Status is a snapshot of the engine counters.
type Status struct {
	Enabled    bool
	FrameCount uint32
	FPSx100    uint32 // measured frames per second × 100
	Errors     uint32 // transmission underruns / short writes
}

// Device owns the channel universe, the timing configuration, and the
// engine counters. It is the single shared state between the command
// handler and a transmitter; both blocking and polled transmitters are
// schedulers over one Device.
//
// The mutex guards only memory copies (channel updates and frame
// snapshots), never any I/O or delay.
type Device struct {
	mu       sync.Mutex
	channels [UniverseSize]byte
	timing   Timing

	enabled    atomic.Bool
	frameCount atomic.Uint32
	fpsX100    atomic.Uint32
	errorCount atomic.Uint32
}

// NewDevice creates a Device with default timing, all channels at zero,
// and transmission disabled.
func NewDevice() *Device {
	return &Device{timing: DefaultTiming()}
}

// Enable turns transmission on and resets the frame and FPS counters.
// Idempotent: enabling an enabled device changes nothing.
func (d *Device) Enable() {
	if d.enabled.Load() {
		return
	}
	d.frameCount.Store(0)
	d.fpsX100.Store(0)
	d.enabled.Store(true)
}

// Disable turns transmission off. The universe is left untouched.
func (d *Device) Disable() {
	d.enabled.Store(false)
}

// Enabled reports whether transmission is on.
func (d *Device) Enabled() bool {
	return d.enabled.Load()
}

// SetChannels copies values into the universe starting at the 0-based
// channel index start. Out-of-range writes are rejected whole; the
// universe is never clamped or partially updated.
func (d *Device) SetChannels(start int, values []byte) error {
	if start < 0 || start+len(values) > UniverseSize {
		return fmt.Errorf("channel range %d+%d exceeds universe size %d", start, len(values), UniverseSize)
	}

	d.mu.Lock()
	copy(d.channels[start:], values)
	d.mu.Unlock()

	return nil
}

// Channel returns one channel value by 0-based index.
func (d *Device) Channel(i int) byte {
	if i < 0 || i >= UniverseSize {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.channels[i]
}

// Blackout zeroes the entire universe. Counters keep running.
func (d *Device) Blackout() {
	d.mu.Lock()
	d.channels = [UniverseSize]byte{}
	d.mu.Unlock()
}

// Snapshot captures a consistent frame (start code + universe) into frame
// and returns the timing in force for it. The copy, not the live buffer,
// is what a transmitter puts on the wire, so a channel update arriving
// mid-transmission affects only the next frame.
func (d *Device) Snapshot(frame *[FrameSize]byte) Timing {
	d.mu.Lock()
	defer d.mu.Unlock()

	frame[0] = StartCode
	copy(frame[1:], d.channels[:])
	return d.timing
}

// Timing returns the current timing configuration.
func (d *Device) Timing() Timing {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timing
}

// SetTiming applies a delta update (zero field = unchanged). Validation
// is all-or-nothing: a failing field leaves every field at its previous
// value.
func (d *Device) SetTiming(delta Timing) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	next, err := d.timing.Apply(delta)
	if err != nil {
		return err
	}
	d.timing = next
	return nil
}

// Status returns a snapshot copy of the engine counters.
func (d *Device) Status() Status {
	return Status{
		Enabled:    d.enabled.Load(),
		FrameCount: d.frameCount.Load(),
		FPSx100:    d.fpsX100.Load(),
		Errors:     d.errorCount.Load(),
	}
}

// FrameCount returns the cumulative number of frames sent.
func (d *Device) FrameCount() uint32 {
	return d.frameCount.Load()
}
