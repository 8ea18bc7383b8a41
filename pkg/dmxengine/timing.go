// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package dmxengine implements the DMX512 transmission engine: the
// 512-channel frame buffer shared between command handling and
// transmission, the timing configuration, and two schedulers over the
// same frame state machine — a blocking transmitter for preemptive
// environments and a non-blocking polled transmitter for cooperative
// superloops.
package dmxengine

import (
	"fmt"
	"time"
)

// Universe and frame geometry (DMX512, ANSI E1.11)
const (
	UniverseSize = 512
	FrameSize    = UniverseSize + 1 // start code + channels
	StartCode    = 0x00
)

// Timing limits. BREAK/MAB transmit minimums are 92/12 µs; receivers must
// accept 88/8 µs, which is what updates are validated against. 44 Hz is
// the physical maximum frame rate with a full 512-channel universe.
const (
	RefreshHzMin = 1
	RefreshHzMax = 44
	BreakUsMin   = 88
	BreakUsMax   = 1000
	MabUsMin     = 8
	MabUsMax     = 100
)

// Defaults
const (
	DefaultRefreshHz = 44
	DefaultBreakUs   = 150
	DefaultMabUs     = 12
)

// Timing holds the three independent frame timing fields.
type Timing struct {
	RefreshHz uint16
	BreakUs   uint16
	MabUs     uint16
}

// DefaultTiming returns the power-on timing configuration.
func DefaultTiming() Timing {
	return Timing{RefreshHz: DefaultRefreshHz, BreakUs: DefaultBreakUs, MabUs: DefaultMabUs}
}

// Validate checks every field against its physical range. Zero is not a
// valid physical value for any field.
func (t Timing) Validate() error {
	if t.RefreshHz < RefreshHzMin || t.RefreshHz > RefreshHzMax {
		return fmt.Errorf("refresh rate %d Hz out of range (%d-%d)", t.RefreshHz, RefreshHzMin, RefreshHzMax)
	}
	if t.BreakUs < BreakUsMin || t.BreakUs > BreakUsMax {
		return fmt.Errorf("BREAK %d µs out of range (%d-%d)", t.BreakUs, BreakUsMin, BreakUsMax)
	}
	if t.MabUs < MabUsMin || t.MabUs > MabUsMax {
		return fmt.Errorf("MAB %d µs out of range (%d-%d)", t.MabUs, MabUsMin, MabUsMax)
	}
	return nil
}

// Apply merges a delta update into t and returns the result. A zero field
// in the delta means "leave unchanged". The whole update is validated
// before anything is applied: one failing field rejects all three.
func (t Timing) Apply(delta Timing) (Timing, error) {
	next := t
	if delta.RefreshHz != 0 {
		next.RefreshHz = delta.RefreshHz
	}
	if delta.BreakUs != 0 {
		next.BreakUs = delta.BreakUs
	}
	if delta.MabUs != 0 {
		next.MabUs = delta.MabUs
	}
	if err := next.Validate(); err != nil {
		return t, err
	}
	return next, nil
}

// FrameInterval returns the frame period for the configured refresh rate.
func (t Timing) FrameInterval() time.Duration {
	if t.RefreshHz == 0 {
		return time.Second
	}
	return time.Second / time.Duration(t.RefreshHz)
}

// BreakDuration returns the BREAK length as a duration.
func (t Timing) BreakDuration() time.Duration {
	return time.Duration(t.BreakUs) * time.Microsecond
}

// MabDuration returns the MAB length as a duration.
func (t Timing) MabDuration() time.Duration {
	return time.Duration(t.MabUs) * time.Microsecond
}
