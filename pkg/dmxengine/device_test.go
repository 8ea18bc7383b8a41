// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dmxengine

import (
	"testing"
)

// ============================================================
// Channel Universe Tests
// ============================================================

func TestDevice_InitialState(t *testing.T) {
	d := NewDevice()

	if d.Enabled() {
		t.Error("New device should be disabled")
	}
	if d.Timing() != DefaultTiming() {
		t.Errorf("New device should carry default timing, got %+v", d.Timing())
	}

	st := d.Status()
	if st.FrameCount != 0 || st.FPSx100 != 0 || st.Errors != 0 {
		t.Errorf("New device counters should be zero: %+v", st)
	}

	for i := 0; i < UniverseSize; i++ {
		if d.Channel(i) != 0 {
			t.Fatalf("Channel %d should start at zero", i)
		}
	}
}

func TestDevice_SetChannels(t *testing.T) {
	d := NewDevice()

	if err := d.SetChannels(9, []byte{0xFF, 0x80, 0x40}); err != nil {
		t.Fatalf("SetChannels error: %v", err)
	}

	if d.Channel(9) != 0xFF || d.Channel(10) != 0x80 || d.Channel(11) != 0x40 {
		t.Error("Channel values not stored at the expected indices")
	}
	if d.Channel(8) != 0 || d.Channel(12) != 0 {
		t.Error("Neighboring channels must not change")
	}
}

func TestDevice_SetChannels_Boundaries(t *testing.T) {
	d := NewDevice()

	if err := d.SetChannels(0, []byte{1}); err != nil {
		t.Errorf("First channel should be writable: %v", err)
	}
	if err := d.SetChannels(UniverseSize-1, []byte{1}); err != nil {
		t.Errorf("Last channel should be writable: %v", err)
	}
	if err := d.SetChannels(0, make([]byte, UniverseSize)); err != nil {
		t.Errorf("Full-universe write should be accepted: %v", err)
	}
}

func TestDevice_SetChannels_RangeRejectedWhole(t *testing.T) {
	d := NewDevice()
	d.SetChannels(510, []byte{7, 7})

	// 510 + 3 spills past the universe: nothing may change
	if err := d.SetChannels(510, []byte{1, 2, 3}); err == nil {
		t.Fatal("Expected range error")
	}
	if d.Channel(510) != 7 || d.Channel(511) != 7 {
		t.Error("Rejected update must not touch any channel")
	}

	if err := d.SetChannels(-1, []byte{1}); err == nil {
		t.Error("Negative start should be rejected")
	}
	if err := d.SetChannels(UniverseSize, []byte{1}); err == nil {
		t.Error("Start past the universe should be rejected")
	}
}

func TestDevice_Blackout(t *testing.T) {
	d := NewDevice()
	d.SetChannels(0, []byte{1, 2, 3})
	d.SetChannels(509, []byte{4, 5, 6})
	d.Enable()

	d.Blackout()

	for i := 0; i < UniverseSize; i++ {
		if d.Channel(i) != 0 {
			t.Fatalf("Channel %d should be zero after blackout", i)
		}
	}
	if !d.Enabled() {
		t.Error("Blackout must not change the enable state")
	}
}

// ============================================================
// Enable / Disable Tests
// ============================================================

func TestDevice_EnableResetsCounters(t *testing.T) {
	d := NewDevice()
	d.Enable()
	d.frameCount.Store(100)
	d.fpsX100.Store(4400)
	d.Disable()

	d.Enable()

	st := d.Status()
	if st.FrameCount != 0 || st.FPSx100 != 0 {
		t.Errorf("Enable should reset frame and FPS counters: %+v", st)
	}
}

func TestDevice_EnableIdempotent(t *testing.T) {
	d := NewDevice()
	d.Enable()
	d.frameCount.Store(100)

	// Enabling an enabled device must not clear the counters
	d.Enable()

	if d.FrameCount() != 100 {
		t.Errorf("Redundant Enable should change nothing, frame count = %d", d.FrameCount())
	}
}

func TestDevice_DisableKeepsUniverse(t *testing.T) {
	d := NewDevice()
	d.SetChannels(0, []byte{0xAA})
	d.Enable()

	d.Disable()

	if d.Enabled() {
		t.Error("Device should be disabled")
	}
	if d.Channel(0) != 0xAA {
		t.Error("Disable must not touch channel values")
	}
}

// ============================================================
// Snapshot Tests
// ============================================================

func TestDevice_Snapshot(t *testing.T) {
	d := NewDevice()
	d.SetChannels(0, []byte{10, 20, 30})
	d.SetChannels(511, []byte{40})

	var frame [FrameSize]byte
	timing := d.Snapshot(&frame)

	if frame[0] != StartCode {
		t.Errorf("Frame byte 0 must be the start code, got 0x%02X", frame[0])
	}
	if frame[1] != 10 || frame[2] != 20 || frame[3] != 30 {
		t.Error("Frame channel data mismatch at the front")
	}
	if frame[FrameSize-1] != 40 {
		t.Error("Frame channel data mismatch at the back")
	}
	if timing != d.Timing() {
		t.Error("Snapshot should return the timing in force")
	}
}

func TestDevice_SnapshotIsCopy(t *testing.T) {
	d := NewDevice()
	d.SetChannels(0, []byte{1})

	var frame [FrameSize]byte
	d.Snapshot(&frame)

	// A later update must not alter the captured frame
	d.SetChannels(0, []byte{99})
	if frame[1] != 1 {
		t.Error("Snapshot must be isolated from later channel updates")
	}
}

// ============================================================
// Timing Update Tests
// ============================================================

func TestDevice_SetTiming_Atomic(t *testing.T) {
	d := NewDevice()
	before := d.Timing()

	if err := d.SetTiming(Timing{RefreshHz: 30, BreakUs: 2000}); err == nil {
		t.Fatal("Expected validation error")
	}
	if d.Timing() != before {
		t.Error("Failed timing update must leave every field unchanged")
	}

	if err := d.SetTiming(Timing{RefreshHz: 30}); err != nil {
		t.Fatalf("SetTiming error: %v", err)
	}
	got := d.Timing()
	if got.RefreshHz != 30 || got.BreakUs != before.BreakUs || got.MabUs != before.MabUs {
		t.Errorf("Delta update applied incorrectly: %+v", got)
	}
}
