// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dmxgateway

import (
	"encoding/binary"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Thermoquad/dmxgate/pkg/dmxengine"
	"github.com/Thermoquad/dmxgate/pkg/dmxproto"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestHandler() (*Handler, *dmxengine.Device) {
	dev := dmxengine.NewDevice()
	return NewHandler(dev, testLogger()), dev
}

// ============================================================
// Dispatch Tests
// ============================================================

func TestHandler_EnableDisable(t *testing.T) {
	h, dev := newTestHandler()

	status, resp := h.Handle(dmxproto.CmdEnable, nil)
	if status != dmxproto.StatusOK || resp != nil {
		t.Errorf("ENABLE: status 0x%02X resp %v", status, resp)
	}
	if !dev.Enabled() {
		t.Error("Device should be enabled")
	}

	status, _ = h.Handle(dmxproto.CmdDisable, nil)
	if status != dmxproto.StatusOK {
		t.Errorf("DISABLE: status 0x%02X", status)
	}
	if dev.Enabled() {
		t.Error("Device should be disabled")
	}
}

func TestHandler_UnknownCommand(t *testing.T) {
	h, _ := newTestHandler()

	status, _ := h.Handle(0x7F, nil)
	if status != dmxproto.StatusInvalidCmd {
		t.Errorf("Expected INVALID_CMD, got 0x%02X", status)
	}
}

// ============================================================
// SET_CHANNELS Tests
// ============================================================

func TestHandler_SetChannels(t *testing.T) {
	h, dev := newTestHandler()

	payload := dmxproto.EncodeSetChannels(4, []byte{0xAA, 0xBB})
	status, _ := h.Handle(dmxproto.CmdSetChannels, payload)
	if status != dmxproto.StatusOK {
		t.Fatalf("Expected OK, got 0x%02X", status)
	}
	if dev.Channel(4) != 0xAA || dev.Channel(5) != 0xBB {
		t.Error("Channel values not applied")
	}
}

func TestHandler_SetChannels_TruncatedPayload(t *testing.T) {
	h, _ := newTestHandler()

	status, _ := h.Handle(dmxproto.CmdSetChannels, []byte{0x01})
	if status != dmxproto.StatusInvalidLength {
		t.Errorf("Expected INVALID_LENGTH, got 0x%02X", status)
	}
}

func TestHandler_SetChannels_OutOfRange(t *testing.T) {
	h, dev := newTestHandler()
	dev.SetChannels(510, []byte{9, 9})

	payload := dmxproto.EncodeSetChannels(510, []byte{1, 2, 3})
	status, _ := h.Handle(dmxproto.CmdSetChannels, payload)
	if status != dmxproto.StatusError {
		t.Errorf("Expected ERROR, got 0x%02X", status)
	}
	if dev.Channel(510) != 9 || dev.Channel(511) != 9 {
		t.Error("Rejected update must not touch the universe")
	}
}

// ============================================================
// GET_STATUS Tests
// ============================================================

func TestHandler_GetStatus(t *testing.T) {
	h, dev := newTestHandler()
	dev.Enable()

	status, resp := h.Handle(dmxproto.CmdGetStatus, nil)
	if status != dmxproto.StatusOK {
		t.Fatalf("Expected OK, got 0x%02X", status)
	}

	st, err := dmxproto.DecodeStatusPayload(resp)
	if err != nil {
		t.Fatalf("Status payload decode: %v", err)
	}
	if !st.Enabled {
		t.Error("Status should report enabled")
	}
	if st.FrameCount != 0 {
		t.Errorf("Fresh device frame count %d, expected 0", st.FrameCount)
	}
}

// ============================================================
// BLACKOUT Tests
// ============================================================

func TestHandler_Blackout(t *testing.T) {
	h, dev := newTestHandler()
	dev.SetChannels(0, []byte{1, 2, 3})

	status, _ := h.Handle(dmxproto.CmdBlackout, nil)
	if status != dmxproto.StatusOK {
		t.Fatalf("Expected OK, got 0x%02X", status)
	}
	if dev.Channel(0) != 0 || dev.Channel(2) != 0 {
		t.Error("Universe should be zeroed")
	}
}

// ============================================================
// Timing Tests
// ============================================================

func TestHandler_SetTiming(t *testing.T) {
	h, dev := newTestHandler()

	payload := dmxproto.EncodeTimingPayload(dmxproto.TimingPayload{RefreshHz: 30})
	status, _ := h.Handle(dmxproto.CmdSetTiming, payload)
	if status != dmxproto.StatusOK {
		t.Fatalf("Expected OK, got 0x%02X", status)
	}

	timing := dev.Timing()
	if timing.RefreshHz != 30 {
		t.Errorf("RefreshHz %d, expected 30", timing.RefreshHz)
	}
	if timing.BreakUs != dmxengine.DefaultBreakUs {
		t.Error("Zero delta field must leave BREAK unchanged")
	}
}

func TestHandler_SetTiming_WrongSize(t *testing.T) {
	h, _ := newTestHandler()

	status, _ := h.Handle(dmxproto.CmdSetTiming, []byte{1, 2, 3})
	if status != dmxproto.StatusInvalidLength {
		t.Errorf("Expected INVALID_LENGTH, got 0x%02X", status)
	}
}

func TestHandler_SetTiming_Invalid(t *testing.T) {
	h, dev := newTestHandler()
	before := dev.Timing()

	payload := dmxproto.EncodeTimingPayload(dmxproto.TimingPayload{RefreshHz: 30, BreakUs: 5000})
	status, _ := h.Handle(dmxproto.CmdSetTiming, payload)
	if status != dmxproto.StatusError {
		t.Errorf("Expected ERROR, got 0x%02X", status)
	}
	if dev.Timing() != before {
		t.Error("Failed update must leave every timing field unchanged")
	}
}

func TestHandler_GetTiming(t *testing.T) {
	h, _ := newTestHandler()

	status, resp := h.Handle(dmxproto.CmdGetTiming, nil)
	if status != dmxproto.StatusOK {
		t.Fatalf("Expected OK, got 0x%02X", status)
	}

	timing, err := dmxproto.DecodeTimingPayload(resp)
	if err != nil {
		t.Fatalf("Timing payload decode: %v", err)
	}
	if timing.RefreshHz != dmxengine.DefaultRefreshHz ||
		timing.BreakUs != dmxengine.DefaultBreakUs ||
		timing.MabUs != dmxengine.DefaultMabUs {
		t.Errorf("Expected default timing, got %+v", timing)
	}
}

// ============================================================
// SYSTEM_RESET Tests
// ============================================================

func TestHandler_SystemReset_GuardChecked(t *testing.T) {
	h, _ := newTestHandler()
	h.SetResetHook(func() {})

	status, _ := h.Handle(dmxproto.CmdSystemReset, []byte{1, 2})
	if status != dmxproto.StatusInvalidLength {
		t.Errorf("Short payload: expected INVALID_LENGTH, got 0x%02X", status)
	}

	bad := make([]byte, 4)
	binary.LittleEndian.PutUint32(bad, 0x12345678)
	status, _ = h.Handle(dmxproto.CmdSystemReset, bad)
	if status != dmxproto.StatusError {
		t.Errorf("Bad guard: expected ERROR, got 0x%02X", status)
	}
}

func TestHandler_SystemReset_NoHook(t *testing.T) {
	h, _ := newTestHandler()

	status, _ := h.Handle(dmxproto.CmdSystemReset, dmxproto.EncodeResetPayload())
	if status != dmxproto.StatusError {
		t.Errorf("Without a hook, expected ERROR, got 0x%02X", status)
	}
}

func TestHandler_SystemReset_FiresHookAfterAck(t *testing.T) {
	h, dev := newTestHandler()
	dev.Enable()

	fired := make(chan struct{})
	h.SetResetHook(func() { close(fired) })

	status, _ := h.Handle(dmxproto.CmdSystemReset, dmxproto.EncodeResetPayload())
	if status != dmxproto.StatusOK {
		t.Fatalf("Expected OK, got 0x%02X", status)
	}
	if dev.Enabled() {
		t.Error("Reset should disable transmission immediately")
	}

	// The hook fires only after the response has had time to flush
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("Reset hook never fired")
	}
}
