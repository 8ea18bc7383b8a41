// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dmxproto

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// ============================================================
// Checksum Tests
// ============================================================

func TestChecksum_Empty(t *testing.T) {
	if c := Checksum(nil); c != 0 {
		t.Errorf("Checksum of empty data should be 0, got 0x%02X", c)
	}
}

func TestChecksum_KnownValues(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected byte
	}{
		{
			name:     "ENABLE header",
			data:     []byte{0xAA, 0x03, 0x00, 0x00},
			expected: 0xA9, // 0xAA ^ 0x03
		},
		{
			name:     "single byte",
			data:     []byte{0x5A},
			expected: 0x5A,
		},
		{
			name:     "self-cancelling pair",
			data:     []byte{0x42, 0x42},
			expected: 0x00,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if c := Checksum(tt.data); c != tt.expected {
				t.Errorf("Checksum mismatch: expected 0x%02X, got 0x%02X", tt.expected, c)
			}
		})
	}
}

func TestVerifyChecksum(t *testing.T) {
	pkt := []byte{0xAA, 0x03, 0x00, 0x00, 0xA9}
	if !VerifyChecksum(pkt) {
		t.Error("Valid packet should verify")
	}

	pkt[4] ^= 0x01
	if VerifyChecksum(pkt) {
		t.Error("Corrupted checksum should not verify")
	}
}

// ============================================================
// Encoder Tests
// ============================================================

func TestEncodeCommand_Empty(t *testing.T) {
	pkt, err := EncodeCommand(CmdEnable, nil)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	expected := []byte{0xAA, 0x03, 0x00, 0x00, 0xA9}
	if !bytes.Equal(pkt, expected) {
		t.Errorf("Wire bytes mismatch: expected % X, got % X", expected, pkt)
	}
}

func TestEncodeCommand_WithPayload(t *testing.T) {
	payload := EncodeSetChannels(0, []byte{0xFF, 0x80})
	pkt, err := EncodeCommand(CmdSetChannels, payload)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	if pkt[0] != MagicCommand {
		t.Errorf("Magic mismatch: got 0x%02X", pkt[0])
	}
	if pkt[1] != CmdSetChannels {
		t.Errorf("Command mismatch: got 0x%02X", pkt[1])
	}
	if pkt[2] != 4 || pkt[3] != 0 {
		t.Errorf("Length field mismatch: got %d %d", pkt[2], pkt[3])
	}
	if !VerifyChecksum(pkt) {
		t.Error("Encoded packet should carry a valid checksum")
	}
}

func TestEncodeCommand_PayloadTooLarge(t *testing.T) {
	_, err := EncodeCommand(CmdSetChannels, make([]byte, MaxPayloadSize+1))
	if err == nil {
		t.Error("Expected error for oversized payload")
	}
}

func TestEncodeResponse_Magic(t *testing.T) {
	pkt, err := EncodeResponse(StatusOK, nil)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if pkt[0] != MagicResponse {
		t.Errorf("Response magic mismatch: got 0x%02X", pkt[0])
	}
}

// ============================================================
// Whole-Packet Decode Tests
// ============================================================

func TestDecodeCommand_RoundTrip(t *testing.T) {
	payload := EncodeSetChannels(9, []byte{1, 2, 3})
	pkt, err := EncodeCommand(CmdSetChannels, payload)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	cmd, got, err := DecodeCommand(pkt)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if cmd != CmdSetChannels {
		t.Errorf("Command mismatch: got 0x%02X", cmd)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Payload mismatch: expected % X, got % X", payload, got)
	}
}

func TestDecodeCommand_TooShort(t *testing.T) {
	_, _, err := DecodeCommand([]byte{0xAA, 0x01, 0x00})
	if !errors.Is(err, ErrTooShort) {
		t.Errorf("Expected ErrTooShort, got %v", err)
	}
}

func TestDecodeCommand_BadMagic(t *testing.T) {
	pkt, _ := EncodeResponse(StatusOK, nil)
	_, _, err := DecodeCommand(pkt)
	if !errors.Is(err, ErrBadMagic) {
		t.Errorf("Expected ErrBadMagic, got %v", err)
	}
}

func TestDecodeCommand_BadChecksum(t *testing.T) {
	pkt, _ := EncodeCommand(CmdEnable, nil)
	pkt[len(pkt)-1] ^= 0xFF
	_, _, err := DecodeCommand(pkt)
	if !errors.Is(err, ErrBadChecksum) {
		t.Errorf("Expected ErrBadChecksum, got %v", err)
	}
}

func TestDecodeCommand_LengthMismatch(t *testing.T) {
	// Declared length 2 but no payload bytes; checksum recomputed so the
	// length check is what trips
	pkt := []byte{0xAA, 0x01, 0x02, 0x00}
	pkt = append(pkt, Checksum(pkt))
	_, _, err := DecodeCommand(pkt)
	if !errors.Is(err, ErrBadLength) {
		t.Errorf("Expected ErrBadLength, got %v", err)
	}
}

func TestDecodeCommand_SingleBitCorruptionDetected(t *testing.T) {
	payload := EncodeSetChannels(0, []byte{0x10, 0x20, 0x30})
	pkt, _ := EncodeCommand(CmdSetChannels, payload)

	for i := range pkt {
		for bit := 0; bit < 8; bit++ {
			corrupted := append([]byte(nil), pkt...)
			corrupted[i] ^= 1 << bit
			if _, _, err := DecodeCommand(corrupted); err == nil {
				t.Errorf("Flip of byte %d bit %d went undetected", i, bit)
			}
		}
	}
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err      error
		expected byte
	}{
		{ErrBadMagic, StatusInvalidMagic},
		{ErrBadChecksum, StatusInvalidChecksum},
		{ErrTooShort, StatusInvalidLength},
		{ErrBadLength, StatusInvalidLength},
		{ErrLengthOverflow, StatusInvalidLength},
		{errors.New("something else"), StatusError},
	}

	for _, tt := range tests {
		if got := StatusForError(tt.err); got != tt.expected {
			t.Errorf("StatusForError(%v) = 0x%02X, expected 0x%02X", tt.err, got, tt.expected)
		}
	}
}

// ============================================================
// Per-Byte Decoder Tests
// ============================================================

func feedBytes(t *testing.T, d *Decoder, data []byte) (*Packet, error) {
	t.Helper()
	var pkt *Packet
	var err error
	for _, b := range data {
		pkt, err = d.DecodeByte(b)
		if pkt != nil || err != nil {
			return pkt, err
		}
	}
	return pkt, err
}

func TestDecoder_SimplePacket(t *testing.T) {
	d := NewDecoder()
	wire, _ := EncodeCommand(CmdGetStatus, nil)

	pkt, err := feedBytes(t, d, wire)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if pkt == nil {
		t.Fatal("Expected packet, got nil")
	}
	if pkt.Code != CmdGetStatus {
		t.Errorf("Command mismatch: got 0x%02X", pkt.Code)
	}
	if len(pkt.Payload) != 0 {
		t.Errorf("Expected empty payload, got %d bytes", len(pkt.Payload))
	}
	if pkt.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestDecoder_JunkBeforeMagic(t *testing.T) {
	d := NewDecoder()
	wire, _ := EncodeCommand(CmdBlackout, nil)

	stream := append([]byte{0x00, 0x13, 0x37, 0xBB, 0xFE}, wire...)
	pkt, err := feedBytes(t, d, stream)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if pkt == nil || pkt.Code != CmdBlackout {
		t.Fatal("Junk prefix should be discarded and the packet decoded")
	}
}

func TestDecoder_MagicInsidePayload(t *testing.T) {
	// 0xAA is only special in IDLE; as a payload byte it is data
	d := NewDecoder()
	payload := EncodeSetChannels(0, []byte{MagicCommand, MagicResponse, MagicCommand})
	wire, _ := EncodeCommand(CmdSetChannels, payload)

	pkt, err := feedBytes(t, d, wire)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if pkt == nil {
		t.Fatal("Expected packet")
	}
	if !bytes.Equal(pkt.Payload, payload) {
		t.Errorf("Payload mismatch: expected % X, got % X", payload, pkt.Payload)
	}
}

func TestDecoder_BackToBackPackets(t *testing.T) {
	d := NewDecoder()
	first, _ := EncodeCommand(CmdEnable, nil)
	second, _ := EncodeCommand(CmdDisable, nil)

	stream := append(append([]byte(nil), first...), second...)

	var decoded []*Packet
	for _, b := range stream {
		pkt, err := d.DecodeByte(b)
		if err != nil {
			t.Fatalf("Decode error: %v", err)
		}
		if pkt != nil {
			decoded = append(decoded, pkt)
		}
	}

	if len(decoded) != 2 {
		t.Fatalf("Expected 2 packets, got %d", len(decoded))
	}
	if decoded[0].Code != CmdEnable || decoded[1].Code != CmdDisable {
		t.Errorf("Command order mismatch: 0x%02X, 0x%02X", decoded[0].Code, decoded[1].Code)
	}
}

func TestDecoder_OversizedLengthAborts(t *testing.T) {
	d := NewDecoder()

	// 0xFFFF declared length must abort at the high length byte
	d.DecodeByte(MagicCommand)
	d.DecodeByte(CmdSetChannels)
	d.DecodeByte(0xFF)
	pkt, err := d.DecodeByte(0xFF)
	if !errors.Is(err, ErrLengthOverflow) {
		t.Fatalf("Expected ErrLengthOverflow, got %v", err)
	}
	if pkt != nil {
		t.Error("Expected nil packet on overflow")
	}

	// Decoder must be back in IDLE and accept the next packet
	wire, _ := EncodeCommand(CmdGetTiming, nil)
	pkt, err = feedBytes(t, d, wire)
	if err != nil {
		t.Fatalf("Decode error after overflow: %v", err)
	}
	if pkt == nil || pkt.Code != CmdGetTiming {
		t.Error("Decoder should recover to IDLE after an oversized length")
	}
}

func TestDecoder_ChecksumErrorThenRecovery(t *testing.T) {
	d := NewDecoder()

	bad, _ := EncodeCommand(CmdEnable, nil)
	bad[len(bad)-1] ^= 0x55
	_, err := feedBytes(t, d, bad)
	if !errors.Is(err, ErrBadChecksum) {
		t.Fatalf("Expected ErrBadChecksum, got %v", err)
	}

	good, _ := EncodeCommand(CmdEnable, nil)
	pkt, err := feedBytes(t, d, good)
	if err != nil {
		t.Fatalf("Decode error after checksum failure: %v", err)
	}
	if pkt == nil || pkt.Code != CmdEnable {
		t.Error("Decoder should recover after a checksum failure")
	}
}

func TestDecoder_IgnoresResponses(t *testing.T) {
	d := NewDecoder()
	wire, _ := EncodeResponse(StatusOK, nil)

	// The response magic never enters the command decoder's FSM; the
	// remaining bytes (none of them 0xAA) are discarded in IDLE too
	for _, b := range wire {
		pkt, err := d.DecodeByte(b)
		if pkt != nil || err != nil {
			t.Fatalf("Command decoder acted on a response byte: pkt=%v err=%v", pkt, err)
		}
	}
}

func TestTapDecoder_BothDirections(t *testing.T) {
	d := NewTapDecoder()

	cmd, _ := EncodeCommand(CmdGetStatus, nil)
	resp, _ := EncodeResponse(StatusOK, EncodeStatusPayload(StatusPayload{Enabled: true, FrameCount: 10, FPSx100: 4400}))

	pkt, err := feedBytes(t, d, cmd)
	if err != nil || pkt == nil || !pkt.IsCommand() {
		t.Fatalf("Tap decoder should decode commands: pkt=%v err=%v", pkt, err)
	}

	pkt, err = feedBytes(t, d, resp)
	if err != nil || pkt == nil || !pkt.IsResponse() {
		t.Fatalf("Tap decoder should decode responses: pkt=%v err=%v", pkt, err)
	}
}

func TestDecoder_Reset(t *testing.T) {
	d := NewDecoder()

	d.DecodeByte(MagicCommand)
	d.DecodeByte(CmdEnable)
	d.Reset()

	// Non-magic bytes are ignored from IDLE
	pkt, err := d.DecodeByte(0x00)
	if pkt != nil || err != nil {
		t.Error("After reset, decoder should be in IDLE ignoring non-magic bytes")
	}
}

func TestDecoder_InvalidState(t *testing.T) {
	d := NewDecoder()
	d.state = 999

	_, err := d.DecodeByte(0x00)
	if err == nil {
		t.Error("Expected invalid state error")
	}
	if !strings.Contains(err.Error(), "invalid decoder state") {
		t.Errorf("Expected 'invalid decoder state' error, got '%s'", err.Error())
	}
}

// ============================================================
// Payload Codec Tests
// ============================================================

func TestStatusPayload_RoundTrip(t *testing.T) {
	in := StatusPayload{Enabled: true, FrameCount: 123456, FPSx100: 4387}
	out, err := DecodeStatusPayload(EncodeStatusPayload(in))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if out != in {
		t.Errorf("Round trip mismatch: %+v != %+v", out, in)
	}
	if out.FPS() != 43.87 {
		t.Errorf("FPS() = %.2f, expected 43.87", out.FPS())
	}
}

func TestStatusPayload_WrongSize(t *testing.T) {
	if _, err := DecodeStatusPayload(make([]byte, 8)); err == nil {
		t.Error("Expected error for short status payload")
	}
}

func TestTimingPayload_RoundTrip(t *testing.T) {
	in := TimingPayload{RefreshHz: 30, BreakUs: 176, MabUs: 16}
	encoded := EncodeTimingPayload(in)

	// Wire layout is fixed little-endian
	expected := []byte{30, 0, 176, 0, 16, 0}
	if !bytes.Equal(encoded, expected) {
		t.Errorf("Wire bytes mismatch: expected % X, got % X", expected, encoded)
	}

	out, err := DecodeTimingPayload(encoded)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if out != in {
		t.Errorf("Round trip mismatch: %+v != %+v", out, in)
	}
}

func TestSetChannels_RoundTrip(t *testing.T) {
	payload := EncodeSetChannels(511, []byte{0xFF})
	start, values, err := DecodeSetChannels(payload)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if start != 511 {
		t.Errorf("Start mismatch: got %d", start)
	}
	if !bytes.Equal(values, []byte{0xFF}) {
		t.Errorf("Values mismatch: got % X", values)
	}
}

func TestSetChannels_TooShort(t *testing.T) {
	if _, _, err := DecodeSetChannels([]byte{0x01}); err == nil {
		t.Error("Expected error for truncated set_channels payload")
	}
}

func TestSetChannels_EmptyValues(t *testing.T) {
	// Zero values is a valid no-op update
	start, values, err := DecodeSetChannels(EncodeSetChannels(5, nil))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if start != 5 || len(values) != 0 {
		t.Errorf("Expected start=5 with no values, got start=%d values=% X", start, values)
	}
}

func TestResetPayload(t *testing.T) {
	encoded := EncodeResetPayload()
	expected := []byte{0xEF, 0xBE, 0xAD, 0xDE}
	if !bytes.Equal(encoded, expected) {
		t.Errorf("Guard bytes mismatch: expected % X, got % X", expected, encoded)
	}

	magic, err := DecodeResetPayload(encoded)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if magic != ResetMagic {
		t.Errorf("Guard mismatch: got 0x%08X", magic)
	}

	if _, err := DecodeResetPayload([]byte{1, 2, 3}); err == nil {
		t.Error("Expected error for short reset payload")
	}
}

// ============================================================
// Formatter Tests
// ============================================================

func TestCommandName(t *testing.T) {
	tests := []struct {
		code     byte
		expected string
	}{
		{CmdSetChannels, "SET_CHANNELS"},
		{CmdGetStatus, "GET_STATUS"},
		{CmdEnable, "ENABLE"},
		{CmdDisable, "DISABLE"},
		{CmdBlackout, "BLACKOUT"},
		{CmdSetTiming, "SET_TIMING"},
		{CmdGetTiming, "GET_TIMING"},
		{CmdSystemReset, "SYSTEM_RESET"},
		{0x99, "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := CommandName(tt.code); got != tt.expected {
				t.Errorf("CommandName(0x%02X) = %s, expected %s", tt.code, got, tt.expected)
			}
		})
	}
}

func TestStatusName(t *testing.T) {
	tests := []struct {
		code     byte
		expected string
	}{
		{StatusOK, "OK"},
		{StatusInvalidMagic, "INVALID_MAGIC"},
		{StatusInvalidChecksum, "INVALID_CHECKSUM"},
		{StatusInvalidCmd, "INVALID_CMD"},
		{StatusInvalidLength, "INVALID_LENGTH"},
		{StatusError, "ERROR"},
		{0x42, "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := StatusName(tt.code); got != tt.expected {
			t.Errorf("StatusName(0x%02X) = %s, expected %s", tt.code, got, tt.expected)
		}
	}
}

func TestFormatPacket_Command(t *testing.T) {
	d := NewTapDecoder()
	wire, _ := EncodeCommand(CmdGetStatus, nil)
	pkt, err := feedBytes(t, d, wire)
	if err != nil || pkt == nil {
		t.Fatalf("Decode failed: %v", err)
	}

	result := FormatPacket(pkt)
	if !strings.Contains(result, "GET_STATUS") {
		t.Errorf("Should contain command name, got '%s'", result)
	}
}

func TestFormatPacket_Response(t *testing.T) {
	d := NewTapDecoder()
	payload := EncodeStatusPayload(StatusPayload{Enabled: true, FrameCount: 42, FPSx100: 4400})
	wire, _ := EncodeResponse(StatusOK, payload)
	pkt, err := feedBytes(t, d, wire)
	if err != nil || pkt == nil {
		t.Fatalf("Decode failed: %v", err)
	}

	result := FormatPacket(pkt)
	if !strings.Contains(result, "OK") {
		t.Errorf("Should contain status name, got '%s'", result)
	}
	if !strings.Contains(result, "44.00") {
		t.Errorf("Should contain decoded FPS, got '%s'", result)
	}
}
