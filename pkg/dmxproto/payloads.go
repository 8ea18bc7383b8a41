// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dmxproto

import (
	"encoding/binary"
	"fmt"
)

// Payload layouts are fixed little-endian byte offsets, validated by
// length before field extraction. The original firmware used packed C
// structs for these; explicit encode/decode keeps the wire format
// identical without relying on memory layout.

// StatusPayload is the CMD_GET_STATUS response payload:
//
//	[enabled:1][frame_count:4 LE][fps_x100:4 LE]
type StatusPayload struct {
	Enabled    bool
	FrameCount uint32
	FPSx100    uint32 // measured rate × 100 (4400 = 44.00 Hz)
}

const statusPayloadSize = 9

// FPS returns the measured frame rate in Hz.
func (s StatusPayload) FPS() float64 {
	return float64(s.FPSx100) / 100.0
}

// EncodeStatusPayload serializes a StatusPayload.
func EncodeStatusPayload(s StatusPayload) []byte {
	buf := make([]byte, statusPayloadSize)
	if s.Enabled {
		buf[0] = 1
	}
	binary.LittleEndian.PutUint32(buf[1:5], s.FrameCount)
	binary.LittleEndian.PutUint32(buf[5:9], s.FPSx100)
	return buf
}

// DecodeStatusPayload parses a CMD_GET_STATUS response payload.
func DecodeStatusPayload(p []byte) (StatusPayload, error) {
	if len(p) != statusPayloadSize {
		return StatusPayload{}, fmt.Errorf("status payload: %d bytes (expected %d)", len(p), statusPayloadSize)
	}
	return StatusPayload{
		Enabled:    p[0] != 0,
		FrameCount: binary.LittleEndian.Uint32(p[1:5]),
		FPSx100:    binary.LittleEndian.Uint32(p[5:9]),
	}, nil
}

// TimingPayload is the CMD_SET_TIMING payload and the CMD_GET_TIMING
// response payload:
//
//	[refresh_hz:2 LE][break_us:2 LE][mab_us:2 LE]
//
// In a SET_TIMING delta a zero field means "leave unchanged".
type TimingPayload struct {
	RefreshHz uint16
	BreakUs   uint16
	MabUs     uint16
}

const timingPayloadSize = 6

// EncodeTimingPayload serializes a TimingPayload.
func EncodeTimingPayload(t TimingPayload) []byte {
	buf := make([]byte, timingPayloadSize)
	binary.LittleEndian.PutUint16(buf[0:2], t.RefreshHz)
	binary.LittleEndian.PutUint16(buf[2:4], t.BreakUs)
	binary.LittleEndian.PutUint16(buf[4:6], t.MabUs)
	return buf
}

// DecodeTimingPayload parses a timing payload.
func DecodeTimingPayload(p []byte) (TimingPayload, error) {
	if len(p) != timingPayloadSize {
		return TimingPayload{}, fmt.Errorf("timing payload: %d bytes (expected %d)", len(p), timingPayloadSize)
	}
	return TimingPayload{
		RefreshHz: binary.LittleEndian.Uint16(p[0:2]),
		BreakUs:   binary.LittleEndian.Uint16(p[2:4]),
		MabUs:     binary.LittleEndian.Uint16(p[4:6]),
	}, nil
}

// EncodeSetChannels builds a CMD_SET_CHANNELS payload:
//
//	[channel_start:2 LE][values:N]
//
// channelStart is the 0-based first channel index.
func EncodeSetChannels(channelStart uint16, values []byte) []byte {
	buf := make([]byte, 2+len(values))
	binary.LittleEndian.PutUint16(buf[0:2], channelStart)
	copy(buf[2:], values)
	return buf
}

// DecodeSetChannels parses a CMD_SET_CHANNELS payload. The returned
// values slice aliases p.
func DecodeSetChannels(p []byte) (channelStart uint16, values []byte, err error) {
	if len(p) < 2 {
		return 0, nil, fmt.Errorf("set_channels payload: %d bytes (min 2)", len(p))
	}
	return binary.LittleEndian.Uint16(p[0:2]), p[2:], nil
}

// EncodeResetPayload builds the magic-guarded CMD_SYSTEM_RESET payload.
func EncodeResetPayload() []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, ResetMagic)
	return buf
}

// DecodeResetPayload parses a CMD_SYSTEM_RESET payload and returns the
// guard value it carries.
func DecodeResetPayload(p []byte) (uint32, error) {
	if len(p) != 4 {
		return 0, fmt.Errorf("system_reset payload: %d bytes (expected 4)", len(p))
	}
	return binary.LittleEndian.Uint32(p), nil
}
