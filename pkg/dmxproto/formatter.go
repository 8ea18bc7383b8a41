// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dmxproto

import (
	"fmt"
	"strings"
)

// CommandName returns the symbolic name of a command type.
func CommandName(cmd byte) string {
	switch cmd {
	case CmdSetChannels:
		return "SET_CHANNELS"
	case CmdGetStatus:
		return "GET_STATUS"
	case CmdEnable:
		return "ENABLE"
	case CmdDisable:
		return "DISABLE"
	case CmdBlackout:
		return "BLACKOUT"
	case CmdSetTiming:
		return "SET_TIMING"
	case CmdGetTiming:
		return "GET_TIMING"
	case CmdSystemReset:
		return "SYSTEM_RESET"
	default:
		return "UNKNOWN"
	}
}

// StatusName returns the symbolic name of a response status code.
func StatusName(status byte) string {
	switch status {
	case StatusOK:
		return "OK"
	case StatusInvalidMagic:
		return "INVALID_MAGIC"
	case StatusInvalidChecksum:
		return "INVALID_CHECKSUM"
	case StatusInvalidCmd:
		return "INVALID_CMD"
	case StatusInvalidLength:
		return "INVALID_LENGTH"
	case StatusError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FormatPacket renders a packet in human-readable form, one line of
// header plus decoded payload fields where the layout is known.
func FormatPacket(p *Packet) string {
	var sb strings.Builder

	timestamp := p.Timestamp.Format("15:04:05.000")
	if p.IsCommand() {
		fmt.Fprintf(&sb, "[%s] CMD %s (0x%02X) len=%d\n", timestamp, CommandName(p.Code), p.Code, len(p.Payload))
	} else {
		fmt.Fprintf(&sb, "[%s] RESP %s (0x%02X) len=%d\n", timestamp, StatusName(p.Code), p.Code, len(p.Payload))
	}

	sb.WriteString(formatPayload(p))
	return sb.String()
}

func formatPayload(p *Packet) string {
	if len(p.Payload) == 0 {
		return ""
	}

	if p.IsCommand() {
		switch p.Code {
		case CmdSetChannels:
			if start, values, err := DecodeSetChannels(p.Payload); err == nil {
				return fmt.Sprintf("  Start: %d, Count: %d\n", start, len(values))
			}
		case CmdSetTiming:
			if t, err := DecodeTimingPayload(p.Payload); err == nil {
				return fmt.Sprintf("  Refresh: %d Hz, BREAK: %d µs, MAB: %d µs (0=unchanged)\n",
					t.RefreshHz, t.BreakUs, t.MabUs)
			}
		case CmdSystemReset:
			if magic, err := DecodeResetPayload(p.Payload); err == nil {
				return fmt.Sprintf("  Guard: 0x%08X\n", magic)
			}
		}
	} else {
		// Response payload layout depends on the command it answers;
		// the two sizes in use are unambiguous.
		if s, err := DecodeStatusPayload(p.Payload); err == nil {
			return fmt.Sprintf("  Enabled: %t, Frames: %d, FPS: %.2f\n", s.Enabled, s.FrameCount, s.FPS())
		}
		if t, err := DecodeTimingPayload(p.Payload); err == nil {
			return fmt.Sprintf("  Refresh: %d Hz, BREAK: %d µs, MAB: %d µs\n", t.RefreshHz, t.BreakUs, t.MabUs)
		}
	}

	return hexDump(p.Payload)
}

func hexDump(payload []byte) string {
	var sb strings.Builder
	sb.WriteString("  Payload: ")
	for i, b := range payload {
		if i > 0 && i%16 == 0 {
			sb.WriteString("\n           ")
		}
		fmt.Fprintf(&sb, "%02X ", b)
	}
	sb.WriteString("\n")
	return sb.String()
}
