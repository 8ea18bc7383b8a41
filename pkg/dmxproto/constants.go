// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package dmxproto provides a reference Go implementation of the dmxgate
// binary protocol.
//
// The protocol carries DMX512 gateway commands and responses over any
// reliable byte-oriented channel (serial line, RPMSG tty, WebSocket).
// This package provides packet encoding/decoding, XOR checksum validation,
// fixed-layout payload codecs, and a per-byte decoder state machine for
// channels without datagram boundaries.
package dmxproto

// Protocol framing bytes
const (
	MagicCommand  = 0xAA // Host → gateway
	MagicResponse = 0xBB // Gateway → host
)

// Packet size limits
const (
	MaxPayloadSize = 1024
	HeaderSize     = 4                              // magic + code + length (2, little-endian)
	MinPacketSize  = HeaderSize + 1                 // empty payload + checksum
	MaxPacketSize  = HeaderSize + MaxPayloadSize + 1
)

// Command types (host → gateway)
const (
	CmdSetChannels = 0x01
	CmdGetStatus   = 0x02
	CmdEnable      = 0x03
	CmdDisable     = 0x04
	CmdBlackout    = 0x05
	CmdSetTiming   = 0x06
	CmdGetTiming   = 0x07
	CmdSystemReset = 0x08
)

// Response status codes (gateway → host)
const (
	StatusOK              = 0x00
	StatusInvalidMagic    = 0x01
	StatusInvalidChecksum = 0x02
	StatusInvalidCmd      = 0x03
	StatusInvalidLength   = 0x04
	StatusError           = 0xFF
)

// ResetMagic guards CMD_SYSTEM_RESET against accidental resets.
// The command payload must carry this value, little-endian.
const ResetMagic uint32 = 0xDEADBEEF

// Decoder states (internal)
const (
	stateIdle = iota
	stateCmd
	stateLenLo
	stateLenHi
	stateData
	stateChecksum
)
