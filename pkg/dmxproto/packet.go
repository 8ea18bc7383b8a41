// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dmxproto

import "time"

// Packet represents a decoded protocol packet.
//
// For commands, Code is the command type; for responses it is the status
// byte. The two directions share the same header shape and differ only in
// the magic byte.
type Packet struct {
	Magic     byte
	Code      byte
	Payload   []byte
	Timestamp time.Time
}

// IsCommand returns true if the packet carries the command magic.
func (p *Packet) IsCommand() bool {
	return p.Magic == MagicCommand
}

// IsResponse returns true if the packet carries the response magic.
func (p *Packet) IsResponse() bool {
	return p.Magic == MagicResponse
}
