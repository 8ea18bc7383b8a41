// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dmxproto

import "fmt"

// EncodeCommand builds a complete wire-formatted command packet:
//
//	[0xAA][cmd][len_lo][len_hi][payload...][checksum]
//
// The checksum is the XOR of every preceding byte. Payloads larger than
// MaxPayloadSize are a caller error and are never put on the wire.
func EncodeCommand(cmd byte, payload []byte) ([]byte, error) {
	return encodePacket(MagicCommand, cmd, payload)
}

// EncodeResponse builds a complete wire-formatted response packet with the
// response magic and a status byte in place of the command type.
func EncodeResponse(status byte, payload []byte) ([]byte, error) {
	return encodePacket(MagicResponse, status, payload)
}

func encodePacket(magic, code byte, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("payload too large: %d bytes (max %d)", len(payload), MaxPayloadSize)
	}

	buf := make([]byte, 0, HeaderSize+len(payload)+1)
	buf = append(buf, magic, code, byte(len(payload)), byte(len(payload)>>8))
	buf = append(buf, payload...)
	buf = append(buf, Checksum(buf))

	return buf, nil
}
