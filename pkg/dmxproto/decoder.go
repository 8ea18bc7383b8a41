// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dmxproto

import (
	"errors"
	"fmt"
	"time"
)

// Decode validation errors
var (
	ErrTooShort       = errors.New("packet shorter than minimum size")
	ErrBadMagic       = errors.New("invalid magic byte")
	ErrBadChecksum    = errors.New("checksum mismatch")
	ErrBadLength      = errors.New("declared length disagrees with packet size")
	ErrLengthOverflow = errors.New("declared length exceeds buffer capacity")
)

// StatusForError maps a decode error to the protocol status code reported
// back to the host.
func StatusForError(err error) byte {
	switch {
	case errors.Is(err, ErrBadMagic):
		return StatusInvalidMagic
	case errors.Is(err, ErrBadChecksum):
		return StatusInvalidChecksum
	case errors.Is(err, ErrTooShort), errors.Is(err, ErrBadLength), errors.Is(err, ErrLengthOverflow):
		return StatusInvalidLength
	default:
		return StatusError
	}
}

// DecodeCommand validates a complete, already-delimited command packet and
// returns the command type and a payload slice of exactly the declared
// length. The payload aliases pkt.
func DecodeCommand(pkt []byte) (cmd byte, payload []byte, err error) {
	return decodePacket(pkt, MagicCommand)
}

// DecodeResponse validates a complete response packet and returns the
// status byte and payload.
func DecodeResponse(pkt []byte) (status byte, payload []byte, err error) {
	return decodePacket(pkt, MagicResponse)
}

func decodePacket(pkt []byte, magic byte) (byte, []byte, error) {
	if len(pkt) < MinPacketSize {
		return 0, nil, fmt.Errorf("%w: %d bytes (min %d)", ErrTooShort, len(pkt), MinPacketSize)
	}
	if pkt[0] != magic {
		return 0, nil, fmt.Errorf("%w: 0x%02X (expected 0x%02X)", ErrBadMagic, pkt[0], magic)
	}
	if !VerifyChecksum(pkt) {
		return 0, nil, fmt.Errorf("%w: expected 0x%02X, got 0x%02X",
			ErrBadChecksum, Checksum(pkt[:len(pkt)-1]), pkt[len(pkt)-1])
	}

	declared := int(pkt[2]) | int(pkt[3])<<8
	if declared != len(pkt)-MinPacketSize {
		return 0, nil, fmt.Errorf("%w: declared %d, have %d", ErrBadLength, declared, len(pkt)-MinPacketSize)
	}

	return pkt[1], pkt[HeaderSize : HeaderSize+declared], nil
}

// Decoder implements the per-byte protocol parser state machine:
//
//	IDLE → CMD → LEN_LO → LEN_HI → DATA* → CHECKSUM → IDLE
//
// It is used on channels that deliver an unbounded byte stream with no
// datagram boundaries. IDLE discards every byte until an accepted magic
// arrives; a declared payload length exceeding the fixed buffer capacity
// aborts back to IDLE before any payload byte is stored.
type Decoder struct {
	state      int
	buf        [MaxPacketSize]byte
	idx        int
	payloadLen int
	magics     []byte
}

// NewDecoder creates a decoder that accepts command packets only, the
// configuration used on the gateway side.
func NewDecoder() *Decoder {
	return &Decoder{magics: []byte{MagicCommand}}
}

// NewTapDecoder creates a decoder that accepts both commands and
// responses, for passively monitoring a shared line.
func NewTapDecoder() *Decoder {
	return &Decoder{magics: []byte{MagicCommand, MagicResponse}}
}

// Reset returns the decoder to IDLE, discarding any partial packet.
func (d *Decoder) Reset() {
	d.state = stateIdle
	d.idx = 0
	d.payloadLen = 0
}

func (d *Decoder) accepts(b byte) bool {
	for _, m := range d.magics {
		if b == m {
			return true
		}
	}
	return false
}

// DecodeByte advances the state machine by one byte.
//
// Returns a validated packet when the byte completes one, nil while a
// packet is incomplete, and an error when a completed packet fails
// validation or a declared length is oversized. The decoder is back in
// IDLE after every return with a non-nil packet or error.
func (d *Decoder) DecodeByte(b byte) (*Packet, error) {
	switch d.state {
	case stateIdle:
		if !d.accepts(b) {
			return nil, nil
		}
		d.buf[0] = b
		d.idx = 1
		d.state = stateCmd
		return nil, nil

	case stateCmd:
		d.buf[d.idx] = b
		d.idx++
		d.state = stateLenLo
		return nil, nil

	case stateLenLo:
		d.buf[d.idx] = b
		d.idx++
		d.payloadLen = int(b)
		d.state = stateLenHi
		return nil, nil

	case stateLenHi:
		d.buf[d.idx] = b
		d.idx++
		d.payloadLen |= int(b) << 8
		if d.payloadLen > MaxPayloadSize {
			declared := d.payloadLen
			d.Reset()
			return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrLengthOverflow, declared, MaxPayloadSize)
		}
		if d.payloadLen == 0 {
			d.state = stateChecksum
		} else {
			d.state = stateData
		}
		return nil, nil

	case stateData:
		d.buf[d.idx] = b
		d.idx++
		if d.idx >= HeaderSize+d.payloadLen {
			d.state = stateChecksum
		}
		return nil, nil

	case stateChecksum:
		d.buf[d.idx] = b
		d.idx++
		pkt, err := d.complete()
		d.Reset()
		return pkt, err

	default:
		d.Reset()
		return nil, fmt.Errorf("invalid decoder state: %d", d.state)
	}
}

// complete validates the accumulated buffer as one packet.
func (d *Decoder) complete() (*Packet, error) {
	raw := d.buf[:d.idx]

	code, payload, err := decodePacket(raw, raw[0])
	if err != nil {
		return nil, err
	}

	p := &Packet{
		Magic:     raw[0],
		Code:      code,
		Payload:   append([]byte(nil), payload...),
		Timestamp: time.Now(),
	}
	return p, nil
}
