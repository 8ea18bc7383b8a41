// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dmxproto

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrTimeout is returned when a bounded read expires before the requested
// byte count arrives.
var ErrTimeout = errors.New("read timeout")

// Conn is the byte channel the protocol runs over. The transport owns the
// channel; the codec borrows it for the duration of one send or receive.
//
// SetReadTimeout bounds subsequent Reads; an expired Read must return
// either a timeout error or (0, nil), both of which are mapped to
// ErrTimeout here.
type Conn interface {
	io.ReadWriteCloser
	SetReadTimeout(d time.Duration) error
}

// ReadExact reads exactly len(buf) bytes from c under a bounded wait.
// A short delivery is surfaced as ErrTimeout, never as a partial result.
func ReadExact(c Conn, buf []byte, timeout time.Duration) error {
	if err := c.SetReadTimeout(timeout); err != nil {
		return err
	}

	total := 0
	for total < len(buf) {
		n, err := c.Read(buf[total:])
		if err != nil {
			var ne interface{ Timeout() bool }
			if errors.As(err, &ne) && ne.Timeout() {
				return fmt.Errorf("%w after %d/%d bytes", ErrTimeout, total, len(buf))
			}
			return err
		}
		if n == 0 {
			// go.bug.st/serial reports an expired read timeout as (0, nil)
			return fmt.Errorf("%w after %d/%d bytes", ErrTimeout, total, len(buf))
		}
		total += n
	}
	return nil
}

// ReadPacket reads one complete, already-framed packet from c in
// whole-packet mode: header, then exactly the declared payload length,
// then the checksum byte, each under the same bounded wait.
//
// maxPayload bounds the declared length; exceeding it fails with
// ErrLengthOverflow before any payload byte is read. The returned bytes
// are unvalidated; pass them to DecodeCommand or DecodeResponse.
func ReadPacket(c Conn, maxPayload int, timeout time.Duration) ([]byte, error) {
	hdr := make([]byte, HeaderSize)
	if err := ReadExact(c, hdr, timeout); err != nil {
		return nil, err
	}

	declared := int(hdr[2]) | int(hdr[3])<<8
	if declared > maxPayload {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrLengthOverflow, declared, maxPayload)
	}

	pkt := make([]byte, HeaderSize+declared+1)
	copy(pkt, hdr)
	if err := ReadExact(c, pkt[HeaderSize:], timeout); err != nil {
		return nil, err
	}

	return pkt, nil
}

// WritePacket writes a complete packet to c, treating a short write as an
// error; the core never retries transport failures.
func WritePacket(c Conn, pkt []byte) error {
	n, err := c.Write(pkt)
	if err != nil {
		return err
	}
	if n != len(pkt) {
		return fmt.Errorf("short write: %d of %d bytes", n, len(pkt))
	}
	return nil
}
