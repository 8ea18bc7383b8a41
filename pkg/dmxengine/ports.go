// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dmxengine

import (
	"time"

	"go.bug.st/serial"
)

// Port is the timed frame output consumed by the blocking transmitter.
//
// SendBreakMAB is one atomic timing unit: once it starts, nothing may
// alter the BREAK or MAB duration, and it always runs to completion. On
// hardware this span runs with interrupts suppressed; implementations own
// that guarantee.
type Port interface {
	// WaitIdle blocks until the hardware has fully drained previously
	// written data. A new frame's BREAK must not begin before this.
	WaitIdle()

	// SendBreakMAB holds the line in BREAK for brk, then idle for mab.
	SendBreakMAB(brk, mab time.Duration)

	// Write pushes one complete frame, blocking until accepted. A short
	// count without an error is a transmission underrun.
	Write(frame []byte) (int, error)
}

// PolledPort is the frame output consumed by the non-blocking polled
// transmitter. TryWrite accepts at most as many bytes as the transmit
// queue has room for and never blocks on a full queue.
type PolledPort interface {
	WaitIdle()
	SendBreakMAB(brk, mab time.Duration)
	TryWrite(p []byte) int
}

// SerialPort drives DMX512 over a real UART via go.bug.st/serial:
// 250 kbaud, 8 data bits, 2 stop bits, no parity, with BREAK generated by
// the driver's break ioctl.
type SerialPort struct {
	port serial.Port
}

// OpenSerialPort opens device configured for DMX512 output.
func OpenSerialPort(device string) (*SerialPort, error) {
	mode := &serial.Mode{
		BaudRate: 250000,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.TwoStopBits,
	}

	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, err
	}
	return &SerialPort{port: port}, nil
}

// WaitIdle drains the kernel transmit queue.
func (s *SerialPort) WaitIdle() {
	// Best effort: Drain blocks until the output buffer reaches the
	// hardware. A drain failure surfaces as a late BREAK, not a crash.
	_ = s.port.Drain()
}

// SendBreakMAB generates the BREAK/MAB sequence. Sub-millisecond accuracy
// here depends on the host; a dedicated UART with low-latency settings is
// expected on the gateway deployment.
func (s *SerialPort) SendBreakMAB(brk, mab time.Duration) {
	_ = s.port.Break(brk)
	time.Sleep(mab)
}

// Write pushes a frame into the kernel transmit queue.
func (s *SerialPort) Write(frame []byte) (int, error) {
	return s.port.Write(frame)
}

// Close releases the underlying port.
func (s *SerialPort) Close() error {
	return s.port.Close()
}

// DiscardPort is a Port that consumes frames without hardware, pacing
// writes to roughly the 250 kbaud air time so simulated FPS measurements
// stay plausible. Used by the simulator and in tests.
type DiscardPort struct{}

func (DiscardPort) WaitIdle() {}

func (DiscardPort) SendBreakMAB(brk, mab time.Duration) {
	time.Sleep(brk + mab)
}

func (DiscardPort) Write(frame []byte) (int, error) {
	// 11 bit times per byte at 250 kbaud = 44 µs/byte
	time.Sleep(time.Duration(len(frame)) * 44 * time.Microsecond)
	return len(frame), nil
}

// byteAirTime is the on-wire duration of one byte at 250 kbaud 8N2.
const byteAirTime = 44 * time.Microsecond

// PolledDiscardPort is a PolledPort without hardware: it models a small
// transmit FIFO draining at DMX line rate, so the polled transmitter
// exercises its partial-write path and produces plausible frame timing.
type PolledDiscardPort struct {
	fifoSize  int
	queued    int
	lastDrain time.Time
}

// NewPolledDiscardPort creates a simulated port with a 16-byte FIFO.
func NewPolledDiscardPort() *PolledDiscardPort {
	return &PolledDiscardPort{fifoSize: 16}
}

func (p *PolledDiscardPort) drain(now time.Time) {
	if p.lastDrain.IsZero() {
		p.lastDrain = now
		return
	}
	drained := int(now.Sub(p.lastDrain) / byteAirTime)
	if drained <= 0 {
		return
	}
	if drained > p.queued {
		drained = p.queued
	}
	p.queued -= drained
	p.lastDrain = p.lastDrain.Add(time.Duration(drained) * byteAirTime)
}

func (p *PolledDiscardPort) WaitIdle() {
	p.drain(time.Now())
	if p.queued > 0 {
		time.Sleep(time.Duration(p.queued) * byteAirTime)
		p.queued = 0
	}
	p.lastDrain = time.Now()
}

func (p *PolledDiscardPort) SendBreakMAB(brk, mab time.Duration) {
	time.Sleep(brk + mab)
	p.lastDrain = time.Now()
}

// TryWrite accepts at most the free FIFO space and never blocks.
func (p *PolledDiscardPort) TryWrite(b []byte) int {
	now := time.Now()
	p.drain(now)

	room := p.fifoSize - p.queued
	if room <= 0 {
		return 0
	}
	n := len(b)
	if n > room {
		n = room
	}
	p.queued += n
	return n
}
