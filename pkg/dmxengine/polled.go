// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dmxengine

import "time"

// Polled transmitter states
const (
	pollIdle = iota
	pollTxData
)

// PolledTransmitter is the non-blocking engine variant for cooperative
// superloops. Poll never blocks or sleeps, with one bounded exception:
// the BREAK+MAB sequence runs synchronously inside the poll that starts
// a frame, because its duration is small and it must stay atomic.
type PolledTransmitter struct {
	dev  *Device
	port PolledPort

	state     int
	frame     [FrameSize]byte
	timing    Timing
	cursor    int
	lastFrame time.Time
	sampler   fpsSampler
}

// NewPolledTransmitter creates a polled transmitter over dev writing to
// port.
func NewPolledTransmitter(dev *Device, port PolledPort) *PolledTransmitter {
	return &PolledTransmitter{dev: dev, port: port}
}

// Busy reports whether a frame is currently being shifted out.
func (p *PolledTransmitter) Busy() bool {
	return p.state != pollIdle
}

// Poll advances the transmit state machine. Call it on every superloop
// turn with the current monotonic time.
//
// When idle and the frame interval has elapsed, it captures a snapshot,
// performs BREAK+MAB, and immediately starts draining data in the same
// call (single-poll latency from frame start to first data byte). While
// transmitting, each poll pushes whatever the hardware queue accepts and
// advances the cursor; completion records the time, bumps the counter,
// and returns to idle.
func (p *PolledTransmitter) Poll(now time.Time) {
	if !p.dev.Enabled() {
		p.state = pollIdle
		p.sampler = fpsSampler{}
		return
	}

	if p.state == pollIdle {
		if now.Sub(p.lastFrame) < p.dev.Timing().FrameInterval() {
			return
		}

		// Previous frame's tail may still be in the shift register
		p.port.WaitIdle()

		p.timing = p.dev.Snapshot(&p.frame)
		p.port.SendBreakMAB(p.timing.BreakDuration(), p.timing.MabDuration())

		p.cursor = 0
		p.state = pollTxData
		// Drain immediately below rather than waiting one poll
	}

	p.cursor += p.port.TryWrite(p.frame[p.cursor:])
	if p.cursor >= FrameSize {
		p.dev.frameCount.Add(1)
		p.lastFrame = now
		p.state = pollIdle

		if fps, ok := p.sampler.sample(now, p.dev.frameCount.Load()); ok {
			p.dev.fpsX100.Store(fps)
		}
	}
}
