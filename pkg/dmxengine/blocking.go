// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dmxengine

import (
	"time"
)

// disabledPollInterval is how long the blocking transmitter sleeps
// between enable checks while transmission is off.
const disabledPollInterval = 100 * time.Millisecond

// Transmitter is the blocking-thread engine variant. It runs an
// unbounded loop on its own goroutine, issuing blocking hardware waits,
// the way the preemptive-RTOS gateway dedicates a transmission thread.
//
// Per frame: wait-idle → snapshot under lock → BREAK+MAB → blocking
// write → counters → pacing sleep for the remainder of the frame period.
type Transmitter struct {
	dev  *Device
	port Port

	stop chan struct{}
	done chan struct{}
}

// NewTransmitter creates a transmitter over dev writing to port.
func NewTransmitter(dev *Device, port Port) *Transmitter {
	return &Transmitter{
		dev:  dev,
		port: port,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Start launches the transmission loop.
func (t *Transmitter) Start() {
	go t.run()
}

// Stop terminates the loop and waits for it to exit. A frame in flight
// completes first; BREAK/MAB is never cut short.
func (t *Transmitter) Stop() {
	close(t.stop)
	<-t.done
}

func (t *Transmitter) run() {
	defer close(t.done)

	var frame [FrameSize]byte
	var sampler fpsSampler

	for {
		select {
		case <-t.stop:
			return
		default:
		}

		if !t.dev.Enabled() {
			sampler = fpsSampler{}
			if !t.sleep(disabledPollInterval) {
				return
			}
			continue
		}

		frameStart := time.Now()

		// Previous frame must be fully drained before a new BREAK
		t.port.WaitIdle()

		timing := t.dev.Snapshot(&frame)

		t.port.SendBreakMAB(timing.BreakDuration(), timing.MabDuration())

		n, err := t.port.Write(frame[:])
		if err != nil || n < FrameSize {
			// Recoverable: DMX consumers tolerate a dropped frame,
			// not a stalled transmitter
			t.dev.errorCount.Add(1)
		} else {
			t.dev.frameCount.Add(1)
		}

		if fps, ok := sampler.sample(time.Now(), t.dev.frameCount.Load()); ok {
			t.dev.fpsX100.Store(fps)
		}

		// Pacing: below the physical maximum rate, sleep out the rest
		// of the frame period; at 44 Hz continue immediately.
		if timing.RefreshHz < RefreshHzMax {
			elapsed := time.Since(frameStart)
			if remaining := timing.FrameInterval() - elapsed; remaining > 0 {
				if !t.sleep(remaining) {
					return
				}
			}
		}
	}
}

// sleep waits for d unless Stop is called first; returns false on stop.
func (t *Transmitter) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-t.stop:
		return false
	case <-timer.C:
		return true
	}
}
