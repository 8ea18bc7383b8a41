// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dmxengine

import "time"

// fpsSampler measures the achieved frame rate over one-second windows.
// Both transmitter variants report the measured rate; the configured
// refresh rate is never substituted for it.
type fpsSampler struct {
	windowStart time.Time
	windowCount uint32
}

func (s *fpsSampler) reset(now time.Time, frames uint32) {
	s.windowStart = now
	s.windowCount = frames
}

// sample closes the window and returns the fixed-point FPS×100 value if
// at least one second has elapsed since the window opened.
func (s *fpsSampler) sample(now time.Time, frames uint32) (fpsX100 uint32, ok bool) {
	if s.windowStart.IsZero() {
		s.reset(now, frames)
		return 0, false
	}

	elapsed := now.Sub(s.windowStart)
	if elapsed < time.Second {
		return 0, false
	}

	elapsedMs := uint32(elapsed.Milliseconds())
	if elapsedMs == 0 {
		return 0, false
	}

	sent := frames - s.windowCount
	fpsX100 = sent * 100000 / elapsedMs
	s.reset(now, frames)
	return fpsX100, true
}
