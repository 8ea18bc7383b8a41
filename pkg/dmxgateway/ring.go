// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dmxgateway

import "sync/atomic"

// One slot is sacrificed to tell full from empty.
const ringSize = 256

// RingBuffer is a fixed-capacity single-producer single-consumer byte
// queue: the receive path (one goroutine, standing in for the interrupt
// handler) puts, the superloop gets. Head and tail are the only shared
// words; atomics replace the original's interrupt-disable window around
// index updates.
type RingBuffer struct {
	buf  [ringSize]byte
	head atomic.Uint32 // producer writes
	tail atomic.Uint32 // consumer writes
}

// Put appends one byte; returns false when the buffer is full, in which
// case the byte is dropped (the parser resynchronizes on the next magic).
func (r *RingBuffer) Put(b byte) bool {
	head := r.head.Load()
	next := (head + 1) % ringSize
	if next == r.tail.Load() {
		return false
	}
	r.buf[head] = b
	r.head.Store(next)
	return true
}

// Get removes and returns the oldest byte; ok is false when empty.
func (r *RingBuffer) Get() (b byte, ok bool) {
	tail := r.tail.Load()
	if tail == r.head.Load() {
		return 0, false
	}
	b = r.buf[tail]
	r.tail.Store((tail + 1) % ringSize)
	return b, true
}
