// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dmxgateway

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Thermoquad/dmxgate/pkg/dmxengine"
	"github.com/Thermoquad/dmxgate/pkg/dmxproto"
)

// heartbeatInterval matches the bare-metal firmware's periodic counter
// dump.
const heartbeatInterval = 5 * time.Second

// Superloop is the cooperative, bare-metal-style runner: one thread of
// control alternating between draining the receive ring through the
// per-byte parser and polling the non-blocking transmitter. The parser
// and the engine poll are never concurrent by construction.
type Superloop struct {
	ring    *RingBuffer
	decoder *dmxproto.Decoder
	handler *Handler
	tx      *dmxengine.PolledTransmitter
	respond func(pkt []byte) error
	log     logrus.FieldLogger

	rxCount  uint32
	cmdCount uint32
	txCount  uint32

	lastHeartbeat time.Time
}

// NewSuperloop assembles a runner. respond is called with each complete
// response packet; it must not block for long or DMX timing suffers.
func NewSuperloop(ring *RingBuffer, handler *Handler, tx *dmxengine.PolledTransmitter,
	respond func(pkt []byte) error, log logrus.FieldLogger) *Superloop {
	return &Superloop{
		ring:    ring,
		decoder: dmxproto.NewDecoder(),
		handler: handler,
		tx:      tx,
		respond: respond,
		log:     log,
	}
}

// Step executes one superloop turn: drain pending receive bytes through
// the parser (dispatching any completed command), then poll the DMX
// transmit state machine, then emit the heartbeat when due.
func (s *Superloop) Step(now time.Time) {
	for {
		b, ok := s.ring.Get()
		if !ok {
			break
		}
		s.rxCount++

		pkt, err := s.decoder.DecodeByte(b)
		if err != nil {
			if errors.Is(err, dmxproto.ErrLengthOverflow) {
				// Corrupted length field: the framing is untrustworthy,
				// discard and resynchronize on the next magic
				s.log.WithError(err).Warn("parser reset")
				continue
			}
			s.log.WithError(err).Warn("malformed packet")
			s.sendResponse(dmxproto.StatusForError(err), nil)
			continue
		}
		if pkt == nil {
			continue
		}

		s.cmdCount++
		status, resp := s.handler.Handle(pkt.Code, pkt.Payload)
		s.sendResponse(status, resp)
	}

	s.tx.Poll(now)

	if s.lastHeartbeat.IsZero() {
		s.lastHeartbeat = now
	}
	if now.Sub(s.lastHeartbeat) >= heartbeatInterval {
		s.log.WithFields(logrus.Fields{
			"rx":     s.rxCount,
			"tx":     s.txCount,
			"cmd":    s.cmdCount,
			"frames": s.handler.dev.FrameCount(),
		}).Debug("heartbeat")
		s.lastHeartbeat = now
	}
}

// Run steps the loop until stop is closed. Hosts that have their own
// loop (or a test clock) drive Step directly instead.
func (s *Superloop) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}
		s.Step(time.Now())
		// Yield briefly; 1ms keeps worst-case FIFO starvation well
		// under one byte time at 250 kbaud × 64-byte queue
		time.Sleep(time.Millisecond)
	}
}

func (s *Superloop) sendResponse(status byte, payload []byte) {
	pkt, err := dmxproto.EncodeResponse(status, payload)
	if err != nil {
		s.log.WithError(err).Error("response encode failed")
		return
	}
	if err := s.respond(pkt); err != nil {
		s.log.WithError(err).Warn("response write failed")
		return
	}
	s.txCount++
}
