// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dmxgateway

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Thermoquad/dmxgate/pkg/dmxproto"
)

// pollTimeout bounds each packet read so the loop can notice context
// cancellation between commands.
const pollTimeout = 500 * time.Millisecond

// Server runs the whole-packet command loop over a delimited byte
// channel: read one framed command under a bounded wait, validate,
// dispatch, respond. Used where the transport preserves our own packet
// framing (RPMSG tty, WebSocket binary messages, TCP with a well-behaved
// peer).
type Server struct {
	handler *Handler
	conn    dmxproto.Conn
	log     logrus.FieldLogger
}

// NewServer creates a Server dispatching to handler over conn.
func NewServer(handler *Handler, conn dmxproto.Conn, log logrus.FieldLogger) *Server {
	return &Server{handler: handler, conn: conn, log: log}
}

// Run serves commands until ctx is cancelled or the channel fails.
// Malformed packets are answered with their typed error status; the loop
// never acts on a partially-received command.
func (s *Server) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		pkt, err := dmxproto.ReadPacket(s.conn, dmxproto.MaxPayloadSize, pollTimeout)
		if err != nil {
			if errors.Is(err, dmxproto.ErrTimeout) {
				continue
			}
			if errors.Is(err, dmxproto.ErrLengthOverflow) {
				s.log.WithError(err).Warn("oversized command rejected")
				s.respond(dmxproto.StatusInvalidLength, nil)
				continue
			}
			return err
		}

		cmd, payload, err := dmxproto.DecodeCommand(pkt)
		if err != nil {
			s.log.WithError(err).Warn("invalid command packet")
			s.respond(dmxproto.StatusForError(err), nil)
			continue
		}

		status, resp := s.handler.Handle(cmd, payload)
		s.respond(status, resp)
	}
}

func (s *Server) respond(status byte, payload []byte) {
	pkt, err := dmxproto.EncodeResponse(status, payload)
	if err != nil {
		s.log.WithError(err).Error("response encode failed")
		return
	}
	if err := dmxproto.WritePacket(s.conn, pkt); err != nil {
		s.log.WithError(err).Warn("response write failed")
	}
}
