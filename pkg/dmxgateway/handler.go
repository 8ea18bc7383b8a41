// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package dmxgateway implements the device side of the dmxgate protocol:
// command dispatch onto a dmxengine.Device, a whole-packet responder loop
// for datagram-style channels, and a superloop runner that pairs the
// per-byte parser with the polled transmitter for cooperative targets.
package dmxgateway

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Thermoquad/dmxgate/pkg/dmxengine"
	"github.com/Thermoquad/dmxgate/pkg/dmxproto"
)

// resetFlushDelay gives the OK response time to reach the host before the
// reset hook fires.
const resetFlushDelay = 50 * time.Millisecond

// Handler dispatches validated commands to the engine and produces the
// response status and payload. Every handler is idempotent with respect
// to response retransmission, and a precondition violation never leaves a
// partial mutation behind.
type Handler struct {
	dev     *dmxengine.Device
	log     logrus.FieldLogger
	resetFn func()
}

// NewHandler creates a Handler over dev. log must not be nil.
func NewHandler(dev *dmxengine.Device, log logrus.FieldLogger) *Handler {
	return &Handler{dev: dev, log: log}
}

// SetResetHook installs the action performed by a magic-guarded
// CMD_SYSTEM_RESET. Without a hook the command is rejected, which is the
// correct behavior on targets that cannot reset.
func (h *Handler) SetResetHook(fn func()) {
	h.resetFn = fn
}

// Handle executes one decoded command and returns the response status and
// payload. The response must be emitted by the caller strictly after this
// returns, so the triggering mutation is always visible first.
func (h *Handler) Handle(cmd byte, payload []byte) (status byte, resp []byte) {
	switch cmd {
	case dmxproto.CmdEnable:
		h.dev.Enable()
		h.log.Info("transmission enabled")
		return dmxproto.StatusOK, nil

	case dmxproto.CmdDisable:
		h.dev.Disable()
		h.log.Info("transmission disabled")
		return dmxproto.StatusOK, nil

	case dmxproto.CmdSetChannels:
		return h.handleSetChannels(payload)

	case dmxproto.CmdGetStatus:
		st := h.dev.Status()
		return dmxproto.StatusOK, dmxproto.EncodeStatusPayload(dmxproto.StatusPayload{
			Enabled:    st.Enabled,
			FrameCount: st.FrameCount,
			FPSx100:    st.FPSx100,
		})

	case dmxproto.CmdBlackout:
		h.dev.Blackout()
		h.log.Info("blackout applied")
		return dmxproto.StatusOK, nil

	case dmxproto.CmdSetTiming:
		return h.handleSetTiming(payload)

	case dmxproto.CmdGetTiming:
		t := h.dev.Timing()
		return dmxproto.StatusOK, dmxproto.EncodeTimingPayload(dmxproto.TimingPayload{
			RefreshHz: t.RefreshHz,
			BreakUs:   t.BreakUs,
			MabUs:     t.MabUs,
		})

	case dmxproto.CmdSystemReset:
		return h.handleSystemReset(payload)

	default:
		h.log.WithField("cmd", cmd).Warn("unknown command")
		return dmxproto.StatusInvalidCmd, nil
	}
}

func (h *Handler) handleSetChannels(payload []byte) (byte, []byte) {
	start, values, err := dmxproto.DecodeSetChannels(payload)
	if err != nil {
		h.log.WithError(err).Warn("SET_CHANNELS rejected")
		return dmxproto.StatusInvalidLength, nil
	}

	if err := h.dev.SetChannels(int(start), values); err != nil {
		h.log.WithError(err).Warn("SET_CHANNELS rejected")
		return dmxproto.StatusError, nil
	}

	h.log.WithFields(logrus.Fields{"start": start, "count": len(values)}).Debug("channels updated")
	return dmxproto.StatusOK, nil
}

func (h *Handler) handleSetTiming(payload []byte) (byte, []byte) {
	t, err := dmxproto.DecodeTimingPayload(payload)
	if err != nil {
		h.log.WithError(err).Warn("SET_TIMING rejected")
		return dmxproto.StatusInvalidLength, nil
	}

	delta := dmxengine.Timing{RefreshHz: t.RefreshHz, BreakUs: t.BreakUs, MabUs: t.MabUs}
	if err := h.dev.SetTiming(delta); err != nil {
		h.log.WithError(err).Warn("SET_TIMING rejected")
		return dmxproto.StatusError, nil
	}

	applied := h.dev.Timing()
	h.log.WithFields(logrus.Fields{
		"refresh_hz": applied.RefreshHz,
		"break_us":   applied.BreakUs,
		"mab_us":     applied.MabUs,
	}).Info("timing updated")
	return dmxproto.StatusOK, nil
}

func (h *Handler) handleSystemReset(payload []byte) (byte, []byte) {
	magic, err := dmxproto.DecodeResetPayload(payload)
	if err != nil {
		h.log.WithError(err).Warn("SYSTEM_RESET rejected")
		return dmxproto.StatusInvalidLength, nil
	}
	if magic != dmxproto.ResetMagic {
		h.log.WithField("guard", magic).Warn("SYSTEM_RESET bad guard value")
		return dmxproto.StatusError, nil
	}
	if h.resetFn == nil {
		h.log.Warn("SYSTEM_RESET not supported on this target")
		return dmxproto.StatusError, nil
	}

	h.log.Info("system reset requested")
	h.dev.Disable()
	time.AfterFunc(resetFlushDelay, h.resetFn)
	return dmxproto.StatusOK, nil
}
