// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/dmxgate/pkg/dmxengine"
	"github.com/Thermoquad/dmxgate/pkg/dmxgateway"
)

var simulateLogLevel string

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the cooperative gateway variant with a simulated DMX output",
	Long: `Run the gateway the way the bare-metal build does: one superloop
alternating between the per-byte command parser and the non-blocking
DMX transmit state machine, with received bytes staged through a ring
buffer.

The command channel is the serial port given with --port. DMX frames go
to a simulated output that drains at real line rate, so status queries
report realistic frame counts and FPS.

Mostly useful for exercising hosts and scripts against the cooperative
engine without target hardware.`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&simulateLogLevel, "log-level", "info", "Log level (debug shows heartbeats)")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if portName == "" {
		return fmt.Errorf("--port is required (the command channel serial port)")
	}

	log, err := newServeLogger(simulateLogLevel)
	if err != nil {
		return err
	}

	conn, err := OpenSerialConnection(portName, baudRate)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.WithField("port", portName).Info("command channel opened")

	dev := dmxengine.NewDevice()
	tx := dmxengine.NewPolledTransmitter(dev, dmxengine.NewPolledDiscardPort())

	handler := dmxgateway.NewHandler(dev, log)

	ring := &dmxgateway.RingBuffer{}
	loop := dmxgateway.NewSuperloop(ring, handler, tx, func(pkt []byte) error {
		_, err := conn.Write(pkt)
		return err
	}, log)

	stop := make(chan struct{})
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		close(stop)
	}()

	// Receive path: one goroutine feeds the ring, standing in for the
	// UART interrupt handler.
	go func() {
		buf := make([]byte, 64)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				select {
				case <-stop:
				default:
					log.WithError(err).Error("command channel read failed")
				}
				return
			}
			for _, b := range buf[:n] {
				if !ring.Put(b) {
					log.Warn("receive ring full, byte dropped")
				}
			}
		}
	}()

	loop.Run(stop)
	log.Info("shutdown complete")
	return nil
}
