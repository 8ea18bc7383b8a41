// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/dmxgate/pkg/dmxengine"
	"github.com/Thermoquad/dmxgate/pkg/dmxgateway"
)

var (
	serveConfigPath string
	serveFakeDMX    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gateway daemon",
	Long: `Run the gateway: the DMX512 transmission engine plus the command
channel responder.

The DMX output UART, command serial port, boot-time timing, and the
optional WebSocket listener come from a TOML configuration file. With
--fake-dmx (or no DMX port configured) frames go to a simulated output
that paces itself like real hardware, which is useful for development
without a DMX interface.

The --port flag names the command channel here, not the DMX output.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to TOML configuration file")
	serveCmd.Flags().BoolVar(&serveFakeDMX, "fake-dmx", false, "Use a simulated DMX output")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := dmxgateway.DefaultConfig()
	if serveConfigPath != "" {
		var err error
		cfg, err = dmxgateway.LoadConfig(serveConfigPath)
		if err != nil {
			return fmt.Errorf("configuration file: %w", err)
		}
	}

	// Connection flags override the config's command channel
	if portName != "" {
		cfg.Control.Port = portName
		cfg.Control.Baud = baudRate
	}

	log, err := newServeLogger(cfg.Logger.Level)
	if err != nil {
		return err
	}

	dev := dmxengine.NewDevice()
	if err := dev.SetTiming(dmxengine.Timing{
		RefreshHz: cfg.DMX.RefreshHz,
		BreakUs:   cfg.DMX.BreakUs,
		MabUs:     cfg.DMX.MabUs,
	}); err != nil {
		return fmt.Errorf("configured timing: %w", err)
	}

	var port dmxengine.Port
	if serveFakeDMX || cfg.DMX.Port == "" {
		log.Info("using simulated DMX output")
		port = dmxengine.DiscardPort{}
	} else {
		sp, err := dmxengine.OpenSerialPort(cfg.DMX.Port)
		if err != nil {
			return fmt.Errorf("DMX output %s: %w", cfg.DMX.Port, err)
		}
		defer sp.Close()
		log.WithField("port", cfg.DMX.Port).Info("DMX output opened")
		port = sp
	}

	tx := dmxengine.NewTransmitter(dev, port)
	tx.Start()
	defer tx.Stop()

	if cfg.DMX.EnableOnBoot {
		dev.Enable()
		log.Info("transmission enabled at boot")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	handler := dmxgateway.NewHandler(dev, log)
	// A host-requested reset is a clean daemon restart under the
	// supervisor, so the hook just tears the context down.
	handler.SetResetHook(cancel)

	if cfg.WebSocket.Listen != "" {
		listener := dmxgateway.NewWSListener(handler, log.WithField("channel", "ws"),
			cfg.WebSocket.Username, cfg.WebSocket.Password)
		go func() {
			if err := listener.Serve(ctx, cfg.WebSocket.Listen); err != nil {
				log.WithError(err).Error("websocket listener failed")
				cancel()
			}
		}()
	}

	if cfg.Control.Port == "" {
		if cfg.WebSocket.Listen == "" {
			return fmt.Errorf("no command channel: set --port or a [websocket] listen address")
		}
		<-ctx.Done()
		log.Info("shutdown complete")
		return nil
	}

	conn, err := OpenSerialConnection(cfg.Control.Port, cfg.Control.Baud)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.WithFields(logrus.Fields{
		"port": cfg.Control.Port,
		"baud": cfg.Control.Baud,
	}).Info("command channel opened")

	srv := dmxgateway.NewServer(handler, conn, log.WithField("channel", "serial"))
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}

	log.Info("shutdown complete")
	return nil
}

// newServeLogger builds the daemon logger at the configured level.
func newServeLogger(level string) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.Formatter = &logrus.TextFormatter{
		TimestampFormat:  "2006-01-02 15:04:05.0000",
		FullTimestamp:    true,
		QuoteEmptyFields: true,
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	log.SetLevel(lvl)
	return log, nil
}
