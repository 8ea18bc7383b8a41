// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dmxgateway

import (
	"github.com/BurntSushi/toml"
)

// Config is the gateway daemon configuration.
type Config struct {
	Logger    LogConfig     // logging level and format
	Control   ControlConfig // command channel serial port
	DMX       DMXConfig     // DMX output and boot-time timing
	WebSocket WSConfig      // optional remote command listener
}

// LogConfig configures the daemon logger.
type LogConfig struct {
	Level string `toml:"log-level"`
}

// ControlConfig configures the local command channel.
type ControlConfig struct {
	Port string `toml:"port"` // serial device; empty disables the serial channel
	Baud int    `toml:"baud"`
}

// DMXConfig configures the DMX output.
type DMXConfig struct {
	Port         string `toml:"port"` // DMX UART device; empty selects the simulated output
	RefreshHz    uint16 `toml:"refresh_hz"`
	BreakUs      uint16 `toml:"break_us"`
	MabUs        uint16 `toml:"mab_us"`
	EnableOnBoot bool   `toml:"enable_on_boot"`
}

// WSConfig configures the WebSocket command listener.
type WSConfig struct {
	Listen   string `toml:"listen"` // listen address; empty disables the listener
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// DefaultConfig returns the configuration used when no file is given.
// Timing fields default to zero, which SetTiming treats as unchanged from
// the engine defaults.
func DefaultConfig() Config {
	return Config{
		Logger:  LogConfig{Level: "info"},
		Control: ControlConfig{Baud: 115200},
	}
}

// LoadConfig reads a TOML configuration file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
