// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: 2022 mochi-co

// Package config parses the process-level wiring for a codec-backed
// listener process: where to bind, how large a packet the assembler
// will tolerate, which dialect new connections default to, and how
// verbosely to log. None of it is read by the packets package itself.
package config

import (
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/hexwire/mqttwire/packets"
)

// ListenerConfig describes one network listener to bring up.
type ListenerConfig struct {
	ID       string `yaml:"id"`
	Protocol string `yaml:"protocol"` // "tcp" or "websocket"
	Address  string `yaml:"address"`
}

// Config is the top-level shape of a process configuration document.
type Config struct {
	Listeners         []ListenerConfig `yaml:"listeners"`
	MaxBytesInMessage int              `yaml:"max_bytes_in_message"`
	DefaultDialect    string           `yaml:"default_dialect"`
	LogLevel          string           `yaml:"log_level"`
}

// Dialect resolves the configured default dialect string to a
// packets.Dialect, defaulting to DialectV5 when unset.
func (c Config) Dialect() (packets.Dialect, error) {
	switch c.DefaultDialect {
	case "", "v5", "mqtt5":
		return packets.DialectV5, nil
	case "v3", "v3.1.1", "mqtt311":
		return packets.DialectV3, nil
	default:
		return 0, fmt.Errorf("config: unknown default_dialect %q", c.DefaultDialect)
	}
}

// ZerologLevel resolves the configured log level string to a
// zerolog.Level, defaulting to zerolog.InfoLevel when unset.
func (c Config) ZerologLevel() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(c.LogLevel)
}

// MaxBytes resolves the configured assembler cap, falling back to
// packets.DefaultMaxBytesInMessage when unset.
func (c Config) MaxBytes() int {
	if c.MaxBytesInMessage <= 0 {
		return packets.DefaultMaxBytesInMessage
	}
	return c.MaxBytesInMessage
}

// FromBytes parses a YAML configuration document.
func FromBytes(b []byte) (*Config, error) {
	if len(b) == 0 {
		return &Config{}, nil
	}
	c := new(Config)
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return c, nil
}
