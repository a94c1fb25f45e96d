// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: 2022 mochi-co

package config

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/hexwire/mqttwire/packets"
)

var yamlBytes = []byte(`
listeners:
  - id: "tcp1"
    protocol: "tcp"
    address: ":1883"
  - id: "ws1"
    protocol: "websocket"
    address: ":8083"
max_bytes_in_message: 4096
default_dialect: "v3"
log_level: "debug"
`)

func TestFromBytesEmpty(t *testing.T) {
	c, err := FromBytes(nil)
	require.NoError(t, err)
	require.Equal(t, &Config{}, c)
}

func TestFromBytesPopulated(t *testing.T) {
	c, err := FromBytes(yamlBytes)
	require.NoError(t, err)
	require.Len(t, c.Listeners, 2)
	require.Equal(t, "tcp1", c.Listeners[0].ID)
	require.Equal(t, "websocket", c.Listeners[1].Protocol)
	require.Equal(t, 4096, c.MaxBytesInMessage)
}

func TestFromBytesInvalidYAML(t *testing.T) {
	_, err := FromBytes([]byte("not: [valid"))
	require.Error(t, err)
}

func TestConfigDialect(t *testing.T) {
	c := Config{DefaultDialect: "v3"}
	d, err := c.Dialect()
	require.NoError(t, err)
	require.Equal(t, packets.DialectV3, d)

	c = Config{}
	d, err = c.Dialect()
	require.NoError(t, err)
	require.Equal(t, packets.DialectV5, d)

	c = Config{DefaultDialect: "bogus"}
	_, err = c.Dialect()
	require.Error(t, err)
}

func TestConfigMaxBytes(t *testing.T) {
	require.Equal(t, packets.DefaultMaxBytesInMessage, Config{}.MaxBytes())
	require.Equal(t, 2048, Config{MaxBytesInMessage: 2048}.MaxBytes())
}

func TestConfigZerologLevel(t *testing.T) {
	lvl, err := Config{}.ZerologLevel()
	require.NoError(t, err)
	require.Equal(t, zerolog.InfoLevel, lvl)

	lvl, err = Config{LogLevel: "warn"}.ZerologLevel()
	require.NoError(t, err)
	require.Equal(t, zerolog.WarnLevel, lvl)

	_, err = Config{LogLevel: "not-a-level"}.ZerologLevel()
	require.Error(t, err)
}
