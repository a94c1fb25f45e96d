// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: 2022 mochi-co

package transport

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/hexwire/mqttwire/packets"
)

func TestConnPumpDecodesMessages(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	conn := NewConn("test", server, packets.DialectV3, 0, zerolog.Nop())

	received := make(chan any, 1)
	go conn.pump(func(c *Conn, value any) error {
		received <- value
		return nil
	})

	pingreq := []byte{0xC0, 0x00}
	go client.Write(pingreq)

	select {
	case value := <-received:
		msg, ok := value.(packets.Message)
		require.True(t, ok)
		require.Equal(t, packets.Pingreq, msg.Fixed.Type)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for decoded message")
	}
}

func TestConnPumpStopsOnInvalidMessage(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	conn := NewConn("test", server, packets.DialectV3, 0, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		conn.pump(func(c *Conn, value any) error { return nil })
		close(done)
	}()

	go client.Write([]byte{0xFF, 0x00})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pump did not stop after invalid message")
	}
}

func TestConnSendEncodesForDialect(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	defer client.Close()

	conn := NewConn("test", server, packets.DialectV3, 0, zerolog.Nop())

	go func() {
		err := conn.Send(packets.Message{Fixed: packets.FixedHeader{Type: packets.Pingresp}})
		require.NoError(t, err)
	}()

	buf := make([]byte, 2)
	_, err := io.ReadFull(client, buf)
	require.NoError(t, err)
	require.Equal(t, []byte{0xD0, 0x00}, buf)
}
