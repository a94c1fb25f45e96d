// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: 2022 mochi-co

package transport

import (
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/hexwire/mqttwire/packets"
)

func TestTCPListenerAcceptsAndDecodes(t *testing.T) {
	l := NewTCPListener("tcp-test", "127.0.0.1:0", packets.DialectV3, 0, zerolog.Nop())
	require.NoError(t, l.Listen())
	defer l.Close()

	received := make(chan packets.Message, 1)
	go l.Serve(func(c *Conn, value any) error {
		if msg, ok := value.(packets.Message); ok {
			received <- msg
		}
		return nil
	})

	addr := l.listener.Addr().String()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte{0xC0, 0x00})
	require.NoError(t, err)

	select {
	case msg := <-received:
		require.Equal(t, packets.Pingreq, msg.Fixed.Type)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for accepted connection to decode")
	}
}
