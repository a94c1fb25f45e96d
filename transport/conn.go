// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: 2022 mochi-co

// Package transport wires a packets.MessageAssembler to real network
// connections. Two Listener implementations are provided, TCP and
// WebSocket, both feeding accepted connections' byte streams into a
// per-connection assembler and writing encoded frames back out. Neither
// listener, nor Conn, participates in any framing decision; they only
// pump bytes and dispatch whatever the assembler produces.
package transport

import (
	"net"

	"github.com/rs/zerolog"

	"github.com/hexwire/mqttwire/packets"
)

// readBufferSize is the chunk size read off the wire per Conn.pump
// iteration before handing the bytes to the assembler.
const readBufferSize = 4096

// Handler is called once for every value the assembler produces: a
// packets.Message on a clean decode, or a packets.InvalidMessage when
// the assembler gave up on the stream. Returning an error closes conn.
type Handler func(conn *Conn, value any) error

// Conn pairs one net.Conn with the packets.MessageAssembler decoding
// its inbound byte stream.
type Conn struct {
	id        string
	nc        net.Conn
	assembler *packets.MessageAssembler
	dialect   packets.Dialect
	log       zerolog.Logger
}

// NewConn wraps nc with an assembler for the given dialect.
func NewConn(id string, nc net.Conn, dialect packets.Dialect, maxBytesInMessage int, log zerolog.Logger) *Conn {
	return &Conn{
		id:        id,
		nc:        nc,
		assembler: packets.NewMessageAssembler(dialect, maxBytesInMessage),
		dialect:   dialect,
		log:       log.With().Str("conn", id).Logger(),
	}
}

// ID returns the connection's listener-assigned identifier.
func (c *Conn) ID() string {
	return c.id
}

// Send encodes msg for this connection's dialect and writes it to the
// underlying net.Conn.
func (c *Conn) Send(msg packets.Message) error {
	b, err := packets.EncodeToBytes(c.dialect, msg)
	if err != nil {
		return err
	}
	_, err = c.nc.Write(b)
	return err
}

// Close closes the underlying net.Conn.
func (c *Conn) Close() error {
	return c.nc.Close()
}

// pump reads off nc until it errors or the assembler reports a fatal
// decode (InvalidMessage), feeding every decoded value to handle.
func (c *Conn) pump(handle Handler) {
	defer c.nc.Close()

	buf := make([]byte, readBufferSize)
	for {
		n, err := c.nc.Read(buf)
		if n > 0 {
			c.assembler.Feed(buf[:n])
			for {
				value, ok := c.assembler.Next()
				if !ok {
					break
				}
				if inv, isInvalid := value.(packets.InvalidMessage); isInvalid {
					c.log.Debug().Err(inv.Cause).Msg("discarding connection after invalid message")
				}
				if herr := handle(c, value); herr != nil {
					c.log.Warn().Err(herr).Msg("handler closed connection")
					return
				}
				if c.assembler.Discarding() {
					return
				}
			}
		}
		if err != nil {
			c.log.Debug().Err(err).Msg("connection read ended")
			return
		}
	}
}
