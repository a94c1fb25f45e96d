// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: 2022 mochi-co

package transport

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/hexwire/mqttwire/packets"
)

// TCPListener establishes client connections on plain TCP.
type TCPListener struct {
	mu       sync.Mutex
	id       string
	address  string
	dialect  packets.Dialect
	maxBytes int
	log      zerolog.Logger

	listener net.Listener
	end      uint32
}

// NewTCPListener builds a listener bound to address once Listen is called.
func NewTCPListener(id, address string, dialect packets.Dialect, maxBytes int, log zerolog.Logger) *TCPListener {
	return &TCPListener{
		id:       id,
		address:  address,
		dialect:  dialect,
		maxBytes: maxBytes,
		log:      log.With().Str("listener", id).Logger(),
	}
}

// ID returns the listener's identifier.
func (l *TCPListener) ID() string {
	return l.id
}

// Listen binds the listening socket.
func (l *TCPListener) Listen() error {
	ln, err := net.Listen("tcp", l.address)
	if err != nil {
		return err
	}
	l.listener = ln
	return nil
}

// Serve accepts connections until Close is called, dispatching each
// accepted connection's decoded values to handle.
func (l *TCPListener) Serve(handle Handler) {
	for {
		if atomic.LoadUint32(&l.end) == 1 {
			return
		}

		nc, err := l.listener.Accept()
		if err != nil {
			if atomic.LoadUint32(&l.end) == 0 {
				l.log.Warn().Err(err).Msg("accept failed")
			}
			return
		}

		conn := NewConn(nc.RemoteAddr().String(), nc, l.dialect, l.maxBytes, l.log)
		go conn.pump(handle)
	}
}

// Close stops accepting connections. Already-accepted connections are
// unaffected; closing them is the caller's responsibility via handle.
func (l *TCPListener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !atomic.CompareAndSwapUint32(&l.end, 0, 1) {
		return nil
	}
	if l.listener != nil {
		return l.listener.Close()
	}
	return nil
}
