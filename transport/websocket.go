// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: 2022 mochi-co

package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/hexwire/mqttwire/packets"
)

// errInvalidMessage is returned from wsConn.Read when a non-binary
// websocket frame arrives; MQTT over WebSocket only carries binary
// subprotocol frames.
var errInvalidMessage = errors.New("transport: websocket message type not binary")

// WebSocketListener establishes client connections via an HTTP server
// upgrading incoming requests to the "mqtt" websocket subprotocol.
type WebSocketListener struct {
	mu       sync.Mutex
	id       string
	address  string
	dialect  packets.Dialect
	maxBytes int
	log      zerolog.Logger

	server   *http.Server
	upgrader *websocket.Upgrader
	end      uint32
}

// NewWebSocketListener builds a listener bound to address once Listen is called.
func NewWebSocketListener(id, address string, dialect packets.Dialect, maxBytes int, log zerolog.Logger) *WebSocketListener {
	return &WebSocketListener{
		id:       id,
		address:  address,
		dialect:  dialect,
		maxBytes: maxBytes,
		log:      log.With().Str("listener", id).Logger(),
		upgrader: &websocket.Upgrader{
			Subprotocols: []string{"mqtt"},
			CheckOrigin:  func(r *http.Request) bool { return true },
		},
	}
}

// ID returns the listener's identifier.
func (l *WebSocketListener) ID() string {
	return l.id
}

// Listen does nothing; the HTTP server is built and its socket bound in
// Serve.
func (l *WebSocketListener) Listen() error {
	return nil
}

// Serve starts the HTTP server and upgrades every request to a
// websocket connection, dispatching each connection's decoded values
// to handle. It blocks until Close is called.
func (l *WebSocketListener) Serve(handle Handler) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		l.upgrade(w, r, handle)
	})

	l.mu.Lock()
	l.server = &http.Server{
		Addr:         l.address,
		Handler:      mux,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	l.mu.Unlock()

	if err := l.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.log.Warn().Err(err).Msg("websocket server stopped")
	}
}

func (l *WebSocketListener) upgrade(w http.ResponseWriter, r *http.Request, handle Handler) {
	c, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	conn := NewConn(c.RemoteAddr().String(), &wsConn{c}, l.dialect, l.maxBytes, l.log)
	conn.pump(handle)
}

// Close shuts down the HTTP server. Connections already upgraded to
// websocket are hijacked from the server and are not closed by this.
func (l *WebSocketListener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !atomic.CompareAndSwapUint32(&l.end, 0, 1) || l.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return l.server.Shutdown(ctx)
}

// wsConn adapts a *websocket.Conn to net.Conn so it can be fed into
// the same Conn pump as a plain TCP socket, requiring every message to
// be a binary frame.
type wsConn struct {
	c *websocket.Conn
}

func (w *wsConn) Read(p []byte) (int, error) {
	op, r, err := w.c.NextReader()
	if err != nil {
		return 0, err
	}
	if op != websocket.BinaryMessage {
		return 0, errInvalidMessage
	}

	var n int
	for {
		br, rerr := r.Read(p[n:])
		n += br
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				rerr = nil
			}
			return n, rerr
		}
	}
}

func (w *wsConn) Write(p []byte) (int, error) {
	if err := w.c.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *wsConn) Close() error                       { return w.c.Close() }
func (w *wsConn) LocalAddr() net.Addr                 { return w.c.LocalAddr() }
func (w *wsConn) RemoteAddr() net.Addr                { return w.c.RemoteAddr() }
func (w *wsConn) SetDeadline(t time.Time) error       { return w.c.UnderlyingConn().SetDeadline(t) }
func (w *wsConn) SetReadDeadline(t time.Time) error   { return w.c.UnderlyingConn().SetReadDeadline(t) }
func (w *wsConn) SetWriteDeadline(t time.Time) error  { return w.c.UnderlyingConn().SetWriteDeadline(t) }
