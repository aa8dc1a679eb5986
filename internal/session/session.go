// Package session bridges one WebSocket socket to the hub: readPump
// decodes inbound text frames and dispatches them, writePump serializes
// whatever the hub addresses to this connection, following the
// readPump/writePump/ping-ticker shape of other_examples' hub client.go.
package session

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/opencraftmc/chatrelay/internal/hub"
	"github.com/opencraftmc/chatrelay/internal/packet"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Session owns one socket's lifetime and implements hub.Sink. quit is
// closed exactly once, by readPump, to tell writePump to stop; send is
// never closed, since the hub goroutine writes to it for as long as the
// id remains in its connection table and must never hit a closed channel.
type Session struct {
	h    *hub.Hub
	conn *websocket.Conn
	send chan packet.ClientPacket
	quit chan struct{}
	id   hub.InternalId

	closed atomic.Bool
}

// Send enqueues p for delivery, dropping it (with a log) if the outbound
// buffer is full, per the sink's one-way, non-blocking-best-effort contract.
func (s *Session) Send(p packet.ClientPacket) {
	if s.closed.Load() {
		return
	}
	select {
	case s.send <- p:
	default:
		zap.S().Warnw("dropping outbound packet, send buffer full", "conn", s.id)
	}
}

// Serve upgrades r to a WebSocket, registers with h, and blocks for the
// lifetime of the connection. Call it from an HTTP handler goroutine.
func Serve(h *hub.Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Debugw("websocket upgrade failed", "err", err)
		return
	}

	s := &Session{h: h, conn: conn, send: make(chan packet.ClientPacket, sendBuffer), quit: make(chan struct{})}
	s.id = h.Connect(s)
	zap.S().Infow("connection opened", "conn", s.id, "remote", r.RemoteAddr)

	go s.writePump()
	s.readPump()
}

func (s *Session) readPump() {
	defer func() {
		s.closed.Store(true)
		s.h.Disconnect(s.id)
		close(s.quit)
		s.conn.Close()
		zap.S().Infow("connection closed", "conn", s.id)
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	// gorilla's default ping handler already replies with a matching pong,
	// so client pings need no handling here; pongs from the client are
	// consumed above and otherwise ignored.

	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		switch msgType {
		case websocket.TextMessage:
			p, err := packet.DecodeServerPacket(data)
			if err != nil {
				zap.S().Debugw("dropping undecodable frame", "conn", s.id, "err", err)
				continue
			}
			s.h.Dispatch(s.id, p)
		case websocket.BinaryMessage:
			zap.S().Warnw("rejecting binary frame", "conn", s.id)
		}
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case <-s.quit:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			s.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case p := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			data, err := packet.EncodeClientPacket(p)
			if err != nil {
				zap.S().Errorw("failed to encode outbound packet", "conn", s.id, "err", err)
				continue
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
