package handlers

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"palmietopia/pkg/config"
	"palmietopia/pkg/protocol"
)

// wsSocket implements session.Socket over a *websocket.Conn: a
// buffered sendQueue drained by a dedicated writePump, since
// gorilla/websocket forbids concurrent writers on one connection and
// Game.broadcast fans out from its own goroutine, separate from
// whatever called Send.
type wsSocket struct {
	conn      *websocket.Conn
	cfg       config.WebSocketConfig
	sendQueue chan []byte

	mu     sync.Mutex
	closed bool
}

func newWSSocket(conn *websocket.Conn, cfg config.WebSocketConfig) *wsSocket {
	return &wsSocket{
		conn:      conn,
		cfg:       cfg,
		sendQueue: make(chan []byte, 128),
	}
}

// Send encodes payload into an envelope and queues it for the write
// pump. It never blocks on a slow connection: a full queue reports an
// error to the caller instead of stalling a game's broadcast.
func (s *wsSocket) Send(msgType protocol.MessageType, payload interface{}) error {
	data, err := protocol.Encode(msgType, payload)
	if err != nil {
		return err
	}

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil
	}

	select {
	case s.sendQueue <- data:
		return nil
	default:
		return errors.New("handlers: send queue full")
	}
}

// Close stops the write pump and closes the underlying connection.
func (s *wsSocket) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.sendQueue)
	s.mu.Unlock()
	return s.conn.Close()
}

// writePump is the sole writer of s.conn: it drains sendQueue and
// sends periodic pings on the configured interval.
func (s *wsSocket) writePump() {
	interval := s.cfg.PingInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	writeTimeout := s.cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-s.sendQueue:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
