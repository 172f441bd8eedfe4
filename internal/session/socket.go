package session

import "palmietopia/pkg/protocol"

// Socket is the minimal send/close surface a transport must provide.
// internal/session never imports gorilla/websocket directly — the
// handlers package supplies a concrete Socket wrapping a
// *websocket.Conn, which keeps session dispatch testable with a fake.
type Socket interface {
	Send(msgType protocol.MessageType, payload interface{}) error
	Close() error
}
