package session

import (
	"sync"

	"palmietopia/pkg/protocol"
)

// fakeSocket is the Socket test double used across this package's
// tests: it records every message sent to it instead of touching a
// real network connection.
type fakeSocket struct {
	mu       sync.Mutex
	sent     []sentMessage
	closed   bool
}

type sentMessage struct {
	Type    protocol.MessageType
	Payload interface{}
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{}
}

func (f *fakeSocket) Send(msgType protocol.MessageType, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{Type: msgType, Payload: payload})
	return nil
}

func (f *fakeSocket) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSocket) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentMessage, len(f.sent))
	copy(out, f.sent)
	return out
}
