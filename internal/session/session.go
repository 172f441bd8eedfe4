package session

import (
	"sync"
	"time"

	"palmietopia/pkg/protocol"
)

// Session represents one connected client: a stable id, the player it
// has authenticated as once it joins a lobby or rejoins a game, and a
// Socket to push server messages through. It tracks at most one lobby
// or game at a time — a client is never subscribed to more than one.
type Session struct {
	ID          string
	PlayerID    string
	PlayerName  string
	ConnectedAt time.Time
	LastActive  time.Time

	mu       sync.Mutex
	socket   Socket
	lobbyID  string
	gameID   string
}

// NewSession wraps a transport-level Socket in a session identified by id.
func NewSession(id string, socket Socket) *Session {
	now := time.Now()
	return &Session{
		ID:          id,
		ConnectedAt: now,
		LastActive:  now,
		socket:      socket,
	}
}

// Touch records activity, for idle-timeout bookkeeping at the transport layer.
func (s *Session) Touch() {
	s.mu.Lock()
	s.LastActive = time.Now()
	s.mu.Unlock()
}

// AttachLobby records which lobby this session is currently subscribed to.
func (s *Session) AttachLobby(lobbyID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lobbyID = lobbyID
	s.gameID = ""
}

// AttachGame records which game this session is currently subscribed
// to, replacing any lobby subscription — a session moves from lobby to
// game exactly once, when the game starts or it rejoins.
func (s *Session) AttachGame(gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gameID = gameID
	s.lobbyID = ""
}

// LobbyID returns the lobby this session currently belongs to, if any.
func (s *Session) LobbyID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lobbyID
}

// GameID returns the game this session currently belongs to, if any.
func (s *Session) GameID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameID
}

// SendMessage pushes a server message to this session's socket. It is
// a no-op if the socket has already been closed.
func (s *Session) SendMessage(msgType protocol.MessageType, payload interface{}) error {
	s.mu.Lock()
	socket := s.socket
	s.mu.Unlock()
	if socket == nil {
		return nil
	}
	return socket.Send(msgType, payload)
}

// Close closes the underlying socket.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.socket == nil {
		return nil
	}
	err := s.socket.Close()
	s.socket = nil
	return err
}
