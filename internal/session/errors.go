package session

import "fmt"

// KindedError is satisfied by every rejection kind across layers —
// engine.RejectionError, LookupError and LobbyError alike — so the
// transport layer can translate any of them into a wire Error{message}
// without a type switch per package.
type KindedError interface {
	error
	ErrorKind() string
}

// LookupKind enumerates the Lookup bucket of the error taxonomy:
// a referenced lobby, game, or player does not exist.
type LookupKind string

const (
	NoSuchLobby  LookupKind = "no_such_lobby"
	NoSuchGame   LookupKind = "no_such_game"
	NoSuchPlayer LookupKind = "no_such_player"
)

var lookupMessages = map[LookupKind]string{
	NoSuchLobby:  "no such lobby",
	NoSuchGame:   "no such game",
	NoSuchPlayer: "no such player",
}

// LookupError reports that an id in an inbound message does not
// resolve to a live lobby, game, or player.
type LookupError struct {
	Kind LookupKind
}

func (e *LookupError) Error() string {
	if msg, ok := lookupMessages[e.Kind]; ok {
		return msg
	}
	return fmt.Sprintf("lookup failed: %s", e.Kind)
}

func (e *LookupError) ErrorKind() string { return string(e.Kind) }

// LobbyKind enumerates the Lobby bucket: a lobby-specific precondition
// failed before a game existed to delegate to the engine.
type LobbyKind string

const (
	LobbyFull        LobbyKind = "lobby_full"
	NotHost          LobbyKind = "not_host"
	NotEnoughPlayers LobbyKind = "not_enough_players"
	NameTaken        LobbyKind = "name_taken"
)

var lobbyMessages = map[LobbyKind]string{
	LobbyFull:        "lobby is full",
	NotHost:          "only the host can do that",
	NotEnoughPlayers: "not enough players to start",
	NameTaken:        "that name is already taken in this lobby",
}

// LobbyError reports a failed lobby precondition.
type LobbyError struct {
	Kind LobbyKind
}

func (e *LobbyError) Error() string {
	if msg, ok := lobbyMessages[e.Kind]; ok {
		return msg
	}
	return fmt.Sprintf("lobby rejected: %s", e.Kind)
}

func (e *LobbyError) ErrorKind() string { return string(e.Kind) }

// ProtocolKind enumerates the Protocol bucket: the frame itself could
// not be interpreted, independent of any lobby or game state.
type ProtocolKind string

const (
	MalformedMessage ProtocolKind = "malformed_message"
)

// ProtocolError reports a frame that failed to parse or dispatch.
type ProtocolError struct {
	Kind ProtocolKind
}

func (e *ProtocolError) Error() string {
	if e.Kind == MalformedMessage {
		return "malformed message"
	}
	return fmt.Sprintf("protocol error: %s", e.Kind)
}

func (e *ProtocolError) ErrorKind() string { return string(e.Kind) }
