package session

import (
	"time"

	"palmietopia/internal/engine"
)

// LobbyStatus is the lifecycle stage of a pre-game lobby.
type LobbyStatus string

const (
	LobbyWaiting  LobbyStatus = "waiting"
	LobbyStarting LobbyStatus = "starting"
)

// LobbyPlayer is one seat in a lobby: a player id, display name, and
// the color assigned by join order from engine.ColorPalette.
type LobbyPlayer struct {
	ID    string
	Name  string
	Color engine.Color
}

// Lobby is a pre-game container: an id, a host, an ordered player
// roster, and a status. Colors are assigned by join order from the
// fixed palette rather than chosen freely, and MaxPlayers derives from
// the chosen map size rather than being passed in by the client.
type Lobby struct {
	ID         string
	HostID     string
	Players    []LobbyPlayer
	MapSize    engine.MapSize
	MaxPlayers int
	Status     LobbyStatus
	CreatedAt  time.Time
}

// NewLobby creates a lobby with host as its sole, first player.
func NewLobby(id, hostPlayerID, hostName string, mapSize engine.MapSize) *Lobby {
	return &Lobby{
		ID:         id,
		HostID:     hostPlayerID,
		Players:    []LobbyPlayer{{ID: hostPlayerID, Name: hostName, Color: engine.ColorPalette[0]}},
		MapSize:    mapSize,
		MaxPlayers: engine.MaxPlayersForSize(mapSize),
		Status:     LobbyWaiting,
		CreatedAt:  time.Now(),
	}
}

// AddPlayer appends playerID to the roster, assigning the next color
// in join order. Returns a LobbyError if the lobby is full or the name
// is already taken.
func (l *Lobby) AddPlayer(playerID, name string) error {
	if len(l.Players) >= l.MaxPlayers {
		return &LobbyError{Kind: LobbyFull}
	}
	for _, p := range l.Players {
		if p.Name == name {
			return &LobbyError{Kind: NameTaken}
		}
	}
	l.Players = append(l.Players, LobbyPlayer{
		ID:    playerID,
		Name:  name,
		Color: engine.ColorPalette[len(l.Players)],
	})
	return nil
}

// RemovePlayer drops playerID from the roster. If the host left, host
// role transfers to the next player by join order. Returns true if the
// lobby is now empty and should be destroyed.
func (l *Lobby) RemovePlayer(playerID string) (empty bool) {
	for i, p := range l.Players {
		if p.ID != playerID {
			continue
		}
		l.Players = append(l.Players[:i], l.Players[i+1:]...)
		break
	}
	if len(l.Players) == 0 {
		return true
	}
	if l.HostID == playerID {
		l.HostID = l.Players[0].ID
	}
	return false
}

// CanStart reports whether hostID may start the game: they must be the
// host, and at least 2 players must be seated.
func (l *Lobby) CanStart(hostID string) error {
	if l.HostID != hostID {
		return &LobbyError{Kind: NotHost}
	}
	if len(l.Players) < 2 {
		return &LobbyError{Kind: NotEnoughPlayers}
	}
	return nil
}

// toEnginePlayers converts the lobby roster, in join order, into the
// engine.Player slice that seeds a new GameState.
func (l *Lobby) toEnginePlayers() []engine.Player {
	out := make([]engine.Player, len(l.Players))
	for i, p := range l.Players {
		out[i] = engine.Player{ID: p.ID, Name: p.Name, Color: p.Color}
	}
	return out
}
