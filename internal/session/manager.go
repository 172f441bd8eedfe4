// Package session owns the set of live lobbies and games, routing
// inbound commands from sockets to the right one and broadcasting
// outbound messages.
package session

import (
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"

	"palmietopia/internal/engine"
	"palmietopia/internal/mapgen"
	"palmietopia/pkg/protocol"
)

// Manager is the process-wide registry of lobbies and games, treating
// them as two states of one registry keyed by the same id space rather
// than two independent ones. Lobby operations are guarded by a single
// sync.RWMutex (low churn, common reads for listing); each Game is its
// own single-writer goroutine once started, so a slow game never
// blocks another.
type Manager struct {
	mu      sync.RWMutex
	lobbies map[string]*Lobby
	games   map[string]*Game

	sink SnapshotSink
}

// NewManager returns an empty registry. sink may be nil to disable
// snapshotting entirely.
func NewManager(sink SnapshotSink) *Manager {
	return &Manager{
		lobbies: make(map[string]*Lobby),
		games:   make(map[string]*Game),
		sink:    sink,
	}
}

// CreateLobby creates a lobby hosted by a fresh player id and
// subscribes sess to it: creating a lobby always implies joining it.
func (m *Manager) CreateLobby(sess *Session, playerName string, mapSize engine.MapSize) (*Lobby, error) {
	playerID := uuid.New().String()
	lobbyID := uuid.New().String()

	m.mu.Lock()
	lobby := NewLobby(lobbyID, playerID, playerName, mapSize)
	m.lobbies[lobbyID] = lobby
	m.mu.Unlock()

	sess.PlayerID = playerID
	sess.PlayerName = playerName
	sess.AttachLobby(lobbyID)
	return lobby, nil
}

// JoinLobby adds sess as a new player in an existing lobby.
func (m *Manager) JoinLobby(sess *Session, lobbyID, playerName string) (*Lobby, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lobby, ok := m.lobbies[lobbyID]
	if !ok {
		return nil, &LookupError{Kind: NoSuchLobby}
	}
	playerID := uuid.New().String()
	if err := lobby.AddPlayer(playerID, playerName); err != nil {
		return nil, err
	}

	sess.PlayerID = playerID
	sess.PlayerName = playerName
	sess.AttachLobby(lobbyID)
	return lobby, nil
}

// LeaveLobby removes sess's player from its current lobby. If the
// lobby is now empty it is destroyed.
func (m *Manager) LeaveLobby(sess *Session) (*Lobby, error) {
	lobbyID := sess.LobbyID()
	m.mu.Lock()
	defer m.mu.Unlock()

	lobby, ok := m.lobbies[lobbyID]
	if !ok {
		return nil, &LookupError{Kind: NoSuchLobby}
	}
	if lobby.RemovePlayer(sess.PlayerID) {
		delete(m.lobbies, lobbyID)
		return nil, nil
	}
	return lobby, nil
}

// ListLobbies returns every lobby still in the Waiting state.
func (m *Manager) ListLobbies() []*Lobby {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Lobby, 0, len(m.lobbies))
	for _, l := range m.lobbies {
		out = append(out, l)
	}
	return out
}

// StartGame promotes a lobby to a running game: it generates the map,
// constructs the initial GameState, removes the lobby, and installs a
// Game keyed by the same id. sess's player must be host.
func (m *Manager) StartGame(sess *Session) (*Game, error) {
	lobbyID := sess.LobbyID()

	m.mu.Lock()
	lobby, ok := m.lobbies[lobbyID]
	if !ok {
		m.mu.Unlock()
		return nil, &LookupError{Kind: NoSuchLobby}
	}
	if err := lobby.CanStart(sess.PlayerID); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	delete(m.lobbies, lobbyID)
	m.mu.Unlock()

	state, err := newGameState(lobbyID, lobby)
	if err != nil {
		return nil, err
	}

	game := NewGame(lobbyID, state, m.sink)
	m.mu.Lock()
	m.games[lobbyID] = game
	m.mu.Unlock()

	game.Subscribe(sess)
	return game, nil
}

// RejoinGame reattaches sess to an already-running game by player id:
// disconnects never eliminate a player, so a fresh socket simply
// resumes their seat.
func (m *Manager) RejoinGame(sess *Session, gameID, playerID string) (*Game, error) {
	m.mu.RLock()
	game, ok := m.games[gameID]
	m.mu.RUnlock()
	if !ok {
		return nil, &LookupError{Kind: NoSuchGame}
	}

	state := game.Snapshot()
	found := false
	for _, p := range state.Players {
		if p.ID == playerID {
			found = true
			break
		}
	}
	if !found {
		return nil, &LookupError{Kind: NoSuchPlayer}
	}

	sess.PlayerID = playerID
	game.Subscribe(sess)
	return game, nil
}

// Game looks up a running game by id without subscribing anything —
// used by handlers to route MoveUnit/AttackUnit/FortifyUnit/BuyUnit/EndTurn.
func (m *Manager) Game(gameID string) (*Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	game, ok := m.games[gameID]
	if !ok {
		return nil, &LookupError{Kind: NoSuchGame}
	}
	return game, nil
}

// Disconnect detaches sess from whatever lobby or game it belongs to.
// A lobby disconnect removes the seat outright — only a running game
// protects a player's seat across disconnects; a game disconnect only
// drops the socket.
func (m *Manager) Disconnect(sess *Session) {
	if gameID := sess.GameID(); gameID != "" {
		m.mu.RLock()
		game, ok := m.games[gameID]
		m.mu.RUnlock()
		if ok {
			game.Unsubscribe(sess.PlayerID)
		}
		return
	}
	if sess.LobbyID() != "" {
		m.LeaveLobby(sess)
	}
}

// ToView renders a Lobby for the wire.
func ToView(l *Lobby) protocol.LobbyView {
	players := make([]protocol.LobbyPlayer, len(l.Players))
	for i, p := range l.Players {
		players[i] = protocol.LobbyPlayer{ID: p.ID, Name: p.Name, Color: p.Color}
	}
	return protocol.LobbyView{
		ID:         l.ID,
		HostID:     l.HostID,
		Players:    players,
		MapSize:    l.MapSize,
		MaxPlayers: l.MaxPlayers,
		Status:     string(l.Status),
	}
}

// ToGameView renders a GameState snapshot for the wire. connected
// reports which player ids currently have a subscribed socket.
func ToGameView(state *engine.GameState, connected map[string]bool) protocol.GameView {
	players := make([]protocol.GamePlayerView, len(state.Players))
	for i, p := range state.Players {
		players[i] = protocol.GamePlayerView{Player: p, Connected: connected[p.ID]}
	}
	return protocol.GameView{
		GameID:        state.GameID,
		Map:           state.Map,
		Players:       players,
		PlayerGold:    state.PlayerGold,
		PlayerTimesMs: state.PlayerTimesMs,
		Cities:        state.Cities,
		Units:         state.Units,
		CurrentTurn:   state.CurrentTurn,
		BaseTimeMs:    state.BaseTimeMs,
		IncrementMs:   state.IncrementMs,
	}
}

// ConnectedPlayerIDs reports which of a game's subscribers currently
// hold a live socket.
func (g *Game) ConnectedPlayerIDs() map[string]bool {
	g.lock()
	defer g.unlock()
	out := make(map[string]bool, len(g.subscribers))
	for id := range g.subscribers {
		out[id] = true
	}
	return out
}

// seedFromGameID derives mapgen's seed deterministically from the
// game id, so the server and any replaying client reconstruct the
// identical map without exchanging the seed out of band.
func seedFromGameID(gameID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(gameID))
	return int64(h.Sum64())
}

func newGameState(gameID string, lobby *Lobby) (*engine.GameState, error) {
	players := lobby.toEnginePlayers()
	seed := seedFromGameID(gameID)
	gameMap, starts, err := mapgen.Generate(lobby.MapSize, len(players), seed)
	if err != nil {
		return nil, fmt.Errorf("session: generate map: %w", err)
	}
	if len(starts) != len(players) {
		return nil, fmt.Errorf("session: mapgen returned %d starting positions for %d players", len(starts), len(players))
	}

	now := time.Now().UnixMilli()
	state := &engine.GameState{
		GameID:            gameID,
		Seed:              seed,
		Map:               gameMap,
		Players:           players,
		PlayerGold:        make(map[string]int, len(players)),
		PlayerTimesMs:     make(map[string]int64, len(players)),
		EliminatedPlayers: make(map[string]bool),
		CurrentTurn:       0,
		TurnStartedAt:     now,
		BaseTimeMs:        engine.BaseTimeMs,
		IncrementMs:       engine.IncrementMs,
		Status:            engine.GameStatus{Phase: engine.InProgress},
	}

	for i, p := range players {
		state.PlayerGold[p.ID] = engine.StartingGold
		state.PlayerTimesMs[p.ID] = engine.BaseTimeMs

		start := starts[i]
		cityID := fmt.Sprintf("city-%s-%d", gameID, i)
		state.Cities = append(state.Cities, engine.City{
			ID:        cityID,
			OwnerID:   p.ID,
			Q:         start.CapitolHex.Q,
			R:         start.CapitolHex.R,
			Name:      fmt.Sprintf("%s's Capitol", p.Name),
			IsCapitol: true,
		})

		state.UnitSeq++
		unitID := fmt.Sprintf("unit-%s-%d", gameID, state.UnitSeq)
		state.Units = append(state.Units, engine.Unit{
			ID:                unitID,
			OwnerID:           p.ID,
			Q:                 start.UnitHex.Q,
			R:                 start.UnitHex.R,
			Kind:              engine.Conscript,
			HP:                engine.Stats[engine.Conscript].HP,
			MaxHP:             engine.Stats[engine.Conscript].HP,
			MovementRemaining: engine.Stats[engine.Conscript].Move,
		})
	}

	return state, nil
}
