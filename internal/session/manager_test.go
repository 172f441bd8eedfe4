package session

import (
	"testing"

	"palmietopia/internal/engine"
)

func TestCreateLobbyImpliesJoin(t *testing.T) {
	m := NewManager(nil)
	sess := NewSession("sess-1", newFakeSocket())

	lobby, err := m.CreateLobby(sess, "Alice", engine.Medium)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.PlayerID == "" {
		t.Fatal("expected CreateLobby to assign the session a player id")
	}
	if lobby.HostID != sess.PlayerID {
		t.Errorf("expected created session to be host")
	}
	if sess.LobbyID() != lobby.ID {
		t.Errorf("expected session to be attached to the new lobby")
	}
}

func TestJoinLobbyUnknownIDFails(t *testing.T) {
	m := NewManager(nil)
	sess := NewSession("sess-1", newFakeSocket())
	if _, err := m.JoinLobby(sess, "no-such-lobby", "Bob"); err == nil {
		t.Fatal("expected a lookup error for an unknown lobby id")
	}
}

func TestLeaveLobbyDestroysEmptyLobby(t *testing.T) {
	m := NewManager(nil)
	host := NewSession("sess-host", newFakeSocket())
	lobby, err := m.CreateLobby(host, "Alice", engine.Medium)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := m.LeaveLobby(host); err != nil {
		t.Fatalf("unexpected error leaving lobby: %v", err)
	}
	if len(m.ListLobbies()) != 0 {
		t.Error("expected lobby to be destroyed once its only player leaves")
	}
	_ = lobby
}

func TestStartGameRequiresHostAndMinimumPlayers(t *testing.T) {
	m := NewManager(nil)
	host := NewSession("sess-host", newFakeSocket())
	if _, err := m.CreateLobby(host, "Alice", engine.Small); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := m.StartGame(host); err == nil {
		t.Fatal("expected an error starting a game with only one player seated")
	}

	guest := NewSession("sess-guest", newFakeSocket())
	lobbyID := host.LobbyID()
	if _, err := m.JoinLobby(guest, lobbyID, "Bob"); err != nil {
		t.Fatalf("unexpected error joining lobby: %v", err)
	}

	if _, err := m.StartGame(guest); err == nil {
		t.Fatal("expected an error when a non-host player tries to start")
	}

	game, err := m.StartGame(host)
	if err != nil {
		t.Fatalf("unexpected error starting game: %v", err)
	}
	if game.ID != lobbyID {
		t.Errorf("expected game id to reuse the lobby id, got %s", game.ID)
	}
	if len(m.ListLobbies()) != 0 {
		t.Error("expected the lobby to be removed once the game starts")
	}

	state := game.Snapshot()
	if len(state.Players) != 2 {
		t.Fatalf("expected 2 players seeded into the game, got %d", len(state.Players))
	}
	if len(state.Cities) != 2 || len(state.Units) != 2 {
		t.Errorf("expected one capitol and one starting unit per player, got %d cities, %d units",
			len(state.Cities), len(state.Units))
	}
}

func TestRejoinGameRestoresKnownPlayer(t *testing.T) {
	m := NewManager(nil)
	host := NewSession("sess-host", newFakeSocket())
	guest := NewSession("sess-guest", newFakeSocket())
	if _, err := m.CreateLobby(host, "Alice", engine.Small); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.JoinLobby(guest, host.LobbyID(), "Bob"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	game, err := m.StartGame(host)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reconnect := NewSession("sess-host-2", newFakeSocket())
	if _, err := m.RejoinGame(reconnect, game.ID, host.PlayerID); err != nil {
		t.Fatalf("unexpected error rejoining as a known player: %v", err)
	}

	if _, err := m.RejoinGame(reconnect, game.ID, "no-such-player"); err == nil {
		t.Fatal("expected rejoin to fail for an unknown player id")
	}
}

func TestSeedFromGameIDIsDeterministic(t *testing.T) {
	a := seedFromGameID("game-123")
	b := seedFromGameID("game-123")
	c := seedFromGameID("game-456")
	if a != b {
		t.Error("expected the same game id to always derive the same seed")
	}
	if a == c {
		t.Error("expected different game ids to derive different seeds (in practice)")
	}
}
