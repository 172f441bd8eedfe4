package snapshot

import (
	"path/filepath"
	"testing"

	"palmietopia/internal/engine"
)

func testState(turn int) *engine.GameState {
	return &engine.GameState{
		GameID:            "game-1",
		CurrentTurn:       turn,
		Players:           []engine.Player{{ID: "p1", Name: "Alice", Color: engine.Red}},
		PlayerGold:        map[string]int{"p1": engine.StartingGold},
		PlayerTimesMs:     map[string]int64{"p1": engine.BaseTimeMs},
		EliminatedPlayers: map[string]bool{},
		Status:            engine.GameStatus{Phase: engine.InProgress},
	}
}

func TestLoadLatestReturnsNilWithoutError(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(filepath.Join(dir, "snapshots.db"))
	if err != nil {
		t.Fatalf("unexpected error opening store: %v", err)
	}
	defer store.Close()

	state, err := store.LoadLatest("no-such-game")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != nil {
		t.Errorf("expected nil state for a game with no snapshot, got %+v", state)
	}
}

func TestSaveSnapshotThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(filepath.Join(dir, "snapshots.db"))
	if err != nil {
		t.Fatalf("unexpected error opening store: %v", err)
	}
	defer store.Close()

	if err := store.SaveSnapshot("game-1", testState(3)); err != nil {
		t.Fatalf("unexpected error saving snapshot: %v", err)
	}

	loaded, err := store.LoadLatest("game-1")
	if err != nil {
		t.Fatalf("unexpected error loading snapshot: %v", err)
	}
	if loaded == nil || loaded.CurrentTurn != 3 {
		t.Fatalf("expected loaded snapshot at turn 3, got %+v", loaded)
	}
}

func TestSaveSnapshotOverwritesPreviousTurn(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(filepath.Join(dir, "snapshots.db"))
	if err != nil {
		t.Fatalf("unexpected error opening store: %v", err)
	}
	defer store.Close()

	store.SaveSnapshot("game-1", testState(1))
	store.SaveSnapshot("game-1", testState(2))

	loaded, err := store.LoadLatest("game-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.CurrentTurn != 2 {
		t.Errorf("expected the latest save to win, got turn %d", loaded.CurrentTurn)
	}

	ids, err := store.ListGameIDs()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 1 {
		t.Errorf("expected exactly one distinct game id, got %d", len(ids))
	}
}
