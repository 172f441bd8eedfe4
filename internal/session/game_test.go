package session

import (
	"testing"
	"time"

	"palmietopia/internal/engine"
)

func testGameState() *engine.GameState {
	return &engine.GameState{
		GameID:            "game-1",
		Map:               engine.GameMap{Radius: 2, Tiles: []engine.Tile{{Q: 0, R: 0, Terrain: engine.Grassland}}},
		Players:           []engine.Player{{ID: "p1", Name: "Alice", Color: engine.Red}, {ID: "p2", Name: "Bob", Color: engine.Blue}},
		PlayerGold:        map[string]int{"p1": engine.StartingGold, "p2": engine.StartingGold},
		PlayerTimesMs:     map[string]int64{"p1": 5_000, "p2": 5_000},
		EliminatedPlayers: map[string]bool{},
		BaseTimeMs:        engine.BaseTimeMs,
		IncrementMs:       engine.IncrementMs,
		TurnStartedAt:     time.Now().UnixMilli(),
		Status:            engine.GameStatus{Phase: engine.InProgress},
	}
}

func waitFor(t *testing.T, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func TestGameEnqueueAppliesCommandAndBroadcasts(t *testing.T) {
	g := NewGame("game-1", testGameState(), nil)

	sockP1 := newFakeSocket()
	sockP2 := newFakeSocket()
	g.Subscribe(&Session{PlayerID: "p1", socket: sockP1})
	g.Subscribe(&Session{PlayerID: "p2", socket: sockP2})

	if ok := g.Enqueue("p1", engine.EndTurn{PlayerID: "p1"}, time.Now().UnixMilli()); !ok {
		t.Fatal("expected Enqueue to accept the command")
	}

	waitFor(t, func() bool {
		return g.Snapshot().CurrentTurn == 1
	})

	waitFor(t, func() bool { return len(sockP1.messages()) > 0 })
	waitFor(t, func() bool { return len(sockP2.messages()) > 0 })
}

func TestGameRejectsOutOfTurnCommandToOriginatorOnly(t *testing.T) {
	g := NewGame("game-1", testGameState(), nil)

	sockP1 := newFakeSocket()
	sockP2 := newFakeSocket()
	g.Subscribe(&Session{PlayerID: "p1", socket: sockP1})
	g.Subscribe(&Session{PlayerID: "p2", socket: sockP2})

	// p2 acts out of turn; the game is seeded so p1 (index 0) is active.
	g.Enqueue("p2", engine.EndTurn{PlayerID: "p2"}, time.Now().UnixMilli())

	waitFor(t, func() bool { return len(sockP2.messages()) > 0 })
	if len(sockP1.messages()) != 0 {
		t.Error("expected the rejection to reach only the originating player")
	}
	if g.Snapshot().CurrentTurn != 0 {
		t.Error("expected a rejected command to leave state untouched")
	}
}

func TestGameSnapshotDoesNotRaceRun(t *testing.T) {
	g := NewGame("game-1", testGameState(), nil)
	for i := 0; i < 50; i++ {
		g.Enqueue("p1", engine.EndTurn{PlayerID: "p1"}, time.Now().UnixMilli())
		if s := g.Snapshot(); s == nil {
			t.Fatal("expected a non-nil snapshot while the game is running")
		}
	}
}

func TestUnsubscribeStopsFutureSends(t *testing.T) {
	g := NewGame("game-1", testGameState(), nil)
	sock := newFakeSocket()
	sess := &Session{PlayerID: "p1", socket: sock}
	g.Subscribe(sess)
	g.Unsubscribe("p1")

	g.Enqueue("p2", engine.EndTurn{PlayerID: "p1"}, time.Now().UnixMilli())
	time.Sleep(20 * time.Millisecond)
	if len(sock.messages()) != 0 {
		t.Error("expected no messages after unsubscribing")
	}
}
