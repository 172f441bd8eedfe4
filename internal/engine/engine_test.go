package engine

import (
	"encoding/json"
	"testing"
)

func baseState(t *testing.T) *GameState {
	t.Helper()
	radius := Medium.Radius()
	tiles := make([]Tile, 0)
	for q := -radius; q <= radius; q++ {
		for r := -radius; r <= radius; r++ {
			if -q-r < -radius || -q-r > radius {
				continue
			}
			tiles = append(tiles, Tile{Q: q, R: r, Terrain: Grassland})
		}
	}
	// carve one mountain at (1,0) for the movement-cost scenario.
	for i, tl := range tiles {
		if tl.Q == 1 && tl.R == 0 {
			tiles[i].Terrain = Mountain
		}
	}

	s := &GameState{
		GameID: "game-1",
		Map:    GameMap{Radius: radius, Tiles: tiles},
		Players: []Player{
			{ID: "p1", Name: "Alice", Color: Red},
			{ID: "p2", Name: "Bob", Color: Blue},
		},
		PlayerGold:        map[string]int{"p1": StartingGold, "p2": StartingGold},
		PlayerTimesMs:     map[string]int64{"p1": BaseTimeMs, "p2": BaseTimeMs},
		EliminatedPlayers: map[string]bool{},
		BaseTimeMs:        BaseTimeMs,
		IncrementMs:       IncrementMs,
		Status:            GameStatus{Phase: InProgress},
	}
	return s
}

func TestMovementCostScenario(t *testing.T) {
	s := baseState(t)
	s.Units = []Unit{{ID: "u1", OwnerID: "p1", Q: 0, R: 0, Kind: Conscript, HP: 50, MaxHP: 50, MovementRemaining: 2}}

	next, deltas, err := Apply(s, MoveUnit{PlayerID: "p1", UnitID: "u1", ToQ: 1, ToR: 0}, 0)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	moved := deltas[0].(UnitMovedDelta)
	if moved.MovementRemaining != 0 {
		t.Errorf("expected movement_remaining=0, got %d", moved.MovementRemaining)
	}
	unit, _, _ := findUnit(next.Units, "u1")
	if unit.Q != 1 || unit.R != 0 {
		t.Errorf("expected unit at (1,0), got (%d,%d)", unit.Q, unit.R)
	}

	_, _, err = Apply(next, MoveUnit{PlayerID: "p1", UnitID: "u1", ToQ: 2, ToR: 0}, 0)
	kind, ok := AsRejection(err)
	if !ok || kind != InsufficientMovement {
		t.Errorf("expected InsufficientMovement, got %v", err)
	}
}

func TestGarrisonedCombatScenario(t *testing.T) {
	s := baseState(t)
	s.Cities = []City{{ID: "c1", OwnerID: "p2", Q: 1, R: 0, Name: "Defender City", IsCapitol: false}}
	s.Units = []Unit{
		{ID: "atk", OwnerID: "p1", Q: 0, R: 0, Kind: Conscript, HP: 50, MaxHP: 50, MovementRemaining: 2},
		{ID: "def", OwnerID: "p2", Q: 1, R: 0, Kind: Conscript, HP: 50, MaxHP: 50, MovementRemaining: 2},
	}

	_, deltas, err := Apply(s, AttackUnit{PlayerID: "p1", AttackerID: "atk", DefenderID: "def"}, 0)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	result := deltas[0].(CombatResultDelta)
	if result.DamageToDefender != 14 {
		t.Errorf("expected damage to defender 14, got %d", result.DamageToDefender)
	}
	if result.DamageToAttacker != 8 {
		t.Errorf("expected counter-damage 8, got %d", result.DamageToAttacker)
	}
	if result.AttackerHP != 42 || result.DefenderHP != 36 {
		t.Errorf("expected hp 42/36, got %d/%d", result.AttackerHP, result.DefenderHP)
	}
	if result.AttackerDied || result.DefenderDied {
		t.Errorf("expected both units alive")
	}
}

func TestRangedNoCounterScenario(t *testing.T) {
	s := baseState(t)
	s.Units = []Unit{
		{ID: "atk", OwnerID: "p1", Q: 0, R: 0, Kind: Bowman, HP: 40, MaxHP: 40, MovementRemaining: 2},
		{ID: "def", OwnerID: "p2", Q: 2, R: 0, Kind: Conscript, HP: 50, MaxHP: 50, MovementRemaining: 2},
	}

	next, deltas, err := Apply(s, AttackUnit{PlayerID: "p1", AttackerID: "atk", DefenderID: "def"}, 0)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	result := deltas[0].(CombatResultDelta)
	if result.DamageToDefender != 14 {
		t.Errorf("expected damage to defender 14, got %d", result.DamageToDefender)
	}
	if result.DamageToAttacker != 0 {
		t.Errorf("expected no counter-damage, got %d", result.DamageToAttacker)
	}
	atk, _, _ := findUnit(next.Units, "atk")
	if atk.MovementRemaining != 0 {
		t.Errorf("expected attacker movement_remaining=0, got %d", atk.MovementRemaining)
	}
}

func TestCaptureOnKillScenario(t *testing.T) {
	s := baseState(t)
	s.Cities = []City{
		{ID: "capitol-1", OwnerID: "p1", Q: -1, R: 0, Name: "Alice's Capitol", IsCapitol: true},
		{ID: "capitol-2", OwnerID: "p2", Q: 1, R: 0, Name: "Bob's Capitol", IsCapitol: true},
	}
	s.Units = []Unit{
		{ID: "atk", OwnerID: "p1", Q: 0, R: 0, Kind: Knight, HP: 50, MaxHP: 50, MovementRemaining: 3},
		{ID: "def", OwnerID: "p2", Q: 1, R: 0, Kind: Conscript, HP: 5, MaxHP: 50, MovementRemaining: 2},
	}

	next, deltas, err := Apply(s, AttackUnit{PlayerID: "p1", AttackerID: "atk", DefenderID: "def"}, 0)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(deltas) < 3 {
		t.Fatalf("expected at least CombatResult, CitiesCaptured, PlayerEliminated deltas, got %d", len(deltas))
	}
	result, ok := deltas[0].(CombatResultDelta)
	if !ok || !result.DefenderDied {
		t.Fatalf("expected defender to die")
	}
	if result.AttackerNewQ == nil || *result.AttackerNewQ != 1 || result.AttackerNewR == nil || *result.AttackerNewR != 0 {
		t.Errorf("expected attacker to relocate to (1,0)")
	}
	captured, ok := deltas[1].(CitiesCapturedDelta)
	if !ok {
		t.Fatalf("expected CitiesCaptured delta, got %T", deltas[1])
	}
	city, _, _ := findCity(captured.Cities, "capitol-2")
	if city.OwnerID != "p1" {
		t.Errorf("expected capitol owned by p1, got %s", city.OwnerID)
	}
	elim, ok := deltas[2].(PlayerEliminatedDelta)
	if !ok || elim.PlayerID != "p2" || elim.ConquererID != "p1" {
		t.Fatalf("expected PlayerEliminated{p2, p1}, got %+v", deltas[2])
	}
	if next.Status.Phase != Victory || next.Status.WinnerID != "p1" {
		t.Errorf("expected Victory{p1}, got %+v", next.Status)
	}
	if err := CheckInvariants(next); err != nil {
		t.Errorf("invariant violated: %v", err)
	}
}

func TestTimerIncrementScenario(t *testing.T) {
	s := baseState(t)
	s.Units = []Unit{{ID: "u1", OwnerID: "p1", Q: 0, R: 0, Kind: Conscript, HP: 50, MaxHP: 50, MovementRemaining: 2}}
	s.TurnStartedAt = 0

	next, _, err := Apply(s, EndTurn{PlayerID: "p1"}, 30_000)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if next.PlayerTimesMs["p1"] != 135_000 {
		t.Errorf("expected p1 bank 135000, got %d", next.PlayerTimesMs["p1"])
	}
	if next.CurrentTurn != 1 {
		t.Errorf("expected turn to advance to p2, got index %d", next.CurrentTurn)
	}
	if next.PlayerGold["p2"] != StartingGold+EndTurnGold {
		t.Errorf("expected p2 gold %d, got %d", StartingGold+EndTurnGold, next.PlayerGold["p2"])
	}
}

func TestApplyIsPureAndDeterministic(t *testing.T) {
	s := baseState(t)
	s.Units = []Unit{{ID: "u1", OwnerID: "p1", Q: 0, R: 0, Kind: Conscript, HP: 50, MaxHP: 50, MovementRemaining: 2}}

	cmds := []TimedCommand{
		{Command: MoveUnit{PlayerID: "p1", UnitID: "u1", ToQ: 1, ToR: 0}, Now: 0},
		{Command: EndTurn{PlayerID: "p1"}, Now: 10_000},
	}

	finalA, errA := Replay(s, cmds)
	finalB, errB := Replay(s, cmds)
	if errA != nil || errB != nil {
		t.Fatalf("unexpected error: %v / %v", errA, errB)
	}
	if finalA.CurrentTurn != finalB.CurrentTurn || finalA.PlayerTimesMs["p1"] != finalB.PlayerTimesMs["p1"] {
		t.Errorf("two replays of the same command log diverged")
	}
	jsonA, _ := json.Marshal(finalA)
	jsonB, _ := json.Marshal(finalB)
	if string(jsonA) != string(jsonB) {
		t.Errorf("two replays of the same command log serialized differently")
	}
}

func TestRejectNotYourTurn(t *testing.T) {
	s := baseState(t)
	s.Units = []Unit{{ID: "u1", OwnerID: "p2", Q: 0, R: 0, Kind: Conscript, HP: 50, MaxHP: 50, MovementRemaining: 2}}

	_, _, err := Apply(s, MoveUnit{PlayerID: "p2", UnitID: "u1", ToQ: 1, ToR: 0}, 0)
	kind, ok := AsRejection(err)
	if !ok || kind != NotYourTurn {
		t.Errorf("expected NotYourTurn, got %v", err)
	}
}
