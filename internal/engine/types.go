// Package engine implements Palmietopia's deterministic game state
// machine: the domain model and the pure apply(state, command) rules
// engine. Nothing in this package performs I/O, reads the wall clock,
// or uses unseeded randomness — every input that could vary between
// an authoritative server and an optimistic client replica is an
// explicit argument.
package engine

import "palmietopia/pkg/hexgrid"

// Terrain is the ground type of a single tile.
type Terrain string

const (
	Grassland Terrain = "grassland"
	Forest    Terrain = "forest"
	Mountain  Terrain = "mountain"
	Water     Terrain = "water"
	Desert    Terrain = "desert"
)

// MovementCost returns the movement points required to enter a tile of
// this terrain, and whether the terrain is passable at all.
func (t Terrain) MovementCost() (cost int, passable bool) {
	switch t {
	case Grassland, Forest, Desert:
		return 1, true
	case Mountain:
		return 2, true
	case Water:
		return 0, false
	default:
		return 0, false
	}
}

// CanFoundCity reports whether a city may be founded on this terrain.
func (t Terrain) CanFoundCity() bool {
	return t == Grassland || t == Forest || t == Desert
}

// MapSize names a valid map radius.
type MapSize string

const (
	Tiny   MapSize = "tiny"
	Small  MapSize = "small"
	Medium MapSize = "medium"
	Large  MapSize = "large"
	Huge   MapSize = "huge"
)

// Radius returns the hex radius for a named size.
func (s MapSize) Radius() int {
	switch s {
	case Tiny:
		return 2
	case Small:
		return 4
	case Medium:
		return 6
	case Large:
		return 8
	case Huge:
		return 10
	default:
		return 0
	}
}

// MaxPlayersForSize caps a lobby's player count by its chosen map size.
// Every valid size in this game supports up to the game's hard cap of 5.
func MaxPlayersForSize(s MapSize) int {
	return 5
}

// Tile is one hex of the map.
type Tile struct {
	Q       int     `json:"q"`
	R       int     `json:"r"`
	Terrain Terrain `json:"terrain"`
}

func (t Tile) Hex() hexgrid.Hex { return hexgrid.New(t.Q, t.R) }

// GameMap is the generated terrain grid.
type GameMap struct {
	Radius int    `json:"radius"`
	Tiles  []Tile `json:"tiles"`
}

// TileAt returns the tile at h, if the map contains it.
func (m *GameMap) TileAt(h hexgrid.Hex) (Tile, bool) {
	for _, t := range m.Tiles {
		if t.Q == h.Q && t.R == h.R {
			return t, true
		}
	}
	return Tile{}, false
}

// Color is drawn from the fixed ordered palette, assigned by join order.
type Color string

const (
	Red    Color = "red"
	Blue   Color = "blue"
	Green  Color = "green"
	Yellow Color = "yellow"
	Purple Color = "purple"
)

// ColorPalette is the fixed, ordered color assignment sequence.
var ColorPalette = []Color{Red, Blue, Green, Yellow, Purple}

// Player is a stable seat in the game's roster.
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color Color  `json:"color"`
}

// City is a capturable, permanent structure on a single hex.
type City struct {
	ID               string `json:"id"`
	OwnerID          string `json:"owner_id"`
	Q                int    `json:"q"`
	R                int    `json:"r"`
	Name             string `json:"name"`
	IsCapitol        bool   `json:"is_capitol"`
	ProducedThisTurn bool   `json:"produced_this_turn"`
}

func (c City) Hex() hexgrid.Hex { return hexgrid.New(c.Q, c.R) }

// UnitKind names the three purchasable unit types.
type UnitKind string

const (
	Conscript UnitKind = "conscript"
	Knight    UnitKind = "knight"
	Bowman    UnitKind = "bowman"
)

// UnitStats holds a kind's base combat and movement profile.
type UnitStats struct {
	Cost   int
	HP     int
	Attack int
	Defense int
	Move   int
	Range  int
}

// Stats is the base stat table from the design (§3).
var Stats = map[UnitKind]UnitStats{
	Conscript: {Cost: 25, HP: 50, Attack: 25, Defense: 15, Move: 2, Range: 1},
	Knight:    {Cost: 40, HP: 50, Attack: 35, Defense: 10, Move: 3, Range: 1},
	Bowman:    {Cost: 25, HP: 40, Attack: 22, Defense: 10, Move: 2, Range: 2},
}

// Unit is a single mobile combat entity.
type Unit struct {
	ID                string   `json:"id"`
	OwnerID           string   `json:"owner_id"`
	Q                 int      `json:"q"`
	R                 int      `json:"r"`
	Kind              UnitKind `json:"kind"`
	HP                int      `json:"hp"`
	MaxHP             int      `json:"max_hp"`
	MovementRemaining int      `json:"movement_remaining"`
}

func (u Unit) Hex() hexgrid.Hex { return hexgrid.New(u.Q, u.R) }

// Phase names the lifecycle stage of a GameState.
type Phase string

const (
	InProgress Phase = "in_progress"
	Victory    Phase = "victory"
)

// GameStatus is the terminal/non-terminal status of a game.
type GameStatus struct {
	Phase    Phase  `json:"phase"`
	WinnerID string `json:"winner_id,omitempty"`
}

// GameState is the complete, serializable state of one game in progress.
// It is never mutated in place by Apply; every successful command
// returns a new *GameState, so past states remain valid for
// reconciliation and snapshotting.
type GameState struct {
	GameID            string           `json:"game_id"`
	Seed              int64            `json:"seed"`
	Map               GameMap          `json:"map"`
	Players           []Player         `json:"players"`
	PlayerGold        map[string]int   `json:"player_gold"`
	PlayerTimesMs     map[string]int64 `json:"player_times_ms"`
	EliminatedPlayers map[string]bool  `json:"eliminated_players"`
	Cities            []City           `json:"cities"`
	Units             []Unit           `json:"units"`
	CurrentTurn       int              `json:"current_turn"`
	TurnStartedAt     int64            `json:"turn_started_at"`
	BaseTimeMs        int64            `json:"base_time_ms"`
	IncrementMs       int64            `json:"increment_ms"`
	Status            GameStatus       `json:"status"`
	UnitSeq           int64            `json:"unit_seq"`
}

const (
	StartingGold  = 50
	BaseTimeMs    = 120_000
	IncrementMs   = 45_000
	EndTurnGold   = 20
	GarrisonBonus = 150 // percent
	CombatDenom   = 30
)

// CurrentPlayer returns the player whose turn it currently is.
func (s *GameState) CurrentPlayer() Player {
	return s.Players[s.CurrentTurn]
}

// IsEliminated reports whether playerID has been eliminated.
func (s *GameState) IsEliminated(playerID string) bool {
	return s.EliminatedPlayers[playerID]
}

// Clone deep-copies a GameState so callers can mutate the copy freely
// without affecting the original.
func (s *GameState) Clone() *GameState {
	out := &GameState{
		GameID:        s.GameID,
		Seed:          s.Seed,
		CurrentTurn:   s.CurrentTurn,
		TurnStartedAt: s.TurnStartedAt,
		BaseTimeMs:    s.BaseTimeMs,
		IncrementMs:   s.IncrementMs,
		Status:        s.Status,
		UnitSeq:       s.UnitSeq,
	}
	out.Map.Radius = s.Map.Radius
	out.Map.Tiles = append([]Tile(nil), s.Map.Tiles...)
	out.Players = append([]Player(nil), s.Players...)
	out.Cities = append([]City(nil), s.Cities...)
	out.Units = append([]Unit(nil), s.Units...)

	out.PlayerGold = make(map[string]int, len(s.PlayerGold))
	for k, v := range s.PlayerGold {
		out.PlayerGold[k] = v
	}
	out.PlayerTimesMs = make(map[string]int64, len(s.PlayerTimesMs))
	for k, v := range s.PlayerTimesMs {
		out.PlayerTimesMs[k] = v
	}
	out.EliminatedPlayers = make(map[string]bool, len(s.EliminatedPlayers))
	for k, v := range s.EliminatedPlayers {
		out.EliminatedPlayers[k] = v
	}
	return out
}
