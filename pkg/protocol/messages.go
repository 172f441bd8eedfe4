// Package protocol defines the JSON wire format between a Palmietopia
// client and the session server: a tagged envelope plus the closed set
// of client and server message payloads.
package protocol

import (
	"encoding/json"
	"fmt"

	"palmietopia/internal/engine"
)

// MessageType tags the kind of a message's payload.
type MessageType string

const (
	// Client -> Server
	MsgCreateLobby MessageType = "CreateLobby"
	MsgJoinLobby   MessageType = "JoinLobby"
	MsgLeaveLobby  MessageType = "LeaveLobby"
	MsgStartGame   MessageType = "StartGame"
	MsgListLobbies MessageType = "ListLobbies"
	MsgEndTurn     MessageType = "EndTurn"
	MsgRejoinGame  MessageType = "RejoinGame"
	MsgMoveUnit    MessageType = "MoveUnit"
	MsgAttackUnit  MessageType = "AttackUnit"
	MsgFortifyUnit MessageType = "FortifyUnit"
	MsgBuyUnit     MessageType = "BuyUnit"

	// Server -> Client
	MsgLobbyCreated     MessageType = "LobbyCreated"
	MsgJoinedLobby      MessageType = "JoinedLobby"
	MsgLobbyUpdated     MessageType = "LobbyUpdated"
	MsgLobbyList        MessageType = "LobbyList"
	MsgGameStarted      MessageType = "GameStarted"
	MsgGameRejoined     MessageType = "GameRejoined"
	MsgPlayerLeft       MessageType = "PlayerLeft"
	MsgError            MessageType = "Error"
	MsgTurnChanged      MessageType = "TurnChanged"
	MsgTimeTick         MessageType = "TimeTick"
	MsgUnitMoved        MessageType = "UnitMoved"
	MsgCombatResult     MessageType = "CombatResult"
	MsgUnitFortified    MessageType = "UnitFortified"
	MsgUnitPurchased    MessageType = "UnitPurchased"
	MsgCitiesCaptured   MessageType = "CitiesCaptured"
	MsgPlayerEliminated MessageType = "PlayerEliminated"
	MsgGameOver         MessageType = "GameOver"
)

// ProtocolVersion is carried on every Envelope so a future wire change
// can be detected client-side before it causes silent misinterpretation.
const ProtocolVersion = 1

// Envelope is the outer shape of every frame: a type tag plus a raw
// payload decoded against that tag once the type is known.
type Envelope struct {
	Type            MessageType     `json:"type"`
	ProtocolVersion int             `json:"protocol_version"`
	Payload         json.RawMessage `json:"payload,omitempty"`
}

// Encode wraps a typed payload into an Envelope and marshals it.
func Encode(msgType MessageType, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode %s payload: %w", msgType, err)
	}
	return json.Marshal(Envelope{Type: msgType, ProtocolVersion: ProtocolVersion, Payload: raw})
}

// Decode unmarshals a frame's outer envelope. Callers switch on
// env.Type and unmarshal env.Payload into the matching payload struct.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("protocol: malformed envelope: %w", err)
	}
	return env, nil
}

// --- Client -> Server payloads ---

type CreateLobbyPayload struct {
	PlayerName string         `json:"player_name"`
	MapSize    engine.MapSize `json:"map_size"`
}

type JoinLobbyPayload struct {
	LobbyID    string `json:"lobby_id"`
	PlayerName string `json:"player_name"`
}

// LeaveLobbyPayload, StartGamePayload and ListLobbiesPayload carry no
// fields: the session is identified by the socket's own subscription.
type LeaveLobbyPayload struct{}
type StartGamePayload struct{}
type ListLobbiesPayload struct{}

type EndTurnPayload struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
}

type RejoinGamePayload struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
}

type MoveUnitPayload struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
	UnitID   string `json:"unit_id"`
	ToQ      int    `json:"to_q"`
	ToR      int    `json:"to_r"`
}

type AttackUnitPayload struct {
	GameID     string `json:"game_id"`
	PlayerID   string `json:"player_id"`
	AttackerID string `json:"attacker_id"`
	DefenderID string `json:"defender_id"`
}

type FortifyUnitPayload struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
	UnitID   string `json:"unit_id"`
}

type BuyUnitPayload struct {
	GameID   string          `json:"game_id"`
	PlayerID string          `json:"player_id"`
	CityID   string          `json:"city_id"`
	UnitType engine.UnitKind `json:"unit_type"`
}

// --- Server -> Client payloads ---

// LobbyView is the lobby shape sent to clients: a pre-game container
// with join order baked into Players' slice order.
type LobbyView struct {
	ID         string         `json:"id"`
	HostID     string         `json:"host_id"`
	Players    []LobbyPlayer  `json:"players"`
	MapSize    engine.MapSize `json:"map_size"`
	MaxPlayers int            `json:"max_players"`
	Status     string         `json:"status"`
}

type LobbyPlayer struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Color engine.Color `json:"color"`
}

type LobbyCreatedPayload struct {
	LobbyID  string `json:"lobby_id"`
	PlayerID string `json:"player_id"`
}

type JoinedLobbyPayload struct {
	Lobby    LobbyView `json:"lobby"`
	PlayerID string    `json:"player_id"`
}

type LobbyUpdatedPayload struct {
	Lobby LobbyView `json:"lobby"`
}

type LobbyListPayload struct {
	Lobbies []LobbyView `json:"lobbies"`
}

// GamePlayerView adds wire-only metadata to engine.Player: a
// disconnected player's clock keeps running, so clients need to
// render that state distinctly from "eliminated".
type GamePlayerView struct {
	engine.Player
	Connected bool `json:"connected"`
}

// GameView is the full authoritative snapshot sent on GameStarted and
// GameRejoined, letting a client (re)seed its optimistic replica.
type GameView struct {
	GameID        string           `json:"game_id"`
	Map           engine.GameMap   `json:"map"`
	Players       []GamePlayerView `json:"players"`
	PlayerGold    map[string]int   `json:"player_gold"`
	PlayerTimesMs map[string]int64 `json:"player_times_ms"`
	Cities        []engine.City    `json:"cities"`
	Units         []engine.Unit    `json:"units"`
	CurrentTurn   int              `json:"current_turn"`
	BaseTimeMs    int64            `json:"base_time_ms"`
	IncrementMs   int64            `json:"increment_ms"`
}

type GameStartedPayload struct {
	Game GameView `json:"game"`
}

type GameRejoinedPayload struct {
	Game GameView `json:"game"`
}

type PlayerLeftPayload struct {
	PlayerID string `json:"player_id"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type TurnChangedPayload struct {
	CurrentTurn   int              `json:"current_turn"`
	PlayerTimesMs map[string]int64 `json:"player_times_ms"`
	PlayerGold    map[string]int   `json:"player_gold"`
	Units         []engine.Unit    `json:"units"`
	Cities        []engine.City    `json:"cities"`
}

// TimeTickPayload is a periodic, non-authoritative hint. It carries
// game_id and turn_number so a client that receives a stale tick after
// a turn change can discard it instead of flashing the wrong clock.
type TimeTickPayload struct {
	GameID      string `json:"game_id"`
	TurnNumber  int    `json:"turn_number"`
	PlayerIndex int    `json:"player_index"`
	RemainingMs int64  `json:"remaining_ms"`
}

type UnitMovedPayload struct {
	UnitID            string `json:"unit_id"`
	ToQ               int    `json:"to_q"`
	ToR               int    `json:"to_r"`
	MovementRemaining int    `json:"movement_remaining"`
}

type CombatResultPayload struct {
	AttackerID       string `json:"attacker_id"`
	DefenderID       string `json:"defender_id"`
	AttackerHP       int    `json:"attacker_hp"`
	DefenderHP       int    `json:"defender_hp"`
	DamageToAttacker int    `json:"damage_to_attacker"`
	DamageToDefender int    `json:"damage_to_defender"`
	AttackerDied     bool   `json:"attacker_died"`
	DefenderDied     bool   `json:"defender_died"`
	AttackerNewQ     *int   `json:"attacker_new_q,omitempty"`
	AttackerNewR     *int   `json:"attacker_new_r,omitempty"`
}

type UnitFortifiedPayload struct {
	UnitID string `json:"unit_id"`
	NewHP  int    `json:"new_hp"`
}

type UnitPurchasedPayload struct {
	Unit       engine.Unit `json:"unit"`
	CityID     string      `json:"city_id"`
	PlayerGold int         `json:"player_gold"`
}

type CitiesCapturedPayload struct {
	Cities []engine.City `json:"cities"`
}

type PlayerEliminatedPayload struct {
	PlayerID    string `json:"player_id"`
	ConquererID string `json:"conquerer_id"`
}

type GameOverPayload struct {
	WinnerID string `json:"winner_id"`
}

// FromDelta converts one engine.Delta into its wire MessageType and
// payload pair.
func FromDelta(d engine.Delta) (MessageType, interface{}) {
	switch v := d.(type) {
	case engine.UnitMovedDelta:
		return MsgUnitMoved, UnitMovedPayload{
			UnitID:            v.UnitID,
			ToQ:               v.ToQ,
			ToR:               v.ToR,
			MovementRemaining: v.MovementRemaining,
		}
	case engine.CombatResultDelta:
		return MsgCombatResult, CombatResultPayload{
			AttackerID:       v.AttackerID,
			DefenderID:       v.DefenderID,
			AttackerHP:       v.AttackerHP,
			DefenderHP:       v.DefenderHP,
			DamageToAttacker: v.DamageToAttacker,
			DamageToDefender: v.DamageToDefender,
			AttackerDied:     v.AttackerDied,
			DefenderDied:     v.DefenderDied,
			AttackerNewQ:     v.AttackerNewQ,
			AttackerNewR:     v.AttackerNewR,
		}
	case engine.UnitFortifiedDelta:
		return MsgUnitFortified, UnitFortifiedPayload{UnitID: v.UnitID, NewHP: v.NewHP}
	case engine.UnitPurchasedDelta:
		return MsgUnitPurchased, UnitPurchasedPayload{
			Unit:       v.Unit,
			CityID:     v.CityID,
			PlayerGold: v.PlayerGold,
		}
	case engine.CitiesCapturedDelta:
		return MsgCitiesCaptured, CitiesCapturedPayload{Cities: v.Cities}
	case engine.PlayerEliminatedDelta:
		return MsgPlayerEliminated, PlayerEliminatedPayload{
			PlayerID:    v.PlayerID,
			ConquererID: v.ConquererID,
		}
	case engine.TurnChangedDelta:
		return MsgTurnChanged, TurnChangedPayload{
			CurrentTurn:   v.CurrentTurn,
			PlayerTimesMs: v.PlayerTimesMs,
			PlayerGold:    v.PlayerGold,
			Units:         v.Units,
			Cities:        v.Cities,
		}
	case engine.GameOverDelta:
		return MsgGameOver, GameOverPayload{WinnerID: v.WinnerID}
	default:
		return MsgError, ErrorPayload{Message: "protocol: unknown delta type"}
	}
}
