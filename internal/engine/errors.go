package engine

import "fmt"

// RejectionKind enumerates every way a command can be refused without
// mutating state. It is the Validation bucket of the error taxonomy,
// plus the Lookup kinds for units, cities and players; the Lobby and
// Protocol kinds live in internal/session, and every kind exposes the
// same ErrorKind() string so each layer translates a rejection the
// same way.
type RejectionKind string

const (
	NotYourTurn          RejectionKind = "not_your_turn"
	NotOwner             RejectionKind = "not_owner"
	OutOfRange           RejectionKind = "out_of_range"
	Impassable           RejectionKind = "impassable"
	Occupied             RejectionKind = "occupied"
	InsufficientMovement RejectionKind = "insufficient_movement"
	InsufficientGold     RejectionKind = "insufficient_gold"
	AlreadyProduced      RejectionKind = "already_produced"
	CityOccupied         RejectionKind = "city_occupied"
	AlreadyActed         RejectionKind = "already_acted"
	FullHealth           RejectionKind = "full_health"
	SelfAttack           RejectionKind = "self_attack"
	GameOverKind         RejectionKind = "game_over"

	NoSuchUnit   RejectionKind = "no_such_unit"
	NoSuchCity   RejectionKind = "no_such_city"
	NoSuchPlayer RejectionKind = "no_such_player"
)

var rejectionMessages = map[RejectionKind]string{
	NotYourTurn:          "it is not your turn",
	NotOwner:             "you do not own that entity",
	OutOfRange:           "target is out of range",
	Impassable:           "destination terrain is impassable",
	Occupied:             "destination is occupied",
	InsufficientMovement: "unit has insufficient movement remaining",
	InsufficientGold:     "insufficient gold",
	AlreadyProduced:      "city has already produced this turn",
	CityOccupied:         "city hex is occupied by a unit",
	AlreadyActed:         "unit has already acted this turn",
	FullHealth:           "unit is already at full health",
	SelfAttack:           "cannot attack your own unit",
	GameOverKind:         "the game is over",
	NoSuchUnit:           "no such unit",
	NoSuchCity:           "no such city",
	NoSuchPlayer:         "no such player",
}

// RejectionError is returned by Apply when a command fails validation.
// It carries no state mutation: the caller's GameState is untouched.
type RejectionError struct {
	Kind RejectionKind
}

func (e *RejectionError) Error() string {
	if msg, ok := rejectionMessages[e.Kind]; ok {
		return msg
	}
	return fmt.Sprintf("rejected: %s", e.Kind)
}

// ErrorKind satisfies the session package's KindedError interface so
// handlers can translate any layer's rejection into a wire
// Error{message} without a type switch per package.
func (e *RejectionError) ErrorKind() string { return string(e.Kind) }

func reject(kind RejectionKind) (*GameState, []Delta, error) {
	return nil, nil, &RejectionError{Kind: kind}
}

// AsRejection extracts the RejectionKind from err, if err is a
// *RejectionError.
func AsRejection(err error) (RejectionKind, bool) {
	re, ok := err.(*RejectionError)
	if !ok {
		return "", false
	}
	return re.Kind, true
}
