package engine

import "palmietopia/pkg/hexgrid"

func findUnit(units []Unit, id string) (Unit, int, bool) {
	for i, u := range units {
		if u.ID == id {
			return u, i, true
		}
	}
	return Unit{}, -1, false
}

func findCity(cities []City, id string) (City, int, bool) {
	for i, c := range cities {
		if c.ID == id {
			return c, i, true
		}
	}
	return City{}, -1, false
}

func unitAt(units []Unit, h hexgrid.Hex) (Unit, int, bool) {
	for i, u := range units {
		if u.Q == h.Q && u.R == h.R {
			return u, i, true
		}
	}
	return Unit{}, -1, false
}

func cityAt(cities []City, h hexgrid.Hex) (City, int, bool) {
	for i, c := range cities {
		if c.Q == h.Q && c.R == h.R {
			return c, i, true
		}
	}
	return City{}, -1, false
}

// nextNonEliminated returns the roster index of the next player after
// from, cycling forward and skipping anyone eliminated. It panics if
// every player is eliminated, which would mean Victory should already
// have been set — an invariant violation rather than a reachable state.
func nextNonEliminated(s *GameState, from int) int {
	n := len(s.Players)
	for step := 1; step <= n; step++ {
		idx := (from + step) % n
		if !s.EliminatedPlayers[s.Players[idx].ID] {
			return idx
		}
	}
	invariantViolation("no non-eliminated player found while advancing turn")
	return from
}

// countNonEliminated returns how many players have not been eliminated.
func countNonEliminated(s *GameState) int {
	n := 0
	for _, p := range s.Players {
		if !s.EliminatedPlayers[p.ID] {
			n++
		}
	}
	return n
}

// soleNonEliminated returns the id of the single remaining player, if
// exactly one remains.
func soleNonEliminated(s *GameState) (string, bool) {
	var id string
	n := 0
	for _, p := range s.Players {
		if !s.EliminatedPlayers[p.ID] {
			n++
			id = p.ID
		}
	}
	if n == 1 {
		return id, true
	}
	return "", false
}

// invariantViolation fails loudly rather than let corrupted state
// propagate silently, per the error handling design: a capitol owned
// by an already-eliminated player, a unit parked on Water, or a roster
// with no non-eliminated player left are all bugs, not rejections.
func invariantViolation(msg string) {
	panic("engine: invariant violation: " + msg)
}
