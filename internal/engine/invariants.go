package engine

import "fmt"

// CheckInvariants verifies the quantified invariants from the design
// against a reachable GameState. It never mutates state. The engine
// tests call it on states produced by Apply; the session layer does
// not call it.
func CheckInvariants(s *GameState) error {
	wantTiles := 3 * s.Map.Radius * (s.Map.Radius + 1) + 1
	if len(s.Map.Tiles) != wantTiles {
		return fmt.Errorf("tile count = %d, want %d", len(s.Map.Tiles), wantTiles)
	}
	seen := make(map[[2]int]bool, len(s.Map.Tiles))
	for _, t := range s.Map.Tiles {
		key := [2]int{t.Q, t.R}
		if seen[key] {
			return fmt.Errorf("duplicate tile coordinate (%d,%d)", t.Q, t.R)
		}
		seen[key] = true
	}

	unitHexes := make(map[[2]int]bool, len(s.Units))
	for _, u := range s.Units {
		key := [2]int{u.Q, u.R}
		if unitHexes[key] {
			return fmt.Errorf("two units share hex (%d,%d)", u.Q, u.R)
		}
		unitHexes[key] = true
	}
	cityHexes := make(map[[2]int]bool, len(s.Cities))
	for _, c := range s.Cities {
		key := [2]int{c.Q, c.R}
		if cityHexes[key] {
			return fmt.Errorf("two cities share hex (%d,%d)", c.Q, c.R)
		}
		cityHexes[key] = true
	}

	if s.Status.Phase != Victory {
		if len(s.Players) > 0 && s.EliminatedPlayers[s.Players[s.CurrentTurn].ID] {
			return fmt.Errorf("current_turn indexes eliminated player %s", s.Players[s.CurrentTurn].ID)
		}
	}

	capitolCount := make(map[string]int)
	for _, c := range s.Cities {
		if c.IsCapitol {
			capitolCount[c.OwnerID]++
		}
	}
	for _, p := range s.Players {
		if s.EliminatedPlayers[p.ID] {
			continue
		}
		if capitolCount[p.ID] != 1 {
			return fmt.Errorf("player %s has %d capitols, want 1", p.ID, capitolCount[p.ID])
		}
	}

	for id, t := range s.PlayerTimesMs {
		if t < 0 {
			return fmt.Errorf("player %s has negative time %d", id, t)
		}
	}
	for id, g := range s.PlayerGold {
		if g < 0 {
			return fmt.Errorf("player %s has negative gold %d", id, g)
		}
	}

	winner, hasSole := soleNonEliminated(s)
	if s.Status.Phase == Victory {
		if !hasSole || s.Status.WinnerID != winner {
			return fmt.Errorf("status is Victory{%s} but sole survivor is %q (hasSole=%v)", s.Status.WinnerID, winner, hasSole)
		}
	} else if hasSole {
		return fmt.Errorf("%s is the sole non-eliminated player but status is not Victory", winner)
	}

	return nil
}
