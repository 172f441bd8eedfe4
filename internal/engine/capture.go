package engine

// captureCity transfers ownership of state.Cities[cityIdx] to newOwnerID
// and, if that city was a capitol, eliminates its former owner: their
// remaining cities transfer too (losing capitol status unless they
// happen to already be newOwnerID's own capitol), their units are
// removed from the board, and victory is checked. state is mutated in
// place — callers pass an already-cloned GameState, never the original
// passed into Apply.
func captureCity(state *GameState, cityIdx int, newOwnerID string) []Delta {
	city := state.Cities[cityIdx]
	if city.OwnerID == newOwnerID {
		return nil
	}
	formerOwnerID := city.OwnerID
	wasCapitol := city.IsCapitol

	city.OwnerID = newOwnerID
	if wasCapitol {
		city.IsCapitol = false
	}
	state.Cities[cityIdx] = city

	var deltas []Delta

	if !wasCapitol {
		deltas = append(deltas, CitiesCapturedDelta{Cities: append([]City(nil), state.Cities...)})
		return deltas
	}

	for i, c := range state.Cities {
		if c.OwnerID == formerOwnerID {
			c.OwnerID = newOwnerID
			c.IsCapitol = false
			state.Cities[i] = c
		}
	}

	kept := state.Units[:0:0]
	for _, u := range state.Units {
		if u.OwnerID != formerOwnerID {
			kept = append(kept, u)
		}
	}
	state.Units = kept

	state.EliminatedPlayers[formerOwnerID] = true

	deltas = append(deltas, CitiesCapturedDelta{Cities: append([]City(nil), state.Cities...)})
	deltas = append(deltas, PlayerEliminatedDelta{PlayerID: formerOwnerID, ConquererID: newOwnerID})

	if state.CurrentTurn >= 0 && state.EliminatedPlayers[state.Players[state.CurrentTurn].ID] {
		state.CurrentTurn = nextNonEliminated(state, state.CurrentTurn)
	}

	if winnerID, ok := soleNonEliminated(state); ok {
		state.Status = GameStatus{Phase: Victory, WinnerID: winnerID}
		deltas = append(deltas, GameOverDelta{WinnerID: winnerID})
	}

	return deltas
}
