package engine

func applyEndTurn(state *GameState, c EndTurn, now int64) (*GameState, []Delta, error) {
	next := state.Clone()

	endingID := next.Players[next.CurrentTurn].ID
	elapsed := now - next.TurnStartedAt
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := next.PlayerTimesMs[endingID] - elapsed
	if remaining < 0 {
		remaining = 0
	}
	if remaining > 0 {
		remaining += next.IncrementMs
	}
	next.PlayerTimesMs[endingID] = remaining

	next.CurrentTurn = nextNonEliminated(next, next.CurrentTurn)
	startingID := next.Players[next.CurrentTurn].ID

	for i, u := range next.Units {
		if u.OwnerID == startingID {
			u.MovementRemaining = Stats[u.Kind].Move
			next.Units[i] = u
		}
	}
	for i, city := range next.Cities {
		if city.OwnerID == startingID {
			city.ProducedThisTurn = false
			next.Cities[i] = city
		}
	}
	next.PlayerGold[startingID] += EndTurnGold
	next.TurnStartedAt = now

	delta := TurnChangedDelta{
		CurrentTurn:   next.CurrentTurn,
		PlayerTimesMs: copyTimes(next.PlayerTimesMs),
		PlayerGold:    copyGold(next.PlayerGold),
		Units:         append([]Unit(nil), next.Units...),
		Cities:        append([]City(nil), next.Cities...),
	}

	return next, []Delta{delta}, nil
}

func copyTimes(m map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyGold(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
