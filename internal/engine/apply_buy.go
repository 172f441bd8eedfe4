package engine

import (
	"fmt"
)

func applyBuyUnit(state *GameState, c BuyUnit) (*GameState, []Delta, error) {
	city, idx, ok := findCity(state.Cities, c.CityID)
	if !ok {
		return reject(NoSuchCity)
	}
	if city.OwnerID != c.PlayerID {
		return reject(NotOwner)
	}
	if city.ProducedThisTurn {
		return reject(AlreadyProduced)
	}
	if _, _, occupied := unitAt(state.Units, city.Hex()); occupied {
		return reject(CityOccupied)
	}
	stats, ok := Stats[c.Kind]
	if !ok {
		return reject(NoSuchUnit)
	}
	if state.PlayerGold[c.PlayerID] < stats.Cost {
		return reject(InsufficientGold)
	}

	next := state.Clone()
	next.PlayerGold[c.PlayerID] -= stats.Cost
	next.UnitSeq++

	unit := Unit{
		ID:                fmt.Sprintf("unit-%s-%d", next.GameID, next.UnitSeq),
		OwnerID:           c.PlayerID,
		Q:                 city.Q,
		R:                 city.R,
		Kind:              c.Kind,
		HP:                stats.HP,
		MaxHP:             stats.HP,
		MovementRemaining: 0,
	}
	next.Units = append(next.Units, unit)

	city.ProducedThisTurn = true
	next.Cities[idx] = city

	return next, []Delta{UnitPurchasedDelta{
		Unit:       unit,
		CityID:     city.ID,
		PlayerGold: next.PlayerGold[c.PlayerID],
	}}, nil
}
