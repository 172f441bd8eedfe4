package engine

import "palmietopia/pkg/hexgrid"

func applyMoveUnit(state *GameState, c MoveUnit) (*GameState, []Delta, error) {
	unit, idx, ok := findUnit(state.Units, c.UnitID)
	if !ok {
		return reject(NoSuchUnit)
	}
	if unit.OwnerID != c.PlayerID {
		return reject(NotOwner)
	}

	from := unit.Hex()
	to := hexgrid.New(c.ToQ, c.ToR)
	if from.Distance(to) != 1 {
		return reject(OutOfRange)
	}

	tile, exists := state.Map.TileAt(to)
	if !exists {
		return reject(Impassable)
	}
	cost, passable := tile.Terrain.MovementCost()
	if !passable {
		return reject(Impassable)
	}
	if _, _, occupied := unitAt(state.Units, to); occupied {
		return reject(Occupied)
	}
	if unit.MovementRemaining < cost {
		return reject(InsufficientMovement)
	}

	next := state.Clone()
	unit.Q, unit.R = to.Q, to.R
	unit.MovementRemaining -= cost
	next.Units[idx] = unit

	deltas := []Delta{UnitMovedDelta{
		UnitID:            unit.ID,
		ToQ:               unit.Q,
		ToR:               unit.R,
		MovementRemaining: unit.MovementRemaining,
	}}

	if city, cityIdx, found := cityAt(next.Cities, to); found && city.OwnerID != c.PlayerID {
		captureDeltas := captureCity(next, cityIdx, c.PlayerID)
		deltas = append(deltas, captureDeltas...)
	}

	return next, deltas, nil
}
