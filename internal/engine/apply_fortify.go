package engine

func applyFortifyUnit(state *GameState, c FortifyUnit) (*GameState, []Delta, error) {
	unit, idx, ok := findUnit(state.Units, c.UnitID)
	if !ok {
		return reject(NoSuchUnit)
	}
	if unit.OwnerID != c.PlayerID {
		return reject(NotOwner)
	}
	if unit.MovementRemaining != Stats[unit.Kind].Move {
		return reject(AlreadyActed)
	}
	if unit.HP >= unit.MaxHP {
		return reject(FullHealth)
	}

	next := state.Clone()
	unit.HP += unit.MaxHP / 4
	if unit.HP > unit.MaxHP {
		unit.HP = unit.MaxHP
	}
	unit.MovementRemaining = 0
	next.Units[idx] = unit

	return next, []Delta{UnitFortifiedDelta{UnitID: unit.ID, NewHP: unit.HP}}, nil
}
