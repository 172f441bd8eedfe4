package engine

func applyAttackUnit(state *GameState, c AttackUnit) (*GameState, []Delta, error) {
	attacker, _, ok := findUnit(state.Units, c.AttackerID)
	if !ok {
		return reject(NoSuchUnit)
	}
	if attacker.OwnerID != c.PlayerID {
		return reject(NotOwner)
	}
	defender, _, ok := findUnit(state.Units, c.DefenderID)
	if !ok {
		return reject(NoSuchUnit)
	}
	if defender.OwnerID == c.PlayerID {
		return reject(SelfAttack)
	}

	dist := attacker.Hex().Distance(defender.Hex())
	maxRange := Stats[attacker.Kind].Range
	if dist < 1 || dist > maxRange {
		return reject(OutOfRange)
	}
	if attacker.MovementRemaining <= 0 {
		return reject(InsufficientMovement)
	}
	melee := dist == 1

	next := state.Clone()
	damageToDefender, damageToAttacker := resolveCombat(next, attacker, defender, melee)

	attacker.MovementRemaining = 0
	attacker.HP -= damageToAttacker
	defender.HP -= damageToDefender
	attackerDied := attacker.HP <= 0
	defenderDied := defender.HP <= 0
	if attackerDied {
		attacker.HP = 0
	}
	if defenderDied {
		defender.HP = 0
	}

	relocated := defenderDied && !attackerDied && melee
	if relocated {
		attacker.Q, attacker.R = defender.Q, defender.R
	}

	result := CombatResultDelta{
		AttackerID:       attacker.ID,
		DefenderID:       defender.ID,
		AttackerHP:       attacker.HP,
		DefenderHP:       defender.HP,
		DamageToAttacker: damageToAttacker,
		DamageToDefender: damageToDefender,
		AttackerDied:     attackerDied,
		DefenderDied:     defenderDied,
	}
	if relocated {
		result.AttackerNewQ = &attacker.Q
		result.AttackerNewR = &attacker.R
	}

	newUnits := make([]Unit, 0, len(next.Units))
	for _, u := range next.Units {
		switch u.ID {
		case attacker.ID:
			if !attackerDied {
				newUnits = append(newUnits, attacker)
			}
		case defender.ID:
			if !defenderDied {
				newUnits = append(newUnits, defender)
			}
		default:
			newUnits = append(newUnits, u)
		}
	}
	next.Units = newUnits

	deltas := []Delta{result}

	if relocated {
		if city, cityIdx, found := cityAt(next.Cities, attacker.Hex()); found && city.OwnerID != c.PlayerID {
			deltas = append(deltas, captureCity(next, cityIdx, c.PlayerID)...)
		}
	}

	return next, deltas, nil
}
