package engine

// effectiveDefense applies the garrison bonus: a unit standing on a
// friendly city defends at 150% of its base defense, truncated exactly
// as the design notes require (integer multiply-then-divide, never a
// floating point multiply) so server and client replicas agree to the
// bit.
func effectiveDefense(state *GameState, u Unit) int {
	base := Stats[u.Kind].Defense
	if city, _, ok := cityAt(state.Cities, u.Hex()); ok && city.OwnerID == u.OwnerID {
		return base * GarrisonBonus / 100
	}
	return base
}

// resolveCombat computes simultaneous damage for one attack exchange.
// melee is true when the attacker and defender are at distance 1;
// ranged (Bowman at distance 2) attacks deal no counter-damage.
func resolveCombat(state *GameState, attacker, defender Unit, melee bool) (damageToDefender, damageToAttacker int) {
	aStats := Stats[attacker.Kind]
	dDefEff := effectiveDefense(state, defender)
	damageToDefender = aStats.Attack * CombatDenom / (CombatDenom + dDefEff)

	if !melee {
		return damageToDefender, 0
	}
	dStats := Stats[defender.Kind]
	damageToAttacker = dStats.Attack * CombatDenom / (CombatDenom + aStats.Defense) / 2
	return damageToDefender, damageToAttacker
}
