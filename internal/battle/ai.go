package battle

import "github.com/peterkuimelis/vale/internal/rng"

// enemyPolicy chooses one action per live enemy. Each enemy picks uniformly
// between its basic attack and its unlocked, known abilities, then aims
// according to the ability's scope. Enemies have no mana budget.
func enemyPolicy(b *BattleState, r *rng.PRNG) []*QueuedAction {
	players := liveUnits(b.PlayerTeam.Units)
	if len(players) == 0 {
		return nil
	}
	var actions []*QueuedAction
	for i := range b.Enemies {
		e := &b.Enemies[i]
		if e.IsKO() {
			continue
		}
		var usable []*Ability
		for _, id := range e.UnlockedAbilities {
			if a := e.AbilityByID(id); a != nil {
				usable = append(usable, a)
			}
		}
		pick := r.Intn(len(usable) + 1)
		if pick == len(usable) {
			target := players[r.Intn(len(players))]
			actions = append(actions, &QueuedAction{UnitID: e.ID, TargetIDs: []string{target.ID}})
			continue
		}
		ab := usable[pick]
		def := *ab
		actions = append(actions, &QueuedAction{
			UnitID:    e.ID,
			AbilityID: ab.ID,
			TargetIDs: enemyTargets(b, e, ab, players, r),
			ManaCost:  ab.ManaCost,
			Ability:   &def,
		})
	}
	return actions
}

func enemyTargets(b *BattleState, self *Unit, ab *Ability, players []*Unit, r *rng.PRNG) []string {
	switch ab.Targets {
	case TargetAllEnemies:
		return ids(players)
	case TargetAllAllies:
		return ids(liveUnits(b.Enemies))
	case TargetSelf:
		return []string{self.ID}
	case TargetSingleAlly:
		// Most wounded ally by HP fraction.
		best := self
		for _, a := range liveUnits(b.Enemies) {
			if a.CurrentHP*best.MaxHP() < best.CurrentHP*a.MaxHP() {
				best = a
			}
		}
		return []string{best.ID}
	default:
		return []string{players[r.Intn(len(players))].ID}
	}
}

func ids(units []*Unit) []string {
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = u.ID
	}
	return out
}
