package battle

import (
	"fmt"
	"slices"
)

// QueueAction registers or replaces the pending action for a player unit.
// An empty abilityID queues a basic attack. ability supplies the definition
// and mana cost; when nil the unit's own known definition is used. On error
// b is returned unchanged.
func QueueAction(b *BattleState, unitID, abilityID string, targetIDs []string, ability *Ability) (*BattleState, error) {
	if b.Phase != PhasePlanning {
		return b, fmt.Errorf("%w: phase is %s", ErrWrongPhase, b.Phase)
	}
	u := b.unit(unitID)
	if u == nil {
		return b, fmt.Errorf("%w: %q", ErrUnknownUnit, unitID)
	}
	if !b.IsPlayerUnit(unitID) {
		return b, fmt.Errorf("%w: %q", ErrNotPlayerUnit, unitID)
	}
	if u.IsKO() {
		return b, fmt.Errorf("%w: %q", ErrUnitKO, unitID)
	}
	if len(targetIDs) == 0 {
		return b, fmt.Errorf("%w for %q", ErrEmptyTargets, unitID)
	}
	for _, id := range targetIDs {
		if b.unit(id) == nil {
			return b, fmt.Errorf("%w: %q", ErrUnknownTarget, id)
		}
	}

	var cost int
	if abilityID != "" {
		if ability == nil {
			ability = u.AbilityByID(abilityID)
		}
		if ability == nil || ability.ID != abilityID {
			return b, fmt.Errorf("%w: %q", ErrUnknownAbility, abilityID)
		}
		if !b.canUse(u, abilityID) {
			return b, fmt.Errorf("%w: %q for %q", ErrAbilityLocked, abilityID, unitID)
		}
		cost = ability.ManaCost
		if cost > b.RemainingMana {
			return b, fmt.Errorf("%w: %q costs %d, %d available", ErrManaBudget, abilityID, cost, b.RemainingMana)
		}
	}
	if err := b.checkTargetSide(unitID, abilityID, ability, targetIDs); err != nil {
		return b, err
	}

	nb := b.clone()
	slot := nb.slotOf(unitID)
	qa := &QueuedAction{
		UnitID:    unitID,
		AbilityID: abilityID,
		TargetIDs: append([]string(nil), targetIDs...),
		ManaCost:  cost,
	}
	if ability != nil {
		def := *ability
		qa.Ability = &def
	}
	nb.QueuedActions[slot] = qa
	nb.CurrentQueueIndex = nb.firstOpenSlot(slot)
	return nb, nil
}

// aimsAtAllies reports whether ab lands on its user's side. A nil ability
// is a basic attack.
func aimsAtAllies(ab *Ability) bool {
	if ab == nil {
		return false
	}
	return !ab.Kind.Harmful() || ab.Targets == TargetSingleAlly || ab.Targets == TargetAllAllies
}

// checkTargetSide rejects targets outside the side the action aims at:
// enemies for attacks, the player team for heals and buffs, the unit itself
// for self abilities.
func (b *BattleState) checkTargetSide(unitID, abilityID string, ability *Ability, targetIDs []string) error {
	if abilityID == "" {
		ability = nil
	}
	for _, id := range targetIDs {
		switch {
		case ability != nil && ability.Targets == TargetSelf:
			if id != unitID {
				return fmt.Errorf("%w: %q targets only its user, got %q", ErrWrongTargetSide, abilityID, id)
			}
		case aimsAtAllies(ability):
			if !b.IsPlayerUnit(id) {
				return fmt.Errorf("%w: %q is an enemy", ErrWrongTargetSide, id)
			}
		default:
			if b.IsPlayerUnit(id) {
				return fmt.Errorf("%w: %q is an ally", ErrWrongTargetSide, id)
			}
		}
	}
	return nil
}

// canUse reports whether u may queue abilityID, either unlocked on the unit
// or granted by a Set Djinn.
func (b *BattleState) canUse(u *Unit, abilityID string) bool {
	if u.HasUnlocked(abilityID) {
		return true
	}
	for _, d := range b.SetDjinn() {
		if slices.Contains(d.GrantsAbilities, abilityID) {
			return true
		}
	}
	return false
}

// ClearAction empties a unit's slot.
func ClearAction(b *BattleState, unitID string) (*BattleState, error) {
	if b.Phase != PhasePlanning {
		return b, fmt.Errorf("%w: phase is %s", ErrWrongPhase, b.Phase)
	}
	slot := b.slotOf(unitID)
	if slot < 0 {
		return b, fmt.Errorf("%w: %q", ErrUnknownUnit, unitID)
	}
	nb := b.clone()
	nb.QueuedActions[slot] = nil
	nb.CurrentQueueIndex = slot
	return nb, nil
}

// QueueDjinn adds an equipped Set Djinn to this round's activation list.
func QueueDjinn(b *BattleState, djinnID string) (*BattleState, error) {
	if b.Phase != PhasePlanning {
		return b, fmt.Errorf("%w: phase is %s", ErrWrongPhase, b.Phase)
	}
	if slices.Contains(b.QueuedDjinn, djinnID) {
		return b, fmt.Errorf("%w: %q", ErrDjinnAlreadyQueued, djinnID)
	}
	if !b.PlayerTeam.IsEquipped(djinnID) {
		return b, fmt.Errorf("%w: %q", ErrDjinnNotEquipped, djinnID)
	}
	if tr := b.PlayerTeam.DjinnTrackers[djinnID]; tr.State != DjinnSet {
		return b, fmt.Errorf("%w: %q is %s", ErrDjinnNotSet, djinnID, tr.State)
	}
	nb := b.clone()
	nb.QueuedDjinn = append(nb.QueuedDjinn, djinnID)
	return nb, nil
}

// UnqueueDjinn removes a Djinn from this round's activation list. Removing
// a Djinn that is not queued is a no-op.
func UnqueueDjinn(b *BattleState, djinnID string) (*BattleState, error) {
	if b.Phase != PhasePlanning {
		return b, fmt.Errorf("%w: phase is %s", ErrWrongPhase, b.Phase)
	}
	i := slices.Index(b.QueuedDjinn, djinnID)
	if i < 0 {
		return b, nil
	}
	nb := b.clone()
	nb.QueuedDjinn = slices.Delete(nb.QueuedDjinn, i, i+1)
	return nb, nil
}

// ActiveSlotUnitIDs returns the IDs of live player units, in slot order.
func ActiveSlotUnitIDs(b *BattleState) []string {
	var ids []string
	for _, u := range b.PlayerTeam.Units {
		if !u.IsKO() {
			ids = append(ids, u.ID)
		}
	}
	return ids
}

// SelectSlot moves the planning cursor to slot i if it belongs to a live unit.
func SelectSlot(b *BattleState, i int) (*BattleState, error) {
	if b.Phase != PhasePlanning {
		return b, fmt.Errorf("%w: phase is %s", ErrWrongPhase, b.Phase)
	}
	if i < 0 || i >= len(b.PlayerTeam.Units) {
		return b, fmt.Errorf("%w: slot %d", ErrUnknownUnit, i)
	}
	if b.PlayerTeam.Units[i].IsKO() {
		return b, fmt.Errorf("%w: slot %d", ErrUnitKO, i)
	}
	nb := b.clone()
	nb.CurrentQueueIndex = i
	return nb, nil
}

// NextSlot advances the cursor to the next live unit, wrapping around.
func NextSlot(b *BattleState) *BattleState {
	return b.stepSlot(1)
}

// PrevSlot moves the cursor to the previous live unit, wrapping around.
func PrevSlot(b *BattleState) *BattleState {
	return b.stepSlot(-1)
}

func (b *BattleState) stepSlot(dir int) *BattleState {
	n := len(b.PlayerTeam.Units)
	if n == 0 || b.Phase != PhasePlanning {
		return b
	}
	i := b.CurrentQueueIndex
	for range n {
		i = ((i+dir)%n + n) % n
		if !b.PlayerTeam.Units[i].IsKO() {
			nb := b.clone()
			nb.CurrentQueueIndex = i
			return nb
		}
	}
	return b
}

// firstOpenSlot returns the first live, unfilled slot at or after from,
// wrapping around. If every live slot is filled it returns from.
func (b *BattleState) firstOpenSlot(from int) int {
	n := len(b.PlayerTeam.Units)
	for k := range n {
		i := (from + k) % n
		if !b.PlayerTeam.Units[i].IsKO() && b.QueuedActions[i] == nil {
			return i
		}
	}
	return from
}

// PlannedManaCost sums the mana cost of every queued action.
func PlannedManaCost(b *BattleState) int {
	total := 0
	for _, a := range b.QueuedActions {
		if a != nil {
			total += a.ManaCost
		}
	}
	return total
}

// IsQueueComplete reports whether every live player unit has an action.
func IsQueueComplete(b *BattleState) bool {
	for i, u := range b.PlayerTeam.Units {
		if !u.IsKO() && b.QueuedActions[i] == nil {
			return false
		}
	}
	return true
}

// ValidateQueueForExecution checks that b may be passed to ExecuteRound.
func ValidateQueueForExecution(b *BattleState) error {
	if b.Phase != PhasePlanning {
		return fmt.Errorf("%w: phase is %s", ErrWrongPhase, b.Phase)
	}
	if !IsQueueComplete(b) {
		var missing []string
		for i, u := range b.PlayerTeam.Units {
			if !u.IsKO() && b.QueuedActions[i] == nil {
				missing = append(missing, u.ID)
			}
		}
		return fmt.Errorf("%w: no action for %v", ErrQueueIncomplete, missing)
	}
	if cost := PlannedManaCost(b); cost > b.RemainingMana {
		return fmt.Errorf("%w: %d queued, %d available", ErrManaBudget, cost, b.RemainingMana)
	}
	return nil
}

// FillDefaultActions queues a basic attack on the first live enemy for
// every live player unit without an action.
func FillDefaultActions(b *BattleState) (*BattleState, error) {
	if b.Phase != PhasePlanning {
		return b, fmt.Errorf("%w: phase is %s", ErrWrongPhase, b.Phase)
	}
	enemies := liveUnits(b.Enemies)
	if len(enemies) == 0 {
		return b, nil
	}
	target := enemies[0].ID
	cur := b
	for i, u := range b.PlayerTeam.Units {
		if u.IsKO() || b.QueuedActions[i] != nil {
			continue
		}
		next, err := QueueAction(cur, u.ID, "", []string{target}, nil)
		if err != nil {
			return b, err
		}
		cur = next
	}
	return cur, nil
}
