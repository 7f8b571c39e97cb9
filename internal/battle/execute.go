package battle

import (
	"fmt"

	"github.com/peterkuimelis/vale/internal/log"
	"github.com/peterkuimelis/vale/internal/rng"
)

// Sub-stream labels derived from each round's base draw.
const (
	streamActions = "actions"
	streamEffects = "effects"
	streamAI      = "ai"
)

// blindAccuracy scales accuracy of physical attacks by blinded units.
const blindAccuracy = 0.5

// round is the working context of one ExecuteRound call.
type round struct {
	b       *BattleState
	n       int
	actions *rng.PRNG // hit, crit, variance, summon targeting
	effects *rng.PRNG // status infliction, paralysis, freeze breaks
	boost   Stats     // Djinn activation boost for player units
	events  []log.BattleEvent
}

func (r *round) emit(e log.BattleEvent) {
	r.events = append(r.events, e)
}

// ExecuteRound resolves every queued action and enemy action for the
// current round. r supplies the round's randomness: one base draw seeds the
// independent sub-streams, then one tie-break key per acting unit. On
// error b is returned unchanged with no events.
func ExecuteRound(b *BattleState, r *rng.PRNG) (*BattleState, []log.BattleEvent, error) {
	if r == nil {
		return b, nil, ErrNoRNG
	}
	if err := ValidateQueueForExecution(b); err != nil {
		return b, nil, err
	}

	nb := b.clone()
	nb.setPhase(PhaseExecuting)
	nb.RemainingMana -= PlannedManaCost(nb)

	base := r.Int63()
	rd := &round{
		b:       nb,
		n:       nb.RoundNumber,
		actions: rng.MustNew(rng.DeriveSeed(base, streamActions)),
		effects: rng.MustNew(rng.DeriveSeed(base, streamEffects)),
	}
	ai := rng.MustNew(rng.DeriveSeed(base, streamAI))
	rd.emit(log.NewRoundStartEvent(rd.n))

	plan := map[string]*QueuedAction{}
	var actors []string
	for i, u := range nb.PlayerTeam.Units {
		if qa := nb.QueuedActions[i]; qa != nil && !u.IsKO() {
			plan[u.ID] = qa
			actors = append(actors, u.ID)
		}
	}
	for _, qa := range enemyPolicy(nb, ai) {
		plan[qa.UnitID] = qa
		actors = append(actors, qa.UnitID)
	}

	nb.TurnOrder = computeTurnOrder(nb, actors, r)
	rd.emit(log.NewTurnOrderEvent(rd.n, nb.TurnOrder))

	rd.activateDjinn()

	for i, id := range nb.TurnOrder {
		nb.CurrentActorIndex = i
		nb.ExecutionIndex = i
		rd.perform(plan[id])
	}
	nb.ExecutionIndex = len(nb.TurnOrder)

	rd.tickStatuses()
	rd.tickDjinnRecovery()

	switch CheckBattleEnd(nb) {
	case OutcomePlayerDefeat:
		nb.setPhase(PhaseDefeat)
		rd.emit(log.NewBattleEndEvent(rd.n, nb.Outcome.String()))
	case OutcomePlayerVictory:
		nb.setPhase(PhaseVictory)
		rd.emit(log.NewBattleEndEvent(rd.n, nb.Outcome.String()))
	default:
		nb.setPhase(PhasePlanning)
		nb.CurrentQueueIndex = nb.firstOpenSlot(0)
	}
	return nb, rd.events, nil
}

func (r *round) perform(qa *QueuedAction) {
	u := r.b.mustUnit(qa.UnitID)
	if u.IsKO() {
		r.emit(log.NewActionSkippedEvent(r.n, u.ID, "ko"))
		return
	}
	if reason := r.blocked(u); reason != "" {
		r.emit(log.NewActionSkippedEvent(r.n, u.ID, reason))
		return
	}
	targets := r.resolveTargets(u, qa)
	if len(targets) == 0 {
		r.emit(log.NewActionSkippedEvent(r.n, u.ID, "no-targets"))
		return
	}

	if qa.IsBasicAttack() {
		r.emit(log.NewAbilityEvent(r.n, u.ID, "", "Attack", ids(targets)))
		r.basicAttack(u, targets[0])
		return
	}

	ab := qa.Ability
	if ab == nil {
		ab = u.AbilityByID(qa.AbilityID)
	}
	if ab == nil {
		panic(fmt.Sprintf("battle: no definition for queued ability %q", qa.AbilityID))
	}
	r.emit(log.NewAbilityEvent(r.n, u.ID, ab.ID, ab.Name, ids(targets)))
	for _, t := range targets {
		if t.IsKO() {
			continue
		}
		switch ab.Kind {
		case KindPhysical:
			if r.physical(u, t, ab.ID, ab.BasePower, ab.Accuracy) {
				r.inflict(u, t, ab)
			}
		case KindPsynergy:
			if r.psynergy(u, t, ab) {
				r.inflict(u, t, ab)
			}
		case KindHealing:
			r.heal(u, t, ab)
			r.inflict(u, t, ab)
		case KindBuff:
			r.inflict(u, t, ab)
		case KindDebuff:
			if r.roll(u, t, ab.Accuracy, false) {
				r.inflict(u, t, ab)
			} else {
				r.emit(log.NewMissEvent(r.n, u.ID, t.ID, ab.ID))
			}
		}
	}
}

// resolveTargets drops KO'd targets and retargets when none remain:
// single-target actions fall to the first live unit on the intended side,
// multi-target actions cover every live unit on it.
func (r *round) resolveTargets(u *Unit, qa *QueuedAction) []*Unit {
	var ab *Ability
	if !qa.IsBasicAttack() {
		ab = qa.Ability
	}
	if ab != nil && ab.Targets == TargetSelf {
		return []*Unit{u}
	}
	side := r.b.opponents(u.ID)
	if aimsAtAllies(ab) {
		side = r.b.allies(u.ID)
	}
	if ab != nil && ab.Targets.Multi() {
		return side
	}
	for _, id := range qa.TargetIDs {
		for _, t := range side {
			if t.ID == id {
				return []*Unit{t}
			}
		}
	}
	if len(side) == 0 {
		return nil
	}
	return side[:1]
}

// roll decides whether an attack lands. It always consumes one draw.
func (r *round) roll(att, def *Unit, accuracy float64, physical bool) bool {
	if accuracy <= 0 {
		accuracy = 1
	}
	if physical && att.HasStatus(StatusBlind) {
		accuracy *= blindAccuracy
	}
	as := r.b.effectiveStats(att, r.boost)
	ds := r.b.effectiveStats(def, r.boost)
	chance := HitChance(accuracy, Evasion(as.SPD, ds.SPD, bootsEvasion(def)))
	return r.actions.Next() < chance
}

func (r *round) basicAttack(u, t *Unit) {
	if !r.physical(u, t, "", 0, 1) {
		return
	}
	if !r.b.IsPlayerUnit(u.ID) {
		return
	}
	r.b.RemainingMana = min(r.b.RemainingMana+1, r.b.MaxMana)
	r.emit(log.NewManaGeneratedEvent(r.n, u.ID, 1, r.b.RemainingMana))
}

// physical resolves one physical strike and reports whether it landed.
func (r *round) physical(u, t *Unit, abilityID string, power int, accuracy float64) bool {
	if !r.roll(u, t, accuracy, true) {
		r.emit(log.NewMissEvent(r.n, u.ID, t.ID, abilityID))
		return false
	}
	as := r.b.effectiveStats(u, r.boost)
	ds := r.b.effectiveStats(t, r.boost)
	crit := r.actions.Chance(CritChance(as.SPD))
	m := variance(r.actions)
	if crit {
		m *= critMult
	}
	r.damage(u.ID, t, abilityID, PhysicalDamage(power, as.ATK, ds.DEF, m), crit)
	return true
}

func (r *round) psynergy(u, t *Unit, ab *Ability) bool {
	if !r.roll(u, t, ab.Accuracy, false) {
		r.emit(log.NewMissEvent(r.n, u.ID, t.ID, ab.ID))
		return false
	}
	as := r.b.effectiveStats(u, r.boost)
	ds := r.b.effectiveStats(t, r.boost)
	m := variance(r.actions)
	dmg := PsynergyDamage(ab.BasePower, as.MAG, ds.DEF, Advantage(ab.Element, t.Element), m)
	r.damage(u.ID, t, ab.ID, dmg, false)
	return true
}

func (r *round) heal(u, t *Unit, ab *Ability) {
	as := r.b.effectiveStats(u, r.boost)
	amt := min(HealAmount(ab.BasePower, as.MAG, variance(r.actions)), t.MaxHP()-t.CurrentHP)
	amt = max(amt, 0)
	t.CurrentHP += amt
	r.emit(log.NewHealEvent(r.n, u.ID, t.ID, ab.ID, amt, t.CurrentHP))
}

// inflict applies the ability's status to a live target.
func (r *round) inflict(u, t *Unit, ab *Ability) {
	if ab.Status == nil || t.IsKO() {
		return
	}
	if ab.StatusChance > 0 && ab.StatusChance < 1 && !r.effects.Chance(ab.StatusChance) {
		return
	}
	applyStatus(t, *ab.Status)
	r.emit(log.NewStatusAppliedEvent(r.n, u.ID, t.ID, ab.Status.Type.String(), ab.Status.Duration))
}

func (r *round) damage(source string, t *Unit, abilityID string, dmg int, crit bool) {
	t.CurrentHP = max(0, t.CurrentHP-dmg)
	r.emit(log.NewHitEvent(r.n, source, t.ID, abilityID, dmg, t.CurrentHP, crit))
	if t.IsKO() {
		r.knockOut(t)
	}
}

func (r *round) knockOut(t *Unit) {
	t.CurrentHP = 0
	t.StatusEffects = nil
	r.emit(log.NewKOEvent(r.n, t.ID))
}
