package battle

import (
	"sort"

	"github.com/peterkuimelis/vale/internal/log"
)

// RecoveryRounds returns how long each Djinn in a summon of n stays in
// Recovery: one round longer than the number summoned together.
func RecoveryRounds(n int) int {
	return n + 1
}

// activateDjinn moves queued Djinn to Standby, collects their round boost
// and summons them together.
func (r *round) activateDjinn() {
	if len(r.b.QueuedDjinn) == 0 {
		return
	}
	team := &r.b.PlayerTeam
	var ids []string
	for _, id := range r.b.QueuedDjinn {
		d, ok := team.Djinn(id)
		tr := team.DjinnTrackers[id]
		if !ok || tr.State != DjinnSet {
			continue
		}
		tr.State = DjinnStandby
		tr.LastActivatedRound = r.n
		team.DjinnTrackers[id] = tr
		r.boost = r.boost.Add(d.Boost)
		ids = append(ids, id)
		r.emit(log.NewDjinnActivatedEvent(r.n, id, d.Element.String()))
	}
	if len(ids) > 0 {
		r.summon(ids)
	}
}

// summon strikes the enemy side and sends every participating Djinn into
// Recovery. Three Djinn hit every live enemy; fewer hit one at random.
func (r *round) summon(ids []string) {
	n := len(ids)
	recovery := RecoveryRounds(n)
	for _, id := range ids {
		tr := r.b.PlayerTeam.DjinnTrackers[id]
		tr.State = DjinnRecovery
		r.b.PlayerTeam.DjinnTrackers[id] = tr
		r.b.DjinnRecoveryTimers[id] = recovery
	}

	live := liveUnits(r.b.Enemies)
	if len(live) == 0 {
		r.emit(log.NewDjinnSummonEvent(r.n, ids, nil, 0, recovery))
		return
	}
	targets := live
	if n < 3 {
		targets = []*Unit{live[r.actions.Intn(len(live))]}
	}
	dmg := summonDamage[min(n, 3)]
	var targetIDs []string
	for _, t := range targets {
		targetIDs = append(targetIDs, t.ID)
	}
	r.emit(log.NewDjinnSummonEvent(r.n, ids, targetIDs, dmg, recovery))
	for _, t := range targets {
		r.damage(djinnSource, t, "", dmg, false)
	}
}

// djinnSource is the event source for summon damage.
const djinnSource = "djinn-summon"

// tickDjinnRecovery counts down every recovering Djinn in ID order. A Djinn
// whose timer reaches zero returns to Set.
func (r *round) tickDjinnRecovery() {
	ids := make([]string, 0, len(r.b.DjinnRecoveryTimers))
	for id := range r.b.DjinnRecoveryTimers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		left := r.b.DjinnRecoveryTimers[id] - 1
		if left > 0 {
			r.b.DjinnRecoveryTimers[id] = left
			continue
		}
		delete(r.b.DjinnRecoveryTimers, id)
		tr := r.b.PlayerTeam.DjinnTrackers[id]
		tr.DjinnID = id
		tr.State = DjinnSet
		r.b.PlayerTeam.DjinnTrackers[id] = tr
		r.emit(log.NewDjinnRecoveredEvent(r.n, id))
	}
}
