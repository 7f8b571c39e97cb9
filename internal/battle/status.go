package battle

import (
	"math"

	"github.com/peterkuimelis/vale/internal/log"
)

const (
	poisonPercent     = 0.08
	burnPercent       = 0.10
	freezeBreakChance = 0.30
	paralyzeFail      = 0.25
)

// applyStatus adds st to u. An existing status of the same type is
// refreshed to the longer duration and takes the new magnitude.
func applyStatus(u *Unit, st StatusEffect) {
	for i := range u.StatusEffects {
		if u.StatusEffects[i].Type == st.Type {
			u.StatusEffects[i].Magnitude = st.Magnitude
			u.StatusEffects[i].Duration = max(u.StatusEffects[i].Duration, st.Duration)
			return
		}
	}
	u.StatusEffects = append(u.StatusEffects, st)
}

// tickStatuses runs end-of-round status effects for every live unit,
// players first, and decrements durations.
func (r *round) tickStatuses() {
	for _, side := range [][]Unit{r.b.PlayerTeam.Units, r.b.Enemies} {
		for i := range side {
			r.tickUnit(&side[i])
		}
	}
}

func (r *round) tickUnit(u *Unit) {
	if u.IsKO() || len(u.StatusEffects) == 0 {
		return
	}
	maxHP := u.MaxHP()
	for _, st := range u.StatusEffects {
		if u.IsKO() {
			break
		}
		switch st.Type {
		case StatusPoison, StatusBurn:
			pct := poisonPercent
			if st.Type == StatusBurn {
				pct = burnPercent
			}
			dmg := max(1, int(math.Floor(float64(maxHP)*pct)))
			u.CurrentHP = max(0, u.CurrentHP-dmg)
			r.emit(log.NewStatusTickEvent(r.n, u.ID, st.Type.String(), -dmg, u.CurrentHP))
			if u.IsKO() {
				r.knockOut(u)
			}
		case StatusRegen:
			amt := min(st.Magnitude, maxHP-u.CurrentHP)
			if amt > 0 {
				u.CurrentHP += amt
				r.emit(log.NewStatusTickEvent(r.n, u.ID, st.Type.String(), amt, u.CurrentHP))
			}
		}
	}
	if u.IsKO() {
		return
	}

	kept := u.StatusEffects[:0]
	for _, st := range u.StatusEffects {
		st.Duration--
		expired := st.Duration <= 0
		if !expired && st.Type == StatusFreeze && r.effects.Chance(freezeBreakChance) {
			expired = true
		}
		if expired {
			r.emit(log.NewStatusExpiredEvent(r.n, u.ID, st.Type.String()))
			continue
		}
		kept = append(kept, st)
	}
	u.StatusEffects = kept
}

// blocked returns the reason a unit's action is prevented, or "".
func (r *round) blocked(u *Unit) string {
	switch {
	case u.HasStatus(StatusFreeze):
		return "frozen"
	case u.HasStatus(StatusStun):
		return "stunned"
	case u.HasStatus(StatusParalyze) && r.effects.Chance(paralyzeFail):
		return "paralyzed"
	}
	return ""
}
