package battle

import (
	"math"

	"github.com/peterkuimelis/vale/internal/rng"
)

// Djinn compatibility bonuses applied per Set Djinn.
var (
	sameElementBonus    = Stats{ATK: 4, DEF: 3}
	counterElementBonus = Stats{ATK: -3, DEF: -2}
	neutralElementBonus = Stats{ATK: 2, DEF: 2}
)

// Summon damage by number of Djinn summoned together.
var summonDamage = map[int]int{1: 30, 2: 80, 3: 150}

const (
	critBase   = 0.05
	critCap    = 0.35
	critMult   = 2.0
	evasionCap = 0.40
	minHit     = 0.05
	varianceLo = 0.9
	varianceHi = 0.2 // width of the variance band
)

// djinnBonus returns the stat change Set Djinn give a unit of element el.
func djinnBonus(el Element, set []Djinn) Stats {
	var s Stats
	for _, d := range set {
		switch {
		case d.Element == el:
			s = s.Add(sameElementBonus)
		case counter[el] == d.Element:
			s = s.Add(counterElementBonus)
		default:
			s = s.Add(neutralElementBonus)
		}
	}
	return s
}

// EffectiveStats returns the stats a unit fights with: base and growth,
// equipment, Set Djinn (player units only) and status modifiers.
func EffectiveStats(b *BattleState, u *Unit) Stats {
	return b.effectiveStats(u, Stats{})
}

func (b *BattleState) effectiveStats(u *Unit, boost Stats) Stats {
	lvl := u.Level
	if lvl < 1 {
		lvl = 1
	}
	s := u.BaseStats.Add(u.GrowthRates.Scale(lvl - 1)).Add(u.Equipment.Bonus())
	if b.IsPlayerUnit(u.ID) {
		s = s.Add(djinnBonus(u.Element, b.SetDjinn())).Add(boost)
	}
	for _, st := range u.StatusEffects {
		switch st.Type {
		case StatusAtkUp:
			s.ATK = s.ATK * (100 + st.Magnitude) / 100
		case StatusAtkDown:
			s.ATK = s.ATK * (100 - st.Magnitude) / 100
		case StatusDefUp:
			s.DEF = s.DEF * (100 + st.Magnitude) / 100
		case StatusDefDown:
			s.DEF = s.DEF * (100 - st.Magnitude) / 100
		case StatusSpdUp:
			s.SPD = s.SPD * (100 + st.Magnitude) / 100
		case StatusSpdDown:
			s.SPD = s.SPD * (100 - st.Magnitude) / 100
		}
	}
	s.HP = u.MaxHP()
	return s.clampNonNegative()
}

func variance(r *rng.PRNG) float64 {
	return varianceLo + r.Next()*varianceHi
}

// PhysicalDamage is max(1, ⌊(power + ATK − DEF/2) · mult⌋).
func PhysicalDamage(power, atk, def int, mult float64) int {
	raw := (float64(power) + float64(atk) - float64(def)*0.5) * mult
	return max(1, int(math.Floor(raw)))
}

// PsynergyDamage is max(1, ⌊(power + MAG − 0.3·DEF) · elem · mult⌋).
func PsynergyDamage(power, mag, def int, elem, mult float64) int {
	raw := (float64(power) + float64(mag) - float64(def)*0.3) * elem * mult
	return max(1, int(math.Floor(raw)))
}

// HealAmount is max(1, ⌊(power + MAG) · mult⌋).
func HealAmount(power, mag int, mult float64) int {
	return max(1, int(math.Floor(float64(power+mag)*mult)))
}

// CritChance grows with speed and is capped.
func CritChance(spd int) float64 {
	return math.Min(critBase+math.Sqrt(float64(spd))/200, critCap)
}

// Evasion is the chance a defender avoids an attack before accuracy.
func Evasion(atkSPD, defSPD, bootsEvasion int) float64 {
	ev := float64(bootsEvasion)/100 + float64(defSPD-atkSPD)*0.01
	return math.Max(0, math.Min(ev, evasionCap))
}

// HitChance combines accuracy and evasion. A perfectly accurate attack
// against a defender with no evasion always lands.
func HitChance(accuracy, evasion float64) float64 {
	if accuracy <= 0 {
		accuracy = 1
	}
	h := accuracy * (1 - evasion)
	if h >= 1 {
		return 1
	}
	return math.Max(h, minHit)
}

func bootsEvasion(u *Unit) int {
	if u.Equipment.Boots == nil {
		return 0
	}
	return u.Equipment.Boots.Evasion
}

func alwaysFirst(u *Unit) bool {
	for _, it := range u.Equipment.items() {
		if it != nil && it.AlwaysFirst {
			return true
		}
	}
	return false
}
