package battle

import (
	"testing"

	"github.com/peterkuimelis/vale/internal/log"
	"github.com/peterkuimelis/vale/internal/rng"
)

type unitMod func(*Unit)

// mkUnit builds a level-1 player unit with 100 HP.
func mkUnit(id string, mods ...unitMod) Unit {
	u := Unit{
		ID:               id,
		Name:             id,
		Element:          Venus,
		Level:            1,
		BaseStats:        Stats{HP: 100, ATK: 20, DEF: 10, MAG: 10, SPD: 10},
		CurrentHP:        100,
		ManaContribution: 1,
	}
	for _, m := range mods {
		m(&u)
	}
	return u
}

// mkEnemy builds a slow, weak enemy with a large HP pool.
func mkEnemy(id string, mods ...unitMod) Unit {
	u := Unit{
		ID:        id,
		Name:      id,
		Element:   Neutral,
		Level:     1,
		BaseStats: Stats{HP: 1_000_000, ATK: 5, DEF: 0, MAG: 0, SPD: 1},
		CurrentHP: 1_000_000,
	}
	for _, m := range mods {
		m(&u)
	}
	return u
}

func withSPD(n int) unitMod { return func(u *Unit) { u.BaseStats.SPD = n } }

func withATK(n int) unitMod { return func(u *Unit) { u.BaseStats.ATK = n } }

func withHP(cur, maxHP int) unitMod {
	return func(u *Unit) {
		u.BaseStats.HP = maxHP
		u.CurrentHP = cur
	}
}

func withMana(n int) unitMod { return func(u *Unit) { u.ManaContribution = n } }

func withElement(e Element) unitMod { return func(u *Unit) { u.Element = e } }

func withStatus(st StatusEffect) unitMod {
	return func(u *Unit) { u.StatusEffects = append(u.StatusEffects, st) }
}

func withAbility(ab Ability) unitMod {
	return func(u *Unit) {
		u.Abilities = append(u.Abilities, ab)
		u.UnlockedAbilities = append(u.UnlockedAbilities, ab.ID)
	}
}

var strike = Ability{ID: "strike", Name: "Strike", Kind: KindPhysical, BasePower: 10, Targets: TargetSingleEnemy, ManaCost: 1}

var flare = Ability{ID: "flare", Name: "Flare", Kind: KindPsynergy, Element: Mars, BasePower: 25, Targets: TargetAllEnemies, ManaCost: 3}

var cure = Ability{ID: "cure", Name: "Cure", Kind: KindHealing, Element: Mercury, BasePower: 30, Targets: TargetSingleAlly, ManaCost: 2}

func mkDjinn(id string, el Element) Djinn {
	return Djinn{ID: id, Name: id, Element: el, Boost: Stats{ATK: 2}}
}

func fourUnits(mods ...unitMod) []Unit {
	return []Unit{mkUnit("u1", mods...), mkUnit("u2", mods...), mkUnit("u3", mods...), mkUnit("u4", mods...)}
}

func newBattle(t *testing.T, team Team, enemies ...Unit) *BattleState {
	t.Helper()
	b, err := NewBattleState(team, enemies)
	if err != nil {
		t.Fatalf("NewBattleState: %v", err)
	}
	return b
}

func mustQueue(t *testing.T, b *BattleState, unitID string, ab *Ability, targets ...string) *BattleState {
	t.Helper()
	id := ""
	if ab != nil {
		id = ab.ID
	}
	nb, err := QueueAction(b, unitID, id, targets, ab)
	if err != nil {
		t.Fatalf("QueueAction(%s, %q): %v", unitID, id, err)
	}
	return nb
}

func mustQueueDjinn(t *testing.T, b *BattleState, djinnID string) *BattleState {
	t.Helper()
	nb, err := QueueDjinn(b, djinnID)
	if err != nil {
		t.Fatalf("QueueDjinn(%s): %v", djinnID, err)
	}
	return nb
}

func mustExecute(t *testing.T, b *BattleState, seed int64) (*BattleState, []log.BattleEvent) {
	t.Helper()
	nb, events, err := ExecuteRound(b, rng.MustNew(seed))
	if err != nil {
		t.Fatalf("ExecuteRound: %v", err)
	}
	t.Logf("round %d:\n%s", b.RoundNumber, log.FormatAll(events))
	return nb, events
}

// autoRound fills open slots with basic attacks and executes the round.
func autoRound(t *testing.T, b *BattleState, seed int64) (*BattleState, []log.BattleEvent) {
	t.Helper()
	b, err := FillDefaultActions(b)
	if err != nil {
		t.Fatalf("FillDefaultActions: %v", err)
	}
	return mustExecute(t, b, seed)
}
