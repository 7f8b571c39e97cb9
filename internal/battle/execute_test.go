package battle

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/peterkuimelis/vale/internal/log"
	"github.com/peterkuimelis/vale/internal/rng"
)

// TestBasicAttacksGenerateMana: four units with contribution 2 basic-attack a
// huge enemy; each landed hit yields exactly one mana.
func TestBasicAttacksGenerateMana(t *testing.T) {
	b := newBattle(t, NewTeam(fourUnits(withMana(2))...), mkEnemy("e1"))
	for _, id := range []string{"u1", "u2", "u3", "u4"} {
		b = mustQueue(t, b, id, nil, "e1")
	}

	_, events := mustExecute(t, b, 42)

	mana := log.OfType(events, log.EventManaGenerated)
	if len(mana) != 4 {
		t.Fatalf("mana-generated events = %d, want 4", len(mana))
	}
	sum := 0
	for _, e := range mana {
		sum += e.Amount
		if e.NewTotal > b.MaxMana {
			t.Errorf("newTotal %d exceeds max %d", e.NewTotal, b.MaxMana)
		}
	}
	if sum != 4 {
		t.Errorf("mana amounts sum to %d, want 4", sum)
	}
}

func TestAbilitiesDoNotGenerateMana(t *testing.T) {
	units := fourUnits(withMana(2))
	units[0] = mkUnit("u1", withMana(3), withAbility(strike))
	b := newBattle(t, NewTeam(units...), mkEnemy("e1"))
	b = mustQueue(t, b, "u1", &strike, "e1")
	for _, id := range []string{"u2", "u3", "u4"} {
		b = mustQueue(t, b, id, nil, "e1")
	}

	_, events := mustExecute(t, b, 42)

	if i := log.IndexOf(events, log.EventManaGenerated, "u1"); i >= 0 {
		t.Errorf("ability user generated mana: %+v", events[i])
	}
	if got := len(log.OfType(events, log.EventManaGenerated)); got != 3 {
		t.Errorf("mana-generated events = %d, want 3", got)
	}
	for _, e := range log.OfType(events, log.EventHit) {
		if e.Source == "u1" && e.Ability != "strike" {
			t.Errorf("u1 hit without ability tag: %+v", e)
		}
	}
}

func TestFastUnitResolvesFirst(t *testing.T) {
	team := NewTeam(mkUnit("fast", withSPD(20)), mkUnit("slow", withSPD(10)))
	b := newBattle(t, team, mkEnemy("e1", withSPD(0)))
	b = mustQueue(t, b, "slow", nil, "e1")
	b = mustQueue(t, b, "fast", nil, "e1")

	nb, events := mustExecute(t, b, 7)

	fastMana := log.IndexOf(events, log.EventManaGenerated, "fast")
	slowAbility := log.IndexOf(events, log.EventAbility, "slow")
	if fastMana < 0 || slowAbility < 0 {
		t.Fatalf("missing events: fast mana %d, slow ability %d", fastMana, slowAbility)
	}
	if fastMana >= slowAbility {
		t.Errorf("fast mana event at %d not before slow ability event at %d", fastMana, slowAbility)
	}
	if want := []string{"fast", "slow", "e1"}; !reflect.DeepEqual(nb.TurnOrder, want) {
		t.Errorf("TurnOrder = %v, want %v", nb.TurnOrder, want)
	}
}

func TestEqualSpeedTieBreakIsSeeded(t *testing.T) {
	team := NewTeam(mkUnit("a"), mkUnit("b"), mkUnit("c"))
	b := newBattle(t, team, mkEnemy("e1"))

	orders := map[string]bool{}
	for seed := int64(1); seed <= 40; seed++ {
		first, _ := autoRound(t, b, seed)
		again, _ := autoRound(t, b, seed)
		if !reflect.DeepEqual(first.TurnOrder, again.TurnOrder) {
			t.Fatalf("seed %d: TurnOrder %v then %v", seed, first.TurnOrder, again.TurnOrder)
		}
		var key []string
		for _, id := range first.TurnOrder {
			if id != "e1" {
				key = append(key, id)
			}
		}
		if len(key) != 3 {
			t.Fatalf("seed %d: TurnOrder = %v", seed, first.TurnOrder)
		}
		orders[strings.Join(key, ",")] = true
	}
	if len(orders) < 3 {
		t.Errorf("40 seeds produced only %d orders of equal-speed units: %v", len(orders), orders)
	}
}

func TestFirstStrikeBootsActFirst(t *testing.T) {
	boots := &Item{ID: "hermes", Name: "Hermes Sandals", AlwaysFirst: true}
	team := NewTeam(mkUnit("fast", withSPD(50)), mkUnit("shod", withSPD(1), func(u *Unit) { u.Equipment.Boots = boots }))
	b := newBattle(t, team, mkEnemy("e1"))
	nb, _ := autoRound(t, b, 3)
	if len(nb.TurnOrder) != 3 {
		t.Fatalf("TurnOrder = %v, want 3 entries", nb.TurnOrder)
	}
	if nb.TurnOrder[0] != "shod" {
		t.Errorf("TurnOrder = %v, want shod first", nb.TurnOrder)
	}
}

func TestRoundReset(t *testing.T) {
	team := NewTeam(mkUnit("u1", withAbility(strike), withMana(2)), mkUnit("u2"))
	b := newBattle(t, team, mkEnemy("e1"))
	b = mustQueue(t, b, "u1", &strike, "e1")
	b = mustQueue(t, b, "u2", nil, "e1")

	nb, events := mustExecute(t, b, 11)

	if nb.Phase != PhasePlanning {
		t.Fatalf("phase = %s, want planning", nb.Phase)
	}
	if nb.RoundNumber != b.RoundNumber+1 {
		t.Errorf("round = %d, want %d", nb.RoundNumber, b.RoundNumber+1)
	}
	for i, a := range nb.QueuedActions {
		if a != nil {
			t.Errorf("slot %d not reset", i)
		}
	}
	if len(nb.QueuedDjinn) != 0 {
		t.Errorf("QueuedDjinn = %v", nb.QueuedDjinn)
	}
	if nb.RemainingMana != nb.MaxMana {
		t.Errorf("mana = %d/%d, want full", nb.RemainingMana, nb.MaxMana)
	}
	if nb.CurrentQueueIndex != 0 || nb.ExecutionIndex != 0 {
		t.Errorf("indexes = %d/%d, want 0/0", nb.CurrentQueueIndex, nb.ExecutionIndex)
	}
	order := log.OfType(events, log.EventTurnOrder)
	if len(order) != 1 || !reflect.DeepEqual(nb.TurnOrder, order[0].Targets) {
		t.Errorf("TurnOrder = %v, want the round's order %v", nb.TurnOrder, order)
	}
	if len(log.OfType(events, log.EventBattleEnd)) != 0 {
		t.Error("unexpected battle-end event")
	}
}

func TestExecuteRoundDoesNotModifyInput(t *testing.T) {
	b := newBattle(t, NewTeam(fourUnits()...), mkEnemy("e1"))
	b, _ = FillDefaultActions(b)
	before := b.Clone()
	mustExecute(t, b, 5)
	if !reflect.DeepEqual(before, b) {
		t.Error("ExecuteRound modified its input")
	}
}

func TestExecuteRoundFailureLeavesState(t *testing.T) {
	b := newBattle(t, NewTeam(mkUnit("u1"), mkUnit("u2")), mkEnemy("e1"))
	b = mustQueue(t, b, "u1", nil, "e1")
	r := rng.MustNew(9)
	got, events, err := ExecuteRound(b, r)
	if !errors.Is(err, ErrQueueIncomplete) {
		t.Fatalf("error = %v, want ErrQueueIncomplete", err)
	}
	if got != b || events != nil {
		t.Error("failed ExecuteRound returned a new state or events")
	}
	if r.DrawCount() != 0 {
		t.Errorf("failed ExecuteRound drew %d values", r.DrawCount())
	}
}

func TestDefeatTakesPrecedenceOnMutualWipe(t *testing.T) {
	poisoned := mkUnit("u1", withHP(1, 100), withStatus(StatusEffect{Type: StatusPoison, Duration: 3}))
	b := newBattle(t, NewTeam(poisoned), mkEnemy("e1", withHP(1, 50), withSPD(0)))
	b = mustQueue(t, b, "u1", nil, "e1")

	nb, events := mustExecute(t, b, 1)

	if nb.Phase != PhaseDefeat || nb.Outcome != OutcomePlayerDefeat {
		t.Fatalf("phase = %s (%s), want defeat", nb.Phase, nb.Outcome)
	}
	end := log.OfType(events, log.EventBattleEnd)
	if len(end) != 1 || end[0].Result != "PLAYER_DEFEAT" {
		t.Errorf("battle-end events = %+v", end)
	}
	if events[len(events)-1].Type != log.EventBattleEnd {
		t.Error("battle-end is not the last event")
	}
	if _, err := QueueAction(nb, "u1", "", []string{"e1"}, nil); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("queueing after defeat error = %v", err)
	}
}

func TestVictory(t *testing.T) {
	b := newBattle(t, NewTeam(mkUnit("u1")), mkEnemy("e1", withHP(1, 50), withSPD(0)))
	nb, events := autoRound(t, b, 1)
	if nb.Phase != PhaseVictory {
		t.Fatalf("phase = %s, want victory", nb.Phase)
	}
	if last := events[len(events)-1]; last.Type != log.EventBattleEnd || last.Result != "PLAYER_VICTORY" {
		t.Errorf("last event = %+v", last)
	}
	if _, _, err := ExecuteRound(nb, rng.MustNew(1)); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("ExecuteRound after victory error = %v", err)
	}
}

// TestKOUnitDoesNotAct: the fast player kills e1 before its turn; e1 is
// skipped and the second attacker retargets to e2.
func TestKOUnitDoesNotAct(t *testing.T) {
	team := NewTeam(mkUnit("u1", withSPD(30)), mkUnit("u2", withSPD(20)))
	b := newBattle(t, team, mkEnemy("e1", withHP(1, 10), withSPD(10)), mkEnemy("e2", withSPD(5)))
	b = mustQueue(t, b, "u1", nil, "e1")
	b = mustQueue(t, b, "u2", nil, "e1")

	nb, events := mustExecute(t, b, 3)

	if e1, _ := nb.Unit("e1"); !e1.IsKO() {
		t.Fatal("e1 should be KO'd")
	}
	skipped := log.OfType(events, log.EventActionSkipped)
	if len(skipped) != 1 || skipped[0].Source != "e1" || skipped[0].Result != "ko" {
		t.Errorf("skipped events = %+v", skipped)
	}
	if i := log.IndexOf(events, log.EventAbility, "e1"); i >= 0 {
		t.Errorf("KO'd unit acted: %+v", events[i])
	}
	var retargeted bool
	for _, e := range log.OfType(events, log.EventHit) {
		if e.Source == "u2" && e.Target == "e2" {
			retargeted = true
		}
	}
	if !retargeted {
		t.Error("u2 did not retarget to e2")
	}
	if len(log.OfType(events, log.EventKO)) != 1 {
		t.Errorf("KO events = %d, want 1", len(log.OfType(events, log.EventKO)))
	}
}

func TestHealingSkipsKOAllies(t *testing.T) {
	healer := mkUnit("healer", withAbility(cure), withMana(2), withSPD(30))
	down := mkUnit("down", withHP(0, 100))
	hurt := mkUnit("hurt", withHP(40, 100))
	b := newBattle(t, NewTeam(healer, down, hurt), mkEnemy("e1", withSPD(0)))
	b = mustQueue(t, b, "healer", &cure, "down")
	b = mustQueue(t, b, "hurt", nil, "e1")

	nb, events := mustExecute(t, b, 8)

	if d, _ := nb.Unit("down"); d.CurrentHP != 0 {
		t.Errorf("KO'd ally healed to %d", d.CurrentHP)
	}
	heals := log.OfType(events, log.EventHeal)
	if len(heals) != 1 || heals[0].Target == "down" {
		t.Fatalf("heal events = %+v", heals)
	}
	if heals[0].NewTotal > 100 {
		t.Errorf("healed above max: %d", heals[0].NewTotal)
	}
}

func TestMultiTargetPsynergy(t *testing.T) {
	caster := mkUnit("u1", withAbility(flare), withMana(3))
	b := newBattle(t, NewTeam(caster), mkEnemy("e1", withElement(Venus)), mkEnemy("e2", withElement(Mercury)))
	b = mustQueue(t, b, "u1", &flare, "e1")

	_, events := mustExecute(t, b, 21)

	var e1Dmg, e2Dmg int
	for _, e := range log.OfType(events, log.EventHit) {
		if e.Source != "u1" {
			continue
		}
		switch e.Target {
		case "e1":
			e1Dmg = e.Amount
		case "e2":
			e2Dmg = e.Amount
		}
	}
	if e1Dmg == 0 || e2Dmg == 0 {
		t.Fatalf("flare did not hit both enemies: %d, %d", e1Dmg, e2Dmg)
	}
	// Mars beats Venus and is resisted by Mercury.
	if e1Dmg <= e2Dmg {
		t.Errorf("advantaged damage %d not above resisted damage %d", e1Dmg, e2Dmg)
	}
}

func TestStatusTickAndExpiry(t *testing.T) {
	enemy := mkEnemy("e1", withHP(1000, 1000), withStatus(StatusEffect{Type: StatusBurn, Duration: 1}))
	b := newBattle(t, NewTeam(mkUnit("u1")), enemy)

	nb, events := autoRound(t, b, 4)

	ticks := log.OfType(events, log.EventStatusTick)
	if len(ticks) != 1 || ticks[0].Amount != -100 {
		t.Fatalf("status ticks = %+v", ticks)
	}
	if exp := log.OfType(events, log.EventStatusExpired); len(exp) != 1 || exp[0].Status != "burn" {
		t.Errorf("status-expired events = %+v", exp)
	}
	if e, _ := nb.Unit("e1"); e.HasStatus(StatusBurn) {
		t.Error("burn not removed")
	}
	// Ticks follow every action.
	lastAction := 0
	for i, e := range events {
		if e.Type == log.EventAbility {
			lastAction = i
		}
	}
	if log.IndexOf(events, log.EventStatusTick, "") < lastAction {
		t.Error("status tick happened before an action")
	}
}

func TestStunnedUnitSkips(t *testing.T) {
	stunned := mkUnit("u1", withStatus(StatusEffect{Type: StatusStun, Duration: 1}))
	b := newBattle(t, NewTeam(stunned), mkEnemy("e1"))
	nb, events := autoRound(t, b, 2)

	skipped := log.OfType(events, log.EventActionSkipped)
	if len(skipped) != 1 || skipped[0].Result != "stunned" {
		t.Fatalf("skipped = %+v", skipped)
	}
	if u, _ := nb.Unit("u1"); u.HasStatus(StatusStun) {
		t.Error("stun outlived its duration")
	}
}

func TestBuffAppliesStatus(t *testing.T) {
	rally := Ability{
		ID: "rally", Name: "Rally", Kind: KindBuff, Targets: TargetAllAllies, ManaCost: 1,
		Status: &StatusEffect{Type: StatusAtkUp, Magnitude: 25, Duration: 3},
	}
	b := newBattle(t, NewTeam(mkUnit("u1", withAbility(rally)), mkUnit("u2")), mkEnemy("e1"))
	b = mustQueue(t, b, "u1", &rally, "u1")
	b = mustQueue(t, b, "u2", nil, "e1")

	nb, events := mustExecute(t, b, 6)

	if got := len(log.OfType(events, log.EventStatusApplied)); got != 2 {
		t.Errorf("status-applied events = %d, want 2", got)
	}
	u2, _ := nb.Unit("u2")
	if !u2.HasStatus(StatusAtkUp) {
		t.Error("u2 missing atk-up")
	}
}

func TestDeterministicReplay(t *testing.T) {
	team := NewTeam(fourUnits(withAbility(strike), withMana(2))...)
	enemies := []Unit{mkEnemy("e1", withHP(300, 300), withATK(30)), mkEnemy("e2", withHP(300, 300), withSPD(10))}

	run := func() (*BattleState, []log.BattleEvent) {
		b := newBattle(t, team, enemies...)
		var all []log.BattleEvent
		for round := int64(1); round <= 10 && !b.IsOver(); round++ {
			if !b.PlayerTeam.Units[0].IsKO() {
				b = mustQueue(t, b, "u1", &strike, b.opponents("u1")[0].ID)
			}
			var events []log.BattleEvent
			b, events = autoRound(t, b, round*97)
			all = append(all, events...)
		}
		return b, all
	}

	s1, e1 := run()
	s2, e2 := run()
	if !reflect.DeepEqual(s1, s2) {
		t.Error("final states differ")
	}
	if !reflect.DeepEqual(e1, e2) {
		t.Error("event logs differ")
	}
}
