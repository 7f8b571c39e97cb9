package battle

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestQueueActionRejections(t *testing.T) {
	focus := Ability{ID: "focus", Name: "Focus", Kind: KindBuff, Targets: TargetSelf}
	team := NewTeam(
		mkUnit("u1", withAbility(strike), withAbility(cure), withAbility(focus), withMana(3)),
		mkUnit("u2", withHP(0, 100)),
		mkUnit("u3"),
	)
	b := newBattle(t, team, mkEnemy("e1"))
	executing, err := Transition(b, PhaseExecuting)
	if err != nil {
		t.Fatal(err)
	}
	bogus := Ability{ID: "other", ManaCost: 1}
	costly := Ability{ID: "strike", ManaCost: 99}

	tests := []struct {
		name      string
		state     *BattleState
		unit      string
		abilityID string
		targets   []string
		ability   *Ability
		want      error
	}{
		{"wrong phase", executing, "u1", "", []string{"e1"}, nil, ErrWrongPhase},
		{"unknown unit", b, "nobody", "", []string{"e1"}, nil, ErrUnknownUnit},
		{"enemy unit", b, "e1", "", []string{"u1"}, nil, ErrNotPlayerUnit},
		{"ko unit", b, "u2", "", []string{"e1"}, nil, ErrUnitKO},
		{"empty targets", b, "u1", "", nil, nil, ErrEmptyTargets},
		{"unknown target", b, "u1", "", []string{"ghost"}, nil, ErrUnknownTarget},
		{"unknown ability", b, "u3", "missing", []string{"e1"}, nil, ErrUnknownAbility},
		{"mismatched definition", b, "u1", "strike", []string{"e1"}, &bogus, ErrUnknownAbility},
		{"locked ability", b, "u3", "strike", []string{"e1"}, &strike, ErrAbilityLocked},
		{"cost over budget", b, "u1", "strike", []string{"e1"}, &costly, ErrManaBudget},
		{"basic attack on ally", b, "u3", "", []string{"u1"}, nil, ErrWrongTargetSide},
		{"strike on self", b, "u1", "strike", []string{"u1"}, nil, ErrWrongTargetSide},
		{"cure on enemy", b, "u1", "cure", []string{"e1"}, nil, ErrWrongTargetSide},
		{"cure on mixed sides", b, "u1", "cure", []string{"u3", "e1"}, nil, ErrWrongTargetSide},
		{"self ability on ally", b, "u1", "focus", []string{"u3"}, nil, ErrWrongTargetSide},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.state.Clone()
			got, err := QueueAction(tt.state, tt.unit, tt.abilityID, tt.targets, tt.ability)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if got != tt.state {
				t.Error("failed QueueAction did not return its input")
			}
			if !reflect.DeepEqual(before, tt.state) {
				t.Error("failed QueueAction modified its input")
			}
		})
	}
}

func TestQueueActionAcceptsOwnSide(t *testing.T) {
	focus := Ability{ID: "focus", Name: "Focus", Kind: KindBuff, Targets: TargetSelf}
	team := NewTeam(mkUnit("u1", withAbility(cure), withAbility(focus), withMana(3)), mkUnit("u2"))
	b := newBattle(t, team, mkEnemy("e1"))

	if nb := mustQueue(t, b, "u1", &cure, "u2"); nb.QueuedActions[0].TargetIDs[0] != "u2" {
		t.Errorf("cure on ally = %+v", nb.QueuedActions[0])
	}
	if nb := mustQueue(t, b, "u1", &focus, "u1"); nb.QueuedActions[0].AbilityID != "focus" {
		t.Errorf("self ability = %+v", nb.QueuedActions[0])
	}
	mustQueue(t, b, "u2", nil, "e1")
}

func TestQueueActionReplacesSlotWithoutSpendingMana(t *testing.T) {
	b := newBattle(t, NewTeam(mkUnit("u1", withAbility(strike), withMana(3)), mkUnit("u2")), mkEnemy("e1"))

	b1 := mustQueue(t, b, "u1", &strike, "e1")
	if b1.RemainingMana != b.RemainingMana {
		t.Errorf("queueing spent mana: %d → %d", b.RemainingMana, b1.RemainingMana)
	}
	if b.QueuedActions[0] != nil {
		t.Error("QueueAction modified its input")
	}
	if got := b1.QueuedActions[0]; got == nil || got.AbilityID != "strike" || got.ManaCost != 1 {
		t.Fatalf("slot 0 = %+v", got)
	}
	if b1.CurrentQueueIndex != 1 {
		t.Errorf("cursor = %d, want 1", b1.CurrentQueueIndex)
	}

	b2 := mustQueue(t, b1, "u1", nil, "e1")
	if got := b2.QueuedActions[0]; !got.IsBasicAttack() || got.ManaCost != 0 {
		t.Errorf("re-queue did not replace slot: %+v", got)
	}
	if PlannedManaCost(b2) != 0 {
		t.Errorf("PlannedManaCost = %d, want 0", PlannedManaCost(b2))
	}
}

func TestQueueActionUsesKnownDefinition(t *testing.T) {
	b := newBattle(t, NewTeam(mkUnit("u1", withAbility(strike), withMana(2))), mkEnemy("e1"))
	nb, err := QueueAction(b, "u1", "strike", []string{"e1"}, nil)
	if err != nil {
		t.Fatalf("QueueAction: %v", err)
	}
	if nb.QueuedActions[0].Ability == nil || nb.QueuedActions[0].ManaCost != 1 {
		t.Errorf("queued action = %+v", nb.QueuedActions[0])
	}
}

func TestSetDjinnGrantsAbility(t *testing.T) {
	quake := Ability{ID: "quake", Name: "Quake", Kind: KindPsynergy, Element: Venus, BasePower: 20, Targets: TargetAllEnemies}
	d := mkDjinn("flint", Venus)
	d.GrantsAbilities = []string{"quake"}
	team := NewTeam(mkUnit("u1")).WithDjinn([]Djinn{d}, "flint")
	b := newBattle(t, team, mkEnemy("e1"))

	if _, err := QueueAction(b, "u1", "quake", []string{"e1"}, &quake); err != nil {
		t.Fatalf("Djinn-granted ability rejected: %v", err)
	}
}

func TestClearAction(t *testing.T) {
	b := newBattle(t, NewTeam(mkUnit("u1"), mkUnit("u2")), mkEnemy("e1"))
	b = mustQueue(t, b, "u1", nil, "e1")
	b = mustQueue(t, b, "u2", nil, "e1")
	nb, err := ClearAction(b, "u1")
	if err != nil {
		t.Fatalf("ClearAction: %v", err)
	}
	if nb.QueuedActions[0] != nil || b.QueuedActions[0] == nil {
		t.Error("ClearAction did not clear a copy of slot 0")
	}
	if nb.CurrentQueueIndex != 0 {
		t.Errorf("cursor = %d, want 0", nb.CurrentQueueIndex)
	}
	if _, err := ClearAction(b, "e1"); !errors.Is(err, ErrUnknownUnit) {
		t.Errorf("ClearAction(enemy) error = %v", err)
	}
}

func TestQueueDjinn(t *testing.T) {
	djinn := []Djinn{mkDjinn("flint", Venus), mkDjinn("forge", Mars), mkDjinn("fizz", Mercury)}
	team := NewTeam(mkUnit("u1")).WithDjinn(djinn, "flint", "forge")
	team.DjinnTrackers = map[string]DjinnTracker{"forge": {DjinnID: "forge", State: DjinnRecovery}}
	b := newBattle(t, team, mkEnemy("e1"))

	b1 := mustQueueDjinn(t, b, "flint")
	if len(b.QueuedDjinn) != 0 {
		t.Error("QueueDjinn modified its input")
	}
	if _, err := QueueDjinn(b1, "flint"); !errors.Is(err, ErrDjinnAlreadyQueued) {
		t.Errorf("double queue error = %v", err)
	}
	if _, err := QueueDjinn(b1, "fizz"); !errors.Is(err, ErrDjinnNotEquipped) {
		t.Errorf("unequipped error = %v", err)
	}
	if _, err := QueueDjinn(b1, "forge"); !errors.Is(err, ErrDjinnNotSet) {
		t.Errorf("recovering error = %v", err)
	}

	b2, err := UnqueueDjinn(b1, "flint")
	if err != nil {
		t.Fatalf("UnqueueDjinn: %v", err)
	}
	if len(b2.QueuedDjinn) != 0 || len(b1.QueuedDjinn) != 1 {
		t.Errorf("UnqueueDjinn: got %v, input %v", b2.QueuedDjinn, b1.QueuedDjinn)
	}
}

func TestSlotNavigationSkipsKO(t *testing.T) {
	b := newBattle(t, NewTeam(mkUnit("u1"), mkUnit("u2", withHP(0, 100)), mkUnit("u3")), mkEnemy("e1"))
	if got := ActiveSlotUnitIDs(b); !reflect.DeepEqual(got, []string{"u1", "u3"}) {
		t.Errorf("ActiveSlotUnitIDs = %v", got)
	}

	next := NextSlot(b)
	if next.CurrentQueueIndex != 2 {
		t.Errorf("NextSlot cursor = %d, want 2", next.CurrentQueueIndex)
	}
	if wrapped := NextSlot(next); wrapped.CurrentQueueIndex != 0 {
		t.Errorf("NextSlot wrap cursor = %d, want 0", wrapped.CurrentQueueIndex)
	}
	if prev := PrevSlot(b); prev.CurrentQueueIndex != 2 {
		t.Errorf("PrevSlot cursor = %d, want 2", prev.CurrentQueueIndex)
	}
	if _, err := SelectSlot(b, 1); !errors.Is(err, ErrUnitKO) {
		t.Errorf("SelectSlot(KO) error = %v", err)
	}
}

func TestFillDefaultActions(t *testing.T) {
	b := newBattle(t, NewTeam(mkUnit("u1", withAbility(strike)), mkUnit("u2"), mkUnit("u3", withHP(0, 100))),
		mkEnemy("e1", withHP(0, 10)), mkEnemy("e2"))
	b = mustQueue(t, b, "u1", &strike, "e2")

	nb, err := FillDefaultActions(b)
	if err != nil {
		t.Fatalf("FillDefaultActions: %v", err)
	}
	if nb.QueuedActions[0].AbilityID != "strike" {
		t.Error("FillDefaultActions replaced an existing action")
	}
	if a := nb.QueuedActions[1]; a == nil || !a.IsBasicAttack() || a.TargetIDs[0] != "e2" {
		t.Errorf("slot 1 = %+v, want basic attack on e2", a)
	}
	if nb.QueuedActions[2] != nil {
		t.Error("KO'd unit received an action")
	}
	if !IsQueueComplete(nb) {
		t.Error("queue should be complete")
	}
}

func TestValidateQueueForExecution(t *testing.T) {
	costly := Ability{ID: "nova", Name: "Nova", Kind: KindPsynergy, BasePower: 50, Targets: TargetAllEnemies, ManaCost: 5}
	b := newBattle(t, NewTeam(fourUnits(withMana(2), withAbility(costly))...), mkEnemy("e1"))

	if err := ValidateQueueForExecution(b); !errors.Is(err, ErrQueueIncomplete) {
		t.Errorf("empty queue error = %v", err)
	}

	full := mustQueue(t, b, "u1", &costly, "e1")
	full = mustQueue(t, full, "u2", &costly, "e1")
	full = mustQueue(t, full, "u3", nil, "e1")
	full = mustQueue(t, full, "u4", nil, "e1")
	err := ValidateQueueForExecution(full)
	if !errors.Is(err, ErrManaBudget) {
		t.Fatalf("over budget error = %v", err)
	}
	got, events, err := ExecuteRound(full, nil)
	if !errors.Is(err, ErrNoRNG) || got != full || events != nil {
		t.Errorf("ExecuteRound(nil rng) = %v, %v", events, err)
	}

	executing, _ := Transition(full, PhaseExecuting)
	if err := ValidateQueueForExecution(executing); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("executing error = %v", err)
	}
}

func TestValidateMessages(t *testing.T) {
	b := newBattle(t, NewTeam(mkUnit("u1")), mkEnemy("e1"))
	err := ValidateQueueForExecution(b)
	if err == nil || !strings.Contains(err.Error(), "queue incomplete") {
		t.Errorf("message = %v", err)
	}
	executing, _ := Transition(b, PhaseExecuting)
	err = ValidateQueueForExecution(executing)
	if err == nil || !strings.Contains(err.Error(), "planning phase") {
		t.Errorf("message = %v", err)
	}
}
