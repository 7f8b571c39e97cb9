package battle

import "fmt"

// Phase is the resting or transient phase of a battle.
type Phase int

const (
	PhasePlanning Phase = iota
	PhaseExecuting
	PhaseVictory
	PhaseDefeat
)

func (p Phase) String() string {
	switch p {
	case PhasePlanning:
		return "planning"
	case PhaseExecuting:
		return "executing"
	case PhaseVictory:
		return "victory"
	case PhaseDefeat:
		return "defeat"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transition is possible.
func (p Phase) IsTerminal() bool {
	return p == PhaseVictory || p == PhaseDefeat
}

var transitions = map[Phase][]Phase{
	PhasePlanning:  {PhaseExecuting},
	PhaseExecuting: {PhasePlanning, PhaseVictory, PhaseDefeat},
}

// CanTransition reports whether from → to is legal.
func CanTransition(from, to Phase) bool {
	for _, p := range transitions[from] {
		if p == to {
			return true
		}
	}
	return false
}

// Transition returns a copy of b in phase to. Entering planning from
// executing performs the round reset.
func Transition(b *BattleState, to Phase) (*BattleState, error) {
	if !CanTransition(b.Phase, to) {
		return b, fmt.Errorf("%w: %s → %s", ErrInvalidTransition, b.Phase, to)
	}
	nb := b.clone()
	nb.setPhase(to)
	return nb, nil
}

// setPhase applies a transition in place on a working copy.
func (b *BattleState) setPhase(to Phase) {
	b.Phase = to
	switch to {
	case PhasePlanning:
		b.resetRound()
	case PhaseVictory:
		b.Outcome = OutcomePlayerVictory
	case PhaseDefeat:
		b.Outcome = OutcomePlayerDefeat
	}
}

func (b *BattleState) resetRound() {
	b.RoundNumber++
	for i := range b.QueuedActions {
		b.QueuedActions[i] = nil
	}
	b.QueuedDjinn = nil
	b.RemainingMana = b.MaxMana
	b.CurrentQueueIndex = 0
	b.CurrentActorIndex = 0
	b.ExecutionIndex = 0
}

// CheckBattleEnd reports the outcome implied by current HP totals. A mutual
// wipe is a defeat.
func CheckBattleEnd(b *BattleState) Outcome {
	playersDown := allKO(b.PlayerTeam.Units)
	enemiesDown := allKO(b.Enemies)
	switch {
	case playersDown:
		return OutcomePlayerDefeat
	case enemiesDown:
		return OutcomePlayerVictory
	default:
		return OutcomeNone
	}
}

func allKO(units []Unit) bool {
	for i := range units {
		if !units[i].IsKO() {
			return false
		}
	}
	return true
}
