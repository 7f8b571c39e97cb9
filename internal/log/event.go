package log

// EventType enumerates all observable battle events.
type EventType int

const (
	EventRoundStart EventType = iota
	EventTurnOrder
	EventDjinnActivated
	EventDjinnSummon
	EventAbility
	EventHit
	EventMiss
	EventHeal
	EventManaGenerated
	EventStatusApplied
	EventStatusTick
	EventStatusExpired
	EventKO
	EventActionSkipped
	EventDjinnRecovered
	EventBattleEnd
)

// String returns the wire tag for the event, e.g. "mana-generated".
func (e EventType) String() string {
	switch e {
	case EventRoundStart:
		return "round-start"
	case EventTurnOrder:
		return "turn-order"
	case EventDjinnActivated:
		return "djinn-activated"
	case EventDjinnSummon:
		return "djinn-summon"
	case EventAbility:
		return "ability"
	case EventHit:
		return "hit"
	case EventMiss:
		return "miss"
	case EventHeal:
		return "heal"
	case EventManaGenerated:
		return "mana-generated"
	case EventStatusApplied:
		return "status-applied"
	case EventStatusTick:
		return "status-tick"
	case EventStatusExpired:
		return "status-expired"
	case EventKO:
		return "ko"
	case EventActionSkipped:
		return "action-skipped"
	case EventDjinnRecovered:
		return "djinn-recovered"
	case EventBattleEnd:
		return "battle-end"
	default:
		return "unknown"
	}
}

// ParseEventType is the inverse of EventType.String.
func ParseEventType(s string) (EventType, bool) {
	for t := EventRoundStart; t <= EventBattleEnd; t++ {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}

// BattleEvent is one observable effect of round resolution. Type selects
// which of the optional fields are meaningful.
type BattleEvent struct {
	Seq      int       // monotonic sequence number, assigned by the logger
	Round    int       // round the event happened in (1-based)
	Type     EventType // discriminator
	Source   string    // acting unit or Djinn ID
	Target   string    // single affected unit
	Targets  []string  // multi-target abilities, turn order
	Ability  string    // ability ID; empty for basic attacks
	Amount   int       // damage, healing or mana amount
	NewTotal int       // HP or mana after the change
	Crit     bool
	Element  string
	Status   string // status effect type
	Result   string // battle-end outcome or skip reason
	Details  string // human-readable detail string
}
