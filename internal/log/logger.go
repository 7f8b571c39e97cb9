package log

import (
	"fmt"
	"io"
	"strings"
)

// EventLogger is the interface for recording battle events.
type EventLogger interface {
	Log(event BattleEvent)
	Events() []BattleEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

type MemoryLogger struct {
	events []BattleEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event BattleEvent) {
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
}

// LogAll records events in order.
func (l *MemoryLogger) LogAll(events []BattleEvent) {
	for _, e := range events {
		l.Log(e)
	}
}

func (l *MemoryLogger) Events() []BattleEvent {
	return l.events
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []BattleEvent {
	return OfType(l.events, t)
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() BattleEvent {
	if len(l.events) == 0 {
		return BattleEvent{}
	}
	return l.events[len(l.events)-1]
}

// OfType filters a slice of events by type.
func OfType(events []BattleEvent, t EventType) []BattleEvent {
	var result []BattleEvent
	for _, e := range events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// IndexOf returns the position of the first event of type t from source,
// or -1.
func IndexOf(events []BattleEvent, t EventType, source string) int {
	for i, e := range events {
		if e.Type == t && e.Source == source {
			return i
		}
	}
	return -1
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event BattleEvent) {
	l.MemoryLogger.Log(event)
	fmt.Fprintln(l.w, FormatEvent(event))
}

func (l *TextLogger) LogAll(events []BattleEvent) {
	for _, e := range events {
		l.Log(e)
	}
}

// --- Formatting ---

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e BattleEvent) string {
	tag := e.Type.String()
	for len(tag) < 16 {
		tag += " "
	}
	return fmt.Sprintf("R%-2d %s| %s", e.Round, tag, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []BattleEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Helper constructors for common events ---

func NewRoundStartEvent(round int) BattleEvent {
	return BattleEvent{
		Round:   round,
		Type:    EventRoundStart,
		Details: fmt.Sprintf("=== Round %d ===", round),
	}
}

func NewTurnOrderEvent(round int, order []string) BattleEvent {
	return BattleEvent{
		Round:   round,
		Type:    EventTurnOrder,
		Targets: append([]string(nil), order...),
		Details: "Turn order: " + strings.Join(order, " → "),
	}
}

func NewDjinnActivatedEvent(round int, djinnID, element string) BattleEvent {
	return BattleEvent{
		Round:   round,
		Type:    EventDjinnActivated,
		Source:  djinnID,
		Element: element,
		Details: fmt.Sprintf("%s Djinn %s moves to Standby", element, djinnID),
	}
}

func NewDjinnSummonEvent(round int, djinnIDs []string, targets []string, damage, recovery int) BattleEvent {
	return BattleEvent{
		Round:    round,
		Type:     EventDjinnSummon,
		Source:   strings.Join(djinnIDs, "+"),
		Targets:  append([]string(nil), targets...),
		Amount:   damage,
		NewTotal: recovery,
		Details: fmt.Sprintf("Summon (%s) strikes %s for %d; recovery %d rounds",
			strings.Join(djinnIDs, ", "), strings.Join(targets, ", "), damage, recovery),
	}
}

func NewAbilityEvent(round int, source, abilityID, abilityName string, targets []string) BattleEvent {
	return BattleEvent{
		Round:   round,
		Type:    EventAbility,
		Source:  source,
		Ability: abilityID,
		Targets: append([]string(nil), targets...),
		Details: fmt.Sprintf("%s uses %s on %s", source, abilityName, strings.Join(targets, ", ")),
	}
}

func NewHitEvent(round int, source, target, abilityID string, damage, newHP int, crit bool) BattleEvent {
	verb := "hits"
	if crit {
		verb = "critically hits"
	}
	return BattleEvent{
		Round:    round,
		Type:     EventHit,
		Source:   source,
		Target:   target,
		Ability:  abilityID,
		Amount:   damage,
		NewTotal: newHP,
		Crit:     crit,
		Details:  fmt.Sprintf("%s %s %s for %d (HP %d)", source, verb, target, damage, newHP),
	}
}

func NewMissEvent(round int, source, target, abilityID string) BattleEvent {
	return BattleEvent{
		Round:   round,
		Type:    EventMiss,
		Source:  source,
		Target:  target,
		Ability: abilityID,
		Details: fmt.Sprintf("%s misses %s", source, target),
	}
}

func NewHealEvent(round int, source, target, abilityID string, amount, newHP int) BattleEvent {
	return BattleEvent{
		Round:    round,
		Type:     EventHeal,
		Source:   source,
		Target:   target,
		Ability:  abilityID,
		Amount:   amount,
		NewTotal: newHP,
		Details:  fmt.Sprintf("%s restores %d HP to %s (HP %d)", source, amount, target, newHP),
	}
}

func NewManaGeneratedEvent(round int, source string, amount, newTotal int) BattleEvent {
	return BattleEvent{
		Round:    round,
		Type:     EventManaGenerated,
		Source:   source,
		Amount:   amount,
		NewTotal: newTotal,
		Details:  fmt.Sprintf("%s generates %d mana (now %d)", source, amount, newTotal),
	}
}

func NewStatusAppliedEvent(round int, source, target, status string, duration int) BattleEvent {
	return BattleEvent{
		Round:    round,
		Type:     EventStatusApplied,
		Source:   source,
		Target:   target,
		Status:   status,
		NewTotal: duration,
		Details:  fmt.Sprintf("%s is afflicted with %s for %d rounds", target, status, duration),
	}
}

func NewStatusTickEvent(round int, target, status string, amount, newHP int) BattleEvent {
	return BattleEvent{
		Round:    round,
		Type:     EventStatusTick,
		Target:   target,
		Status:   status,
		Amount:   amount,
		NewTotal: newHP,
		Details:  fmt.Sprintf("%s: %s %+d HP (HP %d)", target, status, amount, newHP),
	}
}

func NewStatusExpiredEvent(round int, target, status string) BattleEvent {
	return BattleEvent{
		Round:   round,
		Type:    EventStatusExpired,
		Target:  target,
		Status:  status,
		Details: fmt.Sprintf("%s is no longer affected by %s", target, status),
	}
}

func NewKOEvent(round int, target string) BattleEvent {
	return BattleEvent{
		Round:   round,
		Type:    EventKO,
		Target:  target,
		Details: fmt.Sprintf("%s is knocked out", target),
	}
}

func NewActionSkippedEvent(round int, source, reason string) BattleEvent {
	return BattleEvent{
		Round:   round,
		Type:    EventActionSkipped,
		Source:  source,
		Result:  reason,
		Details: fmt.Sprintf("%s cannot act (%s)", source, reason),
	}
}

func NewDjinnRecoveredEvent(round int, djinnID string) BattleEvent {
	return BattleEvent{
		Round:   round,
		Type:    EventDjinnRecovered,
		Source:  djinnID,
		Details: fmt.Sprintf("Djinn %s returns to Set", djinnID),
	}
}

func NewBattleEndEvent(round int, result string) BattleEvent {
	return BattleEvent{
		Round:   round,
		Type:    EventBattleEnd,
		Result:  result,
		Details: fmt.Sprintf("Battle over: %s", result),
	}
}
