// Package view holds the JSON shapes the MCP and web front ends send to
// clients.
package view

import (
	"slices"

	"github.com/peterkuimelis/vale/internal/battle"
	"github.com/peterkuimelis/vale/internal/log"
)

// EventView is a battle event for the client.
type EventView struct {
	Seq     int      `json:"seq"`
	Round   int      `json:"round"`
	Type    string   `json:"type"`
	Source  string   `json:"source,omitempty"`
	Target  string   `json:"target,omitempty"`
	Targets []string `json:"targets,omitempty"`
	Ability string   `json:"ability,omitempty"`
	Amount  int      `json:"amount,omitempty"`
	Crit    bool     `json:"crit,omitempty"`
	Status  string   `json:"status,omitempty"`
	Result  string   `json:"result,omitempty"`
	Details string   `json:"details"`
}

// StatusView is one active status effect.
type StatusView struct {
	Type      string `json:"type"`
	Magnitude int    `json:"magnitude,omitempty"`
	Duration  int    `json:"duration"`
}

// StatsView is a unit's effective stats.
type StatsView struct {
	ATK int `json:"atk"`
	DEF int `json:"def"`
	MAG int `json:"mag"`
	SPD int `json:"spd"`
}

// UnitView describes one combatant.
type UnitView struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Element   string       `json:"element"`
	Level     int          `json:"level"`
	HP        int          `json:"hp"`
	MaxHP     int          `json:"max_hp"`
	KO        bool         `json:"ko,omitempty"`
	Stats     StatsView    `json:"stats"`
	Statuses  []StatusView `json:"statuses,omitempty"`
	Abilities []string     `json:"abilities,omitempty"` // player units only
	Mana      int          `json:"mana,omitempty"`
}

// DjinnView describes an equipped Djinn.
type DjinnView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Element  string `json:"element"`
	State    string `json:"state"`
	Recovery int    `json:"recovery,omitempty"` // rounds until Set
	Queued   bool   `json:"queued,omitempty"`
}

// ActionView is a queued player action.
type ActionView struct {
	Unit    string   `json:"unit"`
	Ability string   `json:"ability,omitempty"` // empty for a basic attack
	Targets []string `json:"targets"`
	Cost    int      `json:"cost,omitempty"`
}

// StateView is the whole battle as the player sees it.
type StateView struct {
	Round       int               `json:"round"`
	Phase       string            `json:"phase"`
	Outcome     string            `json:"outcome,omitempty"`
	Mana        int               `json:"mana"`
	MaxMana     int               `json:"max_mana"`
	PlannedCost int               `json:"planned_cost"`
	CurrentSlot int               `json:"current_slot"`
	Party       []UnitView        `json:"party"`
	Enemies     []UnitView        `json:"enemies"`
	Djinn       []DjinnView       `json:"djinn,omitempty"`
	Queue       []*ActionView     `json:"queue"` // one entry per party slot, null when open
	TurnOrder   []string          `json:"turn_order,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// BuildStateView renders b.
func BuildStateView(b *battle.BattleState) *StateView {
	v := &StateView{
		Round:       b.RoundNumber,
		Phase:       b.Phase.String(),
		Mana:        b.RemainingMana,
		MaxMana:     b.MaxMana,
		PlannedCost: battle.PlannedManaCost(b),
		CurrentSlot: b.CurrentQueueIndex,
		TurnOrder:   append([]string(nil), b.TurnOrder...),
		Metadata:    b.Metadata,
	}
	if b.Outcome != battle.OutcomeNone {
		v.Outcome = b.Outcome.String()
	}
	for i := range b.PlayerTeam.Units {
		u := &b.PlayerTeam.Units[i]
		uv := buildUnit(b, u)
		uv.Abilities = append([]string(nil), u.UnlockedAbilities...)
		uv.Mana = u.ManaContribution
		v.Party = append(v.Party, uv)
	}
	for i := range b.Enemies {
		v.Enemies = append(v.Enemies, buildUnit(b, &b.Enemies[i]))
	}
	for _, id := range b.PlayerTeam.EquippedDjinn {
		d, _ := b.PlayerTeam.Djinn(id)
		tr := b.PlayerTeam.DjinnTrackers[id]
		v.Djinn = append(v.Djinn, DjinnView{
			ID:       id,
			Name:     d.Name,
			Element:  d.Element.String(),
			State:    tr.State.String(),
			Recovery: b.DjinnRecoveryTimers[id],
			Queued:   slices.Contains(b.QueuedDjinn, id),
		})
	}
	for _, qa := range b.QueuedActions {
		if qa == nil {
			v.Queue = append(v.Queue, nil)
			continue
		}
		v.Queue = append(v.Queue, &ActionView{
			Unit:    qa.UnitID,
			Ability: qa.AbilityID,
			Targets: append([]string(nil), qa.TargetIDs...),
			Cost:    qa.ManaCost,
		})
	}
	return v
}

func buildUnit(b *battle.BattleState, u *battle.Unit) UnitView {
	st := battle.EffectiveStats(b, u)
	uv := UnitView{
		ID:      u.ID,
		Name:    u.Name,
		Element: u.Element.String(),
		Level:   u.Level,
		HP:      u.CurrentHP,
		MaxHP:   u.MaxHP(),
		KO:      u.IsKO(),
		Stats:   StatsView{ATK: st.ATK, DEF: st.DEF, MAG: st.MAG, SPD: st.SPD},
	}
	for _, s := range u.StatusEffects {
		uv.Statuses = append(uv.Statuses, StatusView{
			Type:      s.Type.String(),
			Magnitude: s.Magnitude,
			Duration:  s.Duration,
		})
	}
	return uv
}

// BuildEventView renders one event.
func BuildEventView(e log.BattleEvent) EventView {
	return EventView{
		Seq:     e.Seq,
		Round:   e.Round,
		Type:    e.Type.String(),
		Source:  e.Source,
		Target:  e.Target,
		Targets: e.Targets,
		Ability: e.Ability,
		Amount:  e.Amount,
		Crit:    e.Crit,
		Status:  e.Status,
		Result:  e.Result,
		Details: e.Details,
	}
}

// BuildEventViews renders events in order.
func BuildEventViews(events []log.BattleEvent) []EventView {
	out := make([]EventView, 0, len(events))
	for _, e := range events {
		out = append(out, BuildEventView(e))
	}
	return out
}
