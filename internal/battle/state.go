package battle

import (
	"fmt"
	"maps"
)

// PartySize is the largest player team a battle accepts.
const PartySize = 4

// MaxEquippedDjinn is the number of Djinn a team may equip.
const MaxEquippedDjinn = 3

// Outcome is the result of a finished battle.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomePlayerVictory
	OutcomePlayerDefeat
)

func (o Outcome) String() string {
	switch o {
	case OutcomePlayerVictory:
		return "PLAYER_VICTORY"
	case OutcomePlayerDefeat:
		return "PLAYER_DEFEAT"
	default:
		return "NONE"
	}
}

// QueuedAction is one pending action. An empty AbilityID is a basic attack.
type QueuedAction struct {
	UnitID    string
	AbilityID string
	TargetIDs []string
	ManaCost  int
	Ability   *Ability
}

// IsBasicAttack reports whether the action is a basic attack.
func (a *QueuedAction) IsBasicAttack() bool {
	return a.AbilityID == ""
}

func (a *QueuedAction) clone() *QueuedAction {
	if a == nil {
		return nil
	}
	c := *a
	c.TargetIDs = append([]string(nil), a.TargetIDs...)
	return &c
}

type unitRef struct {
	enemy bool
	pos   int
}

// BattleState is a snapshot of an in-progress battle. Values returned by
// the package are never modified afterwards; every operation works on a
// copy.
type BattleState struct {
	PlayerTeam Team
	Enemies    []Unit

	// TurnOrder is the order of the most recently resolved round.
	TurnOrder         []string
	CurrentActorIndex int
	CurrentQueueIndex int
	ExecutionIndex    int

	Phase       Phase
	RoundNumber int
	Outcome     Outcome

	// QueuedActions has one slot per player unit; nil means unfilled.
	QueuedActions []*QueuedAction
	QueuedDjinn   []string

	RemainingMana int
	MaxMana       int

	DjinnRecoveryTimers map[string]int
	Metadata            map[string]string

	index map[string]unitRef
}

// Option configures NewBattleState.
type Option func(*BattleState)

// WithMetadata attaches opaque caller metadata such as encounter ID.
func WithMetadata(md map[string]string) Option {
	return func(b *BattleState) {
		for k, v := range md {
			b.Metadata[k] = v
		}
	}
}

// NewBattleState builds the initial state of a battle.
func NewBattleState(team Team, enemies []Unit, opts ...Option) (*BattleState, error) {
	if err := validateSetup(team, enemies); err != nil {
		return nil, err
	}

	b := &BattleState{
		PlayerTeam:          team.clone(),
		Enemies:             make([]Unit, len(enemies)),
		Phase:               PhasePlanning,
		RoundNumber:         1,
		QueuedActions:       make([]*QueuedAction, len(team.Units)),
		DjinnRecoveryTimers: map[string]int{},
		Metadata:            map[string]string{},
	}
	for i, e := range enemies {
		b.Enemies[i] = e.clone()
	}
	for _, id := range b.PlayerTeam.EquippedDjinn {
		if _, ok := b.PlayerTeam.DjinnTrackers[id]; !ok {
			b.PlayerTeam.DjinnTrackers[id] = DjinnTracker{DjinnID: id, State: DjinnSet}
		}
	}
	for _, u := range b.PlayerTeam.Units {
		b.MaxMana += u.ManaContribution
	}
	b.RemainingMana = b.MaxMana
	b.CurrentQueueIndex = b.firstOpenSlot(0)
	b.rebuildIndex()

	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

func validateSetup(team Team, enemies []Unit) error {
	switch {
	case len(team.Units) == 0:
		return fmt.Errorf("%w: empty team", ErrInvalidBattleSetup)
	case len(team.Units) > PartySize:
		return fmt.Errorf("%w: team has %d units, max %d", ErrInvalidBattleSetup, len(team.Units), PartySize)
	case len(enemies) == 0:
		return fmt.Errorf("%w: no enemies", ErrInvalidBattleSetup)
	case len(team.EquippedDjinn) > MaxEquippedDjinn:
		return fmt.Errorf("%w: %d Djinn equipped, max %d", ErrInvalidBattleSetup, len(team.EquippedDjinn), MaxEquippedDjinn)
	}

	seen := map[string]bool{}
	for _, u := range append(append([]Unit(nil), team.Units...), enemies...) {
		if u.ID == "" {
			return fmt.Errorf("%w: unit with empty id", ErrInvalidBattleSetup)
		}
		if seen[u.ID] {
			return fmt.Errorf("%w: duplicate unit id %q", ErrInvalidBattleSetup, u.ID)
		}
		seen[u.ID] = true
	}

	equipped := map[string]bool{}
	for _, id := range team.EquippedDjinn {
		if equipped[id] {
			return fmt.Errorf("%w: Djinn %q equipped twice", ErrInvalidBattleSetup, id)
		}
		equipped[id] = true
		if _, ok := team.Djinn(id); !ok {
			return fmt.Errorf("%w: equipped Djinn %q not collected", ErrInvalidBattleSetup, id)
		}
	}
	for id := range team.DjinnTrackers {
		if !equipped[id] {
			return fmt.Errorf("%w: tracker for unequipped Djinn %q", ErrInvalidBattleSetup, id)
		}
	}
	return nil
}

// clone returns a deep copy with a fresh unit index.
func (b *BattleState) clone() *BattleState {
	c := *b
	c.PlayerTeam = b.PlayerTeam.clone()
	c.Enemies = make([]Unit, len(b.Enemies))
	for i, e := range b.Enemies {
		c.Enemies[i] = e.clone()
	}
	c.TurnOrder = append([]string(nil), b.TurnOrder...)
	c.QueuedActions = make([]*QueuedAction, len(b.QueuedActions))
	for i, a := range b.QueuedActions {
		c.QueuedActions[i] = a.clone()
	}
	c.QueuedDjinn = append([]string(nil), b.QueuedDjinn...)
	c.DjinnRecoveryTimers = maps.Clone(b.DjinnRecoveryTimers)
	if c.DjinnRecoveryTimers == nil {
		c.DjinnRecoveryTimers = map[string]int{}
	}
	c.Metadata = maps.Clone(b.Metadata)
	c.rebuildIndex()
	return &c
}

// Clone returns an independent deep copy of b.
func (b *BattleState) Clone() *BattleState {
	return b.clone()
}

func (b *BattleState) rebuildIndex() {
	b.index = make(map[string]unitRef, len(b.PlayerTeam.Units)+len(b.Enemies))
	for i, u := range b.PlayerTeam.Units {
		b.index[u.ID] = unitRef{pos: i}
	}
	for i, u := range b.Enemies {
		b.index[u.ID] = unitRef{enemy: true, pos: i}
	}
}

// Unit returns a copy of the unit with the given ID from either side.
func (b *BattleState) Unit(id string) (Unit, bool) {
	u := b.unit(id)
	if u == nil {
		return Unit{}, false
	}
	return u.clone(), true
}

// IsPlayerUnit reports whether id belongs to the player team.
func (b *BattleState) IsPlayerUnit(id string) bool {
	ref, ok := b.lookup(id)
	return ok && !ref.enemy
}

func (b *BattleState) lookup(id string) (unitRef, bool) {
	if b.index == nil {
		b.rebuildIndex()
	}
	ref, ok := b.index[id]
	return ref, ok
}

func (b *BattleState) unit(id string) *Unit {
	ref, ok := b.lookup(id)
	if !ok {
		return nil
	}
	if ref.enemy {
		return &b.Enemies[ref.pos]
	}
	return &b.PlayerTeam.Units[ref.pos]
}

// mustUnit resolves an ID that validation has already accepted.
func (b *BattleState) mustUnit(id string) *Unit {
	u := b.unit(id)
	if u == nil {
		panic(fmt.Sprintf("battle: unit %q missing from index", id))
	}
	return u
}

func (b *BattleState) slotOf(unitID string) int {
	ref, ok := b.lookup(unitID)
	if !ok || ref.enemy {
		return -1
	}
	return ref.pos
}

// opponents returns the live units opposing id's side.
func (b *BattleState) opponents(id string) []*Unit {
	if b.IsPlayerUnit(id) {
		return liveUnits(b.Enemies)
	}
	return liveUnits(b.PlayerTeam.Units)
}

// allies returns the live units on id's side.
func (b *BattleState) allies(id string) []*Unit {
	if b.IsPlayerUnit(id) {
		return liveUnits(b.PlayerTeam.Units)
	}
	return liveUnits(b.Enemies)
}

func liveUnits(units []Unit) []*Unit {
	var out []*Unit
	for i := range units {
		if !units[i].IsKO() {
			out = append(out, &units[i])
		}
	}
	return out
}

// SetDjinn returns the equipped Djinn currently in Set state, in equip order.
func (b *BattleState) SetDjinn() []Djinn {
	var out []Djinn
	for _, id := range b.PlayerTeam.EquippedDjinn {
		if b.PlayerTeam.DjinnTrackers[id].State != DjinnSet {
			continue
		}
		if d, ok := b.PlayerTeam.Djinn(id); ok {
			out = append(out, d)
		}
	}
	return out
}

// IsOver reports whether the battle has reached a terminal phase.
func (b *BattleState) IsOver() bool {
	return b.Phase.IsTerminal()
}
