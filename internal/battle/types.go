package battle

import "fmt"

// Element is a unit, ability or Djinn element.
type Element int

const (
	Neutral Element = iota
	Venus
	Mars
	Mercury
	Jupiter
)

func (e Element) String() string {
	switch e {
	case Venus:
		return "Venus"
	case Mars:
		return "Mars"
	case Mercury:
		return "Mercury"
	case Jupiter:
		return "Jupiter"
	default:
		return "Neutral"
	}
}

// ParseElement accepts the element name in any case.
func ParseElement(s string) (Element, error) {
	switch s {
	case "", "Neutral", "neutral":
		return Neutral, nil
	case "Venus", "venus":
		return Venus, nil
	case "Mars", "mars":
		return Mars, nil
	case "Mercury", "mercury":
		return Mercury, nil
	case "Jupiter", "jupiter":
		return Jupiter, nil
	}
	return Neutral, fmt.Errorf("unknown element %q", s)
}

// beats maps each element to the one it deals bonus damage to.
var beats = map[Element]Element{
	Venus:   Jupiter,
	Mars:    Venus,
	Mercury: Mars,
	Jupiter: Mercury,
}

// Advantage returns the psynergy damage multiplier of attack against defend.
func Advantage(attack, defend Element) float64 {
	if attack == Neutral || defend == Neutral {
		return 1.0
	}
	if beats[attack] == defend {
		return 1.5
	}
	if beats[defend] == attack {
		return 0.67
	}
	return 1.0
}

// counter pairs used for Set-Djinn compatibility.
var counter = map[Element]Element{
	Venus:   Mars,
	Mars:    Venus,
	Jupiter: Mercury,
	Mercury: Jupiter,
}

// Stats is a record of combat attributes. HP and PP are capacities.
type Stats struct {
	HP  int
	PP  int
	ATK int
	DEF int
	MAG int
	SPD int
}

// Add returns the component-wise sum.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		HP:  s.HP + o.HP,
		PP:  s.PP + o.PP,
		ATK: s.ATK + o.ATK,
		DEF: s.DEF + o.DEF,
		MAG: s.MAG + o.MAG,
		SPD: s.SPD + o.SPD,
	}
}

// Scale returns s with every component multiplied by n.
func (s Stats) Scale(n int) Stats {
	return Stats{HP: s.HP * n, PP: s.PP * n, ATK: s.ATK * n, DEF: s.DEF * n, MAG: s.MAG * n, SPD: s.SPD * n}
}

func (s Stats) clampNonNegative() Stats {
	c := func(v int) int {
		if v < 0 {
			return 0
		}
		return v
	}
	return Stats{HP: c(s.HP), PP: c(s.PP), ATK: c(s.ATK), DEF: c(s.DEF), MAG: c(s.MAG), SPD: c(s.SPD)}
}

// StatusType identifies an ongoing status effect.
type StatusType int

const (
	StatusPoison StatusType = iota
	StatusBurn
	StatusFreeze
	StatusStun
	StatusParalyze
	StatusBlind
	StatusRegen
	StatusAtkUp
	StatusAtkDown
	StatusDefUp
	StatusDefDown
	StatusSpdUp
	StatusSpdDown
)

var statusNames = [...]string{
	StatusPoison:   "poison",
	StatusBurn:     "burn",
	StatusFreeze:   "freeze",
	StatusStun:     "stun",
	StatusParalyze: "paralyze",
	StatusBlind:    "blind",
	StatusRegen:    "regen",
	StatusAtkUp:    "atk-up",
	StatusAtkDown:  "atk-down",
	StatusDefUp:    "def-up",
	StatusDefDown:  "def-down",
	StatusSpdUp:    "spd-up",
	StatusSpdDown:  "spd-down",
}

func (s StatusType) String() string {
	if int(s) < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

// ParseStatusType maps a status name such as "poison" to its type.
func ParseStatusType(s string) (StatusType, error) {
	for i, n := range statusNames {
		if n == s {
			return StatusType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", s)
}

// StatusEffect is an active or pending status. Magnitude is a percentage for
// stat modifiers and a flat HP amount for regen; other types ignore it.
type StatusEffect struct {
	Type      StatusType
	Magnitude int
	Duration  int
}

// AbilityKind selects how an ability resolves.
type AbilityKind int

const (
	KindPhysical AbilityKind = iota
	KindPsynergy
	KindHealing
	KindBuff
	KindDebuff
)

var kindNames = [...]string{"physical", "psynergy", "healing", "buff", "debuff"}

func (k AbilityKind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

func ParseAbilityKind(s string) (AbilityKind, error) {
	for i, n := range kindNames {
		if n == s {
			return AbilityKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown ability kind %q", s)
}

// Harmful reports whether the ability is aimed at opponents.
func (k AbilityKind) Harmful() bool {
	return k == KindPhysical || k == KindPsynergy || k == KindDebuff
}

// TargetScope describes which units an ability may affect.
type TargetScope int

const (
	TargetSingleEnemy TargetScope = iota
	TargetAllEnemies
	TargetSingleAlly
	TargetAllAllies
	TargetSelf
)

var scopeNames = [...]string{"single-enemy", "all-enemies", "single-ally", "all-allies", "self"}

func (t TargetScope) String() string {
	if int(t) < 0 || int(t) >= len(scopeNames) {
		return "unknown"
	}
	return scopeNames[t]
}

func ParseTargetScope(s string) (TargetScope, error) {
	for i, n := range scopeNames {
		if n == s {
			return TargetScope(i), nil
		}
	}
	return 0, fmt.Errorf("unknown target scope %q", s)
}

// Multi reports whether the scope hits every unit on a side.
func (t TargetScope) Multi() bool {
	return t == TargetAllEnemies || t == TargetAllAllies
}

// Ability is a content-defined action other than the basic attack.
type Ability struct {
	ID        string
	Name      string
	Kind      AbilityKind
	Element   Element
	BasePower int
	Targets   TargetScope
	ManaCost  int
	// Accuracy in (0,1]; zero means always accurate.
	Accuracy float64
	Status   *StatusEffect
	// StatusChance in (0,1]; zero means the status always lands.
	StatusChance float64
}

// Item is a piece of equipment. The engine only reads its bonuses.
type Item struct {
	ID          string
	Name        string
	Bonus       Stats
	Evasion     int // percent, boots only
	AlwaysFirst bool
}

// Equipment holds the four equipment slots; nil means empty.
type Equipment struct {
	Weapon *Item
	Armor  *Item
	Helm   *Item
	Boots  *Item
}

func (e Equipment) items() []*Item {
	return []*Item{e.Weapon, e.Armor, e.Helm, e.Boots}
}

// Bonus sums the stat bonuses of every equipped item.
func (e Equipment) Bonus() Stats {
	var s Stats
	for _, it := range e.items() {
		if it != nil {
			s = s.Add(it.Bonus)
		}
	}
	return s
}

// Unit is one combatant.
type Unit struct {
	ID          string
	Name        string
	Element     Element
	Level       int
	BaseStats   Stats
	GrowthRates Stats
	CurrentHP   int
	// UnlockedAbilities lists ability IDs the unit may queue.
	UnlockedAbilities []string
	// Abilities holds the definitions the unit knows, used by enemy AI and
	// as a fallback when queueing without an explicit definition.
	Abilities        []Ability
	StatusEffects    []StatusEffect
	ManaContribution int
	Equipment        Equipment
}

// MaxHP is base HP plus growth for every level past the first.
func (u *Unit) MaxHP() int {
	lvl := u.Level
	if lvl < 1 {
		lvl = 1
	}
	return u.BaseStats.HP + (lvl-1)*u.GrowthRates.HP
}

// IsKO reports whether the unit has been knocked out.
func (u *Unit) IsKO() bool {
	return u.CurrentHP <= 0
}

// HasUnlocked reports whether abilityID is in the unit's unlocked list.
func (u *Unit) HasUnlocked(abilityID string) bool {
	for _, id := range u.UnlockedAbilities {
		if id == abilityID {
			return true
		}
	}
	return false
}

// AbilityByID looks up a known ability definition.
func (u *Unit) AbilityByID(id string) *Ability {
	for i := range u.Abilities {
		if u.Abilities[i].ID == id {
			return &u.Abilities[i]
		}
	}
	return nil
}

// HasStatus reports whether the unit carries a status of type t.
func (u *Unit) HasStatus(t StatusType) bool {
	for _, s := range u.StatusEffects {
		if s.Type == t {
			return true
		}
	}
	return false
}

func (u Unit) clone() Unit {
	c := u
	c.UnlockedAbilities = append([]string(nil), u.UnlockedAbilities...)
	c.Abilities = append([]Ability(nil), u.Abilities...)
	c.StatusEffects = append([]StatusEffect(nil), u.StatusEffects...)
	return c
}

// DjinnState is the lifecycle state of an equipped Djinn.
type DjinnState int

const (
	DjinnSet DjinnState = iota
	DjinnStandby
	DjinnRecovery
)

func (s DjinnState) String() string {
	switch s {
	case DjinnSet:
		return "Set"
	case DjinnStandby:
		return "Standby"
	case DjinnRecovery:
		return "Recovery"
	default:
		return "Unknown"
	}
}

// Djinn is a collectible companion.
type Djinn struct {
	ID      string
	Name    string
	Element Element
	// Boost is added to every player unit for the round it is activated.
	Boost Stats
	// GrantsAbilities become queueable while the Djinn is Set.
	GrantsAbilities []string
}

// DjinnTracker records the lifecycle of one equipped Djinn.
type DjinnTracker struct {
	DjinnID            string
	State              DjinnState
	LastActivatedRound int
}

// Team is the player side.
type Team struct {
	Units          []Unit
	CollectedDjinn []Djinn
	EquippedDjinn  []string
	DjinnTrackers  map[string]DjinnTracker
}

// NewTeam builds a team without Djinn.
func NewTeam(units ...Unit) Team {
	return Team{Units: units, DjinnTrackers: map[string]DjinnTracker{}}
}

// WithDjinn returns a copy of t with the given collected and equipped Djinn.
func (t Team) WithDjinn(collected []Djinn, equipped ...string) Team {
	c := t.clone()
	c.CollectedDjinn = append([]Djinn(nil), collected...)
	c.EquippedDjinn = append([]string(nil), equipped...)
	return c
}

// Djinn looks up a collected Djinn.
func (t *Team) Djinn(id string) (Djinn, bool) {
	for _, d := range t.CollectedDjinn {
		if d.ID == id {
			return d, true
		}
	}
	return Djinn{}, false
}

// IsEquipped reports whether djinnID is equipped.
func (t *Team) IsEquipped(djinnID string) bool {
	for _, id := range t.EquippedDjinn {
		if id == djinnID {
			return true
		}
	}
	return false
}

func (t Team) clone() Team {
	c := Team{
		Units:          make([]Unit, len(t.Units)),
		CollectedDjinn: append([]Djinn(nil), t.CollectedDjinn...),
		EquippedDjinn:  append([]string(nil), t.EquippedDjinn...),
		DjinnTrackers:  make(map[string]DjinnTracker, len(t.DjinnTrackers)),
	}
	for i, u := range t.Units {
		c.Units[i] = u.clone()
	}
	for k, v := range t.DjinnTrackers {
		c.DjinnTrackers[k] = v
	}
	return c
}
