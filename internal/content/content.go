// Package content loads the unit, ability, Djinn and encounter tables a
// battle is built from.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/peterkuimelis/vale/internal/battle"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// File is the top-level YAML structure.
type File struct {
	Abilities  []AbilityEntry   `yaml:"abilities"`
	Items      []ItemEntry      `yaml:"items"`
	Units      []UnitEntry      `yaml:"units"`
	Enemies    []UnitEntry      `yaml:"enemies"`
	Djinn      []DjinnEntry     `yaml:"djinn"`
	Encounters []EncounterEntry `yaml:"encounters"`
}

// StatsEntry mirrors battle.Stats.
type StatsEntry struct {
	HP  int `yaml:"hp"`
	PP  int `yaml:"pp"`
	ATK int `yaml:"atk"`
	DEF int `yaml:"def"`
	MAG int `yaml:"mag"`
	SPD int `yaml:"spd"`
}

func (s StatsEntry) stats() battle.Stats {
	return battle.Stats{HP: s.HP, PP: s.PP, ATK: s.ATK, DEF: s.DEF, MAG: s.MAG, SPD: s.SPD}
}

func (s StatsEntry) negative() bool {
	return s.HP < 0 || s.PP < 0 || s.ATK < 0 || s.DEF < 0 || s.MAG < 0 || s.SPD < 0
}

type StatusEntry struct {
	Type      string `yaml:"type"`
	Magnitude int    `yaml:"magnitude"`
	Duration  int    `yaml:"duration"`
}

type AbilityEntry struct {
	ID           string       `yaml:"id"`
	Name         string       `yaml:"name"`
	Kind         string       `yaml:"kind"`
	Element      string       `yaml:"element"`
	Power        int          `yaml:"power"`
	Targets      string       `yaml:"targets"`
	Mana         int          `yaml:"mana"`
	Accuracy     float64      `yaml:"accuracy"`
	Status       *StatusEntry `yaml:"status"`
	StatusChance float64      `yaml:"status_chance"`
}

type ItemEntry struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Bonus       StatsEntry `yaml:"bonus"`
	Evasion     int        `yaml:"evasion"`
	AlwaysFirst bool       `yaml:"always_first"`
}

type EquipmentEntry struct {
	Weapon string `yaml:"weapon"`
	Armor  string `yaml:"armor"`
	Helm   string `yaml:"helm"`
	Boots  string `yaml:"boots"`
}

type UnitEntry struct {
	ID        string         `yaml:"id"`
	Name      string         `yaml:"name"`
	Element   string         `yaml:"element"`
	Level     int            `yaml:"level"`
	Stats     StatsEntry     `yaml:"stats"`
	Growth    StatsEntry     `yaml:"growth"`
	Mana      int            `yaml:"mana"`
	Abilities []string       `yaml:"abilities"`
	Equipment EquipmentEntry `yaml:"equipment"`
}

type DjinnEntry struct {
	ID      string     `yaml:"id"`
	Name    string     `yaml:"name"`
	Element string     `yaml:"element"`
	Boost   StatsEntry `yaml:"boost"`
	Grants  []string   `yaml:"grants"`
}

type EncounterEntry struct {
	ID         string   `yaml:"id"`
	Name       string   `yaml:"name"`
	Difficulty string   `yaml:"difficulty"`
	Enemies    []string `yaml:"enemies"`
}

// Catalog is a validated, indexed content file.
type Catalog struct {
	file       File
	abilities  map[string]battle.Ability
	items      map[string]*battle.Item
	units      map[string]UnitEntry
	enemies    map[string]UnitEntry
	djinn      map[string]battle.Djinn
	encounters map[string]EncounterEntry
}

// Encounter is a ready-to-fight enemy lineup.
type Encounter struct {
	ID         string
	Name       string
	Difficulty string
	Enemies    []battle.Unit
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(defaultYAML)
}

// LoadFile reads and validates a catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Load returns the catalog at path, or the built-in one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse content YAML: %w", err)
	}
	c := &Catalog{
		file:       f,
		abilities:  map[string]battle.Ability{},
		items:      map[string]*battle.Item{},
		units:      map[string]UnitEntry{},
		enemies:    map[string]UnitEntry{},
		djinn:      map[string]battle.Djinn{},
		encounters: map[string]EncounterEntry{},
	}
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	for _, a := range f.Abilities {
		if _, dup := c.abilities[a.ID]; dup || a.ID == "" {
			bad("ability %q: missing or duplicate id", a.ID)
			continue
		}
		ab, err := a.ability()
		if err != nil {
			bad("ability %q: %v", a.ID, err)
			continue
		}
		c.abilities[a.ID] = ab
	}
	for _, it := range f.Items {
		if _, dup := c.items[it.ID]; dup || it.ID == "" {
			bad("item %q: missing or duplicate id", it.ID)
			continue
		}
		c.items[it.ID] = &battle.Item{ID: it.ID, Name: it.Name, Bonus: it.Bonus.stats(), Evasion: it.Evasion, AlwaysFirst: it.AlwaysFirst}
	}
	for _, d := range f.Djinn {
		if _, dup := c.djinn[d.ID]; dup || d.ID == "" {
			bad("djinn %q: missing or duplicate id", d.ID)
			continue
		}
		el, err := battle.ParseElement(d.Element)
		if err != nil {
			bad("djinn %q: %v", d.ID, err)
			continue
		}
		for _, g := range d.Grants {
			if _, ok := c.abilities[g]; !ok {
				bad("djinn %q: grants unknown ability %q", d.ID, g)
			}
		}
		c.djinn[d.ID] = battle.Djinn{ID: d.ID, Name: d.Name, Element: el, Boost: d.Boost.stats(), GrantsAbilities: d.Grants}
	}
	for _, group := range []struct {
		kind    string
		entries []UnitEntry
		index   map[string]UnitEntry
	}{{"unit", f.Units, c.units}, {"enemy", f.Enemies, c.enemies}} {
		for _, u := range group.entries {
			if _, dup := group.index[u.ID]; dup || u.ID == "" {
				bad("%s %q: missing or duplicate id", group.kind, u.ID)
				continue
			}
			if err := c.checkUnit(u); err != nil {
				bad("%s %q: %v", group.kind, u.ID, err)
				continue
			}
			group.index[u.ID] = u
		}
	}
	for _, e := range f.Encounters {
		if _, dup := c.encounters[e.ID]; dup || e.ID == "" {
			bad("encounter %q: missing or duplicate id", e.ID)
			continue
		}
		if len(e.Enemies) == 0 {
			bad("encounter %q: no enemies", e.ID)
		}
		for _, id := range e.Enemies {
			if _, ok := c.enemies[id]; !ok {
				bad("encounter %q: unknown enemy %q", e.ID, id)
			}
		}
		c.encounters[e.ID] = e
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid content: %w", errors.Join(errs...))
	}
	return c, nil
}

func (a AbilityEntry) ability() (battle.Ability, error) {
	kind, err := battle.ParseAbilityKind(a.Kind)
	if err != nil {
		return battle.Ability{}, err
	}
	el, err := battle.ParseElement(a.Element)
	if err != nil {
		return battle.Ability{}, err
	}
	scope, err := battle.ParseTargetScope(a.Targets)
	if err != nil {
		return battle.Ability{}, err
	}
	if a.Mana < 0 || a.Power < 0 {
		return battle.Ability{}, errors.New("negative mana or power")
	}
	if a.Accuracy < 0 || a.Accuracy > 1 || a.StatusChance < 0 || a.StatusChance > 1 {
		return battle.Ability{}, errors.New("accuracy and status_chance must be within [0,1]")
	}
	ab := battle.Ability{
		ID:           a.ID,
		Name:         a.Name,
		Kind:         kind,
		Element:      el,
		BasePower:    a.Power,
		Targets:      scope,
		ManaCost:     a.Mana,
		Accuracy:     a.Accuracy,
		StatusChance: a.StatusChance,
	}
	if a.Status != nil {
		st, err := battle.ParseStatusType(a.Status.Type)
		if err != nil {
			return battle.Ability{}, err
		}
		ab.Status = &battle.StatusEffect{Type: st, Magnitude: a.Status.Magnitude, Duration: a.Status.Duration}
	}
	return ab, nil
}

func (c *Catalog) checkUnit(u UnitEntry) error {
	if _, err := battle.ParseElement(u.Element); err != nil {
		return err
	}
	if u.Stats.negative() || u.Growth.negative() || u.Mana < 0 {
		return errors.New("negative stats")
	}
	if u.Stats.HP == 0 {
		return errors.New("zero hp")
	}
	for _, id := range u.Abilities {
		if _, ok := c.abilities[id]; !ok {
			return fmt.Errorf("unknown ability %q", id)
		}
	}
	for _, id := range []string{u.Equipment.Weapon, u.Equipment.Armor, u.Equipment.Helm, u.Equipment.Boots} {
		if id == "" {
			continue
		}
		if _, ok := c.items[id]; !ok {
			return fmt.Errorf("unknown item %q", id)
		}
	}
	return nil
}

func (c *Catalog) build(u UnitEntry, id string, level int) battle.Unit {
	el, _ := battle.ParseElement(u.Element)
	if level < 1 {
		level = max(u.Level, 1)
	}
	out := battle.Unit{
		ID:                id,
		Name:              u.Name,
		Element:           el,
		Level:             level,
		BaseStats:         u.Stats.stats(),
		GrowthRates:       u.Growth.stats(),
		UnlockedAbilities: append([]string(nil), u.Abilities...),
		ManaContribution:  u.Mana,
		Equipment: battle.Equipment{
			Weapon: c.items[u.Equipment.Weapon],
			Armor:  c.items[u.Equipment.Armor],
			Helm:   c.items[u.Equipment.Helm],
			Boots:  c.items[u.Equipment.Boots],
		},
	}
	for _, aid := range u.Abilities {
		out.Abilities = append(out.Abilities, c.abilities[aid])
	}
	out.CurrentHP = out.MaxHP()
	return out
}

// Ability returns an ability definition.
func (c *Catalog) Ability(id string) (battle.Ability, bool) {
	a, ok := c.abilities[id]
	return a, ok
}

// Djinn returns a Djinn definition.
func (c *Catalog) Djinn(id string) (battle.Djinn, bool) {
	d, ok := c.djinn[id]
	return d, ok
}

// Unit builds a player unit at full HP. A level below 1 uses the entry's
// own level.
func (c *Catalog) Unit(id string, level int) (battle.Unit, error) {
	u, ok := c.units[id]
	if !ok {
		return battle.Unit{}, fmt.Errorf("unknown unit %q", id)
	}
	return c.build(u, id, level), nil
}

// Party builds a team from unit IDs. Every listed Djinn is collected and
// equipped.
func (c *Catalog) Party(unitIDs []string, level int, djinnIDs []string) (battle.Team, error) {
	var units []battle.Unit
	for _, id := range unitIDs {
		u, err := c.Unit(id, level)
		if err != nil {
			return battle.Team{}, err
		}
		units = append(units, u)
	}
	var collected []battle.Djinn
	for _, id := range djinnIDs {
		d, ok := c.djinn[id]
		if !ok {
			return battle.Team{}, fmt.Errorf("unknown djinn %q", id)
		}
		collected = append(collected, d)
	}
	return battle.NewTeam(units...).WithDjinn(collected, djinnIDs...), nil
}

// Encounter builds the enemy lineup of an encounter. Enemy IDs are the
// entry ID with a 1-based position suffix, e.g. "slime-2".
func (c *Catalog) Encounter(id string) (Encounter, error) {
	e, ok := c.encounters[id]
	if !ok {
		return Encounter{}, fmt.Errorf("unknown encounter %q", id)
	}
	enc := Encounter{ID: e.ID, Name: e.Name, Difficulty: e.Difficulty}
	for i, eid := range e.Enemies {
		enc.Enemies = append(enc.Enemies, c.build(c.enemies[eid], fmt.Sprintf("%s-%d", eid, i+1), 0))
	}
	return enc, nil
}

// NewBattle builds a party and an encounter and starts a battle between them.
func (c *Catalog) NewBattle(unitIDs []string, level int, djinnIDs []string, encounterID string) (*battle.BattleState, error) {
	team, err := c.Party(unitIDs, level, djinnIDs)
	if err != nil {
		return nil, err
	}
	enc, err := c.Encounter(encounterID)
	if err != nil {
		return nil, err
	}
	return battle.NewBattleState(team, enc.Enemies, battle.WithMetadata(map[string]string{
		"encounter":  enc.ID,
		"difficulty": enc.Difficulty,
	}))
}

// UnitIDs lists player unit IDs in file order.
func (c *Catalog) UnitIDs() []string {
	return entryIDs(c.file.Units, func(u UnitEntry) string { return u.ID })
}

// DjinnIDs lists Djinn IDs in file order.
func (c *Catalog) DjinnIDs() []string {
	return entryIDs(c.file.Djinn, func(d DjinnEntry) string { return d.ID })
}

// EncounterIDs lists encounter IDs in file order.
func (c *Catalog) EncounterIDs() []string {
	return entryIDs(c.file.Encounters, func(e EncounterEntry) string { return e.ID })
}

// AbilityIDs lists ability IDs in file order.
func (c *Catalog) AbilityIDs() []string {
	return entryIDs(c.file.Abilities, func(a AbilityEntry) string { return a.ID })
}

// Describe returns a short multi-line listing of the catalog.
func (c *Catalog) Describe() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Units: %s\n", strings.Join(c.UnitIDs(), ", "))
	fmt.Fprintf(&sb, "Djinn: %s\n", strings.Join(c.DjinnIDs(), ", "))
	fmt.Fprintf(&sb, "Abilities: %s\n", strings.Join(c.AbilityIDs(), ", "))
	for _, e := range c.file.Encounters {
		fmt.Fprintf(&sb, "Encounter %s (%s, %s): %s\n", e.ID, e.Name, e.Difficulty, strings.Join(e.Enemies, ", "))
	}
	return sb.String()
}

func entryIDs[T any](entries []T, id func(T) string) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, id(e))
	}
	return out
}
