package web

import (
	"github.com/peterkuimelis/vale/internal/content"
)

// EncounterInfo is the JSON representation of an encounter for /api/content.
type EncounterInfo struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Difficulty string   `json:"difficulty"`
	Enemies    []string `json:"enemies"`
}

// UnitInfo is a recruitable party unit at level 1.
type UnitInfo struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Element   string   `json:"element"`
	HP        int      `json:"hp"`
	Mana      int      `json:"mana"`
	Abilities []string `json:"abilities"`
}

// DjinnInfo is a collectible Djinn.
type DjinnInfo struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Element string   `json:"element"`
	Grants  []string `json:"grants,omitempty"`
}

// AbilityInfo is an ability definition.
type AbilityInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Element string `json:"element"`
	Targets string `json:"targets"`
	Power   int    `json:"power,omitempty"`
	Cost    int    `json:"cost,omitempty"`
}

// ContentInfo is the /api/content payload.
type ContentInfo struct {
	Encounters []EncounterInfo `json:"encounters"`
	Units      []UnitInfo      `json:"units"`
	Djinn      []DjinnInfo     `json:"djinn"`
	Abilities  []AbilityInfo   `json:"abilities"`
}

func buildContentInfo(c *content.Catalog) ContentInfo {
	var info ContentInfo
	for _, id := range c.EncounterIDs() {
		enc, err := c.Encounter(id)
		if err != nil {
			continue
		}
		ei := EncounterInfo{ID: enc.ID, Name: enc.Name, Difficulty: enc.Difficulty}
		for _, e := range enc.Enemies {
			ei.Enemies = append(ei.Enemies, e.ID)
		}
		info.Encounters = append(info.Encounters, ei)
	}
	for _, id := range c.UnitIDs() {
		u, err := c.Unit(id, 1)
		if err != nil {
			continue
		}
		info.Units = append(info.Units, UnitInfo{
			ID:        u.ID,
			Name:      u.Name,
			Element:   u.Element.String(),
			HP:        u.MaxHP(),
			Mana:      u.ManaContribution,
			Abilities: u.UnlockedAbilities,
		})
	}
	for _, id := range c.DjinnIDs() {
		d, _ := c.Djinn(id)
		info.Djinn = append(info.Djinn, DjinnInfo{
			ID:      d.ID,
			Name:    d.Name,
			Element: d.Element.String(),
			Grants:  d.GrantsAbilities,
		})
	}
	for _, id := range c.AbilityIDs() {
		a, _ := c.Ability(id)
		info.Abilities = append(info.Abilities, AbilityInfo{
			ID:      a.ID,
			Name:    a.Name,
			Kind:    a.Kind.String(),
			Element: a.Element.String(),
			Targets: a.Targets.String(),
			Power:   a.BasePower,
			Cost:    a.ManaCost,
		})
	}
	return info
}
