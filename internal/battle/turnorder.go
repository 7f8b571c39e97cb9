package battle

import (
	"sort"

	"github.com/peterkuimelis/vale/internal/rng"
)

type turnEntry struct {
	id    string
	first bool
	spd   int
	key   float64
}

// computeTurnOrder sorts acting units by first-strike equipment, then
// effective SPD descending. Every participant draws one tie-break key from
// r in roster order, whether or not it ends up tied.
func computeTurnOrder(b *BattleState, actors []string, r *rng.PRNG) []string {
	entries := make([]turnEntry, 0, len(actors))
	for _, id := range actors {
		u := b.mustUnit(id)
		entries = append(entries, turnEntry{
			id:    id,
			first: alwaysFirst(u),
			spd:   b.effectiveStats(u, Stats{}).SPD,
			key:   r.Next(),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, c := entries[i], entries[j]
		if a.first != c.first {
			return a.first
		}
		if a.spd != c.spd {
			return a.spd > c.spd
		}
		return a.key < c.key
	})
	order := make([]string, len(entries))
	for i, e := range entries {
		order[i] = e.id
	}
	return order
}
