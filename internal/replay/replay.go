// Package replay records the inputs of a battle so it can be re-run
// bit-for-bit from its seed.
package replay

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/peterkuimelis/vale/internal/battle"
	"github.com/peterkuimelis/vale/internal/content"
	"github.com/peterkuimelis/vale/internal/log"
	"github.com/peterkuimelis/vale/internal/rng"
	"gopkg.in/yaml.v3"
)

// Journal is everything needed to reproduce a battle.
type Journal struct {
	Seed      int64    `yaml:"seed"`
	Encounter string   `yaml:"encounter"`
	Party     []string `yaml:"party"`
	Level     int      `yaml:"level"`
	Djinn     []string `yaml:"djinn,omitempty"`
	Rounds    []Round  `yaml:"rounds"`
	// Digest of the final state, filled in when the journal is closed.
	Digest string `yaml:"digest,omitempty"`
}

// Round is the player input for one round.
type Round struct {
	Djinn   []string `yaml:"djinn,omitempty"`
	Actions []Action `yaml:"actions"`
}

// Action is one queued player action. An empty Ability is a basic attack.
type Action struct {
	Unit    string   `yaml:"unit"`
	Ability string   `yaml:"ability,omitempty"`
	Targets []string `yaml:"targets,flow"`
}

// Result is the outcome of running a journal.
type Result struct {
	State  *battle.BattleState
	Events []log.BattleEvent
	Digest string
}

// RoundSeed is the seed of the generator passed to ExecuteRound for round n.
func RoundSeed(seed int64, n int) int64 {
	return rng.DeriveSeed(seed, "round:"+strconv.Itoa(n))
}

// Parse decodes a journal.
func Parse(data []byte) (*Journal, error) {
	var j Journal
	if err := yaml.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse replay YAML: %w", err)
	}
	if j.Seed < 0 {
		return nil, fmt.Errorf("replay seed %d: %w", j.Seed, rng.ErrInvalidSeed)
	}
	return &j, nil
}

// Load reads a journal from disk.
func Load(path string) (*Journal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Marshal encodes the journal as YAML.
func (j *Journal) Marshal() ([]byte, error) {
	return yaml.Marshal(j)
}

// Save writes the journal to path.
func (j *Journal) Save(path string) error {
	data, err := j.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Capture records the planned input of b as a round.
func Capture(b *battle.BattleState) Round {
	r := Round{Djinn: append([]string(nil), b.QueuedDjinn...)}
	for _, qa := range b.QueuedActions {
		if qa == nil {
			continue
		}
		r.Actions = append(r.Actions, Action{
			Unit:    qa.UnitID,
			Ability: qa.AbilityID,
			Targets: append([]string(nil), qa.TargetIDs...),
		})
	}
	return r
}

// Apply queues a recorded round onto b.
func Apply(c *content.Catalog, b *battle.BattleState, r Round) (*battle.BattleState, error) {
	var err error
	for _, d := range r.Djinn {
		if b, err = battle.QueueDjinn(b, d); err != nil {
			return b, err
		}
	}
	for _, a := range r.Actions {
		var def *battle.Ability
		if a.Ability != "" {
			ab, ok := c.Ability(a.Ability)
			if !ok {
				return b, fmt.Errorf("%w: %q", battle.ErrUnknownAbility, a.Ability)
			}
			def = &ab
		}
		if b, err = battle.QueueAction(b, a.Unit, a.Ability, a.Targets, def); err != nil {
			return b, err
		}
	}
	return b, nil
}

// Step executes the current round of b with the journal's seed schedule.
func Step(seed int64, b *battle.BattleState) (*battle.BattleState, []log.BattleEvent, error) {
	r, err := rng.New(RoundSeed(seed, b.RoundNumber))
	if err != nil {
		return b, nil, err
	}
	return battle.ExecuteRound(b, r)
}

// Run re-plays a journal against a catalog.
func Run(c *content.Catalog, j *Journal) (*Result, error) {
	b, err := c.NewBattle(j.Party, j.Level, j.Djinn, j.Encounter)
	if err != nil {
		return nil, err
	}
	res := &Result{}
	for i, r := range j.Rounds {
		if b.IsOver() {
			return nil, fmt.Errorf("round %d: battle already ended (%s)", i+1, b.Outcome)
		}
		if b, err = Apply(c, b, r); err != nil {
			return nil, fmt.Errorf("round %d: %w", i+1, err)
		}
		var events []log.BattleEvent
		if b, events, err = Step(j.Seed, b); err != nil {
			return nil, fmt.Errorf("round %d: %w", i+1, err)
		}
		res.Events = append(res.Events, events...)
	}
	res.State = b
	res.Digest = Digest(b)
	return res, nil
}

// Digest is a stable fingerprint of the observable state of a battle.
func Digest(b *battle.BattleState) string {
	d := xxhash.New()
	w := func(format string, args ...any) {
		fmt.Fprintf(d, format, args...)
	}
	w("r%d p%s o%s m%d/%d;", b.RoundNumber, b.Phase, b.Outcome, b.RemainingMana, b.MaxMana)
	units := append(append([]battle.Unit(nil), b.PlayerTeam.Units...), b.Enemies...)
	for _, u := range units {
		w("%s:%d", u.ID, u.CurrentHP)
		for _, st := range u.StatusEffects {
			w(",%s/%d/%d", st.Type, st.Magnitude, st.Duration)
		}
		w(";")
	}
	ids := make([]string, 0, len(b.PlayerTeam.DjinnTrackers))
	for id := range b.PlayerTeam.DjinnTrackers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		tr := b.PlayerTeam.DjinnTrackers[id]
		w("%s:%s:%d:%d;", id, tr.State, tr.LastActivatedRound, b.DjinnRecoveryTimers[id])
	}
	return strconv.FormatUint(d.Sum64(), 16)
}
