// Package session keeps live battles in memory for the interactive
// front ends. Every session records a replay journal as it plays.
package session

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/peterkuimelis/vale/internal/battle"
	"github.com/peterkuimelis/vale/internal/content"
	"github.com/peterkuimelis/vale/internal/log"
	"github.com/peterkuimelis/vale/internal/replay"
	"github.com/peterkuimelis/vale/internal/rng"
	"go.uber.org/zap"
)

// ErrNotFound is returned for an unknown session ID.
var ErrNotFound = errors.New("session not found")

// Options describe the battle a session starts with.
type Options struct {
	Encounter string
	Party     []string
	Level     int
	Djinn     []string
	// Seed 0 derives a seed from the session ID.
	Seed int64
}

// Session is one battle in progress.
type Session struct {
	ID string

	mu      sync.Mutex
	catalog *content.Catalog
	seed    int64
	state   *battle.BattleState
	events  *log.MemoryLogger
	journal replay.Journal
	logger  *zap.Logger
}

// Seed returns the master seed of the session.
func (s *Session) Seed() int64 { return s.seed }

// State returns a copy of the current battle state.
func (s *Session) State() *battle.BattleState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Events returns every battle event logged so far.
func (s *Session) Events() []log.BattleEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events.Events()
}

// Journal returns a copy of the replay journal recorded so far.
func (s *Session) Journal() replay.Journal {
	s.mu.Lock()
	defer s.mu.Unlock()
	j := s.journal
	j.Rounds = append([]replay.Round(nil), s.journal.Rounds...)
	return j
}

// update applies fn to the current state and keeps the result on success.
func (s *Session) update(fn func(*battle.BattleState) (*battle.BattleState, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(s.state)
	if err != nil {
		return err
	}
	s.state = next
	return nil
}

// QueueAction queues an action for a player unit. The ability definition
// comes from the catalog; an empty abilityID is a basic attack.
func (s *Session) QueueAction(unitID, abilityID string, targets []string) error {
	var def *battle.Ability
	if abilityID != "" {
		ab, ok := s.catalog.Ability(abilityID)
		if !ok {
			return fmt.Errorf("%w: %q", battle.ErrUnknownAbility, abilityID)
		}
		def = &ab
	}
	return s.update(func(b *battle.BattleState) (*battle.BattleState, error) {
		return battle.QueueAction(b, unitID, abilityID, targets, def)
	})
}

// ClearAction removes the queued action of a player unit.
func (s *Session) ClearAction(unitID string) error {
	return s.update(func(b *battle.BattleState) (*battle.BattleState, error) {
		return battle.ClearAction(b, unitID)
	})
}

// QueueDjinn queues a Set Djinn for activation this round.
func (s *Session) QueueDjinn(djinnID string) error {
	return s.update(func(b *battle.BattleState) (*battle.BattleState, error) {
		return battle.QueueDjinn(b, djinnID)
	})
}

// UnqueueDjinn removes a Djinn from this round's activation list.
func (s *Session) UnqueueDjinn(djinnID string) error {
	return s.update(func(b *battle.BattleState) (*battle.BattleState, error) {
		return battle.UnqueueDjinn(b, djinnID)
	})
}

// AutoQueue fills every open slot with a basic attack.
func (s *Session) AutoQueue() error {
	return s.update(battle.FillDefaultActions)
}

// Execute resolves the planned round and returns its events. The round
// input is appended to the journal only when execution succeeds.
func (s *Session) Execute() ([]log.BattleEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	input := replay.Capture(s.state)
	next, events, err := replay.Step(s.seed, s.state)
	if err != nil {
		return nil, err
	}
	s.state = next
	s.events.LogAll(events)
	s.journal.Rounds = append(s.journal.Rounds, input)

	s.logger.Debug("round executed",
		zap.Int("round", len(s.journal.Rounds)),
		zap.Int("events", len(events)),
		zap.Stringer("phase", next.Phase),
	)
	if next.IsOver() {
		s.journal.Digest = replay.Digest(next)
		s.logger.Info("battle ended",
			zap.Stringer("outcome", next.Outcome),
			zap.Int("rounds", len(s.journal.Rounds)),
			zap.String("digest", s.journal.Digest),
		)
	}
	return events, nil
}

// Manager owns the live sessions.
type Manager struct {
	catalog *content.Catalog
	logger  *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager returns an empty manager building battles from c.
func NewManager(c *content.Catalog, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		catalog:  c,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Catalog returns the content the manager builds battles from.
func (m *Manager) Catalog() *content.Catalog { return m.catalog }

// Start creates a battle and registers a session for it.
func (m *Manager) Start(opts Options) (*Session, error) {
	if opts.Seed < 0 {
		return nil, fmt.Errorf("seed %d: %w", opts.Seed, rng.ErrInvalidSeed)
	}
	if opts.Level == 0 {
		opts.Level = 1
	}
	b, err := m.catalog.NewBattle(opts.Party, opts.Level, opts.Djinn, opts.Encounter)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	seed := opts.Seed
	if seed == 0 {
		seed = int64(binary.LittleEndian.Uint64(id[:8]) >> 1)
	}
	s := &Session{
		ID:      id.String(),
		catalog: m.catalog,
		seed:    seed,
		state:   b,
		events:  log.NewMemoryLogger(),
		journal: replay.Journal{
			Seed:      seed,
			Encounter: opts.Encounter,
			Party:     append([]string(nil), opts.Party...),
			Level:     opts.Level,
			Djinn:     append([]string(nil), opts.Djinn...),
		},
		logger: m.logger.With(zap.String("session", id.String())),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	s.logger.Info("battle started",
		zap.String("encounter", opts.Encounter),
		zap.Strings("party", opts.Party),
		zap.Int64("seed", seed),
	)
	return s, nil
}

// Get looks up a session by ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return s, nil
}

// Remove drops a session. Removing an unknown ID is a no-op.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// IDs lists the live session IDs in sorted order.
func (m *Manager) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
