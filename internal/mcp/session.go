package mcp

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/peterkuimelis/vale/internal/log"
	"github.com/peterkuimelis/vale/internal/session"
	"github.com/peterkuimelis/vale/internal/view"
)

// ToolResponse is the JSON envelope returned by all battle tools.
type ToolResponse struct {
	BattleID string           `json:"battle_id"`
	Seed     int64            `json:"seed"`
	Events   []view.EventView `json:"events"`
	State    *view.StateView  `json:"state"`
	Over     bool             `json:"over"`
	Outcome  string           `json:"outcome,omitempty"`
	// Digest is the replay fingerprint, set once the battle has ended.
	Digest string `json:"digest,omitempty"`
}

// tracker remembers the active battle of this stdio process and which of
// its events the client has already seen.
type tracker struct {
	mu     sync.Mutex
	active string
	seen   map[string]int
}

func (t *tracker) setActive(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = id
	if t.seen == nil {
		t.seen = map[string]int{}
	}
}

func (t *tracker) activeID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// drain returns the events of s logged since the previous drain.
func (t *tracker) drain(s *session.Session) []log.BattleEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	events := s.Events()
	from := t.seen[s.ID]
	if from > len(events) {
		from = len(events)
	}
	t.seen[s.ID] = len(events)
	return events[from:]
}

// respond builds the envelope for s with the given events.
func respond(s *session.Session, events []log.BattleEvent) *ToolResponse {
	st := s.State()
	resp := &ToolResponse{
		BattleID: s.ID,
		Seed:     s.Seed(),
		Events:   view.BuildEventViews(events),
		State:    view.BuildStateView(st),
		Over:     st.IsOver(),
	}
	if resp.Over {
		resp.Outcome = st.Outcome.String()
		resp.Digest = s.Journal().Digest
	}
	return resp
}

// respondJSON marshals a response to a JSON string.
func respondJSON(resp any) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
