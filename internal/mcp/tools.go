package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/peterkuimelis/vale/internal/session"
	"go.uber.org/zap"
)

// Tools serves battles over MCP. One battle is active at a time; starting
// a new one replaces it.
type Tools struct {
	manager *session.Manager
	logger  *zap.Logger
	battles tracker
}

// NewTools returns the tool set backed by m.
func NewTools(m *session.Manager, logger *zap.Logger) *Tools {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tools{manager: m, logger: logger}
}

// Register adds all battle tools to the MCP server.
func (t *Tools) Register(s *server.MCPServer) {
	s.AddTool(startBattleTool(), t.handleStartBattle)
	s.AddTool(queueActionTool(), t.handleQueueAction)
	s.AddTool(queueDjinnTool(), t.handleQueueDjinn)
	s.AddTool(clearActionTool(), t.handleClearAction)
	s.AddTool(executeRoundTool(), t.handleExecuteRound)
	s.AddTool(getBattleStateTool(), t.handleGetBattleState)
	s.AddTool(listContentTool(), t.handleListContent)
}

// --- Tool definitions ---

func startBattleTool() mcp.Tool {
	return mcp.NewTool("start_battle",
		mcp.WithDescription("Start a new battle against an encounter. Returns the battle ID, initial state and seed. "+
			"Use list_content to see encounters, units and Djinn."),
		mcp.WithString("encounter", mcp.Required(), mcp.Description("Encounter ID, e.g. 'goblin-pack'")),
		mcp.WithString("party", mcp.Required(), mcp.Description("Space-separated unit IDs, 1 to 4 (e.g. 'isaac garet')")),
		mcp.WithNumber("level", mcp.Description("Party level, default 1")),
		mcp.WithString("djinn", mcp.Description("Space-separated Djinn IDs to equip, at most 3")),
		mcp.WithNumber("seed", mcp.Description("Master seed; 0 or omitted picks one")),
	)
}

func queueActionTool() mcp.Tool {
	return mcp.NewTool("queue_action",
		mcp.WithDescription("Queue or replace the action of a party unit for this round. Omit ability for a basic attack."),
		mcp.WithString("unit", mcp.Required(), mcp.Description("Party unit ID")),
		mcp.WithString("ability", mcp.Description("Ability ID; empty for a basic attack")),
		mcp.WithString("targets", mcp.Required(), mcp.Description("Space-separated target unit IDs")),
	)
}

func queueDjinnTool() mcp.Tool {
	return mcp.NewTool("queue_djinn",
		mcp.WithDescription("Queue a Set Djinn for activation this round, or remove it with remove=true."),
		mcp.WithString("djinn", mcp.Required(), mcp.Description("Djinn ID")),
		mcp.WithBoolean("remove", mcp.Description("true to unqueue the Djinn")),
	)
}

func clearActionTool() mcp.Tool {
	return mcp.NewTool("clear_action",
		mcp.WithDescription("Remove the queued action of a party unit."),
		mcp.WithString("unit", mcp.Required(), mcp.Description("Party unit ID")),
	)
}

func executeRoundTool() mcp.Tool {
	return mcp.NewTool("execute_round",
		mcp.WithDescription("Resolve the planned round. Every live party unit needs an action unless auto is true."),
		mcp.WithBoolean("auto", mcp.Description("true to fill open slots with basic attacks first")),
	)
}

func getBattleStateTool() mcp.Tool {
	return mcp.NewTool("get_battle_state",
		mcp.WithDescription("Get the current battle state and any events not yet returned. Read-only."),
	)
}

func listContentTool() mcp.Tool {
	return mcp.NewTool("list_content",
		mcp.WithDescription("List the encounters, units, Djinn and abilities available."),
	)
}

// --- Tool handlers ---

func (t *Tools) current() (*session.Session, *mcp.CallToolResult) {
	id := t.battles.activeID()
	if id == "" {
		return nil, mcp.NewToolResultError("No battle is running. Use start_battle first.")
	}
	s, err := t.manager.Get(id)
	if err != nil {
		return nil, mcp.NewToolResultErrorf("Battle lost: %v", err)
	}
	return s, nil
}

// result reports the state after a planning change or an error from it.
func (t *Tools) result(s *session.Session, err error) *mcp.CallToolResult {
	if err != nil {
		return mcp.NewToolResultErrorf("%v", err)
	}
	return mcp.NewToolResultText(respondJSON(respond(s, t.battles.drain(s))))
}

func (t *Tools) handleStartBattle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := session.Options{
		Encounter: request.GetString("encounter", ""),
		Party:     strings.Fields(request.GetString("party", "")),
		Level:     request.GetInt("level", 1),
		Djinn:     strings.Fields(request.GetString("djinn", "")),
		Seed:      int64(request.GetInt("seed", 0)),
	}
	if opts.Encounter == "" {
		return mcp.NewToolResultError("encounter is required"), nil
	}
	if len(opts.Party) == 0 {
		return mcp.NewToolResultError("party must name at least one unit"), nil
	}

	if prev := t.battles.activeID(); prev != "" {
		t.manager.Remove(prev)
	}
	s, err := t.manager.Start(opts)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to start battle: %v", err), nil
	}
	t.battles.setActive(s.ID)
	return t.result(s, nil), nil
}

func (t *Tools) handleQueueAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, errResult := t.current()
	if errResult != nil {
		return errResult, nil
	}
	unit := request.GetString("unit", "")
	ability := request.GetString("ability", "")
	targets := strings.Fields(request.GetString("targets", ""))
	return t.result(s, s.QueueAction(unit, ability, targets)), nil
}

func (t *Tools) handleQueueDjinn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, errResult := t.current()
	if errResult != nil {
		return errResult, nil
	}
	id := request.GetString("djinn", "")
	if request.GetBool("remove", false) {
		return t.result(s, s.UnqueueDjinn(id)), nil
	}
	return t.result(s, s.QueueDjinn(id)), nil
}

func (t *Tools) handleClearAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, errResult := t.current()
	if errResult != nil {
		return errResult, nil
	}
	return t.result(s, s.ClearAction(request.GetString("unit", ""))), nil
}

func (t *Tools) handleExecuteRound(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, errResult := t.current()
	if errResult != nil {
		return errResult, nil
	}
	if request.GetBool("auto", false) {
		if err := s.AutoQueue(); err != nil {
			return mcp.NewToolResultErrorf("%v", err), nil
		}
	}
	if _, err := s.Execute(); err != nil {
		return mcp.NewToolResultErrorf("Cannot execute round: %v", err), nil
	}
	resp := respond(s, t.battles.drain(s))
	if resp.Over {
		t.logger.Info("battle over", zap.String("battle", s.ID), zap.String("outcome", resp.Outcome))
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (t *Tools) handleGetBattleState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, errResult := t.current()
	if errResult != nil {
		return errResult, nil
	}
	return t.result(s, nil), nil
}

// ContentList is the list_content payload.
type ContentList struct {
	Encounters []string `json:"encounters"`
	Units      []string `json:"units"`
	Djinn      []string `json:"djinn"`
	Abilities  []string `json:"abilities"`
}

func (t *Tools) handleListContent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c := t.manager.Catalog()
	if c == nil {
		return nil, errors.New("no content loaded")
	}
	return mcp.NewToolResultText(respondJSON(ContentList{
		Encounters: c.EncounterIDs(),
		Units:      c.UnitIDs(),
		Djinn:      c.DjinnIDs(),
		Abilities:  c.AbilityIDs(),
	})), nil
}
