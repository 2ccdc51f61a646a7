package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/duelforge/duel-server-go/internal/game"
	"github.com/duelforge/duel-server-go/internal/game/rules"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// Tools exposes one match at a time to an agent over MCP. The agent always
// plays the human side against the scripted opponent.
type Tools struct {
	engine *game.Engine
	logger *zap.Logger

	mu      sync.Mutex
	matchID string
}

// NewTools creates the tool set.
func NewTools(engine *game.Engine, logger *zap.Logger) *Tools {
	return &Tools{engine: engine, logger: logger}
}

// RegisterTools adds all game tools to the MCP server.
func (t *Tools) RegisterTools(s *server.MCPServer) {
	s.AddTool(newGameTool(), t.handleNewGame)
	s.AddTool(playCardTool(), t.handlePlayCard)
	s.AddTool(selectAttackerTool(), t.handleSelectAttacker)
	s.AddTool(enterCombatTool(), t.commandHandler(game.CommandEnterCombat))
	s.AddTool(declareAttackTool(), t.handleDeclareAttack)
	s.AddTool(drawCardTool(), t.commandHandler(game.CommandDrawCard))
	s.AddTool(endTurnTool(), t.commandHandler(game.CommandEndTurn))
	s.AddTool(getStateTool(), t.handleGetState)
	s.AddTool(getEventsTool(), t.handleGetEvents)
}

// --- Tool definitions ---

func newGameTool() mcp.Tool {
	return mcp.NewTool("new_game",
		mcp.WithDescription("Start a new duel against the scripted opponent, replacing any running one. "+
			"Returns the initial state (your hand, both fields, energy) and the setup events."),
		mcp.WithString("seed", mcp.Description("Optional seed; the same seed deals the same cards")),
		mcp.WithString("name", mcp.Description("Optional display name for your side")),
	)
}

func playCardTool() mcp.Tool {
	return mcp.NewTool("play_card",
		mcp.WithDescription("Deploy a card from your hand to your field during the main phase. Costs energy; the card enters exhausted."),
		mcp.WithString("card_id", mcp.Required(), mcp.Description("Id of the card in your hand")),
	)
}

func selectAttackerTool() mcp.Tool {
	return mcp.NewTool("select_attacker",
		mcp.WithDescription("Select one of your ready field creatures as attacker. During the main phase the first call only moves to combat; "+
			"call again to select. Selecting the selected creature again clears the selection."),
		mcp.WithString("card_id", mcp.Required(), mcp.Description("Id of the creature on your field")),
	)
}

func enterCombatTool() mcp.Tool {
	return mcp.NewTool("enter_combat",
		mcp.WithDescription("Move from the main phase to combat. Cards can no longer be played this turn."),
	)
}

func declareAttackTool() mcp.Tool {
	return mcp.NewTool("declare_attack",
		mcp.WithDescription("Attack with the selected creature. Give a defender_id to hit an enemy creature, or omit it to hit the opponent directly."),
		mcp.WithString("defender_id", mcp.Description("Id of the enemy creature; empty for a direct attack")),
	)
}

func drawCardTool() mcp.Tool {
	return mcp.NewTool("draw_card",
		mcp.WithDescription("Draw a card during the main phase. A full hand burns the card; an empty deck costs hit points."),
	)
}

func endTurnTool() mcp.Tool {
	return mcp.NewTool("end_turn",
		mcp.WithDescription("End your turn. The opponent plays its whole turn before this returns; its events are included."),
	)
}

func getStateTool() mcp.Tool {
	return mcp.NewTool("get_state",
		mcp.WithDescription("Get the current match state without acting. Read-only."),
	)
}

func getEventsTool() mcp.Tool {
	return mcp.NewTool("get_events",
		mcp.WithDescription("Get the match events after a sequence number. Read-only."),
		mcp.WithNumber("since", mcp.Description("Return events with a sequence number greater than this (default 0)")),
	)
}

// --- Tool handlers ---

func (t *Tools) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.matchID != "" {
		_ = t.engine.EndGame(t.matchID)
		t.matchID = ""
	}

	view, res, err := t.engine.NewGame(game.GameOptions{
		Seed:      request.GetString("seed", ""),
		HumanName: request.GetString("name", ""),
	})
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to start game: %v", err), nil
	}
	t.matchID = view.ID

	if t.logger != nil {
		t.logger.Info("mcp match started", zap.String("match_id", view.ID))
	}
	return respondJSON(map[string]interface{}{
		"match":  view,
		"events": res.Events,
	}), nil
}

func (t *Tools) handlePlayCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cardID := request.GetString("card_id", "")
	if cardID == "" {
		return mcp.NewToolResultError("card_id is required"), nil
	}
	return t.execute(ctx, game.Command{Type: game.CommandPlayCard, CardID: cardID})
}

func (t *Tools) handleSelectAttacker(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cardID := request.GetString("card_id", "")
	if cardID == "" {
		return mcp.NewToolResultError("card_id is required"), nil
	}
	return t.execute(ctx, game.Command{Type: game.CommandSelectAttacker, CardID: cardID})
}

func (t *Tools) handleDeclareAttack(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.execute(ctx, game.Command{
		Type:       game.CommandDeclareAttack,
		DefenderID: request.GetString("defender_id", ""),
	})
}

func (t *Tools) commandHandler(cmdType game.CommandType) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return t.execute(ctx, game.Command{Type: cmdType})
	}
}

func (t *Tools) execute(ctx context.Context, cmd game.Command) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.matchID == "" {
		return mcp.NewToolResultError("No game is running. Use new_game first."), nil
	}

	cmd.Side = rules.SideHuman
	res, err := t.engine.Execute(ctx, t.matchID, cmd)
	if err != nil {
		return mcp.NewToolResultErrorf("Command failed: %v", err), nil
	}
	view, err := t.engine.View(t.matchID, rules.SideHuman)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to read state: %v", err), nil
	}
	return respondJSON(map[string]interface{}{
		"result": res,
		"match":  view,
	}), nil
}

func (t *Tools) handleGetState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.matchID == "" {
		return mcp.NewToolResultError("No game is running. Use new_game first."), nil
	}
	view, err := t.engine.View(t.matchID, rules.SideHuman)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to read state: %v", err), nil
	}
	return respondJSON(map[string]interface{}{"match": view}), nil
}

func (t *Tools) handleGetEvents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.matchID == "" {
		return mcp.NewToolResultError("No game is running. Use new_game first."), nil
	}
	events, err := t.engine.Events(t.matchID, request.GetInt("since", 0))
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to read events: %v", err), nil
	}
	if events == nil {
		events = []rules.Event{}
	}
	return respondJSON(map[string]interface{}{"events": events}), nil
}

func respondJSON(v interface{}) *mcp.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf(`{"error": "marshal error: %v"}`, err))
	}
	return mcp.NewToolResultText(string(data))
}
