package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/deepbox/deepbox/game/engine"
	"github.com/deepbox/deepbox/game/render"
	"github.com/deepbox/deepbox/game/service"
	"github.com/deepbox/deepbox/solver"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Deepbox",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Deepbox - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Push every block onto a matching goal cell and stand the player on the
player goal. Boards can sit inside pushable boxes, and boxes can contain
the very board they stand on.

AVAILABLE TOOLS:
- world_state: Get the rendered boards for a session
- move: Single move (up/down/left/right) - requires intent explanation
- play_moves: A whole move string like "RRUL" - requires intent explanation
- undo: Take back the latest applied move
- restart: Back to the initial position
- move_history: View past moves and the replay string
- create_session: Create new puzzle session
- get_session: Get session details
- list_sessions: List all active sessions
- list_levels: List available levels
- solve_level: Search for a shortest solution to a level
- game_instructions: Get comprehensive game instructions and rules

NOTE: The 'intent' parameter on move/play_moves tools serves as rubber duck debugging - explain your reasoning!`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new puzzle session with optional level selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level": map[string]interface{}{
					"type":        "string",
					"description": "Name of the level to load (optional, defaults to the entry level)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active puzzle sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID to retrieve",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Puzzle commands
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "world_state",
		Description: "Get the rendered boards, move count and goal progress",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleWorldState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move the player in a direction, pushing whatever is in the way",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"up", "down", "left", "right"},
					"description": "Direction to move",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "play_moves",
		Description: "Play a whole move string such as \"RRUL\". Stops at the first illegal move or at a win.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"moves": map[string]interface{}{
					"type":        "string",
					"description": "Move string using U, D, L, R (whitespace and commas are ignored)",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence of moves (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "moves"},
		},
	}, c.handlePlayMoves)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "undo",
		Description: "Take back the latest applied move",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleUndo)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "restart",
		Description: "Return the puzzle to its initial position and clear the move history",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleRestart)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a session, including the replay string",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_levels",
		Description: "List available levels",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListLevels)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solve_level",
		Description: "Search for a shortest solution to a level with breadth-first search. Budgeted; may report no solution found.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level": map[string]interface{}{
					"type":        "string",
					"description": "Name of the level to solve",
				},
				"max_states": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of distinct states to explore (optional)",
				},
				"max_depth": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum solution length to consider (optional)",
				},
				"timeout_seconds": map[string]interface{}{
					"type":        "integer",
					"description": "Wall clock budget for the search (optional, default 10)",
				},
			},
			Required: []string{"level"},
		},
	}, c.handleSolveLevel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	levelName, _ := args["level"].(string)

	body := map[string]string{}
	if levelName != "" {
		body["level"] = levelName
	}

	var session service.SessionInfo
	err := c.apiCall("POST", "/api/v1/sessions", body, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nLevel: %s\n\n%s",
		session.ID, session.LevelID, render.Text(session.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall("GET", "/api/v1/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		progress := ""
		if s.State != nil {
			progress = fmt.Sprintf(", moves %d, goals %d/%d", s.State.MoveCount, s.State.Satisfied, s.State.Goals)
			if s.State.Won {
				progress += ", WON"
			}
		}
		result += fmt.Sprintf("- %s (Level: %s, Created: %s%s)\n",
			s.ID, s.LevelID, s.CreatedAt.Format("15:04:05"), progress)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var session service.SessionInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/v1/sessions/%s", sessionID), nil, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatSessionInfo(&session)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleWorldState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var state engine.Snapshot
	err := c.apiCall("GET", fmt.Sprintf("/api/v1/sessions/%s/state", sessionID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(render.Text(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	direction, _ := args["direction"].(string)
	intent, _ := args["intent"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	body := map[string]interface{}{
		"direction": direction,
	}

	var result service.CommandResult
	err := c.apiCall("POST", fmt.Sprintf("/api/v1/sessions/%s/move", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCommandResult(&result)), nil
}

func (c *Client) handlePlayMoves(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	moves, _ := args["moves"].(string)
	intent, _ := args["intent"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	body := map[string]interface{}{
		"moves": moves,
	}

	var result service.BulkResult
	err := c.apiCall("POST", fmt.Sprintf("/api/v1/sessions/%s/moves", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkResult(&result)), nil
}

func (c *Client) handleUndo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var result service.CommandResult
	err := c.apiCall("POST", fmt.Sprintf("/api/v1/sessions/%s/undo", sessionID), nil, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCommandResult(&result)), nil
}

func (c *Client) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var result service.CommandResult
	err := c.apiCall("POST", fmt.Sprintf("/api/v1/sessions/%s/restart", sessionID), nil, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCommandResult(&result)), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	params := "?"
	if page, ok := args["page"].(float64); ok {
		params += fmt.Sprintf("page=%d&", int(page))
	}
	if limit, ok := args["limit"].(float64); ok {
		params += fmt.Sprintf("limit=%d&", int(limit))
	}

	var history service.HistoryResponse
	err := c.apiCall("GET", fmt.Sprintf("/api/v1/sessions/%s/history%s", sessionID, params), nil, &history)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListLevels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var levels []service.LevelInfo
	err := c.apiCall("GET", "/api/v1/levels", nil, &levels)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Levels:\n\n"
	for _, lv := range levels {
		result += fmt.Sprintf("• %s — %s\n  boards: %d, entities: %d, goals: %d\n\n",
			lv.LevelID, lv.Name, lv.Boards, lv.Entities, lv.Goals)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleSolveLevel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	levelName, _ := args["level"].(string)

	var def engine.Definition
	err := c.apiCall("GET", fmt.Sprintf("/api/v1/levels/%s", levelName), nil, &def)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opts := solver.Options{}
	if v, ok := args["max_states"].(float64); ok && v > 0 {
		opts.MaxStates = int(v)
	}
	if v, ok := args["max_depth"].(float64); ok && v > 0 {
		opts.MaxDepth = int(v)
	}

	timeout := 10 * time.Second
	if v, ok := args["timeout_seconds"].(float64); ok && v > 0 {
		timeout = time.Duration(v) * time.Second
	}

	solveCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := solver.Solve(solveCtx, &def, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !res.Found {
		result := fmt.Sprintf("No solution found for %q (%s).\nStates explored: %d, deepest depth: %d, elapsed: %s",
			levelName, res.Reason, res.States, res.Depth, res.Elapsed.Round(time.Millisecond))
		return mcp.NewToolResultText(result), nil
	}

	result := fmt.Sprintf("Solved %q in %d moves: %s\nStates explored: %d, elapsed: %s\n\nReplay it with play_moves.",
		levelName, len(res.Solution), res.Solution, res.States, res.Elapsed.Round(time.Millisecond))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🎮 Deepbox - Complete Instructions

GAME OBJECTIVE:
Push every block onto a goal cell of its color and finish with the player
standing on the player goal (=). The twist: boards live inside pushable
boxes, and a box can contain the very board it stands on.

RENDERED VIEW:
Each board is drawn as a panel titled [n] key. Inside a panel:
• P - The player
• A..Z - A block, shown as its color letter in upper case
• 0..9 - A box or infinite exit, shown as the last digit of the board it
  opens into (the legend below the panels maps digits to panels)
• # - Wall (impassable)
• . - Floor
• = - Player goal
• a..z - Block goal for that color

The legend lines under the panels explain every container, flipped
entity and clone set, for example:
  1 box b -> [1] cellar
  A block a, flipped
  2 infinite c -> [0] root, clone set 1

GAME MECHANICS:
• Movement: up/down/left/right. The player pushes chains of blocks and
  boxes; a push is legal only if the whole chain can move.
• Entering: when a pushed entity cannot advance but faces a box, it may
  slide INTO that box's board through the facing edge, landing on the
  entry cell just inside. Entry position follows the push direction and
  the relative offset along the edge.
• Ejecting: pushing an entity over its board's open edge pops it OUT of
  the containing box, onto the cell beyond the box.
• Flipped entities: a flipped box mirrors horizontally - anything that
  enters or leaves it has its lateral offset mirrored.
• Clones: entities in the same clone set move together. A move is legal
  only if EVERY member of the set can make it.
• Infinite exits: an infinite exit block opens into an already existing
  board, creating a cycle. Entering it teleports into that board; the
  containment loop is intentional and finite in state.
• Win: every block goal is covered by a block of the matching color and
  the player stands on '='. The win is evaluated after the whole move
  resolves.
• Undo: every applied move can be taken back exactly, in reverse order.
  Restart resets to the initial position and clears the history, so
  there is nothing to undo right after it.

🤖 AI AGENTS - STRATEGY:

1. **Read the legend first**: the digits in panels are meaningless
   without it. Map every container digit to its target panel before
   planning.

2. **Track which panel the player is in**: after entering a box, your
   moves act inside that panel. The same direction keys apply; only the
   surroundings changed.

3. **Plan pushes, not walks**: moving into a block pushes it. Check the
   chain: the FAR end of the chain must have somewhere to go (a free
   cell, an enterable box, or an edge to eject through).

4. **Use undo liberally**: a wrong push is never fatal. One undo per
   move, in exact reverse order.

5. **Watch flips**: entering a flipped box from the left edge at the
   top puts you at the top of the RIGHT side inside. Mirrored exits
   work the same way.

6. **Clones move in lockstep**: if one clone is blocked, the whole set
   refuses the move. Free every member before pushing the set.

7. **play_moves for long plans**: the string form ("RRULDD") applies
   moves until one is illegal or the level is won, and reports where it
   stopped.

ILLEGAL MOVES:
An illegal move (blocked chain, blocked clone, no legal effect) leaves
the state unchanged and does not count. The response says so; nothing
needs to be undone.

SESSION MANAGEMENT:
- Multiple puzzle sessions can run simultaneously
- Each session has a unique 8-character ID
- Sessions maintain independent state and level
- Sessions persist across server restarts

Good luck going deeper! 📦`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nLevel: %s (%s)\nCreated: %s\n\n%s",
		session.ID, session.LevelID, session.LevelName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		render.Text(session.State))
}

func formatCommandResult(result *service.CommandResult) string {
	var status string
	switch result.Outcome {
	case string(engine.OutcomeWon):
		status = "🎉 " + result.Message
	case string(engine.OutcomeIllegal):
		status = "✗ " + result.Message
	default:
		status = "✓ Move applied"
	}

	return status + "\n\n" + strings.Join(result.Panels, "\n")
}

func formatBulkResult(result *service.BulkResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Applied %d/%d moves\n", result.MovesApplied, result.RequestedMoves))
	if result.Truncated {
		b.WriteString(fmt.Sprintf("Input truncated to the limit of %d moves\n", result.Limit))
	}
	if result.StopReason != "" {
		b.WriteString(fmt.Sprintf("Stopped: %s", result.StopReason))
		if result.Message != "" {
			b.WriteString(" — " + result.Message)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(strings.Join(result.Panels, "\n"))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	result := fmt.Sprintf("Move History (Page %d/%d) — Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, move := range history.Moves {
		result += fmt.Sprintf("%d. %s\n", move.Seq, move.Direction)
	}

	if history.Solution != "" {
		result += fmt.Sprintf("\nReplay string: %s\n", history.Solution)
	}

	return result
}
