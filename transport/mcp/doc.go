// Package mcp provides the Model Context Protocol interface for Deepbox.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions for puzzle operations
//   - A thin HTTP client that proxies every tool call to the REST API
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - world_state: Get the rendered boards, move count and goal progress
//   - move: Execute a single directional move (with an intent explanation)
//   - play_moves: Play a whole move string such as "RRUL"
//   - undo: Take back the latest applied move
//   - restart: Return the puzzle to its initial position
//   - move_history: Retrieve move history with pagination
//   - create_session: Create a new puzzle session with level selection
//   - get_session: Get specific session details
//   - list_sessions: List all active sessions
//   - list_levels: List available levels
//   - solve_level: Breadth-first search for a shortest solution
//   - game_instructions: Full rules, rendering legend and strategy notes
//
// Architecture:
//
// The client holds no game state. Every tool except solve_level is a
// translation layer over the REST API: arguments become request bodies,
// JSON responses become plain text an agent can read. solve_level
// fetches the level definition over REST and runs the search
// in-process, so a long search never ties up the API server.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
// AI Integration:
//
// The MCP interface enables AI agents to:
//   - Play recursive box-pushing puzzles autonomously
//   - Manage multiple puzzle sessions
//   - Replay and analyze move histories
//   - Ask the solver for a reference solution to compare against
package mcp
