// Package api provides the HTTP REST surface for Deepbox.
//
// The api package implements:
//   - RESTful endpoints for puzzle commands
//   - Session management endpoints
//   - Level listing and retrieval
//   - WebSocket upgrade handling
//
// Endpoints (all under /api/v1):
//
// Session Management:
//   - POST /sessions - Create new session ({"level": "name"}, empty for default)
//   - GET /sessions - List sessions (sort, order, limit query params)
//   - GET /sessions/{id} - Get one session
//   - DELETE /sessions/{id} - Remove a session
//
// Commands:
//   - POST /sessions/{id}/move - One move ({"direction": "up|down|left|right"})
//   - POST /sessions/{id}/moves - A whole sequence ({"moves": "RRUL"})
//   - POST /sessions/{id}/undo - Revert the latest applied move
//   - POST /sessions/{id}/restart - Back to the initial position
//
// State Views:
//   - GET /sessions/{id}/state - Snapshot as JSON
//   - GET /sessions/{id}/render - Text panels (text/plain)
//   - GET /sessions/{id}/history - Move history with pagination
//   - GET /sessions/{id}/dump - Internal structure dump (text/plain)
//
// Levels:
//   - GET /levels - List available levels
//   - GET /levels/{name} - Full level definition as JSON
//
// Health:
//   - GET /health
//
// Command responses carry the outcome ("applied", "illegal" or "won"),
// the resulting snapshot and a rendered panel view:
//
//	{
//	  "outcome": "applied",
//	  "won": false,
//	  "state": { ... },
//	  "panels": ["Two Rooms  moves 3  goals 0/2", "", ...]
//	}
//
// Usage:
//
//	server := api.NewServer(gameService, hub)
//	http.ListenAndServe(":8080", server)
//
// Error Handling:
//
// Errors are returned as JSON with appropriate HTTP status codes:
//
//	{
//	  "error": "error message"
//	}
//
// Unknown sessions and levels map to 404, malformed commands to 400.
//
// WebSocket:
//
// GET /ws?session={id} upgrades the connection and subscribes it to
// that session's state pushes (see transport/websocket).
package api
