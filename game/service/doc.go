// Package service provides the business logic layer for Deepbox.
//
// The service package implements:
//   - Multi-session puzzle management
//   - Level loading and listing
//   - Command processing (move, undo, restart, bulk solutions)
//   - Session lifecycle management
//   - Move history tracking
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level puzzle operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// LevelManager loads level definitions from storage.
// StateNotifier receives snapshots after applied commands; the WebSocket
// hub implements it to push state changes to subscribers.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the puzzle engine, providing session isolation, level management, and
// command orchestration. Each session maintains its own engine instance
// with independent state. The engine itself is single-threaded, so the
// service serializes commands behind its own lock.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	levelMgr, _ := level.NewManager("levels")
//	gameService := service.NewGameService(sessionMgr, levelMgr)
//
//	// Create a new session
//	info, err := gameService.CreateSession(ctx, "entry")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Execute moves
//	result, err := gameService.Move(ctx, info.ID, "right")
//
// Session Management:
//
// Sessions are identified by short unique IDs and maintain independent
// puzzle state. Multiple sessions can run concurrently on different
// levels. Sessions track creation time, last access time, the level they
// were created from, and the applied move log.
package service
