// Package session provides session management for Deepbox.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session lifecycle management
//   - JSON file persistence with replay-based restore
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// FilePersistence stores one JSON file per session. A persisted session
// holds its level definition and the applied move log; restoring replays
// the log through a fresh engine, which reproduces the exact state
// because the engine is deterministic.
//
// Session Identifiers:
//
// Session IDs are the first segment of a UUID, eight lowercase hex
// characters, short enough to type and paste. Lookups are
// case-insensitive.
//
// Concurrency:
//
// The session manager is thread-safe and supports concurrent operations.
// Multiple goroutines can safely create, retrieve, and delete different
// sessions simultaneously. Commands against a single session are
// serialized by the service layer above.
//
// Usage:
//
//	manager := session.NewManager()
//
//	// Create a new session
//	sess, err := manager.Create("", "entry", def)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Retrieve existing session
//	sess, err = manager.Get(sessionID)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// List all active sessions
//	sessions := manager.List()
//
// Cleanup:
//
// Sessions can be explicitly deleted or expire after inactivity. The
// server runs CleanupExpiredSessions on a ticker; expiry only evicts
// from memory, so a persisted session transparently reloads on its next
// access.
package session
