// Package websocket provides the live state push transport for Deepbox.
//
// The websocket package implements:
//   - Real-time state pushes after every applied command
//   - Session-aware WebSocket connections
//   - Command frames proxied to the game service
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by a dedicated
// read and write goroutine pair; the hub's Run loop owns the session map,
// so registration, unregistration and broadcasting never race.
//
// Message Protocol:
//
// Messages are JSON-encoded:
//   - Outgoing state: {"type": "state", "session": "abc1", "snapshot": {...}}
//   - Outgoing error: {"type": "error", "session": "abc1", "error": "..."}
//   - Incoming command: {"type": "command", "direction": "up"} or
//     {"type": "command", "command": "undo"}
//
// Session Integration:
//
// Clients specify their session ID via query parameter (?session=abc1)
// when establishing the connection. State updates are pushed only to
// clients subscribed to that session. The hub implements the service's
// StateNotifier interface, so wiring it up is one call each way:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	hub.SetService(gameService)
//	gameService.SetNotifier(hub)
//
// Connection Lifecycle:
//
// 1. Client connects with session ID
// 2. Connection registered with hub
// 3. Client sends command frames, receives state pushes
// 4. Disconnection triggers cleanup
//
// Concurrency:
//
// Multiple clients can connect, disconnect, and send commands
// simultaneously. A client that cannot keep up with the push rate is
// dropped rather than allowed to block the hub.
package websocket
