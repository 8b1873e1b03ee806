package session

import (
	"time"

	"github.com/deepbox/deepbox/game/engine"
	"github.com/deepbox/deepbox/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData is the JSON structure for persisted sessions.
// The full level definition is embedded so a session file stands on its
// own, and the state is stored as the applied move log: the engine is
// deterministic, so replaying the log restores the exact state, undo
// depth included.
type PersistedSessionData struct {
	ID             string             `json:"id"`
	LevelID        string             `json:"level_id"`
	Definition     *engine.Definition `json:"definition"`
	Moves          string             `json:"moves"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
}
