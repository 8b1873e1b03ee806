package service

import (
	"context"
	"time"

	"github.com/deepbox/deepbox/game/engine"
)

// GameService defines all puzzle-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, levelID string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Commands
	Move(ctx context.Context, sessionID, direction string) (*CommandResult, error)
	PlayMoves(ctx context.Context, sessionID, moves string) (*BulkResult, error)
	Undo(ctx context.Context, sessionID string) (*CommandResult, error)
	Restart(ctx context.Context, sessionID string) (*CommandResult, error)

	// State
	GetState(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	Render(ctx context.Context, sessionID string) (string, error)
	GetDump(ctx context.Context, sessionID string) (string, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Levels
	ListLevels(ctx context.Context) ([]*LevelInfo, error)
	GetLevel(ctx context.Context, levelID string) (*engine.Definition, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, levelID string, def *engine.Definition) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// LevelManager handles level definition loading
type LevelManager interface {
	LoadLevel(name string) (*engine.Definition, error)
	ListLevels() ([]*LevelInfo, error)
	GetDefault() *engine.Definition
}

// StateNotifier is told the new snapshot after every applied command.
type StateNotifier interface {
	NotifyState(sessionID string, state *engine.Snapshot)
}

// Session represents an active puzzle session
type Session struct {
	ID             string
	LevelID        string
	Engine         *engine.GameEngine
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
