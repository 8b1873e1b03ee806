package service

import (
	"time"

	"github.com/deepbox/deepbox/game/engine"
)

// SessionInfo provides information about a puzzle session
type SessionInfo struct {
	ID             string           `json:"id"`
	LevelID        string           `json:"level_id"` // The identifier the session was created from
	LevelName      string           `json:"level_name"`
	CreatedAt      time.Time        `json:"created_at"`
	LastAccessedAt time.Time        `json:"last_accessed_at"`
	State          *engine.Snapshot `json:"state"`
}

// CommandResult contains the result of a single command
type CommandResult struct {
	Outcome string           `json:"outcome"` // applied|illegal|won
	Won     bool             `json:"won"`
	State   *engine.Snapshot `json:"state"`
	Panels  []string         `json:"panels"`
	Message string           `json:"message,omitempty"`
}

// BulkResult contains the result of playing a move string
type BulkResult struct {
	RequestedMoves int  `json:"requested_moves"`
	MovesApplied   int  `json:"moves_applied"`
	Success        bool `json:"success"`

	StoppedOnMove int    `json:"stopped_on_move,omitempty"` // 1-based index of the move that caused the stop
	StopReason    string `json:"stop_reason,omitempty"`     // illegal|won
	Truncated     bool   `json:"truncated,omitempty"`
	Limit         int    `json:"limit,omitempty"`

	Won     bool             `json:"won"`
	State   *engine.Snapshot `json:"state"`
	Panels  []string         `json:"panels"`
	Message string           `json:"message,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// MoveEntry is one applied move in a session's history
type MoveEntry struct {
	Seq       int    `json:"seq"` // 1-based position in the history
	Direction string `json:"direction"`
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []MoveEntry `json:"moves"`
	Solution    string      `json:"solution"` // full history as a UDLR string
	TotalMoves  int         `json:"total_moves"`
	Page        int         `json:"page"`
	PageSize    int         `json:"page_size"`
	TotalPages  int         `json:"total_pages"`
	HasNext     bool        `json:"has_next"`
	HasPrevious bool        `json:"has_previous"`
}

// LevelInfo provides information about an available level
type LevelInfo struct {
	Filename string `json:"filename"`
	LevelID  string `json:"level_id"` // The identifier to use for session creation
	Name     string `json:"name"`     // Display name
	Boards   int    `json:"boards"`
	Entities int    `json:"entities"`
	Goals    int    `json:"goals"`
}
