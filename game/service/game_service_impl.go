package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/deepbox/deepbox/game/engine"
	"github.com/deepbox/deepbox/game/render"
)

// GameServiceImpl implements the GameService interface
type GameServiceImpl struct {
	sessions SessionManager
	levels   LevelManager
	notifier StateNotifier
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, levels LevelManager) *GameServiceImpl {
	return &GameServiceImpl{
		sessions: sessions,
		levels:   levels,
	}
}

// SetNotifier attaches a notifier that is told the new state after every
// applied command. Passing nil disables notifications.
func (s *GameServiceImpl) SetNotifier(n StateNotifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifier = n
}

// CreateSession creates a new puzzle session
func (s *GameServiceImpl) CreateSession(ctx context.Context, levelID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Load level
	var def *engine.Definition
	var err error
	if levelID != "" {
		def, err = s.levels.LoadLevel(levelID)
		if err != nil {
			// Provide helpful error message with available options
			if strings.Contains(err.Error(), "level not found") {
				if levels, listErr := s.levels.ListLevels(); listErr == nil && len(levels) > 0 {
					var levelIDs []string
					for _, lv := range levels {
						levelIDs = append(levelIDs, lv.LevelID)
					}
					return nil, fmt.Errorf("level '%s' not found. Available levels: %v", levelID, levelIDs)
				}
				return nil, fmt.Errorf("level '%s' not found. Use /api/v1/levels to list available levels", levelID)
			}
			return nil, fmt.Errorf("failed to load level %s: %w", levelID, err)
		}
	} else {
		def = s.levels.GetDefault()
		levelID = "default"
	}

	// Let the session manager generate an ID
	session, err := s.sessions.Create("", levelID, def)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return s.sessionInfo(session), nil
}

// GetSession retrieves session information
func (s *GameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	return s.sessionInfo(session), nil
}

// ListSessions returns all active sessions
func (s *GameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}

	return result, nil
}

// DeleteSession removes a session
func (s *GameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Move executes a single directional move for a session
func (s *GameServiceImpl) Move(ctx context.Context, sessionID, direction string) (*CommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	dir, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, err
	}

	outcome, err := sess.Engine.Move(dir)
	if err != nil {
		return nil, err
	}

	s.afterCommand(sessionID, sess, outcome)
	return s.commandResult(sess, outcome), nil
}

// PlayMoves applies a whole UDLR move string, stopping at the first
// illegal move or at a win.
func (s *GameServiceImpl) PlayMoves(ctx context.Context, sessionID, moves string) (*BulkResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	dirs, err := engine.ParseMoves(moves)
	if err != nil {
		return nil, err
	}

	result := &BulkResult{
		RequestedMoves: len(dirs),
		Success:        true,
	}

	// Limit moves to prevent abuse
	if len(dirs) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		dirs = dirs[:engine.MaxBulkMoves]
	}

	for i, dir := range dirs {
		outcome, err := sess.Engine.Move(dir)
		if err != nil {
			return nil, err
		}

		if outcome == engine.OutcomeIllegal {
			result.Success = false
			result.StoppedOnMove = i + 1
			result.StopReason = "illegal"
			result.Message = fmt.Sprintf("move %d (%s) has no legal effect", i+1, dir)
			break
		}

		result.MovesApplied++
		if outcome == engine.OutcomeWon {
			result.StoppedOnMove = i + 1
			result.StopReason = "won"
			result.Message = "Solved! Every goal is satisfied."
			break
		}
	}

	state := sess.Engine.State()
	result.Won = state.Won
	result.State = state
	result.Panels = render.Lines(state)

	outcome := engine.OutcomeIllegal
	if result.MovesApplied > 0 {
		outcome = engine.OutcomeApplied
	}
	s.afterCommand(sessionID, sess, outcome)

	return result, nil
}

// Undo reverts the most recent applied move
func (s *GameServiceImpl) Undo(ctx context.Context, sessionID string) (*CommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	outcome, err := sess.Engine.Undo()
	if err != nil {
		return nil, err
	}

	s.afterCommand(sessionID, sess, outcome)
	return s.commandResult(sess, outcome), nil
}

// Restart returns a session to its initial state
func (s *GameServiceImpl) Restart(ctx context.Context, sessionID string) (*CommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	outcome, err := sess.Engine.Restart()
	if err != nil {
		return nil, err
	}

	s.afterCommand(sessionID, sess, outcome)
	return s.commandResult(sess, outcome), nil
}

// GetState retrieves the current snapshot
func (s *GameServiceImpl) GetState(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.State(), nil
}

// Render returns the current state as text panels
func (s *GameServiceImpl) Render(ctx context.Context, sessionID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return "", fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return render.Text(sess.Engine.State()), nil
}

// GetDump returns the engine's internal structure dump
func (s *GameServiceImpl) GetDump(ctx context.Context, sessionID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return "", fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.DebugDump(), nil
}

// GetMoveHistory returns paginated move history
func (s *GameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	history := sess.Engine.Moves()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	// Calculate pagination
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	// Get the slice of moves
	var moves []MoveEntry
	if opts.Order == "desc" {
		// Reverse order (most recent first)
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, MoveEntry{Seq: i + 1, Direction: history[i].String()})
		}
	} else {
		// Normal chronological order
		for i := start; i < end; i++ {
			moves = append(moves, MoveEntry{Seq: i + 1, Direction: history[i].String()})
		}
	}

	// Ensure moves is not nil
	if moves == nil {
		moves = []MoveEntry{}
	}

	return &HistoryResponse{
		Moves:       moves,
		Solution:    engine.MovesString(history),
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListLevels returns available levels
func (s *GameServiceImpl) ListLevels(ctx context.Context) ([]*LevelInfo, error) {
	return s.levels.ListLevels()
}

// GetLevel loads a specific level definition
func (s *GameServiceImpl) GetLevel(ctx context.Context, levelID string) (*engine.Definition, error) {
	return s.levels.LoadLevel(levelID)
}

// sessionInfo builds the transportable view of a session
func (s *GameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		LevelID:        sess.LevelID,
		LevelName:      sess.Engine.Name(),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		State:          sess.Engine.State(),
	}
}

// commandResult packages the post-command state for transports
func (s *GameServiceImpl) commandResult(sess *Session, outcome engine.Outcome) *CommandResult {
	state := sess.Engine.State()
	result := &CommandResult{
		Outcome: string(outcome),
		Won:     state.Won,
		State:   state,
		Panels:  render.Lines(state),
	}
	switch outcome {
	case engine.OutcomeWon:
		result.Message = "Solved! Every goal is satisfied."
	case engine.OutcomeIllegal:
		result.Message = "That command has no legal effect."
	}
	return result
}

// afterCommand persists the session and, when something changed,
// notifies subscribers
func (s *GameServiceImpl) afterCommand(sessionID string, sess *Session, outcome engine.Outcome) {
	// Auto-save session after every command
	if err := s.sessions.Save(sessionID); err != nil {
		log.Warnf("Failed to persist session %s: %v", sessionID, err)
	}

	if s.notifier != nil && outcome != engine.OutcomeIllegal {
		s.notifier.NotifyState(sessionID, sess.Engine.State())
	}
}
