package level

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/deepbox/deepbox/game/engine"
	"github.com/deepbox/deepbox/game/service"
)

var (
	ErrLevelNotFound    = errors.New("level not found")
	ErrInvalidLevel     = errors.New("invalid level")
	ErrSolutionNotFound = errors.New("solution not found")
)

// Manager handles level loading and caching
type Manager struct {
	levelDir     string
	defaultLevel *engine.Definition
	levels       map[string]*engine.Definition
	mu           sync.RWMutex
}

// NewManager creates a new level manager
func NewManager(levelDir string) (*Manager, error) {
	// Ensure level directory exists
	if _, err := os.Stat(levelDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("level directory does not exist: %s", levelDir)
	}

	m := &Manager{
		levelDir: levelDir,
		levels:   make(map[string]*engine.Definition),
	}

	// Load default level
	if err := m.loadDefaultLevel(); err != nil {
		return nil, fmt.Errorf("failed to load default level: %w", err)
	}

	return m, nil
}

// LoadLevel loads a level by name
func (m *Manager) LoadLevel(name string) (*engine.Definition, error) {
	m.mu.RLock()
	// Check cache first
	if def, exists := m.levels[name]; exists {
		m.mu.RUnlock()
		return def, nil
	}
	m.mu.RUnlock()

	// Load from file
	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if def, exists := m.levels[name]; exists {
		return def, nil
	}

	// Add .txt extension if not present
	filename := name
	if !strings.HasSuffix(filename, ".txt") {
		filename = name + ".txt"
	}

	levelPath := filepath.Join(m.levelDir, filename)

	// Read level file
	data, err := os.ReadFile(levelPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrLevelNotFound
		}
		return nil, fmt.Errorf("failed to read level file: %w", err)
	}

	// Parse level
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}

	// Validate level, containment structure included
	if _, err := engine.NewWorld(def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}

	// Cache the level
	m.levels[name] = def
	return def, nil
}

// ListLevels returns information about all available levels
func (m *Manager) ListLevels() ([]*service.LevelInfo, error) {
	entries, err := os.ReadDir(m.levelDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read level directory: %w", err)
	}

	var levels []*service.LevelInfo

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}

		// Remove .txt extension for level name
		name := strings.TrimSuffix(entry.Name(), ".txt")

		// Try to load the level to get details
		def, err := m.LoadLevel(name)
		if err != nil {
			// Skip invalid levels
			continue
		}

		levels = append(levels, &service.LevelInfo{
			Filename: entry.Name(),
			LevelID:  name, // This is the identifier to use for session creation
			Name:     def.Name,
			Boards:   len(def.Boards),
			Entities: len(def.Entities),
			Goals:    countGoals(def),
		})
	}

	return levels, nil
}

// GetDefault returns the default level
func (m *Manager) GetDefault() *engine.Definition {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultLevel
}

// SetDefault sets the default level by name
func (m *Manager) SetDefault(name string) error {
	def, err := m.LoadLevel(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultLevel = def
	return nil
}

// RefreshCache reloads all cached levels from disk
func (m *Manager) RefreshCache() error {
	// Clear cache. loadDefaultLevel locks on its own, so the lock is
	// not held across the reload.
	m.mu.Lock()
	m.levels = make(map[string]*engine.Definition)
	m.mu.Unlock()

	// Reload default level
	return m.loadDefaultLevel()
}

// loadDefaultLevel loads the default level
func (m *Manager) loadDefaultLevel() error {
	// Try to load entry.txt as default
	def, err := m.LoadLevel("entry")
	if err != nil {
		def = nil

		// Try to load the first available level
		if levels, listErr := m.ListLevels(); listErr == nil && len(levels) > 0 {
			def, _ = m.LoadLevel(levels[0].LevelID)
		}

		// Fall back to the built-in level
		if def == nil {
			def = engine.DefaultDefinition()
		}
	}

	m.mu.Lock()
	m.defaultLevel = def
	m.mu.Unlock()
	return nil
}

// SaveLevel saves a level to disk
func (m *Manager) SaveLevel(name string, def *engine.Definition) error {
	// Validate level before saving
	if _, err := engine.NewWorld(def); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}

	// Add .txt extension if not present
	filename := name
	if !strings.HasSuffix(filename, ".txt") {
		filename = name + ".txt"
	}

	levelPath := filepath.Join(m.levelDir, filename)

	// Write to file
	if err := os.WriteFile(levelPath, Format(def), 0644); err != nil {
		return fmt.Errorf("failed to write level file: %w", err)
	}

	// Update cache
	m.mu.Lock()
	m.levels[strings.TrimSuffix(filename, ".txt")] = def
	m.mu.Unlock()

	return nil
}

// Solution returns the reference move sequence for a level, read from
// the sibling <name>.solution file. Whitespace and '#' comment lines
// are ignored; the remaining characters are the UDLR sequence.
func (m *Manager) Solution(name string) (string, error) {
	name = strings.TrimSuffix(name, ".txt")
	path := filepath.Join(m.levelDir, name+".solution")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrSolutionNotFound
		}
		return "", fmt.Errorf("failed to read solution file: %w", err)
	}

	var b strings.Builder
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		b.WriteString(line)
	}

	moves := b.String()
	if _, err := engine.ParseMoves(moves); err != nil {
		return "", fmt.Errorf("bad solution for %s: %w", name, err)
	}
	return moves, nil
}

// countGoals counts goal cells across all boards of a definition.
func countGoals(def *engine.Definition) int {
	n := 0
	for _, bd := range def.Boards {
		for _, row := range bd.Rows {
			for _, r := range row {
				if r == '=' || (r >= 'a' && r <= 'z') {
					n++
				}
			}
		}
	}
	return n
}
