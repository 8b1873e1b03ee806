package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Outcome classifies the result of a command.
type Outcome string

const (
	// OutcomeApplied means the command succeeded and changed the world.
	OutcomeApplied Outcome = "applied"
	// OutcomeIllegal means the command was recognized but had no legal
	// effect; the world is unchanged.
	OutcomeIllegal Outcome = "illegal"
	// OutcomeWon means the command was applied and the world now
	// satisfies every goal.
	OutcomeWon Outcome = "won"
)

// Engine provides the main interface for puzzle operations
type Engine interface {
	// Commands
	Move(dir Direction) (Outcome, error)
	Undo() (Outcome, error)
	Restart() (Outcome, error)
	Do(command string) (Outcome, error)

	// Queries
	State() *Snapshot
	Won() bool
	MoveCount() int
	Moves() []Direction
	Key() string
	DebugDump() string
}

// GameEngine implements the Engine interface around one World.
type GameEngine struct {
	name    string
	def     *Definition
	world   *World
	initial *World
	history []moveRecord
}

// NewEngine builds an engine from a fully-resolved definition. The
// definition is validated completely before any state is created and
// must not be mutated afterwards.
func NewEngine(def *Definition) (*GameEngine, error) {
	w, err := NewWorld(def)
	if err != nil {
		return nil, err
	}
	return &GameEngine{
		name:    def.Name,
		def:     def,
		world:   w,
		initial: w.Clone(),
	}, nil
}

// NewEngineWithDefaults builds an engine around the built-in puzzle.
func NewEngineWithDefaults() *GameEngine {
	e, err := NewEngine(DefaultDefinition())
	if err != nil {
		panic(fmt.Sprintf("built-in definition invalid: %v", err))
	}
	return e
}

// Name returns the puzzle's display name.
func (e *GameEngine) Name() string {
	return e.name
}

// Definition returns the definition the engine was built from.
func (e *GameEngine) Definition() *Definition {
	return e.def
}

// Move pushes the player one step in dir, resolving the full chain of
// consequences. Moving with no player is an error; after a win further
// moves are illegal until Undo or Restart.
func (e *GameEngine) Move(dir Direction) (Outcome, error) {
	if e.world.player == NoEntity {
		return OutcomeIllegal, ErrNoPlayer
	}
	if e.world.Won() {
		return OutcomeIllegal, nil
	}
	batch, err := e.world.resolveMove(e.world.player, dir)
	if err != nil {
		if errors.Is(err, ErrIllegalMove) {
			return OutcomeIllegal, nil
		}
		return OutcomeIllegal, err
	}
	if err := e.world.applyBatch(batch); err != nil {
		return OutcomeIllegal, err
	}
	e.history = append(e.history, moveRecord{dir: dir, batch: batch})
	if e.world.Won() {
		return OutcomeWon, nil
	}
	return OutcomeApplied, nil
}

// Do runs a textual command: "move <direction>", a bare direction,
// "undo" or "restart". Anything else is ErrInvalidCommand.
func (e *GameEngine) Do(command string) (Outcome, error) {
	fields := strings.Fields(strings.ToLower(command))
	switch {
	case len(fields) == 0:
		return OutcomeIllegal, fmt.Errorf("%w: empty command", ErrInvalidCommand)
	case fields[0] == "undo" && len(fields) == 1:
		return e.Undo()
	case fields[0] == "restart" && len(fields) == 1:
		return e.Restart()
	case fields[0] == "move" && len(fields) == 2:
		dir, err := ParseDirection(fields[1])
		if err != nil {
			return OutcomeIllegal, err
		}
		return e.Move(dir)
	case len(fields) == 1:
		dir, err := ParseDirection(fields[0])
		if err != nil {
			return OutcomeIllegal, err
		}
		return e.Move(dir)
	default:
		return OutcomeIllegal, fmt.Errorf("%w: %q", ErrInvalidCommand, command)
	}
}

// Won reports whether the current world satisfies every goal.
func (e *GameEngine) Won() bool {
	return e.world.Won()
}

// Key returns the canonical encoding of the current state.
func (e *GameEngine) Key() string {
	return e.world.Key()
}

// DebugDump renders the internal structure of the current world.
func (e *GameEngine) DebugDump() string {
	return e.world.DebugDump()
}

// World exposes the live world for same-process collaborators that need
// read access beyond the snapshot. Callers must not hold the pointer
// across commands.
func (e *GameEngine) World() *World {
	return e.world
}

// Clone returns an independent copy of the engine, history included.
// The definition is shared; it is read-only after construction.
func (e *GameEngine) Clone() *GameEngine {
	dup := &GameEngine{
		name:    e.name,
		def:     e.def,
		world:   e.world.Clone(),
		initial: e.initial.Clone(),
	}
	dup.history = make([]moveRecord, len(e.history))
	copy(dup.history, e.history)
	return dup
}
