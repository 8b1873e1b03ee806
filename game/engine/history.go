package engine

// moveRecord is one applied command with everything needed to take it
// back: the direction it was issued in and the displacement batch it
// produced.
type moveRecord struct {
	dir   Direction
	batch []displacement
}

// Undo reverts the most recent applied move as one unit, clone
// replication and rings included. With nothing to undo it reports
// OutcomeIllegal and changes nothing.
func (e *GameEngine) Undo() (Outcome, error) {
	if len(e.history) == 0 {
		return OutcomeIllegal, nil
	}
	last := e.history[len(e.history)-1]
	if err := e.world.revertBatch(last.batch); err != nil {
		return OutcomeIllegal, err
	}
	e.history = e.history[:len(e.history)-1]
	if e.world.Won() {
		return OutcomeWon, nil
	}
	return OutcomeApplied, nil
}

// Restart resets the world to the initial snapshot and clears the
// history. Restarting an untouched game is a no-op that still reports
// OutcomeApplied.
func (e *GameEngine) Restart() (Outcome, error) {
	e.world = e.initial.Clone()
	e.history = e.history[:0]
	if e.world.Won() {
		return OutcomeWon, nil
	}
	return OutcomeApplied, nil
}

// MoveCount returns the number of applied moves still on the books.
func (e *GameEngine) MoveCount() int {
	return len(e.history)
}

// Moves returns the surviving applied moves in order. Replaying them
// against a fresh engine reproduces the current state exactly,
// including the undo stack.
func (e *GameEngine) Moves() []Direction {
	moves := make([]Direction, len(e.history))
	for i, rec := range e.history {
		moves[i] = rec.dir
	}
	return moves
}
