package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrIllegalMove reports a recognized command with no legal effect.
	// The world is unchanged when it is returned.
	ErrIllegalMove = errors.New("illegal move")

	// ErrInvalidCommand reports a command that is not well formed, such
	// as an unknown direction or verb.
	ErrInvalidCommand = errors.New("invalid command")

	// ErrNoPlayer reports a directional command on a world without a
	// player entity.
	ErrNoPlayer = errors.New("world has no player")
)

// OccupiedCellError reports a write that would place a second occupant
// into a cell. Chain validation prevents it during normal play; seeing
// one means a resolver defect, not a user mistake.
type OccupiedCellError struct {
	Pos      GlobalPos
	Occupant EntityID
	Incoming EntityID
}

func (e *OccupiedCellError) Error() string {
	return fmt.Sprintf("cell %s already occupied by entity %d (incoming entity %d)",
		e.Pos, e.Occupant, e.Incoming)
}

func illegalf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrIllegalMove, fmt.Sprintf(format, args...))
}
