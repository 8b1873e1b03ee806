package engine

import (
	"fmt"
	"strings"
)

// BoardID is a stable handle into the world's board arena.
type BoardID int

// EntityID is a stable handle into the world's entity arena.
type EntityID int

// CloneSetID identifies a synchronized clone set. Zero means no set.
type CloneSetID int

const (
	// NoBoard marks an unset board handle.
	NoBoard BoardID = -1
	// NoEntity marks an empty cell or an unset entity handle.
	NoEntity EntityID = -1
	// NoCloneSet marks an entity that is not part of any clone set.
	NoCloneSet CloneSetID = 0
)

// Terrain represents the static marking of a cell.
type Terrain string

const (
	TerrainEmpty      Terrain = "empty"
	TerrainWall       Terrain = "wall"
	TerrainPlayerGoal Terrain = "player_goal"
	TerrainBlockGoal  Terrain = "block_goal"
)

// EntityKind represents the different kinds of occupants.
type EntityKind string

const (
	KindPlayer       EntityKind = "player"
	KindBlock        EntityKind = "block"
	KindBox          EntityKind = "box"
	KindInfiniteExit EntityKind = "infinite_exit"
)

// Validation constants
const (
	MinBoardSize = 1
	MaxBoardSize = 64
	MaxBulkMoves = 1000
)

// Color is the identity tag matched between blocks and block goals.
// Level files use single lowercase letters, but any non-empty string works.
type Color string

// Direction is one of the four cardinal push directions.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

var directionNames = map[Direction]string{
	DirUp:    "up",
	DirDown:  "down",
	DirLeft:  "left",
	DirRight: "right",
}

func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	default:
		return DirLeft
	}
}

// Horizontal reports whether the direction is left or right.
func (d Direction) Horizontal() bool {
	return d == DirLeft || d == DirRight
}

// Delta returns the coordinate offset of one step. Y grows downward.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	default:
		return 1, 0
	}
}

// Rune returns the single-letter form used in solution strings.
func (d Direction) Rune() rune {
	switch d {
	case DirUp:
		return 'U'
	case DirDown:
		return 'D'
	case DirLeft:
		return 'L'
	default:
		return 'R'
	}
}

// ParseDirection accepts long and single-letter direction names in any
// case: "up", "u", "down", "d", "left", "l", "right", "r".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "u":
		return DirUp, nil
	case "down", "d":
		return DirDown, nil
	case "left", "l":
		return DirLeft, nil
	case "right", "r":
		return DirRight, nil
	default:
		return 0, fmt.Errorf("%w: unknown direction %q", ErrInvalidCommand, s)
	}
}

// ParseMoves converts a solution string such as "RRUL" into directions.
// Whitespace is ignored; any other rune is an error.
func ParseMoves(s string) ([]Direction, error) {
	moves := make([]Direction, 0, len(s))
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', ',':
			continue
		}
		dir, err := ParseDirection(string(r))
		if err != nil {
			return nil, err
		}
		moves = append(moves, dir)
	}
	return moves, nil
}

// MovesString renders a direction sequence as a solution string.
func MovesString(moves []Direction) string {
	var b strings.Builder
	for _, d := range moves {
		b.WriteRune(d.Rune())
	}
	return b.String()
}

// Pos represents x,y coordinates within one board. The origin is the
// top-left corner and y grows downward.
type Pos struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Step returns the neighboring position one cell in the given direction.
func (p Pos) Step(d Direction) Pos {
	dx, dy := d.Delta()
	return Pos{X: p.X + dx, Y: p.Y + dy}
}

// GlobalPos addresses a single cell anywhere in the world.
type GlobalPos struct {
	Board BoardID `json:"board"`
	Pos
}

func (g GlobalPos) String() string {
	return fmt.Sprintf("board %d (%d,%d)", g.Board, g.X, g.Y)
}

// Cell represents a single board cell: its static terrain plus at most
// one occupant.
type Cell struct {
	Terrain   Terrain  `json:"terrain"`
	GoalColor Color    `json:"goal_color,omitempty"`
	Occupant  EntityID `json:"occupant"`
}

// Entity represents a player, block, box or infinite-exit box. Entities
// are created at construction time only; handles stay valid for the
// lifetime of the world.
type Entity struct {
	ID       EntityID   `json:"id"`
	Kind     EntityKind `json:"kind"`
	Pos      GlobalPos  `json:"pos"`
	Color    Color      `json:"color,omitempty"`
	Flipped  bool       `json:"flipped,omitempty"`
	Interior BoardID    `json:"interior,omitempty"`
	Target   BoardID    `json:"target,omitempty"`
	CloneSet CloneSetID `json:"clone_set,omitempty"`
}

// IsContainer reports whether the entity can be entered.
func (e *Entity) IsContainer() bool {
	return e.Kind == KindBox || e.Kind == KindInfiniteExit
}

// EnterBoard returns the board a mover lands on when entering the
// entity. For boxes that is the owned interior; for infinite exits it is
// the declared target board, resolved directly from the handle.
func (e *Entity) EnterBoard() BoardID {
	if e.Kind == KindInfiniteExit {
		return e.Target
	}
	return e.Interior
}
