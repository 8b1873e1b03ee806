package engine

import (
	"fmt"
)

// Definition is the fully-resolved description of a puzzle, the shape
// level files parse into. Board references between entities use board
// keys; NewWorld resolves them to handles. The first board is the root.
type Definition struct {
	Name     string      `json:"name"`
	Boards   []BoardDef  `json:"boards"`
	Entities []EntityDef `json:"entities"`
}

// BoardDef describes one board and its terrain.
//
// Rows holds Height strings of Width runes each:
//
//	'#'      wall
//	'.'      empty floor
//	'='      player goal
//	'a'..'z' block goal of that color
type BoardDef struct {
	Key    string   `json:"key"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Rows   []string `json:"rows"`
}

// EntityDef places one entity on a board.
type EntityDef struct {
	Kind     EntityKind `json:"kind"`
	Board    string     `json:"board"`
	X        int        `json:"x"`
	Y        int        `json:"y"`
	Color    Color      `json:"color,omitempty"`
	Interior string     `json:"interior,omitempty"`
	Target   string     `json:"target,omitempty"`
	CloneSet int        `json:"clone_set,omitempty"`
	Flipped  bool       `json:"flipped,omitempty"`
}

// terrainForRune maps a level rune to its terrain and goal color.
func terrainForRune(r rune) (Terrain, Color, error) {
	switch {
	case r == '#':
		return TerrainWall, "", nil
	case r == '.':
		return TerrainEmpty, "", nil
	case r == '=':
		return TerrainPlayerGoal, "", nil
	case r >= 'a' && r <= 'z':
		return TerrainBlockGoal, Color(r), nil
	default:
		return "", "", fmt.Errorf("unknown terrain rune %q", r)
	}
}

// ValidateDefinition checks everything about a definition that can be
// verified before construction: sizes, terrain rows, entity placement,
// key references and clone set composition. Containment-tree checks that
// need the assembled world happen in NewWorld.
func ValidateDefinition(def *Definition) error {
	if def == nil {
		return fmt.Errorf("definition validation: definition cannot be nil")
	}
	if def.Name == "" {
		return fmt.Errorf("definition validation: name is required")
	}
	if len(def.Boards) == 0 {
		return fmt.Errorf("definition validation: at least one board is required")
	}

	boardsByKey := make(map[string]*BoardDef, len(def.Boards))
	for i := range def.Boards {
		bd := &def.Boards[i]
		if bd.Key == "" {
			return fmt.Errorf("definition validation: board %d has no key", i)
		}
		if _, dup := boardsByKey[bd.Key]; dup {
			return fmt.Errorf("definition validation: duplicate board key %q", bd.Key)
		}
		boardsByKey[bd.Key] = bd

		if bd.Width < MinBoardSize || bd.Width > MaxBoardSize ||
			bd.Height < MinBoardSize || bd.Height > MaxBoardSize {
			return fmt.Errorf("definition validation: board %q size %dx%d outside %d..%d",
				bd.Key, bd.Width, bd.Height, MinBoardSize, MaxBoardSize)
		}
		if len(bd.Rows) != bd.Height {
			return fmt.Errorf("definition validation: board %q has %d rows, want %d",
				bd.Key, len(bd.Rows), bd.Height)
		}
		for y, row := range bd.Rows {
			runes := []rune(row)
			if len(runes) != bd.Width {
				return fmt.Errorf("definition validation: board %q row %d has %d cells, want %d",
					bd.Key, y, len(runes), bd.Width)
			}
			for x, r := range runes {
				if _, _, err := terrainForRune(r); err != nil {
					return fmt.Errorf("definition validation: board %q cell (%d,%d): %v",
						bd.Key, x, y, err)
				}
			}
		}
	}

	players := 0
	occupied := make(map[string]int)
	interiors := make(map[string]int)
	cloneSets := make(map[int][]*EntityDef)

	for i := range def.Entities {
		ed := &def.Entities[i]
		bd, ok := boardsByKey[ed.Board]
		if !ok {
			return fmt.Errorf("definition validation: entity %d references unknown board %q", i, ed.Board)
		}
		if ed.X < 0 || ed.X >= bd.Width || ed.Y < 0 || ed.Y >= bd.Height {
			return fmt.Errorf("definition validation: entity %d at (%d,%d) outside board %q",
				i, ed.X, ed.Y, ed.Board)
		}
		terrain, _, _ := terrainForRune([]rune(bd.Rows[ed.Y])[ed.X])
		if terrain == TerrainWall {
			return fmt.Errorf("definition validation: entity %d placed on a wall at (%d,%d) in board %q",
				i, ed.X, ed.Y, ed.Board)
		}
		cellKey := fmt.Sprintf("%s:%d,%d", ed.Board, ed.X, ed.Y)
		if prev, dup := occupied[cellKey]; dup {
			return fmt.Errorf("definition validation: entities %d and %d share cell (%d,%d) in board %q",
				prev, i, ed.X, ed.Y, ed.Board)
		}
		occupied[cellKey] = i

		switch ed.Kind {
		case KindPlayer:
			players++
			if players > 1 {
				return fmt.Errorf("definition validation: more than one player")
			}
			if ed.CloneSet != 0 {
				return fmt.Errorf("definition validation: entity %d: the player cannot join a clone set", i)
			}
		case KindBlock:
			if ed.Color == "" {
				return fmt.Errorf("definition validation: entity %d: blocks need a color", i)
			}
		case KindBox:
			if ed.Color == "" {
				return fmt.Errorf("definition validation: entity %d: boxes need a color", i)
			}
			if ed.Interior == "" {
				return fmt.Errorf("definition validation: entity %d: boxes need an interior board", i)
			}
			if _, ok := boardsByKey[ed.Interior]; !ok {
				return fmt.Errorf("definition validation: entity %d references unknown interior %q", i, ed.Interior)
			}
			if ed.Interior == def.Boards[0].Key {
				return fmt.Errorf("definition validation: entity %d: the root board cannot be a box interior", i)
			}
			if prev, dup := interiors[ed.Interior]; dup {
				return fmt.Errorf("definition validation: entities %d and %d both claim interior %q",
					prev, i, ed.Interior)
			}
			interiors[ed.Interior] = i
		case KindInfiniteExit:
			if ed.Color == "" {
				return fmt.Errorf("definition validation: entity %d: infinite exits need a color", i)
			}
			if ed.Target == "" {
				return fmt.Errorf("definition validation: entity %d: infinite exits need a target board", i)
			}
			if _, ok := boardsByKey[ed.Target]; !ok {
				return fmt.Errorf("definition validation: entity %d references unknown target %q", i, ed.Target)
			}
			if ed.CloneSet != 0 {
				return fmt.Errorf("definition validation: entity %d: infinite exits cannot join a clone set", i)
			}
		default:
			return fmt.Errorf("definition validation: entity %d has unknown kind %q", i, ed.Kind)
		}

		if ed.CloneSet < 0 {
			return fmt.Errorf("definition validation: entity %d has negative clone set %d", i, ed.CloneSet)
		}
		if ed.CloneSet != 0 {
			cloneSets[ed.CloneSet] = append(cloneSets[ed.CloneSet], ed)
		}
	}

	for set, members := range cloneSets {
		if len(members) < 2 {
			return fmt.Errorf("definition validation: clone set %d has %d member, want at least 2", set, len(members))
		}
		first := members[0]
		for _, m := range members[1:] {
			if m.Kind != first.Kind || m.Color != first.Color {
				return fmt.Errorf("definition validation: clone set %d mixes %s/%s with %s/%s",
					set, first.Kind, first.Color, m.Kind, m.Color)
			}
		}
	}

	for key := range boardsByKey {
		if key == def.Boards[0].Key {
			continue
		}
		if _, owned := interiors[key]; !owned {
			return fmt.Errorf("definition validation: board %q is not the interior of any box", key)
		}
	}

	return nil
}

// DefaultDefinition returns a small built-in puzzle: push the block onto
// its goal, then walk to the player goal.
func DefaultDefinition() *Definition {
	return &Definition{
		Name: "First Push",
		Boards: []BoardDef{
			{
				Key:    "root",
				Width:  7,
				Height: 5,
				Rows: []string{
					"#######",
					"#....a#",
					"#.....#",
					"#..=..#",
					"#######",
				},
			},
		},
		Entities: []EntityDef{
			{Kind: KindPlayer, Board: "root", X: 1, Y: 1},
			{Kind: KindBlock, Board: "root", X: 3, Y: 1, Color: "a"},
		},
	}
}
