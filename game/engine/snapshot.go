package engine

// Snapshot is a read-only copy of the world for rendering, transport
// and tests. Mutating a snapshot never affects the engine.
type Snapshot struct {
	Name      string          `json:"name"`
	Root      BoardID         `json:"root"`
	Player    EntityID        `json:"player"`
	Boards    []BoardSnapshot `json:"boards"`
	Entities  []Entity        `json:"entities"`
	MoveCount int             `json:"move_count"`
	Moves     string          `json:"moves"`
	Goals     int             `json:"goals"`
	Satisfied int             `json:"satisfied"`
	Won       bool            `json:"won"`
}

// BoardSnapshot is one board's cells and metadata.
type BoardSnapshot struct {
	ID     BoardID  `json:"id"`
	Key    string   `json:"key"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Owner  EntityID `json:"owner"`
	Cells  []Cell   `json:"cells"`
}

// CellAt returns the cell at x,y.
func (b *BoardSnapshot) CellAt(x, y int) Cell {
	return b.Cells[y*b.Width+x]
}

// BoardByID finds a board snapshot by handle.
func (s *Snapshot) BoardByID(id BoardID) *BoardSnapshot {
	for i := range s.Boards {
		if s.Boards[i].ID == id {
			return &s.Boards[i]
		}
	}
	return nil
}

// EntityByID finds an entity snapshot by handle.
func (s *Snapshot) EntityByID(id EntityID) *Entity {
	for i := range s.Entities {
		if s.Entities[i].ID == id {
			return &s.Entities[i]
		}
	}
	return nil
}

// State builds a snapshot of the current world.
func (e *GameEngine) State() *Snapshot {
	w := e.world
	s := &Snapshot{
		Name:      e.name,
		Root:      w.root,
		Player:    w.player,
		MoveCount: len(e.history),
		Moves:     MovesString(e.Moves()),
		Goals:     w.GoalCount(),
		Satisfied: w.SatisfiedGoals(),
		Won:       w.Won(),
	}
	s.Boards = make([]BoardSnapshot, len(w.boards))
	for i, b := range w.boards {
		cells := make([]Cell, len(b.Cells))
		copy(cells, b.Cells)
		s.Boards[i] = BoardSnapshot{
			ID:     b.ID,
			Key:    b.Key,
			Width:  b.Width,
			Height: b.Height,
			Owner:  b.Owner,
			Cells:  cells,
		}
	}
	s.Entities = make([]Entity, len(w.entities))
	for i, ent := range w.entities {
		s.Entities[i] = *ent
	}
	return s
}
