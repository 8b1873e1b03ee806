package engine

// Board is one grid of cells in the world arena. Boards never change
// size; only cell occupants move. Owner is the box entity whose interior
// this board is, or NoEntity for the root board.
type Board struct {
	ID     BoardID  `json:"id"`
	Key    string   `json:"key"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Owner  EntityID `json:"owner"`
	Cells  []Cell   `json:"cells"`
}

// Contains reports whether the position lies within the board bounds.
func (b *Board) Contains(p Pos) bool {
	return p.X >= 0 && p.X < b.Width && p.Y >= 0 && p.Y < b.Height
}

func (b *Board) index(p Pos) int {
	return p.Y*b.Width + p.X
}

// At returns the cell at p. The position must be in bounds.
func (b *Board) At(p Pos) Cell {
	return b.Cells[b.index(p)]
}

func (b *Board) cellAt(p Pos) *Cell {
	return &b.Cells[b.index(p)]
}

// Side returns the board dimension crossed when traveling in the given
// direction: the height for horizontal motion (the offset runs down the
// entered edge), the width for vertical motion.
func (b *Board) Side(d Direction) int {
	if d.Horizontal() {
		return b.Height
	}
	return b.Width
}

func (b *Board) clone() *Board {
	cells := make([]Cell, len(b.Cells))
	copy(cells, b.Cells)
	dup := *b
	dup.Cells = cells
	return &dup
}
