package engine

// Won reports whether the puzzle is solved: every player goal holds the
// player and every block goal holds a block or box of the matching
// color. A world with no goal cells is never won.
func (w *World) Won() bool {
	if len(w.goals) == 0 {
		return false
	}
	for _, gp := range w.goals {
		c := w.boards[gp.Board].At(gp.Pos)
		if c.Occupant == NoEntity {
			return false
		}
		e := w.entities[c.Occupant]
		switch c.Terrain {
		case TerrainPlayerGoal:
			if e.Kind != KindPlayer {
				return false
			}
		case TerrainBlockGoal:
			if e.Kind == KindPlayer || e.Color != c.GoalColor {
				return false
			}
		}
	}
	return true
}

// GoalCount returns the number of goal cells in the world.
func (w *World) GoalCount() int {
	return len(w.goals)
}

// SatisfiedGoals returns how many goal cells are currently satisfied.
func (w *World) SatisfiedGoals() int {
	n := 0
	for _, gp := range w.goals {
		c := w.boards[gp.Board].At(gp.Pos)
		if c.Occupant == NoEntity {
			continue
		}
		e := w.entities[c.Occupant]
		switch c.Terrain {
		case TerrainPlayerGoal:
			if e.Kind == KindPlayer {
				n++
			}
		case TerrainBlockGoal:
			if e.Kind != KindPlayer && e.Color == c.GoalColor {
				n++
			}
		}
	}
	return n
}
