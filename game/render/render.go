package render

import (
	"fmt"
	"strings"

	"github.com/deepbox/deepbox/game/engine"
)

// Glyph returns the single-rune form of an entity on the map. The
// player is 'P', blocks show their color letter uppercased, and
// containers show the id of the board they lead into, which matches
// the `[n]` tag in the panel titles.
func Glyph(ent *engine.Entity) rune {
	switch ent.Kind {
	case engine.KindPlayer:
		return 'P'
	case engine.KindBlock:
		if len(ent.Color) > 0 {
			r := rune(ent.Color[0])
			if r >= 'a' && r <= 'z' {
				return r - 'a' + 'A'
			}
		}
		return 'B'
	default:
		return rune('0' + int(ent.EnterBoard())%10)
	}
}

// TerrainRune returns the map rune for an unoccupied cell, using the
// same alphabet as the level files.
func TerrainRune(c engine.Cell) rune {
	switch c.Terrain {
	case engine.TerrainWall:
		return '#'
	case engine.TerrainPlayerGoal:
		return '='
	case engine.TerrainBlockGoal:
		if len(c.GoalColor) > 0 {
			return rune(c.GoalColor[0])
		}
		return '='
	default:
		return '.'
	}
}

// Panel renders one board as its titled grid lines.
func Panel(s *engine.Snapshot, b *engine.BoardSnapshot) []string {
	lines := make([]string, 0, b.Height+1)
	lines = append(lines, fmt.Sprintf("[%d] %s", b.ID, b.Key))
	for y := 0; y < b.Height; y++ {
		var row strings.Builder
		for x := 0; x < b.Width; x++ {
			cell := b.CellAt(x, y)
			if cell.Occupant != engine.NoEntity {
				if ent := s.EntityByID(cell.Occupant); ent != nil {
					row.WriteRune(Glyph(ent))
					continue
				}
			}
			row.WriteRune(TerrainRune(cell))
		}
		lines = append(lines, row.String())
	}
	return lines
}

// Lines renders a full snapshot: a status header, all boards side by
// side, and a legend describing the container entities.
func Lines(s *engine.Snapshot) []string {
	header := fmt.Sprintf("%s  moves %d  goals %d/%d", s.Name, s.MoveCount, s.Satisfied, s.Goals)
	if s.Won {
		header += "  WON"
	}

	panels := make([][]string, 0, len(s.Boards))
	for i := range s.Boards {
		panels = append(panels, Panel(s, &s.Boards[i]))
	}

	lines := []string{header, ""}
	lines = append(lines, joinPanels(panels)...)

	legend := Legend(s)
	if len(legend) > 0 {
		lines = append(lines, "")
		lines = append(lines, legend...)
	}
	return lines
}

// Text renders a snapshot as one newline-joined string.
func Text(s *engine.Snapshot) string {
	return strings.Join(Lines(s), "\n")
}

// Legend describes every container entity and every flipped entity,
// since neither is readable from the grid alone.
func Legend(s *engine.Snapshot) []string {
	var lines []string
	for i := range s.Entities {
		ent := &s.Entities[i]
		var desc string
		switch {
		case ent.Kind == engine.KindBox:
			desc = fmt.Sprintf("%c box %s -> [%d] %s", Glyph(ent), ent.Color,
				ent.Interior, boardKey(s, ent.Interior))
		case ent.Kind == engine.KindInfiniteExit:
			desc = fmt.Sprintf("%c infinite %s -> [%d] %s", Glyph(ent), ent.Color,
				ent.Target, boardKey(s, ent.Target))
		case ent.Flipped:
			desc = fmt.Sprintf("%c %s %s", Glyph(ent), ent.Kind, ent.Color)
		default:
			continue
		}
		if ent.Flipped {
			desc += ", flipped"
		}
		if ent.CloneSet != engine.NoCloneSet {
			desc += fmt.Sprintf(", clone set %d", ent.CloneSet)
		}
		lines = append(lines, desc)
	}
	return lines
}

func boardKey(s *engine.Snapshot, id engine.BoardID) string {
	if b := s.BoardByID(id); b != nil {
		return b.Key
	}
	return "?"
}

// joinPanels lays panels out left to right with a fixed gutter. Panels
// are top-aligned and padded to their own widest line.
func joinPanels(panels [][]string) []string {
	const gutter = "   "

	widths := make([]int, len(panels))
	height := 0
	for i, p := range panels {
		for _, line := range p {
			if len(line) > widths[i] {
				widths[i] = len(line)
			}
		}
		if len(p) > height {
			height = len(p)
		}
	}

	joined := make([]string, 0, height)
	for y := 0; y < height; y++ {
		var row strings.Builder
		for i, p := range panels {
			if i > 0 {
				row.WriteString(gutter)
			}
			line := ""
			if y < len(p) {
				line = p[y]
			}
			if i < len(panels)-1 {
				line += strings.Repeat(" ", widths[i]-len(line))
			}
			row.WriteString(line)
		}
		joined = append(joined, strings.TrimRight(row.String(), " "))
	}
	return joined
}
