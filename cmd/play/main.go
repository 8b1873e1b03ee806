// Command play runs a puzzle interactively in the terminal. Arrow keys
// or WASD move the player, z or u undoes, r restarts, p toggles the
// structure dump, q or Escape quits.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/urfave/cli/v3"

	"github.com/deepbox/deepbox/game/engine"
	"github.com/deepbox/deepbox/game/level"
	"github.com/deepbox/deepbox/game/render"
)

func main() {
	cmd := &cli.Command{
		Name:  "play",
		Usage: "Play a recursive box-pushing puzzle in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "levels",
				Value: "levels",
				Usage: "Directory containing level files",
			},
			&cli.StringFlag{
				Name:  "level",
				Usage: "Level to play (defaults to the entry level)",
			},
			&cli.StringFlag{
				Name:  "moves",
				Usage: "Move string to apply before going interactive, e.g. \"RRUL\"",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(cmd.String("levels"), cmd.String("level"), cmd.String("moves"))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "play: %v\n", err)
		os.Exit(1)
	}
}

func run(levelsDir, levelName, moves string) error {
	def, err := loadDefinition(levelsDir, levelName)
	if err != nil {
		return err
	}

	eng, err := engine.NewEngine(def)
	if err != nil {
		return err
	}

	status := "arrows/wasd move, z undo, r restart, p dump, q quit"
	if moves != "" {
		parsed, err := engine.ParseMoves(moves)
		if err != nil {
			return err
		}
		applied := 0
		for _, dir := range parsed {
			outcome, err := eng.Move(dir)
			if err != nil || outcome == engine.OutcomeIllegal {
				break
			}
			applied++
			if outcome == engine.OutcomeWon {
				break
			}
		}
		status = fmt.Sprintf("replayed %d/%d moves", applied, len(parsed))
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	u := &ui{screen: screen, eng: eng, status: status}
	u.loop()
	return nil
}

// loadDefinition resolves the level through the manager so that lookups
// and the entry-level fallback behave exactly like the server's.
func loadDefinition(levelsDir, levelName string) (*engine.Definition, error) {
	mgr, err := level.NewManager(levelsDir)
	if err != nil {
		if levelName != "" {
			return nil, err
		}
		return engine.DefaultDefinition(), nil
	}
	if levelName == "" {
		return mgr.GetDefault(), nil
	}
	return mgr.LoadLevel(levelName)
}

type ui struct {
	screen tcell.Screen
	eng    *engine.GameEngine
	status string
	dump   bool
}

func (u *ui) loop() {
	for {
		u.draw()

		switch ev := u.screen.PollEvent().(type) {
		case *tcell.EventResize:
			u.screen.Sync()
		case *tcell.EventKey:
			if !u.handleKey(ev) {
				return
			}
		}
	}
}

// handleKey returns false when the player quits.
func (u *ui) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		u.move(engine.DirUp)
	case tcell.KeyDown:
		u.move(engine.DirDown)
	case tcell.KeyLeft:
		u.move(engine.DirLeft)
	case tcell.KeyRight:
		u.move(engine.DirRight)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return false
		case 'w', 'W':
			u.move(engine.DirUp)
		case 's', 'S':
			u.move(engine.DirDown)
		case 'a', 'A':
			u.move(engine.DirLeft)
		case 'd', 'D':
			u.move(engine.DirRight)
		case 'z', 'Z', 'u', 'U':
			u.undo()
		case 'r', 'R':
			u.restart()
		case 'p', 'P':
			u.dump = !u.dump
			u.status = "structure dump toggled"
		}
	}
	return true
}

func (u *ui) move(dir engine.Direction) {
	outcome, err := u.eng.Move(dir)
	switch {
	case err != nil:
		u.status = err.Error()
	case outcome == engine.OutcomeIllegal:
		u.status = fmt.Sprintf("%s has no legal effect", dir)
	case outcome == engine.OutcomeWon:
		u.status = fmt.Sprintf("solved in %d moves: %s", u.eng.MoveCount(), engine.MovesString(u.eng.Moves()))
	default:
		u.status = string(outcome)
	}
}

func (u *ui) undo() {
	outcome, err := u.eng.Undo()
	switch {
	case err != nil:
		u.status = err.Error()
	case outcome == engine.OutcomeIllegal:
		u.status = "nothing to undo"
	default:
		u.status = "undone"
	}
}

func (u *ui) restart() {
	if _, err := u.eng.Restart(); err != nil {
		u.status = err.Error()
		return
	}
	u.status = "restarted"
}

func (u *ui) draw() {
	u.screen.Clear()

	snap := u.eng.State()

	header := fmt.Sprintf("%s  moves %d  goals %d/%d", snap.Name, snap.MoveCount, snap.Satisfied, snap.Goals)
	headerStyle := tcell.StyleDefault.Bold(true)
	if snap.Won {
		header += "  WON"
		headerStyle = headerStyle.Foreground(tcell.ColorGreen)
	}
	drawText(u.screen, 0, 0, headerStyle, header)

	y := 2
	if u.dump {
		for _, line := range splitLines(u.eng.DebugDump()) {
			drawText(u.screen, 0, y, tcell.StyleDefault, line)
			y++
		}
	} else {
		y = u.drawPanels(snap, y)
		y++
		for _, line := range render.Legend(snap) {
			drawText(u.screen, 0, y, tcell.StyleDefault.Dim(true), line)
			y++
		}
	}

	_, height := u.screen.Size()
	drawText(u.screen, 0, height-1, tcell.StyleDefault.Reverse(true), " "+u.status+" ")

	u.screen.Show()
}

// drawPanels lays the boards out left to right and returns the first
// free row below them.
func (u *ui) drawPanels(snap *engine.Snapshot, top int) int {
	const gutter = 3

	x := 0
	bottom := top
	for i := range snap.Boards {
		b := &snap.Boards[i]
		title := fmt.Sprintf("[%d] %s", b.ID, b.Key)
		drawText(u.screen, x, top, tcell.StyleDefault.Underline(true), title)

		for cy := 0; cy < b.Height; cy++ {
			for cx := 0; cx < b.Width; cx++ {
				r, style := u.cellContent(snap, b, cx, cy)
				u.screen.SetContent(x+cx, top+1+cy, r, nil, style)
			}
		}

		w := b.Width
		if len(title) > w {
			w = len(title)
		}
		x += w + gutter
		if top+1+b.Height > bottom {
			bottom = top + 1 + b.Height
		}
	}
	return bottom
}

func (u *ui) cellContent(snap *engine.Snapshot, b *engine.BoardSnapshot, x, y int) (rune, tcell.Style) {
	cell := b.CellAt(x, y)
	if cell.Occupant != engine.NoEntity {
		if ent := snap.EntityByID(cell.Occupant); ent != nil {
			return render.Glyph(ent), entityStyle(ent)
		}
	}
	return render.TerrainRune(cell), terrainStyle(cell)
}

func entityStyle(ent *engine.Entity) tcell.Style {
	switch ent.Kind {
	case engine.KindPlayer:
		return tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	case engine.KindBlock:
		return tcell.StyleDefault.Foreground(tcell.ColorRed)
	default:
		return tcell.StyleDefault.Foreground(tcell.ColorBlue).Bold(true)
	}
}

func terrainStyle(cell engine.Cell) tcell.Style {
	switch cell.Terrain {
	case engine.TerrainWall:
		return tcell.StyleDefault.Foreground(tcell.ColorGray)
	case engine.TerrainPlayerGoal, engine.TerrainBlockGoal:
		return tcell.StyleDefault.Foreground(tcell.ColorGreen)
	default:
		return tcell.StyleDefault.Dim(true)
	}
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range text {
		s.SetContent(x+i, y, r, nil, style)
	}
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
