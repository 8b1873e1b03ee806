// Command analyze prints quick, human-readable heuristics about level
// files in the project's levels directory. It summarizes boards,
// entities and goals, flags color imbalances that make a level
// unwinnable, and can optionally ask the solver for a verdict.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/deepbox/deepbox/game/engine"
	"github.com/deepbox/deepbox/game/level"
	"github.com/deepbox/deepbox/solver"
)

func main() {
	levelsDir := flag.String("levels", "levels", "Directory containing level files")
	solve := flag.Bool("solve", false, "Run the solver on each level for a solvability verdict")
	maxStates := flag.Int("max-states", solver.DefaultMaxStates, "Solver state budget")
	timeout := flag.Duration("timeout", 30*time.Second, "Solver time budget per level")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		matches, err := filepath.Glob(filepath.Join(*levelsDir, "*.txt"))
		if err != nil || len(matches) == 0 {
			fmt.Printf("No level files found in %s\n", *levelsDir)
			os.Exit(1)
		}
		sort.Strings(matches)
		files = matches
	} else {
		// Bare names are resolved against the levels directory.
		for i, f := range files {
			if !strings.ContainsRune(f, os.PathSeparator) {
				files[i] = filepath.Join(*levelsDir, f)
			}
		}
	}

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		analyzeLevel(file, *solve, *maxStates, *timeout)
	}
}

func analyzeLevel(path string, solve bool, maxStates int, timeout time.Duration) {
	def, err := level.ParseFile(path)
	if err != nil {
		fmt.Printf("Error parsing level: %v\n", err)
		return
	}

	fmt.Printf("Name: %s\n", def.Name)
	fmt.Printf("Boards: %d\n", len(def.Boards))
	for _, b := range def.Boards {
		fmt.Printf("  %s: %dx%d\n", b.Key, b.Width, b.Height)
	}

	counts := make(map[engine.EntityKind]int)
	pushables := make(map[engine.Color]int)
	for i := range def.Entities {
		ed := &def.Entities[i]
		counts[ed.Kind]++
		if ed.Kind != engine.KindPlayer && ed.Color != "" {
			pushables[ed.Color]++
		}
	}
	fmt.Printf("Entities: %d player, %d blocks, %d boxes, %d infinite exits\n",
		counts[engine.KindPlayer], counts[engine.KindBlock],
		counts[engine.KindBox], counts[engine.KindInfiniteExit])

	playerGoals, blockGoals := goalCounts(def)
	fmt.Printf("Goals: %d player, %d block\n", playerGoals, totalGoals(blockGoals))

	if err := engine.ValidateDefinition(def); err != nil {
		fmt.Printf("⚠️  Invalid definition: %v\n", err)
		return
	}

	if counts[engine.KindPlayer] == 0 {
		fmt.Printf("⚠️  CRITICAL: no player, the level cannot be played\n")
	}
	if playerGoals == 0 && len(blockGoals) == 0 {
		fmt.Printf("⚠️  CRITICAL: no goals, the level cannot be won\n")
	}
	if playerGoals > 1 {
		fmt.Printf("⚠️  CRITICAL: %d player goals but only one player\n", playerGoals)
	}

	shortfall := false
	for _, color := range sortedColors(blockGoals) {
		if blockGoals[color] > pushables[color] {
			shortfall = true
			fmt.Printf("⚠️  CRITICAL: %d '%s' goals but only %d matching entities\n",
				blockGoals[color], color, pushables[color])
		}
	}
	if !shortfall && len(blockGoals) > 0 {
		fmt.Printf("✅ Every block goal has enough matching entities\n")
	}

	for i := range def.Entities {
		ed := &def.Entities[i]
		if ed.Kind == engine.KindInfiniteExit {
			fmt.Printf("Infinite exit at (%d,%d) in %q loops back into %q\n",
				ed.X, ed.Y, ed.Board, ed.Target)
		}
	}

	if solve {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		res, err := solver.Solve(ctx, def, solver.Options{MaxStates: maxStates})
		if err != nil {
			fmt.Printf("Solver error: %v\n", err)
			return
		}
		switch {
		case res.Found:
			fmt.Printf("✅ Solvable in %d moves: %s (%d states, %s)\n",
				len(res.Solution), res.Solution, res.States, res.Elapsed.Round(time.Millisecond))
		case res.Reason == solver.ReasonExhausted:
			fmt.Printf("⚠️  CRITICAL: the level cannot be won (%d states searched)\n", res.States)
		default:
			fmt.Printf("No verdict: %s (%d states, %s)\n",
				res.Reason, res.States, res.Elapsed.Round(time.Millisecond))
		}
	}
}

// goalCounts scans the terrain for goal cells.
func goalCounts(def *engine.Definition) (playerGoals int, blockGoals map[engine.Color]int) {
	blockGoals = make(map[engine.Color]int)
	for _, b := range def.Boards {
		for _, row := range b.Rows {
			for _, r := range row {
				switch {
				case r == '=':
					playerGoals++
				case r >= 'a' && r <= 'z':
					blockGoals[engine.Color(r)]++
				}
			}
		}
	}
	return playerGoals, blockGoals
}

func totalGoals(m map[engine.Color]int) int {
	n := 0
	for _, c := range m {
		n += c
	}
	return n
}

func sortedColors(m map[engine.Color]int) []engine.Color {
	colors := make([]engine.Color, 0, len(m))
	for c := range m {
		colors = append(colors, c)
	}
	sort.Slice(colors, func(i, j int) bool { return colors[i] < colors[j] })
	return colors
}
