// Command validate provides a small CLI that validates level files in a
// directory. It checks:
//   - Level syntax, board sizes and terrain runes
//   - Entity placement and board/interior/target references
//   - Containment structure of the assembled world
//   - Goal stock (a player for player goals, matching entities for block goals)
//   - Reachability: every goal cell must lie in a region some entity can reach
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/deepbox/deepbox/game/engine"
	"github.com/deepbox/deepbox/game/level"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateLevel loads and validates a single level file. It performs
// structural checks, goal stock validation and reachability analysis
// for goal cells.
func validateLevel(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	def, err := level.Parse(data)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid level: %v", err))
		return result
	}

	if err := engine.ValidateDefinition(def); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	if _, err := engine.NewWorld(def); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid structure: %v", err))
		return result
	}

	// Count the pieces on the board
	players := 0
	blocks := 0
	boxes := 0
	exits := 0
	pushables := make(map[engine.Color]int)
	for i := range def.Entities {
		ed := &def.Entities[i]
		switch ed.Kind {
		case engine.KindPlayer:
			players++
		case engine.KindBlock:
			blocks++
			pushables[ed.Color]++
		case engine.KindBox:
			boxes++
			pushables[ed.Color]++
		case engine.KindInfiniteExit:
			exits++
			pushables[ed.Color]++
		}
	}

	playerGoals, blockGoals := goalCells(def)
	totalGoals := playerGoals
	for _, n := range blockGoals {
		totalGoals += n
	}

	// Validate goal stock. A goal that no entity can ever satisfy makes
	// the level unwinnable.
	if totalGoals == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "Level has no goal cells")
	}

	if players == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "Level has no player")
	}

	if playerGoals > 1 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("%d player goals but only one player can exist", playerGoals))
	}

	for _, color := range sortedColors(blockGoals) {
		if blockGoals[color] > pushables[color] {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("%d '%s' goals but only %d matching entities", blockGoals[color], color, pushables[color]))
		}
	}

	// Reachability validation - check if all goals can be reached
	if result.Valid {
		reachabilityResult := validateReachability(def)
		if !reachabilityResult.Valid {
			result.Valid = false
		}
		result.Errors = append(result.Errors, reachabilityResult.Errors...)
	}

	// Add informational data
	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", def.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Boards: %d", len(def.Boards)))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Entities: %d (player %d, blocks %d, boxes %d, infinite exits %d)",
			len(def.Entities), players, blocks, boxes, exits))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Goals: %d player, %d block", playerGoals, totalGoals-playerGoals))
	}

	return result
}

// validateReachability checks that every goal cell lies in a region an
// entity can reach. On each board the non-wall cells are flood filled
// from every entity starting there and, for boards that can be entered
// through a box side or an infinite exit, from every passable perimeter
// cell. Entities pass through boxes, so a box never splits a region; a
// goal outside every filled region can never be satisfied.
func validateReachability(def *engine.Definition) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	// Non-root boards are box interiors and can always be entered. The
	// root can only be entered when an infinite exit loops back into it.
	enterable := make(map[string]bool)
	for i := range def.Entities {
		ed := &def.Entities[i]
		switch ed.Kind {
		case engine.KindBox:
			enterable[ed.Interior] = true
		case engine.KindInfiniteExit:
			enterable[ed.Target] = true
		}
	}

	goals := 0
	for i := range def.Boards {
		bd := &def.Boards[i]
		visited := floodBoard(def, bd, enterable[bd.Key])

		for y, row := range bd.Rows {
			for x, r := range []rune(row) {
				if r != '=' && (r < 'a' || r > 'z') {
					continue
				}
				goals++
				if !visited[fmt.Sprintf("%d,%d", x, y)] {
					result.Valid = false
					result.Errors = append(result.Errors, fmt.Sprintf("Goal '%c' at (%d,%d) on board %q is walled off from every entity", r, x, y, bd.Key))
				}
			}
		}
	}

	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Reachability: all %d goal cells reachable", goals))
	}

	return result
}

// floodBoard fills the non-wall cells of one board using 4-directional
// movement, seeded from the entities placed on it and, when the board
// is enterable, from its passable perimeter cells.
func floodBoard(def *engine.Definition, bd *engine.BoardDef, enterable bool) map[string]bool {
	isPassable := func(x, y int) bool {
		if x < 0 || y < 0 || y >= bd.Height || x >= bd.Width {
			return false
		}
		return []rune(bd.Rows[y])[x] != '#'
	}

	var queue [][]int
	for i := range def.Entities {
		ed := &def.Entities[i]
		if ed.Board == bd.Key {
			queue = append(queue, []int{ed.X, ed.Y})
		}
	}
	if enterable {
		for y := 0; y < bd.Height; y++ {
			for x := 0; x < bd.Width; x++ {
				onEdge := x == 0 || y == 0 || x == bd.Width-1 || y == bd.Height-1
				if onEdge && isPassable(x, y) {
					queue = append(queue, []int{x, y})
				}
			}
		}
	}

	visited := make(map[string]bool)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		x, y := current[0], current[1]
		key := fmt.Sprintf("%d,%d", x, y)
		if visited[key] {
			continue
		}
		visited[key] = true

		directions := [][]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
		for _, dir := range directions {
			nx, ny := x+dir[0], y+dir[1]
			nkey := fmt.Sprintf("%d,%d", nx, ny)
			if !visited[nkey] && isPassable(nx, ny) {
				queue = append(queue, []int{nx, ny})
			}
		}
	}

	return visited
}

// goalCells scans the terrain of every board for goal cells.
func goalCells(def *engine.Definition) (playerGoals int, blockGoals map[engine.Color]int) {
	blockGoals = make(map[engine.Color]int)
	for _, bd := range def.Boards {
		for _, row := range bd.Rows {
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

// sortedColors returns the map keys in stable order.
func sortedColors(m map[engine.Color]int) []engine.Color {
	colors := make([]engine.Color, 0, len(m))
	for c := range m {
		colors = append(colors, c)
	}
	sort.Slice(colors, func(i, j int) bool { return colors[i] < colors[j] })
	return colors
}

// main scans the level directory for *.txt files and validates each one,
// printing a concise report and exiting with non-zero status if any are
// invalid.
func main() {
	levelDir := flag.String("levels", "levels", "directory containing level files")
	flag.Parse()

	files, err := filepath.Glob(filepath.Join(*levelDir, "*.txt"))
	if err != nil {
		fmt.Printf("Error finding level files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No level files in %s\n", *levelDir)
		return
	}

	allValid := true
	for _, file := range files {
		result := validateLevel(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All levels are valid!")
	} else {
		fmt.Println("❌ Some levels have errors")
		os.Exit(1)
	}
}
