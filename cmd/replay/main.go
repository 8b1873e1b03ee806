// Command replay checks recorded solutions against their levels. For
// every <name>.solution file in the level directory it replays the
// move sequence from the initial state and verifies that each move
// applies, that the level is not solved before the final move, and
// that it is solved exactly at the end.
//
// Usage:
//
//	replay [-levels dir] [-level name] [-verbose]
//
// The exit code is non-zero when any solution fails to verify.
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

func main() {
	levelDir := flag.String("levels", "levels", "directory containing level and solution files")
	only := flag.String("level", "", "verify a single level instead of every solution in the directory")
	verbose := flag.Bool("verbose", false, "print the move-by-move trace")
	flag.Parse()

	mgr, err := level.NewManager(*levelDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		os.Exit(1)
	}

	names, err := solutionNames(*levelDir, *only)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		os.Exit(1)
	}
	if len(names) == 0 {
		fmt.Println("no solution files found")
		return
	}

	failed := 0
	for _, name := range names {
		steps, err := verify(mgr, name, *verbose)
		if err != nil {
			fmt.Printf("❌ %s: %v\n", name, err)
			failed++
			continue
		}
		fmt.Printf("✅ %s: solved in %d moves\n", name, steps)
	}

	fmt.Printf("\n%d solution(s) checked, %d failed\n", len(names), failed)
	if failed > 0 {
		os.Exit(1)
	}
}

// solutionNames lists the levels to verify. Without -level every
// *.solution file in the directory is checked.
func solutionNames(dir, only string) ([]string, error) {
	if only != "" {
		return []string{strings.TrimSuffix(only, ".txt")}, nil
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*.solution"))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(m), ".solution"))
	}
	sort.Strings(names)
	return names, nil
}

// verify replays one solution and returns its length when it solves
// the level exactly at the final move.
func verify(mgr *level.Manager, name string, verbose bool) (int, error) {
	sol, err := mgr.Solution(name)
	if err != nil {
		return 0, err
	}
	def, err := mgr.LoadLevel(name)
	if err != nil {
		return 0, err
	}
	eng, err := engine.NewEngine(def)
	if err != nil {
		return 0, err
	}
	moves, err := engine.ParseMoves(sol)
	if err != nil {
		return 0, err
	}
	if len(moves) == 0 {
		return 0, fmt.Errorf("solution is empty")
	}

	for i, dir := range moves {
		outcome, err := eng.Move(dir)
		if err != nil {
			return 0, fmt.Errorf("move %d (%s): %v", i+1, dir, err)
		}
		if verbose {
			fmt.Printf("   %3d %-5s %s\n", i+1, dir, outcome)
		}
		if outcome == engine.OutcomeIllegal {
			return 0, fmt.Errorf("move %d (%s) has no legal effect", i+1, dir)
		}
		if eng.Won() && i < len(moves)-1 {
			return 0, fmt.Errorf("solved after move %d, but %d moves remain", i+1, len(moves)-1-i)
		}
	}

	if !eng.Won() {
		return 0, fmt.Errorf("not solved after %d moves", len(moves))
	}
	return len(moves), nil
}
