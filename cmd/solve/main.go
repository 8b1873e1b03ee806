// Command solve runs the breadth-first solver over level files and
// prints the shortest solution for each, or the reason the search
// stopped without one. With -write every found solution is recorded
// to a sibling <name>.solution file in the format replay verifies.
//
// Usage:
//
//	solve [-levels dir] [-level name] [-max-states n] [-max-depth n] [-timeout d] [-write]
//
// The exit code is non-zero when any level could not be solved.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/deepbox/deepbox/game/level"
	"github.com/deepbox/deepbox/solver"
)

func main() {
	levelDir := flag.String("levels", "levels", "directory containing level files")
	only := flag.String("level", "", "solve a single level instead of every level in the directory")
	maxStates := flag.Int("max-states", solver.DefaultMaxStates, "maximum distinct states to explore per level")
	maxDepth := flag.Int("max-depth", solver.DefaultMaxDepth, "longest solution to consider")
	timeout := flag.Duration("timeout", 30*time.Second, "per-level search timeout")
	write := flag.Bool("write", false, "record found solutions to <name>.solution files")
	flag.Parse()

	mgr, err := level.NewManager(*levelDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "solve: %v\n", err)
		os.Exit(1)
	}

	names, err := levelNames(mgr, *only)
	if err != nil {
		fmt.Fprintf(os.Stderr, "solve: %v\n", err)
		os.Exit(1)
	}
	if len(names) == 0 {
		fmt.Println("no levels found")
		return
	}

	opts := solver.Options{MaxStates: *maxStates, MaxDepth: *maxDepth}
	failed := 0
	for _, name := range names {
		if err := solveOne(mgr, *levelDir, name, opts, *timeout, *write); err != nil {
			fmt.Printf("❌ %s: %v\n", name, err)
			failed++
		}
	}

	fmt.Printf("\n%d level(s) searched, %d without a solution\n", len(names), failed)
	if failed > 0 {
		os.Exit(1)
	}
}

// levelNames lists the levels to solve. ListLevels skips files that do
// not parse; analyze is the tool that reports those.
func levelNames(mgr *level.Manager, only string) ([]string, error) {
	if only != "" {
		return []string{only}, nil
	}
	infos, err := mgr.ListLevels()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.LevelID)
	}
	return names, nil
}

// solveOne searches a single level and optionally records the result.
func solveOne(mgr *level.Manager, dir, name string, opts solver.Options, timeout time.Duration, write bool) error {
	def, err := mgr.LoadLevel(name)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	res, err := solver.Solve(ctx, def, opts)
	if err != nil {
		return err
	}

	if !res.Found {
		if res.Reason == solver.ReasonExhausted {
			return fmt.Errorf("unsolvable, full state space explored (%d states)", res.States)
		}
		return fmt.Errorf("no verdict: %s (%d states, %s)", res.Reason, res.States, res.Elapsed.Round(time.Millisecond))
	}

	fmt.Printf("✅ %s: %d moves in %s (%d states): %s\n",
		name, len(res.Solution), res.Elapsed.Round(time.Millisecond), res.States, res.Solution)

	if write {
		path := filepath.Join(dir, name+".solution")
		body := fmt.Sprintf("# %s: %d moves\n%s\n", def.Name, len(res.Solution), res.Solution)
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Printf("   wrote %s\n", path)
	}
	return nil
}
