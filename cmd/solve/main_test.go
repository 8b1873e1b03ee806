package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepbox/deepbox/game/level"
	"github.com/deepbox/deepbox/solver"
)

const solveLevelText = `version 1
name Hallway
board root 6x3
######
#...a#
######
player 1 1
block 2 1 a
`

const blockedLevelText = `version 1
name Walled Off
board root 5x3
#####
#.#=#
#####
player 1 1
`

func writeSolveFixture(t *testing.T) (string, *level.Manager) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hallway.txt"), []byte(solveLevelText), 0644))
	mgr, err := level.NewManager(dir)
	require.NoError(t, err, "the manager should open the fixture directory")
	return dir, mgr
}

func TestLevelNames(t *testing.T) {
	_, mgr := writeSolveFixture(t)

	names, err := levelNames(mgr, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"hallway"}, names)

	names, err = levelNames(mgr, "other")
	require.NoError(t, err)
	assert.Equal(t, []string{"other"}, names, "-level bypasses the directory listing")
}

func TestSolveOneWritesSolution(t *testing.T) {
	dir, mgr := writeSolveFixture(t)

	err := solveOne(mgr, dir, "hallway", solver.Options{}, time.Second, true)
	require.NoError(t, err, "the two-push hallway should solve")

	moves, err := mgr.Solution("hallway")
	require.NoError(t, err, "the solution file should be readable back")
	assert.Equal(t, "RR", moves, "the shortest solution is two pushes right")
}

func TestSolveOneWithoutWrite(t *testing.T) {
	dir, mgr := writeSolveFixture(t)

	err := solveOne(mgr, dir, "hallway", solver.Options{}, time.Second, false)
	require.NoError(t, err)

	_, err = mgr.Solution("hallway")
	assert.ErrorIs(t, err, level.ErrSolutionNotFound, "no file is written without -write")
}

func TestSolveOneUnsolvable(t *testing.T) {
	dir, mgr := writeSolveFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "walled.txt"), []byte(blockedLevelText), 0644))

	err := solveOne(mgr, dir, "walled", solver.Options{}, time.Second, false)
	require.Error(t, err, "a walled-off goal cannot be reached")
	assert.Contains(t, err.Error(), "unsolvable")
}

func TestSolveOneMissingLevel(t *testing.T) {
	dir, mgr := writeSolveFixture(t)

	err := solveOne(mgr, dir, "missing", solver.Options{}, time.Second, false)
	assert.ErrorIs(t, err, level.ErrLevelNotFound)
}
