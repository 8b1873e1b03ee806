package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepbox/deepbox/game/level"
)

const replayLevelText = `version 1
name Hallway
board root 6x3
######
#...a#
######
player 1 1
block 2 1 a
`

func writeReplayFixture(t *testing.T, solution string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hallway.txt"), []byte(replayLevelText), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hallway.solution"), []byte(solution), 0644))
	return dir
}

func newTestManager(t *testing.T, dir string) *level.Manager {
	t.Helper()
	mgr, err := level.NewManager(dir)
	require.NoError(t, err, "the manager should open the fixture directory")
	return mgr
}

func TestSolutionNames(t *testing.T) {
	dir := writeReplayFixture(t, "RR\n")

	names, err := solutionNames(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"hallway"}, names)

	names, err = solutionNames(dir, "other.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"other"}, names, "-level strips the .txt suffix")
}

func TestVerifyAcceptsExactSolution(t *testing.T) {
	dir := writeReplayFixture(t, "# push the block onto its goal\nRR\n")
	mgr := newTestManager(t, dir)

	steps, err := verify(mgr, "hallway", false)
	require.NoError(t, err, "the recorded solution should replay cleanly")
	assert.Equal(t, 2, steps)
}

func TestVerifyRejectsIllegalStep(t *testing.T) {
	dir := writeReplayFixture(t, "UR\n")
	mgr := newTestManager(t, dir)

	_, err := verify(mgr, "hallway", false)
	require.Error(t, err, "a blocked move should fail verification")
	assert.Contains(t, err.Error(), "move 1")
	assert.Contains(t, err.Error(), "no legal effect")
}

func TestVerifyRejectsShortSolution(t *testing.T) {
	dir := writeReplayFixture(t, "R\n")
	mgr := newTestManager(t, dir)

	_, err := verify(mgr, "hallway", false)
	require.Error(t, err, "an unfinished replay should fail verification")
	assert.Contains(t, err.Error(), "not solved after 1 moves")
}

func TestVerifyRejectsTrailingMoves(t *testing.T) {
	dir := writeReplayFixture(t, "RRL\n")
	mgr := newTestManager(t, dir)

	_, err := verify(mgr, "hallway", false)
	require.Error(t, err, "moves past the win should fail verification")
	assert.Contains(t, err.Error(), "solved after move 2")
}

func TestVerifyMissingSolution(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hallway.txt"), []byte(replayLevelText), 0644))
	mgr := newTestManager(t, dir)

	_, err := verify(mgr, "hallway", false)
	assert.Error(t, err, "a level without a solution file cannot verify")
}
