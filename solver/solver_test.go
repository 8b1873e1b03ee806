package solver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepbox/deepbox/game/engine"
)

// corridorDef is a one-row pushing puzzle solved by exactly "RR".
func corridorDef() *engine.Definition {
	return &engine.Definition{
		Name: "Corridor",
		Boards: []engine.BoardDef{
			{Key: "root", Width: 6, Height: 3, Rows: []string{
				"######",
				"#...a#",
				"######",
			}},
		},
		Entities: []engine.EntityDef{
			{Kind: engine.KindPlayer, Board: "root", X: 1, Y: 1},
			{Kind: engine.KindBlock, Board: "root", X: 2, Y: 1, Color: "a"},
		},
	}
}

// pocketDef needs the block pushed into the box and the player to
// follow, eject and walk back: exactly "RRRLLL".
func pocketDef() *engine.Definition {
	return &engine.Definition{
		Name: "Pocket",
		Boards: []engine.BoardDef{
			{Key: "root", Width: 6, Height: 3, Rows: []string{
				"######",
				"#=...#",
				"######",
			}},
			{Key: "pocket", Width: 3, Height: 3, Rows: []string{
				"###",
				".a#",
				"###",
			}},
		},
		Entities: []engine.EntityDef{
			{Kind: engine.KindPlayer, Board: "root", X: 1, Y: 1},
			{Kind: engine.KindBlock, Board: "root", X: 2, Y: 1, Color: "a"},
			{Kind: engine.KindBox, Board: "root", X: 3, Y: 1, Color: "b", Interior: "pocket"},
		},
	}
}

// walledDef has its only goal behind a wall and no legal moves at all.
func walledDef() *engine.Definition {
	return &engine.Definition{
		Name: "Walled In",
		Boards: []engine.BoardDef{
			{Key: "root", Width: 5, Height: 3, Rows: []string{
				"#####",
				"#.#=#",
				"#####",
			}},
		},
		Entities: []engine.EntityDef{
			{Kind: engine.KindPlayer, Board: "root", X: 1, Y: 1},
		},
	}
}

// replaySolution applies a solution string to a fresh engine and checks
// that it wins.
func replaySolution(t *testing.T, def *engine.Definition, solution string) {
	t.Helper()

	e, err := engine.NewEngine(def)
	require.NoError(t, err, "engine should build from the definition")

	moves, err := engine.ParseMoves(solution)
	require.NoError(t, err, "solution should parse")

	for i, dir := range moves {
		outcome, err := e.Move(dir)
		require.NoError(t, err, "move %d should apply", i+1)
		require.NotEqual(t, engine.OutcomeIllegal, outcome, "move %d should be legal", i+1)
	}

	assert.True(t, e.Won(), "replaying the solution should win the level")
}

func TestSolveDefaultLevel(t *testing.T) {
	res, err := Solve(context.Background(), engine.DefaultDefinition(), Options{})
	require.NoError(t, err, "solve should not fail")

	assert.True(t, res.Found, "the default level is solvable")
	assert.Equal(t, "solved", res.Reason)
	assert.Len(t, res.Solution, 6, "the default level needs six moves")
	assert.Equal(t, 6, res.Depth)
	assert.Greater(t, res.States, 1, "the search should have explored states")

	replaySolution(t, engine.DefaultDefinition(), res.Solution)
}

func TestSolveShortestIsExact(t *testing.T) {
	res, err := Solve(context.Background(), corridorDef(), Options{})
	require.NoError(t, err, "solve should not fail")

	require.True(t, res.Found, "the corridor is solvable")
	assert.Equal(t, "RR", res.Solution, "two pushes are the whole solution")
}

func TestSolveThroughBox(t *testing.T) {
	res, err := Solve(context.Background(), pocketDef(), Options{})
	require.NoError(t, err, "solve should not fail")

	require.True(t, res.Found, "the pocket level is solvable")
	assert.Equal(t, "RRRLLL", res.Solution,
		"push the block into the box, follow it, eject and walk back")

	replaySolution(t, pocketDef(), res.Solution)
}

func TestSolveProvesUnsolvable(t *testing.T) {
	res, err := Solve(context.Background(), walledDef(), Options{})
	require.NoError(t, err, "solve should not fail")

	assert.False(t, res.Found, "the walled level has no solution")
	assert.Equal(t, "exhausted", res.Reason, "the whole state space was searched")
	assert.Equal(t, 1, res.States, "no move is legal, so only the start exists")
	assert.Empty(t, res.Solution)
}

func TestSolveStateBudget(t *testing.T) {
	res, err := Solve(context.Background(), engine.DefaultDefinition(), Options{MaxStates: 2})
	require.NoError(t, err, "solve should not fail")

	assert.False(t, res.Found, "two states are not enough")
	assert.Equal(t, "state budget exceeded", res.Reason)
	assert.Equal(t, 2, res.States)
}

func TestSolveDepthBudget(t *testing.T) {
	res, err := Solve(context.Background(), engine.DefaultDefinition(), Options{MaxDepth: 2})
	require.NoError(t, err, "solve should not fail")

	assert.False(t, res.Found, "the solution is longer than two moves")
	assert.Equal(t, "depth budget exceeded", res.Reason)
}

func TestSolveCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Solve(ctx, engine.DefaultDefinition(), Options{})
	require.NoError(t, err, "cancellation is a reported result, not an error")

	assert.False(t, res.Found)
	assert.Contains(t, res.Reason, "canceled")
}

func TestSolveAlreadyWon(t *testing.T) {
	def := &engine.Definition{
		Name: "Done",
		Boards: []engine.BoardDef{
			{Key: "root", Width: 3, Height: 3, Rows: []string{
				"###",
				"#=#",
				"###",
			}},
		},
		Entities: []engine.EntityDef{
			{Kind: engine.KindPlayer, Board: "root", X: 1, Y: 1},
		},
	}

	res, err := Solve(context.Background(), def, Options{})
	require.NoError(t, err, "solve should not fail")

	assert.True(t, res.Found, "the start position already satisfies every goal")
	assert.Empty(t, res.Solution, "no moves are needed")
	assert.Equal(t, 1, res.States)
}

func TestSolveInvalidDefinition(t *testing.T) {
	_, err := Solve(context.Background(), &engine.Definition{}, Options{})
	assert.Error(t, err, "an empty definition cannot be solved")
}

func TestSolveRespectsDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	time.Sleep(5 * time.Millisecond)

	res, err := Solve(ctx, engine.DefaultDefinition(), Options{})
	require.NoError(t, err, "a deadline is a reported result, not an error")

	assert.False(t, res.Found)
	assert.Contains(t, res.Reason, "deadline")
}
