package solver

import (
	"context"
	"time"

	"github.com/deepbox/deepbox/game/engine"
)

// Default search budgets. A breadth-first search over whole world
// states is exact but can blow up on open levels; the budgets turn a
// runaway search into a reported failure.
const (
	DefaultMaxStates = 200000
	DefaultMaxDepth  = 200
)

// Options bounds a search. Zero values fall back to the defaults.
type Options struct {
	MaxStates int // distinct world states to explore
	MaxDepth  int // longest solution to consider
}

// Reasons a finished search reports. A canceled context reports the
// context error text instead.
const (
	ReasonSolved    = "solved"
	ReasonExhausted = "exhausted"
	ReasonStates    = "state budget exceeded"
	ReasonDepth     = "depth budget exceeded"
)

// Result reports the outcome of a search. Reason is ReasonSolved when
// a solution was found. ReasonExhausted means every reachable state
// was visited without a win, which proves the level cannot be won.
type Result struct {
	Found    bool
	Solution string // shortest winning move string, empty when not found
	Reason   string
	States   int
	Depth    int
	Elapsed  time.Duration
}

// node couples a world state with the moves that produced it.
type node struct {
	eng   *engine.GameEngine
	moves []engine.Direction
}

var searchOrder = []engine.Direction{engine.DirUp, engine.DirDown, engine.DirLeft, engine.DirRight}

// Solve runs a breadth-first search from the definition's initial
// position and returns the first, therefore shortest, winning move
// sequence. States are deduplicated by their world key, so cycles
// through infinite exits terminate. Cancel the context to stop a long
// search early.
func Solve(ctx context.Context, def *engine.Definition, opts Options) (*Result, error) {
	maxStates := opts.MaxStates
	if maxStates <= 0 {
		maxStates = DefaultMaxStates
	}
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	e, err := engine.NewEngine(def)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if e.Won() {
		return &Result{Found: true, Reason: ReasonSolved, States: 1, Elapsed: time.Since(start)}, nil
	}

	visited := map[string]bool{e.Key(): true}
	queue := []node{{eng: e}}
	states := 1
	deepest := 0

	for len(queue) > 0 {
		if ctx.Err() != nil {
			return &Result{Reason: ctx.Err().Error(), States: states, Depth: deepest, Elapsed: time.Since(start)}, nil
		}

		cur := queue[0]
		queue = queue[1:]

		if len(cur.moves) >= maxDepth {
			// Breadth-first order: everything still queued is at least
			// this deep, so the whole search is over budget.
			return &Result{Reason: ReasonDepth, States: states, Depth: deepest, Elapsed: time.Since(start)}, nil
		}

		for _, dir := range searchOrder {
			child := cur.eng.Clone()
			outcome, err := child.Move(dir)
			if err != nil || outcome == engine.OutcomeIllegal {
				continue
			}

			key := child.Key()
			if visited[key] {
				continue
			}
			visited[key] = true
			states++

			moves := append(append([]engine.Direction{}, cur.moves...), dir)
			if len(moves) > deepest {
				deepest = len(moves)
			}

			if outcome == engine.OutcomeWon {
				return &Result{
					Found:    true,
					Solution: engine.MovesString(moves),
					Reason:   ReasonSolved,
					States:   states,
					Depth:    len(moves),
					Elapsed:  time.Since(start),
				}, nil
			}

			if states >= maxStates {
				return &Result{Reason: ReasonStates, States: states, Depth: deepest, Elapsed: time.Since(start)}, nil
			}

			queue = append(queue, node{eng: child, moves: moves})
		}
	}

	return &Result{Reason: ReasonExhausted, States: states, Depth: deepest, Elapsed: time.Since(start)}, nil
}
