// Package solver finds shortest solutions to puzzle definitions.
//
// The solver implements:
//   - Exact breadth-first search over whole world states
//   - State deduplication by world key, so infinite exit cycles terminate
//   - Budgets for state count, solution depth and wall clock time
//   - Unsolvability proofs when the reachable space is exhausted
//
// Algorithm:
//
// Every node in the search is a full engine state. Expanding a node
// clones the engine and applies one of the four directions; children
// whose world key was already seen are dropped. Breadth-first order
// makes the first win the shortest one.
//
// Usage:
//
//	res, err := solver.Solve(ctx, def, solver.Options{MaxStates: 50000})
//	if err != nil {
//		return err
//	}
//	if res.Found {
//		fmt.Println(res.Solution) // e.g. "RRRLLL"
//	}
//
// Budgets:
//
// MaxStates caps memory (each frontier state holds an engine clone),
// MaxDepth caps solution length, and the context caps wall clock time.
// A budgeted stop reports which budget was hit in Result.Reason; only
// the "exhausted" reason proves the level unsolvable.
package solver
