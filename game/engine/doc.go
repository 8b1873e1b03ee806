// Package engine provides the core puzzle logic for Deepbox.
//
// The engine package implements the recursive box-pushing mechanics:
//   - Boards of cells with walls and goal markings
//   - Pushable blocks, boxes whose interiors are boards, and declared
//     infinite-exit back-references into ancestor boards
//   - Push-chain resolution across containment boundaries, including
//     entering and exiting boxes, horizontal flips and clone sets
//   - Exact undo and restart backed by reversible move records
//   - Win evaluation over player and block goals
//
// Core Types:
//
// The Engine interface defines the main contract for puzzle operations,
// implemented by GameEngine. World holds the board and entity arenas,
// while Definition is the fully-resolved description a level file parses
// into before construction.
//
// Usage:
//
//	def := engine.DefaultDefinition()
//	game, err := engine.NewEngine(def)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	outcome, err := game.Move(engine.DirRight)
//	if outcome == engine.OutcomeWon {
//		fmt.Println("solved in", game.MoveCount(), "moves")
//	}
//
// Game Rules:
//
// The player pushes blocks around boards that can themselves live inside
// pushable boxes. A push that runs off a board edge carries into the
// parent board next to the owning box; a push into a box face carries
// onto the interior board's opposite edge. The puzzle is solved when
// every goal cell is satisfied: player goals by the player, block goals
// by a block or box of the matching color.
//
// The engine is deliberately single-threaded: exactly one goroutine may
// own a World. Callers that share an engine across goroutines must
// serialize access themselves, the way the service layer does.
package engine
