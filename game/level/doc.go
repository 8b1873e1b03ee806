// Package level provides level loading and management for Deepbox.
//
// The level package handles:
//   - Parsing the plain-text level format into engine definitions
//   - Level validation through the engine's world builder
//   - Default level selection and caching
//   - Level discovery, listing, and saving
//   - Reference solutions stored in sibling .solution files
//
// Level Format:
//
// Levels are stored as .txt files in the levels directory. Each file
// declares one or more boards followed by the entities standing on
// them:
//
//	version 1
//	name Two Rooms
//
//	board root 7x5
//	#######
//	#.....#
//	#..=..#
//	#....a#
//	#######
//	player 1 1
//	block 2 1 a
//	box 3 2 b interior=cellar
//
//	board cellar 3x3
//	###
//	#.#
//	###
//
// The first board is the root. Board rows use '#' for walls, '.' for
// floor, '=' for the player goal, and 'a'..'z' for block goals. Entity
// options are flip, clone=<set>, interior=<board> (boxes), and
// target=<board> (infinite exits).
//
// Usage:
//
//	manager, err := level.NewManager("levels")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load a specific level
//	def, err := manager.LoadLevel("entry")
//
//	// Get the default level
//	def := manager.GetDefault()
//
//	// List available levels
//	levels, err := manager.ListLevels()
//
// Validation:
//
// Every loaded level runs through the engine's full definition checks:
// board sizes and row widths, entity placement, interior and target
// references, containment cycles, and clone set consistency. Files
// that fail validation are skipped by ListLevels and rejected by
// LoadLevel.
package level
