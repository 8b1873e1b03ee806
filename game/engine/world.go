package engine

import (
	"fmt"
	"sort"
	"strings"
)

// World holds the complete puzzle state: the board arena, the entity
// arena and the indexes derived from them. Worlds are built once from a
// Definition; afterwards only cell occupants and entity positions/flips
// change. A World is not safe for concurrent use.
type World struct {
	boards    []*Board
	entities  []*Entity
	root      BoardID
	player    EntityID
	cloneSets map[CloneSetID][]EntityID
	goals     []GlobalPos
}

// NewWorld validates the definition, assembles the arenas and verifies
// the structural invariants that need the assembled containment graph:
// ownership must form a tree rooted at the first board, and every
// infinite-exit target must be an ancestor of the cell holding it.
func NewWorld(def *Definition) (*World, error) {
	if err := ValidateDefinition(def); err != nil {
		return nil, err
	}

	w := &World{
		root:      0,
		player:    NoEntity,
		cloneSets: make(map[CloneSetID][]EntityID),
	}

	boardIDs := make(map[string]BoardID, len(def.Boards))
	for i := range def.Boards {
		bd := &def.Boards[i]
		board := &Board{
			ID:     BoardID(i),
			Key:    bd.Key,
			Width:  bd.Width,
			Height: bd.Height,
			Owner:  NoEntity,
			Cells:  make([]Cell, bd.Width*bd.Height),
		}
		for y, row := range bd.Rows {
			for x, r := range []rune(row) {
				terrain, goalColor, _ := terrainForRune(r)
				board.Cells[y*bd.Width+x] = Cell{
					Terrain:   terrain,
					GoalColor: goalColor,
					Occupant:  NoEntity,
				}
			}
		}
		boardIDs[bd.Key] = board.ID
		w.boards = append(w.boards, board)
	}

	for i := range def.Entities {
		ed := &def.Entities[i]
		e := &Entity{
			ID:       EntityID(i),
			Kind:     ed.Kind,
			Pos:      GlobalPos{Board: boardIDs[ed.Board], Pos: Pos{X: ed.X, Y: ed.Y}},
			Color:    ed.Color,
			Flipped:  ed.Flipped,
			Interior: NoBoard,
			Target:   NoBoard,
			CloneSet: CloneSetID(ed.CloneSet),
		}
		switch ed.Kind {
		case KindPlayer:
			w.player = e.ID
		case KindBox:
			e.Interior = boardIDs[ed.Interior]
			w.boards[e.Interior].Owner = e.ID
		case KindInfiniteExit:
			e.Target = boardIDs[ed.Target]
		}
		w.boards[e.Pos.Board].cellAt(e.Pos.Pos).Occupant = e.ID
		if e.CloneSet != NoCloneSet {
			w.cloneSets[e.CloneSet] = append(w.cloneSets[e.CloneSet], e.ID)
		}
		w.entities = append(w.entities, e)
	}

	for _, b := range w.boards {
		if err := w.checkAncestry(b.ID); err != nil {
			return nil, err
		}
	}
	for _, e := range w.entities {
		if e.Kind != KindInfiniteExit {
			continue
		}
		if !w.isAncestorBoard(e.Target, e.Pos.Board) {
			return nil, fmt.Errorf("definition validation: infinite exit %d targets board %q, which does not contain it",
				e.ID, w.boards[e.Target].Key)
		}
	}

	for _, b := range w.boards {
		for y := 0; y < b.Height; y++ {
			for x := 0; x < b.Width; x++ {
				c := b.At(Pos{X: x, Y: y})
				if c.Terrain == TerrainPlayerGoal || c.Terrain == TerrainBlockGoal {
					w.goals = append(w.goals, GlobalPos{Board: b.ID, Pos: Pos{X: x, Y: y}})
				}
			}
		}
	}

	return w, nil
}

// checkAncestry walks owner links from the board to the root, failing on
// a containment cycle.
func (w *World) checkAncestry(id BoardID) error {
	b := id
	for steps := 0; ; steps++ {
		if b == w.root {
			return nil
		}
		if steps > len(w.boards) {
			return fmt.Errorf("definition validation: containment cycle through board %q", w.boards[id].Key)
		}
		owner := w.boards[b].Owner
		if owner == NoEntity {
			return fmt.Errorf("definition validation: board %q is detached from the root", w.boards[b].Key)
		}
		b = w.entities[owner].Pos.Board
	}
}

// isAncestorBoard reports whether candidate appears on the owner chain
// from board up to the root, the board itself included.
func (w *World) isAncestorBoard(candidate, board BoardID) bool {
	b := board
	for steps := 0; steps <= len(w.boards); steps++ {
		if b == candidate {
			return true
		}
		if b == w.root {
			return false
		}
		owner := w.boards[b].Owner
		if owner == NoEntity {
			return false
		}
		b = w.entities[owner].Pos.Board
	}
	return false
}

// Root returns the handle of the outermost board.
func (w *World) Root() BoardID {
	return w.root
}

// Player returns the player handle, or NoEntity if the world has none.
func (w *World) Player() EntityID {
	return w.player
}

// Board returns the board for a handle.
func (w *World) Board(id BoardID) *Board {
	return w.boards[id]
}

// Entity returns the entity for a handle.
func (w *World) Entity(id EntityID) *Entity {
	return w.entities[id]
}

// BoardCount returns the number of boards in the arena.
func (w *World) BoardCount() int {
	return len(w.boards)
}

// EntityCount returns the number of entities in the arena.
func (w *World) EntityCount() int {
	return len(w.entities)
}

// EntityAt returns the occupant of a cell, if any.
func (w *World) EntityAt(gp GlobalPos) (EntityID, bool) {
	b := w.boards[gp.Board]
	if !b.Contains(gp.Pos) {
		return NoEntity, false
	}
	id := b.At(gp.Pos).Occupant
	return id, id != NoEntity
}

// TerrainAt returns the terrain of a cell. Out-of-range positions read
// as walls, which keeps bounds questions local to the resolver.
func (w *World) TerrainAt(gp GlobalPos) Terrain {
	b := w.boards[gp.Board]
	if !b.Contains(gp.Pos) {
		return TerrainWall
	}
	return b.At(gp.Pos).Terrain
}

// CloneSet returns the members of a clone set in construction order.
func (w *World) CloneSet(id CloneSetID) []EntityID {
	members := w.cloneSets[id]
	out := make([]EntityID, len(members))
	copy(out, members)
	return out
}

// Path returns the board chain from the root down to the entity's
// containing board. Owner links never cycle, so the walk terminates.
func (w *World) Path(id EntityID) []BoardID {
	var chain []BoardID
	b := w.entities[id].Pos.Board
	for {
		chain = append(chain, b)
		if b == w.root {
			break
		}
		b = w.entities[w.boards[b].Owner].Pos.Board
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// MoveOccupant is the single mutation primitive: it vacates from and
// fills to. Filling an occupied cell fails with OccupiedCellError and
// leaves both cells untouched.
func (w *World) MoveOccupant(from, to GlobalPos) error {
	src := w.boards[from.Board].cellAt(from.Pos)
	id := src.Occupant
	if id == NoEntity {
		return fmt.Errorf("cell %s has no occupant to move", from)
	}
	dst := w.boards[to.Board].cellAt(to.Pos)
	if dst.Occupant != NoEntity {
		return &OccupiedCellError{Pos: to, Occupant: dst.Occupant, Incoming: id}
	}
	src.Occupant = NoEntity
	dst.Occupant = id
	w.entities[id].Pos = to
	return nil
}

func (w *World) clearOccupant(gp GlobalPos) {
	w.boards[gp.Board].cellAt(gp.Pos).Occupant = NoEntity
}

func (w *World) placeOccupant(gp GlobalPos, id EntityID) error {
	c := w.boards[gp.Board].cellAt(gp.Pos)
	if c.Occupant != NoEntity {
		return &OccupiedCellError{Pos: gp, Occupant: c.Occupant, Incoming: id}
	}
	c.Occupant = id
	w.entities[id].Pos = gp
	return nil
}

// Clone returns an independent deep copy of the world.
func (w *World) Clone() *World {
	dup := &World{
		root:      w.root,
		player:    w.player,
		cloneSets: make(map[CloneSetID][]EntityID, len(w.cloneSets)),
		goals:     make([]GlobalPos, len(w.goals)),
	}
	copy(dup.goals, w.goals)
	for set, members := range w.cloneSets {
		ms := make([]EntityID, len(members))
		copy(ms, members)
		dup.cloneSets[set] = ms
	}
	dup.boards = make([]*Board, len(w.boards))
	for i, b := range w.boards {
		dup.boards[i] = b.clone()
	}
	dup.entities = make([]*Entity, len(w.entities))
	for i, e := range w.entities {
		ec := *e
		dup.entities[i] = &ec
	}
	return dup
}

// Equal reports whether two worlds built from the same definition are in
// the same state: every entity at the same position with the same flip.
func (w *World) Equal(o *World) bool {
	if len(w.entities) != len(o.entities) || len(w.boards) != len(o.boards) {
		return false
	}
	for i, e := range w.entities {
		oe := o.entities[i]
		if e.Pos != oe.Pos || e.Flipped != oe.Flipped {
			return false
		}
	}
	return true
}

// Key returns a canonical encoding of the mutable state, suitable for
// deduplicating positions during search. Terrain never changes, so
// entity positions and flips identify the state completely.
func (w *World) Key() string {
	var b strings.Builder
	for _, e := range w.entities {
		fmt.Fprintf(&b, "%d:%d,%d", e.Pos.Board, e.Pos.X, e.Pos.Y)
		if e.Flipped {
			b.WriteByte('f')
		}
		b.WriteByte(';')
	}
	return b.String()
}

// occupantRune picks the dump glyph for an entity.
func occupantRune(e *Entity) rune {
	switch e.Kind {
	case KindPlayer:
		return 'P'
	case KindBox:
		return 'X'
	case KindInfiniteExit:
		return 'I'
	default:
		return 'B'
	}
}

func terrainRune(c Cell) rune {
	switch c.Terrain {
	case TerrainWall:
		return '#'
	case TerrainPlayerGoal:
		return '='
	case TerrainBlockGoal:
		return rune(c.GoalColor[0])
	default:
		return '.'
	}
}

// DebugDump renders the full internal structure as text: every board
// grid with occupants overlaid, the entity table, clone sets and goals.
func (w *World) DebugDump() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "world: %d boards, %d entities, player=%d\n",
		len(w.boards), len(w.entities), w.player)

	for _, b := range w.boards {
		owner := "-"
		if b.Owner != NoEntity {
			oe := w.entities[b.Owner]
			owner = fmt.Sprintf("entity %d at %s", oe.ID, oe.Pos)
		}
		fmt.Fprintf(&sb, "board %d %q %dx%d owner=%s\n", b.ID, b.Key, b.Width, b.Height, owner)
		for y := 0; y < b.Height; y++ {
			sb.WriteString("  ")
			for x := 0; x < b.Width; x++ {
				c := b.At(Pos{X: x, Y: y})
				if c.Occupant != NoEntity {
					sb.WriteRune(occupantRune(w.entities[c.Occupant]))
				} else {
					sb.WriteRune(terrainRune(c))
				}
			}
			sb.WriteByte('\n')
		}
	}

	for _, e := range w.entities {
		fmt.Fprintf(&sb, "entity %d %s color=%s at %s", e.ID, e.Kind, e.Color, e.Pos)
		if e.Interior != NoBoard {
			fmt.Fprintf(&sb, " interior=%d", e.Interior)
		}
		if e.Target != NoBoard {
			fmt.Fprintf(&sb, " target=%d", e.Target)
		}
		if e.CloneSet != NoCloneSet {
			fmt.Fprintf(&sb, " clone_set=%d", e.CloneSet)
		}
		if e.Flipped {
			sb.WriteString(" flipped")
		}
		sb.WriteByte('\n')
	}

	var sets []CloneSetID
	for set := range w.cloneSets {
		sets = append(sets, set)
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i] < sets[j] })
	for _, set := range sets {
		fmt.Fprintf(&sb, "clone set %d: %v\n", set, w.cloneSets[set])
	}

	fmt.Fprintf(&sb, "goals: %d\n", len(w.goals))
	return sb.String()
}
