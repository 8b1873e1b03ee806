package engine

import (
	"errors"
	"math/big"
)

// displacement records one entity's scheduled movement within a single
// command: where it leaves, where it lands, and how its flip state
// changes on the way. A batch of displacements is validated completely
// before anything mutates.
type displacement struct {
	entity   EntityID
	from, to GlobalPos
	fromFlip bool
	toFlip   bool
	// pushDir is the direction the entity was scheduled in. It never
	// changes and is what ring closure and clone replication compare.
	pushDir Direction
	// dir is the direction the entity travels when it lands, after any
	// flipped boundaries it crossed.
	dir Direction
}

// enterKey identifies one attempt by a single moving entity to enter a
// board. Seeing the same key twice within one entity's walk means the
// descent never terminates.
type enterKey struct {
	board BoardID
	dir   Direction
	off   string
}

type resolverMark struct {
	batch int
}

// resolver accumulates the displacement batch for one command. The
// world is read but never written while a resolver runs.
//
// Ring closure can leave a prefix of the batch behind: when a chain
// loops back onto an entity it already scheduled, the loop from that
// entity onward rotates as a unit and everything scheduled before it
// holds its cell. moveIndex marks where the live batch begins; entries
// below it stay recorded for cycle checks but are never applied.
type resolver struct {
	w         *World
	batch     []displacement
	scheduled map[EntityID]int
	moveIndex int
	walkStart int
}

func middleOffset() *big.Rat {
	return big.NewRat(1, 2)
}

// ratFloor truncates a non-negative rational to an int.
func ratFloor(r *big.Rat) int {
	q := new(big.Int).Quo(r.Num(), r.Denom())
	return int(q.Int64())
}

// resolveMove computes the full consequence of moving one entity a
// single step in dir: the push chain, boundary crossings, and clone
// replication. The returned batch is ready for applyBatch; on error the
// world is untouched and the error wraps ErrIllegalMove unless it
// reports a fault.
func (w *World) resolveMove(mover EntityID, dir Direction) ([]displacement, error) {
	r := &resolver{
		w:         w,
		scheduled: make(map[EntityID]int),
	}
	if err := r.run(mover, dir); err != nil {
		return nil, err
	}
	return r.batch[r.moveIndex:], nil
}

func (r *resolver) run(mover EntityID, dir Direction) error {
	if err := r.move(mover, dir, middleOffset()); err != nil {
		return err
	}

	// Clone replication: every live scheduled member drags the rest of
	// its set through the same step, all or nothing. Replicated moves
	// can push chains that schedule further clones, so this loop runs
	// to a fixpoint over the growing batch. Entries dropped by ring
	// closure never moved, so they drag nothing.
	for i := r.moveIndex; i < len(r.batch); i++ {
		d := r.batch[i]
		e := r.w.entities[d.entity]
		if e.CloneSet == NoCloneSet {
			continue
		}
		for _, member := range r.w.cloneSets[e.CloneSet] {
			if member == d.entity {
				continue
			}
			if j, ok := r.scheduled[member]; ok {
				if j < r.moveIndex {
					return illegalf("clone set %d member %d is pinned by a ring while %d moves",
						e.CloneSet, member, d.entity)
				}
				if r.batch[j].pushDir != d.pushDir {
					return illegalf("clone set %d dragged in both %s and %s",
						e.CloneSet, r.batch[j].pushDir, d.pushDir)
				}
				continue
			}
			r.walkStart = len(r.batch)
			if err := r.move(member, d.pushDir, middleOffset()); err != nil {
				return err
			}
		}
	}

	// Flipped containers can steer two chains onto one destination;
	// catch that before anything mutates.
	live := r.batch[r.moveIndex:]
	dests := make(map[GlobalPos]EntityID, len(live))
	for _, d := range live {
		if other, dup := dests[d.to]; dup {
			return illegalf("entities %d and %d both land at %s", other, d.entity, d.to)
		}
		dests[d.to] = d.entity
	}
	return nil
}

func (r *resolver) mark() resolverMark {
	return resolverMark{batch: len(r.batch)}
}

func (r *resolver) rollback(m resolverMark) {
	for _, d := range r.batch[m.batch:] {
		delete(r.scheduled, d.entity)
	}
	r.batch = r.batch[:m.batch]
}

// move schedules one entity, then walks it to its destination. Finding
// the entity already scheduled closes a ring when the directions agree:
// inside the current walk the ring rotates and everything scheduled
// before it in the walk keeps its cell; against an earlier walk the
// entity is simply already moving and the walker takes the cell it
// vacates. A direction mismatch cannot be satisfied either way.
func (r *resolver) move(id EntityID, dir Direction, offset *big.Rat) error {
	if j, ok := r.scheduled[id]; ok {
		if r.batch[j].pushDir != dir {
			return illegalf("entity %d pulled in both %s and %s", id, r.batch[j].pushDir, dir)
		}
		if j < r.moveIndex {
			return illegalf("entity %d is pinned in place by an earlier ring", id)
		}
		if j >= r.walkStart {
			if r.walkStart == 0 {
				// Ring inside the initial walk: the loop from j onward
				// moves, the pushers before it hold.
				r.moveIndex = j
				return nil
			}
			if j == r.walkStart {
				// A replication walk that loops back onto its own
				// member moves as one ring.
				return nil
			}
			return illegalf("entity %d closes a ring that would strand a clone member", id)
		}
		return nil
	}
	e := r.w.entities[id]
	idx := len(r.batch)
	r.batch = append(r.batch, displacement{
		entity:   id,
		from:     e.Pos,
		to:       e.Pos,
		fromFlip: e.Flipped,
		toFlip:   e.Flipped,
		pushDir:  dir,
		dir:      dir,
	})
	r.scheduled[id] = idx
	return r.advance(idx, offset, make(map[enterKey]struct{}))
}

// advance steps the scheduled entity one cell, resolving board edges on
// the way out: leaving a board continues from the owning box in the
// parent board, with the crossing coordinate folded into the fractional
// offset. Leaving the root board has nowhere to continue. Ownership
// forms a tree, so the climb always terminates.
func (r *resolver) advance(idx int, offset *big.Rat, entered map[enterKey]struct{}) error {
	for {
		st := &r.batch[idx]
		b := r.w.boards[st.to.Board]
		next := st.to.Pos.Step(st.dir)
		if b.Contains(next) {
			st.to.Pos = next
			return r.occupy(idx, offset, entered)
		}

		if b.Owner == NoEntity {
			return illegalf("entity %d would leave the outermost board", st.entity)
		}
		owner := r.w.entities[b.Owner]

		coord := st.to.X
		if st.dir.Horizontal() {
			coord = st.to.Y
		}
		offset = new(big.Rat).Add(offset, big.NewRat(int64(coord), 1))
		offset.Quo(offset, big.NewRat(int64(b.Side(st.dir)), 1))

		if owner.Flipped {
			if st.dir.Horizontal() {
				st.dir = st.dir.Opposite()
			} else {
				offset = new(big.Rat).Sub(big.NewRat(1, 1), offset)
			}
			st.toFlip = !st.toFlip
		}
		st.to = owner.Pos
	}
}

// occupy settles the entity onto its target cell, interacting with
// whatever is there.
func (r *resolver) occupy(idx int, offset *big.Rat, entered map[enterKey]struct{}) error {
	st := r.batch[idx]
	cell := r.w.boards[st.to.Board].At(st.to.Pos)
	if cell.Terrain == TerrainWall {
		return illegalf("entity %d blocked by a wall at %s", st.entity, st.to)
	}
	if cell.Occupant == NoEntity {
		return nil
	}
	return r.interact(idx, cell.Occupant, offset, entered)
}

// interact tries to push the target out of the way, and failing that,
// to enter it. A target that is itself moving cannot be entered; one
// pinned in place by a ring can.
func (r *resolver) interact(idx int, target EntityID, offset *big.Rat, entered map[enterKey]struct{}) error {
	dir := r.batch[idx].dir

	m := r.mark()
	pushErr := r.move(target, dir, middleOffset())
	if pushErr == nil {
		return nil
	}
	if !errors.Is(pushErr, ErrIllegalMove) {
		return pushErr
	}
	r.rollback(m)

	if j, moving := r.scheduled[target]; moving && j >= r.moveIndex {
		return pushErr
	}
	te := r.w.entities[target]
	if te.IsContainer() {
		enterErr := r.enter(idx, target, offset, entered)
		if enterErr == nil {
			return nil
		}
		if !errors.Is(enterErr, ErrIllegalMove) {
			return enterErr
		}
		r.rollback(m)
		return enterErr
	}
	return pushErr
}

// enter carries the moving entity across the target's boundary onto its
// interior board. Infinite exits resolve the same way: their declared
// target handle is the interior, so the lookup stays O(1) no matter how
// deep the cycle renders.
func (r *resolver) enter(idx int, target EntityID, offset *big.Rat, entered map[enterKey]struct{}) error {
	te := r.w.entities[target]
	interior := te.EnterBoard()
	b := r.w.boards[interior]

	st := &r.batch[idx]
	dir := st.dir
	off := new(big.Rat).Set(offset)
	if te.Flipped {
		if dir.Horizontal() {
			dir = dir.Opposite()
		} else {
			off = new(big.Rat).Sub(big.NewRat(1, 1), off)
		}
	}

	key := enterKey{board: interior, dir: dir, off: off.RatString()}
	if _, seen := entered[key]; seen {
		return illegalf("entity %d descends forever into board %q", st.entity, b.Key)
	}
	entered[key] = struct{}{}

	scaled := new(big.Rat).Mul(off, big.NewRat(int64(b.Side(dir)), 1))
	cross := ratFloor(scaled)
	rem := new(big.Rat).Sub(scaled, big.NewRat(int64(cross), 1))

	var landing Pos
	switch dir {
	case DirRight:
		landing = Pos{X: 0, Y: cross}
	case DirLeft:
		landing = Pos{X: b.Width - 1, Y: cross}
	case DirDown:
		landing = Pos{X: cross, Y: 0}
	default:
		landing = Pos{X: cross, Y: b.Height - 1}
	}

	if te.Flipped {
		st.dir = dir
		st.toFlip = !st.toFlip
	}
	st.to = GlobalPos{Board: interior, Pos: landing}
	return r.occupy(idx, rem, entered)
}

// applyBatch commits a validated batch: every vacating write first,
// then the filling writes tail to head, then flips. A fill collision
// here means the validation missed something and surfaces as a fault.
func (w *World) applyBatch(batch []displacement) error {
	for i := range batch {
		w.clearOccupant(batch[i].from)
	}
	for i := len(batch) - 1; i >= 0; i-- {
		d := batch[i]
		if err := w.placeOccupant(d.to, d.entity); err != nil {
			return err
		}
		w.entities[d.entity].Flipped = d.toFlip
	}
	return nil
}

// revertBatch is the exact inverse of applyBatch.
func (w *World) revertBatch(batch []displacement) error {
	for i := range batch {
		w.clearOccupant(batch[i].to)
	}
	for i := range batch {
		d := batch[i]
		if err := w.placeOccupant(d.from, d.entity); err != nil {
			return err
		}
		w.entities[d.entity].Flipped = d.fromFlip
	}
	return nil
}
