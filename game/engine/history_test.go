package engine

import (
	"reflect"
	"testing"
)

func TestUndo_RestoresExactPriorState(t *testing.T) {
	e := NewEngineWithDefaults()
	fresh := NewEngineWithDefaults()

	for _, dir := range []Direction{DirRight, DirRight, DirDown} {
		mustApply(t, e, dir)
	}
	for range 3 {
		if outcome, err := e.Undo(); err != nil || outcome != OutcomeApplied {
			t.Fatalf("Undo = %s/%v", outcome, err)
		}
	}

	if e.Key() != fresh.Key() {
		t.Errorf("Undone state differs from fresh engine:\n%s\n%s", e.Key(), fresh.Key())
	}
	if !reflect.DeepEqual(e.State(), fresh.State()) {
		t.Error("Snapshots differ after full undo")
	}
	if e.MoveCount() != 0 {
		t.Errorf("Move count %d after full undo", e.MoveCount())
	}
}

func TestUndo_WithEmptyHistoryIsIllegal(t *testing.T) {
	e := NewEngineWithDefaults()
	key := e.Key()

	outcome, err := e.Undo()
	if err != nil {
		t.Fatalf("Undo error: %v", err)
	}
	if outcome != OutcomeIllegal {
		t.Errorf("Undo on fresh engine = %s, want illegal", outcome)
	}
	if e.Key() != key {
		t.Error("No-op undo changed the world")
	}
}

func TestUndo_RevertsWholeBatches(t *testing.T) {
	// One command moved three entities; one undo puts all three back.
	def := &Definition{
		Name:   "batch",
		Boards: []BoardDef{{Key: "root", Width: 5, Height: 1, Rows: []string{"....."}}},
		Entities: []EntityDef{
			{Kind: KindPlayer, Board: "root", X: 0, Y: 0},
			{Kind: KindBlock, Board: "root", X: 1, Y: 0, Color: "a", CloneSet: 1},
			{Kind: KindBlock, Board: "root", X: 3, Y: 0, Color: "a", CloneSet: 1},
		},
	}
	e := mustEngine(t, def)
	before := e.Key()

	mustApply(t, e, DirRight)
	if outcome, err := e.Undo(); err != nil || outcome != OutcomeApplied {
		t.Fatalf("Undo = %s/%v", outcome, err)
	}

	if e.Key() != before {
		t.Error("Undo did not revert the replicated clone displacement")
	}
	for id, wantX := range []int{0, 1, 3} {
		if got := entityPos(e, EntityID(id)); got.Pos != (Pos{X: wantX, Y: 0}) {
			t.Errorf("Entity %d at %s, want x=%d", id, got, wantX)
		}
	}
}

func TestUndo_RestoresFlipState(t *testing.T) {
	e := mustEngine(t, boxDef(true))
	mustApply(t, e, DirRight)
	mustApply(t, e, DirRight) // enter the flipped box, toggling the flip

	if !e.world.entities[0].Flipped {
		t.Fatal("Setup failed: player should be flipped inside the box")
	}
	if _, err := e.Undo(); err != nil {
		t.Fatalf("Undo error: %v", err)
	}
	if e.world.entities[0].Flipped {
		t.Error("Undo left the player flipped")
	}
	if got := entityPos(e, 0); got != (GlobalPos{Board: 0, Pos: Pos{X: 1, Y: 0}}) {
		t.Errorf("Player at %s after undo, want root (1,0)", got)
	}
}

func TestRestart_ReturnsToInitialSnapshot(t *testing.T) {
	e := NewEngineWithDefaults()
	fresh := NewEngineWithDefaults()

	for _, dir := range []Direction{DirRight, DirRight, DirRight, DirDown} {
		mustApply(t, e, dir)
	}
	outcome, err := e.Restart()
	if err != nil {
		t.Fatalf("Restart error: %v", err)
	}
	if outcome != OutcomeApplied {
		t.Errorf("Restart = %s, want applied", outcome)
	}

	if e.Key() != fresh.Key() {
		t.Error("Restart did not restore the initial snapshot")
	}
	if e.MoveCount() != 0 {
		t.Errorf("Move count %d after restart", e.MoveCount())
	}

	// Undo right after restart has nothing to take back.
	if outcome, _ := e.Undo(); outcome != OutcomeIllegal {
		t.Errorf("Undo after restart = %s, want illegal", outcome)
	}
}

func TestRestart_IsIdempotent(t *testing.T) {
	e := NewEngineWithDefaults()
	mustApply(t, e, DirRight)

	if _, err := e.Restart(); err != nil {
		t.Fatalf("Restart error: %v", err)
	}
	key := e.Key()
	for range 3 {
		if _, err := e.Restart(); err != nil {
			t.Fatalf("Restart error: %v", err)
		}
		if e.Key() != key {
			t.Fatal("Repeated restart drifted from the initial snapshot")
		}
	}
}

func TestReplay_ReproducesStateAndHistory(t *testing.T) {
	e := NewEngineWithDefaults()
	for _, dir := range []Direction{DirRight, DirRight, DirDown} {
		mustApply(t, e, dir)
	}
	if _, err := e.Undo(); err != nil {
		t.Fatalf("Undo error: %v", err)
	}

	// Replaying the surviving moves rebuilds the same state with the
	// same undo depth.
	replayed := NewEngineWithDefaults()
	for _, dir := range e.Moves() {
		mustApply(t, replayed, dir)
	}

	if replayed.Key() != e.Key() {
		t.Error("Replay reached a different state")
	}
	if replayed.MoveCount() != e.MoveCount() {
		t.Errorf("Replay move count %d, want %d", replayed.MoveCount(), e.MoveCount())
	}
}
