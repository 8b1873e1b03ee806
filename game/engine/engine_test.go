package engine

import (
	"errors"
	"strings"
	"testing"
)

func TestNewEngine_RejectsInvalidDefinition(t *testing.T) {
	def := DefaultDefinition()
	def.Name = ""
	if _, err := NewEngine(def); err == nil {
		t.Fatal("Expected validation error")
	}
}

func TestEngine_SolvesDefaultPuzzle(t *testing.T) {
	e := NewEngineWithDefaults()

	moves, err := ParseMoves("RRRDDL")
	if err != nil {
		t.Fatalf("ParseMoves error: %v", err)
	}
	for i, dir := range moves {
		outcome, err := e.Move(dir)
		if err != nil {
			t.Fatalf("Move %d (%s) error: %v", i, dir, err)
		}
		if i < len(moves)-1 {
			if outcome != OutcomeApplied {
				t.Fatalf("Move %d (%s) = %s, want applied", i, dir, outcome)
			}
			if e.Won() {
				t.Fatalf("Won too early after move %d", i)
			}
		} else {
			if outcome != OutcomeWon {
				t.Fatalf("Final move = %s, want won", outcome)
			}
		}
	}
	if !e.Won() {
		t.Error("Engine does not report the win")
	}
	if got := MovesString(e.Moves()); got != "RRRDDL" {
		t.Errorf("Recorded moves %q, want RRRDDL", got)
	}
}

func TestEngine_MovesAfterWinAreIllegal(t *testing.T) {
	e := NewEngineWithDefaults()
	for _, dir := range []Direction{DirRight, DirRight, DirRight, DirDown, DirDown, DirLeft} {
		mustApply(t, e, dir)
	}

	key := e.Key()
	outcome, err := e.Move(DirUp)
	if err != nil {
		t.Fatalf("Move error: %v", err)
	}
	if outcome != OutcomeIllegal {
		t.Fatalf("Post-win move = %s, want illegal", outcome)
	}
	if e.Key() != key {
		t.Error("Post-win move changed the world")
	}

	// Undo still works and leaves the solved state.
	outcome, err = e.Undo()
	if err != nil {
		t.Fatalf("Undo error: %v", err)
	}
	if outcome != OutcomeApplied {
		t.Errorf("Undo after win = %s, want applied", outcome)
	}
	if e.Won() {
		t.Error("Still won after undoing the winning move")
	}
}

func TestEngine_MoveWithoutPlayer(t *testing.T) {
	def := &Definition{
		Name:   "empty stage",
		Boards: []BoardDef{openBoard("root", 3, 3)},
		Entities: []EntityDef{
			{Kind: KindBlock, Board: "root", X: 1, Y: 1, Color: "a"},
		},
	}
	e := mustEngine(t, def)

	outcome, err := e.Move(DirUp)
	if !errors.Is(err, ErrNoPlayer) {
		t.Fatalf("Expected ErrNoPlayer, got %v", err)
	}
	if outcome != OutcomeIllegal {
		t.Errorf("Outcome %s, want illegal", outcome)
	}
}

func TestEngine_Do(t *testing.T) {
	tests := []struct {
		name        string
		command     string
		wantOutcome Outcome
		wantErr     error
	}{
		{"verb move", "move right", OutcomeApplied, nil},
		{"bare direction", "d", OutcomeApplied, nil},
		{"undo", "undo", OutcomeApplied, nil},
		{"restart", "restart", OutcomeApplied, nil},
		{"empty", "", OutcomeIllegal, ErrInvalidCommand},
		{"unknown verb", "teleport", OutcomeIllegal, ErrInvalidCommand},
		{"unknown direction", "move diagonally", OutcomeIllegal, ErrInvalidCommand},
		{"trailing garbage", "undo twice", OutcomeIllegal, ErrInvalidCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngineWithDefaults()
			if tt.command == "undo" {
				mustApply(t, e, DirRight)
			}
			outcome, err := e.Do(tt.command)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Do(%q) error %v, want %v", tt.command, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Do(%q) error: %v", tt.command, err)
			}
			if outcome != tt.wantOutcome {
				t.Errorf("Do(%q) = %s, want %s", tt.command, outcome, tt.wantOutcome)
			}
		})
	}
}

func TestEngine_GoalKindsDoNotMix(t *testing.T) {
	// The block reaches its goal but the player goal stays open, then
	// the block sits on the player goal without satisfying it.
	def := &Definition{
		Name:   "mismatch",
		Boards: []BoardDef{{Key: "root", Width: 4, Height: 1, Rows: []string{"=a.."}}},
		Entities: []EntityDef{
			{Kind: KindBlock, Board: "root", X: 2, Y: 0, Color: "a"},
			{Kind: KindPlayer, Board: "root", X: 3, Y: 0},
		},
	}
	e := mustEngine(t, def)

	outcome, err := e.Move(DirLeft)
	if err != nil {
		t.Fatalf("Move error: %v", err)
	}
	if outcome != OutcomeApplied {
		t.Fatalf("Expected applied, got %s", outcome)
	}
	if e.Won() {
		t.Fatal("Won with the player goal unsatisfied")
	}

	outcome, err = e.Move(DirLeft)
	if err != nil {
		t.Fatalf("Move error: %v", err)
	}
	if outcome == OutcomeWon || e.Won() {
		t.Fatal("A block on a player goal must not win")
	}
	if w := e.World(); w.SatisfiedGoals() != 0 {
		t.Errorf("Satisfied goals %d, want 0: the block sits on the player goal and the player on the block goal", w.SatisfiedGoals())
	}
}

func TestEngine_StateSnapshot(t *testing.T) {
	e := NewEngineWithDefaults()
	mustApply(t, e, DirRight)

	s := e.State()
	if s.Name != "First Push" {
		t.Errorf("Snapshot name %q", s.Name)
	}
	if s.MoveCount != 1 || s.Moves != "R" {
		t.Errorf("Snapshot moves %d/%q, want 1/R", s.MoveCount, s.Moves)
	}
	if s.Player != 0 {
		t.Errorf("Snapshot player %d, want 0", s.Player)
	}
	if len(s.Boards) != 1 {
		t.Fatalf("Snapshot boards %d, want 1", len(s.Boards))
	}
	if s.Goals != 2 || s.Satisfied != 0 {
		t.Errorf("Snapshot goals %d/%d, want 2/0", s.Goals, s.Satisfied)
	}

	board := s.BoardByID(s.Root)
	if board == nil {
		t.Fatal("Snapshot missing the root board")
	}
	if c := board.CellAt(2, 1); c.Occupant != 0 {
		t.Errorf("Snapshot cell (2,1) holds %d, want the player", c.Occupant)
	}

	// Mutating the snapshot leaves the engine alone.
	board.Cells[0].Occupant = 99
	s.Entities[0].Pos.X = 99
	if c := e.State().BoardByID(e.State().Root).CellAt(0, 0); c.Occupant == 99 {
		t.Error("Snapshot mutation leaked into the engine")
	}
}

func TestEngine_CloneIsIndependent(t *testing.T) {
	e := NewEngineWithDefaults()
	mustApply(t, e, DirRight)

	dup := e.Clone()
	if dup.Key() != e.Key() || dup.MoveCount() != e.MoveCount() {
		t.Fatal("Clone does not match the original")
	}

	mustApply(t, e, DirRight)
	if dup.Key() == e.Key() {
		t.Error("Moving the original moved the clone")
	}

	if _, err := dup.Undo(); err != nil {
		t.Fatalf("Clone undo error: %v", err)
	}
	if dup.MoveCount() != 0 {
		t.Errorf("Clone move count %d, want 0", dup.MoveCount())
	}
}

func TestEngine_DebugDumpMentionsState(t *testing.T) {
	e := NewEngineWithDefaults()
	dump := e.DebugDump()
	if !strings.Contains(dump, "player=0") || !strings.Contains(dump, `board 0 "root"`) {
		t.Errorf("DebugDump missing expected sections:\n%s", dump)
	}
}
