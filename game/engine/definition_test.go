package engine

import (
	"strings"
	"testing"
)

func validTwoBoardDef() *Definition {
	return &Definition{
		Name: "two boards",
		Boards: []BoardDef{
			{Key: "root", Width: 4, Height: 3, Rows: []string{"....", ".=..", "...."}},
			{Key: "in", Width: 3, Height: 3, Rows: []string{"...", ".a.", "..."}},
		},
		Entities: []EntityDef{
			{Kind: KindPlayer, Board: "root", X: 0, Y: 0},
			{Kind: KindBox, Board: "root", X: 2, Y: 0, Color: "b", Interior: "in"},
			{Kind: KindBlock, Board: "in", X: 0, Y: 0, Color: "a"},
		},
	}
}

func TestValidateDefinition_Valid(t *testing.T) {
	if err := ValidateDefinition(validTwoBoardDef()); err != nil {
		t.Fatalf("Valid definition rejected: %v", err)
	}
}

func TestValidateDefinition_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Definition)
		wantMsg string
	}{
		{
			"nil name",
			func(d *Definition) { d.Name = "" },
			"name is required",
		},
		{
			"no boards",
			func(d *Definition) { d.Boards = nil },
			"at least one board",
		},
		{
			"duplicate board key",
			func(d *Definition) { d.Boards[1].Key = "root" },
			"duplicate board key",
		},
		{
			"row count mismatch",
			func(d *Definition) { d.Boards[0].Rows = d.Boards[0].Rows[:2] },
			"rows",
		},
		{
			"row width mismatch",
			func(d *Definition) { d.Boards[0].Rows[0] = "..." },
			"cells",
		},
		{
			"bad terrain rune",
			func(d *Definition) { d.Boards[0].Rows[0] = "..?." },
			"unknown terrain rune",
		},
		{
			"oversized board",
			func(d *Definition) { d.Boards[0].Width = MaxBoardSize + 1 },
			"outside",
		},
		{
			"unknown entity board",
			func(d *Definition) { d.Entities[0].Board = "nowhere" },
			"unknown board",
		},
		{
			"entity out of bounds",
			func(d *Definition) { d.Entities[0].X = 99 },
			"outside board",
		},
		{
			"two players",
			func(d *Definition) {
				d.Entities = append(d.Entities, EntityDef{Kind: KindPlayer, Board: "root", X: 1, Y: 0})
			},
			"more than one player",
		},
		{
			"shared cell",
			func(d *Definition) {
				d.Entities = append(d.Entities, EntityDef{Kind: KindBlock, Board: "root", X: 0, Y: 0, Color: "c"})
			},
			"share cell",
		},
		{
			"colorless block",
			func(d *Definition) { d.Entities[2].Color = "" },
			"blocks need a color",
		},
		{
			"box without interior",
			func(d *Definition) { d.Entities[1].Interior = "" },
			"boxes need an interior",
		},
		{
			"root as interior",
			func(d *Definition) { d.Entities[1].Interior = "root" },
			"root board cannot be a box interior",
		},
		{
			"interior claimed twice",
			func(d *Definition) {
				d.Entities = append(d.Entities, EntityDef{Kind: KindBox, Board: "root", X: 3, Y: 2, Color: "c", Interior: "in"})
			},
			"both claim interior",
		},
		{
			"undersized clone set",
			func(d *Definition) { d.Entities[2].CloneSet = 1 },
			"clone set 1 has 1 member",
		},
		{
			"mixed clone set",
			func(d *Definition) {
				d.Entities[2].CloneSet = 1
				d.Entities = append(d.Entities, EntityDef{Kind: KindBlock, Board: "in", X: 2, Y: 2, Color: "z", CloneSet: 1})
			},
			"mixes",
		},
		{
			"player in clone set",
			func(d *Definition) { d.Entities[0].CloneSet = 2 },
			"player cannot join a clone set",
		},
		{
			"unowned board",
			func(d *Definition) { d.Entities = d.Entities[:1] },
			"not the interior of any box",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := validTwoBoardDef()
			tt.mutate(def)
			err := ValidateDefinition(def)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Error %q does not mention %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestValidateDefinition_WallPlacement(t *testing.T) {
	def := &Definition{
		Name:   "walled",
		Boards: []BoardDef{{Key: "root", Width: 3, Height: 1, Rows: []string{".#."}}},
		Entities: []EntityDef{
			{Kind: KindPlayer, Board: "root", X: 1, Y: 0},
		},
	}
	err := ValidateDefinition(def)
	if err == nil || !strings.Contains(err.Error(), "wall") {
		t.Fatalf("Expected wall placement error, got %v", err)
	}
}

func TestNewWorld_ContainmentCycleRejected(t *testing.T) {
	// Board a holds the box for b and board b holds the box for a;
	// neither chain reaches the root.
	def := &Definition{
		Name: "cycle",
		Boards: []BoardDef{
			{Key: "root", Width: 3, Height: 1, Rows: []string{"..."}},
			{Key: "a", Width: 3, Height: 1, Rows: []string{"..."}},
			{Key: "b", Width: 3, Height: 1, Rows: []string{"..."}},
		},
		Entities: []EntityDef{
			{Kind: KindPlayer, Board: "root", X: 0, Y: 0},
			{Kind: KindBox, Board: "a", X: 0, Y: 0, Color: "b", Interior: "b"},
			{Kind: KindBox, Board: "b", X: 0, Y: 0, Color: "a", Interior: "a"},
		},
	}
	_, err := NewWorld(def)
	if err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Fatalf("Expected containment cycle error, got %v", err)
	}
}

func TestNewWorld_InfiniteExitMustTargetAncestor(t *testing.T) {
	def := &Definition{
		Name: "bad target",
		Boards: []BoardDef{
			{Key: "root", Width: 4, Height: 1, Rows: []string{"...."}},
			{Key: "in", Width: 3, Height: 1, Rows: []string{"..."}},
			{Key: "side", Width: 3, Height: 1, Rows: []string{"..."}},
		},
		Entities: []EntityDef{
			{Kind: KindPlayer, Board: "root", X: 0, Y: 0},
			{Kind: KindBox, Board: "root", X: 1, Y: 0, Color: "b", Interior: "in"},
			{Kind: KindBox, Board: "root", X: 2, Y: 0, Color: "c", Interior: "side"},
			{Kind: KindInfiniteExit, Board: "in", X: 0, Y: 0, Color: "i", Target: "side"},
		},
	}
	_, err := NewWorld(def)
	if err == nil || !strings.Contains(err.Error(), "does not contain it") {
		t.Fatalf("Expected ancestry error, got %v", err)
	}

	// Retargeting at a true ancestor fixes it.
	def.Entities[3].Target = "root"
	if _, err := NewWorld(def); err != nil {
		t.Fatalf("Ancestor target rejected: %v", err)
	}
}

func TestDefaultDefinition(t *testing.T) {
	def := DefaultDefinition()
	if err := ValidateDefinition(def); err != nil {
		t.Fatalf("Built-in definition invalid: %v", err)
	}
	w, err := NewWorld(def)
	if err != nil {
		t.Fatalf("NewWorld failed: %v", err)
	}
	if w.Player() == NoEntity {
		t.Error("Built-in puzzle has no player")
	}
	if w.GoalCount() != 2 {
		t.Errorf("Built-in puzzle has %d goals, want 2", w.GoalCount())
	}
}
