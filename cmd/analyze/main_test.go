package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/deepbox/deepbox/game/engine"
)

const analyzeLevelText = `version 1
name Analyze Me
board root 6x3
######
#...a#
######
player 1 1
block 2 1 a
`

func writeTempLevel(t *testing.T, text string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "level.txt")
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatalf("Failed to write level file: %v", err)
	}
	return path
}

func TestGoalCounts(t *testing.T) {
	def := &engine.Definition{
		Name: "Goals",
		Boards: []engine.BoardDef{
			{Key: "root", Width: 5, Height: 3, Rows: []string{
				"#####",
				"#=ab#",
				"#####",
			}},
		},
	}

	playerGoals, blockGoals := goalCounts(def)

	if playerGoals != 1 {
		t.Errorf("Expected 1 player goal, got %d", playerGoals)
	}

	if len(blockGoals) != 2 {
		t.Errorf("Expected 2 block goal colors, got %d", len(blockGoals))
	}

	if blockGoals["a"] != 1 || blockGoals["b"] != 1 {
		t.Errorf("Expected one goal per color, got %v", blockGoals)
	}
}

func TestSortedColors(t *testing.T) {
	m := map[engine.Color]int{"c": 1, "a": 2, "b": 3}

	colors := sortedColors(m)

	want := []engine.Color{"a", "b", "c"}
	for i, c := range want {
		if colors[i] != c {
			t.Errorf("Expected colors[%d] = %s, got %s", i, c, colors[i])
		}
	}
}

func TestAnalyzeLevel_ValidFile(t *testing.T) {
	path := writeTempLevel(t, analyzeLevelText)

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("analyzeLevel panicked: %v", r)
		}
	}()

	analyzeLevel(path, false, 0, time.Second)
}

func TestAnalyzeLevel_WithSolver(t *testing.T) {
	path := writeTempLevel(t, analyzeLevelText)

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("analyzeLevel panicked with solver enabled: %v", r)
		}
	}()

	analyzeLevel(path, true, 1000, time.Second)
}

func TestAnalyzeLevel_InvalidFile(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("analyzeLevel panicked with invalid file: %v", r)
		}
	}()

	analyzeLevel("/non/existent/level.txt", false, 0, time.Second)
}

func TestAnalyzeLevel_BadSyntax(t *testing.T) {
	path := writeTempLevel(t, "version 1\nname Broken\nboard root 3x9000\n")

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("analyzeLevel panicked with bad syntax: %v", r)
		}
	}()

	analyzeLevel(path, false, 0, time.Second)
}

func TestAnalyzeLevel_ColorImbalance(t *testing.T) {
	text := `version 1
name Imbalanced
board root 6x3
######
#.ab.#
######
player 1 1
block 4 1 a
`
	path := writeTempLevel(t, text)

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("analyzeLevel panicked with color imbalance: %v", r)
		}
	}()

	analyzeLevel(path, false, 0, time.Second)
}
