package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const playLevelText = `version 1
name Hallway
board root 6x3
######
#...a#
######
player 1 1
block 2 1 a
`

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitLines("a\nb\n"), "trailing newline adds no empty line")
	assert.Equal(t, []string{"a"}, splitLines("a"), "a single line splits to itself")
	assert.Nil(t, splitLines(""), "empty input has no lines")
}

func TestLoadDefinitionFallsBackToBuiltin(t *testing.T) {
	def, err := loadDefinition(filepath.Join(t.TempDir(), "missing"), "")
	require.NoError(t, err, "a missing directory falls back to the built-in level")

	assert.Equal(t, "First Push", def.Name)
}

func TestLoadDefinitionMissingDirWithName(t *testing.T) {
	_, err := loadDefinition(filepath.Join(t.TempDir(), "missing"), "hallway")
	assert.Error(t, err, "an explicit level needs the directory to exist")
}

func TestLoadDefinitionFromDirectory(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "hallway.txt"), []byte(playLevelText), 0644)
	require.NoError(t, err, "writing the level file should succeed")

	def, err := loadDefinition(dir, "hallway")
	require.NoError(t, err, "the level should load by name")
	assert.Equal(t, "Hallway", def.Name)

	def, err = loadDefinition(dir, "")
	require.NoError(t, err, "the default should resolve")
	assert.Equal(t, "Hallway", def.Name, "the only level is the default")
}
