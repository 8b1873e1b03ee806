package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/deepbox/deepbox/game/engine"
	"github.com/deepbox/deepbox/game/service"
)

func newTestPersistence(t *testing.T) *FilePersistence {
	t.Helper()
	fp, err := NewFilePersistence(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilePersistence: %v", err)
	}
	return fp
}

func newTestSession(t *testing.T, id string) *service.Session {
	t.Helper()
	eng, err := engine.NewEngine(testLevel())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return &service.Session{
		ID:             id,
		LevelID:        "hallway",
		Engine:         eng,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}
}

func TestFilePersistence_SaveAndLoad(t *testing.T) {
	fp := newTestPersistence(t)
	sess := newTestSession(t, "roundtrip")

	for _, dir := range []engine.Direction{engine.DirRight, engine.DirRight} {
		if _, err := sess.Engine.Move(dir); err != nil {
			t.Fatalf("Move: %v", err)
		}
	}

	if err := fp.Save(sess); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := fp.Load("roundtrip")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.ID != sess.ID || loaded.LevelID != sess.LevelID {
		t.Errorf("identity mismatch: %q/%q", loaded.ID, loaded.LevelID)
	}
	if !loaded.CreatedAt.Equal(sess.CreatedAt) {
		t.Errorf("CreatedAt %v != %v", loaded.CreatedAt, sess.CreatedAt)
	}
	if loaded.Engine.MoveCount() != 2 {
		t.Errorf("replayed MoveCount = %d, want 2", loaded.Engine.MoveCount())
	}
	if loaded.Engine.Key() != sess.Engine.Key() {
		t.Errorf("replayed state differs:\n%s\nvs\n%s", loaded.Engine.Key(), sess.Engine.Key())
	}
}

func TestFilePersistence_ReplayPreservesUndoDepth(t *testing.T) {
	fp := newTestPersistence(t)
	sess := newTestSession(t, "undodepth")

	for _, dir := range []engine.Direction{engine.DirRight, engine.DirRight} {
		if _, err := sess.Engine.Move(dir); err != nil {
			t.Fatalf("Move: %v", err)
		}
	}
	if _, err := sess.Engine.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}

	if err := fp.Save(sess); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := fp.Load("undodepth")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Only the surviving move is persisted; undoing it must work.
	if loaded.Engine.MoveCount() != 1 {
		t.Fatalf("MoveCount = %d, want 1", loaded.Engine.MoveCount())
	}
	outcome, err := loaded.Engine.Undo()
	if err != nil || outcome == engine.OutcomeIllegal {
		t.Errorf("Undo after restore: outcome=%v err=%v", outcome, err)
	}
}

func TestFilePersistence_LoadMissing(t *testing.T) {
	fp := newTestPersistence(t)

	_, err := fp.Load("nothing")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestFilePersistence_LoadCorruptFile(t *testing.T) {
	fp := newTestPersistence(t)

	path := filepath.Join(fp.sessionsDir, "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := fp.Load("bad"); err == nil {
		t.Error("Expected error for corrupt session file")
	}
}

func TestFilePersistence_DeleteAndExists(t *testing.T) {
	fp := newTestPersistence(t)
	sess := newTestSession(t, "deleteme")

	if err := fp.Save(sess); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !fp.Exists("deleteme") {
		t.Error("Expected session file to exist")
	}

	if err := fp.Delete("deleteme"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if fp.Exists("deleteme") {
		t.Error("Expected session file to be removed")
	}
	if err := fp.Delete("deleteme"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on double delete, got %v", err)
	}
}

func TestFilePersistence_ListAll(t *testing.T) {
	fp := newTestPersistence(t)

	for _, id := range []string{"one", "two"} {
		if err := fp.Save(newTestSession(t, id)); err != nil {
			t.Fatalf("Save %s: %v", id, err)
		}
	}

	ids, err := fp.ListAll()
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("Expected 2 persisted sessions, got %v", ids)
	}
}
