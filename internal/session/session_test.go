package session

import (
	"path/filepath"
	"testing"

	"github.com/glint-editor/glint/internal/text"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "session.db")
	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCheckpointRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if _, ok, err := s.LoadCheckpoint("file:///a.go"); err != nil || ok {
		t.Fatalf("expected miss on empty store, got ok=%v err=%v", ok, err)
	}

	if err := s.SaveCheckpoint("file:///a.go", []byte("package a\n"), 3); err != nil {
		t.Fatalf("SaveCheckpoint: %v", err)
	}

	cp, ok, err := s.LoadCheckpoint("file:///a.go")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(cp.Content) != "package a\n" || cp.Version != 3 {
		t.Errorf("got %+v", cp)
	}
}

func TestSaveCheckpointOverwritesPriorVersion(t *testing.T) {
	s := openTestStore(t)

	s.SaveCheckpoint("file:///a.go", []byte("v1"), 1)
	s.SaveCheckpoint("file:///a.go", []byte("v2"), 2)

	cp, ok, err := s.LoadCheckpoint("file:///a.go")
	if err != nil || !ok {
		t.Fatalf("LoadCheckpoint: ok=%v err=%v", ok, err)
	}
	if string(cp.Content) != "v2" || cp.Version != 2 {
		t.Errorf("got %+v, want v2/2", cp)
	}
}

func TestDeleteCheckpointRemovesIt(t *testing.T) {
	s := openTestStore(t)
	s.SaveCheckpoint("file:///a.go", []byte("data"), 1)

	if err := s.DeleteCheckpoint("file:///a.go"); err != nil {
		t.Fatalf("DeleteCheckpoint: %v", err)
	}
	if _, ok, _ := s.LoadCheckpoint("file:///a.go"); ok {
		t.Error("expected miss after delete")
	}
}

func TestBookmarksListedInInsertOrder(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.AddBookmark("file:///a.go", text.Coord{Line: 0, Character: 0}, "start"); err != nil {
		t.Fatalf("AddBookmark: %v", err)
	}
	if _, err := s.AddBookmark("file:///a.go", text.Coord{Line: 10, Character: 2}, "middle"); err != nil {
		t.Fatalf("AddBookmark: %v", err)
	}

	bms, err := s.ListBookmarks("file:///a.go")
	if err != nil {
		t.Fatalf("ListBookmarks: %v", err)
	}
	if len(bms) != 2 {
		t.Fatalf("got %d bookmarks, want 2", len(bms))
	}
	if bms[0].Label != "start" || bms[1].Label != "middle" {
		t.Errorf("got %+v", bms)
	}
	if bms[1].Pos.Line != 10 || bms[1].Pos.Character != 2 {
		t.Errorf("got pos %+v, want line 10 col 2", bms[1].Pos)
	}
}

func TestRemoveBookmarkDropsIt(t *testing.T) {
	s := openTestStore(t)
	id, _ := s.AddBookmark("file:///a.go", text.Coord{}, "x")

	if err := s.RemoveBookmark(id); err != nil {
		t.Fatalf("RemoveBookmark: %v", err)
	}
	bms, _ := s.ListBookmarks("file:///a.go")
	if len(bms) != 0 {
		t.Errorf("expected no bookmarks, got %d", len(bms))
	}
}

func TestNilStoreMethodsAreNoOps(t *testing.T) {
	var s *Store
	if err := s.SaveCheckpoint("u", nil, 0); err != nil {
		t.Errorf("SaveCheckpoint on nil store: %v", err)
	}
	if _, ok, err := s.LoadCheckpoint("u"); ok || err != nil {
		t.Errorf("LoadCheckpoint on nil store: ok=%v err=%v", ok, err)
	}
	if _, err := s.AddBookmark("u", text.Coord{}, "l"); err != nil {
		t.Errorf("AddBookmark on nil store: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close on nil store: %v", err)
	}
}
