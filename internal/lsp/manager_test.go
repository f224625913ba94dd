package lsp

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindRootWalksUpToMarker(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(sub, "main.go")
	if err := os.WriteFile(file, []byte("package main\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := findRoot(file, []string{"go.mod"})
	if got != root {
		t.Errorf("got %q want %q", got, root)
	}
}

func TestFindRootNoMarkerReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	got := findRoot(filepath.Join(dir, "x.go"), []string{"nonexistent.marker"})
	if got != "" {
		t.Errorf("expected empty root, got %q", got)
	}
}

func TestLookPathFindsOnPATH(t *testing.T) {
	p, err := lookPath("ls")
	if err != nil {
		t.Fatalf("lookPath(ls): %v", err)
	}
	if p == "" {
		t.Error("expected a resolved path")
	}
}

func TestLookPathUnknownCommandErrors(t *testing.T) {
	if _, err := lookPath("definitely-not-a-real-binary-xyz"); err == nil {
		t.Error("expected an error for an unresolvable command")
	}
}

func TestEnsureClientRejectsSkippedInterpreter(t *testing.T) {
	m := NewManager(map[string]ServerConfig{
		"python": {Command: "python3", FileTypes: []string{"python"}},
	})
	if _, err := m.ensureClient(t.Context(), "python", ""); err == nil {
		t.Error("expected python3 to be refused as an auto-start command")
	}
}
