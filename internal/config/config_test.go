package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/glint-editor/glint/internal/constants"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "glint.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Editor.TabSizeOrDefault() != defaultTabSize {
		t.Errorf("got tabsize %d want %d", cfg.Editor.TabSizeOrDefault(), defaultTabSize)
	}
	if cfg.Editor.ThemeOrDefault() != constants.DefaultSyntaxTheme {
		t.Errorf("got theme %q want %q", cfg.Editor.ThemeOrDefault(), constants.DefaultSyntaxTheme)
	}
	if !cfg.Editor.ShowLineNumOrDefault() {
		t.Error("expected show_linenum to default to true")
	}
}

func TestLoadParsesEditorAndLSPTables(t *testing.T) {
	path := writeConfig(t, `
[editor]
tabsize = 2
scrolloff = 3
fps = 30
theme = "ayu-dark"
show_linenum = false

[lsp.go]
command = "gopls"
filetypes = ["go"]
root_markers = ["go.mod"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Editor.TabSizeOrDefault() != 2 {
		t.Errorf("got tabsize %d want 2", cfg.Editor.TabSizeOrDefault())
	}
	if cfg.Editor.FPSOrDefault() != 30 {
		t.Errorf("got fps %d want 30", cfg.Editor.FPSOrDefault())
	}
	if cfg.Editor.ShowLineNumOrDefault() {
		t.Error("expected show_linenum=false to be honored")
	}

	servers := cfg.LanguageServers()
	gopls, ok := servers["go"]
	if !ok {
		t.Fatal("expected a go language server entry")
	}
	if gopls.Command != "gopls" || len(gopls.RootMarkers) != 1 || gopls.RootMarkers[0] != "go.mod" {
		t.Errorf("got %+v", gopls)
	}
}

func TestValidateRejectsNegativeTabSize(t *testing.T) {
	cfg := &Config{Editor: EditorConfig{TabSize: -1}}
	if err := cfg.Validate(); err == nil {
		t.Error("expected a negative tabsize to fail validation")
	}
}

func TestValidateRejectsLSPEntryWithoutCommand(t *testing.T) {
	cfg := &Config{LSP: map[string]LSPServerTOML{"go": {}}}
	if err := cfg.Validate(); err == nil {
		t.Error("expected a command-less lsp entry to fail validation")
	}
}

func TestEnvOverrideSetsTheme(t *testing.T) {
	path := writeConfig(t, "[editor]\ntheme = \"vulcan\"\n")
	t.Setenv("GLINT_THEME", "dracula")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Editor.Theme != "dracula" {
		t.Errorf("got theme %q want dracula", cfg.Editor.Theme)
	}
}
