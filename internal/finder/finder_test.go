package finder

import (
	"context"
	"testing"
)

func TestParseGrepLineSplitsPathLineCol(t *testing.T) {
	got, err := ParseGrepLine("main.go:12:5:func main() {")
	if err != nil {
		t.Fatalf("ParseGrepLine: %v", err)
	}
	want := SelectionTarget{Path: "main.go", Line: 12, Col: 5}
	if got != want {
		t.Errorf("got %+v want %+v", got, want)
	}
}

func TestParseGrepLineRejectsMalformed(t *testing.T) {
	if _, err := ParseGrepLine("not-a-grep-line"); err == nil {
		t.Error("expected an error for a malformed grep line")
	}
}

func TestParseFilePathIsBarePath(t *testing.T) {
	got, err := ParseFilePath("internal/finder/finder.go")
	if err != nil {
		t.Fatalf("ParseFilePath: %v", err)
	}
	if got.Path != "internal/finder/finder.go" || got.Line != 0 {
		t.Errorf("got %+v", got)
	}
}

func TestEnumerateThenFilterWithoutExternalCommand(t *testing.T) {
	f := New(Config{
		EnumerateArgv: []string{"printf", "a.go\nb.txt\nabc.go\n"},
	})
	ctx := context.Background()
	if err := f.Enumerate(ctx); err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if f.Total() != 3 {
		t.Fatalf("got total %d want 3", f.Total())
	}

	if err := f.Filter(ctx, ".go"); err != nil {
		t.Fatalf("Filter: %v", err)
	}
	results := f.Results()
	if len(results) != 2 {
		t.Errorf("got %v, want 2 .go matches", results)
	}
}

func TestSelectItemUsesConfiguredParser(t *testing.T) {
	f := New(Config{Parse: ParseGrepLine})
	target, err := f.SelectItem("a.go:1:1:x")
	if err != nil {
		t.Fatalf("SelectItem: %v", err)
	}
	if target.Path != "a.go" {
		t.Errorf("got %+v", target)
	}
}
