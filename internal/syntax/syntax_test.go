package syntax

import (
	"testing"

	"github.com/glint-editor/glint/internal/text"
)

type fakeHighlighter struct {
	claims string
	spans  []Span
}

func (f fakeHighlighter) Highlight(source []byte, language, theme string) []Span {
	if language != f.claims {
		return nil
	}
	return f.spans
}

func TestRegistryFallsThroughToNextBackend(t *testing.T) {
	goSpans := []Span{{Start: 0, End: 2, Style: text.Style{FG: text.RGB(1, 2, 3)}}}
	r := NewRegistry(
		fakeHighlighter{claims: "go", spans: goSpans},
		fakeHighlighter{claims: "python", spans: []Span{{Start: 0, End: 1}}},
	)

	if got := r.Highlight(nil, "go", "theme"); len(got) != 1 || got[0] != goSpans[0] {
		t.Errorf("go backend not selected: %v", got)
	}
	if got := r.Highlight(nil, "python", "theme"); len(got) != 1 {
		t.Errorf("fallback backend not used: %v", got)
	}
	if got := r.Highlight(nil, "unknown-to-all", "theme"); got != nil {
		t.Errorf("expected nil when no backend claims language, got %v", got)
	}
}

func TestDefaultThemeHasCommonGoKinds(t *testing.T) {
	theme := DefaultTheme()
	for _, kind := range []string{"comment", "interpreted_string_literal", "func"} {
		if _, ok := theme.StyleForNodeType(kind); !ok {
			t.Errorf("DefaultTheme missing style for %q", kind)
		}
	}
	if _, ok := theme.StyleForNodeType("not_a_real_kind"); ok {
		t.Error("unexpected style for unregistered kind")
	}
}
