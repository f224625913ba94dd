// Package syntax defines the opaque per-byte-style contract Document
// consumes (spec §4: "given buffer + language, produce per-byte
// styles") and two concrete backends: a tree-sitter-based highlighter
// for languages with a registered grammar, and a Chroma-based fallback
// for everything else — mirroring the dual-path design of the teacher's
// cachedHighlight in internal/tui/editor/editor.go, which falls back to
// plain text when Chroma has no lexer for the requested language.
package syntax

import "github.com/glint-editor/glint/internal/text"

// Span is one contiguous run of bytes sharing a style, as produced by a
// Highlighter pass.
type Span struct {
	Start int
	End   int
	Style text.Style
}

// Highlighter is the opaque adapter Document depends on. Non-goals
// exclude any incremental-reparse contract: every call is a full
// reparse of the given source, which is all the backends below do.
type Highlighter interface {
	// Highlight returns the byte-ordered, non-overlapping style spans
	// for source under the given language id and theme name. An
	// unrecognized language or theme returns a nil slice, not an error:
	// Document falls back to unstyled text rather than failing to draw.
	Highlight(source []byte, language, theme string) []Span
}

// Registry dispatches Highlight calls to whichever backend claims a
// language, falling back in registration order. This is the "opaque
// interface" of spec component 5: Document only ever sees a
// Highlighter, never a concrete tree-sitter or Chroma type.
type Registry struct {
	backends []Highlighter
}

// NewRegistry builds a registry trying each backend in order until one
// returns a non-nil result.
func NewRegistry(backends ...Highlighter) *Registry {
	return &Registry{backends: backends}
}

// Highlight implements Highlighter by trying each backend in order.
func (r *Registry) Highlight(source []byte, language, theme string) []Span {
	for _, b := range r.backends {
		if spans := b.Highlight(source, language, theme); spans != nil {
			return spans
		}
	}
	return nil
}
