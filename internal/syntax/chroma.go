// Chroma fallback backend, grounded on the teacher's cachedHighlight in
// internal/tui/editor/editor.go: a lexer looked up by language name, a
// style looked up by theme name, tokenized into runs. The teacher
// renders straight to an ANSI string; here we keep Chroma's tokenizer
// but emit Span{Start,End,Style} instead, since our draw pipeline
// layers highlight spans under diagnostics/cursor overlays itself
// rather than baking everything into one ANSI string up front.
package syntax

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	chromastyles "github.com/alecthomas/chroma/v2/styles"

	"github.com/glint-editor/glint/internal/text"
)

// ChromaHighlighter is the fallback backend for any language Chroma has
// a lexer for but tree-sitter does not have a grammar for.
type ChromaHighlighter struct{}

// NewChromaHighlighter builds a Chroma-backed fallback.
func NewChromaHighlighter() *ChromaHighlighter { return &ChromaHighlighter{} }

// Highlight implements Highlighter.
func (h *ChromaHighlighter) Highlight(source []byte, language, themeName string) []Span {
	lexer := lexers.Get(language)
	if lexer == nil {
		return nil
	}
	lexer = chroma.Coalesce(lexer)

	style := chromastyles.Get(themeName)
	if style == nil {
		style = chromastyles.Fallback
	}

	iter, err := lexer.Tokenise(nil, string(source))
	if err != nil {
		return nil
	}

	var spans []Span
	offset := 0
	for _, tok := range iter.Tokens() {
		n := len(tok.Value)
		if n == 0 {
			continue
		}
		entry := style.Get(tok.Type)
		spans = append(spans, Span{
			Start: offset,
			End:   offset + n,
			Style: chromaEntryToStyle(entry),
		})
		offset += n
	}
	return spans
}

func chromaEntryToStyle(e chroma.StyleEntry) text.Style {
	var s text.Style
	if e.Colour.IsSet() {
		s.FG = text.RGB(e.Colour.Red(), e.Colour.Green(), e.Colour.Blue())
	}
	if e.Background.IsSet() {
		s.BG = text.RGB(e.Background.Red(), e.Background.Green(), e.Background.Blue())
	}
	if e.Bold == chroma.Yes {
		s.Attrib |= text.AttribBold
	}
	if e.Underline == chroma.Yes {
		s.Attrib |= text.AttribUnderline
	}
	if e.Italic == chroma.Yes {
		s.Attrib |= text.AttribItalic
	}
	return s
}
