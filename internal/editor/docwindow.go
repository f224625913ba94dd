package editor

import (
	"github.com/glint-editor/glint/internal/document"
	"github.com/glint-editor/glint/internal/keymap"
	"github.com/glint-editor/glint/internal/syntax"
	"github.com/glint-editor/glint/internal/text"
	"github.com/glint-editor/glint/internal/ui/draw"
	"github.com/glint-editor/glint/internal/ui/layout"
)

// DocumentWindow is the layout.Pane wrapping one open Document — spec
// §4.7's DocumentWindow leaf. Grounded on the teacher's
// internal/tui/editor/editor.go Model for the scroll-follows-cursor
// viewport logic (clampScroll), generalized here from a single caret to
// the Document's MultiCursor primary.
type DocumentWindow struct {
	Doc       *document.Document
	ThemeName string // Chroma style name the Registry looks up by

	ScrollOff int
	TabSize   int
	Styles    draw.Styles

	viewStart     text.Position
	width, height int
	showCursor    bool
}

// NewDocumentWindow wraps doc for display with the given scroll margin,
// tab width (typically config.EditorConfig.ScrollOffOrDefault/
// TabSizeOrDefault), and composited styles.
func NewDocumentWindow(doc *document.Document, themeName string, scrollOff, tabSize int, styles draw.Styles) *DocumentWindow {
	return &DocumentWindow{Doc: doc, ThemeName: themeName, ScrollOff: scrollOff, TabSize: tabSize, Styles: styles, showCursor: true}
}

// SetBlinkVisible toggles whether the cursor cell renders this frame —
// driven by the editor shell's redraw ticker, not by this pane itself.
func (w *DocumentWindow) SetBlinkVisible(visible bool) { w.showCursor = visible }

// HandleEvent implements layout.Pane. Keybindings are resolved upstream
// by dispatch.Handler and land on Document via RunAction; this pane's
// only direct-event role is mouse click-to-place-cursor (supplemented
// feature 4), since only the pane knows its own screen bounds.
func (w *DocumentWindow) HandleEvent(ev keymap.Event) bool {
	return false
}

// HandleClick places the primary cursor at the buffer coordinate under
// a mouse click at pane-relative (x, y) — grounded on the teacher's
// editor.Model.screenToPos. Called by the editor shell, which knows the
// pane's absolute screen offset and can translate to pane-relative
// coordinates before calling in.
func (w *DocumentWindow) HandleClick(x, y int) {
	line := w.viewStart.Y + y
	lines := w.Doc.Buf.Lines()
	if line < 0 {
		line = 0
	}
	if line >= len(lines) {
		line = len(lines) - 1
	}
	if line < 0 {
		return
	}
	col := w.viewStart.X + x
	idx, _ := w.Doc.Buf.ColumnToIndex(col, line)
	primary := w.Doc.Cursors.Primary()
	if primary == nil {
		return
	}
	primary.ClearSelection()
	primary.SetIndex(idx, w.Doc.Buf)
	primary.UpdateIntendedColumn()
	w.Doc.Cursors.Changed(w.Doc.Buf)
}

// clampScroll keeps the primary cursor's line within [scrollOff,
// height-scrollOff) of the viewport, matching the teacher's
// clampScroll/clampScrollBounds pair but operating on buffer lines
// directly rather than soft-wrapped visual rows, since this core has no
// line-wrap concept (spec's Non-goals exclude soft wrap).
func (w *DocumentWindow) clampScroll() {
	if w.height <= 0 {
		return
	}
	primary := w.Doc.Cursors.Primary()
	if primary == nil {
		return
	}
	line := primary.Coord.Line

	top := w.viewStart.Y
	margin := w.ScrollOff
	if margin*2 >= w.height {
		margin = (w.height - 1) / 2
	}
	if margin < 0 {
		margin = 0
	}

	if line < top+margin {
		top = line - margin
	}
	if line > top+w.height-1-margin {
		top = line - w.height + 1 + margin
	}

	numLines := w.Doc.Buf.NumLines()
	maxTop := numLines - w.height
	if maxTop < 0 {
		maxTop = 0
	}
	if top > maxTop {
		top = maxTop
	}
	if top < 0 {
		top = 0
	}
	w.viewStart.Y = top

	col := primary.RealColumn
	if w.width > 0 {
		if col < w.viewStart.X {
			w.viewStart.X = col
		}
		if col >= w.viewStart.X+w.width {
			w.viewStart.X = col - w.width + 1
		}
	}
}

// Draw implements layout.Pane, compositing syntax highlight, selection,
// diagnostics, and the primary cursor (internal/ui/draw.DrawBuffer).
func (w *DocumentWindow) Draw(fbv layout.FrameBufferView, pos text.Position, area text.Area) {
	fb, ok := fbv.(*draw.FrameBuffer)
	if !ok {
		return
	}
	w.width, w.height = area.Width, area.Height
	w.clampScroll()

	doc := w.Doc
	var highlights []syntax.Span
	if doc.Syntax != nil {
		highlights = doc.Syntax.Highlight(doc.Buf.Bytes(), doc.LanguageID, w.ThemeName)
	}

	var diagRanges []draw.DiagnosticRange
	for _, d := range doc.Diagnostics() {
		start := doc.Buf.CoordToIndex(d.Start)
		end := doc.Buf.CoordToIndex(d.End)
		diagRanges = append(diagRanges, draw.DiagnosticRange{Start: start, End: end})
	}

	cursors := doc.Cursors.Cursors()
	selection := func(byteIndex int) bool {
		for _, c := range cursors {
			if !c.HasSelection() {
				continue
			}
			sel := c.Selection()
			if byteIndex >= sel.Start && byteIndex < sel.End {
				return true
			}
		}
		return false
	}

	primary := doc.Cursors.Primary()
	cursorIndex := -1
	if primary != nil {
		cursorIndex = primary.Index
	}

	draw.DrawBuffer(fb, pos, area, doc.Buf, w.viewStart, w.TabSize, highlights, diagRanges, selection, cursorIndex, w.showCursor, w.Styles)
}

// CursorScreenPosition returns where the primary cursor currently draws
// relative to pos — the editor shell uses this to tell the Frontend
// where to place the terminal's own cursor glyph (spec §6's Display
// call takes absolute cursorX/cursorY).
func (w *DocumentWindow) CursorScreenPosition(pos text.Position) (x, y int, ok bool) {
	primary := w.Doc.Cursors.Primary()
	if primary == nil {
		return 0, 0, false
	}
	row := primary.Coord.Line - w.viewStart.Y
	col := primary.RealColumn - w.viewStart.X
	if row < 0 || row >= w.height || col < 0 || col >= w.width {
		return 0, 0, false
	}
	return pos.X + col, pos.Y + row, true
}
