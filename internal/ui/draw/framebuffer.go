// Package draw implements the back/front cell-buffer diff renderer and
// drawing primitives of spec §4.8/§4.9. Layout is grounded on the
// teacher's internal/tui/editor/editor.go View(), which builds a
// per-row ANSI string using ansi.Cut/ansi.Truncate for safe clipping;
// this package generalizes that into an explicit Cell grid so overlays
// (diagnostics, cursor, popups) can be composited before a single
// present pass, rather than baked into one string per row.
package draw

import "github.com/glint-editor/glint/internal/text"

// FrameBuffer is the 2-D cell grid the frontend hands the core to draw
// into, and which the core diffs against a front buffer on present.
type FrameBuffer struct {
	cells  []text.Cell
	width  int
	height int
}

// New allocates a width x height buffer filled with blank cells.
func New(width, height int) *FrameBuffer {
	fb := &FrameBuffer{width: width, height: height, cells: make([]text.Cell, width*height)}
	fb.Clear(text.Style{})
	return fb
}

// Width implements layout.FrameBufferView.
func (fb *FrameBuffer) Width() int { return fb.width }

// Height implements layout.FrameBufferView.
func (fb *FrameBuffer) Height() int { return fb.height }

// Resize reallocates the buffer, discarding its contents. CopyFrom calls
// it when the sizes differ; the tty frontend does not call it, as it has
// no resize handling.
func (fb *FrameBuffer) Resize(width, height int) {
	fb.width, fb.height = width, height
	fb.cells = make([]text.Cell, width*height)
	fb.Clear(text.Style{})
}

// Clear fills every cell with a space in the given style.
func (fb *FrameBuffer) Clear(style text.Style) {
	fg, bg := style.Resolve(text.RGB24{}, text.RGB24{})
	for i := range fb.cells {
		fb.cells[i] = text.Cell{Ch: ' ', FG: fg, BG: bg, Attrib: style.Attrib}
	}
}

func (fb *FrameBuffer) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < fb.width && y < fb.height
}

// Set writes one cell, clipping silently to the buffer's bounds (spec
// invariant 10: no primitive ever writes out of range).
func (fb *FrameBuffer) Set(x, y int, cell text.Cell) {
	if !fb.inBounds(x, y) {
		return
	}
	fb.cells[y*fb.width+x] = cell
}

// At returns the cell at (x,y); out-of-range reads return the zero Cell.
func (fb *FrameBuffer) At(x, y int) text.Cell {
	if !fb.inBounds(x, y) {
		return text.Cell{}
	}
	return fb.cells[y*fb.width+x]
}

// CopyFrom copies every cell from src, used to snapshot the front buffer
// after a present pass.
func (fb *FrameBuffer) CopyFrom(src *FrameBuffer) {
	if fb.width != src.width || fb.height != src.height {
		fb.Resize(src.width, src.height)
	}
	copy(fb.cells, src.cells)
}
