package draw

import (
	"github.com/glint-editor/glint/internal/syntax"
	"github.com/glint-editor/glint/internal/text"
)

// Styles names the style roles DrawBuffer composites, matching the
// theme lookup shape spec §9 calls for ("only the shape of style lookup
// is specified").
type Styles struct {
	Text                text.Style
	Selection           text.Style
	Cursor              text.Style
	DiagnosticUnderline text.Style
}

// DiagnosticRange is a byte range a diagnostic underline should be drawn
// under.
type DiagnosticRange struct {
	Start int
	End   int
}

// BufferView is the minimal content a DocumentWindow needs to draw: raw
// bytes plus the cached line index. buffer.Buffer satisfies this without
// draw needing to import the buffer package.
type BufferView interface {
	Bytes() []byte
	Lines() []text.Slice
	IndexToColumn(i int) int
}

func styleAt(i int, spans []syntax.Span, base text.Style) text.Style {
	// spans are byte-ordered and non-overlapping; linear scan is fine at
	// one-line granularity (a handful of spans per visible row).
	for _, sp := range spans {
		if i >= sp.Start && i < sp.End {
			return base.Apply(sp.Style)
		}
	}
	return base
}

func inAnyDiagnostic(i int, diags []DiagnosticRange) bool {
	for _, d := range diags {
		if i >= d.Start && i < d.End {
			return true
		}
	}
	return false
}

// DrawBuffer renders the buffer content visible at viewStart into area,
// compositing in the order spec §4.8 specifies: syntax highlight over
// plain text, a diagnostic underline over that, and the cursor style
// over everything else — but only on the primary cursor's byte, and
// only when showCursor is true (the blink-visible half of the cycle).
//
// Horizontal scroll is handled at whole-column granularity: when
// viewStart.X falls inside a tab's visual width, the leading cells are
// padded with spaces in the text (or selection) style to fill the half
// tab, matching the teacher's editor.go tab/scroll handling.
func DrawBuffer(
	fb *FrameBuffer,
	pos text.Position,
	area text.Area,
	buf BufferView,
	viewStart text.Position,
	tabSize int,
	highlights []syntax.Span,
	diagnostics []DiagnosticRange,
	selection func(byteIndex int) bool,
	cursorIndex int,
	showCursor bool,
	styles Styles,
) {
	lines := buf.Lines()
	data := buf.Bytes()

	for row := 0; row < area.Height; row++ {
		lineNo := viewStart.Y + row
		if lineNo >= len(lines) {
			break
		}
		line := lines[lineNo]

		col := 0
		x := pos.X
		byteIdx := line.Start

		// Skip to the first byte at or after viewStart.X, expanding tabs
		// to compute visual column as we go.
		for byteIdx < line.End && col < viewStart.X {
			if data[byteIdx] == '\t' {
				col += tabSize - (col % tabSize)
			} else {
				col++
			}
			byteIdx++
		}
		// If we've landed inside a tab's visual width, pad the remainder
		// with spaces before drawing real content.
		for col > viewStart.X && x < pos.X+area.Width {
			inSel := selection != nil && byteIdx > line.Start && selection(byteIdx-1)
			st := styles.Text
			if inSel {
				st = styles.Selection
			}
			fg, bg := styleToFGBG(st)
			fb.Set(x, pos.Y+row, text.Cell{Ch: ' ', FG: fg, BG: bg, Attrib: st.Attrib})
			x++
			col--
		}

		for byteIdx < line.End && x < pos.X+area.Width {
			ch := rune(data[byteIdx])
			width := 1
			if ch == '\t' {
				width = tabSize - ((viewStart.X + (x - pos.X)) % tabSize)
				ch = ' '
			}

			st := styleAt(byteIdx, highlights, styles.Text)
			if selection != nil && selection(byteIdx) {
				st = styles.Text.Apply(styles.Selection)
			}
			if inAnyDiagnostic(byteIdx, diagnostics) {
				st = st.Apply(styles.DiagnosticUnderline)
			}
			if showCursor && byteIdx == cursorIndex {
				st = st.Apply(styles.Cursor)
			}

			fg, bg := styleToFGBG(st)
			for w := 0; w < width && x < pos.X+area.Width; w++ {
				fb.Set(x, pos.Y+row, text.Cell{Ch: ch, FG: fg, BG: bg, Attrib: st.Attrib})
				x++
				ch = ' '
			}
			byteIdx++
		}

		// Cursor sitting exactly at end-of-line (one past the last byte).
		if showCursor && cursorIndex == line.End && x < pos.X+area.Width {
			st := styles.Text.Apply(styles.Cursor)
			fg, bg := styleToFGBG(st)
			fb.Set(x, pos.Y+row, text.Cell{Ch: ' ', FG: fg, BG: bg, Attrib: st.Attrib})
		}
	}
}
