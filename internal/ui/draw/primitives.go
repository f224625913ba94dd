package draw

import "github.com/glint-editor/glint/internal/text"

// Icons names the codepoints used for box-drawing and truncation
// markers, looked up the way spec §4.8 calls for ("only the shape of
// style lookup is specified") — callers supply a concrete Icons value
// from the active theme.
type Icons struct {
	HorizontalLine rune
	VerticalLine   rune
	TopLeft        rune
	TopRight       rune
	BottomLeft     rune
	BottomRight    rune
	TrimIndicator  rune
}

// DefaultIcons is a plain ASCII fallback.
var DefaultIcons = Icons{
	HorizontalLine: '-',
	VerticalLine:   '|',
	TopLeft:        '+',
	TopRight:       '+',
	BottomLeft:     '+',
	BottomRight:    '+',
	TrimIndicator:  '~',
}

func styleToFGBG(s text.Style) (fg, bg text.RGB24) { return s.Resolve(text.RGB24{}, text.RGB24{}) }

// DrawRectangleFill fills the rectangle with spaces in the given style.
func DrawRectangleFill(fb *FrameBuffer, pos text.Position, area text.Area, style text.Style) {
	fg, bg := styleToFGBG(style)
	for y := pos.Y; y < pos.Y+area.Height; y++ {
		for x := pos.X; x < pos.X+area.Width; x++ {
			fb.Set(x, y, text.Cell{Ch: ' ', FG: fg, BG: bg, Attrib: style.Attrib})
		}
	}
}

// DrawHorizontalLine draws a single run of icons.HorizontalLine.
func DrawHorizontalLine(fb *FrameBuffer, pos text.Position, width int, style text.Style, icons Icons) {
	fg, bg := styleToFGBG(style)
	for x := pos.X; x < pos.X+width; x++ {
		fb.Set(x, pos.Y, text.Cell{Ch: icons.HorizontalLine, FG: fg, BG: bg, Attrib: style.Attrib})
	}
}

// DrawVerticalLine draws a single run of icons.VerticalLine.
func DrawVerticalLine(fb *FrameBuffer, pos text.Position, height int, style text.Style, icons Icons) {
	fg, bg := styleToFGBG(style)
	for y := pos.Y; y < pos.Y+height; y++ {
		fb.Set(pos.X, y, text.Cell{Ch: icons.VerticalLine, FG: fg, BG: bg, Attrib: style.Attrib})
	}
}

// DrawRectangleLine draws a bordered rectangle: corners from icons, and
// horizontal/vertical runs between them; if fill is true, the interior
// is filled in style first.
func DrawRectangleLine(fb *FrameBuffer, pos text.Position, area text.Area, style text.Style, icons Icons, fill bool) {
	if fill {
		DrawRectangleFill(fb, pos, area, style)
	}
	if area.Width == 0 || area.Height == 0 {
		return
	}
	fg, bg := styleToFGBG(style)
	set := func(x, y int, ch rune) { fb.Set(x, y, text.Cell{Ch: ch, FG: fg, BG: bg, Attrib: style.Attrib}) }

	DrawHorizontalLine(fb, text.Position{X: pos.X + 1, Y: pos.Y}, area.Width-2, style, icons)
	DrawHorizontalLine(fb, text.Position{X: pos.X + 1, Y: pos.Y + area.Height - 1}, area.Width-2, style, icons)
	DrawVerticalLine(fb, text.Position{X: pos.X, Y: pos.Y + 1}, area.Height-2, style, icons)
	DrawVerticalLine(fb, text.Position{X: pos.X + area.Width - 1, Y: pos.Y + 1}, area.Height-2, style, icons)

	set(pos.X, pos.Y, icons.TopLeft)
	set(pos.X+area.Width-1, pos.Y, icons.TopRight)
	set(pos.X, pos.Y+area.Height-1, icons.BottomLeft)
	set(pos.X+area.Width-1, pos.Y+area.Height-1, icons.BottomRight)
}

// DrawIcon writes a single cell.
func DrawIcon(fb *FrameBuffer, ch rune, pos text.Position, style text.Style) {
	fg, bg := styleToFGBG(style)
	fb.Set(pos.X, pos.Y, text.Cell{Ch: ch, FG: fg, BG: bg, Attrib: style.Attrib})
}

// DrawTextLine lays out one line of text into width cells starting at
// pos, per spec §4.8:
//   - tabs and newlines render as a single space
//   - if the line is longer than width, only width-1 cells are written,
//     followed by icons.TrimIndicator — unless tail is true, in which
//     case the *tail* of the string is shown instead (so the cursor end
//     stays visible while scrolled)
//   - if fillArea, remaining cells are padded with spaces in style
func DrawTextLine(fb *FrameBuffer, s string, pos text.Position, width int, style text.Style, icons Icons, fillArea bool, tail bool) {
	runes := []rune(s)
	for i, r := range runes {
		if r == '\t' || r == '\n' {
			runes[i] = ' '
		}
	}

	fg, bg := styleToFGBG(style)
	n := len(runes)

	if n <= width {
		x := pos.X
		for _, r := range runes {
			fb.Set(x, pos.Y, text.Cell{Ch: r, FG: fg, BG: bg, Attrib: style.Attrib})
			x++
		}
		if fillArea {
			for ; x < pos.X+width; x++ {
				fb.Set(x, pos.Y, text.Cell{Ch: ' ', FG: fg, BG: bg, Attrib: style.Attrib})
			}
		}
		return
	}

	if width <= 0 {
		return
	}

	if tail {
		start := n - width
		x := pos.X
		for _, r := range runes[start:] {
			fb.Set(x, pos.Y, text.Cell{Ch: r, FG: fg, BG: bg, Attrib: style.Attrib})
			x++
		}
		return
	}

	x := pos.X
	visible := width - 1
	if visible < 0 {
		visible = 0
	}
	for _, r := range runes[:visible] {
		fb.Set(x, pos.Y, text.Cell{Ch: r, FG: fg, BG: bg, Attrib: style.Attrib})
		x++
	}
	fb.Set(x, pos.Y, text.Cell{Ch: icons.TrimIndicator, FG: fg, BG: bg, Attrib: style.Attrib})
}
