package draw

import (
	"fmt"
	"io"

	"github.com/glint-editor/glint/internal/text"
)

// ColorMode selects how RGB24 values are rendered to the terminal (spec
// §6, "Frontend cell format"): truecolor when the terminal supports it,
// otherwise snapped to a fixed palette.
type ColorMode int

const (
	ColorTruecolor ColorMode = iota
	Color256
	Color216
	ColorGrayscale
	ColorNormal
)

// sgrState is the style-emission state machine spec §4.9 describes:
// a new SGR sequence is only emitted when fg or bg actually changes.
type sgrState struct {
	mode    ColorMode
	haveFG  bool
	haveBG  bool
	lastFG  text.RGB24
	lastBG  text.RGB24
	started bool
}

func (s *sgrState) emit(w io.Writer, cell text.Cell) {
	changed := !s.started || !s.haveFG || s.lastFG != cell.FG || !s.haveBG || s.lastBG != cell.BG
	if !changed {
		return
	}
	fmt.Fprint(w, "\x1b[0m")
	writeColor(w, s.mode, cell.FG, true)
	writeColor(w, s.mode, cell.BG, false)
	if cell.Attrib&text.AttribBold != 0 {
		fmt.Fprint(w, "\x1b[1m")
	}
	if cell.Attrib&text.AttribUnderline != 0 {
		fmt.Fprint(w, "\x1b[4m")
	}
	if cell.Attrib&text.AttribItalic != 0 {
		fmt.Fprint(w, "\x1b[3m")
	}
	if cell.Attrib&text.AttribReverse != 0 {
		fmt.Fprint(w, "\x1b[7m")
	}
	s.lastFG, s.lastBG, s.haveFG, s.haveBG, s.started = cell.FG, cell.BG, true, true, true
}

func writeColor(w io.Writer, mode ColorMode, c text.RGB24, fg bool) {
	base := 38
	if !fg {
		base = 48
	}
	switch mode {
	case ColorTruecolor:
		fmt.Fprintf(w, "\x1b[%d;2;%d;%d;%dm", base, c.R, c.G, c.B)
	case Color256, Color216:
		fmt.Fprintf(w, "\x1b[%d;5;%dm", base, nearest256(c))
	case ColorGrayscale:
		fmt.Fprintf(w, "\x1b[%d;5;%dm", base, nearestGray(c))
	default:
		fmt.Fprintf(w, "\x1b[%d;5;%dm", base, nearest256(c))
	}
}

// nearest256 snaps an RGB24 value to the xterm 6x6x6 color cube (codes
// 16-231) via closest-channel rounding.
func nearest256(c text.RGB24) int {
	quantize := func(v uint8) int {
		steps := [...]int{0, 95, 135, 175, 215, 255}
		best, bestDist := 0, 1<<30
		for i, s := range steps {
			d := int(v) - s
			if d < 0 {
				d = -d
			}
			if d < bestDist {
				bestDist, best = d, i
			}
		}
		return best
	}
	r, g, b := quantize(c.R), quantize(c.G), quantize(c.B)
	return 16 + 36*r + 6*g + b
}

// nearestGray snaps to the 24-step xterm grayscale ramp (codes 232-255).
func nearestGray(c text.RGB24) int {
	avg := (int(c.R) + int(c.G) + int(c.B)) / 3
	step := (avg - 8) / 10
	if step < 0 {
		step = 0
	}
	if step > 23 {
		step = 23
	}
	return 232 + step
}

// Present diffs back against front, writing the minimal sequence of SGR
// and cursor-move escapes plus changed codepoints to w, then copies
// back into front — spec §4.9's Present algorithm:
//  1. for each (x,y), if back != front: copy, emit style change if
//     needed, emit a cursor move if not contiguous with the last write,
//     emit the cell's codepoint as UTF-8.
//  2. move the terminal cursor to (cursorX, cursorY) if visible.
//  3. flush.
func Present(w io.Writer, back, front *FrameBuffer, cursorX, cursorY int, cursorVisible bool, mode ColorMode) error {
	state := &sgrState{mode: mode}
	lastX, lastY := -1, -1
	wroteAny := false

	for y := 0; y < back.Height(); y++ {
		for x := 0; x < back.Width(); x++ {
			bc := back.At(x, y)
			fc := front.At(x, y)
			if bc == fc {
				continue
			}
			if !wroteAny || x != lastX+1 || y != lastY {
				fmt.Fprintf(w, "\x1b[%d;%dH", y+1, x+1)
			}
			state.emit(w, bc)
			writeRune(w, bc.Ch)
			lastX, lastY = x, y
			wroteAny = true
		}
	}

	if cursorVisible {
		fmt.Fprintf(w, "\x1b[%d;%dH", cursorY+1, cursorX+1)
	}

	front.CopyFrom(back)

	if f, ok := w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

func writeRune(w io.Writer, r rune) {
	if r == 0 {
		r = ' '
	}
	fmt.Fprint(w, string(r))
}
