package editor

import (
	"context"
	"fmt"

	"github.com/glint-editor/glint/internal/finder"
	"github.com/glint-editor/glint/internal/keymap"
	"github.com/glint-editor/glint/internal/text"
	"github.com/glint-editor/glint/internal/ui/draw"
	"github.com/glint-editor/glint/internal/ui/layout"
)

// FindWindow is the layout.Pane spec §4.7 calls a FindWindow: a popup
// showing live Finder results as the user types a query. Grounded on
// the teacher's internal/tui/modal package for the popup-over-content
// shape, rebuilt around internal/finder's two-phase IPC pipeline
// instead of the teacher's in-process list filtering.
type FindWindow struct {
	f       *finder.Finder
	query   []rune
	cursor  int // index into Results(), selected row
	onPick  func(finder.SelectionTarget)
	onClose func()
}

// NewFindWindow builds a popup over f; onPick is called with the
// resolved SelectionTarget when the user confirms a row, onClose when
// they cancel.
func NewFindWindow(f *finder.Finder, onPick func(finder.SelectionTarget), onClose func()) *FindWindow {
	return &FindWindow{f: f, onPick: onPick, onClose: onClose}
}

// HandleEvent implements layout.Pane: printable runes extend the query
// (re-filtering on every keystroke per spec §4.12), arrows move the
// selection, Enter confirms, Escape cancels.
func (fw *FindWindow) HandleEvent(ev keymap.Event) bool {
	r, code, ctrl, alt, shift := ev.Decode()
	_ = alt
	_ = shift
	switch {
	case code == keymap.KeyEsc:
		if fw.onClose != nil {
			fw.onClose()
		}
		return true
	case code == keymap.KeyEnter:
		results := fw.f.Results()
		if fw.cursor >= 0 && fw.cursor < len(results) {
			target, err := fw.f.SelectItem(results[fw.cursor])
			if err == nil && fw.onPick != nil {
				fw.onPick(target)
			}
		}
		return true
	case code == keymap.KeyDown:
		fw.moveCursor(1)
		return true
	case code == keymap.KeyUp:
		fw.moveCursor(-1)
		return true
	case code == keymap.KeyBackspace:
		if len(fw.query) > 0 {
			fw.query = fw.query[:len(fw.query)-1]
			fw.refilter()
		}
		return true
	case r != 0 && !ctrl:
		fw.query = append(fw.query, r)
		fw.refilter()
		return true
	}
	return false
}

func (fw *FindWindow) moveCursor(delta int) {
	n := len(fw.f.Results())
	if n == 0 {
		fw.cursor = 0
		return
	}
	fw.cursor = (fw.cursor + delta + n) % n
}

// refilter re-runs the filter subprocess over the current query,
// discarding (via internal/finder's context cancellation) whatever
// filter was still running for a prior keystroke.
func (fw *FindWindow) refilter() {
	fw.cursor = 0
	if err := fw.f.Filter(context.Background(), string(fw.query)); err != nil {
		// Superseded filters return nil; a real spawn failure is not
		// fatal to the popup, just leaves the prior results on screen.
		_ = err
	}
}

// Draw renders the query line followed by the result list, clipping to
// area's height.
func (fw *FindWindow) Draw(fbv layout.FrameBufferView, pos text.Position, area text.Area) {
	fb, ok := fbv.(*draw.FrameBuffer)
	if !ok {
		return
	}
	draw.DrawRectangleLine(fb, pos, area, text.Style{}, draw.DefaultIcons, true)
	if area.Height < 2 || area.Width < 3 {
		return
	}
	inner := text.Position{X: pos.X + 1, Y: pos.Y + 1}
	innerWidth := area.Width - 2

	draw.DrawTextLine(fb, fmt.Sprintf("> %s", string(fw.query)), inner, innerWidth, text.Style{}, draw.DefaultIcons, true, false)

	results := fw.f.Results()
	for i := 0; i < area.Height-2 && i < len(results); i++ {
		style := text.Style{}
		if i == fw.cursor {
			style = style.Apply(text.Style{Attrib: text.AttribReverse})
		}
		row := text.Position{X: inner.X, Y: inner.Y + 1 + i}
		draw.DrawTextLine(fb, results[i], row, innerWidth, style, draw.DefaultIcons, true, false)
	}
}
