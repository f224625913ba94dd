// Package tty is the one concrete Frontend implementation this repo
// ships, built on the same charmbracelet stack the teacher uses for its
// terminal plumbing (internal/tui/tui.go, internal/tui/editor/editor.go):
// charmbracelet/x/term for raw-mode/size; cursor and mouse escapes are
// written and decoded by hand in this file. The core itself never imports this
// package — cmd/glint wires it in, keeping the frontend boundary real
// (spec §1 Non-goal: "concrete terminal I/O ... deliberately out of
// scope" for the core).
package tty

import (
	"bufio"
	"fmt"
	"os"

	xterm "github.com/charmbracelet/x/term"

	"github.com/glint-editor/glint/internal/keymap"
	"github.com/glint-editor/glint/internal/ui/draw"
	"github.com/glint-editor/glint/internal/ui/frontend"
)

// TTY is a direct-raw-mode terminal Frontend: it reads escape sequences
// off stdin itself rather than going through bubbletea's Elm loop,
// since that framework's push-model Update/View doesn't fit the core's
// pull-style Events()/Display() contract. Still charm-stack-grounded via
// x/term, one of the primitives bubbletea itself is built on.
type TTY struct {
	in       *os.File
	out      *bufio.Writer
	rawState *xterm.State
	back     *draw.FrameBuffer
	front    *draw.FrameBuffer
	width    int
	height   int
}

// New wires stdin/stdout as the terminal streams.
func New() *TTY {
	return &TTY{in: os.Stdin, out: bufio.NewWriter(os.Stdout)}
}

// Initialize enters raw mode, the alternate screen, and enables mouse
// reporting.
func (t *TTY) Initialize() error {
	state, err := xterm.MakeRaw(int(t.in.Fd()))
	if err != nil {
		return fmt.Errorf("tty: enable raw mode: %w", err)
	}
	t.rawState = state

	w, h, err := xterm.GetSize(int(t.in.Fd()))
	if err != nil {
		w, h = 80, 24
	}
	t.width, t.height = w, h
	t.back = draw.New(w, h)
	t.front = draw.New(w, h)

	fmt.Fprint(t.out, "\x1b[?1049h\x1b[?1002h\x1b[?1006h")
	return t.out.Flush()
}

// Cleanup restores the terminal to its prior state.
func (t *TTY) Cleanup() error {
	fmt.Fprint(t.out, "\x1b[?1006l\x1b[?1002l\x1b[?1049l")
	t.out.Flush()
	if t.rawState != nil {
		return xterm.Restore(int(t.in.Fd()), t.rawState)
	}
	return nil
}

// DrawBuffer returns the back buffer to draw into. It is sized once in
// Initialize; terminal resizes are not tracked and no EventResize is
// emitted.
func (t *TTY) DrawBuffer() *draw.FrameBuffer { return t.back }

// Display presents the back buffer via the diff/present algorithm in
// internal/ui/draw.
func (t *TTY) Display(cursorX, cursorY int, cursorVisible bool) error {
	if err := draw.Present(t.out, t.back, t.front, cursorX, cursorY, cursorVisible, draw.ColorTruecolor); err != nil {
		return err
	}
	return t.out.Flush()
}

// Events blocks for the next chunk of stdin and decodes it into a batch
// of core Events. Partial/ambiguous escape sequences are handled best
// effort: a lone ESC not immediately followed by more bytes is reported
// as the Esc key.
func (t *TTY) Events() ([]frontend.Event, error) {
	buf := make([]byte, 4096)
	n, err := t.in.Read(buf)
	if err != nil {
		return nil, err
	}
	return decode(buf[:n]), nil
}

func decode(b []byte) []frontend.Event {
	var out []frontend.Event
	i := 0
	for i < len(b) {
		switch {
		case b[i] == 0x1b && i+1 < len(b) && b[i+1] == '[':
			ev, consumed := decodeCSI(b[i:])
			out = append(out, ev)
			i += consumed
		case b[i] == 0x1b:
			out = append(out, frontend.Event{Kind: frontend.EventKey, Code: keymap.KeyEsc})
			i++
		case b[i] == '\r' || b[i] == '\n':
			out = append(out, frontend.Event{Kind: frontend.EventKey, Code: keymap.KeyEnter})
			i++
		case b[i] == '\t':
			out = append(out, frontend.Event{Kind: frontend.EventKey, Code: keymap.KeyTab})
			i++
		case b[i] == 127 || b[i] == 8:
			out = append(out, frontend.Event{Kind: frontend.EventKey, Code: keymap.KeyBackspace})
			i++
		case b[i] < 0x20:
			out = append(out, frontend.Event{Kind: frontend.EventKey, Unicode: rune('a' + b[i] - 1), Ctrl: true})
			i++
		default:
			r, width := decodeRuneAt(b, i)
			out = append(out, frontend.Event{Kind: frontend.EventKey, Unicode: r})
			i += width
		}
	}
	return out
}

func decodeRuneAt(b []byte, i int) (rune, int) {
	// ASCII fast path; full UTF-8 decode for multi-byte leads.
	if b[i] < 0x80 {
		return rune(b[i]), 1
	}
	n := 1
	for i+n < len(b) && b[i+n]&0xC0 == 0x80 && n < 4 {
		n++
	}
	r := []rune(string(b[i : i+n]))
	if len(r) == 0 {
		return rune(b[i]), 1
	}
	return r[0], n
}

// decodeCSI recognizes a handful of common CSI sequences: arrow keys,
// home/end, and SGR mouse reports (the mode enabled by "\x1b[?1006h").
func decodeCSI(b []byte) (frontend.Event, int) {
	if len(b) < 3 {
		return frontend.Event{Kind: frontend.EventKey, Code: keymap.KeyEsc}, 1
	}
	switch b[2] {
	case 'A':
		return frontend.Event{Kind: frontend.EventKey, Code: keymap.KeyUp}, 3
	case 'B':
		return frontend.Event{Kind: frontend.EventKey, Code: keymap.KeyDown}, 3
	case 'C':
		return frontend.Event{Kind: frontend.EventKey, Code: keymap.KeyRight}, 3
	case 'D':
		return frontend.Event{Kind: frontend.EventKey, Code: keymap.KeyLeft}, 3
	case 'H':
		return frontend.Event{Kind: frontend.EventKey, Code: keymap.KeyHome}, 3
	case 'F':
		return frontend.Event{Kind: frontend.EventKey, Code: keymap.KeyEnd}, 3
	case '<':
		return decodeSGRMouse(b)
	}
	return frontend.Event{Kind: frontend.EventKey, Code: keymap.KeyEsc}, 1
}

func decodeSGRMouse(b []byte) (frontend.Event, int) {
	end := -1
	for i := 3; i < len(b); i++ {
		if b[i] == 'm' || b[i] == 'M' {
			end = i
			break
		}
	}
	if end < 0 {
		return frontend.Event{Kind: frontend.EventKey, Code: keymap.KeyEsc}, len(b)
	}
	var btn, x, y int
	released := b[end] == 'm'
	fmt.Sscanf(string(b[3:end]), "%d;%d;%d", &btn, &x, &y)

	button := frontend.MouseLeft
	switch {
	case released:
		button = frontend.MouseReleased
	case btn == 64:
		button = frontend.MouseWheelUp
	case btn == 65:
		button = frontend.MouseWheelDown
	case btn == 1:
		button = frontend.MouseMiddle
	case btn == 2:
		button = frontend.MouseRight
	}
	return frontend.Event{Kind: frontend.EventMouse, Button: button, X: x - 1, Y: y - 1}, end + 1
}
