// Package frontend defines the boundary spec §1 calls "deliberately out
// of scope": concrete terminal I/O, GUI font loading, and resource
// loading are external collaborators with defined interfaces only. This
// package is that interface — the cell-grid buffer and event stream the
// core consumes and produces (spec §6, "Frontend contract").
package frontend

import (
	"github.com/glint-editor/glint/internal/keymap"
	"github.com/glint-editor/glint/internal/ui/draw"
)

// MouseButton identifies which mouse action an Event carries.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
	MouseWheelUp
	MouseWheelDown
	MouseReleased
)

// EventKind tags an Event's variant.
type EventKind int

const (
	EventClose EventKind = iota
	EventResize
	EventKey
	EventMouse
)

// Event is the tagged sum type spec §6 and §9 describe ("model as a
// tagged sum type with variants for each kind; never access a field
// whose tag is wrong").
type Event struct {
	Kind EventKind

	// EventResize
	Width, Height int

	// EventKey: exactly one of Unicode or Code is non-zero, mirroring
	// the packed Key encoding in internal/keymap.
	Unicode            rune
	Code               keymap.Keycode
	Ctrl, Alt, Shift   bool

	// EventMouse
	Button MouseButton
	X, Y   int
}

// KeymapEvent packs an EventKey into the internal/keymap encoding used
// by the KeyTree, so a Frontend implementation never has to know about
// bit layout.
func (e Event) KeymapEvent() keymap.Event {
	if e.Unicode != 0 && (e.Ctrl || e.Alt || e.Shift) {
		return keymap.EncodeKey(keymap.Keycode(e.Unicode), e.Ctrl, e.Alt, e.Shift)
	}
	if e.Unicode != 0 {
		return keymap.EncodeRune(e.Unicode)
	}
	return keymap.EncodeKey(e.Code, e.Ctrl, e.Alt, e.Shift)
}

// Frontend is the contract a concrete terminal (or other) I/O backend
// implements; the core never constructs one itself.
type Frontend interface {
	// Initialize prepares the terminal (raw mode, alt screen, etc.).
	Initialize() error
	// Cleanup restores the terminal to its prior state.
	Cleanup() error
	// DrawBuffer returns the back buffer the core draws into; its
	// dimensions reflect the current terminal size.
	DrawBuffer() *draw.FrameBuffer
	// Display presents the back buffer (spec §4.9's Present algorithm).
	Display(cursorX, cursorY int, cursorVisible bool) error
	// Events blocks until at least one event is available and may
	// return a batch (spec §6: "GetEvents() ... may return a batch").
	Events() ([]Event, error)
}
