// Package keymap implements the prefix-trie keymap described in spec
// §4.5, ported from the original vmacs keytree.cpp
// (_examples/original_source/src/core/keytree.cpp). Neither the teacher
// nor any other pack repo has an equivalent component, so this package
// is built directly from the original source's traversal algorithm and
// spec's 32-bit key-encoding grammar.
package keymap

import (
	"fmt"
	"strings"
)

// Keycode identifies a non-printable key. Values stay well under the
// 10-bit field's 1023 ceiling (spec caps it at 348).
type Keycode uint16

const (
	KeyNone Keycode = iota
	KeyEsc
	KeySpace
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
)

var keyNames = map[string]Keycode{
	"esc":       KeyEsc,
	"space":     KeySpace,
	"enter":     KeyEnter,
	"tab":       KeyTab,
	"backspace": KeyBackspace,
	"del":       KeyDelete,
	"up":        KeyUp,
	"down":      KeyDown,
	"left":      KeyLeft,
	"right":     KeyRight,
	"home":      KeyHome,
	"end":       KeyEnd,
	"pageup":    KeyPageUp,
	"pagedown":  KeyPageDown,
}

// Event is one packed key event:
//
//	bits  0..9   keycode (enum, <= 348)
//	bit   10     ctrl
//	bit   11     alt
//	bit   12     shift
//	bits 16..23  low byte of unicode; if non-zero, keycode/modifiers are
//	             ignored on decode
type Event uint32

const (
	bitCtrl  = 1 << 10
	bitAlt   = 1 << 11
	bitShift = 1 << 12
)

// EncodeKey packs a special key plus modifiers into an Event.
func EncodeKey(code Keycode, ctrl, alt, shift bool) Event {
	var e uint32
	e |= uint32(code) & 0x3FF
	if ctrl {
		e |= bitCtrl
	}
	if alt {
		e |= bitAlt
	}
	if shift {
		e |= bitShift
	}
	return Event(e)
}

// EncodeRune packs a printable character into an Event. Only the low
// byte is kept, matching the field width spec §4.5 defines; this covers
// ASCII, which is all the `<…>`-free grammar ever produces.
func EncodeRune(r rune) Event {
	return Event(uint32(byte(r)) << 16)
}

// Decode reports whether ev carries a unicode rune, and if not, its
// keycode and modifier bits.
func (ev Event) Decode() (r rune, code Keycode, ctrl, alt, shift bool) {
	u := (uint32(ev) >> 16) & 0xFF
	if u != 0 {
		return rune(u), 0, false, false, false
	}
	code = Keycode(uint32(ev) & 0x3FF)
	ctrl = uint32(ev)&bitCtrl != 0
	alt = uint32(ev)&bitAlt != 0
	shift = uint32(ev)&bitShift != 0
	return 0, code, ctrl, alt, shift
}

// ParseSequence parses a key-combo string ("<C-x>i", "<S-right>", "foo")
// into its encoded events. Parsing is single-pass; a malformed binding
// returns an error with no events produced (spec §4.5).
func ParseSequence(combo string) ([]Event, error) {
	var events []Event
	i := 0
	for i < len(combo) {
		c := combo[i]
		if c != '<' {
			events = append(events, EncodeRune(rune(c)))
			i++
			continue
		}
		end := strings.IndexByte(combo[i:], '>')
		if end < 0 {
			return nil, fmt.Errorf("keymap: unterminated '<' in %q", combo)
		}
		body := combo[i+1 : i+end]
		i += end + 1

		ev, err := parseBracketed(body)
		if err != nil {
			return nil, fmt.Errorf("keymap: %q: %w", combo, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

func parseBracketed(body string) (Event, error) {
	var ctrl, alt, shift bool
	for len(body) >= 2 && body[1] == '-' {
		switch body[0] {
		case 'C', 'c':
			ctrl = true
		case 'A', 'a':
			alt = true
		case 'S', 's':
			shift = true
		default:
			return 0, fmt.Errorf("unknown modifier prefix %q", body[:2])
		}
		body = body[2:]
	}
	if body == "" {
		return 0, fmt.Errorf("empty key name")
	}
	if code, ok := keyNames[strings.ToLower(body)]; ok {
		return EncodeKey(code, ctrl, alt, shift), nil
	}
	if len([]rune(body)) == 1 {
		r := []rune(body)[0]
		if ctrl || alt || shift {
			return EncodeKey(Keycode(r), ctrl, alt, shift), nil
		}
		return EncodeRune(r), nil
	}
	return 0, fmt.Errorf("unknown key name %q", body)
}
