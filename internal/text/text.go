// Package text holds the value types shared by every other core package:
// codepoints, byte slices, logical coordinates, and cell styling.
package text

import "unicode/utf8"

// Codepoint is a Unicode scalar value, held as a fixed-width integer so a
// Cell can carry one without an allocation.
type Codepoint = rune

// Slice is a half-open byte range [Start, End) into some Buffer's data.
// It is empty when Start == End.
type Slice struct {
	Start int
	End   int
}

// Empty reports whether the slice spans zero bytes.
func (s Slice) Empty() bool { return s.Start == s.End }

// Len returns the number of bytes the slice spans.
func (s Slice) Len() int { return s.End - s.Start }

// Coord is a logical (line, character) position. Character is a byte
// offset from the start of the line, not a rune count: buffers are
// cursored in bytes even though content is UTF-8.
type Coord struct {
	Line      int
	Character int
}

// Position is a drawing coordinate in cell units.
type Position struct {
	X int
	Y int
}

// Area is a drawing size in cell units.
type Area struct {
	Width  int
	Height int
}

// Attrib is a bitset of text attributes.
type Attrib uint8

const (
	AttribBold Attrib = 1 << iota
	AttribUnderline
	AttribItalic
	AttribReverse
)

// RGB24 is a 24-bit truecolor value.
type RGB24 struct {
	R, G, B uint8
}

// Color is an optional RGB24 value; the zero value is "unset".
type Color struct {
	Set   bool
	Value RGB24
}

// NoColor is the unset Color.
var NoColor = Color{}

// RGB constructs a set Color.
func RGB(r, g, b uint8) Color { return Color{Set: true, Value: RGB24{r, g, b}} }

// Style is fg/bg color plus attributes. The zero value renders as the
// terminal's default colors with no attributes.
type Style struct {
	FG     Color
	BG     Color
	Attrib Attrib
}

// Apply composes the receiver with an overlay: the overlay's colors win
// when set, and attributes are unioned. This mirrors the layered
// highlight → diagnostic-underline → cursor compositing DocumentWindow
// performs when drawing a buffer (see internal/ui/draw).
func (a Style) Apply(b Style) Style {
	out := Style{FG: a.FG, BG: a.BG, Attrib: a.Attrib | b.Attrib}
	if b.FG.Set {
		out.FG = b.FG
	}
	if b.BG.Set {
		out.BG = b.BG
	}
	return out
}

// Cell is one terminal cell: a codepoint plus resolved style.
type Cell struct {
	Ch     Codepoint
	FG     RGB24
	BG     RGB24
	Attrib Attrib
}

// Resolve turns a Style into concrete fg/bg values, substituting the
// given defaults for unset channels.
func (s Style) Resolve(defaultFG, defaultBG RGB24) (fg, bg RGB24) {
	fg, bg = defaultFG, defaultBG
	if s.FG.Set {
		fg = s.FG.Value
	}
	if s.BG.Set {
		bg = s.BG.Value
	}
	return
}

// DecodeRune decodes one UTF-8 codepoint starting at data[i], returning
// the rune and its encoded width in bytes. An invalid lead byte decodes
// to utf8.RuneError with width 1, matching Go's usual replacement
// behavior rather than aborting on malformed input.
func DecodeRune(data []byte, i int) (r rune, width int) {
	return utf8.DecodeRune(data[i:])
}

// EncodeRune appends the UTF-8 encoding of r to dst and returns the
// extended slice.
func EncodeRune(dst []byte, r rune) []byte {
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], r)
	return append(dst, buf[:n]...)
}
