// Package buffer implements the editor's mutable byte container and its
// cached line index, the same responsibilities the teacher's
// internal/tui/editor.Model folds directly into a [][]rune — split out
// here into its own addressable component, grounded on the original
// vmacs buffer.cpp line-index contract described in spec §3/§4.1.
package buffer

import (
	"sort"

	"github.com/glint-editor/glint/internal/text"
)

const defaultTabSize = 4

// ChangeListener is notified after every mutation. Listeners are
// non-owning: the Buffer holds no reference that keeps one alive
// (spec §9, "Buffer-and-listeners pattern").
type ChangeListener interface {
	OnBufferChanged(b *Buffer)
}

// Buffer is a contiguous byte sequence plus a cached index of line
// slices over it. It never uses a rope or piece-table (spec Non-goals).
type Buffer struct {
	data    []byte
	lines   []text.Slice
	tabSize int

	listeners []ChangeListener
}

// New creates an empty buffer.
func New() *Buffer {
	b := &Buffer{tabSize: defaultTabSize}
	b.recomputeLines()
	return b
}

// NewFromBytes creates a buffer seeded with content.
func NewFromBytes(data []byte) *Buffer {
	b := &Buffer{data: append([]byte(nil), data...), tabSize: defaultTabSize}
	b.recomputeLines()
	return b
}

// SetTabSize changes the visual width used by IndexToColumn/ColumnToIndex.
// Must be >= 1 per the `tabsize` config contract (spec §6).
func (b *Buffer) SetTabSize(n int) {
	if n < 1 {
		n = 1
	}
	b.tabSize = n
}

// TabSize returns the configured tab width.
func (b *Buffer) TabSize() int { return b.tabSize }

// AddListener registers a change listener.
func (b *Buffer) AddListener(l ChangeListener) { b.listeners = append(b.listeners, l) }

// RemoveListener unregisters a previously added listener.
func (b *Buffer) RemoveListener(l ChangeListener) {
	for i, x := range b.listeners {
		if x == l {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			return
		}
	}
}

// Len returns len(data).
func (b *Buffer) Len() int { return len(b.data) }

// Bytes returns the underlying data. Callers must not mutate it.
func (b *Buffer) Bytes() []byte { return b.data }

// Lines returns the cached line-slice index. Callers must not mutate it.
func (b *Buffer) Lines() []text.Slice { return b.lines }

// At returns the byte at i as an unsigned value; i == Len() is valid and
// yields 0 (the "null terminator").
func (b *Buffer) At(i int) uint32 {
	if i == len(b.data) {
		return 0
	}
	return uint32(b.data[i])
}

// GetSubString byte-copies data[i : i+n].
func (b *Buffer) GetSubString(i, n int) string {
	if n == 0 {
		return ""
	}
	return string(b.data[i : i+n])
}

// IndexToCoord finds the (line, character) position of byte index i via
// binary search over lines.
func (b *Buffer) IndexToCoord(i int) text.Coord {
	line := sort.Search(len(b.lines), func(k int) bool {
		return b.lines[k].End >= i
	})
	if line >= len(b.lines) {
		line = len(b.lines) - 1
	}
	// sort.Search finds the first line whose End >= i; that's the
	// containing line unless i sits exactly on a later line's Start
	// (possible for the null line or a trailing-newline entry).
	for line > 0 && b.lines[line].Start > i {
		line--
	}
	return text.Coord{Line: line, Character: i - b.lines[line].Start}
}

// CoordToIndex converts a coordinate back to a byte index with no bounds
// check, per spec §4.1.
func (b *Buffer) CoordToIndex(c text.Coord) int {
	return b.lines[c.Line].Start + c.Character
}

// IsValidCoord reports whether c names an in-range line and an in-range
// character offset within that line.
func (b *Buffer) IsValidCoord(c text.Coord) bool {
	if c.Line < 0 || c.Line >= len(b.lines) {
		return false
	}
	lineLen := b.lines[c.Line].Len()
	return c.Character >= 0 && c.Character <= lineLen
}

// LineLen returns the byte length of line (excluding its trailing \n).
func (b *Buffer) LineLen(line int) int { return b.lines[line].Len() }

// NumLines returns the number of line entries, including the null line.
func (b *Buffer) NumLines() int { return len(b.lines) }

// IndexToColumn returns the visual column of byte index i, counting tabs
// as expanding to the next tab stop.
func (b *Buffer) IndexToColumn(i int) int {
	c := b.IndexToCoord(i)
	start := b.lines[c.Line].Start
	col := 0
	for j := start; j < i; j++ {
		if b.data[j] == '\t' {
			col += b.tabSize - (col % b.tabSize)
		} else {
			col++
		}
	}
	return col
}

// ColumnToIndex is the inverse of IndexToColumn for a given line. When
// column lands inside a tab's visual width, it returns the index of that
// tab and sets delta to the remaining columns within it.
func (b *Buffer) ColumnToIndex(column, line int) (index int, delta int) {
	start := b.lines[line].Start
	end := b.lines[line].End
	col := 0
	for j := start; j < end; j++ {
		if b.data[j] == '\t' {
			width := b.tabSize - (col % b.tabSize)
			if column < col+width {
				return j, column - col
			}
			col += width
		} else {
			if column == col {
				return j, 0
			}
			col++
		}
	}
	return end, 0
}

// InsertText inserts text at byte index i, recomputes the line index,
// and notifies listeners.
func (b *Buffer) InsertText(i int, t string) {
	if t == "" {
		return
	}
	data := make([]byte, 0, len(b.data)+len(t))
	data = append(data, b.data[:i]...)
	data = append(data, t...)
	data = append(data, b.data[i:]...)
	b.data = data
	b.onBufferChanged()
}

// RemoveText removes n bytes starting at i, recomputes the line index,
// and notifies listeners.
func (b *Buffer) RemoveText(i, n int) {
	if n == 0 {
		return
	}
	data := make([]byte, 0, len(b.data)-n)
	data = append(data, b.data[:i]...)
	data = append(data, b.data[i+n:]...)
	b.data = data
	b.onBufferChanged()
}

func (b *Buffer) onBufferChanged() {
	b.recomputeLines()
	for _, l := range b.listeners {
		l.OnBufferChanged(b)
	}
}

// recomputeLines rebuilds the line index with a single linear scan.
// Invariants (spec §3):
//   L1: lines[0].Start == 0
//   L2: lines[i].End == lines[i+1].Start - 1, and data[lines[i].End] == '\n'
//       when lines[i].End < len(data)
//   L3: at least one slice always exists (the "null line").
func (b *Buffer) recomputeLines() {
	lines := b.lines[:0]
	start := 0
	for i, c := range b.data {
		if c == '\n' {
			lines = append(lines, text.Slice{Start: start, End: i})
			start = i + 1
		}
	}
	lines = append(lines, text.Slice{Start: start, End: len(b.data)})
	b.lines = lines
}
