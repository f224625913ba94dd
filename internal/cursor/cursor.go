// Package cursor implements single-cursor and multi-cursor state, ported
// from the original vmacs cursor.cpp/cursors.cpp semantics (see
// _examples/original_source/src/editor/cursors.*) and the spec's §4.2
// merge/dedup rules. The teacher's editor.go uses a single ad-hoc
// selection struct; this generalizes it to full multi-cursor support.
package cursor

import (
	"sort"

	"github.com/glint-editor/glint/internal/text"
)

// IndexConverter is the subset of Buffer a Cursor needs to re-derive its
// cached fields. Kept as an interface so cursor never imports buffer,
// avoiding a cyclic dependency (Document composes both).
type IndexConverter interface {
	IndexToCoord(i int) text.Coord
	IndexToColumn(i int) int
	Len() int
}

// NoSelection is the sentinel selection_start value meaning "no
// selection".
const NoSelection = -1

// Cursor is one caret, possibly with an active selection.
type Cursor struct {
	Index           int
	Coord           text.Coord
	IntendedColumn  int
	RealColumn      int
	SelectionStart  int
}

// New returns a cursor at index 0 derived against conv.
func New(conv IndexConverter) Cursor {
	c := Cursor{SelectionStart: NoSelection}
	c.SetIndex(0, conv)
	return c
}

// SetIndex moves the cursor, re-deriving Coord and RealColumn (invariant
// C2). It does not touch IntendedColumn; callers doing vertical motion
// call UpdateIntendedColumn explicitly afterward only when the motion is
// not itself vertical-preserving.
func (c *Cursor) SetIndex(i int, conv IndexConverter) {
	if i < 0 {
		i = 0
	}
	if n := conv.Len(); i > n {
		i = n
	}
	c.Index = i
	c.Coord = conv.IndexToCoord(i)
	c.RealColumn = conv.IndexToColumn(i)
}

// UpdateIntendedColumn sets the sticky column remembered across vertical
// motion.
func (c *Cursor) UpdateIntendedColumn() { c.IntendedColumn = c.RealColumn }

// HasSelection reports whether a selection is active.
func (c Cursor) HasSelection() bool { return c.SelectionStart >= 0 }

// Selection returns the sorted [start,end) selection range. Only valid
// when HasSelection is true.
func (c Cursor) Selection() text.Slice {
	if c.SelectionStart <= c.Index {
		return text.Slice{Start: c.SelectionStart, End: c.Index}
	}
	return text.Slice{Start: c.Index, End: c.SelectionStart}
}

// ClearSelection clears the selection field.
func (c *Cursor) ClearSelection() { c.SelectionStart = NoSelection }

// Equals compares all fields, including selection start when a selection
// exists (per spec §4.2).
func (c Cursor) Equals(o Cursor) bool {
	if c.Index != o.Index || c.IntendedColumn != o.IntendedColumn {
		return false
	}
	if c.HasSelection() != o.HasSelection() {
		return false
	}
	if c.HasSelection() && c.SelectionStart != o.SelectionStart {
		return false
	}
	return true
}

// MultiCursor is a sorted set of Cursors with a primary-cursor polarity
// flag.
type MultiCursor struct {
	cursors  []Cursor
	reversed bool
}

// NewMulti returns a MultiCursor containing a single cursor at index 0.
func NewMulti(conv IndexConverter) *MultiCursor {
	return &MultiCursor{cursors: []Cursor{New(conv)}}
}

// Cursors returns the live cursor slice. Callers must not retain it
// across a Changed() call, which may reallocate.
func (m *MultiCursor) Cursors() []Cursor { return m.cursors }

// Len returns the number of cursors.
func (m *MultiCursor) Len() int { return len(m.cursors) }

// Set replaces the cursor list wholesale (used by History undo/redo to
// restore a prior snapshot). Does not call Changed(); callers that need
// the invariants re-checked should call it explicitly.
func (m *MultiCursor) Set(cursors []Cursor, reversed bool) {
	m.cursors = cursors
	m.reversed = reversed
}

// Clone returns a deep copy, used for Action.before/after snapshots.
func (m *MultiCursor) Clone() *MultiCursor {
	cp := make([]Cursor, len(m.cursors))
	copy(cp, m.cursors)
	return &MultiCursor{cursors: cp, reversed: m.reversed}
}

// Primary returns the primary cursor: first when !reversed, last when
// reversed.
func (m *MultiCursor) Primary() *Cursor {
	if m.reversed {
		return &m.cursors[len(m.cursors)-1]
	}
	return &m.cursors[0]
}

// Reversed reports the current polarity.
func (m *MultiCursor) Reversed() bool { return m.reversed }

// Add appends a new cursor; callers must call Changed afterward to
// restore sortedness.
func (m *MultiCursor) Add(c Cursor) { m.cursors = append(m.cursors, c) }

// ClearMultiCursors keeps only the primary cursor.
func (m *MultiCursor) ClearMultiCursors() {
	p := *m.Primary()
	m.cursors = []Cursor{p}
	m.reversed = false
}

// ClearSelections clears every cursor's selection field.
func (m *MultiCursor) ClearSelections() {
	for i := range m.cursors {
		m.cursors[i].ClearSelection()
	}
}

// Changed enforces the MultiCursor invariants (spec §3/§8 invariant 3):
// clamp, sort by index, drop exact duplicates, and merge overlapping
// selections. The surviving cursor of a merge takes the further endpoint
// and the absorbed cursor's intended column if that endpoint was its
// caret.
func (m *MultiCursor) Changed(conv IndexConverter) {
	n := conv.Len()
	for i := range m.cursors {
		c := &m.cursors[i]
		if c.Index < 0 {
			c.Index = 0
		}
		if c.Index > n {
			c.Index = n
		}
		if c.SelectionStart > n {
			c.SelectionStart = n
		}
		c.Coord = conv.IndexToCoord(c.Index)
		c.RealColumn = conv.IndexToColumn(c.Index)
	}

	sort.SliceStable(m.cursors, func(i, j int) bool {
		return m.cursors[i].Index < m.cursors[j].Index
	})

	out := m.cursors[:0]
	for _, c := range m.cursors {
		if len(out) > 0 && out[len(out)-1].Index == c.Index && !c.HasSelection() && !out[len(out)-1].HasSelection() {
			continue // exact duplicate, drop
		}
		if len(out) > 0 && rangesOverlap(out[len(out)-1], c) {
			out[len(out)-1] = mergeCursors(out[len(out)-1], c)
			continue
		}
		out = append(out, c)
	}
	m.cursors = out
}

func selectionOrCaret(c Cursor) text.Slice {
	if c.HasSelection() {
		return c.Selection()
	}
	return text.Slice{Start: c.Index, End: c.Index}
}

func rangesOverlap(a, b Cursor) bool {
	ra, rb := selectionOrCaret(a), selectionOrCaret(b)
	return ra.End >= rb.Start && rb.End >= ra.Start
}

// mergeCursors absorbs b into a, keeping the further endpoint.
func mergeCursors(a, b Cursor) Cursor {
	ra, rb := selectionOrCaret(a), selectionOrCaret(b)
	start := ra.Start
	if rb.Start < start {
		start = rb.Start
	}
	end := ra.End
	takeFromB := false
	if rb.End > end {
		end = rb.End
		takeFromB = true
	}

	merged := a
	if takeFromB {
		merged.Index = end
		if b.Index == end {
			merged.IntendedColumn = b.IntendedColumn
		}
		merged.RealColumn = b.RealColumn
		merged.Coord = b.Coord
	} else {
		merged.Index = end
	}
	if start != end {
		merged.SelectionStart = start
	} else {
		merged.SelectionStart = NoSelection
	}
	return merged
}

// AddCursorDown grows the cursor set downward by one line from the
// extreme (bottom-most) cursor's intended column, or shrinks it by
// removing the top cursor if the set is already growing upward. Mirrors
// the "unidirectional" grow/shrink rule of spec §4.2.
func (m *MultiCursor) AddCursorDown(conv IndexConverter, lineBelow func(intendedColumn, afterLine int) (index int, ok bool)) {
	m.addCursorDirection(conv, lineBelow, true)
}

// AddCursorUp is the mirror of AddCursorDown.
func (m *MultiCursor) AddCursorUp(conv IndexConverter, lineAbove func(intendedColumn, beforeLine int) (index int, ok bool)) {
	m.addCursorDirection(conv, lineAbove, false)
}

func (m *MultiCursor) addCursorDirection(conv IndexConverter, step func(int, int) (int, bool), down bool) {
	unidirectional := len(m.cursors) == 1 || m.reversed == down
	if unidirectional {
		var extreme Cursor
		if down {
			extreme = m.cursors[len(m.cursors)-1]
		} else {
			extreme = m.cursors[0]
		}
		idx, ok := step(extreme.IntendedColumn, extreme.Coord.Line)
		if !ok {
			return
		}
		nc := Cursor{SelectionStart: NoSelection, IntendedColumn: extreme.IntendedColumn}
		nc.SetIndex(idx, conv)
		m.Add(nc)
		m.reversed = down
		m.Changed(conv)
		return
	}
	// shrink: remove the cursor at the opposite end
	if len(m.cursors) <= 1 {
		return
	}
	if down {
		m.cursors = m.cursors[1:]
	} else {
		m.cursors = m.cursors[:len(m.cursors)-1]
	}
}
