package cursor

import (
	"testing"

	"github.com/glint-editor/glint/internal/text"
)

type fakeBuf struct {
	lines []text.Slice
	n     int
}

func (f fakeBuf) Len() int { return f.n }

func (f fakeBuf) IndexToCoord(i int) text.Coord {
	line := 0
	for li, s := range f.lines {
		if i >= s.Start && i <= s.End {
			line = li
			break
		}
	}
	return text.Coord{Line: line, Character: i - f.lines[line].Start}
}

func (f fakeBuf) IndexToColumn(i int) int {
	c := f.IndexToCoord(i)
	return c.Character
}

func newFake(text3 string) fakeBuf {
	// "foo\nbar\nbaz" -> lines {0,3},{4,7},{8,11}
	return fakeBuf{lines: []text.Slice{{Start: 0, End: 3}, {Start: 4, End: 7}, {Start: 8, End: 11}}, n: 11}
}

func TestMultiCursorDedup(t *testing.T) {
	f := newFake("foo\nbar\nbaz")
	m := NewMulti(f)
	m.Add(Cursor{Index: 0, SelectionStart: NoSelection})
	m.Changed(f)
	if m.Len() != 1 {
		t.Errorf("len=%d want 1 after dedup", m.Len())
	}
}

func TestMultiCursorSortedAfterChanged(t *testing.T) {
	f := newFake("foo\nbar\nbaz")
	m := NewMulti(f)
	m.cursors = nil
	for _, i := range []int{7, 0, 3} {
		c := Cursor{SelectionStart: NoSelection}
		c.SetIndex(i, f)
		m.Add(c)
	}
	m.Changed(f)
	want := []int{0, 3, 7}
	for i, c := range m.Cursors() {
		if c.Index != want[i] {
			t.Errorf("cursors[%d].Index=%d want %d", i, c.Index, want[i])
		}
	}
}

func TestSelectionMerge(t *testing.T) {
	// S4: two cursors with selections [0,5) and [3,8), caret at 5 and 8.
	f := fakeBuf{lines: []text.Slice{{Start: 0, End: 11}}, n: 11}
	m := NewMulti(f)
	m.cursors = nil
	c1 := Cursor{SelectionStart: 0}
	c1.SetIndex(5, f)
	c2 := Cursor{SelectionStart: 3}
	c2.SetIndex(8, f)
	m.Add(c1)
	m.Add(c2)
	m.Changed(f)

	if m.Len() != 1 {
		t.Fatalf("len=%d want 1", m.Len())
	}
	got := m.Cursors()[0]
	if got.Index != 8 {
		t.Errorf("Index=%d want 8", got.Index)
	}
	if got.SelectionStart != 0 {
		t.Errorf("SelectionStart=%d want 0", got.SelectionStart)
	}
}

func TestClearMultiCursorsKeepsPrimary(t *testing.T) {
	f := newFake("foo\nbar\nbaz")
	m := NewMulti(f)
	c := Cursor{SelectionStart: NoSelection}
	c.SetIndex(7, f)
	m.Add(c)
	m.Changed(f)
	m.ClearMultiCursors()
	if m.Len() != 1 {
		t.Errorf("len=%d want 1", m.Len())
	}
}
