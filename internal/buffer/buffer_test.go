package buffer

import (
	"testing"

	"github.com/glint-editor/glint/internal/text"
)

func TestLinesInvariants(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []text.Slice
	}{
		{"empty", "", []text.Slice{{Start: 0, End: 0}}},
		{"single line no newline", "abc", []text.Slice{{Start: 0, End: 3}}},
		{"trailing newline", "abc\n", []text.Slice{{Start: 0, End: 3}, {Start: 4, End: 4}}},
		{"two lines", "foo\nbar", []text.Slice{{Start: 0, End: 3}, {Start: 4, End: 7}}},
		{"blank line", "a\n\nb", []text.Slice{{Start: 0, End: 1}, {Start: 2, End: 2}, {Start: 3, End: 4}}},
	}
	for _, tc := range cases {
		b := NewFromBytes([]byte(tc.in))
		got := b.Lines()
		if len(got) != len(tc.want) {
			t.Fatalf("%s: lines=%v want=%v", tc.name, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("%s: lines[%d]=%v want=%v", tc.name, i, got[i], tc.want[i])
			}
		}
	}
}

func TestIndexCoordRoundTrip(t *testing.T) {
	b := NewFromBytes([]byte("foo\nbar\nbaz"))
	for i := 0; i <= b.Len(); i++ {
		c := b.IndexToCoord(i)
		if got := b.CoordToIndex(c); got != i {
			t.Errorf("index %d -> coord %v -> index %d, want %d", i, c, got, i)
		}
	}
}

func TestColumnRoundTripNoTabs(t *testing.T) {
	b := NewFromBytes([]byte("hello world"))
	for i := 0; i < b.LineLen(0); i++ {
		col := b.IndexToColumn(i)
		idx, delta := b.ColumnToIndex(col, 0)
		if idx != i || delta != 0 {
			t.Errorf("index %d -> col %d -> (%d,%d), want (%d,0)", i, col, idx, delta, i)
		}
	}
}

func TestColumnWithTabLandsInsideTab(t *testing.T) {
	b := NewFromBytes([]byte("\tx"))
	b.SetTabSize(4)
	// column 2 lands inside the tab (which spans visual columns 0..3)
	idx, delta := b.ColumnToIndex(2, 0)
	if idx != 0 || delta != 2 {
		t.Errorf("ColumnToIndex(2,0) = (%d,%d), want (0,2)", idx, delta)
	}
}

func TestInsertRemoveNotifiesAndRecomputes(t *testing.T) {
	b := NewFromBytes([]byte("abc"))
	notified := 0
	b.AddListener(listenerFunc(func(*Buffer) { notified++ }))

	b.InsertText(3, "\nd")
	if notified != 1 {
		t.Errorf("notified=%d want 1", notified)
	}
	if got := string(b.Bytes()); got != "abc\nd" {
		t.Errorf("bytes=%q want %q", got, "abc\nd")
	}
	if len(b.Lines()) != 2 {
		t.Errorf("lines=%v want 2 entries", b.Lines())
	}

	b.RemoveText(3, 1)
	if notified != 2 {
		t.Errorf("notified=%d want 2", notified)
	}
	if got := string(b.Bytes()); got != "abcd" {
		t.Errorf("bytes=%q want %q", got, "abcd")
	}
}

type listenerFunc func(*Buffer)

func (f listenerFunc) OnBufferChanged(b *Buffer) { f(b) }
