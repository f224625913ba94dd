package history

import (
	"testing"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"

	"github.com/glint-editor/glint/internal/buffer"
	"github.com/glint-editor/glint/internal/cursor"
)

// assertNoDiff fails with a unified diff if before and after differ —
// a stricter snapshot comparison than string equality, since it points
// straight at the differing hunk instead of dumping both full strings.
func assertNoDiff(t *testing.T, before, after string) {
	t.Helper()
	edits := myers.ComputeEdits(span.URIFromPath("buffer"), before, after)
	if len(edits) == 0 {
		return
	}
	diff := gotextdiff.ToUnified("before", "after", before, edits)
	t.Fatalf("snapshot mismatch:\n%s", diff)
}

func TestCommitInsertTextSimple(t *testing.T) {
	buf := buffer.New()
	h := New(buf)
	mc := cursor.NewMulti(buf)

	h.CommitInsertText(mc, "abc\n")
	h.CommitInsertText(mc, "d")

	if got := string(buf.Bytes()); got != "abc\nd" {
		t.Fatalf("bytes=%q want %q", got, "abc\nd")
	}
	primary := mc.Primary()
	if primary.Index != 5 {
		t.Errorf("Index=%d want 5", primary.Index)
	}
	if primary.Coord.Line != 1 || primary.Coord.Character != 1 {
		t.Errorf("Coord=%v want {1,1}", primary.Coord)
	}
}

func TestUndoCoalescingAcrossSeparateCommits(t *testing.T) {
	buf := buffer.New()
	h := New(buf)
	mc := cursor.NewMulti(buf)

	h.CommitInsertText(mc, "a")
	h.CommitInsertText(mc, "b")
	h.CommitInsertText(mc, "c")

	if !h.HasUndo() {
		t.Fatal("HasUndo() = false, want true")
	}
	before, err := h.Undo()
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if got := string(buf.Bytes()); got != "" {
		t.Errorf("bytes=%q want empty", got)
	}
	if before.Primary().Index != 0 {
		t.Errorf("restored cursor index=%d want 0", before.Primary().Index)
	}
}

func TestActionCoalescingOneChangePerRun(t *testing.T) {
	// Invariant 6: typing k characters at one cursor without intervening
	// motion produces an Action with exactly one Change.
	buf := buffer.New()
	h := New(buf)
	mc := cursor.NewMulti(buf)

	h.StartAction()
	h.CommitInsertText(mc, "a")
	h.CommitInsertText(mc, "b")
	h.CommitInsertText(mc, "c")
	h.EndAction()

	if len(h.actions) != 1 {
		t.Fatalf("actions=%d want 1", len(h.actions))
	}
	action := h.actions[0]
	if len(action.Changes) != 1 {
		t.Fatalf("changes=%d want 1", len(action.Changes))
	}
	if action.Changes[0].Text != "abc" {
		t.Errorf("change text=%q want %q", action.Changes[0].Text, "abc")
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	buf := buffer.New()
	h := New(buf)
	mc := cursor.NewMulti(buf)

	h.CommitInsertText(mc, "hello")
	want := string(buf.Bytes())

	if _, err := h.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if got := string(buf.Bytes()); got != "" {
		t.Fatalf("after undo bytes=%q want empty", got)
	}
	if _, err := h.Redo(); err != nil {
		t.Fatalf("Redo: %v", err)
	}
	assertNoDiff(t, want, string(buf.Bytes()))
}

func TestVersionMonotone(t *testing.T) {
	buf := buffer.New()
	h := New(buf)
	mc := cursor.NewMulti(buf)

	h.CommitInsertText(mc, "x")
	v1 := h.Version()
	h.CommitInsertText(mc, "y")
	v2 := h.Version()
	if v2 <= v1 {
		t.Errorf("version did not increase: v1=%d v2=%d", v1, v2)
	}
	if _, err := h.Undo(); err != nil {
		t.Fatal(err)
	}
	v3 := h.Version()
	if v3 <= v2 {
		t.Errorf("version did not increase on undo: v2=%d v3=%d", v2, v3)
	}
}

func TestMultiCursorLineDuplication(t *testing.T) {
	// S3: buffer "foo\nbar\nbaz", primary cursor at {0,3}. AddCursorDown
	// twice yields three cursors at indices {3,7,11}. Typing "X" yields
	// "fooX\nbarX\nbazX" and cursors at {4,9,14}.
	buf := buffer.NewFromBytes([]byte("foo\nbar\nbaz"))
	h := New(buf)
	mc := cursor.NewMulti(buf)
	mc.Primary().SetIndex(3, buf)
	mc.Primary().UpdateIntendedColumn()
	mc.Changed(buf)

	lineStart := func(line int) int {
		return buf.Lines()[line].Start
	}
	lineLen := func(line int) int { return buf.LineLen(line) }

	step := func(intendedColumn, afterLine int) (int, bool) {
		next := afterLine + 1
		if next >= buf.NumLines() {
			return 0, false
		}
		col := intendedColumn
		if l := lineLen(next); col > l {
			col = l
		}
		return lineStart(next) + col, true
	}

	mc.AddCursorDown(buf, step)
	mc.AddCursorDown(buf, step)

	got := []int{}
	for _, c := range mc.Cursors() {
		got = append(got, c.Index)
	}
	want := []int{3, 7, 11}
	if len(got) != 3 {
		t.Fatalf("cursors=%v want 3 entries", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cursors[%d]=%d want %d", i, got[i], want[i])
		}
	}

	h.CommitInsertText(mc, "X")
	if gotBytes := string(buf.Bytes()); gotBytes != "fooX\nbarX\nbazX" {
		t.Fatalf("bytes=%q want %q", gotBytes, "fooX\nbarX\nbazX")
	}
	wantAfter := []int{4, 9, 14}
	for i, c := range mc.Cursors() {
		if c.Index != wantAfter[i] {
			t.Errorf("cursors[%d]=%d want %d", i, c.Index, wantAfter[i])
		}
	}
}
