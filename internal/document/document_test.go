package document

import (
	"testing"

	"github.com/glint-editor/glint/internal/buffer"
	"github.com/glint-editor/glint/internal/history"
	"github.com/glint-editor/glint/internal/text"
)

type fakeLsp struct {
	opened  bool
	changes [][]history.DocChange
	items   []CompletionItem
}

func (f *fakeLsp) DidOpen(uri, lang, text string, version int) { f.opened = true }
func (f *fakeLsp) DidChange(uri string, version int, changes []history.DocChange) {
	f.changes = append(f.changes, changes)
}
func (f *fakeLsp) DidClose(uri string) {}
func (f *fakeLsp) RequestCompletion(uri string, pos text.Coord) ([]CompletionItem, error) {
	return f.items, nil
}

func newTestDoc(content string) (*Document, *fakeLsp) {
	buf := buffer.NewFromBytes([]byte(content))
	lsp := &fakeLsp{}
	return New("file:///x.go", "go", buf, lsp), lsp
}

func TestInsertTextNotifiesLsp(t *testing.T) {
	d, lsp := newTestDoc("abc")
	d.InsertText("X")
	if !lsp.opened {
		t.Fatal("expected DidOpen to have been called")
	}
	if len(lsp.changes) != 1 {
		t.Fatalf("expected one didChange batch, got %d", len(lsp.changes))
	}
}

func TestCursorHomeTwoStage(t *testing.T) {
	d, _ := newTestDoc("   foo")
	d.Cursors.Primary().SetIndex(6, d.Buf)

	d.CursorHome()
	if d.Cursors.Primary().Index != 3 {
		t.Errorf("first Home: got index %d, want 3 (first non-whitespace)", d.Cursors.Primary().Index)
	}

	d.CursorHome()
	if d.Cursors.Primary().Index != 0 {
		t.Errorf("second Home: got index %d, want 0", d.Cursors.Primary().Index)
	}
}

func TestCursorEndGoesToLineEnd(t *testing.T) {
	d, _ := newTestDoc("foo\nbar")
	d.CursorEnd()
	if d.Cursors.Primary().Index != 3 {
		t.Errorf("got %d want 3", d.Cursors.Primary().Index)
	}
}

func TestSelectRightThenCollapseAtOrigin(t *testing.T) {
	d, _ := newTestDoc("abc")
	d.SelectRight()
	if !d.Cursors.Primary().HasSelection() {
		t.Fatal("expected a selection after SelectRight")
	}
	d.SelectLeft()
	if d.Cursors.Primary().HasSelection() {
		t.Error("expected selection to collapse back at the origin")
	}
}

func TestEnterCharacterTriggersCompletionOnDot(t *testing.T) {
	d, lsp := newTestDoc("foo")
	lsp.items = []CompletionItem{{Label: "Bar"}}
	d.Cursors.Primary().SetIndex(3, d.Buf)

	d.EnterCharacter('.')

	items, _, visible := d.CompletionItems()
	if !visible || len(items) != 1 || items[0].Label != "Bar" {
		t.Errorf("expected completion popup with 1 item, got visible=%v items=%v", visible, items)
	}
}

func TestSelectCompletionItemAppliesTextEdit(t *testing.T) {
	d, lsp := newTestDoc("foo.")
	lsp.items = []CompletionItem{{
		Label: "Bar",
		TextEdit: TextEdit{
			Start: text.Coord{Line: 0, Character: 4},
			End:   text.Coord{Line: 0, Character: 4},
			Text:  "Bar",
		},
	}}
	d.TriggerCompletion()

	if err := d.SelectCompletionItem(); err != nil {
		t.Fatalf("SelectCompletionItem: %v", err)
	}
	if string(d.Buf.Bytes()) != "foo.Bar" {
		t.Errorf("got %q want %q", d.Buf.Bytes(), "foo.Bar")
	}
	if _, _, visible := d.CompletionItems(); visible {
		t.Error("expected popup to be cleared after selection")
	}
	if len(lsp.changes) == 0 {
		t.Error("expected applying a completion's TextEdit to notify didChange")
	}
	if err := d.Undo(); err != nil {
		t.Fatalf("Undo after completion apply: %v", err)
	}
	if string(d.Buf.Bytes()) != "foo." {
		t.Errorf("undo after completion apply: got %q want %q", d.Buf.Bytes(), "foo.")
	}
}

func TestUndoRedoRestoresCursorSnapshot(t *testing.T) {
	d, _ := newTestDoc("abc")
	d.Cursors.Primary().SetIndex(3, d.Buf)
	d.InsertText("X")
	if string(d.Buf.Bytes()) != "abcX" {
		t.Fatalf("got %q", d.Buf.Bytes())
	}
	if err := d.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if string(d.Buf.Bytes()) != "abc" {
		t.Errorf("got %q want %q", d.Buf.Bytes(), "abc")
	}
	if err := d.Redo(); err != nil {
		t.Fatalf("Redo: %v", err)
	}
	if string(d.Buf.Bytes()) != "abcX" {
		t.Errorf("got %q want %q", d.Buf.Bytes(), "abcX")
	}
}

func TestReconcileContentAppliesOnlyTheChangedHunk(t *testing.T) {
	d, lsp := newTestDoc("line one\nline two\nline three\n")

	d.ReconcileContent("line one\nline TWO\nline three\n")

	if string(d.Buf.Bytes()) != "line one\nline TWO\nline three\n" {
		t.Fatalf("got %q", d.Buf.Bytes())
	}
	if len(lsp.changes) == 0 {
		t.Fatal("expected reconciliation to notify didChange")
	}

	if err := d.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if string(d.Buf.Bytes()) != "line one\nline two\nline three\n" {
		t.Errorf("undo after reconcile: got %q", d.Buf.Bytes())
	}
}

func TestReconcileContentNoOpWhenUnchanged(t *testing.T) {
	d, lsp := newTestDoc("same\n")
	d.ReconcileContent("same\n")
	if len(lsp.changes) != 0 {
		t.Errorf("expected no didChange for an identical reconcile, got %d", len(lsp.changes))
	}
}
