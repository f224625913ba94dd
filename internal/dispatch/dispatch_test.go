package dispatch

import (
	"testing"

	"github.com/glint-editor/glint/internal/keymap"
)

type recordingRunner struct {
	ran []string
}

func (r *recordingRunner) RunAction(name string, h *Handler) error {
	r.ran = append(r.ran, name)
	return nil
}

func TestHandleEventFiresAction(t *testing.T) {
	tree := keymap.NewKeyTree()
	tree.RegisterBinding("pane", "*", "<C-x>i", "save")
	runner := &recordingRunner{}
	h := New(keymap.NewCursor(tree, "pane", "normal"), runner)

	events, _ := keymap.ParseSequence("<C-x>i")
	for _, ev := range events {
		if !h.HandleEvent(ev) {
			t.Fatalf("event %v not handled", ev)
		}
	}
	if len(runner.ran) != 1 || runner.ran[0] != "save" {
		t.Errorf("ran=%v want [save]", runner.ran)
	}
}

func TestHandleEventSwallowsAbortedCombo(t *testing.T) {
	tree := keymap.NewKeyTree()
	tree.RegisterBinding("pane", "*", "<C-x>i", "save")
	h := New(keymap.NewCursor(tree, "pane", "normal"), &recordingRunner{})

	inserted := ""
	h.DefaultInsert = func(ev keymap.Event) bool {
		r, _, _, _, _ := ev.Decode()
		inserted += string(r)
		return true
	}

	cx, _ := keymap.ParseSequence("<C-x>")
	if !h.HandleEvent(cx[0]) {
		t.Fatal("<C-x> should be consumed (waiting for more)")
	}
	cg, _ := keymap.ParseSequence("<C-g>")
	if !h.HandleEvent(cg[0]) {
		t.Fatal("unbound continuation should still be consumed (swallowed as abort)")
	}
	if inserted != "" {
		t.Errorf("DefaultInsert should not have run, got %q", inserted)
	}
	if !h.cursor.IsCursorRoot() {
		t.Error("cursor should be back at root after abort")
	}
}

func TestHandleEventFallsThroughToDefaultInsert(t *testing.T) {
	tree := keymap.NewKeyTree()
	h := New(keymap.NewCursor(tree, "pane", "insert"), &recordingRunner{})

	inserted := ""
	h.DefaultInsert = func(ev keymap.Event) bool {
		r, _, _, _, _ := ev.Decode()
		inserted += string(r)
		return true
	}

	ev, _ := keymap.ParseSequence("x")
	if !h.HandleEvent(ev[0]) {
		t.Fatal("expected DefaultInsert to report consumed")
	}
	if inserted != "x" {
		t.Errorf("inserted=%q want %q", inserted, "x")
	}
}

type childHandler struct{ consumesAll bool }

func (c childHandler) HandleEvent(ev keymap.Event) bool { return c.consumesAll }

func TestChildrenConsultedFirstAndResetParentCursor(t *testing.T) {
	tree := keymap.NewKeyTree()
	tree.RegisterBinding("pane", "*", "<C-x>i", "save")
	h := New(keymap.NewCursor(tree, "pane", "normal"), &recordingRunner{})
	h.AddChild(childHandler{consumesAll: true})

	cx, _ := keymap.ParseSequence("<C-x>")
	h.cursor.ConsumeEvent(cx[0]) // put this handler's own cursor mid-combo

	ev, _ := keymap.ParseSequence("z")
	if !h.HandleEvent(ev[0]) {
		t.Fatal("child should have consumed the event")
	}
	if !h.cursor.IsCursorRoot() {
		t.Error("parent cursor should be reset when a child consumes")
	}
}
