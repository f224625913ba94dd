package keymap

import "testing"

func TestParseSequenceMixedGrammar(t *testing.T) {
	events, err := ParseSequence("<C-x>i")
	if err != nil {
		t.Fatalf("ParseSequence: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events=%d want 2", len(events))
	}
	_, code, ctrl, _, _ := events[0].Decode()
	if !ctrl || code != Keycode('x') {
		t.Errorf("events[0] decode wrong: code=%v ctrl=%v", code, ctrl)
	}
	r, _, _, _, _ := events[1].Decode()
	if r != 'i' {
		t.Errorf("events[1] rune=%q want 'i'", r)
	}
}

func TestParseSequenceSpecialKey(t *testing.T) {
	events, err := ParseSequence("<S-right>")
	if err != nil {
		t.Fatalf("ParseSequence: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events=%d want 1", len(events))
	}
	_, code, _, _, shift := events[0].Decode()
	if !shift || code != KeyRight {
		t.Errorf("decode wrong: code=%v shift=%v", code, shift)
	}
}

func TestParseSequenceMalformedFails(t *testing.T) {
	if _, err := ParseSequence("<C-x"); err == nil {
		t.Error("expected error for unterminated '<'")
	}
	if _, err := ParseSequence("<Z-x>"); err == nil {
		t.Error("expected error for unknown modifier prefix")
	}
}

// TestKeyComboDispatchFiresOnce is scenario S5: register <C-x>i -> action
// A at mode "*"; feeding its events fires A exactly once and leaves the
// cursor at root.
func TestKeyComboDispatchFiresOnce(t *testing.T) {
	tree := NewKeyTree()
	if err := tree.RegisterBinding("pane", "*", "<C-x>i", "action-a"); err != nil {
		t.Fatalf("RegisterBinding: %v", err)
	}
	cursor := NewCursor(tree, "pane", "normal")

	events, _ := ParseSequence("<C-x>i")
	fired := 0
	for _, ev := range events {
		res := cursor.ConsumeEvent(ev)
		if !res.Consumed {
			t.Fatalf("event %v not consumed", ev)
		}
		if res.Fired {
			fired++
			if res.ActionName != "action-a" {
				t.Errorf("fired action=%q want action-a", res.ActionName)
			}
		}
	}
	if fired != 1 {
		t.Errorf("fired=%d want 1", fired)
	}
	if !cursor.IsCursorRoot() {
		t.Error("cursor not at root after firing")
	}
}

// TestKeyComboUnboundContinuationResetsAndSwallows covers the second half
// of S5: <C-x> then <C-g> (unbound) — first event returns "more", second
// would be handled by EventHandler.HandleEvent resetting and swallowing
// (verified in internal/dispatch); here we confirm ConsumeEvent itself
// reports no match for the unbound continuation.
func TestKeyComboUnboundContinuationLeftToHandler(t *testing.T) {
	tree := NewKeyTree()
	tree.RegisterBinding("pane", "*", "<C-x>i", "action-a")
	cursor := NewCursor(tree, "pane", "normal")

	cx, _ := ParseSequence("<C-x>")
	res := cursor.ConsumeEvent(cx[0])
	if !res.Consumed || res.Fired {
		t.Fatalf("first event: consumed=%v fired=%v, want consumed only", res.Consumed, res.Fired)
	}

	cg, _ := ParseSequence("<C-g>")
	res2 := cursor.ConsumeEvent(cg[0])
	if res2.Consumed {
		t.Error("unbound continuation should not be consumed by the tree itself")
	}
	if cursor.IsCursorRoot() {
		t.Error("cursor should still be mid-combo; EventHandler resets it, not ConsumeEvent")
	}
}

func TestWildcardModeFallback(t *testing.T) {
	tree := NewKeyTree()
	tree.RegisterBinding("pane", "*", "q", "quit")
	cursor := NewCursor(tree, "pane", "insert")

	ev, _ := ParseSequence("q")
	res := cursor.ConsumeEvent(ev[0])
	if !res.Fired || res.ActionName != "quit" {
		t.Errorf("wildcard mode binding not matched: %+v", res)
	}
}
