// Package history implements undo/redo with adjacent-change coalescing,
// ported from the original vmacs history.cpp
// (_examples/original_source/src/document/history.cpp) into idiomatic
// Go. The teacher repo has no equivalent component — sacenox-symb's
// editor.Model has no undo stack at all — so this package is built
// directly from the original source and spec §4.3, not adapted from a
// teacher file.
package history

import (
	"errors"
	"fmt"

	"github.com/glint-editor/glint/internal/buffer"
	"github.com/glint-editor/glint/internal/cursor"
	"github.com/glint-editor/glint/internal/text"
)

// ErrNoUndo is returned by Undo when there is nothing to undo.
var ErrNoUndo = errors.New("history: no undo available")

// ErrNoRedo is returned by Redo when there is nothing to redo.
var ErrNoRedo = errors.New("history: no redo available")

// Change is a single atomic buffer mutation.
type Change struct {
	Index int
	Added bool
	Text  string
}

// End returns the byte index just past the change's affected region.
func (c Change) End() int { return c.Index + len(c.Text) }

// Action groups the cursor state before and after an edit with the
// ordered list of Changes that produced it — the atomic unit of undo.
type Action struct {
	Before  *cursor.MultiCursor
	After   *cursor.MultiCursor
	Changes []Change
}

// PushChange appends change to the action, coalescing with the last
// change when one of the three adjacency cases from spec §4.3 applies:
//   - two additions whose last.Index+len(last.Text) == new.Index: append
//   - two removals whose new.Index+len(new.Text) == last.Index: prepend
//   - an addition immediately followed by a removal that trims its tail
func (a *Action) PushChange(change Change) {
	if n := len(a.Changes); n > 0 {
		last := &a.Changes[n-1]

		if last.Added && change.Added && last.End() == change.Index {
			last.Text += change.Text
			return
		}
		if !last.Added && !change.Added && change.End() == last.Index {
			last.Text = change.Text + last.Text
			last.Index = change.Index
			return
		}
		if last.Added && !change.Added && change.Index >= last.Index && change.End() <= last.End() {
			// Addition's tail is being removed again: shrink it in place
			// rather than recording a separate removal. The removed text
			// must in fact be the tail of what was added.
			tailStart := change.Index - last.Index
			if tailStart+len(change.Text) == len(last.Text) && last.Text[tailStart:] == change.Text {
				last.Text = last.Text[:tailStart]
				if last.Text == "" {
					a.Changes = a.Changes[:n-1]
				}
				return
			}
		}
	}
	a.Changes = append(a.Changes, change)
}

// Listener is notified with the LSP-shaped deltas produced by a commit,
// undo, or redo. Non-owning, mirroring Buffer's listener contract.
type Listener interface {
	OnHistoryChanged(changes []DocChange)
}

// DocChange is the LSP textDocument/didChange shape: a replaced range
// plus its new text.
type DocChange struct {
	Start text.Coord
	End   text.Coord
	Text  string
}

// History owns the undo/redo action list for one Buffer.
type History struct {
	buf *buffer.Buffer

	actions []*Action
	ptr     int
	version uint32

	// listening is self-perpetuating: the first commit after construction
	// or after the last EndAction (StartAction, or an explicit Undo/Redo)
	// turns it on, and every subsequent commit reuses the same Action
	// until EndAction turns it back off. This is what lets three
	// unbracketed commits with no motion between them coalesce into one
	// undo step (spec §8 S2), not just an explicit StartAction/EndAction
	// bracket around a macro.
	listening bool

	listeners []Listener
}

// New creates a History bound to buf. The History does not own buf's
// lifetime; Document owns both.
func New(buf *buffer.Buffer) *History {
	return &History{buf: buf}
}

// Version returns the monotone counter that mirrors the LSP document
// version.
func (h *History) Version() uint32 { return h.version }

// AddListener registers a history-change listener.
func (h *History) AddListener(l Listener) { h.listeners = append(h.listeners, l) }

// RemoveListener unregisters a listener.
func (h *History) RemoveListener(l Listener) {
	for i, x := range h.listeners {
		if x == l {
			h.listeners = append(h.listeners[:i], h.listeners[i+1:]...)
			return
		}
	}
}

// HasUndo reports whether Undo would do anything.
func (h *History) HasUndo() bool { return h.ptr > 0 }

// HasRedo reports whether Redo would do anything.
func (h *History) HasRedo() bool { return h.ptr < len(h.actions) }

// StartAction begins a listening window: successive commits append to
// the same Action instead of creating new ones, used for grouping a
// sequence of edits (e.g. a macro) into one undo step.
func (h *History) StartAction() { h.listening = true }

// EndAction ends the listening window.
func (h *History) EndAction() {
	h.listening = false
}

// getListeningAction returns the Action changes should be appended to:
// the in-progress listening Action if one is already open, or a fresh
// Action (truncating any redo tail) otherwise. Opening a fresh Action
// also turns listening on, so the very next commit — with no
// StartAction call in sight — reuses it instead of starting another.
func (h *History) getListeningAction(before *cursor.MultiCursor) *Action {
	// listening alone isn't enough to reuse an action: StartAction can
	// turn listening on before anything has actually been committed
	// (ptr == 0, no action exists yet), and that first commit still
	// needs to open one. Only reuse once an action is actually open.
	if h.listening && h.ptr > 0 {
		if h.ptr != len(h.actions) {
			panic("history: listening action invariant violated (H2)")
		}
		return h.actions[h.ptr-1]
	}
	action := &Action{Before: before.Clone()}
	if h.ptr != len(h.actions) {
		h.actions = h.actions[:h.ptr]
	}
	h.actions = append(h.actions, action)
	h.ptr++
	h.listening = true
	return action
}

// CommitInsertText inserts the same text at every cursor in cursors (in
// ascending index order), replacing each cursor's selection first when
// one is active. See spec §4.3.
func (h *History) CommitInsertText(cursors *cursor.MultiCursor, insertText string) {
	action := h.getListeningAction(cursors)

	list := cursors.Cursors()
	var lspChanges []DocChange
	changed := false

	for i := range list {
		c := &list[i]
		deltaNext := 0

		if c.HasSelection() {
			sel := c.Selection()
			count := sel.Len()
			removed := h.buf.GetSubString(sel.Start, count)
			startCoord := h.buf.IndexToCoord(sel.Start)
			endCoord := h.buf.IndexToCoord(sel.End)

			action.PushChange(Change{Index: sel.Start, Added: false, Text: removed})
			h.buf.RemoveText(sel.Start, count)
			deltaNext -= count

			c.SetIndex(sel.Start, h.buf)
			c.ClearSelection()
			lspChanges = append(lspChanges, DocChange{Start: startCoord, End: endCoord, Text: ""})
			changed = true
		}

		action.PushChange(Change{Index: c.Index, Added: true, Text: insertText})
		startCoord := h.buf.IndexToCoord(c.Index)
		h.buf.InsertText(c.Index, insertText)
		lspChanges = append(lspChanges, DocChange{Start: startCoord, End: startCoord, Text: insertText})
		changed = true

		c.SetIndex(c.Index+len(insertText), h.buf)
		c.UpdateIntendedColumn()
		deltaNext += len(insertText)

		for j := i + 1; j < len(list); j++ {
			list[j].Index += deltaNext
			if list[j].SelectionStart >= 0 {
				list[j].SelectionStart += deltaNext
			}
		}
	}

	if !changed {
		return
	}

	cursors.Changed(h.buf)
	action.After = cursors.Clone()
	h.version++
	h.notify(lspChanges)
}

// CommitRemoveText deletes one byte in direction (-1 backspace, +1
// delete-forward) from each cursor, or its selection when one is active.
// If nothing actually changed (e.g. backspace at buffer start), no
// Action is recorded and listeners are not notified.
func (h *History) CommitRemoveText(cursors *cursor.MultiCursor, direction int) {
	list := cursors.Cursors()
	var lspChanges []DocChange
	changed := false
	var action *Action

	for i := range list {
		c := &list[i]
		deltaNext := 0
		var removeIndex, removeCount int

		switch {
		case c.HasSelection() && !c.Selection().Empty():
			sel := c.Selection()
			removeIndex, removeCount = sel.Start, sel.Len()
		case direction < 0 && c.Index >= 1:
			removeIndex, removeCount = c.Index-1, 1
		case direction > 0 && c.Index < h.buf.Len():
			removeIndex, removeCount = c.Index, 1
		default:
			continue
		}

		if action == nil {
			action = h.getListeningAction(cursors)
		}

		removed := h.buf.GetSubString(removeIndex, removeCount)
		startCoord := h.buf.IndexToCoord(removeIndex)
		endCoord := h.buf.IndexToCoord(removeIndex + removeCount)

		action.PushChange(Change{Index: removeIndex, Added: false, Text: removed})
		h.buf.RemoveText(removeIndex, removeCount)
		lspChanges = append(lspChanges, DocChange{Start: startCoord, End: endCoord, Text: ""})

		c.ClearSelection()
		c.SetIndex(removeIndex, h.buf)
		c.UpdateIntendedColumn()
		deltaNext -= removeCount
		changed = true

		for j := i + 1; j < len(list); j++ {
			list[j].Index += deltaNext
			if list[j].SelectionStart >= 0 {
				list[j].SelectionStart += deltaNext
			}
		}
	}

	if !changed {
		return
	}

	cursors.Changed(h.buf)
	action.After = cursors.Clone()
	h.version++
	h.notify(lspChanges)
}

// CommitReplace applies a single [start,end) byte-range replacement
// that isn't anchored to any cursor's selection, coalescing through the
// same listening window as CommitInsertText/CommitRemoveText. This is
// the seam full-content reconciliations go through — applying an LSP
// completion's TextEdit, or reconciling an externally reloaded file via
// a computed diff — so those edits stay undoable and still produce a
// didChange notification, instead of mutating the buffer directly.
func (h *History) CommitReplace(cursors *cursor.MultiCursor, start, end int, newText string) {
	if end == start && newText == "" {
		return
	}
	action := h.getListeningAction(cursors)

	startCoord := h.buf.IndexToCoord(start)
	endCoord := h.buf.IndexToCoord(end)

	if end > start {
		removed := h.buf.GetSubString(start, end-start)
		action.PushChange(Change{Index: start, Added: false, Text: removed})
		h.buf.RemoveText(start, end-start)
	}
	if newText != "" {
		action.PushChange(Change{Index: start, Added: true, Text: newText})
		h.buf.InsertText(start, newText)
	}

	// Unlike CommitInsertText/CommitRemoveText, the range replaced here
	// isn't anchored to any cursor's own position, so every cursor needs
	// repositioning explicitly: one sitting inside the replaced range
	// collapses to just past the inserted text, one past it shifts by
	// the same delta a plain insert/remove would apply.
	delta := len(newText) - (end - start)
	afterIndex := start + len(newText)
	list := cursors.Cursors()
	for i := range list {
		c := &list[i]
		switch {
		case c.Index >= end:
			c.SetIndex(c.Index+delta, h.buf)
		case c.Index >= start:
			c.SetIndex(afterIndex, h.buf)
		default:
			continue
		}
		c.ClearSelection()
		c.UpdateIntendedColumn()
	}
	cursors.Changed(h.buf)

	action.After = cursors.Clone()
	h.version++
	h.notify([]DocChange{{Start: startCoord, End: endCoord, Text: newText}})
}

// Undo applies the most recent action's changes in reverse order,
// inverting each (an addition is undone by removing the text it added;
// a removal is undone by reinserting the text it removed), and returns
// the cursor snapshot from before the action was committed.
func (h *History) Undo() (*cursor.MultiCursor, error) {
	if !h.HasUndo() {
		return nil, ErrNoUndo
	}
	h.ptr--
	action := h.actions[h.ptr]

	var lspChanges []DocChange
	for i := len(action.Changes) - 1; i >= 0; i-- {
		ch := action.Changes[i]
		if ch.Added {
			if got := h.buf.GetSubString(ch.Index, len(ch.Text)); got != ch.Text {
				panic(fmt.Sprintf("history: undo consistency check failed at %d: have %q want %q", ch.Index, got, ch.Text))
			}
			startCoord := h.buf.IndexToCoord(ch.Index)
			endCoord := h.buf.IndexToCoord(ch.Index + len(ch.Text))
			h.buf.RemoveText(ch.Index, len(ch.Text))
			lspChanges = append(lspChanges, DocChange{Start: startCoord, End: endCoord, Text: ""})
		} else {
			startCoord := h.buf.IndexToCoord(ch.Index)
			h.buf.InsertText(ch.Index, ch.Text)
			lspChanges = append(lspChanges, DocChange{Start: startCoord, End: startCoord, Text: ch.Text})
		}
	}

	h.version++
	h.EndAction()
	h.notify(lspChanges)
	return action.Before, nil
}

// Redo reapplies actions[ptr] in forward order and returns the cursor
// snapshot from after the action was committed.
func (h *History) Redo() (*cursor.MultiCursor, error) {
	if !h.HasRedo() {
		return nil, ErrNoRedo
	}
	action := h.actions[h.ptr]
	h.ptr++

	var lspChanges []DocChange
	for _, ch := range action.Changes {
		if ch.Added {
			startCoord := h.buf.IndexToCoord(ch.Index)
			h.buf.InsertText(ch.Index, ch.Text)
			lspChanges = append(lspChanges, DocChange{Start: startCoord, End: startCoord, Text: ch.Text})
		} else {
			if got := h.buf.GetSubString(ch.Index, len(ch.Text)); got != ch.Text {
				panic(fmt.Sprintf("history: redo consistency check failed at %d: have %q want %q", ch.Index, got, ch.Text))
			}
			startCoord := h.buf.IndexToCoord(ch.Index)
			endCoord := h.buf.IndexToCoord(ch.Index + len(ch.Text))
			h.buf.RemoveText(ch.Index, len(ch.Text))
			lspChanges = append(lspChanges, DocChange{Start: startCoord, End: endCoord, Text: ""})
		}
	}

	h.version++
	h.EndAction()
	h.notify(lspChanges)
	return action.After, nil
}

func (h *History) notify(changes []DocChange) {
	for _, l := range h.listeners {
		l.OnHistoryChanged(changes)
	}
}
