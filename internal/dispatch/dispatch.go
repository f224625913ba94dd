// Package dispatch implements the EventHandler bubbling policy of spec
// §4.6, ported from the original vmacs EventHandler wrapper in
// _examples/original_source/src/core/keytree.cpp (the class wrapping
// KeyTree+KeyTreeCursor at the bottom of that file).
package dispatch

import "github.com/glint-editor/glint/internal/keymap"

// ActionRunner resolves and invokes an action by name. Handlers look up
// actions through this seam rather than storing resolved closures
// directly in the trie, keeping keymap free of any dependency on what
// an "action" actually does.
type ActionRunner interface {
	RunAction(name string, h *Handler) error
}

// Child is anything an EventHandler can delegate to before trying its
// own KeyTreeCursor — a popup, the active pane, a tab, or a window.
type Child interface {
	HandleEvent(ev keymap.Event) bool
}

// Handler owns a KeyTreeCursor and participates in the bubbling chain:
// children first, then this handler's own cursor, then orphan-prefix
// cleanup.
type Handler struct {
	cursor   *keymap.KeyTreeCursor
	children []Child
	runner   ActionRunner

	// DefaultInsert is called when no child and no binding consumed the
	// event and the cursor is already at root — typically the active
	// pane's plain-character insertion. It returns whether it consumed
	// the event.
	DefaultInsert func(ev keymap.Event) bool

	// OnActionError receives any error RunAction returns, so the editor
	// shell can surface it on the status/info surface (spec §7). May be
	// nil, in which case action errors are silently discarded.
	OnActionError func(actionName string, err error)
}

// New builds a Handler around cursor, delegating unresolved actions to
// runner.
func New(cursor *keymap.KeyTreeCursor, runner ActionRunner) *Handler {
	return &Handler{cursor: cursor, runner: runner}
}

// AddChild registers a child consulted before this handler's own cursor,
// in bubbling order (popup before active pane before tab before window,
// per spec §4.7's Window/Tab composition).
func (h *Handler) AddChild(c Child) { h.children = append(h.children, c) }

// Cursor exposes the underlying KeyTreeCursor, e.g. for SetMode.
func (h *Handler) Cursor() *keymap.KeyTreeCursor { return h.cursor }

// ResetCursor resets this handler's traversal position.
func (h *Handler) ResetCursor() { h.cursor.ResetCursor() }

// HandleEvent implements the dispatch policy:
//  1. Delegate to children in order; if any consumes, reset our cursor
//     and report consumed.
//  2. Else feed our own cursor; if it consumed (fired or waiting),
//     report consumed.
//  3. Else if our cursor is mid-combo (not at root), this event aborts
//     the combo: reset and swallow it (report consumed) so it doesn't
//     fall through to default-insert.
//  4. Else report not consumed, letting the caller (usually
//     DefaultInsert) decide.
func (h *Handler) HandleEvent(ev keymap.Event) bool {
	for _, child := range h.children {
		if child.HandleEvent(ev) {
			h.cursor.ResetCursor()
			return true
		}
	}

	res := h.cursor.ConsumeEvent(ev)
	if res.Consumed {
		if res.Fired && h.runner != nil {
			if err := h.runner.RunAction(res.ActionName, h); err != nil && h.OnActionError != nil {
				h.OnActionError(res.ActionName, err)
			}
		}
		return true
	}

	if !h.cursor.IsCursorRoot() {
		h.cursor.ResetCursor()
		return true
	}

	if h.DefaultInsert != nil {
		return h.DefaultInsert(ev)
	}
	return false
}
