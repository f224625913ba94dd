// Package layout implements the recursive split tree, tab, and window
// composition of spec §4.7, generalizing the teacher's fixed two-pane
// layout (internal/tui/tui.go's generateLayout, which only ever
// computes an editor rect and a conversation rect side by side) into an
// arbitrary LEAF/VERTICAL/HORIZONTAL tree.
package layout

import (
	"github.com/glint-editor/glint/internal/keymap"
	"github.com/glint-editor/glint/internal/text"
)

// SplitType is the kind of a split-tree node.
type SplitType int

const (
	Leaf SplitType = iota
	Vertical
	Horizontal
)

// Pane is the drawable, event-handling content of a split leaf — a
// DocumentWindow or a FindWindow in spec's terms.
type Pane interface {
	HandleEvent(ev keymap.Event) bool
	Draw(fb FrameBufferView, pos text.Position, area text.Area)
}

// FrameBufferView is the subset of the draw pipeline's FrameBuffer that
// layout needs to hand a Pane a sub-region to draw into. Defined here
// (rather than importing internal/ui/draw) to avoid layout depending on
// draw; draw's concrete FrameBuffer satisfies this interface.
type FrameBufferView interface {
	Width() int
	Height() int
}

// Split is a node in the recursive layout tree. A LEAF node holds
// exactly one Pane; a non-leaf has one or more children whose type
// alternates with its own (spec §4.7).
type Split struct {
	Type     SplitType
	Pane     Pane // only set when Type == Leaf
	Children []*Split
}

// NewLeaf wraps a single Pane as a leaf split.
func NewLeaf(p Pane) *Split {
	return &Split{Type: Leaf, Pane: p}
}

// SplitLeaf splits the given leaf along axis, inserting a sibling pane.
// If the leaf's immediate parent already has the requested axis, the new
// leaf is added as a sibling (flattening); otherwise this leaf itself
// becomes an inner node of the new axis with two leaf children. parent
// is nil when splitting the tree's root leaf.
func SplitLeaf(root *Split, target *Split, axis SplitType, newPane Pane) *Split {
	parent, idx := findParent(root, target, nil, -1)
	newLeaf := NewLeaf(newPane)

	if parent != nil && parent.Type == axis {
		children := make([]*Split, 0, len(parent.Children)+1)
		children = append(children, parent.Children[:idx+1]...)
		children = append(children, newLeaf)
		children = append(children, parent.Children[idx+1:]...)
		parent.Children = children
		return root
	}

	oldPane := target.Pane
	target.Type = axis
	target.Pane = nil
	target.Children = []*Split{NewLeaf(oldPane), newLeaf}
	return root
}

func findParent(node, target, parent *Split, idx int) (*Split, int) {
	if node == target {
		return parent, idx
	}
	for i, c := range node.Children {
		if p, j := findParent(c, target, node, i); p != nil || c == target {
			return p, j
		}
	}
	return nil, -1
}

// Leaves returns every leaf in the tree, left-to-right / top-to-bottom,
// the order the Tab uses to find the "next pane".
func (s *Split) Leaves() []*Split {
	if s.Type == Leaf {
		return []*Split{s}
	}
	var out []*Split
	for _, c := range s.Children {
		out = append(out, c.Leaves()...)
	}
	return out
}

// Partition computes the (pos, area) rectangle for each child: area is
// divided equally among children along the split's axis, the last child
// absorbing any remainder, with a one-cell separator between adjacent
// children not counted in their area (spec §4.7).
func (s *Split) Partition(pos text.Position, area text.Area) []struct {
	Child *Split
	Pos   text.Position
	Area  text.Area
} {
	n := len(s.Children)
	out := make([]struct {
		Child *Split
		Pos   text.Position
		Area  text.Area
	}, n)
	if n == 0 {
		return out
	}

	switch s.Type {
	case Horizontal:
		total := area.Width - (n - 1) // separators
		if total < 0 {
			total = 0
		}
		each := total / n
		remainder := total - each*n
		x := pos.X
		for i, c := range s.Children {
			w := each
			if i == n-1 {
				w = each + remainder
			}
			out[i] = struct {
				Child *Split
				Pos   text.Position
				Area  text.Area
			}{c, text.Position{X: x, Y: pos.Y}, text.Area{Width: w, Height: area.Height}}
			x += w + 1
		}
	case Vertical:
		total := area.Height - (n - 1)
		if total < 0 {
			total = 0
		}
		each := total / n
		remainder := total - each*n
		y := pos.Y
		for i, c := range s.Children {
			h := each
			if i == n-1 {
				h = each + remainder
			}
			out[i] = struct {
				Child *Split
				Pos   text.Position
				Area  text.Area
			}{c, text.Position{X: pos.X, Y: y}, text.Area{Width: area.Width, Height: h}}
			y += h + 1
		}
	}
	return out
}

// Draw implements spec §4.7's draw policy: at a leaf, delegate straight
// to the Pane; at a non-leaf, partition the area among children and
// recurse into each (the one-cell separators Partition reserves are not
// drawn here — callers that need separator glyphs own the FrameBuffer
// concretely enough to draw them).
func (s *Split) Draw(fbv FrameBufferView, pos text.Position, area text.Area) {
	if s.Type == Leaf {
		if s.Pane != nil {
			s.Pane.Draw(fbv, pos, area)
		}
		return
	}
	for _, part := range s.Partition(pos, area) {
		part.Child.Draw(fbv, part.Pos, part.Area)
	}
}

// Tab owns one root Split tree and tracks which leaf is active.
type Tab struct {
	Root   *Split
	active *Split
}

// NewTab wraps root, activating its first leaf.
func NewTab(root *Split) *Tab {
	leaves := root.Leaves()
	var active *Split
	if len(leaves) > 0 {
		active = leaves[0]
	}
	return &Tab{Root: root, active: active}
}

// Active returns the currently active leaf.
func (t *Tab) Active() *Split { return t.active }

// NextPane activates the next leaf in traversal order, wrapping around.
func (t *Tab) NextPane() {
	leaves := t.Root.Leaves()
	if len(leaves) == 0 {
		return
	}
	for i, l := range leaves {
		if l == t.active {
			t.active = leaves[(i+1)%len(leaves)]
			return
		}
	}
	t.active = leaves[0]
}

// HandleEvent delegates to the active pane.
func (t *Tab) HandleEvent(ev keymap.Event) bool {
	if t.active == nil || t.active.Pane == nil {
		return false
	}
	return t.active.Pane.HandleEvent(ev)
}

// Draw renders the tab's whole split tree into the given area.
func (t *Tab) Draw(fbv FrameBufferView, pos text.Position, area text.Area) {
	if t.Root == nil {
		return
	}
	t.Root.Draw(fbv, pos, area)
}

// Window composes one active Tab plus an optional popup pane. If a
// popup exists, events route to it first (spec §4.7).
type Window struct {
	Tabs     []*Tab
	activeTb int
	Popup    Pane
}

// NewWindow wraps the given tabs, activating the first.
func NewWindow(tabs ...*Tab) *Window {
	return &Window{Tabs: tabs}
}

// ActiveTab returns the window's current tab.
func (w *Window) ActiveTab() *Tab {
	if len(w.Tabs) == 0 {
		return nil
	}
	return w.Tabs[w.activeTb]
}

// SetActiveTab switches to tab index i.
func (w *Window) SetActiveTab(i int) {
	if i >= 0 && i < len(w.Tabs) {
		w.activeTb = i
	}
}

// HandleEvent routes to the popup first, then the active tab.
func (w *Window) HandleEvent(ev keymap.Event) bool {
	if w.Popup != nil {
		return w.Popup.HandleEvent(ev)
	}
	if tab := w.ActiveTab(); tab != nil {
		return tab.HandleEvent(ev)
	}
	return false
}

// Draw composes `tab.Draw` then `popup.Draw` (spec §4.7): the active
// tab fills the whole area, and a popup — when present — draws over it
// in a centered inset box.
func (w *Window) Draw(fbv FrameBufferView, pos text.Position, area text.Area) {
	if tab := w.ActiveTab(); tab != nil {
		tab.Draw(fbv, pos, area)
	}
	if w.Popup != nil {
		popupPos, popupArea := centeredInset(pos, area)
		w.Popup.Draw(fbv, popupPos, popupArea)
	}
}

// centeredInset computes a popup rectangle roughly three-quarters of
// area, centered within it.
func centeredInset(pos text.Position, area text.Area) (text.Position, text.Area) {
	w, h := area.Width*3/4, area.Height*3/4
	if w < 1 {
		w = area.Width
	}
	if h < 1 {
		h = area.Height
	}
	return text.Position{X: pos.X + (area.Width-w)/2, Y: pos.Y + (area.Height-h)/2}, text.Area{Width: w, Height: h}
}
