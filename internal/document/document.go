// Package document composes Buffer, MultiCursor, History, and a syntax
// Highlighter into the editable unit the rest of the core manipulates
// (spec §4.4's "Document operations", spec §3's "Document" data model).
// Grounded on the teacher's internal/tui/editor/editor.go Model, which
// plays the same role for a single textarea — generalized here from a
// single cursor to a MultiCursor and from a direct buffer-of-runes to
// the shared internal/buffer.Buffer + internal/history.History pair.
package document

import (
	"fmt"
	"sync"
	"unicode"

	"github.com/glint-editor/glint/internal/buffer"
	"github.com/glint-editor/glint/internal/cursor"
	"github.com/glint-editor/glint/internal/history"
	"github.com/glint-editor/glint/internal/syntax"
	"github.com/glint-editor/glint/internal/text"
)

// Diagnostic mirrors the LSP shape spec §3 calls for ("Diagnostic,
// CompletionItem, SignatureItems. Mirror LSP shapes"). Range is kept in
// LSP's native line/character coordinates since a diagnostic can arrive
// for a range of a document version the core has already edited past;
// resolving to a byte Slice happens against whatever Buffer state is
// current at draw time, not when the notification is received.
type Diagnostic struct {
	Start    text.Coord
	End      text.Coord
	Severity int
	Message  string
	Source   string
}

// TextEdit is the replacement LSP asks for when a CompletionItem is
// accepted: the coordinate range to replace (LSP's native shape) and
// its new text, plus any additional out-of-range edits (import
// insertion, etc.). Document resolves Start/End to byte offsets against
// its own Buffer at application time via CoordToIndex.
type TextEdit struct {
	Start text.Coord
	End   text.Coord
	Text  string
}

// CompletionItem mirrors LSP's CompletionItem, trimmed to what the core
// applies.
type CompletionItem struct {
	Label           string
	Detail          string
	InsertText      string
	TextEdit        TextEdit
	AdditionalEdits []TextEdit
}

// SignatureHelp mirrors LSP's SignatureHelp response.
type SignatureHelp struct {
	Label           string
	ActiveParameter int
}

// LspClient is the narrow seam Document uses to talk to its language
// server, kept as an interface (rather than a direct internal/lsp
// import) so this package doesn't have to know about JSON-RPC framing
// — mirroring spec §3's "weak handle to an LspClient".
type LspClient interface {
	DidOpen(uri, languageID, text string, version int)
	DidChange(uri string, version int, changes []history.DocChange)
	DidClose(uri string)
	RequestCompletion(uri string, pos text.Coord) ([]CompletionItem, error)
}

// completionTriggers are the characters that open a completion request
// without the user explicitly invoking one — the common LSP
// triggerCharacters set for C-family/Go servers (".", then identifier
// continuation is handled by the "is visible, is word char" branch).
var completionTriggers = map[rune]bool{
	'.': true,
}

// Document is the editable unit spec §3 describes: a Buffer with
// MultiCursor, History, and Syntax, plus LSP-fed diagnostic/completion/
// signature state guarded by a mutex (spec: "guarded by mutexes").
type Document struct {
	Buf     *buffer.Buffer
	Cursors *cursor.MultiCursor
	Hist    *history.History
	Syntax  *syntax.Registry
	Theme   syntax.Theme

	URI        string
	LanguageID string
	ReadOnly   bool

	lsp     LspClient
	version int

	mu                    sync.Mutex
	diagnostics           []Diagnostic
	completionItems       []CompletionItem
	completionSelected    int
	completionStartIndex  int
	completionVisible     bool
	signatureHelp         *SignatureHelp
}

// New constructs a Document over an existing buffer, wiring the
// (optional) LSP client. The syntax highlighter is not a parameter; set
// the Syntax field after construction.
func New(uri, languageID string, buf *buffer.Buffer, lsp LspClient) *Document {
	d := &Document{
		Buf:        buf,
		Cursors:    cursor.NewMulti(buf),
		Hist:       history.New(buf),
		URI:        uri,
		LanguageID: languageID,
		lsp:        lsp,
	}
	d.Hist.AddListener(d)
	if lsp != nil {
		lsp.DidOpen(uri, languageID, string(buf.Bytes()), d.version)
	}
	return d
}

// SetLspClient attaches a language server handle after construction and
// sends the initial didOpen — used by the editor shell, which creates a
// Document before the corresponding server is guaranteed to be running
// (internal/lsp.Manager starts servers lazily, keyed by language id, so
// the client isn't known at Document-construction time).
func (d *Document) SetLspClient(c LspClient) {
	d.mu.Lock()
	d.lsp = c
	d.mu.Unlock()
	if c != nil {
		c.DidOpen(d.URI, d.LanguageID, string(d.Buf.Bytes()), d.version)
	}
}

// OnHistoryChanged implements history.Listener, forwarding every commit/
// undo/redo as an LSP textDocument/didChange notification — the
// "History calls LSP didChange" edge in spec §2's data-flow diagram.
func (d *Document) OnHistoryChanged(changes []history.DocChange) {
	d.version++
	if d.lsp == nil {
		return
	}
	d.lsp.DidChange(d.URI, d.version, changes)
}

// --- cursor motions (spec §4.4) ---

func (d *Document) clearSelections() {
	d.Cursors.ClearSelections()
}

// moveVertical moves every cursor to the given line using its intended
// column, clearing selections — the shared body of CursorUp/Down.
func (d *Document) moveVertical(delta int, clearSel bool) {
	cursors := d.Cursors.Cursors()
	for i := range cursors {
		c := &cursors[i]
		if clearSel {
			c.ClearSelection()
		}
		newLine := c.Coord.Line + delta
		if newLine < 0 {
			newLine = 0
		}
		if newLine >= d.Buf.NumLines() {
			newLine = d.Buf.NumLines() - 1
		}
		idx, _ := d.Buf.ColumnToIndex(c.IntendedColumn, newLine)
		c.SetIndex(idx, d.Buf)
	}
	d.Cursors.Changed(d.Buf)
}

func (d *Document) CursorUp()   { d.moveVertical(-1, true) }
func (d *Document) CursorDown() { d.moveVertical(1, true) }

func (d *Document) moveHorizontal(delta int, clearSel bool) {
	cursors := d.Cursors.Cursors()
	for i := range cursors {
		c := &cursors[i]
		if clearSel {
			c.ClearSelection()
		}
		idx := c.Index + delta
		if idx < 0 {
			idx = 0
		}
		if idx > d.Buf.Len() {
			idx = d.Buf.Len()
		}
		c.SetIndex(idx, d.Buf)
		c.UpdateIntendedColumn()
	}
	d.Cursors.Changed(d.Buf)
}

func (d *Document) CursorLeft()  { d.moveHorizontal(-1, true) }
func (d *Document) CursorRight() { d.moveHorizontal(1, true) }

// addCursorVertical builds the line-stepping closure MultiCursor's
// AddCursorDown/AddCursorUp need and applies it in the requested
// direction (spec §4.2's multi-cursor line duplication, exercised by
// Scenario S3).
func (d *Document) addCursorVertical(down bool) {
	buf := d.Buf
	step := func(intendedColumn, fromLine int) (int, bool) {
		next := fromLine + 1
		if !down {
			next = fromLine - 1
		}
		if next < 0 || next >= buf.NumLines() {
			return 0, false
		}
		col := intendedColumn
		if l := buf.LineLen(next); col > l {
			col = l
		}
		return buf.Lines()[next].Start + col, true
	}
	if down {
		d.Cursors.AddCursorDown(buf, step)
	} else {
		d.Cursors.AddCursorUp(buf, step)
	}
}

// AddCursorBelow grows the cursor set with one more cursor on the line
// below the bottom-most cursor (or shrinks it from the top if the set
// is already growing upward).
func (d *Document) AddCursorBelow() { d.addCursorVertical(true) }

// AddCursorAbove is the mirror of AddCursorBelow.
func (d *Document) AddCursorAbove() { d.addCursorVertical(false) }

func firstNonWhitespace(buf *buffer.Buffer, line int) int {
	lines := buf.Lines()
	if line < 0 || line >= len(lines) {
		return 0
	}
	l := lines[line]
	data := buf.Bytes()
	i := l.Start
	for i < l.End && (data[i] == ' ' || data[i] == '\t') {
		i++
	}
	return i
}

// CursorHome implements the two-stage Home: first press goes to the
// first non-whitespace byte of the line, second consecutive press goes
// to column 0 (spec §4.4: "Home is two-stage").
func (d *Document) CursorHome() {
	cursors := d.Cursors.Cursors()
	for i := range cursors {
		c := &cursors[i]
		c.ClearSelection()
		lineStart := d.Buf.Lines()[c.Coord.Line].Start
		nonWs := firstNonWhitespace(d.Buf, c.Coord.Line)
		var target int
		if c.Index != nonWs {
			target = nonWs
		} else {
			target = lineStart
		}
		c.SetIndex(target, d.Buf)
		c.UpdateIntendedColumn()
	}
	d.Cursors.Changed(d.Buf)
}

// CursorEnd jumps to the line's end index (the trailing newline's
// index, or buffer length on the last line).
func (d *Document) CursorEnd() {
	cursors := d.Cursors.Cursors()
	for i := range cursors {
		c := &cursors[i]
		c.ClearSelection()
		// line.End is already the index of the line's trailing newline (or
		// len(data) on the last line) — see buffer.Buffer's line-index
		// invariant L2 — so it's exactly the "end of line content" index.
		end := d.Buf.Lines()[c.Coord.Line].End
		c.SetIndex(end, d.Buf)
		c.UpdateIntendedColumn()
	}
	d.Cursors.Changed(d.Buf)
}

// --- selecting variants (spec §4.4: "identical ... but set
// selection_start to the current index before moving if no selection
// exists; clear the selection if the new index equals the selection
// start") ---

func (d *Document) beginSelectIfNeeded() {
	cursors := d.Cursors.Cursors()
	for i := range cursors {
		c := &cursors[i]
		if !c.HasSelection() {
			c.SelectionStart = c.Index
		}
	}
}

func (d *Document) collapseIfBackAtStart() {
	cursors := d.Cursors.Cursors()
	for i := range cursors {
		c := &cursors[i]
		if c.Index == c.SelectionStart {
			c.ClearSelection()
		}
	}
}

func (d *Document) SelectUp() {
	d.beginSelectIfNeeded()
	d.moveVertical(-1, false)
	d.collapseIfBackAtStart()
}

func (d *Document) SelectDown() {
	d.beginSelectIfNeeded()
	d.moveVertical(1, false)
	d.collapseIfBackAtStart()
}

func (d *Document) SelectLeft() {
	d.beginSelectIfNeeded()
	d.moveHorizontal(-1, false)
	d.collapseIfBackAtStart()
}

func (d *Document) SelectRight() {
	d.beginSelectIfNeeded()
	d.moveHorizontal(1, false)
	d.collapseIfBackAtStart()
}

func (d *Document) SelectHome() {
	d.beginSelectIfNeeded()
	cursors := d.Cursors.Cursors()
	for i := range cursors {
		c := &cursors[i]
		lineStart := d.Buf.Lines()[c.Coord.Line].Start
		target := firstNonWhitespace(d.Buf, c.Coord.Line)
		if c.Index == target {
			target = lineStart
		}
		c.SetIndex(target, d.Buf)
		c.UpdateIntendedColumn()
	}
	d.collapseIfBackAtStart()
	d.Cursors.Changed(d.Buf)
}

func (d *Document) SelectEnd() {
	d.beginSelectIfNeeded()
	cursors := d.Cursors.Cursors()
	for i := range cursors {
		c := &cursors[i]
		end := d.Buf.Lines()[c.Coord.Line].End
		c.SetIndex(end, d.Buf)
		c.UpdateIntendedColumn()
	}
	d.collapseIfBackAtStart()
	d.Cursors.Changed(d.Buf)
}

// --- editing ---

// InsertText commits text at every cursor via History, notifies the
// syntax/LSP collaborators of the resulting delta.
func (d *Document) InsertText(s string) {
	d.Hist.CommitInsertText(d.Cursors, s)
}

// RemoveText deletes one byte of content in direction
// (-1 backspace, +1 delete-forward) or the current selections.
func (d *Document) RemoveText(direction int) {
	d.Hist.CommitRemoveText(d.Cursors, direction)
}

// Undo/Redo delegate to History, restoring its returned cursor
// snapshot.
func (d *Document) Undo() error {
	before, err := d.Hist.Undo()
	if err != nil {
		return fmt.Errorf("document: undo: %w", err)
	}
	d.Cursors = before
	return nil
}

func (d *Document) Redo() error {
	after, err := d.Hist.Redo()
	if err != nil {
		return fmt.Errorf("document: redo: %w", err)
	}
	d.Cursors = after
	return nil
}

// --- completion-triggering character entry (spec §4.4) ---

// EnterCharacter types r at every cursor. If r is an LSP completion
// trigger character, it issues a completion request and records
// completion_start_index; if a completion popup is already visible and
// r is a word character, it narrows the existing filter instead of
// re-requesting.
func (d *Document) EnterCharacter(r rune) {
	d.InsertText(string(r))

	d.mu.Lock()
	visible := d.completionVisible
	d.mu.Unlock()

	switch {
	case visible && isWordChar(r):
		// Filtering is driven by re-deriving the prefix from the buffer
		// between completion_start_index and the primary cursor; nothing
		// to store here beyond what TriggerCompletion already set.
	case completionTriggers[r]:
		d.TriggerCompletion()
	}
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// TriggerCompletion issues an explicit completion request at the
// primary cursor and records completion_start_index.
func (d *Document) TriggerCompletion() {
	if d.lsp == nil {
		return
	}
	primary := d.Cursors.Primary()

	d.mu.Lock()
	d.completionStartIndex = primary.Index
	d.mu.Unlock()

	items, err := d.lsp.RequestCompletion(d.URI, primary.Coord)
	if err != nil {
		d.mu.Lock()
		d.completionVisible = false
		d.mu.Unlock()
		return
	}

	d.mu.Lock()
	d.completionItems = items
	d.completionSelected = 0
	d.completionVisible = len(items) > 0
	d.mu.Unlock()
}

// CycleCompletionList advances the selected completion item, wrapping;
// CycleCompletionListReversed moves the other direction.
func (d *Document) CycleCompletionList() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.completionItems) == 0 {
		return
	}
	d.completionSelected = (d.completionSelected + 1) % len(d.completionItems)
}

func (d *Document) CycleCompletionListReversed() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.completionItems) == 0 {
		return
	}
	d.completionSelected = (d.completionSelected - 1 + len(d.completionItems)) % len(d.completionItems)
}

// SelectCompletionItem applies the currently-selected item's TextEdit
// (replacing its range, then applying any additional edits) and closes
// the popup.
func (d *Document) SelectCompletionItem() error {
	d.mu.Lock()
	if len(d.completionItems) == 0 {
		d.mu.Unlock()
		return fmt.Errorf("document: no completion item selected")
	}
	item := d.completionItems[d.completionSelected]
	d.mu.Unlock()

	d.applyTextEdit(item.TextEdit)
	for _, edit := range item.AdditionalEdits {
		d.applyTextEdit(edit)
	}
	d.ClearCompletionItems()
	return nil
}

func (d *Document) applyTextEdit(edit TextEdit) {
	start := d.Buf.CoordToIndex(edit.Start)
	end := d.Buf.CoordToIndex(edit.End)
	d.Hist.CommitReplace(d.Cursors, start, end, edit.Text)
}

// ClearCompletionItems hides the popup and drops its state.
func (d *Document) ClearCompletionItems() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.completionItems = nil
	d.completionSelected = 0
	d.completionVisible = false
}

// CompletionItems returns a snapshot of the current completion list and
// whether the popup should be drawn.
func (d *Document) CompletionItems() ([]CompletionItem, int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	items := make([]CompletionItem, len(d.completionItems))
	copy(items, d.completionItems)
	return items, d.completionSelected, d.completionVisible
}

// SetDiagnostics replaces the diagnostic set (called from the LSP
// publishDiagnostics notification handler).
func (d *Document) SetDiagnostics(diags []Diagnostic) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.diagnostics = diags
}

// Diagnostics returns a snapshot of the current diagnostic set.
func (d *Document) Diagnostics() []Diagnostic {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Diagnostic, len(d.diagnostics))
	copy(out, d.diagnostics)
	return out
}

// SetSignatureHelp stores the most recent signatureHelp response.
func (d *Document) SetSignatureHelp(sig *SignatureHelp) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.signatureHelp = sig
}

// SignatureHelp returns the current signature help, or nil.
func (d *Document) SignatureHelp() *SignatureHelp {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.signatureHelp
}
