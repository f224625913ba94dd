package document

import (
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
	"github.com/rs/zerolog/log"
)

// ReconcileContent reconciles the buffer to newContent — the
// supplemented "external file reload" path: the file backing this
// Document changed on disk and the caller wants the buffer to catch up
// without throwing away undo history or notifying the LSP server of a
// single whole-document replace. The old and new full content are
// diffed with gotextdiff's Myers implementation, and each resulting
// hunk is committed individually through History.CommitReplace, so only
// the changed ranges are sent as didChange notifications. The hunks join
// History's current listening action, so one Undo reverts the whole
// reload (together with any earlier edits still in that action).
func (d *Document) ReconcileContent(newContent string) {
	oldContent := string(d.Buf.Bytes())
	if oldContent == newContent {
		return
	}

	uri := span.URIFromPath(d.URI)
	edits := myers.ComputeEdits(uri, oldContent, newContent)
	if len(edits) == 0 {
		return
	}

	if diff := gotextdiff.ToUnified(d.URI, d.URI, oldContent, edits); true {
		log.Debug().Str("uri", d.URI).Str("diff", diff.String()).Msg("document: reconciling external content change")
	}

	// Edits are ordered ascending by position; apply back-to-front so an
	// earlier edit's byte offsets aren't shifted out from under it by a
	// later one still pending application. Myers edits are whole-line
	// hunks positioned by 1-based line number, so each line is mapped to
	// its start offset in the buffer as it stands (the lines before the
	// hunk being applied are still unchanged).
	lineOffset := func(line int) int {
		lines := d.Buf.Lines()
		if line-1 < len(lines) {
			return lines[line-1].Start
		}
		return d.Buf.Len()
	}
	for i := len(edits) - 1; i >= 0; i-- {
		e := edits[i]
		start := lineOffset(e.Span.Start().Line())
		end := lineOffset(e.Span.End().Line())
		d.Hist.CommitReplace(d.Cursors, start, end, e.NewText)
	}
}
