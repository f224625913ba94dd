package session

import "github.com/glint-editor/glint/internal/history"

// CheckpointListener implements history.Listener, saving a fresh
// checkpoint to a Store on every committed edit/undo/redo. The editor
// shell registers one per open Document via Hist.AddListener, so an
// on-disk checkpoint always reflects the last committed History
// action without the editor having to poll anything.
type CheckpointListener struct {
	Store   *Store
	URI     string
	Content func() []byte
	Version func() uint32
}

// OnHistoryChanged implements history.Listener.
func (l *CheckpointListener) OnHistoryChanged(changes []history.DocChange) {
	if l.Store == nil {
		return
	}
	if err := l.Store.SaveCheckpoint(l.URI, l.Content(), l.Version()); err != nil {
		// SaveCheckpoint already logs; a failed checkpoint write just
		// means crash recovery falls back to the on-disk file, not a
		// reason to interrupt the edit that triggered it.
		_ = err
	}
}
