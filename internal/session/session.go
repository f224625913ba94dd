// Package session gives the editor shell durable storage for buffer
// checkpoints (content plus history version, not the undo actions) and
// cursor bookmarks, keyed by document URI, so reopening a file can
// restore its last checkpointed content (supplemented feature 3: vmacs'
// in-memory History has no persistence of its own). Bookmarks are stored
// and listed here; the editor shell does not restore them. Grounded
// on the teacher's internal/store.Cache for the SQLite shape — WAL
// pragmas, a nil-receiver-safe no-op contract, and a busy-retry loop
// around writes — adapted from a web-fetch/search result cache to a
// per-document checkpoint/bookmark store.
package session

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // register sqlite driver

	"github.com/glint-editor/glint/internal/text"
)

const schema = `
CREATE TABLE IF NOT EXISTS checkpoints (
	uri       TEXT PRIMARY KEY,
	content   BLOB NOT NULL,
	version   INTEGER NOT NULL,
	updated   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS bookmarks (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	uri      TEXT NOT NULL,
	line     INTEGER NOT NULL,
	col      INTEGER NOT NULL,
	label    TEXT NOT NULL,
	created  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bookmarks_uri ON bookmarks(uri);
`

const (
	busyMaxRetries    = 10
	busyBackoffStepMs = 50
	busyMaxBackoff    = time.Second
)

// Store persists per-document checkpoints and bookmarks in SQLite. A
// nil *Store is valid and every method on it is a safe no-op, so
// callers that run without a session database (or fail to open one) don't
// need a separate "persistence disabled" branch.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Open creates or opens a session database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("session: open %s: %w", path, err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("session: pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("session: create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database. Safe on a nil *Store.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

// IsBusy reports whether err is a SQLite contention error worth
// retrying (the teacher's internal/store.IsSQLiteBusy, unchanged).
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func withRetry(op func() error) error {
	var err error
	for attempt := 0; attempt <= busyMaxRetries; attempt++ {
		err = op()
		if err == nil || !IsBusy(err) || attempt == busyMaxRetries {
			return err
		}
		backoff := time.Duration((attempt+1)*busyBackoffStepMs) * time.Millisecond
		if backoff > busyMaxBackoff {
			backoff = busyMaxBackoff
		}
		time.Sleep(backoff)
	}
	return err
}

// --- Checkpoints ---

// Checkpoint is a saved buffer snapshot for one document.
type Checkpoint struct {
	Content []byte
	Version uint32
	Updated time.Time
}

// SaveCheckpoint records the current buffer content and history
// version for uri, overwriting any prior checkpoint. Safe on a nil
// *Store (no-op). The editor shell registers a CheckpointListener on
// each Document's history.History, whose OnHistoryChanged calls this,
// so every committed edit keeps the on-disk checkpoint current.
func (s *Store) SaveCheckpoint(uri string, content []byte, version uint32) error {
	if s == nil {
		return nil
	}
	return withRetry(func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		_, err := s.db.Exec(
			"INSERT OR REPLACE INTO checkpoints (uri, content, version, updated) VALUES (?, ?, ?, ?)",
			uri, content, version, time.Now().Unix(),
		)
		if err != nil {
			log.Warn().Err(err).Str("uri", uri).Msg("session: failed to save checkpoint")
		}
		return err
	})
}

// LoadCheckpoint returns the most recently saved checkpoint for uri,
// if any. Safe on a nil *Store (always reports a miss).
func (s *Store) LoadCheckpoint(uri string) (Checkpoint, bool, error) {
	if s == nil {
		return Checkpoint{}, false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var cp Checkpoint
	var updated int64
	err := s.db.QueryRow(
		"SELECT content, version, updated FROM checkpoints WHERE uri = ?", uri,
	).Scan(&cp.Content, &cp.Version, &updated)
	if err == sql.ErrNoRows {
		return Checkpoint{}, false, nil
	}
	if err != nil {
		return Checkpoint{}, false, err
	}
	cp.Updated = time.Unix(updated, 0)
	return cp, true, nil
}

// DeleteCheckpoint removes any saved checkpoint for uri. Safe on a nil
// *Store.
func (s *Store) DeleteCheckpoint(uri string) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec("DELETE FROM checkpoints WHERE uri = ?", uri)
	return err
}

// --- Bookmarks ---

// Bookmark is a named cursor position within a document.
type Bookmark struct {
	ID      int64
	URI     string
	Pos     text.Coord
	Label   string
	Created time.Time
}

// AddBookmark records pos under label for uri and returns the new
// bookmark's row ID. Safe on a nil *Store (returns 0, nil).
func (s *Store) AddBookmark(uri string, pos text.Coord, label string) (int64, error) {
	if s == nil {
		return 0, nil
	}
	var id int64
	err := withRetry(func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		res, err := s.db.Exec(
			"INSERT INTO bookmarks (uri, line, col, label, created) VALUES (?, ?, ?, ?, ?)",
			uri, pos.Line, pos.Character, label, time.Now().Unix(),
		)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	return id, err
}

// ListBookmarks returns every bookmark recorded for uri, oldest first.
// Safe on a nil *Store (returns nil, nil).
func (s *Store) ListBookmarks(uri string) ([]Bookmark, error) {
	if s == nil {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		"SELECT id, line, col, label, created FROM bookmarks WHERE uri = ? ORDER BY id", uri,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Bookmark
	for rows.Next() {
		var b Bookmark
		var created int64
		if err := rows.Scan(&b.ID, &b.Pos.Line, &b.Pos.Character, &b.Label, &created); err != nil {
			continue
		}
		b.URI = uri
		b.Created = time.Unix(created, 0)
		out = append(out, b)
	}
	return out, rows.Err()
}

// RemoveBookmark deletes the bookmark with the given row ID. Safe on a
// nil *Store.
func (s *Store) RemoveBookmark(id int64) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec("DELETE FROM bookmarks WHERE id = ?", id)
	return err
}
