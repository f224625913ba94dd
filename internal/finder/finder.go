// Package finder implements the two-phase file/live-grep picker spec
// §4.12 describes: an enumeration subprocess populates the full
// candidate list once, and each keystroke spawns a fresh filter
// subprocess over that list, discarding (and killing) whatever filter
// was running before. Grounded on the teacher's internal/filesearch
// for gitignore-aware candidate semantics, but rebuilt on top of
// internal/ipc's subprocess model rather than filesearch's direct
// filepath.WalkDir — the spec calls for an external-process pipeline
// (the "IPC twice" architecture), not an in-process walk.
package finder

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/glint-editor/glint/internal/ipc"
)

// Item is one result line plus whatever SelectItem needs to act on it.
type Item struct {
	Line string
}

// SelectionTarget is what a finder resolves a chosen line into — the
// "vtable hook" spec §4.12 calls `SelectItem`: a files finder yields a
// bare path, a live-grep finder yields a path+line+column.
type SelectionTarget struct {
	Path string
	Line int // 1-indexed, 0 if not applicable
	Col  int // 1-indexed, 0 if not applicable
}

// LineParser turns one result line into a SelectionTarget.
type LineParser func(line string) (SelectionTarget, error)

// ParseFilePath is the files-finder LineParser: the line is the path.
func ParseFilePath(line string) (SelectionTarget, error) {
	return SelectionTarget{Path: line}, nil
}

// ParseGrepLine is the live-grep LineParser: "path:line:col:text".
func ParseGrepLine(line string) (SelectionTarget, error) {
	parts := strings.SplitN(line, ":", 4)
	if len(parts) < 3 {
		return SelectionTarget{}, fmt.Errorf("finder: malformed grep line %q", line)
	}
	lineNo, err := strconv.Atoi(parts[1])
	if err != nil {
		return SelectionTarget{}, fmt.Errorf("finder: bad line number in %q: %w", line, err)
	}
	col := 0
	if len(parts) >= 4 {
		if c, err := strconv.Atoi(parts[2]); err == nil {
			col = c
		}
	}
	return SelectionTarget{Path: parts[0], Line: lineNo, Col: col}, nil
}

// Config describes the two commands a Finder spawns.
type Config struct {
	Dir string

	// EnumerateArgv lists candidates to stdout, e.g. {"rg", "--files"}.
	EnumerateArgv []string

	// FilterArgv builds the filter command for the live query, e.g.
	// returning {"fzf", "--filter", query}. The command is fed the
	// enumerated list on stdin and must emit the matching subset to
	// stdout; Finder runs the returned argv as is.
	FilterArgv func(query string) []string

	Parse LineParser
}

// Finder runs the enumerate-once/filter-per-keystroke pipeline and
// exposes the current `total` and `filters` lists (spec §4.12's naming)
// under a mutex, since results arrive on background goroutines while
// the UI thread reads them for drawing.
type Finder struct {
	cfg Config

	mu          sync.Mutex
	total       []string
	filtered    []string
	filterCancel context.CancelFunc
}

// New constructs a Finder; call Enumerate to start phase one.
func New(cfg Config) *Finder {
	return &Finder{cfg: cfg}
}

// Enumerate runs the producer command and collects its stdout lines
// into `total`, dropping empty lines (spec §4.12: "Empty lines are
// dropped").
func (f *Finder) Enumerate(ctx context.Context) error {
	var lines []string
	var mu sync.Mutex

	p, err := ipc.Spawn(ctx, ipc.Options{
		Argv: f.cfg.EnumerateArgv,
		Dir:  f.cfg.Dir,
		OnStdout: func(line string) {
			if line == "" {
				return
			}
			mu.Lock()
			lines = append(lines, line)
			mu.Unlock()
		},
	})
	if err != nil {
		return fmt.Errorf("finder: enumerate: %w", err)
	}
	if err := p.Wait(); err != nil {
		return fmt.Errorf("finder: enumerate exited: %w", err)
	}

	f.mu.Lock()
	f.total = lines
	f.filtered = lines
	f.mu.Unlock()
	return nil
}

// Filter spawns a fresh filter subprocess for query, writes the current
// `total` list followed by EOF, and replaces `filters` with its output.
// Any filter already running for a prior query is cancelled first —
// "each spawn destroys the previous filter IPC" (spec §4.12).
func (f *Finder) Filter(ctx context.Context, query string) error {
	f.mu.Lock()
	if f.filterCancel != nil {
		f.filterCancel()
	}
	total := f.total
	filterCtx, cancel := context.WithCancel(ctx)
	f.filterCancel = cancel
	f.mu.Unlock()

	if f.cfg.FilterArgv == nil {
		f.mu.Lock()
		f.filtered = substringFilter(total, query)
		f.mu.Unlock()
		return nil
	}

	var lines []string
	var mu sync.Mutex

	p, err := ipc.Spawn(filterCtx, ipc.Options{
		Argv: f.cfg.FilterArgv(query),
		Dir:  f.cfg.Dir,
		OnStdout: func(line string) {
			if line == "" {
				return
			}
			mu.Lock()
			lines = append(lines, line)
			mu.Unlock()
		},
	})
	if err != nil {
		return fmt.Errorf("finder: filter: %w", err)
	}
	for _, l := range total {
		if err := p.WriteLine(l + "\n"); err != nil {
			break
		}
	}
	p.CloseStdin()

	if err := p.Wait(); err != nil && filterCtx.Err() == nil {
		return fmt.Errorf("finder: filter exited: %w", err)
	}
	if filterCtx.Err() != nil {
		return nil // superseded by a newer keystroke; not an error
	}

	f.mu.Lock()
	f.filtered = lines
	f.mu.Unlock()
	return nil
}

// substringFilter is the in-process fallback when no external filter
// command is configured (e.g. tests, or a minimal install with no fzf).
func substringFilter(total []string, query string) []string {
	if query == "" {
		return total
	}
	lower := strings.ToLower(query)
	out := make([]string, 0, len(total))
	for _, l := range total {
		if strings.Contains(strings.ToLower(l), lower) {
			out = append(out, l)
		}
	}
	return out
}

// Results returns a snapshot of the current filtered list.
func (f *Finder) Results() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.filtered))
	copy(out, f.filtered)
	return out
}

// Total returns the count of enumerated (unfiltered) candidates.
func (f *Finder) Total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.total)
}

// SelectItem applies the configured LineParser — the "vtable hook"
// spec §4.12 names — to the chosen line.
func (f *Finder) SelectItem(line string) (SelectionTarget, error) {
	if f.cfg.Parse == nil {
		return ParseFilePath(line)
	}
	return f.cfg.Parse(line)
}

// Close cancels any in-flight filter subprocess.
func (f *Finder) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.filterCancel != nil {
		f.filterCancel()
	}
}
