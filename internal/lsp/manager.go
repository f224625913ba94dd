package lsp

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/glint-editor/glint/internal/document"
)

// skipAutoStart lists generic interpreters that should not be
// auto-started as a language server command: running them directly
// would just print their own --help or block waiting on stdin for the
// wrong protocol.
var skipAutoStart = map[string]bool{
	"npx": true, "node": true, "python": true, "python3": true,
	"java": true, "ruby": true, "perl": true, "dotnet": true, "bun": true,
}

// ServerConfig is one `[lsp.<language>]` table of the config file (spec
// §6's config surface has no LSP section of its own; this is the
// natural place supplemented feature grounding puts it — see
// SPEC_FULL.md).
type ServerConfig struct {
	Command     string
	Args        []string
	FileTypes   []string
	RootMarkers []string
}

// Manager owns one Client per language id, starting servers lazily and
// routing their publishDiagnostics notifications to the owning
// Document. Grounded on the teacher's internal/lsp.Manager (same
// lazy-start/broken-server-tracking/root-marker-walk shape), with the
// powernap-specific config/protocol types replaced by this package's
// own ServerConfig and document.Diagnostic.
type Manager struct {
	servers map[string]ServerConfig // language id -> config

	mu      sync.Mutex
	clients map[string]*Client // language id -> running client
	broken  map[string]bool

	docs map[string]*document.Document // uri -> document, for diagnostics routing
}

// NewManager creates a manager over the given per-language server
// table (typically loaded from config).
func NewManager(servers map[string]ServerConfig) *Manager {
	return &Manager{
		servers: servers,
		clients: make(map[string]*Client),
		broken:  make(map[string]bool),
		docs:    make(map[string]*document.Document),
	}
}

// OnPublishDiagnostics implements DiagnosticsListener, routing a
// server's notification to whichever Document owns that URI.
func (m *Manager) OnPublishDiagnostics(uri string, diagnostics []document.Diagnostic) {
	m.mu.Lock()
	doc := m.docs[uri]
	m.mu.Unlock()
	if doc != nil {
		doc.SetDiagnostics(diagnostics)
	}
}

// Open registers doc for diagnostic routing and ensures a server is
// running for its language, starting one on demand.
func (m *Manager) Open(ctx context.Context, doc *document.Document, rootHint string) (*Client, error) {
	m.mu.Lock()
	m.docs[doc.URI] = doc
	m.mu.Unlock()

	return m.ensureClient(ctx, doc.LanguageID, rootHint)
}

// Close forgets the document's diagnostic routing entry (servers stay
// running for other documents of the same language).
func (m *Manager) Close(doc *document.Document) {
	m.mu.Lock()
	delete(m.docs, doc.URI)
	m.mu.Unlock()
}

func (m *Manager) ensureClient(ctx context.Context, languageID, rootHint string) (*Client, error) {
	m.mu.Lock()
	if c, ok := m.clients[languageID]; ok {
		m.mu.Unlock()
		return c, nil
	}
	if m.broken[languageID] {
		m.mu.Unlock()
		return nil, fmt.Errorf("lsp: server for %q previously failed to start", languageID)
	}
	cfg, ok := m.servers[languageID]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("lsp: no server configured for language %q", languageID)
	}
	if skipAutoStart[cfg.Command] {
		return nil, fmt.Errorf("lsp: refusing to auto-start generic interpreter %q", cfg.Command)
	}

	cmdPath, err := lookPath(cfg.Command)
	if err != nil {
		m.mu.Lock()
		m.broken[languageID] = true
		m.mu.Unlock()
		return nil, fmt.Errorf("lsp: locate %q: %w", cfg.Command, err)
	}

	root := findRoot(rootHint, cfg.RootMarkers)
	if root == "" {
		root, _ = os.Getwd()
	}

	initCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	argv := append([]string{cmdPath}, cfg.Args...)
	client, err := Dial(initCtx, argv, root, m)
	if err != nil {
		m.mu.Lock()
		m.broken[languageID] = true
		m.mu.Unlock()
		return nil, fmt.Errorf("lsp: start %q: %w", languageID, err)
	}

	m.mu.Lock()
	m.clients[languageID] = client
	m.mu.Unlock()
	log.Info().Str("language", languageID).Str("root", root).Str("cmd", cmdPath).Msg("lsp: server started")
	return client, nil
}

// StopAll gracefully shuts down every running server.
func (m *Manager) StopAll(ctx context.Context) {
	m.mu.Lock()
	clients := make([]*Client, 0, len(m.clients))
	for _, c := range m.clients {
		clients = append(clients, c)
	}
	m.mu.Unlock()

	for _, c := range clients {
		if err := c.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("lsp: stopAll")
		}
	}
}

// findRoot walks up from path looking for any of markers (a glob
// pattern per entry, e.g. "go.mod", ".git").
func findRoot(path string, markers []string) string {
	if path == "" {
		return ""
	}
	dir := path
	if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
		dir = filepath.Dir(path)
	}
	for {
		for _, marker := range markers {
			if matches, _ := filepath.Glob(filepath.Join(dir, marker)); len(matches) > 0 {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// lookPath resolves command via PATH first, then a handful of
// language-toolchain bin directories PATH commonly omits.
func lookPath(command string) (string, error) {
	if p, err := exec.LookPath(command); err == nil {
		return p, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("lsp: %q not on PATH and no home dir to search: %w", command, err)
	}

	var extras []string
	if gobin := os.Getenv("GOBIN"); gobin != "" {
		extras = append(extras, gobin)
	}
	if gopath := os.Getenv("GOPATH"); gopath != "" {
		extras = append(extras, filepath.Join(gopath, "bin"))
	}
	extras = append(extras,
		filepath.Join(home, "go", "bin"),
		filepath.Join(home, ".cargo", "bin"),
		filepath.Join(home, ".local", "bin"),
	)

	for _, dir := range extras {
		p := filepath.Join(dir, command)
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("lsp: %q not found on PATH or in toolchain bin dirs", command)
}
