// Command glint is a terminal-based, modal, multi-cursor source code
// editor core with async LSP integration and external-process fuzzy
// finding.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/glint-editor/glint/internal/config"
	"github.com/glint-editor/glint/internal/editor"
	"github.com/glint-editor/glint/internal/lsp"
	"github.com/glint-editor/glint/internal/session"
	"github.com/glint-editor/glint/internal/syntax"
	"github.com/glint-editor/glint/internal/ui/frontend/tty"
)

func main() {
	if err := setupFileLogging(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to set up logging: %v\n", err)
	}

	flagConfig := flag.String("config", "", "path to config.toml (defaults to ~/.config/glint/config.toml)")
	flag.Parse()

	cfg, err := config.Load(resolveConfigPath(*flagConfig))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	registry := buildSyntaxRegistry()
	lspManager := lsp.NewManager(cfg.LanguageServers())
	sessions := openSessionStore()
	if sessions != nil {
		defer sessions.Close()
	}

	e := editor.New(tty.New(), cfg, lspManager, registry, sessions)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if args := flag.Args(); len(args) > 0 {
		if _, err := e.OpenDocument(ctx, args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "error opening %s: %v\n", args[0], err)
			os.Exit(1)
		}
	}

	runErr := e.Run(ctx)
	e.Shutdown(context.Background())
	if runErr != nil && runErr != context.Canceled {
		fmt.Fprintf(os.Stderr, "error: %v\n", runErr)
		os.Exit(1)
	}
}

// buildSyntaxRegistry tries tree-sitter first, falling back to chroma
// for languages its bundled grammar set doesn't cover — spec §4.0's
// "syntax adapter, contract only" scoping, with both real backends
// wired per SPEC_FULL.md's domain stack.
func buildSyntaxRegistry() *syntax.Registry {
	return syntax.NewRegistry(
		syntax.NewTreeSitterHighlighter(syntax.DefaultTheme()),
		syntax.NewChromaHighlighter(),
	)
}

func resolveConfigPath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if dataDir, err := config.DataDir(); err == nil {
		candidate := filepath.Join(dataDir, "config.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func openSessionStore() *session.Store {
	dataDir, err := config.EnsureDataDir()
	if err != nil {
		log.Warn().Err(err).Msg("glint: data dir unavailable, session persistence disabled")
		return nil
	}
	s, err := session.Open(filepath.Join(dataDir, "session.db"))
	if err != nil {
		log.Warn().Err(err).Msg("glint: session store open failed, persistence disabled")
		return nil
	}
	return s
}

func setupFileLogging() error {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	dataDir, err := config.DataDir()
	if err != nil {
		return err
	}

	logDir := filepath.Join(dataDir, "logs")
	if err := os.MkdirAll(logDir, 0750); err != nil {
		return err
	}

	logFile := filepath.Join(logDir, "glint.log")
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	log.Logger = log.Output(file)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	return nil
}
