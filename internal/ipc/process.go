// Package ipc spawns and talks to child processes — the collaborator
// model spec §4.10 describes: a process is started with callbacks for
// stdout/stderr lines and a queue for stdin writes, torn down on
// context cancellation. The original (original_source/src/os/unix.cpp,
// src/lsp/process.hpp) does this with fork/execvp, raw pipes, and a
// blocking select loop; this port uses os/exec, io pipes, and one
// goroutine per stream instead, supervised by golang.org/x/sync/errgroup
// rather than a single select(2) call — the idiomatic Go shape for the
// same "read whichever stream is ready, write what's queued" contract.
package ipc

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"golang.org/x/sync/errgroup"
)

// OutputCallback receives one line of output (stdout or stderr) as it
// arrives, without the trailing newline.
type OutputCallback func(line string)

// Options configures a spawned child process, mirroring the original's
// exec_options_t: argv, working directory and output callbacks. It has
// no timeout field; cancelling the context passed to Spawn ends the
// child.
type Options struct {
	// Argv is the executable and its arguments; Argv[0] is resolved via
	// exec.LookPath semantics (no shell is invoked).
	Argv []string
	Dir  string

	OnStdout OutputCallback
	OnStderr OutputCallback

	// SendStdin is not read by Spawn: a stdin pipe is always created.
	// Feed it with Process.WriteLine or Write and end it with
	// CloseStdin.
	SendStdin bool
}

// Process is a running (or exited) child process plus its communication
// channels. The zero value is not usable; construct with Spawn.
type Process struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	writeQ chan string

	mu       sync.Mutex
	running  bool
	stdinEnd bool
	exitErr  error
	done     chan struct{}
}

// Spawn starts the child process described by opt. The returned
// Process's background I/O goroutines run until ctx is done or the
// child exits; cancel ctx to SIGKILL-and-reap it (mirroring the
// original's l_loop_end teardown).
func Spawn(ctx context.Context, opt Options) (*Process, error) {
	if len(opt.Argv) == 0 {
		return nil, fmt.Errorf("ipc: spawn: empty argv")
	}

	cmd := exec.CommandContext(ctx, opt.Argv[0], opt.Argv[1:]...)
	cmd.Dir = opt.Dir
	cmd.Cancel = func() error { return cmd.Process.Kill() }

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ipc: stdout pipe: %w", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("ipc: stderr pipe: %w", err)
	}
	stdinPipe, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("ipc: stdin pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ipc: start %q: %w", opt.Argv[0], err)
	}

	p := &Process{
		cmd:     cmd,
		stdin:   stdinPipe,
		writeQ:  make(chan string, 64),
		running: true,
		done:    make(chan struct{}),
	}

	g, gctx := errgroup.WithContext(ctx)
	// The stdin pump also stops once both output streams reach EOF (the
	// child has exited or closed them), so Wait returns even when the
	// caller never calls CloseStdin.
	stdinCtx, stopStdin := context.WithCancel(gctx)
	var readers errgroup.Group
	readers.Go(func() error { return streamLines(stdoutPipe, opt.OnStdout) })
	readers.Go(func() error { return streamLines(stderrPipe, opt.OnStderr) })
	g.Go(func() error { defer stopStdin(); return readers.Wait() })
	g.Go(func() error { return p.pumpStdin(stdinCtx) })

	go func() {
		ioErr := g.Wait()
		waitErr := cmd.Wait()
		p.mu.Lock()
		p.running = false
		if waitErr != nil {
			p.exitErr = waitErr
		} else {
			p.exitErr = ioErr
		}
		p.mu.Unlock()
		close(p.done)
	}()

	return p, nil
}

// streamLines is the goroutine-per-stream replacement for the
// original's select-loop read: block on the next line, invoke cb,
// repeat until EOF.
func streamLines(r io.Reader, cb OutputCallback) error {
	if cb == nil {
		_, err := io.Copy(io.Discard, r)
		return err
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		cb(scanner.Text())
	}
	return scanner.Err()
}

// pumpStdin is the write side of the original's non-blocking
// cb_stdin: a queue (ThreadSafeQueue in spirit, a buffered channel in
// practice) drains into the child's stdin pipe until the context is
// cancelled or the pipe is closed.
func (p *Process) pumpStdin(ctx context.Context) error {
	defer p.stdin.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-p.writeQ:
			if !ok {
				return nil
			}
			if _, err := io.WriteString(p.stdin, line); err != nil {
				return fmt.Errorf("ipc: write stdin: %w", err)
			}
		}
	}
}

// WriteLine enqueues a line (including any trailing newline the caller
// wants sent) for delivery to the child's stdin. Safe to call from any
// goroutine.
func (p *Process) WriteLine(s string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return fmt.Errorf("ipc: write to exited process")
	}
	if p.stdinEnd {
		return fmt.Errorf("ipc: stdin closed")
	}
	select {
	case p.writeQ <- s:
		return nil
	default:
		return fmt.Errorf("ipc: stdin queue full")
	}
}

// Write implements io.Writer by queuing the given bytes verbatim — used
// by the LSP client to send raw Content-Length-framed messages rather
// than newline-delimited lines.
func (p *Process) Write(b []byte) (int, error) {
	if err := p.WriteLine(string(b)); err != nil {
		return 0, err
	}
	return len(b), nil
}

// CloseStdin stops accepting writes and closes the pipe, signalling EOF
// to the child (many LSP servers and filters treat this as "no more
// input").
func (p *Process) CloseStdin() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stdinEnd {
		return
	}
	p.stdinEnd = true
	close(p.writeQ)
}

// Wait blocks until the process has exited and returns its exit error,
// if any.
func (p *Process) Wait() error {
	<-p.done
	return p.exitErr
}

// IsRunning reports whether the child process is still alive.
func (p *Process) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// PID returns the child's OS process id.
func (p *Process) PID() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}
