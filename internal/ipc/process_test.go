package ipc

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestSpawnEchoCapturesStdout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var mu sync.Mutex
	var lines []string

	p, err := Spawn(ctx, Options{
		Argv: []string{"printf", "hello\nworld\n"},
		OnStdout: func(line string) {
			mu.Lock()
			lines = append(lines, line)
			mu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if err := p.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(lines) != 2 || lines[0] != "hello" || lines[1] != "world" {
		t.Errorf("got lines %v", lines)
	}
}

func TestSpawnRejectsEmptyArgv(t *testing.T) {
	_, err := Spawn(context.Background(), Options{})
	if err == nil {
		t.Fatal("expected error for empty argv")
	}
}

func TestWriteLineAfterExitErrors(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p, err := Spawn(ctx, Options{Argv: []string{"true"}})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	p.Wait()

	if err := p.WriteLine("x"); err == nil {
		t.Error("expected write-after-exit to fail")
	}
}

func TestCancelKillsProcess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p, err := Spawn(ctx, Options{Argv: []string{"sleep", "30"}})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	cancel()
	if err := p.Wait(); err == nil {
		t.Error("expected non-nil exit error for a killed process")
	}
	if p.IsRunning() {
		t.Error("expected process to no longer be running")
	}
}
