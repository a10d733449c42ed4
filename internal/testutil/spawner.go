package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kip-d/omnifocus-mcp-sub005/internal/osa"
)

// Envelope wraps a raw JSON payload in a success envelope the way the
// outer script serializes one.
func Envelope(data string) string {
	return `{"ok":true,"data":` + data + `}`
}

// ErrorEnvelope builds a failure envelope carrying a script-reported
// error.
func ErrorEnvelope(message, context string) string {
	return fmt.Sprintf(`{"ok":false,"error":{"message":%q,"context":%q}}`, message, context)
}

// FakeProcess is a scripted interpreter child.
//
// The zero-ish constructor form covers the common case of a process
// that prints one envelope and exits cleanly; the exported fields
// script the failure modes.
type FakeProcess struct {
	Stdout   string
	Stderr   string
	ExitErr  error // returned from Wait (abnormal exit)
	WriteErr error // returned from WriteScript
	Hang     bool  // never exit until killed

	mu       sync.Mutex
	script   string
	killOnce sync.Once
	killed   chan struct{}
}

// NewFakeProcess creates a process that prints stdout and exits zero.
func NewFakeProcess(stdout string) *FakeProcess {
	return &FakeProcess{Stdout: stdout, killed: make(chan struct{})}
}

// NewHangingProcess creates a process that produces nothing and never
// exits until killed.
func NewHangingProcess() *FakeProcess {
	return &FakeProcess{Hang: true, killed: make(chan struct{})}
}

func (p *FakeProcess) WriteScript(src string) error {
	p.mu.Lock()
	p.script = src
	p.mu.Unlock()
	return p.WriteErr
}

func (p *FakeProcess) Wait() (string, string, error) {
	if p.Hang {
		<-p.killed
		return "", "", errors.New("killed")
	}
	return p.Stdout, p.Stderr, p.ExitErr
}

func (p *FakeProcess) Kill() error {
	p.killOnce.Do(func() { close(p.killed) })
	return nil
}

// Script returns the source last written to stdin.
func (p *FakeProcess) Script() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.script
}

// FakeSpawner hands out scripted processes in order.
//
// Thread-safety: Spawn is safe for concurrent use; concurrent callers
// receive distinct processes.
type FakeSpawner struct {
	mu       sync.Mutex
	procs    []*FakeProcess
	spawnErr error
	spawned  int
}

// NewFakeSpawner creates a spawner that returns the given processes in
// order. Spawning past the end fails, which catches unexpected extra
// executions.
func NewFakeSpawner(procs ...*FakeProcess) *FakeSpawner {
	return &FakeSpawner{procs: procs}
}

// FailSpawn makes every subsequent Spawn return err.
func (s *FakeSpawner) FailSpawn(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spawnErr = err
}

func (s *FakeSpawner) Spawn(ctx context.Context) (osa.Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.spawnErr != nil {
		return nil, s.spawnErr
	}
	if s.spawned >= len(s.procs) {
		return nil, fmt.Errorf("unexpected spawn #%d: only %d processes scripted", s.spawned+1, len(s.procs))
	}
	p := s.procs[s.spawned]
	s.spawned++
	return p, nil
}

// SpawnCount returns how many processes have been handed out.
func (s *FakeSpawner) SpawnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spawned
}
