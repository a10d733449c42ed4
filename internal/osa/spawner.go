package osa

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
)

// Spawner produces interpreter subprocesses. The production
// implementation shells out to osascript; tests inject stubs.
type Spawner interface {
	Spawn(ctx context.Context) (Process, error)
}

// Process is one spawned interpreter child with writable stdin and
// captured stdout/stderr.
//
// Contract: after Kill returns, Wait must unblock promptly. The engine
// relies on this to reap timed-out children without hanging.
type Process interface {
	// WriteScript writes the script to stdin and closes the stream.
	WriteScript(src string) error
	// Wait blocks until the child exits and returns captured output.
	Wait() (stdout, stderr string, err error)
	// Kill forcibly terminates the child.
	Kill() error
}

// OsascriptSpawner spawns the macOS osascript interpreter in JXA mode,
// reading the program from stdin.
type OsascriptSpawner struct {
	Path string
	Args []string
}

// NewOsascriptSpawner returns a spawner for "osascript -l JavaScript -".
func NewOsascriptSpawner() *OsascriptSpawner {
	return &OsascriptSpawner{
		Path: "osascript",
		Args: []string{"-l", "JavaScript", "-"},
	}
}

// Spawn starts one interpreter child bound to ctx. Context cancellation
// kills the child, so an engine deadline always terminates the process
// even if Kill is never called explicitly.
func (s *OsascriptSpawner) Spawn(ctx context.Context) (Process, error) {
	cmd := exec.CommandContext(ctx, s.Path, s.Args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("open stdin pipe: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", s.Path, err)
	}

	return &osaProcess{cmd: cmd, stdin: stdin, stdout: &stdout, stderr: &stderr}, nil
}

type osaProcess struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func (p *osaProcess) WriteScript(src string) error {
	if _, err := io.WriteString(p.stdin, src); err != nil {
		_ = p.stdin.Close()
		return fmt.Errorf("write script to stdin: %w", err)
	}
	if err := p.stdin.Close(); err != nil {
		return fmt.Errorf("close stdin: %w", err)
	}
	return nil
}

func (p *osaProcess) Wait() (string, string, error) {
	err := p.cmd.Wait()
	// Buffers are written by Wait's copying goroutines; reading them
	// after Wait returns is race-free.
	return p.stdout.String(), p.stderr.String(), err
}

func (p *osaProcess) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}
