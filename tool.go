package sift

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const defaultToolTimeout = 60 * time.Second

// Tool wraps one external filter program. A missing binary is not an error,
// the stage owning the tool skips instead.
type Tool struct {
	Name    string
	Path    string // resolved path, empty when the binary is unavailable
	Args    []string
	Timeout time.Duration
}

// ToolResult carries the exit status and captured output of one invocation.
// A non-zero ExitCode is a tool verdict, not an invocation failure.
type ToolResult struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Out returns stdout as trimmed text.
func (r *ToolResult) Out() string {
	return strings.TrimSpace(string(r.Stdout))
}

// LookupTool resolves cmd against PATH once at startup. Commands containing
// a path separator are probed directly.
func LookupTool(cmd string, args []string, timeout time.Duration) *Tool {
	t := &Tool{Name: filepath.Base(cmd), Args: args, Timeout: timeout}
	if t.Timeout <= 0 {
		t.Timeout = defaultToolTimeout
	}
	if cmd == "" {
		return t
	}
	if path, err := exec.LookPath(cmd); err == nil {
		t.Path = path
	}
	return t
}

// Available reports whether the underlying binary resolved.
func (t *Tool) Available() bool {
	return t != nil && t.Path != ""
}

// Run feeds stdin to the tool and waits for it to finish. A clean non-zero
// exit is reported through ToolResult; an error means the invocation itself
// failed (missing binary, signal, timeout) and callers must treat it as a
// temporary condition, never as an accept and never as a permanent reject.
func (t *Tool) Run(ctx context.Context, stdin io.Reader, extra ...string) (*ToolResult, error) {
	if !t.Available() {
		return nil, fmt.Errorf("%s is not available", t.Name)
	}

	runCtx, cancel := context.WithTimeout(ctx, t.Timeout)
	defer cancel()

	args := make([]string, 0, len(t.Args)+len(extra))
	args = append(args, t.Args...)
	args = append(args, extra...)

	cmd := exec.CommandContext(runCtx, t.Path, args...)
	cmd.Stdin = stdin
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := &ToolResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return res, nil
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%s did not finish within %s", t.Name, t.Timeout)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return nil, fmt.Errorf("%s invocation error: %w", t.Name, err)
}

// Help returns the tool's help output. Tools are expected to print usage on
// -h; the exit status does not matter here.
func (t *Tool) Help(ctx context.Context) string {
	if !t.Available() {
		return ""
	}
	helpCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	out, _ := exec.CommandContext(helpCtx, t.Path, "-h").CombinedOutput()
	return string(out)
}
