package operations

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes an external command and returns its stdout.
type Runner interface {
	Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	return f(ctx, stdin, name, args...)
}

// ToolError describes a failed external tool run.
type ToolError struct {
	Tool   string
	Stderr string
	Err    error
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ToolError) Unwrap() error {
	return e.Err
}

// ErrNoOutput is returned when a tool exits with an error and writes nothing
// to stdout.
var ErrNoOutput = errors.New("no output")

// ExecRunner runs commands with os/exec.
//
// safety and bandit exit non-zero when they find issues, so a non-zero exit
// is only a failure when stdout is empty.
type ExecRunner struct{}

// Run executes name with args, feeding stdin when it is non-nil.
func (ExecRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		return nil, &ToolError{Tool: name, Stderr: stderr.String(), Err: ctx.Err()}
	}
	if err != nil && stdout.Len() == 0 {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			err = fmt.Errorf("%w (exit %d)", ErrNoOutput, exitErr.ExitCode())
		}
		return nil, &ToolError{Tool: name, Stderr: stderr.String(), Err: err}
	}
	return stdout.Bytes(), nil
}
