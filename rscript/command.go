package rscript

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os/exec"
	"time"
)

// DefaultWaitDelay bounds how long Run waits for output pipes to drain after
// the interpreter is killed.
const DefaultWaitDelay = 5 * time.Second

// CommandSpec describes one interpreter invocation.
type CommandSpec struct {
	Path   string
	Args   []string
	Dir    string
	Env    []string
	Stdout io.Writer
	Stderr io.Writer
}

// CommandResult is the outcome of a process that ran to completion.
type CommandResult struct {
	ExitCode int
}

// CommandRunner starts a process and waits for it.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return ctx.Err() when canceled.
// - Errors: a nonzero exit is reported through CommandResult.ExitCode with a nil
// error; errors are reserved for processes that could not run or were canceled.
type CommandRunner interface {
	Run(ctx context.Context, spec CommandSpec) (CommandResult, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// WaitDelay is passed to exec.Cmd.WaitDelay so a child process that
	// inherited stdout or stderr cannot keep Run blocked after cancellation.
	// Default: DefaultWaitDelay.
	WaitDelay time.Duration
}

var _ CommandRunner = ExecRunner{}

// Run starts spec.Path and waits for it to exit.
func (e ExecRunner) Run(ctx context.Context, spec CommandSpec) (CommandResult, error) {
	cmd := exec.CommandContext(ctx, spec.Path, spec.Args...)
	cmd.WaitDelay = e.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = DefaultWaitDelay
	}
	cmd.Dir = spec.Dir
	cmd.Env = spec.Env
	cmd.Stdout = spec.Stdout
	cmd.Stderr = spec.Stderr

	err := cmd.Run()
	if err == nil {
		return CommandResult{}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return CommandResult{ExitCode: -1}, ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return CommandResult{ExitCode: exitErr.ExitCode()}, nil
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return CommandResult{ExitCode: -1}, fmt.Errorf("%w: %v", ErrInterpreterNotFound, err)
	}
	return CommandResult{ExitCode: -1}, fmt.Errorf("rscript: start %s: %w", spec.Path, err)
}
