package rscript

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jonwraymond/rexec/grab"
)

// Sentinel errors for error classification.
var (
	// ErrInterpreterNotFound indicates Rscript could not be started.
	// New returns it before any script runs.
	ErrInterpreterNotFound = errors.New("rscript: interpreter not found")

	// ErrConfiguration indicates an invalid Config or RunOptions, or an
	// unsupported @grab type. It is the same value as grab.ErrConfiguration.
	ErrConfiguration = grab.ErrConfiguration

	// ErrExecution indicates the R process exited with a nonzero status.
	ErrExecution = errors.New("rscript: execution failed")

	// ErrParse indicates grabbed output that could not be decoded.
	// It is the same value as grab.ErrParse.
	ErrParse = grab.ErrParse
)

// ExecutionError describes an R process that exited with a nonzero status.
// Stdout and Stderr are captured even when streaming to the host was
// requested, so the diagnostics are always available.
type ExecutionError struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Error returns the exit code followed by both captured streams.
func (e *ExecutionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "R script execution failed (exit code=%d)", e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		fmt.Fprintf(&b, "\n--- R stderr ---\n%s", s)
	}
	if s := strings.TrimSpace(e.Stdout); s != "" {
		fmt.Fprintf(&b, "\n--- R stdout ---\n%s", s)
	}
	return b.String()
}

// Is reports whether this error matches the target.
// ExecutionError matches ErrExecution to allow sentinel-style error checking.
func (e *ExecutionError) Is(target error) bool {
	return target == ErrExecution
}

var errSaveWithoutDestination = fmt.Errorf("%w: save requested without a destination path", ErrConfiguration)
