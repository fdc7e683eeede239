package rscript

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultRscript is the interpreter looked up on PATH when Config.Rscript is empty.
const DefaultRscript = "Rscript"

// Logger is the interface for logging. *slog.Logger satisfies it.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: logging must be best-effort and must not panic.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config configures a Runner.
type Config struct {
	// Rscript is the interpreter binary.
	// Default: Rscript (uses PATH)
	Rscript string

	// Args are passed to the interpreter before the script path,
	// for example --vanilla.
	Args []string

	// Dir is the working directory of the R process.
	// Default: the current directory of the host.
	Dir string

	// Env adds variables to the inherited environment of the R process.
	Env map[string]string

	// TempDir is where per-run temporary directories are created.
	// Default: os.TempDir()
	TempDir string

	// Timeout bounds each run. Zero means no limit beyond the caller's context.
	Timeout time.Duration

	// OutputEncoding names the character encoding R writes the side channel
	// and data frame files in, such as "windows-1252". Default: UTF-8.
	OutputEncoding string

	// KeepTemp leaves the per-run temporary directory on disk for debugging.
	KeepTemp bool

	// Stdout and Stderr receive the R process output when capture is off.
	// Default: os.Stdout and os.Stderr.
	Stdout io.Writer
	Stderr io.Writer

	// Runner starts the interpreter process.
	// Default: ExecRunner
	Runner CommandRunner

	// Logger is an optional logger for run events.
	Logger Logger
}

// Validate checks option values that cannot be defaulted.
// Returns ErrConfiguration for invalid values.
func (c *Config) Validate() error {
	var issues []string
	if c.Timeout < 0 {
		issues = append(issues, "Timeout must not be negative")
	}
	if c.OutputEncoding != "" {
		if _, err := lookupEncoding(c.OutputEncoding); err != nil {
			issues = append(issues, err.Error())
		}
	}
	for k := range c.Env {
		if k == "" || strings.Contains(k, "=") {
			issues = append(issues, fmt.Sprintf("invalid environment variable name %q", k))
		}
	}
	if len(issues) > 0 {
		return fmt.Errorf("%w: %s", ErrConfiguration, strings.Join(issues, "; "))
	}
	return nil
}

// applyDefaults sets default values for optional fields.
func (c *Config) applyDefaults() {
	if c.Rscript == "" {
		c.Rscript = DefaultRscript
	}
	if c.Stdout == nil {
		c.Stdout = os.Stdout
	}
	if c.Stderr == nil {
		c.Stderr = os.Stderr
	}
	if c.Runner == nil {
		c.Runner = ExecRunner{}
	}
}

// environ returns the process environment, or nil to inherit the host's.
func (c *Config) environ() []string {
	if len(c.Env) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c.Env))
	for k := range c.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	env := os.Environ()
	for _, k := range keys {
		env = append(env, k+"="+c.Env[k])
	}
	return env
}

// lookupEncoding resolves an encoding label. An empty label and UTF-8 labels
// resolve to nil.
func lookupEncoding(name string) (encoding.Encoding, error) {
	if name == "" {
		return nil, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown output encoding %q", name)
	}
	if enc == unicode.UTF8 {
		return nil, nil
	}
	return enc, nil
}
