package rscript

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonwraymond/rexec/grab"
)

// File names inside each run's temporary directory.
const (
	scriptFileName = "script.R"
	outputFileName = "grab_output.txt"
)

// versionCheckTimeout bounds the startup "Rscript --version" probe.
const versionCheckTimeout = 30 * time.Second

// Runner executes R scripts with Rscript.
//
// Contract:
// - Concurrency: safe for concurrent use; every Run owns its temporary files.
// - Context: cancellation kills the R process and returns ctx.Err().
// - Errors: ErrConfiguration, ErrExecution (*ExecutionError) and ErrParse are
// distinct; temporary files are removed before any return.
type Runner struct {
	cfg     Config
	decoder grab.Decoder
	version string
}

// New creates a Runner and checks that the interpreter starts by running it
// with --version. A missing interpreter returns ErrInterpreterNotFound.
func New(cfg Config) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	enc, err := lookupEncoding(cfg.OutputEncoding)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	r := &Runner{
		cfg:     cfg,
		decoder: grab.Decoder{Encoding: enc, Logger: cfg.Logger},
	}

	ctx, cancel := context.WithTimeout(context.Background(), versionCheckTimeout)
	defer cancel()
	version, err := r.probeVersion(ctx)
	if err != nil {
		return nil, err
	}
	r.version = version
	if cfg.Logger != nil {
		cfg.Logger.Info("rscript ready", "path", cfg.Rscript, "version", version)
	}
	return r, nil
}

// Version returns the first line the interpreter printed for --version.
func (r *Runner) Version() string {
	return r.version
}

func (r *Runner) probeVersion(ctx context.Context) (string, error) {
	var stdout, stderr bytes.Buffer
	res, err := r.cfg.Runner.Run(ctx, CommandSpec{
		Path:   r.cfg.Rscript,
		Args:   []string{"--version"},
		Dir:    r.cfg.Dir,
		Env:    r.cfg.environ(),
		Stdout: &stdout,
		Stderr: &stderr,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInterpreterNotFound, r.cfg.Rscript, err)
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("%w: %s --version exited with code %d", ErrInterpreterNotFound, r.cfg.Rscript, res.ExitCode)
	}
	// Older R versions print the version banner on stderr.
	out := strings.TrimSpace(stdout.String())
	if out == "" {
		out = strings.TrimSpace(stderr.String())
	}
	first, _, _ := strings.Cut(out, "\n")
	return strings.TrimSpace(first), nil
}

// Run executes code with Rscript.
//
// With WithGrab, the script is scanned for @grab declarations, a block that
// serializes them is appended, and the decoded values are returned in
// Result.Values. With WithCapture, R output is kept out of the host's streams.
// With WithSave, the final script is also written to the given path.
func (r *Runner) Run(ctx context.Context, code string, opts ...RunOption) (Result, error) {
	var o RunOptions
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return Result{}, err
	}

	var decls []grab.Declaration
	if o.Grab {
		decls = grab.Scan(code)
		for _, d := range decls {
			if _, err := d.Kind(); err != nil {
				return Result{}, fmt.Errorf("@grab on line %d: %w", d.Line, err)
			}
		}
	}

	dir, err := os.MkdirTemp(r.cfg.TempDir, "rexec-*")
	if err != nil {
		return Result{}, fmt.Errorf("rscript: create temp dir: %w", err)
	}
	defer r.cleanup(dir)
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	outPath := filepath.Join(dir, outputFileName)
	script := code
	if block := grab.Encode(decls, grab.EncodeOptions{OutputPath: outPath, TableDir: dir}); block != "" {
		script = code + "\n\n" + block
	}

	scriptPath := filepath.Join(dir, scriptFileName)
	if err := os.WriteFile(scriptPath, []byte(script), 0o600); err != nil {
		return Result{}, fmt.Errorf("rscript: write script: %w", err)
	}
	if o.Save {
		if err := os.WriteFile(o.Destination, []byte(script), 0o644); err != nil {
			return Result{}, fmt.Errorf("rscript: save script to %s: %w", o.Destination, err)
		}
	}

	result, err := r.execute(ctx, scriptPath, o.Capture)
	result.Declarations = decls
	if err != nil {
		return result, err
	}
	if !o.Grab || len(decls) == 0 {
		return result, nil
	}

	lines, found, err := r.decoder.ReadFile(outPath)
	if err != nil {
		return result, err
	}
	if !found {
		if r.cfg.Logger != nil {
			r.cfg.Logger.Warn("no grab output produced", "declarations", len(decls))
		}
		return result, nil
	}

	decoder := r.decoder
	decoder.KeepTables = r.cfg.KeepTemp
	values, err := decoder.Decode(decls, lines)
	if err != nil {
		return result, err
	}
	result.Values = values
	return result, nil
}

func (r *Runner) execute(ctx context.Context, scriptPath string, capture bool) (Result, error) {
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	outW, errW := io.Writer(&stdout), io.Writer(&stderr)
	if !capture {
		outW = io.MultiWriter(&stdout, r.cfg.Stdout)
		errW = io.MultiWriter(&stderr, r.cfg.Stderr)
	}

	args := append(append([]string(nil), r.cfg.Args...), scriptPath)
	if r.cfg.Logger != nil {
		r.cfg.Logger.Info("running R script", "path", r.cfg.Rscript, "script", scriptPath, "capture", capture)
	}

	start := time.Now()
	res, err := r.cfg.Runner.Run(ctx, CommandSpec{
		Path:   r.cfg.Rscript,
		Args:   args,
		Dir:    r.cfg.Dir,
		Env:    r.cfg.environ(),
		Stdout: outW,
		Stderr: errW,
	})
	result := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Captured: capture,
		ExitCode: res.ExitCode,
		Duration: time.Since(start),
	}
	if err != nil {
		return result, err
	}
	if res.ExitCode != 0 {
		if r.cfg.Logger != nil {
			r.cfg.Logger.Error("R script failed", "exitCode", res.ExitCode, "duration", result.Duration)
		}
		return result, &ExecutionError{
			ExitCode: res.ExitCode,
			Stdout:   result.Stdout,
			Stderr:   result.Stderr,
		}
	}
	return result, nil
}

func (r *Runner) cleanup(dir string) {
	if r.cfg.KeepTemp {
		if r.cfg.Logger != nil {
			r.cfg.Logger.Info("keeping temp dir", "dir", dir)
		}
		return
	}
	if err := os.RemoveAll(dir); err != nil && r.cfg.Logger != nil {
		r.cfg.Logger.Warn("failed to remove temp dir", "dir", dir, "error", err)
	}
}
