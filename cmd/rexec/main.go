package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jonwraymond/rexec/backend"
	"github.com/jonwraymond/rexec/backend/rtool"
	"github.com/jonwraymond/rexec/grab"
	"github.com/jonwraymond/rexec/mcpserver"
	"github.com/jonwraymond/rexec/rscript"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// exitError carries a process exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	if err := a.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		code := 1
		var ee *exitError
		if errors.As(err, &ee) {
			code = ee.code
		}
		stop()
		os.Exit(code)
	}
}

// app holds the process streams so commands can be tested in-process.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// commandRunner overrides how Rscript is started.
	commandRunner rscript.CommandRunner

	// transport overrides the MCP transport. Default: stdio.
	transport mcp.Transport
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError()
	}

	switch args[0] {
	case "run":
		return a.runCommand(ctx, args[1:])
	case "mcp":
		return a.mcpCommand(ctx, args[1:])
	case "version":
		return a.versionCommand(ctx, args[1:])
	case "-h", "--help", "help":
		fmt.Fprint(a.stdout, usage())
		return nil
	default:
		return usageError()
	}
}

// commonFlags are shared by every subcommand that starts R.
type commonFlags struct {
	configPath string
	rscript    string
	timeout    time.Duration
	verbose    bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "YAML config file")
	fs.StringVar(&c.rscript, "rscript", "", "path to the Rscript binary (default: Rscript on PATH)")
	fs.DurationVar(&c.timeout, "timeout", 0, "maximum run time per script, e.g. 30s (0 means no limit)")
	fs.BoolVar(&c.verbose, "v", false, "verbose logging")
}

func (c *commonFlags) settings() (settings, error) {
	s := defaultSettings()
	if c.configPath != "" {
		if err := loadConfig(c.configPath, &s); err != nil {
			return s, err
		}
	}
	if c.rscript != "" {
		s.runner.Rscript = c.rscript
	}
	if c.timeout != 0 {
		s.runner.Timeout = c.timeout
	}
	if c.verbose {
		s.logLevel = slog.LevelDebug
	}
	return s, nil
}

func (a *app) logger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
}

func (a *app) newRunner(s settings, logger *slog.Logger) (*rscript.Runner, error) {
	cfg := s.runner
	cfg.Logger = logger
	if a.commandRunner != nil {
		cfg.Runner = a.commandRunner
	}
	return rscript.New(cfg)
}

func (a *app) runCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(a.stderr)

	var common commonFlags
	var capture, doGrab, keepTemp bool
	var savePath string
	common.register(fs)
	fs.BoolVar(&capture, "capture", false, "do not stream R output; include it in the JSON result instead")
	fs.BoolVar(&doGrab, "grab", false, "extract @grab-annotated values and print them as JSON")
	fs.StringVar(&savePath, "save", "", "also write the final script to this path")
	fs.BoolVar(&keepTemp, "keep-temp", false, "keep the per-run temporary directory")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected one script path (or - for stdin)\n\n%s", usage())
	}

	code, err := a.readScript(fs.Arg(0))
	if err != nil {
		return err
	}

	s, err := common.settings()
	if err != nil {
		return err
	}
	if keepTemp {
		s.runner.KeepTemp = true
	}
	s.runner.Stdout = a.stdout
	s.runner.Stderr = a.stderr

	r, err := a.newRunner(s, a.logger(s.logLevel))
	if err != nil {
		return err
	}

	var opts []rscript.RunOption
	if capture {
		opts = append(opts, rscript.WithCapture())
	}
	if doGrab {
		opts = append(opts, rscript.WithGrab())
	}
	if savePath != "" {
		opts = append(opts, rscript.WithSave(savePath))
	}

	res, err := r.Run(ctx, code, opts...)
	if err != nil {
		var ee *rscript.ExecutionError
		if errors.As(err, &ee) && ee.ExitCode > 0 {
			return &exitError{code: ee.ExitCode, err: err}
		}
		return err
	}

	if !doGrab && !capture {
		return nil
	}
	return a.printResult(res, doGrab, capture)
}

func (a *app) printResult(res rscript.Result, grabbed, captured bool) error {
	var out any
	switch {
	case grabbed && !captured:
		out = grab.Plain(res.Value())
	default:
		m := map[string]any{
			"stdout":   res.Stdout,
			"stderr":   res.Stderr,
			"exitCode": res.ExitCode,
		}
		if grabbed {
			m["value"] = grab.Plain(res.Value())
		}
		out = m
	}

	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

func (a *app) readScript(path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(a.stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read script: %w", err)
	}
	return string(data), nil
}

func (a *app) mcpCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	fs.SetOutput(a.stderr)

	var common commonFlags
	var name string
	common.register(fs)
	fs.StringVar(&name, "name", "", "server name reported to clients")

	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := common.settings()
	if err != nil {
		return err
	}
	if name != "" {
		s.mcpName = name
	}
	// Stdout belongs to the protocol.
	s.runner.Stdout = a.stderr
	s.runner.Stderr = a.stderr

	logger := a.logger(s.logLevel)
	r, err := a.newRunner(s, logger)
	if err != nil {
		return err
	}

	reg := backend.NewRegistry()
	if err := reg.Register(rtool.New(s.backend, r)); err != nil {
		return err
	}
	srv, err := mcpserver.New(ctx, mcpserver.Config{
		Name:        s.mcpName,
		Version:     version,
		IsUserError: rtool.IsUserError,
		Logger:      logger,
	}, reg)
	if err != nil {
		return err
	}

	t := a.transport
	if t == nil {
		t = &mcp.StdioTransport{}
	}
	if err := srv.Run(ctx, t); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (a *app) versionCommand(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	fs.SetOutput(a.stderr)

	var common commonFlags
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "rexec %s\n", version)

	s, err := common.settings()
	if err != nil {
		return err
	}
	r, err := a.newRunner(s, a.logger(s.logLevel))
	if err != nil {
		fmt.Fprintf(a.stdout, "Rscript: unavailable (%v)\n", err)
		return nil
	}
	fmt.Fprintf(a.stdout, "Rscript: %s\n", r.Version())
	return nil
}

func usageError() error {
	return fmt.Errorf("%s", usage())
}

func usage() string {
	return `rexec - run R scripts and extract @grab-annotated values

Usage:
  rexec run [-grab] [-capture] [-save path] [-keep-temp] [-config file.yaml] [-rscript path] [-timeout dur] [-v] <script.R | ->
  rexec mcp [-name name] [-config file.yaml] [-rscript path] [-timeout dur] [-v]
  rexec version [-rscript path]
`
}
