package rscript

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

const testVersion = "Rscript (R) version 4.3.1 (2023-06-16)"

// fakeRunner stands in for the Rscript process. It answers --version and
// hands every script invocation to onScript.
type fakeRunner struct {
	mu    sync.Mutex
	calls []CommandSpec

	versionErr error
	onScript   func(ctx context.Context, spec CommandSpec, script string) (CommandResult, error)
}

func (f *fakeRunner) Run(ctx context.Context, spec CommandSpec) (CommandResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, spec)
	f.mu.Unlock()

	if len(spec.Args) == 1 && spec.Args[0] == "--version" {
		if f.versionErr != nil {
			return CommandResult{ExitCode: -1}, f.versionErr
		}
		fmt.Fprintln(spec.Stdout, testVersion)
		return CommandResult{}, nil
	}

	scriptPath := spec.Args[len(spec.Args)-1]
	data, err := os.ReadFile(scriptPath)
	if err != nil {
		return CommandResult{ExitCode: -1}, err
	}
	if f.onScript == nil {
		return CommandResult{}, nil
	}
	return f.onScript(ctx, spec, string(data))
}

func (f *fakeRunner) scriptCalls() []CommandSpec {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []CommandSpec
	for _, c := range f.calls {
		if len(c.Args) == 1 && c.Args[0] == "--version" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// writeGrab writes side-channel lines the way the generated R block would.
func writeGrab(spec CommandSpec, lines ...string) error {
	dir := filepath.Dir(spec.Args[len(spec.Args)-1])
	body := strings.Join(lines, "\n") + "\n"
	return os.WriteFile(filepath.Join(dir, outputFileName), []byte(body), 0o600)
}

var csvPathPattern = regexp.MustCompile(`utils::write\.csv\(\.grab_value, file = "([^"]+)"`)

// tablePaths returns the data frame CSV paths named in script.
func tablePaths(script string) []string {
	var paths []string
	for _, m := range csvPathPattern.FindAllStringSubmatch(script, -1) {
		paths = append(paths, m[1])
	}
	return paths
}

// recordLogger records log messages by level.
type recordLogger struct {
	mu    sync.Mutex
	infos []string
	warns []string
	errs  []string
}

func (l *recordLogger) Info(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}

func (l *recordLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *recordLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, msg)
}
