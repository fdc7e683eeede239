package rtool

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/jonwraymond/rexec/backend"
	"github.com/jonwraymond/rexec/grab"
	"github.com/jonwraymond/rexec/rscript"
)

type fakeRunner struct {
	code   string
	opts   rscript.RunOptions
	result rscript.Result
	err    error
}

func (f *fakeRunner) Run(_ context.Context, code string, opts ...rscript.RunOption) (rscript.Result, error) {
	f.code = code
	f.opts = rscript.RunOptions{}
	for _, opt := range opts {
		opt(&f.opts)
	}
	return f.result, f.err
}

func (f *fakeRunner) Version() string { return "R version 4.3.1" }

func TestBackend_Identity(t *testing.T) {
	b := New("r", &fakeRunner{})
	if b.Kind() != Kind || b.Name() != "r" || !b.Enabled() {
		t.Errorf("Kind/Name/Enabled = %q/%q/%v", b.Kind(), b.Name(), b.Enabled())
	}
	if err := b.Start(context.Background()); err != nil {
		t.Errorf("Start() error = %v", err)
	}
	if err := b.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestBackend_ListTools(t *testing.T) {
	b := New("r", &fakeRunner{})
	tools, err := b.ListTools(context.Background())
	if err != nil {
		t.Fatalf("ListTools() error = %v", err)
	}
	if len(tools) != 2 || tools[0].Name != ToolVersion || tools[1].Name != ToolRun {
		t.Fatalf("ListTools() = %+v, want [r_version run_r]", tools)
	}
	run := tools[1]
	if run.Namespace != "r" {
		t.Errorf("Namespace = %q, want r", run.Namespace)
	}
	schema, ok := run.InputSchema.(map[string]any)
	if !ok || schema["type"] != "object" {
		t.Errorf("InputSchema = %#v, want object schema", run.InputSchema)
	}
	if len(run.Tags) == 0 {
		t.Error("run_r should carry tags")
	}
}

func TestBackend_RunR(t *testing.T) {
	fake := &fakeRunner{
		result: rscript.Result{
			Values: []any{3.14, []string{"a", "b"}},
			Declarations: []grab.Declaration{
				{Type: "float", Expr: "x", Line: 1},
				{Type: "list[str]", Expr: "names", Line: 3},
			},
			Stdout:   "[1] 3.14\n",
			Captured: true,
			Duration: 1500 * time.Millisecond,
		},
	}
	b := New("r", fake)

	got, err := b.Execute(context.Background(), ToolRun, map[string]any{"code": "x <- 3.14"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if fake.code != "x <- 3.14" || !fake.opts.Grab || !fake.opts.Capture || fake.opts.Save {
		t.Errorf("runner called with %q, %+v", fake.code, fake.opts)
	}

	out := got.(RunOutput)
	if out.DurationMS != 1500 || out.Stdout != "[1] 3.14\n" {
		t.Errorf("RunOutput = %+v", out)
	}
	if len(out.Declarations) != 2 || out.Declarations[1].Expr != "names" {
		t.Errorf("Declarations = %+v", out.Declarations)
	}

	data, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	want := []any{3.14, []any{"a", "b"}}
	if !reflect.DeepEqual(decoded["value"], want) {
		t.Errorf("value = %#v, want %#v", decoded["value"], want)
	}
}

func TestBackend_RunROptions(t *testing.T) {
	fake := &fakeRunner{}
	b := New("r", fake)

	_, err := b.Execute(context.Background(), ToolRun, map[string]any{
		"code": "x <- 1",
		"grab": false,
		"save": "/tmp/out.R",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if fake.opts.Grab || !fake.opts.Save || fake.opts.Destination != "/tmp/out.R" {
		t.Errorf("options = %+v", fake.opts)
	}
}

func TestBackend_RunRInvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing code", map[string]any{}},
		{"blank code", map[string]any{"code": "  "}},
		{"code not string", map[string]any{"code": 1.0}},
		{"grab not bool", map[string]any{"code": "1", "grab": "yes"}},
		{"save not string", map[string]any{"code": "1", "save": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("r", &fakeRunner{})
			_, err := b.Execute(context.Background(), ToolRun, tt.args)
			if !errors.Is(err, backend.ErrInvalidArguments) {
				t.Errorf("Execute() error = %v, want ErrInvalidArguments", err)
			}
			if !IsUserError(err) {
				t.Error("IsUserError() = false for invalid arguments")
			}
		})
	}
}

func TestBackend_RunRError(t *testing.T) {
	execErr := &rscript.ExecutionError{ExitCode: 1, Stderr: "Error: boom"}
	b := New("r", &fakeRunner{err: execErr})

	_, err := b.Execute(context.Background(), ToolRun, map[string]any{"code": "stop('boom')"})
	if !errors.Is(err, rscript.ErrExecution) {
		t.Fatalf("Execute() error = %v, want ErrExecution", err)
	}
	if !IsUserError(err) {
		t.Error("IsUserError() = false for an execution error")
	}
	if IsUserError(errors.New("disk full")) {
		t.Error("IsUserError() = true for an unrelated error")
	}
}

func TestBackend_Version(t *testing.T) {
	b := New("r", &fakeRunner{})
	got, err := b.Execute(context.Background(), ToolVersion, nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got.(VersionOutput).Version != "R version 4.3.1" {
		t.Errorf("Execute(r_version) = %+v", got)
	}
}

func TestBackend_ExecuteErrors(t *testing.T) {
	b := New("r", &fakeRunner{})
	if _, err := b.Execute(context.Background(), "nope", nil); !errors.Is(err, backend.ErrToolNotFound) {
		t.Errorf("Execute(nope) error = %v, want ErrToolNotFound", err)
	}

	b.SetEnabled(false)
	if _, err := b.Execute(context.Background(), ToolRun, map[string]any{"code": "1"}); !errors.Is(err, backend.ErrBackendDisabled) {
		t.Errorf("Execute() on disabled backend error = %v, want ErrBackendDisabled", err)
	}
}
