// Package rtool exposes an rscript.Runner as a tool backend.
//
// It serves two tools:
//
//   - run_r: run R code and return its output and @grab values as JSON
//   - r_version: report the interpreter version
//
// Output is always captured, since the host's standard streams may carry a
// protocol such as MCP over stdio.
package rtool

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jonwraymond/toolfoundation/model"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jonwraymond/rexec/backend"
	"github.com/jonwraymond/rexec/grab"
	"github.com/jonwraymond/rexec/rscript"
)

// Kind is the backend kind reported by Backend.Kind.
const Kind = "rscript"

// Tool names.
const (
	ToolRun     = "run_r"
	ToolVersion = "r_version"
)

// Runner is the subset of *rscript.Runner the backend needs.
type Runner interface {
	Run(ctx context.Context, code string, opts ...rscript.RunOption) (rscript.Result, error)
	Version() string
}

var _ Runner = (*rscript.Runner)(nil)

// HandlerFunc is the function signature for tool handlers.
type HandlerFunc func(ctx context.Context, args map[string]any) (any, error)

type toolDef struct {
	tool    mcp.Tool
	tags    []string
	handler HandlerFunc
}

// Backend implements backend.Backend over an R runner.
type Backend struct {
	name   string
	runner Runner
	tools  map[string]toolDef

	mu      sync.RWMutex
	enabled bool
}

var _ backend.Backend = (*Backend)(nil)

// New creates an R backend named name.
func New(name string, runner Runner) *Backend {
	b := &Backend{
		name:    name,
		runner:  runner,
		enabled: true,
	}
	b.tools = map[string]toolDef{
		ToolRun: {
			tool: mcp.Tool{
				Name:        ToolRun,
				Title:       "Run R code",
				Description: "Runs an R script with Rscript. Values annotated with a '# @grab{TYPE}' comment on the line before an assignment are returned in 'values'. TYPE is one of float, int, str, list[int], list[float], list[str], np.ndarray or pd.DataFrame.",
				InputSchema: runInputSchema,
				Annotations: &mcp.ToolAnnotations{OpenWorldHint: boolPtr(false)},
			},
			tags:    []string{"R", "statistics", "script"},
			handler: b.runR,
		},
		ToolVersion: {
			tool: mcp.Tool{
				Name:        ToolVersion,
				Title:       "R version",
				Description: "Reports the version of the Rscript interpreter.",
				InputSchema: map[string]any{"type": "object"},
				Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
			},
			tags:    []string{"R"},
			handler: b.version,
		},
	}
	return b
}

var runInputSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"code": map[string]any{
			"type":        "string",
			"description": "R source code to run.",
		},
		"grab": map[string]any{
			"type":        "boolean",
			"description": "Extract @grab-annotated values. Default true.",
		},
		"save": map[string]any{
			"type":        "string",
			"description": "Optional path to save the final script to.",
		},
	},
	"required": []any{"code"},
}

// Kind returns the backend kind.
func (b *Backend) Kind() string {
	return Kind
}

// Name returns the backend instance name.
func (b *Backend) Name() string {
	return b.name
}

// Enabled returns whether the backend is enabled.
func (b *Backend) Enabled() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.enabled
}

// SetEnabled enables or disables the backend.
func (b *Backend) SetEnabled(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enabled = enabled
}

// ListTools returns the backend's tools sorted by name.
func (b *Backend) ListTools(_ context.Context) ([]model.Tool, error) {
	out := make([]model.Tool, 0, len(b.tools))
	for _, def := range b.tools {
		out = append(out, model.Tool{
			Tool:      def.tool,
			Namespace: b.name,
			Tags:      model.NormalizeTags(def.tags),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Execute invokes a tool handler.
func (b *Backend) Execute(ctx context.Context, tool string, args map[string]any) (any, error) {
	if !b.Enabled() {
		return nil, backend.ErrBackendDisabled
	}
	def, ok := b.tools[tool]
	if !ok {
		return nil, fmt.Errorf("%w: %s", backend.ErrToolNotFound, tool)
	}
	return def.handler(ctx, args)
}

// Start is a no-op; the interpreter is checked when the Runner is created.
func (b *Backend) Start(_ context.Context) error {
	return nil
}

// Stop is a no-op.
func (b *Backend) Stop() error {
	return nil
}

// RunOutput is the result of the run_r tool.
type RunOutput struct {
	// Value is the collapsed grab result: null, a single value or an array.
	Value any `json:"value"`

	// Values holds every grabbed value in declaration order.
	Values []any `json:"values"`

	// Declarations lists the @grab markers found in the script.
	Declarations []Declaration `json:"declarations,omitempty"`

	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	ExitCode   int    `json:"exitCode"`
	DurationMS int64  `json:"durationMs"`
}

// Declaration describes one @grab marker.
type Declaration struct {
	Type string `json:"type"`
	Expr string `json:"expr"`
	Line int    `json:"line"`
}

// VersionOutput is the result of the r_version tool.
type VersionOutput struct {
	Version string `json:"version"`
}

func (b *Backend) runR(ctx context.Context, args map[string]any) (any, error) {
	code, err := stringArg(args, "code", "")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: code is required", backend.ErrInvalidArguments)
	}
	doGrab, err := boolArg(args, "grab", true)
	if err != nil {
		return nil, err
	}
	save, err := stringArg(args, "save", "")
	if err != nil {
		return nil, err
	}

	opts := []rscript.RunOption{rscript.WithCapture()}
	if doGrab {
		opts = append(opts, rscript.WithGrab())
	}
	if save != "" {
		opts = append(opts, rscript.WithSave(save))
	}

	res, err := b.runner.Run(ctx, code, opts...)
	if err != nil {
		return nil, err
	}

	out := RunOutput{
		Value:      grab.Plain(res.Value()),
		Values:     make([]any, len(res.Values)),
		Stdout:     res.Stdout,
		Stderr:     res.Stderr,
		ExitCode:   res.ExitCode,
		DurationMS: res.Duration.Milliseconds(),
	}
	for i, v := range res.Values {
		out.Values[i] = grab.Plain(v)
	}
	for _, d := range res.Declarations {
		out.Declarations = append(out.Declarations, Declaration{Type: d.Type, Expr: d.Expr, Line: d.Line})
	}
	return out, nil
}

func (b *Backend) version(_ context.Context, _ map[string]any) (any, error) {
	return VersionOutput{Version: b.runner.Version()}, nil
}

func stringArg(args map[string]any, key, def string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", backend.ErrInvalidArguments, key, v)
	}
	return s, nil
}

func boolArg(args map[string]any, key string, def bool) (bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}
	bv, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s must be a boolean, got %T", backend.ErrInvalidArguments, key, v)
	}
	return bv, nil
}

func boolPtr(v bool) *bool {
	return &v
}

// IsUserError reports whether err was caused by the script or its arguments
// rather than by the backend itself.
func IsUserError(err error) bool {
	return errors.Is(err, backend.ErrInvalidArguments) ||
		errors.Is(err, rscript.ErrConfiguration) ||
		errors.Is(err, rscript.ErrExecution) ||
		errors.Is(err, rscript.ErrParse)
}
