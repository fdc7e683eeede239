// Package mcpserver serves tool backends over the Model Context Protocol.
//
//	reg := backend.NewRegistry()
//	_ = reg.Register(rtool.New("r", runner))
//
//	srv, err := mcpserver.New(ctx, mcpserver.Config{Name: "rexec"}, reg)
//	err = srv.Run(ctx, &mcp.StdioTransport{})
//
// Tool results are returned as JSON text content. Tool errors are reported
// to the client as results with IsError set, not as protocol errors.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jonwraymond/rexec/backend"
)

// Defaults for Config.
const (
	DefaultName    = "rexec"
	DefaultVersion = "dev"
)

// ErrDuplicateTool is returned when two backends expose the same tool name.
var ErrDuplicateTool = errors.New("duplicate tool name")

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

// Config configures a Server.
type Config struct {
	// Name is the implementation name reported to clients.
	// Default: rexec
	Name string

	// Version is the implementation version reported to clients.
	// Default: dev
	Version string

	// IsUserError classifies tool errors for logging. Errors it accepts are
	// logged at warn level, others at error level. Nil treats all as errors.
	IsUserError func(error) bool

	// Logger is an optional logger for tool calls.
	Logger Logger
}

func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Version == "" {
		c.Version = DefaultVersion
	}
}

// Server exposes the tools of every enabled backend in a registry.
//
// Contract:
// - Concurrency: safe for concurrent tool calls if the backends are.
// - Errors: tool failures become IsError results; only setup fails New.
type Server struct {
	cfg      Config
	registry *backend.Registry
	server   *mcp.Server
	tools    []string
}

// New creates a Server and registers the tools of every enabled backend.
func New(ctx context.Context, cfg Config, registry *backend.Registry) (*Server, error) {
	if registry == nil {
		return nil, fmt.Errorf("mcpserver: registry is required")
	}
	cfg.applyDefaults()

	s := &Server{
		cfg:      cfg,
		registry: registry,
		server:   mcp.NewServer(&mcp.Implementation{Name: cfg.Name, Version: cfg.Version}, nil),
	}

	seen := make(map[string]string)
	for _, b := range registry.ListEnabled() {
		tools, err := b.ListTools(ctx)
		if err != nil {
			return nil, fmt.Errorf("mcpserver: list tools of %s: %w", b.Name(), err)
		}
		for _, t := range tools {
			if owner, dup := seen[t.Name]; dup {
				return nil, fmt.Errorf("%w: %s provided by %s and %s", ErrDuplicateTool, t.Name, owner, b.Name())
			}
			seen[t.Name] = b.Name()

			tool := t.Tool
			s.server.AddTool(&tool, s.handler(b, tool.Name))
			s.tools = append(s.tools, tool.Name)
		}
	}
	return s, nil
}

// Tools returns the registered tool names in registration order.
func (s *Server) Tools() []string {
	return append([]string(nil), s.tools...)
}

// MCP returns the underlying SDK server.
func (s *Server) MCP() *mcp.Server {
	return s.server
}

// Run starts the backends, serves t until the client disconnects or ctx is
// done, and stops the backends.
func (s *Server) Run(ctx context.Context, t mcp.Transport) (err error) {
	if err := s.registry.StartAll(ctx); err != nil {
		return err
	}
	defer func() {
		if stopErr := s.registry.StopAll(); stopErr != nil && err == nil {
			err = stopErr
		}
	}()
	if s.cfg.Logger != nil {
		s.cfg.Logger.Info("serving MCP", "name", s.cfg.Name, "tools", len(s.tools))
	}
	return s.server.Run(ctx, t)
}

func (s *Server) handler(b backend.Backend, name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := map[string]any{}
		if raw := req.Params.Arguments; len(raw) > 0 {
			if err := json.Unmarshal(raw, &args); err != nil {
				return errorResult(fmt.Errorf("%w: %v", backend.ErrInvalidArguments, err)), nil
			}
		}

		out, err := b.Execute(ctx, name, args)
		if err != nil {
			s.logToolError(name, err)
			return errorResult(err), nil
		}

		text, err := json.Marshal(out)
		if err != nil {
			s.logToolError(name, err)
			return errorResult(fmt.Errorf("encode %s result: %w", name, err)), nil
		}
		if s.cfg.Logger != nil {
			s.cfg.Logger.Info("tool call", "tool", name, "backend", b.Name())
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(text)}},
		}, nil
	}
}

func (s *Server) logToolError(name string, err error) {
	if s.cfg.Logger == nil {
		return
	}
	if s.cfg.IsUserError != nil && s.cfg.IsUserError(err) {
		s.cfg.Logger.Warn("tool call failed", "tool", name, "error", err)
		return
	}
	s.cfg.Logger.Error("tool call failed", "tool", name, "error", err)
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
	}
}
