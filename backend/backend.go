package backend

import (
	"context"
	"errors"

	"github.com/jonwraymond/toolfoundation/model"
)

// Common errors for backend operations.
var (
	ErrBackendDisabled  = errors.New("backend disabled")
	ErrToolNotFound     = errors.New("tool not found in backend")
	ErrInvalidArguments = errors.New("invalid tool arguments")
)

// Backend defines a source of tools served to MCP clients.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: methods must honor cancellation/deadlines.
// - Errors: use ErrBackendDisabled/ErrToolNotFound/ErrInvalidArguments where applicable.
type Backend interface {
	// Kind returns the backend type (e.g., "rscript").
	Kind() string

	// Name returns the unique instance name for this backend.
	Name() string

	// Enabled returns whether this backend is currently enabled.
	Enabled() bool

	// ListTools returns all tools available from this backend.
	ListTools(ctx context.Context) ([]model.Tool, error)

	// Execute invokes a tool on this backend. The result must be
	// marshalable with encoding/json.
	Execute(ctx context.Context, tool string, args map[string]any) (any, error)

	// Start prepares the backend before tools are served.
	Start(ctx context.Context) error

	// Stop releases backend resources.
	Stop() error
}
