// Package backend defines the tool backend abstraction served over MCP.
//
// A Backend groups related tools under a name and executes them by tool
// name with JSON-decoded arguments:
//
//	tools, _ := b.ListTools(ctx)
//	out, err := b.Execute(ctx, "run_r", map[string]any{"code": "x <- 1"})
//
// The rtool subpackage provides the R backend; mcpserver exposes any set of
// backends through the Model Context Protocol.
package backend
