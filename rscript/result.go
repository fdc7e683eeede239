package rscript

import (
	"time"

	"github.com/jonwraymond/rexec/grab"
)

// Result is the outcome of a successful Run.
type Result struct {
	// Values holds the grabbed values in declaration order.
	Values []any

	// Declarations are the @grab declarations found in the script.
	Declarations []grab.Declaration

	// Stdout and Stderr hold the R process output.
	Stdout string
	Stderr string

	// Captured is true when the output was kept out of the host's streams.
	Captured bool

	// ExitCode is the R process exit status.
	ExitCode int

	// Duration is how long the R process ran.
	Duration time.Duration
}

// Value returns the grabbed result: nil when nothing was grabbed, the value
// itself for a single declaration and a grab.Tuple for several.
func (r Result) Value() any {
	return grab.Collapse(r.Values)
}
