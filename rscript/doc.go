// Package rscript runs R scripts with the Rscript interpreter and hands
// @grab-annotated values back to Go.
//
// # Basic Usage
//
//	r, err := rscript.New(rscript.Config{})
//	if err != nil {
//	    // errors.Is(err, rscript.ErrInterpreterNotFound) when R is missing
//	}
//
//	res, err := r.Run(ctx, `
//	# @grab{float}
//	x <- 3.14
//	`, rscript.WithGrab(), rscript.WithCapture())
//
//	x := res.Value().(float64)
//
// # Temporary Files
//
// Every Run creates its own temporary directory holding the script, the
// side-channel file and any data frame CSV files. The directory is removed
// before Run returns, on success and on every error path, so concurrent runs
// never share files.
//
// # Errors
//
//   - [ErrInterpreterNotFound]: returned by [New] when Rscript cannot start
//   - [ErrConfiguration]: WithSave without a path, or an unsupported @grab type
//   - [ErrExecution]: the script exited nonzero; see [ExecutionError]
//   - [ErrParse]: grabbed output could not be decoded
//
// Running a script without @grab markers, or a script whose side channel was
// never written, is not an error: Result.Value returns nil.
package rscript
