package grab

import (
	"errors"
	"fmt"
)

// Sentinel errors for error classification.
var (
	// ErrConfiguration indicates an unknown declared type or list element type.
	ErrConfiguration = errors.New("configuration error")

	// ErrParse indicates a side-channel line that could not be decoded.
	ErrParse = errors.New("parse error")

	// ErrTypeMismatch indicates a tagged line whose shape cannot satisfy the
	// declared type, such as a matrix grabbed as int.
	ErrTypeMismatch = errors.New("type mismatch")
)

// ParseError describes a side-channel line that failed to decode.
type ParseError struct {
	// Line is the offending side-channel line.
	Line string

	// Message describes the failure.
	Message string

	// Err is the underlying conversion error, if any.
	Err error
}

// Error returns the message followed by the offending line.
func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("grab: %s: %v (line %q)", e.Message, e.Err, e.Line)
	}
	return fmt.Sprintf("grab: %s (line %q)", e.Message, e.Line)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is reports whether this error matches the target.
// ParseError matches ErrParse to allow sentinel-style error checking.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ShapeError reports a matrix whose element count disagrees with its shape.
type ShapeError struct {
	Line     string
	Rows     int
	Cols     int
	Elements int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("grab: matrix data does not match shape %dx%d: got %d elements (line %q)",
		e.Rows, e.Cols, e.Elements, e.Line)
}

// Is reports whether this error matches the target.
func (e *ShapeError) Is(target error) bool {
	return target == ErrParse
}

func parseErr(line, msg string, err error) error {
	return &ParseError{Line: line, Message: msg, Err: err}
}
