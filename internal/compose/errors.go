package compose

import "fmt"

// RenderError reports a failed composition step (open, decode, font, encode).
type RenderError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *RenderError) Unwrap() error {
	return e.Err
}

func renderErr(op string, err error) error {
	return &RenderError{Op: op, Err: err}
}
