package errors

import (
	"fmt"
	"strings"
)

// MalformedInputError reports input the pipeline refuses to process.
// Line and Column are set when the problem is tied to a single cell.
type MalformedInputError struct {
	Line    int
	Column  string
	Value   string
	Missing []string
	Err     error
}

func (e *MalformedInputError) Error() string {
	switch {
	case len(e.Missing) > 0:
		return fmt.Sprintf("malformed input: %v: %s", e.Err, strings.Join(e.Missing, ", "))
	case e.Line > 0:
		return fmt.Sprintf("malformed input at line %d: %v (column %q, value %q)", e.Line, e.Err, e.Column, e.Value)
	default:
		return fmt.Sprintf("malformed input: %v", e.Err)
	}
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// Define specific error types for better error handling
var (
	ErrMissingColumns    = fmt.Errorf("missing required columns")
	ErrInvalidTimestamp  = fmt.Errorf("invalid timestamp")
	ErrUnreadableInput   = fmt.Errorf("unreadable input")
	ErrUnsupportedFormat = fmt.Errorf("unsupported input format")
	ErrEmptyInput        = fmt.Errorf("empty input")
)
