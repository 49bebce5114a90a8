package inference

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument rejects a request before any inference runs.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInferenceShape marks model output whose shape does not match the
	// configured sequence length and vocabulary size.
	ErrInferenceShape = errors.New("inference shape mismatch")
)

type invalidArgumentError struct {
	msg string
}

func (e invalidArgumentError) Error() string {
	return e.msg
}

func (e invalidArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

func newInvalidArgument(format string, args ...any) error {
	return invalidArgumentError{msg: fmt.Sprintf(format, args...)}
}

// ShapeError reports the expected and actual model output shape. Row is the
// first offending row, or -1 when the row count is wrong.
type ShapeError struct {
	WantRows, WantCols int
	GotRows, GotCols   int
	Row                int
}

func (e *ShapeError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("model returned %d rows, want %d", e.GotRows, e.WantRows)
	}
	return fmt.Sprintf("model row %d has %d scores, want %d", e.Row, e.GotCols, e.WantCols)
}

func (e *ShapeError) Unwrap() error {
	return ErrInferenceShape
}

func checkShape(out [][]float32, rows, cols int) error {
	if len(out) != rows {
		return &ShapeError{WantRows: rows, WantCols: cols, GotRows: len(out), Row: -1}
	}
	for i, row := range out {
		if len(row) != cols {
			return &ShapeError{WantRows: rows, WantCols: cols, GotRows: len(out), GotCols: len(row), Row: i}
		}
	}
	return nil
}
