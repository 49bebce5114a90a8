package logits

import "errors"

// ErrEmptyRow is returned when a score row has no entries.
var ErrEmptyRow = errors.New("logits: empty score row")

// Selector picks the next token id from one row of scores. Implementations
// other than Greedy (temperature, top-k, top-p) plug in here.
type Selector interface {
	Select(row []float32) (int, error)
}

// SelectorFunc adapts a function to a Selector.
type SelectorFunc func(row []float32) (int, error)

func (f SelectorFunc) Select(row []float32) (int, error) { return f(row) }

// Greedy selects the arg-max of the row. Ties go to the lowest index.
type Greedy struct{}

func (Greedy) Select(row []float32) (int, error) {
	if len(row) == 0 {
		return 0, ErrEmptyRow
	}
	return argmax(row), nil
}

// argmax returns the index of the maximum value in the slice. If the slice is empty it panics.
func argmax(x []float32) int {
	if len(x) == 0 {
		panic("argmax: empty slice")
	}
	bestI := 0
	bestV := x[0]
	for i := 1; i < len(x); i++ {
		if x[i] > bestV {
			bestV = x[i]
			bestI = i
		}
	}
	return bestI
}
