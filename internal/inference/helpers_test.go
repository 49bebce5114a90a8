package inference

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// recordingModel favors, at each position, the id one above the input id at
// that position, and records every input it receives.
type recordingModel struct {
	mu        sync.Mutex
	vocab     int
	seqLen    int
	inputs    [][]int32
	onInfer   func(call int)
	rowsShort bool
}

func (m *recordingModel) Infer(_ context.Context, input []int32) ([][]float32, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, append([]int32(nil), input...))
	call := len(m.inputs)
	m.mu.Unlock()
	if m.onInfer != nil {
		m.onInfer(call)
	}
	if len(input) != m.seqLen {
		return nil, fmt.Errorf("input length %d, want %d", len(input), m.seqLen)
	}
	out := make([][]float32, len(input))
	for i, id := range input {
		row := make([]float32, m.vocab)
		row[(int(id)+1)%m.vocab] = 1
		out[i] = row
	}
	return out, nil
}

func (m *recordingModel) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inputs)
}

// constModel returns the same score rows for every call.
type constModel struct {
	rows  [][]float32
	count int
}

func newConstModel(seqLen, vocab, favorite int) *constModel {
	rows := make([][]float32, seqLen)
	for i := range rows {
		rows[i] = make([]float32, vocab)
		rows[i][favorite] = 1
	}
	return &constModel{rows: rows}
}

func (m *constModel) Infer(context.Context, []int32) ([][]float32, error) {
	m.count++
	return m.rows, nil
}

// idTokenizer encodes whitespace separated integers and decodes id n as " tN".
type idTokenizer struct{}

func (idTokenizer) Encode(text string) ([]int, error) {
	var ids []int
	for _, f := range strings.Fields(text) {
		var id int
		if _, err := fmt.Sscanf(f, "%d", &id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (idTokenizer) Decode(ids []int) (string, error) {
	var sb strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&sb, " t%d", id)
	}
	return sb.String(), nil
}

func (idTokenizer) VocabSize() int { return 16 }
