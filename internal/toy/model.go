// Package toy provides a deterministic stand-in for the trained network so
// the generation pipeline can run end to end without model weights.
package toy

import (
	"context"
	"fmt"
	"math/rand"
)

// ToyLM is a minimal language model. It consists of an embedding matrix, a
// weight matrix projecting hidden activations back to vocab logits, and a
// bias vector. Every position is scored independently from its own input id.
type ToyLM struct {
	Vocab  int
	Hidden int
	SeqLen int

	Emb  []float32 // [Vocab x Hidden]
	W    []float32 // [Hidden x Vocab]
	Bias []float32 // [Vocab]
}

// NewToyLM builds a model with weights derived from seed.
func NewToyLM(vocab, hidden, seqLen int, seed int64) (*ToyLM, error) {
	if vocab <= 0 || hidden <= 0 || seqLen <= 0 {
		return nil, fmt.Errorf("toy model: invalid shape vocab=%d hidden=%d seq=%d", vocab, hidden, seqLen)
	}
	m := &ToyLM{
		Vocab:  vocab,
		Hidden: hidden,
		SeqLen: seqLen,
		Emb:    make([]float32, vocab*hidden),
		W:      make([]float32, hidden*vocab),
		Bias:   make([]float32, vocab),
	}
	fillRand(m.Emb, seed+11)
	fillRand(m.W, seed+23)
	return m, nil
}

// Infer returns SeqLen rows of Vocab logits. Rows for repeated ids (such as
// padding) share one slice; callers must treat the result as read-only.
func (m *ToyLM) Infer(ctx context.Context, input []int32) ([][]float32, error) {
	if len(input) != m.SeqLen {
		return nil, fmt.Errorf("toy model: input length %d, want %d", len(input), m.SeqLen)
	}
	out := make([][]float32, len(input))
	rows := make(map[int32][]float32)
	for i, tok := range input {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, ok := rows[tok]
		if !ok {
			row = m.Forward(int(tok))
			rows[tok] = row
		}
		out[i] = row
	}
	return out, nil
}

// Forward computes the logits for a single token. Out-of-range ids are
// reduced modulo Vocab.
func (m *ToyLM) Forward(tok int) []float32 {
	tok %= m.Vocab
	if tok < 0 {
		tok += m.Vocab
	}
	h := m.Emb[tok*m.Hidden : (tok+1)*m.Hidden]
	logits := make([]float32, m.Vocab)
	copy(logits, m.Bias)
	for i, hv := range h {
		w := m.W[i*m.Vocab : (i+1)*m.Vocab]
		for j, wv := range w {
			logits[j] += hv * wv
		}
	}
	return logits
}

func fillRand(data []float32, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	for i := range data {
		data[i] = (rng.Float32() - 0.5) * 0.02
	}
}
