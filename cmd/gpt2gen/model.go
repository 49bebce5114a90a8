package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/samcharles93/gpt2gen/internal/inference"
	"github.com/samcharles93/gpt2gen/internal/logger"
	"github.com/samcharles93/gpt2gen/internal/toy"
)

// toyModelFactory builds the stand-in network, either from a weights file or
// from seeded random weights.
func toyModelFactory(weights string, seed int64, hidden int) inference.ModelFactory {
	return func(vocab, seqLen int) (inference.Model, error) {
		if weights == "" {
			return toy.NewToyLM(vocab, hidden, seqLen, seed)
		}
		m, err := toy.LoadFile(weights, seqLen)
		if err != nil {
			return nil, err
		}
		if m.Vocab != vocab {
			return nil, fmt.Errorf("weights %s have %d outputs, want %d", weights, m.Vocab, vocab)
		}
		return m, nil
	}
}

func newLoader(ctx context.Context) (inference.Loader, error) {
	loader := inference.Loader{
		NewModel:       toyModelFactory(weightsPath, toySeed, toyHidden),
		SequenceLength: sequenceLength,
		VocabSize:      vocabSize,
		Logger:         logger.FromContext(ctx),
	}
	if path := strings.TrimSpace(tokenizerJSON); path != "" {
		loader.TokenizerJSONPath = filepath.Clean(path)
		return loader, nil
	}
	vocab, merges, err := resolveResources()
	if err != nil {
		return inference.Loader{}, err
	}
	loader.VocabPath = vocab
	loader.MergesPath = merges
	return loader, nil
}
