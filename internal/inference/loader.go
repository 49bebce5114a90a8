package inference

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/samcharles93/gpt2gen/internal/logger"
	"github.com/samcharles93/gpt2gen/internal/logits"
	"github.com/samcharles93/gpt2gen/internal/resource"
	"github.com/samcharles93/gpt2gen/internal/tokenizer"
)

// ModelFactory builds the model once the tokenizer is ready.
type ModelFactory func(vocabSize, sequenceLength int) (Model, error)

// Loader reads the vocabulary and merges resources and assembles an engine.
type Loader struct {
	VocabPath  string
	MergesPath string
	// TokenizerJSONPath, when set, replaces VocabPath and MergesPath with a
	// single HuggingFace tokenizer.json.
	TokenizerJSONPath string
	// Open overrides how resources are opened; defaults to resource.Open.
	Open func(path string) (*resource.File, error)

	NewModel       ModelFactory
	Selector       logits.Selector
	SequenceLength int
	VocabSize      int
	Logger         logger.Logger
}

type LoadResult struct {
	Engine    *EngineImpl
	Tokenizer *tokenizer.GPT2Tokenizer
	Model     Model
	Duration  time.Duration
}

// Load parses both resources concurrently. The first failure cancels the
// other load and nothing is returned.
func (l Loader) Load(ctx context.Context) (*LoadResult, error) {
	tok, err := l.LoadTokenizer(ctx)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	log := l.logger(ctx)

	seqLen := l.SequenceLength
	if seqLen <= 0 {
		seqLen = DefaultSequenceLength
	}
	vocabSize := l.VocabSize
	if vocabSize <= 0 {
		vocabSize = tok.VocabSize()
	}
	if l.NewModel == nil {
		return nil, fmt.Errorf("model factory is required")
	}
	m, err := l.NewModel(vocabSize, seqLen)
	if err != nil {
		return nil, fmt.Errorf("build model: %w", err)
	}

	engine, err := NewEngine(EngineConfig{
		Tokenizer:      tok,
		Model:          m,
		Selector:       l.Selector,
		SequenceLength: seqLen,
		VocabSize:      vocabSize,
		Logger:         log,
	})
	if err != nil {
		return nil, err
	}
	log.Info("engine ready", "vocab_size", vocabSize, "sequence_length", seqLen, "model_setup", time.Since(start))
	return &LoadResult{
		Engine:    engine,
		Tokenizer: tok,
		Model:     m,
		Duration:  time.Since(start),
	}, nil
}

// LoadTokenizer loads only the tokenizer resources.
func (l Loader) LoadTokenizer(ctx context.Context) (*tokenizer.GPT2Tokenizer, error) {
	if strings.TrimSpace(l.TokenizerJSONPath) != "" {
		return l.loadHFTokenizer(ctx)
	}
	if strings.TrimSpace(l.VocabPath) == "" {
		return nil, fmt.Errorf("vocabulary path is required")
	}
	if strings.TrimSpace(l.MergesPath) == "" {
		return nil, fmt.Errorf("merges path is required")
	}
	log := l.logger(ctx)
	start := time.Now()

	var (
		vocab *tokenizer.Vocabulary
		ranks tokenizer.MergeRanks
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := l.loadResource(gctx, l.VocabPath, func(f *resource.File) error {
			var err error
			vocab, err = tokenizer.LoadVocabulary(f.Reader())
			return err
		})
		if err == nil {
			log.Debug("vocabulary loaded", "path", l.VocabPath, "bytes", v, "tokens", vocab.Len())
		}
		return err
	})
	g.Go(func() error {
		v, err := l.loadResource(gctx, l.MergesPath, func(f *resource.File) error {
			var err error
			ranks, err = tokenizer.LoadMergeRanks(f.Reader())
			return err
		})
		if err == nil {
			log.Debug("merges loaded", "path", l.MergesPath, "bytes", v, "pairs", len(ranks))
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tok, err := tokenizer.New(vocab, ranks)
	if err != nil {
		return nil, err
	}
	log.Info("tokenizer loaded", "tokens", vocab.Len(), "merges", len(ranks), "duration", time.Since(start))
	return tok, nil
}

func (l Loader) loadHFTokenizer(ctx context.Context) (*tokenizer.GPT2Tokenizer, error) {
	log := l.logger(ctx)
	start := time.Now()
	var (
		vocab *tokenizer.Vocabulary
		ranks tokenizer.MergeRanks
	)
	size, err := l.loadResource(ctx, l.TokenizerJSONPath, func(f *resource.File) error {
		var err error
		vocab, ranks, err = tokenizer.LoadHFTokenizerJSON(f.Reader())
		return err
	})
	if err != nil {
		return nil, err
	}
	tok, err := tokenizer.New(vocab, ranks)
	if err != nil {
		return nil, err
	}
	log.Info("tokenizer loaded", "path", l.TokenizerJSONPath, "bytes", size, "tokens", vocab.Len(), "merges", len(ranks), "duration", time.Since(start))
	return tok, nil
}

func (l Loader) loadResource(ctx context.Context, path string, parse func(*resource.File) error) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	open := l.Open
	if open == nil {
		open = resource.Open
	}
	f, err := open(path)
	if err != nil {
		return 0, &tokenizer.ResourceError{Resource: path, Err: err}
	}
	defer func() { _ = f.Close() }()
	size := f.Size()
	if err := parse(f); err != nil {
		return size, fmt.Errorf("%s: %w", path, err)
	}
	return size, nil
}

func (l Loader) logger(ctx context.Context) logger.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return logger.FromContext(ctx)
}
