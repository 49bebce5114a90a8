package inference

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/samcharles93/gpt2gen/internal/logger"
	"github.com/samcharles93/gpt2gen/internal/logits"
	"github.com/samcharles93/gpt2gen/internal/tokenizer"
)

// EngineConfig wires a tokenizer and a model into an EngineImpl.
type EngineConfig struct {
	Tokenizer      tokenizer.Tokenizer
	Model          Model
	Selector       logits.Selector
	SequenceLength int
	// VocabSize is the model's output width. Zero means the tokenizer's
	// vocabulary size when it reports one, else DefaultVocabSize.
	VocabSize int
	Logger    logger.Logger
}

type EngineImpl struct {
	tokenizer tokenizer.Tokenizer
	model     Model
	selector  logits.Selector
	seqLen    int
	vocabSize int
	log       logger.Logger

	// mu serializes model calls; the model is not required to be safe for
	// concurrent use.
	mu sync.Mutex
}

var _ Engine = (*EngineImpl)(nil)

func NewEngine(cfg EngineConfig) (*EngineImpl, error) {
	if cfg.Tokenizer == nil {
		return nil, fmt.Errorf("tokenizer is required")
	}
	if cfg.Model == nil {
		return nil, fmt.Errorf("model is required")
	}
	e := &EngineImpl{
		tokenizer: cfg.Tokenizer,
		model:     cfg.Model,
		selector:  cfg.Selector,
		seqLen:    cfg.SequenceLength,
		vocabSize: cfg.VocabSize,
		log:       cfg.Logger,
	}
	if e.selector == nil {
		e.selector = logits.Greedy{}
	}
	if e.seqLen <= 0 {
		e.seqLen = DefaultSequenceLength
	}
	if e.vocabSize <= 0 {
		e.vocabSize = DefaultVocabSize
		if v, ok := cfg.Tokenizer.(interface{ VocabSize() int }); ok && v.VocabSize() > 0 {
			e.vocabSize = v.VocabSize()
		}
	}
	if e.log == nil {
		e.log = logger.Default()
	}
	return e, nil
}

func (e *EngineImpl) SequenceLength() int { return e.seqLen }
func (e *EngineImpl) VocabSize() int      { return e.vocabSize }

// Tokenizer returns the engine's tokenizer.
func (e *EngineImpl) Tokenizer() tokenizer.Tokenizer { return e.tokenizer }

func (e *EngineImpl) Close() error {
	if e == nil {
		return nil
	}
	var errs []error
	if closer, ok := e.model.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (e *EngineImpl) Generate(ctx context.Context, req *Request, stream StreamFunc) (*Result, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context is required")
	}
	if req == nil {
		return nil, newInvalidArgument("request is required")
	}
	if req.Tokens < 0 {
		return nil, newInvalidArgument("token count must be >= 0, got %d", req.Tokens)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Tokens == 0 {
		return &Result{Text: req.Prompt}, nil
	}

	ids, err := safeEncode(e.tokenizer, req.Prompt)
	if err != nil {
		return nil, fmt.Errorf("encode prompt: %w", err)
	}
	if len(ids) == 0 {
		return nil, newInvalidArgument("prompt encodes to no tokens")
	}

	log := e.log.With("prompt_tokens", len(ids), "tokens", req.Tokens)
	gen := &Generator{
		Model:          e.model,
		Selector:       e.selector,
		Tokenizer:      e.tokenizer,
		SequenceLength: e.seqLen,
		VocabSize:      e.vocabSize,
		Logger:         log,
	}

	e.mu.Lock()
	out, err := gen.Run(ctx, ids, req.Tokens, stream)
	e.mu.Unlock()
	if err != nil {
		log.Warn("generation stopped", "generated", len(out.IDs), "error", err)
		return nil, err
	}

	generated := joinFragments(out.Fragments)
	log.Debug("generation finished", "generated", out.Stats.TokensGenerated, "duration", out.Stats.Duration)
	return &Result{
		Text:      joinOutput(req.Prompt, generated),
		Generated: generated,
		IDs:       out.IDs,
		Stats:     out.Stats,
	}, nil
}

// GenerateText is the single-call surface: prompt in, prompt plus n greedy
// tokens out.
func GenerateText(ctx context.Context, e Engine, text string, n int) (string, error) {
	res, err := e.Generate(ctx, &Request{Prompt: text, Tokens: n}, nil)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// joinFragments trims every decoded token and separates them with a single
// space. Fragments that are only whitespace are dropped.
func joinFragments(fragments []string) string {
	var sb strings.Builder
	for _, f := range fragments {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(f)
	}
	return sb.String()
}

func joinOutput(prompt, generated string) string {
	switch {
	case generated == "":
		return prompt
	case prompt == "":
		return generated
	default:
		return prompt + " " + generated
	}
}

func safeEncode(tok tokenizer.Tokenizer, prompt string) (ids []int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in Encode: %v", rec)
		}
	}()
	return tok.Encode(prompt)
}
