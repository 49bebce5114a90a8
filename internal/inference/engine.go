package inference

import (
	"context"
	"fmt"
	"time"

	"github.com/samcharles93/gpt2gen/internal/logger"
	"github.com/samcharles93/gpt2gen/internal/logits"
)

// Generator runs the autoregressive loop for one request. It owns no state
// between runs; each Run builds its own Window.
type Generator struct {
	Model     Model
	Selector  logits.Selector
	Tokenizer interface {
		Decode([]int) (string, error)
	}
	SequenceLength int
	VocabSize      int
	Logger         logger.Logger
}

// Output is the raw result of a Run.
type Output struct {
	IDs       []int
	Fragments []string
	Stats     Stats
}

// Run generates exactly steps tokens after promptIDs. The context is checked
// before every step; on cancellation the tokens produced so far are returned
// along with the context error.
func (g *Generator) Run(ctx context.Context, promptIDs []int, steps int, stream StreamFunc) (*Output, error) {
	seqLen := g.SequenceLength
	if seqLen <= 0 {
		seqLen = DefaultSequenceLength
	}
	vocabSize := g.VocabSize
	if vocabSize <= 0 {
		vocabSize = DefaultVocabSize
	}
	log := g.Logger
	if log == nil {
		log = logger.FromContext(ctx)
	}

	out := &Output{
		IDs:       make([]int, 0, max(steps, 0)),
		Fragments: make([]string, 0, max(steps, 0)),
	}
	out.Stats.PromptTokens = len(promptIDs)

	win := NewWindow(seqLen, promptIDs)
	input := make([]int32, seqLen)
	start := time.Now()
	defer func() {
		out.Stats.Duration = time.Since(start)
		if out.Stats.Duration.Seconds() > 0 {
			out.Stats.TPS = float64(out.Stats.TokensGenerated) / out.Stats.Duration.Seconds()
		}
	}()

	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		input = win.Input(input, PadID)
		pos := win.Position()
		if pos < 0 {
			return out, newInvalidArgument("step %d: empty context window", i)
		}

		scores, err := safeInfer(ctx, g.Model, input)
		out.Stats.InferCalls++
		if err != nil {
			return out, fmt.Errorf("inference error during generation step %d: %w", i, err)
		}
		if err := checkShape(scores, seqLen, vocabSize); err != nil {
			return out, fmt.Errorf("generation step %d: %w", i, err)
		}

		next, err := safeSelect(g.Selector, scores[pos])
		if err != nil {
			return out, fmt.Errorf("select at step %d: %w", i, err)
		}
		win.Push(next)

		frag, err := safeDecode(g.Tokenizer, next)
		if err != nil {
			return out, fmt.Errorf("decode token %d at step %d: %w", next, i, err)
		}
		out.IDs = append(out.IDs, next)
		out.Fragments = append(out.Fragments, frag)
		out.Stats.TokensGenerated++

		log.Debug("generated token", "step", i, "id", next, "position", pos, "window", win.Len())
		if stream != nil {
			stream(Step{Index: i, ID: next, Position: pos, Fragment: frag})
		}
	}
	return out, nil
}

func safeInfer(ctx context.Context, m Model, input []int32) (out [][]float32, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in Infer: %v", rec)
		}
	}()
	return m.Infer(ctx, input)
}

func safeSelect(s logits.Selector, row []float32) (id int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in Select: %v", rec)
		}
	}()
	return s.Select(row)
}

func safeDecode(tok interface{ Decode([]int) (string, error) }, id int) (s string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in Decode: %v", rec)
		}
	}()
	return tok.Decode([]int{id})
}
