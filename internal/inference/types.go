package inference

import (
	"context"
	"time"
)

const (
	// DefaultSequenceLength is the model's fixed input width.
	DefaultSequenceLength = 64
	// DefaultVocabSize is the GPT-2 vocabulary size, the model's output width.
	DefaultVocabSize = 50257
	// PadID fills unused input slots. It never enters the token history.
	PadID int32 = 0
)

// Model is the opaque fixed-shape network. Infer receives exactly
// SequenceLength ids and returns one score row of VocabSize entries per
// input position. Implementations need not be safe for concurrent use.
type Model interface {
	Infer(ctx context.Context, input []int32) ([][]float32, error)
}

// ModelFunc adapts a function to a Model.
type ModelFunc func(ctx context.Context, input []int32) ([][]float32, error)

func (f ModelFunc) Infer(ctx context.Context, input []int32) ([][]float32, error) {
	return f(ctx, input)
}

// Step describes one generated token.
type Step struct {
	Index    int
	ID       int
	Position int
	Fragment string
}

type StreamFunc func(step Step)

type Engine interface {
	Generate(ctx context.Context, req *Request, stream StreamFunc) (*Result, error)
	Close() error
}

type Request struct {
	Prompt string
	Tokens int
}

type Result struct {
	// Text is the prompt followed by the generated text.
	Text string
	// Generated holds only the generated part.
	Generated string
	IDs       []int
	Stats     Stats
}

type Stats struct {
	PromptTokens    int
	TokensGenerated int
	InferCalls      int
	Duration        time.Duration
	TPS             float64
}
