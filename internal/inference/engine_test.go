package inference

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/samcharles93/gpt2gen/internal/logits"
	"github.com/samcharles93/gpt2gen/internal/tokenizer"
)

func newTestEngine(t *testing.T, m Model, seqLen int) *EngineImpl {
	t.Helper()
	e, err := NewEngine(EngineConfig{
		Tokenizer:      idTokenizer{},
		Model:          m,
		SequenceLength: seqLen,
	})
	require.NoError(t, err)
	return e
}

func TestGeneratorEvictsOldestAndCallsModelOncePerStep(t *testing.T) {
	t.Parallel()

	m := &recordingModel{vocab: 16, seqLen: 4}
	g := &Generator{
		Model:          m,
		Selector:       logits.Greedy{},
		Tokenizer:      idTokenizer{},
		SequenceLength: 4,
		VocabSize:      16,
	}

	var positions []int
	out, err := g.Run(context.Background(), []int{5, 6, 7}, 5, func(s Step) {
		positions = append(positions, s.Position)
	})
	require.NoError(t, err)
	require.Equal(t, []int{8, 9, 10, 11, 12}, out.IDs)
	require.Equal(t, 5, out.Stats.InferCalls)
	require.Equal(t, 5, out.Stats.TokensGenerated)
	require.Equal(t, 3, out.Stats.PromptTokens)
	require.Equal(t, []int{2, 3, 3, 3, 3}, positions)
	require.Equal(t, [][]int32{
		{5, 6, 7, 0},
		{5, 6, 7, 8},
		{6, 7, 8, 9},
		{7, 8, 9, 10},
		{8, 9, 10, 11},
	}, m.inputs)
}

func TestGenerateWindowNeverExceedsLimit(t *testing.T) {
	t.Parallel()

	const k = 100
	m := &recordingModel{vocab: 16, seqLen: DefaultSequenceLength}
	e := newTestEngine(t, m, 0)

	prompt := strings.TrimSpace(strings.Repeat("3 ", 70))
	res, err := e.Generate(context.Background(), &Request{Prompt: prompt, Tokens: k}, func(s Step) {
		if s.Position >= DefaultSequenceLength {
			t.Errorf("step %d read position %d", s.Index, s.Position)
		}
	})
	require.NoError(t, err)
	require.Equal(t, k, m.calls())
	require.Equal(t, k, res.Stats.InferCalls)
	require.Len(t, res.IDs, k)
	for _, in := range m.inputs {
		require.Len(t, in, DefaultSequenceLength)
	}
}

func TestGenerateZeroTokensReturnsPrompt(t *testing.T) {
	t.Parallel()

	m := &recordingModel{vocab: 16, seqLen: DefaultSequenceLength}
	e := newTestEngine(t, m, 0)

	got, err := GenerateText(context.Background(), e, "1 2 3", 0)
	require.NoError(t, err)
	require.Equal(t, "1 2 3", got)
	require.Zero(t, m.calls())
}

func TestGenerateRejectsInvalidArguments(t *testing.T) {
	t.Parallel()

	m := &recordingModel{vocab: 16, seqLen: DefaultSequenceLength}
	e := newTestEngine(t, m, 0)

	_, err := e.Generate(context.Background(), &Request{Prompt: "1", Tokens: -1}, nil)
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = e.Generate(context.Background(), &Request{Prompt: "", Tokens: 2}, nil)
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = e.Generate(context.Background(), nil, nil)
	require.ErrorIs(t, err, ErrInvalidArgument)

	require.Zero(t, m.calls(), "no inference may start for a rejected request")
}

func TestGenerateRejectsWrongShape(t *testing.T) {
	t.Parallel()

	short := ModelFunc(func(context.Context, []int32) ([][]float32, error) {
		return make([][]float32, DefaultSequenceLength-1), nil
	})
	e := newTestEngine(t, short, 0)
	_, err := e.Generate(context.Background(), &Request{Prompt: "1", Tokens: 1}, nil)
	require.ErrorIs(t, err, ErrInferenceShape)
	var serr *ShapeError
	require.True(t, errors.As(err, &serr))
	require.Equal(t, -1, serr.Row)

	narrow := ModelFunc(func(context.Context, []int32) ([][]float32, error) {
		out := make([][]float32, 4)
		for i := range out {
			out[i] = make([]float32, 16)
		}
		out[2] = make([]float32, 15)
		return out, nil
	})
	e = newTestEngine(t, narrow, 4)
	_, err = e.Generate(context.Background(), &Request{Prompt: "1", Tokens: 1}, nil)
	require.True(t, errors.As(err, &serr))
	require.Equal(t, 2, serr.Row)
	require.Equal(t, 15, serr.GotCols)
	require.Equal(t, 16, serr.WantCols)
}

func TestGenerateConvertsInferPanicToError(t *testing.T) {
	t.Parallel()

	boom := ModelFunc(func(context.Context, []int32) ([][]float32, error) {
		panic("boom")
	})
	e := newTestEngine(t, boom, 0)
	_, err := e.Generate(context.Background(), &Request{Prompt: "1", Tokens: 1}, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "panic in Infer")
}

func TestGenerateReturnsInferError(t *testing.T) {
	t.Parallel()

	calls := 0
	failing := ModelFunc(func(context.Context, []int32) ([][]float32, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("forced inference failure")
		}
		return newConstModel(4, 16, 1).rows, nil
	})
	e := newTestEngine(t, failing, 4)
	_, err := e.Generate(context.Background(), &Request{Prompt: "1", Tokens: 3}, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "forced inference failure")
	require.Equal(t, 2, calls)
}

func TestGenerateCancelledBetweenSteps(t *testing.T) {
	t.Parallel()

	m := &recordingModel{vocab: 16, seqLen: DefaultSequenceLength}
	e := newTestEngine(t, m, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, err := e.Generate(ctx, &Request{Prompt: "1", Tokens: 10}, func(s Step) {
		if s.Index == 1 {
			cancel()
		}
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 2, m.calls())
}

func TestGenerateIsDeterministic(t *testing.T) {
	t.Parallel()

	run := func() string {
		e := newTestEngine(t, &recordingModel{vocab: 16, seqLen: 8}, 8)
		got, err := GenerateText(context.Background(), e, "1 2", 12)
		require.NoError(t, err)
		return got
	}
	require.Equal(t, run(), run())
}

func TestGenerateSpacing(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &recordingModel{vocab: 16, seqLen: 8}, 8)
	res, err := e.Generate(context.Background(), &Request{Prompt: "4", Tokens: 3}, nil)
	require.NoError(t, err)
	require.Equal(t, "t5 t6 t7", res.Generated)
	require.Equal(t, "4 t5 t6 t7", res.Text)
	require.Equal(t, []int{5, 6, 7}, res.IDs)
}

func TestJoinFragments(t *testing.T) {
	t.Parallel()

	require.Equal(t, "there there", joinFragments([]string{" there", " there"}))
	require.Equal(t, "a b", joinFragments([]string{"a", "\n", " b "}))
	require.Equal(t, "", joinFragments(nil))
	require.Equal(t, "Hi", joinOutput("Hi", ""))
	require.Equal(t, "there", joinOutput("", "there"))
	require.Equal(t, "Hi there", joinOutput("Hi", "there"))
}

// TestGenerateScenarioGPT2Vocabulary wires the real tokenizer with a full
// size vocabulary and a model that always favors "Ġthere".
func TestGenerateScenarioGPT2Vocabulary(t *testing.T) {
	t.Parallel()

	tokens := make(map[string]int, DefaultVocabSize)
	tokens["Hi"] = 0
	tokens["Ġthere"] = 1
	for id := 2; id < DefaultVocabSize; id++ {
		tokens[fmt.Sprintf("<filler%d>", id)] = id
	}
	vocab, err := tokenizer.NewVocabulary(tokens)
	require.NoError(t, err)
	ranks, err := tokenizer.LoadMergeRanks(strings.NewReader("#version: 0.2\nH i\n"))
	require.NoError(t, err)
	tok, err := tokenizer.New(vocab, ranks)
	require.NoError(t, err)

	m := newConstModel(DefaultSequenceLength, DefaultVocabSize, 1)
	var seen [][]int32
	rec := ModelFunc(func(ctx context.Context, input []int32) ([][]float32, error) {
		seen = append(seen, append([]int32(nil), input...))
		return m.Infer(ctx, input)
	})
	e, err := NewEngine(EngineConfig{Tokenizer: tok, Model: rec})
	require.NoError(t, err)
	require.Equal(t, DefaultVocabSize, e.VocabSize())

	got, err := GenerateText(context.Background(), e, "Hi", 2)
	require.NoError(t, err)
	require.Equal(t, "Hi there there", got)
	require.Equal(t, 2, m.count)

	// id 0 is a real token here and must stay in the history.
	require.Equal(t, []int32{0, 0}, seen[0][:2])
	require.Equal(t, []int32{0, 1, 0}, seen[1][:3])
}

func TestResolveRequest(t *testing.T) {
	t.Parallel()

	req := ResolveRequest(RequestOptions{}, GenDefaults{})
	require.Equal(t, DefaultTokens, req.Tokens)

	n := 4
	req = ResolveRequest(RequestOptions{}, GenDefaults{Tokens: &n})
	require.Equal(t, 4, req.Tokens)

	prompt, zero := "Hi", 0
	req = ResolveRequest(RequestOptions{Prompt: &prompt, Tokens: &zero}, GenDefaults{Tokens: &n})
	require.Equal(t, Request{Prompt: "Hi", Tokens: 0}, req)
}
