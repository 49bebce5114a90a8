package tokenizer

import (
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func hfFixture(t *testing.T) string {
	t.Helper()
	v := newTestVocab(t, testMerges)
	vocab := make(map[string]int, v.Len())
	for id := 0; id < v.Len(); id++ {
		tok, _ := v.Token(id)
		vocab[tok] = id
	}
	merges := make([]any, 0, len(testMerges)-1)
	for i, line := range testMerges[1:] {
		if i%2 == 0 {
			merges = append(merges, line)
			continue
		}
		merges = append(merges, strings.Fields(line))
	}
	doc := map[string]any{
		"model": map[string]any{
			"type":   "BPE",
			"vocab":  vocab,
			"merges": merges,
		},
		"added_tokens": []map[string]any{
			{"id": v.Len(), "content": "<|endoftext|>"},
			{"id": 0, "content": "<dup>"},
		},
	}
	b, err := json.Marshal(doc)
	require.NoError(t, err)
	return string(b)
}

func TestLoadHFTokenizerJSON(t *testing.T) {
	t.Parallel()

	vocab, ranks, err := LoadHFTokenizerJSON(strings.NewReader(hfFixture(t)))
	require.NoError(t, err)

	want, err := LoadMergeRanks(strings.NewReader(mergesText(testMerges)))
	require.NoError(t, err)
	require.Equal(t, want, ranks)

	base := newTestVocab(t, testMerges)
	require.Equal(t, base.Len()+1, vocab.Len())
	id, ok := vocab.ID("<|endoftext|>")
	require.True(t, ok)
	require.Equal(t, base.Len(), id)
	_, ok = vocab.ID("<dup>")
	require.False(t, ok, "added token with a taken id must be ignored")

	tok, err := New(vocab, ranks)
	require.NoError(t, err)
	ids, err := tok.Encode("Hello world")
	require.NoError(t, err)
	require.Equal(t, []int{262, 267}, ids)
}

func TestLoadHFTokenizerJSONErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"empty":       ``,
		"malformed":   `{"model":`,
		"wordpiece":   `{"model":{"type":"WordPiece","vocab":{"a":0}}}`,
		"sparse ids":  `{"model":{"type":"BPE","vocab":{"a":0,"b":5}}}`,
		"empty vocab": `{"model":{"type":"BPE","vocab":{}}}`,
	}
	for name, doc := range tests {
		_, _, err := LoadHFTokenizerJSON(strings.NewReader(doc))
		require.Error(t, err, name)
		require.True(t, errors.Is(err, ErrResourceFormat), "%s: %v", name, err)
	}
}

func TestParseHFMergeSkipsMalformed(t *testing.T) {
	t.Parallel()

	doc := `{"model":{"type":"BPE","vocab":{"a":0,"b":1,"ab":2},"merges":["a b c",["a"],42,"a b"]}}`
	_, ranks, err := LoadHFTokenizerJSON(strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, MergeRanks{{A: "a", B: "b"}: 3}, ranks)
}
