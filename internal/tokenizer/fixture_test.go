package tokenizer

import (
	"strings"
	"testing"
)

// testMerges is a small merges.txt. Every merged symbol is added to the
// vocabulary after the 256 byte symbols, the way GPT-2 builds its vocab.
var testMerges = []string{
	"#version: 0.2",
	"Ġ t",
	"h e",
	"Ġt he",
	"l l",
	"ll o",
	"H e",
	"He llo",
	"Ġ w",
	"o r",
	"Ġw or",
	"l d",
	"Ġwor ld",
	"i n",
	"Ġ in",
}

func mergesText(lines []string) string {
	return strings.Join(lines, "\n") + "\n"
}

func newTestVocab(t *testing.T, merges []string) *Vocabulary {
	t.Helper()
	enc, _ := bytesToUnicode()
	tokens := make(map[string]int, 256+len(merges))
	for b := 0; b < 256; b++ {
		tokens[enc[b]] = b
	}
	next := 256
	for _, line := range merges[1:] {
		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}
		tok := parts[0] + parts[1]
		if _, ok := tokens[tok]; ok {
			continue
		}
		tokens[tok] = next
		next++
	}
	v, err := NewVocabulary(tokens)
	if err != nil {
		t.Fatalf("build vocabulary: %v", err)
	}
	return v
}

func newTestTokenizer(t *testing.T, opts ...MergerOption) *GPT2Tokenizer {
	t.Helper()
	ranks, err := LoadMergeRanks(strings.NewReader(mergesText(testMerges)))
	if err != nil {
		t.Fatalf("load merges: %v", err)
	}
	tok, err := New(newTestVocab(t, testMerges), ranks, opts...)
	if err != nil {
		t.Fatalf("new tokenizer: %v", err)
	}
	return tok
}
