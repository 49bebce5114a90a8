package tokenizer

import (
	"io"
	"strings"

	"github.com/goccy/go-json"
)

const hfResource = "tokenizer.json"

type hfTokenizerJSON struct {
	Model struct {
		Type   string            `json:"type"`
		Vocab  map[string]int    `json:"vocab"`
		Merges []json.RawMessage `json:"merges"`
	} `json:"model"`
	AddedTokens []struct {
		ID      int    `json:"id"`
		Content string `json:"content"`
	} `json:"added_tokens"`
}

// LoadHFTokenizerJSON reads the vocabulary and merge ranks of a byte-level
// BPE model from a HuggingFace tokenizer.json. Merges may be "a b" strings or
// ["a", "b"] pairs; a merge's rank is its index in the list. Added tokens are
// folded into the vocabulary when their id is free.
func LoadHFTokenizerJSON(r io.Reader) (*Vocabulary, MergeRanks, error) {
	var tj hfTokenizerJSON
	if err := json.NewDecoder(r).Decode(&tj); err != nil {
		if err == io.EOF {
			return nil, nil, formatError(hfResource, "empty document")
		}
		return nil, nil, formatError(hfResource, "%v", err)
	}
	if t := strings.ToUpper(tj.Model.Type); t != "" && t != "BPE" {
		return nil, nil, formatError(hfResource, "unsupported tokenizer model %q", tj.Model.Type)
	}

	tokens := make(map[string]int, len(tj.Model.Vocab)+len(tj.AddedTokens))
	taken := make(map[int]bool, len(tj.Model.Vocab))
	for tok, id := range tj.Model.Vocab {
		tokens[tok] = id
		taken[id] = true
	}
	for _, at := range tj.AddedTokens {
		if _, ok := tokens[at.Content]; ok || taken[at.ID] {
			continue
		}
		tokens[at.Content] = at.ID
		taken[at.ID] = true
	}
	vocab, err := NewVocabulary(tokens)
	if err != nil {
		return nil, nil, err
	}

	ranks := make(MergeRanks, len(tj.Model.Merges))
	for rank, raw := range tj.Model.Merges {
		a, b, ok := parseHFMerge(raw)
		if !ok {
			continue
		}
		ranks[Pair{A: a, B: b}] = rank
	}
	return vocab, ranks, nil
}

func parseHFMerge(raw json.RawMessage) (string, string, bool) {
	var line string
	if err := json.Unmarshal(raw, &line); err == nil {
		parts := strings.Fields(line)
		if len(parts) != 2 {
			return "", "", false
		}
		return parts[0], parts[1], true
	}
	var pair []string
	if err := json.Unmarshal(raw, &pair); err == nil && len(pair) == 2 {
		return pair[0], pair[1], true
	}
	return "", "", false
}
