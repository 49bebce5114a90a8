package tokenizer

import (
	"io"

	"github.com/goccy/go-json"
)

const vocabResource = "vocabulary"

// Vocabulary is the immutable bijection between subword strings and ids.
// Ids are dense in [0, Len()).
type Vocabulary struct {
	encoder map[string]int
	decoder []string
}

// LoadVocabulary decodes a vocab.json style object of token -> id.
func LoadVocabulary(r io.Reader) (*Vocabulary, error) {
	var raw map[string]int
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return nil, formatError(vocabResource, "empty document")
		}
		return nil, formatError(vocabResource, "%v", err)
	}
	return NewVocabulary(raw)
}

// NewVocabulary validates a token -> id mapping and builds the reverse table.
func NewVocabulary(tokens map[string]int) (*Vocabulary, error) {
	if len(tokens) == 0 {
		return nil, formatError(vocabResource, "no tokens")
	}
	decoder := make([]string, len(tokens))
	seen := make([]bool, len(tokens))
	encoder := make(map[string]int, len(tokens))
	for tok, id := range tokens {
		if id < 0 || id >= len(tokens) {
			return nil, formatError(vocabResource, "id %d for %q outside [0, %d)", id, tok, len(tokens))
		}
		if seen[id] {
			return nil, formatError(vocabResource, "id %d assigned to both %q and %q", id, decoder[id], tok)
		}
		seen[id] = true
		decoder[id] = tok
		encoder[tok] = id
	}
	return &Vocabulary{encoder: encoder, decoder: decoder}, nil
}

// Len returns the number of entries.
func (v *Vocabulary) Len() int { return len(v.decoder) }

// ID returns the id for tok.
func (v *Vocabulary) ID(tok string) (int, bool) {
	id, ok := v.encoder[tok]
	return id, ok
}

// Token returns the subword string for id.
func (v *Vocabulary) Token(id int) (string, bool) {
	if id < 0 || id >= len(v.decoder) {
		return "", false
	}
	return v.decoder[id], true
}
