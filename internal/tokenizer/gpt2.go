package tokenizer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// gpt2Pattern is the GPT-2 pretokenizer. The (?!\S) lookahead keeps the last
// space of a whitespace run attached to the following word.
const gpt2Pattern = `'s|'t|'re|'ve|'m|'ll|'d| ?\p{L}+| ?\p{N}+| ?[^\s\p{L}\p{N}]+|\s+(?!\S)|\s+`

// GPT2Tokenizer is a byte-level BPE tokenizer. It is safe for concurrent use.
type GPT2Tokenizer struct {
	vocab       *Vocabulary
	merger      *Merger
	byteEncoder [256]string
	byteDecoder map[rune]byte
	pattern     *regexp2.Regexp
}

var _ Tokenizer = (*GPT2Tokenizer)(nil)

func New(vocab *Vocabulary, ranks MergeRanks, opts ...MergerOption) (*GPT2Tokenizer, error) {
	if vocab == nil || vocab.Len() == 0 {
		return nil, fmt.Errorf("empty vocabulary")
	}
	pat, err := regexp2.Compile(gpt2Pattern, regexp2.Unicode|regexp2.RE2)
	if err != nil {
		return nil, fmt.Errorf("compile pretokenizer: %w", err)
	}
	enc, dec := bytesToUnicode()
	return &GPT2Tokenizer{
		vocab:       vocab,
		merger:      NewMerger(ranks, opts...),
		byteEncoder: enc,
		byteDecoder: dec,
		pattern:     pat,
	}, nil
}

func (t *GPT2Tokenizer) Encode(text string) ([]int, error) {
	chunks, err := t.split(text)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(chunks))
	for _, chunk := range chunks {
		for _, sub := range t.merger.Merge(t.byteEncode(chunk)) {
			id, ok := t.vocab.ID(sub)
			if !ok {
				return nil, &TokenizationError{Chunk: chunk, Subword: sub, ID: -1}
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (t *GPT2Tokenizer) Decode(ids []int) (string, error) {
	var b []byte
	for _, id := range ids {
		token, ok := t.vocab.Token(id)
		if !ok {
			return "", &TokenizationError{ID: id}
		}
		for _, r := range token {
			if by, ok := t.byteDecoder[r]; ok {
				b = append(b, by)
			} else {
				b = append(b, string(r)...)
			}
		}
	}
	return string(b), nil
}

// DecodeOne decodes a single id.
func (t *GPT2Tokenizer) DecodeOne(id int) (string, error) {
	return t.Decode([]int{id})
}

func (t *GPT2Tokenizer) VocabSize() int { return t.vocab.Len() }

func (t *GPT2Tokenizer) TokenString(id int) string {
	tok, _ := t.vocab.Token(id)
	return tok
}

// Merger exposes the BPE merger, mostly for cache diagnostics.
func (t *GPT2Tokenizer) Merger() *Merger { return t.merger }

// split cuts text into pretokenizer chunks. The pattern matches every
// character so the chunks always concatenate back to text. Chunks are
// slices of text itself: regexp2 matches over runes, where invalid UTF-8
// bytes read as U+FFFD, so match positions are mapped back to byte offsets.
func (t *GPT2Tokenizer) split(text string) ([]string, error) {
	offsets := runeOffsets(text)
	var chunks []string
	m, err := t.pattern.FindStringMatch(text)
	for m != nil {
		chunks = append(chunks, text[offsets[m.Index]:offsets[m.Index+m.Length]])
		m, err = t.pattern.FindNextMatch(m)
	}
	if err != nil {
		return nil, fmt.Errorf("pretokenize: %w", err)
	}
	return chunks, nil
}

// runeOffsets returns the byte offset of every rune in s, plus len(s). Each
// invalid byte counts as one rune, as it does in []rune(s).
func runeOffsets(s string) []int {
	offsets := make([]int, 0, len(s)+1)
	for i := 0; i < len(s); {
		offsets = append(offsets, i)
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return append(offsets, len(s))
}

func (t *GPT2Tokenizer) byteEncode(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 2)
	for i := 0; i < len(s); i++ {
		b.WriteString(t.byteEncoder[s[i]])
	}
	return b.String()
}
