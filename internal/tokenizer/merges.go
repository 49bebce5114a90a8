package tokenizer

import (
	"bufio"
	"io"
	"strings"
)

const mergesResource = "merges"

// Pair represents a pair of adjacent BPE symbols.
type Pair struct {
	A string
	B string
}

// MergeRanks maps a symbol pair to its merge priority. Lower ranks merge first.
type MergeRanks map[Pair]int

// Rank returns the rank of the pair (a, b).
func (m MergeRanks) Rank(a, b string) (int, bool) {
	r, ok := m[Pair{A: a, B: b}]
	return r, ok
}

// LoadMergeRanks reads a merges.txt resource. The first line is a header and
// is discarded. Each following line holds two whitespace separated symbols;
// its rank is its line index minus one, so the first pair ranks 0. Lines with
// fewer than two fields are skipped but still consume a rank.
func LoadMergeRanks(r io.Reader) (MergeRanks, error) {
	ranks := make(MergeRanks)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		idx := line
		line++
		if idx == 0 {
			continue
		}
		parts := strings.Fields(sc.Text())
		if len(parts) < 2 {
			continue
		}
		ranks[Pair{A: parts[0], B: parts[1]}] = idx - 1
	}
	if err := sc.Err(); err != nil {
		return nil, &ResourceError{Resource: mergesResource, Err: err}
	}
	return ranks, nil
}
