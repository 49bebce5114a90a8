package tokenizer

import (
	"sync"
	"sync/atomic"
)

// Merger applies ranked BPE merges to byte-encoded words. Results are
// memoized; the cache is safe for concurrent use and only affects speed.
type Merger struct {
	ranks   MergeRanks
	cache   sync.Map // string -> []string
	cached  atomic.Int64
	noCache bool
}

// MergerOption configures a Merger.
type MergerOption func(*Merger)

// WithoutCache disables memoization.
func WithoutCache() MergerOption {
	return func(m *Merger) { m.noCache = true }
}

func NewMerger(ranks MergeRanks, opts ...MergerOption) *Merger {
	m := &Merger{ranks: ranks}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Merge splits word into runes and merges them. The returned slice is shared
// with the cache and must not be modified.
func (m *Merger) Merge(word string) []string {
	if !m.noCache {
		if v, ok := m.cache.Load(word); ok {
			return v.([]string)
		}
	}
	out := m.MergeSymbols(splitRunes(word))
	if !m.noCache {
		if _, loaded := m.cache.LoadOrStore(word, out); !loaded {
			m.cached.Add(1)
		}
	}
	return out
}

// MergeSymbols repeatedly merges the lowest ranked adjacent pair of symbols
// until no adjacent pair has a rank. On equal ranks the leftmost pair wins.
func (m *Merger) MergeSymbols(word []string) []string {
	for len(word) > 1 {
		best, ok := m.bestPair(word)
		if !ok {
			break
		}
		word = mergePair(word, best)
	}
	return word
}

// CacheLen reports how many words are memoized.
func (m *Merger) CacheLen() int {
	return int(m.cached.Load())
}

func (m *Merger) bestPair(word []string) (Pair, bool) {
	var (
		best     Pair
		bestRank int
		found    bool
	)
	for i := 0; i+1 < len(word); i++ {
		rank, ok := m.ranks.Rank(word[i], word[i+1])
		if !ok {
			continue
		}
		if !found || rank < bestRank {
			best = Pair{A: word[i], B: word[i+1]}
			bestRank = rank
			found = true
		}
	}
	return best, found
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

func mergePair(word []string, pair Pair) []string {
	out := make([]string, 0, len(word))
	for i := 0; i < len(word); i++ {
		if i < len(word)-1 && word[i] == pair.A && word[i+1] == pair.B {
			out = append(out, word[i]+word[i+1])
			i++
			continue
		}
		out = append(out, word[i])
	}
	return out
}
