package nlp

import (
	"sort"
	"strings"
)

// PadIndex is the reserved padding value. Word indices start at 1 with
// the most frequent word, so index 0 never collides with a real token.
const PadIndex = 0

// Tokenizer maps words to integer indices ranked by corpus frequency.
// It is rebuilt from scratch on every training run and serialized as
// part of the artifact triple.
type Tokenizer struct {
	WordIndex map[string]int `json:"word_index"`
}

// FitTokenizer builds a word index over normalized sentences. Ties in
// frequency break by first appearance in the corpus, so a given corpus
// always produces the same index.
func FitTokenizer(sentences []string) *Tokenizer {
	counts := map[string]int{}
	firstSeen := map[string]int{}
	pos := 0
	for _, s := range sentences {
		for _, w := range strings.Fields(s) {
			if _, ok := counts[w]; !ok {
				firstSeen[w] = pos
				pos++
			}
			counts[w]++
		}
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return firstSeen[words[i]] < firstSeen[words[j]]
	})

	index := make(map[string]int, len(words))
	for i, w := range words {
		index[w] = i + 1
	}
	return &Tokenizer{WordIndex: index}
}

// VocabSize returns the number of indexed words, excluding the pad slot.
func (t *Tokenizer) VocabSize() int { return len(t.WordIndex) }

// Encode converts a normalized sentence into a fixed-length sequence.
// Unknown words are dropped. Sequences longer than maxLen lose their
// trailing tokens; shorter ones are left-padded with PadIndex.
func (t *Tokenizer) Encode(sentence string, maxLen int) []int {
	ids := make([]int, 0, maxLen)
	for _, w := range strings.Fields(sentence) {
		if id, ok := t.WordIndex[w]; ok {
			ids = append(ids, id)
		}
	}
	if len(ids) > maxLen {
		ids = ids[:maxLen]
	}
	seq := make([]int, maxLen)
	copy(seq[maxLen-len(ids):], ids)
	return seq
}

// EncodeAll encodes every sentence to the same fixed length.
func (t *Tokenizer) EncodeAll(sentences []string, maxLen int) [][]int {
	out := make([][]int, len(sentences))
	for i, s := range sentences {
		out[i] = t.Encode(s, maxLen)
	}
	return out
}
