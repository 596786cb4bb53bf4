package index

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

// Embedder is a TF-IDF vectorizer with a corpus-derived vocabulary. The
// vocabulary is ordered lexicographically so a rebuilt or reloaded embedder
// produces identical vectors for identical input.
type Embedder struct {
	vocabulary map[string]int
	idf        []float64
	dimension  int
	prepared   bool
	tokenRE    *regexp.Regexp
}

// NewEmbedder creates an unprepared embedder.
func NewEmbedder() *Embedder {
	return &Embedder{
		vocabulary: make(map[string]int),
		tokenRE:    regexp.MustCompile(`\p{L}[\p{L}\p{N}-]+`),
	}
}

// Prepare builds the vocabulary and inverse document frequencies from the
// chunk corpus.
func (e *Embedder) Prepare(corpus []string) error {
	if len(corpus) == 0 {
		return errors.New("empty corpus")
	}

	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range e.tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	if len(terms) == 0 {
		return errors.New("corpus produced no terms")
	}

	e.vocabulary = make(map[string]int, len(terms))
	e.idf = make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		e.vocabulary[term] = i
		// Smoothed IDF keeps weights positive for terms in every document.
		e.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	e.dimension = len(terms)
	e.prepared = true
	return nil
}

// Embed returns the L2-normalized TF-IDF vector for text. Terms outside the
// vocabulary are ignored. Returns an all-zero vector for text with no known
// terms.
func (e *Embedder) Embed(text string) []float64 {
	vec := make([]float64, e.dimension)
	if !e.prepared {
		return vec
	}

	tokens := e.tokenize(text)
	if len(tokens) == 0 {
		return vec
	}

	counts := make(map[int]int)
	for _, tok := range tokens {
		if idx, ok := e.vocabulary[tok]; ok {
			counts[idx]++
		}
	}

	var norm float64
	for idx, count := range counts {
		w := float64(count) / float64(len(tokens)) * e.idf[idx]
		vec[idx] = w
		norm += w * w
	}

	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx := range counts {
			vec[idx] /= norm
		}
	}

	return vec
}

// Dimension returns the vocabulary size.
func (e *Embedder) Dimension() int { return e.dimension }

func (e *Embedder) tokenize(text string) []string {
	return e.tokenRE.FindAllString(strings.ToLower(text), -1)
}

// embedderState is the serialized form of a prepared embedder. Vocabulary
// order is the persisted order, which matches the lexicographic build order.
type embedderState struct {
	Vocabulary []string  `json:"vocabulary"`
	IDF        []float64 `json:"idf"`
}

func (e *Embedder) state() embedderState {
	terms := make([]string, e.dimension)
	for term, idx := range e.vocabulary {
		terms[idx] = term
	}
	return embedderState{Vocabulary: terms, IDF: e.idf}
}

func embedderFromState(s embedderState) (*Embedder, error) {
	if len(s.Vocabulary) != len(s.IDF) {
		return nil, errors.New("vocabulary and idf length mismatch")
	}

	e := NewEmbedder()
	e.vocabulary = make(map[string]int, len(s.Vocabulary))
	for i, term := range s.Vocabulary {
		e.vocabulary[term] = i
	}
	e.idf = s.IDF
	e.dimension = len(s.Vocabulary)
	e.prepared = true
	return e, nil
}
