// Package similarity ranks rulings against a reference ruling or free text
// using TF-IDF vectors and cosine similarity.
//
// The vector space is rebuilt on every call from the candidates plus the
// query, so a Ranker holds no state and is safe for concurrent use.
package similarity

import (
	"math"
	"sort"

	"github.com/lysyi3m/juris-comb/app/ruling"
)

type Match struct {
	Ruling *ruling.Ruling `json:"ruling"`
	Score  float64        `json:"score"`
}

type Ranker struct{}

func NewRanker() *Ranker {
	return &Ranker{}
}

// RankByReference returns up to n rulings most similar to ref. Only the ref
// pointer itself is excluded; other entries with identical content stay.
func (rk *Ranker) RankByReference(corpus []*ruling.Ruling, ref *ruling.Ruling, n int) []Match {
	if ref == nil {
		return []Match{}
	}

	candidates := make([]*ruling.Ruling, 0, len(corpus))
	for _, r := range corpus {
		if r != ref {
			candidates = append(candidates, r)
		}
	}

	return rank(candidates, ref.AnalysisText(), n)
}

// RankByText returns up to n rulings from corpus most similar to query.
func (rk *Ranker) RankByText(corpus []*ruling.Ruling, query string, n int) []Match {
	return rank(corpus, query, n)
}

func rank(corpus []*ruling.Ruling, query string, n int) []Match {
	candidates := make([]*ruling.Ruling, 0, len(corpus))
	for _, r := range corpus {
		if r != nil {
			candidates = append(candidates, r)
		}
	}

	if n <= 0 || len(candidates) == 0 {
		return []Match{}
	}

	queryTokens := ruling.Tokenize(query)
	if len(queryTokens) == 0 {
		return []Match{}
	}

	documents := make([][]string, 0, len(candidates)+1)
	for _, r := range candidates {
		documents = append(documents, ruling.Tokenize(r.AnalysisText()))
	}
	documents = append(documents, queryTokens)

	idf := inverseDocumentFrequencies(documents)
	queryVector := vectorize(queryTokens, idf)

	matches := make([]Match, len(candidates))
	for i, r := range candidates {
		matches[i] = Match{
			Ruling: r,
			Score:  dot(queryVector, vectorize(documents[i], idf)),
		}
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Score > matches[b].Score
	})

	if n < len(matches) {
		matches = matches[:n]
	}

	return matches
}

// inverseDocumentFrequencies uses the smoothed form ln((1+N)/(1+df)) + 1.
func inverseDocumentFrequencies(documents [][]string) map[string]float64 {
	df := make(map[string]int)
	for _, tokens := range documents {
		seen := make(map[string]bool, len(tokens))
		for _, token := range tokens {
			if !seen[token] {
				seen[token] = true
				df[token]++
			}
		}
	}

	total := float64(len(documents))
	idf := make(map[string]float64, len(df))
	for term, count := range df {
		idf[term] = math.Log((1+total)/(1+float64(count))) + 1
	}
	return idf
}

// vectorize returns the L2-normalized tf-idf vector of tokens.
func vectorize(tokens []string, idf map[string]float64) map[string]float64 {
	vector := make(map[string]float64, len(tokens))
	for _, token := range tokens {
		vector[token]++
	}

	var norm float64
	for _, term := range sortedTerms(vector) {
		weight := vector[term] * idf[term]
		vector[term] = weight
		norm += weight * weight
	}

	if norm == 0 {
		return vector
	}

	norm = math.Sqrt(norm)
	for term := range vector {
		vector[term] /= norm
	}
	return vector
}

func dot(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}

	var sum float64
	for _, term := range sortedTerms(a) {
		sum += a[term] * b[term]
	}
	return sum
}

// sortedTerms fixes the summation order so equal documents score
// bit-for-bit equal.
func sortedTerms(vector map[string]float64) []string {
	terms := make([]string, 0, len(vector))
	for term := range vector {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}
