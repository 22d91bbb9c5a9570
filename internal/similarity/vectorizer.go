package similarity

import (
	"math"
	"sort"
)

// TFIDFVectorizer implements Term Frequency - Inverse Document Frequency
// with smoothed IDF and L2-normalised output vectors.
type TFIDFVectorizer struct {
	Vocabulary map[string]int
	IDF        map[string]float64
	tokenizer  Tokenizer
}

func NewTFIDFVectorizer(tokenizer Tokenizer) *TFIDFVectorizer {
	return &TFIDFVectorizer{
		Vocabulary: make(map[string]int),
		IDF:        make(map[string]float64),
		tokenizer:  tokenizer,
	}
}

// Fit analyzes the corpus to build vocabulary and IDF stats.
// Previous state is discarded.
func (v *TFIDFVectorizer) Fit(docs []string) {
	v.Vocabulary = make(map[string]int)
	v.IDF = make(map[string]float64)

	docCount := float64(len(docs))
	wordDocCounts := make(map[string]int)

	for _, doc := range docs {
		seenInDoc := make(map[string]bool)
		for _, token := range v.tokenizer.Tokenize(doc) {
			if !seenInDoc[token] {
				wordDocCounts[token]++
				seenInDoc[token] = true
			}
		}
	}

	// Columns are assigned in lexical order so vectors are reproducible
	terms := make([]string, 0, len(wordDocCounts))
	for word := range wordDocCounts {
		terms = append(terms, word)
	}
	sort.Strings(terms)

	for i, word := range terms {
		v.Vocabulary[word] = i
		// idf = ln((1 + n) / (1 + df)) + 1
		v.IDF[word] = math.Log((1+docCount)/(1+float64(wordDocCounts[word]))) + 1
	}
}

// Transform converts text to a unit-length vector over the learned vocabulary.
// Terms outside the vocabulary are ignored; text with no known terms yields
// the zero vector.
func (v *TFIDFVectorizer) Transform(text string) []float64 {
	vector := make([]float64, len(v.Vocabulary))

	tf := make(map[string]float64)
	for _, token := range v.tokenizer.Tokenize(text) {
		tf[token]++
	}

	for token, count := range tf {
		if idx, exists := v.Vocabulary[token]; exists {
			vector[idx] = count * v.IDF[token]
		}
	}

	normalize(vector)
	return vector
}

// FitTransform fits on docs and returns their vectors in the same order
func (v *TFIDFVectorizer) FitTransform(docs []string) [][]float64 {
	v.Fit(docs)
	vectors := make([][]float64, len(docs))
	for i, doc := range docs {
		vectors[i] = v.Transform(doc)
	}
	return vectors
}

func normalize(vector []float64) {
	var sum float64
	for _, x := range vector {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vector {
		vector[i] /= norm
	}
}
