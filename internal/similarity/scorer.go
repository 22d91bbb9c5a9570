package similarity

import (
	"errors"
	"math"
)

// ErrEmptyCorpus is returned when there are no reference documents to compare against
var ErrEmptyCorpus = errors.New("similarity: reference corpus is empty")

// Result holds the similarity of the query to one reference document
type Result struct {
	ID         string  `json:"document"`
	Percentage float64 `json:"percentage"`
}

// Scorer compares a query text against a reference set
type Scorer struct {
	tokenizer Tokenizer
}

func NewScorer(tokenizer Tokenizer) *Scorer {
	return &Scorer{tokenizer: tokenizer}
}

// Score fits a TF-IDF space over the references plus the query and returns the
// cosine similarity of the query to each reference, as a percentage, in
// reference order. The references are not modified.
func (s *Scorer) Score(query string, references []Document) ([]Result, error) {
	if len(references) == 0 {
		return nil, ErrEmptyCorpus
	}

	// The query is fitted together with the references so its own terms
	// are part of the vocabulary.
	texts := make([]string, 0, len(references)+1)
	for _, ref := range references {
		texts = append(texts, ref.Content)
	}
	texts = append(texts, query)

	vectors := NewTFIDFVectorizer(s.tokenizer).FitTransform(texts)
	queryVector := vectors[len(vectors)-1]

	results := make([]Result, len(references))
	for i, ref := range references {
		sim := clamp(CosineSimilarity(queryVector, vectors[i]))
		results[i] = Result{
			ID:         ref.ID,
			Percentage: sim * 100,
		}
	}
	return results, nil
}

// Highest returns the largest percentage in results, or 0 when every result is 0
// or results is empty.
func Highest(results []Result) float64 {
	highest := 0.0
	for _, r := range results {
		if r.Percentage > highest {
			highest = r.Percentage
		}
	}
	return highest
}

// CosineSimilarity is dot(a, b) / (|a| |b|). Vectors of different length
// or without magnitude share nothing and score 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	magnitude := math.Sqrt(dot(a, a) * dot(b, b))
	if magnitude == 0 {
		return 0
	}
	return dot(a, b) / magnitude
}

func dot(a, b []float64) float64 {
	var sum float64
	for i, x := range a {
		sum += x * b[i]
	}
	return sum
}

func clamp(sim float64) float64 {
	switch {
	case sim < 0:
		return 0
	case sim > 1:
		return 1
	}
	return sim
}
