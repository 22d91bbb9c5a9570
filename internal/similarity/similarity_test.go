package similarity_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marking-system/backend/internal/similarity"
)

var defaultTokenizer = similarity.Tokenizer{MinLength: 2, Lowercase: true}

func TestTokenize(t *testing.T) {
	text := "Hello, World! This is a test."
	tokens := defaultTokenizer.Tokenize(text)

	assert.Equal(t, []string{"hello", "world", "this", "is", "test"}, tokens)
}

func TestTokenizer_Options(t *testing.T) {
	tests := []struct {
		name      string
		tokenizer similarity.Tokenizer
		text      string
		expected  []string
	}{
		{"Unicode words", defaultTokenizer, "Ünïcode café_bar 42", []string{"ünïcode", "café_bar", "42"}},
		{"Longer minimum", similarity.Tokenizer{MinLength: 4, Lowercase: true}, "The cat jumped over", []string{"jumped", "over"}},
		{"Case preserved", similarity.Tokenizer{MinLength: 2}, "Go go GO", []string{"Go", "go", "GO"}},
		{"Only punctuation", defaultTokenizer, "... !!! ,,,", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.tokenizer.Tokenize(tt.text))
		})
	}
}

func TestTFIDFVectorizer(t *testing.T) {
	docs := []string{
		"apple banana",
		"apple orange",
	}

	vectorizer := similarity.NewTFIDFVectorizer(defaultTokenizer)
	vectorizer.Fit(docs)

	require.Len(t, vectorizer.Vocabulary, 3)
	assert.Equal(t, 0, vectorizer.Vocabulary["apple"])
	assert.Equal(t, 1, vectorizer.Vocabulary["banana"])
	assert.Equal(t, 2, vectorizer.Vocabulary["orange"])

	// idf(apple) = ln(3/3) + 1 = 1
	// idf(banana) = ln(3/2) + 1
	assert.InDelta(t, 1.0, vectorizer.IDF["apple"], 1e-12)
	assert.InDelta(t, math.Log(1.5)+1, vectorizer.IDF["banana"], 1e-12)

	vec := vectorizer.Transform("apple banana")
	require.Len(t, vec, 3)
	assert.Zero(t, vec[2])
	assert.Greater(t, vec[1], vec[0], "rarer term should weigh more")

	var norm float64
	for _, x := range vec {
		norm += x * x
	}
	assert.InDelta(t, 1.0, norm, 1e-12)
}

func TestTFIDFVectorizer_RefitDiscardsVocabulary(t *testing.T) {
	vectorizer := similarity.NewTFIDFVectorizer(defaultTokenizer)
	vectorizer.Fit([]string{"first corpus"})
	vectorizer.Fit([]string{"second"})

	assert.Len(t, vectorizer.Vocabulary, 1)
	assert.NotContains(t, vectorizer.Vocabulary, "first")
}

func TestTFIDFVectorizer_UnknownTermsGiveZeroVector(t *testing.T) {
	vectorizer := similarity.NewTFIDFVectorizer(defaultTokenizer)
	vectorizer.Fit([]string{"known words"})

	vec := vectorizer.Transform("nothing familiar")
	assert.Equal(t, []float64{0, 0}, vec)
}

func TestCosineSimilarity(t *testing.T) {
	vecA := []float64{1, 0, 1}
	vecB := []float64{0, 1, 1}

	// Dot product: 1, norms: sqrt(2) each, cosine: 0.5
	assert.InDelta(t, 0.5, similarity.CosineSimilarity(vecA, vecB), 1e-4)

	assert.Zero(t, similarity.CosineSimilarity([]float64{1, 2}, []float64{1}))
	assert.Zero(t, similarity.CosineSimilarity([]float64{0, 0}, []float64{1, 1}))

	// magnitude does not matter, only direction
	assert.InDelta(t, 1.0, similarity.CosineSimilarity([]float64{1, 2, 3}, []float64{2, 4, 6}), 1e-12)
	assert.InDelta(t, -1.0, similarity.CosineSimilarity([]float64{1, 0}, []float64{-3, 0}), 1e-12)
	assert.Zero(t, similarity.CosineSimilarity(nil, nil))
}

func TestScorer_EmptyCorpus(t *testing.T) {
	scorer := similarity.NewScorer(defaultTokenizer)

	results, err := scorer.Score("anything at all", nil)
	assert.ErrorIs(t, err, similarity.ErrEmptyCorpus)
	assert.Nil(t, results)
}

func TestScorer_IdenticalDocument(t *testing.T) {
	scorer := similarity.NewScorer(defaultTokenizer)
	refs := []similarity.Document{
		{ID: "copied.txt", Content: "The quick brown fox jumps over the lazy dog"},
		{ID: "other.txt", Content: "Lorem ipsum dolor sit amet"},
	}

	results, err := scorer.Score("The quick brown fox jumps over the lazy dog", refs)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "copied.txt", results[0].ID)
	assert.InDelta(t, 100.0, results[0].Percentage, 1e-9)
	assert.Equal(t, "other.txt", results[1].ID)
	assert.Zero(t, results[1].Percentage)
	assert.InDelta(t, 100.0, similarity.Highest(results), 1e-9)
}

func TestScorer_NoSharedVocabulary(t *testing.T) {
	scorer := similarity.NewScorer(defaultTokenizer)
	refs := []similarity.Document{
		{ID: "a", Content: "alpha beta"},
		{ID: "b", Content: "gamma delta"},
	}

	results, err := scorer.Score("epsilon zeta", refs)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.InDelta(t, 0.0, r.Percentage, 1e-9)
	}
	assert.Zero(t, similarity.Highest(results))
}

func TestScorer_EmptyQuery(t *testing.T) {
	scorer := similarity.NewScorer(defaultTokenizer)
	refs := []similarity.Document{{ID: "a", Content: "some reference text"}}

	results, err := scorer.Score("", refs)
	require.NoError(t, err)
	assert.Equal(t, []similarity.Result{{ID: "a", Percentage: 0}}, results)
}

func TestScorer_PartialOverlapAndOrder(t *testing.T) {
	scorer := similarity.NewScorer(defaultTokenizer)
	refs := []similarity.Document{
		{ID: "doc1", Content: "go programming language"},
		{ID: "doc2", Content: "python programming language"},
		{ID: "doc3", Content: "banana fruit split"},
		{ID: "doc4", Content: ""},
	}

	results, err := scorer.Score("go language", refs)
	require.NoError(t, err)
	require.Len(t, results, len(refs))

	for i, r := range results {
		assert.Equal(t, refs[i].ID, r.ID)
		assert.GreaterOrEqual(t, r.Percentage, 0.0)
		assert.LessOrEqual(t, r.Percentage, 100.0)
	}

	assert.Greater(t, results[0].Percentage, results[1].Percentage)
	assert.Greater(t, results[1].Percentage, 0.0)
	assert.Less(t, results[0].Percentage, 100.0)
	assert.Zero(t, results[2].Percentage)
	assert.Zero(t, results[3].Percentage)
	assert.Equal(t, results[0].Percentage, similarity.Highest(results))
}

func TestScorer_QueryOnlyTermsDiluteSimilarity(t *testing.T) {
	scorer := similarity.NewScorer(defaultTokenizer)
	refs := []similarity.Document{{ID: "ref", Content: "shared words here"}}

	exact, err := scorer.Score("shared words here", refs)
	require.NoError(t, err)
	extended, err := scorer.Score("shared words here plus extra novel material", refs)
	require.NoError(t, err)

	assert.InDelta(t, 100.0, exact[0].Percentage, 1e-9)
	assert.Less(t, extended[0].Percentage, exact[0].Percentage)
}

func TestScorer_DoesNotModifyReferences(t *testing.T) {
	scorer := similarity.NewScorer(defaultTokenizer)
	refs := []similarity.Document{{ID: "ref", Content: "Original Content"}}

	_, err := scorer.Score("original", refs)
	require.NoError(t, err)
	assert.Equal(t, "Original Content", refs[0].Content)
}

func TestHighest(t *testing.T) {
	assert.Zero(t, similarity.Highest(nil))
	assert.Zero(t, similarity.Highest([]similarity.Result{{ID: "a"}, {ID: "b"}}))
	assert.Equal(t, 55.5, similarity.Highest([]similarity.Result{
		{ID: "a", Percentage: 10},
		{ID: "b", Percentage: 55.5},
		{ID: "c", Percentage: 30},
		{ID: "d", Percentage: 55.5},
	}))
}
