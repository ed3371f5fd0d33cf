package retrieval

import (
	"fmt"
	"io"
	"log"
	"testing"

	"ai-helpdesk-be/pkg/embedding"
	"ai-helpdesk-be/pkg/retrieval/index"
	"ai-helpdesk-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedEmbedder returns canned vectors keyed by exact text.
type fixedEmbedder struct {
	vectors map[string][]float32
	calls   int
}

func (f *fixedEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	f.calls++
	vec, ok := f.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no vector for %q", text)
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: vec},
	}, nil
}

func discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func buildRetriever(t *testing.T) (*Retriever, *fixedEmbedder) {
	t.Helper()

	ix := index.New()
	ix.Add([]index.Entry{
		{
			Vector: []float32{1, 0, 0},
			Document: store.Document{
				Text:        "Jei internetas nutrūkinėja, patikrinkite router WAN lemputę",
				Section:     "Ryšio trūkinėjimas",
				ChunkType:   store.ChunkTypeDiagnostic,
				ProblemType: "internet",
			},
			Metadata: map[string]string{"problem_type": "internet", "scenario_id": "internet_intermittent"},
		},
		{
			Vector: []float32{0.92, 0.39, 0},
			Document: store.Document{
				Text:        "Lėtas interneto greitis vakarais dėl apkrovos",
				Section:     "Lėtas greitis",
				ChunkType:   store.ChunkTypeCause,
				ProblemType: "internet",
			},
			Metadata: map[string]string{"problem_type": "internet", "scenario_id": "internet_slow"},
		},
		{
			Vector: []float32{0, 0, 1},
			Document: store.Document{
				Text:        "TV dekoderis nerodo signalo",
				Section:     "TV signalas",
				ChunkType:   store.ChunkTypeSymptom,
				ProblemType: "tv",
			},
			Metadata: map[string]string{"problem_type": "tv", "scenario_id": "tv_no_signal"},
		},
	})

	embedder := &fixedEmbedder{vectors: map[string][]float32{
		"internetas nutrūkinėja": {0.97, 0.24, 0},
		"tv klausimas":           {0, 0.1, 0.99},
	}}

	return NewRetriever(embedder, ix, discard()), embedder
}

func TestRetrieveDeterministic(t *testing.T) {
	r, _ := buildRetriever(t)

	first, err := r.Retrieve("internetas nutrūkinėja", DefaultOptions())
	require.NoError(t, err)
	second, err := r.Retrieve("internetas nutrūkinėja", DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRetrieveBilingualPrecision(t *testing.T) {
	r, _ := buildRetriever(t)

	results, err := r.Retrieve("internetas nutrūkinėja", DefaultOptions())
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(results), 2)

	assert.Equal(t, "Ryšio trūkinėjimas", results[0].Document.Section)
	assert.Equal(t, "Lėtas greitis", results[1].Document.Section)
	assert.Greater(t, results[0].HybridScore, results[1].HybridScore)

	// The word overlap is what promotes the drops document.
	assert.Contains(t, results[0].MatchedKeywords, "internetas")
}

func TestRetrieveThresholdMonotonicity(t *testing.T) {
	r, _ := buildRetriever(t)

	counts := make([]int, 0, 4)
	for _, threshold := range []float64{0.3, 0.5, 0.7, 0.95} {
		opts := DefaultOptions()
		opts.Threshold = threshold
		results, err := r.Retrieve("internetas nutrūkinėja", opts)
		require.NoError(t, err)
		counts = append(counts, len(results))
	}

	for i := 1; i < len(counts); i++ {
		assert.LessOrEqual(t, counts[i], counts[i-1])
	}
}

func TestRetrieveHybridScoreBounds(t *testing.T) {
	r, _ := buildRetriever(t)

	opts := DefaultOptions()
	opts.Threshold = 0.0
	results, err := r.Retrieve("internetas nutrūkinėja", opts)
	require.NoError(t, err)

	for _, res := range results {
		assert.GreaterOrEqual(t, res.KeywordScore, 0.0)
		assert.LessOrEqual(t, res.KeywordScore, 1.0)
		if res.SemanticScore >= 0 {
			assert.GreaterOrEqual(t, res.HybridScore, 0.0)
			assert.LessOrEqual(t, res.HybridScore, 1.0)
		}
	}
}

func TestRetrieveMetadataFilter(t *testing.T) {
	r, _ := buildRetriever(t)

	opts := DefaultOptions()
	opts.Threshold = 0.1
	opts.Filter = map[string]string{"problem_type": "tv"}
	results, err := r.Retrieve("tv klausimas", opts)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "tv", results[0].Document.ProblemType)
}

func TestRetrieveEmptyBelowThreshold(t *testing.T) {
	r, _ := buildRetriever(t)

	opts := DefaultOptions()
	opts.Threshold = 0.99
	results, err := r.Retrieve("tv klausimas", opts)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSwapIndexVisibleToReaders(t *testing.T) {
	r, _ := buildRetriever(t)

	empty := index.New()
	r.SwapIndex(empty)

	results, err := r.Retrieve("internetas nutrūkinėja", DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, results)
}
