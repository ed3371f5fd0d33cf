package retrieval

import (
	"fmt"
	"log"
	"sort"
	"sync/atomic"

	"ai-helpdesk-be/pkg/embedding"
	"ai-helpdesk-be/pkg/retrieval/index"
	"ai-helpdesk-be/pkg/retrieval/keyword"
	"ai-helpdesk-be/pkg/store"
)

// Result is one ranked knowledge hit. MatchedKeywords makes the score
// explainable to the human agent reviewing suggestions.
type Result struct {
	Document        store.Document    `json:"document"`
	Metadata        map[string]string `json:"metadata"`
	SemanticScore   float64           `json:"semantic_score"`
	KeywordScore    float64           `json:"keyword_score"`
	HybridScore     float64           `json:"hybrid_score"`
	MatchedKeywords []string          `json:"matched_keywords"`
}

// Options encapsulates retrieval parameters.
type Options struct {
	TopK          int
	Threshold     float64
	KeywordWeight float64
	// Filter is a conjunctive metadata-equality predicate,
	// e.g. {"problem_type": "internet"}.
	Filter map[string]string
}

// DefaultOptions returns the retrieval defaults.
func DefaultOptions() Options {
	return Options{
		TopK:          5,
		Threshold:     0.5,
		KeywordWeight: 0.3,
	}
}

// Retriever fuses semantic similarity with keyword overlap into a single
// ranked result list. The index reference is swapped atomically on
// rebuild; readers see either the old index in full or the new one.
type Retriever struct {
	embedder embedding.EmbeddingProvider
	scorer   *keyword.Scorer
	idx      atomic.Pointer[index.Index]
	logger   *log.Logger
}

func NewRetriever(embedder embedding.EmbeddingProvider, ix *index.Index, logger *log.Logger) *Retriever {
	r := &Retriever{
		embedder: embedder,
		scorer:   keyword.NewScorer(),
		logger:   logger,
	}
	if ix == nil {
		ix = index.New()
	}
	r.idx.Store(ix)
	return r
}

// SwapIndex replaces the serving index. Safe to call while Retrieve runs.
func (r *Retriever) SwapIndex(ix *index.Index) {
	r.idx.Store(ix)
}

// Index returns the currently serving index.
func (r *Retriever) Index() *index.Index {
	return r.idx.Load()
}

// Retrieve embeds the query, over-fetches semantic candidates at a
// relaxed threshold, re-ranks them with the keyword scorer and returns
// at most TopK results clearing Threshold. Read-only apart from
// embedding-cache growth; an empty result is not an error.
func (r *Retriever) Retrieve(query string, opts Options) ([]Result, error) {
	if opts.TopK <= 0 {
		opts.TopK = 5
	}

	embeddingRes, err := r.embedder.Generate(query, embedding.TaskQuery)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	// Over-fetch so a high keyword match can promote a candidate that
	// semantic scoring alone would have dropped.
	hits := r.idx.Load().Search(embeddingRes.Embedding.Values, 2*opts.TopK, opts.Threshold*0.8)
	r.logger.Printf("[DEBUG] Raw semantic candidates: %d", len(hits))

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		if !matchesFilter(hit.Metadata, opts.Filter) {
			continue
		}

		kwScore, matched := r.scorer.Score(query, hit.Document.Text)
		hybrid := (1-opts.KeywordWeight)*hit.Score + opts.KeywordWeight*kwScore

		if hybrid < opts.Threshold {
			r.logger.Printf("[DEBUG] Candidate %q: hybrid=%.4f [FILTERED]", hit.Document.Section, hybrid)
			continue
		}

		results = append(results, Result{
			Document:        hit.Document,
			Metadata:        hit.Metadata,
			SemanticScore:   hit.Score,
			KeywordScore:    kwScore,
			HybridScore:     hybrid,
			MatchedKeywords: matched,
		})
	}

	// Candidates arrive semantic-descending with stable insertion-order
	// ties, so a stable sort gives the full tie-break chain.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].HybridScore > results[j].HybridScore
	})

	if len(results) > opts.TopK {
		results = results[:opts.TopK]
	}

	r.logger.Printf("[DEBUG] Returning %d hybrid results", len(results))
	return results, nil
}

func matchesFilter(metadata, filter map[string]string) bool {
	for key, want := range filter {
		if metadata[key] != want {
			return false
		}
	}
	return true
}
