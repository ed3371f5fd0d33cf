package embedding

import "errors"

// Task types passed to the embedding backend. Queries and documents are
// embedded with different task hints so asymmetric models score better.
const (
	TaskQuery    = "RETRIEVAL_QUERY"
	TaskDocument = "RETRIEVAL_DOCUMENT"
)

// ErrModelUnavailable signals that the embedding backend could not be
// reached. Callers retry once, then propagate.
var ErrModelUnavailable = errors.New("embedding model unavailable")

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Generate(text string, taskType string) (*EmbeddingResponse, error)
}

type EmbeddingResponseEmbedding struct {
	Values []float32 `json:"values"`
}

type EmbeddingResponse struct {
	Embedding EmbeddingResponseEmbedding `json:"embedding"`
}
