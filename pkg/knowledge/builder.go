package knowledge

import (
	"fmt"
	"log"

	"ai-helpdesk-be/pkg/embedding"
	"ai-helpdesk-be/pkg/retrieval/index"
)

// Builder turns chunked knowledge into a searchable vector index.
type Builder struct {
	embedder embedding.EmbeddingProvider
	logger   *log.Logger
}

func NewBuilder(embedder embedding.EmbeddingProvider, logger *log.Logger) *Builder {
	return &Builder{embedder: embedder, logger: logger}
}

// Build embeds every item with the document task type and loads the
// result into a fresh index. A single embedding failure aborts the
// build: a partially indexed corpus silently degrades retrieval quality.
func (b *Builder) Build(items []Item) (*index.Index, error) {
	idx := index.New()

	entries := make([]index.Entry, 0, len(items))
	for i, item := range items {
		resp, err := b.embedder.Generate(item.Document.Text, embedding.TaskDocument)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d (%s): %w", i, item.Document.Source, err)
		}
		entries = append(entries, index.Entry{
			Vector:   resp.Embedding.Values,
			Document: item.Document,
			Metadata: item.Metadata,
		})
	}
	idx.Add(entries)

	b.logger.Printf("[KNOWLEDGE] Indexed %d chunks", idx.Len())
	return idx, nil
}
