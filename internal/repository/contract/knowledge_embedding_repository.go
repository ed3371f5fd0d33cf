package contract

import (
	"context"

	"ai-helpdesk-be/internal/entity"
	"ai-helpdesk-be/internal/repository/specification"
)

type KnowledgeEmbeddingRepository interface {
	CreateBatch(ctx context.Context, chunks []entity.KnowledgeChunk) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]entity.KnowledgeChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// DeleteAll hard-deletes the corpus ahead of a reindex.
	DeleteAll(ctx context.Context) error
}
