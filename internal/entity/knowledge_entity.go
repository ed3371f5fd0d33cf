package entity

import (
	"time"

	"github.com/google/uuid"
)

// KnowledgeChunk is one embedded knowledge-base chunk as persisted. The
// in-memory search index is hydrated from these rows so restarts do not
// re-embed the corpus.
type KnowledgeChunk struct {
	Id          uuid.UUID
	Text        string
	Source      string
	Section     string
	ChunkType   string
	ProblemType string
	ScenarioId  string
	Embedding   []float32
	CreatedAt   time.Time
}
