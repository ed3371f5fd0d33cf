package mapper

import (
	"github.com/pgvector/pgvector-go"

	"ai-helpdesk-be/internal/entity"
	"ai-helpdesk-be/internal/model"
)

type KnowledgeMapper struct{}

func NewKnowledgeMapper() *KnowledgeMapper {
	return &KnowledgeMapper{}
}

func (m *KnowledgeMapper) ToEntity(k *model.KnowledgeEmbedding) *entity.KnowledgeChunk {
	if k == nil {
		return nil
	}

	return &entity.KnowledgeChunk{
		Id:          k.Id,
		Text:        k.Document,
		Source:      k.Source,
		Section:     k.Section,
		ChunkType:   k.ChunkType,
		ProblemType: k.ProblemType,
		ScenarioId:  k.ScenarioId,
		Embedding:   k.EmbeddingValue.Slice(),
		CreatedAt:   k.CreatedAt,
	}
}

func (m *KnowledgeMapper) ToModel(k *entity.KnowledgeChunk) *model.KnowledgeEmbedding {
	if k == nil {
		return nil
	}

	return &model.KnowledgeEmbedding{
		Id:             k.Id,
		Document:       k.Text,
		EmbeddingValue: pgvector.NewVector(k.Embedding),
		Source:         k.Source,
		Section:        k.Section,
		ChunkType:      k.ChunkType,
		ProblemType:    k.ProblemType,
		ScenarioId:     k.ScenarioId,
	}
}

func (m *KnowledgeMapper) ToEntities(chunks []model.KnowledgeEmbedding) []entity.KnowledgeChunk {
	entities := make([]entity.KnowledgeChunk, 0, len(chunks))
	for i := range chunks {
		entities = append(entities, *m.ToEntity(&chunks[i]))
	}
	return entities
}
