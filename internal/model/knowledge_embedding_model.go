package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type KnowledgeEmbedding struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Document       string          `gorm:"type:text;not null"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"` // nomic-embed-text and text-embedding-004 both emit 768 dims
	Source         string          `gorm:"type:text;not null;index"`
	Section        string          `gorm:"type:text"`
	ChunkType      string          `gorm:"type:text;index"`
	ProblemType    string          `gorm:"type:text;index"`
	ScenarioId     string          `gorm:"type:text;index"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	DeletedAt      gorm.DeletedAt  `gorm:"index"`
}

func (KnowledgeEmbedding) TableName() string {
	return "knowledge_embeddings"
}
