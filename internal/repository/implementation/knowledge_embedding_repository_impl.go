package implementation

import (
	"context"

	"gorm.io/gorm"

	"ai-helpdesk-be/internal/entity"
	"ai-helpdesk-be/internal/mapper"
	"ai-helpdesk-be/internal/model"
	"ai-helpdesk-be/internal/repository/contract"
	"ai-helpdesk-be/internal/repository/specification"
)

type KnowledgeEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KnowledgeMapper
}

func NewKnowledgeEmbeddingRepository(db *gorm.DB) contract.KnowledgeEmbeddingRepository {
	return &KnowledgeEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewKnowledgeMapper(),
	}
}

func (r *KnowledgeEmbeddingRepositoryImpl) CreateBatch(ctx context.Context, chunks []entity.KnowledgeChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := make([]model.KnowledgeEmbedding, len(chunks))
	for i := range chunks {
		models[i] = *r.mapper.ToModel(&chunks[i])
	}
	return r.db.WithContext(ctx).CreateInBatches(models, 100).Error
}

func (r *KnowledgeEmbeddingRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]entity.KnowledgeChunk, error) {
	var models []model.KnowledgeEmbedding
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *KnowledgeEmbeddingRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.KnowledgeEmbedding{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *KnowledgeEmbeddingRepositoryImpl) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Unscoped().Where("1 = 1").Delete(&model.KnowledgeEmbedding{}).Error
}
