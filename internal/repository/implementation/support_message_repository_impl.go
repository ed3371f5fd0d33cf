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

type SupportMessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SupportMapper
}

func NewSupportMessageRepository(db *gorm.DB) contract.SupportMessageRepository {
	return &SupportMessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewSupportMapper(),
	}
}

func (r *SupportMessageRepositoryImpl) Create(ctx context.Context, message *entity.SupportMessage) error {
	m := r.mapper.MessageToModel(message)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*message = *r.mapper.MessageToEntity(m)
	return nil
}

func (r *SupportMessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SupportMessage, error) {
	var models []*model.SupportMessage
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.SupportMessage, len(models))
	for i, m := range models {
		entities[i] = r.mapper.MessageToEntity(m)
	}
	return entities, nil
}

func (r *SupportMessageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.SupportMessage{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
